package middleware

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// routeLabel is the matched chi pattern, falling back to the raw path for
// requests that never reached a route.
func routeLabel(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if pattern := rctx.RoutePattern(); pattern != "" {
			return pattern
		}
	}
	return r.URL.Path
}
