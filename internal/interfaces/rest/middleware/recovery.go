package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/DanielPopoola/photobooth/internal/application"
	"github.com/DanielPopoola/photobooth/internal/infrastructure/metrics"
	"github.com/DanielPopoola/photobooth/internal/interfaces/rest"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Recovery turns a handler panic into the standard INTERNAL_ERROR envelope.
// The panic value stays in the log; the visitor only sees the public message.
func Recovery(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}

				route := routeLabel(r)
				metrics.ObservePanic(route)
				logger.Error("panic recovered",
					"panic", rec,
					"method", r.Method,
					"route", route,
					"request_id", chimw.GetReqID(r.Context()),
					"stack", string(debug.Stack()),
				)

				rest.WriteError(w, application.NewInternalError(fmt.Errorf("panic in %s: %v", route, rec)), logger)
			}()

			next.ServeHTTP(w, r)
		})
	}
}
