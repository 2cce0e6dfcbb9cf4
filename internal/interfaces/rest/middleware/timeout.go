package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/DanielPopoola/photobooth/internal/application"
	"github.com/DanielPopoola/photobooth/internal/infrastructure/metrics"
	"github.com/DanielPopoola/photobooth/internal/interfaces/rest"
)

// Timeout bounds a request. It buffers the response, so it must not wrap
// streaming or websocket routes. A request cut off by the deadline gets the
// TIMEOUT envelope with a 503.
func Timeout(timeout time.Duration, logger *slog.Logger) func(http.Handler) http.Handler {
	body := timeoutBody()
	return func(next http.Handler) http.Handler {
		bounded := http.TimeoutHandler(next, timeout, body)
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), timeout)
			defer cancel()

			bounded.ServeHTTP(w, r.WithContext(ctx))

			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				route := routeLabel(r)
				metrics.ObserveTimeout(route)
				logger.Warn("request timed out",
					"method", r.Method,
					"route", route,
					"timeout", timeout)
			}
		})
	}
}

func timeoutBody() string {
	b, err := json.Marshal(rest.ErrorResponse{
		Error: rest.ErrorDetail{
			Code:    application.ErrCodeTimeout,
			Message: "Request timed out, please try again",
		},
	})
	if err != nil {
		return `{"success":false,"error":{"code":"TIMEOUT"}}`
	}
	return string(b)
}
