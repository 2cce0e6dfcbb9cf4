package middleware

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/DanielPopoola/photobooth/internal/infrastructure/metrics"
	chimw "github.com/go-chi/chi/v5/middleware"
)

// Logging logs every request and records it in the HTTP metrics, labelled by
// route pattern so path parameters do not explode the label set.
func Logging(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)

			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			elapsed := time.Since(start)

			metrics.ObserveHTTPRequest(routeLabel(r), r.Method, status, elapsed)

			logger.Info("request completed",
				"method", r.Method,
				"path", r.URL.Path,
				"status", status,
				"bytes", ww.BytesWritten(),
				"duration", elapsed,
				"request_id", chimw.GetReqID(r.Context()),
			)
		})
	}
}
