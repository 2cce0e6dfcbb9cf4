package middleware

import (
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/photobooth/internal/infrastructure/auth"
	"github.com/DanielPopoola/photobooth/internal/interfaces/rest"
)

type AdminAuthenticator interface {
	Authenticate(r *http.Request) (*auth.AdminClaims, error)
}

func RequireAdmin(authn AdminAuthenticator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := authn.Authenticate(r); err != nil {
				logger.Warn("admin authentication failed", "path", r.URL.Path)
				rest.WriteError(w, err, logger)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
