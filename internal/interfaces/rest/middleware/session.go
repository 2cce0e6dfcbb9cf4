package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/DanielPopoola/photobooth/internal/application"
	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/DanielPopoola/photobooth/internal/interfaces/rest"
	"github.com/google/uuid"
)

const SessionCookieName = "photobooth_session"

type sessionKey struct{}

// Session loads the visitor's session from the store and attaches it to the
// request context. Visitors without a valid cookie get a fresh id. The
// cookie is SameSite=Lax so it survives the top-level redirect back from the
// hosted checkout page.
func Session(store application.SessionStore, secureCookie bool, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var id string
			if c, err := r.Cookie(SessionCookieName); err == nil {
				if _, err := uuid.Parse(c.Value); err == nil {
					id = c.Value
				}
			}
			if id == "" {
				id = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     SessionCookieName,
					Value:    id,
					Path:     "/",
					HttpOnly: true,
					Secure:   secureCookie,
					SameSite: http.SameSiteLaxMode,
				})
			}

			sess, err := store.Load(r.Context(), id)
			if err != nil {
				rest.WriteError(w, application.NewInternalError(err), logger)
				return
			}

			ctx := context.WithValue(r.Context(), sessionKey{}, sess)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// SessionFrom returns the session attached by Session.
func SessionFrom(ctx context.Context) (*domain.Session, bool) {
	sess, ok := ctx.Value(sessionKey{}).(*domain.Session)
	return sess, ok
}
