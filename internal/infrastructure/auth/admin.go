// Package auth guards the staff-only lookup with a bcrypt password check
// and an HS256 session cookie.
package auth

import (
	"crypto/subtle"
	"net/http"
	"strings"
	"time"

	"github.com/DanielPopoola/photobooth/internal/config"
	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const CookieName = "photobooth_admin"

type AdminClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

type AdminAuth struct {
	username     string
	passwordHash []byte
	secret       []byte
	ttl          time.Duration
	secureCookie bool
	now          func() time.Time
}

func NewAdminAuth(cfg config.AdminConfig, secureCookie bool) *AdminAuth {
	return &AdminAuth{
		username:     cfg.Username,
		passwordHash: []byte(cfg.PasswordHash),
		secret:       []byte(cfg.TokenSecret),
		ttl:          cfg.TokenTTL,
		secureCookie: secureCookie,
		now:          time.Now,
	}
}

// HashPassword produces the value expected in admin.password_hash.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// Login checks the credentials and sets the session cookie.
func (a *AdminAuth) Login(w http.ResponseWriter, username, password string) error {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(a.username)) == 1
	passErr := bcrypt.CompareHashAndPassword(a.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return &domain.DomainError{Code: domain.ErrCodeUnauthorized, Message: "invalid username or password"}
	}

	now := a.now()
	claims := AdminClaims{
		Role: "admin",
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
			Subject:   a.username,
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(a.secret)
	if err != nil {
		return err
	}

	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    signed,
		Path:     "/",
		MaxAge:   int(a.ttl.Seconds()),
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
	return nil
}

func (a *AdminAuth) Logout(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     CookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   a.secureCookie,
		SameSite: http.SameSiteStrictMode,
	})
}

// Authenticate accepts the session cookie or an Authorization bearer token.
func (a *AdminAuth) Authenticate(r *http.Request) (*AdminClaims, error) {
	var raw string
	if hdr := r.Header.Get("Authorization"); strings.HasPrefix(strings.ToLower(hdr), "bearer ") {
		raw = strings.TrimSpace(hdr[7:])
	} else if c, err := r.Cookie(CookieName); err == nil {
		raw = c.Value
	}
	if raw == "" {
		return nil, domain.ErrUnauthorized
	}

	claims := &AdminClaims{}
	_, err := jwt.ParseWithClaims(raw, claims,
		func(t *jwt.Token) (any, error) { return a.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(a.now),
	)
	if err != nil || claims.Role != "admin" {
		return nil, domain.ErrUnauthorized
	}
	return claims, nil
}
