// Package securelink mints and verifies stateless download tokens. No
// registry of issued links exists; expiry lives in the signed claim.
package securelink

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/DanielPopoola/photobooth/internal/application"
	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

// LinkTTL is the fixed lifetime of an expiring link.
const LinkTTL = 10 * time.Minute

const viewPath = "/view-secure-image"

type imageClaims struct {
	ImageFilename string `json:"image_filename"`
	jwt.RegisteredClaims
}

type Issuer struct {
	secret  []byte
	baseURL string
	now     func() time.Time
}

var _ application.LinkIssuer = (*Issuer)(nil)

func NewIssuer(secret, baseURL string) *Issuer {
	return &Issuer{
		secret:  []byte(secret),
		baseURL: strings.TrimRight(baseURL, "/"),
		now:     time.Now,
	}
}

// WithClock replaces the time source, for tests.
func (i *Issuer) WithClock(now func() time.Time) *Issuer {
	i.now = now
	return i
}

// Issue returns the download URL for filename. Links without expiry stay
// valid until the secret changes.
func (i *Issuer) Issue(filename string, expires, download bool) (string, error) {
	token, err := i.Token(filename, expires)
	if err != nil {
		return "", err
	}

	q := url.Values{}
	q.Set("token", token)
	q.Set("download", strconv.FormatBool(download))
	return i.baseURL + viewPath + "?" + q.Encode(), nil
}

func (i *Issuer) Token(filename string, expires bool) (string, error) {
	if filename == "" {
		return "", domain.NewMissingRequiredFieldError("image filename")
	}

	claims := imageClaims{ImageFilename: filename}
	if expires {
		claims.ExpiresAt = jwt.NewNumericDate(i.now().Add(LinkTTL))
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign link token: %w", err)
	}
	return signed, nil
}

// Resolve returns the filename embedded in token. A token is valid while
// now is strictly before its expiry second.
func (i *Issuer) Resolve(token string) (string, error) {
	if token == "" {
		return "", domain.ErrTokenInvalid
	}

	claims := &imageClaims{}
	_, err := jwt.ParseWithClaims(token, claims,
		func(t *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(i.now),
	)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		return "", domain.ErrTokenExpired
	default:
		return "", &domain.DomainError{Code: domain.ErrCodeTokenInvalid, Message: "link is invalid", Err: err}
	}

	if claims.ImageFilename == "" {
		return "", domain.ErrTokenInvalid
	}
	return claims.ImageFilename, nil
}
