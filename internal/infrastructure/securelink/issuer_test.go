package securelink_test

import (
	"net/url"
	"testing"
	"time"

	"github.com/DanielPopoola/photobooth/internal/domain"
	"github.com/DanielPopoola/photobooth/internal/infrastructure/securelink"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) Now() time.Time { return c.t }

func newIssuer(clock *fakeClock) *securelink.Issuer {
	return securelink.NewIssuer("link-secret", "http://kiosk.local/").WithClock(clock.Now)
}

func tokenFrom(t *testing.T, link string) url.Values {
	t.Helper()
	u, err := url.Parse(link)
	require.NoError(t, err)
	assert.Equal(t, "/view-secure-image", u.Path)
	return u.Query()
}

func TestIssue_BuildsDownloadURL(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newIssuer(clock)

	link, err := issuer.Issue("photo.png", true, true)
	require.NoError(t, err)

	q := tokenFrom(t, link)
	assert.Equal(t, "true", q.Get("download"))

	filename, err := issuer.Resolve(q.Get("token"))
	require.NoError(t, err)
	assert.Equal(t, "photo.png", filename)
}

func TestResolve_ExpiryBoundary(t *testing.T) {
	issuedAt := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	clock := &fakeClock{t: issuedAt}
	issuer := newIssuer(clock)

	token, err := issuer.Token("photo.png", true)
	require.NoError(t, err)

	clock.t = issuedAt.Add(securelink.LinkTTL - time.Second)
	_, err = issuer.Resolve(token)
	assert.NoError(t, err, "one second before expiry")

	clock.t = issuedAt.Add(securelink.LinkTTL)
	_, err = issuer.Resolve(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired, "exactly at expiry")

	clock.t = issuedAt.Add(securelink.LinkTTL + time.Second)
	_, err = issuer.Resolve(token)
	assert.ErrorIs(t, err, domain.ErrTokenExpired, "after expiry")
}

func TestResolve_NonExpiringLink(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newIssuer(clock)

	link, err := issuer.Issue("photo.png", false, false)
	require.NoError(t, err)
	q := tokenFrom(t, link)
	assert.Equal(t, "false", q.Get("download"))

	clock.t = clock.t.AddDate(5, 0, 0)
	filename, err := issuer.Resolve(q.Get("token"))
	require.NoError(t, err)
	assert.Equal(t, "photo.png", filename)
}

func TestResolve_InvalidTokens(t *testing.T) {
	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	issuer := newIssuer(clock)

	foreign, err := securelink.NewIssuer("other-secret", "http://kiosk.local").WithClock(clock.Now).Token("photo.png", true)
	require.NoError(t, err)

	for name, token := range map[string]string{
		"empty":          "",
		"garbage":        "not-a-token",
		"wrong secret":   foreign,
		"truncated link": foreign[:len(foreign)-4],
	} {
		t.Run(name, func(t *testing.T) {
			_, err := issuer.Resolve(token)
			assert.ErrorIs(t, err, domain.ErrTokenInvalid)
			assert.NotErrorIs(t, err, domain.ErrTokenExpired)
		})
	}
}

func TestIssue_RequiresFilename(t *testing.T) {
	issuer := securelink.NewIssuer("link-secret", "http://kiosk.local")

	_, err := issuer.Issue("", true, true)
	assert.ErrorIs(t, err, domain.ErrValidation)
}
