package ingress

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMagicLinkStoreVerifyIsSingleUse(t *testing.T) {
	store := NewMagicLinkStore("secret", time.Minute)
	token, err := store.Mint("login")
	require.NoError(t, err)

	purpose, err := store.Verify(token)
	require.NoError(t, err)
	assert.Equal(t, "login", purpose)

	_, err = store.Verify(token)
	assert.Error(t, err, "a second verify of the same token must fail")
}

func TestMagicLinkStoreVerifyRejectsUnknownToken(t *testing.T) {
	store := NewMagicLinkStore("secret", time.Minute)
	_, err := store.Verify("not-a-real-token")
	assert.Error(t, err)
}

func TestMagicLinkStoreVerifyRejectsExpiredToken(t *testing.T) {
	store := NewMagicLinkStore("secret", -time.Second) // already expired at mint
	token, err := store.Mint("login")
	require.NoError(t, err)

	_, err = store.Verify(token)
	assert.Error(t, err)
}

func TestMagicLinkStorePurgeRemovesPastGracePeriod(t *testing.T) {
	store := NewMagicLinkStore("secret", time.Second)
	_, err := store.Mint("login")
	require.NoError(t, err)

	removed := store.Purge(time.Now())
	assert.Equal(t, 0, removed, "not yet past the 60s grace period")

	removed = store.Purge(time.Now().Add(2 * time.Minute))
	assert.Equal(t, 1, removed)
}

func TestMagicLinkMiddlewarePassesThroughWithoutToken(t *testing.T) {
	store := NewMagicLinkStore("secret", time.Minute)
	called := false
	h := MagicLink(store, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.False(t, IsPreAuthenticated(r))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/search?q=x", nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, called)
}

func TestMagicLinkMiddlewareMarksPreAuthenticatedOnValidToken(t *testing.T) {
	store := NewMagicLinkStore("secret", time.Minute)
	token, _ := store.Mint("login")

	called := false
	h := MagicLink(store, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		assert.True(t, IsPreAuthenticated(r))
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/search?magic_token="+token, nil)
	h.ServeHTTP(httptest.NewRecorder(), req)
	assert.True(t, called)
}

func TestMagicLinkMiddlewareRejectsInvalidToken(t *testing.T) {
	store := NewMagicLinkStore("secret", time.Minute)
	h := MagicLink(store, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not be reached on an invalid token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/search?magic_token=bogus", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
