package ingress

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestMintJWTThenAuthAcceptsBearerToken(t *testing.T) {
	cfg := AuthConfig{JWTSecret: "topsecret", JWTExpiry: time.Hour}
	token, err := MintJWT(cfg, "user-1")
	require.NoError(t, err)

	var principal string
	h := Auth(cfg, true, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		principal = Principal(r)
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "user-1", principal)
}

func TestAuthRejectsMissingAuthorizationHeader(t *testing.T) {
	cfg := AuthConfig{JWTSecret: "topsecret"}
	h := Auth(cfg, true, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run without credentials")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthRejectsTokenSignedWithWrongSecret(t *testing.T) {
	token, err := MintJWT(AuthConfig{JWTSecret: "correct", JWTExpiry: time.Hour}, "user-1")
	require.NoError(t, err)

	h := Auth(AuthConfig{JWTSecret: "wrong"}, true, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run on a mis-signed token")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthAcceptsMatchingAPIKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("my-api-key"), bcrypt.DefaultCost)
	require.NoError(t, err)

	cfg := AuthConfig{APIKeyHashes: []string{string(hash)}}
	h := Auth(cfg, true, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	req.Header.Set("Authorization", "ApiKey my-api-key")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestAuthRejectsUnknownAPIKey(t *testing.T) {
	hash, _ := bcrypt.GenerateFromPassword([]byte("correct-key"), bcrypt.DefaultCost)
	cfg := AuthConfig{APIKeyHashes: []string{string(hash)}}
	h := Auth(cfg, true, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("handler must not run on a wrong key")
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	req.Header.Set("Authorization", "ApiKey wrong-key")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestAuthSkipsPreAuthenticatedRequests(t *testing.T) {
	cfg := AuthConfig{JWTSecret: "topsecret"}
	called := false
	h := Auth(cfg, true, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	req = withPreAuthenticated(req, "magic-link")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, called)
	assert.Equal(t, http.StatusOK, rec.Code)
}
