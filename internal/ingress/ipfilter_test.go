package ingress

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIPFilterAllowModeBlocksUnlisted(t *testing.T) {
	cfg := NewIPFilterConfig(IPFilterAllow, []string{"203.0.113.1"})
	called := false
	h := IPFilter(cfg, true, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	req.RemoteAddr = "198.51.100.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, called)
	assert.NotEqual(t, http.StatusOK, rec.Code)
}

func TestIPFilterAllowModePermitsListed(t *testing.T) {
	cfg := NewIPFilterConfig(IPFilterAllow, []string{"198.51.100.1"})
	called := false
	h := IPFilter(cfg, true, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	req.RemoteAddr = "198.51.100.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, called)
}

func TestIPFilterDenyModeBlocksListed(t *testing.T) {
	cfg := NewIPFilterConfig(IPFilterDeny, []string{"198.51.100.1"})
	called := false
	h := IPFilter(cfg, true, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	req.RemoteAddr = "198.51.100.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.False(t, called)
}

func TestIPFilterDisabledPassesThrough(t *testing.T) {
	cfg := NewIPFilterConfig(IPFilterDeny, []string{"198.51.100.1"})
	called := false
	h := IPFilter(cfg, false, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	req.RemoteAddr = "198.51.100.1:1234"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.True(t, called)
}
