package ingress

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/r3e-network/metasearch/internal/platform/resilience"
)

func TestCircuitBreakerMiddlewareTripsOnRepeated5xx(t *testing.T) {
	cb := resilience.New(resilience.Config{FailureThreshold: 2, SuccessThreshold: 1, Timeout: time.Minute})
	status := http.StatusInternalServerError
	h := CircuitBreaker(cb, true, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(status)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	}

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code, "breaker should now be open and short-circuit before the handler runs")
}

func TestCircuitBreakerMiddlewareDisabledPassesThrough(t *testing.T) {
	h := CircuitBreaker(nil, false, nil, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/search", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}
