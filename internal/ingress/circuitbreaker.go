package ingress

import (
	"errors"
	"net/http"

	"github.com/r3e-network/metasearch/internal/platform/apierrors"
	"github.com/r3e-network/metasearch/internal/platform/httputil"
	"github.com/r3e-network/metasearch/internal/platform/metrics"
	"github.com/r3e-network/metasearch/internal/platform/resilience"
)

// CircuitBreaker wraps next with the breaker gate: Allow() decides whether
// the request proceeds, and the outcome (any 5xx vs everything else) is
// recorded once the handler has written its status.
func CircuitBreaker(cb *resilience.CircuitBreaker, enabled bool, collector *metrics.Collector, next http.Handler) http.Handler {
	if !enabled || cb == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := cb.Allow(); err != nil {
			if errors.Is(err, resilience.ErrCircuitOpen) || errors.Is(err, resilience.ErrTooManyRequests) {
				if collector != nil {
					collector.RecordCircuitTrip()
				}
				writeErr(w, apierrors.CircuitOpen())
				return
			}
			writeErr(w, apierrors.Internal(err))
			return
		}

		sw := httputil.NewStatusWriter(w)
		next.ServeHTTP(sw, r)

		if sw.Status >= 500 {
			cb.RecordFailure()
		} else {
			cb.RecordSuccess()
		}
	})
}
