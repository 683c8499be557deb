package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/r3e-network/metasearch/internal/platform/httputil"
	"github.com/r3e-network/metasearch/internal/platform/logging"
)

// instrumented wraps a handler with the per-route request counters,
// latency histogram and access log entry that the external search,
// search-stream and engines routes get (health and metrics are not wrapped):
// in-flight gauge around the call, outcome classified by final status,
// then one zap access-log line.
func (s *Server) instrumented(route string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		s.metrics.IncrementInFlight()
		defer s.metrics.DecrementInFlight()

		traceID := uuid.NewString()
		r = r.WithContext(logging.WithTraceID(r.Context(), traceID))

		sw := httputil.NewStatusWriter(w)
		start := time.Now()
		next(sw, r)
		elapsed := time.Since(start)

		success := sw.Status < 500
		if s.metrics != nil {
			s.metrics.RecordRequest(route, success, elapsed)
		}
		if s.accessLog != nil {
			s.accessLog.LogRequest(traceID, r.Method, r.URL.Path, sw.Status, elapsed)
		}
	}
}
