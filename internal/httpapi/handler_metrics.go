package httpapi

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/r3e-network/metasearch/internal/platform/httputil"
)

// handleMetricsRealtime serves GET /api/metrics/realtime: the JSON
// cumulative-average snapshot, separate from the Prometheus text-exposition
// endpoint below.
func (s *Server) handleMetricsRealtime(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, s.metrics.Snapshot())
}

// metricsHandler returns the standard promhttp text-exposition handler for
// GET /api/metrics.
func (s *Server) metricsHandler() http.Handler {
	return promhttp.Handler()
}
