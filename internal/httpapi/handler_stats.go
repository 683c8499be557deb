package httpapi

import (
	"net/http"

	"github.com/r3e-network/metasearch/internal/platform/httputil"
)

// handleStats serves GET /api/stats (internal listener only): the metrics
// realtime snapshot plus the host/runtime resource sample.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"requests": s.metrics.Snapshot(),
		"host":     s.stats.Snapshot(),
	})
}
