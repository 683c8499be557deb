package httpapi

import (
	"net/http"

	"github.com/r3e-network/metasearch/internal/platform/httputil"
)

// handleHealth serves GET /api/health: a cheap liveness probe with no
// upstream dependency, suitable for both listeners.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
