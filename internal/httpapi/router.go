package httpapi

import (
	"net/http"
	"strings"

	"github.com/r3e-network/metasearch/internal/ingress"
	"github.com/r3e-network/metasearch/internal/platform/logging"
	"github.com/r3e-network/metasearch/internal/platform/metrics"
	"github.com/r3e-network/metasearch/internal/platform/stats"
)

// Server holds every collaborator the route table's handlers close over.
// It is built once at startup and is otherwise stateless.
type Server struct {
	svc                  *Service
	metrics              *metrics.Collector
	stats                *stats.Collector
	log                  *logging.Logger
	accessLog            *logging.AccessLogger
	magicLinks           *ingress.MagicLinkStore
	magicLinkTTLSeconds  int
}

func NewServer(svc *Service, metricsCollector *metrics.Collector, statsCollector *stats.Collector, log *logging.Logger, accessLog *logging.AccessLogger, magicLinks *ingress.MagicLinkStore, magicLinkTTLSeconds int) *Server {
	return &Server{
		svc:                 svc,
		metrics:             metricsCollector,
		stats:               statsCollector,
		log:                 log,
		accessLog:           accessLog,
		magicLinks:          magicLinks,
		magicLinkTTLSeconds: magicLinkTTLSeconds,
	}
}

// ExternalMux is the public-facing route table: search and the read-only
// engine catalog, plus the Prometheus exposition endpoint. It does not
// expose /api/stats, /api/mode, engine enable/disable, or magic-link
// minting — those are internal-listener-only.
func (s *Server) ExternalMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/search", s.instrumented("search", s.handleSearch))
	mux.HandleFunc("GET /api/search/stream", s.instrumented("search_stream", s.handleSearchStream))
	mux.HandleFunc("GET /api/engines", s.instrumented("engines", s.handleEngines))
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.Handle("GET /api/metrics", s.metricsHandler())
	return mux
}

// InternalMux is the operator-facing route table, reachable only from
// loopback: search, host stats, engine administration, mode switch,
// realtime metrics and magic-link minting.
func (s *Server) InternalMux() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/search", s.handleSearch)
	mux.HandleFunc("GET /api/search/stream", s.handleSearchStream)
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/stats", s.handleStats)
	mux.HandleFunc("GET /api/metrics/realtime", s.handleMetricsRealtime)
	mux.Handle("GET /api/metrics", s.metricsHandler())
	mux.HandleFunc("GET /api/engines", s.handleEngines)
	mux.HandleFunc("GET /api/engines/stats", s.handleEngineStats)
	mux.HandleFunc("GET /api/mode", s.handleMode)
	mux.HandleFunc("POST /api/mode", s.handleMode)
	mux.HandleFunc("POST /api/magiclink", s.handleMintMagicLink)
	mux.HandleFunc("POST /api/engines/", s.routeEngineAction)
	return mux
}

// routeEngineAction dispatches POST /api/engines/{name}/enable|disable: the
// stdlib mux's path-variable pattern only arrived in Go 1.22's ServeMux, so
// the two-segment suffix is split by hand for compatibility with the
// simpler wildcard prefix registered above.
func (s *Server) routeEngineAction(w http.ResponseWriter, r *http.Request) {
	trimmed := strings.TrimPrefix(r.URL.Path, "/api/engines/")
	parts := strings.Split(trimmed, "/")
	if len(parts) != 2 {
		http.NotFound(w, r)
		return
	}
	name, action := parts[0], parts[1]
	switch action {
	case "enable":
		s.handleEngineEnable(name)(w, r)
	case "disable":
		s.handleEngineDisable(name)(w, r)
	default:
		http.NotFound(w, r)
	}
}
