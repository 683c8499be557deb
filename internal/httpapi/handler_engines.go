package httpapi

import (
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"github.com/r3e-network/metasearch/internal/platform/apierrors"
	"github.com/r3e-network/metasearch/internal/platform/httputil"
	"github.com/r3e-network/metasearch/internal/search"
)

// handleEngines serves GET /api/engines: the static catalog plus live
// enabled/available flags.
func (s *Server) handleEngines(w http.ResponseWriter, r *http.Request) {
	names := s.svc.Registry.GlobalOrder()
	now := time.Now()

	out := make([]EngineInfoDTO, 0, len(names))
	for _, name := range names {
		adapter, ok := s.svc.Registry.Adapter(name)
		if !ok {
			continue
		}
		info := adapter.Info()
		snap := s.svc.Registry.State(name).Snapshot(now)
		out = append(out, EngineInfoDTO{
			Name:       info.Name,
			Type:       string(info.Type),
			Categories: info.Categories,
			Shortcut:   info.Shortcut,
			Enabled:    snap.Enabled,
			Available:  snap.Available,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// handleEngineStats serves GET /api/engines/stats: full health detail per
// engine, supplementing the catalog view.
func (s *Server) handleEngineStats(w http.ResponseWriter, r *http.Request) {
	stats := s.svc.Registry.Stats()
	names := make([]string, 0, len(stats))
	for name := range stats {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]EngineStatsDTO, 0, len(names))
	for _, name := range names {
		snap := stats[name]
		out = append(out, EngineStatsDTO{
			Name:                snap.Name,
			Enabled:             snap.Enabled,
			TemporarilyDisabled: snap.TemporarilyDisabled,
			ConsecutiveFailures: snap.ConsecutiveFailures,
			AvgResponseTimeMs:   float64(snap.AvgResponseTimeMs),
			TotalRequests:       snap.TotalRequests,
		})
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// handleEngineEnable serves POST /api/engines/{name}/enable.
func (s *Server) handleEngineEnable(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.svc.Registry.Adapter(name); !ok {
			httputil.WriteError(w, apierrors.NotFound("unknown engine "+name))
			return
		}
		s.svc.Registry.EnableEngine(name)
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"engine": name, "status": "enabled"})
	}
}

// handleEngineDisable serves POST /api/engines/{name}/disable.
func (s *Server) handleEngineDisable(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if _, ok := s.svc.Registry.Adapter(name); !ok {
			httputil.WriteError(w, apierrors.NotFound("unknown engine "+name))
			return
		}
		s.svc.Registry.DisableEngine(name)
		httputil.WriteJSON(w, http.StatusOK, map[string]string{"engine": name, "status": "disabled"})
	}
}

// handleMode serves GET/POST /api/mode: reads or switches the registry's
// Configured/Global selection mode.
func (s *Server) handleMode(w http.ResponseWriter, r *http.Request) {
	if r.Method == http.MethodPost {
		var body ModeRequestDTO
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			httputil.WriteError(w, apierrors.InvalidQuery("malformed body"))
			return
		}
		mode := search.Mode(body.Mode)
		if mode != search.ModeConfigured && mode != search.ModeGlobal {
			httputil.WriteError(w, apierrors.InvalidQuery("mode must be configured|global"))
			return
		}
		s.svc.Registry.SetMode(mode)
	}
	httputil.WriteJSON(w, http.StatusOK, map[string]string{"mode": string(s.svc.Registry.Mode())})
}
