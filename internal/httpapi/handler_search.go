package httpapi

import (
	"encoding/json"
	"net/http"

	"github.com/r3e-network/metasearch/internal/platform/httputil"
	"github.com/r3e-network/metasearch/internal/search"
)

func parsedQueryFromRequest(r *http.Request) search.ParsedQuery {
	q := r.URL.Query()
	return search.ParsedQuery{
		Query:       q.Get("query"),
		Q:           q.Get("q"),
		Engines:     q.Get("engines"),
		EngineCount: q.Get("engine_count"),
		N:           q.Get("n"),
		Language:    q.Get("language"),
		Region:      q.Get("region"),
		SafeSearch:  q.Get("safe_search") == "1" || q.Get("safe_search") == "true",
		TimeRange:   q.Get("time_range"),
		Page:        q.Get("page"),
		PageSize:    q.Get("page_size"),
	}
}

// handleSearch serves GET /api/search with the batched executor.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	p := parsedQueryFromRequest(r)
	resp, err := s.svc.Search(r.Context(), p)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toResponseDTO(resp))
}

// handleSearchStream serves GET /api/search/stream with newline-delimited
// JSON: one line per engine result as it completes, then one terminal line
// carrying the aggregated response.
func (s *Server) handleSearchStream(w http.ResponseWriter, r *http.Request) {
	p := parsedQueryFromRequest(r)

	w.Header().Set("Content-Type", "application/x-ndjson")
	flusher, canFlush := w.(http.Flusher)
	enc := json.NewEncoder(w)

	sink := func(res search.SearchResult) {
		_ = enc.Encode(map[string]interface{}{"engine": res.EngineName, "items": res.Items})
		if canFlush {
			flusher.Flush()
		}
	}

	resp, err := s.svc.Stream(r.Context(), p, sink)
	if err != nil {
		_ = enc.Encode(map[string]interface{}{"error": err.Error()})
		return
	}
	_ = enc.Encode(map[string]interface{}{"final": toResponseDTO(resp)})
}
