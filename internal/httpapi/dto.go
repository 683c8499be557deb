package httpapi

import "github.com/r3e-network/metasearch/internal/search"

// SearchResponseDTO is the JSON wire shape of a completed search, keeping
// the search package's internal types decoupled from the HTTP surface.
type SearchResponseDTO struct {
	Query       string          `json:"query"`
	EnginesUsed []string        `json:"engines_used"`
	QueryTimeMs int64           `json:"query_time_ms"`
	TotalResults int            `json:"total_results"`
	Results     []ResultItemDTO `json:"results"`
}

type ResultItemDTO struct {
	Title      string            `json:"title"`
	URL        string            `json:"url"`
	Content    string            `json:"content,omitempty"`
	DisplayURL string            `json:"display_url,omitempty"`
	SiteName   string            `json:"site_name,omitempty"`
	Thumbnail  string            `json:"thumbnail,omitempty"`
	Score      float64           `json:"score"`
	ResultType string            `json:"result_type"`
	Metadata   map[string]string `json:"metadata,omitempty"`
}

func toResponseDTO(resp search.SearchResponse) SearchResponseDTO {
	items := make([]ResultItemDTO, 0, len(resp.Result.Items))
	for _, it := range resp.Result.Items {
		items = append(items, ResultItemDTO{
			Title:      it.Title,
			URL:        it.URL,
			Content:    it.Content,
			DisplayURL: it.DisplayURL,
			SiteName:   it.SiteName,
			Thumbnail:  it.Thumbnail,
			Score:      it.Score,
			ResultType: string(it.ResultType),
			Metadata:   it.Metadata,
		})
	}
	return SearchResponseDTO{
		Query:        resp.Query.Text,
		EnginesUsed:  resp.EnginesUsed,
		QueryTimeMs:  resp.QueryTimeMs,
		TotalResults: resp.Result.TotalResults,
		Results:      items,
	}
}

// EngineInfoDTO describes one catalog entry for /api/engines.
type EngineInfoDTO struct {
	Name       string   `json:"name"`
	Type       string   `json:"type"`
	Categories []string `json:"categories"`
	Shortcut   string   `json:"shortcut"`
	Enabled    bool     `json:"enabled"`
	Available  bool     `json:"available"`
}

// EngineStatsDTO is one entry of /api/engines/stats.
type EngineStatsDTO struct {
	Name                string  `json:"name"`
	Enabled             bool    `json:"enabled"`
	TemporarilyDisabled bool    `json:"temporarily_disabled"`
	ConsecutiveFailures int     `json:"consecutive_failures"`
	AvgResponseTimeMs   float64 `json:"avg_response_time_ms"`
	TotalRequests       uint64  `json:"total_requests"`
}

// MagicLinkResponseDTO is returned by the magic-link mint endpoint.
type MagicLinkResponseDTO struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in_seconds"`
}

// ModeRequestDTO switches the registry between configured/global selection.
type ModeRequestDTO struct {
	Mode string `json:"mode"`
}
