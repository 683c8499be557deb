package search

import (
	"errors"
	"strconv"
	"strings"
)

// errInvalidQuery is returned when neither `query` nor `q` is present.
var errInvalidQuery = errors.New("invalid query: missing q/query")

// ParsedQuery is the raw request-level shape the HTTP handlers decode into,
// before it is normalized into a SearchQuery.
type ParsedQuery struct {
	Query       string
	Q           string
	Engines     string
	EngineCount string
	N           string
	Language    string
	Region      string
	SafeSearch  bool
	TimeRange   string
	Page        string
	PageSize    string
}

// ParseRequest prefers `query` over `q`; if `engine_count`/`n` is given with
// no explicit engine list, it takes the first n names from globalOrder
// (assumed latency-ordered, though nothing in this implementation measures
// or enforces that assumption). Engine names absent from the catalog are
// silently discarded.
func ParseRequest(p ParsedQuery, globalOrder []string, knownEngines map[string]bool) (SearchRequest, error) {
	text := strings.TrimSpace(p.Query)
	if text == "" {
		text = strings.TrimSpace(p.Q)
	}
	if text == "" {
		return SearchRequest{}, errInvalidQuery
	}

	page := atoiDefault(p.Page, 1)
	if page < 1 {
		page = 1
	}
	pageSize := atoiDefault(p.PageSize, 10)
	if pageSize < 1 {
		pageSize = 10
	}

	query := SearchQuery{
		Text:       text,
		Page:       page,
		PageSize:   pageSize,
		Language:   p.Language,
		Region:     p.Region,
		SafeSearch: p.SafeSearch,
		TimeRange:  parseTimeRange(p.TimeRange),
	}

	var engines []string
	if p.Engines != "" {
		for _, name := range strings.Split(p.Engines, ",") {
			name = strings.TrimSpace(name)
			if name == "" {
				continue
			}
			if knownEngines == nil || knownEngines[name] {
				engines = append(engines, name)
			}
		}
	} else {
		countStr := p.EngineCount
		if countStr == "" {
			countStr = p.N
		}
		if n := atoiDefault(countStr, 0); n > 0 {
			for i, name := range globalOrder {
				if i >= n {
					break
				}
				engines = append(engines, name)
			}
		}
	}

	return SearchRequest{Query: query, Engines: engines}, nil
}

func parseTimeRange(raw string) TimeRange {
	switch TimeRange(strings.ToLower(strings.TrimSpace(raw))) {
	case TimeRangeHour:
		return TimeRangeHour
	case TimeRangeDay:
		return TimeRangeDay
	case TimeRangeWeek:
		return TimeRangeWeek
	case TimeRangeMonth:
		return TimeRangeMonth
	case TimeRangeYear:
		return TimeRangeYear
	default:
		return TimeRangeAny
	}
}

func atoiDefault(raw string, def int) int {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

// ErrInvalidQuery is the exported sentinel the HTTP layer maps to
// apierrors.InvalidQuery.
var ErrInvalidQuery = errInvalidQuery
