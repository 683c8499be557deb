package search

import (
	"net/url"
	"sort"
	"strings"
)

// NormalizeURL builds the dedup key: lower-case, strip a trailing slash,
// strip the fragment. Query/tracking parameters are intentionally left
// untouched — documented as current behavior rather than asserted as ideal.
func NormalizeURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return strings.ToLower(strings.TrimSuffix(raw, "/"))
	}
	u.Fragment = ""
	normalized := strings.ToLower(u.String())
	return strings.TrimSuffix(normalized, "/")
}

// Aggregate flattens per-engine results, de-duplicates by normalized URL,
// boosts scores by query-token containment, sorts score-desc/url-asc, and
// repackages them as a single SearchResult named "aggregated".
func Aggregate(perEngine []SearchResult, queryText string) SearchResult {
	type entry struct {
		item    SearchResultItem
		engines []string
	}

	order := make([]string, 0)
	byKey := make(map[string]*entry)

	for _, res := range perEngine {
		for _, item := range res.Items {
			if !IsValidItem(item) {
				continue
			}
			key := NormalizeURL(item.URL)
			if existing, ok := byKey[key]; ok {
				existing.engines = append(existing.engines, res.EngineName)
				continue
			}
			e := &entry{item: item, engines: []string{res.EngineName}}
			byKey[key] = e
			order = append(order, key)
		}
	}

	tokens := queryTokens(queryText)

	items := make([]SearchResultItem, 0, len(order))
	for _, key := range order {
		e := byKey[key]
		item := e.item
		if item.Metadata == nil {
			item.Metadata = make(map[string]string)
		}
		item.Metadata["engines"] = strings.Join(e.engines, ",")
		item.Score = boostScore(item, tokens)
		items = append(items, item)
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Score != items[j].Score {
			return items[i].Score > items[j].Score
		}
		return items[i].URL < items[j].URL
	})

	return SearchResult{
		EngineName:   "aggregated",
		Items:        items,
		TotalResults: len(items),
	}
}

func queryTokens(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	return fields
}

func boostScore(item SearchResultItem, tokens []string) float64 {
	score := item.Score
	title := strings.ToLower(item.Title)
	content := strings.ToLower(item.Content)
	for _, t := range tokens {
		if t == "" {
			continue
		}
		if strings.Contains(title, t) {
			score += 0.3
		}
		if strings.Contains(content, t) {
			score += 0.1
		}
	}
	if score > 1 {
		score = 1
	}
	if score < 0 {
		score = 0
	}
	return score
}
