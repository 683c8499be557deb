package search

import (
	"encoding/json"
	"strings"

	"github.com/PaesslerAG/jsonpath"
)

// PassiveSource is the small interface the composite search consumes
// secondary collaborators (a stale-result cache, RSS feeds) through: the
// core never depends on their internals, only on a token-matching lookup.
type PassiveSource interface {
	Lookup(tokens []string) []SearchResultItem
}

const passiveBaseScore = 0.7

// Composite combines live aggregation with passive sources (stale cache
// hits, RSS items). Each passive item enters with passiveBaseScore and goes
// through the same boost/dedup/sort pipeline as Aggregate; because live
// items are appended to the dedup set first, they win every tie by
// construction.
func Composite(live []SearchResult, queryText string, sources ...PassiveSource) SearchResult {
	tokens := queryTokens(queryText)

	var passiveItems []SearchResultItem
	for _, src := range sources {
		if src == nil {
			continue
		}
		for _, item := range src.Lookup(tokens) {
			item.Score = passiveBaseScore
			passiveItems = append(passiveItems, item)
		}
	}

	all := append([]SearchResult(nil), live...)
	if len(passiveItems) > 0 {
		all = append(all, SearchResult{EngineName: "passive", Items: passiveItems})
	}
	return Aggregate(all, queryText)
}

// JSONPathFields configures how a generic passive record (a cached result or
// an RSS entry, whose exact shape is only known by the collaborator, not by
// this package) is mapped into a SearchResultItem.
type JSONPathFields struct {
	TitlePath   string
	URLPath     string
	ContentPath string
}

// DefaultJSONPathFields matches the flat {title,url,content} shape most
// cache/RSS collaborators in this codebase already emit.
func DefaultJSONPathFields() JSONPathFields {
	return JSONPathFields{TitlePath: "$.title", URLPath: "$.url", ContentPath: "$.content"}
}

// JSONRecordSource adapts a slice of arbitrary-shaped JSON records (as
// produced by the cache/RSS collaborators) into SearchResultItems using
// configurable JSONPath expressions, since the record shape is only known
// at configuration time rather than compiled into a fixed struct.
type JSONRecordSource struct {
	Records []json.RawMessage
	Fields  JSONPathFields
}

func (s JSONRecordSource) Lookup(tokens []string) []SearchResultItem {
	var items []SearchResultItem
	for _, raw := range s.Records {
		var doc interface{}
		if err := json.Unmarshal(raw, &doc); err != nil {
			continue
		}
		title, _ := jsonpath.Get(s.Fields.TitlePath, doc)
		url, _ := jsonpath.Get(s.Fields.URLPath, doc)
		content, _ := jsonpath.Get(s.Fields.ContentPath, doc)

		titleStr, _ := title.(string)
		urlStr, _ := url.(string)
		contentStr, _ := content.(string)
		if titleStr == "" || urlStr == "" {
			continue
		}
		if !matchesAnyToken(tokens, titleStr, contentStr) {
			continue
		}
		items = append(items, SearchResultItem{
			Title:   titleStr,
			URL:     urlStr,
			Content: contentStr,
		})
	}
	return items
}

func matchesAnyToken(tokens []string, fields ...string) bool {
	if len(tokens) == 0 {
		return true
	}
	for _, f := range fields {
		lower := strings.ToLower(f)
		for _, t := range tokens {
			if t != "" && strings.Contains(lower, t) {
				return true
			}
		}
	}
	return false
}
