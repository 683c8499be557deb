package search

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeURL(t *testing.T) {
	cases := map[string]string{
		"https://Example.com/Path/":       "https://example.com/path",
		"https://example.com/path#anchor": "https://example.com/path",
		"https://example.com/path":        "https://example.com/path",
		"not a url at all":                "not a url at all",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeURL(in), "input %q", in)
	}
}

func TestAggregateDedupesByNormalizedURL(t *testing.T) {
	perEngine := []SearchResult{
		{
			EngineName: "bing",
			Items: []SearchResultItem{
				{Title: "Go Programming", URL: "https://golang.org/doc/", Score: 0.5},
			},
		},
		{
			EngineName: "baidu",
			Items: []SearchResultItem{
				{Title: "Go Programming Language", URL: "https://golang.org/doc", Score: 0.4},
			},
		},
	}

	result := Aggregate(perEngine, "go")

	if assert.Len(t, result.Items, 1) {
		item := result.Items[0]
		assert.Equal(t, "aggregated", result.EngineName)
		assert.Contains(t, item.Metadata["engines"], "bing")
		assert.Contains(t, item.Metadata["engines"], "baidu")
	}
}

func TestAggregateDropsInvalidItems(t *testing.T) {
	perEngine := []SearchResult{
		{EngineName: "bing", Items: []SearchResultItem{
			{Title: "", URL: "https://example.com"},
			{Title: "no url", URL: ""},
			{Title: "relative", URL: "/relative/path"},
			{Title: "valid", URL: "https://example.com/valid"},
		}},
	}

	result := Aggregate(perEngine, "")
	assert.Len(t, result.Items, 1)
	assert.Equal(t, "https://example.com/valid", result.Items[0].URL)
}

func TestAggregateSortsByScoreThenURL(t *testing.T) {
	perEngine := []SearchResult{
		{EngineName: "bing", Items: []SearchResultItem{
			{Title: "low score item about golang", URL: "https://b.example.com", Score: 0.1},
			{Title: "golang is great, golang rocks", URL: "https://a.example.com", Score: 0.1},
		}},
	}

	result := Aggregate(perEngine, "golang")
	if assert.Len(t, result.Items, 2) {
		// both get boosted by title containment, but identical totals
		// should tie-break by URL ascending.
		assert.True(t, result.Items[0].URL <= result.Items[1].URL)
	}
}

func TestAggregateBoostsScoreOnQueryTokenMatch(t *testing.T) {
	perEngine := []SearchResult{
		{EngineName: "bing", Items: []SearchResultItem{
			{Title: "unrelated", URL: "https://x.example.com", Content: "nothing relevant", Score: 0.1},
			{Title: "contains golang in title", URL: "https://y.example.com", Score: 0.1},
		}},
	}

	result := Aggregate(perEngine, "golang")

	var unrelated, matched SearchResultItem
	for _, item := range result.Items {
		if item.URL == "https://x.example.com" {
			unrelated = item
		} else {
			matched = item
		}
	}
	assert.Greater(t, matched.Score, unrelated.Score)
}
