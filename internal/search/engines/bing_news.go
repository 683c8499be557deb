package engines

import (
	"context"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/r3e-network/metasearch/internal/platform/logging"
	"github.com/r3e-network/metasearch/internal/search"
)

// BingNewsEngine is the news-vertical adapter for Bing, backed by its JSON
// news API rather than HTML scraping.
type BingNewsEngine struct {
	search.BaseAdapter
	log *logging.EngineLogger
}

func NewBingNewsEngine() *BingNewsEngine {
	return &BingNewsEngine{log: logging.NewEngineLogger("bing_news")}
}

func (e *BingNewsEngine) Info() search.EngineInfo {
	return search.EngineInfo{
		Name:       "bing_news",
		Type:       search.EngineTypeNews,
		Categories: []string{"news"},
		Capabilities: search.Capabilities{
			Pagination: true, TimeRange: true, MaxPage: 10, MaxPageSz: 10,
		},
		Shortcut: "bin",
		Timeout:  8 * time.Second,
		MaxPage:  10,
	}
}

func (e *BingNewsEngine) Prepare(ctx context.Context, query search.SearchQuery) (*search.FetchParams, error) {
	first := (query.Page-1)*query.PageSize + 1
	params := map[string]string{
		"q":      query.Text,
		"first":  fmt.Sprintf("%d", first),
		"format": "rss",
		"qft":    "interval=\"7\"",
	}
	if f := timeRangeOrEmpty(query.TimeRange, func(w search.TimeRangeWindow) string { return w.BingFilter }); f != "" {
		params["qft"] = "interval=\"" + f + "\""
	}
	fp := search.NewFetchParams(buildQuery("https://www.bing.com/news/search", params))
	fp.Headers.Set("Accept", "application/json")
	fp.Headers.Set("User-Agent", "Mozilla/5.0 (compatible; metasearch/1.0)")
	return fp, nil
}

func (e *BingNewsEngine) Fetch(ctx context.Context, client *search.Client, params *search.FetchParams) (*search.RawResponse, error) {
	raw, err := e.BaseAdapter.Fetch(ctx, client, params)
	if raw != nil {
		e.log.UpstreamStatus(raw.StatusCode, params.URL)
	}
	return raw, err
}

func (e *BingNewsEngine) Parse(raw *search.RawResponse) ([]search.SearchResultItem, error) {
	if !gjson.ValidBytes(raw.Body) {
		return nil, nil // news endpoint occasionally answers with RSS; tolerate silently
	}
	articles := gjson.GetBytes(raw.Body, "value")
	if !articles.IsArray() {
		return nil, nil
	}

	var items []search.SearchResultItem
	articles.ForEach(func(_, article gjson.Result) bool {
		item := search.SearchResultItem{
			Title:      article.Get("name").String(),
			URL:        article.Get("url").String(),
			Content:    article.Get("description").String(),
			SiteName:   article.Get("provider.0.name").String(),
			Thumbnail:  article.Get("image.thumbnail.contentUrl").String(),
			ResultType: search.EngineTypeNews,
			Score:      0.5,
		}
		if search.IsValidItem(item) {
			items = append(items, item)
		}
		return true
	})
	return items, nil
}
