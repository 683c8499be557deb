package engines

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/r3e-network/metasearch/internal/platform/logging"
	"github.com/r3e-network/metasearch/internal/search"
)

// UnsplashEngine adapts Unsplash's public photo-search JSON API. It has no
// CAPTCHA/anti-bot check, so Fetch adds nothing beyond status logging.
type UnsplashEngine struct {
	search.BaseAdapter
	log *logging.EngineLogger
}

func NewUnsplashEngine() *UnsplashEngine {
	return &UnsplashEngine{log: logging.NewEngineLogger("unsplash")}
}

func (e *UnsplashEngine) Info() search.EngineInfo {
	return search.EngineInfo{
		Name:       "unsplash",
		Type:       search.EngineTypeImage,
		Categories: []string{"images"},
		Capabilities: search.Capabilities{
			Pagination: true, MaxPage: 20, MaxPageSz: 30,
		},
		Shortcut: "us",
		Timeout:  8 * time.Second,
		MaxPage:  20,
	}
}

func (e *UnsplashEngine) Prepare(ctx context.Context, query search.SearchQuery) (*search.FetchParams, error) {
	params := map[string]string{
		"query":    query.Text,
		"page":     strconv.Itoa(query.Page),
		"per_page": strconv.Itoa(query.PageSize),
	}
	fp := search.NewFetchParams(buildQuery("https://unsplash.com/napi/search/photos", params))
	fp.Headers.Set("Accept", "application/json")
	fp.Headers.Set("User-Agent", "Mozilla/5.0 (compatible; metasearch/1.0)")
	return fp, nil
}

func (e *UnsplashEngine) Fetch(ctx context.Context, client *search.Client, params *search.FetchParams) (*search.RawResponse, error) {
	raw, err := e.BaseAdapter.Fetch(ctx, client, params)
	if raw != nil {
		e.log.UpstreamStatus(raw.StatusCode, params.URL)
	}
	return raw, err
}

func (e *UnsplashEngine) Parse(raw *search.RawResponse) ([]search.SearchResultItem, error) {
	if !gjson.ValidBytes(raw.Body) {
		return nil, fmt.Errorf("%w: non-JSON response", search.ErrParse)
	}
	results := gjson.GetBytes(raw.Body, "results")
	if !results.IsArray() {
		return nil, nil
	}

	var items []search.SearchResultItem
	results.ForEach(func(_, rec gjson.Result) bool {
		title := rec.Get("description").String()
		if title == "" {
			title = rec.Get("alt_description").String()
		}
		item := search.SearchResultItem{
			Title:      title,
			URL:        rec.Get("urls.full").String(),
			Thumbnail:  rec.Get("urls.thumb").String(),
			DisplayURL: rec.Get("links.html").String(),
			SiteName:   rec.Get("user.name").String(),
			ResultType: search.EngineTypeImage,
			Score:      0.5,
		}
		if item.Title == "" {
			item.Title = "Unsplash photo"
		}
		if search.IsValidItem(item) {
			items = append(items, item)
		}
		return true
	})
	return items, nil
}
