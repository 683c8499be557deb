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

// SogouImagesEngine is the image-vertical adapter for Sogou, backed by its
// JSON image-search API.
type SogouImagesEngine struct {
	search.BaseAdapter
	log *logging.EngineLogger
}

func NewSogouImagesEngine() *SogouImagesEngine {
	return &SogouImagesEngine{log: logging.NewEngineLogger("sogou_images")}
}

func (e *SogouImagesEngine) Info() search.EngineInfo {
	return search.EngineInfo{
		Name:       "sogou_images",
		Type:       search.EngineTypeImage,
		Categories: []string{"images"},
		Capabilities: search.Capabilities{
			Pagination: true, MaxPage: 20, MaxPageSz: 48,
		},
		Shortcut: "sgi",
		Timeout:  8 * time.Second,
		MaxPage:  20,
	}
}

func (e *SogouImagesEngine) Prepare(ctx context.Context, query search.SearchQuery) (*search.FetchParams, error) {
	params := map[string]string{
		"query": query.Text,
		"mode":  "1",
		"start": strconv.Itoa((query.Page - 1) * query.PageSize),
	}
	fp := search.NewFetchParams(buildQuery("https://pic.sogou.com/napi/pc/searchList", params))
	fp.Headers.Set("Accept", "application/json")
	fp.Headers.Set("User-Agent", "Mozilla/5.0 (compatible; metasearch/1.0)")
	return fp, nil
}

func (e *SogouImagesEngine) Fetch(ctx context.Context, client *search.Client, params *search.FetchParams) (*search.RawResponse, error) {
	raw, err := e.BaseAdapter.Fetch(ctx, client, params)
	if raw != nil {
		e.log.UpstreamStatus(raw.StatusCode, params.URL)
	}
	return raw, err
}

func (e *SogouImagesEngine) Parse(raw *search.RawResponse) ([]search.SearchResultItem, error) {
	if !gjson.ValidBytes(raw.Body) {
		return nil, fmt.Errorf("%w: non-JSON response", search.ErrParse)
	}
	list := gjson.GetBytes(raw.Body, "data.items")
	if !list.IsArray() {
		return nil, nil
	}

	var items []search.SearchResultItem
	list.ForEach(func(_, rec gjson.Result) bool {
		item := search.SearchResultItem{
			Title:      rec.Get("title").String(),
			URL:        rec.Get("picUrl").String(),
			Thumbnail:  rec.Get("thumbUrl").String(),
			DisplayURL: rec.Get("webUrl").String(),
			ResultType: search.EngineTypeImage,
			Score:      0.5,
		}
		if item.Title == "" {
			item.Title = item.URL
		}
		if search.IsValidItem(item) {
			items = append(items, item)
		}
		return true
	})
	return items, nil
}
