package engines

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/r3e-network/metasearch/internal/platform/logging"
	"github.com/r3e-network/metasearch/internal/search"
)

// BingImagesEngine is the image-vertical adapter for Bing.
type BingImagesEngine struct {
	search.BaseAdapter
	log *logging.EngineLogger
}

func NewBingImagesEngine() *BingImagesEngine {
	return &BingImagesEngine{log: logging.NewEngineLogger("bing_images")}
}

func (e *BingImagesEngine) Info() search.EngineInfo {
	return search.EngineInfo{
		Name:       "bing_images",
		Type:       search.EngineTypeImage,
		Categories: []string{"images"},
		Capabilities: search.Capabilities{
			Pagination: true, TimeRange: true, SafeSearch: true, MaxPage: 10, MaxPageSz: 35,
		},
		Shortcut: "bii",
		Timeout:  8 * time.Second,
		MaxPage:  10,
	}
}

func (e *BingImagesEngine) Prepare(ctx context.Context, query search.SearchQuery) (*search.FetchParams, error) {
	first := (query.Page-1)*query.PageSize + 1
	params := map[string]string{
		"q":     query.Text,
		"first": fmt.Sprintf("%d", first),
	}
	if w, ok := search.TimeRangeWindowFor(query.TimeRange); ok {
		params["qft"] = fmt.Sprintf("+filterui:age-lt%d", w.BingImageQFT)
	}
	fp := search.NewFetchParams(buildQuery("https://www.bing.com/images/search", params))
	fp.Headers.Set("User-Agent", "Mozilla/5.0 (compatible; metasearch/1.0)")
	return fp, nil
}

func (e *BingImagesEngine) Fetch(ctx context.Context, client *search.Client, params *search.FetchParams) (*search.RawResponse, error) {
	raw, err := e.BaseAdapter.Fetch(ctx, client, params)
	if raw != nil {
		e.log.UpstreamStatus(raw.StatusCode, params.URL)
	}
	return raw, err
}

func (e *BingImagesEngine) Parse(raw *search.RawResponse) ([]search.SearchResultItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Body))
	if err != nil {
		e.log.ParseError(err)
		return nil, fmt.Errorf("%w: %v", search.ErrParse, err)
	}

	results := selectFirst(doc, e.log, "a.iusc", ".imgpt a", "div.img_cont a")
	if results.Length() == 0 {
		return nil, nil
	}

	var items []search.SearchResultItem
	results.Each(func(_ int, s *goquery.Selection) {
		m, _ := s.Attr("m")
		murl := extractJSONField(m, "murl")
		turl := extractJSONField(m, "turl")
		title := extractJSONField(m, "t")
		purl := extractJSONField(m, "purl")
		if murl == "" {
			return
		}

		item := search.SearchResultItem{
			Title:      cleanHTMLText(title),
			URL:        murl,
			Thumbnail:  turl,
			DisplayURL: purl,
			ResultType: search.EngineTypeImage,
			Score:      0.5,
		}
		if item.Title == "" {
			item.Title = item.URL
		}
		if search.IsValidItem(item) {
			items = append(items, item)
		}
	})
	return items, nil
}

// extractJSONField does a tolerant, non-strict scan of Bing's inline
// single-quoted pseudo-JSON "m" attribute for a top-level string field,
// since it is not always valid JSON (embedded unescaped quotes in titles).
func extractJSONField(blob, field string) string {
	needle := `"` + field + `":"`
	idx := strings.Index(blob, needle)
	if idx < 0 {
		return ""
	}
	rest := blob[idx+len(needle):]
	end := strings.Index(rest, `","`)
	if end < 0 {
		end = strings.Index(rest, `"}`)
	}
	if end < 0 {
		return ""
	}
	return cleanHTMLText(rest[:end])
}
