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

// BingVideosEngine is the video-vertical adapter for Bing.
type BingVideosEngine struct {
	search.BaseAdapter
	log *logging.EngineLogger
}

func NewBingVideosEngine() *BingVideosEngine {
	return &BingVideosEngine{log: logging.NewEngineLogger("bing_videos")}
}

func (e *BingVideosEngine) Info() search.EngineInfo {
	return search.EngineInfo{
		Name:       "bing_videos",
		Type:       search.EngineTypeVideo,
		Categories: []string{"videos"},
		Capabilities: search.Capabilities{
			Pagination: true, TimeRange: true, MaxPage: 10, MaxPageSz: 35,
		},
		Shortcut: "biv",
		Timeout:  8 * time.Second,
		MaxPage:  10,
	}
}

func (e *BingVideosEngine) Prepare(ctx context.Context, query search.SearchQuery) (*search.FetchParams, error) {
	first := (query.Page-1)*query.PageSize + 1
	params := map[string]string{
		"q":     query.Text,
		"first": fmt.Sprintf("%d", first),
	}
	fp := search.NewFetchParams(buildQuery("https://www.bing.com/videos/search", params))
	fp.Headers.Set("User-Agent", "Mozilla/5.0 (compatible; metasearch/1.0)")
	return fp, nil
}

func (e *BingVideosEngine) Fetch(ctx context.Context, client *search.Client, params *search.FetchParams) (*search.RawResponse, error) {
	raw, err := e.BaseAdapter.Fetch(ctx, client, params)
	if raw != nil {
		e.log.UpstreamStatus(raw.StatusCode, params.URL)
	}
	return raw, err
}

func (e *BingVideosEngine) Parse(raw *search.RawResponse) ([]search.SearchResultItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Body))
	if err != nil {
		e.log.ParseError(err)
		return nil, fmt.Errorf("%w: %v", search.ErrParse, err)
	}

	results := selectFirst(doc, e.log, "div.dg_u", "div.mc_vtvc", "div[class*='vrHvp']")
	if results.Length() == 0 {
		return nil, nil
	}

	var items []search.SearchResultItem
	results.Each(func(_ int, s *goquery.Selection) {
		a := s.Find("a.mc_vtvc_link, a").First()
		href, _ := a.Attr("href")
		if href != "" && !strings.HasPrefix(href, "http") {
			href = "https://www.bing.com" + href
		}
		title := strings.TrimSpace(s.Find(".mc_vtvc_title, [class*='title']").First().Text())
		thumb, _ := s.Find("img").First().Attr("src")

		item := search.SearchResultItem{
			Title:      cleanHTMLText(title),
			URL:        href,
			Thumbnail:  thumb,
			ResultType: search.EngineTypeVideo,
			Score:      0.5,
		}
		if search.IsValidItem(item) {
			items = append(items, item)
		}
	})
	return items, nil
}
