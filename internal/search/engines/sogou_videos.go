package engines

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/r3e-network/metasearch/internal/platform/logging"
	"github.com/r3e-network/metasearch/internal/search"
)

// SogouVideosEngine is the video-vertical adapter for Sogou.
type SogouVideosEngine struct {
	search.BaseAdapter
	log *logging.EngineLogger
}

func NewSogouVideosEngine() *SogouVideosEngine {
	return &SogouVideosEngine{log: logging.NewEngineLogger("sogou_videos")}
}

func (e *SogouVideosEngine) Info() search.EngineInfo {
	return search.EngineInfo{
		Name:       "sogou_videos",
		Type:       search.EngineTypeVideo,
		Categories: []string{"videos"},
		Capabilities: search.Capabilities{
			Pagination: true, MaxPage: 20, MaxPageSz: 10,
		},
		Shortcut: "sgv",
		Timeout:  8 * time.Second,
		MaxPage:  20,
	}
}

func (e *SogouVideosEngine) Prepare(ctx context.Context, query search.SearchQuery) (*search.FetchParams, error) {
	params := map[string]string{
		"query": query.Text,
		"page":  strconv.Itoa(query.Page),
	}
	fp := search.NewFetchParams(buildQuery("https://www.sogou.com/sogou", mergeVType(params)))
	fp.Headers.Set("User-Agent", "Mozilla/5.0 (compatible; metasearch/1.0)")
	return fp, nil
}

func mergeVType(params map[string]string) map[string]string {
	params["insite"] = ""
	params["ie"] = "utf8"
	params["dp"] = "1"
	params["w"] = "05029901"
	params["sut"] = "1"
	params["sst0"] = "1"
	params["lkt"] = ""
	return params
}

func (e *SogouVideosEngine) Fetch(ctx context.Context, client *search.Client, params *search.FetchParams) (*search.RawResponse, error) {
	raw, err := e.BaseAdapter.Fetch(ctx, client, params)
	if raw != nil {
		e.log.UpstreamStatus(raw.StatusCode, params.URL)
	}
	return raw, err
}

func (e *SogouVideosEngine) Parse(raw *search.RawResponse) ([]search.SearchResultItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Body))
	if err != nil {
		e.log.ParseError(err)
		return nil, fmt.Errorf("%w: %v", search.ErrParse, err)
	}

	results := selectFirst(doc, e.log, "div.vrwrap", "div.rb", ".vt-list li")
	if results.Length() == 0 {
		return nil, nil
	}

	var items []search.SearchResultItem
	results.Each(func(_ int, s *goquery.Selection) {
		titleSel := s.Find("h3 a, a.title").First()
		title := strings.TrimSpace(titleSel.Text())
		href, _ := titleSel.Attr("href")
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
