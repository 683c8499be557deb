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

// SogouEngine is the general-web HTML adapter for Sogou.
type SogouEngine struct {
	search.BaseAdapter
	log *logging.EngineLogger
}

func NewSogouEngine() *SogouEngine {
	return &SogouEngine{log: logging.NewEngineLogger("sogou")}
}

func (e *SogouEngine) Info() search.EngineInfo {
	return search.EngineInfo{
		Name:       "sogou",
		Type:       search.EngineTypeGeneral,
		Categories: []string{"general"},
		Capabilities: search.Capabilities{
			Pagination: true, TimeRange: true, MaxPage: 20, MaxPageSz: 10,
		},
		Shortcut: "sg",
		Timeout:  8 * time.Second,
		MaxPage:  20,
	}
}

func (e *SogouEngine) Prepare(ctx context.Context, query search.SearchQuery) (*search.FetchParams, error) {
	params := map[string]string{
		"query": query.Text,
		"page":  strconv.Itoa(query.Page),
	}
	if sf := timeRangeOrEmpty(query.TimeRange, func(w search.TimeRangeWindow) string { return w.SogouSFrom }); sf != "" {
		params["s_from"] = sf
	}
	fp := search.NewFetchParams(buildQuery("https://www.sogou.com/web", params))
	fp.Headers.Set("User-Agent", "Mozilla/5.0 (compatible; metasearch/1.0)")
	return fp, nil
}

func (e *SogouEngine) Fetch(ctx context.Context, client *search.Client, params *search.FetchParams) (*search.RawResponse, error) {
	raw, err := e.BaseAdapter.Fetch(ctx, client, params)
	if raw != nil {
		e.log.UpstreamStatus(raw.StatusCode, params.URL)
		if raw.Location != "" && isCaptchaLocation(raw.Location) {
			e.log.CaptchaDetected(raw.Location)
			return raw, search.ErrCaptchaEncountered
		}
	}
	return raw, err
}

func (e *SogouEngine) Parse(raw *search.RawResponse) ([]search.SearchResultItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Body))
	if err != nil {
		e.log.ParseError(err)
		return nil, fmt.Errorf("%w: %v", search.ErrParse, err)
	}

	results := selectFirst(doc, e.log, "div.vrwrap", "div.rb", ".results .result")
	if results.Length() == 0 {
		return nil, nil
	}

	var items []search.SearchResultItem
	results.Each(func(_ int, s *goquery.Selection) {
		titleSel := s.Find("h3 a").First()
		title := strings.TrimSpace(titleSel.Text())
		href, _ := titleSel.Attr("href")
		if href != "" && strings.HasPrefix(href, "/link?") {
			href = "https://www.sogou.com" + href
		}
		content := strings.TrimSpace(s.Find(".str-text-info, .ft").First().Text())

		item := search.SearchResultItem{
			Title:      cleanHTMLText(title),
			URL:        href,
			Content:    cleanHTMLText(content),
			ResultType: search.EngineTypeGeneral,
			Score:      0.5,
		}
		if search.IsValidItem(item) {
			items = append(items, item)
		}
	})
	return items, nil
}
