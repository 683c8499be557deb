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

// BaiduEngine is the general-web HTML adapter for Baidu.
type BaiduEngine struct {
	search.BaseAdapter
	log *logging.EngineLogger
}

func NewBaiduEngine() *BaiduEngine {
	return &BaiduEngine{log: logging.NewEngineLogger("baidu")}
}

func (e *BaiduEngine) Info() search.EngineInfo {
	return search.EngineInfo{
		Name:       "baidu",
		Type:       search.EngineTypeGeneral,
		Categories: []string{"general"},
		Capabilities: search.Capabilities{
			Pagination: true, TimeRange: true, MaxPage: 20, MaxPageSz: 10,
		},
		Shortcut: "bd",
		Timeout:  8 * time.Second,
		MaxPage:  20,
	}
}

func (e *BaiduEngine) Prepare(ctx context.Context, query search.SearchQuery) (*search.FetchParams, error) {
	pn := (query.Page - 1) * query.PageSize
	params := map[string]string{
		"wd": query.Text,
		"pn": strconv.Itoa(pn),
		"rn": strconv.Itoa(query.PageSize),
	}
	if gpc := timeRangeOrEmpty(query.TimeRange, func(w search.TimeRangeWindow) string { return w.BaiduGPC }); gpc != "" {
		params["gpc"] = gpc
	}
	fp := search.NewFetchParams(buildQuery("https://www.baidu.com/s", params))
	fp.Headers.Set("User-Agent", "Mozilla/5.0 (compatible; metasearch/1.0)")
	return fp, nil
}

func (e *BaiduEngine) Fetch(ctx context.Context, client *search.Client, params *search.FetchParams) (*search.RawResponse, error) {
	raw, err := e.BaseAdapter.Fetch(ctx, client, params)
	if raw != nil {
		e.log.UpstreamStatus(raw.StatusCode, params.URL)
		if raw.Location != "" && isCaptchaLocation(raw.Location) {
			e.log.CaptchaDetected(raw.Location)
			return raw, search.ErrCaptchaEncountered
		}
		if isCaptchaBody(raw.Body) {
			e.log.CaptchaDetected("body-sentinel")
			return raw, search.ErrCaptchaEncountered
		}
	}
	return raw, err
}

func (e *BaiduEngine) Parse(raw *search.RawResponse) ([]search.SearchResultItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Body))
	if err != nil {
		e.log.ParseError(err)
		return nil, fmt.Errorf("%w: %v", search.ErrParse, err)
	}

	results := selectFirst(doc, e.log, "div.result.c-container", "div[class*='result-op']", ".result")
	if results.Length() == 0 {
		return nil, nil
	}

	var items []search.SearchResultItem
	results.Each(func(_ int, s *goquery.Selection) {
		titleSel := s.Find("h3 a").First()
		title := strings.TrimSpace(titleSel.Text())
		href, _ := titleSel.Attr("href")
		content := strings.TrimSpace(s.Find(".c-abstract").First().Text())
		if content == "" {
			content = strings.TrimSpace(s.Find("[class*='content']").First().Text())
		}

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
