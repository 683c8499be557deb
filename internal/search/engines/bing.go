package engines

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/r3e-network/metasearch/internal/platform/logging"
	"github.com/r3e-network/metasearch/internal/search"
)

// BingEngine is the general-web HTML adapter for Bing.
type BingEngine struct {
	search.BaseAdapter
	log *logging.EngineLogger
}

func NewBingEngine() *BingEngine {
	return &BingEngine{log: logging.NewEngineLogger("bing")}
}

func (e *BingEngine) Info() search.EngineInfo {
	return search.EngineInfo{
		Name:       "bing",
		Type:       search.EngineTypeGeneral,
		Categories: []string{"general"},
		Capabilities: search.Capabilities{
			Pagination: true, TimeRange: true, SafeSearch: true, MaxPage: 20, MaxPageSz: 10,
		},
		Shortcut: "bi",
		Timeout:  8 * time.Second,
		MaxPage:  20,
	}
}

func (e *BingEngine) Prepare(ctx context.Context, query search.SearchQuery) (*search.FetchParams, error) {
	first := (query.Page-1)*query.PageSize + 1
	params := map[string]string{
		"q":     query.Text,
		"first": fmt.Sprintf("%d", first),
	}
	if f := timeRangeOrEmpty(query.TimeRange, func(w search.TimeRangeWindow) string { return w.BingFilter }); f != "" {
		params["filters"] = f
	}
	fp := search.NewFetchParams(buildQuery("https://www.bing.com/search", params))
	fp.Headers.Set("User-Agent", "Mozilla/5.0 (compatible; metasearch/1.0)")
	if query.Region != "" {
		fp.Cookies = append(fp.Cookies, &http.Cookie{Name: "SRCHHPGUSR", Value: "region=" + query.Region})
	}
	return fp, nil
}

func (e *BingEngine) Fetch(ctx context.Context, client *search.Client, params *search.FetchParams) (*search.RawResponse, error) {
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

func (e *BingEngine) Parse(raw *search.RawResponse) ([]search.SearchResultItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Body))
	if err != nil {
		e.log.ParseError(err)
		return nil, fmt.Errorf("%w: %v", search.ErrParse, err)
	}

	results := selectFirst(doc, e.log, "li.b_algo", "#b_results > li", ".b_algo")
	if results.Length() == 0 {
		return nil, nil // zero-result response, not an error
	}

	var items []search.SearchResultItem
	results.Each(func(_ int, s *goquery.Selection) {
		titleSel := s.Find("h2 a").First()
		if titleSel.Length() == 0 {
			titleSel = s.Find("a").First()
		}
		title := strings.TrimSpace(titleSel.Text())
		href, _ := titleSel.Attr("href")
		href = decodeBingRedirect(href)
		content := strings.TrimSpace(s.Find(".b_caption p").First().Text())

		item := search.SearchResultItem{
			Title:      title,
			URL:        href,
			Content:    content,
			ResultType: search.EngineTypeGeneral,
			Score:      0.5,
		}
		if search.IsValidItem(item) {
			items = append(items, item)
		}
	})
	return items, nil
}
