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

// SoEngine is the general-web HTML adapter for 360 Search (so.com).
type SoEngine struct {
	search.BaseAdapter
	log *logging.EngineLogger
}

func NewSoEngine() *SoEngine {
	return &SoEngine{log: logging.NewEngineLogger("so")}
}

func (e *SoEngine) Info() search.EngineInfo {
	return search.EngineInfo{
		Name:       "so",
		Type:       search.EngineTypeGeneral,
		Categories: []string{"general"},
		Capabilities: search.Capabilities{
			Pagination: true, TimeRange: true, MaxPage: 20, MaxPageSz: 10,
		},
		Shortcut: "so",
		Timeout:  8 * time.Second,
		MaxPage:  20,
	}
}

func (e *SoEngine) Prepare(ctx context.Context, query search.SearchQuery) (*search.FetchParams, error) {
	params := map[string]string{
		"q":  query.Text,
		"pn": strconv.Itoa(query.Page),
	}
	if adv := timeRangeOrEmpty(query.TimeRange, func(w search.TimeRangeWindow) string { return w.SoAdv }); adv != "" {
		params["adv_t"] = adv
	}
	fp := search.NewFetchParams(buildQuery("https://www.so.com/s", params))
	fp.Headers.Set("User-Agent", "Mozilla/5.0 (compatible; metasearch/1.0)")
	return fp, nil
}

func (e *SoEngine) Fetch(ctx context.Context, client *search.Client, params *search.FetchParams) (*search.RawResponse, error) {
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

func (e *SoEngine) Parse(raw *search.RawResponse) ([]search.SearchResultItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Body))
	if err != nil {
		e.log.ParseError(err)
		return nil, fmt.Errorf("%w: %v", search.ErrParse, err)
	}

	results := selectFirst(doc, e.log, "li.res-list", "div.result", "li[id^='r-']")
	if results.Length() == 0 {
		return nil, nil
	}

	var items []search.SearchResultItem
	results.Each(func(_ int, s *goquery.Selection) {
		titleSel := s.Find("h3 a").First()
		title := strings.TrimSpace(titleSel.Text())
		href, _ := titleSel.Attr("href")
		content := strings.TrimSpace(s.Find("p.res-desc, .res-desc").First().Text())

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
