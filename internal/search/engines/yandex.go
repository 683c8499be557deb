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

// YandexEngine is the general-web HTML adapter for Yandex.
type YandexEngine struct {
	search.BaseAdapter
	log *logging.EngineLogger
}

func NewYandexEngine() *YandexEngine {
	return &YandexEngine{log: logging.NewEngineLogger("yandex")}
}

func (e *YandexEngine) Info() search.EngineInfo {
	return search.EngineInfo{
		Name:       "yandex",
		Type:       search.EngineTypeGeneral,
		Categories: []string{"general"},
		Capabilities: search.Capabilities{
			Pagination: true, MaxPage: 10, MaxPageSz: 10,
		},
		Shortcut: "yx",
		Timeout:  8 * time.Second,
		MaxPage:  10,
	}
}

func (e *YandexEngine) Prepare(ctx context.Context, query search.SearchQuery) (*search.FetchParams, error) {
	params := map[string]string{
		"text": query.Text,
		"p":    strconv.Itoa(query.Page - 1),
	}
	if query.Language != "" {
		params["lr"] = query.Language
	}
	fp := search.NewFetchParams(buildQuery("https://yandex.com/search/", params))
	fp.Headers.Set("User-Agent", "Mozilla/5.0 (compatible; metasearch/1.0)")
	return fp, nil
}

func (e *YandexEngine) Fetch(ctx context.Context, client *search.Client, params *search.FetchParams) (*search.RawResponse, error) {
	raw, err := e.BaseAdapter.Fetch(ctx, client, params)
	if raw != nil {
		e.log.UpstreamStatus(raw.StatusCode, params.URL)
		if isCaptchaBody(raw.Body) {
			e.log.CaptchaDetected("body-sentinel")
			return raw, search.ErrCaptchaEncountered
		}
	}
	return raw, err
}

func (e *YandexEngine) Parse(raw *search.RawResponse) ([]search.SearchResultItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Body))
	if err != nil {
		e.log.ParseError(err)
		return nil, fmt.Errorf("%w: %v", search.ErrParse, err)
	}

	results := selectFirst(doc, e.log, "li.serp-item", ".organic", "div[data-cid]")
	if results.Length() == 0 {
		return nil, nil
	}

	var items []search.SearchResultItem
	results.Each(func(_ int, s *goquery.Selection) {
		titleSel := s.Find("a.organic__url, a.OrganicTitle-Link").First()
		if titleSel.Length() == 0 {
			titleSel = s.Find("a").First()
		}
		title := strings.TrimSpace(s.Find(".organic__title, .OrganicTitleContentSpan").First().Text())
		if title == "" {
			title = strings.TrimSpace(titleSel.Text())
		}
		href, _ := titleSel.Attr("href")
		content := strings.TrimSpace(s.Find(".organic__text, .TextContainer").First().Text())

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
