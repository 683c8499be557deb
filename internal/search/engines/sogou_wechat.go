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

// SogouWeChatEngine adapts Sogou's WeChat public-account article search
// (weixin.sogou.com), which searches a single closed content platform
// rather than the open web.
type SogouWeChatEngine struct {
	search.BaseAdapter
	log *logging.EngineLogger
}

func NewSogouWeChatEngine() *SogouWeChatEngine {
	return &SogouWeChatEngine{log: logging.NewEngineLogger("sogou_wechat")}
}

func (e *SogouWeChatEngine) Info() search.EngineInfo {
	return search.EngineInfo{
		Name:       "sogou_wechat",
		Type:       search.EngineTypeGeneral,
		Categories: []string{"social media"},
		Capabilities: search.Capabilities{
			Pagination: true, MaxPage: 10, MaxPageSz: 10,
		},
		Shortcut: "sgw",
		Timeout:  8 * time.Second,
		MaxPage:  10,
	}
}

func (e *SogouWeChatEngine) Prepare(ctx context.Context, query search.SearchQuery) (*search.FetchParams, error) {
	params := map[string]string{
		"type":  "2",
		"query": query.Text,
		"page":  strconv.Itoa(query.Page),
	}
	fp := search.NewFetchParams(buildQuery("https://weixin.sogou.com/weixin", params))
	fp.Headers.Set("User-Agent", "Mozilla/5.0 (compatible; metasearch/1.0)")
	return fp, nil
}

func (e *SogouWeChatEngine) Fetch(ctx context.Context, client *search.Client, params *search.FetchParams) (*search.RawResponse, error) {
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

func (e *SogouWeChatEngine) Parse(raw *search.RawResponse) ([]search.SearchResultItem, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(raw.Body))
	if err != nil {
		e.log.ParseError(err)
		return nil, fmt.Errorf("%w: %v", search.ErrParse, err)
	}

	results := selectFirst(doc, e.log, "ul.news-list li", ".news-box li", "li[id^='sogou_vr']")
	if results.Length() == 0 {
		return nil, nil
	}

	var items []search.SearchResultItem
	results.Each(func(_ int, s *goquery.Selection) {
		titleSel := s.Find("h3 a, .txt-box h3 a").First()
		title := strings.TrimSpace(titleSel.Text())
		href, _ := titleSel.Attr("href")
		content := strings.TrimSpace(s.Find("p.txt-info, .txt-box p").First().Text())
		account := strings.TrimSpace(s.Find(".account, .all-time-account").First().Text())

		item := search.SearchResultItem{
			Title:      cleanHTMLText(title),
			URL:        href,
			Content:    cleanHTMLText(content),
			SiteName:   account,
			ResultType: search.EngineTypeGeneral,
			Score:      0.5,
		}
		if search.IsValidItem(item) {
			items = append(items, item)
		}
	})
	return items, nil
}
