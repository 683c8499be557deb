package engines

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/tidwall/gjson"

	"github.com/r3e-network/metasearch/internal/platform/logging"
	"github.com/r3e-network/metasearch/internal/search"
)

// BilibiliEngine adapts Bilibili's video-search JSON API. It requires a
// buvid3 cookie to avoid the anonymous-client rate limit, generated fresh
// per request.
type BilibiliEngine struct {
	search.BaseAdapter
	log *logging.EngineLogger
}

func NewBilibiliEngine() *BilibiliEngine {
	return &BilibiliEngine{log: logging.NewEngineLogger("bilibili")}
}

func (e *BilibiliEngine) Info() search.EngineInfo {
	return search.EngineInfo{
		Name:       "bilibili",
		Type:       search.EngineTypeVideo,
		Categories: []string{"videos"},
		Capabilities: search.Capabilities{
			Pagination: true, MaxPage: 20, MaxPageSz: 20,
		},
		Shortcut: "bl",
		Timeout:  8 * time.Second,
		MaxPage:  20,
	}
}

func (e *BilibiliEngine) Prepare(ctx context.Context, query search.SearchQuery) (*search.FetchParams, error) {
	params := map[string]string{
		"search_type": "video",
		"keyword":     query.Text,
		"page":        strconv.Itoa(query.Page),
	}
	fp := search.NewFetchParams(buildQuery("https://api.bilibili.com/x/web-interface/search/type", params))
	fp.Headers.Set("User-Agent", "Mozilla/5.0 (compatible; metasearch/1.0)")
	fp.Headers.Set("Referer", "https://www.bilibili.com/")
	fp.Cookies = append(fp.Cookies,
		&http.Cookie{Name: "buvid3", Value: randomHex16() + "infoc"},
		&http.Cookie{Name: "innersign", Value: "0"},
		&http.Cookie{Name: "i-wanna-go-back", Value: "-1"},
		&http.Cookie{Name: "b_ut", Value: "7"},
		&http.Cookie{Name: "FEED_LIVE_VERSION", Value: "V8"},
		&http.Cookie{Name: "header_theme_version", Value: "undefined"},
		&http.Cookie{Name: "home_feed_column", Value: "4"},
	)
	return fp, nil
}

func (e *BilibiliEngine) Fetch(ctx context.Context, client *search.Client, params *search.FetchParams) (*search.RawResponse, error) {
	raw, err := e.BaseAdapter.Fetch(ctx, client, params)
	if raw != nil {
		e.log.UpstreamStatus(raw.StatusCode, params.URL)
	}
	return raw, err
}

func (e *BilibiliEngine) Parse(raw *search.RawResponse) ([]search.SearchResultItem, error) {
	if !gjson.ValidBytes(raw.Body) {
		return nil, fmt.Errorf("%w: non-JSON response", search.ErrParse)
	}
	if code := gjson.GetBytes(raw.Body, "code").Int(); code != 0 {
		return nil, fmt.Errorf("%w: bilibili error code %d", search.ErrParse, code)
	}

	results := gjson.GetBytes(raw.Body, "data.result")
	if !results.IsArray() {
		return nil, nil
	}

	var items []search.SearchResultItem
	results.ForEach(func(_, rec gjson.Result) bool {
		rawTitle := rec.Get("title").String()
		bvid := rec.Get("bvid").String()
		url := ""
		if bvid != "" {
			url = "https://www.bilibili.com/video/" + bvid
		}

		item := search.SearchResultItem{
			Title:      cleanHTMLText(rawTitle),
			URL:        url,
			Content:    cleanHTMLText(rec.Get("description").String()),
			SiteName:   rec.Get("author").String(),
			Thumbnail:  "https:" + rec.Get("pic").String(),
			ResultType: search.EngineTypeVideo,
			Score:      0.5,
		}
		if keywords := extractKeywords(rawTitle); keywords != "" {
			item.Metadata = map[string]string{"keywords": keywords}
		}
		if search.IsValidItem(item) {
			items = append(items, item)
		}
		return true
	})
	return items, nil
}
