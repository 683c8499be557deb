// Package engines implements the upstream search-engine adapters, each
// satisfying search.Adapter's three-phase prepare/fetch/parse contract.
package engines

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"html"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/r3e-network/metasearch/internal/platform/logging"
	"github.com/r3e-network/metasearch/internal/search"
)

// selectFirst runs each selector in order until one yields at least one
// node, tolerating markup drift across a chain of fallback selectors. The
// selector actually used is reported to log so the drift is visible
// without failing the call.
func selectFirst(doc *goquery.Document, elog *logging.EngineLogger, selectors ...string) *goquery.Selection {
	for i, sel := range selectors {
		nodes := doc.Find(sel)
		if nodes.Length() > 0 {
			if i > 0 && elog != nil {
				elog.FallbackSelectorUsed(sel)
			}
			return nodes
		}
	}
	return &goquery.Selection{}
}

// cleanHTMLText strips tags, decodes common HTML entities and collapses
// whitespace. Originally the Bilibili title-cleansing rule, applied
// generically to any adapter that needs it.
func cleanHTMLText(s string) string {
	s = stripTagsRe.ReplaceAllString(s, "")
	replacer := strings.NewReplacer(
		"&quot;", `"`, "&amp;", "&", "&lt;", "<", "&gt;", ">", "&#39;", "'", "&nbsp;", " ",
	)
	s = replacer.Replace(s)
	s = html.UnescapeString(s)
	s = whitespaceRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

var (
	stripTagsRe  = regexp.MustCompile(`<[^>]*>`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	keywordRe    = regexp.MustCompile(`<em class="keyword">(.*?)</em>`)
)

// extractKeywords pulls the literal text inside <em class="keyword">…</em>
// spans (Bilibili title cleansing), comma-joined.
func extractKeywords(raw string) string {
	matches := keywordRe.FindAllStringSubmatch(raw, -1)
	if len(matches) == 0 {
		return ""
	}
	words := make([]string, 0, len(matches))
	for _, m := range matches {
		words = append(words, cleanHTMLText(m[1]))
	}
	return strings.Join(words, ",")
}

// decodeBingRedirect decodes Bing's click-tracking redirect: for a link
// with host www.bing.com and path /ck/a, the real URL is base64url-decoded
// from the "u" query parameter after dropping the leading "a1" and
// re-padding to a multiple of 4. A decode failure falls through to the
// encoded URL unchanged.
func decodeBingRedirect(link string) string {
	u, err := url.Parse(link)
	if err != nil || u.Host != "www.bing.com" || u.Path != "/ck/a" {
		return link
	}
	encoded := u.Query().Get("u")
	if len(encoded) < 2 {
		return link
	}
	encoded = encoded[2:] // drop leading "a1"
	if rem := len(encoded) % 4; rem != 0 {
		encoded += strings.Repeat("=", 4-rem)
	}
	decoded, err := base64.URLEncoding.DecodeString(encoded)
	if err != nil {
		return link
	}
	return string(decoded)
}

// captchaSentinels are substrings/redirect targets indicating an upstream
// anti-bot page.
var captchaSentinels = []string{"wappass.baidu.com/static/captcha", "please verify", "captcha"}

func isCaptchaLocation(location string) bool {
	lower := strings.ToLower(location)
	for _, s := range captchaSentinels {
		if strings.Contains(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

func isCaptchaBody(body []byte) bool {
	trimmed := strings.TrimSpace(string(body))
	lower := strings.ToLower(trimmed)
	for _, s := range captchaSentinels {
		if strings.Contains(lower, strings.ToLower(s)) {
			return true
		}
	}
	return false
}

// randomHex16 returns a fresh 16-hex-character value, used for the
// Bilibili buvid3 cookie's random prefix.
func randomHex16() string {
	buf := make([]byte, 8)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}

func buildQuery(base string, params map[string]string) string {
	q := url.Values{}
	for k, v := range params {
		if v != "" {
			q.Set(k, v)
		}
	}
	sep := "?"
	if strings.Contains(base, "?") {
		sep = "&"
	}
	if len(q) == 0 {
		return base
	}
	return fmt.Sprintf("%s%s%s", base, sep, q.Encode())
}

// timeRangeOrEmpty returns the translation-table value selected by get, or
// "" for TimeRangeAny/TimeRangeHour which the canonical table does not cover.
func timeRangeOrEmpty(tr search.TimeRange, get func(search.TimeRangeWindow) string) string {
	w, ok := search.TimeRangeWindowFor(tr)
	if !ok {
		return ""
	}
	return get(w)
}
