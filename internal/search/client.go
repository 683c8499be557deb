package search

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	platformhttp "github.com/r3e-network/metasearch/internal/platform/httputil"
)

// Client is the single pooled HTTP client threaded by reference into every
// engine adapter. It is constructed once at startup and never mutated; a
// per-call timeout override is applied by copying the underlying
// *http.Client rather than touching the shared instance.
type Client struct {
	http *http.Client
}

// NewClient builds the shared client with a TLS-1.2-floor transport and the
// given default timeout. Redirects are not followed, so a 3xx response
// reaches the adapter with its Location header.
func NewClient(defaultTimeout time.Duration) *Client {
	hc := platformhttp.NewPooledClient(defaultTimeout)
	hc.CheckRedirect = func(*http.Request, []*http.Request) error {
		return http.ErrUseLastResponse
	}
	return &Client{http: hc}
}

// FetchParams is mutated by an adapter's Prepare phase and consumed by Fetch.
type FetchParams struct {
	URL     string
	Method  string
	Headers http.Header
	Cookies []*http.Cookie
	Timeout time.Duration // zero means "use the client default"
}

func NewFetchParams(url string) *FetchParams {
	return &FetchParams{
		URL:     url,
		Method:  http.MethodGet,
		Headers: make(http.Header),
	}
}

// RawResponse is what Fetch hands to Parse.
type RawResponse struct {
	StatusCode int
	Header     http.Header
	Body       []byte
	Location   string // preserved on 3xx for anti-bot / CAPTCHA detection
}

// HTTPStatusError reports the distinguishable upstream failure kinds
// (Kind "RateLimited" for 429, "Blocked" for 403, "Unavailable" for 503).
type HTTPStatusError struct {
	Kind       string
	StatusCode int
	URL        string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("%s: upstream returned %d for %s", e.Kind, e.StatusCode, e.URL)
}

func classifyStatus(status int, url string) error {
	switch status {
	case http.StatusForbidden:
		return &HTTPStatusError{Kind: "Blocked", StatusCode: status, URL: url}
	case http.StatusTooManyRequests:
		return &HTTPStatusError{Kind: "RateLimited", StatusCode: status, URL: url}
	case http.StatusServiceUnavailable:
		return &HTTPStatusError{Kind: "Unavailable", StatusCode: status, URL: url}
	}
	return nil
}

// Do performs the HTTP exchange described by params with the shared client,
// honoring ctx cancellation and params.Timeout if set.
func (c *Client) Do(ctx context.Context, params *FetchParams) (*RawResponse, error) {
	httpClient := c.http
	if params.Timeout > 0 {
		httpClient = platformhttp.CopyWithTimeout(c.http, params.Timeout)
	}

	req, err := http.NewRequestWithContext(ctx, params.Method, params.URL, nil)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	for k, vs := range params.Headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	for _, ck := range params.Cookies {
		req.AddCookie(ck)
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}

	raw := &RawResponse{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       body,
	}
	if resp.StatusCode >= 300 && resp.StatusCode < 400 {
		raw.Location = resp.Header.Get("Location")
	}

	if err := classifyStatus(resp.StatusCode, params.URL); err != nil {
		return raw, err
	}
	return raw, nil
}
