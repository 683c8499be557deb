package search

import (
	"context"
	"errors"
	"strings"
)

// ErrCaptchaEncountered is returned by Parse (or Fetch, for redirect-based
// detection) when an anti-bot page is detected. The adapter does not
// attempt to solve it.
var ErrCaptchaEncountered = errors.New("captcha encountered")

// ErrParse is wrapped around any error encountered while parsing a body
// that did not match any of the adapter's tolerated shapes.
var ErrParse = errors.New("parse error")

// Adapter is the three-phase contract every upstream engine implements:
// prepare, fetch, parse, plus a static descriptor.
type Adapter interface {
	Info() EngineInfo
	Prepare(ctx context.Context, query SearchQuery) (*FetchParams, error)
	Fetch(ctx context.Context, client *Client, params *FetchParams) (*RawResponse, error)
	Parse(raw *RawResponse) ([]SearchResultItem, error)
}

// BaseAdapter gives concrete adapters a default Fetch built on the shared
// client, so each adapter only needs to implement Info/Prepare/Parse.
type BaseAdapter struct{}

func (BaseAdapter) Fetch(ctx context.Context, client *Client, params *FetchParams) (*RawResponse, error) {
	return client.Do(ctx, params)
}

// IsValidItem reports whether url is absolute http(s) and title non-empty.
func IsValidItem(item SearchResultItem) bool {
	if item.Title == "" || item.URL == "" {
		return false
	}
	return strings.HasPrefix(item.URL, "http://") || strings.HasPrefix(item.URL, "https://")
}
