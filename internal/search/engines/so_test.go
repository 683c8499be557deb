package engines

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/r3e-network/metasearch/internal/search"
)

const soFixtureHTML = `
<html><body>
<li class="res-list">
	<h3><a href="https://example.com/one">Result One</a></h3>
	<p class="res-desc">First description</p>
</li>
<li class="res-list">
	<h3><a href="https://example.com/two">Result Two</a></h3>
	<p class="res-desc">Second description</p>
</li>
</body></html>`

func TestSoEngineParseExtractsResults(t *testing.T) {
	e := NewSoEngine()
	items, err := e.Parse(&search.RawResponse{Body: []byte(soFixtureHTML)})
	require.NoError(t, err)

	if assert.Len(t, items, 2) {
		assert.Equal(t, "Result One", items[0].Title)
		assert.Equal(t, "https://example.com/one", items[0].URL)
		assert.Equal(t, "First description", items[0].Content)
	}
}

func TestSoEngineParseReturnsNoResultsOnEmptyPage(t *testing.T) {
	e := NewSoEngine()
	items, err := e.Parse(&search.RawResponse{Body: []byte("<html><body></body></html>")})
	require.NoError(t, err)
	assert.Nil(t, items)
}

func TestSoEnginePrepareSetsPageAndQuery(t *testing.T) {
	e := NewSoEngine()
	fp, err := e.Prepare(nil, search.SearchQuery{Text: "golang", Page: 2})
	require.NoError(t, err)
	assert.Contains(t, fp.URL, "q=golang")
	assert.Contains(t, fp.URL, "pn=2")
}
