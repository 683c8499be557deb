package search

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// scriptedAdapter lets each test dictate exactly what Prepare/Fetch/Parse
// return, bypassing any real network call.
type scriptedAdapter struct {
	name      string
	fetchErr  error
	parseErr  error
	items     []SearchResultItem
	fetchWait time.Duration
}

func (s scriptedAdapter) Info() EngineInfo {
	return EngineInfo{Name: s.name, Type: EngineTypeGeneral}
}

func (s scriptedAdapter) Prepare(ctx context.Context, q SearchQuery) (*FetchParams, error) {
	return NewFetchParams("https://" + s.name + ".example.com"), nil
}

func (s scriptedAdapter) Fetch(ctx context.Context, client *Client, params *FetchParams) (*RawResponse, error) {
	if s.fetchWait > 0 {
		select {
		case <-time.After(s.fetchWait):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if s.fetchErr != nil {
		return nil, s.fetchErr
	}
	return &RawResponse{StatusCode: 200}, nil
}

func (s scriptedAdapter) Parse(raw *RawResponse) ([]SearchResultItem, error) {
	if s.parseErr != nil {
		return nil, s.parseErr
	}
	return s.items, nil
}

func newTestExecutor(adapters ...scriptedAdapter) (*Executor, *Registry) {
	registry := NewRegistry(ModeGlobal, nil)
	for _, a := range adapters {
		registry.Register(a)
	}
	client := NewClient(5 * time.Second)
	executor := NewExecutor(registry, client, 2*time.Second)
	return executor, registry
}

func TestExecutorBatchedAggregatesAcrossEngines(t *testing.T) {
	executor, _ := newTestExecutor(
		scriptedAdapter{name: "bing", items: []SearchResultItem{
			{Title: "result one", URL: "https://a.example.com"},
		}},
		scriptedAdapter{name: "baidu", items: []SearchResultItem{
			{Title: "result two", URL: "https://b.example.com"},
		}},
	)

	resp, err := executor.Batched(context.Background(), SearchRequest{Query: SearchQuery{Text: "test"}})
	require.NoError(t, err)
	assert.Len(t, resp.Result.Items, 2)
	assert.ElementsMatch(t, []string{"bing", "baidu"}, resp.EnginesUsed)
}

func TestExecutorBatchedIsolatesOneEnginesFailure(t *testing.T) {
	executor, registry := newTestExecutor(
		scriptedAdapter{name: "bing", items: []SearchResultItem{
			{Title: "good", URL: "https://a.example.com"},
		}},
		scriptedAdapter{name: "broken", parseErr: ErrParse},
	)

	resp, err := executor.Batched(context.Background(), SearchRequest{Query: SearchQuery{Text: "test"}})
	require.NoError(t, err)
	assert.Len(t, resp.Result.Items, 1)
	assert.Equal(t, []string{"bing"}, resp.EnginesUsed)

	// a parse error is not network-classified, so it must not trip a
	// temporary disable even though the request failed.
	assert.True(t, registry.State("broken").IsAvailable(time.Now()))
}

func TestExecutorBatchedHonorsEngineFilter(t *testing.T) {
	executor, _ := newTestExecutor(
		scriptedAdapter{name: "bing", items: []SearchResultItem{{Title: "x", URL: "https://a.example.com"}}},
		scriptedAdapter{name: "baidu", items: []SearchResultItem{{Title: "y", URL: "https://b.example.com"}}},
	)

	resp, err := executor.Batched(context.Background(), SearchRequest{
		Query:   SearchQuery{Text: "test"},
		Engines: []string{"bing"},
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"bing"}, resp.EnginesUsed)
}

func TestExecutorBatchedAllFailedReturnsCancelledOnExpiredContext(t *testing.T) {
	executor, _ := newTestExecutor(
		scriptedAdapter{name: "slow", fetchWait: 500 * time.Millisecond},
	)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := executor.Batched(ctx, SearchRequest{Query: SearchQuery{Text: "test"}})
	assert.ErrorIs(t, err, ErrCancelled)
}

func TestExecutorStreamDeliversEachEngineThenAggregate(t *testing.T) {
	executor, _ := newTestExecutor(
		scriptedAdapter{name: "bing", items: []SearchResultItem{{Title: "x", URL: "https://a.example.com"}}},
		scriptedAdapter{name: "baidu", items: []SearchResultItem{{Title: "y", URL: "https://b.example.com"}}},
	)

	var streamed []string
	resp, err := executor.Stream(context.Background(), SearchRequest{Query: SearchQuery{Text: "test"}}, func(r SearchResult) {
		streamed = append(streamed, r.EngineName)
	})
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"bing", "baidu"}, streamed)
	assert.Len(t, resp.Result.Items, 2)
}
