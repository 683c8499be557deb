package search

import (
	"context"
	"errors"
	"net"
	"sort"
	"sync"
	"time"
)

// ErrCancelled is returned by Batched/Stream when the ambient context is
// cancelled before any task has completed.
var ErrCancelled = errors.New("cancelled")

// Executor fans a query out to every active engine concurrently, applying
// a per-task deadline and recovering per-engine failures locally so a
// single bad adapter never fails the overall call.
type Executor struct {
	registry       *Registry
	client         *Client
	defaultTimeout time.Duration
}

func NewExecutor(registry *Registry, client *Client, defaultTimeout time.Duration) *Executor {
	return &Executor{registry: registry, client: client, defaultTimeout: defaultTimeout}
}

type engineOutcome struct {
	name     string
	result   SearchResult
	err      error
	duration time.Duration
}

// taskDeadline is min(request.timeout, engine.timeout, default_timeout).
func (e *Executor) taskDeadline(requestTimeout time.Duration, engineTimeout time.Duration) time.Duration {
	d := e.defaultTimeout
	if requestTimeout > 0 && requestTimeout < d {
		d = requestTimeout
	}
	if engineTimeout > 0 && engineTimeout < d {
		d = engineTimeout
	}
	return d
}

func (e *Executor) runOne(ctx context.Context, name string, query SearchQuery, timeout time.Duration) engineOutcome {
	adapter, ok := e.registry.Adapter(name)
	if !ok {
		return engineOutcome{name: name, err: errors.New("unknown engine")}
	}

	taskCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	start := time.Now()
	result, err := e.dispatch(taskCtx, adapter, query)
	elapsed := time.Since(start)

	networkErr := isNetworkClassified(err)
	zeroResults := err == nil && len(result.Items) == 0
	e.registry.RecordOutcome(name, uint64(elapsed.Milliseconds()), err, zeroResults, networkErr)

	return engineOutcome{name: name, result: result, err: err, duration: elapsed}
}

func (e *Executor) dispatch(ctx context.Context, adapter Adapter, query SearchQuery) (SearchResult, error) {
	info := adapter.Info()
	params, err := adapter.Prepare(ctx, query)
	if err != nil {
		return SearchResult{EngineName: info.Name}, err
	}
	raw, err := adapter.Fetch(ctx, e.client, params)
	if err != nil {
		return SearchResult{EngineName: info.Name}, err
	}
	items, err := adapter.Parse(raw)
	if err != nil {
		return SearchResult{EngineName: info.Name}, err
	}
	return SearchResult{EngineName: info.Name, Items: items, TotalResults: len(items)}, nil
}

// isNetworkClassified distinguishes a network-level failure (unreachable,
// bad status, timeout) from a purely local parse error: only the former
// feeds the temporary-disable streak.
func isNetworkClassified(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, ErrParse) || errors.Is(err, ErrCaptchaEncountered) {
		return false
	}
	var statusErr *HTTPStatusError
	if errors.As(err, &statusErr) {
		return true
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return true
	}
	return errors.Is(err, context.DeadlineExceeded)
}

// Batched fans out to every active engine, waits for all tasks, and returns
// the aggregated response. Cancellation stops dispatch of tasks not yet
// started and aborts in-flight ones; partial results are still aggregated.
func (e *Executor) Batched(ctx context.Context, req SearchRequest) (SearchResponse, error) {
	start := time.Now()
	names := e.activeEngineNames(req)

	var wg sync.WaitGroup
	outcomes := make([]engineOutcome, len(names))

	for i, name := range names {
		i, name := i, name
		wg.Add(1)
		go func() {
			defer wg.Done()
			adapterInfo, _ := e.registry.Adapter(name)
			engineTimeout := time.Duration(0)
			if adapterInfo != nil {
				engineTimeout = adapterInfo.Info().Timeout
			}
			deadline := e.taskDeadline(req.Timeout, engineTimeout)
			outcomes[i] = e.runOne(ctx, name, req.Query, deadline)
		}()
	}
	wg.Wait()

	if ctx.Err() != nil && allFailed(outcomes) {
		return SearchResponse{}, ErrCancelled
	}

	resp := e.aggregate(req.Query, outcomes)
	resp.QueryTimeMs = time.Since(start).Milliseconds()
	return resp, nil
}

func allFailed(outcomes []engineOutcome) bool {
	for _, o := range outcomes {
		if o.err == nil {
			return false
		}
	}
	return true
}

// StreamSink receives each successful per-engine result in completion
// order. The aggregated SearchResponse is not passed to the sink; Stream
// returns it once every task has finished.
type StreamSink func(SearchResult)

// Stream performs the identical dispatch to Batched, but delivers each
// engine's SearchResult to sink as soon as it completes, and returns the
// final aggregate once every task has finished.
func (e *Executor) Stream(ctx context.Context, req SearchRequest, sink StreamSink) (SearchResponse, error) {
	start := time.Now()
	names := e.activeEngineNames(req)
	sort.Strings(names) // tasks are launched in name order; delivery to sink
	// follows channel-receive order, and results that complete at the same
	// moment are not reordered by name.

	type indexed struct {
		idx int
		out engineOutcome
	}
	results := make(chan indexed, len(names))

	for i, name := range names {
		i, name := i, name
		go func() {
			adapterInfo, _ := e.registry.Adapter(name)
			engineTimeout := time.Duration(0)
			if adapterInfo != nil {
				engineTimeout = adapterInfo.Info().Timeout
			}
			deadline := e.taskDeadline(req.Timeout, engineTimeout)
			results <- indexed{idx: i, out: e.runOne(ctx, name, req.Query, deadline)}
		}()
	}

	outcomes := make([]engineOutcome, len(names))
	received := 0
	for received < len(names) {
		r := <-results
		outcomes[r.idx] = r.out
		received++
		if sink != nil && r.out.err == nil {
			sink(r.out.result)
		}
	}

	if ctx.Err() != nil && allFailed(outcomes) {
		return SearchResponse{}, ErrCancelled
	}

	resp := e.aggregate(req.Query, outcomes)
	resp.QueryTimeMs = time.Since(start).Milliseconds()
	return resp, nil
}

func (e *Executor) activeEngineNames(req SearchRequest) []string {
	if len(req.Engines) > 0 {
		active := make(map[string]bool)
		for _, n := range e.registry.GetActiveEngines() {
			active[n] = true
		}
		var filtered []string
		for _, n := range req.Engines {
			if active[n] {
				filtered = append(filtered, n)
			}
		}
		return filtered
	}
	return e.registry.GetActiveEngines()
}

func (e *Executor) aggregate(query SearchQuery, outcomes []engineOutcome) SearchResponse {
	var perEngine []SearchResult
	var used []string
	for _, o := range outcomes {
		if o.err == nil {
			perEngine = append(perEngine, o.result)
			used = append(used, o.name)
		}
	}
	aggregated := Aggregate(perEngine, query.Text)
	return SearchResponse{
		Query:       query,
		Result:      aggregated,
		EnginesUsed: used,
	}
}
