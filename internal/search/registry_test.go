package search

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeAdapter struct {
	BaseAdapter
	name string
}

func (f fakeAdapter) Info() EngineInfo {
	return EngineInfo{Name: f.name, Type: EngineTypeGeneral}
}

func (f fakeAdapter) Prepare(ctx context.Context, q SearchQuery) (*FetchParams, error) {
	return NewFetchParams("https://" + f.name + ".example.com"), nil
}

func (f fakeAdapter) Parse(raw *RawResponse) ([]SearchResultItem, error) {
	return nil, nil
}

func newTestRegistry(mode Mode, names ...string) *Registry {
	r := NewRegistry(mode, nil)
	for _, n := range names {
		r.Register(fakeAdapter{name: n})
	}
	return r
}

func TestRegistryGlobalModeUsesRegistrationOrder(t *testing.T) {
	r := newTestRegistry(ModeGlobal, "bing", "baidu", "yandex")
	assert.Equal(t, []string{"bing", "baidu", "yandex"}, r.GetActiveEngines())
}

func TestRegistryConfiguredModeRestrictsToList(t *testing.T) {
	r := newTestRegistry(ModeConfigured, "bing", "baidu", "yandex")
	r.SetConfiguredEngines([]string{"yandex", "bing"})
	assert.Equal(t, []string{"yandex", "bing"}, r.GetActiveEngines())
}

func TestRegistryGetActiveEnginesExcludesDisabled(t *testing.T) {
	r := newTestRegistry(ModeGlobal, "bing", "baidu")
	r.DisableEngine("baidu")
	assert.Equal(t, []string{"bing"}, r.GetActiveEngines())
}

func TestRegistryDisableEngineThenEnableEngineRestores(t *testing.T) {
	r := newTestRegistry(ModeGlobal, "bing")
	r.DisableEngine("bing")
	assert.Empty(t, r.GetActiveEngines())

	r.EnableEngine("bing")
	assert.Equal(t, []string{"bing"}, r.GetActiveEngines())
}

func TestRegistryRecordOutcomeParseErrorDoesNotDisable(t *testing.T) {
	r := newTestRegistry(ModeGlobal, "bing")
	r.FailureThreshold = 2

	// a local parse error (networkError=false) never escalates, no matter
	// how many times it repeats.
	r.RecordOutcome("bing", 0, errors.New("parse failed"), false, false)
	r.RecordOutcome("bing", 0, errors.New("parse failed"), false, false)
	r.RecordOutcome("bing", 0, errors.New("parse failed"), false, false)

	assert.Equal(t, []string{"bing"}, r.GetActiveEngines())
}

func TestRegistryRecordOutcomeNetworkErrorDisablesAtThreshold(t *testing.T) {
	r := newTestRegistry(ModeGlobal, "bing")
	r.FailureThreshold = 2

	r.RecordOutcome("bing", 0, errors.New("timeout"), false, true)
	assert.Equal(t, []string{"bing"}, r.GetActiveEngines(), "one failure below threshold stays active")

	r.RecordOutcome("bing", 0, errors.New("timeout"), false, true)
	assert.Empty(t, r.GetActiveEngines(), "second consecutive network failure trips the threshold")
}

func TestRegistryRecordOutcomeSuccessResetsStreak(t *testing.T) {
	r := newTestRegistry(ModeGlobal, "bing")
	r.FailureThreshold = 2

	r.RecordOutcome("bing", 0, errors.New("timeout"), false, true)
	r.RecordOutcome("bing", 120, nil, false, false)

	assert.Equal(t, 0, r.State("bing").ConsecutiveFailureCount())
}

func TestRegistryStatsReflectsAllKnownEngines(t *testing.T) {
	r := newTestRegistry(ModeGlobal, "bing", "baidu")
	_ = r.State("bing")
	_ = r.State("baidu")

	stats := r.Stats()
	assert.Len(t, stats, 2)
	assert.Contains(t, stats, "bing")
	assert.Contains(t, stats, "baidu")
}
