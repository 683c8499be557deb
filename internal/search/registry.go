package search

import (
	"context"
	"sync"
	"time"
)

// Mode selects how GetActiveEngines filters the catalog.
type Mode string

const (
	ModeConfigured Mode = "configured"
	ModeGlobal     Mode = "global"
)

// HealthStore is the interface the registry uses to read/write per-engine
// health state. The default implementation is the in-process sharded map
// below; a Redis-backed implementation satisfies the same interface for
// multi-instance deployments.
type HealthStore interface {
	Get(name string) *EngineState
	All() map[string]*EngineState
}

// mirroringHealthStore is implemented by HealthStore backends that push
// mutations out to a shared store (redisHealthStore); the in-memory store
// doesn't need it since its map IS the store of record.
type mirroringHealthStore interface {
	Mirror(ctx context.Context, snap EngineStateSnapshot) error
}

// memoryHealthStore is a concurrent map of per-engine states, each guarded
// by its own row lock (the state's embedded mutex) rather than one global
// lock, so a slow engine's state update never blocks reads of another's.
type memoryHealthStore struct {
	mu     sync.RWMutex
	states map[string]*EngineState
}

func newMemoryHealthStore() *memoryHealthStore {
	return &memoryHealthStore{states: make(map[string]*EngineState)}
}

func (m *memoryHealthStore) Get(name string) *EngineState {
	m.mu.RLock()
	s, ok := m.states[name]
	m.mu.RUnlock()
	if ok {
		return s
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.states[name]; ok {
		return s
	}
	s = NewEngineState(name)
	m.states[name] = s
	return s
}

func (m *memoryHealthStore) All() map[string]*EngineState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[string]*EngineState, len(m.states))
	for k, v := range m.states {
		out[k] = v
	}
	return out
}

// Registry holds the immutable adapter catalog plus the mutable health
// store, and implements the Configured/Global engine-selection modes.
type Registry struct {
	mode Mode

	mu               sync.RWMutex
	configuredOrder  []string
	globalOrder      []string
	engines          map[string]Adapter

	health HealthStore

	FailureThreshold        int
	TemporaryDisableSeconds int
}

// NewRegistry builds an empty registry with the default failure threshold
// (3 consecutive network errors) and back-off window (300s).
func NewRegistry(mode Mode, store HealthStore) *Registry {
	if store == nil {
		store = newMemoryHealthStore()
	}
	return &Registry{
		mode:                    mode,
		engines:                 make(map[string]Adapter),
		health:                  store,
		FailureThreshold:        3,
		TemporaryDisableSeconds: 300,
	}
}

// Register adds an adapter to the catalog. The global order is the
// registration order — treated as hand-maintained configuration data, not
// latency-measured.
func (r *Registry) Register(a Adapter) {
	r.mu.Lock()
	defer r.mu.Unlock()
	name := a.Info().Name
	r.engines[name] = a
	r.globalOrder = append(r.globalOrder, name)
}

// SetConfiguredEngines restricts Configured-mode dispatch to this list.
func (r *Registry) SetConfiguredEngines(names []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.configuredOrder = append([]string(nil), names...)
}

func (r *Registry) Mode() Mode {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.mode
}

func (r *Registry) SetMode(mode Mode) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.mode = mode
}

func (r *Registry) Adapter(name string) (Adapter, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.engines[name]
	return a, ok
}

func (r *Registry) GlobalOrder() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]string(nil), r.globalOrder...)
}

// GetActiveEngines returns the set of engine names the current mode permits
// that are also currently available.
func (r *Registry) GetActiveEngines() []string {
	r.mu.RLock()
	mode := r.mode
	var candidates []string
	if mode == ModeConfigured {
		candidates = append(candidates, r.configuredOrder...)
	} else {
		candidates = append(candidates, r.globalOrder...)
	}
	r.mu.RUnlock()

	now := time.Now()
	active := make([]string, 0, len(candidates))
	for _, name := range candidates {
		state := r.health.Get(name)
		if state.IsAvailable(now) {
			active = append(active, name)
		}
	}
	return active
}

// State returns (creating if necessary) the health record for an engine.
func (r *Registry) State(name string) *EngineState {
	return r.health.Get(name)
}

// Stats returns a point-in-time snapshot of every known engine's state,
// supplementing the live active-name list with full detail.
func (r *Registry) Stats() map[string]EngineStateSnapshot {
	now := time.Now()
	states := r.health.All()
	out := make(map[string]EngineStateSnapshot, len(states))
	for name, s := range states {
		out[name] = s.Snapshot(now)
	}
	return out
}

// EnableEngine clears the operator-disabled flag and any outstanding
// temporary back-off.
func (r *Registry) EnableEngine(name string) {
	r.health.Get(name).SetEnabled(true)
}

// DisableEngine sets the operator-disabled flag independent of automatic
// back-off.
func (r *Registry) DisableEngine(name string) {
	r.health.Get(name).SetEnabled(false)
}

// RecordOutcome applies the network-error-classification rule: a failure
// only escalates into a temporary disable once the consecutive-failure
// streak reaches FailureThreshold, and only for network-classified failures
// (the caller passes networkError=true for transport errors, timeouts and
// 403/429/503 statuses, false for a local parse error or a CAPTCHA).
func (r *Registry) RecordOutcome(name string, responseTimeMs uint64, err error, zeroResults bool, networkError bool) {
	state := r.health.Get(name)
	now := time.Now()

	switch {
	case err == nil && zeroResults:
		state.RecordZeroResults(now)
	case err == nil:
		state.RecordSuccess(responseTimeMs)
	default:
		state.RecordFailure()
		if networkError && state.ConsecutiveFailureCount() >= r.FailureThreshold {
			state.DisableTemporarily(now, time.Duration(r.TemporaryDisableSeconds)*time.Second)
		}
	}

	if m, ok := r.health.(mirroringHealthStore); ok {
		snap := state.Snapshot(now)
		go func() {
			_ = m.Mirror(context.Background(), snap)
		}()
	}
}
