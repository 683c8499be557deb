package search

import (
	"context"
	"sync"

	"github.com/go-redis/redis/v8"
)

// redisHealthStore satisfies HealthStore by keeping the live, mutex-guarded
// EngineState objects in-process (the lock-per-row contract is still
// required for correctness) while mirroring each recorded outcome out to a
// Redis hash. Only the operator enabled flag is read back, when an engine
// is first looked up; temporary back-off and failure counts are written but
// not shared between instances. It is wired in only when StateBackendConfig selects
// "redis"; the in-memory store remains the default.
type redisHealthStore struct {
	rdb *redis.Client

	mu     sync.RWMutex
	states map[string]*EngineState
}

// NewRedisHealthStore builds a HealthStore backed by the given Redis
// address. Connection errors surface lazily on first use rather than at
// construction, matching how the in-memory store has no fallible
// constructor either.
func NewRedisHealthStore(addr string) HealthStore {
	return &redisHealthStore{
		rdb:    redis.NewClient(&redis.Options{Addr: addr}),
		states: make(map[string]*EngineState),
	}
}

func (r *redisHealthStore) Get(name string) *EngineState {
	r.mu.RLock()
	s, ok := r.states[name]
	r.mu.RUnlock()
	if ok {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.states[name]; ok {
		return s
	}
	s = NewEngineState(name)
	r.hydrate(name, s)
	r.states[name] = s
	return s
}

func (r *redisHealthStore) All() map[string]*EngineState {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make(map[string]*EngineState, len(r.states))
	for k, v := range r.states {
		out[k] = v
	}
	return out
}

// hydrate best-effort restores a known engine's operator enabled flag from
// the shared Redis hash, so a freshly-started instance does not re-open an
// engine an operator disabled on another instance. Temporary back-off is
// not restored.
func (r *redisHealthStore) hydrate(name string, s *EngineState) {
	ctx := context.Background()
	key := "metasearch:engine:" + name
	vals, err := r.rdb.HGetAll(ctx, key).Result()
	if err != nil || len(vals) == 0 {
		return
	}
	if vals["enabled"] == "0" {
		s.Enabled = false
	}
}

// Mirror pushes the current snapshot's disable state to Redis so other
// instances observe it on their next Get. Called by the registry after
// RecordOutcome mutates the state, in its own goroutine so it never blocks
// the request path; the caller discards any error.
func (r *redisHealthStore) Mirror(ctx context.Context, snap EngineStateSnapshot) error {
	key := "metasearch:engine:" + snap.Name
	enabled := "1"
	if !snap.Enabled {
		enabled = "0"
	}
	return r.rdb.HSet(ctx, key, map[string]interface{}{
		"enabled":              enabled,
		"temporarily_disabled": snap.TemporarilyDisabled,
		"consecutive_failures": snap.ConsecutiveFailures,
	}).Err()
}
