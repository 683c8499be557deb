package search

import (
	"sync"
	"time"
)

// EngineState is the health record per engine, mutated under its own
// exclusive lock on every completion so writes are strictly serialized
// while reads never observe a mid-transition value.
type EngineState struct {
	mu sync.RWMutex

	Name                string
	Enabled             bool
	TemporarilyDisabled bool
	DisabledUntil       time.Time
	ConsecutiveFailures int
	TotalRequests       uint64
	SuccessfulRequests  uint64
	FailedRequests      uint64
	AvgResponseTimeMs   uint64
}

// NewEngineState creates a state record with the engine enabled by default.
func NewEngineState(name string) *EngineState {
	return &EngineState{Name: name, Enabled: true}
}

// IsAvailable reports enabled && !(temporarily_disabled && now < disabled_until).
func (s *EngineState) IsAvailable(now time.Time) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.Enabled {
		return false
	}
	if s.TemporarilyDisabled && now.Before(s.DisabledUntil) {
		return false
	}
	return true
}

// DisableTemporarily sets temporarily_disabled and the deadline.
func (s *EngineState) DisableTemporarily(now time.Time, d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TemporarilyDisabled = true
	s.DisabledUntil = now.Add(d)
}

// ReEnable clears the temporary back-off and resets the failure streak.
func (s *EngineState) ReEnable() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reEnableLocked()
}

func (s *EngineState) reEnableLocked() {
	s.TemporarilyDisabled = false
	s.DisabledUntil = time.Time{}
	s.ConsecutiveFailures = 0
}

// RecordSuccess updates the cumulative-moving-average response time and
// clears any back-off: avg = (avg*(n-1)+x)/n.
func (s *EngineState) RecordSuccess(responseTimeMs uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TotalRequests++
	s.SuccessfulRequests++
	wasDisabled := s.TemporarilyDisabled
	s.ConsecutiveFailures = 0
	if wasDisabled {
		s.reEnableLocked()
	}

	if s.TotalRequests == 1 {
		s.AvgResponseTimeMs = responseTimeMs
	} else {
		s.AvgResponseTimeMs = (s.AvgResponseTimeMs*(s.TotalRequests-1) + responseTimeMs) / s.TotalRequests
	}
}

// RecordFailure records a failed request of any kind (network-classified or
// a local parse error). It does not itself decide whether to trip the
// temporary disable; the registry applies FailureThreshold to the
// resulting streak.
func (s *EngineState) RecordFailure() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.TotalRequests++
	s.FailedRequests++
	s.ConsecutiveFailures++
}

// ConsecutiveFailureCount reads the current streak under the read lock.
func (s *EngineState) ConsecutiveFailureCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.ConsecutiveFailures
}

// RecordZeroResults applies the exponential back-off:
// disable_minutes = 5 * 5^min(consecutive_failures-1, 5).
func (s *EngineState) RecordZeroResults(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.TotalRequests++
	s.ConsecutiveFailures++

	exponent := s.ConsecutiveFailures - 1
	if exponent > 5 {
		exponent = 5
	}
	disableMinutes := 5
	for i := 0; i < exponent; i++ {
		disableMinutes *= 5
	}
	s.TemporarilyDisabled = true
	s.DisabledUntil = now.Add(time.Duration(disableMinutes) * time.Minute)
}

// Snapshot returns a value copy safe to serialize without racing on the
// live mutex.
type EngineStateSnapshot struct {
	Name                string    `json:"name"`
	Enabled             bool      `json:"enabled"`
	TemporarilyDisabled bool      `json:"temporarily_disabled"`
	DisabledUntil       time.Time `json:"disabled_until,omitempty"`
	ConsecutiveFailures int       `json:"consecutive_failures"`
	TotalRequests       uint64    `json:"total_requests"`
	SuccessfulRequests  uint64    `json:"successful_requests"`
	FailedRequests      uint64    `json:"failed_requests"`
	AvgResponseTimeMs   uint64    `json:"avg_response_time_ms"`
	Available           bool      `json:"available"`
}

func (s *EngineState) Snapshot(now time.Time) EngineStateSnapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return EngineStateSnapshot{
		Name:                s.Name,
		Enabled:             s.Enabled,
		TemporarilyDisabled: s.TemporarilyDisabled,
		DisabledUntil:       s.DisabledUntil,
		ConsecutiveFailures: s.ConsecutiveFailures,
		TotalRequests:       s.TotalRequests,
		SuccessfulRequests:  s.SuccessfulRequests,
		FailedRequests:      s.FailedRequests,
		AvgResponseTimeMs:   s.AvgResponseTimeMs,
		Available:           s.Enabled && !(s.TemporarilyDisabled && now.Before(s.DisabledUntil)),
	}
}

func (s *EngineState) SetEnabled(enabled bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if enabled {
		s.reEnableLocked()
	}
	s.Enabled = enabled
}
