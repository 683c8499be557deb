package search

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEngineStateIsAvailable(t *testing.T) {
	now := time.Now()

	t.Run("enabled and not disabled", func(t *testing.T) {
		s := NewEngineState("bing")
		assert.True(t, s.IsAvailable(now))
	})

	t.Run("operator disabled", func(t *testing.T) {
		s := NewEngineState("bing")
		s.SetEnabled(false)
		assert.False(t, s.IsAvailable(now))
	})

	t.Run("temporarily disabled but deadline passed", func(t *testing.T) {
		s := NewEngineState("bing")
		s.DisableTemporarily(now.Add(-time.Hour), time.Minute)
		assert.True(t, s.IsAvailable(now))
	})

	t.Run("temporarily disabled and still within window", func(t *testing.T) {
		s := NewEngineState("bing")
		s.DisableTemporarily(now, time.Hour)
		assert.False(t, s.IsAvailable(now))
	})
}

func TestEngineStateRecordSuccessClearsBackoff(t *testing.T) {
	s := NewEngineState("baidu")
	s.DisableTemporarily(time.Now(), time.Hour)
	s.ConsecutiveFailures = 3

	s.RecordSuccess(100)

	assert.False(t, s.TemporarilyDisabled)
	assert.Equal(t, 0, s.ConsecutiveFailures)
	assert.Equal(t, uint64(100), s.AvgResponseTimeMs)
}

func TestEngineStateRecordSuccessCumulativeAverage(t *testing.T) {
	s := NewEngineState("yandex")

	s.RecordSuccess(100)
	s.RecordSuccess(200)
	s.RecordSuccess(300)

	// avg after 1: 100, after 2: (100*1+200)/2=150, after 3: (150*2+300)/3=200
	assert.Equal(t, uint64(200), s.AvgResponseTimeMs)
	assert.Equal(t, uint64(3), s.TotalRequests)
	assert.Equal(t, uint64(3), s.SuccessfulRequests)
}

func TestEngineStateRecordZeroResultsExponentialBackoff(t *testing.T) {
	now := time.Now()
	s := NewEngineState("so")

	cases := []int{5, 25, 125, 625, 3125, 15625, 15625} // 7th streak clamps at exponent 5
	for _, wantMinutes := range cases {
		s.RecordZeroResults(now)
		got := s.DisabledUntil.Sub(now)
		assert.Equal(t, time.Duration(wantMinutes)*time.Minute, got)
	}
}

func TestEngineStateConsecutiveFailureCount(t *testing.T) {
	s := NewEngineState("sogou")
	s.RecordFailure()
	s.RecordFailure()
	assert.Equal(t, 2, s.ConsecutiveFailureCount())

	s.RecordSuccess(50)
	assert.Equal(t, 0, s.ConsecutiveFailureCount())
}

func TestEngineStateSnapshotAvailable(t *testing.T) {
	now := time.Now()
	s := NewEngineState("bilibili")
	s.DisableTemporarily(now, time.Hour)

	snap := s.Snapshot(now)
	assert.False(t, snap.Available)
	assert.True(t, snap.TemporarilyDisabled)
	assert.Equal(t, "bilibili", snap.Name)
}
