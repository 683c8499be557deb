package resilience

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCircuitBreakerTripsAfterFailureThreshold(t *testing.T) {
	cb := New(Config{FailureThreshold: 3, SuccessThreshold: 2, Timeout: time.Minute})

	for i := 0; i < 2; i++ {
		assert.NoError(t, cb.Allow())
		cb.RecordFailure()
	}
	assert.Equal(t, StateClosed, cb.State())

	assert.NoError(t, cb.Allow())
	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
	assert.ErrorIs(t, cb.Allow(), ErrCircuitOpen)
}

func TestCircuitBreakerHalfOpenAfterTimeoutThenRecovers(t *testing.T) {
	cb := New(Config{FailureThreshold: 1, SuccessThreshold: 2, Timeout: 10 * time.Millisecond})

	assert.NoError(t, cb.Allow())
	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())

	time.Sleep(15 * time.Millisecond)
	assert.NoError(t, cb.Allow(), "timeout elapsed, should transition to half-open")
	assert.Equal(t, StateHalfOpen, cb.State())

	// only one probe allowed per half-open window
	assert.ErrorIs(t, cb.Allow(), ErrTooManyRequests)

	cb.RecordSuccess()
	assert.Equal(t, StateHalfOpen, cb.State(), "one success below SuccessThreshold stays half-open")
	cb.RecordSuccess()
	assert.Equal(t, StateClosed, cb.State())
}

func TestCircuitBreakerHalfOpenFailureReopens(t *testing.T) {
	cb := New(Config{FailureThreshold: 1, SuccessThreshold: 2, Timeout: 10 * time.Millisecond})

	assert.NoError(t, cb.Allow())
	cb.RecordFailure()
	time.Sleep(15 * time.Millisecond)
	require.NoError(t, cb.Allow())

	cb.RecordFailure()
	assert.Equal(t, StateOpen, cb.State())
}

func TestCircuitBreakerRecordSuccessResetsFailureCountInClosedState(t *testing.T) {
	cb := New(Config{FailureThreshold: 3, SuccessThreshold: 2, Timeout: time.Minute})

	cb.RecordFailure()
	cb.RecordFailure()
	cb.RecordSuccess()
	cb.RecordFailure()
	cb.RecordFailure()
	assert.Equal(t, StateClosed, cb.State(), "success reset the streak, two more failures shouldn't trip a threshold of 3")
}

func TestCircuitBreakerDefaultsAppliedWhenZero(t *testing.T) {
	cb := New(Config{})
	assert.Equal(t, 5, cb.config.FailureThreshold)
	assert.Equal(t, 2, cb.config.SuccessThreshold)
	assert.Equal(t, 60*time.Second, cb.config.Timeout)
}
