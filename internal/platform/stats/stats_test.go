package stats

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCollectorRefreshPopulatesSnapshot(t *testing.T) {
	c := NewCollector()
	c.Refresh(0) // zero window: cpu.Percent returns an instantaneous (possibly zero) reading

	snap := c.Snapshot()
	assert.Greater(t, snap.Goroutines, 0)
	assert.Greater(t, snap.SysBytes, uint64(0))
	assert.WithinDuration(t, time.Now(), snap.SampledAt, 5*time.Second)
}

func TestCollectorSnapshotBeforeRefreshIsZeroValue(t *testing.T) {
	c := NewCollector()
	snap := c.Snapshot()
	assert.Equal(t, 0, snap.Goroutines)
	assert.True(t, snap.SampledAt.IsZero())
}
