package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestCollector(t *testing.T) *Collector {
	t.Helper()
	return New(prometheus.NewRegistry())
}

func TestCollectorRecordRequestCumulativeAverage(t *testing.T) {
	c := newTestCollector(t)

	c.RecordRequest("search", true, 100*time.Millisecond)
	c.RecordRequest("search", true, 200*time.Millisecond)
	c.RecordRequest("search", false, 300*time.Millisecond)

	snap := c.Snapshot()
	assert.Equal(t, uint64(3), snap.RequestsTotal)
	assert.Equal(t, uint64(2), snap.RequestsSuccess)
	assert.Equal(t, uint64(1), snap.RequestsFailed)
	assert.InDelta(t, 200.0, snap.AvgResponseTimeMs, 0.001)
}

func TestCollectorRefreshUptimeAdvancesGauge(t *testing.T) {
	c := newTestCollector(t)
	c.startedAt = time.Now().Add(-5 * time.Second)
	c.RefreshUptime()

	assert.GreaterOrEqual(t, c.Snapshot().UptimeSeconds, 5.0)

	var m dto.Metric
	require.NoError(t, c.ServiceUptime.Write(&m))
	assert.GreaterOrEqual(t, m.GetGauge().GetValue(), 5.0)
}
