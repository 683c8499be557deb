// Package metrics implements the Prometheus text-exposition collector and
// a parallel JSON real-time snapshot for dashboards that don't want to
// scrape and parse the Prometheus format.
package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds every Prometheus collector the aggregator exposes.
type Collector struct {
	RequestsTotal       *prometheus.CounterVec
	RequestsSuccess     *prometheus.CounterVec
	RequestsFailed      *prometheus.CounterVec
	RateLimited         prometheus.Counter
	CircuitBreakerTrips prometheus.Counter
	IPBlocked           prometheus.Counter
	ActiveConnections   prometheus.Gauge
	ServiceUptime       prometheus.Gauge
	ResponseTimeMs      *prometheus.HistogramVec

	// realtime is a side-table kept for the JSON snapshot endpoint, which
	// has a different freshness/shape contract than the Prometheus
	// registry and is therefore not read back from it.
	mu               sync.Mutex
	startedAt        time.Time
	realtimeTotal    uint64
	realtimeSuccess  uint64
	realtimeFailed   uint64
	avgResponseTime  float64
	sampleCount      uint64
}

// New registers every collector against the given registerer (pass
// prometheus.DefaultRegisterer in production, a fresh prometheus.NewRegistry()
// in tests).
func New(registerer prometheus.Registerer) *Collector {
	c := &Collector{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "requests_total",
			Help: "Total number of search requests received.",
		}, []string{"route"}),
		RequestsSuccess: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "requests_success",
			Help: "Total number of search requests completed successfully.",
		}, []string{"route"}),
		RequestsFailed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "requests_failed",
			Help: "Total number of search requests that failed.",
		}, []string{"route"}),
		RateLimited: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "rate_limited",
			Help: "Total number of requests rejected by the rate limiter.",
		}),
		CircuitBreakerTrips: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "circuit_breaker_trips",
			Help: "Total number of requests rejected by the circuit breaker.",
		}),
		IPBlocked: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ip_blocked",
			Help: "Total number of requests rejected by the IP filter.",
		}),
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Current number of in-flight HTTP requests.",
		}),
		ServiceUptime: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "service_uptime_seconds",
			Help: "Seconds since the process started.",
		}),
		ResponseTimeMs: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "response_time_ms",
			Help:    "Request latency in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		}, []string{"route"}),
		startedAt: time.Now(),
	}

	if registerer != nil {
		registerer.MustRegister(
			c.RequestsTotal,
			c.RequestsSuccess,
			c.RequestsFailed,
			c.RateLimited,
			c.CircuitBreakerTrips,
			c.IPBlocked,
			c.ActiveConnections,
			c.ServiceUptime,
			c.ResponseTimeMs,
		)
	}

	return c
}

// RecordRequest records one completed request's outcome and latency, and
// updates the realtime cumulative-average side-table under a single write
// lock: avg = (avg*(n-1) + x) / n.
func (c *Collector) RecordRequest(route string, success bool, duration time.Duration) {
	c.RequestsTotal.WithLabelValues(route).Inc()
	if success {
		c.RequestsSuccess.WithLabelValues(route).Inc()
	} else {
		c.RequestsFailed.WithLabelValues(route).Inc()
	}
	c.ResponseTimeMs.WithLabelValues(route).Observe(float64(duration.Milliseconds()))

	c.mu.Lock()
	defer c.mu.Unlock()
	c.realtimeTotal++
	if success {
		c.realtimeSuccess++
	} else {
		c.realtimeFailed++
	}
	c.sampleCount++
	ms := float64(duration.Milliseconds())
	if c.sampleCount == 1 {
		c.avgResponseTime = ms
	} else {
		c.avgResponseTime = (c.avgResponseTime*float64(c.sampleCount-1) + ms) / float64(c.sampleCount)
	}
}

func (c *Collector) RecordRateLimited() { c.RateLimited.Inc() }
func (c *Collector) RecordCircuitTrip() { c.CircuitBreakerTrips.Inc() }
func (c *Collector) RecordIPBlocked()   { c.IPBlocked.Inc() }
func (c *Collector) IncrementInFlight() { c.ActiveConnections.Inc() }
func (c *Collector) DecrementInFlight() { c.ActiveConnections.Dec() }

// RefreshUptime sets the service_uptime_seconds gauge, called by the
// scheduler's 15s refresh job alongside the host-stats sample.
func (c *Collector) RefreshUptime() {
	c.ServiceUptime.Set(time.Since(c.startedAt).Seconds())
}

// Snapshot is the JSON shape served at /api/metrics/realtime.
type Snapshot struct {
	RequestsTotal      uint64  `json:"requests_total"`
	RequestsSuccess    uint64  `json:"requests_success"`
	RequestsFailed     uint64  `json:"requests_failed"`
	AvgResponseTimeMs  float64 `json:"avg_response_time_ms"`
	UptimeSeconds      float64 `json:"uptime_seconds"`
}

func (c *Collector) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return Snapshot{
		RequestsTotal:     c.realtimeTotal,
		RequestsSuccess:   c.realtimeSuccess,
		RequestsFailed:    c.realtimeFailed,
		AvgResponseTimeMs: c.avgResponseTime,
		UptimeSeconds:     time.Since(c.startedAt).Seconds(),
	}
}
