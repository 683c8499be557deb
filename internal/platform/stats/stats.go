// Package stats collects the host/runtime resource snapshot served at
// /api/stats: goroutine count, Go runtime memory statistics, and
// host-level CPU/memory utilization.
package stats

import (
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/mem"
)

// Snapshot is the JSON shape /api/stats returns.
type Snapshot struct {
	Goroutines     int       `json:"goroutines"`
	HeapAllocBytes uint64    `json:"heap_alloc_bytes"`
	SysBytes       uint64    `json:"sys_bytes"`
	NumGC          uint32    `json:"num_gc"`
	CPUPercent     float64   `json:"host_cpu_percent"`
	MemPercent     float64   `json:"host_mem_percent"`
	SampledAt      time.Time `json:"sampled_at"`
}

// Collector holds the last sample under a lock, refreshed on a cadence by
// the scheduler rather than recomputed on every request, since host CPU
// sampling briefly blocks.
type Collector struct {
	mu   sync.RWMutex
	last Snapshot
}

func NewCollector() *Collector {
	return &Collector{}
}

// Refresh samples runtime and host stats and stores the result. cpu.Percent
// with a nonzero interval blocks for that duration, so this should only be
// called from the periodic scheduler job, never inline in a request path.
func (c *Collector) Refresh(sampleWindow time.Duration) {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)

	cpuPct := 0.0
	if pcts, err := cpu.Percent(sampleWindow, false); err == nil && len(pcts) > 0 {
		cpuPct = pcts[0]
	}
	memPct := 0.0
	if vm, err := mem.VirtualMemory(); err == nil {
		memPct = vm.UsedPercent
	}

	snap := Snapshot{
		Goroutines:     runtime.NumGoroutine(),
		HeapAllocBytes: ms.HeapAlloc,
		SysBytes:       ms.Sys,
		NumGC:          ms.NumGC,
		CPUPercent:     cpuPct,
		MemPercent:     memPct,
		SampledAt:      time.Now(),
	}

	c.mu.Lock()
	c.last = snap
	c.mu.Unlock()
}

func (c *Collector) Snapshot() Snapshot {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.last
}
