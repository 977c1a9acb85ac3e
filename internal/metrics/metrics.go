package metrics

import (
	"sync"
	"sync/atomic"
)

// MetricKey is a strongly typed metric identifier.
type MetricKey string

// Metric keys (centralized)
const (
	// Store
	StoreKeysAlive    MetricKey = "store_keys_alive"
	StorePutsTotal    MetricKey = "store_puts_total"
	StoreGetsTotal    MetricKey = "store_gets_total"
	StoreHitsTotal    MetricKey = "store_hits_total"
	StoreMissesTotal  MetricKey = "store_misses_total"
	StoreExpiredTotal MetricKey = "store_expired_total"
	StoreRemovedTotal MetricKey = "store_removed_total"
	StoreClearsTotal  MetricKey = "store_clears_total"

	// Sweeps and expiry callbacks
	SweepRunsTotal      MetricKey = "sweep_runs_total"
	CallbacksFiredTotal MetricKey = "callbacks_fired_total"

	// Read-through loader
	LoaderLoadsTotal        MetricKey = "loader_loads_total"
	LoaderLoadFailuresTotal MetricKey = "loader_load_failures_total"
	LoaderRetriesTotal      MetricKey = "loader_retries_total"
)

// Registry stores all metrics.
type Registry struct {
	mu       sync.RWMutex
	counters map[MetricKey]*int64
}

// NewRegistry creates a metrics registry.
func NewRegistry() *Registry {
	return &Registry{
		counters: make(map[MetricKey]*int64),
	}
}

// Inc increments a metric by 1.
func (r *Registry) Inc(key MetricKey) {
	r.Add(key, 1)
}

// Add increments a metric by delta.
func (r *Registry) Add(key MetricKey, delta int64) {
	r.mu.RLock()
	ptr, ok := r.counters[key]
	r.mu.RUnlock()

	if ok {
		atomic.AddInt64(ptr, delta)
		return
	}

	// Slow path: metric not yet initialized
	r.mu.Lock()
	defer r.mu.Unlock()

	// Double-check after acquiring write lock
	if ptr, ok = r.counters[key]; ok {
		atomic.AddInt64(ptr, delta)
		return
	}

	var val int64
	r.counters[key] = &val
	atomic.AddInt64(&val, delta)
}
