// Package loader layers read-through loading over a store: a miss fetches
// the value from the backing source, caches it with a TTL, and returns it.
// Concurrent misses for the same key are collapsed into a single fetch.
package loader

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/singleflight"

	"lazycache/internal/logs"
	"lazycache/internal/metrics"
	"lazycache/internal/numbers"
	"lazycache/internal/store"
)

// Fetch retrieves the value for a key from the backing source (a
// database, an API, anything slow enough to be worth caching in front of).
type Fetch[K comparable, V any] func(ctx context.Context, key K) (V, error)

// Config assembles a Loader.
type Config[K comparable, V any] struct {
	Store    *store.Store[K, V]
	Fetch    Fetch[K, V]
	Lifespan time.Duration // lifespan given to loaded values; must be >= 0
	Retry    RetryPolicy

	// Metrics and Logger are optional; fresh instances are created when nil.
	Metrics *metrics.Registry
	Logger  *logs.Logger
}

var (
	errMissingStore = errors.New("loader: store is required")
	errMissingFetch = errors.New("loader: fetch function is required")
)

// Loader is a read-through front for a store.
type Loader[K comparable, V any] struct {
	store    *store.Store[K, V]
	fetch    Fetch[K, V]
	lifespan time.Duration
	retry    RetryPolicy
	group    singleflight.Group
	metrics  *metrics.Registry
	logger   *logs.Logger
}

// New validates the configuration and builds a Loader.
func New[K comparable, V any](cfg Config[K, V]) (*Loader[K, V], error) {
	if cfg.Store == nil {
		return nil, errMissingStore
	}
	if cfg.Fetch == nil {
		return nil, errMissingFetch
	}
	lifespan, err := numbers.NonNegative(cfg.Lifespan)
	if err != nil {
		return nil, fmt.Errorf("loader lifespan: %w", err)
	}

	reg := cfg.Metrics
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logs.NewLogger(256, logs.INFO)
	}

	return &Loader[K, V]{
		store:    cfg.Store,
		fetch:    cfg.Fetch,
		lifespan: lifespan,
		retry:    cfg.Retry,
		metrics:  reg,
		logger:   logger,
	}, nil
}

// GetOrLoad returns the cached value for key, fetching and caching it on
// a miss. Concurrent misses for the same key share one fetch; the
// discovered value is cached with the loader's lifespan.
func (l *Loader[K, V]) GetOrLoad(ctx context.Context, key K) (V, error) {
	if v, ok := l.store.Get(key); ok {
		return v, nil
	}

	v, err, _ := l.group.Do(fmt.Sprintf("%v", key), func() (any, error) {
		// Re-check: another flight may have cached the value while this
		// one was queued.
		if v, ok := l.store.Get(key); ok {
			return v, nil
		}

		fresh, err := l.load(ctx, key)
		if err != nil {
			return nil, err
		}
		if _, err := l.store.Cache(key, fresh, l.lifespan); err != nil {
			return nil, fmt.Errorf("caching loaded value: %w", err)
		}
		return fresh, nil
	})
	if err != nil {
		var zero V
		return zero, err
	}
	return v.(V), nil
}
