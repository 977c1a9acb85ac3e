package store

import (
	"fmt"
	"sync"
	"time"

	"lazycache/internal/logs"
	"lazycache/internal/metrics"
	"lazycache/internal/numbers"
)

// Callback is invoked when the store discovers that a value has expired.
// It receives the value and its total lifetime in seconds as they were
// just before termination, a reference to the owning store, and a
// reference to itself.
//
// Callbacks fire at most once per entry, ever, and only on discovered
// expiry. Explicit Remove and overwrites never fire them; Clear fires
// them only for entries still alive at clear time.
type Callback[K comparable, V any] func(value V, s *Store[K, V], totalLifetime int64, self Callback[K, V])

// Config controls store construction.
type Config[K comparable, V any] struct {
	// DefaultLifespan is applied by Put and used when callers give no
	// explicit lifespan. Must be non-negative.
	DefaultLifespan time.Duration

	// DefaultCallback is attached to values cached without an explicit
	// callback. May be nil.
	DefaultCallback Callback[K, V]

	// Serialized guards every public operation with a store-wide mutex.
	// When false the store offers no safety net against concurrent use.
	Serialized bool

	// Metrics and Logger are optional; fresh instances are created when nil.
	Metrics *metrics.Registry
	Logger  *logs.Logger
}

// DefaultConfig is the safe-by-default configuration: fifteen-minute
// default lifespan, no default callback, serialized access.
func DefaultConfig[K comparable, V any]() Config[K, V] {
	return Config[K, V]{
		DefaultLifespan: FifteenMinutes,
		Serialized:      true,
	}
}

// Store is a lazily-expiring key–value store.
//
// Design principles:
// - Every public operation funnels through resolve (or sweep), the single
//   point where staleness is detected and enforced.
// - Termination is store-driven: the store removes the mapping, fires the
//   callback, and kills the entry as one step under the lock, so a racing
//   reader can never observe a half-terminated entry.
// - Serialization is one code path: a nil-able mutex acquired by a scoped
//   lock helper, not parallel method bodies.
type Store[K comparable, V any] struct {
	mu *sync.Mutex // nil when the store is not serialized

	cache           map[K]*entry[K, V]
	defaultLifespan time.Duration
	defaultCallback Callback[K, V]

	metrics *metrics.Registry
	logger  *logs.Logger
}

// New creates a store with DefaultConfig.
func New[K comparable, V any]() *Store[K, V] {
	s, err := NewWithConfig(DefaultConfig[K, V]())
	if err != nil {
		// DefaultConfig is always valid.
		panic(err)
	}
	return s
}

// NewWithConfig creates a store with the given configuration. It fails if
// the default lifespan is negative.
func NewWithConfig[K comparable, V any](cfg Config[K, V]) (*Store[K, V], error) {
	lifespan, err := numbers.NonNegative(cfg.DefaultLifespan)
	if err != nil {
		return nil, fmt.Errorf("default lifespan: %w", err)
	}

	var mu *sync.Mutex
	if cfg.Serialized {
		mu = &sync.Mutex{}
	}

	reg := cfg.Metrics
	if reg == nil {
		reg = metrics.NewRegistry()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logs.NewLogger(256, logs.INFO)
	}

	return &Store[K, V]{
		mu:              mu,
		cache:           make(map[K]*entry[K, V]),
		defaultLifespan: lifespan,
		defaultCallback: cfg.DefaultCallback,
		metrics:         reg,
		logger:          logger,
	}, nil
}

// lock acquires the store-wide mutex when serialized mode is on and
// returns the matching release. A no-op pair otherwise. Every public
// operation defers the release, so the lock is dropped on all exit paths,
// validation failures included.
func (s *Store[K, V]) lock() func() {
	if s.mu == nil {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

// resolve is the single point where lazy expiration is enforced. It
// returns the live entry for key, or nil after removing and terminating an
// expired one. No operation may observe an expired entry as alive, so
// everything else is built on resolve or sweep.
func (s *Store[K, V]) resolve(key K) *entry[K, V] {
	e, ok := s.cache[key]
	if !ok {
		return nil
	}
	if e.expired() {
		delete(s.cache, key)
		s.terminateEntry(e)
		s.metrics.Inc(metrics.StoreExpiredTotal)
		s.metrics.Add(metrics.StoreKeysAlive, -1)
		s.logger.Debugf("expired key evicted: %v", key)
		return nil
	}
	return e
}

// sweep applies the same expire-or-keep decision to every entry and
// returns the number still alive. Each expired entry is terminated
// exactly once.
func (s *Store[K, V]) sweep() int {
	alive := 0
	for key, e := range s.cache {
		if e.expired() {
			delete(s.cache, key)
			s.terminateEntry(e)
			s.metrics.Inc(metrics.StoreExpiredTotal)
			s.metrics.Add(metrics.StoreKeysAlive, -1)
			s.logger.Debugf("expired key evicted: %v", key)
			continue
		}
		alive++
	}
	s.metrics.Inc(metrics.SweepRunsTotal)
	return alive
}

// terminateEntry finalizes an entry whose staleness the store discovered
// (or that Clear is evicting while alive). The callback sees the value
// and age captured before termination clears them. Runs with the store
// lock already held in serialized mode.
func (s *Store[K, V]) terminateEntry(e *entry[K, V]) {
	if cb := e.callback; cb != nil {
		value, age := e.get(), e.ageSeconds()
		cb(value, s, age, cb)
		s.metrics.Inc(metrics.CallbacksFiredTotal)
	}
	e.terminate()
}

// Put caches value under key with the store's default lifespan and
// callback. Reports true if the key was new.
func (s *Store[K, V]) Put(key K, value V) (bool, error) {
	unlock := s.lock()
	defer unlock()
	return s.cacheValue(key, value, s.defaultLifespan, s.defaultCallback)
}

// Cache caches value under key for the given lifespan, with the store's
// default callback. Reports true if the key was new.
func (s *Store[K, V]) Cache(key K, value V, lifespan time.Duration) (bool, error) {
	unlock := s.lock()
	defer unlock()
	return s.cacheValue(key, value, lifespan, s.defaultCallback)
}

// CacheWithCallback caches value under key for the given lifespan with an
// explicit expiry callback (may be nil to suppress the store default).
// Reports true if the key was new.
func (s *Store[K, V]) CacheWithCallback(key K, value V, lifespan time.Duration, cb Callback[K, V]) (bool, error) {
	unlock := s.lock()
	defer unlock()
	return s.cacheValue(key, value, lifespan, cb)
}

func (s *Store[K, V]) cacheValue(key K, value V, lifespan time.Duration, cb Callback[K, V]) (bool, error) {
	if isAbsent(value) {
		return false, ErrNilValue
	}
	lifespan, err := numbers.NonNegative(lifespan)
	if err != nil {
		return false, fmt.Errorf("lifespan: %w", err)
	}

	existing := s.resolve(key)
	s.cache[key] = newEntry(value, lifespan, cb)
	s.metrics.Inc(metrics.StorePutsTotal)

	if existing == nil {
		s.metrics.Inc(metrics.StoreKeysAlive)
		return true, nil
	}
	// The overwritten entry is no longer reachable; kill it without a
	// callback, same as an explicit removal.
	existing.terminate()
	return false, nil
}

// Get returns the value for key, or false if the key is absent or its
// lifespan has elapsed. Discovering an expired entry here removes it and
// fires its callback.
func (s *Store[K, V]) Get(key K) (V, bool) {
	unlock := s.lock()
	defer unlock()

	s.metrics.Inc(metrics.StoreGetsTotal)
	e := s.resolve(key)
	if e == nil {
		s.metrics.Inc(metrics.StoreMissesTotal)
		var zero V
		return zero, false
	}
	s.metrics.Inc(metrics.StoreHitsTotal)
	return e.get(), true
}

// GetOrDefault returns the value for key, or def on a miss.
func (s *Store[K, V]) GetOrDefault(key K, def V) V {
	if v, ok := s.Get(key); ok {
		return v
	}
	return def
}

// Extend lengthens (or, with a negative delta, shortens) the remaining
// lifespan of key. Reports false if the key is absent or expired.
func (s *Store[K, V]) Extend(key K, delta time.Duration) bool {
	unlock := s.lock()
	defer unlock()

	e := s.resolve(key)
	if e == nil {
		return false
	}
	e.extend(delta)
	return true
}

// SetRemainingLifespan adjusts key's lifespan so that the time left from
// now equals remaining. Reports false if the key is absent or expired;
// fails before touching any state if remaining is negative.
func (s *Store[K, V]) SetRemainingLifespan(key K, remaining time.Duration) (bool, error) {
	unlock := s.lock()
	defer unlock()

	remaining, err := numbers.NonNegative(remaining)
	if err != nil {
		return false, fmt.Errorf("remaining lifespan: %w", err)
	}
	e := s.resolve(key)
	if e == nil {
		return false, nil
	}
	e.setRemaining(remaining)
	return true, nil
}

// IsAlive reports whether key maps to a live value.
func (s *Store[K, V]) IsAlive(key K) bool {
	unlock := s.lock()
	defer unlock()
	return s.resolve(key) != nil
}

// Contains is an alias for IsAlive.
func (s *Store[K, V]) Contains(key K) bool {
	return s.IsAlive(key)
}

// Remove deletes a mapping and returns its value. The expiry callback
// does NOT fire: the caller is deliberately ending the mapping and
// receives the value directly.
func (s *Store[K, V]) Remove(key K) (V, bool) {
	unlock := s.lock()
	defer unlock()

	e := s.resolve(key)
	if e == nil {
		var zero V
		return zero, false
	}
	delete(s.cache, key)
	value := e.get()
	e.terminate()
	s.metrics.Inc(metrics.StoreRemovedTotal)
	s.metrics.Add(metrics.StoreKeysAlive, -1)
	return value, true
}

// Update replaces the value for a live key, keeping its lifespan and
// callback. Reports false if the key is absent or expired.
func (s *Store[K, V]) Update(key K, newValue V) (bool, error) {
	unlock := s.lock()
	defer unlock()

	if isAbsent(newValue) {
		return false, ErrNilValue
	}
	e := s.resolve(key)
	if e == nil {
		return false, nil
	}
	e.update(newValue)
	return true, nil
}

// RemainingSeconds reports how much longer key will be visible, in whole
// seconds rounded down, or -1 if the key is absent or expired.
func (s *Store[K, V]) RemainingSeconds(key K) int64 {
	unlock := s.lock()
	defer unlock()

	e := s.resolve(key)
	if e == nil {
		return -1
	}
	return e.remainingSeconds()
}

// Size sweeps the store and returns the number of live mappings.
func (s *Store[K, V]) Size() int {
	unlock := s.lock()
	defer unlock()
	return s.sweep()
}

// IsEmpty reports whether the store holds no live mappings.
func (s *Store[K, V]) IsEmpty() bool {
	return s.Size() == 0
}

// Keys sweeps the store and returns the live keys. Order is unspecified.
func (s *Store[K, V]) Keys() []K {
	unlock := s.lock()
	defer unlock()

	alive := s.sweep()
	keys := make([]K, 0, alive)
	for k := range s.cache {
		keys = append(keys, k)
	}
	return keys
}

// Values sweeps the store and returns the live values. Order is
// unspecified.
func (s *Store[K, V]) Values() []V {
	unlock := s.lock()
	defer unlock()

	alive := s.sweep()
	values := make([]V, 0, alive)
	for _, e := range s.cache {
		values = append(values, e.get())
	}
	return values
}

// Clear removes every mapping and returns how many were still alive.
// Callbacks fire only for entries alive at clear time; entries that had
// already expired but were not yet swept are dropped silently and not
// counted.
func (s *Store[K, V]) Clear() int {
	unlock := s.lock()
	defer unlock()

	removed := len(s.cache)
	alive := 0
	for key, e := range s.cache {
		delete(s.cache, key)
		if e.expired() {
			e.terminate()
			s.metrics.Inc(metrics.StoreExpiredTotal)
			continue
		}
		alive++
		s.terminateEntry(e)
	}
	s.metrics.Add(metrics.StoreKeysAlive, -int64(removed))
	s.metrics.Inc(metrics.StoreClearsTotal)
	s.logger.Infof("cleared %d mappings (%d alive)", removed, alive)
	return alive
}

// DefaultLifespan returns the store-wide default lifespan.
func (s *Store[K, V]) DefaultLifespan() time.Duration {
	unlock := s.lock()
	defer unlock()
	return s.defaultLifespan
}

// SetDefaultLifespan replaces the store-wide default lifespan. Fails if d
// is negative.
func (s *Store[K, V]) SetDefaultLifespan(d time.Duration) error {
	unlock := s.lock()
	defer unlock()

	d, err := numbers.NonNegative(d)
	if err != nil {
		return fmt.Errorf("default lifespan: %w", err)
	}
	s.defaultLifespan = d
	return nil
}

// DefaultCallback returns the store-wide default expiry callback.
func (s *Store[K, V]) DefaultCallback() Callback[K, V] {
	unlock := s.lock()
	defer unlock()
	return s.defaultCallback
}

// SetDefaultCallback replaces the store-wide default expiry callback.
// A nil callback disables the default.
func (s *Store[K, V]) SetDefaultCallback(cb Callback[K, V]) {
	unlock := s.lock()
	defer unlock()
	s.defaultCallback = cb
}

// Serialized reports whether operations acquire the store-wide lock.
func (s *Store[K, V]) Serialized() bool {
	return s.mu != nil
}
