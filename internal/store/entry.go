package store

import (
	"math"
	"time"
)

// entry pairs a single cached value with its expiry bookkeeping.
//
// Design choices:
// - birth is a monotonic time.Now() reading, so wall-clock adjustments can
//   neither resurrect a value nor kill it early.
// - lifespan is the nanosecond budget measured from birth. extend and
//   setRemaining mutate it; nothing else does.
// - terminated marks the one-way transition to dead. The store never keeps
//   a terminated entry reachable, so any further use of one panics: it
//   means the store's own bookkeeping is broken, and concealing that would
//   let it silently corrupt later reads.
//
// Callers never hold an entry; it is managed entirely by Store.
type entry[K comparable, V any] struct {
	value      V
	birth      time.Time
	lifespan   time.Duration
	callback   Callback[K, V]
	terminated bool
}

// newEntry records birth at the moment of construction. The lifespan must
// already be validated as non-negative by the store.
func newEntry[K comparable, V any](value V, lifespan time.Duration, cb Callback[K, V]) *entry[K, V] {
	return &entry[K, V]{
		value:    value,
		birth:    time.Now(),
		lifespan: lifespan,
		callback: cb,
	}
}

func (e *entry[K, V]) assertAlive() {
	if e.terminated {
		panic("store: invariant violation: use of terminated entry")
	}
}

// expired reports whether the entry's age exceeds its lifespan. Pure
// query; the store decides termination, keeping callback dispatch in one
// place.
func (e *entry[K, V]) expired() bool {
	e.assertAlive()
	return time.Since(e.birth) > e.lifespan
}

func (e *entry[K, V]) get() V {
	e.assertAlive()
	return e.value
}

func (e *entry[K, V]) update(newValue V) {
	e.assertAlive()
	e.value = newValue
}

// extend lengthens or, with a negative delta, shortens the lifespan. The
// net lifespan may go negative; the entry is then expired on next check.
func (e *entry[K, V]) extend(delta time.Duration) {
	e.assertAlive()
	e.lifespan += delta
}

// setRemaining adjusts the lifespan so that the time left from now equals
// d. d must already be validated as non-negative by the store.
func (e *entry[K, V]) setRemaining(d time.Duration) {
	e.assertAlive()
	e.lifespan = time.Since(e.birth) + d
}

// remainingSeconds reports how much longer the entry will be visible, in
// whole seconds rounded down.
func (e *entry[K, V]) remainingSeconds() int64 {
	e.assertAlive()
	return int64((e.lifespan - time.Since(e.birth)) / time.Second)
}

// ageSeconds reports how long the entry has lived, rounded to the closest
// second. Expiry callbacks receive this as the total lifetime.
func (e *entry[K, V]) ageSeconds() int64 {
	e.assertAlive()
	return int64(math.Round(time.Since(e.birth).Seconds()))
}

// terminate clears the value and callback and marks the entry dead.
// Terminating twice is an invariant violation, same as any other use
// after termination.
func (e *entry[K, V]) terminate() {
	e.assertAlive()
	var zero V
	e.value = zero
	e.callback = nil
	e.lifespan = -1
	e.terminated = true
}
