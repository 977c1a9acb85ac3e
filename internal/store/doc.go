// Package store implements a time-bounded associative store: a map whose
// values each carry a finite lifespan and become unreachable once it has
// elapsed.
//
// Expiration is lazy. No timer or background goroutine runs; an expired
// value is discovered and removed only when a later operation touches it.
// The guarantee is therefore exactly this: query the store after a value's
// lifespan has elapsed and the value will not be there. It is NOT a
// guarantee that the value is removed, or its expiry callback invoked, the
// instant its time is up.
//
// Expiry callbacks run inline on the goroutine whose operation discovered
// the expiry. In serialized mode that goroutine holds the store-wide lock
// for the whole operation, so a callback that calls back into the same
// store will deadlock. That hazard belongs to the caller.
package store
