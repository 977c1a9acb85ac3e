package store

import (
	"errors"
	"reflect"

	"lazycache/internal/numbers"
)

// Caller-contract violations. Both are returned synchronously, before any
// state is mutated. A missing or already-expired key is never an error; it
// is reported through sentinel returns instead.
var (
	// ErrNilValue is returned when a required value parameter is a
	// nil-equivalent: stored values must always be present.
	ErrNilValue = errors.New("store: value must not be nil")

	// ErrNegativeDuration is returned when a lifespan parameter is negative.
	// Alias of numbers.ErrNegative so either sentinel matches with errors.Is.
	ErrNegativeDuration = numbers.ErrNegative
)

// isAbsent reports whether v is a nil-equivalent value: an invalid
// reflection value (nil passed through an interface type parameter) or a
// nil pointer, map, slice, channel, function, or interface. The store
// refuses to hold these so that a stored value can never be confused with
// the "no value" result of a miss.
func isAbsent[V any](v V) bool {
	rv := reflect.ValueOf(v)
	if !rv.IsValid() {
		return true
	}
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan, reflect.Func, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
