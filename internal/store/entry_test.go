package store

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryExpired(t *testing.T) {
	t.Run("fresh entry is not expired", func(t *testing.T) {
		e := newEntry[string]("v", time.Second, nil)
		assert.False(t, e.expired())
	})

	t.Run("expires after its lifespan elapses", func(t *testing.T) {
		e := newEntry[string]("v", 20*time.Millisecond, nil)
		time.Sleep(30 * time.Millisecond)
		assert.True(t, e.expired())
	})

	t.Run("zero lifespan expires on first check", func(t *testing.T) {
		e := newEntry[string]("v", 0, nil)
		time.Sleep(time.Millisecond)
		assert.True(t, e.expired())
	})
}

func TestEntryExtend(t *testing.T) {
	t.Run("positive delta pushes expiry out", func(t *testing.T) {
		e := newEntry[string]("v", 20*time.Millisecond, nil)
		e.extend(time.Hour)
		time.Sleep(30 * time.Millisecond)
		assert.False(t, e.expired())
	})

	t.Run("negative delta may make the entry immediately expired", func(t *testing.T) {
		e := newEntry[string]("v", time.Hour, nil)
		e.extend(-2 * time.Hour)
		assert.True(t, e.expired(), "net negative lifespan means expired on next check")
	})
}

func TestEntrySetRemaining(t *testing.T) {
	e := newEntry[string]("v", 10*time.Millisecond, nil)
	time.Sleep(20 * time.Millisecond)

	// Already past its lifespan, but not yet observed by a store, so it
	// can still be revived.
	e.setRemaining(5 * time.Second)
	assert.False(t, e.expired())

	remaining := e.remainingSeconds()
	assert.GreaterOrEqual(t, remaining, int64(4))
	assert.LessOrEqual(t, remaining, int64(5))
}

func TestEntryRemainingSeconds_FloorsTowardZero(t *testing.T) {
	e := newEntry[string]("v", 5*time.Second, nil)
	time.Sleep(time.Millisecond)
	// A beat after birth the remainder is just under 5s, so the floor is 4.
	assert.Equal(t, int64(4), e.remainingSeconds())
}

func TestEntryAgeSeconds_RoundsToClosest(t *testing.T) {
	e := newEntry[string]("v", time.Hour, nil)
	assert.Equal(t, int64(0), e.ageSeconds())

	time.Sleep(1100 * time.Millisecond)
	assert.Equal(t, int64(1), e.ageSeconds())
}

func TestEntryUpdate(t *testing.T) {
	e := newEntry[string]("old", time.Hour, nil)
	e.update("new")
	assert.Equal(t, "new", e.get())
}

func TestEntryTerminate(t *testing.T) {
	t.Run("clears value and callback", func(t *testing.T) {
		cb := Callback[string, string](func(string, *Store[string, string], int64, Callback[string, string]) {})
		e := newEntry("v", time.Hour, cb)

		e.terminate()
		assert.True(t, e.terminated)
		assert.Nil(t, e.callback)
		assert.Empty(t, e.value)
	})

	t.Run("any use after termination panics", func(t *testing.T) {
		e := newEntry[string]("v", time.Hour, nil)
		e.terminate()

		require.Panics(t, func() { e.get() })
		require.Panics(t, func() { e.expired() })
		require.Panics(t, func() { e.update("x") })
		require.Panics(t, func() { e.extend(time.Second) })
		require.Panics(t, func() { e.remainingSeconds() })
		require.Panics(t, func() { e.terminate() }, "double termination is an invariant breach")
	})
}
