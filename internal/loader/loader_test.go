package loader

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"lazycache/internal/metrics"
	"lazycache/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

/* ---------------- Mock backing source ---------------- */

type slowSource struct {
	mu    sync.Mutex
	hits  int
	delay time.Duration
	fail  int // fail this many fetches before succeeding
}

func (s *slowSource) Fetch(ctx context.Context, key string) (string, error) {
	s.mu.Lock()
	s.hits++
	shouldFail := s.fail > 0
	if shouldFail {
		s.fail--
	}
	s.mu.Unlock()

	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if shouldFail {
		return "", errors.New("source unavailable")
	}
	return "value-for-" + key, nil
}

func (s *slowSource) Hits() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hits
}

func newTestLoader(t *testing.T, src *slowSource, retry RetryPolicy) *Loader[string, string] {
	t.Helper()

	l, err := New(Config[string, string]{
		Store:    store.New[string, string](),
		Fetch:    src.Fetch,
		Lifespan: time.Minute,
		Retry:    retry,
	})
	require.NoError(t, err)
	return l
}

/* ---------------- Tests ---------------- */

func TestLoaderGetOrLoad_CachesFetchedValue(t *testing.T) {
	src := &slowSource{}
	l := newTestLoader(t, src, DefaultRetryPolicy())

	v, err := l.GetOrLoad(context.Background(), "user:42")
	require.NoError(t, err)
	assert.Equal(t, "value-for-user:42", v)

	// Second call is a cache hit; the source is not touched again.
	v, err = l.GetOrLoad(context.Background(), "user:42")
	require.NoError(t, err)
	assert.Equal(t, "value-for-user:42", v)
	assert.Equal(t, 1, src.Hits())
}

func TestLoaderGetOrLoad_CollapsesConcurrentMisses(t *testing.T) {
	src := &slowSource{delay: 100 * time.Millisecond}
	l := newTestLoader(t, src, DefaultRetryPolicy())

	var wg sync.WaitGroup
	var failures atomic.Int32
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := l.GetOrLoad(context.Background(), "hot")
			if err != nil || v != "value-for-hot" {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Zero(t, failures.Load())
	assert.Equal(t, 1, src.Hits(), "concurrent misses for one key must share a single fetch")
}

func TestLoaderGetOrLoad_RetriesUntilSuccess(t *testing.T) {
	src := &slowSource{fail: 2}
	reg := metrics.NewRegistry()

	l, err := New(Config[string, string]{
		Store:    store.New[string, string](),
		Fetch:    src.Fetch,
		Lifespan: time.Minute,
		Retry: RetryPolicy{
			MaxRetries:  3,
			BaseBackoff: time.Millisecond,
			MaxBackoff:  5 * time.Millisecond,
		},
		Metrics: reg,
	})
	require.NoError(t, err)

	v, err := l.GetOrLoad(context.Background(), "flaky")
	require.NoError(t, err)
	assert.Equal(t, "value-for-flaky", v)
	assert.Equal(t, 3, src.Hits())

	snap := reg.Snapshot()
	assert.Equal(t, int64(2), snap[string(metrics.LoaderRetriesTotal)])
	assert.Equal(t, int64(0), snap[string(metrics.LoaderLoadFailuresTotal)])
}

func TestLoaderGetOrLoad_GivesUpAfterMaxRetries(t *testing.T) {
	src := &slowSource{fail: 10}
	reg := metrics.NewRegistry()

	l, err := New(Config[string, string]{
		Store:    store.New[string, string](),
		Fetch:    src.Fetch,
		Lifespan: time.Minute,
		Retry: RetryPolicy{
			MaxRetries:  2,
			BaseBackoff: time.Millisecond,
			MaxBackoff:  5 * time.Millisecond,
		},
		Metrics: reg,
	})
	require.NoError(t, err)

	_, err = l.GetOrLoad(context.Background(), "down")
	assert.Error(t, err)
	assert.Equal(t, 3, src.Hits(), "initial attempt plus two retries")

	snap := reg.Snapshot()
	assert.Equal(t, int64(1), snap[string(metrics.LoaderLoadFailuresTotal)])
}

func TestLoaderGetOrLoad_HonorsContextCancellation(t *testing.T) {
	src := &slowSource{fail: 10}
	l := newTestLoader(t, src, RetryPolicy{
		MaxRetries:  100,
		BaseBackoff: 50 * time.Millisecond,
		MaxBackoff:  time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	_, err := l.GetOrLoad(ctx, "slow")
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestLoaderNew_Validation(t *testing.T) {
	s := store.New[string, string]()
	fetch := func(ctx context.Context, key string) (string, error) { return "", nil }

	_, err := New(Config[string, string]{Fetch: fetch, Lifespan: time.Minute})
	assert.Error(t, err)

	_, err = New(Config[string, string]{Store: s, Lifespan: time.Minute})
	assert.Error(t, err)

	_, err = New(Config[string, string]{Store: s, Fetch: fetch, Lifespan: -time.Second})
	assert.ErrorIs(t, err, store.ErrNegativeDuration)
}
