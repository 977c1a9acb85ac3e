package loader

import (
	"context"
	"time"

	"lazycache/internal/metrics"
)

// RetryPolicy controls how a failed fetch is retried.
type RetryPolicy struct {
	MaxRetries  int           // max retry attempts
	BaseBackoff time.Duration // initial backoff duration
	MaxBackoff  time.Duration // upper bound on backoff
	JitterFn    func(time.Duration) time.Duration
}

// DefaultRetryPolicy retries three times with doubling backoff and 50%
// jitter.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxRetries:  3,
		BaseBackoff: 100 * time.Millisecond,
		MaxBackoff:  2 * time.Second,
		JitterFn:    func(d time.Duration) time.Duration { return d / 2 },
	}
}

// load runs the fetch under the retry policy with backoff and
// cancellation support. Any non-nil fetch error is treated as retryable.
func (l *Loader[K, V]) load(ctx context.Context, key K) (V, error) {
	l.metrics.Inc(metrics.LoaderLoadsTotal)

	var (
		zero    V
		attempt int
		backoff = l.retry.BaseBackoff
	)
	for {
		v, err := l.fetch(ctx, key)
		if err == nil {
			return v, nil
		}

		attempt++
		if attempt > l.retry.MaxRetries {
			l.metrics.Inc(metrics.LoaderLoadFailuresTotal)
			l.logger.Warnf("load failed for key %v: %v", key, err)
			return zero, err
		}
		l.metrics.Inc(metrics.LoaderRetriesTotal)

		delay := backoff
		if l.retry.JitterFn != nil {
			delay += l.retry.JitterFn(backoff)
		}
		if delay > l.retry.MaxBackoff {
			delay = l.retry.MaxBackoff
		}

		select {
		case <-time.After(delay):
			backoff *= 2
		case <-ctx.Done():
			return zero, ctx.Err()
		}
	}
}
