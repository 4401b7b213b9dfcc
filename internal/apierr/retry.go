package apierr

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Backoff is the retry policy for transient request failures.
// Delays double from Initial up to Max. A server-sent Retry-After hint
// (StatusError.RetryAfter) lengthens the wait, still capped at Max.
//
// Zero or negative values are normalized: Retries < 0 becomes 0 (one attempt),
// Initial <= 0 becomes 1ms, Max < Initial becomes Initial.
type Backoff struct {
	Retries int
	Initial time.Duration
	Max     time.Duration

	// Retryable decides whether err is worth another attempt.
	// Nil means IsRetryable.
	Retryable func(err error) bool

	// OnRetry is called before each wait with the 1-based retry number.
	OnRetry func(retry int, err error, wait time.Duration)
}

// DefaultBackoff is the policy used for Jenkins calls.
var DefaultBackoff = Backoff{
	Retries: 3,
	Initial: 500 * time.Millisecond,
	Max:     5 * time.Second,
}

func (b Backoff) normalized() Backoff {
	b.Retries = max(b.Retries, 0)
	if b.Initial <= 0 {
		b.Initial = time.Millisecond
	}
	b.Max = max(b.Max, b.Initial)
	if b.Retryable == nil {
		b.Retryable = IsRetryable
	}
	return b
}

// wait returns how long to sleep before retry n (1-based) after err.
func (b Backoff) wait(n int, err error) time.Duration {
	d := b.Initial
	for i := 1; i < n && d < b.Max; i++ {
		d *= 2
	}

	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		d = max(d, statusErr.RetryAfter)
	}
	return min(d, b.Max)
}

// Retry calls fn until it succeeds, returns a non-retryable error, the
// context ends, or the retries are used up. The last failure is returned
// wrapped, so errors.Is and errors.As still see it.
func Retry[T any](ctx context.Context, b Backoff, fn func(context.Context) (T, error)) (T, error) {
	b = b.normalized()

	var zero T
	for n := 0; ; n++ {
		v, err := fn(ctx)
		switch {
		case err == nil:
			return v, nil
		case !b.Retryable(err):
			return zero, err
		case n == b.Retries:
			if n == 0 {
				return zero, err
			}
			return zero, fmt.Errorf("giving up after %d retries: %w", n, err)
		}

		d := b.wait(n+1, err)
		if b.OnRetry != nil {
			b.OnRetry(n+1, err, d)
		}

		t := time.NewTimer(d)
		select {
		case <-ctx.Done():
			t.Stop()
			return zero, ctx.Err()
		case <-t.C:
		}
	}
}
