package llm

import (
	"context"
	"errors"
	"time"
)

// RetryPolicy retries a transient-failing call with exponential backoff.
// The zero value is not usable; construct with DefaultRetryPolicy.
type RetryPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	// Retryable decides whether an error is worth another attempt.
	Retryable func(error) bool
	// Sleep is swappable in tests. Nil means a context-aware real sleep.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy is three attempts with delays of 1s then 2s, retrying
// only transient provider failures.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		BaseDelay:   time.Second,
		Retryable:   IsTransient,
	}
}

// IsTransient reports whether err is a provider failure worth retrying.
func IsTransient(err error) bool {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Retryable()
	}
	return false
}

// Do runs fn up to MaxAttempts times, doubling the delay between attempts.
// onRetry, if non-nil, is called before each re-attempt with the attempt
// number just failed and the error. The last error is returned unwrapped.
func (p RetryPolicy) Do(ctx context.Context, fn func(ctx context.Context) error, onRetry func(attempt int, err error)) error {
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}

	var lastErr error
	delay := p.BaseDelay
	for attempt := 1; attempt <= p.MaxAttempts; attempt++ {
		lastErr = fn(ctx)
		if lastErr == nil {
			return nil
		}
		if p.Retryable == nil || !p.Retryable(lastErr) {
			return lastErr
		}
		if attempt == p.MaxAttempts {
			break
		}
		if onRetry != nil {
			onRetry(attempt, lastErr)
		}
		if err := sleep(ctx, delay); err != nil {
			return err
		}
		delay *= 2
	}
	return lastErr
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
