// Package retry implements the bounded fixed-delay retry policy used for
// outbound marketplace calls.
package retry

import (
	"context"
	"errors"
	"time"
)

// Policy retries an operation up to MaxAttempts times with a fixed Delay
// between attempts. Retryable decides which errors consume an attempt; a nil
// Retryable treats every error as retryable.
type Policy struct {
	MaxAttempts int
	Delay       time.Duration
	Retryable   func(error) bool
}

// serverWaitError asks the policy to wait a server-supplied duration and try
// again without consuming an attempt. Used for HTTP 429 Retry-After.
type serverWaitError struct {
	wait time.Duration
}

func (e *serverWaitError) Error() string { return "server requested wait of " + e.wait.String() }

// After wraps a server-supplied backoff so Do honors it outside the attempt
// budget.
func After(wait time.Duration) error { return &serverWaitError{wait: wait} }

// Do runs op until it succeeds, the attempt budget is exhausted, or ctx is
// done. The last error is returned on exhaustion. An error produced by After
// only delays the next try; it never counts as an attempt.
func (p Policy) Do(ctx context.Context, op func(ctx context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; {
		if err := ctx.Err(); err != nil {
			return err
		}
		err := op(ctx)
		if err == nil {
			return nil
		}

		var wait *serverWaitError
		if errors.As(err, &wait) {
			if err := sleep(ctx, wait.wait); err != nil {
				return err
			}
			continue
		}

		lastErr = err
		if p.Retryable != nil && !p.Retryable(err) {
			return err
		}
		attempt++
		if attempt >= attempts {
			break
		}
		if err := sleep(ctx, p.Delay); err != nil {
			return err
		}
	}
	return lastErr
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
