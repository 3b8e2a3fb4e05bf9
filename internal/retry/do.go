package retry

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	derrors "github.com/e-radio/eradio/internal/foundation/errors"
	"github.com/e-radio/eradio/internal/logfields"
)

// rate limited responses wait this many times the base delay
const rateLimitMultiplier = 3

// RetryAfterKey is the error context key holding a server requested wait
// (time.Duration). Do waits at least that long, up to MaxRetryAfter.
const RetryAfterKey = "retry_after"

// MaxRetryAfter bounds how long a server can hold off the next attempt.
const MaxRetryAfter = 2 * time.Minute

// Hook observes a retry before its delay; attempt is 1-based.
type Hook func(attempt int, err error)

// Do runs fn until it succeeds, returns a non-transient error, the policy is
// exhausted, or ctx is done. Only classified transient errors are retried.
func Do[T any](ctx context.Context, p Policy, op string, fn func(context.Context) (T, error), hooks ...Hook) (T, error) {
	var zero T
	var lastErr error
	for attempt := 0; attempt <= p.MaxRetries; attempt++ {
		if attempt > 0 {
			slog.Debug("retrying operation", slog.String("operation", op), logfields.Attempt(attempt))
		}
		result, err := fn(ctx)
		if err == nil {
			return result, nil
		}
		lastErr = err
		if !derrors.IsTransient(err) {
			return zero, err
		}
		if attempt == p.MaxRetries {
			break
		}

		delay := backoff(p, attempt+1, err)
		for _, h := range hooks {
			h(attempt+1, err)
		}
		slog.Warn("transient failure, backing off",
			slog.String("operation", op),
			logfields.Attempt(attempt+1),
			logfields.DurationMS(float64(delay.Milliseconds())),
			logfields.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}
	return zero, fmt.Errorf("%s failed after %d retries: %w", op, p.MaxRetries, lastErr)
}

func backoff(p Policy, retryCount int, err error) time.Duration {
	delay := p.Delay(retryCount)
	c, ok := derrors.AsClassified(err)
	if !ok {
		return delay
	}
	if c.RetryStrategy() == derrors.RetryRateLimit {
		delay *= rateLimitMultiplier
	}
	if v, found := c.Context().Get(RetryAfterKey); found {
		if wait, isDur := v.(time.Duration); isDur && wait > delay {
			delay = min(wait, MaxRetryAfter)
		}
	}
	return delay
}
