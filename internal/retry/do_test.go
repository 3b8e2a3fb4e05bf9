package retry

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/e-radio/eradio/internal/config"
	derrors "github.com/e-radio/eradio/internal/foundation/errors"
)

func fastPolicy(retries int) Policy {
	return NewPolicy(config.RetryBackoffFixed, time.Millisecond, time.Millisecond, retries)
}

func TestDoRetriesTransientErrors(t *testing.T) {
	calls := 0
	var observed []int
	got, err := Do(context.Background(), fastPolicy(3), "fetch", func(context.Context) (string, error) {
		calls++
		if calls < 3 {
			return "", derrors.NetworkError("502 from mirror").Build()
		}
		return "ok", nil
	}, func(attempt int, _ error) { observed = append(observed, attempt) })

	require.NoError(t, err)
	assert.Equal(t, "ok", got)
	assert.Equal(t, 3, calls)
	assert.Equal(t, []int{1, 2}, observed)
}

func TestDoStopsOnPermanentError(t *testing.T) {
	calls := 0
	permanent := errors.New("404 not found")
	_, err := Do(context.Background(), fastPolicy(5), "fetch", func(context.Context) (int, error) {
		calls++
		return 0, permanent
	})
	require.ErrorIs(t, err, permanent)
	assert.Equal(t, 1, calls)
}

func TestDoExhaustsRetries(t *testing.T) {
	calls := 0
	_, err := Do(context.Background(), fastPolicy(2), "fetch", func(context.Context) (int, error) {
		calls++
		return 0, derrors.NetworkError("timeout").Build()
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed after 2 retries")
	assert.Equal(t, 3, calls)
}

func TestDoHonoursCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	p := NewPolicy(config.RetryBackoffFixed, time.Hour, time.Hour, 3)
	_, err := Do(ctx, p, "fetch", func(context.Context) (int, error) {
		cancel()
		return 0, derrors.NetworkError("timeout").Build()
	})
	require.ErrorIs(t, err, context.Canceled)
}

func TestBackoffHonoursRetryAfter(t *testing.T) {
	p := fastPolicy(1)
	limited := func(wait time.Duration) error {
		return derrors.NetworkError("HTTP 429").RateLimit().WithContext(RetryAfterKey, wait).Build()
	}

	assert.Equal(t, 3*time.Millisecond, backoff(p, 1, derrors.NetworkError("HTTP 429").RateLimit().Build()))
	assert.Equal(t, 2*time.Second, backoff(p, 1, limited(2*time.Second)))
	assert.Equal(t, MaxRetryAfter, backoff(p, 1, limited(time.Hour)))
	assert.Equal(t, 3*time.Millisecond, backoff(p, 1, limited(time.Microsecond)))
	assert.Equal(t, time.Millisecond, backoff(p, 1, errors.New("plain")))
}

func TestDoWaitsForRetryAfter(t *testing.T) {
	calls := 0
	start := time.Now()
	_, err := Do(context.Background(), fastPolicy(1), "geocode", func(context.Context) (int, error) {
		calls++
		if calls == 1 {
			return 0, derrors.NetworkError("HTTP 429").RateLimit().
				WithContext(RetryAfterKey, 50*time.Millisecond).Build()
		}
		return 1, nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}
