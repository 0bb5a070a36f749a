package resilience

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRetry(attempts int) RetryConfig {
	return RetryConfig{
		MaxAttempts: attempts,
		BaseDelay:   time.Millisecond,
		MaxDelay:    5 * time.Millisecond,
		Multiplier:  2.0,
	}
}

func TestDoVal_SucceedsAfterTransientFailures(t *testing.T) {
	calls := 0
	v, err := DoVal(context.Background(), fastRetry(4), "flaky", func(context.Context) (int, error) {
		calls++
		if calls < 3 {
			return 0, Transient(errors.New("blip"))
		}
		return 42, nil
	})

	require.NoError(t, err)
	assert.Equal(t, 42, v)
	assert.Equal(t, 3, calls)
}

func TestDoVal_NonTransientFailsImmediately(t *testing.T) {
	calls := 0
	_, err := DoVal(context.Background(), fastRetry(4), "fatal", func(context.Context) (int, error) {
		calls++
		return 0, errors.New("bad request")
	})

	require.Error(t, err)
	assert.Equal(t, 1, calls, "non-transient errors are not retried")
}

func TestDoVal_ExhaustsAttempts(t *testing.T) {
	calls := 0
	base := errors.New("still down")
	_, err := DoVal(context.Background(), fastRetry(3), "down", func(context.Context) (int, error) {
		calls++
		return 0, Transient(base)
	})

	require.Error(t, err)
	assert.Equal(t, 3, calls)
	assert.ErrorIs(t, err, base)
	assert.Contains(t, err.Error(), "failed after 3 attempts")
}

func TestDoVal_ContextCancelAborts(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	calls := 0
	_, err := DoVal(ctx, fastRetry(4), "cancelled", func(context.Context) (int, error) {
		calls++
		return 0, Transient(errors.New("blip"))
	})

	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, calls)
}

func TestDo_WrapsDoVal(t *testing.T) {
	calls := 0
	err := Do(context.Background(), fastRetry(2), "op", func(context.Context) error {
		calls++
		if calls == 1 {
			return Transient(errors.New("blip"))
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, 2, calls)
}

func TestRetryConfig_DelayGrowsAndCaps(t *testing.T) {
	cfg := RetryConfig{
		BaseDelay:  10 * time.Millisecond,
		MaxDelay:   40 * time.Millisecond,
		Multiplier: 2.0,
	}

	assert.Equal(t, 10*time.Millisecond, cfg.delay(1))
	assert.Equal(t, 20*time.Millisecond, cfg.delay(2))
	assert.Equal(t, 40*time.Millisecond, cfg.delay(3))
	assert.Equal(t, 40*time.Millisecond, cfg.delay(10), "capped at MaxDelay")
}

func TestIsTransient(t *testing.T) {
	assert.True(t, IsTransient(Transient(errors.New("x"))))
	assert.False(t, IsTransient(errors.New("x")))
	assert.False(t, IsTransient(nil))
}

func TestIsTransientHTTPStatus(t *testing.T) {
	for _, code := range []int{429, 500, 502, 503, 504} {
		assert.True(t, IsTransientHTTPStatus(code), "%d", code)
	}
	for _, code := range []int{200, 301, 400, 401, 404, 422} {
		assert.False(t, IsTransientHTTPStatus(code), "%d", code)
	}
}
