package resilience

import (
	"context"
	"math/rand"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// RetryConfig controls the backoff schedule for retried operations.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
	Multiplier  float64
	Jitter      float64
}

// DefaultRetryConfig suits polite clients of external statement sources:
// a few attempts with exponential backoff and mild jitter.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts: 4,
		BaseDelay:   500 * time.Millisecond,
		MaxDelay:    15 * time.Second,
		Multiplier:  2.0,
		Jitter:      0.2,
	}
}

func (c RetryConfig) normalized() RetryConfig {
	if c.MaxAttempts < 1 {
		c.MaxAttempts = 1
	}
	if c.BaseDelay <= 0 {
		c.BaseDelay = 500 * time.Millisecond
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 15 * time.Second
	}
	if c.Multiplier < 1 {
		c.Multiplier = 2.0
	}
	return c
}

// delay computes the backoff before the given (1-based) attempt.
func (c RetryConfig) delay(attempt int) time.Duration {
	d := float64(c.BaseDelay)
	for i := 1; i < attempt; i++ {
		d *= c.Multiplier
	}
	if d > float64(c.MaxDelay) {
		d = float64(c.MaxDelay)
	}
	if c.Jitter > 0 {
		d += d * c.Jitter * (rand.Float64()*2 - 1)
	}
	if d < 0 {
		d = 0
	}
	return time.Duration(d)
}

// Do runs op until it succeeds, returns a non-transient error, or the
// attempt budget is exhausted. Context cancellation aborts the wait.
func Do(ctx context.Context, cfg RetryConfig, name string, op func(ctx context.Context) error) error {
	_, err := DoVal(ctx, cfg, name, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, op(ctx)
	})
	return err
}

// DoVal is Do for operations that produce a value.
func DoVal[T any](ctx context.Context, cfg RetryConfig, name string, op func(ctx context.Context) (T, error)) (T, error) {
	cfg = cfg.normalized()

	var zero T
	var lastErr error

	for attempt := 1; attempt <= cfg.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, eris.Wrapf(err, "resilience: %s aborted", name)
		}

		v, err := op(ctx)
		if err == nil {
			return v, nil
		}
		lastErr = err

		if !IsTransient(err) {
			return zero, err
		}
		if attempt == cfg.MaxAttempts {
			break
		}

		wait := cfg.delay(attempt)
		zap.L().Debug("retrying operation",
			zap.String("op", name),
			zap.Int("attempt", attempt),
			zap.Duration("backoff", wait),
			zap.Error(err))

		select {
		case <-ctx.Done():
			return zero, eris.Wrapf(ctx.Err(), "resilience: %s aborted", name)
		case <-time.After(wait):
		}
	}

	return zero, eris.Wrapf(lastErr, "resilience: %s failed after %d attempts", name, cfg.MaxAttempts)
}
