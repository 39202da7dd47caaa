package search

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  250 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 1.5,
	}
}

type RetryableFunc[T any] func(ctx context.Context) (T, error)

// WithRetry runs fn with exponential backoff until it succeeds, returns a
// non-retryable error, or ctx is done.
func WithRetry[T any](ctx context.Context, cfg RetryConfig, logger *zap.Logger, operation string, fn RetryableFunc[T]) (T, error) {
	var zero T
	var lastErr error

	attempts := cfg.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		result, err := fn(ctx)
		if err == nil {
			if attempt > 1 {
				logger.Info("operation succeeded after retry",
					zap.String("operation", operation),
					zap.Int("attempt", attempt))
			}
			return result, nil
		}
		lastErr = err

		if !isRetryable(err) {
			logger.Debug("non-retryable error, aborting",
				zap.String("operation", operation),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return zero, err
		}
		if attempt == attempts {
			break
		}

		delay := calculateBackoff(attempt, cfg.InitialDelay, cfg.MaxDelay, cfg.BackoffFactor)
		logger.Warn("retrying operation after error",
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Int("max_attempts", attempts),
			zap.Duration("retry_delay", delay),
			zap.Error(err))

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, ctx.Err()
		case <-timer.C:
		}
	}

	return zero, fmt.Errorf("operation failed after %d attempts: %w", attempts, lastErr)
}

// calculateBackoff returns initial*factor^(attempt-1), capped at max, with ±10% jitter.
func calculateBackoff(attempt int, initial, max time.Duration, factor float64) time.Duration {
	if factor < 1 {
		factor = 1
	}
	backoff := float64(initial) * math.Pow(factor, float64(attempt-1))
	if backoff > float64(max) {
		backoff = float64(max)
	}
	jitter := backoff * 0.1 * (2*rand.Float64() - 1)
	return time.Duration(backoff + jitter)
}
