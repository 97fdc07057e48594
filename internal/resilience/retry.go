package resilience

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/archbuilder/orchestrator/internal/apperrors"
)

// ErrMaxRetriesExceeded wraps the final error when all attempts fail.
var ErrMaxRetriesExceeded = errors.New("resilience: max retry attempts exceeded")

// RetryConfig configures exponential backoff with full jitter, adapted
// from the teacher's resilience.Retry.
type RetryConfig struct {
	MaxAttempts   int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
	JitterEnabled bool
}

// DefaultRetryConfig matches the teacher's defaults.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:   3,
		InitialDelay:  100 * time.Millisecond,
		MaxDelay:      5 * time.Second,
		BackoffFactor: 2.0,
		JitterEnabled: true,
	}
}

// Retry calls fn up to config.MaxAttempts times, sleeping between
// attempts with exponential backoff. Full jitter (random in [0, delay])
// is used instead of the teacher's sinusoidal jitter, which does not
// actually randomize across concurrent callers retrying in lockstep.
// An *apperrors.Error whose Kind is not retryable (provider-permanent,
// input, output-validation) short-circuits immediately instead of
// burning the remaining attempts, per the provider-transient-only retry
// rule.
func Retry(ctx context.Context, config RetryConfig, fn func() error) error {
	if config.MaxAttempts <= 0 {
		config = DefaultRetryConfig()
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 1; attempt <= config.MaxAttempts; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
		}

		var aerr *apperrors.Error
		if errors.As(lastErr, &aerr) && !apperrors.IsRetryable(lastErr) {
			return lastErr
		}

		if attempt == config.MaxAttempts {
			break
		}

		if attempt > 1 {
			delay = time.Duration(float64(delay) * config.BackoffFactor)
			if delay > config.MaxDelay {
				delay = config.MaxDelay
			}
		}

		sleep := delay
		if config.JitterEnabled {
			sleep = time.Duration(rand.Int63n(int64(math.Max(float64(delay), 1))))
		}

		timer := time.NewTimer(sleep)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}

	return fmt.Errorf("%w (%d attempts) for %v", ErrMaxRetriesExceeded, config.MaxAttempts, lastErr)
}

// RetryWithCircuitBreaker combines Retry with a CircuitBreaker so retries
// stop immediately once the breaker trips instead of continuing to hammer
// a known-bad provider.
func RetryWithCircuitBreaker(ctx context.Context, config RetryConfig, cb *CircuitBreaker, fn func() error) error {
	return Retry(ctx, config, func() error {
		return cb.Execute(fn)
	})
}
