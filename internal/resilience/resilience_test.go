package resilience_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archbuilder/orchestrator/internal/resilience"
)

func TestCircuitBreaker_TripsAfterErrorRateExceedsThreshold(t *testing.T) {
	cfg := resilience.DefaultConfig("test")
	cfg.VolumeThreshold = 4
	cfg.WindowSize = time.Minute
	cfg.BucketCount = 1
	cb := resilience.New(cfg)

	for i := 0; i < 4; i++ {
		cb.RecordFailure()
	}
	assert.Equal(t, resilience.StateOpen, cb.State())
	assert.False(t, cb.CanExecute())
}

func TestCircuitBreaker_StaysClosedBelowVolumeThreshold(t *testing.T) {
	cfg := resilience.DefaultConfig("test")
	cfg.VolumeThreshold = 100
	cb := resilience.New(cfg)

	for i := 0; i < 5; i++ {
		cb.RecordFailure()
	}
	assert.Equal(t, resilience.StateClosed, cb.State())
}

func TestCircuitBreaker_ExecuteReturnsErrCircuitOpenWhenTripped(t *testing.T) {
	cfg := resilience.DefaultConfig("test")
	cfg.VolumeThreshold = 1
	cfg.ErrorThreshold = 0.1
	cb := resilience.New(cfg)

	err := cb.Execute(func() error { return errors.New("boom") })
	assert.Error(t, err)

	err = cb.Execute(func() error { return nil })
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
}

func TestRetry_SucceedsAfterTransientFailures(t *testing.T) {
	attempts := 0
	err := resilience.Retry(context.Background(), resilience.RetryConfig{
		MaxAttempts:  3,
		InitialDelay: time.Millisecond,
		MaxDelay:     5 * time.Millisecond,
		BackoffFactor: 2,
	}, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)
}

func TestRetry_ReturnsWrappedErrorAfterExhaustingAttempts(t *testing.T) {
	err := resilience.Retry(context.Background(), resilience.RetryConfig{
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
		MaxDelay:     time.Millisecond,
		BackoffFactor: 2,
	}, func() error { return errors.New("permanent") })

	require.Error(t, err)
	assert.ErrorIs(t, err, resilience.ErrMaxRetriesExceeded)
}

func TestRetry_RespectsContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := resilience.Retry(ctx, resilience.DefaultRetryConfig(), func() error {
		return errors.New("should not matter")
	})
	assert.ErrorIs(t, err, context.Canceled)
}
