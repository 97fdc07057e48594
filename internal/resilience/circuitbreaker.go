// Package resilience implements the provider dispatcher's failure-handling
// primitives: a sliding-window circuit breaker and jittered exponential
// backoff retry, adapted from the teacher's resilience.CircuitBreaker /
// resilience.Retry. The teacher's versions are tightly coupled to its core
// package (core.Logger, core.IsConfigurationError, a generation-tracked
// atomic.Value state machine, per-request ExecutionTokens); this port keeps
// the sliding-window error-rate design and the closed/open/half-open state
// machine but simplifies the bookkeeping to a single mutex, since the
// provider dispatcher does not need lock-free hot-path execution.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// CircuitState mirrors the teacher's three-state design.
type CircuitState int

const (
	StateClosed CircuitState = iota
	StateOpen
	StateHalfOpen
)

func (s CircuitState) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// ErrCircuitOpen is returned by Execute when the breaker is open.
var ErrCircuitOpen = errors.New("resilience: circuit breaker open")

// ErrorClassifier decides whether an error counts against the breaker's
// error rate. Context cancellation and caller errors should usually not.
type ErrorClassifier func(error) bool

// DefaultErrorClassifier counts every non-nil error except context
// cancellation, on the theory that caller-side classification (bad
// input, not-found) belongs to the caller, not the transport layer.
func DefaultErrorClassifier(err error) bool {
	if err == nil {
		return false
	}
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// bucket is one slot of the sliding window.
type bucket struct {
	successes int
	failures  int
	start     time.Time
}

// Config configures a CircuitBreaker.
type Config struct {
	Name             string
	ErrorThreshold   float64       // error rate (0..1) that trips the breaker
	VolumeThreshold  int           // minimum requests in the window before evaluation
	SleepWindow      time.Duration // how long to stay open before probing
	HalfOpenRequests int           // concurrent probes allowed while half-open
	SuccessThreshold float64       // success rate needed to close from half-open
	WindowSize       time.Duration
	BucketCount      int
	ErrorClassifier  ErrorClassifier
}

// DefaultConfig matches the teacher's production defaults.
func DefaultConfig(name string) Config {
	return Config{
		Name:             name,
		ErrorThreshold:   0.5,
		VolumeThreshold:  10,
		SleepWindow:      30 * time.Second,
		HalfOpenRequests: 5,
		SuccessThreshold: 0.6,
		WindowSize:       60 * time.Second,
		BucketCount:      10,
		ErrorClassifier:  DefaultErrorClassifier,
	}
}

// CircuitBreaker is a sliding-window, error-rate circuit breaker.
type CircuitBreaker struct {
	config Config

	mu             sync.Mutex
	state          CircuitState
	stateChangedAt time.Time
	buckets        []bucket

	halfOpenInFlight  int
	halfOpenSuccesses int
	halfOpenFailures  int

	now func() time.Time
}

// New creates a CircuitBreaker. A zero Config is replaced with
// DefaultConfig(name).
func New(config Config) *CircuitBreaker {
	if config.WindowSize == 0 {
		config = DefaultConfig(config.Name)
	}
	if config.ErrorClassifier == nil {
		config.ErrorClassifier = DefaultErrorClassifier
	}
	return &CircuitBreaker{
		config:         config,
		state:          StateClosed,
		stateChangedAt: time.Now(),
		now:            time.Now,
	}
}

// CanExecute reports whether a call should be allowed through, advancing
// open -> half-open once SleepWindow has elapsed.
func (cb *CircuitBreaker) CanExecute() bool {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case StateClosed:
		return true
	case StateOpen:
		if cb.now().Sub(cb.stateChangedAt) >= cb.config.SleepWindow {
			cb.transitionLocked(StateHalfOpen)
			cb.halfOpenInFlight = 1
			return true
		}
		return false
	case StateHalfOpen:
		if cb.halfOpenInFlight < cb.config.HalfOpenRequests {
			cb.halfOpenInFlight++
			return true
		}
		return false
	default:
		return false
	}
}

// Execute runs fn if the breaker allows it, recording the outcome.
func (cb *CircuitBreaker) Execute(fn func() error) error {
	if !cb.CanExecute() {
		return ErrCircuitOpen
	}
	err := fn()
	if cb.config.ErrorClassifier(err) {
		cb.RecordFailure()
	} else {
		cb.RecordSuccess()
	}
	return err
}

// RecordSuccess records a successful call outcome.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.halfOpenSuccesses++
		cb.evaluateHalfOpenLocked()
		return
	}
	cb.currentBucketLocked().successes++
}

// RecordFailure records a failed call outcome and evaluates whether the
// breaker should trip.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	if cb.state == StateHalfOpen {
		cb.halfOpenFailures++
		cb.evaluateHalfOpenLocked()
		return
	}

	cb.currentBucketLocked().failures++
	total, failures := cb.windowTotalsLocked()
	if total >= cb.config.VolumeThreshold {
		rate := float64(failures) / float64(total)
		if rate >= cb.config.ErrorThreshold {
			cb.transitionLocked(StateOpen)
		}
	}
}

func (cb *CircuitBreaker) evaluateHalfOpenLocked() {
	total := cb.halfOpenSuccesses + cb.halfOpenFailures
	if total < cb.halfOpenInFlight && total < cb.config.HalfOpenRequests {
		return
	}
	if total == 0 {
		return
	}
	rate := float64(cb.halfOpenSuccesses) / float64(total)
	if rate >= cb.config.SuccessThreshold {
		cb.transitionLocked(StateClosed)
	} else {
		cb.transitionLocked(StateOpen)
	}
}

func (cb *CircuitBreaker) transitionLocked(to CircuitState) {
	cb.state = to
	cb.stateChangedAt = cb.now()
	cb.buckets = nil
	cb.halfOpenInFlight = 0
	cb.halfOpenSuccesses = 0
	cb.halfOpenFailures = 0
}

// currentBucketLocked returns the active bucket, pruning any whose age
// exceeds the window and appending a fresh one if the latest has expired.
func (cb *CircuitBreaker) currentBucketLocked() *bucket {
	now := cb.now()
	bucketWidth := cb.config.WindowSize / time.Duration(cb.config.BucketCount)

	if len(cb.buckets) == 0 || now.Sub(cb.buckets[len(cb.buckets)-1].start) >= bucketWidth {
		cb.buckets = append(cb.buckets, bucket{start: now})
	}

	cutoff := now.Add(-cb.config.WindowSize)
	i := 0
	for ; i < len(cb.buckets); i++ {
		if cb.buckets[i].start.After(cutoff) {
			break
		}
	}
	cb.buckets = cb.buckets[i:]
	if len(cb.buckets) == 0 {
		cb.buckets = append(cb.buckets, bucket{start: now})
	}
	return &cb.buckets[len(cb.buckets)-1]
}

func (cb *CircuitBreaker) windowTotalsLocked() (total, failures int) {
	cutoff := cb.now().Add(-cb.config.WindowSize)
	for _, b := range cb.buckets {
		if b.start.Before(cutoff) {
			continue
		}
		total += b.successes + b.failures
		failures += b.failures
	}
	return total, failures
}

// State returns the breaker's current state, for health/status endpoints.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// Name returns the breaker's configured name.
func (cb *CircuitBreaker) Name() string {
	return cb.config.Name
}

// Error wraps ErrCircuitOpen with the breaker's name for diagnostics.
func (cb *CircuitBreaker) Error() error {
	return fmt.Errorf("%w: %s", ErrCircuitOpen, cb.config.Name)
}
