// Package apperrors defines the orchestrator's error taxonomy: typed,
// wrappable errors that components raise internally and that only the
// coordinator and the (out-of-scope) HTTP boundary translate into
// user-visible envelopes. Modeled on the teacher's core.FrameworkError.
package apperrors

import (
	"errors"
	"fmt"
)

// Code is a stable, user-facing error code per spec §6/§7.
type Code string

const (
	CodeValidation       Code = "VAL_001"
	CodeValidationSchema Code = "VAL_002"
	CodeModelUnavailable Code = "AI_001"
	CodeOutputInvalid    Code = "AI_002"
	CodeNetwork          Code = "NET_001"
	CodeQuotaExceeded    Code = "QUOTA_EXCEEDED"
	CodeRateLimited      Code = "RATE_LIMITED"
	CodeNotFound         Code = "NOT_FOUND"
	CodeUnauthorized     Code = "UNAUTHORIZED"
	CodeInternal         Code = "SYS_001"
)

// Kind classifies an error for the coordinator's control-flow decisions
// (retry? fallback? surface as 4xx?).
type Kind string

const (
	KindInput              Kind = "input"
	KindQuota              Kind = "quota"
	KindProviderTransient  Kind = "provider_transient"
	KindProviderPermanent  Kind = "provider_permanent"
	KindOutputValidation   Kind = "output_validation"
	KindInternal           Kind = "internal"
)

// Error is the orchestrator's structured error type. It implements
// error, Unwrap, and carries enough context to build an HTTP envelope
// without components needing to know about HTTP at all.
type Error struct {
	Op      string // e.g. "dispatcher.Invoke"
	Code    Code
	Kind    Kind
	Message string
	Err     error
	Context map[string]interface{}
}

func (e *Error) Error() string {
	if e.Message != "" {
		if e.Err != nil {
			return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
		}
		return fmt.Sprintf("%s: %s", e.Op, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

func (e *Error) Unwrap() error { return e.Err }

// New constructs an Error.
func New(op string, code Code, kind Kind, msg string, err error) *Error {
	return &Error{Op: op, Code: code, Kind: kind, Message: msg, Err: err}
}

// WithContext attaches structured context (copied into the HTTP envelope's
// "context" field at the boundary).
func (e *Error) WithContext(kv map[string]interface{}) *Error {
	e.Context = kv
	return e
}

// Sentinel errors for errors.Is comparisons that don't need full context.
var (
	ErrRateLimited       = errors.New("rate limited")
	ErrQuotaExceeded     = errors.New("quota exceeded")
	ErrCircuitOpen       = errors.New("circuit breaker open")
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrInvalidJSON       = errors.New("invalid json in model output")
	ErrSchemaInvalid     = errors.New("output failed schema validation")
	ErrMaxRetries        = errors.New("maximum retries exceeded")
	ErrNotFound          = errors.New("not found")
)

// IsRetryable reports whether the dispatcher should retry this error:
// transient network/5xx/429 failures, never 4xx-other-than-429.
func IsRetryable(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindProviderTransient
	}
	return false
}

// IsInput reports whether err originates from malformed input — never
// retried, never triggers fallback.
func IsInput(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == KindInput
	}
	return false
}

// TriggersFallback reports whether the coordinator should attempt the
// fallback generator for this error, per spec §7's propagation rule:
// provider transient/permanent or output-validation failures do;
// input errors never do.
func TriggersFallback(err error) bool {
	var e *Error
	if errors.As(err, &e) {
		switch e.Kind {
		case KindProviderTransient, KindProviderPermanent, KindOutputValidation:
			return true
		}
	}
	if errors.Is(err, ErrProviderUnavailable) || errors.Is(err, ErrCircuitOpen) ||
		errors.Is(err, ErrInvalidJSON) || errors.Is(err, ErrSchemaInvalid) {
		return true
	}
	return false
}
