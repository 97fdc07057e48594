// Package provider implements C5: the AI provider dispatcher. It selects
// a (provider, model) pair deterministically from task metadata, calls the
// provider's HTTP API, and wraps every call in a per-provider circuit
// breaker plus jittered retry — grounded on the teacher's
// ai/providers.BaseClient.ExecuteWithRetry and resilience.CircuitBreaker,
// adapted into internal/resilience since much of the teacher's core
// package those types depended on was out of scope.
package provider

import (
	"context"
	"time"
)

// Request is a fully-resolved prompt ready to send to a provider.
type Request struct {
	Model       string
	Prompt      string
	MaxTokens   int
	Temperature float32
	Timeout     time.Duration
}

// Response is a provider's raw text completion plus token accounting.
type Response struct {
	Text             string
	Provider         string
	Model            string
	PromptTokens     int
	CompletionTokens int
	LatencyMS        int64
}

// Provider is the minimal surface the dispatcher needs from any AI
// backend: OpenAI-compatible chat completions, Gemini/Vertex AI
// generateContent, Anthropic messages, or a deterministic mock.
type Provider interface {
	Complete(ctx context.Context, req Request) (Response, error)
	Name() string
}
