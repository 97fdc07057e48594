package provider

import (
	"context"
	"fmt"
)

// Mock is a deterministic in-process provider for tests and local
// development without API keys, grounded on ai/providers/mock.Provider.
type Mock struct {
	name    string
	fn      func(Request) (string, error)
	failing bool
}

// NewMock returns a Mock that echoes a fixed response template.
func NewMock(name string) *Mock {
	return &Mock{
		name: name,
		fn: func(req Request) (string, error) {
			return fmt.Sprintf(`{"mock_provider":%q,"model":%q,"echo":%q}`, name, req.Model, req.Prompt), nil
		},
	}
}

// WithResponder overrides the response function, for tests that need
// specific JSON payloads or simulated failures.
func (m *Mock) WithResponder(fn func(Request) (string, error)) *Mock {
	m.fn = fn
	return m
}

// SetFailing toggles unconditional failure, simulating a provider outage.
func (m *Mock) SetFailing(failing bool) { m.failing = failing }

func (m *Mock) Name() string { return m.name }

func (m *Mock) Complete(ctx context.Context, req Request) (Response, error) {
	if m.failing {
		return Response{}, fmt.Errorf("provider %s: simulated outage", m.name)
	}
	text, err := m.fn(req)
	if err != nil {
		return Response{}, err
	}
	return Response{Text: text, Provider: m.name, Model: req.Model}, nil
}
