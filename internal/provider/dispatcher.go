package provider

import (
	"context"
	"fmt"
	"time"

	"github.com/archbuilder/orchestrator/internal/obslog"
	"github.com/archbuilder/orchestrator/internal/resilience"
	"github.com/archbuilder/orchestrator/internal/types"
)

// defaultTimeoutMedium and defaultTimeoutHigh are the per-call deadlines
// spec §4.5 names for medium and high complexity when SetTimeouts is
// never called.
const (
	defaultTimeoutMedium = 30 * time.Second
	defaultTimeoutHigh   = 120 * time.Second
)

// priorityOrder is the fixed provider trial order used to build a
// per-request fallback chain: the selected provider always goes first,
// the rest follow in this order, skipping providers that were never
// registered.
var priorityOrder = []string{"github_models", "vertex_ai", "anthropic", "openai"}

// registration bundles a Provider with its circuit breaker.
type registration struct {
	provider Provider
	breaker  *resilience.CircuitBreaker
}

// Dispatcher is C5: it selects a (provider, model) pair per SelectModel,
// then executes it with per-provider circuit breaking and retry, falling
// over to the next provider in priorityOrder on exhaustion. Grounded on
// the teacher's multi-provider ai.providers registry plus
// resilience.CircuitBreaker/Retry, adapted into internal/resilience.
type Dispatcher struct {
	registry map[string]*registration
	retry    resilience.RetryConfig
	log      *obslog.Logger

	timeoutMedium time.Duration
	timeoutHigh   time.Duration
}

// New creates an empty Dispatcher. Register providers with Register
// before calling Dispatch. Per-call timeouts default to spec §4.5's
// 30s/120s; override with SetTimeouts.
func New(log *obslog.Logger, retry resilience.RetryConfig) *Dispatcher {
	if log == nil {
		log = obslog.New("provider")
	}
	return &Dispatcher{
		registry:      make(map[string]*registration),
		retry:         retry,
		log:           log,
		timeoutMedium: defaultTimeoutMedium,
		timeoutHigh:   defaultTimeoutHigh,
	}
}

// SetTimeouts overrides the per-call deadlines Dispatch derives from a
// command's complexity. A zero value leaves the corresponding default
// in place.
func (d *Dispatcher) SetTimeouts(medium, high time.Duration) {
	if medium > 0 {
		d.timeoutMedium = medium
	}
	if high > 0 {
		d.timeoutHigh = high
	}
}

// timeoutFor returns the per-call deadline for a command's complexity,
// per spec §4.5's "total call ≤ T" rule (T=30s for medium, 120s for
// high; simple complexity uses the medium budget since the spec names
// no separate figure for it).
func (d *Dispatcher) timeoutFor(complexity types.Complexity) time.Duration {
	if complexity == types.ComplexityHigh {
		return d.timeoutHigh
	}
	return d.timeoutMedium
}

// Register binds a Provider under name with its own circuit breaker
// configuration. name must match one of SelectModel's provider keys
// ("github_models", "vertex_ai") or a priorityOrder entry ("anthropic",
// "openai") to be reachable by dispatch.
func (d *Dispatcher) Register(name string, p Provider, cbConfig resilience.Config) {
	if cbConfig.Name == "" {
		cbConfig.Name = name
	}
	d.registry[name] = &registration{provider: p, breaker: resilience.New(cbConfig)}
}

// Dispatch selects a provider/model for cmd, gives each provider it tries
// modelFor's model when req.Model is unset or names the selected model,
// and executes the request with failover across every registered
// provider in priority order, starting from the one SelectModel chose.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd types.AICommand, req Request) (Response, Selection, error) {
	sel := SelectModel(SelectionInput{
		Language:       cmd.Language,
		DocumentType:   cmd.DocumentType,
		Complexity:     string(cmd.Complexity),
		FileFormat:     cmd.FileFormat,
		AnalysisType:   cmd.AnalysisType,
		UserPreference: cmd.UserPreferredProvider,
	})

	order := d.fallbackOrder(sel.Provider)
	if len(order) == 0 {
		return Response{}, sel, fmt.Errorf("provider dispatch: no providers registered")
	}

	timeout := d.timeoutFor(cmd.Complexity)

	var lastErr error
	for i, name := range order {
		reg, ok := d.registry[name]
		if !ok {
			continue
		}

		callReq := req
		callReq.Timeout = timeout
		if callReq.Model == "" || callReq.Model == sel.Model {
			callReq.Model = modelFor(name, sel)
		}

		var resp Response
		err := resilience.RetryWithCircuitBreaker(ctx, d.retry, reg.breaker, func() error {
			attemptCtx := ctx
			if callReq.Timeout > 0 {
				var cancel context.CancelFunc
				attemptCtx, cancel = context.WithTimeout(ctx, callReq.Timeout)
				defer cancel()
			}
			r, e := reg.provider.Complete(attemptCtx, callReq)
			if e == nil {
				resp = r
			}
			return e
		})
		if err == nil {
			d.log.FromContext(ctx).Info("provider dispatch succeeded", obslog.Fields{
				"provider": name, "model": callReq.Model, "attempt_index": i,
			})
			return resp, sel, nil
		}

		lastErr = err
		d.log.FromContext(ctx).Warn("provider attempt failed, trying next", obslog.Fields{
			"provider": name, "error": err.Error(), "attempt_index": i,
		})
	}

	return Response{}, sel, fmt.Errorf("provider dispatch: all providers exhausted: %w", lastErr)
}

// modelFor returns sel.Model when name is the selected provider, or a
// provider-appropriate default otherwise (so failover doesn't send, say,
// a gemini model name to the anthropic client).
func modelFor(name string, sel Selection) string {
	if name == sel.Provider {
		return sel.Model
	}
	if m, ok := knownProviders[name]; ok {
		return m
	}
	return sel.Model
}

// fallbackOrder returns primary first, then the remaining registered
// providers in priorityOrder.
func (d *Dispatcher) fallbackOrder(primary string) []string {
	seen := map[string]bool{}
	var order []string
	if _, ok := d.registry[primary]; ok {
		order = append(order, primary)
		seen[primary] = true
	}
	for _, name := range priorityOrder {
		if seen[name] {
			continue
		}
		if _, ok := d.registry[name]; ok {
			order = append(order, name)
			seen[name] = true
		}
	}
	return order
}
