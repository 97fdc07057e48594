package coordinator

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archbuilder/orchestrator/internal/cache"
	"github.com/archbuilder/orchestrator/internal/obslog"
	"github.com/archbuilder/orchestrator/internal/prompt"
	"github.com/archbuilder/orchestrator/internal/provider"
	"github.com/archbuilder/orchestrator/internal/ratelimit"
	"github.com/archbuilder/orchestrator/internal/resilience"
	"github.com/archbuilder/orchestrator/internal/types"
	"github.com/archbuilder/orchestrator/internal/usage"
)

const validLayoutJSON = `{
  "rooms": [{"id": "r1", "name": "Bedroom", "type": "bedroom", "area_m2": 14.0, "dimensions": {"w": 3500, "l": 4000, "h": 2700}, "position": {"x_mm": 0, "y_mm": 0}}],
  "walls": [
    {"id": "w1", "start": {"x": 0, "y": 0, "z": 0}, "end": {"x": 3500, "y": 0, "z": 0}, "thickness_mm": 200, "height_mm": 2700, "type": "exterior"},
    {"id": "w2", "start": {"x": 3500, "y": 0, "z": 0}, "end": {"x": 3500, "y": 4000, "z": 0}, "thickness_mm": 200, "height_mm": 2700, "type": "exterior"},
    {"id": "w3", "start": {"x": 3500, "y": 4000, "z": 0}, "end": {"x": 0, "y": 4000, "z": 0}, "thickness_mm": 200, "height_mm": 2700, "type": "exterior"},
    {"id": "w4", "start": {"x": 0, "y": 4000, "z": 0}, "end": {"x": 0, "y": 0, "z": 0}, "thickness_mm": 100, "height_mm": 2700, "type": "interior_partition"}
  ],
  "doors": [{"id": "d1", "wall_id": "w4", "position_mm": 1000, "width_mm": 900, "height_mm": 2000, "type": "single"}],
  "windows": [],
  "confidence": 0.92
}`

func newTestCoordinator(t *testing.T, mock *provider.Mock, failOtherProviders bool) *Coordinator {
	t.Helper()

	limiter := ratelimit.NewInProcessLimiter()
	ledger := usage.NewRingLedger(1000)
	accountant := usage.New(ledger, usage.StaticTier(types.TierEnterprise), 30*24*time.Hour)
	c := cache.New(cache.NewL1(100, 0), nil, time.Minute, 0)
	assembler := prompt.New(prompt.Default())

	dispatcher := provider.New(obslog.New("test"), resilience.RetryConfig{MaxAttempts: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1})
	dispatcher.Register(mock.Name(), mock, resilience.DefaultConfig(mock.Name()))
	for _, name := range []string{"vertex_ai", "anthropic", "openai"} {
		if name == mock.Name() {
			continue
		}
		other := provider.NewMock(name)
		other.SetFailing(failOtherProviders)
		dispatcher.Register(name, other, resilience.DefaultConfig(name))
	}

	return New(limiter, accountant, c, assembler, nil, dispatcher, nil, obslog.New("test"), 1000)
}

func layoutCmd(tenant, promptText string) types.AICommand {
	return types.AICommand{
		TenantID:   tenant,
		TaskType:   types.TaskLayout,
		Locale:     "en-US",
		PromptText: promptText,
		Complexity: types.ComplexityMedium,
		Tier:       types.TierEnterprise,
	}
}

func TestProcessCommand_SucceedsOnValidModelOutput(t *testing.T) {
	mock := provider.NewMock("github_models").WithResponder(func(provider.Request) (string, error) {
		return validLayoutJSON, nil
	})
	coord := newTestCoordinator(t, mock, false)

	result, err := coord.ProcessCommand(context.Background(), layoutCmd("tenant-1", "build a small house"))
	require.NoError(t, err)
	assert.Equal(t, types.StatusSucceeded, result.Status)
	assert.False(t, result.FallbackUsed)
	assert.NotNil(t, result.Artifact)
}

func TestProcessCommand_FallsBackOnInvalidModelOutput(t *testing.T) {
	mock := provider.NewMock("github_models").WithResponder(func(provider.Request) (string, error) {
		return "not json at all", nil
	})
	coord := newTestCoordinator(t, mock, false)

	result, err := coord.ProcessCommand(context.Background(), layoutCmd("tenant-1", "build a small house"))
	require.NoError(t, err)
	assert.Equal(t, types.StatusFallbackSucceeded, result.Status)
	assert.True(t, result.FallbackUsed)
	assert.True(t, result.RequiresHumanReview)
	assert.NotEmpty(t, result.FallbackReason)
}

func TestProcessCommand_FallsBackWhenAllProvidersExhausted(t *testing.T) {
	mock := provider.NewMock("github_models")
	mock.SetFailing(true)
	coord := newTestCoordinator(t, mock, true)

	result, err := coord.ProcessCommand(context.Background(), layoutCmd("tenant-1", "build a small house"))
	require.NoError(t, err)
	assert.True(t, result.FallbackUsed)
	assert.True(t, result.RequiresHumanReview)
}

func TestProcessCommand_SecondIdenticalCallHitsCache(t *testing.T) {
	var calls int
	mock := provider.NewMock("github_models").WithResponder(func(provider.Request) (string, error) {
		calls++
		return validLayoutJSON, nil
	})
	coord := newTestCoordinator(t, mock, false)

	cmd := layoutCmd("tenant-1", "build a small house")
	_, err := coord.ProcessCommand(context.Background(), cmd)
	require.NoError(t, err)

	cmd.CorrelationID = "" // simulate a fresh request with identical content
	_, err = coord.ProcessCommand(context.Background(), cmd)
	require.NoError(t, err)

	assert.Equal(t, 1, calls, "second identical command should be served from cache")
}

func TestProcessCommand_RejectsWhenRateLimited(t *testing.T) {
	mock := provider.NewMock("github_models").WithResponder(func(provider.Request) (string, error) {
		return validLayoutJSON, nil
	})
	coord := newTestCoordinator(t, mock, false)
	coord.rateLimitPerHour = 1

	cmd := layoutCmd("tenant-1", "first request")
	_, err := coord.ProcessCommand(context.Background(), cmd)
	require.NoError(t, err)

	cmd2 := layoutCmd("tenant-1", "second request")
	_, err = coord.ProcessCommand(context.Background(), cmd2)
	require.Error(t, err)
}

func TestProcessCommand_RejectsWhenQuotaExceeded(t *testing.T) {
	mock := provider.NewMock("github_models").WithResponder(func(provider.Request) (string, error) {
		return validLayoutJSON, nil
	})
	coord := newTestCoordinator(t, mock, false)
	coord.accountant = usage.New(usage.NewRingLedger(1000), usage.StaticTier(types.TierFree), 30*24*time.Hour)
	for i := 0; i < 10; i++ {
		coord.accountant.Record("tenant-1", usage.CategoryLayoutGenerations, 1, "seed", true)
	}

	_, err := coord.ProcessCommand(context.Background(), layoutCmd("tenant-1", "build a house"))
	require.Error(t, err)
}
