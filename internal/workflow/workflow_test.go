package workflow

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archbuilder/orchestrator/internal/cache"
	"github.com/archbuilder/orchestrator/internal/coordinator"
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

func newTestCoordinator(t *testing.T, responder func(provider.Request) (string, error)) *coordinator.Coordinator {
	t.Helper()

	limiter := ratelimit.NewInProcessLimiter()
	accountant := usage.New(usage.NewRingLedger(1000), usage.StaticTier(types.TierEnterprise), 30*24*time.Hour)
	c := cache.New(cache.NewL1(100, 0), nil, time.Minute, 0)
	assembler := prompt.New(prompt.Default())

	dispatcher := provider.New(obslog.New("test"), resilience.RetryConfig{MaxAttempts: 1, InitialDelay: time.Millisecond, MaxDelay: time.Millisecond, BackoffFactor: 1})
	mock := provider.NewMock("github_models").WithResponder(responder)
	dispatcher.Register(mock.Name(), mock, resilience.DefaultConfig(mock.Name()))
	for _, name := range []string{"vertex_ai", "anthropic", "openai"} {
		other := provider.NewMock(name)
		other.SetFailing(true)
		dispatcher.Register(name, other, resilience.DefaultConfig(name))
	}

	return coordinator.New(limiter, accountant, c, assembler, nil, dispatcher, nil, obslog.New("test"), 10000)
}

func alwaysValidCoordinator(t *testing.T) *coordinator.Coordinator {
	return newTestCoordinator(t, func(provider.Request) (string, error) { return validLayoutJSON, nil })
}

func testEngine(t *testing.T, coord *coordinator.Coordinator) *Engine {
	t.Helper()
	e := New(obslog.New("test"))
	RegisterDefaultExecutors(e, coord, nil)
	return e
}

func TestBuildSteps_TemplateStepCounts(t *testing.T) {
	assert.Len(t, BuildSteps(types.ComplexitySimple), 9)
	assert.Len(t, BuildSteps(types.ComplexityMedium), 13)
	assert.Len(t, BuildSteps(types.ComplexityHigh), 19)
}

func TestBuildSteps_DepsReferenceOnlyKindsInTemplate(t *testing.T) {
	for _, c := range []types.Complexity{types.ComplexitySimple, types.ComplexityMedium, types.ComplexityHigh} {
		require.NoError(t, validateNoCycles(BuildSteps(c)))
	}
}

func TestRunProject_CompletesAllStepsOnSuccess(t *testing.T) {
	coord := alwaysValidCoordinator(t)
	e := testEngine(t, coord)
	proj := NewProject("proj-1", "tenant-1", types.ComplexitySimple, map[string]interface{}{
		"description": "a small house", "tier": types.TierEnterprise,
	})

	require.NoError(t, e.RunProject(context.Background(), proj))

	assert.Equal(t, types.ProjectCompleted, proj.Status)
	completed, total, eta := proj.Progress()
	assert.Equal(t, total, completed)
	assert.Zero(t, eta)
	assert.Contains(t, proj.ArtifactBag, types.StepGenerateLayout)
	assert.Contains(t, proj.ArtifactBag, types.StepFinalReview)
}

func TestRunProject_SkipsStepWhenDependencyNeverCompletes(t *testing.T) {
	coord := alwaysValidCoordinator(t)
	e := testEngine(t, coord)
	proj := NewProject("proj-2", "tenant-1", types.ComplexitySimple, map[string]interface{}{"description": "house"})

	// simulate a prior partial run that already skipped analyze_reqs, so
	// generate_layout's only dependency is unmet when the engine reaches it.
	stepOfKind(proj, types.StepAnalyzeReqs).Status = types.StepSkipped

	require.NoError(t, e.RunProject(context.Background(), proj))

	layoutStep := stepOfKind(proj, types.StepGenerateLayout)
	assert.Equal(t, types.StepSkipped, layoutStep.Status)
	assert.Equal(t, types.ProjectPartiallyCompleted, proj.Status)
}

func TestRunProject_StopsImmediatelyOnAlreadyFailedStep(t *testing.T) {
	coord := alwaysValidCoordinator(t)
	e := testEngine(t, coord)
	proj := NewProject("proj-2b", "tenant-1", types.ComplexitySimple, map[string]interface{}{"description": "house"})

	stepOfKind(proj, types.StepAnalyzeReqs).Status = types.StepFailed

	require.NoError(t, e.RunProject(context.Background(), proj))
	assert.Equal(t, types.ProjectFailed, proj.Status)
	// nothing after the failed step ran
	assert.Equal(t, types.StepPending, stepOfKind(proj, types.StepGenerateLayout).Status)
}

func TestRunProject_RetriesThenFailsAndStopsOnPersistentError(t *testing.T) {
	calls := 0
	coord := newTestCoordinator(t, func(provider.Request) (string, error) {
		calls++
		return "not valid json", nil
	})
	e := testEngine(t, coord)
	proj := NewProject("proj-3", "tenant-1", types.ComplexitySimple, map[string]interface{}{"description": "house"})

	// force the generate_layout executor itself to fail (not just fall back)
	// by registering one that always errors, isolating retry/stop behavior
	// from the coordinator's own fallback absorption.
	e.Register(types.StepGenerateLayout, func(ctx context.Context, proj *types.Project, step *types.WorkflowStep) (interface{}, error) {
		return nil, assert.AnError
	})

	require.NoError(t, e.RunProject(context.Background(), proj))

	layoutStep := stepOfKind(proj, types.StepGenerateLayout)
	require.NotNil(t, layoutStep)
	assert.Equal(t, types.StepFailed, layoutStep.Status)
	assert.Equal(t, layoutStep.MaxRetries+1, layoutStep.Attempts)
	assert.Equal(t, types.ProjectFailed, proj.Status)

	// steps after the failed one never ran
	validateStep := stepAfter(proj, layoutStep.Index)
	assert.Equal(t, types.StepPending, validateStep.Status)
	_ = calls
}

func TestEngine_RetryStepResumesAfterFix(t *testing.T) {
	coord := alwaysValidCoordinator(t)
	e := testEngine(t, coord)
	proj := NewProject("proj-4", "tenant-1", types.ComplexitySimple, map[string]interface{}{"description": "house"})

	attempt := 0
	e.Register(types.StepGenerateLayout, func(ctx context.Context, proj *types.Project, step *types.WorkflowStep) (interface{}, error) {
		attempt++
		if attempt <= step.MaxRetries+1 {
			return nil, assert.AnError
		}
		return "layout-ok", nil
	})

	require.NoError(t, e.RunProject(context.Background(), proj))
	layoutStep := stepOfKind(proj, types.StepGenerateLayout)
	require.Equal(t, types.StepFailed, layoutStep.Status)

	// fix the executor, then retry just that step
	e.Register(types.StepGenerateLayout, func(ctx context.Context, proj *types.Project, step *types.WorkflowStep) (interface{}, error) {
		return "layout-ok", nil
	})
	require.NoError(t, e.RetryStep(context.Background(), proj, layoutStep.StepID))

	assert.Equal(t, types.ProjectCompleted, proj.Status)
	assert.Equal(t, types.StepCompleted, layoutStep.Status)
}

func stepOfKind(proj *types.Project, kind types.StepKind) *types.WorkflowStep {
	for _, s := range proj.Steps {
		if s.Kind == kind {
			return s
		}
	}
	return nil
}

func stepAfter(proj *types.Project, index int) *types.WorkflowStep {
	for _, s := range proj.Steps {
		if s.Index == index+1 {
			return s
		}
	}
	return nil
}
