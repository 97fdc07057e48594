package workflow

import (
	"context"
	"fmt"
	"time"

	"github.com/archbuilder/orchestrator/internal/obslog"
	"github.com/archbuilder/orchestrator/internal/types"
)

// StepExecutor runs one workflow step and returns the value stored into
// the project's artifact bag under step.Kind.
type StepExecutor func(ctx context.Context, proj *types.Project, step *types.WorkflowStep) (interface{}, error)

// Engine runs a Project's steps in declared index order, gating each on
// its declared kind dependencies and retrying failures up to the step's
// MaxRetries before stopping the whole workflow (spec §4.11).
type Engine struct {
	executors map[types.StepKind]StepExecutor
	log       *obslog.Logger
}

// New creates an empty Engine; register executors with Register before
// calling RunProject.
func New(log *obslog.Logger) *Engine {
	if log == nil {
		log = obslog.New("workflow")
	}
	return &Engine{
		executors: make(map[types.StepKind]StepExecutor),
		log:       log.WithComponent("workflow"),
	}
}

// Register binds an executor to a step kind, overwriting any prior one.
func (e *Engine) Register(kind types.StepKind, fn StepExecutor) {
	e.executors[kind] = fn
}

// RunProject advances proj from its current step statuses to completion
// or to the first unrecoverable step failure. Steps already in a
// terminal state (completed/skipped) are left untouched, so calling
// RunProject again after RetryStep resumes rather than restarts.
func (e *Engine) RunProject(ctx context.Context, proj *types.Project) error {
	if proj.ArtifactBag == nil {
		proj.ArtifactBag = make(map[types.StepKind]interface{})
	}
	proj.Status = types.ProjectRunning

	for _, step := range proj.Steps {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		switch step.Status {
		case types.StepCompleted, types.StepSkipped:
			continue
		case types.StepFailed:
			proj.RecomputeStatus()
			return nil
		}

		if !depsSatisfied(step, proj.CompletedKinds()) {
			step.Status = types.StepSkipped
			e.log.Warn("step skipped: unmet dependencies", obslog.Fields{"project_id": proj.ProjectID, "step_id": step.StepID, "kind": string(step.Kind)})
			continue
		}

		if err := e.runStep(ctx, proj, step); err != nil {
			e.log.Error("step failed, stopping workflow", obslog.Fields{"project_id": proj.ProjectID, "step_id": step.StepID, "error": err.Error()})
			proj.RecomputeStatus()
			return nil
		}
	}

	proj.RecomputeStatus()
	return nil
}

// runStep executes step, retrying up to step.MaxRetries additional
// times on failure before marking it failed.
func (e *Engine) runStep(ctx context.Context, proj *types.Project, step *types.WorkflowStep) error {
	exec, ok := e.executors[step.Kind]
	if !ok {
		step.Status = types.StepFailed
		step.Error = fmt.Sprintf("no executor registered for kind %q", step.Kind)
		return fmt.Errorf("%s", step.Error)
	}

	for {
		if ctx.Err() != nil {
			return ctx.Err()
		}

		step.Attempts++
		step.Status = types.StepRunning
		start := time.Now()
		step.StartedAt = &start

		output, err := exec(ctx, proj, step)
		step.ActualMinutes = time.Since(start).Minutes()

		if err == nil {
			completedAt := time.Now()
			step.CompletedAt = &completedAt
			step.Status = types.StepCompleted
			step.Output = output
			step.Error = ""
			proj.ArtifactBag[step.Kind] = output
			return nil
		}

		step.Error = err.Error()
		if step.Attempts > step.MaxRetries {
			step.Status = types.StepFailed
			return err
		}
		e.log.Warn("step attempt failed, retrying", obslog.Fields{"project_id": proj.ProjectID, "step_id": step.StepID, "attempt": step.Attempts, "error": err.Error()})
	}
}

// RetryStep resets a failed step to pending and resumes the workflow
// from it, per spec §4.11's RetryStep(project_id, step_id) operation.
func (e *Engine) RetryStep(ctx context.Context, proj *types.Project, stepID string) error {
	step := proj.StepByID(stepID)
	if step == nil {
		return fmt.Errorf("workflow: no step %q in project %q", stepID, proj.ProjectID)
	}
	if step.Status != types.StepFailed {
		return fmt.Errorf("workflow: step %q is %s, not failed", stepID, step.Status)
	}

	step.Status = types.StepPending
	step.Attempts = 0
	step.Error = ""
	step.StartedAt = nil
	step.CompletedAt = nil

	return e.RunProject(ctx, proj)
}

// NewProject constructs a Project from its template, ready for RunProject.
func NewProject(projectID, tenantID string, complexity types.Complexity, requestFields map[string]interface{}) *types.Project {
	steps := BuildSteps(complexity)
	if err := validateNoCycles(steps); err != nil {
		panic(err) // template bug, not a runtime condition — caught by tests
	}
	now := time.Now()
	return &types.Project{
		ProjectID:     projectID,
		TenantID:      tenantID,
		RequestFields: requestFields,
		Complexity:    complexity,
		Status:        types.ProjectCreated,
		Steps:         steps,
		ArtifactBag:   make(map[types.StepKind]interface{}),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
}
