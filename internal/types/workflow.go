package types

import "time"

// ProjectStatus is the lifecycle state of a workflow project.
type ProjectStatus string

const (
	ProjectCreated            ProjectStatus = "created"
	ProjectRunning            ProjectStatus = "running"
	ProjectCompleted          ProjectStatus = "completed"
	ProjectPartiallyCompleted ProjectStatus = "partially_completed"
	ProjectFailed             ProjectStatus = "failed"
)

// StepKind categorizes a workflow step for dependency resolution.
type StepKind string

const (
	StepParseDocs        StepKind = "parse_docs"
	StepIndexRAG         StepKind = "index_rag"
	StepAnalyzeReqs      StepKind = "analyze_reqs"
	StepAnalyzeSite      StepKind = "analyze_site"
	StepGenerateLayout   StepKind = "generate_layout"
	StepValidate         StepKind = "validate"
	StepOptimize         StepKind = "optimize"
	StepPrepareRevit     StepKind = "prepare_revit"
	StepFinalReview      StepKind = "final_review"
)

// StepStatus is the lifecycle state of a single workflow step.
type StepStatus string

const (
	StepPending   StepStatus = "pending"
	StepRunning   StepStatus = "running"
	StepCompleted StepStatus = "completed"
	StepFailed    StepStatus = "failed"
	StepSkipped   StepStatus = "skipped"
)

// WorkflowStep is one node in a project's step list.
type WorkflowStep struct {
	StepID           string        `json:"step_id"`
	Index            int           `json:"index"`
	Kind             StepKind      `json:"kind"`
	Deps             []StepKind    `json:"deps"`
	Status           StepStatus    `json:"status"`
	Attempts         int           `json:"attempts"`
	MaxRetries       int           `json:"max_retries"`
	EstimatedMinutes float64       `json:"estimated_minutes"`
	ActualMinutes    float64       `json:"actual_minutes"`
	Output           interface{}   `json:"output,omitempty"`
	Error            string        `json:"error,omitempty"`
	StartedAt        *time.Time    `json:"started_at,omitempty"`
	CompletedAt      *time.Time    `json:"completed_at,omitempty"`
}

// Project is the workflow root: an ordered step list plus the shared
// artifact bag later steps read from.
type Project struct {
	ProjectID     string                 `json:"project_id"`
	TenantID      string                 `json:"tenant_id"`
	RequestFields map[string]interface{} `json:"request_fields"`
	Complexity    Complexity             `json:"complexity"`
	Status        ProjectStatus          `json:"status"`
	Steps         []*WorkflowStep        `json:"steps"`
	ArtifactBag   map[StepKind]interface{} `json:"artifact_bag"`
	CreatedAt     time.Time              `json:"created_at"`
	UpdatedAt     time.Time              `json:"updated_at"`
}

// StepByID finds a step by id, or nil.
func (p *Project) StepByID(stepID string) *WorkflowStep {
	for _, s := range p.Steps {
		if s.StepID == stepID {
			return s
		}
	}
	return nil
}

// CompletedKinds returns the set of step kinds that have completed.
func (p *Project) CompletedKinds() map[StepKind]struct{} {
	out := make(map[StepKind]struct{})
	for _, s := range p.Steps {
		if s.Status == StepCompleted {
			out[s.Kind] = struct{}{}
		}
	}
	return out
}

// Progress reports completed/total step counts and the ETA in minutes for
// all steps still pending.
func (p *Project) Progress() (completed, total int, etaMinutes float64) {
	total = len(p.Steps)
	for _, s := range p.Steps {
		if s.Status == StepCompleted {
			completed++
		}
		if s.Status == StepPending {
			etaMinutes += s.EstimatedMinutes
		}
	}
	return completed, total, etaMinutes
}

// RecomputeStatus derives the project status from its steps' statuses,
// enforcing the "completed iff all steps completed" invariant.
func (p *Project) RecomputeStatus() {
	allDone := true
	anyFailed := false
	anySkipped := false
	anyRunning := false
	for _, s := range p.Steps {
		switch s.Status {
		case StepCompleted:
		case StepFailed:
			anyFailed = true
			allDone = false
		case StepSkipped:
			anySkipped = true
			allDone = false
		case StepRunning, StepPending:
			anyRunning = true
			allDone = false
		}
	}
	switch {
	case allDone:
		p.Status = ProjectCompleted
	case anyFailed:
		p.Status = ProjectFailed
	case anySkipped && !anyRunning:
		p.Status = ProjectPartiallyCompleted
	default:
		p.Status = ProjectRunning
	}
}
