// Package types defines the tagged-variant domain types shared across the
// orchestrator: commands, results, artifacts, documents, projects and
// workflow steps. Keeping these as explicit structs (rather than ad-hoc
// maps) lets every component agree on a single shape for the data that
// flows between them.
package types

import "time"

// SubscriptionTier controls per-category usage limits and model access.
type SubscriptionTier string

const (
	TierFree         SubscriptionTier = "FREE"
	TierStarter      SubscriptionTier = "STARTER"
	TierProfessional SubscriptionTier = "PROFESSIONAL"
	TierEnterprise   SubscriptionTier = "ENTERPRISE"
)

// TaskType selects the artifact variant and the prompt/validation/fallback
// path a command takes through the pipeline.
type TaskType string

const (
	TaskLayout   TaskType = "layout"
	TaskRoom     TaskType = "room"
	TaskValidate TaskType = "validate"
	TaskAnalyze  TaskType = "analyze"
	TaskCustom   TaskType = "custom"
)

// Complexity drives provider selection and workflow template choice.
type Complexity string

const (
	ComplexitySimple Complexity = "simple"
	ComplexityMedium Complexity = "medium"
	ComplexityHigh   Complexity = "high"
)

// CommandStatus is the lifecycle state of an AICommand.
type CommandStatus string

const (
	StatusCreated          CommandStatus = "created"
	StatusRunning          CommandStatus = "running"
	StatusSucceeded        CommandStatus = "succeeded"
	StatusFailed           CommandStatus = "failed"
	StatusFallbackSucceeded CommandStatus = "fallback-succeeded"
)

// AICommand is a single natural-language design request submitted for
// orchestration.
type AICommand struct {
	CorrelationID string                 `json:"correlation_id"`
	TenantID      string                 `json:"tenant_id"`
	TaskType      TaskType               `json:"task_type"`
	Locale        string                 `json:"locale"`
	PromptText    string                 `json:"prompt_text"`
	Context       map[string]interface{} `json:"context"`
	Complexity    Complexity             `json:"complexity"`
	FileFormat    string                 `json:"file_format,omitempty"`
	Language      string                 `json:"language,omitempty"`

	// UserPreferredProvider, when set and compatible with the tenant's
	// tier, is honored by the dispatcher's model-selection table.
	UserPreferredProvider string `json:"user_preferred_provider,omitempty"`

	// DocumentType informs regional/model selection (e.g. "building_code").
	DocumentType string `json:"document_type,omitempty"`

	// AnalysisType distinguishes "creation" from
	// "existing_project_analysis" for C5's selection table.
	AnalysisType string `json:"analysis_type,omitempty"`

	Tier   SubscriptionTier `json:"tier"`
	Status CommandStatus    `json:"status"`

	CreatedAt time.Time `json:"created_at"`
}

// Artifact is the tagged union of task-specific structured results.
// LayoutArtifact, RoomArtifact and ValidationArtifact implement it.
type Artifact interface {
	ArtifactTaskType() TaskType
}

// ValidationReport is produced by the Output Validator (C6) and echoed
// back on the result so callers can see why a command fell back.
type ValidationReport struct {
	Errors          []string `json:"errors"`
	Warnings        []string `json:"warnings"`
	IsValid         bool     `json:"is_valid"`
	ConfidenceScore float64  `json:"confidence_score"`
}

// AICommandResult is the terminal output of ProcessCommand.
type AICommandResult struct {
	CorrelationID       string            `json:"correlation_id"`
	Status              CommandStatus     `json:"status"`
	Artifact            Artifact          `json:"artifact"`
	Confidence          float64           `json:"confidence"`
	RequiresHumanReview bool              `json:"requires_human_review"`
	ModelUsed           string            `json:"model_used"`
	ProviderUsed        string            `json:"provider_used"`
	FallbackUsed        bool              `json:"fallback_used"`
	FallbackReason      string            `json:"fallback_reason,omitempty"`
	ValidationReport    ValidationReport  `json:"validation_report"`
	Warnings            []string          `json:"warnings,omitempty"`
	ProcessingMS        int64             `json:"processing_ms"`
	TokensIn            int               `json:"tokens_in,omitempty"`
	TokensOut           int               `json:"tokens_out,omitempty"`
}

// Normalize enforces the two result invariants from the data model:
// fallback implies human review, and low confidence implies human review.
func (r *AICommandResult) Normalize(reviewThreshold float64) {
	if r.FallbackUsed {
		r.RequiresHumanReview = true
	}
	if r.Confidence < reviewThreshold {
		r.RequiresHumanReview = true
	}
}
