package cache

import (
	"encoding/json"
	"fmt"

	"github.com/archbuilder/orchestrator/internal/types"
)

// envelope is the cache's own wire format for AICommandResult: Artifact
// is a non-empty interface (types.Artifact), so encoding/json cannot
// unmarshal into it directly without knowing the concrete type up
// front. The envelope carries the raw artifact bytes plus the task type
// needed to pick the right concrete struct on decode.
type envelope struct {
	CorrelationID       string                  `json:"correlation_id"`
	Status              types.CommandStatus     `json:"status"`
	TaskType            types.TaskType          `json:"task_type"`
	Artifact            json.RawMessage         `json:"artifact"`
	Confidence          float64                 `json:"confidence"`
	RequiresHumanReview bool                    `json:"requires_human_review"`
	ModelUsed           string                  `json:"model_used"`
	ProviderUsed        string                  `json:"provider_used"`
	FallbackUsed        bool                    `json:"fallback_used"`
	FallbackReason      string                  `json:"fallback_reason,omitempty"`
	ValidationReport    types.ValidationReport  `json:"validation_report"`
	Warnings            []string                `json:"warnings,omitempty"`
	ProcessingMS        int64                   `json:"processing_ms"`
	TokensIn            int                     `json:"tokens_in,omitempty"`
	TokensOut           int                     `json:"tokens_out,omitempty"`
}

func encodeResult(taskType types.TaskType, result types.AICommandResult) ([]byte, error) {
	var artifactRaw json.RawMessage
	if result.Artifact != nil {
		raw, err := json.Marshal(result.Artifact)
		if err != nil {
			return nil, fmt.Errorf("encode artifact: %w", err)
		}
		artifactRaw = raw
	}

	env := envelope{
		CorrelationID:       result.CorrelationID,
		Status:              result.Status,
		TaskType:            taskType,
		Artifact:            artifactRaw,
		Confidence:          result.Confidence,
		RequiresHumanReview: result.RequiresHumanReview,
		ModelUsed:           result.ModelUsed,
		ProviderUsed:        result.ProviderUsed,
		FallbackUsed:        result.FallbackUsed,
		FallbackReason:      result.FallbackReason,
		ValidationReport:    result.ValidationReport,
		Warnings:            result.Warnings,
		ProcessingMS:        result.ProcessingMS,
		TokensIn:            result.TokensIn,
		TokensOut:           result.TokensOut,
	}
	return json.Marshal(env)
}

func decodeResult(raw []byte) (types.AICommandResult, error) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return types.AICommandResult{}, fmt.Errorf("decode envelope: %w", err)
	}

	artifact, err := decodeArtifact(env.TaskType, env.Artifact)
	if err != nil {
		return types.AICommandResult{}, fmt.Errorf("decode artifact: %w", err)
	}

	return types.AICommandResult{
		CorrelationID:       env.CorrelationID,
		Status:              env.Status,
		Artifact:            artifact,
		Confidence:          env.Confidence,
		RequiresHumanReview: env.RequiresHumanReview,
		ModelUsed:           env.ModelUsed,
		ProviderUsed:        env.ProviderUsed,
		FallbackUsed:        env.FallbackUsed,
		FallbackReason:      env.FallbackReason,
		ValidationReport:    env.ValidationReport,
		Warnings:            env.Warnings,
		ProcessingMS:        env.ProcessingMS,
		TokensIn:            env.TokensIn,
		TokensOut:           env.TokensOut,
	}, nil
}

func decodeArtifact(taskType types.TaskType, raw json.RawMessage) (types.Artifact, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	switch taskType {
	case types.TaskLayout:
		var a types.LayoutArtifact
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, err
		}
		return a, nil
	case types.TaskRoom:
		var a types.RoomArtifact
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, err
		}
		return a, nil
	case types.TaskValidate:
		var a types.ValidationArtifact
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, err
		}
		return a, nil
	default:
		var a types.GenericArtifact
		if err := json.Unmarshal(raw, &a); err != nil {
			return nil, err
		}
		a.Task = taskType
		return a, nil
	}
}
