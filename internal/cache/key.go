package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/archbuilder/orchestrator/internal/types"
)

// keyFields is the subset of AICommand that determines cache identity.
// correlation_id and timestamps are deliberately excluded: two requests
// with identical content should hit the same cache entry even though
// each carries a distinct correlation id.
type keyFields struct {
	TenantID               string                 `json:"tenant_id"`
	TaskType               types.TaskType         `json:"task_type"`
	Locale                 string                 `json:"locale"`
	PromptText             string                 `json:"prompt_text"`
	Context                map[string]interface{} `json:"context"`
	Complexity             types.Complexity       `json:"complexity"`
	FileFormat             string                 `json:"file_format"`
	Language               string                 `json:"language"`
	UserPreferredProvider  string                 `json:"user_preferred_provider"`
	DocumentType           string                 `json:"document_type"`
	AnalysisType           string                 `json:"analysis_type"`
	Tier                   types.SubscriptionTier `json:"tier"`
}

// Key computes a stable cache key for cmd. encoding/json serializes Go
// maps with keys sorted lexicographically, so Context produces the same
// byte sequence regardless of insertion order.
func Key(cmd types.AICommand) string {
	fields := keyFields{
		TenantID:              cmd.TenantID,
		TaskType:              cmd.TaskType,
		Locale:                cmd.Locale,
		PromptText:            cmd.PromptText,
		Context:               cmd.Context,
		Complexity:            cmd.Complexity,
		FileFormat:            cmd.FileFormat,
		Language:              cmd.Language,
		UserPreferredProvider: cmd.UserPreferredProvider,
		DocumentType:          cmd.DocumentType,
		AnalysisType:          cmd.AnalysisType,
		Tier:                  cmd.Tier,
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		// Fields is a fixed, marshalable struct; only an unmarshalable
		// Context value (e.g. a channel) could get here, which the
		// command's JSON-boundary origin never produces.
		panic("cache: unmarshalable command fields: " + err.Error())
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
