// Package coordinator implements C10: the single ProcessCommand entry
// point that sequences admission (C12), quota (C9), cache (C8), prompt
// assembly (C4, consulting C3), provider dispatch (C5), output
// validation (C6), fallback (C7), and usage recording (C9) — the data
// flow spec §2 and §4.10 describe. Grounded on the teacher's
// orchestration.Orchestrator as the "one coordinating type calling into
// every subsystem" shape, with the actual sequencing taken from spec
// §4.10's numbered steps rather than the teacher's task-routing logic.
package coordinator

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/archbuilder/orchestrator/internal/apperrors"
	"github.com/archbuilder/orchestrator/internal/cache"
	"github.com/archbuilder/orchestrator/internal/correlation"
	"github.com/archbuilder/orchestrator/internal/fallback"
	"github.com/archbuilder/orchestrator/internal/obslog"
	"github.com/archbuilder/orchestrator/internal/prompt"
	"github.com/archbuilder/orchestrator/internal/provider"
	"github.com/archbuilder/orchestrator/internal/rag"
	"github.com/archbuilder/orchestrator/internal/ratelimit"
	"github.com/archbuilder/orchestrator/internal/telemetry"
	"github.com/archbuilder/orchestrator/internal/types"
	"github.com/archbuilder/orchestrator/internal/usage"
	"github.com/archbuilder/orchestrator/internal/validate"
)

// ReviewThreshold is the default confidence below which a result is
// flagged for human review (spec §3's AICommandResult invariant).
const ReviewThreshold = 0.7

// RAGTopK is how many passages the coordinator retrieves per command.
const RAGTopK = 5

// Coordinator wires every orchestrator subsystem behind one operation.
type Coordinator struct {
	limiter    ratelimit.Limiter
	accountant *usage.Accountant
	cache      *cache.Cache
	assembler  *prompt.Assembler
	retriever  *rag.Retriever
	dispatcher *provider.Dispatcher
	tracer     *telemetry.Provider
	log        *obslog.Logger

	rateLimitPerHour int
}

// New creates a Coordinator from its fully constructed dependencies.
// tracer may be nil, in which case spans are skipped.
func New(
	limiter ratelimit.Limiter,
	accountant *usage.Accountant,
	c *cache.Cache,
	assembler *prompt.Assembler,
	retriever *rag.Retriever,
	dispatcher *provider.Dispatcher,
	tracer *telemetry.Provider,
	log *obslog.Logger,
	rateLimitPerHour int,
) *Coordinator {
	if log == nil {
		log = obslog.New("orchestrator")
	}
	return &Coordinator{
		limiter:          limiter,
		accountant:       accountant,
		cache:            c,
		assembler:        assembler,
		retriever:        retriever,
		dispatcher:       dispatcher,
		tracer:           tracer,
		log:              log.WithComponent("coordinator"),
		rateLimitPerHour: rateLimitPerHour,
	}
}

// categoryFor maps a task type to the usage category it consumes,
// per spec §4.9's category list.
func categoryFor(taskType types.TaskType) usage.Category {
	if taskType == types.TaskLayout {
		return usage.CategoryLayoutGenerations
	}
	return usage.CategoryAIRequests
}

// familyFor maps a dispatcher provider name to the prompt assembler's
// provider-family vocabulary.
func familyFor(providerName string) string {
	switch providerName {
	case "vertex_ai":
		return "gemini"
	case "anthropic":
		return "anthropic"
	default: // "github_models", "openai"
		return "openai"
	}
}

// ProcessCommand runs cmd through the full pipeline in spec §4.10's
// order, returning a terminal AICommandResult whether it succeeded or
// fell back. A command rejected at admission (rate limit or quota)
// returns an empty result and an error.
func (c *Coordinator) ProcessCommand(ctx context.Context, cmd types.AICommand) (types.AICommandResult, error) {
	start := time.Now()
	if cmd.CorrelationID == "" {
		cmd.CorrelationID = correlation.Generate("cmd")
	}
	ctx = correlation.WithID(ctx, cmd.CorrelationID)
	log := c.log.FromContext(ctx)

	span := func(name string) (context.Context, func()) {
		if c.tracer == nil {
			return ctx, func() {}
		}
		spanCtx, sp := c.tracer.StartSpan(ctx, name, attribute.String("task_type", string(cmd.TaskType)), attribute.String("tenant_id", cmd.TenantID))
		return spanCtx, func() { sp.End() }
	}

	// 1. admit
	admitCtx, endAdmit := span("coordinator.admit")
	allowed, retryAfter, err := c.limiter.Allow(admitCtx, cmd.TenantID, c.rateLimitPerHour, time.Hour)
	endAdmit()
	if err != nil {
		return types.AICommandResult{}, apperrors.New("coordinator.admit", apperrors.CodeInternal, apperrors.KindInternal, "rate limiter error", err)
	}
	if !allowed {
		log.Warn("rate limited", obslog.Fields{"retry_after_ms": retryAfter.Milliseconds()})
		return types.AICommandResult{}, apperrors.New("coordinator.admit", apperrors.CodeRateLimited, apperrors.KindQuota, "rate limit exceeded", apperrors.ErrRateLimited)
	}

	// 2. usage pre-check
	category := categoryFor(cmd.TaskType)
	check := c.accountant.CheckAllowed(cmd.TenantID, category, 1)
	if !check.Allowed {
		log.Warn("quota exceeded", obslog.Fields{"category": string(category)})
		c.accountant.Record(cmd.TenantID, category, 0, cmd.CorrelationID, false)
		return types.AICommandResult{}, apperrors.New("coordinator.usage", apperrors.CodeQuotaExceeded, apperrors.KindQuota, "quota exceeded", apperrors.ErrQuotaExceeded)
	}

	// 3. cache lookup
	if hit, ok, err := c.cache.Get(ctx, cmd); err == nil && ok {
		log.Info("cache hit", obslog.Fields{"task_type": string(cmd.TaskType)})
		return hit, nil
	}

	result, fellBack, err := c.runPipeline(ctx, cmd, span)
	if err != nil {
		return types.AICommandResult{}, err
	}

	result.Normalize(ReviewThreshold)
	result.ProcessingMS = time.Since(start).Milliseconds()

	// 8/9. store + record (store only on a non-fallback success path is
	// too narrow — both outcomes are cacheable/recordable terminal
	// states per spec §4.10 step 8/9).
	if storeErr := c.cache.Store(ctx, cmd, result); storeErr != nil {
		log.Warn("cache store failed", obslog.Fields{"error": storeErr.Error()})
	}
	c.accountant.Record(cmd.TenantID, category, 1, cmd.CorrelationID, !fellBack)

	return result, nil
}

// runPipeline executes steps 4-9 of spec §4.10: prompt build, dispatch,
// validate, and — on any failure — fallback. It never returns an error
// for a model/validation failure; those are absorbed into a
// fallback-produced result, matching the coordinator's "never surfaces
// a raw provider error to the caller" contract.
func (c *Coordinator) runPipeline(ctx context.Context, cmd types.AICommand, span func(string) (context.Context, func())) (types.AICommandResult, bool, error) {
	log := c.log.FromContext(ctx)

	// 4. select + 5. build prompt (consults C3)
	promptCtx, endPrompt := span("coordinator.assemble_prompt")
	sel := provider.SelectModel(provider.SelectionInput{
		Language:       cmd.Language,
		DocumentType:   cmd.DocumentType,
		Complexity:     string(cmd.Complexity),
		FileFormat:     cmd.FileFormat,
		AnalysisType:   cmd.AnalysisType,
		UserPreference: cmd.UserPreferredProvider,
	})

	var passages []string
	if c.retriever != nil {
		hits, err := c.retriever.Query(promptCtx, cmd.PromptText, types.VectorFilter{Language: cmd.Language}, RAGTopK)
		if err != nil {
			log.Warn("rag query failed, proceeding without retrieval context", obslog.Fields{"error": err.Error()})
		}
		for _, h := range hits {
			passages = append(passages, h.Chunk.Content)
		}
	}

	promptText, err := c.assembler.Build(cmd, prompt.Context{
		RetrievedPassages: passages,
		ProviderFamily:    familyFor(sel.Provider),
	})
	endPrompt()
	if err != nil {
		log.Error("prompt assembly failed, falling back", obslog.Fields{"error": err.Error()})
		return c.generateFallback(cmd, "prompt assembly failed: "+err.Error()), true, nil
	}

	// 6. dispatch
	dispatchCtx, endDispatch := span("coordinator.dispatch")
	resp, _, err := c.dispatcher.Dispatch(dispatchCtx, cmd, provider.Request{
		Model:       sel.Model,
		Prompt:      promptText,
		MaxTokens:   4096,
		Temperature: 0.4,
	})
	endDispatch()
	if err != nil {
		log.Warn("dispatch exhausted all providers, falling back", obslog.Fields{"error": err.Error()})
		return c.generateFallback(cmd, "provider dispatch failed: "+err.Error()), true, nil
	}

	// 7. validate
	_, endValidate := span("coordinator.validate")
	artifact, report, err := validate.Validate(cmd.TaskType, resp.Text, validate.DefaultContext())
	endValidate()
	if err != nil || !report.IsValid {
		reason := "output validation failed"
		if err != nil {
			reason = err.Error()
		} else if len(report.Errors) > 0 {
			reason = report.Errors[0]
		}
		log.Warn("validation failed, falling back", obslog.Fields{"reason": reason})
		return c.generateFallback(cmd, reason), true, nil
	}

	return types.AICommandResult{
		CorrelationID:    cmd.CorrelationID,
		Status:           types.StatusSucceeded,
		Artifact:         artifact,
		Confidence:       report.ConfidenceScore,
		ModelUsed:        resp.Model,
		ProviderUsed:     resp.Provider,
		ValidationReport: report,
		Warnings:         report.Warnings,
		TokensIn:         resp.PromptTokens,
		TokensOut:        resp.CompletionTokens,
	}, false, nil
}

// generateFallback produces a deterministic, never-calls-out result via
// C7, tagged as requiring human review per spec §3's invariant.
func (c *Coordinator) generateFallback(cmd types.AICommand, reason string) types.AICommandResult {
	result := types.AICommandResult{
		CorrelationID:  cmd.CorrelationID,
		Status:         types.StatusFallbackSucceeded,
		FallbackUsed:   true,
		FallbackReason: reason,
		Warnings:       []string{reason},
	}

	switch cmd.TaskType {
	case types.TaskLayout:
		artifact := fallback.GenerateLayout(0, nil)
		artifact.FallbackReason = reason
		result.Artifact = artifact
		result.Confidence = artifact.Confidence
		result.ValidationReport = fallback.GenerateValidation(artifact.Rooms, artifact.Doors)
	case types.TaskRoom:
		artifact := fallback.GenerateRoomArtifact("bedroom", 0)
		result.Artifact = artifact
		result.Confidence = artifact.Confidence
	case types.TaskValidate:
		artifact := fallback.GenerateValidation(nil, nil)
		result.Artifact = artifact
		result.Confidence = artifact.ComplianceScore
	default:
		result.Artifact = types.GenericArtifact{Task: cmd.TaskType, Data: map[string]interface{}{"fallback_reason": reason}}
		result.Confidence = 0.5
	}

	result.RequiresHumanReview = true
	return result
}
