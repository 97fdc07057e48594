package workflow

import (
	"context"
	"fmt"

	"github.com/archbuilder/orchestrator/internal/coordinator"
	"github.com/archbuilder/orchestrator/internal/rag"
	"github.com/archbuilder/orchestrator/internal/rag/chunker"
	"github.com/archbuilder/orchestrator/internal/types"
)

// sourceDocument is one entry of proj.RequestFields["documents"], the
// shape a project's intake step is expected to populate before the
// workflow starts.
type sourceDocument struct {
	DocID          string
	Content        string
	Language       string
	IsBuildingCode bool
}

func sourceDocuments(proj *types.Project) []sourceDocument {
	raw, ok := proj.RequestFields["documents"]
	if !ok {
		return nil
	}
	list, ok := raw.([]sourceDocument)
	if !ok {
		return nil
	}
	return list
}

func fieldString(proj *types.Project, key string) string {
	if v, ok := proj.RequestFields[key].(string); ok {
		return v
	}
	return ""
}

// RegisterDefaultExecutors wires the nine step kinds: parse_docs counts
// the request's documents, index_rag drives the retriever (C3) directly,
// generate_layout/validate/
// optimize route through the coordinator (C10) so every AI-authored
// output still goes through admission, caching, and validation, and
// analyze_reqs/analyze_site reuse the same coordinator pipeline with the
// analyze task type since they are themselves AI-generated analyses.
// prepare_revit and final_review are pure artifact-bag aggregation with
// no further model involvement, since nothing in the stack models a
// Revit export or human sign-off step.
func RegisterDefaultExecutors(e *Engine, coord *coordinator.Coordinator, retriever *rag.Retriever) {
	e.Register(types.StepParseDocs, func(ctx context.Context, proj *types.Project, step *types.WorkflowStep) (interface{}, error) {
		docs := sourceDocuments(proj)
		return map[string]interface{}{"document_count": len(docs)}, nil
	})

	e.Register(types.StepIndexRAG, func(ctx context.Context, proj *types.Project, step *types.WorkflowStep) (interface{}, error) {
		if retriever == nil {
			return map[string]interface{}{"indexed_chunks": 0}, nil
		}
		total := 0
		for _, doc := range sourceDocuments(proj) {
			n, err := retriever.IndexDocument(ctx, doc.DocID, doc.Content, chunker.Input{
				Language:       doc.Language,
				IsBuildingCode: doc.IsBuildingCode,
			})
			if err != nil {
				return nil, fmt.Errorf("index %s: %w", doc.DocID, err)
			}
			total += n
		}
		return map[string]interface{}{"indexed_chunks": total}, nil
	})

	e.Register(types.StepAnalyzeReqs, analysisExecutor(coord, "requirements"))
	e.Register(types.StepAnalyzeSite, analysisExecutor(coord, "site"))

	e.Register(types.StepGenerateLayout, func(ctx context.Context, proj *types.Project, step *types.WorkflowStep) (interface{}, error) {
		result, err := coord.ProcessCommand(ctx, types.AICommand{
			TenantID:   proj.TenantID,
			TaskType:   types.TaskLayout,
			PromptText: fieldString(proj, "description"),
			Complexity: proj.Complexity,
			Tier:       tierOf(proj),
		})
		if err != nil {
			return nil, err
		}
		return result, nil
	})

	e.Register(types.StepValidate, func(ctx context.Context, proj *types.Project, step *types.WorkflowStep) (interface{}, error) {
		result, err := coord.ProcessCommand(ctx, types.AICommand{
			TenantID:   proj.TenantID,
			TaskType:   types.TaskValidate,
			PromptText: fieldString(proj, "description"),
			Complexity: proj.Complexity,
			Tier:       tierOf(proj),
		})
		if err != nil {
			return nil, err
		}
		return result, nil
	})

	e.Register(types.StepOptimize, func(ctx context.Context, proj *types.Project, step *types.WorkflowStep) (interface{}, error) {
		result, err := coord.ProcessCommand(ctx, types.AICommand{
			TenantID:   proj.TenantID,
			TaskType:   types.TaskLayout,
			PromptText: "optimize the existing layout: " + fieldString(proj, "description"),
			Complexity: proj.Complexity,
			Tier:       tierOf(proj),
		})
		if err != nil {
			return nil, err
		}
		return result, nil
	})

	e.Register(types.StepPrepareRevit, func(ctx context.Context, proj *types.Project, step *types.WorkflowStep) (interface{}, error) {
		layout, ok := proj.ArtifactBag[types.StepGenerateLayout]
		if !ok {
			return nil, fmt.Errorf("prepare_revit: no generate_layout artifact in bag")
		}
		return map[string]interface{}{"export_format": "revit", "source_artifact": layout}, nil
	})

	e.Register(types.StepFinalReview, func(ctx context.Context, proj *types.Project, step *types.WorkflowStep) (interface{}, error) {
		completed, total, _ := proj.Progress()
		return map[string]interface{}{"completed_steps": completed, "total_steps": total}, nil
	})
}

func analysisExecutor(coord *coordinator.Coordinator, analysisType string) StepExecutor {
	return func(ctx context.Context, proj *types.Project, step *types.WorkflowStep) (interface{}, error) {
		result, err := coord.ProcessCommand(ctx, types.AICommand{
			TenantID:     proj.TenantID,
			TaskType:     types.TaskAnalyze,
			PromptText:   fieldString(proj, "description"),
			AnalysisType: analysisType,
			Complexity:   proj.Complexity,
			Tier:         tierOf(proj),
		})
		if err != nil {
			return nil, err
		}
		return result, nil
	}
}

func tierOf(proj *types.Project) types.SubscriptionTier {
	if v, ok := proj.RequestFields["tier"].(types.SubscriptionTier); ok {
		return v
	}
	return types.TierFree
}
