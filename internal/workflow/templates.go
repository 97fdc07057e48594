// Package workflow implements C11: multi-step project execution over a
// dependency-ordered set of WorkflowSteps, selected from a
// complexity-driven template (spec §4.11). Grounded on
// orchestration/workflow_dag.go's dependency/cycle-detection model,
// generalized from string node ids to the fixed StepKind vocabulary
// spec §3 defines, and from "ready nodes run in parallel" to "steps run
// strictly in declared index order" per spec §5's ordering guarantee.
package workflow

import "github.com/archbuilder/orchestrator/internal/types"

// estimatedMinutes is a rough per-kind duration estimate used for ETA
// calculation (Project.Progress sums these for pending steps).
var estimatedMinutes = map[types.StepKind]float64{
	types.StepParseDocs:      2,
	types.StepIndexRAG:       3,
	types.StepAnalyzeReqs:    2,
	types.StepAnalyzeSite:    4,
	types.StepGenerateLayout: 5,
	types.StepValidate:       1,
	types.StepOptimize:       6,
	types.StepPrepareRevit:   3,
	types.StepFinalReview:    2,
}

// depsFor returns the kinds a step of this kind reads from, given its
// position in the expanded kind sequence (needed because "generate_layout"
// depends on "analyze_site" only when a site-analysis step is present
// earlier in the same template).
func depsFor(kind types.StepKind, hasSite bool, isFirstLayoutStep bool) []types.StepKind {
	switch kind {
	case types.StepIndexRAG:
		return []types.StepKind{types.StepParseDocs}
	case types.StepAnalyzeReqs, types.StepAnalyzeSite:
		return []types.StepKind{types.StepIndexRAG}
	case types.StepGenerateLayout:
		if isFirstLayoutStep {
			if hasSite {
				return []types.StepKind{types.StepAnalyzeReqs, types.StepAnalyzeSite}
			}
			return []types.StepKind{types.StepAnalyzeReqs}
		}
		return []types.StepKind{types.StepOptimize}
	case types.StepValidate:
		return []types.StepKind{types.StepGenerateLayout}
	case types.StepOptimize:
		return []types.StepKind{types.StepValidate}
	case types.StepPrepareRevit:
		return []types.StepKind{types.StepValidate}
	case types.StepFinalReview:
		return []types.StepKind{types.StepPrepareRevit}
	default:
		return nil
	}
}

// buildKindSequence assembles a template's step kinds: a prologue
// (document parsing + requirement/site analysis), refinementCycles
// repetitions of [generate_layout, validate, optimize], and a fixed
// epilogue (a final validate acting as the pre-Revit check, then
// prepare_revit, then final_review as the post-flight check).
func buildKindSequence(hasSite bool, refinementCycles int) []types.StepKind {
	var kinds []types.StepKind
	kinds = append(kinds, types.StepParseDocs, types.StepIndexRAG, types.StepAnalyzeReqs)
	if hasSite {
		kinds = append(kinds, types.StepAnalyzeSite)
	}
	for i := 0; i < refinementCycles; i++ {
		kinds = append(kinds, types.StepGenerateLayout, types.StepValidate, types.StepOptimize)
	}
	kinds = append(kinds, types.StepValidate, types.StepPrepareRevit, types.StepFinalReview)
	return kinds
}

// BuildSteps expands a complexity's kind sequence into indexed
// WorkflowSteps with deps and estimates attached. Templates are sized
// to spec §4.11's 9/~13/~19 step counts: simple skips site analysis and
// runs one design-refinement cycle (9 steps total); standard adds site
// analysis and a second refinement cycle (13); complex keeps site
// analysis and runs four refinement cycles for deeper iteration (19).
func BuildSteps(complexity types.Complexity) []*types.WorkflowStep {
	var hasSite bool
	var cycles int
	switch complexity {
	case types.ComplexityHigh:
		hasSite, cycles = true, 4
	case types.ComplexityMedium:
		hasSite, cycles = true, 2
	default: // ComplexitySimple and unrecognized values fall back to the simple template
		hasSite, cycles = false, 1
	}

	kinds := buildKindSequence(hasSite, cycles)
	firstLayoutSeen := false

	steps := make([]*types.WorkflowStep, 0, len(kinds))
	for i, kind := range kinds {
		isFirstLayout := kind == types.StepGenerateLayout && !firstLayoutSeen
		if isFirstLayout {
			firstLayoutSeen = true
		}
		steps = append(steps, &types.WorkflowStep{
			StepID:           stepID(i, kind),
			Index:            i,
			Kind:             kind,
			Deps:             depsFor(kind, hasSite, isFirstLayout),
			Status:           types.StepPending,
			MaxRetries:       2,
			EstimatedMinutes: estimatedMinutes[kind],
		})
	}
	return steps
}

func stepID(index int, kind types.StepKind) string {
	return string(kind) + "_" + itoa(index)
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [8]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}
