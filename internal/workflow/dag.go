package workflow

import (
	"fmt"

	"github.com/archbuilder/orchestrator/internal/types"
)

// validateNoCycles checks a step list for circular kind dependencies and
// references to kinds absent from the template, adapted from
// orchestration.WorkflowDAG.Validate's DFS-over-dependents approach —
// generalized from string node ids to StepKind and run once at template
// construction time rather than per mutation, since a project's step
// list never changes shape after BuildSteps runs.
func validateNoCycles(steps []*types.WorkflowStep) error {
	dependents := make(map[types.StepKind][]types.StepKind)
	present := make(map[types.StepKind]bool)
	for _, s := range steps {
		present[s.Kind] = true
	}
	for _, s := range steps {
		for _, dep := range s.Deps {
			if !present[dep] {
				return fmt.Errorf("workflow: step %q depends on kind %q not present in template", s.StepID, dep)
			}
			dependents[dep] = append(dependents[dep], s.Kind)
		}
	}

	visited := make(map[types.StepKind]bool)
	recStack := make(map[types.StepKind]bool)
	var hasCycle func(kind types.StepKind) bool
	hasCycle = func(kind types.StepKind) bool {
		visited[kind] = true
		recStack[kind] = true
		for _, next := range dependents[kind] {
			if !visited[next] {
				if hasCycle(next) {
					return true
				}
			} else if recStack[next] {
				return true
			}
		}
		recStack[kind] = false
		return false
	}
	for kind := range present {
		if !visited[kind] {
			if hasCycle(kind) {
				return fmt.Errorf("workflow: template contains a circular kind dependency")
			}
		}
	}
	return nil
}

// depsSatisfied reports whether every kind step depends on has a
// completed instance earlier in proj's step list (spec §4.11: "a step
// runs only when all deps have a completed prior instance within the
// project").
func depsSatisfied(step *types.WorkflowStep, completed map[types.StepKind]struct{}) bool {
	for _, dep := range step.Deps {
		if _, ok := completed[dep]; !ok {
			return false
		}
	}
	return true
}
