package validate

import (
	"encoding/json"
	"fmt"

	"github.com/archbuilder/orchestrator/internal/region"
	"github.com/archbuilder/orchestrator/internal/types"
)

// Context carries the per-request facts domain rule checks need beyond
// the raw artifact: the regional minimum-room-size table and how many
// rooms the caller actually asked for.
type Context struct {
	Region          region.Profile
	RequestedRooms  int // 0 = unknown/unconstrained
	MinClearWidthMM types.Millimeters
}

// DefaultContext returns a Context with the spec's accessibility default
// (900mm minimum clear width) and the NorthAmerica region profile.
func DefaultContext() Context {
	return Context{
		Region:          region.Get(region.NorthAmerica),
		MinClearWidthMM: 900,
	}
}

// Validate runs all three C6 stages for taskType against raw model
// output text, returning the decoded artifact (nil on structural/schema
// failure) and a ValidationReport. A non-nil error means the response
// could not be parsed at all (stage 1); schema and domain rule failures
// are reported via report.Errors/Warnings with a nil error, since the
// coordinator needs the report either way to decide on fallback.
func Validate(taskType types.TaskType, rawText string, ctx Context) (types.Artifact, types.ValidationReport, error) {
	raw, err := ExtractJSON(rawText)
	if err != nil {
		return nil, types.ValidationReport{Errors: []string{err.Error()}}, err
	}

	switch taskType {
	case types.TaskLayout:
		return validateLayout(raw, ctx)
	case types.TaskRoom:
		return validateRoom(raw, ctx)
	case types.TaskValidate:
		return validateValidate(raw, ctx)
	case types.TaskAnalyze, types.TaskCustom:
		return validateGeneric(taskType, raw)
	default:
		report := types.ValidationReport{Errors: []string{fmt.Sprintf("unknown task type %q", taskType)}}
		return nil, report, nil
	}
}

// requireFields checks that every key in required is present (non-null)
// in a generically decoded object, returning a schema-stage error string
// per missing key.
func requireFields(obj map[string]interface{}, required []string) []string {
	var errs []string
	for _, key := range required {
		if v, ok := obj[key]; !ok || v == nil {
			errs = append(errs, fmt.Sprintf("missing required field %q", key))
		}
	}
	return errs
}

func decodeGeneric(raw json.RawMessage) (map[string]interface{}, error) {
	var obj map[string]interface{}
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, err
	}
	return obj, nil
}

func finalize(report *types.ValidationReport) {
	report.IsValid = len(report.Errors) == 0
	report.ConfidenceScore = clamp01(report.ConfidenceScore)
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
