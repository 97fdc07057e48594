package validate

import (
	"encoding/json"
	"fmt"

	"github.com/archbuilder/orchestrator/internal/types"
)

var layoutRequiredFields = []string{"walls", "doors", "windows", "rooms", "confidence"}

func validateLayout(raw json.RawMessage, ctx Context) (types.Artifact, types.ValidationReport, error) {
	obj, err := decodeGeneric(raw)
	if err != nil {
		report := types.ValidationReport{Errors: []string{fmt.Sprintf("malformed layout object: %v", err)}}
		return nil, report, nil
	}

	report := types.ValidationReport{Errors: requireFields(obj, layoutRequiredFields)}
	if len(report.Errors) > 0 {
		finalize(&report)
		return nil, report, nil
	}

	var artifact types.LayoutArtifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("decode layout: %v", err))
		finalize(&report)
		return nil, report, nil
	}

	report.ConfidenceScore = artifact.Confidence
	if artifact.Confidence < 0 || artifact.Confidence > 1 {
		report.Errors = append(report.Errors, fmt.Sprintf("confidence %.3f out of [0,1]", artifact.Confidence))
	}

	wallIDs := make(map[string]struct{}, len(artifact.Walls))
	for _, w := range artifact.Walls {
		if w.Start == w.End {
			report.Errors = append(report.Errors, fmt.Sprintf("wall %s has coincident start/end points", w.ID))
		}
		wallIDs[w.ID] = struct{}{}
	}

	for _, d := range artifact.Doors {
		if _, ok := wallIDs[d.WallID]; !ok {
			report.Errors = append(report.Errors, fmt.Sprintf("door %s references unknown wall %s", d.ID, d.WallID))
		}
		if d.WidthMM < ctx.MinClearWidthMM {
			report.Warnings = append(report.Warnings, fmt.Sprintf("door %s clear width %dmm below accessibility threshold %dmm", d.ID, d.WidthMM, ctx.MinClearWidthMM))
		}
	}
	for _, w := range artifact.Windows {
		if _, ok := wallIDs[w.WallID]; !ok {
			report.Errors = append(report.Errors, fmt.Sprintf("window %s references unknown wall %s", w.ID, w.WallID))
		}
	}

	if ctx.RequestedRooms > 0 {
		diff := len(artifact.Rooms) - ctx.RequestedRooms
		if diff < -1 || diff > 1 {
			report.Errors = append(report.Errors, fmt.Sprintf("room count %d does not match requested %d (±1)", len(artifact.Rooms), ctx.RequestedRooms))
		}
	}

	for _, r := range artifact.Rooms {
		if r.AreaM2 < 0 {
			report.Errors = append(report.Errors, fmt.Sprintf("room %s has negative area %.2f", r.ID, r.AreaM2))
			continue
		}
		minSize := ctx.Region.MinRoomSizeM2(r.Type)
		if minSize > 0 && r.AreaM2 < minSize {
			report.Warnings = append(report.Warnings, fmt.Sprintf("room %s area %.2fm² below regional minimum %.2fm² for %s", r.ID, r.AreaM2, minSize, r.Type))
		}
	}

	finalize(&report)
	if !report.IsValid {
		return nil, report, nil
	}
	return artifact, report, nil
}

var roomRequiredFields = []string{"dimensions", "furniture", "lighting", "materials", "confidence"}

func validateRoom(raw json.RawMessage, ctx Context) (types.Artifact, types.ValidationReport, error) {
	obj, err := decodeGeneric(raw)
	if err != nil {
		report := types.ValidationReport{Errors: []string{fmt.Sprintf("malformed room object: %v", err)}}
		return nil, report, nil
	}

	report := types.ValidationReport{Errors: requireFields(obj, roomRequiredFields)}
	if len(report.Errors) > 0 {
		finalize(&report)
		return nil, report, nil
	}

	var artifact types.RoomArtifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("decode room: %v", err))
		finalize(&report)
		return nil, report, nil
	}

	report.ConfidenceScore = artifact.Confidence
	if artifact.Confidence < 0 || artifact.Confidence > 1 {
		report.Errors = append(report.Errors, fmt.Sprintf("confidence %.3f out of [0,1]", artifact.Confidence))
	}
	if artifact.Dimensions.W <= 0 || artifact.Dimensions.L <= 0 {
		report.Errors = append(report.Errors, "room dimensions must be positive")
	}

	finalize(&report)
	if !report.IsValid {
		return nil, report, nil
	}
	return artifact, report, nil
}

var validateRequiredFields = []string{"is_valid", "compliance_score", "errors", "warnings"}

func validateValidate(raw json.RawMessage, ctx Context) (types.Artifact, types.ValidationReport, error) {
	obj, err := decodeGeneric(raw)
	if err != nil {
		report := types.ValidationReport{Errors: []string{fmt.Sprintf("malformed validate object: %v", err)}}
		return nil, report, nil
	}

	report := types.ValidationReport{Errors: requireFields(obj, validateRequiredFields)}
	if len(report.Errors) > 0 {
		finalize(&report)
		return nil, report, nil
	}

	var artifact types.ValidationArtifact
	if err := json.Unmarshal(raw, &artifact); err != nil {
		report.Errors = append(report.Errors, fmt.Sprintf("decode validation artifact: %v", err))
		finalize(&report)
		return nil, report, nil
	}

	report.ConfidenceScore = artifact.ComplianceScore
	if artifact.ComplianceScore < 0 || artifact.ComplianceScore > 1 {
		report.Errors = append(report.Errors, fmt.Sprintf("compliance_score %.3f out of [0,1]", artifact.ComplianceScore))
	}

	finalize(&report)
	if !report.IsValid {
		return nil, report, nil
	}
	return artifact, report, nil
}

// validateGeneric handles analyze/custom task types, whose shape is not
// fixed enough for a per-field schema: structural JSON validity is the
// whole check, matching spec §4.6's silence on a schema for these task
// types beyond "parse JSON from model output."
func validateGeneric(taskType types.TaskType, raw json.RawMessage) (types.Artifact, types.ValidationReport, error) {
	obj, err := decodeGeneric(raw)
	if err != nil {
		report := types.ValidationReport{Errors: []string{fmt.Sprintf("malformed %s object: %v", taskType, err)}}
		return nil, report, nil
	}
	report := types.ValidationReport{ConfidenceScore: 1.0}
	finalize(&report)
	return types.GenericArtifact{Task: taskType, Data: obj}, report, nil
}
