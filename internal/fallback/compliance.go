package fallback

import (
	"fmt"

	"github.com/archbuilder/orchestrator/internal/types"
)

const complianceFallbackConfidence = 0.5

// GenerateValidation implements spec §4.7's "rooms/compliance follow
// analogous rule tables" note: a basic area-minimum and door-width check
// over an already-produced (or AI-produced, now being double-checked)
// layout, reducing to the same two rules the original's
// _perform_basic_compliance_check uses.
func GenerateValidation(rooms []types.Room, doors []types.Door) types.ValidationArtifact {
	var errs, warnings []string

	for _, r := range rooms {
		if (r.Type == "bedroom" || r.Type == "living_room") && r.AreaM2 < 7.0 {
			errs = append(errs, fmt.Sprintf("room %q area %.2fm² below minimum 7m²", r.Name, r.AreaM2))
		}
	}
	for _, d := range doors {
		if d.WidthMM < 900 {
			warnings = append(warnings, fmt.Sprintf("door %s width %dmm may not meet accessibility requirements (minimum 900mm recommended)", d.ID, d.WidthMM))
		}
	}

	return types.ValidationArtifact{
		IsValid:         len(errs) == 0,
		ComplianceScore: complianceFallbackConfidence,
		Errors:          errs,
		Warnings:        warnings,
	}
}
