package fallback_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archbuilder/orchestrator/internal/fallback"
	"github.com/archbuilder/orchestrator/internal/types"
	"github.com/archbuilder/orchestrator/internal/validate"
)

func TestGenerateLayout_DefaultProgramProducesFiveRooms(t *testing.T) {
	artifact := fallback.GenerateLayout(100, nil)
	assert.Len(t, artifact.Rooms, 5)
	assert.True(t, artifact.RequiresHumanReview)
	assert.Equal(t, "fallback", artifact.GeneratedBy)
	assert.NotEmpty(t, artifact.FallbackReason)
}

func TestGenerateLayout_PassesOutputValidator(t *testing.T) {
	artifact := fallback.GenerateLayout(120, nil)

	raw := marshalLayout(t, artifact)
	ctx := validate.DefaultContext()
	ctx.RequestedRooms = len(artifact.Rooms)

	validated, report, err := validate.Validate(types.TaskLayout, raw, ctx)
	require.NoError(t, err)
	assert.True(t, report.IsValid, "errors: %v", report.Errors)
	assert.NotNil(t, validated)
}

func TestGenerateLayout_BathroomsHaveNoDoor(t *testing.T) {
	artifact := fallback.GenerateLayout(80, []fallback.RoomRequirement{
		{Type: "bedroom", AreaM2: 30},
		{Type: "bathroom", AreaM2: 10},
	})
	for i, r := range artifact.Rooms {
		if r.Type == "bathroom" {
			for _, d := range artifact.Doors {
				assert.NotContains(t, d.WallID, r.ID, "bathroom %d should not get an interior door", i)
			}
		}
	}
}

func TestGenerateRoomArtifact_ScalesToRequestedArea(t *testing.T) {
	artifact := fallback.GenerateRoomArtifact("bedroom", 15)
	areaM2 := float64(artifact.Dimensions.W) / 1000 * float64(artifact.Dimensions.L) / 1000
	assert.InDelta(t, 15, areaM2, 0.5)
	assert.NotEmpty(t, artifact.Furniture)
	assert.NotEmpty(t, artifact.Materials)
}

func TestGenerateValidation_FlagsUndersizedBedroom(t *testing.T) {
	rooms := []types.Room{{Name: "Bedroom 1", Type: "bedroom", AreaM2: 5}}
	result := fallback.GenerateValidation(rooms, nil)
	assert.False(t, result.IsValid)
	assert.NotEmpty(t, result.Errors)
}

func TestGenerateValidation_FlagsNarrowDoorAsWarning(t *testing.T) {
	doors := []types.Door{{ID: "d1", WidthMM: 700}}
	result := fallback.GenerateValidation(nil, doors)
	assert.True(t, result.IsValid)
	assert.NotEmpty(t, result.Warnings)
}

func marshalLayout(t *testing.T, artifact types.LayoutArtifact) string {
	t.Helper()
	raw, err := json.Marshal(artifact)
	require.NoError(t, err)
	return string(raw)
}
