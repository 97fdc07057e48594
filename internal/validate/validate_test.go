package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archbuilder/orchestrator/internal/types"
	"github.com/archbuilder/orchestrator/internal/validate"
)

func TestExtractJSON_FencedBlock(t *testing.T) {
	text := "Here is the result:\n```json\n{\"a\": 1}\n```\nThanks."
	raw, err := validate.ExtractJSON(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":1}`, string(raw))
}

func TestExtractJSON_RawObjectWithSurroundingText(t *testing.T) {
	text := `Sure, here you go: {"a": {"b": 2}} — let me know if you need changes.`
	raw, err := validate.ExtractJSON(text)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":{"b":2}}`, string(raw))
}

func TestExtractJSON_NoJSONReturnsError(t *testing.T) {
	_, err := validate.ExtractJSON("no json here at all")
	assert.ErrorIs(t, err, validate.ErrInvalidJSON)
}

func validLayoutJSON() string {
	return `{
		"walls": [{"id":"w1","start":{"x":0,"y":0,"z":0},"end":{"x":5000,"y":0,"z":0},"thickness_mm":200,"height_mm":2700,"type":"exterior"}],
		"doors": [{"id":"d1","wall_id":"w1","position_mm":2000,"width_mm":900,"height_mm":2100,"type":"interior"}],
		"windows": [{"id":"win1","wall_id":"w1","position_mm":1000,"width_mm":1200,"height_mm":1200,"type":"exterior"}],
		"rooms": [{"id":"r1","name":"Living Room","type":"living","area_m2":20,"dimensions":{"w":4000,"l":5000,"h":2700},"position":{"x_mm":0,"y_mm":0}}],
		"confidence": 0.9
	}`
}

func TestValidate_LayoutHappyPath(t *testing.T) {
	ctx := validate.DefaultContext()
	ctx.RequestedRooms = 1
	artifact, report, err := validate.Validate(types.TaskLayout, validLayoutJSON(), ctx)
	require.NoError(t, err)
	assert.True(t, report.IsValid)
	assert.Empty(t, report.Errors)
	layout, ok := artifact.(types.LayoutArtifact)
	require.True(t, ok)
	assert.Len(t, layout.Rooms, 1)
}

func TestValidate_LayoutMissingRequiredFieldErrors(t *testing.T) {
	_, report, err := validate.Validate(types.TaskLayout, `{"walls":[],"doors":[],"windows":[]}`, validate.DefaultContext())
	require.NoError(t, err)
	assert.False(t, report.IsValid)
	assert.NotEmpty(t, report.Errors)
}

func TestValidate_LayoutDoorReferencingUnknownWallErrors(t *testing.T) {
	ctx := validate.DefaultContext()
	_, report, err := validate.Validate(types.TaskLayout, `{
		"walls": [],
		"doors": [{"id":"d1","wall_id":"missing","position_mm":0,"width_mm":900,"height_mm":2100,"type":"interior"}],
		"windows": [],
		"rooms": [],
		"confidence": 0.8
	}`, ctx)
	require.NoError(t, err)
	assert.False(t, report.IsValid)
}

func TestValidate_NarrowDoorProducesWarningNotError(t *testing.T) {
	ctx := validate.DefaultContext()
	_, report, err := validate.Validate(types.TaskLayout, `{
		"walls": [{"id":"w1","start":{"x":0,"y":0,"z":0},"end":{"x":5000,"y":0,"z":0},"thickness_mm":200,"height_mm":2700,"type":"exterior"}],
		"doors": [{"id":"d1","wall_id":"w1","position_mm":0,"width_mm":700,"height_mm":2100,"type":"interior"}],
		"windows": [],
		"rooms": [],
		"confidence": 0.8
	}`, ctx)
	require.NoError(t, err)
	assert.True(t, report.IsValid)
	assert.NotEmpty(t, report.Warnings)
}

func TestValidate_ValidateTaskHappyPath(t *testing.T) {
	_, report, err := validate.Validate(types.TaskValidate, `{"is_valid":true,"compliance_score":0.95,"errors":[],"warnings":[]}`, validate.DefaultContext())
	require.NoError(t, err)
	assert.True(t, report.IsValid)
}

func TestValidate_GenericTaskAcceptsArbitraryJSON(t *testing.T) {
	artifact, report, err := validate.Validate(types.TaskAnalyze, `{"summary":"looks fine"}`, validate.DefaultContext())
	require.NoError(t, err)
	assert.True(t, report.IsValid)
	generic, ok := artifact.(types.GenericArtifact)
	require.True(t, ok)
	assert.Equal(t, "looks fine", generic.Data["summary"])
}
