package prompt_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/archbuilder/orchestrator/internal/prompt"
	"github.com/archbuilder/orchestrator/internal/types"
)

func TestAssembler_BuildLayoutPrompt(t *testing.T) {
	a := prompt.New(prompt.Default())

	cmd := types.AICommand{
		TaskType:   types.TaskLayout,
		Locale:     "en-US",
		PromptText: "Design a 3-bedroom house on a 150 sqm lot",
		Language:   "en",
	}

	out, err := a.Build(cmd, prompt.Context{ProviderFamily: "openai"})
	require.NoError(t, err)
	assert.Contains(t, out, "Design a 3-bedroom house")
	assert.Contains(t, out, "JSON object")
}

func TestAssembler_IncludesRetrievedPassages(t *testing.T) {
	a := prompt.New(prompt.Default())

	cmd := types.AICommand{TaskType: types.TaskValidate, PromptText: "check setbacks", Language: "en"}
	out, err := a.Build(cmd, prompt.Context{RetrievedPassages: []string{"Setback must be at least 5 meters from front lot line."}})
	require.NoError(t, err)
	assert.Contains(t, out, "Setback must be at least 5 meters")
}

func TestAssembler_UnknownTaskTypeErrors(t *testing.T) {
	a := prompt.New(prompt.Default())
	cmd := types.AICommand{TaskType: types.TaskType("nonexistent"), PromptText: "x"}
	_, err := a.Build(cmd, prompt.Context{})
	assert.Error(t, err)
}

func TestDetectLanguage_PicksTurkishFromMarkers(t *testing.T) {
	lang := prompt.DetectLanguage("ev ve bina için duvar tasarımı yapmak istiyorum")
	assert.Equal(t, "tr", lang)
}

func TestDetectLanguage_DefaultsToEnglish(t *testing.T) {
	lang := prompt.DetectLanguage("xyz123 qqqq")
	assert.Equal(t, "en", lang)
}

func TestManifest_ResolvePrefersMoreSpecificEntry(t *testing.T) {
	m := &prompt.Manifest{}
	require.NoError(t, m.Add(prompt.ManifestEntry{ID: "generic", TaskType: "layout", Content: "generic"}))
	require.NoError(t, m.Add(prompt.ManifestEntry{ID: "openai-specific", TaskType: "layout", ProviderFamily: "openai", Content: "openai-specific"}))

	tmpl := m.Resolve("layout", "en", "openai")
	require.NotNil(t, tmpl)

	var buf strings.Builder
	require.NoError(t, tmpl.Execute(&buf, nil))
	assert.Equal(t, "openai-specific", buf.String())
}
