package prompt

import "fmt"

// Default returns a Manifest pre-populated with one template per
// TaskType. internal/app and the tests use it; no configuration setting
// points the app at a directory for LoadDirectory.
func Default() *Manifest {
	m := &Manifest{}

	entries := []ManifestEntry{
		{
			ID:       "layout.default",
			TaskType: "layout",
			Content: `Generate a complete architectural layout in {{.Measurement}} units for the following request.
Region: {{.Region}}
Language: {{.Language}}
Cultural context: {{.CulturalNotes}}
{{if .RetrievedPassages}}
Relevant building code excerpts:
{{range .RetrievedPassages}}- {{.}}
{{end}}{{end}}
Request: {{.PromptText}}

Respond with a single JSON object describing rooms, walls, doors, and windows. Do not include any text outside the JSON object.`,
		},
		{
			ID:       "room.default",
			TaskType: "room",
			Content: `Generate furniture and lighting placement in {{.Measurement}} units for a single room.
Region: {{.Region}}
Cultural context: {{.CulturalNotes}}
Request: {{.PromptText}}

Respond with a single JSON object describing furniture items and lighting fixtures. Do not include any text outside the JSON object.`,
		},
		{
			ID:       "validate.default",
			TaskType: "validate",
			Content: `Review the following design against applicable building codes for region {{.Region}}.
{{if .RetrievedPassages}}
Relevant code excerpts:
{{range .RetrievedPassages}}- {{.}}
{{end}}{{end}}
Design details: {{.PromptText}}

Respond with a single JSON object listing errors, warnings, and an overall validity determination. Do not include any text outside the JSON object.`,
		},
		{
			ID:       "analyze.default",
			TaskType: "analyze",
			Content: `Analyze the following existing project description ({{.AnalysisType}}).
Document type: {{.DocumentType}}
Request: {{.PromptText}}

Respond with a single JSON object summarizing findings. Do not include any text outside the JSON object.`,
		},
		{
			ID:       "custom.default",
			TaskType: "custom",
			Content: `{{.PromptText}}

Respond with a single JSON object. Do not include any text outside the JSON object.`,
		},
	}

	for _, e := range entries {
		if err := m.Add(e); err != nil {
			panic(fmt.Sprintf("prompt: invalid built-in template %q: %v", e.ID, err))
		}
	}
	return m
}
