package prompt

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/archbuilder/orchestrator/internal/region"
	"github.com/archbuilder/orchestrator/internal/types"
)

// Context is everything the assembler needs beyond the command itself:
// retrieved knowledge-base passages and the provider family the prompt
// is being built for (different providers favor different instruction
// phrasing and JSON-emphasis conventions).
type Context struct {
	RetrievedPassages []string
	ProviderFamily    string // "openai", "anthropic", "gemini", "bedrock"
}

// TemplateData is exposed to every template's text/template execution.
type TemplateData struct {
	TaskType          string
	PromptText        string
	Language          string
	Region            string
	Measurement       string
	CulturalNotes      string
	RetrievedPassages []string
	DocumentType      string
	AnalysisType      string
}

// Assembler selects a template via Manifest.Resolve and renders it
// against the command + retrieval context.
type Assembler struct {
	manifest *Manifest
}

// New creates an Assembler backed by manifest. Use Default() when no
// external manifest directory is configured.
func New(manifest *Manifest) *Assembler {
	return &Assembler{manifest: manifest}
}

// Build renders the prompt for cmd. Language is taken from cmd.Language
// if set, otherwise detected from cmd.PromptText.
func (a *Assembler) Build(cmd types.AICommand, ctx Context) (string, error) {
	language := cmd.Language
	if language == "" {
		language = DetectLanguage(cmd.PromptText)
	}

	reg, measurement := region.FromLocale(cmd.Locale)
	profile := region.Get(reg)

	data := TemplateData{
		TaskType:          string(cmd.TaskType),
		PromptText:        cmd.PromptText,
		Language:          language,
		Region:            string(reg),
		Measurement:       string(measurement),
		CulturalNotes:     culturalNotes(profile.Cultural),
		RetrievedPassages: ctx.RetrievedPassages,
		DocumentType:      cmd.DocumentType,
		AnalysisType:      cmd.AnalysisType,
	}

	tmpl := a.manifest.Resolve(string(cmd.TaskType), language, ctx.ProviderFamily)
	if tmpl == nil {
		return "", fmt.Errorf("prompt: no template registered for task_type=%q", cmd.TaskType)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("prompt: render template for task_type=%q: %w", cmd.TaskType, err)
	}
	return buf.String(), nil
}

func culturalNotes(c region.CulturalPreferences) string {
	var parts []string
	parts = append(parts, fmt.Sprintf("family structure: %s", c.FamilyStructure))
	parts = append(parts, fmt.Sprintf("entertainment style: %s", c.EntertainmentStyle))
	if len(c.ReligiousConsiderations) > 0 {
		parts = append(parts, fmt.Sprintf("considerations: %s", strings.Join(c.ReligiousConsiderations, ", ")))
	}
	if c.MultiGenerationalLiving {
		parts = append(parts, "design for multi-generational living")
	}
	return strings.Join(parts, "; ")
}
