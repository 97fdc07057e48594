// Package prompt implements C4: selecting and rendering the prompt
// template for a given (task type, locale language, provider family)
// combination. Templates are YAML manifest entries — grounded on
// codenerd's internal/prompt externalized-atom pattern — rendered with
// text/template the way the teacher's TemplatePromptBuilder does.
// LoadDirectory reads entries from a directory and Default supplies a
// built-in set; internal/app builds its assembler from Default only, and
// no configuration setting selects a manifest directory.
package prompt

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"

	"gopkg.in/yaml.v3"
)

// ManifestEntry is one YAML-declared template binding.
type ManifestEntry struct {
	ID              string `yaml:"id"`
	TaskType        string `yaml:"task_type"`
	Language        string `yaml:"language"` // "" matches any
	ProviderFamily  string `yaml:"provider_family"` // "" matches any
	Content         string `yaml:"content,omitempty"`
	ContentFile     string `yaml:"content_file,omitempty"`
}

// compiledEntry is a ManifestEntry with its template parsed once at load
// time rather than on every render.
type compiledEntry struct {
	entry    ManifestEntry
	template *template.Template
}

// Manifest holds every loaded template entry, queryable by
// (task_type, language, provider_family) with fallback to less specific
// matches.
type Manifest struct {
	entries []compiledEntry
}

// LoadDirectory reads every *.yaml/*.yml file in dir as a list of
// ManifestEntry and compiles their templates.
func LoadDirectory(dir string) (*Manifest, error) {
	m := &Manifest{}

	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext != ".yaml" && ext != ".yml" {
			return nil
		}
		return m.loadFile(path)
	})
	if err != nil {
		return nil, fmt.Errorf("prompt: load directory %q: %w", dir, err)
	}
	return m, nil
}

func (m *Manifest) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %q: %w", path, err)
	}

	var raw []ManifestEntry
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("parse %q: %w", path, err)
	}

	for _, e := range raw {
		if e.ID == "" || e.TaskType == "" {
			continue
		}
		content := e.Content
		if content == "" && e.ContentFile != "" {
			contentPath := filepath.Join(filepath.Dir(path), e.ContentFile)
			raw, err := os.ReadFile(contentPath)
			if err != nil {
				return fmt.Errorf("read content file %q for atom %q: %w", contentPath, e.ID, err)
			}
			content = string(raw)
		}
		if content == "" {
			continue
		}

		tmpl, err := template.New(e.ID).Parse(content)
		if err != nil {
			return fmt.Errorf("compile template %q: %w", e.ID, err)
		}
		m.entries = append(m.entries, compiledEntry{entry: e, template: tmpl})
	}
	return nil
}

// Add registers an in-process entry directly, bypassing the filesystem —
// used for built-in defaults and tests.
func (m *Manifest) Add(e ManifestEntry) error {
	tmpl, err := template.New(e.ID).Parse(e.Content)
	if err != nil {
		return fmt.Errorf("compile template %q: %w", e.ID, err)
	}
	m.entries = append(m.entries, compiledEntry{entry: e, template: tmpl})
	return nil
}

// Resolve finds the best-matching template for (taskType, language,
// providerFamily), in descending specificity: exact match on all three,
// then (taskType, language), then (taskType, providerFamily), then
// (taskType) alone. Returns nil if nothing matches even at that level.
func (m *Manifest) Resolve(taskType, language, providerFamily string) *template.Template {
	type candidate struct {
		score int
		tmpl  *template.Template
	}
	var best *candidate

	for _, ce := range m.entries {
		e := ce.entry
		if e.TaskType != taskType {
			continue
		}
		if e.Language != "" && e.Language != language {
			continue
		}
		if e.ProviderFamily != "" && e.ProviderFamily != providerFamily {
			continue
		}

		score := 0
		if e.Language != "" {
			score += 2
		}
		if e.ProviderFamily != "" {
			score++
		}

		if best == nil || score > best.score {
			best = &candidate{score: score, tmpl: ce.template}
		}
	}

	if best == nil {
		return nil
	}
	return best.tmpl
}
