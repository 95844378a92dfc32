// Package prompts holds the fixed prompt templates for each generated dataset.
package prompts

import (
	_ "embed"
	"fmt"
	"strings"
	"text/template"

	"github.com/leeaandrob/stockcal/internal/models"
	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultTemplates []byte

// Template is the prompt definition for one dataset.
type Template struct {
	System      string  `yaml:"system"`
	User        string  `yaml:"user"`
	Temperature float32 `yaml:"temperature"`
	MaxTokens   int     `yaml:"max_tokens"`

	user *template.Template
}

// Prompt is a rendered template ready to send.
type Prompt struct {
	System      string
	User        string
	Temperature float32
	MaxTokens   int
}

// Set maps a dataset to its template.
type Set map[models.Kind]*Template

// Default returns the embedded templates.
func Default() (Set, error) {
	return Parse(defaultTemplates)
}

// Parse reads a YAML template set and compiles the user templates.
func Parse(data []byte) (Set, error) {
	raw := map[string]*Template{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse prompt templates: %w", err)
	}

	set := Set{}
	for name, tmpl := range raw {
		kind, err := models.ParseKind(name)
		if err != nil {
			return nil, fmt.Errorf("prompt templates: %w", err)
		}
		if tmpl == nil || strings.TrimSpace(tmpl.User) == "" {
			return nil, fmt.Errorf("prompt template %s has no user prompt", kind)
		}
		tmpl.user, err = template.New(string(kind)).Option("missingkey=error").Parse(tmpl.User)
		if err != nil {
			return nil, fmt.Errorf("prompt template %s: %w", kind, err)
		}
		set[kind] = tmpl
	}
	return set, nil
}

// Render fills the template for kind with the run date.
func (s Set) Render(kind models.Kind, today string) (*Prompt, error) {
	tmpl, ok := s[kind]
	if !ok {
		return nil, fmt.Errorf("no prompt template for %s", kind)
	}

	var b strings.Builder
	if err := tmpl.user.Execute(&b, struct{ Today string }{today}); err != nil {
		return nil, fmt.Errorf("render prompt %s: %w", kind, err)
	}

	return &Prompt{
		System:      strings.TrimSpace(tmpl.System),
		User:        b.String(),
		Temperature: tmpl.Temperature,
		MaxTokens:   tmpl.MaxTokens,
	}, nil
}
