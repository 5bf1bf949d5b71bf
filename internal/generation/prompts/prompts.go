// Package prompts loads the framework prompt templates the generation
// gateway is driven with. Templates ship embedded; a deployment can point
// PROMPTS_FILE style overrides at the loader to swap them without a
// rebuild.
package prompts

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/goccy/go-yaml"

	"github.com/GriffinCanCode/SnapUI/backend/internal/domain/artifact"
)

//go:embed assets/prompts.yaml
var embedded []byte

// Library holds the parsed prompt templates.
type Library struct {
	Frameworks map[string]Template `yaml:"frameworks"`
	Chat       Template            `yaml:"chat"`
}

// Template is one prompt entry.
type Template struct {
	System string `yaml:"system"`
}

// Load parses the embedded templates.
func Load() (*Library, error) {
	return parse(embedded)
}

// LoadFile parses templates from an override file.
func LoadFile(path string) (*Library, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompts file: %w", err)
	}
	return parse(data)
}

func parse(data []byte) (*Library, error) {
	var lib Library
	if err := yaml.Unmarshal(data, &lib); err != nil {
		return nil, fmt.Errorf("parse prompts: %w", err)
	}

	for _, fw := range artifact.Supported {
		tpl, ok := lib.Frameworks[fw.String()]
		if !ok || tpl.System == "" {
			return nil, fmt.Errorf("prompts: missing template for %s", fw)
		}
	}
	if lib.Chat.System == "" {
		return nil, fmt.Errorf("prompts: missing chat template")
	}

	return &lib, nil
}

// System returns the system prompt for a framework. Unknown frameworks
// get the react template, matching how technology strings are parsed.
func (l *Library) System(fw artifact.Framework) string {
	if tpl, ok := l.Frameworks[fw.String()]; ok {
		return tpl.System
	}
	return l.Frameworks[artifact.React.String()].System
}

// ChatSystem returns the refinement conversation system prompt.
func (l *Library) ChatSystem() string {
	return l.Chat.System
}
