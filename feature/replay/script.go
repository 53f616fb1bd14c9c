package replay

import (
	"fmt"
	"os"

	"nodegrid/feature/memsource"

	"gopkg.in/yaml.v3"
)

// Script is a replay script.
type Script struct {
	// Content is the initial bodies per section. When empty, Sections and Items
	// size generated content.
	Content  [][]string `yaml:"content,omitempty"`
	Sections int        `yaml:"sections,omitempty"`
	Items    int        `yaml:"items,omitempty"`
	Steps    []Step     `yaml:"steps"`
}

// Step is a group of edits applied in one mutation.
type Step struct {
	Edits []memsource.Edit `yaml:"edits"`
}

// Parse decodes a script.
func Parse(data []byte) (*Script, error) {
	var s Script
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to parse script: %w", err)
	}
	if len(s.Content) == 0 && (s.Sections < 0 || s.Items < 0) {
		return nil, fmt.Errorf("script sizes must be non-negative, got sections=%d items=%d", s.Sections, s.Items)
	}
	return &s, nil
}

// ReadFile reads and decodes the script at path.
func ReadFile(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	return Parse(data)
}

func (s *Script) source(width int) *memsource.Source {
	if len(s.Content) == 0 {
		return memsource.Generate(s.Sections, s.Items, width)
	}
	sections := make([][]memsource.Item, len(s.Content))
	for i, bodies := range s.Content {
		sections[i] = make([]memsource.Item, len(bodies))
		for j, body := range bodies {
			sections[i][j] = memsource.Item{ID: fmt.Sprintf("s%d-%d", i, j), Body: body}
		}
	}
	return memsource.New(width, sections...)
}
