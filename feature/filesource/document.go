package filesource

import (
	"errors"
	"fmt"
	"os"

	"nodegrid/feature/memsource"

	"gopkg.in/yaml.v3"
)

// Document is the on-disk form.
type Document struct {
	Sections []SectionDoc `yaml:"sections"`
}

// SectionDoc is one section of a Document.
type SectionDoc struct {
	Title string    `yaml:"title,omitempty"`
	Items []ItemDoc `yaml:"items"`
}

// ItemDoc is an item, written either as a plain string or as an id/body map.
type ItemDoc memsource.Item

// UnmarshalYAML accepts both item forms.
func (it *ItemDoc) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.ScalarNode {
		it.Body = n.Value
		return nil
	}
	var m memsource.Item
	if err := n.Decode(&m); err != nil {
		return err
	}
	*it = ItemDoc(m)
	return nil
}

// MarshalYAML writes items without an id as plain strings.
func (it ItemDoc) MarshalYAML() (any, error) {
	if it.ID == "" {
		return it.Body, nil
	}
	return memsource.Item(it), nil
}

// Parse decodes a document. Items without an id get one from their position.
func Parse(data []byte) (*Document, error) {
	var doc Document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}
	for s := range doc.Sections {
		for i := range doc.Sections[s].Items {
			if doc.Sections[s].Items[i].ID == "" {
				doc.Sections[s].Items[i].ID = fmt.Sprintf("s%d-%d", s, i)
			}
		}
	}
	return &doc, nil
}

// ReadFile reads and parses path. A missing file is an empty document.
func ReadFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return &Document{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return Parse(data)
}

// Content converts the document into memsource sections.
func (d *Document) Content() [][]memsource.Item {
	out := make([][]memsource.Item, len(d.Sections))
	for s, sec := range d.Sections {
		out[s] = make([]memsource.Item, len(sec.Items))
		for i, it := range sec.Items {
			out[s][i] = memsource.Item(it)
		}
	}
	return out
}
