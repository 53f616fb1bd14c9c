package memsource

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"nodegrid/core/collection"
	"nodegrid/core/index"
	"nodegrid/core/node"
	"nodegrid/core/update"
)

// Item is one row of content.
type Item struct {
	ID   string `yaml:"id" json:"id"`
	Body string `yaml:"body" json:"body"`
}

// Source holds sections of items in memory.
type Source struct {
	mu       sync.Mutex
	sections [][]Item
	width    int
}

// New creates a source whose text nodes wrap at width cells.
func New(width int, sections ...[]Item) *Source {
	s := &Source{width: width, sections: make([][]Item, len(sections))}
	for i, items := range sections {
		s.sections[i] = slices.Clone(items)
	}
	return s
}

// Generate creates a source of sections×items numbered rows.
func Generate(sections, items, width int) *Source {
	content := make([][]Item, sections)
	for s := range content {
		content[s] = Rows(s, 0, items)
	}
	return New(width, content...)
}

// Rows returns n generated items for section, numbered from first.
func Rows(section, first, n int) []Item {
	out := make([]Item, n)
	for i := range out {
		out[i] = Item{
			ID:   fmt.Sprintf("s%d-%d", section, first+i),
			Body: fmt.Sprintf("Section %d, row %d", section, first+i),
		}
	}
	return out
}

func (s *Source) NumberOfSections() int         { return len(s.sections) }
func (s *Source) NumberOfItems(section int) int { return len(s.sections[section]) }
func (s *Source) LockDataSource()               { s.mu.Lock() }
func (s *Source) UnlockDataSource()             { s.mu.Unlock() }

// NodeForItem returns a fresh text node for the item.
func (s *Source) NodeForItem(idx index.Index) node.Node {
	it := s.sections[idx.Section][idx.Item]
	return node.NewText(it.ID, it.Body, s.width)
}

// Shape returns the current section/item counts.
func (s *Source) Shape() index.Shape {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.shape()
}

// Item returns the item at idx.
func (s *Source) Item(idx index.Index) (Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.shape().Contains(idx) {
		return Item{}, false
	}
	return s.sections[idx.Section][idx.Item], true
}

// Reset swaps the whole content and submits a full reload to c. A nil c only
// swaps.
func (s *Source) Reset(ctx context.Context, c collection.Committer, sections [][]Item) error {
	content := make([][]Item, len(sections))
	for i, items := range sections {
		content[i] = slices.Clone(items)
	}

	s.mu.Lock()
	s.sections = content
	var err error
	if c != nil {
		err = c.Submit(update.NewReloadAll())
	}
	s.mu.Unlock()

	if c == nil {
		return nil
	}
	if err != nil {
		return fmt.Errorf("submit reload: %w", err)
	}
	return c.Drain(ctx)
}

// Mutate runs fn with an editor. Every edit is submitted to c as its own command
// while the source is still locked; c is drained once fn returns. Edits made
// before fn fails are kept and reported. A nil c only edits.
func (s *Source) Mutate(ctx context.Context, c collection.Committer, fn func(e *Editor) error) error {
	s.mu.Lock()
	e := &Editor{s: s}
	err := fn(e)
	var submitErr error
	if c != nil {
		for _, cmd := range e.cmds {
			if submitErr = c.Submit(cmd); submitErr != nil {
				break
			}
		}
	}
	s.mu.Unlock()

	if submitErr != nil {
		return fmt.Errorf("submit edit: %w", submitErr)
	}
	if c != nil && len(e.cmds) > 0 {
		if derr := c.Drain(ctx); derr != nil {
			return derr
		}
	}
	return err
}

// Append adds items to the end of section and reports them.
func (s *Source) Append(ctx context.Context, c collection.Committer, section int, items ...Item) error {
	return s.Mutate(ctx, c, func(e *Editor) error {
		return e.AppendItems(section, items...)
	})
}

// AppendSection adds a section at the end and reports it.
func (s *Source) AppendSection(ctx context.Context, c collection.Committer, items ...Item) error {
	return s.Mutate(ctx, c, func(e *Editor) error {
		return e.InsertSection(len(e.s.sections), items...)
	})
}

func (s *Source) shape() index.Shape {
	out := make(index.Shape, len(s.sections))
	for i := range s.sections {
		out[i] = len(s.sections[i])
	}
	return out
}
