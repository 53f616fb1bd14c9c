package memsource

import (
	"fmt"
	"slices"

	"nodegrid/core/index"
	"nodegrid/core/update"
)

// Edit is a serializable edit: a command document plus the bodies of the items
// it inserts or reloads, in ascending index order. Missing bodies are generated.
type Edit struct {
	update.Doc `yaml:",inline"`

	Bodies []string `json:"bodies,omitempty" yaml:"bodies,omitempty"`
}

// Apply performs ed on the content as one command. Multi-index edits follow
// command semantics: deletes and reloads name indices before the edit, inserts
// name indices after it.
func (e *Editor) Apply(ed Edit) error {
	cmd, err := ed.Command()
	if err != nil {
		return err
	}
	bodies := ed.Bodies
	body := func(i int, fallback string) string {
		if i < len(bodies) {
			return bodies[i]
		}
		return fallback
	}

	switch cmd.Kind {
	case update.InsertItems:
		items := index.Dedup(cmd.Items)
		if len(items) != len(cmd.Items) {
			return fmt.Errorf("%s: duplicate index", cmd)
		}
		added := make(map[int]int)
		for _, idx := range items {
			if err := e.checkSection(cmd.Kind.String(), idx.Section); err != nil {
				return err
			}
			if n := len(e.s.sections[idx.Section]) + added[idx.Section]; idx.Item < 0 || idx.Item > n {
				return index.ItemOutOfRange(cmd.Kind.String(), idx, n+1)
			}
			added[idx.Section]++
		}
		for i, idx := range items {
			it := Item{ID: fmt.Sprintf("new-%s", idx), Body: body(i, fmt.Sprintf("Inserted at %s", idx))}
			e.s.sections[idx.Section] = slices.Insert(e.s.sections[idx.Section], idx.Item, it)
		}
	case update.DeleteItems:
		items := index.Dedup(cmd.Items)
		for _, idx := range items {
			if err := e.checkItem(cmd.Kind.String(), idx); err != nil {
				return err
			}
		}
		slices.Reverse(items)
		for _, idx := range items {
			e.s.sections[idx.Section] = slices.Delete(e.s.sections[idx.Section], idx.Item, idx.Item+1)
		}
	case update.ReloadItems:
		items := index.Dedup(cmd.Items)
		for _, idx := range items {
			if err := e.checkItem(cmd.Kind.String(), idx); err != nil {
				return err
			}
		}
		for i, idx := range items {
			it := &e.s.sections[idx.Section][idx.Item]
			it.Body = body(i, it.Body)
		}
	case update.InsertSections:
		for i, s := range cmd.Sections.Ascending() {
			if n := len(e.s.sections) + i; s > n {
				return index.SectionOutOfRange(cmd.Kind.String(), s, n+1)
			}
		}
		for i, s := range cmd.Sections.Ascending() {
			var items []Item
			if b := body(i, ""); b != "" {
				items = []Item{{ID: fmt.Sprintf("new-s%d", s), Body: b}}
			}
			e.s.sections = slices.Insert(e.s.sections, s, items)
		}
	case update.DeleteSections:
		for _, s := range cmd.Sections.Ascending() {
			if err := e.checkSection(cmd.Kind.String(), s); err != nil {
				return err
			}
		}
		for _, s := range cmd.Sections.Descending() {
			e.s.sections = slices.Delete(e.s.sections, s, s+1)
		}
	case update.ReloadSections:
		for _, s := range cmd.Sections.Ascending() {
			if err := e.checkSection(cmd.Kind.String(), s); err != nil {
				return err
			}
		}
	case update.MoveItem:
		n := len(e.cmds)
		if err := e.MoveItem(cmd.From, cmd.To); err != nil {
			return err
		}
		e.cmds = e.cmds[:n]
	case update.MoveSection:
		n := len(e.cmds)
		if err := e.MoveSection(cmd.From.Section, cmd.To.Section); err != nil {
			return err
		}
		e.cmds = e.cmds[:n]
	case update.ReloadAll:
	}
	e.cmds = append(e.cmds, cmd)
	return nil
}
