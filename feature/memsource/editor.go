package memsource

import (
	"slices"

	"nodegrid/core/index"
	"nodegrid/core/update"
)

// Editor changes a Source and records the command for each change. Edits apply
// one after another, so each index refers to the content as left by the edit
// before it.
type Editor struct {
	s    *Source
	cmds []update.Command
}

// Commands returns the commands recorded so far.
func (e *Editor) Commands() []update.Command {
	return slices.Clone(e.cmds)
}

// Shape returns the current counts.
func (e *Editor) Shape() index.Shape {
	return e.s.shape()
}

func (e *Editor) InsertItem(idx index.Index, it Item) error {
	if err := e.checkSection("insert item", idx.Section); err != nil {
		return err
	}
	items := e.s.sections[idx.Section]
	if idx.Item < 0 || idx.Item > len(items) {
		return index.ItemOutOfRange("insert item", idx, len(items)+1)
	}
	e.s.sections[idx.Section] = slices.Insert(items, idx.Item, it)
	e.cmds = append(e.cmds, update.NewInsertItems(idx))
	return nil
}

// AppendItems inserts items at the end of section as a single command.
func (e *Editor) AppendItems(section int, items ...Item) error {
	if err := e.checkSection("append items", section); err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	first := len(e.s.sections[section])
	e.s.sections[section] = append(e.s.sections[section], items...)
	idx := make([]index.Index, len(items))
	for i := range items {
		idx[i] = index.New(section, first+i)
	}
	e.cmds = append(e.cmds, update.NewInsertItems(idx...))
	return nil
}

func (e *Editor) DeleteItem(idx index.Index) error {
	if err := e.checkItem("delete item", idx); err != nil {
		return err
	}
	e.s.sections[idx.Section] = slices.Delete(e.s.sections[idx.Section], idx.Item, idx.Item+1)
	e.cmds = append(e.cmds, update.NewDeleteItems(idx))
	return nil
}

// ReplaceItem swaps the item at idx; its node is rebuilt.
func (e *Editor) ReplaceItem(idx index.Index, it Item) error {
	if err := e.checkItem("replace item", idx); err != nil {
		return err
	}
	e.s.sections[idx.Section][idx.Item] = it
	e.cmds = append(e.cmds, update.NewReloadItems(idx))
	return nil
}

// MoveItem moves an item; to is its index once it has been removed from from.
func (e *Editor) MoveItem(from, to index.Index) error {
	if err := e.checkItem("move item", from); err != nil {
		return err
	}
	if err := e.checkSection("move item", to.Section); err != nil {
		return err
	}
	limit := len(e.s.sections[to.Section])
	if to.Section == from.Section {
		limit--
	}
	if to.Item < 0 || to.Item > limit {
		return index.ItemOutOfRange("move item", to, limit+1)
	}
	it := e.s.sections[from.Section][from.Item]
	e.s.sections[from.Section] = slices.Delete(e.s.sections[from.Section], from.Item, from.Item+1)
	e.s.sections[to.Section] = slices.Insert(e.s.sections[to.Section], to.Item, it)
	e.cmds = append(e.cmds, update.NewMoveItem(from, to))
	return nil
}

func (e *Editor) InsertSection(section int, items ...Item) error {
	if section < 0 || section > len(e.s.sections) {
		return index.SectionOutOfRange("insert section", section, len(e.s.sections)+1)
	}
	e.s.sections = slices.Insert(e.s.sections, section, slices.Clone(items))
	e.cmds = append(e.cmds, update.NewInsertSections(index.Sections(section)))
	return nil
}

func (e *Editor) DeleteSection(section int) error {
	if err := e.checkSection("delete section", section); err != nil {
		return err
	}
	e.s.sections = slices.Delete(e.s.sections, section, section+1)
	e.cmds = append(e.cmds, update.NewDeleteSections(index.Sections(section)))
	return nil
}

// ReplaceSection swaps the content of a section.
func (e *Editor) ReplaceSection(section int, items ...Item) error {
	if err := e.checkSection("replace section", section); err != nil {
		return err
	}
	e.s.sections[section] = slices.Clone(items)
	e.cmds = append(e.cmds, update.NewReloadSections(index.Sections(section)))
	return nil
}

func (e *Editor) MoveSection(from, to int) error {
	if err := e.checkSection("move section", from); err != nil {
		return err
	}
	if err := e.checkSection("move section", to); err != nil {
		return err
	}
	sec := e.s.sections[from]
	e.s.sections = slices.Delete(e.s.sections, from, from+1)
	e.s.sections = slices.Insert(e.s.sections, to, sec)
	e.cmds = append(e.cmds, update.NewMoveSection(from, to))
	return nil
}

func (e *Editor) checkSection(op string, section int) error {
	if section < 0 || section >= len(e.s.sections) {
		return index.SectionOutOfRange(op, section, len(e.s.sections))
	}
	return nil
}

func (e *Editor) checkItem(op string, idx index.Index) error {
	if err := e.checkSection(op, idx.Section); err != nil {
		return err
	}
	if n := len(e.s.sections[idx.Section]); idx.Item < 0 || idx.Item >= n {
		return index.ItemOutOfRange(op, idx, n)
	}
	return nil
}
