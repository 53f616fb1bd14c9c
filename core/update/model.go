package update

import (
	"errors"
	"fmt"
	"sort"

	"nodegrid/core/index"
)

// ErrConflict is returned when one group addresses the same index twice in a way
// that has no defined result, e.g. deleting and moving the same section.
var ErrConflict = errors.New("conflicting commands")

// fresh marks an item or section that did not exist before the batch.
var fresh = index.Index{Section: -1, Item: -1}

// section is one section of the simulated index space.
type section struct {
	// origin is the section's pre-batch position, or -1 when it is new.
	origin int
	// items holds each item's pre-batch index, or fresh. Only set when known.
	items []index.Index
	// known is false for sections inserted or reloaded during the batch; their
	// item layout comes from the data source.
	known bool
}

// model simulates the index space while commands are applied.
type model struct {
	sections []section
}

func newModel(shape index.Shape) *model {
	m := &model{sections: make([]section, len(shape))}
	for s, n := range shape {
		items := make([]index.Index, n)
		for i := range items {
			items[i] = index.New(s, i)
		}
		m.sections[s] = section{origin: s, items: items, known: true}
	}
	return m
}

func (m *model) clone() *model {
	out := &model{sections: make([]section, len(m.sections))}
	for s, sec := range m.sections {
		if sec.known {
			sec.items = append([]index.Index(nil), sec.items...)
		}
		out.sections[s] = sec
	}
	return out
}

// apply simulates one queued entry. m is left untouched on error.
func (m *model) apply(cmds []Command) (*model, error) {
	g, err := collect(cmds)
	if err != nil {
		return nil, err
	}
	next := m.clone()
	if err := next.applyGroup(g); err != nil {
		return nil, err
	}
	return next, nil
}

type itemMove struct {
	from, to index.Index
}

type sectionMove struct {
	from, to int
}

// group gathers the commands of one entry by role. Pre-entry positions are
// addressed by deletes, reloads and move sources; post-entry positions by inserts
// and move destinations.
type group struct {
	deleteSections []int
	reloadSections []int
	insertSections []int
	moveSections   []sectionMove
	deleteItems    []index.Index
	reloadItems    []index.Index
	insertItems    []index.Index
	moveItems      []itemMove
}

func collect(cmds []Command) (*group, error) {
	g := &group{}
	for _, c := range cmds {
		switch c.Kind {
		case InsertSections:
			g.insertSections = append(g.insertSections, c.Sections.Ascending()...)
		case DeleteSections:
			g.deleteSections = append(g.deleteSections, c.Sections.Ascending()...)
		case ReloadSections:
			g.reloadSections = append(g.reloadSections, c.Sections.Ascending()...)
		case MoveSection:
			g.moveSections = append(g.moveSections, sectionMove{from: c.From.Section, to: c.To.Section})
		case InsertItems:
			g.insertItems = append(g.insertItems, c.Items...)
		case DeleteItems:
			g.deleteItems = append(g.deleteItems, c.Items...)
		case ReloadItems:
			g.reloadItems = append(g.reloadItems, c.Items...)
		case MoveItem:
			g.moveItems = append(g.moveItems, itemMove{from: c.From, to: c.To})
		case ReloadAll:
			return nil, fmt.Errorf("%s cannot be part of a group: %w", c.Kind, ErrConflict)
		default:
			return nil, fmt.Errorf("unknown command kind %d", c.Kind)
		}
	}
	return g, nil
}

func (m *model) applyGroup(g *group) error {
	// Validate every pre-entry position before changing anything.
	preSections := make(map[int]string)
	claimSection := func(op string, s int) error {
		if s < 0 || s >= len(m.sections) {
			return index.SectionOutOfRange(op, s, len(m.sections))
		}
		if prev, ok := preSections[s]; ok {
			return fmt.Errorf("section %d used by %s and %s: %w", s, prev, op, ErrConflict)
		}
		preSections[s] = op
		return nil
	}
	for _, s := range g.deleteSections {
		if err := claimSection("deleteSections", s); err != nil {
			return err
		}
	}
	for _, s := range g.reloadSections {
		if err := claimSection("reloadSections", s); err != nil {
			return err
		}
	}
	for _, mv := range g.moveSections {
		if err := claimSection("moveSection", mv.from); err != nil {
			return err
		}
	}

	preItems := make(map[index.Index]string)
	claimItem := func(op string, idx index.Index) error {
		if err := m.checkItem(op, idx); err != nil {
			return err
		}
		if prev, ok := preItems[idx]; ok {
			return fmt.Errorf("item %s used by %s and %s: %w", idx, prev, op, ErrConflict)
		}
		// Items of a deleted or reloaded section have no position of their own.
		if prev := preSections[idx.Section]; prev == "deleteSections" || prev == "reloadSections" {
			return fmt.Errorf("item %s inside section %d used by %s and %s: %w", idx, idx.Section, prev, op, ErrConflict)
		}
		preItems[idx] = op
		return nil
	}
	for _, idx := range g.deleteItems {
		if err := claimItem("deleteItems", idx); err != nil {
			return err
		}
	}
	for _, idx := range g.reloadItems {
		if err := claimItem("reloadItems", idx); err != nil {
			return err
		}
	}
	for _, mv := range g.moveItems {
		if err := claimItem("moveItem", mv.from); err != nil {
			return err
		}
	}

	// Reloads keep their position: replace in place.
	for _, idx := range g.reloadItems {
		if sec := &m.sections[idx.Section]; sec.known {
			sec.items[idx.Item] = fresh
		}
	}
	for _, s := range g.reloadSections {
		m.sections[s] = section{origin: -1}
	}

	// Remove items, highest position first, remembering what moves carry.
	carried := make([]index.Index, len(g.moveItems))
	removeItems := make(map[int][]int)
	for _, idx := range g.deleteItems {
		removeItems[idx.Section] = append(removeItems[idx.Section], idx.Item)
	}
	for i, mv := range g.moveItems {
		carried[i] = fresh
		if sec := m.sections[mv.from.Section]; sec.known {
			carried[i] = sec.items[mv.from.Item]
		}
		removeItems[mv.from.Section] = append(removeItems[mv.from.Section], mv.from.Item)
	}
	for s, positions := range removeItems {
		sec := &m.sections[s]
		if !sec.known {
			continue
		}
		sort.Sort(sort.Reverse(sort.IntSlice(positions)))
		for _, p := range positions {
			sec.items = append(sec.items[:p], sec.items[p+1:]...)
		}
	}

	// Remove sections, highest position first.
	movedSections := make([]section, len(g.moveSections))
	removeSections := append([]int(nil), g.deleteSections...)
	for i, mv := range g.moveSections {
		movedSections[i] = m.sections[mv.from]
		removeSections = append(removeSections, mv.from)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(removeSections)))
	for _, s := range removeSections {
		m.sections = append(m.sections[:s], m.sections[s+1:]...)
	}

	// Insert sections, lowest post-entry position first.
	type sectionInsert struct {
		at  int
		sec section
	}
	inserts := make([]sectionInsert, 0, len(g.insertSections)+len(g.moveSections))
	for _, s := range g.insertSections {
		inserts = append(inserts, sectionInsert{at: s, sec: section{origin: -1}})
	}
	for i, mv := range g.moveSections {
		inserts = append(inserts, sectionInsert{at: mv.to, sec: movedSections[i]})
	}
	sort.SliceStable(inserts, func(a, b int) bool { return inserts[a].at < inserts[b].at })
	for i, ins := range inserts {
		if i > 0 && inserts[i-1].at == ins.at {
			return fmt.Errorf("section %d inserted twice: %w", ins.at, ErrConflict)
		}
		if ins.at < 0 || ins.at > len(m.sections) {
			return index.SectionOutOfRange("insertSections", ins.at, len(m.sections)+1)
		}
		m.sections = append(m.sections, section{})
		copy(m.sections[ins.at+1:], m.sections[ins.at:])
		m.sections[ins.at] = ins.sec
	}

	// Insert items, lowest post-entry position first.
	type itemInsert struct {
		at     index.Index
		origin index.Index
	}
	items := make([]itemInsert, 0, len(g.insertItems)+len(g.moveItems))
	for _, idx := range g.insertItems {
		items = append(items, itemInsert{at: idx, origin: fresh})
	}
	for i, mv := range g.moveItems {
		items = append(items, itemInsert{at: mv.to, origin: carried[i]})
	}
	sort.SliceStable(items, func(a, b int) bool { return items[a].at.Less(items[b].at) })
	for i, ins := range items {
		if i > 0 && items[i-1].at == ins.at {
			return fmt.Errorf("item %s inserted twice: %w", ins.at, ErrConflict)
		}
		s := ins.at.Section
		if s < 0 || s >= len(m.sections) || ins.at.Item < 0 {
			return index.ItemOutOfRange("insertItems", ins.at, m.items(s)+1)
		}
		sec := &m.sections[s]
		if !sec.known {
			continue
		}
		if ins.at.Item > len(sec.items) {
			return index.ItemOutOfRange("insertItems", ins.at, len(sec.items)+1)
		}
		sec.items = append(sec.items, index.Index{})
		copy(sec.items[ins.at.Item+1:], sec.items[ins.at.Item:])
		sec.items[ins.at.Item] = ins.origin
	}
	return nil
}

// checkItem validates a pre-entry item position. Items of sections with an
// unknown layout are accepted.
func (m *model) checkItem(op string, idx index.Index) error {
	if idx.Section < 0 || idx.Section >= len(m.sections) || idx.Item < 0 {
		return index.ItemOutOfRange(op, idx, m.items(idx.Section))
	}
	sec := m.sections[idx.Section]
	if sec.known && idx.Item >= len(sec.items) {
		return index.ItemOutOfRange(op, idx, len(sec.items))
	}
	return nil
}

func (m *model) items(s int) int {
	if s < 0 || s >= len(m.sections) || !m.sections[s].known {
		return 0
	}
	return len(m.sections[s].items)
}

// shape returns the simulated counts; sections without a known layout report -1.
func (m *model) shape() []int {
	out := make([]int, len(m.sections))
	for s, sec := range m.sections {
		if sec.known {
			out[s] = len(sec.items)
		} else {
			out[s] = -1
		}
	}
	return out
}

// resolve checks the simulated space against the data source's actual shape and
// builds the mapping from the pre-batch shape old.
func (m *model) resolve(old, actual index.Shape) (*Mapping, error) {
	expected := m.shape()
	if len(expected) != len(actual) {
		return nil, &InconsistentDataSourceError{Expected: expected, Actual: actual.Clone(),
			Reason: fmt.Sprintf("expected %d sections, data source has %d", len(expected), len(actual))}
	}
	for s, n := range expected {
		if n >= 0 && n != actual[s] {
			return nil, &InconsistentDataSourceError{Expected: expected, Actual: actual.Clone(),
				Reason: fmt.Sprintf("section %d: expected %d items, data source has %d", s, n, actual[s])}
		}
	}

	mp := newMapping(old, actual)
	for s, sec := range m.sections {
		if sec.origin >= 0 {
			mp.sections[sec.origin] = s
		}
		if !sec.known {
			continue
		}
		for i, origin := range sec.items {
			if origin == fresh {
				continue
			}
			mp.items[origin.Section][origin.Item] = index.New(s, i)
		}
	}
	return mp, nil
}
