package nodestore

import (
	"nodegrid/core/index"
	"nodegrid/core/node"
)

// Snapshot is an immutable view of the store at one version.
type Snapshot struct {
	sections [][]Slot
	shape    index.Shape
	version  uint64
	gen      uint64
}

func newSnapshot(shape index.Shape, version, gen uint64) *Snapshot {
	sections := make([][]Slot, len(shape))
	for s, n := range shape {
		sections[s] = make([]Slot, n)
	}
	return &Snapshot{sections: sections, shape: shape.Clone(), version: version, gen: gen}
}

// Version increases with every published write.
func (s *Snapshot) Version() uint64 {
	return s.version
}

// Generation identifies the index space. Only Remap and Reset advance it, so two
// snapshots of one generation address the same content by the same index.
func (s *Snapshot) Generation() uint64 {
	return s.gen
}

// SizeOf returns the measured size at idx, if known.
func (s *Snapshot) SizeOf(idx index.Index) (node.Size, bool) {
	slot, err := s.Get(idx)
	if err != nil || !slot.Measured {
		return node.Size{}, false
	}
	return slot.Size, true
}

// Shape returns a copy of the section/item counts.
func (s *Snapshot) Shape() index.Shape {
	return s.shape.Clone()
}

// Get returns the slot at idx.
func (s *Snapshot) Get(idx index.Index) (Slot, error) {
	if !s.shape.Contains(idx) {
		return Slot{}, index.ItemOutOfRange("get", idx, s.shape.Items(idx.Section))
	}
	return s.sections[idx.Section][idx.Item], nil
}

// Each calls fn for every slot in index order until fn returns false.
func (s *Snapshot) Each(fn func(idx index.Index, slot Slot) bool) {
	for sec, items := range s.sections {
		for item, slot := range items {
			if !fn(index.New(sec, item), slot) {
				return
			}
		}
	}
}

// Count returns how many slots are in state.
func (s *Snapshot) Count(state State) int {
	n := 0
	s.Each(func(_ index.Index, slot Slot) bool {
		if slot.State == state {
			n++
		}
		return true
	})
	return n
}

// clone copies the outer slice; sections are shared until touched.
func (s *Snapshot) clone() *Snapshot {
	sections := make([][]Slot, len(s.sections))
	copy(sections, s.sections)
	return &Snapshot{sections: sections, shape: s.shape, version: s.version + 1, gen: s.gen}
}

// touch gives section its own backing array in a cloned snapshot.
func (s *Snapshot) touch(section int) []Slot {
	items := make([]Slot, len(s.sections[section]))
	copy(items, s.sections[section])
	s.sections[section] = items
	return items
}
