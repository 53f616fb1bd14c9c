package update

import (
	"nodegrid/core/index"
)

// Mapping translates pre-batch indices into post-batch indices. It satisfies
// nodestore.Mapping and rangectl.Mapping.
type Mapping struct {
	old      index.Shape
	new      index.Shape
	sections []int
	items    [][]index.Index
}

func newMapping(old, next index.Shape) *Mapping {
	m := &Mapping{
		old:      old.Clone(),
		new:      next.Clone(),
		sections: make([]int, len(old)),
		items:    make([][]index.Index, len(old)),
	}
	for s, n := range old {
		m.sections[s] = -1
		m.items[s] = make([]index.Index, n)
		for i := range m.items[s] {
			m.items[s][i] = fresh
		}
	}
	return m
}

// IdentityMapping maps every index of shape onto itself.
func IdentityMapping(shape index.Shape) *Mapping {
	m := newMapping(shape, shape)
	for s, n := range shape {
		m.sections[s] = s
		for i := 0; i < n; i++ {
			m.items[s][i] = index.New(s, i)
		}
	}
	return m
}

// OldShape is the shape before the batch.
func (m *Mapping) OldShape() index.Shape {
	return m.old.Clone()
}

// NewShape is the shape after the batch.
func (m *Mapping) NewShape() index.Shape {
	return m.new.Clone()
}

// Target returns the post-batch position of the item at old. It reports false
// when the item was deleted or reloaded.
func (m *Mapping) Target(old index.Index) (index.Index, bool) {
	if !m.old.Contains(old) {
		return index.Index{}, false
	}
	t := m.items[old.Section][old.Item]
	return t, t != fresh
}

// SectionTarget returns the post-batch position of section old. It reports false
// when the section was deleted or reloaded.
func (m *Mapping) SectionTarget(old int) (int, bool) {
	if old < 0 || old >= len(m.sections) {
		return 0, false
	}
	t := m.sections[old]
	return t, t >= 0
}

// Removed lists the pre-batch items that have no post-batch position, ascending.
func (m *Mapping) Removed() []index.Index {
	var out []index.Index
	for s, items := range m.items {
		for i, t := range items {
			if t == fresh {
				out = append(out, index.New(s, i))
			}
		}
	}
	return out
}

// Inserted lists the post-batch items that have no pre-batch origin, ascending.
func (m *Mapping) Inserted() []index.Index {
	covered := make([][]bool, len(m.new))
	for s, n := range m.new {
		covered[s] = make([]bool, n)
	}
	for _, items := range m.items {
		for _, t := range items {
			if t != fresh {
				covered[t.Section][t.Item] = true
			}
		}
	}
	var out []index.Index
	for s, items := range covered {
		for i, ok := range items {
			if !ok {
				out = append(out, index.New(s, i))
			}
		}
	}
	return out
}

// Moved returns the surviving items whose position changed, keyed by their
// pre-batch index.
func (m *Mapping) Moved() map[index.Index]index.Index {
	out := make(map[index.Index]index.Index)
	for s, items := range m.items {
		for i, t := range items {
			old := index.New(s, i)
			if t != fresh && t != old {
				out[old] = t
			}
		}
	}
	return out
}

// Identity reports whether the batch left every index in place.
func (m *Mapping) Identity() bool {
	if !m.old.Equal(m.new) {
		return false
	}
	for s, items := range m.items {
		for i, t := range items {
			if t != index.New(s, i) {
				return false
			}
		}
	}
	return true
}
