package index

import (
	"fmt"
	"sort"
)

// Index addresses one item inside one section.
type Index struct {
	Section int `json:"section" yaml:"section"`
	Item    int `json:"item" yaml:"item"`
}

// New returns the index for item within section.
func New(section, item int) Index {
	return Index{Section: section, Item: item}
}

// Compare returns -1, 0 or 1 following lexicographic (section, item) order.
func (i Index) Compare(o Index) int {
	switch {
	case i.Section < o.Section:
		return -1
	case i.Section > o.Section:
		return 1
	case i.Item < o.Item:
		return -1
	case i.Item > o.Item:
		return 1
	default:
		return 0
	}
}

// Less reports whether i sorts before o.
func (i Index) Less(o Index) bool {
	return i.Compare(o) < 0
}

// Valid reports whether both components are non-negative.
func (i Index) Valid() bool {
	return i.Section >= 0 && i.Item >= 0
}

func (i Index) String() string {
	return fmt.Sprintf("%d.%d", i.Section, i.Item)
}

// Sort orders indices ascending in place.
func Sort(indices []Index) {
	sort.Slice(indices, func(a, b int) bool {
		return indices[a].Less(indices[b])
	})
}

// SortDescending orders indices descending in place.
func SortDescending(indices []Index) {
	sort.Slice(indices, func(a, b int) bool {
		return indices[b].Less(indices[a])
	})
}

// Dedup returns a sorted copy of indices with duplicates removed.
func Dedup(indices []Index) []Index {
	out := make([]Index, len(indices))
	copy(out, indices)
	Sort(out)
	n := 0
	for i, idx := range out {
		if i > 0 && idx == out[n-1] {
			continue
		}
		out[n] = idx
		n++
	}
	return out[:n]
}

// Shape is the number of items in each section.
type Shape []int

// Sections returns the number of sections.
func (s Shape) Sections() int {
	return len(s)
}

// Items returns the item count of section, or 0 when section is out of range.
func (s Shape) Items(section int) int {
	if section < 0 || section >= len(s) {
		return 0
	}
	return s[section]
}

// Total returns the number of items across all sections.
func (s Shape) Total() int {
	total := 0
	for _, n := range s {
		total += n
	}
	return total
}

// Contains reports whether idx addresses an existing item.
func (s Shape) Contains(idx Index) bool {
	return idx.Valid() && idx.Section < len(s) && idx.Item < s[idx.Section]
}

// Clone returns an independent copy.
func (s Shape) Clone() Shape {
	if s == nil {
		return nil
	}
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// Equal reports whether both shapes have identical section and item counts.
func (s Shape) Equal(o Shape) bool {
	if len(s) != len(o) {
		return false
	}
	for i := range s {
		if s[i] != o[i] {
			return false
		}
	}
	return true
}
