package rangectl

import (
	"sort"

	"nodegrid/core/index"
)

// WorkingRange is an ordered set of indices.
type WorkingRange struct {
	indices []index.Index
}

// NewWorkingRange builds a range from indices in any order.
func NewWorkingRange(indices []index.Index) WorkingRange {
	return WorkingRange{indices: index.Dedup(indices)}
}

// Len returns the number of indices.
func (r WorkingRange) Len() int {
	return len(r.indices)
}

// Indices returns a copy of the members in ascending order.
func (r WorkingRange) Indices() []index.Index {
	out := make([]index.Index, len(r.indices))
	copy(out, r.indices)
	return out
}

// Contains reports whether idx is a member.
func (r WorkingRange) Contains(idx index.Index) bool {
	i := sort.Search(len(r.indices), func(i int) bool {
		return !r.indices[i].Less(idx)
	})
	return i < len(r.indices) && r.indices[i] == idx
}

// Bounds returns the first and last member.
func (r WorkingRange) Bounds() (first, last index.Index, ok bool) {
	if len(r.indices) == 0 {
		return index.Index{}, index.Index{}, false
	}
	return r.indices[0], r.indices[len(r.indices)-1], true
}

// minus returns the members of r that are not in o, in order.
func (r WorkingRange) minus(o WorkingRange) []index.Index {
	var out []index.Index
	for _, idx := range r.indices {
		if !o.Contains(idx) {
			out = append(out, idx)
		}
	}
	return out
}

// Delta lists the instructions issued by one recomputation.
type Delta struct {
	Preload []index.Index `json:"preload"`
	Evict   []index.Index `json:"evict"`
}

// Empty reports whether the delta carries no instruction.
func (d Delta) Empty() bool {
	return len(d.Preload) == 0 && len(d.Evict) == 0
}
