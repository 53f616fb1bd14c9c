package index

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"
)

// SectionSet is an ordered set of section numbers.
// The zero value is an empty set ready to use.
type SectionSet struct {
	bm *roaring.Bitmap
}

// NewSectionSet builds a set from values. Negative values are rejected.
func NewSectionSet(values ...int) (SectionSet, error) {
	bm := roaring.New()
	for _, v := range values {
		if v < 0 {
			return SectionSet{}, fmt.Errorf("section %d: negative section number", v)
		}
		bm.Add(uint32(v))
	}
	return SectionSet{bm: bm}, nil
}

// Sections is like NewSectionSet but panics on a negative value.
// It is intended for literals in tests and examples.
func Sections(values ...int) SectionSet {
	set, err := NewSectionSet(values...)
	if err != nil {
		panic(err)
	}
	return set
}

// Len returns the number of sections in the set.
func (s SectionSet) Len() int {
	if s.bm == nil {
		return 0
	}
	return int(s.bm.GetCardinality())
}

// Contains reports whether section is a member.
func (s SectionSet) Contains(section int) bool {
	if s.bm == nil || section < 0 {
		return false
	}
	return s.bm.Contains(uint32(section))
}

// Max returns the largest member, or -1 for an empty set.
func (s SectionSet) Max() int {
	if s.Len() == 0 {
		return -1
	}
	return int(s.bm.Maximum())
}

// Ascending returns the members in increasing order.
func (s SectionSet) Ascending() []int {
	if s.bm == nil {
		return nil
	}
	out := make([]int, 0, s.Len())
	it := s.bm.Iterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// Descending returns the members in decreasing order.
func (s SectionSet) Descending() []int {
	if s.bm == nil {
		return nil
	}
	out := make([]int, 0, s.Len())
	it := s.bm.ReverseIterator()
	for it.HasNext() {
		out = append(out, int(it.Next()))
	}
	return out
}

// Clone returns an independent copy of the set.
func (s SectionSet) Clone() SectionSet {
	if s.bm == nil {
		return SectionSet{}
	}
	return SectionSet{bm: s.bm.Clone()}
}

func (s SectionSet) String() string {
	return fmt.Sprint(s.Ascending())
}
