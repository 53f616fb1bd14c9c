package layout

import (
	"sort"

	"nodegrid/core/index"
	"nodegrid/core/node"
)

// DefaultEstimate is used for unmeasured items when no estimate is configured.
const DefaultEstimate = 44

// Source supplies the index space and whatever sizes are already known.
// nodestore.Store satisfies it.
type Source interface {
	Shape() index.Shape
	SizeOf(idx index.Index) (node.Size, bool)
	// Generation changes whenever indices are renumbered.
	Generation() uint64
}

// Span is the scroll-axis interval [Start, End) occupied by one item.
type Span struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Extent returns End - Start.
func (s Span) Extent() float64 {
	return s.End - s.Start
}

// Linear lays items out in index order along a single axis.
type Linear struct {
	source   Source
	estimate float64
}

// NewLinear creates a layout over source. A non-positive estimate falls back to
// DefaultEstimate.
func NewLinear(source Source, estimate float64) *Linear {
	if estimate <= 0 {
		estimate = DefaultEstimate
	}
	return &Linear{source: source, estimate: estimate}
}

// Estimate returns the extent assumed for unmeasured items.
func (l *Linear) Estimate() float64 {
	return l.estimate
}

// Frames computes the current positions. Every position in the result belongs to
// one generation of the source; a renumbering during the walk restarts it.
func (l *Linear) Frames() *Frames {
	for {
		gen := l.source.Generation()
		f := l.build()
		if l.source.Generation() == gen {
			f.gen = gen
			return f
		}
	}
}

func (l *Linear) build() *Frames {
	shape := l.source.Shape()
	f := &Frames{
		shape: shape,
		base:  make([]int, len(shape)),
		order: make([]index.Index, 0, shape.Total()),
	}
	f.starts = make([]float64, 0, cap(f.order))
	f.ends = make([]float64, 0, cap(f.order))

	pos := 0.0
	for s, n := range shape {
		f.base[s] = len(f.order)
		for i := 0; i < n; i++ {
			idx := index.New(s, i)
			extent := l.estimate
			if size, ok := l.source.SizeOf(idx); ok {
				extent = size.Height
			}
			f.order = append(f.order, idx)
			f.starts = append(f.starts, pos)
			pos += extent
			f.ends = append(f.ends, pos)
		}
	}
	f.extent = pos
	return f
}

// Frames is an immutable set of item positions.
type Frames struct {
	shape  index.Shape
	base   []int
	order  []index.Index
	starts []float64
	ends   []float64
	extent float64
	gen    uint64
}

// Generation is the source generation the positions were computed for.
func (f *Frames) Generation() uint64 {
	return f.gen
}

// ContentExtent is the total scroll-axis extent of all items.
func (f *Frames) ContentExtent() float64 {
	return f.extent
}

// Len returns the number of items.
func (f *Frames) Len() int {
	return len(f.order)
}

// Frame returns the span of idx.
func (f *Frames) Frame(idx index.Index) (Span, bool) {
	if !f.shape.Contains(idx) {
		return Span{}, false
	}
	i := f.base[idx.Section] + idx.Item
	return Span{Start: f.starts[i], End: f.ends[i]}, true
}

// Range returns, in index order, every item whose span intersects [lo, hi).
// Zero-extent items count when their position falls inside the interval.
func (f *Frames) Range(lo, hi float64) []index.Index {
	if hi <= lo || len(f.order) == 0 {
		return nil
	}
	first := sort.Search(len(f.order), func(i int) bool {
		return f.ends[i] > lo || f.starts[i] >= lo
	})
	last := sort.Search(len(f.order), func(i int) bool {
		return f.starts[i] >= hi
	})
	if first >= last {
		return nil
	}
	out := make([]index.Index, last-first)
	copy(out, f.order[first:last])
	return out
}
