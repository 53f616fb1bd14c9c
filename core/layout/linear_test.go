package layout

import (
	"testing"

	"nodegrid/core/index"
	"nodegrid/core/node"

	"github.com/stretchr/testify/assert"
)

type fixedSource struct {
	shape index.Shape
	sizes map[index.Index]float64
}

func (f fixedSource) Shape() index.Shape { return f.shape }
func (f fixedSource) Generation() uint64 { return 0 }

func (f fixedSource) SizeOf(idx index.Index) (node.Size, bool) {
	h, ok := f.sizes[idx]
	return node.Size{Height: h}, ok
}

func TestLinear_EstimatesUnmeasured(t *testing.T) {
	src := fixedSource{
		shape: index.Shape{2, 1},
		sizes: map[index.Index]float64{index.New(0, 1): 30},
	}
	frames := NewLinear(src, 10).Frames()

	assert.Equal(t, 3, frames.Len())
	assert.Equal(t, float64(50), frames.ContentExtent())

	span, ok := frames.Frame(index.New(0, 1))
	assert.True(t, ok)
	assert.Equal(t, Span{Start: 10, End: 40}, span)

	span, ok = frames.Frame(index.New(1, 0))
	assert.True(t, ok)
	assert.Equal(t, Span{Start: 40, End: 50}, span)

	_, ok = frames.Frame(index.New(2, 0))
	assert.False(t, ok)
}

func TestLinear_DefaultEstimate(t *testing.T) {
	l := NewLinear(fixedSource{shape: index.Shape{1}}, 0)
	assert.Equal(t, float64(DefaultEstimate), l.Estimate())
}

func TestFrames_Range(t *testing.T) {
	frames := NewLinear(fixedSource{shape: index.Shape{100}}, 10).Frames()

	tests := []struct {
		name   string
		lo, hi float64
		first  int
		count  int
	}{
		{"visible", 100, 150, 10, 5},
		{"partial edges", 95, 151, 9, 7},
		{"clamped start", -20, 30, 0, 3},
		{"past end", 990, 2000, 99, 1},
		{"empty interval", 50, 50, 0, 0},
		{"outside", 1000, 1100, 0, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := frames.Range(tt.lo, tt.hi)
			assert.Len(t, got, tt.count)
			if tt.count > 0 {
				assert.Equal(t, index.New(0, tt.first), got[0])
				assert.Equal(t, index.New(0, tt.first+tt.count-1), got[len(got)-1])
			}
		})
	}
}

func TestFrames_RangeAcrossSections(t *testing.T) {
	src := fixedSource{
		shape: index.Shape{2, 0, 2},
		sizes: map[index.Index]float64{index.New(2, 0): 0},
	}
	frames := NewLinear(src, 10).Frames()

	got := frames.Range(15, 25)
	assert.Equal(t, []index.Index{index.New(0, 1), index.New(2, 0), index.New(2, 1)}, got)
}

// renumberingSource advances its generation the first time the walk reads it.
type renumberingSource struct {
	fixedSource
	gen    uint64
	walked bool
}

func (r *renumberingSource) Shape() index.Shape {
	if !r.walked {
		r.walked = true
		r.gen++
	}
	return r.shape
}

func (r *renumberingSource) Generation() uint64 { return r.gen }

func TestLinear_FramesBelongToOneGeneration(t *testing.T) {
	src := &renumberingSource{fixedSource: fixedSource{shape: index.Shape{3}}}
	frames := NewLinear(src, 10).Frames()

	assert.Equal(t, uint64(1), frames.Generation())
	assert.Equal(t, 3, frames.Len())
}
