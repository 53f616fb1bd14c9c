package rangectl

import "fmt"

// Tuning sizes the working range in screenfuls of the viewport extent.
type Tuning struct {
	LeadingBufferScreenfuls  float64 `mapstructure:"leading_buffer_screenfuls" default:"2" json:"leadingBufferScreenfuls"`
	TrailingBufferScreenfuls float64 `mapstructure:"trailing_buffer_screenfuls" default:"1" json:"trailingBufferScreenfuls"`
}

// DefaultTuning returns leading=2, trailing=1.
func DefaultTuning() Tuning {
	return Tuning{LeadingBufferScreenfuls: 2, TrailingBufferScreenfuls: 1}
}

// Validate rejects negative buffers.
func (t Tuning) Validate() error {
	if t.LeadingBufferScreenfuls < 0 || t.TrailingBufferScreenfuls < 0 {
		return fmt.Errorf("range tuning: buffers must be non-negative, got leading=%g trailing=%g",
			t.LeadingBufferScreenfuls, t.TrailingBufferScreenfuls)
	}
	return nil
}

// Direction is the scroll direction along the scroll axis.
type Direction int8

const (
	// Forward scrolls towards larger offsets.
	Forward Direction = iota
	// Backward scrolls towards smaller offsets.
	Backward
)

func (d Direction) String() string {
	if d == Backward {
		return "backward"
	}
	return "forward"
}

// DirectionOf derives the direction of a move from one offset to another. An
// unchanged offset keeps prev.
func DirectionOf(from, to float64, prev Direction) Direction {
	switch {
	case to > from:
		return Forward
	case to < from:
		return Backward
	default:
		return prev
	}
}

// Viewport is the visible interval [Offset, Offset+Extent) along the scroll axis.
type Viewport struct {
	Offset float64 `json:"offset"`
	Extent float64 `json:"extent"`
}

// End returns Offset + Extent.
func (v Viewport) End() float64 {
	return v.Offset + v.Extent
}

// Window is a scroll-axis interval [Start, End).
type Window struct {
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

// Window returns the working-range interval for vp. The leading buffer lies in the
// scroll direction. The result is clamped to [0, content].
func (t Tuning) Window(vp Viewport, dir Direction, content float64) Window {
	ahead := t.LeadingBufferScreenfuls * vp.Extent
	behind := t.TrailingBufferScreenfuls * vp.Extent
	if dir == Backward {
		ahead, behind = behind, ahead
	}
	w := Window{Start: vp.Offset - behind, End: vp.End() + ahead}
	if w.Start < 0 {
		w.Start = 0
	}
	if w.End > content {
		w.End = content
	}
	if w.End < w.Start {
		w.End = w.Start
	}
	return w
}
