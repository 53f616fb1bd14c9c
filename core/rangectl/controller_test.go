package rangectl

import (
	"context"
	"sync/atomic"
	"testing"

	"nodegrid/core/index"
	"nodegrid/core/layout"
	"nodegrid/core/node"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type uniformSource struct {
	shape index.Shape
	gen   *atomic.Uint64
}

func (u uniformSource) Shape() index.Shape                   { return u.shape }
func (u uniformSource) SizeOf(index.Index) (node.Size, bool) { return node.Size{}, false }
func (u uniformSource) Generation() uint64                   { return u.gen.Load() }

// recordingExecutor starts every index that is not already live. Instructions
// for any generation but gen are refused.
type recordingExecutor struct {
	gen      uint64
	live     map[index.Index]bool
	preloads [][]index.Index
	evicts   [][]index.Index
}

func newRecordingExecutor() *recordingExecutor {
	return &recordingExecutor{live: make(map[index.Index]bool)}
}

func (r *recordingExecutor) Preload(_ context.Context, gen uint64, indices []index.Index) []index.Index {
	if gen != r.gen {
		return nil
	}
	var started []index.Index
	for _, idx := range indices {
		if r.live[idx] {
			continue
		}
		r.live[idx] = true
		started = append(started, idx)
	}
	if len(started) > 0 {
		r.preloads = append(r.preloads, started)
	}
	return started
}

func (r *recordingExecutor) Evict(gen uint64, indices []index.Index) []index.Index {
	if gen != r.gen {
		return indices
	}
	for _, idx := range indices {
		delete(r.live, idx)
	}
	r.evicts = append(r.evicts, indices)
	return nil
}

func items(from, to int) []index.Index {
	out := make([]index.Index, 0, to-from)
	for i := from; i < to; i++ {
		out = append(out, index.New(0, i))
	}
	return out
}

func newTestController(tuning Tuning, total int) (*Controller, *recordingExecutor) {
	c, exec, _ := newGenerationalController(tuning, total)
	return c, exec
}

// newGenerationalController also returns the layout's generation counter.
func newGenerationalController(tuning Tuning, total int) (*Controller, *recordingExecutor, *atomic.Uint64) {
	gen := new(atomic.Uint64)
	exec := newRecordingExecutor()
	l := layout.NewLinear(uniformSource{shape: index.Shape{total}, gen: gen}, 10)
	return NewController(tuning, l, exec, nil), exec, gen
}

func TestTuning_Window(t *testing.T) {
	tuning := DefaultTuning()
	vp := Viewport{Offset: 100, Extent: 50}

	assert.Equal(t, Window{Start: 50, End: 250}, tuning.Window(vp, Forward, 1000))
	assert.Equal(t, Window{Start: 0, End: 200}, tuning.Window(vp, Backward, 1000))
	assert.Equal(t, Window{Start: 50, End: 180}, tuning.Window(vp, Forward, 180))
	assert.Equal(t, Window{Start: 0, End: 0}, tuning.Window(Viewport{Extent: 50}, Forward, 0))
}

func TestTuning_Validate(t *testing.T) {
	assert.NoError(t, DefaultTuning().Validate())
	assert.Error(t, Tuning{LeadingBufferScreenfuls: -1}.Validate())
}

func TestDirectionOf(t *testing.T) {
	assert.Equal(t, Forward, DirectionOf(0, 10, Backward))
	assert.Equal(t, Backward, DirectionOf(10, 0, Forward))
	assert.Equal(t, Backward, DirectionOf(10, 10, Backward))
}

func TestController_PreloadWindow(t *testing.T) {
	c, exec := newTestController(DefaultTuning(), 100)

	// Items are 10 tall, so offset 100 with extent 50 shows [10,15).
	delta := c.Update(context.Background(), Viewport{Offset: 100, Extent: 50}, Forward)

	assert.Equal(t, items(5, 25), delta.Preload)
	assert.Empty(t, delta.Evict)
	assert.Equal(t, items(5, 25), c.Current().Indices())
	assert.Equal(t, items(10, 15), c.Visible().Indices())
	assert.Len(t, exec.preloads, 1)
}

func TestController_TrailingOnly(t *testing.T) {
	c, _ := newTestController(Tuning{TrailingBufferScreenfuls: 1}, 100)

	delta := c.Update(context.Background(), Viewport{Offset: 100, Extent: 50}, Forward)
	assert.Equal(t, items(5, 15), delta.Preload)
}

func TestController_ClampsAtBounds(t *testing.T) {
	c, _ := newTestController(DefaultTuning(), 20)

	delta := c.Update(context.Background(), Viewport{Offset: 150, Extent: 50}, Forward)
	assert.Equal(t, items(10, 20), delta.Preload)
	assert.Equal(t, Window{Start: 100, End: 200}, c.Window())
}

func TestController_Idempotent(t *testing.T) {
	c, exec := newTestController(DefaultTuning(), 100)
	vp := Viewport{Offset: 100, Extent: 50}

	require.False(t, c.Update(context.Background(), vp, Forward).Empty())
	assert.True(t, c.Update(context.Background(), vp, Forward).Empty())
	assert.True(t, c.Recompute(context.Background()).Empty())
	assert.Len(t, exec.preloads, 1)
	assert.Empty(t, exec.evicts)
}

func TestController_ScrollEvictsAndPreloads(t *testing.T) {
	c, _ := newTestController(DefaultTuning(), 100)
	c.Update(context.Background(), Viewport{Offset: 100, Extent: 50}, Forward)

	delta := c.Update(context.Background(), Viewport{Offset: 200, Extent: 50}, Forward)
	// Window moves from [50,250) to [150,350).
	assert.Equal(t, items(5, 15), delta.Evict)
	assert.Equal(t, items(25, 35), delta.Preload)
}

func TestController_BackwardSwapsBuffers(t *testing.T) {
	c, _ := newTestController(DefaultTuning(), 100)

	delta := c.Update(context.Background(), Viewport{Offset: 500, Extent: 50}, Backward)
	// Backward puts the two leading screenfuls behind the offset: [400,600).
	assert.Equal(t, items(40, 60), delta.Preload)
}

func TestController_RecomputeBeforeUpdate(t *testing.T) {
	c, exec := newTestController(DefaultTuning(), 100)
	assert.True(t, c.Recompute(context.Background()).Empty())
	assert.Empty(t, exec.preloads)
}

type shiftMapping struct {
	by      int
	dropped index.Index
}

func (s shiftMapping) Target(old index.Index) (index.Index, bool) {
	if old == s.dropped {
		return index.Index{}, false
	}
	return index.New(old.Section, old.Item+s.by), true
}

func TestController_RemapAndReset(t *testing.T) {
	c, _ := newTestController(Tuning{}, 100)
	c.Update(context.Background(), Viewport{Offset: 0, Extent: 30}, Forward)
	require.Equal(t, items(0, 3), c.Current().Indices())

	c.Remap(shiftMapping{by: 1, dropped: index.New(0, 2)}, 0)
	assert.Equal(t, items(1, 3), c.Current().Indices())
	assert.True(t, c.Current().Contains(index.New(0, 2)))
	assert.False(t, c.Current().Contains(index.New(0, 0)))

	c.Reset(0)
	assert.Equal(t, 0, c.Current().Len())
	vp, dir := c.Viewport()
	assert.Equal(t, Viewport{Offset: 0, Extent: 30}, vp)
	assert.Equal(t, Forward, dir)
}

func TestWorkingRange_Bounds(t *testing.T) {
	r := NewWorkingRange([]index.Index{index.New(1, 0), index.New(0, 3), index.New(1, 0)})
	first, last, ok := r.Bounds()
	assert.True(t, ok)
	assert.Equal(t, index.New(0, 3), first)
	assert.Equal(t, index.New(1, 0), last)
	assert.Equal(t, 2, r.Len())

	_, _, ok = WorkingRange{}.Bounds()
	assert.False(t, ok)
}

func TestController_DefersUntilRemapped(t *testing.T) {
	c, exec, gen := newGenerationalController(DefaultTuning(), 100)
	vp := Viewport{Offset: 100, Extent: 50}
	c.Update(context.Background(), vp, Forward)
	require.Equal(t, items(5, 25), c.Current().Indices())

	// The store renumbered under the controller: nothing is issued in either space.
	gen.Store(1)
	exec.gen = 1
	delta := c.Update(context.Background(), Viewport{Offset: 200, Extent: 50}, Forward)
	assert.True(t, delta.Empty())
	assert.Len(t, exec.preloads, 1)
	assert.Empty(t, exec.evicts)
	assert.Equal(t, items(5, 25), c.Current().Indices())

	c.Remap(shiftMapping{by: 0, dropped: index.New(0, -1)}, 1)
	delta = c.Recompute(context.Background())
	assert.Equal(t, items(5, 15), delta.Evict)
	assert.Equal(t, items(25, 35), delta.Preload)
}

func TestController_KeepsIndicesItCouldNotEvict(t *testing.T) {
	c, exec := newTestController(DefaultTuning(), 100)
	c.Update(context.Background(), Viewport{Offset: 100, Extent: 50}, Forward)

	// The executor's generation ends while the layout still reports the old one.
	exec.gen = 1
	delta := c.Update(context.Background(), Viewport{Offset: 200, Extent: 50}, Forward)
	assert.Empty(t, delta.Evict)
	assert.Empty(t, delta.Preload)
	assert.True(t, c.Current().Contains(index.New(0, 5)), "refused evictions stay tracked")
	assert.True(t, c.Current().Contains(index.New(0, 34)))
}
