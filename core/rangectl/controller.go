package rangectl

import (
	"context"
	"sync"

	"nodegrid/core/index"
	"nodegrid/core/layout"

	"go.uber.org/zap"
)

// Layout supplies item positions. layout.Linear satisfies it.
type Layout interface {
	Frames() *layout.Frames
}

// Executor carries out the instructions of a recomputation. Indices belong to
// generation gen; instructions for an ended generation are not carried out.
type Executor interface {
	// Preload starts materializing indices and returns the ones actually started.
	// Indices that are already pending or ready are skipped.
	Preload(ctx context.Context, gen uint64, indices []index.Index) []index.Index
	// Evict releases indices, cancelling in-flight work. It returns the indices it
	// could not release because the generation ended.
	Evict(gen uint64, indices []index.Index) []index.Index
}

// Mapping translates indices across a structural change.
type Mapping interface {
	Target(old index.Index) (index.Index, bool)
}

// Controller tracks the working range of one view.
type Controller struct {
	mu      sync.Mutex
	tuning  Tuning
	layout  Layout
	exec    Executor
	logger  *zap.Logger
	gen     uint64
	vp      Viewport
	dir     Direction
	seeded  bool
	window  Window
	current WorkingRange
	visible WorkingRange
}

// NewController creates a controller for a layout at generation zero. Nothing is
// preloaded until the first Update.
func NewController(tuning Tuning, l Layout, exec Executor, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{tuning: tuning, layout: l, exec: exec, logger: logger}
}

// Update records a new viewport and scroll direction and recomputes the range.
func (c *Controller) Update(ctx context.Context, vp Viewport, dir Direction) Delta {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.vp, c.dir, c.seeded = vp, dir, true
	return c.recompute(ctx)
}

// Recompute recomputes the range for the last viewport, e.g. after the content
// changed. It is a no-op before the first Update.
func (c *Controller) Recompute(ctx context.Context) Delta {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.seeded {
		return Delta{}
	}
	return c.recompute(ctx)
}

// SetTuning replaces the buffers. The change applies on the next recomputation.
func (c *Controller) SetTuning(t Tuning) {
	c.mu.Lock()
	c.tuning = t
	c.mu.Unlock()
}

// Remap moves the remembered range across a structural change that produced
// generation gen. Indices the mapping drops are forgotten; their slots are already
// gone from the store.
func (c *Controller) Remap(m Mapping, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen = gen
	c.current = remapRange(c.current, m)
	c.visible = remapRange(c.visible, m)
}

// Reset forgets the remembered range and moves to generation gen. The next
// recomputation preloads the whole window again.
func (c *Controller) Reset(gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen = gen
	c.current = WorkingRange{}
	c.visible = WorkingRange{}
	c.window = Window{}
}

// Tuning returns the current buffers.
func (c *Controller) Tuning() Tuning {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.tuning
}

// Viewport returns the last viewport and direction.
func (c *Controller) Viewport() (Viewport, Direction) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vp, c.dir
}

// Window returns the last computed working-range interval.
func (c *Controller) Window() Window {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.window
}

// Current returns the working range.
func (c *Controller) Current() WorkingRange {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// Visible returns the indices inside the viewport itself.
func (c *Controller) Visible() WorkingRange {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.visible
}

// recompute diffs the window against the remembered range. Both must be in the
// same generation: when the layout has moved past the controller, the structural
// change is still on its way to Remap or Reset, which recompute again.
func (c *Controller) recompute(ctx context.Context) Delta {
	frames := c.layout.Frames()
	if frames.Generation() != c.gen {
		c.logger.Debug("Deferred working range update",
			zap.Uint64("generation", c.gen),
			zap.Uint64("layout", frames.Generation()))
		return Delta{}
	}
	c.window = c.tuning.Window(c.vp, c.dir, frames.ContentExtent())
	next := NewWorkingRange(frames.Range(c.window.Start, c.window.End))
	c.visible = NewWorkingRange(frames.Range(c.vp.Offset, c.vp.End()))

	var delta Delta
	if evict := c.current.minus(next); len(evict) > 0 {
		// Indices the executor left alone stay tracked so they are released
		// after the remap.
		if kept := c.exec.Evict(c.gen, evict); len(kept) > 0 {
			evict = NewWorkingRange(evict).minus(NewWorkingRange(kept))
			next = NewWorkingRange(append(next.Indices(), kept...))
		}
		delta.Evict = evict
	}
	c.current = next
	if next.Len() > 0 {
		delta.Preload = c.exec.Preload(ctx, c.gen, next.Indices())
	}

	if !delta.Empty() {
		c.logger.Debug("Working range updated",
			zap.Float64("start", c.window.Start),
			zap.Float64("end", c.window.End),
			zap.Int("size", next.Len()),
			zap.Int("preload", len(delta.Preload)),
			zap.Int("evict", len(delta.Evict)))
	}
	return delta
}

func remapRange(r WorkingRange, m Mapping) WorkingRange {
	if r.Len() == 0 {
		return r
	}
	out := make([]index.Index, 0, r.Len())
	for _, idx := range r.indices {
		if target, ok := m.Target(idx); ok {
			out = append(out, target)
		}
	}
	return NewWorkingRange(out)
}
