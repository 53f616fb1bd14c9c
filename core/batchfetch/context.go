package batchfetch

import (
	"sync"

	"go.uber.org/zap"
)

// DefaultLeadingScreens is the trigger distance used when none is configured.
const DefaultLeadingScreens = 1

// State is the fetch state.
type State int32

const (
	Idle State = iota
	Fetching
)

func (s State) String() string {
	if s == Fetching {
		return "fetching"
	}
	return "idle"
}

// Gate is implemented by delegates that want to veto a fetch. Without it the
// fetch is allowed.
type Gate interface {
	ShouldBatchFetch() bool
}

// Fetcher is implemented by delegates that load more content.
type Fetcher interface {
	BeginBatchFetching(bc *Context)
}

// Position describes the scroll state at a trigger check.
type Position struct {
	Offset  float64
	Extent  float64
	Content float64
	Forward bool
}

// Context is the batch-fetch state machine of one view.
type Context struct {
	mu        sync.Mutex
	state     State
	leading   float64
	fetches   int
	lastOK    bool
	completed int
	logger    *zap.Logger
}

// New creates an Idle context.
func New(leadingScreens float64, logger *zap.Logger) *Context {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Context{leading: leadingScreens, logger: logger, lastOK: true}
}

// State returns the current state.
func (c *Context) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// IsFetching reports whether a fetch is outstanding.
func (c *Context) IsFetching() bool {
	return c.State() == Fetching
}

// LeadingScreens returns the trigger distance in screenfuls.
func (c *Context) LeadingScreens() float64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.leading
}

// SetLeadingScreens changes the trigger distance. Zero or less disables fetching.
func (c *Context) SetLeadingScreens(n float64) {
	c.mu.Lock()
	c.leading = n
	c.mu.Unlock()
}

// Stats returns how many fetches began and completed, and whether the last
// completion succeeded.
func (c *Context) Stats() (began, completed int, lastSucceeded bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fetches, c.completed, c.lastOK
}

// Consider checks pos against the threshold and, when it is crossed while Idle and
// gate allows it, moves to Fetching and calls fetcher. A nil fetcher disables
// fetching; a nil gate allows it. It reports whether a fetch began.
func (c *Context) Consider(pos Position, gate Gate, fetcher Fetcher) bool {
	if fetcher == nil {
		return false
	}

	c.mu.Lock()
	if c.state == Fetching || !ShouldFetch(pos, c.leading) {
		c.mu.Unlock()
		return false
	}
	c.mu.Unlock()

	// The gate is delegate code; it runs without the lock.
	if gate != nil && !gate.ShouldBatchFetch() {
		return false
	}

	c.mu.Lock()
	if c.state == Fetching {
		c.mu.Unlock()
		return false
	}
	c.state = Fetching
	c.fetches++
	c.mu.Unlock()

	c.logger.Debug("Beginning batch fetch",
		zap.Float64("offset", pos.Offset),
		zap.Float64("content", pos.Content))
	fetcher.BeginBatchFetching(c)
	return true
}

// Complete ends the outstanding fetch. It reports false when no fetch was
// outstanding. Only a later trigger can begin the next fetch.
func (c *Context) Complete(success bool) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.state != Fetching {
		return false
	}
	c.state = Idle
	c.completed++
	c.lastOK = success
	c.logger.Debug("Batch fetch completed", zap.Bool("success", success))
	return true
}

// ShouldFetch reports whether pos is within leading screenfuls of the end of the
// content. Content smaller than the viewport always qualifies when at rest at the
// top. Only forward scrolling triggers.
func ShouldFetch(pos Position, leading float64) bool {
	if leading <= 0 || pos.Extent <= 0 || !pos.Forward {
		return false
	}
	if pos.Offset <= 0 && pos.Content < pos.Extent {
		return true
	}
	remaining := pos.Content - pos.Extent - pos.Offset
	return remaining <= pos.Extent*leading
}
