package filesource

import (
	"sync"
	"time"
)

// DefaultDebounce is the default quiet period before a reload.
const DefaultDebounce = 200 * time.Millisecond

// Debouncer runs only the last of a burst of triggers, once the burst has been
// quiet for the configured duration.
type Debouncer struct {
	duration time.Duration

	mu    sync.Mutex
	timer *time.Timer
	seq   uint64
}

// NewDebouncer creates a debouncer. A zero duration uses DefaultDebounce.
func NewDebouncer(d time.Duration) *Debouncer {
	if d <= 0 {
		d = DefaultDebounce
	}
	return &Debouncer{duration: d}
}

// Trigger schedules fn, replacing any callback still waiting.
func (d *Debouncer) Trigger(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	seq := d.seq
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, func() {
		d.mu.Lock()
		// A timer that fired while being replaced must not run.
		current := seq == d.seq
		if current {
			d.timer = nil
		}
		d.mu.Unlock()
		if current {
			fn()
		}
	})
}

// Cancel drops the waiting callback, if any.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.seq++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}
