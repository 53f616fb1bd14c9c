package update

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"nodegrid/core/datasource"
	"nodegrid/core/index"
	"nodegrid/core/nodestore"

	"go.uber.org/zap"
)

// Batch is the unit handed to the Listener: every entry drained in one pass.
type Batch struct {
	// Seq is the sequence number of the last entry in the batch.
	Seq uint64
	// Commands lists the drained commands in enqueue order.
	Commands []Command
	// Reload is set when the batch reset the store instead of remapping it.
	Reload bool
	// Mapping translates indices across the batch. It is nil for reloads.
	Mapping *Mapping
	// Shape is the data source's shape after the batch.
	Shape index.Shape
	// Generation is the store generation the batch produced.
	Generation uint64
}

// Listener observes applied batches.
type Listener interface {
	// Applied is called with the data source lock held, right after the store
	// has been updated. It must not block on the data source.
	Applied(ctx context.Context, b *Batch)
	// Settled is called once the lock has been released. Batches settle one at a
	// time, in order, and a batch counts as applied for Flush only once it has
	// settled.
	Settled(ctx context.Context, b *Batch)
}

// Options configures a Coordinator.
type Options struct {
	// Async drains on a dedicated goroutine. Otherwise each enqueue drains
	// inline on the caller's goroutine.
	Async bool
	// OnFatal is called once when the coordinator halts.
	OnFatal func(err error)
	Logger  *zap.Logger
}

type entry struct {
	seq    uint64
	cmds   []Command
	reload bool
}

// Coordinator is the structural-update pipeline of one view.
type Coordinator struct {
	proxy    *datasource.Proxy
	store    *nodestore.Store
	listener Listener
	async    bool
	onFatal  func(error)
	logger   *zap.Logger

	// drainMu admits one batch at a time, from lock through Settled.
	drainMu sync.Mutex

	mu sync.Mutex
	// queue holds entries not yet taken by a drain.
	queue []entry
	// proj is the store's shape with every queued entry applied, or nil while a
	// reload is pending.
	proj     *model
	enqueued uint64
	applied  uint64
	applying bool
	fatal    error
	closed   bool
	progress chan struct{}

	wake chan struct{}
	done chan struct{}
	exit chan struct{}
	ctx  context.Context
	stop context.CancelFunc
}

// NewCoordinator creates a coordinator over proxy and store. In async mode a
// worker goroutine is started; Close stops it.
func NewCoordinator(proxy *datasource.Proxy, store *nodestore.Store, listener Listener, opts Options) *Coordinator {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	ctx, stop := context.WithCancel(context.Background())
	c := &Coordinator{
		proxy:    proxy,
		store:    store,
		listener: listener,
		async:    opts.Async,
		onFatal:  opts.OnFatal,
		logger:   opts.Logger,
		proj:     newModel(store.Shape()),
		progress: make(chan struct{}),
		wake:     make(chan struct{}, 1),
		done:     make(chan struct{}),
		exit:     make(chan struct{}),
		ctx:      ctx,
		stop:     stop,
	}
	if c.async {
		go c.worker()
	} else {
		close(c.exit)
	}
	return c
}

// Enqueue validates cmd against the projected shape and queues it. In sync mode it
// returns after the command has been applied.
func (c *Coordinator) Enqueue(ctx context.Context, cmd Command) error {
	if err := c.Submit(cmd); err != nil {
		return err
	}
	return c.Drain(ctx)
}

// Group queues cmds as one entry with batch semantics: deletes and reloads by
// pre-group index, inserts by post-group index.
func (c *Coordinator) Group(ctx context.Context, cmds ...Command) error {
	if err := c.SubmitGroup(cmds...); err != nil {
		return err
	}
	return c.Drain(ctx)
}

// ReloadData discards every queued command and queues a full reload.
func (c *Coordinator) ReloadData(ctx context.Context) error {
	return c.Enqueue(ctx, NewReloadAll())
}

// Submit queues cmd without draining. It never touches the data source, so it may
// be called while the caller holds the data source's own lock: mutating the data
// source and submitting the matching command in one critical section keeps a
// concurrent drain from observing one without the other. Call Drain afterwards.
func (c *Coordinator) Submit(cmd Command) error {
	if cmd.Kind == ReloadAll {
		return c.push(entry{cmds: []Command{cmd}, reload: true})
	}
	return c.push(entry{cmds: []Command{cmd}})
}

// SubmitGroup is the Submit form of Group.
func (c *Coordinator) SubmitGroup(cmds ...Command) error {
	if len(cmds) == 0 {
		return nil
	}
	return c.push(entry{cmds: append([]Command(nil), cmds...)})
}

// Drain applies queued entries. In async mode the worker does that and Drain
// returns immediately; in sync mode it drains on the caller's goroutine.
func (c *Coordinator) Drain(ctx context.Context) error {
	if c.async {
		return nil
	}
	return c.drain(ctx)
}

func (c *Coordinator) push(e entry) error {
	c.mu.Lock()
	if err := c.usable(); err != nil {
		c.mu.Unlock()
		return err
	}
	if e.reload {
		if n := len(c.queue); n > 0 {
			c.logger.Debug("Superseding queued commands", zap.Int("count", n))
		}
		c.queue = c.queue[:0]
		c.proj = nil
	} else if c.proj != nil {
		next, err := c.proj.apply(e.cmds)
		if err != nil {
			c.mu.Unlock()
			return fmt.Errorf("enqueue %v: %w", e.cmds, err)
		}
		c.proj = next
	}
	c.enqueued++
	e.seq = c.enqueued
	c.queue = append(c.queue, e)
	c.mu.Unlock()

	if c.async {
		select {
		case c.wake <- struct{}{}:
		default:
		}
	}
	return nil
}

// Flush waits until every entry queued before the call has been applied.
func (c *Coordinator) Flush(ctx context.Context) error {
	c.mu.Lock()
	target := c.enqueued
	c.mu.Unlock()

	for {
		c.mu.Lock()
		if c.fatal != nil {
			err := c.fatal
			c.mu.Unlock()
			return halted(err)
		}
		if c.applied >= target {
			c.mu.Unlock()
			return nil
		}
		if c.closed {
			c.mu.Unlock()
			return ErrClosed
		}
		progress := c.progress
		c.mu.Unlock()

		select {
		case <-progress:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

// Idle reports whether nothing is queued or being applied, i.e. the store and the
// data source agree on the index space.
func (c *Coordinator) Idle() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue) == 0 && !c.applying
}

// Pending returns the number of queued entries.
func (c *Coordinator) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Err returns the fatal error that halted the coordinator, if any.
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fatal
}

// Close stops the worker. Queued entries are discarded.
func (c *Coordinator) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	if n := len(c.queue); n > 0 {
		c.logger.Debug("Discarding queued commands on close", zap.Int("count", n))
	}
	c.queue = nil
	c.advance(c.applied)
	c.mu.Unlock()

	c.stop()
	close(c.done)
	<-c.exit
	return nil
}

func (c *Coordinator) usable() error {
	if c.fatal != nil {
		return halted(c.fatal)
	}
	if c.closed {
		return ErrClosed
	}
	return nil
}

func (c *Coordinator) worker() {
	defer close(c.exit)
	for {
		select {
		case <-c.done:
			return
		case <-c.wake:
		}
		if err := c.drain(c.ctx); err != nil && !errors.Is(err, context.Canceled) {
			c.logger.Debug("Drain stopped", zap.Error(err))
		}
	}
}

// drain applies everything queued, in batches, until the queue is empty.
func (c *Coordinator) drain(ctx context.Context) error {
	for {
		more, err := c.drainOnce(ctx)
		if err != nil || !more {
			return err
		}
	}
}

// drainOnce applies one batch. It reports whether entries were found.
func (c *Coordinator) drainOnce(ctx context.Context) (bool, error) {
	c.drainMu.Lock()
	defer c.drainMu.Unlock()

	ctx, h, err := c.proxy.Acquire(datasource.WithOperation(ctx, "apply"))
	if err != nil {
		var reentrant *datasource.ReentrantLockError
		switch {
		case errors.As(err, &reentrant):
			c.halt(err)
			return false, halted(err)
		case errors.Is(err, datasource.ErrDetached):
			c.discard("data source detached")
			return false, nil
		default:
			return false, err
		}
	}
	defer h.Release()

	// Take the queue only once the lock is held, so every taken entry describes
	// a change the data source already reflects.
	c.mu.Lock()
	if c.usable() != nil || len(c.queue) == 0 {
		c.mu.Unlock()
		return false, nil
	}
	entries := c.queue
	c.queue = nil
	c.applying = true
	c.mu.Unlock()

	start := time.Now()
	batch, err := c.plan(h, entries)
	if err != nil {
		c.halt(err)
		return false, halted(err)
	}

	if batch.Reload {
		c.store.Reset(batch.Shape)
	} else {
		c.store.Remap(batch.Mapping)
	}
	batch.Generation = c.store.Generation()
	if c.listener != nil {
		c.listener.Applied(ctx, batch)
	}
	h.Release()

	c.mu.Lock()
	c.applying = false
	c.rebuildProjection(batch.Shape)
	c.mu.Unlock()

	c.logger.Debug("Applied update batch",
		zap.Int("entries", len(entries)),
		zap.Int("commands", len(batch.Commands)),
		zap.Bool("reload", batch.Reload),
		zap.Duration("duration", time.Since(start)))

	if c.listener != nil {
		c.listener.Settled(ctx, batch)
	}

	c.mu.Lock()
	c.advance(batch.Seq)
	c.mu.Unlock()
	return true, nil
}

// plan reads the data source's shape and simulates entries against the store's.
// Caller holds the data source lock.
func (c *Coordinator) plan(h *datasource.Handle, entries []entry) (*Batch, error) {
	actual, err := h.Shape()
	if err != nil {
		return nil, fmt.Errorf("read data source shape: %w", err)
	}
	batch := &Batch{Seq: entries[len(entries)-1].seq, Shape: actual}
	for _, e := range entries {
		batch.Commands = append(batch.Commands, e.cmds...)
	}

	// A reload is always first; the shape read above already covers every entry
	// queued after it.
	if entries[0].reload {
		batch.Reload = true
		return batch, nil
	}

	old := c.store.Shape()
	m := newModel(old)
	for _, e := range entries {
		next, err := m.apply(e.cmds)
		if err != nil {
			return nil, &InconsistentDataSourceError{
				Expected: m.shape(),
				Actual:   actual,
				Reason:   fmt.Sprintf("cannot apply %v", e.cmds),
				Cause:    err,
			}
		}
		m = next
	}
	mapping, err := m.resolve(old, actual)
	if err != nil {
		return nil, err
	}
	batch.Mapping = mapping
	return batch, nil
}

// rebuildProjection recomputes the projection from the new shape and whatever
// was queued during the drain. Caller holds mu.
func (c *Coordinator) rebuildProjection(shape index.Shape) {
	proj := newModel(shape)
	for _, e := range c.queue {
		if e.reload {
			c.proj = nil
			return
		}
		next, err := proj.apply(e.cmds)
		if err != nil {
			// The entry fails again when it is drained; stop validating until then.
			c.proj = nil
			return
		}
		proj = next
	}
	c.proj = proj
}

// advance records seq as applied and wakes Flush waiters. Caller holds mu.
func (c *Coordinator) advance(seq uint64) {
	if seq > c.applied {
		c.applied = seq
	}
	close(c.progress)
	c.progress = make(chan struct{})
}

func (c *Coordinator) discard(reason string) {
	c.mu.Lock()
	n := len(c.queue)
	c.queue = nil
	c.advance(c.enqueued)
	c.mu.Unlock()
	if n > 0 {
		c.logger.Debug("Discarding queued commands", zap.String("reason", reason), zap.Int("count", n))
	}
}

func (c *Coordinator) halt(err error) {
	c.mu.Lock()
	if c.fatal != nil {
		c.mu.Unlock()
		return
	}
	c.fatal = err
	c.applying = false
	c.queue = nil
	c.advance(c.applied)
	c.mu.Unlock()

	c.logger.Error("Update pipeline halted", zap.Error(err))
	if c.onFatal != nil {
		c.onFatal(err)
	}
}
