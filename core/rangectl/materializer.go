package rangectl

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"nodegrid/core/datasource"
	"nodegrid/core/index"
	"nodegrid/core/node"
	"nodegrid/core/nodestore"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// DefaultMaxConcurrent bounds parallel materialization when no limit is configured.
const DefaultMaxConcurrent = 4

var (
	errUnstable = errors.New("index space is changing")
	errGone     = errors.New("slot no longer pending")
)

// MaterializerOptions configures a Materializer.
type MaterializerOptions struct {
	// Async runs each task on its own goroutine. Otherwise tasks run inline.
	Async bool
	// MaxConcurrent bounds how many async tasks run at once.
	MaxConcurrent int64
	// Stable reports whether the store and the data source agree on the index
	// space. While it returns false, tasks are abandoned and retried on the next
	// recomputation.
	Stable func() bool
	// OnReady is called after a node has been published to the store.
	OnReady func(token string, idx index.Index)
	Logger  *zap.Logger
}

// Materializer is the Executor that fetches, measures and publishes nodes.
type Materializer struct {
	proxy   *datasource.Proxy
	store   *nodestore.Store
	async   bool
	sem     *semaphore.Weighted
	stable  func() bool
	onReady func(string, index.Index)
	logger  *zap.Logger

	root   context.Context
	cancel context.CancelFunc
	closed atomic.Bool
	wg     sync.WaitGroup
}

// NewMaterializer creates a materializer over proxy and store.
func NewMaterializer(proxy *datasource.Proxy, store *nodestore.Store, opts MaterializerOptions) *Materializer {
	if opts.MaxConcurrent <= 0 {
		opts.MaxConcurrent = DefaultMaxConcurrent
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	root, cancel := context.WithCancel(context.Background())
	return &Materializer{
		proxy:   proxy,
		store:   store,
		async:   opts.Async,
		sem:     semaphore.NewWeighted(opts.MaxConcurrent),
		stable:  opts.Stable,
		onReady: opts.OnReady,
		logger:  opts.Logger,
		root:    root,
		cancel:  cancel,
	}
}

// Preload starts a task for every index of generation gen whose slot is Empty or
// Evicted. It stops at the first index the store reports stale.
func (m *Materializer) Preload(ctx context.Context, gen uint64, indices []index.Index) []index.Index {
	if m.closed.Load() {
		return nil
	}
	snap := m.store.Snapshot()
	if snap.Generation() != gen {
		return nil
	}
	var started []index.Index
	for _, idx := range indices {
		slot, err := snap.Get(idx)
		if err != nil || slot.State == nodestore.Pending || slot.State == nodestore.Ready {
			continue
		}

		parent := m.root
		if !m.async {
			parent = ctx
		}
		taskCtx, cancel := context.WithCancel(parent)
		token, prev, err := m.store.BeginIn(gen, idx, cancel)
		if errors.Is(err, nodestore.ErrStale) {
			cancel()
			break
		}
		if err != nil {
			cancel()
			continue
		}
		started = append(started, idx)

		if !m.async {
			m.run(taskCtx, cancel, token, prev)
			continue
		}
		m.wg.Add(1)
		go func() {
			defer m.wg.Done()
			m.run(taskCtx, cancel, token, prev)
		}()
	}
	return started
}

// Evict releases indices of generation gen in the store, cancelling their tasks.
// It returns the indices left alone because the generation had ended.
func (m *Materializer) Evict(gen uint64, indices []index.Index) []index.Index {
	for i, idx := range indices {
		err := m.store.EvictIn(gen, idx)
		if errors.Is(err, nodestore.ErrStale) {
			return indices[i:]
		}
		if err != nil {
			m.logger.Debug("Skipped eviction", zap.Stringer("index", idx), zap.Error(err))
		}
	}
	return nil
}

// Wait blocks until every started task has finished.
func (m *Materializer) Wait() {
	m.wg.Wait()
}

// Close cancels in-flight tasks and waits for them. Later preloads are ignored.
func (m *Materializer) Close() {
	if m.closed.Swap(true) {
		return
	}
	m.cancel()
	m.wg.Wait()
}

func (m *Materializer) run(ctx context.Context, cancel context.CancelFunc, token string, prev nodestore.Slot) {
	defer cancel()

	if m.async {
		if err := m.sem.Acquire(ctx, 1); err != nil {
			return
		}
		defer m.sem.Release(1)
	}

	n := prev.Node
	fresh := n == nil
	if fresh {
		var err error
		n, err = m.fetch(ctx, token)
		switch {
		case errors.Is(err, errUnstable):
			m.store.Abandon(token)
			return
		case errors.Is(err, errGone):
			return
		case ctx.Err() != nil:
			if n != nil {
				purge(n)
			}
			return
		case err != nil:
			m.fail(token, err)
			return
		}
	}

	size, err := n.Measure(ctx)
	if err == nil {
		if l, ok := n.(node.Loader); ok {
			err = l.Load(ctx)
		}
	}
	if ctx.Err() != nil {
		purge(n)
		return
	}
	if err != nil {
		m.fail(token, err)
		return
	}

	idx, ok := m.store.Complete(token, n, size)
	if !ok {
		purge(n)
		return
	}
	if m.onReady != nil {
		m.onReady(token, idx)
	}
}

// fetch reads the node for the slot owned by token under the proxy lock. The index
// is resolved inside the lock so a concurrent remap cannot shift it.
func (m *Materializer) fetch(ctx context.Context, token string) (node.Node, error) {
	var n node.Node
	err := m.proxy.Do(datasource.WithOperation(ctx, "materialize"), func(ctx context.Context, h *datasource.Handle) error {
		if m.stable != nil && !m.stable() {
			return errUnstable
		}
		idx, ok := m.store.Locate(token)
		if !ok {
			return errGone
		}
		slot, err := m.store.Get(idx)
		if err != nil || slot.State != nodestore.Pending || slot.Token != token {
			return errGone
		}
		n, err = h.NodeForItem(idx)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", idx, err)
		}
		return nil
	})
	return n, err
}

func (m *Materializer) fail(token string, err error) {
	idx, ok := m.store.Fail(token)
	if !ok {
		return
	}
	if errors.Is(err, datasource.ErrDetached) {
		m.logger.Debug("Data source detached, leaving slot pending", zap.Stringer("index", idx))
		return
	}
	m.logger.Warn("Failed to materialize node", zap.Stringer("index", idx), zap.Error(err))
}

func purge(n node.Node) {
	if p, ok := n.(node.Purger); ok {
		p.Purge()
	}
}
