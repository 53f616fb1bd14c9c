package datasource

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"nodegrid/core/index"
	"nodegrid/core/node"

	"go.uber.org/zap"
)

// Proxy grants exclusive, scoped read access to a DataSource.
type Proxy struct {
	ref    *Ref[DataSource]
	sem    chan struct{}
	logger *zap.Logger
}

// handleKey scopes the reentrancy marker to a single proxy.
type handleKey struct {
	p *Proxy
}

// NewProxy creates a proxy over ref. A nil logger disables logging.
func NewProxy(ref *Ref[DataSource], logger *zap.Logger) *Proxy {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Proxy{
		ref:    ref,
		sem:    make(chan struct{}, 1),
		logger: logger,
	}
}

// Ref returns the underlying collaborator reference.
func (p *Proxy) Ref() *Ref[DataSource] {
	return p.ref
}

// Acquire blocks until the lock is free (or ctx is done), calls LockDataSource and
// returns a handle together with a context that marks the lock as held.
func (p *Proxy) Acquire(ctx context.Context) (context.Context, *Handle, error) {
	if h, ok := ctx.Value(handleKey{p}).(*Handle); ok && !h.released.Load() {
		return ctx, nil, &ReentrantLockError{Operation: h.op}
	}

	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx, nil, ctx.Err()
	}

	ds, ok := p.ref.Get()
	if !ok {
		<-p.sem
		p.logger.Debug("Data source detached, skipping read")
		return ctx, nil, ErrDetached
	}
	ds.LockDataSource()

	h := &Handle{proxy: p, ds: ds, op: operationName(ctx)}
	return context.WithValue(ctx, handleKey{p}, h), h, nil
}

// Do acquires the lock, runs fn and releases on every exit path.
func (p *Proxy) Do(ctx context.Context, fn func(ctx context.Context, h *Handle) error) error {
	ctx, h, err := p.Acquire(ctx)
	if err != nil {
		return err
	}
	defer h.Release()
	return fn(ctx, h)
}

// Held reports whether ctx carries an unreleased handle of this proxy.
func (p *Proxy) Held(ctx context.Context) bool {
	h, ok := ctx.Value(handleKey{p}).(*Handle)
	return ok && !h.released.Load()
}

// Handle is a scoped grant of read access.
type Handle struct {
	proxy    *Proxy
	ds       DataSource
	op       string
	released atomic.Bool
	once     sync.Once
}

// Release unlocks the data source and admits the next waiter. It is idempotent.
func (h *Handle) Release() {
	h.once.Do(func() {
		h.released.Store(true)
		h.ds.UnlockDataSource()
		<-h.proxy.sem
	})
}

// NumberOfSections reads the section count.
func (h *Handle) NumberOfSections() (int, error) {
	if h.released.Load() {
		return 0, ErrReleased
	}
	return h.ds.NumberOfSections(), nil
}

// NumberOfItems reads the item count of section.
func (h *Handle) NumberOfItems(section int) (int, error) {
	if h.released.Load() {
		return 0, ErrReleased
	}
	return h.ds.NumberOfItems(section), nil
}

// Shape reads every section's item count.
func (h *Handle) Shape() (index.Shape, error) {
	sections, err := h.NumberOfSections()
	if err != nil {
		return nil, err
	}
	shape := make(index.Shape, sections)
	for s := range shape {
		n, err := h.NumberOfItems(s)
		if err != nil {
			return nil, err
		}
		if n < 0 {
			return nil, fmt.Errorf("datasource: section %d reports negative item count %d", s, n)
		}
		shape[s] = n
	}
	return shape, nil
}

// NodeForItem asks the data source for the node at idx.
func (h *Handle) NodeForItem(idx index.Index) (node.Node, error) {
	if h.released.Load() {
		return nil, ErrReleased
	}
	n := h.ds.NodeForItem(idx)
	if n == nil {
		return nil, fmt.Errorf("node %s: %w", idx, ErrNoNode)
	}
	return n, nil
}

type operationKey struct{}

// WithOperation labels ctx so reentrancy errors name the offending operation.
func WithOperation(ctx context.Context, name string) context.Context {
	return context.WithValue(ctx, operationKey{}, name)
}

func operationName(ctx context.Context) string {
	if s, ok := ctx.Value(operationKey{}).(string); ok {
		return s
	}
	return ""
}
