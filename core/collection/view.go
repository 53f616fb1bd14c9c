package collection

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"nodegrid/core/applyq"
	"nodegrid/core/batchfetch"
	"nodegrid/core/datasource"
	"nodegrid/core/index"
	"nodegrid/core/layout"
	"nodegrid/core/node"
	"nodegrid/core/nodestore"
	"nodegrid/core/rangectl"
	"nodegrid/core/update"

	"go.uber.org/zap"
)

// Option customizes a View.
type Option func(*options)

type options struct {
	logger   *zap.Logger
	delegate any
	onFatal  func(error)
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *zap.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithDelegate sets the delegate. See DisplayObserver, batchfetch.Gate and
// batchfetch.Fetcher for the capabilities it may implement.
func WithDelegate(d any) Option {
	return func(o *options) { o.delegate = d }
}

// WithOnFatal registers a hook called once if the update pipeline halts.
func WithOnFatal(fn func(error)) Option {
	return func(o *options) { o.onFatal = fn }
}

// VisibleNode is a ready node inside the viewport.
type VisibleNode struct {
	Index index.Index
	Node  node.Node
	Size  node.Size
}

// View reconciles one host surface with its data source.
type View struct {
	cfg     Config
	logger  *zap.Logger
	source  *datasource.Ref[datasource.DataSource]
	deleg   *datasource.Ref[any]
	surface Surface

	proxy  *datasource.Proxy
	store  *nodestore.Store
	layout *layout.Linear
	ranges *rangectl.Controller
	mat    *rangectl.Materializer
	coord  *update.Coordinator
	batch  *batchfetch.Context
	apply  *applyq.Queue

	// mu guards the viewport bookkeeping below.
	mu        sync.Mutex
	vp        rangectl.Viewport
	dir       rangectl.Direction
	displayed map[index.Index]struct{}

	closeOnce sync.Once
}

// New creates a view and loads the data source's initial shape. The surface
// receives ReloadData with that shape; no node is fetched until SetViewport.
func New(ctx context.Context, source datasource.DataSource, surface Surface, cfg Config, opts ...Option) (*View, error) {
	if source == nil {
		return nil, errors.New("collection: data source is required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("collection: invalid config: %w", err)
	}
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if surface == nil {
		surface = NopSurface{}
	}

	v := &View{
		cfg:       cfg,
		logger:    o.logger,
		source:    datasource.NewRef(source),
		deleg:     datasource.NewRef(o.delegate),
		surface:   surface,
		displayed: make(map[index.Index]struct{}),
	}
	if o.delegate == nil {
		v.deleg.Detach()
	}
	v.proxy = datasource.NewProxy(v.source, v.logger.Named("datasource"))

	var shape index.Shape
	err := v.proxy.Do(datasource.WithOperation(ctx, "load"), func(_ context.Context, h *datasource.Handle) error {
		var err error
		shape, err = h.Shape()
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("collection: initial load: %w", err)
	}

	v.store, err = nodestore.New(shape, nodestore.Options{
		RetainEvicted: cfg.RetainEvicted,
		Logger:        v.logger.Named("store"),
	})
	if err != nil {
		return nil, fmt.Errorf("collection: %w", err)
	}
	v.layout = layout.NewLinear(v.store, cfg.EstimatedItemExtent)
	v.apply = applyq.New(v.logger.Named("apply"))
	v.mat = rangectl.NewMaterializer(v.proxy, v.store, rangectl.MaterializerOptions{
		Async:         cfg.AsyncDataFetching,
		MaxConcurrent: int64(cfg.MaxConcurrentFetches),
		Stable:        v.stable,
		OnReady:       v.nodeReady,
		Logger:        v.logger.Named("materializer"),
	})
	v.ranges = rangectl.NewController(cfg.Range, v.layout, v.mat, v.logger.Named("range"))
	v.batch = batchfetch.New(cfg.LeadingScreensForBatching, v.logger.Named("batch"))
	v.coord = update.NewCoordinator(v.proxy, v.store, v, update.Options{
		Async:   cfg.AsyncDataFetching,
		OnFatal: o.onFatal,
		Logger:  v.logger.Named("update"),
	})

	_ = v.apply.Post(func() { v.surface.ReloadData(shape.Clone()) })
	v.logger.Debug("View created",
		zap.Int("sections", shape.Sections()),
		zap.Int("items", shape.Total()),
		zap.Bool("async", cfg.AsyncDataFetching))
	return v, nil
}

// Config returns the configuration the view was created with, with the current
// range tuning and batching distance.
func (v *View) Config() Config {
	cfg := v.cfg
	cfg.Range = v.ranges.Tuning()
	cfg.LeadingScreensForBatching = v.batch.LeadingScreens()
	return cfg
}

// ReloadData discards every queued change and every node, then reloads.
func (v *View) ReloadData(ctx context.Context) error {
	return v.coord.ReloadData(ctx)
}

// InsertSections inserts sections at the given post-change positions.
func (v *View) InsertSections(ctx context.Context, sections index.SectionSet) error {
	return v.coord.Enqueue(ctx, update.NewInsertSections(sections))
}

// DeleteSections deletes sections at the given pre-change positions.
func (v *View) DeleteSections(ctx context.Context, sections index.SectionSet) error {
	return v.coord.Enqueue(ctx, update.NewDeleteSections(sections))
}

// ReloadSections replaces the content of sections.
func (v *View) ReloadSections(ctx context.Context, sections index.SectionSet) error {
	return v.coord.Enqueue(ctx, update.NewReloadSections(sections))
}

// MoveSection moves a section.
func (v *View) MoveSection(ctx context.Context, from, to int) error {
	return v.coord.Enqueue(ctx, update.NewMoveSection(from, to))
}

// InsertItems inserts items at the given post-change positions.
func (v *View) InsertItems(ctx context.Context, items ...index.Index) error {
	return v.coord.Enqueue(ctx, update.NewInsertItems(items...))
}

// DeleteItems deletes items at the given pre-change positions.
func (v *View) DeleteItems(ctx context.Context, items ...index.Index) error {
	return v.coord.Enqueue(ctx, update.NewDeleteItems(items...))
}

// ReloadItems replaces items.
func (v *View) ReloadItems(ctx context.Context, items ...index.Index) error {
	return v.coord.Enqueue(ctx, update.NewReloadItems(items...))
}

// MoveItem moves an item.
func (v *View) MoveItem(ctx context.Context, from, to index.Index) error {
	return v.coord.Enqueue(ctx, update.NewMoveItem(from, to))
}

// PerformBatchUpdates applies cmds as one group: deletes and reloads address
// positions before the group, inserts address positions after it.
func (v *View) PerformBatchUpdates(ctx context.Context, cmds ...update.Command) error {
	return v.coord.Group(ctx, cmds...)
}

// Submit queues cmd without applying it; see update.Coordinator.Submit. Follow
// with Drain.
func (v *View) Submit(cmd update.Command) error {
	return v.coord.Submit(cmd)
}

// SubmitBatch is the Submit form of PerformBatchUpdates.
func (v *View) SubmitBatch(cmds ...update.Command) error {
	return v.coord.SubmitGroup(cmds...)
}

// Drain applies submitted commands. It only does work with synchronous data
// fetching; otherwise the background worker applies them.
func (v *View) Drain(ctx context.Context) error {
	return v.coord.Drain(ctx)
}

// Flush waits until every change enqueued before the call has been applied and
// its surface calls have run.
func (v *View) Flush(ctx context.Context) error {
	if err := v.coord.Flush(ctx); err != nil {
		return err
	}
	if err := v.apply.Sync(ctx); err != nil && !errors.Is(err, applyq.ErrClosed) {
		return err
	}
	return nil
}

// Err returns the fatal error that halted the update pipeline, if any.
func (v *View) Err() error {
	return v.coord.Err()
}

// NodeForItem returns the ready node at idx without blocking.
func (v *View) NodeForItem(idx index.Index) (node.Node, error) {
	slot, err := v.store.Get(idx)
	if err != nil {
		return nil, err
	}
	if !slot.Available() {
		return nil, fmt.Errorf("node %s (%s): %w", idx, slot.State, ErrNotAvailable)
	}
	return slot.Node, nil
}

// CalculatedSize returns the measured size at idx without blocking. Evicted items
// keep their size.
func (v *View) CalculatedSize(idx index.Index) (node.Size, error) {
	slot, err := v.store.Get(idx)
	if err != nil {
		return node.Size{}, err
	}
	if !slot.Measured {
		return node.Size{}, fmt.Errorf("size %s (%s): %w", idx, slot.State, ErrNotAvailable)
	}
	return slot.Size, nil
}

// Slot returns the raw slot state at idx.
func (v *View) Slot(idx index.Index) (nodestore.Slot, error) {
	return v.store.Get(idx)
}

// VisibleNodes returns the ready nodes inside the viewport, in index order.
func (v *View) VisibleNodes() []VisibleNode {
	snap := v.store.Snapshot()
	var out []VisibleNode
	for _, idx := range v.ranges.Visible().Indices() {
		slot, err := snap.Get(idx)
		if err != nil || !slot.Available() {
			continue
		}
		out = append(out, VisibleNode{Index: idx, Node: slot.Node, Size: slot.Size})
	}
	return out
}

// Shape returns the section/item counts the view currently shows.
func (v *View) Shape() index.Shape {
	return v.store.Shape()
}

// ContentExtent returns the scroll-axis extent of all items, using estimates for
// the unmeasured ones.
func (v *View) ContentExtent() float64 {
	return v.layout.Frames().ContentExtent()
}

// FrameOf returns the scroll-axis span of idx in the current layout.
func (v *View) FrameOf(idx index.Index) (layout.Span, bool) {
	return v.layout.Frames().Frame(idx)
}

// SetViewport reports a scroll or resize. The direction is derived from the
// previous offset. It recomputes the working range, reports display changes and
// checks the batch-fetch threshold.
func (v *View) SetViewport(ctx context.Context, vp rangectl.Viewport) rangectl.Delta {
	v.mu.Lock()
	dir := rangectl.DirectionOf(v.vp.Offset, vp.Offset, v.dir)
	v.vp, v.dir = vp, dir
	v.mu.Unlock()

	delta := v.ranges.Update(ctx, vp, dir)
	v.syncDisplayed()
	v.considerBatchFetch(vp, dir)
	return delta
}

// ScrollTo moves the viewport to offset, keeping its extent.
func (v *View) ScrollTo(ctx context.Context, offset float64) rangectl.Delta {
	v.mu.Lock()
	vp := rangectl.Viewport{Offset: offset, Extent: v.vp.Extent}
	v.mu.Unlock()
	return v.SetViewport(ctx, vp)
}

// Viewport returns the last viewport and scroll direction.
func (v *View) Viewport() (rangectl.Viewport, rangectl.Direction) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.vp, v.dir
}

// WorkingRange returns the indices currently kept materialized.
func (v *View) WorkingRange() rangectl.WorkingRange {
	return v.ranges.Current()
}

// RangeTuning returns the working-range buffers.
func (v *View) RangeTuning() rangectl.Tuning {
	return v.ranges.Tuning()
}

// SetRangeTuning changes the working-range buffers and recomputes the range.
func (v *View) SetRangeTuning(ctx context.Context, t rangectl.Tuning) error {
	if err := t.Validate(); err != nil {
		return err
	}
	v.ranges.SetTuning(t)
	v.ranges.Recompute(ctx)
	return nil
}

// LeadingScreensForBatching returns the batch-fetch distance.
func (v *View) LeadingScreensForBatching() float64 {
	return v.batch.LeadingScreens()
}

// SetLeadingScreensForBatching changes the batch-fetch distance.
func (v *View) SetLeadingScreensForBatching(n float64) {
	v.batch.SetLeadingScreens(n)
}

// BatchContext returns the batch-fetch state machine.
func (v *View) BatchContext() *batchfetch.Context {
	return v.batch
}

// DetachDataSource drops the data source. Later reads are skipped and queued
// changes are discarded.
func (v *View) DetachDataSource() {
	v.source.Detach()
}

// DetachDelegate drops the delegate. Later callbacks are skipped.
func (v *View) DetachDelegate() {
	v.deleg.Detach()
}

// Close stops the pipeline, cancels in-flight fetches and drains the surface
// calls already posted. It is safe to call more than once.
func (v *View) Close() error {
	v.closeOnce.Do(func() {
		_ = v.coord.Close()
		v.mat.Close()
		v.apply.Close()
		v.logger.Debug("View closed")
	})
	return nil
}

// Applied posts the batch to the surface. It runs under the data source lock.
func (v *View) Applied(_ context.Context, b *update.Batch) {
	err := v.apply.Post(func() {
		if b.Reload {
			v.surface.ReloadData(b.Shape.Clone())
			return
		}
		v.surface.ApplyBatch(b)
	})
	if err != nil {
		v.logger.Debug("Surface call dropped", zap.Error(err))
	}
}

// Settled carries the batch over to the working range once the lock is released,
// then checks the batch-fetch threshold against the new content.
func (v *View) Settled(ctx context.Context, b *update.Batch) {
	if b.Reload {
		v.ranges.Reset(b.Generation)
	} else {
		v.ranges.Remap(b.Mapping, b.Generation)
	}
	v.remapDisplayed(b)
	v.ranges.Recompute(ctx)
	v.syncDisplayed()

	vp, dir := v.Viewport()
	if vp.Extent > 0 {
		v.considerBatchFetch(vp, dir)
	}
}

func (v *View) stable() bool {
	return v.coord == nil || v.coord.Idle()
}

// nodeReady refreshes the surface if the node is visible once the apply
// goroutine gets to it. The index is resolved then, by token.
func (v *View) nodeReady(token string, _ index.Index) {
	_ = v.apply.Post(func() {
		idx, ok := v.store.Locate(token)
		if !ok || !v.ranges.Visible().Contains(idx) {
			return
		}
		slot, err := v.store.Get(idx)
		if err != nil || !slot.Available() || slot.Token != token {
			return
		}
		v.surface.RefreshItem(idx, slot.Node, slot.Size)
	})
}

// remapDisplayed carries the displayed set across a batch. Items that no longer
// exist end displaying under their old index.
func (v *View) remapDisplayed(b *update.Batch) {
	v.mu.Lock()
	var ended []index.Index
	next := make(map[index.Index]struct{}, len(v.displayed))
	for idx := range v.displayed {
		if b.Reload {
			ended = append(ended, idx)
			continue
		}
		target, ok := b.Mapping.Target(idx)
		if !ok {
			ended = append(ended, idx)
			continue
		}
		next[target] = struct{}{}
	}
	v.displayed = next
	v.mu.Unlock()

	index.Sort(ended)
	v.notifyDisplay(nil, ended)
}

// syncDisplayed diffs the visible set against what the delegate was last told.
func (v *View) syncDisplayed() {
	visible := v.ranges.Visible()

	v.mu.Lock()
	var started, ended []index.Index
	for _, idx := range visible.Indices() {
		if _, ok := v.displayed[idx]; !ok {
			started = append(started, idx)
			v.displayed[idx] = struct{}{}
		}
	}
	for idx := range v.displayed {
		if !visible.Contains(idx) {
			ended = append(ended, idx)
			delete(v.displayed, idx)
		}
	}
	v.mu.Unlock()

	index.Sort(ended)
	v.notifyDisplay(started, ended)
}

func (v *View) notifyDisplay(started, ended []index.Index) {
	if len(started) == 0 && len(ended) == 0 {
		return
	}
	_ = v.apply.Post(func() {
		d, ok := v.deleg.Get()
		if !ok {
			return
		}
		obs, ok := d.(DisplayObserver)
		if !ok {
			return
		}
		for _, idx := range ended {
			obs.DidEndDisplaying(idx)
		}
		for _, idx := range started {
			obs.WillDisplay(idx)
		}
	})
}

func (v *View) considerBatchFetch(vp rangectl.Viewport, dir rangectl.Direction) {
	d, ok := v.deleg.Get()
	if !ok {
		return
	}
	fetcher := fetcherOf(d)
	if fetcher == nil {
		return
	}
	gate, _ := d.(batchfetch.Gate)
	pos := batchfetch.Position{
		Offset:  vp.Offset,
		Extent:  vp.Extent,
		Content: v.ContentExtent(),
		Forward: dir == rangectl.Forward,
	}
	v.batch.Consider(pos, gate, postingFetcher{v: v, f: fetcher})
}

// postingFetcher moves BeginBatchFetching onto the apply goroutine.
type postingFetcher struct {
	v *View
	f batchfetch.Fetcher
}

func (p postingFetcher) BeginBatchFetching(bc *batchfetch.Context) {
	if err := p.v.apply.Post(func() {
		if !p.v.deleg.Alive() {
			bc.Complete(false)
			return
		}
		p.f.BeginBatchFetching(bc)
	}); err != nil {
		bc.Complete(false)
	}
}

// Committer is the part of View a data source uses to report its own mutations.
// Submit and SubmitBatch are called inside the data source's critical section,
// Drain after leaving it.
type Committer interface {
	Submit(cmd update.Command) error
	SubmitBatch(cmds ...update.Command) error
	Drain(ctx context.Context) error
}

var _ Committer = (*View)(nil)
