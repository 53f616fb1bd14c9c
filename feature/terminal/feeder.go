package terminal

import (
	"context"
	"sync"

	"nodegrid/core/batchfetch"
	"nodegrid/core/collection"
	"nodegrid/feature/memsource"

	"go.uber.org/zap"
)

// Feeder answers batch fetches by appending a section of generated rows. It is
// attached to the view after the view is created.
type Feeder struct {
	source *memsource.Source
	rows   int
	limit  int
	logger *zap.Logger

	mu     sync.Mutex
	ctx    context.Context
	target collection.Committer
	wg     sync.WaitGroup
}

// NewFeeder creates a feeder appending rows items per fetch until source holds
// limit sections. A zero limit never stops.
func NewFeeder(source *memsource.Source, rows, limit int, logger *zap.Logger) *Feeder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Feeder{source: source, rows: rows, limit: limit, logger: logger}
}

// Attach sets the view the appended sections are reported to.
func (f *Feeder) Attach(ctx context.Context, c collection.Committer) {
	f.mu.Lock()
	f.ctx, f.target = ctx, c
	f.mu.Unlock()
}

// Wait blocks until every started fetch has completed.
func (f *Feeder) Wait() {
	f.wg.Wait()
}

func (f *Feeder) ShouldBatchFetch() bool {
	f.mu.Lock()
	attached := f.target != nil
	f.mu.Unlock()
	return attached && (f.limit == 0 || len(f.source.Shape()) < f.limit)
}

// BeginBatchFetching appends off the calling goroutine, which is the view's apply
// goroutine and must not wait on the view.
func (f *Feeder) BeginBatchFetching(bc *batchfetch.Context) {
	f.mu.Lock()
	ctx, c := f.ctx, f.target
	f.mu.Unlock()
	if c == nil {
		bc.Complete(false)
		return
	}

	f.wg.Add(1)
	go func() {
		defer f.wg.Done()
		err := f.source.Mutate(ctx, c, func(e *memsource.Editor) error {
			section := len(e.Shape())
			return e.InsertSection(section, memsource.Rows(section, 0, f.rows)...)
		})
		if err != nil {
			f.logger.Warn("Batch fetch failed", zap.Error(err))
		}
		bc.Complete(err == nil)
	}()
}
