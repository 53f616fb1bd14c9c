package replay

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"nodegrid/core/collection"
	"nodegrid/core/index"
	"nodegrid/core/update"
	"nodegrid/feature/memsource"

	"go.uber.org/zap"
)

// Move is one surviving item that changed position.
type Move struct {
	From index.Index `yaml:"from" json:"from"`
	To   index.Index `yaml:"to" json:"to"`
}

// Report describes one applied batch.
type Report struct {
	Step     int           `yaml:"step" json:"step"`
	Commands []string      `yaml:"commands" json:"commands"`
	Reload   bool          `yaml:"reload,omitempty" json:"reload,omitempty"`
	Shape    index.Shape   `yaml:"shape" json:"shape"`
	Removed  []index.Index `yaml:"removed,omitempty" json:"removed,omitempty"`
	Inserted []index.Index `yaml:"inserted,omitempty" json:"inserted,omitempty"`
	Moved    []Move        `yaml:"moved,omitempty" json:"moved,omitempty"`
}

// recorder keeps the batches the view applies.
type recorder struct {
	collection.NopSurface

	mu      sync.Mutex
	batches []*update.Batch
}

func (r *recorder) ApplyBatch(b *update.Batch) {
	r.mu.Lock()
	r.batches = append(r.batches, b)
	r.mu.Unlock()
}

func (r *recorder) take() []*update.Batch {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.batches
	r.batches = nil
	return out
}

// Run plays s against a fresh view configured by cfg and returns one report per
// applied batch. A step that fails stops the run; the reports so far are
// returned with the error.
func Run(ctx context.Context, s *Script, cfg collection.Config, logger *zap.Logger) ([]Report, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	src := s.source(0)
	rec := &recorder{}
	view, err := collection.New(ctx, src, rec, cfg, collection.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	defer view.Close()

	if err := view.Flush(ctx); err != nil {
		return nil, err
	}

	var reports []Report
	for i, step := range s.Steps {
		err := src.Mutate(ctx, view, func(e *memsource.Editor) error {
			for j, ed := range step.Edits {
				if err := e.Apply(ed); err != nil {
					return fmt.Errorf("edit %d: %w", j, err)
				}
			}
			return nil
		})
		if ferr := view.Flush(ctx); err == nil {
			err = ferr
		}
		for _, b := range rec.take() {
			reports = append(reports, report(i, b))
		}
		if err != nil {
			return reports, fmt.Errorf("step %d: %w", i, err)
		}
		logger.Debug("Replayed step", zap.Int("step", i), zap.Int("edits", len(step.Edits)))
	}
	return reports, nil
}

func report(step int, b *update.Batch) Report {
	r := Report{Step: step, Reload: b.Reload, Shape: b.Shape}
	for _, cmd := range b.Commands {
		r.Commands = append(r.Commands, cmd.String())
	}
	if b.Mapping == nil {
		return r
	}
	r.Removed = b.Mapping.Removed()
	r.Inserted = b.Mapping.Inserted()
	for from, to := range b.Mapping.Moved() {
		r.Moved = append(r.Moved, Move{From: from, To: to})
	}
	slices.SortFunc(r.Moved, func(a, b Move) int { return a.From.Compare(b.From) })
	return r
}
