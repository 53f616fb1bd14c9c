package gridapi

import (
	"context"
	"errors"
	"fmt"

	"nodegrid/core/collection"
	"nodegrid/core/index"
	"nodegrid/core/node"
	"nodegrid/core/nodestore"
	"nodegrid/core/rangectl"
	"nodegrid/feature/memsource"

	"go.uber.org/zap"
)

// ErrNotEditable is returned for edits against a data source that cannot take them.
var ErrNotEditable = errors.New("data source cannot be edited")

// ErrNoBatchFetch is returned when completing while no batch fetch is outstanding.
var ErrNoBatchFetch = errors.New("no batch fetch outstanding")

// ErrInvalidEdit wraps edits the data source rejected.
var ErrInvalidEdit = errors.New("invalid edit")

// Editable is a data source that applies edits in place.
type Editable interface {
	Mutate(ctx context.Context, c collection.Committer, fn func(e *memsource.Editor) error) error
}

// Service runs the grid operations against one view.
type Service struct {
	view   *collection.View
	source Editable
	logger *zap.Logger
}

// NewService creates a service. source may be nil.
func NewService(view *collection.View, source Editable, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{view: view, source: source, logger: logger}
}

// Apply performs edits in order and waits until the view has caught up. It
// returns the resulting shape.
func (s *Service) Apply(ctx context.Context, edits []memsource.Edit) (index.Shape, error) {
	if s.source == nil {
		return nil, ErrNotEditable
	}
	err := s.source.Mutate(ctx, s.view, func(e *memsource.Editor) error {
		for i, ed := range edits {
			if err := e.Apply(ed); err != nil {
				return fmt.Errorf("%w %d: %w", ErrInvalidEdit, i, err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if err := s.view.Flush(ctx); err != nil {
		return nil, err
	}
	return s.view.Shape(), nil
}

// SetViewport moves the viewport.
func (s *Service) SetViewport(ctx context.Context, req ViewportRequest) ViewportReport {
	vp := rangectl.Viewport{Offset: req.Offset, Extent: req.Extent}
	if vp.Extent <= 0 {
		cur, _ := s.view.Viewport()
		vp.Extent = cur.Extent
	}
	delta := s.view.SetViewport(ctx, vp)
	report := ViewportReport{Preload: delta.Preload, Evict: delta.Evict}
	for _, n := range s.view.VisibleNodes() {
		report.Visible = append(report.Visible, n.Index)
	}
	return report
}

// Visible reports the ready nodes in the viewport.
func (s *Service) Visible() []NodeReport {
	visible := s.view.VisibleNodes()
	out := make([]NodeReport, 0, len(visible))
	for _, v := range visible {
		r := NodeReport{Index: v.Index, State: nodestore.Ready.String(), Measured: true, Size: v.Size}
		describe(&r, v.Node)
		out = append(out, r)
	}
	return out
}

// Node reports the slot at idx.
func (s *Service) Node(idx index.Index) (NodeReport, error) {
	slot, err := s.view.Slot(idx)
	if err != nil {
		return NodeReport{}, err
	}
	r := NodeReport{Index: idx, State: slot.State.String(), Measured: slot.Measured, Size: slot.Size}
	if slot.Available() {
		describe(&r, slot.Node)
	}
	return r, nil
}

// CompleteBatch ends the outstanding batch fetch.
func (s *Service) CompleteBatch(success bool) error {
	if !s.view.BatchContext().Complete(success) {
		return ErrNoBatchFetch
	}
	return nil
}

// State reports the view's state.
func (s *Service) State() StateReport {
	vp, dir := s.view.Viewport()
	bc := s.view.BatchContext()
	began, completed, ok := bc.Stats()
	r := StateReport{
		Shape:         s.view.Shape(),
		Offset:        vp.Offset,
		Extent:        vp.Extent,
		Direction:     dir.String(),
		ContentExtent: s.view.ContentExtent(),
		WorkingRange:  s.view.WorkingRange().Len(),
		Batch: BatchReport{
			State:          bc.State().String(),
			LeadingScreens: bc.LeadingScreens(),
			Began:          began,
			Completed:      completed,
			LastSucceeded:  ok,
		},
	}
	if err := s.view.Err(); err != nil {
		r.Error = err.Error()
	}
	return r
}

func describe(r *NodeReport, n node.Node) {
	switch v := n.(type) {
	case *node.Text:
		r.ID = v.ID
		r.Content = v.Body
	case interface{ Body() []byte }:
		r.Content = string(v.Body())
	}
}
