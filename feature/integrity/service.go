package integrity

import (
	"context"
	"errors"

	"nodegrid/core/collection"
	"nodegrid/core/index"
	"nodegrid/core/storage"
	"nodegrid/feature/integrity/checks"
	"nodegrid/feature/sqlsource"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// ErrNotConfigured is returned by checks whose backing store was not provided.
var ErrNotConfigured = errors.New("check not configured")

// Shaper reports a data source's current shape under its own lock.
type Shaper interface {
	Shape() index.Shape
}

// Options lists what the service can check besides the view.
type Options struct {
	// Source is the view's data source. Without it the shape check is skipped.
	Source Shaper
	// Client, Bucket and Prefix locate the object source's objects.
	Client storage.Client
	Bucket string
	Prefix string
	// DB backs the sql source.
	DB     *gorm.DB
	Logger *zap.Logger
}

// Service handles integrity checks.
type Service struct {
	view   *collection.View
	opts   Options
	logger *zap.Logger
}

// NewService creates a new integrity service.
func NewService(view *collection.View, opts Options) *Service {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{view: view, opts: opts, logger: logger}
}

// CheckShape applies every queued command, then compares the view's shape with
// the data source's. Edits arriving meanwhile can show up as a mismatch.
func (s *Service) CheckShape(ctx context.Context) (checks.ShapeReport, error) {
	if s.opts.Source == nil {
		return checks.ShapeReport{}, ErrNotConfigured
	}
	if err := s.view.Flush(ctx); err != nil {
		return checks.ShapeReport{}, err
	}
	return checks.CheckShape(s.view.Shape(), s.opts.Source.Shape()), nil
}

// CheckSlots checks the slot states against the working range.
func (s *Service) CheckSlots(ctx context.Context) (checks.SlotReport, error) {
	if err := s.view.Flush(ctx); err != nil {
		return checks.SlotReport{}, err
	}
	return checks.CheckSlots(s.view, s.view.WorkingRange().Contains)
}

// CheckStorage checks the object bucket.
func (s *Service) CheckStorage(ctx context.Context) (checks.StorageReport, error) {
	if s.opts.Client == nil {
		return checks.StorageReport{}, ErrNotConfigured
	}
	return checks.CheckStorage(ctx, s.opts.Client, s.opts.Bucket, s.opts.Prefix)
}

// CheckSchema checks the sql source's tables.
func (s *Service) CheckSchema() (checks.Report, error) {
	if s.opts.DB == nil {
		return checks.Report{}, ErrNotConfigured
	}
	if err := sqlsource.CheckSchema(s.opts.DB); err != nil {
		return checks.Report{Status: checks.StatusMismatch, Error: err.Error()}, nil
	}
	return checks.Report{Status: checks.StatusOK}, nil
}
