package filesource

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"nodegrid/core/collection"
	"nodegrid/feature/memsource"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Source is a memsource.Source loaded from a YAML file.
type Source struct {
	*memsource.Source

	path     string
	debounce time.Duration
	logger   *zap.Logger
}

// Options configures a Source.
type Options struct {
	Width    int
	Debounce time.Duration
	Logger   *zap.Logger
}

// Open reads path. A missing file starts out empty.
func Open(path string, opts Options) (*Source, error) {
	doc, err := ReadFile(path)
	if err != nil {
		return nil, err
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{
		Source:   memsource.New(opts.Width, doc.Content()...),
		path:     path,
		debounce: opts.Debounce,
		logger:   logger,
	}, nil
}

// Path returns the watched file.
func (s *Source) Path() string {
	return s.path
}

// Reload re-reads the file, swaps the content and submits a full reload to c.
// A document that fails to parse leaves the current content in place.
func (s *Source) Reload(ctx context.Context, c collection.Committer) error {
	doc, err := ReadFile(s.path)
	if err != nil {
		return err
	}
	return s.Reset(ctx, c, doc.Content())
}

// Watch reloads into c whenever the file changes, until ctx is done. The parent
// directory is watched so editors that replace the file are followed.
func (s *Source) Watch(ctx context.Context, c collection.Committer) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer w.Close()

	dir := filepath.Dir(s.path)
	if err := w.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", dir, err)
	}
	target := filepath.Clean(s.path)

	deb := NewDebouncer(s.debounce)
	defer deb.Cancel()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target || !ev.Has(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) {
				continue
			}
			deb.Trigger(func() {
				if err := s.Reload(ctx, c); err != nil {
					s.logger.Warn("Failed to reload document", zap.String("path", s.path), zap.Error(err))
					return
				}
				s.logger.Info("Document reloaded", zap.String("path", s.path))
			})
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("Watcher error", zap.Error(err))
		}
	}
}
