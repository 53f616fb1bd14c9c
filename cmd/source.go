package cmd

import (
	"context"
	"fmt"

	"nodegrid/core/collection"
	"nodegrid/core/config"
	"nodegrid/core/database"
	"nodegrid/core/datasource"
	"nodegrid/core/storage"
	"nodegrid/feature/filesource"
	"nodegrid/feature/gridapi"
	"nodegrid/feature/integrity"
	"nodegrid/feature/memsource"
	"nodegrid/feature/objectsource"
	"nodegrid/feature/sqlsource"

	"go.uber.org/zap"
)

// textWidth is the wrap width of item bodies in the command line hosts.
const textWidth = 72

// hostedSource is the data source selected by configuration, with the hooks a
// command needs around it.
type hostedSource struct {
	source datasource.DataSource
	// editable is set for sources that take edits over the HTTP surface.
	editable gridapi.Editable
	// memory is set when the content lives in a memsource.
	memory *memsource.Source
	// attach runs once the view exists: seeding, watching.
	attach func(ctx context.Context, view *collection.View) error
	// checks lists the stores the integrity feature can inspect.
	checks integrity.Options
}

func buildSource(ctx context.Context, cfg *config.Config, logg *zap.Logger) (*hostedSource, error) {
	switch cfg.Source.Kind {
	case config.SourceMemory:
		src := memsource.Generate(cfg.Source.Sections, cfg.Source.Items, textWidth)
		return &hostedSource{source: src, editable: src, memory: src, checks: integrity.Options{Source: src}}, nil

	case config.SourceSQL:
		db, err := database.Connect(cfg.Database)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		src, err := sqlsource.New(ctx, db, sqlsource.Options{
			Migrate: cfg.Database.Driver == database.DriverSQLite,
			Width:   textWidth,
			Logger:  logg.Named("sqlsource"),
		})
		if err != nil {
			return nil, err
		}
		return &hostedSource{
			source: src,
			checks: integrity.Options{Source: src, DB: db},
			attach: func(ctx context.Context, view *collection.View) error {
				if len(src.Shape()) > 0 {
					return nil
				}
				logg.Info("Seeding empty database",
					zap.Int("sections", cfg.Source.Sections),
					zap.Int("items", cfg.Source.Items))
				return src.Seed(ctx, view, cfg.Source.Sections, cfg.Source.Items)
			},
		}, nil

	case config.SourceFile:
		src, err := filesource.Open(cfg.Source.Path, filesource.Options{
			Width:    textWidth,
			Debounce: cfg.Source.Debounce(),
			Logger:   logg.Named("filesource"),
		})
		if err != nil {
			return nil, err
		}
		return &hostedSource{
			source:   src,
			editable: src,
			memory:   src.Source,
			checks:   integrity.Options{Source: src},
			attach: func(ctx context.Context, view *collection.View) error {
				go func() {
					if err := src.Watch(ctx, view); err != nil {
						logg.Error("File watcher stopped", zap.Error(err))
					}
				}()
				return nil
			},
		}, nil

	case config.SourceObject:
		client, err := storage.NewClient(cfg.Storage)
		if err != nil {
			return nil, fmt.Errorf("failed to create storage client: %w", err)
		}
		if err := storage.EnsureBucket(ctx, client, cfg.Storage.Bucket, cfg.Storage.Region); err != nil {
			return nil, err
		}
		src, err := objectsource.New(ctx, client, objectsource.Options{
			Bucket: cfg.Storage.Bucket,
			Prefix: cfg.Source.Prefix,
			Width:  textWidth,
			Logger: logg.Named("objectsource"),
		})
		if err != nil {
			return nil, err
		}
		return &hostedSource{
			source: src,
			checks: integrity.Options{
				Source: src,
				Client: client,
				Bucket: cfg.Storage.Bucket,
				Prefix: cfg.Source.Prefix,
			},
		}, nil
	}
	return nil, fmt.Errorf("unknown source kind %q", cfg.Source.Kind)
}
