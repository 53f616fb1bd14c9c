package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"nodegrid/core/collection"
	"nodegrid/core/config"
	"nodegrid/core/loader"
	"nodegrid/core/logger"
	"nodegrid/core/middleware/auth"
	"nodegrid/core/middleware/rayid"
	"nodegrid/core/rangectl"
	"nodegrid/feature/gridapi"
	"nodegrid/feature/integrity"

	_ "nodegrid/docs/swagger"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/swagger"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// @title Nodegrid API
// @version 1.0
// @description Control surface for a collection view: edits, viewport, node state and batch fetching.
// @host localhost:8080
// @BasePath /

// serveCmd serves a view over HTTP.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve a collection view over HTTP",
	Long: `Builds a view over the configured data source and exposes it on the
HTTP control surface: edits, viewport changes, node state and batch fetching.`,
	RunE: runServe,
}

func init() {
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Server.Validate(); err != nil {
		return err
	}

	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logg.Sync()
	zap.ReplaceGlobals(logg)

	hs, err := buildSource(ctx, cfg, logg)
	if err != nil {
		return err
	}
	logg = logg.With(zap.String("source", cfg.Source.Kind))

	delegate := gridapi.NewDelegate(logg.Named("batch"))
	view, err := collection.New(ctx, hs.source, nil, cfg.Collection,
		collection.WithLogger(logg.Named("view")),
		collection.WithDelegate(delegate),
		collection.WithOnFatal(func(err error) {
			logg.Error("View halted", zap.Error(err))
		}),
	)
	if err != nil {
		return err
	}
	if hs.attach != nil {
		if err := hs.attach(ctx, view); err != nil {
			_ = view.Close()
			return err
		}
	}
	view.SetViewport(ctx, rangectl.Viewport{Extent: cfg.Server.ViewportExtent})

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ReadTimeout:           cfg.Server.ReadTimeout(),
	})

	mgr := loader.NewManager(logg)
	checks := hs.checks
	checks.Logger = logg.Named("integrity")
	mgr.Register(integrity.NewFeature(view, checks))
	mgr.Register(gridapi.NewFeature(view, hs.editable, logg))

	app.Use(rayid.New())
	app.Use(func(c *fiber.Ctx) error {
		l := logger.WithRayID(logg, c)
		l.Info("Request started",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.String("ip", c.IP()),
		)
		err := c.Next()
		if err != nil {
			l.Error("Request error", zap.Error(err))
		}
		return err
	})
	mountDocs(app)
	app.Use(auth.New(auth.Config{ApiKey: cfg.Server.ApiKey}))

	if err := mgr.LoadAll(app); err != nil {
		_ = view.Close()
		return err
	}
	defer func() {
		if err := mgr.CloseAll(); err != nil {
			logg.Warn("Failed to close features", zap.Error(err))
		}
	}()

	errc := make(chan error, 1)
	go func() {
		logg.Info("Starting server", zap.String("addr", cfg.Server.Addr()))
		errc <- app.Listen(cfg.Server.Addr())
	}()

	select {
	case err := <-errc:
		if err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logg.Info("Shutting down server...")
	return app.Shutdown()
}

// mountDocs serves the API documentation ahead of auth.
func mountDocs(app fiber.Router) {
	app.Get("/swagger/*", swagger.HandlerDefault)
}
