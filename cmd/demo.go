package cmd

import (
	"context"
	"fmt"

	"nodegrid/core/collection"
	"nodegrid/core/config"
	"nodegrid/core/logger"
	"nodegrid/feature/terminal"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	// Flags for the demo command
	demoRows        int
	demoMaxSections int
)

// demoCmd shows a view in the terminal.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Browse a collection view in the terminal",
	Long: `Shows the configured data source in a terminal view. Scrolling moves the
working range; with an in-memory or file source, reaching the end appends a
section of generated rows.

Logs go to stderr at the configured level; redirect them when running the demo:
  nodegrid demo 2>demo.log`,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().IntVar(&demoRows, "rows", 40, "Rows appended per batch fetch")
	demoCmd.Flags().IntVar(&demoMaxSections, "max-sections", 10, "Stop batch fetching at this many sections (0 for no limit)")
	RootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logg.Sync()

	hs, err := buildSource(ctx, cfg, logg)
	if err != nil {
		return err
	}

	opts := []collection.Option{collection.WithLogger(logg.Named("view"))}
	var feeder *terminal.Feeder
	if hs.memory != nil {
		feeder = terminal.NewFeeder(hs.memory, demoRows, demoMaxSections, logg.Named("feeder"))
		opts = append(opts, collection.WithDelegate(feeder))
	}

	surface := terminal.NewSurface()
	defer surface.Close()
	view, err := collection.New(ctx, hs.source, surface, cfg.Collection, opts...)
	if err != nil {
		return err
	}
	defer func() {
		if err := view.Close(); err != nil {
			logg.Warn("Failed to close view", zap.Error(err))
		}
	}()
	if feeder != nil {
		feeder.Attach(ctx, view)
	}
	if hs.attach != nil {
		if err := hs.attach(ctx, view); err != nil {
			return err
		}
	}

	p := tea.NewProgram(terminal.New(ctx, view, surface),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	_, err = p.Run()
	return err
}
