package cmd

import (
	"context"
	"fmt"

	"nodegrid/core/config"
	"nodegrid/core/logger"
	"nodegrid/feature/replay"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var (
	// Flags for the replay command
	replayAsync bool
)

// replayCmd plays a script of edits against a headless view.
var replayCmd = &cobra.Command{
	Use:   "replay <script.yaml>",
	Short: "Apply a script of edits and report how the view changed",
	Long: `Plays a YAML script of edits against an in-memory data source and a
headless view. For every applied batch it prints the commands, the resulting
shape and the removed, inserted and moved indices.

Examples:
  # Report as YAML
  nodegrid replay testdata/script.yaml

  # Exercise the asynchronous pipeline
  nodegrid replay testdata/script.yaml --async`,
	Args: cobra.ExactArgs(1),
	RunE: runReplay,
}

func init() {
	replayCmd.Flags().BoolVar(&replayAsync, "async", false, "Fetch from the data source off the calling goroutine")
	RootCmd.AddCommand(replayCmd)
}

func runReplay(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadConfig(".")
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	logg, err := logger.New(&cfg.Log)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logg.Sync()

	script, err := replay.ReadFile(args[0])
	if err != nil {
		return err
	}

	viewCfg := cfg.Collection
	viewCfg.AsyncDataFetching = replayAsync
	reports, runErr := replay.Run(ctx, script, viewCfg, logg.Named("replay"))

	enc := yaml.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent(2)
	if err := enc.Encode(reports); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	if err := enc.Close(); err != nil {
		return err
	}
	return runErr
}
