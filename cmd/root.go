package cmd

import (
	"fmt"
	"os"

	"nodegrid/core/logger"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// RootCmd represents the base command when called without any subcommands
var RootCmd = &cobra.Command{
	Use:   "nodegrid",
	Short: "Asynchronous collection view host",
	Long: `nodegrid keeps a two-level collection of nodes in step with its data
source, materializing nodes around the viewport off the calling goroutine.
It can be browsed in the terminal, served over HTTP or driven by a script.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		// Debug level picks the development encoder, which prints ISO8601 times.
		cfg := &logger.Config{
			Level:  "debug",
			Format: "console",
		}

		l, logErr := logger.New(cfg)
		if logErr == nil {
			l.Error("command failed", zap.Error(err))
			_ = l.Sync()
		} else {
			fmt.Println(err)
		}
		os.Exit(1)
	}
}
