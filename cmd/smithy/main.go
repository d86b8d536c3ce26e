// Package main implements smithy, the multi-agent runner: it loads a crew
// file declaring specialist agents, routes each request to the best-fitting
// specialist or answers as the coordinator, and runs the selected agent with
// its restricted toolset.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"crucible/internal/config"
	"crucible/internal/logging"
)

var (
	verbose  bool
	crewPath string

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "smithy [request]",
	Short: "smithy - a crew of specialist agents for the current project",
	Long: `smithy reads a crew file declaring specialist agents, each with a remit
and a restricted toolset. A request is routed once: either one specialist
handles it end to end, or the coordinator answers itself. A specialist
never re-routes.

With arguments it answers that request. Without arguments it reads the
request from stdin.`,
	Args: cobra.ArbitraryArgs,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		logger, err = logging.New(verbose)
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}

		cfg, err = config.Load()
		if err != nil {
			logger.Warn("failed to load config, using defaults", zap.Error(err))
			cfg = config.DefaultConfig()
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runCrew,
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().StringVar(&crewPath, "crew", "crew.yaml", "path to the crew file")

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
