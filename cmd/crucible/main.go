// Package main implements crucible, the single-agent coding assistant: it
// answers one-shot or piped requests by driving the execution loop against
// the current project, and manages saved sessions.
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
	verbose bool

	logger *zap.Logger
	cfg    *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "crucible [request]",
	Short: "crucible - an autonomous coding agent for the current project",
	Long: `crucible answers natural-language requests about the project in the
current directory. It plans, reads and edits files, searches, runs
allowlisted commands and drives git, then reports back.

With arguments it answers that request. Without arguments it reads the
request from stdin, so it composes with pipes.`,
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
	RunE: runAsk,
}

func main() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.Flags().BoolVar(&planFirst, "plan", false, "generate a plan before executing")
	rootCmd.Flags().StringVar(&sessionName, "session", "", "name for the saved session")
	rootCmd.Flags().StringVar(&resumePrefix, "resume", "", "resume the session matching this prefix")

	rootCmd.AddCommand(sessionsCmd)
	rootCmd.AddCommand(modelsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
