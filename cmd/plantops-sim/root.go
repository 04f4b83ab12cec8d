package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"plantops-sim/internal/logging"
)

var (
	logLevel string
	logger   *zap.SugaredLogger
)

var rootCmd = &cobra.Command{
	Use:   "plantops-sim",
	Short: "PlantOps simulation toolkit",
	Long:  "plantops-sim seeds, streams, and replays synthetic telemetry for an industrial asset fleet.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logger = logging.New(logLevel)
		zap.ReplaceGlobals(logger.Desugar())
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", logging.InfoLevel, "Log level (debug, info, warn, error)")
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(simulateCmd)
	rootCmd.AddCommand(replayCmd)
}
