package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"plantops-sim/internal/config"
	"plantops-sim/internal/sim"
)

var (
	replayInput      string
	replaySpeed      float64
	replayPrintOnly  bool
	replayTUI        bool
	replayConfigPath string
	replaySchemaPath string
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Replay a telemetry log file",
	Long:  "replay feeds telemetry rows from a JSONL log back into a sink or the terminal UI.",
	RunE: func(cmd *cobra.Command, args []string) error {
		if replayInput == "" {
			return fmt.Errorf("input file required")
		}

		// The TUI needs the fleet config for its asset table; the other
		// sinks replay without one.
		var cfg *config.SimulationConfig
		if replayTUI {
			c, err := config.Load(replayConfigPath, replaySchemaPath)
			if err != nil {
				return err
			}
			cfg = c
		}

		writer, tui, cleanup, err := newTelemetryWriter(cfg, writerOptions{printOnly: replayPrintOnly, tui: replayTUI})
		if err != nil {
			return err
		}
		defer cleanup()

		if err := sim.ReplayLogFile(replayInput, writer, replaySpeed); err != nil {
			return err
		}

		// Keep the UI up after the log is exhausted until the user quits.
		if tui != nil {
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			<-ctx.Done()
		}
		return nil
	},
}

func init() {
	replayCmd.Flags().StringVar(&replayInput, "input", "", "Path to telemetry log file")
	replayCmd.Flags().Float64Var(&replaySpeed, "speed", 1.0, "Playback speed multiplier")
	replayCmd.Flags().BoolVar(&replayPrintOnly, "print-only", false, "Print telemetry to STDOUT instead of writing to DB")
	replayCmd.Flags().BoolVar(&replayTUI, "tui", false, "Replay into the interactive terminal UI")
	replayCmd.Flags().StringVar(&replayConfigPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML")
	replayCmd.Flags().StringVar(&replaySchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	replayCmd.MarkFlagRequired("input")
}
