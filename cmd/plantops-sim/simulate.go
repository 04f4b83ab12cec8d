package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"plantops-sim/internal/config"
	"plantops-sim/internal/logging"
	"plantops-sim/internal/sim"
)

var (
	simPrintOnly  bool
	simColor      bool
	simTUI        bool
	simConfigPath string
	simSchemaPath string
	simTick       time.Duration
	simLogFile    string
)

var simulateCmd = &cobra.Command{
	Use:   "simulate",
	Short: "Run the real-time fleet simulator",
	Long:  "simulate starts a live asset fleet emitting telemetry and lifecycle events once per tick.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(simConfigPath, simSchemaPath)
		if err != nil {
			return err
		}

		writer, eventWriter, tui, cleanup, err := newWriters(cfg, writerOptions{
			printOnly: simPrintOnly,
			color:     simColor,
			tui:       simTUI,
			logFile:   simLogFile,
		})
		if err != nil {
			return err
		}
		defer cleanup()

		siteID := cfg.SiteID
		if env := os.Getenv("SITE_ID"); env != "" {
			siteID = env
		}

		tickInterval := simTick
		if envTick := os.Getenv("TICK_INTERVAL"); envTick != "" {
			d, err := time.ParseDuration(envTick)
			if err != nil {
				return err
			}
			tickInterval = d
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		runLogger := logger
		if simTUI {
			// The TUI owns the terminal; keep the console logger quiet.
			runLogger = logging.New(logging.ErrorLevel)
		}
		ctx = logging.NewContext(ctx, runLogger)

		simulator := sim.NewSimulator(siteID, cfg, writer, eventWriter, tickInterval)
		if tui != nil {
			tui.SetFaultInjector(func(assetID, fault string) {
				if err := simulator.InjectFault(ctx, assetID, fault); err != nil {
					logging.FromContext(ctx).Errorw("fault injection failed", "asset_id", assetID, "err", err)
				}
			})
		}

		go simulator.Run(ctx)

		<-ctx.Done()
		logger.Infow("simulation stopped", "site", siteID)
		return nil
	},
}

func init() {
	simulateCmd.Flags().BoolVar(&simPrintOnly, "print-only", false, "Print telemetry to STDOUT instead of writing to DB")
	simulateCmd.Flags().BoolVar(&simColor, "color", false, "Colorized human-friendly STDOUT output")
	simulateCmd.Flags().BoolVar(&simTUI, "tui", false, "Interactive terminal UI with live fleet table")
	simulateCmd.Flags().StringVar(&simConfigPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML")
	simulateCmd.Flags().StringVar(&simSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	simulateCmd.Flags().DurationVar(&simTick, "tick", time.Second, "Telemetry tick interval (e.g. 500ms, 2s)")
	simulateCmd.Flags().StringVar(&simLogFile, "log-file", "", "Path to export telemetry/event logs (JSONL)")
}
