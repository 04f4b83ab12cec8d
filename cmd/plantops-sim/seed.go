package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"plantops-sim/internal/config"
	"plantops-sim/internal/logging"
	"plantops-sim/internal/sim"
)

var (
	seedConfigPath string
	seedSchemaPath string
	seedPrintOnly  bool
	seedAssets     int
	seedType       string
	seedDays       int
	seedInterval   int
	seedBatch      int
	seedRandom     int64
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Bulk-generate historical telemetry",
	Long:  "seed walks a synthetic fleet through a historical window and writes the telemetry in batches.",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(seedConfigPath, seedSchemaPath)
		if err != nil {
			return err
		}

		writer, _, _, cleanup, err := newWriters(cfg, writerOptions{printOnly: seedPrintOnly})
		if err != nil {
			return err
		}
		defer cleanup()

		batchWriter, ok := writer.(sim.BatchTelemetryWriter)
		if !ok {
			return fmt.Errorf("writer %T cannot write batches", writer)
		}

		seeder, err := sim.NewSeeder(seedOptions(cmd, cfg.Seed), batchWriter)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()
		ctx = logging.NewContext(ctx, logger)

		return seeder.Run(ctx)
	},
}

// seedOptions merges the config seed profile with explicit flag overrides.
func seedOptions(cmd *cobra.Command, profile config.SeedProfile) sim.SeedOptions {
	opts := sim.SeedOptions{
		AssetCount:      profile.AssetCount,
		AssetType:       profile.AssetType,
		DurationDays:    profile.DurationDays,
		IntervalMinutes: profile.IntervalMinutes,
		BatchSize:       profile.BatchSize,
		Seed:            profile.RandomSeed,
	}
	if cmd.Flags().Changed("assets") {
		opts.AssetCount = seedAssets
	}
	if cmd.Flags().Changed("type") {
		opts.AssetType = seedType
	}
	if cmd.Flags().Changed("days") {
		opts.DurationDays = seedDays
	}
	if cmd.Flags().Changed("interval") {
		opts.IntervalMinutes = seedInterval
	}
	if cmd.Flags().Changed("batch") {
		opts.BatchSize = seedBatch
	}
	if cmd.Flags().Changed("random-seed") {
		opts.Seed = &seedRandom
	}
	return opts
}

func init() {
	seedCmd.Flags().StringVar(&seedConfigPath, "config", "config/simulation.yaml", "Path to simulation configuration YAML")
	seedCmd.Flags().StringVar(&seedSchemaPath, "schema", "schemas/simulation.cue", "Path to CUE schema file")
	seedCmd.Flags().BoolVar(&seedPrintOnly, "print-only", false, "Print telemetry to STDOUT instead of writing to DB")
	seedCmd.Flags().IntVar(&seedAssets, "assets", 50, "Number of assets to seed")
	seedCmd.Flags().StringVar(&seedType, "type", "MIXED", "Asset type (CONVEYOR, FAN, PUMP, GENERIC, MIXED)")
	seedCmd.Flags().IntVar(&seedDays, "days", 180, "Days of history to generate")
	seedCmd.Flags().IntVar(&seedInterval, "interval", 60, "Sampling interval in minutes")
	seedCmd.Flags().IntVar(&seedBatch, "batch", 5000, "Rows per batch flush")
	seedCmd.Flags().Int64Var(&seedRandom, "random-seed", 0, "Fixed random seed for reproducible datasets")
}
