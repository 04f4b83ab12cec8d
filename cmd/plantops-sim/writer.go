package main

import (
	"os"

	"plantops-sim/internal/config"
	"plantops-sim/internal/sim"
)

// writerOptions select the sink stack for a run.
type writerOptions struct {
	printOnly bool
	color     bool
	tui       bool
	logFile   string
}

// newWriters sets up telemetry and event writers based on flags and env vars.
// The TUI writer is returned separately so callers can attach the fault
// injector; cleanup closes any opened resources.
func newWriters(cfg *config.SimulationConfig, opts writerOptions) (sim.TelemetryWriter, sim.EventWriter, *sim.TUIWriter, func(), error) {
	writer, eventWriter, tui, cleanup, err := baseWriters(cfg, opts)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	if opts.logFile == "" {
		return writer, eventWriter, tui, cleanup, nil
	}

	fw, err := sim.NewFileWriter(opts.logFile, opts.logFile+".events")
	if err != nil {
		cleanup()
		return nil, nil, nil, nil, err
	}
	mw := sim.NewMultiWriter(
		[]sim.TelemetryWriter{writer, fw},
		[]sim.EventWriter{eventWriter, fw},
	)
	base := cleanup
	cleanup = func() {
		fw.Close()
		base()
	}
	return mw, mw, tui, cleanup, nil
}

// baseWriters chooses the underlying sink: TUI when requested, then
// GreptimeDB or SQLite from env vars, then STDOUT.
func baseWriters(cfg *config.SimulationConfig, opts writerOptions) (sim.TelemetryWriter, sim.EventWriter, *sim.TUIWriter, func(), error) {
	if opts.tui {
		w := sim.NewTUIWriter(cfg)
		return w, w, w, func() { w.Close() }, nil
	}
	if endpoint := os.Getenv("GREPTIMEDB_ENDPOINT"); endpoint != "" && !opts.printOnly {
		database := os.Getenv("GREPTIMEDB_DATABASE")
		if database == "" {
			database = "public"
		}
		w, err := sim.NewGreptimeDBWriter(endpoint, database)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		return w, w, nil, func() {}, nil
	}
	if path := os.Getenv("SQLITE_PATH"); path != "" && !opts.printOnly {
		w, err := sim.NewSQLiteWriter(path)
		if err != nil {
			return nil, nil, nil, nil, err
		}
		return w, w, nil, func() { w.Close() }, nil
	}
	if opts.color {
		w := sim.NewColorStdoutWriter(cfg)
		return w, w, nil, func() {}, nil
	}
	w := sim.NewJSONStdoutWriter()
	return w, w, nil, func() {}, nil
}

// newTelemetryWriter creates a telemetry writer without event handling.
func newTelemetryWriter(cfg *config.SimulationConfig, opts writerOptions) (sim.TelemetryWriter, *sim.TUIWriter, func(), error) {
	w, _, tui, cleanup, err := newWriters(cfg, opts)
	return w, tui, cleanup, err
}
