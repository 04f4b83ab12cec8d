// Colorized human-friendly STDOUT writer
package sim

import (
	"fmt"
	"io"
	"os"
	"sync"
	"text/tabwriter"
	"time"

	"plantops-sim/internal/config"
	"plantops-sim/internal/telemetry"
)

// ANSI color codes
const (
	colorReset   = "\x1b[0m"
	colorRed     = "\x1b[31m"
	colorGreen   = "\x1b[32m"
	colorYellow  = "\x1b[33m"
	colorBlue    = "\x1b[34m"
	colorMagenta = "\x1b[35m"
	colorCyan    = "\x1b[36m"
	colorGray    = "\x1b[90m"
)

// ColorStdoutWriter prints colorized telemetry lines to STDOUT.
// On the first write it prints a one-time overview of the configured fleet.
type ColorStdoutWriter struct {
	cfg  *config.SimulationConfig
	out  io.Writer
	once sync.Once
}

// NewColorStdoutWriter creates a ColorStdoutWriter writing to os.Stdout.
func NewColorStdoutWriter(cfg *config.SimulationConfig) *ColorStdoutWriter {
	return &ColorStdoutWriter{cfg: cfg, out: os.Stdout}
}

// printOverview prints the configured fleet as a table.
func (w *ColorStdoutWriter) printOverview() {
	if w.cfg == nil {
		return
	}

	fmt.Fprintf(w.out, "%sSite: %s%s\n", colorCyan, w.cfg.SiteID, colorReset)
	tw := tabwriter.NewWriter(w.out, 0, 2, 2, ' ', 0)
	fmt.Fprintf(tw, "  %sASSET\tTYPE\tBASE RPM\tLOAD%s\n", colorGray, colorReset)
	for _, a := range w.cfg.Assets {
		spec := telemetry.SpecFor(a.ID, a.Type)
		load := "shift profile"
		if a.Load != nil {
			load = fmt.Sprintf("pinned %.0f%%", *a.Load*100)
		}
		fmt.Fprintf(tw, "  %s\t%s\t%.0f\t%s\n", a.ID, spec.Type, spec.BaseRPM, load)
	}
	tw.Flush()
	fmt.Fprintln(w.out)
}

// statusColor maps a telemetry status to its display color.
func statusColor(status string) string {
	switch status {
	case telemetry.StatusCritical:
		return colorRed
	case telemetry.StatusWarning:
		return colorYellow
	case telemetry.StatusMaintenance:
		return colorBlue
	default:
		return colorGreen
	}
}

// Write outputs a single telemetry row in colorized format.
func (w *ColorStdoutWriter) Write(row telemetry.TelemetryRow) error {
	w.once.Do(w.printOverview)

	fmt.Fprintf(w.out, "%s[%s]%s ", colorGray, row.Timestamp.Format(time.RFC3339), colorReset)
	fmt.Fprintf(w.out, "%s%-14s%s ", colorCyan, row.AssetID, colorReset)
	fmt.Fprintf(w.out, "load=%5.1f%% ", row.LoadPct)
	fmt.Fprintf(w.out, "rpm=%4d ", row.SpeedRPM)
	fmt.Fprintf(w.out, "temp=%6.2fC ", row.TemperatureC)
	fmt.Fprintf(w.out, "vib=%5.2fmm/s ", row.VibrationMMS)
	fmt.Fprintf(w.out, "deg=%5.1f ", row.Degradation)
	fmt.Fprintf(w.out, "%s%s%s\n", statusColor(row.Status), row.Status, colorReset)
	return nil
}

// WriteBatch outputs multiple telemetry rows in colorized format.
func (w *ColorStdoutWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteEvent outputs a lifecycle transition in colorized format.
func (w *ColorStdoutWriter) WriteEvent(e telemetry.LifecycleEventRow) error {
	w.once.Do(w.printOverview)

	fmt.Fprintf(w.out, "%s[%s]%s ", colorGray, e.Timestamp.Format(time.RFC3339), colorReset)
	fmt.Fprintf(w.out, "%sLIFECYCLE%s ", colorMagenta, colorReset)
	fmt.Fprintf(w.out, "%s%-14s%s %s %s->%s", colorCyan, e.AssetID, colorReset, e.EventType, e.FromState, e.ToState)
	if e.Fault != "" {
		fmt.Fprintf(w.out, " %sfault=%s%s", colorRed, e.Fault, colorReset)
	}
	fmt.Fprintln(w.out)
	return nil
}

// WriteEvents outputs multiple lifecycle transitions.
func (w *ColorStdoutWriter) WriteEvents(rows []telemetry.LifecycleEventRow) error {
	for _, e := range rows {
		_ = w.WriteEvent(e)
	}
	return nil
}
