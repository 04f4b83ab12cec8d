// Writer implementation printing telemetry to STDOUT
package sim

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"plantops-sim/internal/telemetry"
)

// JSONStdoutWriter prints telemetry and lifecycle events as JSON to STDOUT.
type JSONStdoutWriter struct {
	out io.Writer
}

// NewJSONStdoutWriter creates a JSONStdoutWriter writing to os.Stdout.
func NewJSONStdoutWriter() *JSONStdoutWriter {
	return &JSONStdoutWriter{out: os.Stdout}
}

// Write outputs a telemetry row in JSON format.
func (w *JSONStdoutWriter) Write(row telemetry.TelemetryRow) error {
	data, _ := json.Marshal(row)
	fmt.Fprintln(w.out, string(data))
	return nil
}

// WriteBatch outputs multiple telemetry rows in JSON format.
func (w *JSONStdoutWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	for _, r := range rows {
		_ = w.Write(r)
	}
	return nil
}

// WriteEvent outputs a lifecycle event in JSON format.
func (w *JSONStdoutWriter) WriteEvent(e telemetry.LifecycleEventRow) error {
	data, _ := json.Marshal(e)
	fmt.Fprintln(w.out, string(data))
	return nil
}

// WriteEvents outputs multiple lifecycle events in JSON format.
func (w *JSONStdoutWriter) WriteEvents(rows []telemetry.LifecycleEventRow) error {
	for _, e := range rows {
		_ = w.WriteEvent(e)
	}
	return nil
}
