package sim

import (
	"encoding/json"
	"io"
	"os"
	"time"

	"plantops-sim/internal/telemetry"
)

// ReplayLog replays recorded telemetry rows from r to writer, pacing rows by
// their timestamps. A speed > 1 accelerates playback; speed <= 0 disables
// pacing entirely.
func ReplayLog(r io.Reader, writer TelemetryWriter, speed float64) error {
	dec := json.NewDecoder(r)
	var prev time.Time
	for {
		var row telemetry.TelemetryRow
		if err := dec.Decode(&row); err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		if !prev.IsZero() && speed > 0 {
			gap := row.Timestamp.Sub(prev)
			if speed != 1 {
				gap = time.Duration(float64(gap) / speed)
			}
			if gap > 0 {
				time.Sleep(gap)
			}
		}
		if err := writer.Write(row); err != nil {
			return err
		}
		prev = row.Timestamp
	}
}

// ReplayLogFile opens a JSONL log and replays its telemetry rows.
func ReplayLogFile(path string, writer TelemetryWriter, speed float64) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	return ReplayLog(f, writer, speed)
}
