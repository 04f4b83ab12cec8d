package sim

import (
	"context"
	"fmt"
	"net"
	"strconv"

	gpb "github.com/GreptimeTeam/greptime-proto/go/greptime/v1"
	greptime "github.com/GreptimeTeam/greptimedb-ingester-go"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table"
	"github.com/GreptimeTeam/greptimedb-ingester-go/table/types"

	"plantops-sim/internal/telemetry"
)

const defaultGreptimePort = 4001

// greptimeClient is the slice of the ingester client the writer needs;
// tests substitute a mock.
type greptimeClient interface {
	Write(ctx context.Context, tables ...*table.Table) (*gpb.GreptimeResponse, error)
}

// GreptimeDBWriter ships telemetry and lifecycle events to GreptimeDB.
// Tables are auto-created on first ingest.
type GreptimeDBWriter struct {
	client         greptimeClient
	telemetryTable string
	eventTable     string
}

// NewGreptimeDBWriter connects to a GreptimeDB gRPC endpoint given as
// "host:port" or bare host (port defaults to 4001).
func NewGreptimeDBWriter(endpoint, database string) (*GreptimeDBWriter, error) {
	host, portStr, err := net.SplitHostPort(endpoint)
	if err != nil {
		host, portStr = endpoint, strconv.Itoa(defaultGreptimePort)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid greptimedb port %q: %w", portStr, err)
	}

	cfg := greptime.NewConfig(host).WithPort(port).WithDatabase(database)
	client, err := greptime.NewClient(cfg)
	if err != nil {
		return nil, fmt.Errorf("connect greptimedb: %w", err)
	}

	return &GreptimeDBWriter{
		client:         client,
		telemetryTable: telemetry.TelemetryTableName,
		eventTable:     telemetry.EventTableName,
	}, nil
}

// Write inserts a single telemetry row.
func (w *GreptimeDBWriter) Write(row telemetry.TelemetryRow) error {
	return w.WriteBatch([]telemetry.TelemetryRow{row})
}

// WriteBatch inserts telemetry rows in one ingest call.
func (w *GreptimeDBWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	if len(rows) == 0 {
		return nil
	}

	tbl, err := table.New(w.telemetryTable)
	if err != nil {
		return fmt.Errorf("build telemetry table: %w", err)
	}
	if err := tbl.AddTagColumn("asset_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("status", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("load_pct", types.FLOAT); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("speed_rpm", types.INT64); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("temperature_c", types.FLOAT); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("vibration_mm_s", types.FLOAT); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("degradation_level", types.FLOAT); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}

	for _, r := range rows {
		if err := tbl.AddRow(
			r.AssetID,
			r.Status,
			r.LoadPct,
			int64(r.SpeedRPM),
			r.TemperatureC,
			r.VibrationMMS,
			r.Degradation,
			r.Timestamp,
		); err != nil {
			return fmt.Errorf("append telemetry row: %w", err)
		}
	}

	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		return fmt.Errorf("write telemetry batch: %w", err)
	}
	return nil
}

// WriteEvent inserts a single lifecycle event.
func (w *GreptimeDBWriter) WriteEvent(e telemetry.LifecycleEventRow) error {
	return w.WriteEvents([]telemetry.LifecycleEventRow{e})
}

// WriteEvents inserts lifecycle events in one ingest call.
func (w *GreptimeDBWriter) WriteEvents(events []telemetry.LifecycleEventRow) error {
	if len(events) == 0 {
		return nil
	}

	tbl, err := table.New(w.eventTable)
	if err != nil {
		return fmt.Errorf("build event table: %w", err)
	}
	if err := tbl.AddTagColumn("asset_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("event_id", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("event_type", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("from_state", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("to_state", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddFieldColumn("fault", types.STRING); err != nil {
		return err
	}
	if err := tbl.AddTimestampColumn("ts", types.TIMESTAMP_MILLISECOND); err != nil {
		return err
	}

	for _, e := range events {
		if err := tbl.AddRow(
			e.AssetID,
			e.EventID,
			e.EventType,
			e.FromState,
			e.ToState,
			e.Fault,
			e.Timestamp,
		); err != nil {
			return fmt.Errorf("append event row: %w", err)
		}
	}

	if _, err := w.client.Write(context.Background(), tbl); err != nil {
		return fmt.Errorf("write event batch: %w", err)
	}
	return nil
}
