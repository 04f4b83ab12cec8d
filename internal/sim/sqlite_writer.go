// SQLite-backed sink matching the plant dashboard's sensors.db layout
package sim

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"plantops-sim/internal/telemetry"
)

const sqliteDriverName = "sqlite"

// SQLite TIMESTAMP format "YYYY-MM-DD HH:MM:SS".
const sqliteTimeFormat = "2006-01-02 15:04:05"

const schemaTelemetry = `
CREATE TABLE IF NOT EXISTS telemetry (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    motor_id TEXT NOT NULL,
    timestamp DATETIME NOT NULL,
    status TEXT NOT NULL,
    load_pct REAL,
    speed_rpm INTEGER,
    temperature_c REAL,
    vibration_mm_s REAL,
    degradation_level REAL
);
`

const schemaLifecycleEvents = `
CREATE TABLE IF NOT EXISTS lifecycle_events (
    id TEXT PRIMARY KEY,
    motor_id TEXT NOT NULL,
    occurred_at DATETIME NOT NULL,
    event_type TEXT NOT NULL,
    from_state TEXT NOT NULL,
    to_state TEXT NOT NULL,
    fault TEXT
);
`

const insertTelemetry = `
INSERT INTO telemetry (motor_id, timestamp, status, load_pct, speed_rpm, temperature_c, vibration_mm_s, degradation_level)
VALUES (?, ?, ?, ?, ?, ?, ?, ?)
`

const insertEvent = `
INSERT INTO lifecycle_events (id, motor_id, occurred_at, event_type, from_state, to_state, fault)
VALUES (?, ?, ?, ?, ?, ?, ?)
`

// SQLiteWriter persists telemetry and lifecycle events in a local SQLite
// database, the same layout the plant dashboard reads.
type SQLiteWriter struct {
	db *sql.DB
}

// NewSQLiteWriter opens/creates the database file and ensures tables exist.
func NewSQLiteWriter(path string) (*SQLiteWriter, error) {
	db, err := sql.Open(sqliteDriverName, path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite at %q: %w", path, err)
	}

	// Conservative pool settings for SQLite
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode = WAL;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set PRAGMA journal_mode=WAL: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set PRAGMA foreign_keys=ON: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout = 5000;"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set PRAGMA busy_timeout=5000: %w", err)
	}

	if err := ensureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}

	return &SQLiteWriter{db: db}, nil
}

func ensureSchema(db *sql.DB) error {
	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	for i, stmt := range []string{schemaTelemetry, schemaLifecycleEvents} {
		if _, err := tx.Exec(stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema transaction: %w", err)
	}
	return nil
}

// Write inserts a single telemetry row.
func (w *SQLiteWriter) Write(row telemetry.TelemetryRow) error {
	_, err := w.db.Exec(insertTelemetry,
		row.AssetID,
		row.Timestamp.UTC().Format(sqliteTimeFormat),
		row.Status,
		row.LoadPct,
		row.SpeedRPM,
		row.TemperatureC,
		row.VibrationMMS,
		row.Degradation,
	)
	return err
}

// WriteBatch inserts all rows in one transaction: they commit together or
// not at all.
func (w *SQLiteWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	if len(rows) == 0 {
		return nil
	}
	tx, err := w.db.Begin()
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.Prepare(insertTelemetry)
	if err != nil {
		return fmt.Errorf("prepare batch insert: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		if _, err := stmt.Exec(
			row.AssetID,
			row.Timestamp.UTC().Format(sqliteTimeFormat),
			row.Status,
			row.LoadPct,
			row.SpeedRPM,
			row.TemperatureC,
			row.VibrationMMS,
			row.Degradation,
		); err != nil {
			return fmt.Errorf("insert row for %s: %w", row.AssetID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// WriteEvent inserts a single lifecycle event.
func (w *SQLiteWriter) WriteEvent(e telemetry.LifecycleEventRow) error {
	_, err := w.db.Exec(insertEvent,
		e.EventID,
		e.AssetID,
		e.Timestamp.UTC().Format(sqliteTimeFormat),
		e.EventType,
		e.FromState,
		e.ToState,
		e.Fault,
	)
	return err
}

// WriteEvents inserts lifecycle events one by one.
func (w *SQLiteWriter) WriteEvents(events []telemetry.LifecycleEventRow) error {
	for _, e := range events {
		if err := w.WriteEvent(e); err != nil {
			return err
		}
	}
	return nil
}

// Close releases the database handle.
func (w *SQLiteWriter) Close() error {
	return w.db.Close()
}
