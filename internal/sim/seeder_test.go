package sim

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"
	"time"

	"plantops-sim/internal/telemetry"
)

// memoryBatchWriter captures batches for validation.
type memoryBatchWriter struct {
	rows    []telemetry.TelemetryRow
	batches int
}

func (w *memoryBatchWriter) Write(row telemetry.TelemetryRow) error {
	w.rows = append(w.rows, row)
	return nil
}

func (w *memoryBatchWriter) WriteBatch(rows []telemetry.TelemetryRow) error {
	w.rows = append(w.rows, rows...)
	w.batches++
	return nil
}

type failingBatchWriter struct{ calls int }

func (w *failingBatchWriter) Write(telemetry.TelemetryRow) error { return nil }

func (w *failingBatchWriter) WriteBatch([]telemetry.TelemetryRow) error {
	w.calls++
	return errors.New("connection lost")
}

func seedPtr(v int64) *int64 { return &v }

func validSeedOptions() SeedOptions {
	return SeedOptions{
		AssetCount:      1,
		AssetType:       telemetry.TypeConveyor,
		DurationDays:    1,
		IntervalMinutes: 60,
		BatchSize:       5000,
		Seed:            seedPtr(42),
	}
}

func TestSeedOptionsValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*SeedOptions)
		valid  bool
	}{
		{"valid", func(*SeedOptions) {}, true},
		{"zero assets", func(o *SeedOptions) { o.AssetCount = 0 }, false},
		{"negative assets", func(o *SeedOptions) { o.AssetCount = -3 }, false},
		{"unknown type", func(o *SeedOptions) { o.AssetType = "TURBINE" }, false},
		{"zero duration", func(o *SeedOptions) { o.DurationDays = 0 }, false},
		{"zero interval", func(o *SeedOptions) { o.IntervalMinutes = 0 }, false},
		{"zero batch", func(o *SeedOptions) { o.BatchSize = 0 }, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := validSeedOptions()
			tc.mutate(&opts)
			err := opts.Validate()
			if tc.valid {
				if err != nil {
					t.Fatalf("expected valid options, got %v", err)
				}
				return
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Fatalf("expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}

func TestSeederRunOneDayHourly(t *testing.T) {
	w := &memoryBatchWriter{}
	s, err := NewSeeder(validSeedOptions(), w)
	if err != nil {
		t.Fatalf("NewSeeder: %v", err)
	}
	now := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return now }

	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(w.rows) != 24 {
		t.Fatalf("expected 24 rows for one day at 60min, got %d", len(w.rows))
	}
	if w.batches != 1 {
		t.Fatalf("expected a single flush, got %d", w.batches)
	}
	start := now.Add(-24 * time.Hour)
	for i, row := range w.rows {
		want := start.Add(time.Duration(i) * time.Hour)
		if !row.Timestamp.Equal(want) {
			t.Fatalf("row %d: timestamp %v, want %v", i, row.Timestamp, want)
		}
		if row.AssetID != "MTR-001-CON" {
			t.Fatalf("row %d: unexpected asset id %q", i, row.AssetID)
		}
	}
}

func TestSeederDeterministic(t *testing.T) {
	now := time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC)
	run := func() []telemetry.TelemetryRow {
		w := &memoryBatchWriter{}
		opts := validSeedOptions()
		opts.AssetCount = 3
		opts.AssetType = telemetry.TypeMixed
		s, err := NewSeeder(opts, w)
		if err != nil {
			t.Fatalf("NewSeeder: %v", err)
		}
		s.now = func() time.Time { return now }
		if err := s.Run(context.Background()); err != nil {
			t.Fatalf("Run: %v", err)
		}
		return w.rows
	}
	first := run()
	second := run()
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same seed produced different datasets")
	}
}

func TestSeederMixedDrawsFromPool(t *testing.T) {
	w := &memoryBatchWriter{}
	opts := validSeedOptions()
	opts.AssetCount = 12
	opts.AssetType = telemetry.TypeMixed
	s, err := NewSeeder(opts, w)
	if err != nil {
		t.Fatalf("NewSeeder: %v", err)
	}
	s.now = func() time.Time { return time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC) }
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	suffixes := map[string]bool{}
	for _, row := range w.rows {
		parts := strings.Split(row.AssetID, "-")
		if len(parts) != 3 {
			t.Fatalf("unexpected asset id %q", row.AssetID)
		}
		switch parts[2] {
		case "CON", "FAN", "PUM":
			suffixes[parts[2]] = true
		default:
			t.Fatalf("asset id %q not drawn from the mixed pool", row.AssetID)
		}
	}
	if len(suffixes) < 2 {
		t.Fatalf("expected a mix of types over 12 assets, got %v", suffixes)
	}
}

func TestSeederBatching(t *testing.T) {
	w := &memoryBatchWriter{}
	opts := validSeedOptions()
	opts.BatchSize = 10
	s, err := NewSeeder(opts, w)
	if err != nil {
		t.Fatalf("NewSeeder: %v", err)
	}
	s.now = func() time.Time { return time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC) }
	if err := s.Run(context.Background()); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(w.rows) != 24 {
		t.Fatalf("expected 24 rows, got %d", len(w.rows))
	}
	if w.batches != 3 {
		t.Fatalf("expected 3 flushes for 24 rows at batch size 10, got %d", w.batches)
	}
}

func TestSeederFlushFailureAborts(t *testing.T) {
	w := &failingBatchWriter{}
	opts := validSeedOptions()
	opts.BatchSize = 5
	s, err := NewSeeder(opts, w)
	if err != nil {
		t.Fatalf("NewSeeder: %v", err)
	}
	err = s.Run(context.Background())
	if err == nil {
		t.Fatalf("expected flush failure to abort the run")
	}
	if !strings.Contains(err.Error(), "flush") {
		t.Fatalf("unexpected error: %v", err)
	}
	if w.calls != 1 {
		t.Fatalf("expected the run to stop after the first failed flush, got %d calls", w.calls)
	}
}

func TestSeederContextCanceled(t *testing.T) {
	w := &memoryBatchWriter{}
	opts := validSeedOptions()
	opts.BatchSize = 5
	s, err := NewSeeder(opts, w)
	if err != nil {
		t.Fatalf("NewSeeder: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.Run(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(w.rows) != 0 {
		t.Fatalf("expected no rows after cancellation, got %d", len(w.rows))
	}
}

func TestSeederRejectsInvalidOptions(t *testing.T) {
	opts := validSeedOptions()
	opts.AssetType = "ROBOT"
	if _, err := NewSeeder(opts, &memoryBatchWriter{}); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
