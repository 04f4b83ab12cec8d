// Seeder bulk-generates historical telemetry
package sim

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"plantops-sim/internal/lifecycle"
	"plantops-sim/internal/logging"
	"plantops-sim/internal/telemetry"
)

// ErrInvalidConfig reports unusable seeding options.
var ErrInvalidConfig = errors.New("invalid seed configuration")

// SeedOptions configure one bulk seeding run.
type SeedOptions struct {
	AssetCount      int
	AssetType       string
	DurationDays    int
	IntervalMinutes int
	BatchSize       int
	// Seed fixes the random source; two runs with the same seed and
	// options produce identical datasets.
	Seed *int64
}

func knownAssetType(t string) bool {
	switch t {
	case telemetry.TypeConveyor, telemetry.TypeFan, telemetry.TypePump, telemetry.TypeGeneric, telemetry.TypeMixed:
		return true
	}
	return false
}

// Validate reports the first unusable option.
func (o SeedOptions) Validate() error {
	if o.AssetCount <= 0 {
		return fmt.Errorf("%w: asset count must be positive, got %d", ErrInvalidConfig, o.AssetCount)
	}
	if !knownAssetType(o.AssetType) {
		return fmt.Errorf("%w: unknown asset type %q", ErrInvalidConfig, o.AssetType)
	}
	if o.DurationDays <= 0 {
		return fmt.Errorf("%w: duration must be positive, got %d days", ErrInvalidConfig, o.DurationDays)
	}
	if o.IntervalMinutes <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %d minutes", ErrInvalidConfig, o.IntervalMinutes)
	}
	if o.BatchSize <= 0 {
		return fmt.Errorf("%w: batch size must be positive, got %d", ErrInvalidConfig, o.BatchSize)
	}
	return nil
}

// Seeder walks a synthetic fleet through a historical window and persists
// the telemetry in batches.
type Seeder struct {
	opts   SeedOptions
	writer BatchTelemetryWriter
	rand   *rand.Rand
	now    func() time.Time
}

// NewSeeder validates the options and prepares the run.
func NewSeeder(opts SeedOptions, writer BatchTelemetryWriter) (*Seeder, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	seed := time.Now().UnixNano()
	if opts.Seed != nil {
		seed = *opts.Seed
	}
	return &Seeder{
		opts:   opts,
		writer: writer,
		rand:   rand.New(rand.NewSource(seed)),
		now:    time.Now,
	}, nil
}

// Run generates the dataset: each asset's timeline is walked tick by tick
// from now minus the duration, in ascending asset order. Rows are buffered
// and flushed whenever the buffer reaches the batch size, plus once at the
// end. A failed flush aborts the run with nothing from that batch committed.
func (s *Seeder) Run(ctx context.Context) error {
	log := logging.FromContext(ctx)

	interval := time.Duration(s.opts.IntervalMinutes) * time.Minute
	ticks := s.opts.DurationDays * 24 * 60 / s.opts.IntervalMinutes
	start := s.now().Add(-time.Duration(s.opts.DurationDays) * 24 * time.Hour)
	timing := lifecycle.DefaultTiming(interval)

	log.Infow("seeding historical telemetry",
		"assets", s.opts.AssetCount,
		"asset_type", s.opts.AssetType,
		"days", s.opts.DurationDays,
		"interval_minutes", s.opts.IntervalMinutes,
		"rows_per_asset", ticks,
	)

	buffer := make([]telemetry.TelemetryRow, 0, s.opts.BatchSize)
	total := 0

	for i := 1; i <= s.opts.AssetCount; i++ {
		assetType := s.opts.AssetType
		if assetType == telemetry.TypeMixed {
			assetType = telemetry.MixedTypes[s.rand.Intn(len(telemetry.MixedTypes))]
		}
		spec := telemetry.SpecFor(telemetry.AssetID(i, assetType), assetType)
		motor := NewSimulatedMotor(spec, lifecycle.NewMachine(timing, s.rand), s.rand, false)
		motor.Start()

		clock := start
		for t := 0; t < ticks; t++ {
			if _, err := motor.Tick(ctx, clock); err != nil {
				return fmt.Errorf("tick asset %s: %w", spec.ID, err)
			}
			buffer = append(buffer, motor.Telemetry())
			clock = clock.Add(interval)

			if len(buffer) >= s.opts.BatchSize {
				if err := s.flush(ctx, &buffer); err != nil {
					return err
				}
			}
		}

		total += ticks
		if i%10 == 0 {
			log.Infow("seeding progress", "assets_done", i, "assets_total", s.opts.AssetCount, "rows", total)
		}
	}

	if err := s.flush(ctx, &buffer); err != nil {
		return err
	}
	log.Infow("seeding complete", "assets", s.opts.AssetCount, "rows", total)
	return nil
}

// flush writes the buffered rows as one batch and resets the buffer.
func (s *Seeder) flush(ctx context.Context, buffer *[]telemetry.TelemetryRow) error {
	if len(*buffer) == 0 {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.writer.WriteBatch(*buffer); err != nil {
		return fmt.Errorf("flush %d rows: %w", len(*buffer), err)
	}
	*buffer = (*buffer)[:0]
	return nil
}
