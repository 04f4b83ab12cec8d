// Simulator orchestrating assets and telemetry ticks
package sim

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"plantops-sim/internal/config"
	"plantops-sim/internal/lifecycle"
	"plantops-sim/internal/logging"
	"plantops-sim/internal/telemetry"

	"github.com/google/uuid"
)

// Simulator drives a live fleet tick by tick. Every reading is written as
// it is produced; lifecycle transitions go to an optional event writer.
type Simulator struct {
	siteID       string
	motors       []*SimulatedMotor
	writer       TelemetryWriter
	eventWriter  EventWriter
	tickInterval time.Duration
	rand         *rand.Rand
	now          func() time.Time
	mu           sync.Mutex
}

// NewSimulator initializes the fleet from config. Real-time motors throttle
// on safety thresholds; a configured load pins the motor instead of the
// shift profile.
func NewSimulator(siteID string, cfg *config.SimulationConfig, writer TelemetryWriter, eventWriter EventWriter, tickInterval time.Duration) *Simulator {
	s := &Simulator{
		siteID:       siteID,
		writer:       writer,
		eventWriter:  eventWriter,
		tickInterval: tickInterval,
		rand:         rand.New(rand.NewSource(time.Now().UnixNano())),
		now:          time.Now,
	}

	timing := lifecycle.DefaultTiming(tickInterval)
	for _, a := range cfg.Assets {
		spec := telemetry.SpecFor(a.ID, a.Type)
		motor := NewSimulatedMotor(spec, lifecycle.NewMachine(timing, s.rand), s.rand, true)
		if a.Load != nil {
			motor.SetLoad(*a.Load)
		}
		motor.Start()
		s.motors = append(s.motors, motor)
	}
	return s
}

// Run starts the simulation loop and stops when the context is done.
func (s *Simulator) Run(ctx context.Context) {
	log := logging.FromContext(ctx)
	log.Infow("starting simulator", "site", s.siteID, "assets", len(s.motors), "tick_interval", s.tickInterval)
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.tick(ctx)
		case <-ctx.Done():
			log.Infow("stopping simulator")
			return
		}
	}
}

// tick advances every running motor once and writes readings and events.
// Write failures are logged and the stream continues.
func (s *Simulator) tick(ctx context.Context) {
	log := logging.FromContext(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	var batch []telemetry.TelemetryRow
	var events []telemetry.LifecycleEventRow

	for _, motor := range s.motors {
		if !motor.Running() {
			continue
		}
		tr, err := motor.Tick(ctx, now)
		if err != nil {
			log.Errorw("tick failed", "asset_id", motor.ID(), "err", err)
			continue
		}
		batch = append(batch, motor.Telemetry())
		if tr != nil {
			events = append(events, s.eventRow(motor.ID(), tr, now))
			log.Infow("lifecycle transition",
				"asset_id", motor.ID(), "event", tr.Event, "from", tr.From, "to", tr.To, "fault", tr.Fault)
		}
	}

	// Batch support if writer implements WriteBatch
	if bw, ok := s.writer.(batchWriter); ok {
		if err := bw.WriteBatch(batch); err != nil {
			log.Errorw("batch write failed", "err", err)
		}
	} else {
		for _, row := range batch {
			if err := s.writer.Write(row); err != nil {
				log.Errorw("write failed", "asset_id", row.AssetID, "err", err)
			}
		}
	}

	if len(events) > 0 && s.eventWriter != nil {
		if bw, ok := s.eventWriter.(batchEventWriter); ok {
			if err := bw.WriteEvents(events); err != nil {
				log.Errorw("event batch write failed", "err", err)
			}
		} else {
			for _, e := range events {
				if err := s.eventWriter.WriteEvent(e); err != nil {
					log.Errorw("event write failed", "asset_id", e.AssetID, "err", err)
				}
			}
		}
	}
}

func (s *Simulator) eventRow(assetID string, tr *lifecycle.Transition, at time.Time) telemetry.LifecycleEventRow {
	return telemetry.LifecycleEventRow{
		EventID:   uuid.NewString(),
		AssetID:   assetID,
		EventType: tr.Event,
		FromState: tr.From,
		ToState:   tr.To,
		Fault:     tr.Fault,
		Timestamp: at.UTC(),
	}
}

// AssetHealth summarizes the fleet by status label.
type AssetHealth struct {
	Total       int
	Normal      int
	Warning     int
	Critical    int
	Maintenance int
}

// Health aggregates the latest reading of every asset.
func (s *Simulator) Health() AssetHealth {
	s.mu.Lock()
	defer s.mu.Unlock()

	var h AssetHealth
	for _, m := range s.motors {
		h.Total++
		switch m.Telemetry().Status {
		case telemetry.StatusNormal:
			h.Normal++
		case telemetry.StatusWarning:
			h.Warning++
		case telemetry.StatusCritical:
			h.Critical++
		case telemetry.StatusMaintenance:
			h.Maintenance++
		}
	}
	return h
}

// TelemetrySnapshot returns the latest reading per asset without advancing
// the simulation.
func (s *Simulator) TelemetrySnapshot() []telemetry.TelemetryRow {
	s.mu.Lock()
	defer s.mu.Unlock()

	rows := make([]telemetry.TelemetryRow, 0, len(s.motors))
	for _, m := range s.motors {
		rows = append(rows, m.Telemetry())
	}
	return rows
}

// InjectFault forces a healthy asset into FAILING with the given fault and
// records the transition in the event stream.
func (s *Simulator) InjectFault(ctx context.Context, assetID, fault string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, m := range s.motors {
		if m.ID() != assetID {
			continue
		}
		if err := m.machine.InjectFault(ctx, fault); err != nil {
			return err
		}
		if s.eventWriter != nil {
			tr := &lifecycle.Transition{
				Event: lifecycle.EventDegrade,
				From:  lifecycle.PhaseHealthy,
				To:    lifecycle.PhaseFailing,
				Fault: fault,
			}
			if err := s.eventWriter.WriteEvent(s.eventRow(assetID, tr, s.now())); err != nil {
				logging.FromContext(ctx).Errorw("event write failed", "asset_id", assetID, "err", err)
			}
		}
		return nil
	}
	return fmt.Errorf("unknown asset %q", assetID)
}
