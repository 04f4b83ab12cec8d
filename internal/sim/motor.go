package sim

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"plantops-sim/internal/lifecycle"
	"plantops-sim/internal/telemetry"
)

// Motor is the capability contract for anything producing motor telemetry:
// simulated today, real hardware behind the same interface later.
type Motor interface {
	Start()
	Stop()
	Telemetry() telemetry.TelemetryRow
}

// SimulatedMotor generates synthetic readings for one asset. Tick advances
// the simulation exactly one step; Telemetry is a pure read of the latest
// reading, so reading twice never advances the physics.
type SimulatedMotor struct {
	spec    telemetry.AssetSpec
	machine *lifecycle.Machine
	rng     *rand.Rand

	running  bool
	throttle bool
	pinned   *float64
	last     telemetry.TelemetryRow
}

// NewSimulatedMotor builds a motor around its lifecycle machine. Throttling
// is enabled for real-time fleets and disabled for bulk seeding.
func NewSimulatedMotor(spec telemetry.AssetSpec, machine *lifecycle.Machine, rng *rand.Rand, throttle bool) *SimulatedMotor {
	return &SimulatedMotor{spec: spec, machine: machine, rng: rng, throttle: throttle}
}

// ID returns the asset identifier.
func (m *SimulatedMotor) ID() string { return m.spec.ID }

// Spec returns the nameplate data.
func (m *SimulatedMotor) Spec() telemetry.AssetSpec { return m.spec }

// Start spins the motor up at its nameplate baselines. The first tick takes
// over from there.
func (m *SimulatedMotor) Start() {
	m.running = true
	load := 0.0
	if m.pinned != nil {
		load = *m.pinned
	}
	m.last = telemetry.TelemetryRow{
		AssetID:      m.spec.ID,
		Status:       telemetry.Classify(false, m.spec.BaseTempC, m.spec.BaseVibMMS),
		LoadPct:      telemetry.Round2(load * 100),
		SpeedRPM:     int(m.spec.BaseRPM),
		TemperatureC: m.spec.BaseTempC,
		VibrationMMS: m.spec.BaseVibMMS,
	}
}

// Stop halts the motor. The speed reading drops to zero and drivers skip the
// motor until restarted.
func (m *SimulatedMotor) Stop() {
	m.running = false
	m.last.SpeedRPM = 0
}

// Running reports whether the motor produces telemetry.
func (m *SimulatedMotor) Running() bool { return m.running }

// SetLoad pins the load fraction, clamped into [0,1]. A pinned load
// overrides the shift profile.
func (m *SimulatedMotor) SetLoad(load float64) {
	v := telemetry.ClampLoad(load)
	m.pinned = &v
}

// Tick advances the asset by one sampling interval stamped at now: the
// lifecycle machine steps first, then the physics produce the reading.
// The returned transition is nil on ordinary ticks.
func (m *SimulatedMotor) Tick(ctx context.Context, now time.Time) (*lifecycle.Transition, error) {
	tr, err := m.machine.Tick(ctx)
	if err != nil {
		return nil, err
	}

	ambient := telemetry.AmbientC(now, m.rng)
	underRepair := m.machine.UnderRepair()

	var load, tempC, vib, speed float64
	if underRepair {
		tempC = ambient
	} else {
		if m.pinned != nil {
			load = *m.pinned
		} else {
			load = telemetry.ShiftLoad(now, m.rng)
		}
		tempC = telemetry.NextTemperature(m.spec, ambient, load, m.machine.Clog(), m.rng)
		vib = telemetry.NextVibration(m.spec, load, m.machine.Wear(), m.rng)
		if m.machine.Phase() == lifecycle.PhaseFailing && m.machine.Fault() == lifecycle.FaultLooseFoot {
			vib += telemetry.LooseFootSpike(m.rng)
		}
		speed = telemetry.TargetSpeed(m.spec, load, m.rng)
		if m.throttle {
			speed, _ = telemetry.ThrottleSpeed(speed, tempC, vib)
		}
	}

	m.last = telemetry.TelemetryRow{
		AssetID:      m.spec.ID,
		Status:       telemetry.Classify(underRepair, tempC, vib),
		LoadPct:      telemetry.Round2(load * 100),
		SpeedRPM:     int(speed),
		TemperatureC: telemetry.Round2(tempC),
		VibrationMMS: telemetry.Round2(vib),
		Degradation:  telemetry.Round2(telemetry.DegradationLevel(m.machine.Wear(), m.machine.Clog())),
		Timestamp:    now.UTC(),
	}
	return tr, nil
}

// Telemetry returns the latest reading without advancing the simulation.
func (m *SimulatedMotor) Telemetry() telemetry.TelemetryRow { return m.last }

// PerformMaintenance overhauls a stopped motor: accumulated damage resets
// and the readings return to factory condition. Running motors must be
// stopped first.
func (m *SimulatedMotor) PerformMaintenance(ctx context.Context) error {
	if m.running {
		return fmt.Errorf("motor %s is running, stop it before maintenance", m.spec.ID)
	}
	if err := m.machine.Overhaul(ctx); err != nil {
		return err
	}
	m.last.TemperatureC = m.spec.BaseTempC
	m.last.VibrationMMS = m.spec.BaseVibMMS
	m.last.Degradation = 0
	return nil
}
