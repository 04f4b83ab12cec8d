// Package lifecycle drives each asset through its wear-and-repair cycle.
package lifecycle

import (
	"context"
	"math/rand"

	"github.com/looplab/fsm"
)

// Lifecycle phases.
const (
	PhaseHealthy   = "HEALTHY"
	PhaseFailing   = "FAILING"
	PhaseRepairing = "REPAIRING"
)

// Event names, also used as the event_type of emitted lifecycle events.
const (
	EventDegrade = "degrade"
	EventService = "service"
	EventRestore = "restore"
)

// Fault types drawn when an asset starts failing.
const (
	FaultBearingWear = "BEARING_WEAR"
	FaultCoolingFail = "COOLING_FAIL"
	FaultLooseFoot   = "LOOSE_FOOT"
	FaultMulti       = "MULTI"
)

var faultPool = []string{FaultBearingWear, FaultCoolingFail, FaultLooseFoot, FaultMulti}

// Damage accumulation rates per failing tick.
const (
	wearRateMin = 0.002
	wearRateMax = 0.008
	clogRateMin = 0.05
	clogRateMax = 0.15
)

// Transition describes one phase change taken by Tick. For a restore it
// carries the fault that was repaired.
type Transition struct {
	Event string
	From  string
	To    string
	Fault string
}

// Machine drives one asset through HEALTHY -> FAILING -> REPAIRING and back.
// All state is unexported and only changes through the FSM, so a fault can
// never be set while healthy and accumulators cannot survive a restore.
type Machine struct {
	fsm    *fsm.FSM
	timing Timing
	rng    *rand.Rand

	countdown int
	fault     string
	wear      float64
	clog      float64
}

// NewMachine returns a healthy machine with a randomized first countdown.
// All randomness is drawn from rng, keeping runs reproducible under a seed.
func NewMachine(timing Timing, rng *rand.Rand) *Machine {
	m := &Machine{timing: timing, rng: rng}
	m.countdown = timing.initialTicks(rng)
	m.fsm = fsm.NewFSM(
		PhaseHealthy,
		fsm.Events{
			{Name: EventDegrade, Src: []string{PhaseHealthy}, Dst: PhaseFailing},
			{Name: EventService, Src: []string{PhaseFailing}, Dst: PhaseRepairing},
			{Name: EventRestore, Src: []string{PhaseRepairing}, Dst: PhaseHealthy},
		},
		fsm.Callbacks{
			"enter_" + PhaseFailing: func(_ context.Context, e *fsm.Event) {
				if len(e.Args) > 0 {
					m.fault = e.Args[0].(string)
				} else {
					m.fault = faultPool[m.rng.Intn(len(faultPool))]
				}
				m.countdown = m.timing.failingTicks(m.rng)
			},
			"enter_" + PhaseRepairing: func(_ context.Context, _ *fsm.Event) {
				m.countdown = m.timing.repairTicks(m.rng)
			},
			"enter_" + PhaseHealthy: func(_ context.Context, _ *fsm.Event) {
				m.wear = 0
				m.clog = 0
				m.fault = ""
				m.countdown = m.timing.healthyTicks(m.rng)
			},
		},
	)
	return m
}

// dueEvent returns the event that leaves the current phase.
func (m *Machine) dueEvent() string {
	switch m.fsm.Current() {
	case PhaseHealthy:
		return EventDegrade
	case PhaseFailing:
		return EventService
	default:
		return EventRestore
	}
}

// Tick advances the machine by one sampling interval: the countdown runs
// down, a due transition fires and damage accumulates while failing. The
// returned transition is nil on ordinary ticks.
func (m *Machine) Tick(ctx context.Context) (*Transition, error) {
	if m.countdown < 0 {
		m.countdown = 0
	}
	m.countdown--

	var tr *Transition
	if m.countdown <= 0 {
		from := m.fsm.Current()
		event := m.dueEvent()
		fault := m.fault
		if err := m.fsm.Event(ctx, event); err != nil {
			return nil, err
		}
		if m.fault != "" {
			fault = m.fault
		}
		tr = &Transition{Event: event, From: from, To: m.fsm.Current(), Fault: fault}
	}

	if m.fsm.Is(PhaseFailing) {
		m.accumulate()
	}
	return tr, nil
}

// accumulate applies fault-specific damage for one failing tick.
func (m *Machine) accumulate() {
	switch m.fault {
	case FaultBearingWear, FaultLooseFoot:
		m.wear += m.uniform(wearRateMin, wearRateMax)
	case FaultCoolingFail:
		m.clog += m.uniform(clogRateMin, clogRateMax)
	case FaultMulti:
		m.wear += m.uniform(wearRateMin, wearRateMax)
		m.clog += m.uniform(clogRateMin, clogRateMax)
	}
}

func (m *Machine) uniform(lo, hi float64) float64 {
	return lo + m.rng.Float64()*(hi-lo)
}

// InjectFault forces a healthy machine into FAILING with the given fault.
func (m *Machine) InjectFault(ctx context.Context, fault string) error {
	return m.fsm.Event(ctx, EventDegrade, fault)
}

// Overhaul walks the machine back to HEALTHY through the remaining phases,
// resetting accumulated damage. Backs manual maintenance.
func (m *Machine) Overhaul(ctx context.Context) error {
	if m.fsm.Is(PhaseFailing) {
		if err := m.fsm.Event(ctx, EventService); err != nil {
			return err
		}
	}
	if m.fsm.Is(PhaseRepairing) {
		if err := m.fsm.Event(ctx, EventRestore); err != nil {
			return err
		}
	}
	return nil
}

// Phase returns the current lifecycle phase.
func (m *Machine) Phase() string { return m.fsm.Current() }

// UnderRepair reports whether the asset is currently being repaired.
func (m *Machine) UnderRepair() bool { return m.fsm.Is(PhaseRepairing) }

// Fault returns the active fault, or "" while healthy.
func (m *Machine) Fault() string { return m.fault }

// Wear returns the accumulated bearing wear.
func (m *Machine) Wear() float64 { return m.wear }

// Clog returns the accumulated cooling obstruction.
func (m *Machine) Clog() float64 { return m.clog }
