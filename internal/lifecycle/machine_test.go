package lifecycle

import (
	"context"
	"math/rand"
	"testing"
	"time"
)

func testTiming() Timing {
	return Timing{
		Interval:        time.Minute,
		HealthyMin:      10 * time.Minute,
		HealthyMax:      20 * time.Minute,
		FailingMin:      5 * time.Minute,
		FailingMax:      8 * time.Minute,
		RepairMin:       2 * time.Minute,
		RepairMax:       4 * time.Minute,
		InitialMinTicks: 3,
		InitialMaxTicks: 5,
	}
}

// nextTransition ticks until the machine reports a transition.
func nextTransition(t *testing.T, m *Machine, maxTicks int) *Transition {
	t.Helper()
	for i := 0; i < maxTicks; i++ {
		tr, err := m.Tick(context.Background())
		if err != nil {
			t.Fatalf("tick failed: %v", err)
		}
		if tr != nil {
			return tr
		}
	}
	t.Fatalf("no transition within %d ticks", maxTicks)
	return nil
}

func TestMachineCycle(t *testing.T) {
	m := NewMachine(testTiming(), rand.New(rand.NewSource(7)))

	if m.Phase() != PhaseHealthy {
		t.Fatalf("expected initial phase HEALTHY, got %s", m.Phase())
	}
	if m.countdown < 3 || m.countdown > 5 {
		t.Fatalf("initial countdown out of range: %d", m.countdown)
	}

	degrade := nextTransition(t, m, 10)
	if degrade.Event != EventDegrade || degrade.From != PhaseHealthy || degrade.To != PhaseFailing {
		t.Fatalf("unexpected first transition: %+v", degrade)
	}
	if !validFault(degrade.Fault) {
		t.Fatalf("degrade assigned unknown fault %q", degrade.Fault)
	}

	service := nextTransition(t, m, 20)
	if service.Event != EventService || service.To != PhaseRepairing {
		t.Fatalf("unexpected second transition: %+v", service)
	}
	if service.Fault != degrade.Fault {
		t.Fatalf("fault changed between degrade and service: %q vs %q", degrade.Fault, service.Fault)
	}

	// Damage must hold still while under repair.
	wear, clog := m.Wear(), m.Clog()
	if _, err := m.Tick(context.Background()); err != nil {
		t.Fatalf("tick failed: %v", err)
	}
	if m.Phase() == PhaseRepairing && (m.Wear() != wear || m.Clog() != clog) {
		t.Fatalf("accumulators changed during repair: wear %f->%f clog %f->%f", wear, m.Wear(), clog, m.Clog())
	}

	restore := nextTransition(t, m, 10)
	if restore.Event != EventRestore || restore.To != PhaseHealthy {
		t.Fatalf("unexpected third transition: %+v", restore)
	}
	if restore.Fault != degrade.Fault {
		t.Fatalf("restore should report the repaired fault, got %q want %q", restore.Fault, degrade.Fault)
	}
	if m.Wear() != 0 || m.Clog() != 0 {
		t.Fatalf("expected accumulators reset to 0, got wear=%f clog=%f", m.Wear(), m.Clog())
	}
	if m.Fault() != "" {
		t.Fatalf("expected fault cleared after restore, got %q", m.Fault())
	}
}

func validFault(fault string) bool {
	for _, f := range faultPool {
		if f == fault {
			return true
		}
	}
	return false
}

func TestDegradeAlwaysAssignsFault(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for i := 0; i < 50; i++ {
		m := NewMachine(testTiming(), rng)
		tr := nextTransition(t, m, 10)
		if tr.Event != EventDegrade || !validFault(tr.Fault) {
			t.Fatalf("machine %d: bad degrade transition %+v", i, tr)
		}
		if m.Fault() != tr.Fault {
			t.Fatalf("machine %d: fault not stored: %q vs %q", i, m.Fault(), tr.Fault)
		}
	}
}

// slowFailTiming keeps a failing machine failing long enough to observe
// accumulation without a service transition interfering.
func slowFailTiming() Timing {
	tm := testTiming()
	tm.FailingMin = 1000 * time.Minute
	tm.FailingMax = 2000 * time.Minute
	return tm
}

func TestCoolingFailAccumulatesClogOnly(t *testing.T) {
	m := NewMachine(slowFailTiming(), rand.New(rand.NewSource(3)))
	if err := m.InjectFault(context.Background(), FaultCoolingFail); err != nil {
		t.Fatalf("inject failed: %v", err)
	}

	prev := 0.0
	for i := 0; i < 100; i++ {
		if _, err := m.Tick(context.Background()); err != nil {
			t.Fatalf("tick %d failed: %v", i, err)
		}
		if m.Clog() <= prev {
			t.Fatalf("tick %d: clog not strictly increasing: %f -> %f", i, prev, m.Clog())
		}
		prev = m.Clog()
	}
	if m.Wear() != 0 {
		t.Fatalf("expected wear to stay 0 under COOLING_FAIL, got %f", m.Wear())
	}
}

func TestBearingWearAccumulatesWearOnly(t *testing.T) {
	m := NewMachine(slowFailTiming(), rand.New(rand.NewSource(3)))
	if err := m.InjectFault(context.Background(), FaultBearingWear); err != nil {
		t.Fatalf("inject failed: %v", err)
	}

	prev := 0.0
	for i := 0; i < 100; i++ {
		if _, err := m.Tick(context.Background()); err != nil {
			t.Fatalf("tick %d failed: %v", i, err)
		}
		if m.Wear() <= prev {
			t.Fatalf("tick %d: wear not strictly increasing: %f -> %f", i, prev, m.Wear())
		}
		prev = m.Wear()
	}
	if m.Clog() != 0 {
		t.Fatalf("expected clog to stay 0 under BEARING_WEAR, got %f", m.Clog())
	}
}

func TestMultiAccumulatesBoth(t *testing.T) {
	m := NewMachine(slowFailTiming(), rand.New(rand.NewSource(3)))
	if err := m.InjectFault(context.Background(), FaultMulti); err != nil {
		t.Fatalf("inject failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		if _, err := m.Tick(context.Background()); err != nil {
			t.Fatalf("tick failed: %v", err)
		}
	}
	if m.Wear() <= 0 || m.Clog() <= 0 {
		t.Fatalf("expected both accumulators to grow, got wear=%f clog=%f", m.Wear(), m.Clog())
	}
}

func TestInjectFaultOnlyWhenHealthy(t *testing.T) {
	m := NewMachine(testTiming(), rand.New(rand.NewSource(5)))
	if err := m.InjectFault(context.Background(), FaultLooseFoot); err != nil {
		t.Fatalf("inject on healthy machine failed: %v", err)
	}
	if m.Phase() != PhaseFailing || m.Fault() != FaultLooseFoot {
		t.Fatalf("expected FAILING/LOOSE_FOOT, got %s/%s", m.Phase(), m.Fault())
	}
	if err := m.InjectFault(context.Background(), FaultMulti); err == nil {
		t.Fatalf("expected inject on failing machine to be rejected")
	}
}

func TestOverhaul(t *testing.T) {
	m := NewMachine(slowFailTiming(), rand.New(rand.NewSource(5)))
	if err := m.InjectFault(context.Background(), FaultMulti); err != nil {
		t.Fatalf("inject failed: %v", err)
	}
	for i := 0; i < 10; i++ {
		if _, err := m.Tick(context.Background()); err != nil {
			t.Fatalf("tick failed: %v", err)
		}
	}

	if err := m.Overhaul(context.Background()); err != nil {
		t.Fatalf("overhaul failed: %v", err)
	}
	if m.Phase() != PhaseHealthy || m.Wear() != 0 || m.Clog() != 0 || m.Fault() != "" {
		t.Fatalf("overhaul left residue: phase=%s wear=%f clog=%f fault=%q", m.Phase(), m.Wear(), m.Clog(), m.Fault())
	}

	// Overhauling a healthy machine is a no-op.
	if err := m.Overhaul(context.Background()); err != nil {
		t.Fatalf("overhaul on healthy machine failed: %v", err)
	}
	if m.Phase() != PhaseHealthy {
		t.Fatalf("expected HEALTHY, got %s", m.Phase())
	}
}

func TestNegativeCountdownNormalized(t *testing.T) {
	m := NewMachine(testTiming(), rand.New(rand.NewSource(5)))
	m.countdown = -5

	tr, err := m.Tick(context.Background())
	if err != nil {
		t.Fatalf("tick failed: %v", err)
	}
	if tr == nil || tr.Event != EventDegrade {
		t.Fatalf("expected immediate degrade after normalization, got %+v", tr)
	}
	if m.countdown < 1 {
		t.Fatalf("expected fresh countdown after transition, got %d", m.countdown)
	}
}
