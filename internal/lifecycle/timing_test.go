package lifecycle

import (
	"math/rand"
	"testing"
	"time"
)

func TestDwellTicksConversion(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tm := DefaultTiming(time.Hour)

	for i := 0; i < 200; i++ {
		if got := tm.failingTicks(rng); got < 72 || got > 360 {
			t.Fatalf("failing dwell out of range: %d ticks", got)
		}
		if got := tm.repairTicks(rng); got < 4 || got > 12 {
			t.Fatalf("repair dwell out of range: %d ticks", got)
		}
		if got := tm.healthyTicks(rng); got < 480 || got > 1440 {
			t.Fatalf("healthy dwell out of range: %d ticks", got)
		}
		if got := tm.initialTicks(rng); got < 50 || got > 2000 {
			t.Fatalf("initial countdown out of range: %d ticks", got)
		}
	}
}

func TestDwellTicksFloorsAtOneTick(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tm := DefaultTiming(time.Minute)

	// A window shorter than the interval still costs one tick.
	for i := 0; i < 50; i++ {
		if got := tm.dwellTicks(rng, 10*time.Second, 30*time.Second); got != 1 {
			t.Fatalf("expected 1 tick for sub-interval window, got %d", got)
		}
	}

	// A zero interval cannot divide; the machine still advances.
	broken := Timing{}
	if got := broken.dwellTicks(rng, time.Hour, 2*time.Hour); got != 1 {
		t.Fatalf("expected 1 tick for zero interval, got %d", got)
	}
}
