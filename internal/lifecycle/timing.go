package lifecycle

import (
	"math/rand"
	"time"
)

// Timing holds the dwell windows for each phase, expressed in wall time and
// converted to ticks by the sampling interval.
type Timing struct {
	Interval time.Duration

	HealthyMin time.Duration
	HealthyMax time.Duration
	FailingMin time.Duration
	FailingMax time.Duration
	RepairMin  time.Duration
	RepairMax  time.Duration

	// First countdown in ticks, staggering the fleet so assets do not
	// degrade in lockstep.
	InitialMinTicks int
	InitialMaxTicks int
}

// DefaultTiming returns the production dwell windows for a sampling
// interval: assets run healthy for 20-60 days, fail over 3-15 days and
// spend 4-12 hours in repair.
func DefaultTiming(interval time.Duration) Timing {
	return Timing{
		Interval:        interval,
		HealthyMin:      20 * 24 * time.Hour,
		HealthyMax:      60 * 24 * time.Hour,
		FailingMin:      3 * 24 * time.Hour,
		FailingMax:      15 * 24 * time.Hour,
		RepairMin:       4 * time.Hour,
		RepairMax:       12 * time.Hour,
		InitialMinTicks: 50,
		InitialMaxTicks: 2000,
	}
}

// dwellTicks draws a tick count uniformly from a wall-time window, never
// less than one tick.
func (t Timing) dwellTicks(rng *rand.Rand, min, max time.Duration) int {
	if t.Interval <= 0 {
		return 1
	}
	lo := int(min / t.Interval)
	if lo < 1 {
		lo = 1
	}
	hi := int(max / t.Interval)
	if hi < lo {
		hi = lo
	}
	return lo + rng.Intn(hi-lo+1)
}

func (t Timing) initialTicks(rng *rand.Rand) int {
	lo, hi := t.InitialMinTicks, t.InitialMaxTicks
	if lo < 1 {
		lo = 1
	}
	if hi < lo {
		hi = lo
	}
	return lo + rng.Intn(hi-lo+1)
}

func (t Timing) healthyTicks(rng *rand.Rand) int {
	return t.dwellTicks(rng, t.HealthyMin, t.HealthyMax)
}

func (t Timing) failingTicks(rng *rand.Rand) int {
	return t.dwellTicks(rng, t.FailingMin, t.FailingMax)
}

func (t Timing) repairTicks(rng *rand.Rand) int {
	return t.dwellTicks(rng, t.RepairMin, t.RepairMax)
}
