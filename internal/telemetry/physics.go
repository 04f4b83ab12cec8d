package telemetry

import (
	"math"
	"math/rand"
	"time"
)

// Safety thresholds shared by throttling and classification.
const (
	TempWarnC  = 65.0
	TempCritC  = 80.0
	VibWarnMMS = 3.5
	VibCritMMS = 5.0

	// ThrottleStepRPM is subtracted from the speed target when a safety
	// threshold trips.
	ThrottleStepRPM = 200.0
)

const (
	loadDragCoeff = 0.02
	speedNoiseRPM = 50.0
)

// AmbientC returns the outside-air temperature for the hour of day: a
// sinusoid centered on 25°C peaking mid-afternoon, plus local noise.
func AmbientC(at time.Time, rng *rand.Rand) float64 {
	hour := float64(at.Hour())
	return 25 + 5*math.Sin((hour-6)*math.Pi/12) + uniform(rng, -1, 1)
}

// ShiftLoad returns the load fraction for the hour of day. The day shift
// (08:00-18:00) runs near capacity, nights idle low.
func ShiftLoad(at time.Time, rng *rand.Rand) float64 {
	if h := at.Hour(); h >= 8 && h <= 18 {
		return uniform(rng, 0.60, 0.95)
	}
	return uniform(rng, 0.10, 0.40)
}

// TargetSpeed computes the speed target under load slip with mechanical
// noise, clamped at zero.
func TargetSpeed(spec AssetSpec, load float64, rng *rand.Rand) float64 {
	target := spec.BaseRPM*(1-loadDragCoeff*load) + uniform(rng, -speedNoiseRPM, speedNoiseRPM)
	return math.Max(0, target)
}

// ThrottleSpeed applies the safety governor: one fixed reduction step when
// temperature or vibration exceeds its critical threshold, floored at zero.
// The second return reports whether the governor engaged.
func ThrottleSpeed(target, tempC, vibMMS float64) (float64, bool) {
	if tempC > TempCritC || vibMMS > VibCritMMS {
		return math.Max(0, target-ThrottleStepRPM), true
	}
	return target, false
}

// NextTemperature computes the running temperature from ambient heat soak,
// load heating and cooling obstruction.
func NextTemperature(spec AssetSpec, ambientC, load, clog float64, rng *rand.Rand) float64 {
	return ambientC + load*spec.HeatCoeff + clog + uniform(rng, -0.5, 0.5)
}

// NextVibration computes the vibration level from load and bearing wear.
func NextVibration(spec AssetSpec, load, wear float64, rng *rand.Rand) float64 {
	return spec.BaseVibMMS + 0.5*load + wear + uniform(rng, -0.05, 0.05)
}

// LooseFootSpike returns the transient jolt of a loose mounting: roughly one
// tick in ten adds 2-5 mm/s.
func LooseFootSpike(rng *rand.Rand) float64 {
	if rng.Float64() < 0.1 {
		return uniform(rng, 2.0, 5.0)
	}
	return 0
}

// DegradationLevel scores accumulated wear and clogging on a 0-100 scale.
func DegradationLevel(wear, clog float64) float64 {
	return clamp(wear*15+clog*2, 0, 100)
}

// ClampLoad bounds a load fraction into [0,1].
func ClampLoad(load float64) float64 {
	return clamp(load, 0, 1)
}

// Round2 rounds a reading to two decimal places for emission.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

func uniform(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func clamp(v, lo, hi float64) float64 {
	return math.Min(hi, math.Max(lo, v))
}
