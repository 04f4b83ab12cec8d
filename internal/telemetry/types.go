// Telemetry structs with greptime tags
package telemetry

import (
	"fmt"
	"os"
	"time"
)

// Asset type constants.
const (
	TypeConveyor = "CONVEYOR"
	TypeFan      = "FAN"
	TypePump     = "PUMP"
	TypeGeneric  = "GENERIC"
	// TypeMixed is only valid as a seeding option; each generated asset
	// gets a concrete type drawn from MixedTypes.
	TypeMixed = "MIXED"
)

// MixedTypes is the pool a MIXED seeding run draws concrete types from.
var MixedTypes = []string{TypeConveyor, TypeFan, TypePump}

// AssetSpec holds the immutable nameplate data for one asset.
type AssetSpec struct {
	ID         string
	Type       string
	BaseRPM    float64
	BaseTempC  float64
	BaseVibMMS float64
	HeatCoeff  float64
}

// Nameplate baselines per asset type.
var baselines = map[string]AssetSpec{
	TypeConveyor: {BaseRPM: 1750, BaseTempC: 55.0, BaseVibMMS: 1.2, HeatCoeff: 15.0},
	TypeFan:      {BaseRPM: 3600, BaseTempC: 48.0, BaseVibMMS: 2.5, HeatCoeff: 10.0},
	TypePump:     {BaseRPM: 1200, BaseTempC: 42.0, BaseVibMMS: 0.8, HeatCoeff: 12.0},
	TypeGeneric:  {BaseRPM: 1800, BaseTempC: 50.0, BaseVibMMS: 1.0, HeatCoeff: 10.0},
}

// SpecFor returns the nameplate spec for an asset. Unknown types get the
// GENERIC baselines.
func SpecFor(id, assetType string) AssetSpec {
	spec, ok := baselines[assetType]
	if !ok {
		spec = baselines[TypeGeneric]
	}
	spec.ID = id
	spec.Type = assetType
	return spec
}

// AssetID builds the deterministic asset identifier, e.g. "MTR-001-CON".
func AssetID(index int, assetType string) string {
	return fmt.Sprintf("MTR-%03d-%s", index, assetType[:3])
}

// TelemetryRow represents one telemetry record for the sinks.
type TelemetryRow struct {
	AssetID      string    `json:"asset_id"`          // TAG
	Status       string    `json:"status"`            // FIELD
	LoadPct      float64   `json:"load_pct"`          // FIELD
	SpeedRPM     int       `json:"speed_rpm"`         // FIELD
	TemperatureC float64   `json:"temperature_c"`     // FIELD
	VibrationMMS float64   `json:"vibration_mm_s"`    // FIELD
	Degradation  float64   `json:"degradation_level"` // FIELD
	Timestamp    time.Time `json:"ts"`                // TIME INDEX
}

// TelemetryTableName holds the table name used when writing telemetry.
// It defaults to "asset_telemetry" but can be overridden via the
// GREPTIMEDB_TABLE environment variable.
var TelemetryTableName = func() string {
	if env := os.Getenv("GREPTIMEDB_TABLE"); env != "" {
		return env
	}
	return "asset_telemetry"
}()

func (TelemetryRow) TableName() string {
	return TelemetryTableName
}

// LifecycleEventRow represents one lifecycle transition of an asset.
type LifecycleEventRow struct {
	EventID   string    `json:"event_id"`
	AssetID   string    `json:"asset_id"`
	EventType string    `json:"event_type"`
	FromState string    `json:"from_state"`
	ToState   string    `json:"to_state"`
	Fault     string    `json:"fault,omitempty"`
	Timestamp time.Time `json:"ts"`
}

// EventTableName holds the table name used when writing lifecycle events.
// It defaults to "lifecycle_events" but can be overridden via the
// LIFECYCLE_EVENT_TABLE environment variable.
var EventTableName = func() string {
	if env := os.Getenv("LIFECYCLE_EVENT_TABLE"); env != "" {
		return env
	}
	return "lifecycle_events"
}()

func (LifecycleEventRow) TableName() string {
	return EventTableName
}
