package sim

import "plantops-sim/internal/telemetry"

// TelemetryWriter is an interface to support different output writers.
type TelemetryWriter interface {
	Write(telemetry.TelemetryRow) error
}

// Optional: writers can also support batch mode.
type batchWriter interface {
	WriteBatch([]telemetry.TelemetryRow) error
}

// BatchTelemetryWriter is the sink contract for bulk seeding: WriteBatch is
// atomic per batch, committing all rows or none.
type BatchTelemetryWriter interface {
	TelemetryWriter
	WriteBatch([]telemetry.TelemetryRow) error
}

// EventWriter handles lifecycle transition events.
type EventWriter interface {
	WriteEvent(telemetry.LifecycleEventRow) error
}

// Optional: writers may support batch mode for lifecycle events.
type batchEventWriter interface {
	WriteEvents([]telemetry.LifecycleEventRow) error
}
