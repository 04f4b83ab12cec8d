package telemetry

import "testing"

func TestSpecFor(t *testing.T) {
	cases := map[string]struct {
		rpm  float64
		heat float64
	}{
		TypeConveyor: {1750, 15.0},
		TypeFan:      {3600, 10.0},
		TypePump:     {1200, 12.0},
		TypeGeneric:  {1800, 10.0},
		"UNKNOWN":    {1800, 10.0},
	}
	for typ, want := range cases {
		spec := SpecFor("MTR-001-TST", typ)
		if spec.BaseRPM != want.rpm || spec.HeatCoeff != want.heat {
			t.Errorf("SpecFor(%s): got rpm=%f heat=%f, want rpm=%f heat=%f",
				typ, spec.BaseRPM, spec.HeatCoeff, want.rpm, want.heat)
		}
		if spec.ID != "MTR-001-TST" {
			t.Errorf("SpecFor(%s): expected id to carry over, got %s", typ, spec.ID)
		}
		if spec.Type != typ {
			t.Errorf("SpecFor(%s): expected type to carry over, got %s", typ, spec.Type)
		}
	}
}

func TestAssetID(t *testing.T) {
	cases := []struct {
		index int
		typ   string
		want  string
	}{
		{1, TypeConveyor, "MTR-001-CON"},
		{12, TypeFan, "MTR-012-FAN"},
		{345, TypePump, "MTR-345-PUM"},
	}
	for _, c := range cases {
		if got := AssetID(c.index, c.typ); got != c.want {
			t.Errorf("AssetID(%d, %s)=%s, want %s", c.index, c.typ, got, c.want)
		}
	}
}

func TestTelemetryRowTableName(t *testing.T) {
	orig := TelemetryTableName
	TelemetryTableName = "custom"
	defer func() { TelemetryTableName = orig }()
	if (TelemetryRow{}).TableName() != "custom" {
		t.Errorf("expected custom table name, got %s", (TelemetryRow{}).TableName())
	}
}

func TestEventRowTableName(t *testing.T) {
	orig := EventTableName
	EventTableName = "custom_events"
	defer func() { EventTableName = orig }()
	if (LifecycleEventRow{}).TableName() != "custom_events" {
		t.Errorf("expected custom_events table name, got %s", (LifecycleEventRow{}).TableName())
	}
}
