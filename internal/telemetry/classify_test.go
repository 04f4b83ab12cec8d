package telemetry

import "testing"

func TestClassify(t *testing.T) {
	cases := []struct {
		name        string
		underRepair bool
		temp, vib   float64
		want        string
	}{
		{"nominal", false, 55, 1.5, StatusNormal},
		{"warm", false, 66, 1.5, StatusWarning},
		{"shaking", false, 55, 3.6, StatusWarning},
		{"overheat", false, 81, 1.5, StatusCritical},
		{"severe vibration", false, 55, 5.1, StatusCritical},
		{"repair overrides critical", true, 90, 6.0, StatusMaintenance},
		{"warn boundary exclusive", false, 65, 3.5, StatusNormal},
		{"crit boundary exclusive", false, 80, 5.0, StatusWarning},
	}
	for _, c := range cases {
		if got := Classify(c.underRepair, c.temp, c.vib); got != c.want {
			t.Errorf("%s: Classify(%v, %f, %f)=%s, want %s", c.name, c.underRepair, c.temp, c.vib, got, c.want)
		}
	}
}

func TestClassifySeverityMonotonic(t *testing.T) {
	rank := map[string]int{
		StatusNormal:   0,
		StatusWarning:  1,
		StatusCritical: 2,
	}

	prev := 0
	for temp := 0.0; temp <= 100; temp += 2.5 {
		r := rank[Classify(false, temp, 0)]
		if r < prev {
			t.Fatalf("severity dropped at temp %f", temp)
		}
		prev = r
	}

	prev = 0
	for vib := 0.0; vib <= 8; vib += 0.25 {
		r := rank[Classify(false, 20, vib)]
		if r < prev {
			t.Fatalf("severity dropped at vibration %f", vib)
		}
		prev = r
	}
}
