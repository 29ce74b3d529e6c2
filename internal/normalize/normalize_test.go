package normalize

import (
	"testing"
	"time"

	"github.com/harborlight/harborlight/internal/sensorthings"
)

func obs(ts string, result any) sensorthings.Observation {
	return sensorthings.Observation{PhenomenonTime: ts, Result: result}
}

func stream(name string, observations ...sensorthings.Observation) sensorthings.Datastream {
	return sensorthings.Datastream{
		Name:              name,
		UnitOfMeasurement: sensorthings.UnitOfMeasurement{Name: "degree Celsius", Symbol: "°C"},
		ObservedProperty:  sensorthings.ObservedProperty{Name: name},
		Observations:      observations,
	}
}

func TestDeviceDropsNonNumericStreams(t *testing.T) {
	t.Parallel()

	raw := sensorthings.Thing{
		ID:   42,
		Name: "HL-Box 42",
		Datastreams: []sensorthings.Datastream{
			stream("water_temperature", obs("2026-08-27T10:00:00Z", 12.3)),
			stream("status", obs("2026-08-27T10:00:00Z", "OK")),
			stream("firmware", obs("2026-08-27T10:00:00Z", "v2.1-beta")),
			stream("tide_level", obs("2026-08-27T10:00:00Z", "148.5")),
		},
	}

	dev := Device(raw)

	// Two streams carry nothing numeric; exactly they must vanish.
	if len(dev.Datastreams) != 2 {
		t.Fatalf("got %d datastreams, want 2", len(dev.Datastreams))
	}
	for _, ds := range dev.Datastreams {
		if len(ds.Observations) == 0 {
			t.Errorf("datastream %q kept with zero observations", ds.Name)
		}
	}
	if dev.Datastreams[1].Observations[0].Value != 148.5 {
		t.Errorf("numeric string not parsed: got %v", dev.Datastreams[1].Observations[0].Value)
	}
}

func TestDeviceDropsUnparseableObservations(t *testing.T) {
	t.Parallel()

	raw := sensorthings.Thing{
		ID: 7,
		Datastreams: []sensorthings.Datastream{
			stream("water_temperature",
				obs("2026-08-27T10:00:00Z", 11.0),
				obs("not-a-time", 12.0),
				obs("2026-08-27T10:10:00Z", "garbage"),
				obs("2026-08-27T10:05:00Z/2026-08-27T10:06:00Z", 13.0),
			),
		},
	}

	dev := Device(raw)
	if len(dev.Datastreams) != 1 {
		t.Fatalf("got %d datastreams, want 1", len(dev.Datastreams))
	}
	got := dev.Datastreams[0].Observations
	if len(got) != 2 {
		t.Fatalf("got %d observations, want 2", len(got))
	}
	// The interval form keeps its start instant.
	wantStart := time.Date(2026, 8, 27, 10, 5, 0, 0, time.UTC)
	if !got[1].Time.Equal(wantStart) {
		t.Errorf("interval observation time=%s want %s", got[1].Time, wantStart)
	}
}

func TestDeviceLocationDefaults(t *testing.T) {
	t.Parallel()

	t.Run("first location wins", func(t *testing.T) {
		t.Parallel()
		raw := sensorthings.Thing{ID: 1}
		first := sensorthings.Location{}
		first.Location.Type = "Point"
		first.Location.Coordinates = []float64{10.69, 53.87}
		second := sensorthings.Location{}
		second.Location.Coordinates = []float64{0.1, 0.2}
		raw.Locations = []sensorthings.Location{first, second}

		dev := Device(raw)
		if dev.Longitude != 10.69 || dev.Latitude != 53.87 {
			t.Fatalf("got (%v,%v), want (10.69,53.87)", dev.Longitude, dev.Latitude)
		}
	})

	t.Run("no location means origin", func(t *testing.T) {
		t.Parallel()
		dev := Device(sensorthings.Thing{ID: 2})
		if dev.Longitude != 0 || dev.Latitude != 0 {
			t.Fatalf("got (%v,%v), want (0,0)", dev.Longitude, dev.Latitude)
		}
	})
}

func TestNumericResult(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result any
		want   float64
		ok     bool
	}{
		{name: "float", result: 4.2, want: 4.2, ok: true},
		{name: "numeric string", result: " 4.2 ", want: 4.2, ok: true},
		{name: "text", result: "off", ok: false},
		{name: "bool", result: true, ok: false},
		{name: "nil", result: nil, ok: false},
		{name: "nan string", result: "NaN", ok: false},
		{name: "infinity string", result: "+Inf", ok: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := numericResult(tc.result)
			if ok != tc.ok {
				t.Fatalf("numericResult(%v) ok=%t want %t", tc.result, ok, tc.ok)
			}
			if ok && got != tc.want {
				t.Fatalf("numericResult(%v)=%v want %v", tc.result, got, tc.want)
			}
		})
	}
}
