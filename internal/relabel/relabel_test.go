package relabel

import (
	"testing"

	"github.com/harborlight/harborlight/internal/model"
)

const testTable = `{
	"name": {
		"water_temperature": "Temperature, water",
		"WaterTemp": "Temperature, water",
		"wave_height": "Wave Height"
	},
	"description": {
		"temperature of the water": "Water temperature measured below the surface",
		"significant wave": "Significant wave height over the sampling window"
	}
}`

func TestCanonicalName(t *testing.T) {
	t.Parallel()

	table, err := Parse([]byte(testTable))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tests := []struct {
		raw  string
		want string
	}{
		{raw: "water_temperature", want: "Temperature, water"},
		{raw: "WaterTemp", want: "Temperature, water"},
		// Name matching is exact, not fuzzy.
		{raw: "watertemp", want: "watertemp"},
		{raw: "salinity", want: "salinity"},
	}

	for _, tc := range tests {
		if got := table.CanonicalName(tc.raw); got != tc.want {
			t.Errorf("CanonicalName(%q)=%q want %q", tc.raw, got, tc.want)
		}
	}
}

func TestCanonicalDescription(t *testing.T) {
	t.Parallel()

	table, err := Parse([]byte(testTable))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	tests := []struct {
		raw  string
		want string
	}{
		// Substring containment, case-insensitive.
		{raw: "The Temperature Of The Water near the buoy", want: "Water temperature measured below the surface"},
		{raw: "reports the SIGNIFICANT WAVE height", want: "Significant wave height over the sampling window"},
		{raw: "battery voltage of the box", want: "battery voltage of the box"},
	}

	for _, tc := range tests {
		if got := table.CanonicalDescription(tc.raw); got != tc.want {
			t.Errorf("CanonicalDescription(%q)=%q want %q", tc.raw, got, tc.want)
		}
	}
}

func TestApplyRewritesInPlace(t *testing.T) {
	t.Parallel()

	table, err := Parse([]byte(testTable))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	dev := model.CleanDevice{
		Datastreams: []model.CleanDatastream{
			{ObservedProperty: model.ObservedProperty{Name: "water_temperature", Description: "temperature of the water at 1m"}},
			{ObservedProperty: model.ObservedProperty{Name: "unknown", Description: "unknown"}},
		},
	}

	table.Apply(&dev)

	if got := dev.Datastreams[0].ObservedProperty.Name; got != "Temperature, water" {
		t.Errorf("name not canonicalized: %q", got)
	}
	if got := dev.Datastreams[0].ObservedProperty.Description; got != "Water temperature measured below the surface" {
		t.Errorf("description not canonicalized: %q", got)
	}
	if got := dev.Datastreams[1].ObservedProperty.Name; got != "unknown" {
		t.Errorf("fallback name changed: %q", got)
	}
}

func TestLoadPackagedTable(t *testing.T) {
	t.Parallel()

	table, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := table.CanonicalName("water_temperature"); got != "Temperature, water" {
		t.Errorf("packaged table: CanonicalName(water_temperature)=%q", got)
	}
}

func TestParseRejectsMalformedTable(t *testing.T) {
	t.Parallel()

	if _, err := Parse([]byte("{not json")); err == nil {
		t.Fatal("Parse accepted malformed JSON")
	}
}
