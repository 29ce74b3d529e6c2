package sensorthings

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

const thingPayload = `{
	"@iot.id": 42,
	"name": "HL-Box 42",
	"description": "Measurement box at pier 3",
	"Locations": [{"location": {"type": "Point", "coordinates": [10.69, 53.87]}}],
	"Datastreams": [{
		"name": "Water temperature",
		"description": "temperature of the water",
		"unitOfMeasurement": {"name": "degree Celsius", "symbol": "°C", "definition": "ucum:Cel"},
		"Sensor": {"name": "SBE 56", "description": "thermometer"},
		"ObservedProperty": {"name": "water_temperature", "description": "temperature of the water"},
		"Observations": [{"phenomenonTime": "2026-08-27T10:00:00Z", "result": 12.3}]
	}]
}`

func TestFetchThing(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.URL.Path, "/Things(42)") {
			t.Errorf("path=%q want /Things(42)", r.URL.Path)
		}
		if expand := r.URL.Query().Get("$expand"); !strings.Contains(expand, "Observations($orderby=phenomenonTime desc") {
			t.Errorf("$expand=%q misses the observation ordering", expand)
		}
		w.Write([]byte(thingPayload))
	}))
	defer srv.Close()

	thing, err := NewClient(srv.URL, srv.Client()).FetchThing(context.Background(), 42)
	if err != nil {
		t.Fatalf("FetchThing: %v", err)
	}

	if thing.ID != 42 || thing.Name != "HL-Box 42" {
		t.Fatalf("thing = %+v", thing)
	}
	if len(thing.Locations) != 1 || thing.Locations[0].Location.Coordinates[1] != 53.87 {
		t.Fatalf("locations = %+v", thing.Locations)
	}
	if len(thing.Datastreams) != 1 {
		t.Fatalf("datastreams = %+v", thing.Datastreams)
	}
	ds := thing.Datastreams[0]
	if ds.ObservedProperty.Name != "water_temperature" || ds.UnitOfMeasurement.Symbol != "°C" {
		t.Fatalf("datastream = %+v", ds)
	}
	if len(ds.Observations) != 1 || ds.Observations[0].Result != 12.3 {
		t.Fatalf("observations = %+v", ds.Observations)
	}
}

func TestFetchCatalog(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/Things" {
			t.Errorf("path=%q want /Things", r.URL.Path)
		}
		w.Write([]byte(`{"value": [
			{"@iot.id": 1, "name": "HL-Box 1", "description": "box"},
			{"@iot.id": 2, "name": "MV Anneliese", "description": "vessel"}
		]}`))
	}))
	defer srv.Close()

	catalog, err := NewClient(srv.URL, srv.Client()).FetchCatalog(context.Background())
	if err != nil {
		t.Fatalf("FetchCatalog: %v", err)
	}
	if len(catalog) != 2 || catalog[0].ID != 1 || catalog[1].Name != "MV Anneliese" {
		t.Fatalf("catalog = %+v", catalog)
	}
}

func TestFetchThingErrorStatus(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	if _, err := NewClient(srv.URL, srv.Client()).FetchThing(context.Background(), 99); err == nil {
		t.Fatal("FetchThing accepted a 404 response")
	}
}
