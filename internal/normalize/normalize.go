package normalize

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/harborlight/harborlight/internal/model"
	"github.com/harborlight/harborlight/internal/sensorthings"
)

// Device converts a raw thing payload into the clean domain model. Every
// non-numeric observation is dropped; a datastream left without observations
// is dropped entirely. The device location comes from the first raw location
// entry and defaults to (0,0) when the device reports none.
func Device(raw sensorthings.Thing) model.CleanDevice {
	dev := model.CleanDevice{
		ID:          raw.ID,
		Name:        raw.Name,
		Description: raw.Description,
	}

	if len(raw.Locations) > 0 {
		coords := raw.Locations[0].Location.Coordinates
		if len(coords) >= 2 {
			dev.Longitude = coords[0]
			dev.Latitude = coords[1]
		}
	}

	for _, ds := range raw.Datastreams {
		obs := make([]model.CleanObservation, 0, len(ds.Observations))
		for _, o := range ds.Observations {
			value, ok := numericResult(o.Result)
			if !ok {
				continue
			}
			ts, err := parsePhenomenonTime(o.PhenomenonTime)
			if err != nil {
				continue
			}
			obs = append(obs, model.CleanObservation{Time: ts, Value: value})
		}
		if len(obs) == 0 {
			continue
		}

		dev.Datastreams = append(dev.Datastreams, model.CleanDatastream{
			Name:           ds.Name,
			Description:    ds.Description,
			UnitName:       ds.UnitOfMeasurement.Name,
			UnitSymbol:     ds.UnitOfMeasurement.Symbol,
			UnitDefinition: ds.UnitOfMeasurement.Definition,
			ObservedProperty: model.ObservedProperty{
				Name:        ds.ObservedProperty.Name,
				Description: ds.ObservedProperty.Description,
			},
			Observations: obs,
		})
	}

	return dev
}

// numericResult reports whether a raw observation result is a finite number.
func numericResult(result any) (float64, bool) {
	switch v := result.(type) {
	case float64:
		return v, !math.IsNaN(v) && !math.IsInf(v, 0)
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// parsePhenomenonTime handles both instants and "start/end" intervals; for
// an interval the start instant is used.
func parsePhenomenonTime(s string) (time.Time, error) {
	if i := strings.IndexByte(s, '/'); i >= 0 {
		s = s[:i]
	}
	return time.Parse(time.RFC3339, s)
}
