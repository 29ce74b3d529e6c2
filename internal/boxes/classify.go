// Package boxes groups flat measurement rows by timestamp and classifies
// each group into the typed shape API consumers see.
package boxes

import (
	"fmt"
	"sort"
	"time"

	"github.com/harborlight/harborlight/internal/units"
)

// Canonical measurement-type names recognized by the classifier.
const (
	WaterTemperature  = "Temperature, water"
	WaveHeight        = "Wave Height"
	Tide              = "Tide"
	StandardDeviation = "Standard Deviation"
	BatteryVoltage    = "Battery Voltage"
	AirTemperature    = "Temperature, air"
	WindSpeed         = "Wind Speed"
	WindDirection     = "Wind Direction"
	GustSpeed         = "Gust Speed"
	GustDirection     = "Gust Direction"
	Humidity          = "Humidity"
	AirPressure       = "Air Pressure"
)

// Kind is the box shape of one simultaneous measurement group.
type Kind string

const (
	KindWaterTemperature Kind = "water_temperature"
	KindWater            Kind = "water"
	KindAir              Kind = "air"
)

// Row is one flat measurement as read from the store, raw or bucket-averaged.
type Row struct {
	LocationID int64
	SensorID   int64
	TypeID     int64
	TypeName   string
	UnitSymbol string
	Time       time.Time
	Value      float64
}

// Value is one converted measurement inside a box.
type Value struct {
	Type     string  `json:"type"`
	SensorID int64   `json:"sensor_id"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit"`
}

// Box is a classified group of simultaneous measurements at one location.
type Box struct {
	LocationID int64     `json:"location_id"`
	Time       time.Time `json:"time"`
	Kind       Kind      `json:"kind"`
	Values     []Value   `json:"values"`
}

// UnclassifiableError reports a measurement group matching none of the known
// box shapes. It must reach the caller, never be swallowed.
type UnclassifiableError struct {
	LocationID int64
	Time       time.Time
	TypeNames  []string
}

func (e *UnclassifiableError) Error() string {
	return fmt.Sprintf("measurement group at location %d, time %s matches no box shape: %v",
		e.LocationID, e.Time.Format(time.RFC3339), e.TypeNames)
}

var airNames = map[string]bool{
	AirTemperature: true,
	WindSpeed:      true,
	WindDirection:  true,
	GustSpeed:      true,
	GustDirection:  true,
	Humidity:       true,
	AirPressure:    true,
}

var waterExtraNames = map[string]bool{
	WaveHeight:        true,
	Tide:              true,
	StandardDeviation: true,
	BatteryVoltage:    true,
}

// classRules is the ordered shape policy: the first predicate that fires
// decides the kind. Order matters because the shapes overlap on water
// temperature.
var classRules = []struct {
	kind  Kind
	match func(names map[string]bool) bool
}{
	{kind: KindAir, match: anyOf(airNames)},
	{kind: KindWater, match: anyOf(waterExtraNames)},
	{kind: KindWaterTemperature, match: func(names map[string]bool) bool { return names[WaterTemperature] }},
}

func anyOf(known map[string]bool) func(map[string]bool) bool {
	return func(names map[string]bool) bool {
		for n := range names {
			if known[n] {
				return true
			}
		}
		return false
	}
}

// Classify groups rows by (location, timestamp), classifies each group and
// converts every value into the requested target unit system. Rows within a
// group whose type the shape does not recognize are kept as-is; a group with
// no recognized types at all is an UnclassifiableError.
func Classify(rows []Row, targetSystem string) ([]Box, error) {
	type groupKey struct {
		locationID int64
		ts         int64
	}

	groups := make(map[groupKey][]Row)
	order := make([]groupKey, 0)
	for _, r := range rows {
		key := groupKey{locationID: r.LocationID, ts: r.Time.UnixNano()}
		if _, seen := groups[key]; !seen {
			order = append(order, key)
		}
		groups[key] = append(groups[key], r)
	}

	out := make([]Box, 0, len(order))
	for _, key := range order {
		group := groups[key]

		names := make(map[string]bool, len(group))
		for _, r := range group {
			names[r.TypeName] = true
		}

		kind, ok := classify(names)
		if !ok {
			typeNames := make([]string, 0, len(names))
			for n := range names {
				typeNames = append(typeNames, n)
			}
			sort.Strings(typeNames)
			return nil, &UnclassifiableError{
				LocationID: key.locationID,
				Time:       group[0].Time,
				TypeNames:  typeNames,
			}
		}

		box := Box{
			LocationID: key.locationID,
			Time:       group[0].Time,
			Kind:       kind,
			Values:     make([]Value, 0, len(group)),
		}
		for _, r := range group {
			value, unit := units.Convert(r.Value, r.TypeName, r.UnitSymbol, targetSystem)
			box.Values = append(box.Values, Value{
				Type:     r.TypeName,
				SensorID: r.SensorID,
				Value:    value,
				Unit:     unit,
			})
		}
		out = append(out, box)
	}

	return out, nil
}

func classify(names map[string]bool) (Kind, bool) {
	for _, rule := range classRules {
		if rule.match(names) {
			return rule.kind, true
		}
	}
	return "", false
}
