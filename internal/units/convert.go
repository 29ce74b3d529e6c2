// Package units converts raw measurement values between unit systems.
// Conversions are data: a fixed table keyed by (source, target) symbol, so
// supporting a new unit is a table entry, not a new branch.
package units

import (
	"math"
	"regexp"
	"strings"
)

type pair struct {
	from string
	to   string
}

var conversions = map[pair]func(float64) float64{
	{"°C", "°F"}:    func(v float64) float64 { return v*1.8 + 32 },
	{"°C", "K"}:     func(v float64) float64 { return v + 273.15 },
	{"m/s", "km/h"}: func(v float64) float64 { return v * 3.6 },
	{"m/s", "mph"}:  func(v float64) float64 { return v / 0.44704 },
	{"m/s", "kn"}:   func(v float64) float64 { return v * 1.943844 },
	{"m/s", "bft"}:  beaufort,
	{"deg", "rad"}:  func(v float64) float64 { return v * (math.Pi / 180) },
	{"hPa", "inHg"}: func(v float64) float64 { return v * 0.02953 },
	{"hPa", "psi"}:  func(v float64) float64 { return v * 0.0145037738 },
	{"cm", "in"}:    func(v float64) float64 { return v / 2.54 },
	{"cm", "m"}:     func(v float64) float64 { return v / 100 },
}

// beaufortBreakpoints are the upper wind-speed bounds (m/s, exclusive) of
// Beaufort scale values 0..11; anything above the last bound is force 12.
var beaufortBreakpoints = [...]float64{0.3, 1.5, 3.3, 5.5, 8.0, 10.8, 13.9, 17.2, 20.7, 24.4, 28.5, 32.6}

func beaufort(speed float64) float64 {
	for force, bound := range beaufortBreakpoints {
		if speed < bound {
			return float64(force)
		}
	}
	return 12
}

// Named target systems map a source unit onto the unit that system wants.
// Units absent from a system's map pass through unchanged.
var systems = map[string]map[string]string{
	"metric": {
		"m/s": "km/h",
	},
	"imperial": {
		"°C":  "°F",
		"m/s": "mph",
		"hPa": "inHg",
		"cm":  "in",
	},
	"shipping": {
		"m/s": "kn",
	},
}

// customPair matches one "measurement key: unit" entry of a custom target
// system string, e.g. "Wind Speed: bft, Temperature, water: K".
var customPair = regexp.MustCompile(`([^:,]+(?:,[^:,]+)*?)\s*:\s*([^\s,;]+)`)

// Convert transforms a raw (value, unit) pair into the target system.
// targetSystem is "", "metric", "imperial", "shipping", or a custom string of
// "measurementKey: unitSymbol" entries applied per measurement name. Any
// unmapped (source, target) combination passes the value through with the
// source unit retained.
func Convert(value float64, measurementName, sourceSymbol, targetSystem string) (float64, string) {
	target := targetUnit(measurementName, sourceSymbol, targetSystem)
	if target == "" || target == sourceSymbol {
		return value, sourceSymbol
	}

	fn, ok := conversions[pair{from: sourceSymbol, to: target}]
	if !ok {
		return value, sourceSymbol
	}
	return fn(value), target
}

func targetUnit(measurementName, sourceSymbol, targetSystem string) string {
	system := strings.TrimSpace(targetSystem)
	if system == "" {
		system = "metric"
	}

	if mapping, ok := systems[strings.ToLower(system)]; ok {
		return mapping[sourceSymbol]
	}

	// Custom system: pick the unit requested for this measurement name.
	for _, m := range customPair.FindAllStringSubmatch(system, -1) {
		if strings.EqualFold(strings.TrimSpace(m[1]), measurementName) {
			return strings.TrimSpace(m[2])
		}
	}
	return ""
}
