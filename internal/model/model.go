package model

import (
	"hash/fnv"
	"math"
	"time"
)

// CleanObservation is a single numeric reading at a point in time.
type CleanObservation struct {
	Time  time.Time `json:"time"`
	Value float64   `json:"value"`
}

// ObservedProperty names the quantity a datastream measures.
type ObservedProperty struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// CleanDatastream is one measured quantity of a device after normalization.
// Invariant: Observations is never empty.
type CleanDatastream struct {
	Name             string             `json:"name"`
	Description      string             `json:"description"`
	UnitName         string             `json:"unit_name"`
	UnitSymbol       string             `json:"unit_symbol"`
	UnitDefinition   string             `json:"unit_definition"`
	ObservedProperty ObservedProperty   `json:"observed_property"`
	Observations     []CleanObservation `json:"observations"`
}

// CleanDevice is the normalized form of a sensor-network thing. A Latitude
// and Longitude of (0,0) means the device reported no location.
type CleanDevice struct {
	ID          int64             `json:"id"`
	Name        string            `json:"name"`
	Description string            `json:"description"`
	Latitude    float64           `json:"latitude"`
	Longitude   float64           `json:"longitude"`
	Datastreams []CleanDatastream `json:"datastreams"`
}

// Sensor is a persisted device record, keyed by the external thing id.
type Sensor struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsMoving    bool   `json:"is_moving"`
}

// MeasurementType is a persisted measured-quantity dictionary entry, shared
// across sensors whose canonical observed-property names collide.
type MeasurementType struct {
	ID             int64  `json:"id"`
	Name           string `json:"name"`
	Description    string `json:"description"`
	UnitName       string `json:"unit_name"`
	UnitSymbol     string `json:"unit_symbol"`
	UnitDefinition string `json:"unit_definition"`
}

// Location is a persisted geographic point. Name and Address stay nil until
// the geocoding enrichment job fills them in.
type Location struct {
	ID        int64   `json:"id"`
	Name      *string `json:"name,omitempty"`
	Address   *string `json:"address,omitempty"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// PotentialSensor is a catalog device not yet confirmed as an ingestion
// target. IsActive gates whether the watcher polls it.
type PotentialSensor struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	IsActive    bool   `json:"is_active"`
}

// Comparison operators accepted by notification rules.
const (
	OpLess         = "<"
	OpGreater      = ">"
	OpLessEqual    = "<="
	OpGreaterEqual = ">="
)

// NotificationRule is a per-user threshold on the latest measurement of one
// type at one location. Read-only input to the pipeline.
type NotificationRule struct {
	ID         int64   `json:"id"`
	UserID     string  `json:"user_id"`
	LocationID int64   `json:"location_id"`
	TypeID     int64   `json:"type_id"`
	Op         string  `json:"op"`
	Threshold  float64 `json:"threshold"`
	IsActive   bool    `json:"is_active"`
}

// MeasurementTypeID derives the stable identifier for a measurement type
// from its canonical observed-property name. Two datastreams whose names
// canonicalize to the same string share one type row.
func MeasurementTypeID(canonicalName string) int64 {
	h := fnv.New64a()
	h.Write([]byte(canonicalName))
	return int64(h.Sum64() & math.MaxInt64)
}
