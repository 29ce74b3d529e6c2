// Package discovery scans the sensor-network catalog for devices that look
// like measurement boxes and records them as potential ingestion targets.
package discovery

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/harborlight/harborlight/internal/model"
	"github.com/harborlight/harborlight/internal/sensorthings"
)

// The catalog mixes fixed measurement boxes with moving vessels, told apart
// only by free text. The policy is an ordered rule table: a deny rule first,
// then the allow rules; evaluation stops at the first hit.
var heuristicRules = []struct {
	matches func(name, description string) bool
	isBox   bool
}{
	{matches: containsAny(descriptionOf, vesselHints), isBox: false},
	{matches: hasPrefixAny(namePrefixes), isBox: true},
	{matches: containsAny(descriptionOf, sensorHints), isBox: true},
}

var namePrefixes = []string{
	"HL-Box",
	"Harbor Buoy",
	"Tide Gauge",
}

var sensorHints = []string{
	"measurement box",
	"monitoring buoy",
	"water quality",
	"weather station",
	"tide gauge",
}

var vesselHints = []string{
	"vessel",
	"ship",
	"ferry",
	"tug",
	"pilot boat",
	"barge",
}

// LooksLikeSensor classifies a catalog device by name and description.
func LooksLikeSensor(name, description string) bool {
	for _, rule := range heuristicRules {
		if rule.matches(name, description) {
			return rule.isBox
		}
	}
	return false
}

func descriptionOf(_, description string) string { return description }

func containsAny(field func(name, description string) string, hints []string) func(string, string) bool {
	return func(name, description string) bool {
		text := strings.ToLower(field(name, description))
		for _, hint := range hints {
			if strings.Contains(text, hint) {
				return true
			}
		}
		return false
	}
}

func hasPrefixAny(prefixes []string) func(string, string) bool {
	return func(name, _ string) bool {
		for _, prefix := range prefixes {
			if strings.HasPrefix(name, prefix) {
				return true
			}
		}
		return false
	}
}

// Catalog fetches the full device listfile from the sensor network.
type Catalog interface {
	FetchCatalog(ctx context.Context) ([]sensorthings.CatalogThing, error)
}

// Store persists discovered candidates.
type Store interface {
	MaxPotentialSensorID(ctx context.Context) (int64, error)
	InsertPotentialSensors(ctx context.Context, sensors []model.PotentialSensor) error
}

// Service discovers and persists potential sensors.
type Service struct {
	catalog Catalog
	store   Store
}

// New builds a discovery service.
func New(catalog Catalog, store Store) *Service {
	return &Service{catalog: catalog, store: store}
}

// Run fetches the catalog and appends every device whose id exceeds the
// highest id persisted so far. Ingestion is monotonic: re-discovery never
// revisits known ids, which makes it idempotent by construction. A device
// is inserted active only when the sensor heuristic fires.
func (s *Service) Run(ctx context.Context) error {
	maxID, err := s.store.MaxPotentialSensorID(ctx)
	if err != nil {
		return fmt.Errorf("load max potential sensor id: %w", err)
	}

	catalog, err := s.catalog.FetchCatalog(ctx)
	if err != nil {
		return err
	}

	candidates := make([]model.PotentialSensor, 0)
	for _, thing := range catalog {
		if thing.ID <= maxID {
			continue
		}
		candidates = append(candidates, model.PotentialSensor{
			ID:          thing.ID,
			Name:        thing.Name,
			Description: thing.Description,
			IsActive:    LooksLikeSensor(thing.Name, thing.Description),
		})
	}

	if len(candidates) == 0 {
		return nil
	}

	if err := s.store.InsertPotentialSensors(ctx, candidates); err != nil {
		return fmt.Errorf("insert potential sensors: %w", err)
	}

	active := 0
	for _, c := range candidates {
		if c.IsActive {
			active++
		}
	}
	log.Printf("discovery: %d new catalog devices, %d classified as sensors", len(candidates), active)
	return nil
}
