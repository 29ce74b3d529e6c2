// Package query serves the aggregated measurement views consumed by the
// HTTP API: latest boxes per location and ranged history with a
// range-dependent granularity.
package query

import (
	"context"
	"time"

	"github.com/harborlight/harborlight/internal/boxes"
)

// rangeSpec ties a named time range to its lookback and granularity. The
// two shortest ranges return raw rows; everything longer is bucket-averaged.
type rangeSpec struct {
	lookback time.Duration
	bucketed bool
}

var rangeSpecs = map[string]rangeSpec{
	"24h":  {lookback: 24 * time.Hour},
	"48h":  {lookback: 48 * time.Hour},
	"7d":   {lookback: 7 * 24 * time.Hour, bucketed: true},
	"30d":  {lookback: 30 * 24 * time.Hour, bucketed: true},
	"90d":  {lookback: 90 * 24 * time.Hour, bucketed: true},
	"180d": {lookback: 180 * 24 * time.Hour, bucketed: true},
	"1y":   {lookback: 365 * 24 * time.Hour, bucketed: true},
}

const defaultRange = "24h"

// Store is the read access the service needs.
type Store interface {
	LatestAll(ctx context.Context) ([]boxes.Row, error)
	LatestForLocation(ctx context.Context, locationID int64) ([]boxes.Row, error)
	RangeForLocation(ctx context.Context, locationID int64, since time.Time, bucketed bool) ([]boxes.Row, error)
}

// Service classifies flat measurement rows into boxes and applies unit
// conversion for API consumers.
type Service struct {
	store Store
	now   func() time.Time
}

// New builds a query service over the given store.
func New(store Store) *Service {
	return &Service{store: store, now: time.Now}
}

// LatestAll returns the latest box per location, converted to the target
// unit system.
func (s *Service) LatestAll(ctx context.Context, targetSystem string) ([]boxes.Box, error) {
	rows, err := s.store.LatestAll(ctx)
	if err != nil {
		return nil, err
	}
	return boxes.Classify(rows, targetSystem)
}

// LatestForLocation returns the latest box at one location.
func (s *Service) LatestForLocation(ctx context.Context, locationID int64, targetSystem string) ([]boxes.Box, error) {
	rows, err := s.store.LatestForLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}
	return boxes.Classify(rows, targetSystem)
}

// Range returns the measurement history of one location for a named range
// tag. Unknown tags fall back to 24h.
func (s *Service) Range(ctx context.Context, locationID int64, rangeTag, targetSystem string) ([]boxes.Box, error) {
	spec, ok := rangeSpecs[rangeTag]
	if !ok {
		spec = rangeSpecs[defaultRange]
	}

	since := s.now().UTC().Add(-spec.lookback)
	rows, err := s.store.RangeForLocation(ctx, locationID, since, spec.bucketed)
	if err != nil {
		return nil, err
	}
	return boxes.Classify(rows, targetSystem)
}
