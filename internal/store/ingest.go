package store

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/harborlight/harborlight/internal/model"
)

// SaveResult reports what one device's ingestion changed.
type SaveResult struct {
	LocationID      int64
	NewMeasurements bool
	LatestTime      *time.Time
}

const upsertSensorSQL = `
	INSERT INTO harbor.sensors (id, name, description, is_moving)
	VALUES ($1, $2, $3, $4)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
	    description = EXCLUDED.description,
	    is_moving = EXCLUDED.is_moving
`

const upsertMeasurementTypeSQL = `
	INSERT INTO harbor.measurement_types (id, name, description, unit_name, unit_symbol, unit_definition)
	VALUES ($1, $2, $3, $4, $5, $6)
	ON CONFLICT (id) DO UPDATE
	SET name = EXCLUDED.name,
	    description = EXCLUDED.description,
	    unit_name = EXCLUDED.unit_name,
	    unit_symbol = EXCLUDED.unit_symbol,
	    unit_definition = EXCLUDED.unit_definition
`

// Duplicate observations from overlapping fetch windows are a no-op, which
// is what keeps re-ingestion idempotent.
const insertMeasurementSQL = `
	INSERT INTO harbor.measurements (sensor_id, type_id, location_id, time, value)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (sensor_id, type_id, time) DO NOTHING
`

// SaveDevice idempotently persists one clean device: sensor upsert, location
// resolution, measurement-type upserts and measurement inserts, all in one
// transaction. Any failure rolls the whole device back.
func (s *Store) SaveDevice(ctx context.Context, dev model.CleanDevice, mergeRadiusM float64) (SaveResult, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return SaveResult{}, err
	}
	defer tx.Rollback(ctx)

	position, measurement := partitionDatastreams(dev.Datastreams)

	isMoving := position.latitude != nil && position.longitude != nil
	if _, err := tx.Exec(ctx, upsertSensorSQL, dev.ID, dev.Name, dev.Description, isMoving); err != nil {
		return SaveResult{}, fmt.Errorf("upsert sensor %d: %w", dev.ID, err)
	}

	locationID, err := resolveLocation(ctx, tx, dev.Longitude, dev.Latitude, mergeRadiusM)
	if err != nil {
		return SaveResult{}, fmt.Errorf("resolve location for sensor %d: %w", dev.ID, err)
	}

	// A mobile sensor reports its live position as latitude/longitude
	// datastreams; their latest values supersede the catalog location.
	if isMoving {
		lat := latestObservation(*position.latitude).Value
		lon := latestObservation(*position.longitude).Value
		locationID, err = resolveLocation(ctx, tx, lon, lat, mergeRadiusM)
		if err != nil {
			return SaveResult{}, fmt.Errorf("resolve updated location for sensor %d: %w", dev.ID, err)
		}
	}

	result := SaveResult{LocationID: locationID}
	for _, ds := range measurement {
		typeID := model.MeasurementTypeID(ds.ObservedProperty.Name)
		if _, err := tx.Exec(ctx, upsertMeasurementTypeSQL,
			typeID, ds.ObservedProperty.Name, ds.ObservedProperty.Description,
			ds.UnitName, ds.UnitSymbol, ds.UnitDefinition); err != nil {
			return SaveResult{}, fmt.Errorf("upsert measurement type %q: %w", ds.ObservedProperty.Name, err)
		}

		batch := &pgx.Batch{}
		for _, obs := range ds.Observations {
			batch.Queue(insertMeasurementSQL, dev.ID, typeID, locationID, obs.Time, obs.Value)
			if result.LatestTime == nil || obs.Time.After(*result.LatestTime) {
				ts := obs.Time
				result.LatestTime = &ts
			}
		}

		res := tx.SendBatch(ctx, batch)
		for range ds.Observations {
			tag, err := res.Exec()
			if err != nil {
				res.Close()
				return SaveResult{}, fmt.Errorf("insert measurements for sensor %d: %w", dev.ID, err)
			}
			if tag.RowsAffected() > 0 {
				result.NewMeasurements = true
			}
		}
		if err := res.Close(); err != nil {
			return SaveResult{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return SaveResult{}, err
	}
	return result, nil
}

type positionStreams struct {
	latitude  *model.CleanDatastream
	longitude *model.CleanDatastream
}

// partitionDatastreams splits a device's datastreams into position streams
// (observed property "latitude"/"longitude") and measurement streams.
func partitionDatastreams(streams []model.CleanDatastream) (positionStreams, []model.CleanDatastream) {
	var pos positionStreams
	measurement := make([]model.CleanDatastream, 0, len(streams))
	for i := range streams {
		ds := streams[i]
		switch strings.ToLower(ds.ObservedProperty.Name) {
		case "latitude":
			pos.latitude = &streams[i]
		case "longitude":
			pos.longitude = &streams[i]
		default:
			measurement = append(measurement, ds)
		}
	}
	return pos, measurement
}

func latestObservation(ds model.CleanDatastream) model.CleanObservation {
	latest := ds.Observations[0]
	for _, obs := range ds.Observations[1:] {
		if obs.Time.After(latest.Time) {
			latest = obs
		}
	}
	return latest
}
