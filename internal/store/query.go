package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/harborlight/harborlight/internal/boxes"
)

const latestMeasurementsSQL = `
	SELECT DISTINCT ON (m.location_id, m.type_id)
	       m.location_id, m.sensor_id, m.type_id, t.name, t.unit_symbol, m.time, m.value
	FROM harbor.measurements m
	JOIN harbor.measurement_types t ON t.id = m.type_id
	ORDER BY m.location_id, m.type_id, m.time DESC
`

const latestMeasurementsForLocationSQL = `
	SELECT DISTINCT ON (m.type_id)
	       m.location_id, m.sensor_id, m.type_id, t.name, t.unit_symbol, m.time, m.value
	FROM harbor.measurements m
	JOIN harbor.measurement_types t ON t.id = m.type_id
	WHERE m.location_id = $1
	ORDER BY m.type_id, m.time DESC
`

// LatestAll returns the most recent measurement per (location, type).
func (s *Store) LatestAll(ctx context.Context) ([]boxes.Row, error) {
	return s.queryRows(ctx, latestMeasurementsSQL)
}

// LatestForLocation returns the most recent measurement per type at one
// location.
func (s *Store) LatestForLocation(ctx context.Context, locationID int64) ([]boxes.Row, error) {
	return s.queryRows(ctx, latestMeasurementsForLocationSQL, locationID)
}

const rawRangeSQL = `
	SELECT m.location_id, m.sensor_id, m.type_id, t.name, t.unit_symbol, m.time, m.value
	FROM harbor.measurements m
	JOIN harbor.measurement_types t ON t.id = m.type_id
	WHERE m.location_id = $1 AND m.time >= $2
	ORDER BY m.time DESC
`

// Long ranges are averaged into fixed 30-minute buckets by the store's
// bucketing aggregate.
const bucketedRangeSQL = `
	SELECT m.location_id, m.sensor_id, m.type_id, t.name, t.unit_symbol,
	       time_bucket('30 minutes', m.time) AS bucket, AVG(m.value)
	FROM harbor.measurements m
	JOIN harbor.measurement_types t ON t.id = m.type_id
	WHERE m.location_id = $1 AND m.time >= $2
	GROUP BY m.location_id, m.sensor_id, m.type_id, t.name, t.unit_symbol, bucket
	ORDER BY bucket DESC
`

// RangeForLocation returns measurements at one location since the given
// instant, raw or bucket-averaged depending on the requested granularity.
func (s *Store) RangeForLocation(ctx context.Context, locationID int64, since time.Time, bucketed bool) ([]boxes.Row, error) {
	sql := rawRangeSQL
	if bucketed {
		sql = bucketedRangeSQL
	}
	return s.queryRows(ctx, sql, locationID, since)
}

const locationIDsWithDataSQL = `
	SELECT DISTINCT location_id
	FROM harbor.measurements
	ORDER BY location_id
`

// LocationIDsWithData lists every location that has at least one
// measurement, i.e. the locations the rule evaluator sweeps.
func (s *Store) LocationIDsWithData(ctx context.Context) ([]int64, error) {
	rows, err := s.pool.Query(ctx, locationIDsWithDataSQL)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]int64, 0)
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *Store) queryRows(ctx context.Context, sql string, args ...any) ([]boxes.Row, error) {
	rows, err := s.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanMeasurementRows(rows)
}

func scanMeasurementRows(rows pgx.Rows) ([]boxes.Row, error) {
	out := make([]boxes.Row, 0)
	for rows.Next() {
		var r boxes.Row
		if err := rows.Scan(&r.LocationID, &r.SensorID, &r.TypeID, &r.TypeName, &r.UnitSymbol, &r.Time, &r.Value); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
