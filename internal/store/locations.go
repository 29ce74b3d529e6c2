package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/harborlight/harborlight/internal/model"
)

// DefaultMergeRadiusM is the proximity under which two coordinate reports
// are treated as the same physical location.
const DefaultMergeRadiusM = 5.0

// locationCreateLockKey serializes concurrent location creation so the
// search-then-insert sequence cannot produce two rows inside the merge
// radius. The lock is transaction-scoped and only taken on the insert path.
const locationCreateLockKey = 0x6c6f63 // "loc"

const findLocationSQL = `
	SELECT id
	FROM harbor.locations
	WHERE ST_DWithin(position, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography, $3)
	ORDER BY ST_Distance(position, ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography)
	LIMIT 1
`

const insertLocationSQL = `
	INSERT INTO harbor.locations (position)
	VALUES (ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography)
	RETURNING id
`

// resolveLocation returns the id of an existing location within radiusM
// meters of (lon, lat), or inserts a new row and returns its id. Must run
// inside a transaction: the advisory lock guarding creation is released at
// commit/rollback. Existing rows' coordinates are never updated here;
// drift inside the radius is absorbed silently.
func resolveLocation(ctx context.Context, q querier, lon, lat, radiusM float64) (int64, error) {
	var id int64
	err := q.QueryRow(ctx, findLocationSQL, lon, lat, radiusM).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("find location: %w", err)
	}

	if _, err := q.Exec(ctx, "SELECT pg_advisory_xact_lock($1)", locationCreateLockKey); err != nil {
		return 0, fmt.Errorf("lock location creation: %w", err)
	}

	// Another transaction may have created the row while we waited.
	err = q.QueryRow(ctx, findLocationSQL, lon, lat, radiusM).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("recheck location: %w", err)
	}

	if err := q.QueryRow(ctx, insertLocationSQL, lon, lat).Scan(&id); err != nil {
		return 0, fmt.Errorf("insert location: %w", err)
	}
	return id, nil
}

// ResolveLocation finds or creates the location for a coordinate using the
// default merge radius, in its own transaction.
func (s *Store) ResolveLocation(ctx context.Context, lon, lat float64) (int64, error) {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback(ctx)

	id, err := resolveLocation(ctx, tx, lon, lat, DefaultMergeRadiusM)
	if err != nil {
		return 0, err
	}
	return id, tx.Commit(ctx)
}

const unnamedLocationsSQL = `
	SELECT id, name, address, ST_X(position::geometry), ST_Y(position::geometry)
	FROM harbor.locations
	WHERE name IS NULL
	ORDER BY id
	LIMIT $1
`

// UnnamedLocations returns locations still waiting for geocoding enrichment.
func (s *Store) UnnamedLocations(ctx context.Context, limit int) ([]model.Location, error) {
	rows, err := s.pool.Query(ctx, unnamedLocationsSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	locations := make([]model.Location, 0)
	for rows.Next() {
		var loc model.Location
		if err := rows.Scan(&loc.ID, &loc.Name, &loc.Address, &loc.Longitude, &loc.Latitude); err != nil {
			return nil, err
		}
		locations = append(locations, loc)
	}
	return locations, rows.Err()
}

const updateLocationPlaceSQL = `
	UPDATE harbor.locations
	SET name = $2, address = $3
	WHERE id = $1
`

// UpdateLocationPlace sets the human-readable name and address of a
// location. The stored point is never touched through this path.
func (s *Store) UpdateLocationPlace(ctx context.Context, id int64, name, address string) error {
	_, err := s.pool.Exec(ctx, updateLocationPlaceSQL, id, name, address)
	return err
}
