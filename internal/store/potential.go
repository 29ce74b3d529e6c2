package store

import (
	"context"

	"github.com/jackc/pgx/v5"

	"github.com/harborlight/harborlight/internal/model"
)

const maxPotentialSensorIDSQL = `
	SELECT COALESCE(MAX(id), 0)
	FROM harbor.potential_sensors
`

// MaxPotentialSensorID returns the highest device id seen by discovery so
// far, or 0 when the table is empty. Discovery only considers ids above it.
func (s *Store) MaxPotentialSensorID(ctx context.Context) (int64, error) {
	var id int64
	err := s.pool.QueryRow(ctx, maxPotentialSensorIDSQL).Scan(&id)
	return id, err
}

const insertPotentialSensorSQL = `
	INSERT INTO harbor.potential_sensors (id, name, description, is_active)
	VALUES ($1, $2, $3, $4)
`

// InsertPotentialSensors appends newly discovered catalog devices. Callers
// guarantee ids above the current maximum, so this is plain append-only
// insert rather than conflict handling.
func (s *Store) InsertPotentialSensors(ctx context.Context, sensors []model.PotentialSensor) error {
	if len(sensors) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range sensors {
		batch.Queue(insertPotentialSensorSQL, p.ID, p.Name, p.Description, p.IsActive)
	}

	res := s.pool.SendBatch(ctx, batch)
	defer res.Close()

	for range sensors {
		if _, err := res.Exec(); err != nil {
			return err
		}
	}
	return nil
}

const activeDeviceIDsSQL = `
	SELECT id
	FROM harbor.potential_sensors
	WHERE is_active
	ORDER BY id
`

// ActiveDeviceIDs lists the device ids the ingestion cycle should poll.
func (s *Store) ActiveDeviceIDs(ctx context.Context) ([]int64, error) {
	rows, err := s.pool.Query(ctx, activeDeviceIDsSQL)
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
