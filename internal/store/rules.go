package store

import (
	"context"

	"github.com/harborlight/harborlight/internal/model"
)

const activeRulesForLocationSQL = `
	SELECT id, user_id, location_id, type_id, op, threshold, is_active
	FROM harbor.notification_rules
	WHERE location_id = $1 AND is_active
	ORDER BY id
`

// ActiveRulesForLocation loads the active threshold rules for one location.
func (s *Store) ActiveRulesForLocation(ctx context.Context, locationID int64) ([]model.NotificationRule, error) {
	rows, err := s.pool.Query(ctx, activeRulesForLocationSQL, locationID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	rules := make([]model.NotificationRule, 0)
	for rows.Next() {
		var r model.NotificationRule
		if err := rows.Scan(&r.ID, &r.UserID, &r.LocationID, &r.TypeID, &r.Op, &r.Threshold, &r.IsActive); err != nil {
			return nil, err
		}
		rules = append(rules, r)
	}
	return rules, rows.Err()
}

const deviceTokensSQL = `
	SELECT token
	FROM harbor.user_devices
	WHERE user_id = $1
`

// DeviceTokens lists the registered push targets of one user.
func (s *Store) DeviceTokens(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.pool.Query(ctx, deviceTokensSQL, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tokens := make([]string, 0)
	for rows.Next() {
		var token string
		if err := rows.Scan(&token); err != nil {
			return nil, err
		}
		tokens = append(tokens, token)
	}
	return tokens, rows.Err()
}
