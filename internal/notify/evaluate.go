// Package notify evaluates user threshold rules against the latest
// measurements and hands matches to the push transport.
package notify

import (
	"context"
	"fmt"
	"log"

	"github.com/harborlight/harborlight/internal/boxes"
	"github.com/harborlight/harborlight/internal/model"
)

// Store is the read access the evaluator needs.
type Store interface {
	LocationIDsWithData(ctx context.Context) ([]int64, error)
	LatestForLocation(ctx context.Context, locationID int64) ([]boxes.Row, error)
	ActiveRulesForLocation(ctx context.Context, locationID int64) ([]model.NotificationRule, error)
	DeviceTokens(ctx context.Context, userID string) ([]string, error)
}

// Evaluator compares latest measurements against user rules.
type Evaluator struct {
	store      Store
	dispatcher Dispatcher
}

// NewEvaluator builds an evaluator over the given store and dispatcher.
func NewEvaluator(store Store, dispatcher Dispatcher) *Evaluator {
	return &Evaluator{store: store, dispatcher: dispatcher}
}

// EvaluateAll sweeps every location that currently has data. Per-location
// failures are logged and skipped so one location cannot stall the sweep.
func (e *Evaluator) EvaluateAll(ctx context.Context) error {
	locationIDs, err := e.store.LocationIDsWithData(ctx)
	if err != nil {
		return fmt.Errorf("load locations with data: %w", err)
	}

	for _, id := range locationIDs {
		if err := e.EvaluateLocation(ctx, id); err != nil {
			log.Printf("notify: location %d: %v", id, err)
		}
	}
	return nil
}

// EvaluateLocation checks every active rule for one location against the
// latest measurement of the rule's type. A type with no current data is
// skipped, not an error. On match, one notification goes to each of the
// rule owner's registered devices.
func (e *Evaluator) EvaluateLocation(ctx context.Context, locationID int64) error {
	rules, err := e.store.ActiveRulesForLocation(ctx, locationID)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}
	if len(rules) == 0 {
		return nil
	}

	latest, err := e.store.LatestForLocation(ctx, locationID)
	if err != nil {
		return fmt.Errorf("load latest measurements: %w", err)
	}

	byType := make(map[int64]boxes.Row, len(latest))
	for _, row := range latest {
		byType[row.TypeID] = row
	}

	for _, rule := range rules {
		row, ok := byType[rule.TypeID]
		if !ok {
			continue
		}
		if !Matches(rule.Op, row.Value, rule.Threshold) {
			continue
		}

		tokens, err := e.store.DeviceTokens(ctx, rule.UserID)
		if err != nil {
			log.Printf("notify: rule %d: load device tokens: %v", rule.ID, err)
			continue
		}

		title := fmt.Sprintf("%s alert", row.TypeName)
		body := fmt.Sprintf("%s is %.2f %s (threshold %s %.2f)",
			row.TypeName, row.Value, row.UnitSymbol, rule.Op, rule.Threshold)

		for _, token := range tokens {
			if err := e.dispatcher.Send(ctx, token, title, body); err != nil {
				log.Printf("notify: rule %d: dispatch: %v", rule.ID, err)
			}
		}
	}
	return nil
}

// Matches applies a rule operator. "<" and ">" are strict; only the
// explicit "<=" and ">=" variants are inclusive. Unknown operators never
// match.
func Matches(op string, value, threshold float64) bool {
	switch op {
	case model.OpLess:
		return value < threshold
	case model.OpGreater:
		return value > threshold
	case model.OpLessEqual:
		return value <= threshold
	case model.OpGreaterEqual:
		return value >= threshold
	default:
		return false
	}
}
