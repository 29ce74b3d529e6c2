package query

import (
	"context"
	"testing"
	"time"

	"github.com/harborlight/harborlight/internal/boxes"
)

type rangeCall struct {
	locationID int64
	since      time.Time
	bucketed   bool
}

type fakeStore struct {
	rows  []boxes.Row
	calls []rangeCall
}

func (f *fakeStore) LatestAll(context.Context) ([]boxes.Row, error) {
	return f.rows, nil
}

func (f *fakeStore) LatestForLocation(_ context.Context, locationID int64) ([]boxes.Row, error) {
	return f.rows, nil
}

func (f *fakeStore) RangeForLocation(_ context.Context, locationID int64, since time.Time, bucketed bool) ([]boxes.Row, error) {
	f.calls = append(f.calls, rangeCall{locationID: locationID, since: since, bucketed: bucketed})
	return f.rows, nil
}

func waterRow() boxes.Row {
	return boxes.Row{
		LocationID: 1,
		SensorID:   42,
		TypeID:     7,
		TypeName:   boxes.WaterTemperature,
		UnitSymbol: "°C",
		Time:       time.Date(2026, 8, 27, 10, 0, 0, 0, time.UTC),
		Value:      12.3,
	}
}

func TestRangeGranularity(t *testing.T) {
	t.Parallel()

	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		tag          string
		wantLookback time.Duration
		wantBucketed bool
	}{
		{tag: "24h", wantLookback: 24 * time.Hour, wantBucketed: false},
		{tag: "48h", wantLookback: 48 * time.Hour, wantBucketed: false},
		{tag: "7d", wantLookback: 7 * 24 * time.Hour, wantBucketed: true},
		{tag: "30d", wantLookback: 30 * 24 * time.Hour, wantBucketed: true},
		{tag: "90d", wantLookback: 90 * 24 * time.Hour, wantBucketed: true},
		{tag: "180d", wantLookback: 180 * 24 * time.Hour, wantBucketed: true},
		{tag: "1y", wantLookback: 365 * 24 * time.Hour, wantBucketed: true},
		// Unknown tags fall back to 24h raw.
		{tag: "6h", wantLookback: 24 * time.Hour, wantBucketed: false},
		{tag: "", wantLookback: 24 * time.Hour, wantBucketed: false},
	}

	for _, tc := range tests {
		tc := tc
		t.Run("tag "+tc.tag, func(t *testing.T) {
			t.Parallel()

			st := &fakeStore{rows: []boxes.Row{waterRow()}}
			svc := New(st)
			svc.now = func() time.Time { return now }

			if _, err := svc.Range(context.Background(), 1, tc.tag, "metric"); err != nil {
				t.Fatalf("Range: %v", err)
			}

			if len(st.calls) != 1 {
				t.Fatalf("store called %d times, want 1", len(st.calls))
			}
			call := st.calls[0]
			if call.bucketed != tc.wantBucketed {
				t.Errorf("bucketed=%t want %t", call.bucketed, tc.wantBucketed)
			}
			if want := now.Add(-tc.wantLookback); !call.since.Equal(want) {
				t.Errorf("since=%s want %s", call.since, want)
			}
		})
	}
}

func TestLatestAppliesUnits(t *testing.T) {
	t.Parallel()

	row := waterRow()
	row.Value = 0

	svc := New(&fakeStore{rows: []boxes.Row{row}})
	got, err := svc.LatestForLocation(context.Background(), 1, "imperial")
	if err != nil {
		t.Fatalf("LatestForLocation: %v", err)
	}

	if len(got) != 1 || len(got[0].Values) != 1 {
		t.Fatalf("unexpected shape: %+v", got)
	}
	if v := got[0].Values[0]; v.Value != 32 || v.Unit != "°F" {
		t.Fatalf("value = %v %s, want 32 °F", v.Value, v.Unit)
	}
	if got[0].Kind != boxes.KindWaterTemperature {
		t.Fatalf("kind = %s, want %s", got[0].Kind, boxes.KindWaterTemperature)
	}
}

func TestLatestSurfacesClassificationError(t *testing.T) {
	t.Parallel()

	row := waterRow()
	row.TypeName = "Turbidity"

	svc := New(&fakeStore{rows: []boxes.Row{row}})
	if _, err := svc.LatestAll(context.Background(), "metric"); err == nil {
		t.Fatal("LatestAll swallowed a classification error")
	}
}
