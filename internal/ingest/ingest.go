// Package ingest drives the per-cycle fetch/normalize/persist pipeline over
// the active device set.
package ingest

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/harborlight/harborlight/internal/model"
	"github.com/harborlight/harborlight/internal/normalize"
	"github.com/harborlight/harborlight/internal/relabel"
	"github.com/harborlight/harborlight/internal/sensorthings"
	"github.com/harborlight/harborlight/internal/store"
)

// DefaultLiveWindow separates live data from backfill: only observations
// newer than this trigger notification evaluation.
const DefaultLiveWindow = time.Hour

// Fetcher retrieves one raw device payload.
type Fetcher interface {
	FetchThing(ctx context.Context, id int64) (sensorthings.Thing, error)
}

// Repository persists one clean device as a single transaction.
type Repository interface {
	SaveDevice(ctx context.Context, dev model.CleanDevice, mergeRadiusM float64) (store.SaveResult, error)
}

// Orchestrator runs ingestion cycles. Each device is its own unit of work
// with its own transaction, so one bad device never poisons the batch, and
// devices are fetched by a bounded worker pool to keep load on the sensor
// network in check.
type Orchestrator struct {
	fetcher    Fetcher
	table      *relabel.Table
	repo       Repository
	workers    int
	radiusM    float64
	liveWindow time.Duration
	now        func() time.Time
}

// New builds an orchestrator. workers must be >= 1.
func New(fetcher Fetcher, table *relabel.Table, repo Repository, workers int, radiusM float64, liveWindow time.Duration) *Orchestrator {
	if workers < 1 {
		workers = 1
	}
	return &Orchestrator{
		fetcher:    fetcher,
		table:      table,
		repo:       repo,
		workers:    workers,
		radiusM:    radiusM,
		liveWindow: liveWindow,
		now:        time.Now,
	}
}

// CycleResult aggregates what one ingestion cycle did.
type CycleResult struct {
	Devices int
	Failed  int
	Fresh   int
}

// Run ingests every device id once. onNewData is invoked with the device's
// location id whenever fresh measurements landed; it may be called
// concurrently from worker goroutines.
func (o *Orchestrator) Run(ctx context.Context, deviceIDs []int64, onNewData func(locationID int64)) CycleResult {
	ids := make(chan int64)
	results := make(chan error, len(deviceIDs))
	fresh := make(chan struct{}, len(deviceIDs))

	var wg sync.WaitGroup
	for i := 0; i < o.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range ids {
				isFresh, err := o.ingestOne(ctx, id, onNewData)
				results <- err
				if isFresh {
					fresh <- struct{}{}
				}
			}
		}()
	}

	for _, id := range deviceIDs {
		select {
		case ids <- id:
		case <-ctx.Done():
		}
		if ctx.Err() != nil {
			break
		}
	}
	close(ids)
	wg.Wait()
	close(results)
	close(fresh)

	res := CycleResult{Devices: len(deviceIDs), Fresh: len(fresh)}
	for err := range results {
		if err != nil {
			res.Failed++
		}
	}
	return res
}

// ingestOne runs the full pipeline for one device: fetch, normalize,
// relabel, persist. Failures are logged here and surfaced only as a count;
// the next cycle retries naturally.
func (o *Orchestrator) ingestOne(ctx context.Context, id int64, onNewData func(locationID int64)) (bool, error) {
	raw, err := o.fetcher.FetchThing(ctx, id)
	if err != nil {
		log.Printf("ingest: device %d: %v", id, err)
		return false, err
	}

	dev := normalize.Device(raw)
	o.table.Apply(&dev)

	result, err := o.repo.SaveDevice(ctx, dev, o.radiusM)
	if err != nil {
		log.Printf("ingest: device %d: %v", id, err)
		return false, err
	}

	if !result.NewMeasurements || result.LatestTime == nil {
		return false, nil
	}
	// Older data is backfill, not live; it must not fire notifications.
	if o.now().UTC().Sub(result.LatestTime.UTC()) > o.liveWindow {
		return false, nil
	}

	if onNewData != nil {
		onNewData(result.LocationID)
	}
	return true, nil
}
