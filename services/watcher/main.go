package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/harborlight/harborlight/internal/discovery"
	"github.com/harborlight/harborlight/internal/geocode"
	"github.com/harborlight/harborlight/internal/ingest"
	"github.com/harborlight/harborlight/internal/notify"
	"github.com/harborlight/harborlight/internal/relabel"
	"github.com/harborlight/harborlight/internal/scheduler"
	"github.com/harborlight/harborlight/internal/sensorthings"
	"github.com/harborlight/harborlight/internal/store"
	"github.com/harborlight/harborlight/services/watcher/internal/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("watcher failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	table, err := relabel.Load()
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	st, err := store.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer st.Close()

	httpClient := &http.Client{Timeout: cfg.RequestTimeout}
	network := sensorthings.NewClient(cfg.SensorThingsURL, httpClient)

	var cache geocode.Cache
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			return err
		}
		cache = geocode.NewRedisCache(redis.NewClient(opts))
	}
	geocoder := geocode.NewClient(cfg.GeocoderURL, cfg.GeocoderUserAgent, httpClient, cache)

	var dispatcher notify.Dispatcher = notify.LogDispatcher{}
	if len(cfg.KafkaBrokers) > 0 {
		kd := notify.NewKafkaDispatcher(cfg.KafkaBrokers, cfg.KafkaTopic)
		defer kd.Close()
		dispatcher = kd
	}

	evaluator := notify.NewEvaluator(st, dispatcher)
	orchestrator := ingest.New(network, table, st, cfg.Workers, cfg.MergeRadiusM, cfg.LiveWindow)
	discoverer := discovery.New(network, st)

	sched := scheduler.New(
		scheduler.Job{
			Name:     "ingest",
			Interval: cfg.IngestInterval,
			Run: func(ctx context.Context) error {
				ids, err := st.ActiveDeviceIDs(ctx)
				if err != nil {
					return err
				}
				res := orchestrator.Run(ctx, ids, func(locationID int64) {
					if err := evaluator.EvaluateLocation(ctx, locationID); err != nil {
						log.Printf("ingest: evaluate location %d: %v", locationID, err)
					}
				})
				log.Printf("ingest: %d devices, %d failed, %d with fresh data", res.Devices, res.Failed, res.Fresh)
				return nil
			},
		},
		scheduler.Job{
			Name:     "discovery",
			Interval: cfg.DiscoveryInterval,
			Run:      discoverer.Run,
		},
		scheduler.Job{
			Name:     "housekeeping",
			Interval: cfg.HousekeepingInterval,
			Run: func(ctx context.Context) error {
				return enrichLocations(ctx, st, geocoder)
			},
		},
	)

	log.Printf("watcher started (ingest=%s discovery=%s housekeeping=%s)",
		cfg.IngestInterval, cfg.DiscoveryInterval, cfg.HousekeepingInterval)
	sched.Start(ctx)
	return nil
}

// enrichLocations reverse-geocodes locations that do not have a name yet.
// A failed lookup is logged and retried on a later pass.
func enrichLocations(ctx context.Context, st *store.Store, geocoder *geocode.Client) error {
	locations, err := st.UnnamedLocations(ctx, 10)
	if err != nil {
		return err
	}

	for _, loc := range locations {
		place, err := geocoder.Reverse(ctx, loc.Latitude, loc.Longitude)
		if err != nil {
			log.Printf("housekeeping: geocode location %d: %v", loc.ID, err)
			continue
		}
		if err := st.UpdateLocationPlace(ctx, loc.ID, place.Name, place.Address); err != nil {
			log.Printf("housekeeping: update location %d: %v", loc.ID, err)
		}
	}
	return nil
}
