package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultIngestInterval       = time.Minute
	defaultDiscoveryInterval    = 10 * time.Minute
	defaultHousekeepingInterval = time.Minute
	defaultLiveWindow           = time.Hour
	defaultMergeRadiusM         = 5.0
	defaultWorkers              = 4
	defaultRequestTimeout       = 30 * time.Second
	defaultGeocoderURL          = "https://nominatim.openstreetmap.org"
	defaultGeocoderUserAgent    = "harborlight-watcher/1.0"
	defaultKafkaTopic           = "harbor.notifications"
)

// Config holds runtime configuration for the watcher service.
type Config struct {
	DatabaseURL          string
	SensorThingsURL      string
	GeocoderURL          string
	GeocoderUserAgent    string
	RedisURL             string
	KafkaBrokers         []string
	KafkaTopic           string
	IngestInterval       time.Duration
	DiscoveryInterval    time.Duration
	HousekeepingInterval time.Duration
	LiveWindow           time.Duration
	MergeRadiusM         float64
	Workers              int
	RequestTimeout       time.Duration
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{
		GeocoderURL:          defaultGeocoderURL,
		GeocoderUserAgent:    defaultGeocoderUserAgent,
		KafkaTopic:           defaultKafkaTopic,
		IngestInterval:       defaultIngestInterval,
		DiscoveryInterval:    defaultDiscoveryInterval,
		HousekeepingInterval: defaultHousekeepingInterval,
		LiveWindow:           defaultLiveWindow,
		MergeRadiusM:         defaultMergeRadiusM,
		Workers:              defaultWorkers,
		RequestTimeout:       defaultRequestTimeout,
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	cfg.SensorThingsURL = strings.TrimSpace(os.Getenv("SENSORTHINGS_URL"))
	if cfg.SensorThingsURL == "" {
		return cfg, errors.New("SENSORTHINGS_URL is required")
	}

	if v := strings.TrimSpace(os.Getenv("GEOCODER_URL")); v != "" {
		cfg.GeocoderURL = v
	}
	if v := strings.TrimSpace(os.Getenv("GEOCODER_USER_AGENT")); v != "" {
		cfg.GeocoderUserAgent = v
	}
	cfg.RedisURL = strings.TrimSpace(os.Getenv("REDIS_URL"))

	if v := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); v != "" {
		for _, broker := range strings.Split(v, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
			}
		}
	}
	if v := strings.TrimSpace(os.Getenv("KAFKA_NOTIFICATION_TOPIC")); v != "" {
		cfg.KafkaTopic = v
	}

	var err error
	if cfg.IngestInterval, err = durationEnv("WATCHER_INGEST_INTERVAL", cfg.IngestInterval); err != nil {
		return cfg, err
	}
	if cfg.DiscoveryInterval, err = durationEnv("WATCHER_DISCOVERY_INTERVAL", cfg.DiscoveryInterval); err != nil {
		return cfg, err
	}
	if cfg.HousekeepingInterval, err = durationEnv("WATCHER_HOUSEKEEPING_INTERVAL", cfg.HousekeepingInterval); err != nil {
		return cfg, err
	}
	if cfg.LiveWindow, err = durationEnv("WATCHER_LIVE_WINDOW", cfg.LiveWindow); err != nil {
		return cfg, err
	}
	if cfg.RequestTimeout, err = durationEnv("WATCHER_REQUEST_TIMEOUT", cfg.RequestTimeout); err != nil {
		return cfg, err
	}

	if v := strings.TrimSpace(os.Getenv("WATCHER_MERGE_RADIUS_M")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil || f <= 0 {
			return cfg, fmt.Errorf("invalid WATCHER_MERGE_RADIUS_M: %s", v)
		}
		cfg.MergeRadiusM = f
	}

	if v := strings.TrimSpace(os.Getenv("WATCHER_WORKERS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return cfg, fmt.Errorf("invalid WATCHER_WORKERS: %s", v)
		}
		cfg.Workers = n
	}

	return cfg, nil
}

func durationEnv(name string, fallback time.Duration) (time.Duration, error) {
	v := strings.TrimSpace(os.Getenv(name))
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback, fmt.Errorf("invalid %s: %w", name, err)
	}
	return d, nil
}
