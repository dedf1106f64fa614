package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/02loveslollipop/water-quality-viewer/internal/thingspeak"
)

const defaultRequestTimeout = 30 * time.Second

// Config holds runtime configuration for the watcher service.
type Config struct {
	DatabaseURL    string
	FeedURL        string
	ChannelID      string
	RequestTimeout time.Duration
	InfluxURL      string
	InfluxToken    string
	InfluxOrg      string
	InfluxBucket   string
	DryRun         bool
	LogLevel       string
}

// InfluxEnabled reports whether the InfluxDB mirror is configured.
func (c Config) InfluxEnabled() bool {
	return c.InfluxURL != "" && c.InfluxBucket != ""
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load(".env")

	cfg := Config{}
	var err error

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv("DATABASE_URL"))
	if cfg.DatabaseURL == "" {
		return cfg, errors.New("DATABASE_URL is required")
	}

	cfg.FeedURL, cfg.ChannelID, err = thingspeak.FeedURLFromEnv()
	if err != nil {
		return cfg, err
	}

	cfg.RequestTimeout = defaultRequestTimeout
	if v := strings.TrimSpace(os.Getenv("WATCHER_REQUEST_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid WATCHER_REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}

	cfg.InfluxURL = strings.TrimSpace(os.Getenv("INFLUX_URL"))
	cfg.InfluxToken = strings.TrimSpace(os.Getenv("INFLUX_TOKEN"))
	cfg.InfluxOrg = strings.TrimSpace(os.Getenv("INFLUX_ORG"))
	cfg.InfluxBucket = strings.TrimSpace(os.Getenv("INFLUX_BUCKET"))
	if cfg.InfluxURL != "" && cfg.InfluxBucket == "" {
		return cfg, errors.New("INFLUX_BUCKET is required when INFLUX_URL is set")
	}

	dryRun := strings.TrimSpace(os.Getenv("DRY_RUN"))
	cfg.DryRun = dryRun == "1" || strings.EqualFold(dryRun, "true")

	cfg.LogLevel = os.Getenv("LOG_LEVEL")

	return cfg, nil
}
