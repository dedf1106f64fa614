package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/02loveslollipop/water-quality-viewer/internal/thingspeak"
)

// Config holds environment-driven settings for the viewer.
type Config struct {
	FeedURL         string
	Port            int
	BearerToken     string
	RequestTimeout  time.Duration
	RefreshInterval time.Duration
	ChartWidth      int
	ChartHeight     int
	AllowedOrigins  []string
	LogLevel        string
}

// Load reads configuration from environment variables (optionally .env).
func Load() (Config, error) {
	_ = godotenv.Load() // ignore missing file

	cfg := Config{
		Port:           8080,
		RequestTimeout: 30 * time.Second,
		ChartWidth:     1200,
		ChartHeight:    500,
		AllowedOrigins: []string{"*"},
	}

	feedURL, _, err := thingspeak.FeedURLFromEnv()
	if err != nil {
		return cfg, err
	}
	cfg.FeedURL = feedURL

	if portStr := os.Getenv("PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid PORT: %s", portStr)
		}
	} else if portStr := os.Getenv("API_PORT"); portStr != "" {
		if port, err := strconv.Atoi(portStr); err == nil && port > 0 {
			cfg.Port = port
		} else {
			return cfg, fmt.Errorf("invalid API_PORT: %s", portStr)
		}
	}

	if v := strings.TrimSpace(os.Getenv("REQUEST_TIMEOUT")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return cfg, fmt.Errorf("invalid REQUEST_TIMEOUT: %w", err)
		}
		cfg.RequestTimeout = d
	}

	if v := strings.TrimSpace(os.Getenv("REFRESH_INTERVAL")); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil || d < 0 {
			return cfg, fmt.Errorf("invalid REFRESH_INTERVAL: %s", v)
		}
		cfg.RefreshInterval = d
	}

	if v := os.Getenv("CHART_WIDTH"); v != "" {
		if w, err := strconv.Atoi(v); err == nil && w > 0 {
			cfg.ChartWidth = w
		} else {
			return cfg, fmt.Errorf("invalid CHART_WIDTH: %s", v)
		}
	}

	if v := os.Getenv("CHART_HEIGHT"); v != "" {
		if h, err := strconv.Atoi(v); err == nil && h > 0 {
			cfg.ChartHeight = h
		} else {
			return cfg, fmt.Errorf("invalid CHART_HEIGHT: %s", v)
		}
	}

	if v := strings.TrimSpace(os.Getenv("CORS_ALLOWED_ORIGINS")); v != "" {
		origins := make([]string, 0)
		for _, o := range strings.Split(v, ",") {
			if o = strings.TrimSpace(o); o != "" {
				origins = append(origins, o)
			}
		}
		cfg.AllowedOrigins = origins
	}

	cfg.BearerToken = os.Getenv("API_BEARER_TOKEN")
	cfg.LogLevel = os.Getenv("LOG_LEVEL")

	return cfg, nil
}

// ListenAddr returns the host:port string for the HTTP server.
func (c Config) ListenAddr() string {
	return fmt.Sprintf(":%d", c.Port)
}
