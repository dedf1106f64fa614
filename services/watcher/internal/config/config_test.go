package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"DATABASE_URL", "FEED_URL", "THINGSPEAK_BASE_URL", "THINGSPEAK_CHANNEL_ID",
		"THINGSPEAK_RESULTS", "WATCHER_REQUEST_TIMEOUT", "INFLUX_URL", "INFLUX_TOKEN",
		"INFLUX_ORG", "INFLUX_BUCKET", "DRY_RUN", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadRequiresDatabaseURL(t *testing.T) {
	clearEnv(t)
	_, err := Load()
	assert.EqualError(t, err, "DATABASE_URL is required")
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/water")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "3096254", cfg.ChannelID)
	assert.Contains(t, cfg.FeedURL, "https://api.thingspeak.com/channels/3096254/feeds.json")
	assert.Contains(t, cfg.FeedURL, "results=8000")
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.False(t, cfg.DryRun)
	assert.False(t, cfg.InfluxEnabled())
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/water")
	t.Setenv("FEED_URL", "http://feed.test/feeds.json")
	t.Setenv("WATCHER_REQUEST_TIMEOUT", "5s")
	t.Setenv("INFLUX_URL", "http://influx:8086")
	t.Setenv("INFLUX_BUCKET", "readings")
	t.Setenv("DRY_RUN", "true")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://feed.test/feeds.json", cfg.FeedURL)
	assert.Equal(t, 5*time.Second, cfg.RequestTimeout)
	assert.True(t, cfg.InfluxEnabled())
	assert.True(t, cfg.DryRun)
}

func TestLoadInvalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("DATABASE_URL", "postgres://localhost/water")
	t.Setenv("WATCHER_REQUEST_TIMEOUT", "soon")
	_, err := Load()
	assert.ErrorContains(t, err, "invalid WATCHER_REQUEST_TIMEOUT")

	t.Setenv("WATCHER_REQUEST_TIMEOUT", "")
	t.Setenv("INFLUX_URL", "http://influx:8086")
	_, err = Load()
	assert.ErrorContains(t, err, "INFLUX_BUCKET")
}
