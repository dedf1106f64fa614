package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	for _, k := range []string{
		"FEED_URL", "THINGSPEAK_BASE_URL", "THINGSPEAK_CHANNEL_ID", "THINGSPEAK_READ_KEY", "THINGSPEAK_RESULTS",
		"PORT", "API_PORT", "REQUEST_TIMEOUT", "REFRESH_INTERVAL", "CHART_WIDTH", "CHART_HEIGHT",
		"CORS_ALLOWED_ORIGINS", "API_BEARER_TOKEN", "LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	// An explicitly empty key is honoured, so restore the default path.
	t.Setenv("THINGSPEAK_READ_KEY", "93VY3A5DJU3OR0E8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "https://api.thingspeak.com/channels/3096254/feeds.json?api_key=93VY3A5DJU3OR0E8&results=8000", cfg.FeedURL)
	assert.Equal(t, ":8080", cfg.ListenAddr())
	assert.Equal(t, 30*time.Second, cfg.RequestTimeout)
	assert.Zero(t, cfg.RefreshInterval)
	assert.Equal(t, 1200, cfg.ChartWidth)
	assert.Equal(t, 500, cfg.ChartHeight)
	assert.Equal(t, []string{"*"}, cfg.AllowedOrigins)
}

func TestLoadOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("THINGSPEAK_BASE_URL", "http://localhost:9000")
	t.Setenv("THINGSPEAK_CHANNEL_ID", "42")
	t.Setenv("THINGSPEAK_RESULTS", "10")
	t.Setenv("API_PORT", "9090")
	t.Setenv("REFRESH_INTERVAL", "5m")
	t.Setenv("CORS_ALLOWED_ORIGINS", "http://a.test, http://b.test")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/channels/42/feeds.json?results=10", cfg.FeedURL)
	assert.Equal(t, 9090, cfg.Port)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, []string{"http://a.test", "http://b.test"}, cfg.AllowedOrigins)
}

func TestLoadFeedURLWins(t *testing.T) {
	clearEnv(t)
	t.Setenv("FEED_URL", "http://feed.test/x.json")
	t.Setenv("THINGSPEAK_RESULTS", "not-a-number")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "http://feed.test/x.json", cfg.FeedURL)
}

func TestLoadRejectsInvalid(t *testing.T) {
	for k, v := range map[string]string{
		"PORT":               "-1",
		"REQUEST_TIMEOUT":    "soon",
		"REFRESH_INTERVAL":   "-5s",
		"CHART_WIDTH":        "0",
		"THINGSPEAK_RESULTS": "lots",
	} {
		t.Run(k, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(k, v)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
