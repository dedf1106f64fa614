package thingspeak

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// FeedURLFromEnv resolves the feed endpoint from FEED_URL, or assembles it
// from THINGSPEAK_BASE_URL, THINGSPEAK_CHANNEL_ID, THINGSPEAK_READ_KEY and
// THINGSPEAK_RESULTS. The channel ID is returned either way. An explicitly
// empty THINGSPEAK_READ_KEY drops the key from the URL.
func FeedURLFromEnv() (endpoint, channelID string, err error) {
	channelID = strings.TrimSpace(os.Getenv("THINGSPEAK_CHANNEL_ID"))
	if channelID == "" {
		channelID = DefaultChannelID
	}

	if v := strings.TrimSpace(os.Getenv("FEED_URL")); v != "" {
		return v, channelID, nil
	}

	base := strings.TrimSpace(os.Getenv("THINGSPEAK_BASE_URL"))
	if base == "" {
		base = DefaultBaseURL
	}
	key, ok := os.LookupEnv("THINGSPEAK_READ_KEY")
	if !ok {
		key = DefaultReadKey
	}
	results := DefaultResults
	if v := strings.TrimSpace(os.Getenv("THINGSPEAK_RESULTS")); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return "", "", fmt.Errorf("invalid THINGSPEAK_RESULTS: %s", v)
		}
		results = n
	}
	return BuildFeedURL(base, channelID, strings.TrimSpace(key), results), channelID, nil
}
