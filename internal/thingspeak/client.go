package thingspeak

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/02loveslollipop/water-quality-viewer/internal/models"
	"github.com/02loveslollipop/water-quality-viewer/internal/utils"
)

const (
	DefaultBaseURL   = "https://api.thingspeak.com"
	DefaultChannelID = "3096254"
	DefaultReadKey   = "93VY3A5DJU3OR0E8"
	DefaultResults   = 8000
)

// BuildFeedURL returns the feeds.json endpoint for a channel.
func BuildFeedURL(baseURL, channelID, apiKey string, results int) string {
	q := url.Values{}
	if apiKey != "" {
		q.Set("api_key", apiKey)
	}
	if results > 0 {
		q.Set("results", strconv.Itoa(results))
	}
	u := strings.TrimRight(baseURL, "/") + "/channels/" + url.PathEscape(channelID) + "/feeds.json"
	if enc := q.Encode(); enc != "" {
		u += "?" + enc
	}
	return u
}

// Client reads channel feeds from ThingSpeak.
type Client struct {
	rc *resty.Client
}

// NewClient creates a client whose requests give up after timeout (0 disables it).
func NewClient(timeout time.Duration) *Client {
	rc := resty.New().
		SetHeader("Accept", "application/json")
	if timeout > 0 {
		rc.SetTimeout(timeout)
	}
	return &Client{rc: rc}
}

// FetchFeeds performs a single GET against endpoint and decodes the payload.
func (c *Client) FetchFeeds(ctx context.Context, endpoint string) (models.FeedResponse, error) {
	resp, err := c.rc.R().SetContext(ctx).Get(endpoint)
	if err != nil {
		return models.FeedResponse{}, &FetchError{Kind: ErrNetwork, Endpoint: endpoint, Err: fmt.Errorf("request feed: %w", err)}
	}

	if !resp.IsSuccess() {
		return models.FeedResponse{}, &FetchError{
			Kind:     ErrProtocol,
			Endpoint: endpoint,
			Status:   resp.StatusCode(),
			Err:      fmt.Errorf("unexpected status %s", resp.Status()),
		}
	}

	var payload models.FeedResponse
	if err := json.Unmarshal(resp.Body(), &payload); err != nil {
		return models.FeedResponse{}, &FetchError{Kind: ErrParse, Endpoint: endpoint, Status: resp.StatusCode(), Err: fmt.Errorf("decode payload: %w", err)}
	}
	if payload.Feeds == nil {
		return models.FeedResponse{}, &FetchError{Kind: ErrParse, Endpoint: endpoint, Status: resp.StatusCode(), Err: fmt.Errorf("payload has no feeds list")}
	}

	return payload, nil
}

// FetchReadings fetches the feed and projects it into a Series.
func (c *Client) FetchReadings(ctx context.Context, endpoint string) (models.Series, error) {
	payload, err := c.FetchFeeds(ctx, endpoint)
	if err != nil {
		return models.Series{}, err
	}
	return utils.BuildSeries(payload.Feeds), nil
}
