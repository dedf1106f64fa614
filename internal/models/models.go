package models

import (
	"encoding/json"
	"time"
)

// FeedResponse models the JSON payload returned by the ThingSpeak feeds endpoint.
type FeedResponse struct {
	Channel Channel `json:"channel"`
	Feeds   []Feed  `json:"feeds"`
}

// Channel carries the channel metadata that accompanies a feed listing.
type Channel struct {
	ID          int    `json:"id"`
	Name        string `json:"name"`
	Field1      string `json:"field1"`
	Field2      string `json:"field2"`
	Field3      string `json:"field3"`
	LastEntryID int    `json:"last_entry_id"`
}

// Feed represents a single feed entry. Field values arrive as strings, numbers or null.
type Feed struct {
	CreatedAt string          `json:"created_at"`
	EntryID   int             `json:"entry_id"`
	Field1    json.RawMessage `json:"field1"`
	Field2    json.RawMessage `json:"field2"`
	Field3    json.RawMessage `json:"field3"`
}

// Reading is one timestamped TDS / conductivity / hardness triple.
type Reading struct {
	Timestamp    string  `json:"timestamp"`
	TDS          float64 `json:"tds"`
	Conductivity float64 `json:"conductivity"`
	Hardness     float64 `json:"hardness"`
}

// Series holds the parallel sequences built from one fetch. Index i across all
// four slices refers to the same Reading.
type Series struct {
	Timestamps   []string  `json:"timestamps"`
	TDS          []float64 `json:"tds"`
	Conductivity []float64 `json:"conductivity"`
	Hardness     []float64 `json:"hardness"`
}

// EmptySeries returns a Series with non-nil, zero-length slices.
func EmptySeries() Series {
	return Series{
		Timestamps:   []string{},
		TDS:          []float64{},
		Conductivity: []float64{},
		Hardness:     []float64{},
	}
}

// Len returns the number of readings in the series.
func (s Series) Len() int {
	return len(s.Timestamps)
}

// At returns the Reading at index i.
func (s Series) At(i int) (Reading, bool) {
	if i < 0 || i >= s.Len() {
		return Reading{}, false
	}
	return Reading{
		Timestamp:    s.Timestamps[i],
		TDS:          s.TDS[i],
		Conductivity: s.Conductivity[i],
		Hardness:     s.Hardness[i],
	}, true
}

// Latest returns the most recent Reading (the last element).
func (s Series) Latest() (Reading, bool) {
	return s.At(s.Len() - 1)
}

// ArchiveRow captures a normalized reading ready for archival.
type ArchiveRow struct {
	ChannelID    string
	EntryID      int
	TS           time.Time
	TDS          float64
	Conductivity float64
	Hardness     float64
	Potable      bool
}
