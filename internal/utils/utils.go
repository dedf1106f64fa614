package utils

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/02loveslollipop/water-quality-viewer/internal/models"
	"github.com/02loveslollipop/water-quality-viewer/internal/potability"
)

// ParseField coerces a raw feed field into a number. The longest numeric
// prefix of the text is used, so "412.5ppm" reads as 412.5. Null, absent,
// empty, non-numeric and non-finite values all become 0.
func ParseField(raw json.RawMessage) float64 {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return 0
	}

	var text string
	if raw[0] == '"' {
		if err := json.Unmarshal(raw, &text); err != nil {
			return 0
		}
	} else {
		text = string(raw)
	}

	prefix := numericPrefix(strings.TrimLeftFunc(text, unicode.IsSpace))
	if prefix == "" {
		return 0
	}
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// numericPrefix returns the longest leading decimal literal of s: an optional
// sign, digits with at most one point, and an exponent only when it carries
// digits. "Infinity" is recognised as a literal of its own.
func numericPrefix(s string) string {
	i := 0
	if i < len(s) && (s[i] == '+' || s[i] == '-') {
		i++
	}
	if strings.HasPrefix(s[i:], "Infinity") {
		return s[:i+len("Infinity")]
	}

	digits := 0
	for i < len(s) && isDigit(s[i]) {
		i++
		digits++
	}
	if i < len(s) && s[i] == '.' {
		i++
		for i < len(s) && isDigit(s[i]) {
			i++
			digits++
		}
	}
	if digits == 0 {
		return ""
	}

	end := i
	if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
		j := i + 1
		if j < len(s) && (s[j] == '+' || s[j] == '-') {
			j++
		}
		k := j
		for k < len(s) && isDigit(s[k]) {
			k++
		}
		if k > j {
			end = k
		}
	}
	return s[:end]
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// BuildSeries projects feeds into the four parallel sequences, preserving order.
func BuildSeries(feeds []models.Feed) models.Series {
	series := models.Series{
		Timestamps:   make([]string, 0, len(feeds)),
		TDS:          make([]float64, 0, len(feeds)),
		Conductivity: make([]float64, 0, len(feeds)),
		Hardness:     make([]float64, 0, len(feeds)),
	}
	for _, feed := range feeds {
		series.Timestamps = append(series.Timestamps, feed.CreatedAt)
		series.TDS = append(series.TDS, ParseField(feed.Field1))
		series.Conductivity = append(series.Conductivity, ParseField(feed.Field2))
		series.Hardness = append(series.Hardness, ParseField(feed.Field3))
	}
	return series
}

// ParseTimestamp parses a ThingSpeak created_at value.
func ParseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, false
	}
	return t.UTC(), true
}

// BuildArchiveRows converts feeds into archive rows. Feeds whose timestamp
// cannot be parsed are skipped.
func BuildArchiveRows(channelID string, feeds []models.Feed) []models.ArchiveRow {
	rows := make([]models.ArchiveRow, 0, len(feeds))
	for _, feed := range feeds {
		ts, ok := ParseTimestamp(feed.CreatedAt)
		if !ok {
			continue
		}
		tds := ParseField(feed.Field1)
		cond := ParseField(feed.Field2)
		hard := ParseField(feed.Field3)
		rows = append(rows, models.ArchiveRow{
			ChannelID:    channelID,
			EntryID:      feed.EntryID,
			TS:           ts,
			TDS:          tds,
			Conductivity: cond,
			Hardness:     hard,
			Potable:      potability.Classify(tds, cond, hard) == potability.StatusSafe,
		})
	}
	return rows
}

// FilterNewRows keeps rows strictly newer than the last archived timestamp.
// A zero last timestamp keeps everything.
func FilterNewRows(rows []models.ArchiveRow, last time.Time) []models.ArchiveRow {
	if last.IsZero() {
		return rows
	}
	out := make([]models.ArchiveRow, 0, len(rows))
	for _, row := range rows {
		if row.TS.After(last) {
			out = append(out, row)
		}
	}
	return out
}

// RowString prints an archive row for logging.
func RowString(row models.ArchiveRow) string {
	return fmt.Sprintf("ts=%s tds=%.3f cond=%.3f hard=%.3f potable=%v",
		row.TS.Format(time.RFC3339), row.TDS, row.Conductivity, row.Hardness, row.Potable)
}
