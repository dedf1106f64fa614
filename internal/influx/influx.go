// Package influx mirrors archived readings into an InfluxDB bucket.
package influx

import (
	"context"
	"fmt"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/02loveslollipop/water-quality-viewer/internal/models"
)

// Measurement is the InfluxDB measurement every reading is written to.
const Measurement = "water_quality"

// Writer writes readings to a single org/bucket.
type Writer struct {
	client influxdb2.Client
	org    string
	bucket string
}

// New creates a Writer. The connection is not checked until Health is called.
func New(url, token, org, bucket string) *Writer {
	return &Writer{
		client: influxdb2.NewClient(url, token),
		org:    org,
		bucket: bucket,
	}
}

// Health verifies the server reports a passing status.
func (w *Writer) Health(ctx context.Context) error {
	health, err := w.client.Health(ctx)
	if err != nil {
		return fmt.Errorf("influx health: %w", err)
	}
	if health.Status != "pass" {
		msg := ""
		if health.Message != nil {
			msg = *health.Message
		}
		return fmt.Errorf("influx health check failed: %s", msg)
	}
	return nil
}

// WriteReadings writes one point per row using the blocking write API.
func (w *Writer) WriteReadings(ctx context.Context, rows []models.ArchiveRow) error {
	if len(rows) == 0 {
		return nil
	}
	points := make([]*write.Point, 0, len(rows))
	for _, row := range rows {
		points = append(points, Point(row))
	}
	if err := w.client.WriteAPIBlocking(w.org, w.bucket).WritePoint(ctx, points...); err != nil {
		return fmt.Errorf("error writing to InfluxDB: %w", err)
	}
	return nil
}

// Close releases the underlying client.
func (w *Writer) Close() {
	w.client.Close()
}

// Point converts an archive row into an InfluxDB point.
func Point(row models.ArchiveRow) *write.Point {
	return influxdb2.NewPoint(
		Measurement,
		map[string]string{"channel_id": row.ChannelID},
		map[string]interface{}{
			"tds":          row.TDS,
			"conductivity": row.Conductivity,
			"hardness":     row.Hardness,
			"potable":      row.Potable,
			"entry_id":     row.EntryID,
		},
		row.TS,
	)
}
