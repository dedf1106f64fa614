package db

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/02loveslollipop/water-quality-viewer/internal/models"
)

const schemaSQL = `
CREATE SCHEMA IF NOT EXISTS water;
CREATE TABLE IF NOT EXISTS water.readings (
    channel_id   TEXT             NOT NULL,
    ts           TIMESTAMPTZ      NOT NULL,
    entry_id     INTEGER          NOT NULL,
    tds          DOUBLE PRECISION NOT NULL,
    conductivity DOUBLE PRECISION NOT NULL,
    hardness     DOUBLE PRECISION NOT NULL,
    potable      BOOLEAN          NOT NULL,
    ingested_at  TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
    updated_at   TIMESTAMPTZ      NOT NULL DEFAULT NOW(),
    PRIMARY KEY (channel_id, ts)
);`

// EnsureSchema creates the archive schema and table when missing.
func EnsureSchema(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, schemaSQL)
	return err
}

// FetchLastReadingTS returns the newest archived timestamp for a channel, or
// the zero time when nothing has been archived yet.
func FetchLastReadingTS(ctx context.Context, pool *pgxpool.Pool, channelID string) (time.Time, error) {
	var ts *time.Time
	err := pool.QueryRow(ctx, `
SELECT MAX(ts)
FROM water.readings
WHERE channel_id = $1`, channelID).Scan(&ts)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, nil
		}
		return time.Time{}, err
	}
	if ts == nil {
		return time.Time{}, nil
	}
	return ts.UTC(), nil
}

// InsertReadings writes archive rows, updating values for timestamps already stored.
func InsertReadings(ctx context.Context, pool *pgxpool.Pool, rows []models.ArchiveRow) error {
	if len(rows) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	query := `INSERT INTO water.readings (channel_id, ts, entry_id, tds, conductivity, hardness, potable, ingested_at, updated_at)
VALUES ($1,$2,$3,$4,$5,$6,$7,NOW(),NOW())
ON CONFLICT (channel_id, ts) DO UPDATE
SET entry_id = EXCLUDED.entry_id,
    tds = EXCLUDED.tds,
    conductivity = EXCLUDED.conductivity,
    hardness = EXCLUDED.hardness,
    potable = EXCLUDED.potable,
    updated_at = NOW()`

	for _, r := range rows {
		batch.Queue(query, r.ChannelID, r.TS, r.EntryID, r.TDS, r.Conductivity, r.Hardness, r.Potable)
	}

	res := pool.SendBatch(ctx, batch)
	defer res.Close()

	for range rows {
		if _, err := res.Exec(); err != nil {
			return err
		}
	}

	return nil
}
