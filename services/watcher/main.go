package main

import (
	"context"
	"log"
	"strconv"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/02loveslollipop/water-quality-viewer/internal/db"
	"github.com/02loveslollipop/water-quality-viewer/internal/influx"
	"github.com/02loveslollipop/water-quality-viewer/internal/logging"
	"github.com/02loveslollipop/water-quality-viewer/internal/thingspeak"
	"github.com/02loveslollipop/water-quality-viewer/internal/utils"
	"github.com/02loveslollipop/water-quality-viewer/services/watcher/internal/config"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("watcher failed: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.RequestTimeout+10*time.Second)
	defer cancel()

	client := thingspeak.NewClient(cfg.RequestTimeout)
	payload, err := client.FetchFeeds(ctx, cfg.FeedURL)
	if err != nil {
		return err
	}

	channelID := cfg.ChannelID
	if payload.Channel.ID != 0 {
		channelID = strconv.Itoa(payload.Channel.ID)
	}
	logger.Info("fetched feeds", zap.Int("count", len(payload.Feeds)), zap.String("channel", channelID))

	rows := utils.BuildArchiveRows(channelID, payload.Feeds)
	if skipped := len(payload.Feeds) - len(rows); skipped > 0 {
		logger.Warn("skipped feeds with unparseable timestamps", zap.Int("skipped", skipped))
	}

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer pool.Close()

	if cfg.DryRun {
		logger.Info("dry-run: skipping schema check")
	} else if err := db.EnsureSchema(ctx, pool); err != nil {
		return err
	}

	last, err := db.FetchLastReadingTS(ctx, pool, channelID)
	if err != nil {
		if !cfg.DryRun {
			return err
		}
		logger.Warn("dry-run: could not read last archived timestamp", zap.Error(err))
	}

	pending := utils.FilterNewRows(rows, last)
	if len(pending) == 0 {
		logger.Info("no new readings to archive", zap.Time("last", last))
		return nil
	}

	logger.Info("prepared new readings", zap.Int("count", len(pending)), zap.Bool("dry_run", cfg.DryRun))

	if cfg.DryRun {
		for _, row := range pending {
			logger.Info("dry-run: would insert " + utils.RowString(row))
		}
		return nil
	}

	if err := db.InsertReadings(ctx, pool, pending); err != nil {
		return err
	}
	logger.Info("inserted readings", zap.Int("count", len(pending)))

	if !cfg.InfluxEnabled() {
		return nil
	}

	writer := influx.New(cfg.InfluxURL, cfg.InfluxToken, cfg.InfluxOrg, cfg.InfluxBucket)
	defer writer.Close()

	if err := writer.Health(ctx); err != nil {
		return err
	}
	if err := writer.WriteReadings(ctx, pending); err != nil {
		return err
	}
	logger.Info("mirrored readings to influx", zap.String("bucket", cfg.InfluxBucket), zap.Int("count", len(pending)))
	return nil
}
