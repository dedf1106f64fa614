package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/02loveslollipop/water-quality-viewer/internal/chart"
	"github.com/02loveslollipop/water-quality-viewer/internal/dashboard"
	"github.com/02loveslollipop/water-quality-viewer/internal/logging"
	"github.com/02loveslollipop/water-quality-viewer/internal/thingspeak"
	"github.com/02loveslollipop/water-quality-viewer/services/api/config"
	httpserver "github.com/02loveslollipop/water-quality-viewer/services/api/http"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger, err := logging.New(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger error: %v", err)
	}
	defer logger.Sync()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	client := thingspeak.NewClient(cfg.RequestTimeout)
	renderer := chart.NewRenderer(cfg.ChartWidth, cfg.ChartHeight)
	dash := dashboard.New(client, cfg.FeedURL, renderer, logger)

	// The first fetch is awaited here; on failure the viewer still serves an
	// empty dashboard and a later refresh can fill it.
	if err := dash.Refresh(ctx); err != nil {
		logger.Error("initial fetch failed",
			zap.String("kind", thingspeak.KindName(err)),
			zap.Error(err))
	}

	if cfg.RefreshInterval > 0 {
		logger.Info("periodic refresh enabled", zap.Duration("interval", cfg.RefreshInterval))
		go dash.Run(ctx, cfg.RefreshInterval)
	}

	srv := httpserver.New(cfg, dash, logger)
	logger.Info("viewer listening", zap.String("addr", cfg.ListenAddr()))

	if err := srv.Run(ctx); err != nil {
		logger.Fatal("server error", zap.Error(err))
	}
}
