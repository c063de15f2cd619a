package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/lumenforge/supply-risk-platform/internal/config"
	"github.com/lumenforge/supply-risk-platform/internal/ingestion"
	"github.com/lumenforge/supply-risk-platform/internal/ingestion/connectors"
	"github.com/lumenforge/supply-risk-platform/internal/platform/logging"
	"github.com/lumenforge/supply-risk-platform/internal/storage"
	"github.com/lumenforge/supply-risk-platform/internal/stream"
)

func main() {
	cfg := config.Load()
	logger := logging.New("ingest", cfg.Dev)
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbPool, err := storage.Open(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("database connect failed", zap.Error(err))
	}
	defer dbPool.Close()

	if err := storage.RunMigrations(ctx, dbPool); err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}
	repo := storage.NewRepository(dbPool)

	substrate, err := stream.New(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		logger.Fatal("redis connect failed", zap.Error(err))
	}
	defer substrate.Close()

	newsAPI := connectors.NewNewsAPIConnector(cfg.NewsAPIKey, cfg.CompanyID, repo)

	scheduler := &ingestion.Scheduler{
		Connectors: []ingestion.Connector{newsAPI},
		Substrate:  substrate,
		Repo:       repo,
		Interval:   cfg.FetchInterval(),
		DedupTTL:   cfg.DedupTTL(),
		Logger:     logger,
	}

	logger.Info("scheduler starting", zap.Duration("interval", cfg.FetchInterval()))
	if err := scheduler.Run(ctx); err != nil {
		logger.Info("scheduler stopped", zap.Error(err))
	}
}
