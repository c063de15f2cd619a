package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lumenforge/supply-risk-platform/internal/config"
	"github.com/lumenforge/supply-risk-platform/internal/platform/logging"
	"github.com/lumenforge/supply-risk-platform/internal/risk"
	"github.com/lumenforge/supply-risk-platform/internal/storage"
	"github.com/lumenforge/supply-risk-platform/internal/stream"
)

func main() {
	cfg := config.Load()
	logger := logging.New("scorer", cfg.Dev)
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

	graphCache := risk.NewGraphCache(repo)

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.WorkerConcurrency; i++ {
		worker := &risk.Worker{
			Substrate:            substrate,
			Store:                repo,
			GraphCache:           graphCache,
			CompanyID:            cfg.CompanyID,
			PropagationThreshold: cfg.PropagationThreshold,
			ConsumerName:         fmt.Sprintf("scorer-%d", i),
			BlockDuration:        cfg.WorkerBlock(),
			BatchSize:            int64(cfg.WorkerBatchSize),
			ClaimMinIdle:         cfg.ClaimMinIdle(),
			Logger:               logger,
		}
		g.Go(func() error { return worker.Run(gctx) })
	}

	logger.Info("scorer running", zap.Int("concurrency", cfg.WorkerConcurrency))
	if err := g.Wait(); err != nil {
		logger.Info("scorer stopped", zap.Error(err))
	}
}
