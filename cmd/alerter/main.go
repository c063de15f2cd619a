package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/lumenforge/supply-risk-platform/internal/alerting"
	"github.com/lumenforge/supply-risk-platform/internal/config"
	"github.com/lumenforge/supply-risk-platform/internal/llm"
	"github.com/lumenforge/supply-risk-platform/internal/platform/logging"
	"github.com/lumenforge/supply-risk-platform/internal/storage"
	"github.com/lumenforge/supply-risk-platform/internal/stream"
)

func main() {
	cfg := config.Load()
	logger := logging.New("alerter", cfg.Dev)
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

	client := llm.New(cfg.OpenAIAPIKey, cfg.OpenAIModelFast, cfg.OpenAIModelCapable, cfg.OpenAIEmbeddingModel)

	sinks := []alerting.Notifier{
		alerting.NewSlackNotifier(cfg.SlackWebhookURL, cfg.NotifyTimeout()),
		alerting.NewEmailNotifier(cfg.SMTPHost, fmt.Sprintf("%d", cfg.SMTPPort), "", "", cfg.SMTPFrom, strings.Split(cfg.SMTPTo, ",")),
	}

	g, gctx := errgroup.WithContext(ctx)
	for i := 0; i < cfg.WorkerConcurrency; i++ {
		worker := &alerting.Worker{
			Substrate:      substrate,
			Store:          repo,
			LLM:            client,
			Sinks:          sinks,
			AlertThreshold: cfg.AlertThreshold,
			ConsumerName:   fmt.Sprintf("alerter-%d", i),
			BlockDuration:  cfg.WorkerBlock(),
			BatchSize:      int64(cfg.WorkerBatchSize),
			ClaimMinIdle:   cfg.ClaimMinIdle(),
			Logger:         logger,
		}
		g.Go(func() error { return worker.Run(gctx) })
	}

	logger.Info("alerter running", zap.Int("concurrency", cfg.WorkerConcurrency))
	if err := g.Wait(); err != nil {
		logger.Info("alerter stopped", zap.Error(err))
	}
}
