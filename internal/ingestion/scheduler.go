package ingestion

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
	"github.com/lumenforge/supply-risk-platform/internal/platform/errs"
	"github.com/lumenforge/supply-risk-platform/internal/storage"
	"github.com/lumenforge/supply-risk-platform/internal/stream"
)

// Scheduler polls every registered Connector on a fixed interval,
// normalizes each item, deduplicates by fingerprint, persists the
// article, and publishes to normalized_events.
type Scheduler struct {
	Connectors []Connector
	Substrate  *stream.Substrate
	Repo       *storage.Repository
	Interval   time.Duration
	DedupTTL   time.Duration
	Logger     *zap.Logger
}

// Run ticks every s.Interval until ctx is cancelled, running one poll
// immediately on start.
func (s *Scheduler) Run(ctx context.Context) error {
	s.pollAll(ctx)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			s.pollAll(ctx)
		}
	}
}

func (s *Scheduler) pollAll(ctx context.Context) {
	for _, conn := range s.Connectors {
		items, err := conn.Fetch(ctx)
		if err != nil {
			s.Logger.Warn("connector fetch failed", zap.String("connector", conn.Name()), zap.Error(err))
			continue
		}
		for _, item := range items {
			if err := s.ingestOne(ctx, item); err != nil {
				s.Logger.Warn("ingest item failed",
					zap.String("connector", conn.Name()), zap.String("url", item.URL), zap.Error(err))
			}
		}
	}
}

func (s *Scheduler) ingestOne(ctx context.Context, item RawItem) error {
	article, err := Normalize(item)
	if err != nil {
		return err
	}

	firstSeen, err := s.Substrate.Dedup(ctx, article.ID, s.DedupTTL)
	if err != nil {
		return fmt.Errorf("%w: dedup check: %v", errs.Transient, err)
	}
	if !firstSeen {
		return nil
	}

	if err := s.Repo.InsertArticle(ctx, article); err != nil {
		return err
	}

	_, err = s.Substrate.Publish(ctx, contracts.StreamNormalizedEvents, contracts.NormalizedEventMsg{Article: article})
	return err
}
