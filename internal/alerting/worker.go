package alerting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
	"github.com/lumenforge/supply-risk-platform/internal/llm"
	"github.com/lumenforge/supply-risk-platform/internal/platform/errs"
	"github.com/lumenforge/supply-risk-platform/internal/stream"
)

// Store is the subset of the repository the alerting stage depends on.
type Store interface {
	GetRiskEvent(ctx context.Context, id string) (contracts.RiskEvent, error)
	GetSupplier(ctx context.Context, id string) (contracts.Supplier, error)
	AlternateCandidates(ctx context.Context, material, excludeID string) ([]contracts.Supplier, error)
	InsertAlert(ctx context.Context, a contracts.Alert) error
}

// Recommender is the subset of llm.Client this stage depends on.
type Recommender interface {
	GenerateRecommendation(ctx context.Context, rc llm.RecommendationContext) (string, error)
}

// Worker consumes risk_scores, applies the alert threshold, ranks
// alternate suppliers, synthesizes a recommendation, persists the
// alert, publishes to new_alerts, and notifies every configured sink.
type Worker struct {
	Substrate      *stream.Substrate
	Store          Store
	LLM            Recommender
	Sinks          []Notifier
	AlertThreshold float64
	ConsumerName   string
	BlockDuration  time.Duration
	BatchSize      int64
	ClaimMinIdle   time.Duration
	Logger         *zap.Logger
}

// Run loops consuming batches until ctx is cancelled, reclaiming entries
// idle past ClaimMinIdle when a read returns nothing.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		entries, err := w.Substrate.Consume(ctx, contracts.StreamRiskScores, contracts.GroupAlerting,
			w.ConsumerName, w.BlockDuration, w.BatchSize)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return ctx.Err()
			}
			w.Logger.Warn("consume failed", zap.Error(err))
			continue
		}

		if len(entries) == 0 && w.ClaimMinIdle > 0 {
			claimed, err := w.Substrate.Claim(ctx, contracts.StreamRiskScores, contracts.GroupAlerting,
				w.ConsumerName, w.ClaimMinIdle, w.BatchSize)
			if err != nil {
				w.Logger.Warn("claim failed", zap.Error(err))
			} else {
				entries = claimed
			}
		}

		for _, entry := range entries {
			w.handle(ctx, entry)
		}
	}
}

func (w *Worker) handle(ctx context.Context, entry stream.Entry) {
	var msg contracts.RiskScoreMsg
	if err := stream.Decode(entry, &msg); err != nil {
		w.Logger.Error("decode risk score failed", zap.Error(err))
		return
	}

	if err := w.process(ctx, msg.RiskEventID); err != nil {
		if errs.IsTransient(err) {
			w.Logger.Warn("transient alerting failure, leaving unacked",
				zap.String("risk_event_id", msg.RiskEventID), zap.Error(err))
			return
		}
		w.Logger.Error("alerting failed permanently, acking to avoid poison message",
			zap.String("risk_event_id", msg.RiskEventID), zap.Error(err))
	}

	if err := w.Substrate.Ack(ctx, contracts.StreamRiskScores, contracts.GroupAlerting, entry.ID); err != nil {
		w.Logger.Warn("ack failed", zap.Error(err))
	}
}

func (w *Worker) process(ctx context.Context, riskEventID string) error {
	event, err := w.Store.GetRiskEvent(ctx, riskEventID)
	if err != nil {
		return fmt.Errorf("resolve risk event: %w", err)
	}

	if event.CompositeScore < w.AlertThreshold {
		return nil
	}

	var alternates []contracts.AlternateSupplier
	var disrupted contracts.Supplier
	if event.PrimarySupplierID != "" {
		disrupted, err = w.Store.GetSupplier(ctx, event.PrimarySupplierID)
		if err != nil {
			return fmt.Errorf("resolve disrupted supplier: %w", err)
		}

		candidates, err := w.Store.AlternateCandidates(ctx, event.PrimaryMaterial, disrupted.ID)
		if err != nil {
			return fmt.Errorf("list alternate candidates: %w", err)
		}
		alternates = RankAlternates(candidates, disrupted, disrupted.SupplyVolumePct)
	}

	title := fmt.Sprintf("%s risk: %s", event.SeverityBand, event.RiskType)

	recommendation := ""
	if w.LLM != nil {
		recommendation, err = w.LLM.GenerateRecommendation(ctx, llm.RecommendationContext{
			Title:            title,
			CompositeScore:   event.CompositeScore,
			SeverityBand:     event.SeverityBand,
			AffectedSupplier: disrupted.Name,
			TopCandidates:    alternates,
		})
		if err != nil {
			w.Logger.Warn("recommendation synthesis failed, using fallback", zap.Error(err))
		}
	}
	if recommendation == "" {
		var top contracts.AlternateSupplier
		if len(alternates) > 0 {
			top = alternates[0]
		}
		recommendation = llm.FallbackRecommendation(top)
	}

	affectedSuppliers := event.AffectedSupplyChainNodes
	affectedMaterials := []string{}
	if event.PrimaryMaterial != "" {
		affectedMaterials = append(affectedMaterials, event.PrimaryMaterial)
	}

	alert := contracts.Alert{
		ID:                uuid.NewString(),
		RiskEventID:       event.ID,
		SeverityBand:      event.SeverityBand,
		CompositeScore:    event.CompositeScore,
		Title:             title,
		Description:       event.Reasoning,
		AffectedSuppliers: affectedSuppliers,
		AffectedMaterials: affectedMaterials,
		Alternates:        alternates,
		Recommendation:    recommendation,
		CreatedAt:         time.Now().UTC(),
	}

	if err := w.Store.InsertAlert(ctx, alert); err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}

	for _, notifyErr := range NotifyAll(ctx, w.Sinks, alert) {
		w.Logger.Warn("notification sink failed", zap.Error(notifyErr))
	}

	_, err = w.Substrate.Publish(ctx, contracts.StreamNewAlerts, contracts.NewAlertMsg{AlertID: alert.ID})
	if err != nil {
		return fmt.Errorf("%w: publish new alert: %v", errs.Transient, err)
	}
	return nil
}
