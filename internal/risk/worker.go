package risk

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
	"github.com/lumenforge/supply-risk-platform/internal/platform/errs"
	"github.com/lumenforge/supply-risk-platform/internal/stream"
)

// Store is the subset of the repository the scoring stage depends on.
type Store interface {
	GetCompany(ctx context.Context, id string) (contracts.Company, error)
	ListSuppliers(ctx context.Context) ([]contracts.Supplier, error)
	GetRiskEvent(ctx context.Context, id string) (contracts.RiskEvent, error)
	UpdateRiskEventScoring(ctx context.Context, e contracts.RiskEvent) error
	UpdateSupplierRiskScore(ctx context.Context, id string, score float64) error
}

// Worker consumes risk_entities, selects the dominant linked supplier by
// impact, computes the composite score against it, propagates the score
// through the derived supplier graph, persists both, and emits to
// risk_scores.
type Worker struct {
	Substrate            *stream.Substrate
	Store                Store
	GraphCache           *GraphCache
	CompanyID            string
	PropagationThreshold float64
	ConsumerName         string
	BlockDuration        time.Duration
	BatchSize            int64
	ClaimMinIdle         time.Duration
	Logger               *zap.Logger
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

		entries, err := w.Substrate.Consume(ctx, contracts.StreamRiskEntities, contracts.GroupRiskScoring,
			w.ConsumerName, w.BlockDuration, w.BatchSize)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return ctx.Err()
			}
			w.Logger.Warn("consume failed", zap.Error(err))
			continue
		}

		if len(entries) == 0 && w.ClaimMinIdle > 0 {
			claimed, err := w.Substrate.Claim(ctx, contracts.StreamRiskEntities, contracts.GroupRiskScoring,
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
	var msg contracts.RiskEntityMsg
	if err := stream.Decode(entry, &msg); err != nil {
		w.Logger.Error("decode risk entity failed", zap.Error(err))
		return
	}

	if err := w.process(ctx, msg.RiskEventID); err != nil {
		if errs.IsTransient(err) {
			w.Logger.Warn("transient scoring failure, leaving unacked",
				zap.String("risk_event_id", msg.RiskEventID), zap.Error(err))
			return
		}
		w.Logger.Error("scoring failed permanently, acking to avoid poison message",
			zap.String("risk_event_id", msg.RiskEventID), zap.Error(err))
	}

	if err := w.Substrate.Ack(ctx, contracts.StreamRiskEntities, contracts.GroupRiskScoring, entry.ID); err != nil {
		w.Logger.Warn("ack failed", zap.Error(err))
	}
}

func (w *Worker) process(ctx context.Context, riskEventID string) error {
	event, err := w.Store.GetRiskEvent(ctx, riskEventID)
	if err != nil {
		return fmt.Errorf("resolve risk event: %w", err)
	}
	if event.CompositeScore != 0 {
		return nil
	}

	company, err := w.Store.GetCompany(ctx, w.CompanyID)
	if err != nil {
		return fmt.Errorf("resolve company: %w", err)
	}

	var components contracts.RiskScoreComponents
	var originID string
	if len(event.LinkedSupplierIDs) > 0 {
		suppliers, err := w.Store.ListSuppliers(ctx)
		if err != nil {
			return fmt.Errorf("list suppliers: %w", err)
		}
		linked := filterSuppliers(suppliers, event.LinkedSupplierIDs)

		if len(linked) > 0 {
			dominant, material := SelectDominant(linked, company)
			event.PrimarySupplierID = dominant.ID
			event.PrimaryMaterial = material

			components = Score(ScoreInput{
				Severity:            event.Severity,
				Confirmation:        event.Confirmation,
				TimeHorizon:         event.TimeHorizon,
				SupplyVolumePct:     dominant.SupplyVolumePct,
				Material:            material,
				MaterialCriticality: company.MaterialCriticality[material],
				InventoryBufferDays: company.InventoryBufferDays[material],
				AlternateCount:      CountAlternates(suppliers, material, dominant.ID),
			})
			originID = dominant.ID
		}
	}
	if originID == "" {
		components = Score(ScoreInput{
			Severity:     event.Severity,
			Confirmation: event.Confirmation,
			TimeHorizon:  event.TimeHorizon,
		})
		originID = CompanyNodeID
	}

	composite := Composite(components)
	event.Components = components
	event.CompositeScore = composite
	event.SeverityBand = SeverityBand(composite)

	if originID != CompanyNodeID {
		graph, err := w.GraphCache.Get(ctx)
		if err != nil {
			return fmt.Errorf("load graph: %w", err)
		}
		event.Propagation = graph.Propagate(originID, composite, w.PropagationThreshold)

		for supplierID, propagated := range event.Propagation {
			if supplierID == CompanyNodeID {
				continue
			}
			if err := w.Store.UpdateSupplierRiskScore(ctx, supplierID, propagated); err != nil {
				return fmt.Errorf("update supplier risk score %s: %w", supplierID, err)
			}
		}
		if err := w.Store.UpdateSupplierRiskScore(ctx, originID, composite); err != nil {
			return fmt.Errorf("update origin supplier risk score: %w", err)
		}
	}

	if err := w.Store.UpdateRiskEventScoring(ctx, event); err != nil {
		return fmt.Errorf("persist scoring: %w", err)
	}

	_, err = w.Substrate.Publish(ctx, contracts.StreamRiskScores, contracts.RiskScoreMsg{RiskEventID: event.ID})
	if err != nil {
		return fmt.Errorf("%w: publish risk score: %v", errs.Transient, err)
	}
	return nil
}

func filterSuppliers(suppliers []contracts.Supplier, ids []string) []contracts.Supplier {
	wanted := make(map[string]bool, len(ids))
	for _, id := range ids {
		wanted[id] = true
	}
	out := make([]contracts.Supplier, 0, len(ids))
	for _, s := range suppliers {
		if wanted[s.ID] {
			out = append(out, s)
		}
	}
	return out
}
