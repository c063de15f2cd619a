package extraction

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
	"github.com/lumenforge/supply-risk-platform/internal/llm"
	"github.com/lumenforge/supply-risk-platform/internal/platform"
	"github.com/lumenforge/supply-risk-platform/internal/platform/errs"
	"github.com/lumenforge/supply-risk-platform/internal/stream"
)

// Store is the subset of the repository this stage depends on.
type Store interface {
	SupplierResolver
	GetCompany(ctx context.Context, id string) (contracts.Company, error)
	ListSuppliers(ctx context.Context) ([]contracts.Supplier, error)
	GetArticle(ctx context.Context, id string) (contracts.Article, error)
	MarkArticleProcessed(ctx context.Context, articleID string, riskEventID *string, note string) error
	InsertRiskEvent(ctx context.Context, e contracts.RiskEvent) error
}

// Extractor is the subset of llm.Client this stage depends on.
type Extractor interface {
	Embedder
	ExtractRisk(ctx context.Context, ec llm.ExtractionContext, headline, body string, useCapable bool) (llm.Extraction, error)
}

// Worker consumes normalized_events, relevance-filters, extracts a
// structured risk, links entities, and emits to risk_entities.
type Worker struct {
	Substrate          *stream.Substrate
	Store              Store
	LLM                Extractor
	KeywordCache       *KeywordEmbeddingCache
	CompanyID          string
	RelevanceThreshold float64
	ConsumerName       string
	BlockDuration      time.Duration
	BatchSize          int64
	ClaimMinIdle       time.Duration
	Logger             *zap.Logger
}

// Run loops consuming batches until ctx is cancelled. When a read
// returns nothing, it also claims entries idle past ClaimMinIdle from
// peers that died mid-processing.
func (w *Worker) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		entries, err := w.Substrate.Consume(ctx, contracts.StreamNormalizedEvents, contracts.GroupRiskExtraction,
			w.ConsumerName, w.BlockDuration, w.BatchSize)
		if err != nil {
			if errors.Is(ctx.Err(), context.Canceled) {
				return ctx.Err()
			}
			w.Logger.Warn("consume failed", zap.Error(err))
			continue
		}

		if len(entries) == 0 && w.ClaimMinIdle > 0 {
			claimed, err := w.Substrate.Claim(ctx, contracts.StreamNormalizedEvents, contracts.GroupRiskExtraction,
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
	var msg contracts.NormalizedEventMsg
	if err := stream.Decode(entry, &msg); err != nil {
		w.Logger.Error("decode normalized event failed", zap.Error(err))
		return
	}

	if err := w.process(ctx, msg.Article); err != nil {
		if errs.IsTransient(err) {
			w.Logger.Warn("transient extraction failure, leaving unacked", zap.String("article_id", msg.Article.ID), zap.Error(err))
			return
		}
		w.Logger.Error("extraction failed permanently, acking to avoid poison message",
			zap.String("article_id", msg.Article.ID), zap.Error(err))
	}

	if err := w.Substrate.Ack(ctx, contracts.StreamNormalizedEvents, contracts.GroupRiskExtraction, entry.ID); err != nil {
		w.Logger.Warn("ack failed", zap.Error(err))
	}
}

func (w *Worker) process(ctx context.Context, article contracts.Article) error {
	current, err := w.Store.GetArticle(ctx, article.ID)
	if err != nil {
		return fmt.Errorf("resolve article: %w", err)
	}
	if current.Processed {
		return nil
	}

	company, err := w.Store.GetCompany(ctx, w.CompanyID)
	if err != nil {
		return fmt.Errorf("resolve company: %w", err)
	}
	suppliers, err := w.Store.ListSuppliers(ctx)
	if err != nil {
		return fmt.Errorf("list suppliers: %w", err)
	}

	relevant, _, err := w.checkRelevance(ctx, company, suppliers, article)
	if err != nil {
		return err
	}
	if !relevant {
		return w.Store.MarkArticleProcessed(ctx, article.ID, nil, "irrelevant")
	}

	ec := llm.ExtractionContext{
		CompanyName:  company.Name,
		SupplierList: supplierNames(suppliers),
		Materials:    company.RawMaterials,
		Geographies:  company.KeyGeographies,
	}
	useCapable := llm.UsesComplexModel(article.Headline, article.Body)

	extraction, err := w.LLM.ExtractRisk(ctx, ec, article.Headline, article.Body, useCapable)
	if err != nil {
		if !errs.IsMalformedLLMOutput(err) {
			return fmt.Errorf("extract risk: %w", err)
		}
		return w.persistUnscored(ctx, article, err)
	}
	if !extraction.IsRisk {
		return w.Store.MarkArticleProcessed(ctx, article.ID, nil, "not-a-risk")
	}

	linked, err := LinkEntities(ctx, w.Store, extraction.AffectedSupplyChainNodes)
	if err != nil {
		return fmt.Errorf("link entities: %w", err)
	}

	event := contracts.RiskEvent{
		ID:                       uuid.NewString(),
		ArticleID:                article.ID,
		RiskType:                 contracts.RiskType(extraction.RiskType),
		AffectedEntities:         append(linked.UnmatchedFree, extraction.AffectedEntities...),
		AffectedSupplyChainNodes: extraction.AffectedSupplyChainNodes,
		Severity:                 contracts.Severity(extraction.Severity),
		Confirmation:             contracts.Confirmation(extraction.IsConfirmed),
		TimeHorizon:              contracts.TimeHorizon(extraction.TimeHorizon),
		Reasoning:                extraction.Reasoning,
		RecommendedAction:        extraction.RecommendedAction,
		IsRisk:                   true,
		CreatedAt:                time.Now().UTC(),
	}
	event.LinkedSupplierIDs = supplierIDs(linked.Suppliers)

	if err := w.Store.InsertRiskEvent(ctx, event); err != nil {
		return fmt.Errorf("insert risk event: %w", err)
	}
	if err := w.Store.MarkArticleProcessed(ctx, article.ID, &event.ID, ""); err != nil {
		return fmt.Errorf("mark article processed: %w", err)
	}

	_, err = w.Substrate.Publish(ctx, contracts.StreamRiskEntities, contracts.RiskEntityMsg{
		RiskEventID: event.ID,
		ArticleID:   article.ID,
	})
	if err != nil {
		return fmt.Errorf("%w: publish risk entity: %v", errs.Transient, err)
	}
	return nil
}

// persistUnscored records a risk event with is_risk=false for an article
// whose extraction came back malformed even after the retry in ExtractRisk,
// so the article is never reprocessed but no score is fabricated for it.
func (w *Worker) persistUnscored(ctx context.Context, article contracts.Article, cause error) error {
	event := contracts.RiskEvent{
		ID:        uuid.NewString(),
		ArticleID: article.ID,
		IsRisk:    false,
		Reasoning: fmt.Sprintf("extraction output malformed after retry: %v", cause),
		CreatedAt: time.Now().UTC(),
	}
	if err := w.Store.InsertRiskEvent(ctx, event); err != nil {
		return fmt.Errorf("insert unscored risk event: %w", err)
	}
	return w.Store.MarkArticleProcessed(ctx, article.ID, &event.ID, "malformed-llm-output")
}

func (w *Worker) checkRelevance(ctx context.Context, company contracts.Company, suppliers []contracts.Supplier, article contracts.Article) (bool, float64, error) {
	articleEmbedding, err := platformRetryEmbed(ctx, w.LLM, truncate(article.Headline+" "+article.Body, 1000))
	if err != nil {
		return false, 0, fmt.Errorf("embed article: %w", err)
	}

	keywordEmbedding, err := w.KeywordCache.Get(ctx, company, suppliers)
	if err != nil {
		return false, 0, fmt.Errorf("embed keywords: %w", err)
	}

	score := CosineSimilarity(articleEmbedding, keywordEmbedding)
	return score >= w.RelevanceThreshold, score, nil
}

func platformRetryEmbed(ctx context.Context, embedder Embedder, text string) ([]float32, error) {
	var result []float32
	err := platform.Retry(ctx, 3, 200*time.Millisecond, func() error {
		emb, err := embedder.Embed(ctx, text)
		if err != nil {
			return err
		}
		result = emb
		return nil
	})
	return result, err
}

func supplierNames(suppliers []contracts.Supplier) []string {
	names := make([]string, len(suppliers))
	for i, s := range suppliers {
		names[i] = s.Name
	}
	return names
}

func supplierIDs(suppliers []contracts.Supplier) []string {
	ids := make([]string, len(suppliers))
	for i, s := range suppliers {
		ids[i] = s.ID
	}
	return ids
}
