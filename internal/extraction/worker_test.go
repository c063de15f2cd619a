package extraction

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
	"github.com/lumenforge/supply-risk-platform/internal/llm"
	"github.com/lumenforge/supply-risk-platform/internal/platform/errs"
)

type fakeExtractionStore struct {
	fakeResolver
	company       contracts.Company
	suppliers     []contracts.Supplier
	article       contracts.Article
	inserted      []contracts.RiskEvent
	processedID   string
	processedNote string
}

func (f *fakeExtractionStore) GetCompany(ctx context.Context, id string) (contracts.Company, error) {
	return f.company, nil
}

func (f *fakeExtractionStore) ListSuppliers(ctx context.Context) ([]contracts.Supplier, error) {
	return f.suppliers, nil
}

func (f *fakeExtractionStore) GetArticle(ctx context.Context, id string) (contracts.Article, error) {
	return f.article, nil
}

func (f *fakeExtractionStore) MarkArticleProcessed(ctx context.Context, articleID string, riskEventID *string, note string) error {
	if riskEventID != nil {
		f.processedID = *riskEventID
	}
	f.processedNote = note
	return nil
}

func (f *fakeExtractionStore) InsertRiskEvent(ctx context.Context, e contracts.RiskEvent) error {
	f.inserted = append(f.inserted, e)
	return nil
}

type fakeExtractor struct {
	fakeEmbedder
	err error
}

func (f *fakeExtractor) ExtractRisk(ctx context.Context, ec llm.ExtractionContext, headline, body string, useCapable bool) (llm.Extraction, error) {
	return llm.Extraction{}, f.err
}

func TestProcess_MalformedLLMOutputPersistsUnscoredEventAndAcks(t *testing.T) {
	store := &fakeExtractionStore{
		fakeResolver: fakeResolver{byLowerName: map[string]contracts.Supplier{}},
		company:      contracts.Company{Name: "Acme", KeyGeographies: []string{"Taiwan"}},
		article:      contracts.Article{ID: "art-1", Headline: "Acme plant disrupted", Body: "details"},
	}
	extractor := &fakeExtractor{
		fakeEmbedder: fakeEmbedder{vec: []float32{1, 1, 1}},
		err:          fmt.Errorf("%w: still malformed after retry", errs.MalformedLLMOutput),
	}
	w := &Worker{
		Store:              store,
		LLM:                extractor,
		KeywordCache:       NewKeywordEmbeddingCache(extractor),
		CompanyID:          "acme",
		RelevanceThreshold: -1,
	}

	err := w.process(context.Background(), store.article)
	require.NoError(t, err)

	require.Len(t, store.inserted, 1)
	assert.False(t, store.inserted[0].IsRisk)
	assert.Equal(t, "art-1", store.inserted[0].ArticleID)
	assert.Equal(t, store.inserted[0].ID, store.processedID)
	assert.Equal(t, "malformed-llm-output", store.processedNote)
}

func TestProcess_TransientExtractionErrorPropagates(t *testing.T) {
	store := &fakeExtractionStore{
		fakeResolver: fakeResolver{byLowerName: map[string]contracts.Supplier{}},
		company:      contracts.Company{Name: "Acme", KeyGeographies: []string{"Taiwan"}},
		article:      contracts.Article{ID: "art-2", Headline: "Acme plant disrupted", Body: "details"},
	}
	extractor := &fakeExtractor{
		fakeEmbedder: fakeEmbedder{vec: []float32{1, 1, 1}},
		err:          fmt.Errorf("%w: timeout", errs.Transient),
	}
	w := &Worker{
		Store:              store,
		LLM:                extractor,
		KeywordCache:       NewKeywordEmbeddingCache(extractor),
		CompanyID:          "acme",
		RelevanceThreshold: -1,
	}

	err := w.process(context.Background(), store.article)
	require.Error(t, err)
	assert.True(t, errs.IsTransient(err))
	assert.Empty(t, store.inserted)
}
