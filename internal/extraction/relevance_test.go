package extraction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
)

func TestCosineSimilarity_IdenticalVectorsIsOne(t *testing.T) {
	v := []float32{1, 2, 3}
	assert.InDelta(t, 1.0, CosineSimilarity(v, v), 1e-9)
}

func TestCosineSimilarity_OrthogonalVectorsIsZero(t *testing.T) {
	assert.InDelta(t, 0.0, CosineSimilarity([]float32{1, 0}, []float32{0, 1}), 1e-9)
}

func TestCosineSimilarity_MismatchedLengthIsZero(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity([]float32{1, 2}, []float32{1}))
}

func TestCosineSimilarity_EmptyVectorIsZero(t *testing.T) {
	assert.Equal(t, 0.0, CosineSimilarity(nil, nil))
}

func TestBuildCompanyKeywords_OrdersByShareAndCriticality(t *testing.T) {
	company := contracts.Company{
		Name: "Acme Corp",
		MaterialCriticality: map[string]int{
			"lithium": 9,
			"steel":   3,
		},
		KeyGeographies: []string{"Taiwan", "Chile"},
	}
	suppliers := []contracts.Supplier{
		{Name: "HighShare", Tier: 1, SupplyVolumePct: 80},
		{Name: "LowShare", Tier: 1, SupplyVolumePct: 10},
		{Name: "Tier2Supplier", Tier: 2, SupplyVolumePct: 99},
	}

	keywords := BuildCompanyKeywords(company, suppliers)
	assert.Equal(t, "Acme Corp", keywords[0])
	assert.Contains(t, keywords, "HighShare")
	assert.NotContains(t, keywords, "Tier2Supplier")
	assert.Contains(t, keywords, "lithium")
}

type fakeEmbedder struct {
	calls int
	vec   []float32
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	f.calls++
	return f.vec, nil
}

func TestKeywordEmbeddingCache_CachesAcrossStableProfileVersion(t *testing.T) {
	embedder := &fakeEmbedder{vec: []float32{1, 2, 3}}
	cache := NewKeywordEmbeddingCache(embedder)
	company := contracts.Company{Name: "Acme", ProfileVersion: 1}

	_, err := cache.Get(context.Background(), company, nil)
	assert.NoError(t, err)
	_, err = cache.Get(context.Background(), company, nil)
	assert.NoError(t, err)
	assert.Equal(t, 1, embedder.calls)

	company.ProfileVersion = 2
	_, err = cache.Get(context.Background(), company, nil)
	assert.NoError(t, err)
	assert.Equal(t, 2, embedder.calls)
}
