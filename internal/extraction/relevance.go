// Package extraction implements the extraction stage: relevance
// filtering via embedding similarity, structured-output LLM extraction,
// and entity linking against the supplier store.
package extraction

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
)

// Embedder is the subset of the llm.Client this package depends on.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CosineSimilarity computes the cosine similarity of two equal-length
// vectors, returning 0 for empty or mismatched inputs.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) == 0 || len(b) == 0 || len(a) != len(b) {
		return 0
	}

	var dot, magA, magB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		magA += float64(a[i]) * float64(a[i])
		magB += float64(b[i]) * float64(b[i])
	}
	if magA == 0 || magB == 0 {
		return 0
	}
	return dot / (math.Sqrt(magA) * math.Sqrt(magB))
}

// BuildCompanyKeywords assembles the keyword list the relevance filter
// embeds: company name, top-5 tier-1 suppliers by demand share, top-3
// critical materials, top-3 key geographies, per build_company_keywords.
func BuildCompanyKeywords(company contracts.Company, suppliers []contracts.Supplier) []string {
	keywords := []string{company.Name}

	tier1 := make([]contracts.Supplier, 0, len(suppliers))
	for _, s := range suppliers {
		if s.Tier == 1 {
			tier1 = append(tier1, s)
		}
	}
	sort.Slice(tier1, func(i, j int) bool { return tier1[i].SupplyVolumePct > tier1[j].SupplyVolumePct })
	for i, s := range tier1 {
		if i >= 5 {
			break
		}
		keywords = append(keywords, s.Name)
	}

	type matCrit struct {
		material    string
		criticality int
	}
	mats := make([]matCrit, 0, len(company.MaterialCriticality))
	for m, c := range company.MaterialCriticality {
		mats = append(mats, matCrit{m, c})
	}
	sort.Slice(mats, func(i, j int) bool { return mats[i].criticality > mats[j].criticality })
	for i, m := range mats {
		if i >= 3 {
			break
		}
		keywords = append(keywords, m.material)
	}

	for i, g := range company.KeyGeographies {
		if i >= 3 {
			break
		}
		keywords = append(keywords, g)
	}

	return keywords
}

// KeywordEmbeddingCache holds the company keyword embedding for the
// lifetime of a stable profile version, recomputing only when
// ProfileVersion advances.
type KeywordEmbeddingCache struct {
	mu        sync.RWMutex
	embedder  Embedder
	version   int64
	embedding []float32
}

// NewKeywordEmbeddingCache wraps embedder with the version-guarded cache.
func NewKeywordEmbeddingCache(embedder Embedder) *KeywordEmbeddingCache {
	return &KeywordEmbeddingCache{embedder: embedder}
}

// Get returns the cached embedding for company+suppliers if profileVersion
// matches the last build, otherwise recomputes and caches it.
func (c *KeywordEmbeddingCache) Get(ctx context.Context, company contracts.Company, suppliers []contracts.Supplier) ([]float32, error) {
	c.mu.RLock()
	if c.embedding != nil && c.version == company.ProfileVersion {
		emb := c.embedding
		c.mu.RUnlock()
		return emb, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.embedding != nil && c.version == company.ProfileVersion {
		return c.embedding, nil
	}

	keywords := BuildCompanyKeywords(company, suppliers)
	text := truncate(strings.Join(keywords, " "), 1000)

	emb, err := c.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed company keywords: %w", err)
	}
	c.embedding = emb
	c.version = company.ProfileVersion
	return emb, nil
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}
