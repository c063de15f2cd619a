package risk

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
)

func TestBuildGraph_Tier1EdgeWeightIsVolumeShare(t *testing.T) {
	g := BuildGraph([]contracts.Supplier{{ID: "s1", SupplyVolumePct: 40}})
	require.Len(t, g.Edges["s1"], 1)
	assert.InDelta(t, 0.4, g.Edges["s1"][0].Weight, 1e-9)
	assert.Equal(t, CompanyNodeID, g.Edges["s1"][0].To)
}

func TestBuildGraph_UpstreamSupplierGetsSyntheticNode(t *testing.T) {
	g := BuildGraph([]contracts.Supplier{{
		ID:              "s1",
		SupplyVolumePct: 40,
		UpstreamSuppliers: []contracts.UpstreamSupplier{
			{Name: "raw-miner", SupplyVolumePct: 60},
		},
	}})
	upID := syntheticUpstreamID("s1", 0)
	require.Len(t, g.Edges[upID], 1)
	assert.Equal(t, "s1", g.Edges[upID][0].To)
	assert.InDelta(t, 0.6, g.Edges[upID][0].Weight, 1e-9)
}

func TestPropagate_TerminatesAndKeepsMaxOverPaths(t *testing.T) {
	g := &Graph{
		Edges: map[string][]Edge{
			"origin": {{To: "company", Weight: 0.5}, {To: "mid", Weight: 1.0}},
			"mid":    {{To: "company", Weight: 1.0}},
		},
		MitigationScoreOf: map[string]float64{"mid": 0.5, "company": 0.5},
	}
	result := g.Propagate("origin", 20.0, 1.0)
	assert.Contains(t, result, "mid")
	// Direct edge gives company 20*0.5*1.0 = 10; the path via mid gives 20.
	assert.InDelta(t, 20.0, result["company"], 1e-9)
	_, hasOrigin := result["origin"]
	assert.False(t, hasOrigin)
}

func TestPropagate_BelowThresholdStopsTraversal(t *testing.T) {
	g := &Graph{
		Edges: map[string][]Edge{
			"origin": {{To: "mid", Weight: 0.01}},
			"mid":    {{To: "company", Weight: 1.0}},
		},
	}
	result := g.Propagate("origin", 1.0, 1.0)
	assert.Empty(t, result)
}

type fakeLoader struct {
	suppliers []contracts.Supplier
	calls     int
}

func (f *fakeLoader) ListSuppliers(ctx context.Context) ([]contracts.Supplier, error) {
	f.calls++
	return f.suppliers, nil
}

func TestGraphCache_RebuildsOnlyAfterInvalidate(t *testing.T) {
	loader := &fakeLoader{suppliers: []contracts.Supplier{{ID: "s1", SupplyVolumePct: 10}}}
	cache := NewGraphCache(loader)

	_, err := cache.Get(context.Background())
	require.NoError(t, err)
	_, err = cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, loader.calls)

	cache.Invalidate()
	_, err = cache.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, loader.calls)
}
