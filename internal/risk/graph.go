package risk

import (
	"context"
	"strconv"
	"sync"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
)

// CompanyNodeID is the fixed identity of the company node in the derived
// supplier graph, distinct from any supplier's UUID.
const CompanyNodeID = "__company__"

// Edge is one directed dependency, upstream supplier toward company, with
// weight = supply_volume_pct/100.
type Edge struct {
	To     string
	Weight float64
}

// Graph is the derived, in-memory directed supplier dependency graph:
// nodes are the company plus every supplier, edges run upstream->company.
type Graph struct {
	Edges             map[string][]Edge // node id -> outgoing edges
	MitigationScoreOf map[string]float64 // supplier id -> mitigation score in [0,1], default 0.5
}

// BuildGraph constructs the graph from a supplier snapshot. Every
// supplier, whatever its tier, gets an edge to CompanyNodeID weighted by
// its own demand share; each UpstreamSupplier entry on a supplier becomes
// a synthetic node with an edge into that supplier. Supplier records are
// not linked to one another.
func BuildGraph(suppliers []contracts.Supplier) *Graph {
	g := &Graph{
		Edges:             make(map[string][]Edge),
		MitigationScoreOf: make(map[string]float64),
	}

	for _, s := range suppliers {
		weight := s.SupplyVolumePct / 100.0
		if weight < 0 {
			weight = 0
		}
		if weight > 1 {
			weight = 1
		}
		g.Edges[s.ID] = append(g.Edges[s.ID], Edge{To: CompanyNodeID, Weight: weight})
		g.MitigationScoreOf[s.ID] = defaultMitigationScore

		for i, up := range s.UpstreamSuppliers {
			upID := syntheticUpstreamID(s.ID, i)
			upWeight := up.SupplyVolumePct / 100.0
			if upWeight <= 0 {
				upWeight = 1.0
			}
			if upWeight > 1 {
				upWeight = 1
			}
			g.Edges[upID] = append(g.Edges[upID], Edge{To: s.ID, Weight: upWeight})
			g.MitigationScoreOf[upID] = defaultMitigationScore
		}
	}
	return g
}

func syntheticUpstreamID(supplierID string, index int) string {
	return supplierID + "#upstream#" + strconv.Itoa(index)
}

const defaultMitigationScore = 0.5
const propagationDefaultThreshold = 1.0

// Propagate performs a BFS risk propagation walk starting at origin with
// initialScore, dropping any candidate whose propagated value does not
// strictly exceed threshold (1.0 when threshold <= 0). A node is re-enqueued
// only on strict improvement, which bounds traversal to O(|V|*|E|).
func (g *Graph) Propagate(origin string, initialScore, threshold float64) map[string]float64 {
	if threshold <= 0 {
		threshold = propagationDefaultThreshold
	}

	propagated := map[string]float64{origin: initialScore}
	queue := []string{origin}

	for len(queue) > 0 {
		node := queue[0]
		queue = queue[1:]
		score := propagated[node]

		for _, edge := range g.Edges[node] {
			vulnerability := 1.0 - g.mitigationScore(edge.To)
			propagatedScore := score * edge.Weight * (0.5 + vulnerability)

			if propagatedScore <= threshold {
				continue
			}
			if existing, ok := propagated[edge.To]; !ok || propagatedScore > existing {
				propagated[edge.To] = propagatedScore
				queue = append(queue, edge.To)
			}
		}
	}

	delete(propagated, origin)
	return propagated
}

func (g *Graph) mitigationScore(nodeID string) float64 {
	if v, ok := g.MitigationScoreOf[nodeID]; ok {
		return v
	}
	return defaultMitigationScore
}

// SupplierLoader resolves the current supplier snapshot the cache rebuilds
// from. Implemented by the storage repository.
type SupplierLoader interface {
	ListSuppliers(ctx context.Context) ([]contracts.Supplier, error)
}

// GraphCache holds a lazily-rebuilt Graph guarded by a single writer lock
// with multi-reader access, invalidated by a version counter bumped
// whenever the supplier collection is mutated.
type GraphCache struct {
	mu      sync.RWMutex
	loader  SupplierLoader
	graph   *Graph
	version int64
	built   int64
}

// NewGraphCache wraps loader with the version-counter cache.
func NewGraphCache(loader SupplierLoader) *GraphCache {
	return &GraphCache{loader: loader}
}

// Invalidate bumps the version counter; the next Get rebuilds the graph.
func (c *GraphCache) Invalidate() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.version++
}

// Get returns the current graph, rebuilding it if the version counter has
// advanced past the last build.
func (c *GraphCache) Get(ctx context.Context) (*Graph, error) {
	c.mu.RLock()
	if c.graph != nil && c.built == c.version {
		g := c.graph
		c.mu.RUnlock()
		return g, nil
	}
	c.mu.RUnlock()

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.graph != nil && c.built == c.version {
		return c.graph, nil
	}

	suppliers, err := c.loader.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	c.graph = BuildGraph(suppliers)
	c.built = c.version
	return c.graph, nil
}
