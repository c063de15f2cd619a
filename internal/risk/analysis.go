package risk

import (
	"sort"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
)

// SingleSourceMaterial names a material supplied by exactly one active,
// pre-qualified or alternate supplier, a concentration risk worth
// surfacing on its own.
type SingleSourceMaterial struct {
	Material   string
	SupplierID string
	Supplier   string
}

// SingleSourceMaterials returns every material with exactly one active,
// pre-qualified or alternate supplier behind it.
func SingleSourceMaterials(suppliers []contracts.Supplier) []SingleSourceMaterial {
	bySupplierCount := make(map[string][]contracts.Supplier)
	for _, s := range suppliers {
		if !s.Status.IsAlternateCandidateStatus() {
			continue
		}
		for _, m := range s.Materials {
			bySupplierCount[m] = append(bySupplierCount[m], s)
		}
	}

	var out []SingleSourceMaterial
	for material, ss := range bySupplierCount {
		if len(ss) == 1 {
			out = append(out, SingleSourceMaterial{
				Material:   material,
				SupplierID: ss[0].ID,
				Supplier:   ss[0].Name,
			})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Material < out[j].Material })
	return out
}

// CriticalNode is a supplier ranked by how many distinct materials route
// through it, a betweenness-style measure that needs no graph-library
// dependency to compute over this star-shaped supplier->company topology.
type CriticalNode struct {
	SupplierID string
	Name       string
	MaterialCount int
	DemandSharePct float64
}

// CriticalNodes ranks the topN suppliers by materials supplied, breaking
// ties by demand share, mirroring find_critical_nodes' purpose of
// surfacing single points of failure.
func CriticalNodes(suppliers []contracts.Supplier, topN int) []CriticalNode {
	nodes := make([]CriticalNode, 0, len(suppliers))
	for _, s := range suppliers {
		nodes = append(nodes, CriticalNode{
			SupplierID:     s.ID,
			Name:           s.Name,
			MaterialCount:  len(s.Materials),
			DemandSharePct: s.SupplyVolumePct,
		})
	}
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].MaterialCount != nodes[j].MaterialCount {
			return nodes[i].MaterialCount > nodes[j].MaterialCount
		}
		return nodes[i].DemandSharePct > nodes[j].DemandSharePct
	})
	if topN > 0 && len(nodes) > topN {
		nodes = nodes[:topN]
	}
	return nodes
}
