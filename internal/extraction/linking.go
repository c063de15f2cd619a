package extraction

import (
	"context"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
)

// SupplierResolver resolves a free-form name to a supplier via a
// case-insensitive exact-then-substring match.
type SupplierResolver interface {
	FindSupplierByName(ctx context.Context, name string) (contracts.Supplier, bool, error)
}

// LinkedEntities is the result of matching the LLM's
// affected_supply_chain_nodes strings against the supplier store.
type LinkedEntities struct {
	Suppliers     []contracts.Supplier
	UnmatchedFree []string
}

// LinkEntities matches each node name to a supplier where possible;
// anything unmatched is retained as a free-form affected entity only.
func LinkEntities(ctx context.Context, resolver SupplierResolver, nodeNames []string) (LinkedEntities, error) {
	var out LinkedEntities
	seen := make(map[string]bool)

	for _, name := range nodeNames {
		s, ok, err := resolver.FindSupplierByName(ctx, name)
		if err != nil {
			return LinkedEntities{}, err
		}
		if ok {
			if !seen[s.ID] {
				seen[s.ID] = true
				out.Suppliers = append(out.Suppliers, s)
			}
			continue
		}
		out.UnmatchedFree = append(out.UnmatchedFree, name)
	}
	return out, nil
}
