package extraction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
)

type fakeResolver struct {
	byLowerName map[string]contracts.Supplier
}

func (f *fakeResolver) FindSupplierByName(ctx context.Context, name string) (contracts.Supplier, bool, error) {
	for key, s := range f.byLowerName {
		if key == name {
			return s, true, nil
		}
	}
	return contracts.Supplier{}, false, nil
}

func TestLinkEntities_MatchesAndDedupes(t *testing.T) {
	resolver := &fakeResolver{byLowerName: map[string]contracts.Supplier{
		"acme": {ID: "s1", Name: "Acme"},
	}}
	out, err := LinkEntities(context.Background(), resolver, []string{"acme", "acme", "unknown-co"})
	require.NoError(t, err)
	assert.Len(t, out.Suppliers, 1)
	assert.Equal(t, "s1", out.Suppliers[0].ID)
	assert.Equal(t, []string{"unknown-co"}, out.UnmatchedFree)
}

func TestLinkEntities_NoMatchesKeepsAllFree(t *testing.T) {
	resolver := &fakeResolver{byLowerName: map[string]contracts.Supplier{}}
	out, err := LinkEntities(context.Background(), resolver, []string{"x", "y"})
	require.NoError(t, err)
	assert.Empty(t, out.Suppliers)
	assert.Equal(t, []string{"x", "y"}, out.UnmatchedFree)
}
