package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
)

func TestSingleSourceMaterials_OnlyExactlyOneSupplier(t *testing.T) {
	suppliers := []contracts.Supplier{
		{ID: "s1", Name: "Acme", Materials: []string{"lithium"}, Status: contracts.SupplierActive},
		{ID: "s2", Name: "Beta", Materials: []string{"cobalt"}, Status: contracts.SupplierActive},
		{ID: "s3", Name: "Gamma", Materials: []string{"cobalt"}, Status: contracts.SupplierActive},
	}
	out := SingleSourceMaterials(suppliers)
	assert.Len(t, out, 1)
	assert.Equal(t, "lithium", out[0].Material)
	assert.Equal(t, "s1", out[0].SupplierID)
}

func TestSingleSourceMaterials_IgnoresInactiveSuppliers(t *testing.T) {
	suppliers := []contracts.Supplier{
		{ID: "s1", Materials: []string{"lithium"}, Status: contracts.SupplierInactive},
	}
	assert.Empty(t, SingleSourceMaterials(suppliers))
}

func TestCriticalNodes_RanksByMaterialCountThenDemandShare(t *testing.T) {
	suppliers := []contracts.Supplier{
		{ID: "s1", Name: "one-material-high-share", Materials: []string{"a"}, SupplyVolumePct: 90},
		{ID: "s2", Name: "two-materials", Materials: []string{"a", "b"}, SupplyVolumePct: 10},
	}
	out := CriticalNodes(suppliers, 5)
	assert.Equal(t, "s2", out[0].SupplierID)
	assert.Equal(t, "s1", out[1].SupplierID)
}

func TestCriticalNodes_TruncatesToTopN(t *testing.T) {
	suppliers := []contracts.Supplier{
		{ID: "s1", Materials: []string{"a"}},
		{ID: "s2", Materials: []string{"b"}},
		{ID: "s3", Materials: []string{"c"}},
	}
	assert.Len(t, CriticalNodes(suppliers, 2), 2)
}
