package connectors

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
)

func TestBuildKeywords_CompanyNameAlwaysFirst(t *testing.T) {
	company := contracts.Company{Name: "Vantage Electronics"}
	keywords := BuildKeywords(company, nil)
	assert.Equal(t, []string{"Vantage Electronics"}, keywords)
}

func TestBuildKeywords_OrdersTier1ByVolumeDescending(t *testing.T) {
	company := contracts.Company{Name: "Vantage Electronics"}
	suppliers := []contracts.Supplier{
		{Name: "LowVolume", Tier: 1, SupplyVolumePct: 5},
		{Name: "HighVolume", Tier: 1, SupplyVolumePct: 40},
		{Name: "Tier2Only", Tier: 2, SupplyVolumePct: 90},
	}
	keywords := BuildKeywords(company, suppliers)
	assert.Equal(t, []string{"Vantage Electronics", "HighVolume", "LowVolume"}, keywords)
}

func TestBuildKeywords_MaterialsOrderedByCriticalityDescending(t *testing.T) {
	company := contracts.Company{
		Name: "Vantage Electronics",
		MaterialCriticality: map[string]int{
			"copper":               3,
			"rare_earth_magnets":   9,
		},
	}
	keywords := BuildKeywords(company, nil)
	assert.Equal(t, []string{"Vantage Electronics", "rare_earth_magnets", "copper"}, keywords)
}

func TestBuildKeywords_CappedAtFiveTotal(t *testing.T) {
	company := contracts.Company{
		Name: "Vantage Electronics",
		MaterialCriticality: map[string]int{
			"copper": 1, "steel": 2, "aluminum": 3, "nickel": 4,
		},
	}
	suppliers := []contracts.Supplier{
		{Name: "A", Tier: 1, SupplyVolumePct: 10},
		{Name: "B", Tier: 1, SupplyVolumePct: 20},
		{Name: "C", Tier: 1, SupplyVolumePct: 30},
	}
	keywords := BuildKeywords(company, suppliers)
	assert.Len(t, keywords, 5)
	assert.Equal(t, "Vantage Electronics", keywords[0])
}
