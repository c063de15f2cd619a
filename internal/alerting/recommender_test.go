package alerting

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
)

func TestRankAlternates_PrefersDifferentGeography(t *testing.T) {
	disrupted := contracts.Supplier{ID: "d1", Country: "China", SupplyVolumePct: 40}
	sameCountry := contracts.Supplier{ID: "a", Name: "SameCountry", Country: "China", MaxCapacity: 100, LeadTimeWeeks: 4}
	diffCountry := contracts.Supplier{ID: "b", Name: "DiffCountry", Country: "Vietnam", MaxCapacity: 100, LeadTimeWeeks: 4}

	ranked := RankAlternates([]contracts.Supplier{sameCountry, diffCountry}, disrupted, 40)
	assert.Equal(t, "b", ranked[0].SupplierID)
}

func TestRankAlternates_TruncatesToFive(t *testing.T) {
	disrupted := contracts.Supplier{ID: "d1", Country: "China"}
	candidates := make([]contracts.Supplier, 0, 8)
	for i := 0; i < 8; i++ {
		candidates = append(candidates, contracts.Supplier{ID: string(rune('a' + i)), Name: string(rune('a' + i)), Country: "Vietnam"})
	}
	ranked := RankAlternates(candidates, disrupted, 40)
	assert.Len(t, ranked, 5)
}

func TestRankAlternates_StableTieBreakByCapacityThenLeadTimeThenName(t *testing.T) {
	disrupted := contracts.Supplier{ID: "d1", Country: "China"}
	a := contracts.Supplier{ID: "a", Name: "Zed", Country: "Vietnam", MaxCapacity: 50, LeadTimeWeeks: 4}
	b := contracts.Supplier{ID: "b", Name: "Alpha", Country: "Vietnam", MaxCapacity: 50, LeadTimeWeeks: 4}

	ranked := RankAlternates([]contracts.Supplier{a, b}, disrupted, 50)
	assert.Equal(t, "b", ranked[0].SupplierID)
}

func TestCreditRatingScore_CoversFullOrdinalScale(t *testing.T) {
	assert.Equal(t, 1.0, creditRatingScore("AAA"))
	assert.Equal(t, 0.05, creditRatingScore("C"))
	assert.Equal(t, 0.0, creditRatingScore("D"))
	assert.Equal(t, 0.5, creditRatingScore(""))
	assert.Equal(t, 0.5, creditRatingScore("unrated"))
}

func TestScoreAlternate_ScoreWithinZeroToTenRange(t *testing.T) {
	disrupted := contracts.Supplier{ID: "d1", Country: "China"}
	candidate := contracts.Supplier{
		ID: "a", Name: "Best", Country: "Vietnam", MaxCapacity: 100,
		ApprovedVendor: true, ESGScore: 90, CreditRating: "AAA",
		SwitchingCostEstimate: 1, LeadTimeWeeks: 2,
	}
	scored := scoreAlternate(candidate, disrupted, 50)
	assert.GreaterOrEqual(t, scored.Score, 0.0)
	assert.LessOrEqual(t, scored.Score, 10.0)
}
