package risk

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
)

func TestScore_ExactFormula(t *testing.T) {
	in := ScoreInput{
		Severity:            contracts.SeverityHigh,
		Confirmation:        contracts.ConfirmationConfirmed,
		TimeHorizon:         contracts.HorizonImmediate,
		SupplyVolumePct:     40,
		MaterialCriticality: 8,
		InventoryBufferDays: 15,
		AlternateCount:      2,
	}
	c := Score(in)

	assert.InDelta(t, 0.80, c.Probability, 1e-9)
	assert.InDelta(t, 0.4*0.8*(1.0/(1.0+15.0/30.0))*10.0, c.Impact, 1e-9)
	assert.InDelta(t, 2.0, c.Urgency, 1e-9)
	assert.InDelta(t, 1.4, c.Mitigation, 1e-9)

	composite := Composite(c)
	assert.InDelta(t, c.Probability*c.Impact*c.Urgency/c.Mitigation, composite, 1e-9)
}

func TestScore_UnconfirmedDiscountsProbability(t *testing.T) {
	confirmed := Score(ScoreInput{Severity: contracts.SeverityCritical, Confirmation: contracts.ConfirmationConfirmed})
	uncertain := Score(ScoreInput{Severity: contracts.SeverityCritical, Confirmation: contracts.ConfirmationUncertain})
	assert.InDelta(t, confirmed.Probability*0.7, uncertain.Probability, 1e-9)
}

func TestMitigation_BonusCapsAtOne(t *testing.T) {
	c := Score(ScoreInput{Severity: contracts.SeverityLow, Confirmation: contracts.ConfirmationConfirmed, AlternateCount: 10})
	assert.InDelta(t, 2.0, c.Mitigation, 1e-9)
}

func TestSeverityBand_Monotonic(t *testing.T) {
	assert.Equal(t, contracts.SeverityCritical, SeverityBand(10))
	assert.Equal(t, contracts.SeverityCritical, SeverityBand(50))
	assert.Equal(t, contracts.SeverityHigh, SeverityBand(9.99))
	assert.Equal(t, contracts.SeverityHigh, SeverityBand(6))
	assert.Equal(t, contracts.SeverityMedium, SeverityBand(5.99))
	assert.Equal(t, contracts.SeverityMedium, SeverityBand(3))
	assert.Equal(t, contracts.SeverityLow, SeverityBand(2.99))
	assert.Equal(t, contracts.SeverityLow, SeverityBand(0))
}

func TestComposite_ZeroMitigationIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Composite(contracts.RiskScoreComponents{Probability: 1, Impact: 1, Urgency: 1, Mitigation: 0}))
}

func TestSelectDominant_PicksHighestImpactNotHighestVolume(t *testing.T) {
	company := contracts.Company{
		MaterialCriticality: map[string]int{"steel": 3, "rare_earth": 9},
		InventoryBufferDays: map[string]int{"steel": 90, "rare_earth": 5},
	}
	suppliers := []contracts.Supplier{
		{ID: "high-volume-low-impact", SupplyVolumePct: 80, Materials: []string{"steel"}},
		{ID: "low-volume-high-impact", SupplyVolumePct: 10, Materials: []string{"rare_earth"}},
	}

	dominant, material := SelectDominant(suppliers, company)

	assert.Equal(t, "low-volume-high-impact", dominant.ID)
	assert.Equal(t, "rare_earth", material)
}

func TestSelectDominant_SingleCandidate(t *testing.T) {
	company := contracts.Company{MaterialCriticality: map[string]int{"cobalt": 5}}
	suppliers := []contracts.Supplier{{ID: "only", SupplyVolumePct: 20, Materials: []string{"cobalt"}}}

	dominant, material := SelectDominant(suppliers, company)

	assert.Equal(t, "only", dominant.ID)
	assert.Equal(t, "cobalt", material)
}

func TestCountAlternates_ExcludesSelfAndIneligibleStatus(t *testing.T) {
	suppliers := []contracts.Supplier{
		{ID: "self", Materials: []string{"lithium"}, Status: contracts.SupplierActive},
		{ID: "a", Materials: []string{"lithium"}, Status: contracts.SupplierActive},
		{ID: "b", Materials: []string{"lithium"}, Status: contracts.SupplierInactive},
		{ID: "c", Materials: []string{"cobalt"}, Status: contracts.SupplierActive},
	}
	assert.Equal(t, 1, CountAlternates(suppliers, "lithium", "self"))
}
