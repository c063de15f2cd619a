// Package risk computes deterministic risk scores and propagates them
// through the derived supplier graph, using the
// probability/impact/urgency/mitigation composite formula.
package risk

import (
	"github.com/lumenforge/supply-risk-platform/internal/contracts"
)

// ScoreInput is everything the composite-score formula needs about one
// linked supplier and the company profile behind it.
type ScoreInput struct {
	Severity        contracts.Severity
	Confirmation    contracts.Confirmation
	TimeHorizon     contracts.TimeHorizon
	SupplyVolumePct float64 // [0,100]
	Material        string
	MaterialCriticality int // [1,10], 0 means "unset" and defaults to 5
	InventoryBufferDays int // [0, inf)
	AlternateCount  int // suppliers overlapping material, eligible status, different identity
}

// Score computes the {probability, impact, urgency, mitigation} components
// the composite score is built from.
func Score(in ScoreInput) contracts.RiskScoreComponents {
	return contracts.RiskScoreComponents{
		Probability: probability(in.Severity, in.Confirmation),
		Impact:      impact(in.SupplyVolumePct, in.MaterialCriticality, in.InventoryBufferDays),
		Urgency:     urgency(in.TimeHorizon),
		Mitigation:  mitigation(in.AlternateCount),
	}
}

// Composite folds components into the single risk-score number.
func Composite(c contracts.RiskScoreComponents) float64 {
	if c.Mitigation == 0 {
		return 0
	}
	return c.Probability * c.Impact * c.Urgency / c.Mitigation
}

// SeverityBand derives the closed severity enumeration from a composite
// score: ≥10 critical, ≥6 high, ≥3 medium, else low.
func SeverityBand(composite float64) contracts.Severity {
	switch {
	case composite >= 10:
		return contracts.SeverityCritical
	case composite >= 6:
		return contracts.SeverityHigh
	case composite >= 3:
		return contracts.SeverityMedium
	default:
		return contracts.SeverityLow
	}
}

func probability(severity contracts.Severity, confirmation contracts.Confirmation) float64 {
	var base float64
	switch severity {
	case contracts.SeverityCritical:
		base = 0.95
	case contracts.SeverityHigh:
		base = 0.80
	case contracts.SeverityMedium:
		base = 0.55
	case contracts.SeverityLow:
		base = 0.25
	default:
		base = 0.25
	}

	if confirmation == contracts.ConfirmationUncertain || confirmation == contracts.ConfirmationUnconfirmed {
		base *= 0.7
	}
	return base
}

func impact(supplyVolumePct float64, materialCriticality, inventoryBufferDays int) float64 {
	dependencyRatio := supplyVolumePct / 100.0

	criticality := materialCriticality
	if criticality <= 0 {
		criticality = 5
	}
	criticalityNorm := float64(criticality) / 10.0

	bufferScore := 1.0 / (1.0 + float64(inventoryBufferDays)/30.0)

	return dependencyRatio * criticalityNorm * bufferScore * 10.0
}

func urgency(horizon contracts.TimeHorizon) float64 {
	switch horizon {
	case contracts.HorizonImmediate:
		return 2.0
	case contracts.HorizonDays:
		return 1.5
	case contracts.HorizonWeeks:
		return 1.0
	case contracts.HorizonMonths:
		return 0.5
	default:
		return 1.0
	}
}

func mitigation(alternateCount int) float64 {
	bonus := 0.2 * float64(alternateCount)
	if bonus > 1.0 {
		bonus = 1.0
	}
	return 1.0 + bonus
}

// SelectDominant picks the linked supplier driving a risk event's
// composite score when several are named in one article: for each
// candidate it evaluates impact() against the candidate's own
// highest-criticality material and keeps the supplier/material pair
// with the largest resulting impact.
func SelectDominant(suppliers []contracts.Supplier, company contracts.Company) (contracts.Supplier, string) {
	best := suppliers[0]
	bestMaterial := dominantMaterial(best, company)
	bestImpact := impact(best.SupplyVolumePct, company.MaterialCriticality[bestMaterial], company.InventoryBufferDays[bestMaterial])

	for _, s := range suppliers[1:] {
		material := dominantMaterial(s, company)
		candidateImpact := impact(s.SupplyVolumePct, company.MaterialCriticality[material], company.InventoryBufferDays[material])
		if candidateImpact > bestImpact {
			best, bestMaterial, bestImpact = s, material, candidateImpact
		}
	}
	return best, bestMaterial
}

func dominantMaterial(s contracts.Supplier, company contracts.Company) string {
	if len(s.Materials) == 0 {
		return ""
	}
	best := s.Materials[0]
	bestCrit := company.MaterialCriticality[best]
	for _, m := range s.Materials[1:] {
		if company.MaterialCriticality[m] > bestCrit {
			best = m
			bestCrit = company.MaterialCriticality[m]
		}
	}
	return best
}

// CountAlternates counts suppliers other than exclude that supply
// material and whose status is alternate-eligible, feeding the
// mitigation bonus.
func CountAlternates(suppliers []contracts.Supplier, material, excludeID string) int {
	count := 0
	for _, s := range suppliers {
		if s.ID == excludeID {
			continue
		}
		if !s.Status.IsAlternateCandidateStatus() {
			continue
		}
		if s.SuppliesMaterial(material) {
			count++
		}
	}
	return count
}
