// Package alerting implements the alerting stage: alternate-supplier
// ranking, recommendation synthesis, alert persistence, and outbound
// notification, using a weighted multi-factor scoring model for
// candidate suppliers.
package alerting

import (
	"sort"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
)

const maxAlternates = 5

// RankAlternates scores every candidate against disrupted using seven
// weighted factors, then returns the top maxAlternates sorted by score
// descending with a stable tie-break (capacity desc, lead-time asc,
// name asc).
func RankAlternates(candidates []contracts.Supplier, disrupted contracts.Supplier, requiredVolumePct float64) []contracts.AlternateSupplier {
	ranked := make([]contracts.AlternateSupplier, 0, len(candidates))
	for _, c := range candidates {
		ranked = append(ranked, scoreAlternate(c, disrupted, requiredVolumePct))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		capA, capB := candidateCapacity(candidates, a.SupplierID), candidateCapacity(candidates, b.SupplierID)
		if capA != capB {
			return capA > capB
		}
		if a.LeadTimeWeeks != b.LeadTimeWeeks {
			return a.LeadTimeWeeks < b.LeadTimeWeeks
		}
		return a.Name < b.Name
	})

	if len(ranked) > maxAlternates {
		ranked = ranked[:maxAlternates]
	}
	return ranked
}

func candidateCapacity(candidates []contracts.Supplier, id string) float64 {
	for _, c := range candidates {
		if c.ID == id {
			return c.MaxCapacity
		}
	}
	return 0
}

func scoreAlternate(candidate, disrupted contracts.Supplier, requiredVolumePct float64) contracts.AlternateSupplier {
	geo := 0.3
	if candidate.Country != disrupted.Country {
		geo = 1.0
	}

	cap := 0.5
	if candidate.MaxCapacity > 0 && requiredVolumePct > 0 {
		cap = candidate.MaxCapacity / requiredVolumePct
		if cap > 1.0 {
			cap = 1.0
		}
	}

	rel := 0.4
	switch {
	case candidate.ApprovedVendor:
		rel = 1.0
	case candidate.Status == contracts.SupplierPreQualified:
		rel = 0.8
	}

	esg := float64(candidate.ESGScore) / 100.0
	if candidate.ESGScore == 0 {
		esg = 0.5
	}

	financial := creditRatingScore(candidate.CreditRating)

	switchCost := candidate.SwitchingCostEstimate
	if switchCost == 0 {
		switchCost = 5.0
	}
	switchScore := 1.0 - switchCost/10.0

	leadTime := candidate.LeadTimeWeeks
	if leadTime == 0 {
		leadTime = 8
	}
	leadScore := 1.0 / (1.0 + float64(leadTime)/4.0)

	final := (geo*0.20 + cap*0.25 + rel*0.20 + esg*0.10 + financial*0.10 + switchScore*0.05 + leadScore*0.10) * 10

	return contracts.AlternateSupplier{
		SupplierID:    candidate.ID,
		Name:          candidate.Name,
		Country:       candidate.Country,
		Score:         final,
		LeadTimeWeeks: leadTime,
		Breakdown: map[string]float64{
			"geographic_diversity": geo,
			"capacity_coverage":    cap,
			"existing_relationship": rel,
			"esg":                  esg,
			"financial_stability":  financial,
			"switching_cost":       switchScore,
			"lead_time":            leadScore,
		},
	}
}

// creditRatingScore maps a letter credit rating ordinal to the [0,1]
// financial stability factor, AAA=1.0 down to C=0.05; unrated candidates
// get a neutral default of 5.0/10.
func creditRatingScore(rating string) float64 {
	switch rating {
	case "AAA", "AA":
		return 1.0
	case "A":
		return 0.8
	case "BBB":
		return 0.6
	case "BB":
		return 0.4
	case "B":
		return 0.2
	case "CCC":
		return 0.1
	case "CC":
		return 0.07
	case "C":
		return 0.05
	case "D":
		return 0.0
	default:
		return 0.5
	}
}
