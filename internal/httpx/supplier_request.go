package httpx

import (
	"github.com/go-playground/validator/v10"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
)

var validate = validator.New()

// SupplierUpsertRequest is the onboarding/edit payload for PUT
// /v1/suppliers/{id}, validated before it ever reaches the repository.
type SupplierUpsertRequest struct {
	Name                  string   `json:"name" validate:"required,max=200"`
	Country               string   `json:"country" validate:"required,len=2"`
	Region                string   `json:"region" validate:"max=100"`
	Tier                  int      `json:"tier" validate:"required,oneof=1 2"`
	Materials             []string `json:"materials" validate:"required,min=1,dive,required"`
	SupplyVolumePct       float64  `json:"supply_volume_pct" validate:"gte=0,lte=100"`
	Status                string   `json:"status" validate:"required,oneof=active pre_qualified alternate inactive"`
	ApprovedVendor        bool     `json:"approved_vendor"`
	ESGScore              int      `json:"esg_score" validate:"gte=0,lte=100"`
	CreditRating          string   `json:"credit_rating" validate:"omitempty,oneof=AAA AA A BBB BB B CCC CC C D"`
	MaxCapacity           float64  `json:"max_capacity" validate:"gte=0"`
	LeadTimeWeeks         int      `json:"lead_time_weeks" validate:"gte=0"`
	SwitchingCostEstimate float64  `json:"switching_cost_estimate" validate:"gte=0,lte=10"`
}

// Validate runs struct-tag validation; on failure the returned error
// lists every failing field.
func (r SupplierUpsertRequest) Validate() error {
	return validate.Struct(r)
}

// ToSupplier merges the request onto id, the path-supplied supplier id.
func (r SupplierUpsertRequest) ToSupplier(id string) contracts.Supplier {
	return contracts.Supplier{
		ID:                    id,
		Name:                  r.Name,
		Country:               r.Country,
		Region:                r.Region,
		Tier:                  r.Tier,
		Materials:             r.Materials,
		SupplyVolumePct:       r.SupplyVolumePct,
		Status:                contracts.SupplierStatus(r.Status),
		ApprovedVendor:        r.ApprovedVendor,
		ESGScore:              r.ESGScore,
		CreditRating:          r.CreditRating,
		MaxCapacity:           r.MaxCapacity,
		LeadTimeWeeks:         r.LeadTimeWeeks,
		SwitchingCostEstimate: r.SwitchingCostEstimate,
	}
}
