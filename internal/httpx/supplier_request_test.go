package httpx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validRequest() SupplierUpsertRequest {
	return SupplierUpsertRequest{
		Name:            "Hanwa Precision Metals",
		Country:         "JP",
		Region:          "Kansai",
		Tier:            1,
		Materials:       []string{"rare_earth_magnets"},
		SupplyVolumePct: 18,
		Status:          "active",
		ESGScore:        62,
		CreditRating:    "A",
		MaxCapacity:     4000,
		LeadTimeWeeks:   6,
	}
}

func TestSupplierUpsertRequest_ValidPasses(t *testing.T) {
	require.NoError(t, validRequest().Validate())
}

func TestSupplierUpsertRequest_RejectsMissingName(t *testing.T) {
	req := validRequest()
	req.Name = ""
	assert.Error(t, req.Validate())
}

func TestSupplierUpsertRequest_RejectsBadCountryCode(t *testing.T) {
	req := validRequest()
	req.Country = "Japan"
	assert.Error(t, req.Validate())
}

func TestSupplierUpsertRequest_RejectsUnknownStatus(t *testing.T) {
	req := validRequest()
	req.Status = "retired"
	assert.Error(t, req.Validate())
}

func TestSupplierUpsertRequest_RejectsEmptyMaterials(t *testing.T) {
	req := validRequest()
	req.Materials = nil
	assert.Error(t, req.Validate())
}

func TestSupplierUpsertRequest_AcceptsLowEndCreditRating(t *testing.T) {
	req := validRequest()
	req.CreditRating = "C"
	assert.NoError(t, req.Validate())
}

func TestSupplierUpsertRequest_RejectsUnknownCreditRating(t *testing.T) {
	req := validRequest()
	req.CreditRating = "AAAA"
	assert.Error(t, req.Validate())
}

func TestSupplierUpsertRequest_ToSupplier_CarriesPathID(t *testing.T) {
	s := validRequest().ToSupplier("sup-123")
	assert.Equal(t, "sup-123", s.ID)
	assert.Equal(t, "Hanwa Precision Metals", s.Name)
}
