// Package contracts defines the data model shared across every stage of
// the risk pipeline: the company profile, the supplier graph's raw rows,
// articles, risk events, and alerts.
package contracts

import "time"

// RiskType enumerates the risk classification categories the extraction
// stage may assign to a RiskEvent.
type RiskType string

const (
	RiskGeopolitical    RiskType = "geopolitical"
	RiskNaturalDisaster RiskType = "natural_disaster"
	RiskFinancial       RiskType = "financial"
	RiskRegulatory      RiskType = "regulatory"
	RiskOperational     RiskType = "operational"
	RiskCybersecurity   RiskType = "cybersecurity"
	RiskESG             RiskType = "esg"
	RiskSupplyDisruption RiskType = "supply_disruption"
	RiskPriceVolatility RiskType = "price_volatility"
)

// Severity is the closed enumeration of risk severities.
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityHigh     Severity = "high"
	SeverityMedium   Severity = "medium"
	SeverityLow      Severity = "low"
)

// Confirmation is the closed enumeration of confirmation states.
type Confirmation string

const (
	ConfirmationConfirmed   Confirmation = "confirmed"
	ConfirmationUnconfirmed Confirmation = "unconfirmed"
	ConfirmationUncertain   Confirmation = "uncertain"
)

// TimeHorizon is the closed enumeration of time horizons.
type TimeHorizon string

const (
	HorizonImmediate TimeHorizon = "immediate"
	HorizonDays      TimeHorizon = "days"
	HorizonWeeks     TimeHorizon = "weeks"
	HorizonMonths    TimeHorizon = "months"
)

// SupplierStatus is the closed enumeration of supplier lifecycle states.
type SupplierStatus string

const (
	SupplierActive       SupplierStatus = "active"
	SupplierPreQualified SupplierStatus = "pre_qualified"
	SupplierAlternate    SupplierStatus = "alternate"
	SupplierInactive     SupplierStatus = "inactive"
)

// AlertContact is one named recipient of alert notifications.
type AlertContact struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// Company is the single seeded profile the core scores every risk against.
type Company struct {
	ID                  string           `json:"id"`
	Name                string           `json:"name"`
	Industry            string           `json:"industry"`
	RawMaterials        []string         `json:"raw_materials"`
	MaterialCriticality map[string]int   `json:"material_criticality"`  // material -> [1,10]
	InventoryBufferDays map[string]int   `json:"inventory_buffer_days"` // material -> days
	KeyGeographies      []string         `json:"key_geographies"`
	AlertContacts       []AlertContact   `json:"alert_contacts"`
	ProfileVersion      int64            `json:"profile_version"`
	UpdatedAt           time.Time        `json:"updated_at"`
}

// UpstreamSupplier is a recursive, lightweight descriptor of a supplier
// feeding into another supplier (tier 2+).
type UpstreamSupplier struct {
	Name            string  `json:"name"`
	Country         string  `json:"country"`
	SupplyVolumePct float64 `json:"supply_volume_pct"`
}

// Supplier is a node in the derived supply graph.
type Supplier struct {
	ID                      string             `json:"id"`
	Name                    string             `json:"name"`
	Country                 string             `json:"country"`
	Region                  string             `json:"region"`
	Tier                    int                `json:"tier"` // 1 or 2
	Materials               []string           `json:"materials"`
	SupplyVolumePct         float64            `json:"supply_volume_pct"` // share of company demand, [0,100]
	Status                  SupplierStatus     `json:"status"`
	ApprovedVendor          bool               `json:"approved_vendor"`
	ESGScore                int                `json:"esg_score"` // [0,100]
	CreditRating            string             `json:"credit_rating"`
	MaxCapacity             float64            `json:"max_capacity"`
	LeadTimeWeeks           int                `json:"lead_time_weeks"`
	SwitchingCostEstimate   float64            `json:"switching_cost_estimate"` // [0,10]
	UpstreamSuppliers       []UpstreamSupplier `json:"upstream_suppliers,omitempty"`
	RiskScoreCurrent        float64            `json:"risk_score_current"`
	CreatedAt               time.Time          `json:"created_at"`
	UpdatedAt               time.Time          `json:"updated_at"`
}

// SuppliesMaterial reports whether the supplier supplies the given material.
func (s Supplier) SuppliesMaterial(material string) bool {
	for _, m := range s.Materials {
		if equalFold(m, material) {
			return true
		}
	}
	return false
}

// IsAlternateCandidateStatus reports whether status is eligible to stand
// in as an alternate supplier when ranking replacement candidates.
func (s SupplierStatus) IsAlternateCandidateStatus() bool {
	switch s {
	case SupplierActive, SupplierPreQualified, SupplierAlternate:
		return true
	default:
		return false
	}
}

func equalFold(a, b string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		ca, cb := a[i], b[i]
		if ca >= 'A' && ca <= 'Z' {
			ca += 'a' - 'A'
		}
		if cb >= 'A' && cb <= 'Z' {
			cb += 'a' - 'A'
		}
		if ca != cb {
			return false
		}
	}
	return true
}

// Article is a raw, normalized news event prior to relevance filtering.
type Article struct {
	ID          string    `json:"id"` // fingerprint, primary key
	EventID     string    `json:"event_id"`
	Timestamp   time.Time `json:"timestamp"`
	Source      string    `json:"source"`
	Headline    string    `json:"headline"`
	Body        string    `json:"body"`
	URL         string    `json:"url"`
	Processed   bool      `json:"processed"`
	RiskEventID *string   `json:"risk_event_id,omitempty"`
	ProcessNote string    `json:"process_note,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// RiskScoreComponents is the breakdown behind a RiskEvent's composite score.
type RiskScoreComponents struct {
	Probability float64 `json:"probability"`
	Impact      float64 `json:"impact"`
	Urgency     float64 `json:"urgency"`
	Mitigation  float64 `json:"mitigation"`
}

// RiskEvent is the structured, scored risk extracted from an article.
type RiskEvent struct {
	ID                       string               `json:"id"`
	ArticleID                string               `json:"article_id"`
	RiskType                 RiskType             `json:"risk_type"`
	AffectedEntities         []string             `json:"affected_entities"`
	AffectedSupplyChainNodes []string             `json:"affected_supply_chain_nodes"`
	Severity                 Severity             `json:"severity"`
	Confirmation             Confirmation         `json:"confirmation"`
	TimeHorizon              TimeHorizon          `json:"time_horizon"`
	Reasoning                string               `json:"reasoning"`
	RecommendedAction        string               `json:"recommended_action"`
	Components               RiskScoreComponents  `json:"components"`
	CompositeScore           float64              `json:"composite_score"`
	SeverityBand             Severity             `json:"severity_band"`
	Propagation              map[string]float64   `json:"propagation"` // supplier id -> propagated score
	IsRisk                   bool                 `json:"is_risk"`
	LinkedSupplierIDs        []string             `json:"linked_supplier_ids,omitempty"`
	PrimarySupplierID        string               `json:"primary_supplier_id,omitempty"`
	PrimaryMaterial          string               `json:"primary_material,omitempty"`
	CreatedAt                time.Time            `json:"created_at"`
}

// AlternateSupplier is one ranked candidate supplier in an Alert's
// recommendation set.
type AlternateSupplier struct {
	SupplierID    string             `json:"supplier_id"`
	Name          string             `json:"name"`
	Country       string             `json:"country"`
	Score         float64            `json:"score"`
	LeadTimeWeeks int                `json:"lead_time_weeks"`
	Breakdown     map[string]float64 `json:"breakdown"`
}

// Alert is the actionable output of the pipeline.
type Alert struct {
	ID                 string              `json:"id"`
	RiskEventID        string              `json:"risk_event_id"`
	SeverityBand       Severity            `json:"severity_band"`
	CompositeScore     float64             `json:"composite_score"`
	Title              string              `json:"title"`
	Description        string              `json:"description"`
	AffectedSuppliers  []string            `json:"affected_suppliers"`
	AffectedMaterials  []string            `json:"affected_materials"`
	Alternates         []AlternateSupplier `json:"alternates"`
	Recommendation     string              `json:"recommendation"`
	Acknowledged       bool                `json:"acknowledged"`
	AcknowledgedBy     string              `json:"acknowledged_by,omitempty"`
	AcknowledgedAt     *time.Time          `json:"acknowledged_at,omitempty"`
	ResolvedAt         *time.Time          `json:"resolved_at,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
}
