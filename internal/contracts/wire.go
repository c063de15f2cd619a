package contracts

// Stream names used by the core pipeline stages.
const (
	StreamRawEvents        = "raw_events"
	StreamNormalizedEvents = "normalized_events"
	StreamRiskEntities     = "risk_entities"
	StreamRiskScores       = "risk_scores"
	StreamNewAlerts        = "new_alerts"
)

// Consumer groups used by the core, one per stage.
const (
	GroupRiskExtraction = "risk_extraction_group"
	GroupRiskScoring    = "risk_scoring_group"
	GroupAlerting       = "alerting_group"
)

// NormalizedEventMsg is published to StreamNormalizedEvents by ingestion.
// It carries the full normalized Article record.
type NormalizedEventMsg struct {
	Article Article `json:"article"`
}

// RiskEntityMsg is published to StreamRiskEntities by extraction.
type RiskEntityMsg struct {
	RiskEventID string `json:"risk_event_id"`
	ArticleID   string `json:"article_id"`
}

// RiskScoreMsg is published to StreamRiskScores by scoring.
type RiskScoreMsg struct {
	RiskEventID string `json:"risk_event_id"`
}

// NewAlertMsg is published to StreamNewAlerts by alerting. It carries a
// single field, alert_id, for downstream consumers to resolve.
type NewAlertMsg struct {
	AlertID string `json:"alert_id"`
}
