package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
	"github.com/lumenforge/supply-risk-platform/internal/platform/errs"
)

// Repository is the single point of access to the Postgres-backed event
// store: companies, suppliers, articles, risk events, alerts.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wraps an already-opened pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// GetCompany loads the singleton company profile by id.
func (r *Repository) GetCompany(ctx context.Context, id string) (contracts.Company, error) {
	var c contracts.Company
	var rawMaterials, materialCriticality, bufferDays, geographies, contacts []byte

	err := r.pool.QueryRow(ctx, `
        SELECT id, name, industry, raw_materials, material_criticality, inventory_buffer_days,
               key_geographies, alert_contacts, profile_version, updated_at
        FROM companies WHERE id = $1
    `, id).Scan(&c.ID, &c.Name, &c.Industry, &rawMaterials, &materialCriticality, &bufferDays,
		&geographies, &contacts, &c.ProfileVersion, &c.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return contracts.Company{}, fmt.Errorf("company %s: %w", id, errs.MissingReference)
	}
	if err != nil {
		return contracts.Company{}, fmt.Errorf("get company: %w", err)
	}

	_ = json.Unmarshal(rawMaterials, &c.RawMaterials)
	_ = json.Unmarshal(materialCriticality, &c.MaterialCriticality)
	_ = json.Unmarshal(bufferDays, &c.InventoryBufferDays)
	_ = json.Unmarshal(geographies, &c.KeyGeographies)
	_ = json.Unmarshal(contacts, &c.AlertContacts)
	return c, nil
}

// UpsertCompany inserts or replaces the singleton profile.
func (r *Repository) UpsertCompany(ctx context.Context, c contracts.Company) error {
	rawMaterials, _ := json.Marshal(c.RawMaterials)
	materialCriticality, _ := json.Marshal(c.MaterialCriticality)
	bufferDays, _ := json.Marshal(c.InventoryBufferDays)
	geographies, _ := json.Marshal(c.KeyGeographies)
	contacts, _ := json.Marshal(c.AlertContacts)

	_, err := r.pool.Exec(ctx, `
        INSERT INTO companies (id, name, industry, raw_materials, material_criticality,
            inventory_buffer_days, key_geographies, alert_contacts, profile_version, updated_at)
        VALUES ($1,$2,$3,$4::jsonb,$5::jsonb,$6::jsonb,$7::jsonb,$8::jsonb,$9,NOW())
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            industry = EXCLUDED.industry,
            raw_materials = EXCLUDED.raw_materials,
            material_criticality = EXCLUDED.material_criticality,
            inventory_buffer_days = EXCLUDED.inventory_buffer_days,
            key_geographies = EXCLUDED.key_geographies,
            alert_contacts = EXCLUDED.alert_contacts,
            profile_version = companies.profile_version + 1,
            updated_at = NOW()
    `, c.ID, c.Name, c.Industry, rawMaterials, materialCriticality, bufferDays, geographies, contacts, c.ProfileVersion)
	if err != nil {
		return fmt.Errorf("upsert company: %w", err)
	}
	return nil
}

// ListSuppliers returns every supplier, for graph rebuilds and alternate
// candidate queries.
func (r *Repository) ListSuppliers(ctx context.Context) ([]contracts.Supplier, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, name, country, region, tier, materials, supply_volume_pct, status,
               approved_vendor, esg_score, credit_rating, max_capacity, lead_time_weeks,
               switching_cost_estimate, upstream_suppliers, risk_score_current, created_at, updated_at
        FROM suppliers
    `)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	defer rows.Close()

	var out []contracts.Supplier
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// GetSupplier loads one supplier by id.
func (r *Repository) GetSupplier(ctx context.Context, id string) (contracts.Supplier, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, name, country, region, tier, materials, supply_volume_pct, status,
               approved_vendor, esg_score, credit_rating, max_capacity, lead_time_weeks,
               switching_cost_estimate, upstream_suppliers, risk_score_current, created_at, updated_at
        FROM suppliers WHERE id = $1
    `, id)
	if err != nil {
		return contracts.Supplier{}, fmt.Errorf("get supplier: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return contracts.Supplier{}, fmt.Errorf("supplier %s: %w", id, errs.MissingReference)
	}
	return scanSupplier(rows)
}

// FindSupplierByName resolves a display name to a supplier, case-
// insensitive exact match first, falling back to substring containment.
func (r *Repository) FindSupplierByName(ctx context.Context, name string) (contracts.Supplier, bool, error) {
	rows, err := r.pool.Query(ctx, `
        SELECT id, name, country, region, tier, materials, supply_volume_pct, status,
               approved_vendor, esg_score, credit_rating, max_capacity, lead_time_weeks,
               switching_cost_estimate, upstream_suppliers, risk_score_current, created_at, updated_at
        FROM suppliers WHERE LOWER(name) = LOWER($1)
        LIMIT 1
    `, name)
	if err != nil {
		return contracts.Supplier{}, false, fmt.Errorf("find supplier exact: %w", err)
	}
	if rows.Next() {
		s, err := scanSupplier(rows)
		rows.Close()
		return s, err == nil, err
	}
	rows.Close()

	rows, err = r.pool.Query(ctx, `
        SELECT id, name, country, region, tier, materials, supply_volume_pct, status,
               approved_vendor, esg_score, credit_rating, max_capacity, lead_time_weeks,
               switching_cost_estimate, upstream_suppliers, risk_score_current, created_at, updated_at
        FROM suppliers WHERE name ILIKE '%' || $1 || '%'
        ORDER BY LENGTH(name) ASC
        LIMIT 1
    `, name)
	if err != nil {
		return contracts.Supplier{}, false, fmt.Errorf("find supplier substring: %w", err)
	}
	defer rows.Close()
	if !rows.Next() {
		return contracts.Supplier{}, false, nil
	}
	s, err := scanSupplier(rows)
	return s, err == nil, err
}

// AlternateCandidates returns suppliers other than excludeID that supply
// material and hold an alternate-eligible status.
func (r *Repository) AlternateCandidates(ctx context.Context, material, excludeID string) ([]contracts.Supplier, error) {
	all, err := r.ListSuppliers(ctx)
	if err != nil {
		return nil, err
	}
	var out []contracts.Supplier
	for _, s := range all {
		if s.ID == excludeID {
			continue
		}
		if !s.Status.IsAlternateCandidateStatus() {
			continue
		}
		if s.SuppliesMaterial(material) {
			out = append(out, s)
		}
	}
	return out, nil
}

// UpsertSupplier inserts or replaces a supplier row, used by the onboarding
// endpoint. A new supplier starts with risk_score_current at zero; an
// existing one keeps its current score untouched.
func (r *Repository) UpsertSupplier(ctx context.Context, s contracts.Supplier) error {
	materials, _ := json.Marshal(s.Materials)
	upstream, _ := json.Marshal(s.UpstreamSuppliers)

	_, err := r.pool.Exec(ctx, `
        INSERT INTO suppliers
            (id, name, country, region, tier, materials, supply_volume_pct, status,
             approved_vendor, esg_score, credit_rating, max_capacity, lead_time_weeks,
             switching_cost_estimate, upstream_suppliers, risk_score_current, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6::jsonb,$7,$8,$9,$10,$11,$12,$13,$14,$15::jsonb,0,NOW(),NOW())
        ON CONFLICT (id) DO UPDATE SET
            name = EXCLUDED.name,
            country = EXCLUDED.country,
            region = EXCLUDED.region,
            tier = EXCLUDED.tier,
            materials = EXCLUDED.materials,
            supply_volume_pct = EXCLUDED.supply_volume_pct,
            status = EXCLUDED.status,
            approved_vendor = EXCLUDED.approved_vendor,
            esg_score = EXCLUDED.esg_score,
            credit_rating = EXCLUDED.credit_rating,
            max_capacity = EXCLUDED.max_capacity,
            lead_time_weeks = EXCLUDED.lead_time_weeks,
            switching_cost_estimate = EXCLUDED.switching_cost_estimate,
            upstream_suppliers = EXCLUDED.upstream_suppliers,
            updated_at = NOW()
    `, s.ID, s.Name, s.Country, s.Region, s.Tier, materials, s.SupplyVolumePct, s.Status,
		s.ApprovedVendor, s.ESGScore, s.CreditRating, s.MaxCapacity, s.LeadTimeWeeks,
		s.SwitchingCostEstimate, upstream)
	if err != nil {
		return fmt.Errorf("upsert supplier: %w", err)
	}
	return nil
}

// UpdateSupplierRiskScore sets risk_score_current to max(existing, score).
func (r *Repository) UpdateSupplierRiskScore(ctx context.Context, id string, score float64) error {
	_, err := r.pool.Exec(ctx, `
        UPDATE suppliers SET risk_score_current = GREATEST(risk_score_current, $2), updated_at = NOW()
        WHERE id = $1
    `, id, score)
	if err != nil {
		return fmt.Errorf("update supplier risk score: %w", err)
	}
	return nil
}

func scanSupplier(rows pgx.Rows) (contracts.Supplier, error) {
	var s contracts.Supplier
	var materials, upstream []byte
	if err := rows.Scan(
		&s.ID, &s.Name, &s.Country, &s.Region, &s.Tier, &materials, &s.SupplyVolumePct, &s.Status,
		&s.ApprovedVendor, &s.ESGScore, &s.CreditRating, &s.MaxCapacity, &s.LeadTimeWeeks,
		&s.SwitchingCostEstimate, &upstream, &s.RiskScoreCurrent, &s.CreatedAt, &s.UpdatedAt,
	); err != nil {
		return contracts.Supplier{}, fmt.Errorf("scan supplier: %w", err)
	}
	_ = json.Unmarshal(materials, &s.Materials)
	_ = json.Unmarshal(upstream, &s.UpstreamSuppliers)
	return s, nil
}

// InsertArticle inserts a normalized article. An existing fingerprint (id)
// makes the insert a silent no-op; an existing event_id fails on the
// table's unique index.
func (r *Repository) InsertArticle(ctx context.Context, a contracts.Article) error {
	_, err := r.pool.Exec(ctx, `
        INSERT INTO articles (id, event_id, ts, source, headline, body, url, processed, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,FALSE,NOW())
        ON CONFLICT (id) DO NOTHING
    `, a.ID, a.EventID, a.Timestamp, a.Source, a.Headline, a.Body, a.URL)
	if err != nil {
		return fmt.Errorf("insert article: %w", err)
	}
	return nil
}

// GetArticle loads one article by fingerprint id.
func (r *Repository) GetArticle(ctx context.Context, id string) (contracts.Article, error) {
	var a contracts.Article
	err := r.pool.QueryRow(ctx, `
        SELECT id, event_id, ts, source, headline, body, url, processed, risk_event_id, process_note, created_at
        FROM articles WHERE id = $1
    `, id).Scan(&a.ID, &a.EventID, &a.Timestamp, &a.Source, &a.Headline, &a.Body, &a.URL,
		&a.Processed, &a.RiskEventID, &a.ProcessNote, &a.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return contracts.Article{}, fmt.Errorf("article %s: %w", id, errs.MissingReference)
	}
	if err != nil {
		return contracts.Article{}, fmt.Errorf("get article: %w", err)
	}
	return a, nil
}

// MarkArticleProcessed records the outcome of the extraction stage on an
// article: either a risk event id, or a note like "irrelevant".
func (r *Repository) MarkArticleProcessed(ctx context.Context, articleID string, riskEventID *string, note string) error {
	_, err := r.pool.Exec(ctx, `
        UPDATE articles SET processed = TRUE, risk_event_id = $2, process_note = $3
        WHERE id = $1
    `, articleID, riskEventID, note)
	if err != nil {
		return fmt.Errorf("mark article processed: %w", err)
	}
	return nil
}

// InsertRiskEvent persists a newly extracted risk event bound to its
// article. A second insert for the same article is a no-op, keeping
// redelivery idempotent.
func (r *Repository) InsertRiskEvent(ctx context.Context, e contracts.RiskEvent) error {
	entities, _ := json.Marshal(e.AffectedEntities)
	nodes, _ := json.Marshal(e.AffectedSupplyChainNodes)
	propagation, _ := json.Marshal(e.Propagation)
	linkedSuppliers, _ := json.Marshal(e.LinkedSupplierIDs)

	_, err := r.pool.Exec(ctx, `
        INSERT INTO risk_events
            (id, article_id, risk_type, affected_entities, affected_supply_chain_nodes, severity,
             confirmation, time_horizon, reasoning, recommended_action, probability, impact, urgency,
             mitigation, composite_score, severity_band, propagation, is_risk, linked_supplier_ids,
             primary_supplier_id, primary_material, created_at)
        VALUES ($1,$2,$3,$4::jsonb,$5::jsonb,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17::jsonb,$18,$19::jsonb,$20,$21,NOW())
        ON CONFLICT (article_id) DO NOTHING
    `, e.ID, e.ArticleID, e.RiskType, entities, nodes, e.Severity, e.Confirmation, e.TimeHorizon,
		e.Reasoning, e.RecommendedAction, e.Components.Probability, e.Components.Impact,
		e.Components.Urgency, e.Components.Mitigation, e.CompositeScore, e.SeverityBand, propagation,
		e.IsRisk, linkedSuppliers, nullable(e.PrimarySupplierID), e.PrimaryMaterial)
	if err != nil {
		return fmt.Errorf("insert risk event: %w", err)
	}
	return nil
}

// UpdateRiskEventScoring writes back the score components, composite
// score, severity band, and propagation map computed by the scoring
// stage.
func (r *Repository) UpdateRiskEventScoring(ctx context.Context, e contracts.RiskEvent) error {
	propagation, _ := json.Marshal(e.Propagation)
	_, err := r.pool.Exec(ctx, `
        UPDATE risk_events SET
            probability = $2, impact = $3, urgency = $4, mitigation = $5,
            composite_score = $6, severity_band = $7, propagation = $8::jsonb,
            primary_supplier_id = $9, primary_material = $10
        WHERE id = $1
    `, e.ID, e.Components.Probability, e.Components.Impact, e.Components.Urgency,
		e.Components.Mitigation, e.CompositeScore, e.SeverityBand, propagation,
		nullable(e.PrimarySupplierID), e.PrimaryMaterial)
	if err != nil {
		return fmt.Errorf("update risk event scoring: %w", err)
	}
	return nil
}

// GetRiskEvent loads one risk event by id.
func (r *Repository) GetRiskEvent(ctx context.Context, id string) (contracts.RiskEvent, error) {
	var e contracts.RiskEvent
	var entities, nodes, propagation, linkedSuppliers []byte
	var primarySupplierID *string

	err := r.pool.QueryRow(ctx, `
        SELECT id, article_id, risk_type, affected_entities, affected_supply_chain_nodes, severity,
               confirmation, time_horizon, reasoning, recommended_action, probability, impact, urgency,
               mitigation, composite_score, severity_band, propagation, is_risk, linked_supplier_ids,
               primary_supplier_id, primary_material, created_at
        FROM risk_events WHERE id = $1
    `, id).Scan(&e.ID, &e.ArticleID, &e.RiskType, &entities, &nodes, &e.Severity, &e.Confirmation,
		&e.TimeHorizon, &e.Reasoning, &e.RecommendedAction, &e.Components.Probability,
		&e.Components.Impact, &e.Components.Urgency, &e.Components.Mitigation, &e.CompositeScore,
		&e.SeverityBand, &propagation, &e.IsRisk, &linkedSuppliers, &primarySupplierID,
		&e.PrimaryMaterial, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return contracts.RiskEvent{}, fmt.Errorf("risk event %s: %w", id, errs.MissingReference)
	}
	if err != nil {
		return contracts.RiskEvent{}, fmt.Errorf("get risk event: %w", err)
	}

	_ = json.Unmarshal(entities, &e.AffectedEntities)
	_ = json.Unmarshal(nodes, &e.AffectedSupplyChainNodes)
	_ = json.Unmarshal(propagation, &e.Propagation)
	_ = json.Unmarshal(linkedSuppliers, &e.LinkedSupplierIDs)
	if primarySupplierID != nil {
		e.PrimarySupplierID = *primarySupplierID
	}
	return e, nil
}

// ListRiskEvents returns recent risk events, optionally filtered by
// severity band.
func (r *Repository) ListRiskEvents(ctx context.Context, severityBand string, limit int) ([]contracts.RiskEvent, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	rows, err := r.pool.Query(ctx, `
        SELECT id, article_id, risk_type, affected_entities, affected_supply_chain_nodes, severity,
               confirmation, time_horizon, reasoning, recommended_action, probability, impact, urgency,
               mitigation, composite_score, severity_band, propagation, is_risk, linked_supplier_ids,
               primary_supplier_id, primary_material, created_at
        FROM risk_events
        WHERE ($1 = '' OR severity_band = $1)
        ORDER BY created_at DESC
        LIMIT $2
    `, severityBand, limit)
	if err != nil {
		return nil, fmt.Errorf("list risk events: %w", err)
	}
	defer rows.Close()

	out := make([]contracts.RiskEvent, 0, limit)
	for rows.Next() {
		var e contracts.RiskEvent
		var entities, nodes, propagation, linkedSuppliers []byte
		var primarySupplierID *string
		if err := rows.Scan(&e.ID, &e.ArticleID, &e.RiskType, &entities, &nodes, &e.Severity,
			&e.Confirmation, &e.TimeHorizon, &e.Reasoning, &e.RecommendedAction,
			&e.Components.Probability, &e.Components.Impact, &e.Components.Urgency,
			&e.Components.Mitigation, &e.CompositeScore, &e.SeverityBand, &propagation, &e.IsRisk,
			&linkedSuppliers, &primarySupplierID, &e.PrimaryMaterial, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan risk event: %w", err)
		}
		_ = json.Unmarshal(entities, &e.AffectedEntities)
		_ = json.Unmarshal(nodes, &e.AffectedSupplyChainNodes)
		_ = json.Unmarshal(propagation, &e.Propagation)
		_ = json.Unmarshal(linkedSuppliers, &e.LinkedSupplierIDs)
		if primarySupplierID != nil {
			e.PrimarySupplierID = *primarySupplierID
		}
		out = append(out, e)
	}
	return out, nil
}

// InsertAlert persists a new alert bound to its risk event. A duplicate
// risk_event_id is reported as errs.Duplicate via the unique index.
func (r *Repository) InsertAlert(ctx context.Context, a contracts.Alert) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	suppliers, _ := json.Marshal(a.AffectedSuppliers)
	materials, _ := json.Marshal(a.AffectedMaterials)
	alternates, _ := json.Marshal(a.Alternates)

	cmd, err := r.pool.Exec(ctx, `
        INSERT INTO alerts
            (id, risk_event_id, severity_band, composite_score, title, description,
             affected_suppliers, affected_materials, alternates, recommendation, acknowledged, created_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7::jsonb,$8::jsonb,$9::jsonb,$10,FALSE,NOW())
        ON CONFLICT (risk_event_id) DO NOTHING
    `, a.ID, a.RiskEventID, a.SeverityBand, a.CompositeScore, a.Title, a.Description,
		suppliers, materials, alternates, a.Recommendation)
	if err != nil {
		return fmt.Errorf("insert alert: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("alert for risk event %s: %w", a.RiskEventID, errs.Duplicate)
	}
	return nil
}

// ListAlerts returns recent alerts, optionally filtered to unacknowledged.
func (r *Repository) ListAlerts(ctx context.Context, unacknowledgedOnly bool, limit int) ([]contracts.Alert, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
        SELECT id, risk_event_id, severity_band, composite_score, title, description,
               affected_suppliers, affected_materials, alternates, recommendation, acknowledged,
               acknowledged_by, acknowledged_at, resolved_at, created_at
        FROM alerts
        WHERE (NOT $1 OR NOT acknowledged)
        ORDER BY created_at DESC
        LIMIT $2
    `, unacknowledgedOnly, limit)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	defer rows.Close()

	out := make([]contracts.Alert, 0, limit)
	for rows.Next() {
		var a contracts.Alert
		var suppliers, materials, alternates []byte
		if err := rows.Scan(&a.ID, &a.RiskEventID, &a.SeverityBand, &a.CompositeScore, &a.Title,
			&a.Description, &suppliers, &materials, &alternates, &a.Recommendation, &a.Acknowledged,
			&a.AcknowledgedBy, &a.AcknowledgedAt, &a.ResolvedAt, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan alert: %w", err)
		}
		_ = json.Unmarshal(suppliers, &a.AffectedSuppliers)
		_ = json.Unmarshal(materials, &a.AffectedMaterials)
		_ = json.Unmarshal(alternates, &a.Alternates)
		out = append(out, a)
	}
	return out, nil
}

// AcknowledgeAlert transitions an alert from created to acknowledged, the
// first step of the alert lifecycle.
func (r *Repository) AcknowledgeAlert(ctx context.Context, id, by string) error {
	cmd, err := r.pool.Exec(ctx, `
        UPDATE alerts SET acknowledged = TRUE, acknowledged_by = $2, acknowledged_at = NOW()
        WHERE id = $1 AND NOT acknowledged
    `, id, by)
	if err != nil {
		return fmt.Errorf("acknowledge alert: %w", err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("alert %s: %w", id, errs.MissingReference)
	}
	return nil
}

// ResolveAlert stamps resolved_at on an unresolved alert, whether or not
// it has been acknowledged; the resolved state is opaque to the core
// beyond this timestamp.
func (r *Repository) ResolveAlert(ctx context.Context, id string) error {
	_, err := r.pool.Exec(ctx, `
        UPDATE alerts SET resolved_at = NOW() WHERE id = $1 AND resolved_at IS NULL
    `, id)
	if err != nil {
		return fmt.Errorf("resolve alert: %w", err)
	}
	return nil
}

// DashboardSummary aggregates the current alert and risk-event posture.
type DashboardSummary struct {
	OpenAlerts        int     `json:"open_alerts"`
	AcknowledgedAlerts int    `json:"acknowledged_alerts"`
	ResolvedLast24h   int     `json:"resolved_last_24h"`
	AvgRiskScore24h   float64 `json:"avg_risk_score_24h"`
}

// Summary computes the dashboard headline metrics.
func (r *Repository) Summary(ctx context.Context) (DashboardSummary, error) {
	var s DashboardSummary
	err := r.pool.QueryRow(ctx, `
        SELECT
            COUNT(*) FILTER (WHERE NOT acknowledged AND resolved_at IS NULL) AS open_alerts,
            COUNT(*) FILTER (WHERE acknowledged AND resolved_at IS NULL) AS acknowledged_alerts,
            COUNT(*) FILTER (WHERE resolved_at >= NOW() - INTERVAL '24 hours') AS resolved_last_24h,
            COALESCE((SELECT AVG(composite_score) FROM risk_events WHERE created_at >= NOW() - INTERVAL '24 hours'), 0)
        FROM alerts
    `).Scan(&s.OpenAlerts, &s.AcknowledgedAlerts, &s.ResolvedLast24h, &s.AvgRiskScore24h)
	if err != nil {
		return DashboardSummary{}, fmt.Errorf("dashboard summary: %w", err)
	}
	return s, nil
}

// Hotspot is one supplier's rolling risk posture, for the dashboard's
// ranked-hotspot view.
type Hotspot struct {
	SupplierID   string    `json:"supplier_id"`
	Name         string    `json:"name"`
	Country      string    `json:"country"`
	AvgScore     float64   `json:"avg_score"`
	LatestScore  float64   `json:"latest_score"`
	ActiveAlerts int       `json:"active_alerts"`
	LastEventAt  time.Time `json:"last_event_at"`
}

// Hotspots ranks suppliers with a non-zero risk_score_current by that
// score, descending; AvgScore and LatestScore both carry it. The hours
// argument is accepted but does not filter the result.
func (r *Repository) Hotspots(ctx context.Context, hours, limit int) ([]Hotspot, error) {
	if hours <= 0 || hours > 168 {
		hours = 24
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}

	rows, err := r.pool.Query(ctx, `
        WITH touched AS (
            SELECT s.id, s.name, s.country, s.risk_score_current
            FROM suppliers s
            WHERE s.risk_score_current > 0
        )
        SELECT
            t.id, t.name, t.country,
            t.risk_score_current AS avg_score,
            t.risk_score_current AS latest_score,
            COALESCE((
                SELECT COUNT(*) FROM alerts a
                WHERE a.affected_suppliers @> to_jsonb(t.id::text)
                  AND NOT a.acknowledged AND a.resolved_at IS NULL
            ), 0) AS active_alerts,
            COALESCE((
                SELECT MAX(re.created_at) FROM risk_events re
                WHERE re.primary_supplier_id = t.id
            ), NOW()) AS last_event_at
        FROM touched t
        ORDER BY avg_score DESC, active_alerts DESC
        LIMIT $1
    `, limit)
	_ = hours // not applied: risk_score_current is the highest score recorded so far
	if err != nil {
		return nil, fmt.Errorf("hotspots query: %w", err)
	}
	defer rows.Close()

	out := make([]Hotspot, 0, limit)
	for rows.Next() {
		var h Hotspot
		if err := rows.Scan(&h.SupplierID, &h.Name, &h.Country, &h.AvgScore, &h.LatestScore,
			&h.ActiveAlerts, &h.LastEventAt); err != nil {
			return nil, fmt.Errorf("hotspots scan: %w", err)
		}
		out = append(out, h)
	}
	return out, nil
}

func nullable(v string) any {
	if v == "" {
		return nil
	}
	return v
}
