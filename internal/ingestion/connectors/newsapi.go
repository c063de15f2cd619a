// Package connectors holds the concrete ingestion sources implementing
// ingestion.Connector.
package connectors

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
	"github.com/lumenforge/supply-risk-platform/internal/ingestion"
	"github.com/lumenforge/supply-risk-platform/internal/platform/errs"
)

const newsAPIEverythingURL = "https://newsapi.org/v2/everything"

// ProfileSource supplies the current company profile the query is built
// from, so the connector always reflects the latest profile version
// without the scheduler threading it through on every tick.
type ProfileSource interface {
	GetCompany(ctx context.Context, id string) (contracts.Company, error)
	ListSuppliers(ctx context.Context) ([]contracts.Supplier, error)
}

// NewsAPIConnector queries newsapi.org/v2/everything with a keyword
// query derived from the company profile.
type NewsAPIConnector struct {
	APIKey      string
	CompanyID   string
	Profile     ProfileSource
	MaxArticles int
	httpClient  *http.Client
}

// NewNewsAPIConnector builds a connector with a 30s request timeout.
func NewNewsAPIConnector(apiKey, companyID string, profile ProfileSource) *NewsAPIConnector {
	return &NewsAPIConnector{
		APIKey:      apiKey,
		CompanyID:   companyID,
		Profile:     profile,
		MaxArticles: 100,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

func (c *NewsAPIConnector) Name() string { return "newsapi" }

type newsAPIResponse struct {
	Status       string           `json:"status"`
	TotalResults int              `json:"totalResults"`
	Articles     []newsAPIArticle `json:"articles"`
	Message      string           `json:"message"`
}

type newsAPIArticle struct {
	Title       string           `json:"title"`
	Description string           `json:"description"`
	Content     string           `json:"content"`
	URL         string           `json:"url"`
	PublishedAt string           `json:"publishedAt"`
	Source      newsAPIArtSource `json:"source"`
}

type newsAPIArtSource struct {
	Name string `json:"name"`
}

// BuildKeywords assembles the top-5 priority keywords the query is built
// from: company name, highest-volume tier-1 suppliers, then the most
// critical materials, mirroring _build_keywords.
func BuildKeywords(company contracts.Company, suppliers []contracts.Supplier) []string {
	keywords := []string{company.Name}

	tier1 := make([]contracts.Supplier, 0, len(suppliers))
	for _, s := range suppliers {
		if s.Tier == 1 {
			tier1 = append(tier1, s)
		}
	}
	sort.Slice(tier1, func(i, j int) bool { return tier1[i].SupplyVolumePct > tier1[j].SupplyVolumePct })
	for _, s := range tier1 {
		keywords = append(keywords, s.Name)
	}

	type matCrit struct {
		material    string
		criticality int
	}
	mats := make([]matCrit, 0, len(company.MaterialCriticality))
	for m, crit := range company.MaterialCriticality {
		mats = append(mats, matCrit{m, crit})
	}
	sort.Slice(mats, func(i, j int) bool { return mats[i].criticality > mats[j].criticality })
	for _, m := range mats {
		keywords = append(keywords, m.material)
	}

	if len(keywords) > 5 {
		keywords = keywords[:5]
	}
	return keywords
}

// Fetch queries NewsAPI for the top-5 keywords joined by OR, quoting each
// term, matching fetch's query construction.
func (c *NewsAPIConnector) Fetch(ctx context.Context) ([]ingestion.RawItem, error) {
	company, err := c.Profile.GetCompany(ctx, c.CompanyID)
	if err != nil {
		return nil, fmt.Errorf("resolve company profile: %w", err)
	}
	suppliers, err := c.Profile.ListSuppliers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}

	keywords := BuildKeywords(company, suppliers)
	terms := make([]string, len(keywords))
	for i, k := range keywords {
		terms[i] = fmt.Sprintf("%q", k)
	}
	query := strings.Join(terms, " OR ")

	q := url.Values{}
	q.Set("q", query)
	q.Set("apiKey", c.APIKey)
	q.Set("sortBy", "publishedAt")
	q.Set("language", "en")
	q.Set("pageSize", fmt.Sprintf("%d", c.MaxArticles))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, newsAPIEverythingURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build newsapi request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: newsapi request: %v", errs.Transient, err)
	}
	defer resp.Body.Close()

	var parsed newsAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: decode newsapi response: %v", errs.Transient, err)
	}
	if resp.StatusCode != http.StatusOK || parsed.Status != "ok" {
		return nil, fmt.Errorf("%w: newsapi error %d: %s", errs.Transient, resp.StatusCode, parsed.Message)
	}

	items := make([]ingestion.RawItem, 0, len(parsed.Articles))
	for _, a := range parsed.Articles {
		published, _ := time.Parse(time.RFC3339, a.PublishedAt)
		items = append(items, ingestion.RawItem{
			IDOrURL:     a.URL,
			Title:       a.Title,
			Body:        a.Content,
			Description: a.Description,
			PublishedAt: published,
			SourceName:  a.Source.Name,
			URL:         a.URL,
		})
	}
	return items, nil
}
