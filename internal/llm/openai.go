// Package llm wraps the structured-output model calls the extraction and
// alerting stages need: risk classification, text embedding, and
// recommendation synthesis. Grounded on the retrieved AleutianFOSS
// OpenAIClient wrapper (services/llm/openai_llm.go), with the extraction
// schema built around the same risk-classification fields a supply-chain
// analyst prompt needs.
package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
	"github.com/lumenforge/supply-risk-platform/internal/platform/errs"
)

// Client wraps a go-openai chat+embeddings client with the three
// operations the pipeline needs.
type Client struct {
	client         *openai.Client
	modelFast      string
	modelCapable   string
	embeddingModel string
}

// New builds a Client from an API key and the fast/capable/embedding
// model names exposed as configuration.
func New(apiKey, modelFast, modelCapable, embeddingModel string) *Client {
	return &Client{
		client:         openai.NewClient(apiKey),
		modelFast:      modelFast,
		modelCapable:   modelCapable,
		embeddingModel: embeddingModel,
	}
}

// Extraction is the RiskEvent extraction schema the chat model returns.
type Extraction struct {
	IsRisk                   bool     `json:"is_risk"`
	RiskType                 string   `json:"risk_type"`
	AffectedEntities         []string `json:"affected_entities"`
	AffectedSupplyChainNodes []string `json:"affected_supply_chain_nodes"`
	Severity                 string   `json:"severity"`
	IsConfirmed              string   `json:"is_confirmed"`
	TimeHorizon              string   `json:"time_horizon"`
	Reasoning                string   `json:"reasoning"`
	RecommendedAction        string   `json:"recommended_action"`
}

// ExtractionContext is the company-side context folded into the system
// prompt.
type ExtractionContext struct {
	CompanyName  string
	SupplierList []string
	Materials    []string
	Geographies  []string
}

// UsesComplexModel reports whether headline+body exceeds the complexity
// heuristic (length, or the presence of geopolitical terms) for
// selecting the more capable model tier.
func UsesComplexModel(headline, body string) bool {
	text := strings.ToLower(headline + " " + body)
	if len(text) > 2000 {
		return true
	}
	for _, term := range geopoliticalTerms {
		if strings.Contains(text, term) {
			return true
		}
	}
	return false
}

var geopoliticalTerms = []string{
	"sanction", "tariff", "embargo", "coup", "invasion", "war", "conflict",
	"export ban", "nationalization", "martial law",
}

// ExtractRisk calls the chat-completion endpoint with a system prompt
// naming the company context and requests the JSON extraction schema. A
// response that fails to parse or is missing required fields is retried
// once with a stricter variant of the prompt; a second failure returns
// errs.MalformedLLMOutput for the caller to treat as permanent.
func (c *Client) ExtractRisk(ctx context.Context, ec ExtractionContext, headline, body string, useCapable bool) (Extraction, error) {
	model := c.modelFast
	if useCapable {
		model = c.modelCapable
	}

	out, err := c.callExtraction(ctx, model, extractionSystemPrompt(ec), headline, body)
	if err == nil {
		return out, nil
	}
	if !errors.Is(err, errs.MalformedLLMOutput) {
		return Extraction{}, err
	}

	return c.callExtraction(ctx, model, stricterExtractionSystemPrompt(ec), headline, body)
}

func (c *Client) callExtraction(ctx context.Context, model, systemPrompt, headline, body string) (Extraction, error) {
	req := openai.ChatCompletionRequest{
		Model:       model,
		Temperature: 0.1,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: headline + "\n\n" + body},
		},
	}

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return Extraction{}, fmt.Errorf("%w: extraction chat completion: %v", errs.Transient, err)
	}
	if len(resp.Choices) == 0 {
		return Extraction{}, fmt.Errorf("%w: no choices returned", errs.MalformedLLMOutput)
	}

	var out Extraction
	if err := json.Unmarshal([]byte(resp.Choices[0].Message.Content), &out); err != nil {
		return Extraction{}, fmt.Errorf("%w: %v", errs.MalformedLLMOutput, err)
	}
	if out.RiskType == "" || out.Severity == "" {
		return Extraction{}, fmt.Errorf("%w: missing required fields", errs.MalformedLLMOutput)
	}
	return out, nil
}

func extractionSystemPrompt(ec ExtractionContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "You are a supply chain risk analyst for %s.\n\n", ec.CompanyName)
	fmt.Fprintf(&b, "Company's key suppliers: %s\n", strings.Join(ec.SupplierList, ", "))
	fmt.Fprintf(&b, "Company's raw materials: %s\n", strings.Join(ec.Materials, ", "))
	fmt.Fprintf(&b, "Key geographies: %s\n\n", strings.Join(ec.Geographies, ", "))
	b.WriteString("Read the news article in the next message and return a JSON object ONLY (no explanation) matching this schema:\n")
	b.WriteString(`{
  "is_risk": true or false,
  "risk_type": "geopolitical | natural_disaster | financial | regulatory | operational | cybersecurity | esg | supply_disruption | price_volatility",
  "affected_entities": ["companies, countries, or materials mentioned"],
  "affected_supply_chain_nodes": ["names matching the supplier list exactly"],
  "severity": "critical | high | medium | low",
  "is_confirmed": "confirmed | unconfirmed | uncertain",
  "time_horizon": "immediate | days | weeks | months",
  "reasoning": "one sentence explaining the link to the supply chain",
  "recommended_action": "one sentence immediate action"
}` + "\n\n")
	fmt.Fprintf(&b, "Only set is_risk=true if this directly affects the suppliers, materials, or geographies of %s. "+
		"affected_supply_chain_nodes must match supplier-list names case-insensitively. Be conservative: if the "+
		"connection is weak or speculative, set is_risk=false.", ec.CompanyName)
	return b.String()
}

// stricterExtractionSystemPrompt is the retry prompt used after the first
// response fails to parse or is missing a required field: the same
// instructions plus an explicit warning about the failure mode.
func stricterExtractionSystemPrompt(ec ExtractionContext) string {
	return extractionSystemPrompt(ec) + "\n\n" +
		"Your previous response was not valid JSON matching the schema exactly, " +
		"or omitted risk_type/severity. Return ONLY the raw JSON object, with no " +
		"markdown fences, no commentary, and every field populated."
}

// Embed returns the embedding vector for text.
func (c *Client) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := c.client.CreateEmbeddings(ctx, openai.EmbeddingRequestStrings{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.embeddingModel),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: embedding call: %v", errs.Transient, err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("%w: no embedding returned", errs.Transient)
	}
	return resp.Data[0].Embedding, nil
}

// RecommendationContext is the alert context fed to recommendation
// synthesis.
type RecommendationContext struct {
	Title             string
	CompositeScore    float64
	SeverityBand      contracts.Severity
	AffectedSupplier  string
	TopCandidates     []contracts.AlternateSupplier
}

// GenerateRecommendation asks the capable model for a concise 3-4
// sentence recommendation. Callers fall back to a template on error.
func (c *Client) GenerateRecommendation(ctx context.Context, rc RecommendationContext) (string, error) {
	prompt := recommendationPrompt(rc)

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       c.modelCapable,
		Temperature: 0.4,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: "You are a supply chain risk advisor. Write 3-4 concise sentences, no preamble."},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("%w: recommendation chat completion: %v", errs.Transient, err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%w: no choices returned", errs.MalformedLLMOutput)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func recommendationPrompt(rc RecommendationContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Alert: %s\nComposite score: %.2f\nSeverity band: %s\nAffected supplier: %s\n\n",
		rc.Title, rc.CompositeScore, rc.SeverityBand, rc.AffectedSupplier)
	b.WriteString("Top alternate supplier candidates:\n")
	for _, cand := range rc.TopCandidates {
		fmt.Fprintf(&b, "- %s (%s), score %.1f, lead time %dw\n", cand.Name, cand.Country, cand.Score, cand.LeadTimeWeeks)
	}
	b.WriteString("\nRecommend a course of action for the supply chain team.")
	return b.String()
}

// FallbackRecommendation builds the template-based recommendation used
// when the LLM call fails.
func FallbackRecommendation(candidate contracts.AlternateSupplier) string {
	if candidate.Name == "" {
		return "No qualified alternate supplier is currently available; escalate to sourcing team."
	}
	return fmt.Sprintf("Activate alternate supplier %s from %s; lead time %dw.",
		candidate.Name, candidate.Country, candidate.LeadTimeWeeks)
}
