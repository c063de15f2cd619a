package alerting

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/smtp"
	"strings"
	"time"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
)

// severityEmoji maps each severity band to its Slack message emoji.
var severityEmoji = map[contracts.Severity]string{
	contracts.SeverityCritical: ":rotating_light:",
	contracts.SeverityHigh:     ":warning:",
	contracts.SeverityMedium:   ":zap:",
	contracts.SeverityLow:      ":information_source:",
}

// Notifier is a single outbound alert channel. Both Slack and email
// sinks implement it; a failure on one channel never blocks the other.
type Notifier interface {
	Notify(ctx context.Context, alert contracts.Alert) error
}

// SlackNotifier posts a formatted message to an incoming webhook.
type SlackNotifier struct {
	WebhookURL string
	Timeout    time.Duration
	httpClient *http.Client
}

// NewSlackNotifier builds a SlackNotifier with the given webhook URL and
// request timeout.
func NewSlackNotifier(webhookURL string, timeout time.Duration) *SlackNotifier {
	return &SlackNotifier{WebhookURL: webhookURL, Timeout: timeout, httpClient: &http.Client{Timeout: timeout}}
}

type slackMessage struct {
	Text   string       `json:"text"`
	Blocks []slackBlock `json:"blocks"`
}

type slackBlock struct {
	Type   string          `json:"type"`
	Text   *slackBlockText `json:"text,omitempty"`
	Fields []slackBlockText `json:"fields,omitempty"`
}

type slackBlockText struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Notify builds and POSTs the Slack message; a missing webhook URL is
// treated as "channel not configured" and silently skipped.
func (s *SlackNotifier) Notify(ctx context.Context, alert contracts.Alert) error {
	if s.WebhookURL == "" {
		return nil
	}

	emoji := severityEmoji[alert.SeverityBand]
	if emoji == "" {
		emoji = ":zap:"
	}

	blocks := []slackBlock{
		{Type: "header", Text: &slackBlockText{Type: "plain_text", Text: fmt.Sprintf("%s %s", emoji, alert.Title)}},
		{Type: "section", Fields: []slackBlockText{
			{Type: "mrkdwn", Text: fmt.Sprintf("*Severity:*\n%s", strings.ToUpper(string(alert.SeverityBand)))},
			{Type: "mrkdwn", Text: fmt.Sprintf("*Risk Score:*\n%.2f", alert.CompositeScore)},
			{Type: "mrkdwn", Text: fmt.Sprintf("*Suppliers:*\n%s", strings.Join(alert.AffectedSuppliers, ", "))},
			{Type: "mrkdwn", Text: fmt.Sprintf("*Materials:*\n%s", strings.Join(alert.AffectedMaterials, ", "))},
		}},
		{Type: "section", Text: &slackBlockText{Type: "mrkdwn", Text: fmt.Sprintf("*Description:*\n%s", alert.Description)}},
	}

	if len(alert.Alternates) > 0 {
		var b strings.Builder
		b.WriteString("*Top Alternates:*\n")
		for i, alt := range alert.Alternates {
			if i >= 3 {
				break
			}
			fmt.Fprintf(&b, "%d. *%s* (%s) - Score: %.1f/10, Lead: %dw\n", i+1, alt.Name, alt.Country, alt.Score, alt.LeadTimeWeeks)
		}
		blocks = append(blocks, slackBlock{Type: "section", Text: &slackBlockText{Type: "mrkdwn", Text: b.String()}})
	}

	if alert.Recommendation != "" {
		blocks = append(blocks, slackBlock{Type: "section", Text: &slackBlockText{Type: "mrkdwn", Text: "*Recommendation:*\n" + alert.Recommendation}})
	}

	msg := slackMessage{Text: fmt.Sprintf("%s Supply Chain Risk Alert", emoji), Blocks: blocks}
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal slack message: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build slack request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post slack webhook: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// EmailNotifier sends a plaintext summary over SMTP. Grounded on the
// retrieved financialTrading notification sender's net/smtp wiring
// (internal/notification/infrastructure/sender/smtp.go); no third-party
// mail library appears anywhere in the retrieval pack, so this stays on
// the standard library.
type EmailNotifier struct {
	Host, Port, Username, Password, From string
	To                                   []string
}

// NewEmailNotifier builds an EmailNotifier from SMTP connection details.
func NewEmailNotifier(host, port, username, password, from string, to []string) *EmailNotifier {
	return &EmailNotifier{Host: host, Port: port, Username: username, Password: password, From: from, To: to}
}

// Notify sends the alert as a plaintext email; a missing host is
// treated as "not configured" and silently skipped.
func (e *EmailNotifier) Notify(ctx context.Context, alert contracts.Alert) error {
	if e.Host == "" || len(e.To) == 0 {
		return nil
	}

	subject := fmt.Sprintf("[%s] %s", strings.ToUpper(string(alert.SeverityBand)), alert.Title)
	body := fmt.Sprintf(
		"Severity: %s\nRisk Score: %.2f\nAffected Suppliers: %s\nAffected Materials: %s\n\n%s\n\nRecommendation:\n%s\n",
		strings.ToUpper(string(alert.SeverityBand)), alert.CompositeScore,
		strings.Join(alert.AffectedSuppliers, ", "), strings.Join(alert.AffectedMaterials, ", "),
		alert.Description, alert.Recommendation,
	)

	msg := []byte("To: " + strings.Join(e.To, ", ") + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"\r\n" + body + "\r\n")

	var auth smtp.Auth
	if e.Username != "" {
		auth = smtp.PlainAuth("", e.Username, e.Password, e.Host)
	}

	addr := e.Host + ":" + e.Port
	if err := smtp.SendMail(addr, auth, e.From, e.To, msg); err != nil {
		return fmt.Errorf("send smtp mail: %w", err)
	}
	return nil
}

// NotifyAll dispatches alert to every sink, collecting failures without
// letting one channel's error block the others.
func NotifyAll(ctx context.Context, sinks []Notifier, alert contracts.Alert) []error {
	var errsOut []error
	for _, sink := range sinks {
		if err := sink.Notify(ctx, alert); err != nil {
			errsOut = append(errsOut, err)
		}
	}
	return errsOut
}
