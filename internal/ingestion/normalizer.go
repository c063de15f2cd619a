package ingestion

import (
	"fmt"
	"strings"
	"time"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
	"github.com/lumenforge/supply-risk-platform/internal/stream"
)

// minHeadlineLength is the shortest headline worth extracting from;
// anything shorter carries too little signal.
const minHeadlineLength = 8

// Normalize converts a connector's RawItem into the Article shape every
// downstream stage consumes, computing the fingerprint-derived ID and
// falling back to the item's URL for event_id when IDOrURL is empty.
func Normalize(item RawItem) (contracts.Article, error) {
	headline := strings.TrimSpace(item.Title)
	if len(headline) < minHeadlineLength {
		return contracts.Article{}, fmt.Errorf("headline too short: %q", headline)
	}

	body := strings.TrimSpace(item.Body)
	if body == "" {
		body = strings.TrimSpace(item.Description)
	}

	ts := item.PublishedAt
	if ts.IsZero() {
		ts = time.Now().UTC()
	}

	eventID := item.IDOrURL
	if eventID == "" {
		eventID = item.URL
	}

	return contracts.Article{
		ID:        stream.Fingerprint(headline, body),
		EventID:   eventID,
		Timestamp: ts,
		Source:    item.SourceName,
		Headline:  headline,
		Body:      body,
		URL:       item.URL,
	}, nil
}
