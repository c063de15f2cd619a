// Package ingestion runs the fixed-interval scheduler that pulls raw
// items from registered connectors, normalizes them, deduplicates by
// fingerprint, and publishes to normalized_events.
package ingestion

import (
	"context"
	"time"
)

// RawItem is what a Connector.Fetch returns: the minimal shape every
// connector normalizes to — id-or-url, title, body-or-description,
// published-at, source-name.
type RawItem struct {
	IDOrURL     string
	Title       string
	Body        string
	Description string
	PublishedAt time.Time
	SourceName  string
	URL         string
}

// Connector is the contract every ingestion source implements.
type Connector interface {
	Name() string
	Fetch(ctx context.Context) ([]RawItem, error)
}
