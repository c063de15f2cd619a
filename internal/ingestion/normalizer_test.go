package ingestion

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize_PrefersBodyOverDescription(t *testing.T) {
	article, err := Normalize(RawItem{
		Title:       "Factory fire halts production in Taiwan",
		Body:        "full body text",
		Description: "short description",
		URL:         "https://example.com/a",
		PublishedAt: time.Date(2026, 1, 2, 0, 0, 0, 0, time.UTC),
		SourceName:  "reuters",
	})
	require.NoError(t, err)
	assert.Equal(t, "full body text", article.Body)
}

func TestNormalize_FallsBackToDescriptionWhenBodyEmpty(t *testing.T) {
	article, err := Normalize(RawItem{
		Title:       "Factory fire halts production in Taiwan",
		Description: "short description",
		URL:         "https://example.com/a",
	})
	require.NoError(t, err)
	assert.Equal(t, "short description", article.Body)
}

func TestNormalize_RejectsShortHeadline(t *testing.T) {
	_, err := Normalize(RawItem{Title: "short"})
	assert.Error(t, err)
}

func TestNormalize_FingerprintIgnoresHeadlineCaseAndBodyWhitespace(t *testing.T) {
	a, err := Normalize(RawItem{Title: "Factory fire halts production", Body: "text"})
	require.NoError(t, err)
	b, err := Normalize(RawItem{Title: "FACTORY FIRE HALTS PRODUCTION", Body: "  text  "})
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)
}

func TestNormalize_EventIDFallsBackToURL(t *testing.T) {
	article, err := Normalize(RawItem{
		Title: "Factory fire halts production",
		Body:  "text",
		URL:   "https://example.com/a",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/a", article.EventID)
}
