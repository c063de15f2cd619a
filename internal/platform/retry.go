// Package platform holds small cross-cutting helpers shared by every stage.
package platform

import (
	"context"
	"math"
	"time"
)

// Retry runs fn up to maxAttempts times, waiting an exponentially growing
// delay (base * 2^attempt) between attempts, and returns as soon as fn
// succeeds or the context is done. Grounded on the capped-backoff pattern
// in the embedding clients of the retrieved ai-engineering-framework pack
// (internal/embedding/{local,openai}.go).
func Retry(ctx context.Context, maxAttempts int, base time.Duration, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < maxAttempts; attempt++ {
		if attempt > 0 {
			delay := time.Duration(math.Pow(2, float64(attempt))) * base
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return ctx.Err()
			}
		}

		if err := fn(); err != nil {
			lastErr = err
			continue
		}
		return nil
	}
	return lastErr
}
