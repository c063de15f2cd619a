// Package errs names the pipeline's error-kind taxonomy as sentinel
// errors, so worker loops can decide retry-vs-ack-and-drop without string
// matching.
package errs

import "errors"

var (
	// Transient marks substrate/store/LLM/embedding/notification failures
	// that should be retried with capped exponential backoff.
	Transient = errors.New("transient external failure")

	// MalformedLLMOutput marks a parse failure or schema mismatch from the
	// extraction model.
	MalformedLLMOutput = errors.New("malformed llm output")

	// MissingReference marks a risk event linking to a supplier name that
	// does not exist in the store.
	MissingReference = errors.New("missing reference")

	// Duplicate marks a fingerprint or risk-event-per-article collision
	// that should be acked silently.
	Duplicate = errors.New("duplicate")

	// InvariantViolation marks a fatal-for-this-message data problem
	// (negative weights, empty materials).
	InvariantViolation = errors.New("invariant violation")
)

// IsTransient reports whether err (or anything it wraps) is the Transient
// sentinel, i.e. the caller should retry rather than give up.
func IsTransient(err error) bool {
	return errors.Is(err, Transient)
}

// IsMalformedLLMOutput reports whether err (or anything it wraps) is the
// MalformedLLMOutput sentinel.
func IsMalformedLLMOutput(err error) bool {
	return errors.Is(err, MalformedLLMOutput)
}
