package stream

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_CaseAndWhitespaceInsensitive(t *testing.T) {
	a := Fingerprint("  Port Closure In Shanghai  ", "Body text here")
	b := Fingerprint("port closure in shanghai", "body text here")
	assert.Equal(t, a, b, "fingerprint should normalize case and surrounding whitespace")
}

func TestFingerprint_DifferentHeadlinesDiffer(t *testing.T) {
	a := Fingerprint("Port closure in Shanghai", "")
	b := Fingerprint("Factory fire in Taiwan", "")
	assert.NotEqual(t, a, b)
}

func TestFingerprint_BodyDoesNotAffectResult(t *testing.T) {
	longBody := ""
	for i := 0; i < 200; i++ {
		longBody += "x"
	}
	shortBody := ""
	for i := 0; i < 100; i++ {
		shortBody += "x"
	}
	a := Fingerprint("headline", longBody)
	b := Fingerprint("headline", shortBody)
	assert.Equal(t, a, b, "the body should not affect the fingerprint")
}

func TestFingerprint_EmptyBodyStillStable(t *testing.T) {
	a := Fingerprint("headline only", "")
	b := Fingerprint("headline only", "")
	assert.Equal(t, a, b)
}
