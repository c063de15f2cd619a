package alerting

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lumenforge/supply-risk-platform/internal/contracts"
)

func TestSlackNotifier_SkipsSilentlyWhenWebhookUnset(t *testing.T) {
	n := NewSlackNotifier("", 0)
	err := n.Notify(context.Background(), contracts.Alert{Title: "test"})
	require.NoError(t, err)
}

func TestEmailNotifier_SkipsSilentlyWhenHostUnset(t *testing.T) {
	n := NewEmailNotifier("", "25", "", "", "noreply@example.com", nil)
	err := n.Notify(context.Background(), contracts.Alert{Title: "test"})
	require.NoError(t, err)
}

func TestEmailNotifier_SkipsSilentlyWhenNoRecipients(t *testing.T) {
	n := NewEmailNotifier("smtp.example.com", "25", "", "", "noreply@example.com", nil)
	err := n.Notify(context.Background(), contracts.Alert{Title: "test"})
	require.NoError(t, err)
}

type fakeSink struct {
	name string
	err  error
	hit  int
}

func (f *fakeSink) Notify(ctx context.Context, alert contracts.Alert) error {
	f.hit++
	return f.err
}

func TestNotifyAll_CallsEverySinkRegardlessOfFailure(t *testing.T) {
	a := &fakeSink{err: errors.New("slack down")}
	b := &fakeSink{}
	errsOut := NotifyAll(context.Background(), []Notifier{a, b}, contracts.Alert{})

	assert.Equal(t, 1, a.hit)
	assert.Equal(t, 1, b.hit)
	assert.Len(t, errsOut, 1)
}

func TestNotifyAll_NoErrorsWhenAllSinksSucceed(t *testing.T) {
	a := &fakeSink{}
	b := &fakeSink{}
	errsOut := NotifyAll(context.Background(), []Notifier{a, b}, contracts.Alert{})
	assert.Empty(t, errsOut)
}
