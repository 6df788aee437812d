package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTokenTypeValid(t *testing.T) {
	assert.True(t, TokenTypeQuote.Valid())
	assert.True(t, TokenTypeInvoice.Valid())
	assert.False(t, TokenType("job").Valid())
	assert.False(t, TokenType("").Valid())
}

func TestPortalTokenState(t *testing.T) {
	t.Run("future expiry is active", func(t *testing.T) {
		token := &PortalToken{ExpiresAt: time.Now().Add(time.Hour)}
		assert.False(t, token.IsExpired())
		assert.True(t, token.IsActive())
	})

	t.Run("past expiry is expired", func(t *testing.T) {
		token := &PortalToken{ExpiresAt: time.Now().Add(-time.Hour)}
		assert.True(t, token.IsExpired())
		assert.False(t, token.IsActive())
	})

	t.Run("revoked token is inactive even before expiry", func(t *testing.T) {
		token := &PortalToken{ExpiresAt: time.Now().Add(time.Hour), IsRevoked: true}
		assert.False(t, token.IsExpired())
		assert.False(t, token.IsActive())
	})
}

func TestQuoteCanTransitionTo(t *testing.T) {
	tests := []struct {
		from    QuoteStatus
		to      QuoteStatus
		allowed bool
	}{
		{QuoteStatusDraft, QuoteStatusAccepted, true},
		{QuoteStatusSent, QuoteStatusAccepted, true},
		{QuoteStatusSent, QuoteStatusDeclined, true},
		{QuoteStatusAccepted, QuoteStatusDeclined, false},
		{QuoteStatusDeclined, QuoteStatusAccepted, false},
		{QuoteStatusConverted, QuoteStatusAccepted, false},
		{QuoteStatusAccepted, QuoteStatusConverted, true},
		{QuoteStatusSent, QuoteStatusConverted, false},
		{QuoteStatusSent, QuoteStatusSent, false},
	}

	for _, tc := range tests {
		quote := &Quote{Status: tc.from}
		assert.Equal(t, tc.allowed, quote.CanTransitionTo(tc.to),
			"%s -> %s", tc.from, tc.to)
	}
}

func TestInvoiceIsPayable(t *testing.T) {
	payable := []InvoiceStatus{InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusOverdue}
	for _, s := range payable {
		assert.True(t, (&Invoice{Status: s}).IsPayable(), "%s should be payable", s)
	}

	notPayable := []InvoiceStatus{InvoiceStatusPaid, InvoiceStatusCancelled, InvoiceStatusVoid}
	for _, s := range notPayable {
		assert.False(t, (&Invoice{Status: s}).IsPayable(), "%s should not be payable", s)
	}
}
