package model

import (
	"time"
)

type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusSucceeded PaymentStatus = "succeeded"
	PaymentStatusFailed    PaymentStatus = "failed"
)

// Payment is the local mirror of a provider checkout session. Rows are
// upserted on provider_session_id so webhook reconciliation stays idempotent.
type Payment struct {
	ID                string        `db:"id" json:"id"`
	InvoiceID         string        `db:"invoice_id" json:"invoiceId"`
	OrgID             string        `db:"org_id" json:"orgId"`
	ProviderSessionID string        `db:"provider_session_id" json:"providerSessionId"`
	AmountCents       int64         `db:"amount_cents" json:"amountCents"`
	Currency          string        `db:"currency" json:"currency"`
	Status            PaymentStatus `db:"status" json:"status"`
	CreatedAt         time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updatedAt"`
}

type CreatePaymentParams struct {
	InvoiceID         string
	OrgID             string
	ProviderSessionID string
	AmountCents       int64
	Currency          string
}
