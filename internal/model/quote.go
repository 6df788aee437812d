package model

import (
	"time"
)

type QuoteStatus string

const (
	QuoteStatusDraft     QuoteStatus = "draft"
	QuoteStatusSent      QuoteStatus = "sent"
	QuoteStatusAccepted  QuoteStatus = "accepted"
	QuoteStatusDeclined  QuoteStatus = "declined"
	QuoteStatusConverted QuoteStatus = "converted"
)

// QuoteActionableStatuses are the statuses from which a customer may still
// accept or decline. Every other status is terminal for portal purposes.
var QuoteActionableStatuses = []QuoteStatus{QuoteStatusDraft, QuoteStatusSent}

type Quote struct {
	ID            string      `db:"id" json:"id"`
	OrgID         string      `db:"org_id" json:"orgId"`
	CustomerID    string      `db:"customer_id" json:"customerId"`
	QuoteNumber   string      `db:"quote_number" json:"quoteNumber"`
	Status        QuoteStatus `db:"status" json:"status"`
	SubtotalCents int64       `db:"subtotal_cents" json:"subtotalCents"`
	GSTCents      int64       `db:"gst_cents" json:"gstCents"`
	TotalCents    int64       `db:"total_cents" json:"totalCents"`
	Notes         *string     `db:"notes" json:"notes,omitempty"`
	ValidUntil    *time.Time  `db:"valid_until" json:"validUntil,omitempty"`
	AcceptedAt    *time.Time  `db:"accepted_at" json:"acceptedAt,omitempty"`
	DeclinedAt    *time.Time  `db:"declined_at" json:"declinedAt,omitempty"`
	DeclineReason *string     `db:"decline_reason" json:"declineReason,omitempty"`
	CreatedAt     time.Time   `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updatedAt"`
}

type QuoteLineItem struct {
	ID             string  `db:"id" json:"id"`
	QuoteID        string  `db:"quote_id" json:"quoteId"`
	Description    string  `db:"description" json:"description"`
	Quantity       float64 `db:"quantity" json:"quantity"`
	UnitPriceCents int64   `db:"unit_price_cents" json:"unitPriceCents"`
	TotalCents     int64   `db:"total_cents" json:"totalCents"`
	SortOrder      int     `db:"sort_order" json:"sortOrder"`
}

// CanTransitionTo reports whether the portal permits moving the quote to the
// requested status from its current one.
func (q *Quote) CanTransitionTo(target QuoteStatus) bool {
	switch target {
	case QuoteStatusAccepted, QuoteStatusDeclined:
		return q.Status == QuoteStatusDraft || q.Status == QuoteStatusSent
	case QuoteStatusConverted:
		return q.Status == QuoteStatusAccepted
	default:
		return false
	}
}
