package model

import (
	"time"
)

type InvoiceStatus string

const (
	InvoiceStatusDraft     InvoiceStatus = "draft"
	InvoiceStatusSent      InvoiceStatus = "sent"
	InvoiceStatusOverdue   InvoiceStatus = "overdue"
	InvoiceStatusPaid      InvoiceStatus = "paid"
	InvoiceStatusCancelled InvoiceStatus = "cancelled"
	InvoiceStatusVoid      InvoiceStatus = "void"
)

// InvoicePayableStatuses are the statuses from which payment may be initiated.
var InvoicePayableStatuses = []InvoiceStatus{
	InvoiceStatusDraft, InvoiceStatusSent, InvoiceStatusOverdue,
}

type Invoice struct {
	ID            string        `db:"id" json:"id"`
	OrgID         string        `db:"org_id" json:"orgId"`
	CustomerID    string        `db:"customer_id" json:"customerId"`
	InvoiceNumber string        `db:"invoice_number" json:"invoiceNumber"`
	Status        InvoiceStatus `db:"status" json:"status"`
	SubtotalCents int64         `db:"subtotal_cents" json:"subtotalCents"`
	GSTCents      int64         `db:"gst_cents" json:"gstCents"`
	TotalCents    int64         `db:"total_cents" json:"totalCents"`
	Currency      string        `db:"currency" json:"currency"`
	Notes         *string       `db:"notes" json:"notes,omitempty"`
	DueDate       *time.Time    `db:"due_date" json:"dueDate,omitempty"`
	PaidAt        *time.Time    `db:"paid_at" json:"paidAt,omitempty"`
	CreatedAt     time.Time     `db:"created_at" json:"createdAt"`
	UpdatedAt     time.Time     `db:"updated_at" json:"updatedAt"`
}

type InvoiceLineItem struct {
	ID             string  `db:"id" json:"id"`
	InvoiceID      string  `db:"invoice_id" json:"invoiceId"`
	Description    string  `db:"description" json:"description"`
	Quantity       float64 `db:"quantity" json:"quantity"`
	UnitPriceCents int64   `db:"unit_price_cents" json:"unitPriceCents"`
	TotalCents     int64   `db:"total_cents" json:"totalCents"`
	SortOrder      int     `db:"sort_order" json:"sortOrder"`
}

// IsPayable checks if payment may still be initiated for this invoice
func (i *Invoice) IsPayable() bool {
	for _, s := range InvoicePayableStatuses {
		if i.Status == s {
			return true
		}
	}
	return false
}
