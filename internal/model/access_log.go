package model

import (
	"time"
)

// Portal access actions recorded in the audit trail
const (
	ActionValidate           = "validate"
	ActionViewQuote          = "view_quote"
	ActionAcceptQuote        = "accept_quote"
	ActionDeclineQuote       = "decline_quote"
	ActionViewInvoice        = "view_invoice"
	ActionDownloadInvoicePDF = "download_invoice_pdf"
	ActionInitiatePayment    = "initiate_payment"
)

// PortalAccessLog is an append-only audit record of portal activity.
// Writes are best-effort; a failed write never blocks a customer action.
type PortalAccessLog struct {
	ID        string    `db:"id" json:"id"`
	TokenID   string    `db:"token_id" json:"tokenId"`
	IPAddress string    `db:"ip_address" json:"ipAddress"`
	UserAgent string    `db:"user_agent" json:"userAgent"`
	Action    string    `db:"action" json:"action"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

type CreatePortalAccessLogParams struct {
	TokenID   string
	IPAddress string
	UserAgent string
	Action    string
}
