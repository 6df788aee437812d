package model

import (
	"time"
)

// Organization is the tenant that owns quotes, invoices and tokens.
// APIKeyHash authenticates the business-side token management endpoints.
type Organization struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	TradingName *string   `db:"trading_name" json:"tradingName,omitempty"`
	ABN         *string   `db:"abn" json:"abn,omitempty"`
	Email       string    `db:"email" json:"email"`
	Phone       *string   `db:"phone" json:"phone,omitempty"`
	APIKeyHash  *string   `db:"api_key_hash" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

type Customer struct {
	ID        string    `db:"id" json:"id"`
	OrgID     string    `db:"org_id" json:"orgId"`
	Name      string    `db:"name" json:"name"`
	Email     *string   `db:"email" json:"email,omitempty"`
	Phone     *string   `db:"phone" json:"phone,omitempty"`
	Address   *string   `db:"address" json:"address,omitempty"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}
