package model

import (
	"time"
)

// TokenType selects which resource table a portal token authorizes.
type TokenType string

const (
	TokenTypeQuote   TokenType = "quote"
	TokenTypeInvoice TokenType = "invoice"
)

func (t TokenType) Valid() bool {
	return t == TokenTypeQuote || t == TokenTypeInvoice
}

// PortalToken is an opaque bearer credential granting time-limited, revocable
// access to exactly one quote or invoice. The token value itself is the
// capability; customer and org references are denormalized for scoping and
// display only. Rows are never hard-deleted.
type PortalToken struct {
	ID             string     `db:"id" json:"id"`
	Token          string     `db:"token" json:"-"`
	TokenType      TokenType  `db:"token_type" json:"tokenType"`
	ResourceID     string     `db:"resource_id" json:"resourceId"`
	CustomerID     string     `db:"customer_id" json:"customerId"`
	OrgID          string     `db:"org_id" json:"orgId"`
	ExpiresAt      time.Time  `db:"expires_at" json:"expiresAt"`
	IsRevoked      bool       `db:"is_revoked" json:"isRevoked"`
	AccessCount    int        `db:"access_count" json:"accessCount"`
	LastAccessedAt *time.Time `db:"last_accessed_at" json:"lastAccessedAt,omitempty"`
	CreatedAt      time.Time  `db:"created_at" json:"createdAt"`
}

type CreatePortalTokenParams struct {
	Token      string
	TokenType  TokenType
	ResourceID string
	CustomerID string
	OrgID      string
	ExpiresAt  time.Time
}

// IsExpired checks if the token has passed its expiry. Expiry takes
// precedence over revocation when reporting why a token is invalid.
func (t *PortalToken) IsExpired() bool {
	return !time.Now().Before(t.ExpiresAt)
}

// IsActive checks if the token is still usable (not expired, not revoked)
func (t *PortalToken) IsActive() bool {
	return !t.IsExpired() && !t.IsRevoked
}
