package repository

import (
	"context"

	"github.com/tradiehq/portal-server-go/internal/database"
	"github.com/tradiehq/portal-server-go/internal/model"
)

type PortalTokenRepository interface {
	FindByID(ctx context.Context, id string) (*model.PortalToken, error)
	FindByToken(ctx context.Context, token string) (*model.PortalToken, error)
	FindActiveByResource(ctx context.Context, resourceID string, tokenType model.TokenType) (*model.PortalToken, error)
	Create(ctx context.Context, params model.CreatePortalTokenParams) (*model.PortalToken, error)
	Revoke(ctx context.Context, id, orgID string) (bool, error)
	Touch(ctx context.Context, id string) error
}

type portalTokenRepo struct {
	db database.DBTX
}

func NewPortalTokenRepository(db database.DBTX) PortalTokenRepository {
	return &portalTokenRepo{db: db}
}

func (r *portalTokenRepo) FindByID(ctx context.Context, id string) (*model.PortalToken, error) {
	var token model.PortalToken
	err := r.db.GetContext(ctx, &token, `SELECT * FROM portal_tokens WHERE id = $1`, id)
	return HandleNotFound(&token, err)
}

func (r *portalTokenRepo) FindByToken(ctx context.Context, token string) (*model.PortalToken, error) {
	var row model.PortalToken
	err := r.db.GetContext(ctx, &row, `SELECT * FROM portal_tokens WHERE token = $1`, token)
	return HandleNotFound(&row, err)
}

func (r *portalTokenRepo) FindActiveByResource(ctx context.Context, resourceID string, tokenType model.TokenType) (*model.PortalToken, error) {
	var row model.PortalToken
	err := r.db.GetContext(ctx, &row, `
		SELECT * FROM portal_tokens
		WHERE resource_id = $1 AND token_type = $2
		  AND is_revoked = FALSE AND expires_at > NOW()
		ORDER BY created_at DESC
		LIMIT 1
	`, resourceID, tokenType)
	return HandleNotFound(&row, err)
}

func (r *portalTokenRepo) Create(ctx context.Context, params model.CreatePortalTokenParams) (*model.PortalToken, error) {
	var row model.PortalToken
	err := r.db.GetContext(ctx, &row, `
		INSERT INTO portal_tokens (token, token_type, resource_id, customer_id, org_id, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING *
	`, params.Token, params.TokenType, params.ResourceID, params.CustomerID, params.OrgID, params.ExpiresAt)
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// Revoke flips the one-way revocation flag. Returns false when the token does
// not exist, belongs to another org, or was already revoked.
func (r *portalTokenRepo) Revoke(ctx context.Context, id, orgID string) (bool, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE portal_tokens SET is_revoked = TRUE
		WHERE id = $1 AND org_id = $2 AND is_revoked = FALSE
	`, id, orgID)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected > 0, nil
}

func (r *portalTokenRepo) Touch(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE portal_tokens
		SET access_count = access_count + 1, last_accessed_at = NOW()
		WHERE id = $1
	`, id)
	return err
}
