package repository

import (
	"context"

	"github.com/tradiehq/portal-server-go/internal/database"
	"github.com/tradiehq/portal-server-go/internal/model"
)

type OrganizationRepository interface {
	FindByID(ctx context.Context, id string) (*model.Organization, error)
	FindByAPIKeyHash(ctx context.Context, keyHash string) (*model.Organization, error)
}

type organizationRepo struct {
	db database.DBTX
}

func NewOrganizationRepository(db database.DBTX) OrganizationRepository {
	return &organizationRepo{db: db}
}

func (r *organizationRepo) FindByID(ctx context.Context, id string) (*model.Organization, error) {
	var org model.Organization
	err := r.db.GetContext(ctx, &org, `SELECT * FROM organizations WHERE id = $1`, id)
	return HandleNotFound(&org, err)
}

func (r *organizationRepo) FindByAPIKeyHash(ctx context.Context, keyHash string) (*model.Organization, error) {
	var org model.Organization
	err := r.db.GetContext(ctx, &org, `
		SELECT * FROM organizations WHERE api_key_hash = $1
	`, keyHash)
	return HandleNotFound(&org, err)
}
