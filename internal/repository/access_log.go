package repository

import (
	"context"
	"time"

	"github.com/tradiehq/portal-server-go/internal/database"
	"github.com/tradiehq/portal-server-go/internal/model"
)

type PortalAccessLogRepository interface {
	Create(ctx context.Context, params model.CreatePortalAccessLogParams) error
	ListByTokenID(ctx context.Context, tokenID string, limit, offset int) ([]model.PortalAccessLog, error)
	CountByTokenID(ctx context.Context, tokenID string) (int, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type portalAccessLogRepo struct {
	db database.DBTX
}

func NewPortalAccessLogRepository(db database.DBTX) PortalAccessLogRepository {
	return &portalAccessLogRepo{db: db}
}

func (r *portalAccessLogRepo) Create(ctx context.Context, params model.CreatePortalAccessLogParams) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO portal_access_logs (token_id, ip_address, user_agent, action)
		VALUES ($1, $2, $3, $4)
	`, params.TokenID, params.IPAddress, params.UserAgent, params.Action)
	return err
}

func (r *portalAccessLogRepo) ListByTokenID(ctx context.Context, tokenID string, limit, offset int) ([]model.PortalAccessLog, error) {
	var logs []model.PortalAccessLog
	err := r.db.SelectContext(ctx, &logs, `
		SELECT * FROM portal_access_logs
		WHERE token_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, tokenID, limit, offset)
	if err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *portalAccessLogRepo) CountByTokenID(ctx context.Context, tokenID string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `
		SELECT COUNT(*) FROM portal_access_logs WHERE token_id = $1
	`, tokenID)
	return count, err
}

func (r *portalAccessLogRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		DELETE FROM portal_access_logs WHERE created_at < $1
	`, cutoff)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
