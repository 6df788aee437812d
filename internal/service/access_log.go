package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/tradiehq/portal-server-go/internal/config"
	apperrors "github.com/tradiehq/portal-server-go/internal/errors"
	"github.com/tradiehq/portal-server-go/internal/model"
	"github.com/tradiehq/portal-server-go/internal/repository"
)

// AccessLogService records the portal audit trail. Writes are fire-and-forget:
// portal traffic is unauthenticated and public-facing, and a failed audit
// write must never be the reason a legitimate customer action fails.
type AccessLogService struct {
	logRepo   repository.PortalAccessLogRepository
	tokenRepo repository.PortalTokenRepository
}

func NewAccessLogService(
	logRepo repository.PortalAccessLogRepository,
	tokenRepo repository.PortalTokenRepository,
) *AccessLogService {
	return &AccessLogService{logRepo: logRepo, tokenRepo: tokenRepo}
}

// Record writes an audit entry in the background. Errors are swallowed.
func (s *AccessLogService) Record(tokenID, ip, userAgent, action string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), config.AccessLogWriteTimeout)
		defer cancel()
		s.record(ctx, tokenID, ip, userAgent, action)
	}()
}

func (s *AccessLogService) record(ctx context.Context, tokenID, ip, userAgent, action string) {
	err := s.logRepo.Create(ctx, model.CreatePortalAccessLogParams{
		TokenID:   tokenID,
		IPAddress: ip,
		UserAgent: userAgent,
		Action:    action,
	})
	if err != nil {
		log.Warn().
			Err(err).
			Str("tokenId", tokenID).
			Str("action", action).
			Msg("portal access log write failed")
	}
}

// List returns the audit trail for a token, scoped to the owning org.
func (s *AccessLogService) List(ctx context.Context, tokenID, orgID string, limit, offset int) ([]model.PortalAccessLog, int, error) {
	token, err := s.tokenRepo.FindByID(ctx, tokenID)
	if err != nil {
		return nil, 0, apperrors.Database(err)
	}
	if token == nil || token.OrgID != orgID {
		return nil, 0, apperrors.NotFound("Token")
	}

	logs, err := s.logRepo.ListByTokenID(ctx, tokenID, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Database(err)
	}
	total, err := s.logRepo.CountByTokenID(ctx, tokenID)
	if err != nil {
		return nil, 0, apperrors.Database(err)
	}
	return logs, total, nil
}
