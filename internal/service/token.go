package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	apperrors "github.com/tradiehq/portal-server-go/internal/errors"
	"github.com/tradiehq/portal-server-go/internal/model"
	"github.com/tradiehq/portal-server-go/internal/repository"
	"github.com/tradiehq/portal-server-go/internal/util"
)

// TokenService issues, validates and revokes portal tokens.
type TokenService struct {
	tokenRepo    repository.PortalTokenRepository
	quoteRepo    repository.QuoteRepository
	invoiceRepo  repository.InvoiceRepository
	customerRepo repository.CustomerRepository
	orgRepo      repository.OrganizationRepository
	baseURL      string
	quoteTTL     time.Duration
	invoiceTTL   time.Duration
}

func NewTokenService(
	tokenRepo repository.PortalTokenRepository,
	quoteRepo repository.QuoteRepository,
	invoiceRepo repository.InvoiceRepository,
	customerRepo repository.CustomerRepository,
	orgRepo repository.OrganizationRepository,
	baseURL string,
	quoteTTL, invoiceTTL time.Duration,
) *TokenService {
	return &TokenService{
		tokenRepo:    tokenRepo,
		quoteRepo:    quoteRepo,
		invoiceRepo:  invoiceRepo,
		customerRepo: customerRepo,
		orgRepo:      orgRepo,
		baseURL:      baseURL,
		quoteTTL:     quoteTTL,
		invoiceTTL:   invoiceTTL,
	}
}

type IssueParams struct {
	TokenType  model.TokenType
	ResourceID string
	OrgID      string
}

type IssueResult struct {
	Token         *model.PortalToken
	PortalURL     string
	Reused        bool
	ResourceRef   string
	OrgName       string
	CustomerEmail *string
}

// Issue creates a shareable portal token for a quote or invoice, or returns
// the existing one when an unexpired, unrevoked token already covers the
// resource. Reuse keeps issuance idempotent so repeated "share" clicks do not
// proliferate live links.
func (s *TokenService) Issue(ctx context.Context, params IssueParams) (*IssueResult, error) {
	if !params.TokenType.Valid() {
		return nil, apperrors.InvalidInput("resource_type", "must be quote or invoice")
	}

	customerID, resourceRef, err := s.resolveResource(ctx, params)
	if err != nil {
		return nil, err
	}

	result := &IssueResult{ResourceRef: resourceRef}

	if org, err := s.orgRepo.FindByID(ctx, params.OrgID); err == nil && org != nil {
		result.OrgName = org.Name
	}
	if customer, err := s.customerRepo.FindByID(ctx, customerID); err == nil && customer != nil {
		result.CustomerEmail = customer.Email
	}

	existing, err := s.tokenRepo.FindActiveByResource(ctx, params.ResourceID, params.TokenType)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if existing != nil {
		log.Info().
			Str("tokenId", existing.ID).
			Str("resourceId", params.ResourceID).
			Str("tokenType", string(params.TokenType)).
			Time("expiresAt", existing.ExpiresAt).
			Msg("reusing existing portal token")
		result.Token = existing
		result.PortalURL = s.PortalURL(existing)
		result.Reused = true
		return result, nil
	}

	token, err := s.tokenRepo.Create(ctx, model.CreatePortalTokenParams{
		Token:      uuid.NewString(),
		TokenType:  params.TokenType,
		ResourceID: params.ResourceID,
		CustomerID: customerID,
		OrgID:      params.OrgID,
		ExpiresAt:  time.Now().Add(s.ttlFor(params.TokenType)),
	})
	if err != nil {
		return nil, apperrors.Database(err)
	}

	log.Info().
		Str("tokenId", token.ID).
		Str("resourceId", params.ResourceID).
		Str("tokenType", string(params.TokenType)).
		Time("expiresAt", token.ExpiresAt).
		Msg("portal token issued")

	result.Token = token
	result.PortalURL = s.PortalURL(token)
	return result, nil
}

// Validate resolves a bearer token string to its row. Checks run strictly in
// order: existence, then expiry, then revocation, so an expired token reports
// Expired even when it was also revoked. The access counter update is
// best-effort; the validation decision stands regardless.
func (s *TokenService) Validate(ctx context.Context, token string) (*model.PortalToken, error) {
	row, err := s.tokenRepo.FindByToken(ctx, token)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if row == nil {
		log.Warn().Str("token", util.MaskToken(token)).Msg("unknown portal token")
		return nil, apperrors.TokenNotFound()
	}

	if row.IsExpired() {
		return nil, apperrors.TokenExpired()
	}
	if row.IsRevoked {
		return nil, apperrors.TokenRevoked()
	}

	if err := s.tokenRepo.Touch(ctx, row.ID); err != nil {
		log.Warn().Err(err).Str("tokenId", row.ID).Msg("failed to update token access counter")
	}

	return row, nil
}

// TokenInfo is the validation endpoint's view of a token: the scoped resource
// reference plus the display parties.
type TokenInfo struct {
	Token        *model.PortalToken
	Organization *model.Organization
	Customer     *model.Customer
}

// Describe validates a token and loads the owning organization and customer
// for portal display.
func (s *TokenService) Describe(ctx context.Context, token string) (*TokenInfo, error) {
	row, err := s.Validate(ctx, token)
	if err != nil {
		return nil, err
	}

	info := &TokenInfo{Token: row}

	info.Organization, err = s.orgRepo.FindByID(ctx, row.OrgID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	info.Customer, err = s.customerRepo.FindByID(ctx, row.CustomerID)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	return info, nil
}

// Revoke permanently invalidates a token ahead of its expiry. Revoking an
// already-revoked token succeeds (the flag is one-way and idempotent).
func (s *TokenService) Revoke(ctx context.Context, tokenID, orgID string) error {
	revoked, err := s.tokenRepo.Revoke(ctx, tokenID, orgID)
	if err != nil {
		return apperrors.Database(err)
	}
	if revoked {
		log.Info().Str("tokenId", tokenID).Str("orgId", orgID).Msg("portal token revoked")
		return nil
	}

	existing, err := s.tokenRepo.FindByID(ctx, tokenID)
	if err != nil {
		return apperrors.Database(err)
	}
	if existing == nil || existing.OrgID != orgID {
		return apperrors.NotFound("Token")
	}
	return nil
}

// FindForOrg loads a token by id, scoped to the owning organization.
func (s *TokenService) FindForOrg(ctx context.Context, tokenID, orgID string) (*model.PortalToken, error) {
	token, err := s.tokenRepo.FindByID(ctx, tokenID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if token == nil || token.OrgID != orgID {
		return nil, apperrors.NotFound("Token")
	}
	return token, nil
}

// PortalURL builds the shareable customer-facing link for a token.
func (s *TokenService) PortalURL(token *model.PortalToken) string {
	switch token.TokenType {
	case model.TokenTypeInvoice:
		return fmt.Sprintf("%s/portal/invoices/%s", s.baseURL, token.Token)
	default:
		return fmt.Sprintf("%s/portal/quotes/%s", s.baseURL, token.Token)
	}
}

func (s *TokenService) ttlFor(tokenType model.TokenType) time.Duration {
	if tokenType == model.TokenTypeInvoice {
		return s.invoiceTTL
	}
	return s.quoteTTL
}

// resolveResource confirms the resource exists under the caller's org and
// returns its customer reference and display number.
func (s *TokenService) resolveResource(ctx context.Context, params IssueParams) (customerID, ref string, err error) {
	switch params.TokenType {
	case model.TokenTypeQuote:
		quote, err := s.quoteRepo.FindByIDForOrg(ctx, params.ResourceID, params.OrgID)
		if err != nil {
			return "", "", apperrors.Database(err)
		}
		if quote == nil {
			return "", "", apperrors.NotFound("Quote")
		}
		return quote.CustomerID, quote.QuoteNumber, nil
	default:
		invoice, err := s.invoiceRepo.FindByIDForOrg(ctx, params.ResourceID, params.OrgID)
		if err != nil {
			return "", "", apperrors.Database(err)
		}
		if invoice == nil {
			return "", "", apperrors.NotFound("Invoice")
		}
		return invoice.CustomerID, invoice.InvoiceNumber, nil
	}
}
