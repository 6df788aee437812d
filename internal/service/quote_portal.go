package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	apperrors "github.com/tradiehq/portal-server-go/internal/errors"
	"github.com/tradiehq/portal-server-go/internal/model"
	"github.com/tradiehq/portal-server-go/internal/repository"
)

// QuotePortalService is the token-gated gateway to a single quote. Every
// operation re-validates the bearer token; validity is never cached across
// requests.
type QuotePortalService struct {
	tokens       *TokenService
	quoteRepo    repository.QuoteRepository
	customerRepo repository.CustomerRepository
	orgRepo      repository.OrganizationRepository
	accessLogs   *AccessLogService
}

func NewQuotePortalService(
	tokens *TokenService,
	quoteRepo repository.QuoteRepository,
	customerRepo repository.CustomerRepository,
	orgRepo repository.OrganizationRepository,
	accessLogs *AccessLogService,
) *QuotePortalService {
	return &QuotePortalService{
		tokens:       tokens,
		quoteRepo:    quoteRepo,
		customerRepo: customerRepo,
		orgRepo:      orgRepo,
		accessLogs:   accessLogs,
	}
}

// QuoteView is everything the portal page needs to render a quote.
type QuoteView struct {
	Quote        *model.Quote          `json:"quote"`
	LineItems    []model.QuoteLineItem `json:"lineItems"`
	Customer     *model.Customer       `json:"customer"`
	Organization *model.Organization   `json:"organization"`
}

// View loads the quote referenced by the token.
func (s *QuotePortalService) View(ctx context.Context, token, ip, userAgent string) (*QuoteView, error) {
	row, err := s.validateQuoteToken(ctx, token)
	if err != nil {
		return nil, err
	}

	quote, err := s.quoteRepo.FindByID(ctx, row.ResourceID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if quote == nil {
		return nil, apperrors.NotFound("Quote")
	}

	view := &QuoteView{Quote: quote}
	view.LineItems, err = s.quoteRepo.ListLineItems(ctx, quote.ID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	view.Customer, err = s.customerRepo.FindByID(ctx, quote.CustomerID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	view.Organization, err = s.orgRepo.FindByID(ctx, quote.OrgID)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	s.accessLogs.Record(row.ID, ip, userAgent, model.ActionViewQuote)

	return view, nil
}

// Accept moves the quote to accepted. The transition guard is a conditional
// update so a concurrent accept/decline cannot both win.
func (s *QuotePortalService) Accept(ctx context.Context, token, ip, userAgent string) (*model.Quote, error) {
	row, err := s.validateQuoteToken(ctx, token)
	if err != nil {
		return nil, err
	}

	quote, err := s.quoteRepo.Accept(ctx, row.ResourceID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if quote == nil {
		return nil, s.transitionError(ctx, row.ResourceID, model.QuoteStatusAccepted)
	}

	log.Info().
		Str("quoteId", quote.ID).
		Str("tokenId", row.ID).
		Msg("quote accepted via portal")
	s.accessLogs.Record(row.ID, ip, userAgent, model.ActionAcceptQuote)

	return quote, nil
}

// Decline moves the quote to declined, recording the customer's optional
// reason.
func (s *QuotePortalService) Decline(ctx context.Context, token string, reason *string, ip, userAgent string) (*model.Quote, error) {
	row, err := s.validateQuoteToken(ctx, token)
	if err != nil {
		return nil, err
	}

	quote, err := s.quoteRepo.Decline(ctx, row.ResourceID, reason)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if quote == nil {
		return nil, s.transitionError(ctx, row.ResourceID, model.QuoteStatusDeclined)
	}

	log.Info().
		Str("quoteId", quote.ID).
		Str("tokenId", row.ID).
		Msg("quote declined via portal")
	s.accessLogs.Record(row.ID, ip, userAgent, model.ActionDeclineQuote)

	return quote, nil
}

func (s *QuotePortalService) validateQuoteToken(ctx context.Context, token string) (*model.PortalToken, error) {
	row, err := s.tokens.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	if row.TokenType != model.TokenTypeQuote {
		return nil, apperrors.TokenNotFound()
	}
	return row, nil
}

// transitionError explains a failed conditional update: the quote vanished,
// its status no longer permits the transition, or the guard lost a race with
// a concurrent update and the caller should retry.
func (s *QuotePortalService) transitionError(ctx context.Context, quoteID string, target model.QuoteStatus) error {
	quote, err := s.quoteRepo.FindByID(ctx, quoteID)
	if err != nil {
		return apperrors.Database(err)
	}
	if quote == nil {
		return apperrors.NotFound("Quote")
	}
	if !quote.CanTransitionTo(target) {
		return apperrors.InvalidState(
			fmt.Sprintf("This quote is %s and can no longer be %s", quote.Status, target),
		)
	}
	return apperrors.Conflict(fmt.Sprintf("Quote could not be %s, please retry", target))
}
