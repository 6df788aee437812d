package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	apperrors "github.com/tradiehq/portal-server-go/internal/errors"
	"github.com/tradiehq/portal-server-go/internal/model"
)

type quotePortalFixture struct {
	svc       *QuotePortalService
	tokenRepo *mockTokenRepo
	quoteRepo *mockQuoteRepo
}

func newQuotePortalFixture() *quotePortalFixture {
	tokenRepo := new(mockTokenRepo)
	quoteRepo := new(mockQuoteRepo)
	customerRepo := new(mockCustomerRepo)
	orgRepo := new(mockOrgRepo)

	logRepo := new(mockAccessLogRepo)
	logRepo.On("Create", mock.Anything, mock.Anything).Return(nil).Maybe()

	tokens := newTestTokenService(tokenRepo, quoteRepo, nil, customerRepo, orgRepo)
	accessLogs := NewAccessLogService(logRepo, tokenRepo)

	customerRepo.On("FindByID", mock.Anything, mock.Anything).
		Return(&model.Customer{ID: "cust-1", OrgID: "org-1", Name: "Jo Smith"}, nil).Maybe()
	orgRepo.On("FindByID", mock.Anything, mock.Anything).
		Return(&model.Organization{ID: "org-1", Name: "Spark Electrical"}, nil).Maybe()

	return &quotePortalFixture{
		svc:       NewQuotePortalService(tokens, quoteRepo, customerRepo, orgRepo, accessLogs),
		tokenRepo: tokenRepo,
		quoteRepo: quoteRepo,
	}
}

func (f *quotePortalFixture) stubToken(token *model.PortalToken) {
	f.tokenRepo.On("FindByToken", mock.Anything, token.Token).Return(token, nil)
	f.tokenRepo.On("Touch", mock.Anything, token.ID).Return(nil).Maybe()
}

func TestQuotePortalService_View(t *testing.T) {
	ctx := context.Background()

	t.Run("returns quote with line items and parties", func(t *testing.T) {
		f := newQuotePortalFixture()
		token := activeToken(model.TokenTypeQuote)
		f.stubToken(token)

		quote := &model.Quote{
			ID:         token.ResourceID,
			OrgID:      "org-1",
			CustomerID: "cust-1",
			Status:     model.QuoteStatusSent,
		}
		f.quoteRepo.On("FindByID", ctx, token.ResourceID).Return(quote, nil)
		f.quoteRepo.On("ListLineItems", ctx, quote.ID).Return([]model.QuoteLineItem{
			{ID: "li-1", QuoteID: quote.ID, Description: "Switchboard upgrade"},
		}, nil)

		view, err := f.svc.View(ctx, token.Token, "203.0.113.7", "test-agent")

		require.NoError(t, err)
		assert.Equal(t, quote.ID, view.Quote.ID)
		assert.Len(t, view.LineItems, 1)
		assert.Equal(t, "Spark Electrical", view.Organization.Name)
		assert.Equal(t, "Jo Smith", view.Customer.Name)
	})

	t.Run("rejects an invoice token", func(t *testing.T) {
		f := newQuotePortalFixture()
		token := activeToken(model.TokenTypeInvoice)
		f.stubToken(token)

		_, err := f.svc.View(ctx, token.Token, "203.0.113.7", "test-agent")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeTokenNotFound, apperrors.GetCode(err))
		f.quoteRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("rejects an expired token", func(t *testing.T) {
		f := newQuotePortalFixture()
		token := activeToken(model.TokenTypeQuote)
		token.ExpiresAt = time.Now().Add(-time.Minute)
		f.stubToken(token)

		_, err := f.svc.View(ctx, token.Token, "203.0.113.7", "test-agent")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeTokenExpired, apperrors.GetCode(err))
	})
}

func TestQuotePortalService_Accept(t *testing.T) {
	ctx := context.Background()

	t.Run("accepts an actionable quote", func(t *testing.T) {
		f := newQuotePortalFixture()
		token := activeToken(model.TokenTypeQuote)
		f.stubToken(token)

		accepted := &model.Quote{ID: token.ResourceID, Status: model.QuoteStatusAccepted}
		f.quoteRepo.On("Accept", ctx, token.ResourceID).Return(accepted, nil)

		quote, err := f.svc.Accept(ctx, token.Token, "203.0.113.7", "test-agent")

		require.NoError(t, err)
		assert.Equal(t, model.QuoteStatusAccepted, quote.Status)
	})

	t.Run("terminal status returns InvalidState with current status", func(t *testing.T) {
		f := newQuotePortalFixture()
		token := activeToken(model.TokenTypeQuote)
		f.stubToken(token)

		f.quoteRepo.On("Accept", ctx, token.ResourceID).Return(nil, nil)
		f.quoteRepo.On("FindByID", ctx, token.ResourceID).
			Return(&model.Quote{ID: token.ResourceID, Status: model.QuoteStatusDeclined}, nil)

		_, err := f.svc.Accept(ctx, token.Token, "203.0.113.7", "test-agent")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidState, apperrors.GetCode(err))
		assert.Contains(t, err.Error(), "declined")
	})

	t.Run("lost race with actionable status returns Conflict", func(t *testing.T) {
		f := newQuotePortalFixture()
		token := activeToken(model.TokenTypeQuote)
		f.stubToken(token)

		f.quoteRepo.On("Accept", ctx, token.ResourceID).Return(nil, nil)
		f.quoteRepo.On("FindByID", ctx, token.ResourceID).
			Return(&model.Quote{ID: token.ResourceID, Status: model.QuoteStatusSent}, nil)

		_, err := f.svc.Accept(ctx, token.Token, "203.0.113.7", "test-agent")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeConflict, apperrors.GetCode(err))
	})

	t.Run("vanished quote returns NotFound", func(t *testing.T) {
		f := newQuotePortalFixture()
		token := activeToken(model.TokenTypeQuote)
		f.stubToken(token)

		f.quoteRepo.On("Accept", ctx, token.ResourceID).Return(nil, nil)
		f.quoteRepo.On("FindByID", ctx, token.ResourceID).Return(nil, nil)

		_, err := f.svc.Accept(ctx, token.Token, "203.0.113.7", "test-agent")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeNotFound, apperrors.GetCode(err))
	})

	t.Run("revoked token cannot accept", func(t *testing.T) {
		f := newQuotePortalFixture()
		token := activeToken(model.TokenTypeQuote)
		token.IsRevoked = true
		f.stubToken(token)

		_, err := f.svc.Accept(ctx, token.Token, "203.0.113.7", "test-agent")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeTokenRevoked, apperrors.GetCode(err))
		f.quoteRepo.AssertNotCalled(t, "Accept", mock.Anything, mock.Anything)
	})
}

func TestQuotePortalService_Decline(t *testing.T) {
	ctx := context.Background()

	t.Run("declines with a reason", func(t *testing.T) {
		f := newQuotePortalFixture()
		token := activeToken(model.TokenTypeQuote)
		f.stubToken(token)

		reason := "Went with another sparky"
		declined := &model.Quote{
			ID:            token.ResourceID,
			Status:        model.QuoteStatusDeclined,
			DeclineReason: &reason,
		}
		f.quoteRepo.On("Decline", ctx, token.ResourceID, &reason).Return(declined, nil)

		quote, err := f.svc.Decline(ctx, token.Token, &reason, "203.0.113.7", "test-agent")

		require.NoError(t, err)
		assert.Equal(t, model.QuoteStatusDeclined, quote.Status)
		require.NotNil(t, quote.DeclineReason)
		assert.Equal(t, reason, *quote.DeclineReason)
	})

	t.Run("already accepted quote returns InvalidState", func(t *testing.T) {
		f := newQuotePortalFixture()
		token := activeToken(model.TokenTypeQuote)
		f.stubToken(token)

		f.quoteRepo.On("Decline", ctx, token.ResourceID, (*string)(nil)).Return(nil, nil)
		f.quoteRepo.On("FindByID", ctx, token.ResourceID).
			Return(&model.Quote{ID: token.ResourceID, Status: model.QuoteStatusAccepted}, nil)

		_, err := f.svc.Decline(ctx, token.Token, nil, "203.0.113.7", "test-agent")

		require.Error(t, err)
		assert.Equal(t, apperrors.ErrCodeInvalidState, apperrors.GetCode(err))
	})
}
