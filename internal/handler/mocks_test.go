package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/tradiehq/portal-server-go/internal/mailer"
	"github.com/tradiehq/portal-server-go/internal/model"
	"github.com/tradiehq/portal-server-go/internal/payment"
)

func jsonBody(t *testing.T, v any) io.Reader {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(data)
}

// Mock repositories

type mockTokenRepo struct {
	mock.Mock
}

func (m *mockTokenRepo) FindByID(ctx context.Context, id string) (*model.PortalToken, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PortalToken), args.Error(1)
}

func (m *mockTokenRepo) FindByToken(ctx context.Context, token string) (*model.PortalToken, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PortalToken), args.Error(1)
}

func (m *mockTokenRepo) FindActiveByResource(ctx context.Context, resourceID string, tokenType model.TokenType) (*model.PortalToken, error) {
	args := m.Called(ctx, resourceID, tokenType)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PortalToken), args.Error(1)
}

func (m *mockTokenRepo) Create(ctx context.Context, params model.CreatePortalTokenParams) (*model.PortalToken, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.PortalToken), args.Error(1)
}

func (m *mockTokenRepo) Revoke(ctx context.Context, id, orgID string) (bool, error) {
	args := m.Called(ctx, id, orgID)
	return args.Bool(0), args.Error(1)
}

func (m *mockTokenRepo) Touch(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type mockAccessLogRepo struct {
	mock.Mock
}

func (m *mockAccessLogRepo) Create(ctx context.Context, params model.CreatePortalAccessLogParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}

func (m *mockAccessLogRepo) ListByTokenID(ctx context.Context, tokenID string, limit, offset int) ([]model.PortalAccessLog, error) {
	args := m.Called(ctx, tokenID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.PortalAccessLog), args.Error(1)
}

func (m *mockAccessLogRepo) CountByTokenID(ctx context.Context, tokenID string) (int, error) {
	args := m.Called(ctx, tokenID)
	return args.Int(0), args.Error(1)
}

func (m *mockAccessLogRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type mockQuoteRepo struct {
	mock.Mock
}

func (m *mockQuoteRepo) FindByID(ctx context.Context, id string) (*model.Quote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quote), args.Error(1)
}

func (m *mockQuoteRepo) FindByIDForOrg(ctx context.Context, id, orgID string) (*model.Quote, error) {
	args := m.Called(ctx, id, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quote), args.Error(1)
}

func (m *mockQuoteRepo) ListLineItems(ctx context.Context, quoteID string) ([]model.QuoteLineItem, error) {
	args := m.Called(ctx, quoteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.QuoteLineItem), args.Error(1)
}

func (m *mockQuoteRepo) Accept(ctx context.Context, id string) (*model.Quote, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quote), args.Error(1)
}

func (m *mockQuoteRepo) Decline(ctx context.Context, id string, reason *string) (*model.Quote, error) {
	args := m.Called(ctx, id, reason)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Quote), args.Error(1)
}

type mockInvoiceRepo struct {
	mock.Mock
}

func (m *mockInvoiceRepo) FindByID(ctx context.Context, id string) (*model.Invoice, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) FindByIDForOrg(ctx context.Context, id, orgID string) (*model.Invoice, error) {
	args := m.Called(ctx, id, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Invoice), args.Error(1)
}

func (m *mockInvoiceRepo) ListLineItems(ctx context.Context, invoiceID string) ([]model.InvoiceLineItem, error) {
	args := m.Called(ctx, invoiceID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.InvoiceLineItem), args.Error(1)
}

func (m *mockInvoiceRepo) MarkOverdue(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type mockPaymentRepo struct {
	mock.Mock
}

func (m *mockPaymentRepo) Upsert(ctx context.Context, params model.CreatePaymentParams) (*model.Payment, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Payment), args.Error(1)
}

type mockCustomerRepo struct {
	mock.Mock
}

func (m *mockCustomerRepo) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Customer), args.Error(1)
}

type mockOrgRepo struct {
	mock.Mock
}

func (m *mockOrgRepo) FindByID(ctx context.Context, id string) (*model.Organization, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Organization), args.Error(1)
}

func (m *mockOrgRepo) FindByAPIKeyHash(ctx context.Context, keyHash string) (*model.Organization, error) {
	args := m.Called(ctx, keyHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Organization), args.Error(1)
}

type mockCheckoutClient struct {
	mock.Mock
}

func (m *mockCheckoutClient) CreateCheckoutSession(ctx context.Context, params payment.CreateSessionParams) (*payment.CheckoutSession, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*payment.CheckoutSession), args.Error(1)
}

type mockMailer struct {
	mock.Mock
}

func (m *mockMailer) Enabled() bool {
	args := m.Called()
	return args.Bool(0)
}

func (m *mockMailer) SendPortalLink(ctx context.Context, params mailer.PortalLinkParams) error {
	args := m.Called(ctx, params)
	return args.Error(0)
}
