package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"

	apperrors "github.com/tradiehq/portal-server-go/internal/errors"
	"github.com/tradiehq/portal-server-go/internal/model"
	"github.com/tradiehq/portal-server-go/internal/payment"
	"github.com/tradiehq/portal-server-go/internal/repository"
)

// CheckoutClient creates hosted checkout sessions at the payment provider.
type CheckoutClient interface {
	CreateCheckoutSession(ctx context.Context, params payment.CreateSessionParams) (*payment.CheckoutSession, error)
}

// InvoicePortalService is the token-gated gateway to a single invoice,
// including payment initiation.
type InvoicePortalService struct {
	tokens       *TokenService
	invoiceRepo  repository.InvoiceRepository
	paymentRepo  repository.PaymentRepository
	customerRepo repository.CustomerRepository
	orgRepo      repository.OrganizationRepository
	accessLogs   *AccessLogService
	checkout     CheckoutClient
	baseURL      string
}

func NewInvoicePortalService(
	tokens *TokenService,
	invoiceRepo repository.InvoiceRepository,
	paymentRepo repository.PaymentRepository,
	customerRepo repository.CustomerRepository,
	orgRepo repository.OrganizationRepository,
	accessLogs *AccessLogService,
	checkout CheckoutClient,
	baseURL string,
) *InvoicePortalService {
	return &InvoicePortalService{
		tokens:       tokens,
		invoiceRepo:  invoiceRepo,
		paymentRepo:  paymentRepo,
		customerRepo: customerRepo,
		orgRepo:      orgRepo,
		accessLogs:   accessLogs,
		checkout:     checkout,
		baseURL:      baseURL,
	}
}

// InvoiceView is everything the portal page (or the PDF renderer) needs.
type InvoiceView struct {
	Invoice      *model.Invoice          `json:"invoice"`
	LineItems    []model.InvoiceLineItem `json:"lineItems"`
	Customer     *model.Customer         `json:"customer"`
	Organization *model.Organization     `json:"organization"`
}

// View loads the invoice referenced by the token.
func (s *InvoicePortalService) View(ctx context.Context, token, ip, userAgent string) (*InvoiceView, error) {
	return s.view(ctx, token, ip, userAgent, model.ActionViewInvoice)
}

// PDFSnapshot serves the same data as View but is logged as a PDF download.
// Rasterization happens client-side; this is the render source.
func (s *InvoicePortalService) PDFSnapshot(ctx context.Context, token, ip, userAgent string) (*InvoiceView, error) {
	return s.view(ctx, token, ip, userAgent, model.ActionDownloadInvoicePDF)
}

func (s *InvoicePortalService) view(ctx context.Context, token, ip, userAgent, action string) (*InvoiceView, error) {
	row, err := s.validateInvoiceToken(ctx, token)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, row.ResourceID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if invoice == nil {
		return nil, apperrors.NotFound("Invoice")
	}

	view := &InvoiceView{Invoice: invoice}
	view.LineItems, err = s.invoiceRepo.ListLineItems(ctx, invoice.ID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	view.Customer, err = s.customerRepo.FindByID(ctx, invoice.CustomerID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	view.Organization, err = s.orgRepo.FindByID(ctx, invoice.OrgID)
	if err != nil {
		return nil, apperrors.Database(err)
	}

	s.accessLogs.Record(row.ID, ip, userAgent, action)

	return view, nil
}

// PaymentIntent is what the customer needs to complete payment externally.
type PaymentIntent struct {
	SessionID   string `json:"sessionId"`
	CheckoutURL string `json:"checkoutUrl"`
}

// InitiatePayment creates a hosted checkout session for the invoice. The
// provider session is authoritative: the local pending-payment row and the
// audit entry are both best-effort, and their failure never withholds the
// checkout URL from the customer. Reconciliation happens via the provider's
// webhook against the session id.
func (s *InvoicePortalService) InitiatePayment(ctx context.Context, token, ip, userAgent string) (*PaymentIntent, error) {
	row, err := s.validateInvoiceToken(ctx, token)
	if err != nil {
		return nil, err
	}

	invoice, err := s.invoiceRepo.FindByID(ctx, row.ResourceID)
	if err != nil {
		return nil, apperrors.Database(err)
	}
	if invoice == nil {
		return nil, apperrors.NotFound("Invoice")
	}
	if !invoice.IsPayable() {
		return nil, apperrors.InvalidState(
			fmt.Sprintf("This invoice is %s and cannot be paid", invoice.Status),
		)
	}

	var customerEmail string
	if customer, err := s.customerRepo.FindByID(ctx, invoice.CustomerID); err == nil && customer != nil && customer.Email != nil {
		customerEmail = *customer.Email
	}

	portalURL := fmt.Sprintf("%s/portal/invoices/%s", s.baseURL, token)
	session, err := s.checkout.CreateCheckoutSession(ctx, payment.CreateSessionParams{
		AmountCents:   invoice.TotalCents,
		Currency:      invoice.Currency,
		Description:   fmt.Sprintf("Invoice %s", invoice.InvoiceNumber),
		ReferenceID:   invoice.ID,
		CustomerEmail: customerEmail,
		SuccessURL:    portalURL + "?payment=success",
		CancelURL:     portalURL + "?payment=cancelled",
	})
	if err != nil {
		return nil, apperrors.Upstream("payment", err)
	}

	if _, err := s.paymentRepo.Upsert(ctx, model.CreatePaymentParams{
		InvoiceID:         invoice.ID,
		OrgID:             invoice.OrgID,
		ProviderSessionID: session.ID,
		AmountCents:       invoice.TotalCents,
		Currency:          invoice.Currency,
	}); err != nil {
		// The webhook reconciler picks this up from the provider side.
		log.Error().
			Err(err).
			Str("invoiceId", invoice.ID).
			Str("sessionId", session.ID).
			Msg("failed to record pending payment")
	}

	log.Info().
		Str("invoiceId", invoice.ID).
		Str("sessionId", session.ID).
		Int64("amountCents", invoice.TotalCents).
		Msg("payment initiated via portal")
	s.accessLogs.Record(row.ID, ip, userAgent, model.ActionInitiatePayment)

	return &PaymentIntent{SessionID: session.ID, CheckoutURL: session.CheckoutURL}, nil
}

func (s *InvoicePortalService) validateInvoiceToken(ctx context.Context, token string) (*model.PortalToken, error) {
	row, err := s.tokens.Validate(ctx, token)
	if err != nil {
		return nil, err
	}
	if row.TokenType != model.TokenTypeInvoice {
		return nil, apperrors.TokenNotFound()
	}
	return row, nil
}
