package repository

import (
	"context"

	"github.com/tradiehq/portal-server-go/internal/database"
	"github.com/tradiehq/portal-server-go/internal/model"
)

// PaymentRepository holds the local mirror of provider checkout sessions.
// Reads happen on the webhook-reconciler side; this service only writes.
type PaymentRepository interface {
	Upsert(ctx context.Context, params model.CreatePaymentParams) (*model.Payment, error)
}

type paymentRepo struct {
	db database.DBTX
}

func NewPaymentRepository(db database.DBTX) PaymentRepository {
	return &paymentRepo{db: db}
}

// Upsert records a pending payment keyed by the provider session id, so a
// retried initiation for the same session never duplicates rows.
func (r *paymentRepo) Upsert(ctx context.Context, params model.CreatePaymentParams) (*model.Payment, error) {
	var payment model.Payment
	err := r.db.GetContext(ctx, &payment, `
		INSERT INTO payments (invoice_id, org_id, provider_session_id, amount_cents, currency, status)
		VALUES ($1, $2, $3, $4, $5, 'pending')
		ON CONFLICT (provider_session_id) DO UPDATE SET updated_at = NOW()
		RETURNING *
	`, params.InvoiceID, params.OrgID, params.ProviderSessionID, params.AmountCents, params.Currency)
	if err != nil {
		return nil, err
	}
	return &payment, nil
}
