package repository

import (
	"context"

	"github.com/tradiehq/portal-server-go/internal/database"
	"github.com/tradiehq/portal-server-go/internal/model"
)

type InvoiceRepository interface {
	FindByID(ctx context.Context, id string) (*model.Invoice, error)
	FindByIDForOrg(ctx context.Context, id, orgID string) (*model.Invoice, error)
	ListLineItems(ctx context.Context, invoiceID string) ([]model.InvoiceLineItem, error)
	MarkOverdue(ctx context.Context) (int64, error)
}

type invoiceRepo struct {
	db database.DBTX
}

func NewInvoiceRepository(db database.DBTX) InvoiceRepository {
	return &invoiceRepo{db: db}
}

func (r *invoiceRepo) FindByID(ctx context.Context, id string) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.GetContext(ctx, &invoice, `SELECT * FROM invoices WHERE id = $1`, id)
	return HandleNotFound(&invoice, err)
}

func (r *invoiceRepo) FindByIDForOrg(ctx context.Context, id, orgID string) (*model.Invoice, error) {
	var invoice model.Invoice
	err := r.db.GetContext(ctx, &invoice, `
		SELECT * FROM invoices WHERE id = $1 AND org_id = $2
	`, id, orgID)
	return HandleNotFound(&invoice, err)
}

func (r *invoiceRepo) ListLineItems(ctx context.Context, invoiceID string) ([]model.InvoiceLineItem, error) {
	var items []model.InvoiceLineItem
	err := r.db.SelectContext(ctx, &items, `
		SELECT * FROM invoice_line_items
		WHERE invoice_id = $1
		ORDER BY sort_order, id
	`, invoiceID)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (r *invoiceRepo) MarkOverdue(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE invoices
		SET status = 'overdue', updated_at = NOW()
		WHERE status = 'sent' AND due_date IS NOT NULL AND due_date < NOW()
	`)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
