package repository

import (
	"context"

	"github.com/tradiehq/portal-server-go/internal/database"
	"github.com/tradiehq/portal-server-go/internal/model"
)

type QuoteRepository interface {
	FindByID(ctx context.Context, id string) (*model.Quote, error)
	FindByIDForOrg(ctx context.Context, id, orgID string) (*model.Quote, error)
	ListLineItems(ctx context.Context, quoteID string) ([]model.QuoteLineItem, error)
	Accept(ctx context.Context, id string) (*model.Quote, error)
	Decline(ctx context.Context, id string, reason *string) (*model.Quote, error)
}

type quoteRepo struct {
	db database.DBTX
}

func NewQuoteRepository(db database.DBTX) QuoteRepository {
	return &quoteRepo{db: db}
}

func (r *quoteRepo) FindByID(ctx context.Context, id string) (*model.Quote, error) {
	var quote model.Quote
	err := r.db.GetContext(ctx, &quote, `SELECT * FROM quotes WHERE id = $1`, id)
	return HandleNotFound(&quote, err)
}

func (r *quoteRepo) FindByIDForOrg(ctx context.Context, id, orgID string) (*model.Quote, error) {
	var quote model.Quote
	err := r.db.GetContext(ctx, &quote, `
		SELECT * FROM quotes WHERE id = $1 AND org_id = $2
	`, id, orgID)
	return HandleNotFound(&quote, err)
}

func (r *quoteRepo) ListLineItems(ctx context.Context, quoteID string) ([]model.QuoteLineItem, error) {
	var items []model.QuoteLineItem
	err := r.db.SelectContext(ctx, &items, `
		SELECT * FROM quote_line_items
		WHERE quote_id = $1
		ORDER BY sort_order, id
	`, quoteID)
	if err != nil {
		return nil, err
	}
	return items, nil
}

// Accept transitions the quote to accepted. The status check is part of the
// UPDATE itself so two concurrent transitions cannot both succeed; a nil
// result means the quote was no longer in an actionable status.
func (r *quoteRepo) Accept(ctx context.Context, id string) (*model.Quote, error) {
	var quote model.Quote
	err := r.db.GetContext(ctx, &quote, `
		UPDATE quotes
		SET status = 'accepted', accepted_at = NOW(), updated_at = NOW()
		WHERE id = $1 AND status IN ('draft', 'sent')
		RETURNING *
	`, id)
	return HandleNotFound(&quote, err)
}

// Decline transitions the quote to declined under the same conditional guard
// as Accept.
func (r *quoteRepo) Decline(ctx context.Context, id string, reason *string) (*model.Quote, error) {
	var quote model.Quote
	err := r.db.GetContext(ctx, &quote, `
		UPDATE quotes
		SET status = 'declined', declined_at = NOW(), decline_reason = $2, updated_at = NOW()
		WHERE id = $1 AND status IN ('draft', 'sent')
		RETURNING *
	`, id, reason)
	return HandleNotFound(&quote, err)
}
