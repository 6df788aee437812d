package repository

import (
	"context"

	"github.com/tradiehq/portal-server-go/internal/database"
	"github.com/tradiehq/portal-server-go/internal/model"
)

type CustomerRepository interface {
	FindByID(ctx context.Context, id string) (*model.Customer, error)
}

type customerRepo struct {
	db database.DBTX
}

func NewCustomerRepository(db database.DBTX) CustomerRepository {
	return &customerRepo{db: db}
}

func (r *customerRepo) FindByID(ctx context.Context, id string) (*model.Customer, error) {
	var customer model.Customer
	err := r.db.GetContext(ctx, &customer, `SELECT * FROM customers WHERE id = $1`, id)
	return HandleNotFound(&customer, err)
}
