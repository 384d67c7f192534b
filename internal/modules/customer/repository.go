package customer

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	ListCustomers(ctx context.Context, f ListFilter) ([]*Customer, int, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*Customer, error)
	ListCustomerJobs(ctx context.Context, id uuid.UUID) ([]*JobSummary, error)
	SearchCustomers(ctx context.Context, query string, limit int) ([]*Customer, error)
	UpdateCustomer(ctx context.Context, c *Customer) error
	CustomerStats(ctx context.Context) (*Stats, error)
}
