package job

import (
	"context"

	"github.com/google/uuid"

	"github.com/georgemunganga/printpress-backend/internal/modules/inventory"
)

// Repository is the job ledger. Every write method is one atomic unit.
type Repository interface {
	// CreateJob finds the customer by phone (creating it when absent), inserts
	// the job and bumps the customer's counters. It sets j.CustomerID and
	// replaces the customer name and email on j with the stored ones.
	CreateJob(ctx context.Context, j *Job, c NewCustomer) error
	GetJob(ctx context.Context, id uuid.UUID) (*Job, error)
	GetJobByTicket(ctx context.Context, ticket string) (*Job, error)
	ListJobs(ctx context.Context, f ListFilter) ([]*Job, int, error)
	ListMaterials(ctx context.Context, jobID uuid.UUID) ([]*MaterialUsed, error)
	ListWaste(ctx context.Context, jobID uuid.UUID) ([]*WasteExpense, error)
	ListJobPayments(ctx context.Context, jobID uuid.UUID) ([]*PaymentRecord, error)

	// ApplyStatusUpdate writes the status, material lines, stock decrements,
	// waste lines and cost totals. It returns the status held before and the
	// stock level of every decremented item.
	ApplyStatusUpdate(ctx context.Context, u StatusUpdate) (*Job, Status, []inventory.StockChange, error)

	// UpdateJob locks the job, lets apply mutate it and saves the result.
	UpdateJob(ctx context.Context, id uuid.UUID, apply func(*Job) error) (*Job, error)

	// RecordWaste inserts w and, when it belongs to a job, adds it to the
	// job's waste cost.
	RecordWaste(ctx context.Context, w *WasteExpense) error
}
