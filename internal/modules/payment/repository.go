package payment

import (
	"context"

	"github.com/google/uuid"

	"github.com/georgemunganga/printpress-backend/internal/modules/job"
)

type Repository interface {
	// RecordPayment locks the job, inserts p, applies it to the job's
	// balance and adds it to the customer's spend, all in one transaction.
	// It returns the job as it stands after the payment.
	RecordPayment(ctx context.Context, p *Payment) (*job.Job, error)
	ListPaymentsByJob(ctx context.Context, jobID uuid.UUID) ([]*Payment, error)
	ListPayments(ctx context.Context, f ListFilter) ([]*Payment, int, error)
	// GetReceipt fills everything but the business block.
	GetReceipt(ctx context.Context, paymentID uuid.UUID) (*Receipt, error)
}

// StatsSource computes payment statistics. The reporting module provides it.
type StatsSource interface {
	PaymentStats(ctx context.Context, period StatsPeriod) (*Stats, error)
}
