package payment

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/modules/job"
	"github.com/georgemunganga/printpress-backend/internal/modules/notification"
	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

// Service records payments against jobs and serves receipts and statistics.
type Service interface {
	RecordPayment(ctx context.Context, actor authctx.Identity, req RecordPaymentRequest) (*RecordResult, error)
	ListByJob(ctx context.Context, jobID string) ([]*Payment, error)
	ListPayments(ctx context.Context, f ListFilter) (*ListResult, error)
	GetReceipt(ctx context.Context, paymentID string) (*Receipt, error)
	Stats(ctx context.Context, period StatsPeriod) (*Stats, error)
}

type RecordPaymentRequest struct {
	JobID         string          `json:"job_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentType   Type            `json:"payment_type"`
	PaymentMethod job.PaymentMode `json:"payment_method"`
	Notes         string          `json:"notes"`
}

type service struct {
	repo     Repository
	stats    StatsSource
	events   notification.Publisher
	business Business
	currency string
	now      func() time.Time
}

func NewService(repo Repository, stats StatsSource, events notification.Publisher, business Business, currency string) Service {
	return &service{repo: repo, stats: stats, events: events, business: business, currency: currency, now: time.Now}
}

// RecordPayment accepts overpayment; the balance goes negative and the job
// reads as fully paid.
func (s *service) RecordPayment(ctx context.Context, actor authctx.Identity, req RecordPaymentRequest) (*RecordResult, error) {
	jobID, err := uuid.Parse(req.JobID)
	switch {
	case req.JobID == "":
		return nil, apperr.Validation("job_id is required")
	case err != nil:
		return nil, apperr.Validation("invalid job_id")
	case !req.Amount.IsPositive():
		return nil, apperr.Validation("Amount must be greater than 0")
	case !req.PaymentType.Valid():
		return nil, apperr.Validation("invalid payment_type")
	case !req.PaymentMethod.Valid():
		return nil, apperr.Validation("invalid payment_method")
	}

	recorder := actor.UserID
	p := &Payment{
		ID:            uuid.New(),
		JobID:         jobID,
		Amount:        req.Amount,
		PaymentType:   req.PaymentType,
		PaymentMethod: req.PaymentMethod,
		ReceiptNumber: job.GenerateReference("RCP", s.now()),
		RecordedBy:    actor.Name,
		RecordedByID:  &recorder,
	}
	if notes := strings.TrimSpace(req.Notes); notes != "" {
		p.Notes = &notes
	}

	j, err := s.repo.RecordPayment(ctx, p)
	if err != nil {
		return nil, err
	}

	s.events.Publish(ctx, notification.PaymentReceived(notification.PaymentDetails{
		PaymentID:     p.ID,
		TicketID:      j.TicketID,
		CustomerName:  j.CustomerName,
		RecordedBy:    actor.Name,
		Amount:        p.Amount,
		AmountPaid:    j.AmountPaid,
		Balance:       j.Balance,
		TotalCost:     j.TotalCost,
		PaymentMethod: string(p.PaymentMethod),
		PaymentStatus: string(j.PaymentStatus),
		Currency:      s.currency,
	}))

	return &RecordResult{
		Message: "Payment of " + notification.FormatAmount(s.currency, p.Amount) + " recorded successfully",
		Payment: p,
		JobUpdate: JobUpdate{
			AmountPaid:    j.AmountPaid,
			Balance:       j.Balance,
			PaymentStatus: j.PaymentStatus,
		},
	}, nil
}

func (s *service) ListByJob(ctx context.Context, jobID string) ([]*Payment, error) {
	id, err := uuid.Parse(jobID)
	if err != nil {
		return nil, apperr.Validation("invalid job id")
	}
	return s.repo.ListPaymentsByJob(ctx, id)
}

func (s *service) ListPayments(ctx context.Context, f ListFilter) (*ListResult, error) {
	if f.Method != "" && !f.Method.Valid() {
		return nil, apperr.Validation("invalid payment_method")
	}
	if f.From != nil && f.To != nil && f.To.Before(*f.From) {
		return nil, apperr.Validation("end_date is before start_date")
	}
	payments, total, err := s.repo.ListPayments(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ListResult{Payments: payments, Pagination: f.Result(total)}, nil
}

func (s *service) GetReceipt(ctx context.Context, paymentID string) (*Receipt, error) {
	id, err := uuid.Parse(paymentID)
	if err != nil {
		return nil, apperr.Validation("invalid payment id")
	}
	rc, err := s.repo.GetReceipt(ctx, id)
	if err != nil {
		return nil, err
	}
	rc.Business = s.business
	return rc, nil
}

func (s *service) Stats(ctx context.Context, period StatsPeriod) (*Stats, error) {
	if s.stats == nil {
		return nil, apperr.NotFound("payment statistics are not available")
	}
	return s.stats.PaymentStats(ctx, period)
}
