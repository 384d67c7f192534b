package memory

import (
	"context"

	"github.com/google/uuid"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/modules/job"
	"github.com/georgemunganga/printpress-backend/internal/modules/payment"
)

func (s *Store) RecordPayment(_ context.Context, p *payment.Payment) (*job.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[p.JobID]
	if !ok {
		return nil, apperr.NotFound("Job not found")
	}
	for _, o := range s.payments {
		if o.ReceiptNumber == p.ReceiptNumber {
			return nil, apperr.Conflict("receipt number %s already exists", p.ReceiptNumber)
		}
	}

	p.Date, p.CreatedAt = s.now(), s.now()
	cp := *p
	s.payments = append(s.payments, &cp)

	j.ApplyPayment(p.Amount)
	j.UpdatedAt = s.now()
	if c, ok := s.customers[j.CustomerID]; ok {
		c.TotalAmountSpent = c.TotalAmountSpent.Add(p.Amount)
		c.LastInteractionDate = s.now()
	}

	out := s.joined(j)
	p.TicketID, p.CustomerName = out.TicketID, out.CustomerName
	return out, nil
}

func (s *Store) ListPaymentsByJob(_ context.Context, jobID uuid.UUID) ([]*payment.Payment, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.paymentsFor(jobID, false), nil
}

func (s *Store) ListPayments(_ context.Context, f payment.ListFilter) ([]*payment.Payment, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := []*payment.Payment{}
	for _, p := range s.payments {
		if f.From != nil && p.Date.Before(*f.From) {
			continue
		}
		if f.To != nil && !p.Date.Before(*f.To) {
			continue
		}
		if f.Method != "" && p.PaymentMethod != f.Method {
			continue
		}
		matched = append(matched, s.paymentView(p))
	}
	sortBy(matched, func(a, b *payment.Payment) bool { return a.Date.After(b.Date) })
	return page(matched, f.Offset(), f.Limit), len(matched), nil
}

func (s *Store) GetReceipt(_ context.Context, paymentID uuid.UUID) (*payment.Receipt, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var p *payment.Payment
	for _, o := range s.payments {
		if o.ID == paymentID {
			p = o
		}
	}
	if p == nil {
		return nil, apperr.NotFound("Payment not found")
	}
	j := s.joined(s.jobs[p.JobID])

	rc := &payment.Receipt{
		ReceiptNumber: p.ReceiptNumber,
		Date:          p.Date,
		Customer:      payment.ReceiptCustomer{Name: j.CustomerName, Phone: j.CustomerPhone, Email: j.CustomerEmail},
		Job: payment.ReceiptJob{
			TicketID: j.TicketID, Description: j.Description, DateRequested: j.DateRequested,
			DeliveryDeadline: j.DeliveryDeadline, TotalCost: j.TotalCost,
		},
		Payment: payment.ReceiptPayment{
			Amount: p.Amount, AmountPaid: j.AmountPaid, Balance: j.Balance, Method: p.PaymentMethod,
			Type: p.PaymentType, RecordedBy: p.RecordedBy, Notes: p.Notes,
		},
		History: []*payment.HistoryEntry{},
	}
	for _, h := range s.paymentsFor(p.JobID, true) {
		rc.History = append(rc.History, &payment.HistoryEntry{
			Amount: h.Amount, PaymentType: h.PaymentType, PaymentMethod: h.PaymentMethod,
			ReceiptNumber: h.ReceiptNumber, Date: h.Date, Notes: h.Notes,
		})
	}
	return rc, nil
}

// paymentsFor returns copies of the job's payments by date.
func (s *Store) paymentsFor(jobID uuid.UUID, oldestFirst bool) []*payment.Payment {
	out := []*payment.Payment{}
	for _, p := range s.payments {
		if p.JobID == jobID {
			out = append(out, s.paymentView(p))
		}
	}
	sortBy(out, func(a, b *payment.Payment) bool {
		if oldestFirst {
			return a.Date.Before(b.Date)
		}
		return a.Date.After(b.Date)
	})
	return out
}

func (s *Store) paymentView(p *payment.Payment) *payment.Payment {
	cp := *p
	if j, ok := s.jobs[p.JobID]; ok {
		cp.TicketID = j.TicketID
		if c, ok := s.customers[j.CustomerID]; ok {
			cp.CustomerName = c.Name
		}
	}
	return &cp
}
