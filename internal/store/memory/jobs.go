package memory

import (
	"context"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/modules/customer"
	"github.com/georgemunganga/printpress-backend/internal/modules/inventory"
	"github.com/georgemunganga/printpress-backend/internal/modules/job"
)

func (s *Store) CreateJob(_ context.Context, j *job.Job, c job.NewCustomer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.jobs {
		if o.TicketID == j.TicketID {
			return apperr.Conflict("ticket id %s already exists", j.TicketID)
		}
	}
	cust, err := s.upsertCustomer(&customer.Customer{Name: c.Name, Phone: c.Phone, Email: c.Email})
	if err != nil {
		return err
	}

	j.CustomerID = cust.ID
	j.CustomerName = cust.Name
	j.CustomerEmail = nil
	if cust.Email != nil {
		email := *cust.Email
		j.CustomerEmail = &email
	}
	j.CreatedAt, j.UpdatedAt = s.now(), s.now()
	cp := *j
	s.jobs[j.ID] = &cp

	cust.TotalJobsCount++
	cust.TotalAmountSpent = cust.TotalAmountSpent.Add(j.TotalCost)
	cust.LastInteractionDate = s.now()
	return nil
}

func (s *Store) GetJob(_ context.Context, id uuid.UUID) (*job.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[id]
	if !ok {
		return nil, apperr.NotFound("Job not found")
	}
	return s.joined(j), nil
}

func (s *Store) GetJobByTicket(_ context.Context, ticket string) (*job.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, j := range s.jobs {
		if j.TicketID == ticket {
			return s.joined(j), nil
		}
	}
	return nil, apperr.NotFound("Job not found")
}

func (s *Store) ListJobs(_ context.Context, f job.ListFilter) ([]*job.Job, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := []*job.Job{}
	for _, j := range s.sortedJobs() {
		if f.Status != "" && j.Status != f.Status {
			continue
		}
		if f.WorkerID != nil && (j.WorkerID == nil || *j.WorkerID != *f.WorkerID) {
			continue
		}
		if f.CustomerID != nil && j.CustomerID != *f.CustomerID {
			continue
		}
		matched = append(matched, s.joined(j))
	}
	return page(matched, f.Offset(), f.Limit), len(matched), nil
}

func (s *Store) ListMaterials(_ context.Context, jobID uuid.UUID) ([]*job.MaterialUsed, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*job.MaterialUsed{}
	for _, m := range s.materials {
		if m.JobID == jobID {
			cp := *m
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) ListWaste(_ context.Context, jobID uuid.UUID) ([]*job.WasteExpense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*job.WasteExpense{}
	for _, w := range s.waste {
		if w.JobID != nil && *w.JobID == jobID {
			cp := *w
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *Store) ListJobPayments(_ context.Context, jobID uuid.UUID) ([]*job.PaymentRecord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*job.PaymentRecord{}
	for _, p := range s.paymentsFor(jobID, false) {
		out = append(out, &job.PaymentRecord{
			ID: p.ID, Amount: p.Amount, PaymentType: string(p.PaymentType), PaymentMethod: string(p.PaymentMethod),
			ReceiptNumber: p.ReceiptNumber, RecordedBy: p.RecordedBy, Date: p.Date, Notes: p.Notes,
		})
	}
	return out, nil
}

// ApplyStatusUpdate cannot fail once the job is found, so it never leaves a
// partial write.
func (s *Store) ApplyStatusUpdate(_ context.Context, u job.StatusUpdate) (*job.Job, job.Status, []inventory.StockChange, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[u.JobID]
	if !ok {
		return nil, "", nil, apperr.NotFound("Job not found")
	}
	previous := j.Status
	j.Status = u.Status

	var changes []inventory.StockChange
	materials := decimal.Zero
	for _, m := range u.Materials {
		if m.UpdateInventory {
			if item := s.oldestActiveItem(m.MaterialName); item != nil {
				item.CurrentStock = item.CurrentStock.Sub(decimal.NewFromInt(int64(m.Quantity)))
				item.UpdatedAt = s.now()
				changes = append(changes, inventory.StockChange{
					ItemID: item.ID, MaterialName: item.MaterialName, CurrentStock: item.CurrentStock,
					Threshold: item.Threshold, UnitOfMeasure: item.UnitOfMeasure,
				})
				if m.MaterialID == nil {
					id := item.ID
					m.MaterialID = &id
				}
			}
		}
		m.JobID, m.CreatedAt = j.ID, s.now()
		cp := *m
		s.materials = append(s.materials, &cp)
		materials = materials.Add(m.TotalCost)
	}

	waste := decimal.Zero
	for _, w := range u.Waste {
		id := j.ID
		w.JobID, w.CreatedAt = &id, s.now()
		cp := *w
		s.waste = append(s.waste, &cp)
		waste = waste.Add(w.TotalCost)
	}

	j.AddCosts(materials, waste)
	j.UpdatedAt = s.now()
	return s.joined(j), previous, changes, nil
}

func (s *Store) UpdateJob(_ context.Context, id uuid.UUID, apply func(*job.Job) error) (*job.Job, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.jobs[id]
	if !ok {
		return nil, apperr.NotFound("Job not found")
	}
	j := s.joined(cur)
	if err := apply(j); err != nil {
		return nil, err
	}
	j.Recompute()
	j.UpdatedAt = s.now()
	stored := *j
	stored.CustomerName, stored.CustomerPhone, stored.CustomerEmail, stored.WorkerName = "", "", nil, ""
	s.jobs[id] = &stored
	return j, nil
}

func (s *Store) RecordWaste(_ context.Context, w *job.WasteExpense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if w.JobID != nil {
		j, ok := s.jobs[*w.JobID]
		if !ok {
			return apperr.NotFound("Job not found")
		}
		j.AddCosts(decimal.Zero, w.TotalCost)
		j.UpdatedAt = s.now()
	}
	w.CreatedAt = s.now()
	cp := *w
	s.waste = append(s.waste, &cp)
	return nil
}

// joined copies j and fills the customer and worker columns.
func (s *Store) joined(j *job.Job) *job.Job {
	cp := *j
	if c, ok := s.customers[j.CustomerID]; ok {
		cp.CustomerName, cp.CustomerPhone, cp.CustomerEmail = c.Name, c.Phone, c.Email
	}
	if j.WorkerID != nil {
		if u, ok := s.users[*j.WorkerID]; ok {
			cp.WorkerName = u.Name
		}
	}
	return &cp
}

// sortedJobs orders by creation, newest first.
func (s *Store) sortedJobs() []*job.Job {
	out := make([]*job.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		out = append(out, j)
	}
	sortBy(out, func(a, b *job.Job) bool { return a.CreatedAt.After(b.CreatedAt) })
	return out
}
