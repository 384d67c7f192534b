package memory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/modules/customer"
)

func (s *Store) ListCustomers(_ context.Context, f customer.ListFilter) ([]*customer.Customer, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := s.matchCustomers(f.Search)
	return page(matched, f.Offset(), f.Limit), len(matched), nil
}

func (s *Store) GetCustomer(_ context.Context, id uuid.UUID) (*customer.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.customers[id]
	if !ok {
		return nil, apperr.NotFound("Customer not found")
	}
	cp := *c
	return &cp, nil
}

func (s *Store) ListCustomerJobs(_ context.Context, id uuid.UUID) ([]*customer.JobSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []*customer.JobSummary{}
	for _, j := range s.sortedJobs() {
		if j.CustomerID != id {
			continue
		}
		out = append(out, &customer.JobSummary{
			ID: j.ID, TicketID: j.TicketID, Description: j.Description, Status: string(j.Status),
			TotalCost: j.TotalCost, AmountPaid: j.AmountPaid, Balance: j.Balance,
			PaymentStatus: string(j.PaymentStatus), DateRequested: j.DateRequested, CreatedAt: j.CreatedAt,
		})
	}
	return out, nil
}

func (s *Store) SearchCustomers(_ context.Context, query string, limit int) ([]*customer.Customer, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return page(s.matchCustomers(query), 0, limit), nil
}

func (s *Store) UpdateCustomer(_ context.Context, c *customer.Customer) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.customers[c.ID]
	if !ok {
		return apperr.NotFound("Customer not found")
	}
	for _, o := range s.customers {
		if o.ID == c.ID {
			continue
		}
		if o.Phone == c.Phone || (o.Email != nil && c.Email != nil && *o.Email == *c.Email) {
			return apperr.Conflict("another customer already uses this phone or email")
		}
	}
	cur.Name, cur.Phone, cur.Email = c.Name, c.Phone, c.Email
	cur.UpdatedAt = s.now()
	*c = *cur
	return nil
}

func (s *Store) CustomerStats(context.Context) (*customer.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := &customer.Stats{TotalCustomers: len(s.customers)}
	jobs, spent := decimal.Zero, decimal.Zero
	all := s.matchCustomers("")
	for _, c := range all {
		if c.TotalJobsCount > 0 {
			st.ActiveCustomers++
		}
		if c.TotalJobsCount > customer.RepeatThreshold {
			st.RepeatCustomers++
		}
		if c.TotalAmountSpent.GreaterThan(st.HighestSpending) {
			st.HighestSpending = c.TotalAmountSpent
		}
		jobs = jobs.Add(decimal.NewFromInt(int64(c.TotalJobsCount)))
		spent = spent.Add(c.TotalAmountSpent)
	}
	if n := decimal.NewFromInt(int64(len(all))); n.IsPositive() {
		st.AvgJobsPerCustomer = jobs.Div(n).Round(2)
		st.AvgSpentPerCustomer = spent.Div(n).Round(2)
	}
	sortBy(all, func(a, b *customer.Customer) bool { return a.TotalAmountSpent.GreaterThan(b.TotalAmountSpent) })
	st.TopCustomers = page(all, 0, 5)
	return st, nil
}

// upsertCustomer finds by phone or creates. An existing customer keeps its
// name and email.
func (s *Store) upsertCustomer(c *customer.Customer) (*customer.Customer, error) {
	for _, o := range s.customers {
		if o.Phone == c.Phone {
			o.LastInteractionDate, o.UpdatedAt = s.now(), s.now()
			return o, nil
		}
	}
	if c.Email != nil {
		for _, o := range s.customers {
			if o.Email != nil && *o.Email == *c.Email {
				return nil, apperr.Conflict("a customer with this email already exists")
			}
		}
	}
	now := s.now()
	c.ID = uuid.New()
	c.FirstInteractionDate, c.LastInteractionDate, c.CreatedAt, c.UpdatedAt = now, now, now, now
	s.customers[c.ID] = c
	return c, nil
}

// matchCustomers returns copies ordered by last interaction, newest first.
func (s *Store) matchCustomers(query string) []*customer.Customer {
	q := strings.ToLower(query)
	out := []*customer.Customer{}
	for _, c := range s.customers {
		if q != "" && !strings.Contains(strings.ToLower(c.Name), q) && !strings.Contains(c.Phone, q) &&
			(c.Email == nil || !strings.Contains(*c.Email, q)) {
			continue
		}
		cp := *c
		out = append(out, &cp)
	}
	sortBy(out, func(a, b *customer.Customer) bool { return a.LastInteractionDate.After(b.LastInteractionDate) })
	return out
}
