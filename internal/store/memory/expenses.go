package memory

import (
	"context"
	"sort"

	"github.com/google/uuid"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/modules/expense"
)

func (s *Store) ListExpenses(_ context.Context, f expense.ListFilter) ([]*expense.Expense, int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	matched := []*expense.Expense{}
	for _, e := range s.expenses {
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		if f.Month > 0 && int(e.ExpenseDate.Month()) != f.Month {
			continue
		}
		if f.Year > 0 && e.ExpenseDate.Year() != f.Year {
			continue
		}
		matched = append(matched, s.expenseView(e))
	}
	sortBy(matched, func(a, b *expense.Expense) bool {
		if !a.ExpenseDate.Equal(b.ExpenseDate) {
			return a.ExpenseDate.After(b.ExpenseDate)
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
	return page(matched, f.Offset(), f.Limit), len(matched), nil
}

func (s *Store) GetExpense(_ context.Context, id uuid.UUID) (*expense.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.expenses[id]
	if !ok {
		return nil, apperr.NotFound("Operational expense not found")
	}
	return s.expenseView(e), nil
}

func (s *Store) CreateExpense(_ context.Context, e *expense.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	e.CreatedAt, e.UpdatedAt = s.now(), s.now()
	cp := *e
	s.expenses[e.ID] = &cp
	return nil
}

func (s *Store) UpdateExpense(_ context.Context, e *expense.Expense) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cur, ok := s.expenses[e.ID]
	if !ok {
		return apperr.NotFound("Operational expense not found")
	}
	e.CreatedAt, e.UpdatedAt = cur.CreatedAt, s.now()
	cp := *e
	s.expenses[e.ID] = &cp
	return nil
}

func (s *Store) DeleteExpense(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.expenses[id]; !ok {
		return apperr.NotFound("Operational expense not found")
	}
	delete(s.expenses, id)
	return nil
}

func (s *Store) ListExpenseCategories(context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	seen := map[string]bool{}
	out := []string{}
	for _, e := range s.expenses {
		if !seen[e.Category] {
			seen[e.Category] = true
			out = append(out, e.Category)
		}
	}
	sort.Strings(out)
	return out, nil
}

// MonthlyExpenseTotals orders by month, then by amount descending.
func (s *Store) MonthlyExpenseTotals(_ context.Context, year int) ([]expense.MonthlyTotal, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	type key struct {
		month    int
		category string
	}
	totals := map[key]*expense.MonthlyTotal{}
	for _, e := range s.expenses {
		if e.ExpenseDate.Year() != year {
			continue
		}
		k := key{int(e.ExpenseDate.Month()), e.Category}
		t, ok := totals[k]
		if !ok {
			t = &expense.MonthlyTotal{Month: k.month, Category: k.category}
			totals[k] = t
		}
		t.TotalAmount = t.TotalAmount.Add(e.Amount)
		t.ExpenseCount++
	}

	out := make([]expense.MonthlyTotal, 0, len(totals))
	for _, t := range totals {
		out = append(out, *t)
	}
	sortBy(out, func(a, b expense.MonthlyTotal) bool {
		if a.Month != b.Month {
			return a.Month < b.Month
		}
		return a.TotalAmount.GreaterThan(b.TotalAmount)
	})
	return out, nil
}

func (s *Store) expenseView(e *expense.Expense) *expense.Expense {
	cp := *e
	if e.RecordedBy != nil {
		if u, ok := s.users[*e.RecordedBy]; ok {
			cp.RecordedByName = u.Name
		}
	}
	return &cp
}
