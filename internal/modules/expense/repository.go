package expense

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	ListExpenses(ctx context.Context, f ListFilter) ([]*Expense, int, error)
	GetExpense(ctx context.Context, id uuid.UUID) (*Expense, error)
	CreateExpense(ctx context.Context, e *Expense) error
	UpdateExpense(ctx context.Context, e *Expense) error
	DeleteExpense(ctx context.Context, id uuid.UUID) error
	ListExpenseCategories(ctx context.Context) ([]string, error)
	MonthlyExpenseTotals(ctx context.Context, year int) ([]MonthlyTotal, error)
}
