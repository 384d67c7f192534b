package expense

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

type Service interface {
	ListExpenses(ctx context.Context, f ListFilter) (*ListResult, error)
	CreateExpense(ctx context.Context, actor authctx.Identity, req ExpenseRequest) (*Expense, error)
	UpdateExpense(ctx context.Context, id string, req ExpenseRequest) (*Expense, error)
	DeleteExpense(ctx context.Context, id string) error
	Categories(ctx context.Context) ([]string, error)
	MonthlySummary(ctx context.Context, year int) (*MonthlySummary, error)
}

// ExpenseRequest is the full set of editable fields. Updates replace all of them.
type ExpenseRequest struct {
	Description   string          `json:"description"`
	Category      string          `json:"category"`
	Amount        decimal.Decimal `json:"amount"`
	ExpenseDate   string          `json:"expense_date"`
	ReceiptNumber string          `json:"receipt_number"`
	Notes         string          `json:"notes"`
}

type service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) ListExpenses(ctx context.Context, f ListFilter) (*ListResult, error) {
	if f.Month < 0 || f.Month > 12 {
		return nil, apperr.Validation("month must be between 1 and 12")
	}
	expenses, total, err := s.repo.ListExpenses(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ListResult{Expenses: expenses, Pagination: f.Result(total)}, nil
}

func (s *service) CreateExpense(ctx context.Context, actor authctx.Identity, req ExpenseRequest) (*Expense, error) {
	e := &Expense{ID: uuid.New()}
	if err := fill(e, req); err != nil {
		return nil, err
	}
	recorder := actor.UserID
	e.RecordedBy, e.RecordedByName = &recorder, actor.Name
	if err := s.repo.CreateExpense(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *service) UpdateExpense(ctx context.Context, id string, req ExpenseRequest) (*Expense, error) {
	eid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid expense id")
	}
	e, err := s.repo.GetExpense(ctx, eid)
	if err != nil {
		return nil, err
	}
	if err := fill(e, req); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateExpense(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *service) DeleteExpense(ctx context.Context, id string) error {
	eid, err := uuid.Parse(id)
	if err != nil {
		return apperr.Validation("invalid expense id")
	}
	return s.repo.DeleteExpense(ctx, eid)
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.ListExpenseCategories(ctx)
}

// MonthlySummary defaults to the current year.
func (s *service) MonthlySummary(ctx context.Context, year int) (*MonthlySummary, error) {
	if year <= 0 {
		year = s.now().Year()
	}
	totals, err := s.repo.MonthlyExpenseTotals(ctx, year)
	if err != nil {
		return nil, err
	}
	return &MonthlySummary{Year: year, Summary: totals}, nil
}

func fill(e *Expense, req ExpenseRequest) error {
	desc, cat := strings.TrimSpace(req.Description), strings.TrimSpace(req.Category)
	if desc == "" || cat == "" || req.ExpenseDate == "" {
		return apperr.Validation("Description, category, amount, and expense date are required")
	}
	if !req.Amount.IsPositive() {
		return apperr.Validation("amount must be greater than zero")
	}
	date, err := time.Parse("2006-01-02", strings.TrimSpace(req.ExpenseDate))
	if err != nil {
		return apperr.Validation("expense_date must be YYYY-MM-DD")
	}
	e.Description, e.Category, e.Amount, e.ExpenseDate = desc, cat, req.Amount, date
	e.ReceiptNumber, e.Notes = optional(req.ReceiptNumber), optional(req.Notes)
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
