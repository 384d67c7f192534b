package expense

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/pagination"
)

// Expense is business overhead not tied to any job.
type Expense struct {
	ID             uuid.UUID       `json:"id"`
	Description    string          `json:"description"`
	Category       string          `json:"category"`
	Amount         decimal.Decimal `json:"amount"`
	ExpenseDate    time.Time       `json:"expense_date"`
	RecordedBy     *uuid.UUID      `json:"recorded_by,omitempty"`
	RecordedByName string          `json:"recorded_by_name,omitempty"`
	ReceiptNumber  *string         `json:"receipt_number,omitempty"`
	Notes          *string         `json:"notes,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

type ListFilter struct {
	Category string
	Month    int
	Year     int
	pagination.Params
}

type ListResult struct {
	Expenses   []*Expense      `json:"expenses"`
	Pagination pagination.Page `json:"pagination"`
}

// MonthlyTotal is one category's spend in one month.
type MonthlyTotal struct {
	Month        int             `json:"month"`
	Category     string          `json:"category"`
	TotalAmount  decimal.Decimal `json:"total_amount"`
	ExpenseCount int             `json:"expense_count"`
}

type MonthlySummary struct {
	Year    int            `json:"year"`
	Summary []MonthlyTotal `json:"monthly_summary"`
}
