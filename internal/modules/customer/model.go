package customer

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/pagination"
)

// Customer is keyed by phone for deduplication; id is internal.
type Customer struct {
	ID                   uuid.UUID       `json:"id"`
	Name                 string          `json:"name"`
	Phone                string          `json:"phone"`
	Email                *string         `json:"email,omitempty"`
	TotalJobsCount       int             `json:"total_jobs_count"`
	TotalAmountSpent     decimal.Decimal `json:"total_amount_spent"`
	FirstInteractionDate time.Time       `json:"first_interaction_date"`
	LastInteractionDate  time.Time       `json:"last_interaction_date"`
	CreatedAt            time.Time       `json:"created_at"`
	UpdatedAt            time.Time       `json:"updated_at"`
}

// JobSummary is one line of a customer's job history.
type JobSummary struct {
	ID            uuid.UUID       `json:"id"`
	TicketID      string          `json:"ticket_id"`
	Description   string          `json:"description"`
	Status        string          `json:"status"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	AmountPaid    decimal.Decimal `json:"amount_paid"`
	Balance       decimal.Decimal `json:"balance"`
	PaymentStatus string          `json:"payment_status"`
	DateRequested time.Time       `json:"date_requested"`
	CreatedAt     time.Time       `json:"created_at"`
}

type Detail struct {
	Customer *Customer     `json:"customer"`
	Jobs     []*JobSummary `json:"jobs"`
}

type ListFilter struct {
	Search string
	pagination.Params
}

type ListResult struct {
	Customers  []*Customer     `json:"customers"`
	Pagination pagination.Page `json:"pagination"`
}

type UpdateRequest struct {
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email"`
}

// Stats summarises the customer base.
type Stats struct {
	TotalCustomers      int             `json:"total_customers"`
	ActiveCustomers     int             `json:"active_customers"`
	RepeatCustomers     int             `json:"repeat_customers"`
	AvgJobsPerCustomer  decimal.Decimal `json:"avg_jobs_per_customer"`
	AvgSpentPerCustomer decimal.Decimal `json:"avg_spent_per_customer"`
	HighestSpending     decimal.Decimal `json:"highest_spending"`
	TopCustomers        []*Customer     `json:"top_customers"`
}

// RepeatThreshold is the job count above which a customer counts as repeat.
const RepeatThreshold = 5
