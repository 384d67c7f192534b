package payment

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/modules/job"
	"github.com/georgemunganga/printpress-backend/internal/pagination"
)

type Type string

const (
	TypeDeposit     Type = "deposit"
	TypeInstallment Type = "installment"
	TypeFullPayment Type = "full_payment"
	TypeBalance     Type = "balance"
)

func (t Type) Valid() bool {
	switch t {
	case TypeDeposit, TypeInstallment, TypeFullPayment, TypeBalance:
		return true
	}
	return false
}

// Payment is immutable once recorded.
type Payment struct {
	ID            uuid.UUID       `json:"id"`
	JobID         uuid.UUID       `json:"job_id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentType   Type            `json:"payment_type"`
	PaymentMethod job.PaymentMode `json:"payment_method"`
	ReceiptNumber string          `json:"receipt_number"`
	RecordedBy    string          `json:"recorded_by"`
	RecordedByID  *uuid.UUID      `json:"recorded_by_id,omitempty"`
	Notes         *string         `json:"notes,omitempty"`
	Date          time.Time       `json:"date"`
	CreatedAt     time.Time       `json:"created_at"`

	TicketID     string `json:"ticket_id,omitempty"`
	CustomerName string `json:"customer_name,omitempty"`
}

// JobUpdate is the job's financial state right after a payment.
type JobUpdate struct {
	AmountPaid    decimal.Decimal   `json:"amount_paid"`
	Balance       decimal.Decimal   `json:"balance"`
	PaymentStatus job.PaymentStatus `json:"payment_status"`
}

type RecordResult struct {
	Message   string    `json:"message"`
	Payment   *Payment  `json:"payment"`
	JobUpdate JobUpdate `json:"job_update"`
}

type ListFilter struct {
	From, To *time.Time
	Method   job.PaymentMode
	pagination.Params
}

type ListResult struct {
	Payments   []*Payment      `json:"payments"`
	Pagination pagination.Page `json:"pagination"`
}

// Business is the letterhead printed on receipts.
type Business struct {
	Name    string `json:"name"`
	Phone   string `json:"phone"`
	Address string `json:"address"`
}

type ReceiptCustomer struct {
	Name  string  `json:"name"`
	Phone string  `json:"phone"`
	Email *string `json:"email,omitempty"`
}

type ReceiptJob struct {
	TicketID         string          `json:"ticket_id"`
	Description      string          `json:"description"`
	DateRequested    time.Time       `json:"date_requested"`
	DeliveryDeadline *time.Time      `json:"delivery_deadline,omitempty"`
	TotalCost        decimal.Decimal `json:"total_cost"`
}

type ReceiptPayment struct {
	Amount     decimal.Decimal `json:"amount"`
	AmountPaid decimal.Decimal `json:"amount_paid"`
	Balance    decimal.Decimal `json:"balance"`
	Method     job.PaymentMode `json:"method"`
	Type       Type            `json:"type"`
	RecordedBy string          `json:"recorded_by"`
	Notes      *string         `json:"notes,omitempty"`
}

type HistoryEntry struct {
	Amount        decimal.Decimal `json:"amount"`
	PaymentType   Type            `json:"payment_type"`
	PaymentMethod job.PaymentMode `json:"payment_method"`
	ReceiptNumber string          `json:"receipt_number"`
	Date          time.Time       `json:"date"`
	Notes         *string         `json:"notes,omitempty"`
}

// Receipt is everything needed to render a payment receipt. History is
// ordered oldest first.
type Receipt struct {
	ReceiptNumber string          `json:"receipt_number"`
	Date          time.Time       `json:"date"`
	Business      Business        `json:"business"`
	Customer      ReceiptCustomer `json:"customer"`
	Job           ReceiptJob      `json:"job"`
	Payment       ReceiptPayment  `json:"payment"`
	History       []*HistoryEntry `json:"payment_history"`
}

// StatsPeriod is the bucket size for payment statistics.
type StatsPeriod string

const (
	PeriodDaily   StatsPeriod = "daily"
	PeriodWeekly  StatsPeriod = "weekly"
	PeriodMonthly StatsPeriod = "monthly"
)

// ParseStatsPeriod maps unknown values to monthly.
func ParseStatsPeriod(s string) StatsPeriod {
	switch p := StatsPeriod(s); p {
	case PeriodDaily, PeriodWeekly:
		return p
	}
	return PeriodMonthly
}

type PeriodStat struct {
	Period          string          `json:"period"`
	PaymentCount    int             `json:"payment_count"`
	TotalAmount     decimal.Decimal `json:"total_amount"`
	AveragePayment  decimal.Decimal `json:"average_payment"`
	UniqueJobs      int             `json:"unique_jobs"`
	UniqueCustomers int             `json:"unique_customers"`
}

type MethodShare struct {
	PaymentMethod job.PaymentMode `json:"payment_method"`
	Count         int             `json:"count"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
}

type Stats struct {
	PaymentStats       []PeriodStat  `json:"payment_stats"`
	MethodDistribution []MethodShare `json:"method_distribution"`
	Period             StatsPeriod   `json:"period"`
}
