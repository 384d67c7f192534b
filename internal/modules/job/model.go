package job

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/pagination"
)

// Status is caller-directed; any value may follow any other.
type Status string

const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusDelivered  Status = "delivered"
)

func (s Status) Valid() bool {
	switch s {
	case StatusNotStarted, StatusInProgress, StatusCompleted, StatusDelivered:
		return true
	}
	return false
}

// PaymentStatus is derived from amount paid and balance, never set directly.
type PaymentStatus string

const (
	PaymentPending       PaymentStatus = "pending"
	PaymentPartiallyPaid PaymentStatus = "partially_paid"
	PaymentFullyPaid     PaymentStatus = "fully_paid"
)

// DerivePaymentStatus: fully_paid when nothing is owed, pending when nothing
// has been paid, partially_paid otherwise.
func DerivePaymentStatus(amountPaid, balance decimal.Decimal) PaymentStatus {
	switch {
	case !balance.IsPositive():
		return PaymentFullyPaid
	case amountPaid.IsZero():
		return PaymentPending
	default:
		return PaymentPartiallyPaid
	}
}

type PaymentMode string

const (
	ModeCash     PaymentMode = "cash"
	ModeTransfer PaymentMode = "transfer"
	ModePOS      PaymentMode = "pos"
)

func (m PaymentMode) Valid() bool {
	return m == ModeCash || m == ModeTransfer || m == ModePOS
}

type WasteType string

const (
	WastePaper       WasteType = "paper_waste"
	WasteMaterial    WasteType = "material_waste"
	WasteLabor       WasteType = "labor"
	WasteOperational WasteType = "operational"
	WasteOther       WasteType = "other"
)

func (w WasteType) Valid() bool {
	switch w {
	case WastePaper, WasteMaterial, WasteLabor, WasteOperational, WasteOther:
		return true
	}
	return false
}

// Job is a print order and its running financial state.
type Job struct {
	ID               uuid.UUID       `json:"id"`
	TicketID         string          `json:"ticket_id"`
	CustomerID       uuid.UUID       `json:"customer_id"`
	WorkerID         *uuid.UUID      `json:"worker_id,omitempty"`
	Description      string          `json:"description"`
	Status           Status          `json:"status"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	AmountPaid       decimal.Decimal `json:"amount_paid"`
	Balance          decimal.Decimal `json:"balance"`
	PaymentStatus    PaymentStatus   `json:"payment_status"`
	ModeOfPayment    *PaymentMode    `json:"mode_of_payment,omitempty"`
	MaterialsCost    decimal.Decimal `json:"materials_cost"`
	WasteCost        decimal.Decimal `json:"waste_cost"`
	OperationalCost  decimal.Decimal `json:"operational_cost"`
	LaborCost        decimal.Decimal `json:"labor_cost"`
	Profit           decimal.Decimal `json:"profit"`
	DateRequested    time.Time       `json:"date_requested"`
	DeliveryDeadline *time.Time      `json:"delivery_deadline,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`

	CustomerName  string  `json:"customer_name,omitempty"`
	CustomerPhone string  `json:"customer_phone,omitempty"`
	CustomerEmail *string `json:"customer_email,omitempty"`
	WorkerName    string  `json:"worker_name,omitempty"`
}

// Recompute restores balance, payment status and profit from the stored
// amounts. Every mutation of a Job goes through it.
func (j *Job) Recompute() {
	j.Balance = j.TotalCost.Sub(j.AmountPaid)
	j.PaymentStatus = DerivePaymentStatus(j.AmountPaid, j.Balance)
	j.Profit = j.TotalCost.Sub(j.MaterialsCost.Add(j.WasteCost).Add(j.OperationalCost).Add(j.LaborCost))
}

// ApplyPayment adds amount to what has been paid.
func (j *Job) ApplyPayment(amount decimal.Decimal) {
	j.AmountPaid = j.AmountPaid.Add(amount)
	j.Recompute()
}

// AddCosts accumulates material and waste spend.
func (j *Job) AddCosts(materials, waste decimal.Decimal) {
	j.MaterialsCost = j.MaterialsCost.Add(materials)
	j.WasteCost = j.WasteCost.Add(waste)
	j.Recompute()
}

// MaterialUsed records consumption against a job. TotalCost is fixed at insert.
type MaterialUsed struct {
	ID           uuid.UUID       `json:"id"`
	JobID        uuid.UUID       `json:"job_id"`
	MaterialID   *uuid.UUID      `json:"material_id,omitempty"`
	MaterialName string          `json:"material_name"`
	PaperSize    *string         `json:"paper_size,omitempty"`
	PaperType    *string         `json:"paper_type,omitempty"`
	Grammage     *int            `json:"grammage,omitempty"`
	Quantity     int             `json:"quantity"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	CreatedAt    time.Time       `json:"created_at"`

	// UpdateInventory asks for the matching active stock to be decremented.
	UpdateInventory bool `json:"-"`
}

// WasteExpense is spoilage or overhead, optionally tied to a job.
type WasteExpense struct {
	ID          uuid.UUID           `json:"id"`
	JobID       *uuid.UUID          `json:"job_id,omitempty"`
	Type        WasteType           `json:"type"`
	Description string              `json:"description"`
	Quantity    *int                `json:"quantity,omitempty"`
	UnitCost    decimal.NullDecimal `json:"unit_cost"`
	TotalCost   decimal.Decimal     `json:"total_cost"`
	WasteReason *string             `json:"waste_reason,omitempty"`
	CreatedAt   time.Time           `json:"created_at"`
}

// PaymentRecord is a payment as listed on a job.
type PaymentRecord struct {
	ID            uuid.UUID       `json:"id"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentType   string          `json:"payment_type"`
	PaymentMethod string          `json:"payment_method"`
	ReceiptNumber string          `json:"receipt_number"`
	RecordedBy    string          `json:"recorded_by"`
	Date          time.Time       `json:"date"`
	Notes         *string         `json:"notes,omitempty"`
}

type Detail struct {
	Job       *Job             `json:"job"`
	Materials []*MaterialUsed  `json:"materials,omitempty"`
	Waste     []*WasteExpense  `json:"waste,omitempty"`
	Payments  []*PaymentRecord `json:"payments"`
}

// NewCustomer is the contact used to find or create the job's customer.
type NewCustomer struct {
	Name  string
	Phone string
	Email *string
}

// StatusUpdate is everything written by one status change.
type StatusUpdate struct {
	JobID     uuid.UUID
	Status    Status
	Materials []*MaterialUsed
	Waste     []*WasteExpense
}

type ListFilter struct {
	Status     Status
	WorkerID   *uuid.UUID
	CustomerID *uuid.UUID
	pagination.Params
}

type ListResult struct {
	Jobs       []*Job          `json:"jobs"`
	Pagination pagination.Page `json:"pagination"`
}

// GenerateReference returns "<prefix>-<unix ms>-<4 upper-case hex>", used
// for ticket ids and receipt numbers.
func GenerateReference(prefix string, now time.Time) string {
	return fmt.Sprintf("%s-%d-%s", prefix, now.UnixMilli(), strings.ToUpper(uuid.New().String()[:4]))
}
