package job

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/mail"
	"github.com/georgemunganga/printpress-backend/internal/modules/customer"
	"github.com/georgemunganga/printpress-backend/internal/modules/inventory"
	"github.com/georgemunganga/printpress-backend/internal/modules/notification"
	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
)

const dateLayout = "2006-01-02"

// Service runs the job lifecycle. Workers only see and change their own jobs.
type Service interface {
	CreateJob(ctx context.Context, actor authctx.Identity, req CreateJobRequest) (*Job, error)
	GetJob(ctx context.Context, actor authctx.Identity, id string) (*Detail, error)
	GetJobByTicket(ctx context.Context, ticket string) (*Detail, error)
	ListJobs(ctx context.Context, actor authctx.Identity, f ListFilter) (*ListResult, error)
	UpdateStatus(ctx context.Context, actor authctx.Identity, id string, req UpdateStatusRequest) (*Job, error)
	UpdateJob(ctx context.Context, actor authctx.Identity, id string, req UpdateJobRequest) (*Job, error)
	RecordWaste(ctx context.Context, req RecordWasteRequest) (*WasteExpense, error)
}

type CreateJobRequest struct {
	CustomerName     string          `json:"customer_name"`
	CustomerPhone    string          `json:"customer_phone"`
	CustomerEmail    string          `json:"customer_email"`
	Description      string          `json:"description"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	DateRequested    string          `json:"date_requested"`
	DeliveryDeadline string          `json:"delivery_deadline"`
	ModeOfPayment    PaymentMode     `json:"mode_of_payment"`
}

// MaterialLine is one material consumed during a status change.
type MaterialLine struct {
	MaterialID      *uuid.UUID      `json:"material_id"`
	MaterialName    string          `json:"material_name"`
	PaperSize       string          `json:"paper_size"`
	PaperType       string          `json:"paper_type"`
	Grammage        *int            `json:"grammage"`
	Quantity        int             `json:"quantity"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	UpdateInventory bool            `json:"update_inventory"`
}

type WasteLine struct {
	Type        WasteType           `json:"type"`
	Description string              `json:"description"`
	Quantity    *int                `json:"quantity"`
	UnitCost    decimal.NullDecimal `json:"unit_cost"`
	TotalCost   decimal.Decimal     `json:"total_cost"`
	WasteReason string              `json:"waste_reason"`
}

type UpdateStatusRequest struct {
	Status    Status         `json:"status"`
	Materials []MaterialLine `json:"materials"`
	Waste     []WasteLine    `json:"waste"`
}

// UpdateJobRequest changes only the fields that are set.
type UpdateJobRequest struct {
	Description      *string          `json:"description"`
	TotalCost        *decimal.Decimal `json:"total_cost"`
	DeliveryDeadline *string          `json:"delivery_deadline"`
	ModeOfPayment    *PaymentMode     `json:"mode_of_payment"`
}

// RecordWasteRequest records waste, tied to a job or general when JobID is nil.
type RecordWasteRequest struct {
	JobID *uuid.UUID `json:"job_id"`
	WasteLine
}

type service struct {
	repo         Repository
	events       notification.Publisher
	businessName string
	currency     string
	now          func() time.Time
}

func NewService(repo Repository, events notification.Publisher, businessName, currency string) Service {
	return &service{repo: repo, events: events, businessName: businessName, currency: currency, now: time.Now}
}

func (s *service) CreateJob(ctx context.Context, actor authctx.Identity, req CreateJobRequest) (*Job, error) {
	name := strings.TrimSpace(req.CustomerName)
	phone := customer.NormalizePhone(req.CustomerPhone)
	desc := strings.TrimSpace(req.Description)
	switch {
	case name == "":
		return nil, apperr.Validation("customer_name is required")
	case phone == "":
		return nil, apperr.Validation("customer_phone is required")
	case desc == "":
		return nil, apperr.Validation("description is required")
	case !req.TotalCost.IsPositive():
		return nil, apperr.Validation("total_cost must be greater than zero")
	case req.ModeOfPayment != "" && !req.ModeOfPayment.Valid():
		return nil, apperr.Validation("invalid mode_of_payment")
	}

	now := s.now()
	requested := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	if req.DateRequested != "" {
		d, err := time.Parse(dateLayout, req.DateRequested)
		if err != nil {
			return nil, apperr.Validation("date_requested must be YYYY-MM-DD")
		}
		requested = d
	}
	deadline, err := parseDate(req.DeliveryDeadline, "delivery_deadline")
	if err != nil {
		return nil, err
	}

	worker := actor.UserID
	j := &Job{
		ID:               uuid.New(),
		TicketID:         GenerateReference("PRESS", now),
		WorkerID:         &worker,
		Description:      desc,
		Status:           StatusNotStarted,
		TotalCost:        req.TotalCost,
		DateRequested:    requested,
		DeliveryDeadline: deadline,
		CustomerName:     name,
		CustomerPhone:    phone,
		WorkerName:       actor.Name,
	}
	if req.ModeOfPayment != "" {
		mode := req.ModeOfPayment
		j.ModeOfPayment = &mode
	}
	j.Recompute()

	email := customer.NormalizeEmail(req.CustomerEmail)
	if err := s.repo.CreateJob(ctx, j, NewCustomer{Name: name, Phone: phone, Email: email}); err != nil {
		return nil, err
	}

	s.events.Publish(ctx, notification.JobCreated(j.ID, j.TicketID, actor.Name, j.CustomerName))
	return j, nil
}

func (s *service) GetJob(ctx context.Context, actor authctx.Identity, id string) (*Detail, error) {
	j, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	materials, err := s.repo.ListMaterials(ctx, j.ID)
	if err != nil {
		return nil, err
	}
	waste, err := s.repo.ListWaste(ctx, j.ID)
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListJobPayments(ctx, j.ID)
	if err != nil {
		return nil, err
	}
	return &Detail{Job: j, Materials: materials, Waste: waste, Payments: payments}, nil
}

// GetJobByTicket is open to every signed-in user; a ticket is what customers quote.
func (s *service) GetJobByTicket(ctx context.Context, ticket string) (*Detail, error) {
	j, err := s.repo.GetJobByTicket(ctx, strings.TrimSpace(ticket))
	if err != nil {
		return nil, err
	}
	payments, err := s.repo.ListJobPayments(ctx, j.ID)
	if err != nil {
		return nil, err
	}
	return &Detail{Job: j, Payments: payments}, nil
}

func (s *service) ListJobs(ctx context.Context, actor authctx.Identity, f ListFilter) (*ListResult, error) {
	if f.Status != "" && !f.Status.Valid() {
		return nil, apperr.Validation("invalid status")
	}
	if !actor.IsAdmin() {
		worker := actor.UserID
		f.WorkerID = &worker
	}
	jobs, total, err := s.repo.ListJobs(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ListResult{Jobs: jobs, Pagination: f.Result(total)}, nil
}

// UpdateStatus writes the new status with any materials and waste in one
// unit, then raises the status, completion and stock notifications.
func (s *service) UpdateStatus(ctx context.Context, actor authctx.Identity, id string, req UpdateStatusRequest) (*Job, error) {
	if !req.Status.Valid() {
		return nil, apperr.Validation("invalid status")
	}
	current, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	update := StatusUpdate{JobID: current.ID, Status: req.Status}
	for i, line := range req.Materials {
		m, err := materialFrom(line)
		if err != nil {
			return nil, apperr.Validation("materials[%d]: %s", i, apperr.Message(err))
		}
		update.Materials = append(update.Materials, m)
	}
	for i, line := range req.Waste {
		w, err := wasteFrom(line)
		if err != nil {
			return nil, apperr.Validation("waste[%d]: %s", i, apperr.Message(err))
		}
		update.Waste = append(update.Waste, w)
	}

	j, previous, changes, err := s.repo.ApplyStatusUpdate(ctx, update)
	if err != nil {
		return nil, err
	}

	if previous != j.Status {
		var completion *mail.Message
		if j.Status == StatusCompleted && j.CustomerEmail != nil {
			msg := notification.JobCompletedEmail(*j.CustomerEmail, j.CustomerName, j.TicketID,
				j.Description, notification.FormatAmount(s.currency, j.TotalCost), s.businessName)
			completion = &msg
		}
		s.events.Publish(ctx, notification.StatusChanged(j.ID, j.TicketID, string(previous), string(j.Status), actor.Name, completion))
	}
	for _, c := range changes {
		if c.Status() == inventory.StockCritical {
			s.events.Publish(ctx, inventory.LowStockAlert(c))
		}
	}
	return j, nil
}

func (s *service) UpdateJob(ctx context.Context, actor authctx.Identity, id string, req UpdateJobRequest) (*Job, error) {
	if req.TotalCost != nil && !req.TotalCost.IsPositive() {
		return nil, apperr.Validation("total_cost must be greater than zero")
	}
	if req.ModeOfPayment != nil && !req.ModeOfPayment.Valid() {
		return nil, apperr.Validation("invalid mode_of_payment")
	}
	if req.Description != nil && strings.TrimSpace(*req.Description) == "" {
		return nil, apperr.Validation("description cannot be empty")
	}
	var deadline *time.Time
	if req.DeliveryDeadline != nil {
		d, err := parseDate(*req.DeliveryDeadline, "delivery_deadline")
		if err != nil {
			return nil, err
		}
		deadline = d
	}

	current, err := s.load(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	return s.repo.UpdateJob(ctx, current.ID, func(j *Job) error {
		if req.Description != nil {
			j.Description = strings.TrimSpace(*req.Description)
		}
		if req.TotalCost != nil {
			j.TotalCost = *req.TotalCost
		}
		if req.DeliveryDeadline != nil {
			j.DeliveryDeadline = deadline
		}
		if req.ModeOfPayment != nil {
			mode := *req.ModeOfPayment
			j.ModeOfPayment = &mode
		}
		return nil
	})
}

func (s *service) RecordWaste(ctx context.Context, req RecordWasteRequest) (*WasteExpense, error) {
	w, err := wasteFrom(req.WasteLine)
	if err != nil {
		return nil, err
	}
	w.JobID = req.JobID
	if err := s.repo.RecordWaste(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

// load fetches a job the actor is allowed to see.
func (s *service) load(ctx context.Context, actor authctx.Identity, id string) (*Job, error) {
	jid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid job id")
	}
	j, err := s.repo.GetJob(ctx, jid)
	if err != nil {
		return nil, err
	}
	if !actor.IsAdmin() && (j.WorkerID == nil || *j.WorkerID != actor.UserID) {
		return nil, apperr.Forbidden("Access denied")
	}
	return j, nil
}

func materialFrom(line MaterialLine) (*MaterialUsed, error) {
	name := strings.TrimSpace(line.MaterialName)
	switch {
	case name == "":
		return nil, apperr.Validation("material_name is required")
	case line.Quantity <= 0:
		return nil, apperr.Validation("quantity must be greater than zero")
	case line.UnitCost.IsNegative():
		return nil, apperr.Validation("unit_cost cannot be negative")
	}
	return &MaterialUsed{
		ID:              uuid.New(),
		MaterialID:      line.MaterialID,
		MaterialName:    name,
		PaperSize:       optional(line.PaperSize),
		PaperType:       optional(line.PaperType),
		Grammage:        line.Grammage,
		Quantity:        line.Quantity,
		UnitCost:        line.UnitCost,
		TotalCost:       line.UnitCost.Mul(decimal.NewFromInt(int64(line.Quantity))),
		UpdateInventory: line.UpdateInventory,
	}, nil
}

func wasteFrom(line WasteLine) (*WasteExpense, error) {
	desc := strings.TrimSpace(line.Description)
	switch {
	case !line.Type.Valid():
		return nil, apperr.Validation("invalid waste type")
	case desc == "":
		return nil, apperr.Validation("description is required")
	case line.TotalCost.IsNegative():
		return nil, apperr.Validation("total_cost cannot be negative")
	}
	return &WasteExpense{
		ID:          uuid.New(),
		Type:        line.Type,
		Description: desc,
		Quantity:    line.Quantity,
		UnitCost:    line.UnitCost,
		TotalCost:   line.TotalCost,
		WasteReason: optional(line.WasteReason),
	}, nil
}

func parseDate(s, field string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return nil, apperr.Validation("%s must be YYYY-MM-DD", field)
	}
	return &d, nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
