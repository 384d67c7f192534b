package job_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/modules/customer"
	"github.com/georgemunganga/printpress-backend/internal/modules/inventory"
	"github.com/georgemunganga/printpress-backend/internal/modules/job"
	"github.com/georgemunganga/printpress-backend/internal/modules/notification"
	"github.com/georgemunganga/printpress-backend/internal/pagination"
	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
	"github.com/georgemunganga/printpress-backend/internal/store/memory"
)

type recorder struct {
	mu     sync.Mutex
	events []notification.Event
}

func (r *recorder) Publish(_ context.Context, evt notification.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, evt)
}

func (r *recorder) types() []notification.Type {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []notification.Type
	for _, e := range r.events {
		if e.Notification != nil {
			out = append(out, e.Notification.Type)
		}
	}
	return out
}

var (
	paramsAll = pagination.New(1, 100, 20)

	admin  = authctx.Identity{UserID: uuid.New(), Name: "Ada", Role: authctx.RoleAdmin}
	worker = authctx.Identity{UserID: uuid.New(), Name: "Wes", Role: authctx.RoleWorker}
)

func newService(t *testing.T) (job.Service, *memory.Store, *recorder) {
	t.Helper()
	store := memory.New()
	rec := &recorder{}
	return job.NewService(store, rec, "PrintPress", "₦"), store, rec
}

func createJob(t *testing.T, svc job.Service, actor authctx.Identity, phone, total string) *job.Job {
	t.Helper()
	j, err := svc.CreateJob(context.Background(), actor, job.CreateJobRequest{
		CustomerName:  "Chidi",
		CustomerPhone: phone,
		CustomerEmail: "chidi." + strings.TrimSpace(phone) + "@example.com",
		Description:   "500 flyers",
		TotalCost:     decimal.RequireFromString(total),
	})
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	return j
}

func TestCreateJobInitialState(t *testing.T) {
	t.Parallel()

	svc, _, rec := newService(t)
	j := createJob(t, svc, worker, "08030000000", "10000")

	if j.Status != job.StatusNotStarted {
		t.Errorf("Status = %s, want %s", j.Status, job.StatusNotStarted)
	}
	if !j.Balance.Equal(j.TotalCost) || !j.AmountPaid.IsZero() {
		t.Errorf("Balance/AmountPaid = %s/%s, want 10000/0", j.Balance, j.AmountPaid)
	}
	if j.PaymentStatus != job.PaymentPending {
		t.Errorf("PaymentStatus = %s, want %s", j.PaymentStatus, job.PaymentPending)
	}
	if j.WorkerID == nil || *j.WorkerID != worker.UserID {
		t.Errorf("WorkerID = %v, want %s", j.WorkerID, worker.UserID)
	}
	if got := rec.types(); len(got) != 1 || got[0] != notification.TypeNewJob {
		t.Errorf("events = %v, want [%s]", got, notification.TypeNewJob)
	}
}

func TestCreateJobDedupesCustomerByPhone(t *testing.T) {
	t.Parallel()

	svc, store, _ := newService(t)
	first := createJob(t, svc, admin, "08030000000", "10000")
	second := createJob(t, svc, admin, "  08030000000 ", "2500")

	if first.CustomerID != second.CustomerID {
		t.Fatalf("customer ids differ: %s vs %s", first.CustomerID, second.CustomerID)
	}
	c, err := store.GetCustomer(context.Background(), first.CustomerID)
	if err != nil {
		t.Fatalf("GetCustomer() error = %v", err)
	}
	if c.TotalJobsCount != 2 {
		t.Errorf("TotalJobsCount = %d, want 2", c.TotalJobsCount)
	}
	if want := decimal.RequireFromString("12500"); !c.TotalAmountSpent.Equal(want) {
		t.Errorf("TotalAmountSpent = %s, want %s", c.TotalAmountSpent, want)
	}

	_, total, _ := store.ListCustomers(context.Background(), customer.ListFilter{})
	if total != 1 {
		t.Errorf("customers = %d, want 1", total)
	}
}

func TestCreateJobReturnsStoredCustomerContact(t *testing.T) {
	t.Parallel()

	svc, _, rec := newService(t)
	ctx := context.Background()
	first := createJob(t, svc, admin, "08030000000", "10000")

	second, err := svc.CreateJob(ctx, admin, job.CreateJobRequest{
		CustomerName:  "Emeka",
		CustomerPhone: "08030000000",
		CustomerEmail: "emeka@example.com",
		Description:   "business cards",
		TotalCost:     decimal.NewFromInt(3000),
	})
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	if second.CustomerName != "Chidi" {
		t.Errorf("CustomerName = %q, want %q", second.CustomerName, "Chidi")
	}
	if second.CustomerEmail == nil || *second.CustomerEmail != *first.CustomerEmail {
		t.Errorf("CustomerEmail = %v, want %s", second.CustomerEmail, *first.CustomerEmail)
	}

	rec.mu.Lock()
	msg := rec.events[len(rec.events)-1].Notification.Message
	rec.mu.Unlock()
	if !strings.Contains(msg, "for Chidi") {
		t.Errorf("notification message = %q, want the stored customer name", msg)
	}
}

func TestCreateJobValidation(t *testing.T) {
	t.Parallel()

	svc, _, rec := newService(t)
	tests := map[string]job.CreateJobRequest{
		"missing name":  {CustomerPhone: "1", Description: "x", TotalCost: decimal.NewFromInt(1)},
		"missing phone": {CustomerName: "a", Description: "x", TotalCost: decimal.NewFromInt(1)},
		"zero total":    {CustomerName: "a", CustomerPhone: "1", Description: "x"},
		"bad mode":      {CustomerName: "a", CustomerPhone: "1", Description: "x", TotalCost: decimal.NewFromInt(1), ModeOfPayment: "cheque"},
		"bad date":      {CustomerName: "a", CustomerPhone: "1", Description: "x", TotalCost: decimal.NewFromInt(1), DateRequested: "16/10/2026"},
	}
	for name, req := range tests {
		if _, err := svc.CreateJob(context.Background(), admin, req); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("%s: error = %v, want validation", name, err)
		}
	}
	if len(rec.types()) != 0 {
		t.Errorf("events = %v, want none", rec.types())
	}
}

func TestWorkerScoping(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	mine := createJob(t, svc, worker, "0801", "1000")
	other := createJob(t, svc, admin, "0802", "2000")

	if _, err := svc.GetJob(context.Background(), worker, other.ID.String()); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("GetJob(other) error = %v, want forbidden", err)
	}
	if _, err := svc.GetJob(context.Background(), worker, mine.ID.String()); err != nil {
		t.Errorf("GetJob(own) error = %v", err)
	}
	if _, err := svc.GetJob(context.Background(), admin, mine.ID.String()); err != nil {
		t.Errorf("GetJob(admin) error = %v", err)
	}

	res, err := svc.ListJobs(context.Background(), worker, job.ListFilter{Params: paramsAll})
	if err != nil {
		t.Fatalf("ListJobs() error = %v", err)
	}
	if len(res.Jobs) != 1 || res.Jobs[0].ID != mine.ID {
		t.Errorf("worker sees %d jobs, want only their own", len(res.Jobs))
	}

	res, _ = svc.ListJobs(context.Background(), admin, job.ListFilter{Params: paramsAll})
	if res.Pagination.Total != 2 {
		t.Errorf("admin total = %d, want 2", res.Pagination.Total)
	}

	if _, err := svc.GetJobByTicket(context.Background(), other.TicketID); err != nil {
		t.Errorf("GetJobByTicket() error = %v", err)
	}
}

func TestUpdateStatusConsumesStock(t *testing.T) {
	t.Parallel()

	svc, store, rec := newService(t)
	ctx := context.Background()
	item := &inventory.Item{
		ID: uuid.New(), MaterialName: "A4 Paper", Category: "paper", UnitOfMeasure: "sheets",
		CurrentStock: decimal.NewFromInt(100), Threshold: decimal.NewFromInt(50), IsActive: true,
	}
	if err := store.CreateItem(ctx, item); err != nil {
		t.Fatal(err)
	}
	j := createJob(t, svc, admin, "0803", "10000")

	updated, err := svc.UpdateStatus(ctx, admin, j.ID.String(), job.UpdateStatusRequest{
		Status: job.StatusInProgress,
		Materials: []job.MaterialLine{
			{MaterialName: "A4 Paper", Quantity: 60, UnitCost: decimal.NewFromInt(20), UpdateInventory: true},
			{MaterialName: "Lamination film", Quantity: 2, UnitCost: decimal.NewFromInt(150), UpdateInventory: true},
		},
		Waste: []job.WasteLine{
			{Type: job.WastePaper, Description: "misprint", TotalCost: decimal.NewFromInt(200)},
		},
	})
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}

	got, _ := store.GetItem(ctx, item.ID)
	if !got.CurrentStock.Equal(decimal.NewFromInt(40)) {
		t.Errorf("CurrentStock = %s, want 40", got.CurrentStock)
	}
	if want := decimal.NewFromInt(1500); !updated.MaterialsCost.Equal(want) {
		t.Errorf("MaterialsCost = %s, want %s", updated.MaterialsCost, want)
	}
	if want := decimal.NewFromInt(200); !updated.WasteCost.Equal(want) {
		t.Errorf("WasteCost = %s, want %s", updated.WasteCost, want)
	}
	if want := decimal.NewFromInt(8300); !updated.Profit.Equal(want) {
		t.Errorf("Profit = %s, want %s", updated.Profit, want)
	}

	types := rec.types()
	want := []notification.Type{notification.TypeNewJob, notification.TypeStatusChange, notification.TypeLowStock}
	if len(types) != len(want) {
		t.Fatalf("events = %v, want %v", types, want)
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("events[%d] = %s, want %s", i, types[i], want[i])
		}
	}

	detail, err := svc.GetJob(ctx, admin, j.ID.String())
	if err != nil {
		t.Fatal(err)
	}
	if len(detail.Materials) != 2 || len(detail.Waste) != 1 {
		t.Errorf("materials/waste = %d/%d, want 2/1", len(detail.Materials), len(detail.Waste))
	}
}

func TestUpdateStatusAllowsNegativeStock(t *testing.T) {
	t.Parallel()

	svc, store, _ := newService(t)
	ctx := context.Background()
	item := &inventory.Item{
		ID: uuid.New(), MaterialName: "Ink", Category: "ink", UnitOfMeasure: "ml",
		CurrentStock: decimal.NewFromInt(5), Threshold: decimal.NewFromInt(10), IsActive: true,
	}
	_ = store.CreateItem(ctx, item)
	j := createJob(t, svc, admin, "0804", "500")

	_, err := svc.UpdateStatus(ctx, admin, j.ID.String(), job.UpdateStatusRequest{
		Status:    job.StatusInProgress,
		Materials: []job.MaterialLine{{MaterialName: "Ink", Quantity: 8, UnitCost: decimal.NewFromInt(1), UpdateInventory: true}},
	})
	if err != nil {
		t.Fatalf("UpdateStatus() error = %v", err)
	}
	got, _ := store.GetItem(ctx, item.ID)
	if !got.CurrentStock.Equal(decimal.NewFromInt(-3)) {
		t.Errorf("CurrentStock = %s, want -3", got.CurrentStock)
	}
}

func TestUpdateStatusCompletionEmail(t *testing.T) {
	t.Parallel()

	svc, _, rec := newService(t)
	j := createJob(t, svc, admin, "0805", "4000")

	if _, err := svc.UpdateStatus(context.Background(), admin, j.ID.String(), job.UpdateStatusRequest{Status: job.StatusCompleted}); err != nil {
		t.Fatal(err)
	}
	rec.mu.Lock()
	last := rec.events[len(rec.events)-1]
	rec.mu.Unlock()
	if len(last.Emails) != 1 || last.Emails[0].To[0] != "chidi.0805@example.com" {
		t.Fatalf("completion emails = %+v, want one to the customer", last.Emails)
	}

	// Same status again: nothing to announce.
	if _, err := svc.UpdateStatus(context.Background(), admin, j.ID.String(), job.UpdateStatusRequest{Status: job.StatusCompleted}); err != nil {
		t.Fatal(err)
	}
	if n := len(rec.types()); n != 2 {
		t.Errorf("events = %d, want 2", n)
	}
}

func TestUpdateStatusRejectsBadInput(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	j := createJob(t, svc, admin, "0806", "4000")

	if _, err := svc.UpdateStatus(context.Background(), admin, j.ID.String(), job.UpdateStatusRequest{Status: "archived"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("unknown status error = %v, want validation", err)
	}
	_, err := svc.UpdateStatus(context.Background(), admin, j.ID.String(), job.UpdateStatusRequest{
		Status:    job.StatusInProgress,
		Materials: []job.MaterialLine{{MaterialName: "A4", Quantity: 0}},
	})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("zero quantity error = %v, want validation", err)
	}
	if _, err := svc.UpdateStatus(context.Background(), admin, uuid.NewString(), job.UpdateStatusRequest{Status: job.StatusCompleted}); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown job error = %v, want not found", err)
	}
}

func TestUpdateJobRecomputesBalance(t *testing.T) {
	t.Parallel()

	svc, _, _ := newService(t)
	j := createJob(t, svc, admin, "0807", "10000")

	total := decimal.NewFromInt(12000)
	updated, err := svc.UpdateJob(context.Background(), admin, j.ID.String(), job.UpdateJobRequest{TotalCost: &total})
	if err != nil {
		t.Fatalf("UpdateJob() error = %v", err)
	}
	if !updated.Balance.Equal(total) {
		t.Errorf("Balance = %s, want %s", updated.Balance, total)
	}
}

func TestRecordWaste(t *testing.T) {
	t.Parallel()

	svc, store, _ := newService(t)
	j := createJob(t, svc, admin, "0808", "10000")

	_, err := svc.RecordWaste(context.Background(), job.RecordWasteRequest{
		JobID:     &j.ID,
		WasteLine: job.WasteLine{Type: job.WasteMaterial, Description: "jammed roll", TotalCost: decimal.NewFromInt(750)},
	})
	if err != nil {
		t.Fatalf("RecordWaste() error = %v", err)
	}
	got, _ := store.GetJob(context.Background(), j.ID)
	if !got.WasteCost.Equal(decimal.NewFromInt(750)) || !got.Profit.Equal(decimal.NewFromInt(9250)) {
		t.Errorf("WasteCost/Profit = %s/%s, want 750/9250", got.WasteCost, got.Profit)
	}

	general := job.RecordWasteRequest{WasteLine: job.WasteLine{Type: job.WasteOther, Description: "spilled toner", TotalCost: decimal.NewFromInt(100)}}
	if _, err := svc.RecordWaste(context.Background(), general); err != nil {
		t.Errorf("general waste error = %v", err)
	}
}
