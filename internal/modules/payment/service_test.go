package payment_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/modules/job"
	"github.com/georgemunganga/printpress-backend/internal/modules/notification"
	"github.com/georgemunganga/printpress-backend/internal/modules/payment"
	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
	"github.com/georgemunganga/printpress-backend/internal/store/memory"
)

var cashier = authctx.Identity{UserID: uuid.New(), Name: "Ngozi", Role: authctx.RoleWorker}

type fixture struct {
	store  *memory.Store
	jobs   job.Service
	svc    payment.Service
	events *counter
}

type counter struct {
	mu sync.Mutex
	n  int
}

func (c *counter) Publish(context.Context, notification.Event) {
	c.mu.Lock()
	c.n++
	c.mu.Unlock()
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.New()
	events := &counter{}
	return &fixture{
		store:  store,
		jobs:   job.NewService(store, events, "PrintPress", "₦"),
		svc:    payment.NewService(store, nil, events, payment.Business{Name: "PrintPress", Phone: "0700"}, "₦"),
		events: events,
	}
}

func (f *fixture) newJob(t *testing.T, total int64) *job.Job {
	t.Helper()
	j, err := f.jobs.CreateJob(context.Background(), cashier, job.CreateJobRequest{
		CustomerName: "Emeka", CustomerPhone: uuid.NewString()[:11], Description: "banner", TotalCost: decimal.NewFromInt(total),
	})
	if err != nil {
		t.Fatalf("CreateJob() error = %v", err)
	}
	return j
}

func (f *fixture) pay(t *testing.T, jobID uuid.UUID, amount int64) *payment.RecordResult {
	t.Helper()
	res, err := f.svc.RecordPayment(context.Background(), cashier, payment.RecordPaymentRequest{
		JobID: jobID.String(), Amount: decimal.NewFromInt(amount),
		PaymentType: payment.TypeInstallment, PaymentMethod: job.ModeCash,
	})
	if err != nil {
		t.Fatalf("RecordPayment(%d) error = %v", amount, err)
	}
	return res
}

func TestRecordPaymentProgression(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	j := f.newJob(t, 10000)

	res := f.pay(t, j.ID, 4000)
	if !res.JobUpdate.Balance.Equal(decimal.NewFromInt(6000)) || res.JobUpdate.PaymentStatus != job.PaymentPartiallyPaid {
		t.Errorf("after 4000: balance %s status %s, want 6000 %s", res.JobUpdate.Balance, res.JobUpdate.PaymentStatus, job.PaymentPartiallyPaid)
	}
	if res.Message != "Payment of ₦4,000 recorded successfully" {
		t.Errorf("Message = %q", res.Message)
	}

	res = f.pay(t, j.ID, 6000)
	if !res.JobUpdate.Balance.IsZero() || res.JobUpdate.PaymentStatus != job.PaymentFullyPaid {
		t.Errorf("after 6000: balance %s status %s, want 0 %s", res.JobUpdate.Balance, res.JobUpdate.PaymentStatus, job.PaymentFullyPaid)
	}

	// The customer's spend counts the job total and then each payment.
	c, err := f.store.GetCustomer(context.Background(), j.CustomerID)
	if err != nil {
		t.Fatal(err)
	}
	if want := decimal.NewFromInt(20000); !c.TotalAmountSpent.Equal(want) {
		t.Errorf("TotalAmountSpent = %s, want %s", c.TotalAmountSpent, want)
	}

	list, err := f.svc.ListByJob(context.Background(), j.ID.String())
	if err != nil || len(list) != 2 {
		t.Fatalf("ListByJob() = %d payments, %v; want 2", len(list), err)
	}
	if f.events.n != 3 {
		t.Errorf("events = %d, want 3", f.events.n)
	}
}

func TestRecordPaymentConcurrent(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	j := f.newJob(t, 10000)

	var wg sync.WaitGroup
	for _, amount := range []int64{3000, 7000} {
		wg.Add(1)
		go func(amount int64) {
			defer wg.Done()
			_, err := f.svc.RecordPayment(context.Background(), cashier, payment.RecordPaymentRequest{
				JobID: j.ID.String(), Amount: decimal.NewFromInt(amount),
				PaymentType: payment.TypeInstallment, PaymentMethod: job.ModeTransfer,
			})
			if err != nil {
				t.Errorf("RecordPayment(%d) error = %v", amount, err)
			}
		}(amount)
	}
	wg.Wait()

	got, err := f.store.GetJob(context.Background(), j.ID)
	if err != nil {
		t.Fatal(err)
	}
	if !got.AmountPaid.Equal(decimal.NewFromInt(10000)) || !got.Balance.IsZero() {
		t.Errorf("AmountPaid/Balance = %s/%s, want 10000/0", got.AmountPaid, got.Balance)
	}
	if got.PaymentStatus != job.PaymentFullyPaid {
		t.Errorf("PaymentStatus = %s, want %s", got.PaymentStatus, job.PaymentFullyPaid)
	}
}

func TestRecordPaymentOverpayment(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	j := f.newJob(t, 1000)

	res := f.pay(t, j.ID, 1500)
	if !res.JobUpdate.Balance.Equal(decimal.NewFromInt(-500)) || res.JobUpdate.PaymentStatus != job.PaymentFullyPaid {
		t.Errorf("balance %s status %s, want -500 %s", res.JobUpdate.Balance, res.JobUpdate.PaymentStatus, job.PaymentFullyPaid)
	}
}

func TestRecordPaymentValidation(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	j := f.newJob(t, 1000)
	ok := payment.RecordPaymentRequest{JobID: j.ID.String(), Amount: decimal.NewFromInt(10), PaymentType: payment.TypeDeposit, PaymentMethod: job.ModePOS}

	tests := map[string]func(r *payment.RecordPaymentRequest){
		"missing job": func(r *payment.RecordPaymentRequest) { r.JobID = "" },
		"bad job id":  func(r *payment.RecordPaymentRequest) { r.JobID = "job-1" },
		"zero amount": func(r *payment.RecordPaymentRequest) { r.Amount = decimal.Zero },
		"negative":    func(r *payment.RecordPaymentRequest) { r.Amount = decimal.NewFromInt(-5) },
		"bad type":    func(r *payment.RecordPaymentRequest) { r.PaymentType = "tip" },
		"bad method":  func(r *payment.RecordPaymentRequest) { r.PaymentMethod = "cheque" },
	}
	for name, mutate := range tests {
		req := ok
		mutate(&req)
		if _, err := f.svc.RecordPayment(context.Background(), cashier, req); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("%s: error = %v, want validation", name, err)
		}
	}

	req := ok
	req.JobID = uuid.NewString()
	if _, err := f.svc.RecordPayment(context.Background(), cashier, req); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown job: error = %v, want not found", err)
	}

	got, _ := f.store.GetJob(context.Background(), j.ID)
	if !got.AmountPaid.IsZero() {
		t.Errorf("AmountPaid = %s after rejected payments, want 0", got.AmountPaid)
	}
}

func TestGetReceipt(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	j := f.newJob(t, 10000)
	f.pay(t, j.ID, 4000)
	second := f.pay(t, j.ID, 1000)

	rc, err := f.svc.GetReceipt(context.Background(), second.Payment.ID.String())
	if err != nil {
		t.Fatalf("GetReceipt() error = %v", err)
	}
	if rc.Business.Name != "PrintPress" || rc.Customer.Name != "Emeka" || rc.Job.TicketID != j.TicketID {
		t.Errorf("receipt header = %+v / %+v / %+v", rc.Business, rc.Customer, rc.Job)
	}
	if !rc.Payment.Balance.Equal(decimal.NewFromInt(5000)) {
		t.Errorf("Balance = %s, want 5000", rc.Payment.Balance)
	}
	if len(rc.History) != 2 {
		t.Errorf("history = %d entries, want 2", len(rc.History))
	}

	if _, err := f.svc.GetReceipt(context.Background(), uuid.NewString()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown payment error = %v, want not found", err)
	}
}

func TestStatsWithoutSource(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	if _, err := f.svc.Stats(context.Background(), payment.PeriodMonthly); err == nil {
		t.Error("Stats() with no source error = nil, want error")
	}
}
