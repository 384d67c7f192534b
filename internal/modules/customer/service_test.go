package customer_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/modules/customer"
	"github.com/georgemunganga/printpress-backend/internal/modules/job"
	"github.com/georgemunganga/printpress-backend/internal/modules/notification"
	"github.com/georgemunganga/printpress-backend/internal/pagination"
	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
	"github.com/georgemunganga/printpress-backend/internal/store/memory"
)

var worker = authctx.Identity{UserID: uuid.New(), Name: "Wes", Role: authctx.RoleWorker}

func seed(t *testing.T) (customer.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	jobs := job.NewService(store, notification.PublisherFunc(func(context.Context, notification.Event) {}), "PrintPress", "₦")
	for _, tt := range []struct{ name, phone, email, total string }{
		{"Chidi Okafor", "0803", "chidi@example.com", "10000"},
		{"Chidi Okafor", "0803", "", "2500"},
		{"Ngozi Eze", "0805", "ngozi@example.com", "40000"},
	} {
		_, err := jobs.CreateJob(context.Background(), worker, job.CreateJobRequest{
			CustomerName: tt.name, CustomerPhone: tt.phone, CustomerEmail: tt.email,
			Description: "Banners", TotalCost: decimal.RequireFromString(tt.total),
		})
		if err != nil {
			t.Fatalf("CreateJob(%s) error = %v", tt.phone, err)
		}
	}
	return customer.NewService(store), store
}

func TestSearchAndDetail(t *testing.T) {
	t.Parallel()

	svc, _ := seed(t)
	ctx := context.Background()

	found, err := svc.SearchCustomers(ctx, " chidi ")
	if err != nil {
		t.Fatal(err)
	}
	if len(found) != 1 || found[0].TotalJobsCount != 2 {
		t.Fatalf("SearchCustomers(chidi) = %+v, want one customer with 2 jobs", found)
	}
	if !found[0].TotalAmountSpent.Equal(decimal.NewFromInt(12500)) {
		t.Errorf("TotalAmountSpent = %s, want 12500", found[0].TotalAmountSpent)
	}

	detail, err := svc.GetCustomer(ctx, found[0].ID.String())
	if err != nil {
		t.Fatal(err)
	}
	if len(detail.Jobs) != 2 {
		t.Errorf("jobs = %d, want 2", len(detail.Jobs))
	}

	if _, err := svc.SearchCustomers(ctx, "  "); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("blank search error = %v, want validation", err)
	}
	if _, err := svc.GetCustomer(ctx, uuid.NewString()); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("unknown customer error = %v, want not found", err)
	}

	res, err := svc.ListCustomers(ctx, customer.ListFilter{Params: pagination.New(1, 1, 20)})
	if err != nil {
		t.Fatal(err)
	}
	if res.Pagination.Total != 2 || len(res.Customers) != 1 {
		t.Errorf("ListCustomers() = %d of %d, want 1 of 2", len(res.Customers), res.Pagination.Total)
	}
}

func TestUpdateCustomer(t *testing.T) {
	t.Parallel()

	svc, _ := seed(t)
	ctx := context.Background()
	found, _ := svc.SearchCustomers(ctx, "ngozi")
	id := found[0].ID.String()

	c, err := svc.UpdateCustomer(ctx, id, customer.UpdateRequest{Name: "Ngozi E.", Phone: " 0806 ", Email: " NGOZI@Example.com "})
	if err != nil {
		t.Fatalf("UpdateCustomer() error = %v", err)
	}
	if c.Phone != "0806" || c.Email == nil || *c.Email != "ngozi@example.com" {
		t.Errorf("updated = %+v", c)
	}

	if _, err := svc.UpdateCustomer(ctx, id, customer.UpdateRequest{Name: "Ngozi", Phone: "0803"}); !errors.Is(err, apperr.ErrConflict) {
		t.Errorf("taken phone error = %v, want conflict", err)
	}
	if _, err := svc.UpdateCustomer(ctx, id, customer.UpdateRequest{Name: "Ngozi"}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("missing phone error = %v, want validation", err)
	}
}

func TestCustomerStats(t *testing.T) {
	t.Parallel()

	svc, _ := seed(t)
	st, err := svc.Stats(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if st.TotalCustomers != 2 || st.ActiveCustomers != 2 || st.RepeatCustomers != 0 {
		t.Errorf("counts = %d/%d/%d, want 2/2/0", st.TotalCustomers, st.ActiveCustomers, st.RepeatCustomers)
	}
	if !st.HighestSpending.Equal(decimal.NewFromInt(40000)) {
		t.Errorf("HighestSpending = %s, want 40000", st.HighestSpending)
	}
	if !st.AvgJobsPerCustomer.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("AvgJobsPerCustomer = %s, want 1.5", st.AvgJobsPerCustomer)
	}
	if len(st.TopCustomers) != 2 || st.TopCustomers[0].Name != "Ngozi Eze" {
		t.Errorf("TopCustomers = %+v", st.TopCustomers)
	}
}
