package inventory_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/mail"
	"github.com/georgemunganga/printpress-backend/internal/modules/inventory"
	"github.com/georgemunganga/printpress-backend/internal/modules/notification"
	"github.com/georgemunganga/printpress-backend/internal/modules/realtime"
	"github.com/georgemunganga/printpress-backend/internal/modules/user"
	"github.com/georgemunganga/printpress-backend/internal/pagination"
	"github.com/georgemunganga/printpress-backend/internal/server/authctx"
	"github.com/georgemunganga/printpress-backend/internal/store/memory"
)

func newService() (inventory.Service, *[]notification.Event) {
	var events []notification.Event
	return inventory.NewService(memory.New(), notification.PublisherFunc(func(_ context.Context, evt notification.Event) {
		events = append(events, evt)
	})), &events
}

func paper(stock int64) inventory.CreateItemRequest {
	return inventory.CreateItemRequest{
		MaterialName: "A4 Paper", Category: "Paper", PaperSize: "A4",
		CurrentStock: decimal.NewFromInt(stock), UnitOfMeasure: "sheets",
		UnitCost: decimal.NewFromInt(25), Threshold: decimal.NewFromInt(50),
	}
}

func TestUpdateItemRaisesLowStock(t *testing.T) {
	t.Parallel()

	svc, events := newService()
	ctx := context.Background()
	item, err := svc.CreateItem(ctx, paper(500))
	if err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
	if item.StockStatus != inventory.StockNormal {
		t.Errorf("StockStatus = %s, want NORMAL", item.StockStatus)
	}

	low := decimal.NewFromInt(70)
	item, err = svc.UpdateItem(ctx, item.ID.String(), inventory.UpdateItemRequest{CurrentStock: &low})
	if err != nil {
		t.Fatal(err)
	}
	if item.StockStatus != inventory.StockLow || len(*events) != 0 {
		t.Errorf("at 70: status %s, events %d; want LOW, 0", item.StockStatus, len(*events))
	}

	// Every update at or below threshold alerts, even when already low.
	for _, n := range []int64{50, 20} {
		stock := decimal.NewFromInt(n)
		item, err = svc.UpdateItem(ctx, item.ID.String(), inventory.UpdateItemRequest{CurrentStock: &stock})
		if err != nil {
			t.Fatal(err)
		}
	}
	if item.StockStatus != inventory.StockCritical {
		t.Errorf("StockStatus = %s, want CRITICAL", item.StockStatus)
	}
	if len(*events) != 2 {
		t.Fatalf("events = %d, want 2", len(*events))
	}
	if got := (*events)[1].Notification.Type; got != notification.TypeLowStock {
		t.Errorf("event type = %s, want low_stock", got)
	}

	lows, _ := svc.LowStock(ctx)
	if len(lows) != 1 || lows[0].ID != item.ID {
		t.Errorf("LowStock() = %d items, want the updated item", len(lows))
	}
}

func TestDeleteItemDeactivates(t *testing.T) {
	t.Parallel()

	svc, events := newService()
	ctx := context.Background()
	item, err := svc.CreateItem(ctx, paper(10))
	if err != nil {
		t.Fatal(err)
	}
	if err := svc.DeleteItem(ctx, item.ID.String()); err != nil {
		t.Fatalf("DeleteItem() error = %v", err)
	}

	got, err := svc.GetItem(ctx, item.ID.String())
	if err != nil {
		t.Fatalf("GetItem() error = %v", err)
	}
	if got.IsActive {
		t.Error("item still active after delete")
	}
	lows, _ := svc.LowStock(ctx)
	if len(lows) != 0 {
		t.Errorf("LowStock() = %d items, want inactive item excluded", len(lows))
	}
	cats, _ := svc.Categories(ctx)
	if len(cats) != 0 {
		t.Errorf("Categories() = %v, want none", cats)
	}

	// Inactive items never alert.
	zero := decimal.Zero
	if _, err := svc.UpdateItem(ctx, item.ID.String(), inventory.UpdateItemRequest{CurrentStock: &zero}); err != nil {
		t.Fatal(err)
	}
	if len(*events) != 0 {
		t.Errorf("events = %d, want 0", len(*events))
	}
}

func TestItemValidation(t *testing.T) {
	t.Parallel()

	svc, _ := newService()
	ctx := context.Background()

	noName := paper(1)
	noName.MaterialName = " "
	negative := paper(1)
	negative.UnitCost = decimal.NewFromInt(-1)
	noUnit := paper(1)
	noUnit.UnitOfMeasure = ""

	for name, req := range map[string]inventory.CreateItemRequest{
		"no name": noName, "negative cost": negative, "no unit": noUnit,
	} {
		if _, err := svc.CreateItem(ctx, req); !errors.Is(err, apperr.ErrValidation) {
			t.Errorf("%s: error = %v, want validation", name, err)
		}
	}
	if _, err := svc.GetItem(ctx, "nope"); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("GetItem(bad id) error = %v, want validation", err)
	}

	res, err := svc.ListItems(ctx, inventory.ListFilter{Params: pagination.New(1, 20, 20)})
	if err != nil || res.Pagination.Total != 0 {
		t.Errorf("ListItems() = %+v, %v; want empty", res, err)
	}
}

type silentHub struct{}

func (silentHub) BroadcastToAdmins(realtime.Message) int { return 0 }

func TestLowStockRowsSurviveFullQueue(t *testing.T) {
	t.Parallel()

	store := memory.New()
	ctx := context.Background()
	var admins []uuid.UUID
	for _, email := range []string{"ada@printpress.com", "bola@printpress.com"} {
		u := &user.User{ID: uuid.New(), Name: email, Email: email, Role: authctx.RoleAdmin, IsActive: true}
		if err := store.CreateUser(ctx, u); err != nil {
			t.Fatalf("CreateUser() error = %v", err)
		}
		admins = append(admins, u.ID)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dispatcher := notification.NewDispatcher(store, silentHub{}, mail.NewLogMailer(logger), logger)
	// Never started, so the queue is full after one event.
	outbox := notification.NewOutbox(dispatcher, logger, notification.WithBuffer(1))
	svc := inventory.NewService(store, notification.NewRecorder(dispatcher, outbox))

	item, err := svc.CreateItem(ctx, paper(500))
	if err != nil {
		t.Fatalf("CreateItem() error = %v", err)
	}
	const updates = 20
	for i := 0; i < updates; i++ {
		stock := decimal.NewFromInt(int64(40 - i))
		if _, err := svc.UpdateItem(ctx, item.ID.String(), inventory.UpdateItemRequest{CurrentStock: &stock}); err != nil {
			t.Fatalf("UpdateItem() error = %v", err)
		}
	}

	for _, id := range admins {
		if n, _ := store.UnreadCount(ctx, id); n != updates {
			t.Errorf("admin %s unread = %d, want %d", id, n, updates)
		}
	}
}
