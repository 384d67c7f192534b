package inventory

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/modules/notification"
)

// Service manages the stock catalogue and raises low-stock alerts.
type Service interface {
	ListItems(ctx context.Context, f ListFilter) (*ListResult, error)
	GetItem(ctx context.Context, id string) (*Item, error)
	CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error)
	UpdateItem(ctx context.Context, id string, req UpdateItemRequest) (*Item, error)
	DeleteItem(ctx context.Context, id string) error
	LowStock(ctx context.Context) ([]*Item, error)
	Categories(ctx context.Context) ([]string, error)
}

// CreateItemRequest holds data for a new inventory item.
type CreateItemRequest struct {
	MaterialName    string              `json:"material_name"`
	Category        string              `json:"category"`
	PaperSize       string              `json:"paper_size"`
	PaperType       string              `json:"paper_type"`
	Grammage        *int                `json:"grammage"`
	Supplier        string              `json:"supplier"`
	CurrentStock    decimal.Decimal     `json:"current_stock"`
	UnitOfMeasure   string              `json:"unit_of_measure"`
	UnitCost        decimal.Decimal     `json:"unit_cost"`
	SellingPrice    decimal.NullDecimal `json:"selling_price"`
	Threshold       decimal.Decimal     `json:"threshold"`
	ReorderQuantity decimal.NullDecimal `json:"reorder_quantity"`
}

// UpdateItemRequest changes only the fields that are set.
type UpdateItemRequest struct {
	MaterialName    *string              `json:"material_name"`
	Category        *string              `json:"category"`
	PaperSize       *string              `json:"paper_size"`
	PaperType       *string              `json:"paper_type"`
	Grammage        *int                 `json:"grammage"`
	Supplier        *string              `json:"supplier"`
	CurrentStock    *decimal.Decimal     `json:"current_stock"`
	UnitOfMeasure   *string              `json:"unit_of_measure"`
	UnitCost        *decimal.Decimal     `json:"unit_cost"`
	SellingPrice    *decimal.NullDecimal `json:"selling_price"`
	Threshold       *decimal.Decimal     `json:"threshold"`
	ReorderQuantity *decimal.NullDecimal `json:"reorder_quantity"`
	IsActive        *bool                `json:"is_active"`
}

type service struct {
	repo   Repository
	events notification.Publisher
}

func NewService(repo Repository, events notification.Publisher) Service {
	return &service{repo: repo, events: events}
}

func (s *service) ListItems(ctx context.Context, f ListFilter) (*ListResult, error) {
	items, total, err := s.repo.ListItems(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ListResult{Inventory: items, Pagination: f.Result(total)}, nil
}

func (s *service) GetItem(ctx context.Context, id string) (*Item, error) {
	iid, err := uuid.Parse(id)
	if err != nil {
		return nil, apperr.Validation("invalid inventory item id")
	}
	return s.repo.GetItem(ctx, iid)
}

func (s *service) CreateItem(ctx context.Context, req CreateItemRequest) (*Item, error) {
	item := &Item{
		ID:              uuid.New(),
		MaterialName:    strings.TrimSpace(req.MaterialName),
		Category:        strings.TrimSpace(req.Category),
		PaperSize:       optional(req.PaperSize),
		PaperType:       optional(req.PaperType),
		Grammage:        req.Grammage,
		Supplier:        optional(req.Supplier),
		CurrentStock:    req.CurrentStock,
		UnitOfMeasure:   strings.TrimSpace(req.UnitOfMeasure),
		UnitCost:        req.UnitCost,
		SellingPrice:    req.SellingPrice,
		Threshold:       req.Threshold,
		ReorderQuantity: req.ReorderQuantity,
		IsActive:        true,
	}
	if err := validate(item); err != nil {
		return nil, err
	}
	if err := s.repo.CreateItem(ctx, item); err != nil {
		return nil, err
	}
	item.Evaluate()
	return item, nil
}

// UpdateItem applies the changes and raises a low-stock alert whenever the
// result sits at or below threshold, even if it already did before.
func (s *service) UpdateItem(ctx context.Context, id string, req UpdateItemRequest) (*Item, error) {
	item, err := s.GetItem(ctx, id)
	if err != nil {
		return nil, err
	}
	apply(item, req)
	if err := validate(item); err != nil {
		return nil, err
	}
	if err := s.repo.UpdateItem(ctx, item); err != nil {
		return nil, err
	}
	item.Evaluate()

	if item.IsActive && item.AtOrBelowThreshold() {
		s.events.Publish(ctx, LowStockAlert(StockChange{
			ItemID:        item.ID,
			MaterialName:  item.MaterialName,
			CurrentStock:  item.CurrentStock,
			Threshold:     item.Threshold,
			UnitOfMeasure: item.UnitOfMeasure,
		}))
	}
	return item, nil
}

func (s *service) DeleteItem(ctx context.Context, id string) error {
	iid, err := uuid.Parse(id)
	if err != nil {
		return apperr.Validation("invalid inventory item id")
	}
	return s.repo.DeactivateItem(ctx, iid)
}

func (s *service) LowStock(ctx context.Context) ([]*Item, error) {
	return s.repo.ListLowStock(ctx)
}

func (s *service) Categories(ctx context.Context) ([]string, error) {
	return s.repo.ListCategories(ctx)
}

// LowStockAlert builds the notification event for an item at or below threshold.
func LowStockAlert(c StockChange) notification.Event {
	return notification.LowStock(notification.StockDetails{
		ItemID:        c.ItemID,
		MaterialName:  c.MaterialName,
		CurrentStock:  c.CurrentStock,
		Threshold:     c.Threshold,
		UnitOfMeasure: c.UnitOfMeasure,
		Level:         string(c.Status()),
	})
}

// ── helpers ──────────────────────────────────────────────────────────────────

func apply(item *Item, req UpdateItemRequest) {
	if req.MaterialName != nil {
		item.MaterialName = strings.TrimSpace(*req.MaterialName)
	}
	if req.Category != nil {
		item.Category = strings.TrimSpace(*req.Category)
	}
	if req.PaperSize != nil {
		item.PaperSize = optional(*req.PaperSize)
	}
	if req.PaperType != nil {
		item.PaperType = optional(*req.PaperType)
	}
	if req.Grammage != nil {
		item.Grammage = req.Grammage
	}
	if req.Supplier != nil {
		item.Supplier = optional(*req.Supplier)
	}
	if req.CurrentStock != nil {
		item.CurrentStock = *req.CurrentStock
	}
	if req.UnitOfMeasure != nil {
		item.UnitOfMeasure = strings.TrimSpace(*req.UnitOfMeasure)
	}
	if req.UnitCost != nil {
		item.UnitCost = *req.UnitCost
	}
	if req.SellingPrice != nil {
		item.SellingPrice = *req.SellingPrice
	}
	if req.Threshold != nil {
		item.Threshold = *req.Threshold
	}
	if req.ReorderQuantity != nil {
		item.ReorderQuantity = *req.ReorderQuantity
	}
	if req.IsActive != nil {
		item.IsActive = *req.IsActive
	}
}

func validate(item *Item) error {
	switch {
	case item.MaterialName == "":
		return apperr.Validation("material_name is required")
	case item.Category == "":
		return apperr.Validation("category is required")
	case item.UnitOfMeasure == "":
		return apperr.Validation("unit_of_measure is required")
	case item.UnitCost.IsNegative():
		return apperr.Validation("unit_cost cannot be negative")
	case item.Threshold.IsNegative():
		return apperr.Validation("threshold cannot be negative")
	}
	return nil
}

func optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}
