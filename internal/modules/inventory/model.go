package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/pagination"
)

// StockStatus is derived from current stock and threshold on every read.
type StockStatus string

const (
	StockCritical StockStatus = "CRITICAL"
	StockLow      StockStatus = "LOW"
	StockNormal   StockStatus = "NORMAL"
)

var lowFactor = decimal.NewFromFloat(1.5)

// EvaluateThreshold returns CRITICAL at or below threshold, LOW at or below
// 1.5x threshold, NORMAL otherwise.
func EvaluateThreshold(current, threshold decimal.Decimal) StockStatus {
	switch {
	case current.LessThanOrEqual(threshold):
		return StockCritical
	case current.LessThanOrEqual(threshold.Mul(lowFactor)):
		return StockLow
	default:
		return StockNormal
	}
}

// Item is a stocked material. Inactive items are soft-deleted.
type Item struct {
	ID              uuid.UUID           `json:"id"`
	MaterialName    string              `json:"material_name"`
	Category        string              `json:"category"`
	PaperSize       *string             `json:"paper_size,omitempty"`
	PaperType       *string             `json:"paper_type,omitempty"`
	Grammage        *int                `json:"grammage,omitempty"`
	Supplier        *string             `json:"supplier,omitempty"`
	CurrentStock    decimal.Decimal     `json:"current_stock"`
	UnitOfMeasure   string              `json:"unit_of_measure"`
	UnitCost        decimal.Decimal     `json:"unit_cost"`
	SellingPrice    decimal.NullDecimal `json:"selling_price"`
	Threshold       decimal.Decimal     `json:"threshold"`
	ReorderQuantity decimal.NullDecimal `json:"reorder_quantity"`
	IsActive        bool                `json:"is_active"`
	StockStatus     StockStatus         `json:"stock_status"`
	CreatedAt       time.Time           `json:"created_at"`
	UpdatedAt       time.Time           `json:"updated_at"`
}

// Evaluate refreshes StockStatus.
func (i *Item) Evaluate() { i.StockStatus = EvaluateThreshold(i.CurrentStock, i.Threshold) }

// AtOrBelowThreshold reports whether a low-stock alert is due.
func (i *Item) AtOrBelowThreshold() bool { return i.CurrentStock.LessThanOrEqual(i.Threshold) }

// StockChange is an item's level right after a consumption decrement.
type StockChange struct {
	ItemID        uuid.UUID       `json:"item_id"`
	MaterialName  string          `json:"material_name"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	Threshold     decimal.Decimal `json:"threshold"`
	UnitOfMeasure string          `json:"unit_of_measure"`
}

func (c StockChange) Status() StockStatus { return EvaluateThreshold(c.CurrentStock, c.Threshold) }

type ListFilter struct {
	Category string
	LowStock bool
	pagination.Params
}

type ListResult struct {
	Inventory  []*Item         `json:"inventory"`
	Pagination pagination.Page `json:"pagination"`
}
