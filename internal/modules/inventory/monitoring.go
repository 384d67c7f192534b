package inventory

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Monitor serves the material monitoring views. The reporting module
// implements it.
type Monitor interface {
	UsageTrends(ctx context.Context, period string, months int) ([]*UsageTrend, error)
	WasteAnalysis(ctx context.Context, months int) ([]*WasteBreakdown, error)
	StockLevels(ctx context.Context) ([]*StockReading, error)
	CostAnalysis(ctx context.Context, months int) ([]*CostAnalysis, error)
	StockProjections(ctx context.Context, days int) ([]*StockProjection, error)
}

type UsageTrend struct {
	Period          time.Time       `json:"period"`
	MaterialName    string          `json:"material_name"`
	TotalQuantity   int64           `json:"total_quantity"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	AverageUnitCost decimal.Decimal `json:"average_unit_cost"`
}

type WasteBreakdown struct {
	Type              string          `json:"type"`
	WasteReason       string          `json:"waste_reason"`
	OccurrenceCount   int             `json:"occurrence_count"`
	TotalCost         decimal.Decimal `json:"total_cost"`
	AverageCost       decimal.Decimal `json:"average_cost"`
	PercentageOfTotal decimal.Decimal `json:"percentage_of_total"`
}

type StockReading struct {
	ID              uuid.UUID       `json:"id"`
	MaterialName    string          `json:"material_name"`
	Category        string          `json:"category"`
	CurrentStock    decimal.Decimal `json:"current_stock"`
	Threshold       decimal.Decimal `json:"threshold"`
	UnitOfMeasure   string          `json:"unit_of_measure"`
	UnitCost        decimal.Decimal `json:"unit_cost"`
	StockValue      decimal.Decimal `json:"stock_value"`
	StockPercentage decimal.Decimal `json:"stock_percentage"`
	StockStatus     StockStatus     `json:"stock_status"`
}

type CostAnalysis struct {
	MaterialName    string          `json:"material_name"`
	JobsCount       int             `json:"jobs_count"`
	TotalQuantity   int64           `json:"total_quantity"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	AverageUnitCost decimal.Decimal `json:"avg_unit_cost"`
	MaxUnitCost     decimal.Decimal `json:"max_unit_cost"`
	MinUnitCost     decimal.Decimal `json:"min_unit_cost"`
}

// ProjectionHealth grades stock left after recent consumption.
type ProjectionHealth string

const (
	HealthNeedsReorder ProjectionHealth = "NEEDS_REORDER"
	HealthMonitor      ProjectionHealth = "MONITOR"
	HealthHealthy      ProjectionHealth = "HEALTHY"
)

type StockProjection struct {
	MaterialName     string           `json:"material_name"`
	CurrentInventory decimal.Decimal  `json:"current_inventory"`
	MaterialsUsed    decimal.Decimal  `json:"materials_used"`
	Threshold        decimal.Decimal  `json:"threshold"`
	ProjectedStock   decimal.Decimal  `json:"projected_stock"`
	StockHealth      ProjectionHealth `json:"stock_health"`
}

// EvaluateProjection uses the same bands as EvaluateThreshold.
func EvaluateProjection(projected, threshold decimal.Decimal) ProjectionHealth {
	switch EvaluateThreshold(projected, threshold) {
	case StockCritical:
		return HealthNeedsReorder
	case StockLow:
		return HealthMonitor
	default:
		return HealthHealthy
	}
}

// StockPercentage is current/threshold as a percentage, zero when threshold is zero.
func StockPercentage(current, threshold decimal.Decimal) decimal.Decimal {
	if threshold.IsZero() {
		return decimal.Zero
	}
	return current.Div(threshold).Mul(decimal.NewFromInt(100)).Round(2)
}
