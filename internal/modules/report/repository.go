package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/modules/inventory"
	"github.com/georgemunganga/printpress-backend/internal/modules/payment"
)

// Repository runs the read-only aggregate queries. Ranges are [from, to).
type Repository interface {
	CompletedRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	CompletedMaterialCost(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	WasteCost(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	OperationalCost(ctx context.Context, from, to time.Time) (decimal.Decimal, error)
	ActiveWorkerPay(ctx context.Context) ([]PayRate, error)
	JobStats(ctx context.Context, from, to time.Time) (JobStats, error)
	TopMaterials(ctx context.Context, from, to time.Time, limit int) ([]TopMaterial, error)

	RevenueLines(ctx context.Context, from, to time.Time) ([]RevenueLine, error)
	ExpenseLines(ctx context.Context, from, to time.Time) ([]ExpenseLine, error)

	UsageTrends(ctx context.Context, trunc string, since time.Time) ([]*inventory.UsageTrend, error)
	WasteBreakdown(ctx context.Context, since time.Time) ([]*inventory.WasteBreakdown, error)
	StockReadings(ctx context.Context) ([]*inventory.StockReading, error)
	MaterialCosts(ctx context.Context, since time.Time) ([]*inventory.CostAnalysis, error)
	MaterialReturns(ctx context.Context, since time.Time) ([]*MaterialReturn, error)
	Consumption(ctx context.Context, since time.Time) ([]*inventory.StockProjection, error)

	RevenueTrends(ctx context.Context, trunc string, since time.Time) ([]RevenueTrend, error)
	CustomerTrends(ctx context.Context, trunc string, since time.Time) ([]CustomerTrend, error)
	EfficiencyTrends(ctx context.Context, trunc string, since time.Time) ([]EfficiencyTrend, error)

	PaymentPeriods(ctx context.Context, period payment.StatsPeriod, since time.Time, limit int) ([]payment.PeriodStat, error)
	PaymentMethods(ctx context.Context, since time.Time) ([]payment.MethodShare, error)

	ExportTable(ctx context.Context, t ExportType, from, to time.Time) (*Table, error)
}
