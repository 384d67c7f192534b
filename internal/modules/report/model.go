package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/modules/inventory"
)

// laborHoursPerMonth converts an hourly rate into a monthly labour estimate.
const laborHoursPerMonth = 160

type Period struct {
	Month     int    `json:"month"`
	Year      int    `json:"year"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
	MonthName string `json:"month_name"`
}

// PayRate is one active worker's pay. Hourly wins when both are set.
type PayRate struct {
	HourlyRate    decimal.NullDecimal
	MonthlySalary decimal.NullDecimal
}

// MonthTotals are the raw sums a monthly summary is derived from.
type MonthTotals struct {
	Revenue     decimal.Decimal
	Materials   decimal.Decimal
	Waste       decimal.Decimal
	Operational decimal.Decimal
	Labor       decimal.Decimal
}

type Revenue struct {
	TotalRevenue       decimal.Decimal `json:"total_revenue"`
	TotalMaterialCosts decimal.Decimal `json:"total_material_costs"`
	GrossProfit        decimal.Decimal `json:"gross_profit"`
	GrossProfitMargin  decimal.Decimal `json:"gross_profit_margin"`
}

type Expenses struct {
	MaterialCosts    decimal.Decimal `json:"material_costs"`
	WasteCosts       decimal.Decimal `json:"waste_costs"`
	OperationalCosts decimal.Decimal `json:"operational_costs"`
	LaborCosts       decimal.Decimal `json:"labor_costs"`
	TotalExpenses    decimal.Decimal `json:"total_expenses"`
}

type Profit struct {
	NetProfit    decimal.Decimal `json:"net_profit"`
	ProfitMargin decimal.Decimal `json:"profit_margin"`
	IsProfitable bool            `json:"is_profitable"`
}

type JobStats struct {
	TotalJobs       int             `json:"total_jobs"`
	CompletedJobs   int             `json:"completed_jobs"`
	InProgressJobs  int             `json:"in_progress_jobs"`
	FullyPaidJobs   int             `json:"fully_paid_jobs"`
	AverageJobValue decimal.Decimal `json:"average_job_value"`
	HighestJobValue decimal.Decimal `json:"highest_job_value"`
}

type TopMaterial struct {
	MaterialName  string          `json:"material_name"`
	TotalQuantity int64           `json:"total_quantity"`
	TotalCost     decimal.Decimal `json:"total_cost"`
	JobsCount     int             `json:"jobs_count"`
}

type Efficiency struct {
	MaterialEfficiency decimal.Decimal `json:"material_efficiency"`
	WastePercentage    decimal.Decimal `json:"waste_percentage"`
}

type MonthlySummary struct {
	Period       Period        `json:"period"`
	Revenue      Revenue       `json:"revenue"`
	Expenses     Expenses      `json:"expenses"`
	Profit       Profit        `json:"profit"`
	JobStats     JobStats      `json:"job_stats"`
	TopMaterials []TopMaterial `json:"top_materials"`
	Efficiency   Efficiency    `json:"efficiency_metrics"`
}

type RevenueLine struct {
	TicketID      string          `json:"ticket_id"`
	Description   string          `json:"description"`
	Revenue       decimal.Decimal `json:"revenue"`
	CustomerName  string          `json:"customer_name"`
	DateRequested time.Time       `json:"date_requested"`
	Status        string          `json:"status"`
}

// ExpenseLine is a material, waste or operational cost in a P&L statement.
type ExpenseLine struct {
	Category    string          `json:"category"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
}

type ProfitLossSummary struct {
	TotalRevenue  decimal.Decimal `json:"total_revenue"`
	TotalExpenses decimal.Decimal `json:"total_expenses"`
	NetProfit     decimal.Decimal `json:"net_profit"`
	ProfitMargin  decimal.Decimal `json:"profit_margin"`
}

type ProfitLoss struct {
	Period           map[string]string `json:"period"`
	Summary          ProfitLossSummary `json:"summary"`
	RevenueBreakdown []RevenueLine     `json:"revenue_breakdown"`
	ExpenseBreakdown []ExpenseLine     `json:"expense_breakdown"`
}

// MaterialReturn is what completed jobs earned over the material they used.
type MaterialReturn struct {
	MaterialName     string          `json:"material_name"`
	JobsCount        int             `json:"jobs_count"`
	TotalQuantity    int64           `json:"total_quantity"`
	TotalCost        decimal.Decimal `json:"total_cost"`
	AverageUnitCost  decimal.Decimal `json:"avg_unit_cost"`
	GeneratedProfit  decimal.Decimal `json:"generated_profit"`
	ReturnOnMaterial decimal.Decimal `json:"return_on_material"`
}

type DashboardSummary struct {
	TotalMaterialsTracked int             `json:"total_materials_tracked"`
	CriticalStockItems    int             `json:"critical_stock_items"`
	TotalWasteCost        decimal.Decimal `json:"total_waste_cost"`
	AverageMaterialReturn decimal.Decimal `json:"average_material_return"`
}

type Dashboard struct {
	MonitoringPeriod string                      `json:"monitoring_period"`
	UsageTrends      []*inventory.UsageTrend     `json:"material_usage_trends"`
	WasteAnalysis    []*inventory.WasteBreakdown `json:"waste_analysis"`
	StockLevels      []*inventory.StockReading   `json:"stock_levels"`
	CostEfficiency   []*MaterialReturn           `json:"cost_efficiency"`
	Summary          DashboardSummary            `json:"summary"`
}

type RevenueTrend struct {
	Period           time.Time       `json:"period"`
	JobCount         int             `json:"job_count"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	CollectedRevenue decimal.Decimal `json:"collected_revenue"`
	AverageJobValue  decimal.Decimal `json:"average_job_value"`
}

type CustomerTrend struct {
	Period          time.Time `json:"period"`
	NewCustomers    int       `json:"new_customers"`
	RepeatCustomers int       `json:"repeat_customers"`
}

type EfficiencyTrend struct {
	Period             time.Time       `json:"period"`
	TotalJobs          int             `json:"total_jobs"`
	CompletedJobs      int             `json:"completed_jobs"`
	AvgCompletionHours decimal.Decimal `json:"avg_completion_hours"`
	CompletionRate     decimal.Decimal `json:"completion_rate"`
}

type Indicators struct {
	TotalPeriods       int             `json:"total_periods"`
	AverageRevenue     decimal.Decimal `json:"average_revenue"`
	CustomerGrowthRate decimal.Decimal `json:"customer_growth_rate"`
}

type Performance struct {
	Period         string            `json:"period"`
	RevenueTrends  []RevenueTrend    `json:"revenue_trends"`
	CustomerTrends []CustomerTrend   `json:"customer_trends"`
	Efficiency     []EfficiencyTrend `json:"efficiency_metrics"`
	Indicators     Indicators        `json:"performance_indicators"`
}

// ExportType names a tabular export.
type ExportType string

const (
	ExportFinancialSummary ExportType = "financial_summary"
	ExportMaterialUsage    ExportType = "material_usage"
	ExportExpenses         ExportType = "expenses"
)

func (t ExportType) Valid() bool {
	return t == ExportFinancialSummary || t == ExportMaterialUsage || t == ExportExpenses
}

type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// Table is a rendered row set ready for encoding.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// Export is an encoded file.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}
