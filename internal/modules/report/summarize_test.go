package report

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/modules/inventory"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func TestMonthRange(t *testing.T) {
	t.Parallel()

	from, to := MonthRange(2026, time.December)
	if want := time.Date(2026, 12, 1, 0, 0, 0, 0, time.UTC); !from.Equal(want) {
		t.Errorf("from = %v, want %v", from, want)
	}
	if want := time.Date(2027, 1, 1, 0, 0, 0, 0, time.UTC); !to.Equal(want) {
		t.Errorf("to = %v, want %v", to, want)
	}
}

func TestLaborCost(t *testing.T) {
	t.Parallel()

	rates := []PayRate{
		{HourlyRate: decimal.NewNullDecimal(dec("500"))},
		{MonthlySalary: decimal.NewNullDecimal(dec("60000"))},
		{HourlyRate: decimal.NewNullDecimal(dec("100")), MonthlySalary: decimal.NewNullDecimal(dec("99999"))},
		{},
	}
	// 500×160 + 60000 + 100×160
	if got, want := LaborCost(rates), dec("156000"); !got.Equal(want) {
		t.Errorf("LaborCost() = %s, want %s", got, want)
	}
}

func TestSummarizeMonth(t *testing.T) {
	t.Parallel()

	rev, exp, profit, eff := summarizeMonth(MonthTotals{
		Revenue:     dec("200000"),
		Materials:   dec("50000"),
		Waste:       dec("5000"),
		Operational: dec("20000"),
		Labor:       dec("80000"),
	})

	if !rev.GrossProfit.Equal(dec("150000")) {
		t.Errorf("GrossProfit = %s, want 150000", rev.GrossProfit)
	}
	if !rev.GrossProfitMargin.Equal(dec("75")) {
		t.Errorf("GrossProfitMargin = %s, want 75", rev.GrossProfitMargin)
	}
	if !exp.TotalExpenses.Equal(dec("105000")) {
		t.Errorf("TotalExpenses = %s, want 105000", exp.TotalExpenses)
	}
	if !profit.NetProfit.Equal(dec("45000")) || !profit.IsProfitable {
		t.Errorf("NetProfit = %s (profitable %v), want 45000 (true)", profit.NetProfit, profit.IsProfitable)
	}
	if !profit.ProfitMargin.Equal(dec("22.5")) {
		t.Errorf("ProfitMargin = %s, want 22.5", profit.ProfitMargin)
	}
	if !eff.MaterialEfficiency.Equal(dec("4")) {
		t.Errorf("MaterialEfficiency = %s, want 4", eff.MaterialEfficiency)
	}
	if !eff.WastePercentage.Equal(dec("10")) {
		t.Errorf("WastePercentage = %s, want 10", eff.WastePercentage)
	}
}

func TestSummarizeMonthNoRevenue(t *testing.T) {
	t.Parallel()

	rev, _, profit, eff := summarizeMonth(MonthTotals{Labor: dec("1000")})
	if !rev.GrossProfitMargin.IsZero() || !profit.ProfitMargin.IsZero() || !eff.MaterialEfficiency.IsZero() {
		t.Errorf("margins = %s/%s/%s, want zeros", rev.GrossProfitMargin, profit.ProfitMargin, eff.MaterialEfficiency)
	}
	if profit.IsProfitable {
		t.Error("IsProfitable = true, want false")
	}
}

func TestSummarizeProfitLoss(t *testing.T) {
	t.Parallel()

	s := summarizeProfitLoss(
		[]RevenueLine{{Revenue: dec("10000")}, {Revenue: dec("6000")}},
		[]ExpenseLine{{Amount: dec("3000")}, {Amount: dec("1000")}},
	)
	if !s.NetProfit.Equal(dec("12000")) {
		t.Errorf("NetProfit = %s, want 12000", s.NetProfit)
	}
	if !s.ProfitMargin.Equal(dec("75")) {
		t.Errorf("ProfitMargin = %s, want 75", s.ProfitMargin)
	}
}

func TestGradeStockAndDashboard(t *testing.T) {
	t.Parallel()

	d := &Dashboard{
		UsageTrends: []*inventory.UsageTrend{{MaterialName: "A4"}, {MaterialName: "A3"}},
		StockLevels: []*inventory.StockReading{
			{MaterialName: "A4", CurrentStock: dec("40"), Threshold: dec("50"), UnitCost: dec("2")},
			{MaterialName: "A3", CurrentStock: dec("500"), Threshold: dec("50"), UnitCost: dec("3")},
		},
		CostEfficiency: []*MaterialReturn{{ReturnOnMaterial: dec("100")}, {ReturnOnMaterial: dec("50")}},
	}
	gradeStock(d.StockLevels)

	a4 := d.StockLevels[0]
	if a4.StockStatus != inventory.StockCritical {
		t.Errorf("A4 status = %s, want %s", a4.StockStatus, inventory.StockCritical)
	}
	if !a4.StockPercentage.Equal(dec("80")) || !a4.StockValue.Equal(dec("80")) {
		t.Errorf("A4 percentage/value = %s/%s, want 80/80", a4.StockPercentage, a4.StockValue)
	}

	s := summarizeDashboard(d, dec("900"))
	if s.TotalMaterialsTracked != 2 || s.CriticalStockItems != 1 {
		t.Errorf("tracked/critical = %d/%d, want 2/1", s.TotalMaterialsTracked, s.CriticalStockItems)
	}
	if !s.AverageMaterialReturn.Equal(dec("75")) {
		t.Errorf("AverageMaterialReturn = %s, want 75", s.AverageMaterialReturn)
	}
}

func TestShareWaste(t *testing.T) {
	t.Parallel()

	rows := []*inventory.WasteBreakdown{{TotalCost: dec("750")}, {TotalCost: dec("250")}}
	total := shareWaste(rows)
	if !total.Equal(dec("1000")) {
		t.Errorf("total = %s, want 1000", total)
	}
	if !rows[0].PercentageOfTotal.Equal(dec("75")) || !rows[1].PercentageOfTotal.Equal(dec("25")) {
		t.Errorf("shares = %s/%s, want 75/25", rows[0].PercentageOfTotal, rows[1].PercentageOfTotal)
	}
}

func TestProject(t *testing.T) {
	t.Parallel()

	rows := []*inventory.StockProjection{
		{CurrentInventory: dec("100"), MaterialsUsed: dec("60"), Threshold: dec("50")},
		{CurrentInventory: dec("300"), MaterialsUsed: dec("10"), Threshold: dec("50")},
	}
	project(rows)
	if !rows[0].ProjectedStock.Equal(dec("40")) || rows[0].StockHealth != inventory.HealthNeedsReorder {
		t.Errorf("row 0 = %s %s, want 40 %s", rows[0].ProjectedStock, rows[0].StockHealth, inventory.HealthNeedsReorder)
	}
	if rows[1].StockHealth != inventory.HealthHealthy {
		t.Errorf("row 1 health = %s, want %s", rows[1].StockHealth, inventory.HealthHealthy)
	}
}

func TestIndicators(t *testing.T) {
	t.Parallel()

	in := indicators(
		[]RevenueTrend{{TotalRevenue: dec("3000")}, {TotalRevenue: dec("1000")}},
		[]CustomerTrend{{NewCustomers: 15}, {NewCustomers: 10}},
	)
	if in.TotalPeriods != 2 || !in.AverageRevenue.Equal(dec("2000")) {
		t.Errorf("periods/avg = %d/%s, want 2/2000", in.TotalPeriods, in.AverageRevenue)
	}
	if !in.CustomerGrowthRate.Equal(dec("50")) {
		t.Errorf("CustomerGrowthRate = %s, want 50", in.CustomerGrowthRate)
	}

	if got := indicators(nil, []CustomerTrend{{NewCustomers: 4}, {}}); !got.CustomerGrowthRate.IsZero() {
		t.Errorf("growth with empty previous period = %s, want 0", got.CustomerGrowthRate)
	}
}
