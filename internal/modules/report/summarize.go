package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/modules/inventory"
)

var hundred = decimal.NewFromInt(100)

// MonthRange returns [start, end) for a calendar month in UTC.
func MonthRange(year int, month time.Month) (time.Time, time.Time) {
	start := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return start, start.AddDate(0, 1, 0)
}

// LaborCost estimates a month of pay for the given workers.
func LaborCost(rates []PayRate) decimal.Decimal {
	total := decimal.Zero
	for _, r := range rates {
		switch {
		case r.HourlyRate.Valid:
			total = total.Add(r.HourlyRate.Decimal.Mul(decimal.NewFromInt(laborHoursPerMonth)))
		case r.MonthlySalary.Valid:
			total = total.Add(r.MonthlySalary.Decimal)
		}
	}
	return total
}

// percent is part/whole×100 rounded to two places, zero when whole is not positive.
func percent(part, whole decimal.Decimal) decimal.Decimal {
	if !whole.IsPositive() {
		return decimal.Zero
	}
	return part.Div(whole).Mul(hundred).Round(2)
}

func ratio(a, b decimal.Decimal) decimal.Decimal {
	if !b.IsPositive() {
		return decimal.Zero
	}
	return a.Div(b).Round(2)
}

// summarizeMonth derives profit, margins and efficiency from raw totals.
// Gross profit is revenue less materials; net profit also takes out waste,
// operational and labour costs.
func summarizeMonth(t MonthTotals) (Revenue, Expenses, Profit, Efficiency) {
	gross := t.Revenue.Sub(t.Materials)
	other := t.Waste.Add(t.Operational).Add(t.Labor)
	net := gross.Sub(other)

	return Revenue{
			TotalRevenue:       t.Revenue,
			TotalMaterialCosts: t.Materials,
			GrossProfit:        gross,
			GrossProfitMargin:  percent(gross, t.Revenue),
		}, Expenses{
			MaterialCosts:    t.Materials,
			WasteCosts:       t.Waste,
			OperationalCosts: t.Operational,
			LaborCosts:       t.Labor,
			TotalExpenses:    other,
		}, Profit{
			NetProfit:    net,
			ProfitMargin: percent(net, t.Revenue),
			IsProfitable: net.IsPositive(),
		}, Efficiency{
			MaterialEfficiency: ratio(t.Revenue, t.Materials),
			WastePercentage:    percent(t.Waste, t.Materials),
		}
}

func summarizeProfitLoss(revenue []RevenueLine, expenses []ExpenseLine) ProfitLossSummary {
	var s ProfitLossSummary
	for _, r := range revenue {
		s.TotalRevenue = s.TotalRevenue.Add(r.Revenue)
	}
	for _, e := range expenses {
		s.TotalExpenses = s.TotalExpenses.Add(e.Amount)
	}
	s.NetProfit = s.TotalRevenue.Sub(s.TotalExpenses)
	s.ProfitMargin = percent(s.NetProfit, s.TotalRevenue)
	return s
}

// gradeStock fills status and percentage on readings that only carry raw levels.
func gradeStock(readings []*inventory.StockReading) {
	for _, r := range readings {
		r.StockStatus = inventory.EvaluateThreshold(r.CurrentStock, r.Threshold)
		r.StockPercentage = inventory.StockPercentage(r.CurrentStock, r.Threshold)
		r.StockValue = r.CurrentStock.Mul(r.UnitCost)
	}
}

// shareWaste sets each breakdown's share of the combined waste cost.
func shareWaste(rows []*inventory.WasteBreakdown) decimal.Decimal {
	total := decimal.Zero
	for _, w := range rows {
		total = total.Add(w.TotalCost)
	}
	for _, w := range rows {
		w.PercentageOfTotal = percent(w.TotalCost, total)
	}
	return total
}

func project(rows []*inventory.StockProjection) {
	for _, p := range rows {
		p.ProjectedStock = p.CurrentInventory.Sub(p.MaterialsUsed)
		p.StockHealth = inventory.EvaluateProjection(p.ProjectedStock, p.Threshold)
	}
}

func summarizeDashboard(d *Dashboard, wasteTotal decimal.Decimal) DashboardSummary {
	s := DashboardSummary{TotalMaterialsTracked: len(d.UsageTrends), TotalWasteCost: wasteTotal}
	for _, r := range d.StockLevels {
		if r.StockStatus == inventory.StockCritical {
			s.CriticalStockItems++
		}
	}
	if n := len(d.CostEfficiency); n > 0 {
		sum := decimal.Zero
		for _, c := range d.CostEfficiency {
			sum = sum.Add(c.ReturnOnMaterial)
		}
		s.AverageMaterialReturn = sum.Div(decimal.NewFromInt(int64(n))).Round(2)
	}
	return s
}

// indicators expects trends newest first.
func indicators(revenue []RevenueTrend, customers []CustomerTrend) Indicators {
	in := Indicators{TotalPeriods: len(revenue)}
	if len(revenue) > 0 {
		sum := decimal.Zero
		for _, r := range revenue {
			sum = sum.Add(r.TotalRevenue)
		}
		in.AverageRevenue = sum.Div(decimal.NewFromInt(int64(len(revenue)))).Round(2)
	}
	if len(customers) > 1 && customers[1].NewCustomers > 0 {
		diff := decimal.NewFromInt(int64(customers[0].NewCustomers - customers[1].NewCustomers))
		in.CustomerGrowthRate = percent(diff, decimal.NewFromInt(int64(customers[1].NewCustomers)))
	}
	return in
}
