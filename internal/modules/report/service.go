package report

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/modules/inventory"
	"github.com/georgemunganga/printpress-backend/internal/modules/payment"
)

const (
	topMaterialsLimit   = 10
	dashboardMonths     = 6
	performanceMonths   = 12
	paymentStatsMonths  = 6
	paymentStatsLimit   = 12
	methodShareMonths   = 3
	maxMonitoringMonths = 36
	dateLayout          = "2006-01-02"
)

// Service computes the financial, material and performance reports.
// It also backs the inventory monitoring views, payment statistics and
// the scheduled monthly report email.
type Service interface {
	MonthlyFinancialSummary(ctx context.Context, year int, month time.Month) (*MonthlySummary, error)
	ProfitLoss(ctx context.Context, start, end string) (*ProfitLoss, error)
	MaterialDashboard(ctx context.Context, months int) (*Dashboard, error)
	BusinessPerformance(ctx context.Context, period string) (*Performance, error)
	Export(ctx context.Context, t ExportType, start, end string, format Format) (*Export, error)
	MonthlyReportEmail(ctx context.Context, year int, month time.Month) (subject, html string, err error)

	inventory.Monitor
	payment.StatsSource
}

type service struct {
	repo     Repository
	currency string
	business string
	now      func() time.Time
}

func NewService(repo Repository, businessName, currency string) Service {
	return &service{repo: repo, business: businessName, currency: currency, now: time.Now}
}

func (s *service) MonthlyFinancialSummary(ctx context.Context, year int, month time.Month) (*MonthlySummary, error) {
	if month < time.January || month > time.December {
		return nil, apperr.Validation("month must be between 1 and 12")
	}
	if year < 2000 || year > 9999 {
		return nil, apperr.Validation("invalid year")
	}
	from, to := MonthRange(year, month)

	var (
		totals MonthTotals
		rates  []PayRate
		stats  JobStats
		top    []TopMaterial
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { totals.Revenue, err = s.repo.CompletedRevenue(gctx, from, to); return })
	g.Go(func() (err error) { totals.Materials, err = s.repo.CompletedMaterialCost(gctx, from, to); return })
	g.Go(func() (err error) { totals.Waste, err = s.repo.WasteCost(gctx, from, to); return })
	g.Go(func() (err error) { totals.Operational, err = s.repo.OperationalCost(gctx, from, to); return })
	g.Go(func() (err error) { rates, err = s.repo.ActiveWorkerPay(gctx); return })
	g.Go(func() (err error) { stats, err = s.repo.JobStats(gctx, from, to); return })
	g.Go(func() (err error) { top, err = s.repo.TopMaterials(gctx, from, to, topMaterialsLimit); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	totals.Labor = LaborCost(rates)

	rev, exp, profit, eff := summarizeMonth(totals)
	if top == nil {
		top = []TopMaterial{}
	}
	return &MonthlySummary{
		Period: Period{
			Month:     int(month),
			Year:      year,
			StartDate: from.Format(dateLayout),
			EndDate:   to.AddDate(0, 0, -1).Format(dateLayout),
			MonthName: month.String(),
		},
		Revenue:      rev,
		Expenses:     exp,
		Profit:       profit,
		JobStats:     stats,
		TopMaterials: top,
		Efficiency:   eff,
	}, nil
}

func (s *service) ProfitLoss(ctx context.Context, start, end string) (*ProfitLoss, error) {
	from, to, err := dateRange(start, end)
	if err != nil {
		return nil, err
	}

	var (
		revenue  []RevenueLine
		expenses []ExpenseLine
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { revenue, err = s.repo.RevenueLines(gctx, from, to); return })
	g.Go(func() (err error) { expenses, err = s.repo.ExpenseLines(gctx, from, to); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &ProfitLoss{
		Period:           map[string]string{"start_date": start, "end_date": end},
		Summary:          summarizeProfitLoss(revenue, expenses),
		RevenueBreakdown: revenue,
		ExpenseBreakdown: expenses,
	}, nil
}

func (s *service) MaterialDashboard(ctx context.Context, months int) (*Dashboard, error) {
	months = clampMonths(months, dashboardMonths)
	since := s.now().UTC().AddDate(0, -months, 0)

	d := &Dashboard{MonitoringPeriod: fmt.Sprintf("%d months", months)}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { d.UsageTrends, err = s.repo.UsageTrends(gctx, "month", since); return })
	g.Go(func() (err error) { d.WasteAnalysis, err = s.repo.WasteBreakdown(gctx, since); return })
	g.Go(func() (err error) { d.StockLevels, err = s.repo.StockReadings(gctx); return })
	g.Go(func() (err error) { d.CostEfficiency, err = s.repo.MaterialReturns(gctx, since); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}

	gradeStock(d.StockLevels)
	wasteTotal := shareWaste(d.WasteAnalysis)
	d.Summary = summarizeDashboard(d, wasteTotal)
	return d, nil
}

func (s *service) BusinessPerformance(ctx context.Context, period string) (*Performance, error) {
	if period == "" {
		period = "month"
	}
	if truncUnit(period) != period {
		return nil, apperr.Validation("period must be one of day, week, month, quarter, year")
	}
	since := s.now().UTC().AddDate(0, -performanceMonths, 0)

	p := &Performance{Period: period}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { p.RevenueTrends, err = s.repo.RevenueTrends(gctx, period, since); return })
	g.Go(func() (err error) { p.CustomerTrends, err = s.repo.CustomerTrends(gctx, period, since); return })
	g.Go(func() (err error) { p.Efficiency, err = s.repo.EfficiencyTrends(gctx, period, since); return })
	if err := g.Wait(); err != nil {
		return nil, err
	}
	p.Indicators = indicators(p.RevenueTrends, p.CustomerTrends)
	return p, nil
}

func (s *service) Export(ctx context.Context, t ExportType, start, end string, format Format) (*Export, error) {
	if !t.Valid() {
		return nil, apperr.Validation("invalid report type")
	}
	if format == "" {
		format = FormatCSV
	}
	if format != FormatCSV && format != FormatXLSX {
		return nil, apperr.Validation("format must be csv or xlsx")
	}
	from, to, err := dateRange(start, end)
	if err != nil {
		return nil, err
	}

	table, err := s.repo.ExportTable(ctx, t, from, to)
	if err != nil {
		return nil, err
	}
	return encode(table, format, fmt.Sprintf("%s_%s_to_%s", t, start, end))
}

// ── inventory.Monitor ────────────────────────────────────────────────────────

func (s *service) UsageTrends(ctx context.Context, period string, months int) ([]*inventory.UsageTrend, error) {
	if truncUnit(period) != period {
		return nil, apperr.Validation("period must be one of day, week, month, quarter, year")
	}
	since := s.now().UTC().AddDate(0, -clampMonths(months, dashboardMonths), 0)
	return s.repo.UsageTrends(ctx, period, since)
}

func (s *service) WasteAnalysis(ctx context.Context, months int) ([]*inventory.WasteBreakdown, error) {
	since := s.now().UTC().AddDate(0, -clampMonths(months, 3), 0)
	rows, err := s.repo.WasteBreakdown(ctx, since)
	if err != nil {
		return nil, err
	}
	shareWaste(rows)
	return rows, nil
}

func (s *service) StockLevels(ctx context.Context) ([]*inventory.StockReading, error) {
	rows, err := s.repo.StockReadings(ctx)
	if err != nil {
		return nil, err
	}
	gradeStock(rows)
	return rows, nil
}

func (s *service) CostAnalysis(ctx context.Context, months int) ([]*inventory.CostAnalysis, error) {
	since := s.now().UTC().AddDate(0, -clampMonths(months, dashboardMonths), 0)
	return s.repo.MaterialCosts(ctx, since)
}

func (s *service) StockProjections(ctx context.Context, days int) ([]*inventory.StockProjection, error) {
	if days <= 0 || days > 365 {
		days = 30
	}
	rows, err := s.repo.Consumption(ctx, s.now().UTC().AddDate(0, 0, -days))
	if err != nil {
		return nil, err
	}
	project(rows)
	return rows, nil
}

// ── payment.StatsSource ──────────────────────────────────────────────────────

func (s *service) PaymentStats(ctx context.Context, period payment.StatsPeriod) (*payment.Stats, error) {
	now := s.now().UTC()
	st := &payment.Stats{Period: period}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		st.PaymentStats, err = s.repo.PaymentPeriods(gctx, period, now.AddDate(0, -paymentStatsMonths, 0), paymentStatsLimit)
		return
	})
	g.Go(func() (err error) {
		st.MethodDistribution, err = s.repo.PaymentMethods(gctx, now.AddDate(0, -methodShareMonths, 0))
		return
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return st, nil
}

// ── helpers ──────────────────────────────────────────────────────────────────

// dateRange parses inclusive YYYY-MM-DD bounds into a half-open range.
func dateRange(start, end string) (time.Time, time.Time, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return time.Time{}, time.Time{}, apperr.Validation("start_date and end_date are required")
	}
	from, err := time.Parse(dateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validation("start_date must be YYYY-MM-DD")
	}
	to, err := time.Parse(dateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, apperr.Validation("end_date must be YYYY-MM-DD")
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, apperr.Validation("end_date must not be before start_date")
	}
	return from, to.AddDate(0, 0, 1), nil
}

func clampMonths(months, def int) int {
	if months <= 0 || months > maxMonitoringMonths {
		return def
	}
	return months
}
