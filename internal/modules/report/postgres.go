package report

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/modules/inventory"
	"github.com/georgemunganga/printpress-backend/internal/modules/payment"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

func (r *postgresRepo) sum(ctx context.Context, name, query string, args ...interface{}) (decimal.Decimal, error) {
	var d decimal.Decimal
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&d); err != nil {
		return decimal.Zero, fmt.Errorf("%s: %w", name, err)
	}
	return d, nil
}

func (r *postgresRepo) CompletedRevenue(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return r.sum(ctx, "completed revenue", `
		SELECT COALESCE(SUM(total_cost), 0) FROM jobs
		WHERE status = 'completed' AND date_requested >= $1 AND date_requested < $2`, from, to)
}

func (r *postgresRepo) CompletedMaterialCost(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return r.sum(ctx, "completed material cost", `
		SELECT COALESCE(SUM(mu.total_cost), 0)
		FROM materials_used mu JOIN jobs j ON j.id = mu.job_id
		WHERE j.status = 'completed' AND j.date_requested >= $1 AND j.date_requested < $2`, from, to)
}

func (r *postgresRepo) WasteCost(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return r.sum(ctx, "waste cost", `
		SELECT COALESCE(SUM(total_cost), 0) FROM waste_expenses
		WHERE created_at >= $1 AND created_at < $2`, from, to)
}

func (r *postgresRepo) OperationalCost(ctx context.Context, from, to time.Time) (decimal.Decimal, error) {
	return r.sum(ctx, "operational cost", `
		SELECT COALESCE(SUM(amount), 0) FROM operational_expenses
		WHERE expense_date >= $1 AND expense_date < $2`, from, to)
}

func (r *postgresRepo) ActiveWorkerPay(ctx context.Context) ([]PayRate, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT hourly_rate, monthly_salary FROM users WHERE role = 'worker' AND is_active = true`)
	if err != nil {
		return nil, fmt.Errorf("worker pay: %w", err)
	}
	defer rows.Close()

	var out []PayRate
	for rows.Next() {
		var p PayRate
		if err := rows.Scan(&p.HourlyRate, &p.MonthlySalary); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postgresRepo) JobStats(ctx context.Context, from, to time.Time) (JobStats, error) {
	var s JobStats
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'completed'),
		       COUNT(*) FILTER (WHERE status = 'in_progress'),
		       COUNT(*) FILTER (WHERE payment_status = 'fully_paid'),
		       COALESCE(ROUND(AVG(total_cost), 2), 0),
		       COALESCE(MAX(total_cost), 0)
		FROM jobs WHERE date_requested >= $1 AND date_requested < $2`, from, to).
		Scan(&s.TotalJobs, &s.CompletedJobs, &s.InProgressJobs, &s.FullyPaidJobs, &s.AverageJobValue, &s.HighestJobValue)
	if err != nil {
		return s, fmt.Errorf("job stats: %w", err)
	}
	return s, nil
}

func (r *postgresRepo) TopMaterials(ctx context.Context, from, to time.Time, limit int) ([]TopMaterial, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT mu.material_name, SUM(mu.quantity), SUM(mu.total_cost), COUNT(DISTINCT j.id)
		FROM materials_used mu JOIN jobs j ON j.id = mu.job_id
		WHERE j.date_requested >= $1 AND j.date_requested < $2
		GROUP BY mu.material_name
		ORDER BY 3 DESC
		LIMIT $3`, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("top materials: %w", err)
	}
	defer rows.Close()

	out := []TopMaterial{}
	for rows.Next() {
		var m TopMaterial
		if err := rows.Scan(&m.MaterialName, &m.TotalQuantity, &m.TotalCost, &m.JobsCount); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *postgresRepo) RevenueLines(ctx context.Context, from, to time.Time) ([]RevenueLine, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT j.ticket_id, j.description, j.total_cost, COALESCE(c.name, ''), j.date_requested, j.status
		FROM jobs j LEFT JOIN customers c ON c.id = j.customer_id
		WHERE j.status = 'completed' AND j.date_requested >= $1 AND j.date_requested < $2
		ORDER BY j.total_cost DESC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("revenue lines: %w", err)
	}
	defer rows.Close()

	out := []RevenueLine{}
	for rows.Next() {
		var l RevenueLine
		if err := rows.Scan(&l.TicketID, &l.Description, &l.Revenue, &l.CustomerName, &l.DateRequested, &l.Status); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

const expenseLinesSQL = `
	SELECT 'Materials', mu.material_name, mu.total_cost, mu.created_at
	FROM materials_used mu JOIN jobs j ON j.id = mu.job_id
	WHERE j.date_requested >= $1 AND j.date_requested < $2
	UNION ALL
	SELECT 'Waste', type || ' - ' || description, total_cost, created_at
	FROM waste_expenses WHERE created_at >= $1 AND created_at < $2
	UNION ALL
	SELECT 'Operational', category || ' - ' || description, amount, expense_date::timestamptz
	FROM operational_expenses WHERE expense_date >= $1 AND expense_date < $2`

func (r *postgresRepo) ExpenseLines(ctx context.Context, from, to time.Time) ([]ExpenseLine, error) {
	rows, err := r.db.QueryContext(ctx, expenseLinesSQL+` ORDER BY 3 DESC`, from, to)
	if err != nil {
		return nil, fmt.Errorf("expense lines: %w", err)
	}
	defer rows.Close()

	out := []ExpenseLine{}
	for rows.Next() {
		var l ExpenseLine
		if err := rows.Scan(&l.Category, &l.Description, &l.Amount, &l.Date); err != nil {
			return nil, err
		}
		out = append(out, l)
	}
	return out, rows.Err()
}

func (r *postgresRepo) UsageTrends(ctx context.Context, trunc string, since time.Time) ([]*inventory.UsageTrend, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT DATE_TRUNC('%s', j.date_requested) AS period, mu.material_name,
		       SUM(mu.quantity), SUM(mu.total_cost), ROUND(AVG(mu.unit_cost), 2)
		FROM materials_used mu JOIN jobs j ON j.id = mu.job_id
		WHERE j.date_requested >= $1
		GROUP BY 1, 2
		ORDER BY 1 DESC, 4 DESC`, truncUnit(trunc)), since)
	if err != nil {
		return nil, fmt.Errorf("usage trends: %w", err)
	}
	defer rows.Close()

	out := []*inventory.UsageTrend{}
	for rows.Next() {
		t := &inventory.UsageTrend{}
		if err := rows.Scan(&t.Period, &t.MaterialName, &t.TotalQuantity, &t.TotalCost, &t.AverageUnitCost); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *postgresRepo) WasteBreakdown(ctx context.Context, since time.Time) ([]*inventory.WasteBreakdown, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT type, COALESCE(waste_reason, ''), COUNT(*), SUM(total_cost), ROUND(AVG(total_cost), 2)
		FROM waste_expenses WHERE created_at >= $1
		GROUP BY type, waste_reason
		ORDER BY 4 DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("waste breakdown: %w", err)
	}
	defer rows.Close()

	out := []*inventory.WasteBreakdown{}
	for rows.Next() {
		w := &inventory.WasteBreakdown{}
		if err := rows.Scan(&w.Type, &w.WasteReason, &w.OccurrenceCount, &w.TotalCost, &w.AverageCost); err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, rows.Err()
}

func (r *postgresRepo) StockReadings(ctx context.Context) ([]*inventory.StockReading, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, material_name, category, current_stock, threshold, unit_of_measure, unit_cost
		FROM inventory WHERE is_active = true
		ORDER BY CASE WHEN threshold > 0 THEN current_stock / threshold END ASC NULLS LAST,
		         current_stock * unit_cost DESC`)
	if err != nil {
		return nil, fmt.Errorf("stock readings: %w", err)
	}
	defer rows.Close()

	out := []*inventory.StockReading{}
	for rows.Next() {
		s := &inventory.StockReading{}
		if err := rows.Scan(&s.ID, &s.MaterialName, &s.Category, &s.CurrentStock, &s.Threshold,
			&s.UnitOfMeasure, &s.UnitCost); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *postgresRepo) MaterialCosts(ctx context.Context, since time.Time) ([]*inventory.CostAnalysis, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT mu.material_name, COUNT(DISTINCT mu.job_id), SUM(mu.quantity), SUM(mu.total_cost),
		       ROUND(AVG(mu.unit_cost), 2), MAX(mu.unit_cost), MIN(mu.unit_cost)
		FROM materials_used mu JOIN jobs j ON j.id = mu.job_id
		WHERE j.date_requested >= $1
		GROUP BY mu.material_name
		ORDER BY 4 DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("material costs: %w", err)
	}
	defer rows.Close()

	out := []*inventory.CostAnalysis{}
	for rows.Next() {
		c := &inventory.CostAnalysis{}
		if err := rows.Scan(&c.MaterialName, &c.JobsCount, &c.TotalQuantity, &c.TotalCost,
			&c.AverageUnitCost, &c.MaxUnitCost, &c.MinUnitCost); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *postgresRepo) MaterialReturns(ctx context.Context, since time.Time) ([]*MaterialReturn, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT mu.material_name, COUNT(DISTINCT j.id), SUM(mu.quantity), SUM(mu.total_cost),
		       ROUND(AVG(mu.unit_cost), 2), SUM(j.total_cost) - SUM(mu.total_cost)
		FROM materials_used mu JOIN jobs j ON j.id = mu.job_id
		WHERE j.date_requested >= $1 AND j.status = 'completed'
		GROUP BY mu.material_name`, since)
	if err != nil {
		return nil, fmt.Errorf("material returns: %w", err)
	}
	defer rows.Close()

	out := []*MaterialReturn{}
	for rows.Next() {
		m := &MaterialReturn{}
		if err := rows.Scan(&m.MaterialName, &m.JobsCount, &m.TotalQuantity, &m.TotalCost,
			&m.AverageUnitCost, &m.GeneratedProfit); err != nil {
			return nil, err
		}
		m.ReturnOnMaterial = percent(m.GeneratedProfit, m.TotalCost)
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *postgresRepo) Consumption(ctx context.Context, since time.Time) ([]*inventory.StockProjection, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT i.material_name, i.current_stock, i.threshold, COALESCE(SUM(mu.quantity), 0)
		FROM inventory i
		JOIN materials_used mu ON mu.material_name = i.material_name
		JOIN jobs j ON j.id = mu.job_id
		WHERE i.is_active = true AND j.status IN ('in_progress', 'completed') AND mu.created_at >= $1
		GROUP BY i.id, i.material_name, i.current_stock, i.threshold
		ORDER BY i.material_name`, since)
	if err != nil {
		return nil, fmt.Errorf("consumption: %w", err)
	}
	defer rows.Close()

	out := []*inventory.StockProjection{}
	for rows.Next() {
		p := &inventory.StockProjection{}
		if err := rows.Scan(&p.MaterialName, &p.CurrentInventory, &p.Threshold, &p.MaterialsUsed); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *postgresRepo) RevenueTrends(ctx context.Context, trunc string, since time.Time) ([]RevenueTrend, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT DATE_TRUNC('%s', date_requested), COUNT(*), COALESCE(SUM(total_cost), 0),
		       COALESCE(SUM(amount_paid), 0), COALESCE(ROUND(AVG(total_cost), 2), 0)
		FROM jobs WHERE date_requested >= $1
		GROUP BY 1 ORDER BY 1 DESC`, truncUnit(trunc)), since)
	if err != nil {
		return nil, fmt.Errorf("revenue trends: %w", err)
	}
	defer rows.Close()

	out := []RevenueTrend{}
	for rows.Next() {
		var t RevenueTrend
		if err := rows.Scan(&t.Period, &t.JobCount, &t.TotalRevenue, &t.CollectedRevenue, &t.AverageJobValue); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *postgresRepo) CustomerTrends(ctx context.Context, trunc string, since time.Time) ([]CustomerTrend, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT DATE_TRUNC('%s', first_interaction_date), COUNT(*),
		       COUNT(*) FILTER (WHERE total_jobs_count > 1)
		FROM customers WHERE first_interaction_date >= $1
		GROUP BY 1 ORDER BY 1 DESC`, truncUnit(trunc)), since)
	if err != nil {
		return nil, fmt.Errorf("customer trends: %w", err)
	}
	defer rows.Close()

	out := []CustomerTrend{}
	for rows.Next() {
		var t CustomerTrend
		if err := rows.Scan(&t.Period, &t.NewCustomers, &t.RepeatCustomers); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *postgresRepo) EfficiencyTrends(ctx context.Context, trunc string, since time.Time) ([]EfficiencyTrend, error) {
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT DATE_TRUNC('%s', date_requested), COUNT(*),
		       COUNT(*) FILTER (WHERE status = 'completed'),
		       ROUND(AVG(EXTRACT(EPOCH FROM (updated_at - created_at)) / 3600)::numeric, 2)
		FROM jobs WHERE date_requested >= $1
		GROUP BY 1 ORDER BY 1 DESC`, truncUnit(trunc)), since)
	if err != nil {
		return nil, fmt.Errorf("efficiency trends: %w", err)
	}
	defer rows.Close()

	out := []EfficiencyTrend{}
	for rows.Next() {
		var t EfficiencyTrend
		if err := rows.Scan(&t.Period, &t.TotalJobs, &t.CompletedJobs, &t.AvgCompletionHours); err != nil {
			return nil, err
		}
		t.CompletionRate = percent(decimal.NewFromInt(int64(t.CompletedJobs)), decimal.NewFromInt(int64(t.TotalJobs)))
		out = append(out, t)
	}
	return out, rows.Err()
}

var periodLabels = map[payment.StatsPeriod]string{
	payment.PeriodDaily:   `TO_CHAR(p.date, 'YYYY-MM-DD')`,
	payment.PeriodWeekly:  `TO_CHAR(p.date, 'IYYY-"W"IW')`,
	payment.PeriodMonthly: `TO_CHAR(p.date, 'YYYY-MM')`,
}

func (r *postgresRepo) PaymentPeriods(ctx context.Context, period payment.StatsPeriod, since time.Time, limit int) ([]payment.PeriodStat, error) {
	label, ok := periodLabels[period]
	if !ok {
		label = periodLabels[payment.PeriodMonthly]
	}
	rows, err := r.db.QueryContext(ctx, fmt.Sprintf(`
		SELECT %s, COUNT(*), SUM(p.amount), ROUND(AVG(p.amount), 2),
		       COUNT(DISTINCT p.job_id), COUNT(DISTINCT j.customer_id)
		FROM payments p LEFT JOIN jobs j ON j.id = p.job_id
		WHERE p.date >= $1
		GROUP BY 1 ORDER BY 1 DESC
		LIMIT $2`, label), since, limit)
	if err != nil {
		return nil, fmt.Errorf("payment periods: %w", err)
	}
	defer rows.Close()

	out := []payment.PeriodStat{}
	for rows.Next() {
		var s payment.PeriodStat
		if err := rows.Scan(&s.Period, &s.PaymentCount, &s.TotalAmount, &s.AveragePayment,
			&s.UniqueJobs, &s.UniqueCustomers); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

func (r *postgresRepo) PaymentMethods(ctx context.Context, since time.Time) ([]payment.MethodShare, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT payment_method, COUNT(*), SUM(amount)
		FROM payments WHERE date >= $1
		GROUP BY payment_method ORDER BY 3 DESC`, since)
	if err != nil {
		return nil, fmt.Errorf("payment methods: %w", err)
	}
	defer rows.Close()

	out := []payment.MethodShare{}
	for rows.Next() {
		var m payment.MethodShare
		if err := rows.Scan(&m.PaymentMethod, &m.Count, &m.TotalAmount); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

var exportQueries = map[ExportType]string{
	ExportFinancialSummary: `
		SELECT j.ticket_id, j.description, j.total_cost AS revenue, j.amount_paid AS collected,
		       j.balance AS outstanding, j.status, j.payment_status, c.name AS customer_name,
		       TO_CHAR(j.date_requested, 'YYYY-MM-DD') AS date_requested,
		       TO_CHAR(j.created_at, 'YYYY-MM-DD HH24:MI:SS') AS created_at
		FROM jobs j LEFT JOIN customers c ON c.id = j.customer_id
		WHERE j.date_requested >= $1 AND j.date_requested < $2
		ORDER BY j.date_requested DESC`,
	ExportMaterialUsage: `
		SELECT mu.material_name, mu.paper_size, mu.paper_type, mu.grammage, mu.quantity,
		       mu.unit_cost, mu.total_cost, j.ticket_id, j.description AS job_description,
		       TO_CHAR(j.date_requested, 'YYYY-MM-DD') AS date_requested
		FROM materials_used mu JOIN jobs j ON j.id = mu.job_id
		WHERE j.date_requested >= $1 AND j.date_requested < $2
		ORDER BY mu.total_cost DESC`,
	ExportExpenses: `
		SELECT category, description, amount, TO_CHAR(date, 'YYYY-MM-DD') AS date
		FROM (` + expenseLinesSQL + `) AS e(category, description, amount, date)
		ORDER BY amount DESC`,
}

func (r *postgresRepo) ExportTable(ctx context.Context, t ExportType, from, to time.Time) (*Table, error) {
	query, ok := exportQueries[t]
	if !ok {
		return nil, fmt.Errorf("export %q: unknown report type", t)
	}
	rows, err := r.db.QueryContext(ctx, query, from, to)
	if err != nil {
		return nil, fmt.Errorf("export %s: %w", t, err)
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	table := &Table{Name: string(t), Columns: cols, Rows: [][]string{}}
	for rows.Next() {
		vals := make([]sql.NullString, len(cols))
		dest := make([]interface{}, len(cols))
		for i := range vals {
			dest[i] = &vals[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, err
		}
		row := make([]string, len(cols))
		for i, v := range vals {
			row[i] = v.String
		}
		table.Rows = append(table.Rows, row)
	}
	return table, rows.Err()
}

func truncUnit(s string) string {
	switch s {
	case "day", "week", "month", "quarter", "year":
		return s
	}
	return "month"
}
