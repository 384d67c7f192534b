package report

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"github.com/georgemunganga/printpress-backend/internal/modules/notification"
)

var monthlyTemplate = template.Must(template.New("monthly").Parse(`<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">
<h2>{{.Business}} Monthly Financial Summary</h2>
<p>{{.Summary.Period.MonthName}} {{.Summary.Period.Year}} ({{.Summary.Period.StartDate}} to {{.Summary.Period.EndDate}})</p>
<h3>Revenue</h3>
<table>
<tr><td>Total revenue</td><td>{{.Revenue}}</td></tr>
<tr><td>Material costs</td><td>{{.Materials}}</td></tr>
<tr><td>Gross profit</td><td>{{.Gross}} ({{.Summary.Revenue.GrossProfitMargin}}%)</td></tr>
</table>
<h3>Expenses</h3>
<table>
<tr><td>Waste</td><td>{{.Waste}}</td></tr>
<tr><td>Operational</td><td>{{.Operational}}</td></tr>
<tr><td>Labour</td><td>{{.Labor}}</td></tr>
</table>
<h3>Net profit: {{.Net}} ({{.Summary.Profit.ProfitMargin}}%)</h3>
<p>Jobs: {{.Summary.JobStats.TotalJobs}} total, {{.Summary.JobStats.CompletedJobs}} completed, {{.Summary.JobStats.FullyPaidJobs}} fully paid.</p>
{{if .Summary.TopMaterials}}<h3>Top materials</h3>
<ul>{{range .Summary.TopMaterials}}<li>{{.MaterialName}}: {{.TotalQuantity}} used in {{.JobsCount}} jobs</li>{{end}}</ul>{{end}}
</div>`))

// MonthlyReportEmail renders the monthly summary as an admin email.
func (s *service) MonthlyReportEmail(ctx context.Context, year int, month time.Month) (string, string, error) {
	sum, err := s.MonthlyFinancialSummary(ctx, year, month)
	if err != nil {
		return "", "", err
	}
	data := map[string]interface{}{
		"Business":    s.business,
		"Summary":     sum,
		"Revenue":     notification.FormatAmount(s.currency, sum.Revenue.TotalRevenue),
		"Materials":   notification.FormatAmount(s.currency, sum.Revenue.TotalMaterialCosts),
		"Gross":       notification.FormatAmount(s.currency, sum.Revenue.GrossProfit),
		"Waste":       notification.FormatAmount(s.currency, sum.Expenses.WasteCosts),
		"Operational": notification.FormatAmount(s.currency, sum.Expenses.OperationalCosts),
		"Labor":       notification.FormatAmount(s.currency, sum.Expenses.LaborCosts),
		"Net":         notification.FormatAmount(s.currency, sum.Profit.NetProfit),
	}
	var buf bytes.Buffer
	if err := monthlyTemplate.Execute(&buf, data); err != nil {
		return "", "", fmt.Errorf("render monthly report: %w", err)
	}
	subject := fmt.Sprintf("Monthly Financial Summary - %s %d", month, year)
	return subject, buf.String(), nil
}
