package notification

import (
	"bytes"
	"html/template"
)

const layoutHead = `<div style="font-family:Arial,sans-serif;max-width:600px;margin:0 auto">`

var (
	paymentTemplate = template.Must(template.New("payment").Funcs(template.FuncMap{"fmt": FormatAmount}).Parse(layoutHead + `
<h2>Payment Received</h2>
<p>A payment was recorded for job <strong>{{.TicketID}}</strong> ({{.CustomerName}}).</p>
<table>
<tr><td>Amount</td><td>{{fmt .Currency .Amount}}</td></tr>
<tr><td>Method</td><td>{{.PaymentMethod}}</td></tr>
<tr><td>Total paid</td><td>{{fmt .Currency .AmountPaid}} of {{fmt .Currency .TotalCost}}</td></tr>
<tr><td>Balance</td><td>{{fmt .Currency .Balance}}</td></tr>
<tr><td>Status</td><td>{{.PaymentStatus}}</td></tr>
<tr><td>Recorded by</td><td>{{.RecordedBy}}</td></tr>
</table></div>`))

	lowStockTemplate = template.Must(template.New("low_stock").Parse(layoutHead + `
<h2 style="color:#c0392b">Low Stock Alert ({{.Level}})</h2>
<p><strong>{{.MaterialName}}</strong> is running low.</p>
<p>Current stock: {{.CurrentStock}} {{.UnitOfMeasure}}<br>Reorder threshold: {{.Threshold}} {{.UnitOfMeasure}}</p>
<p>Please restock soon.</p></div>`))

	userCreatedTemplate = template.Must(template.New("user_created").Parse(layoutHead + `
<h2>New {{.Role}} account</h2>
<p>An account was created for <strong>{{.Name}}</strong> ({{.Email}}).</p>
<p>Temporary password: <code>{{.Password}}</code></p>
<p>Share it securely; the user should change it after first login.</p></div>`))

	jobCompletedTemplate = template.Must(template.New("job_completed").Parse(layoutHead + `
<h2>Your job is ready</h2>
<p>Hello {{.Customer}},</p>
<p>Your print job <strong>{{.Ticket}}</strong> ({{.Description}}) has been completed and is ready for pickup.</p>
<p>Total cost: {{.Total}}</p>
<p>Thank you for choosing {{.Business}}.</p></div>`))
)

func render(t *template.Template, data interface{}) string {
	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return template.HTMLEscapeString(err.Error())
	}
	return buf.String()
}
