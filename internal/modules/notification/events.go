package notification

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/georgemunganga/printpress-backend/internal/mail"
)

// Event is published by business services once their transaction has
// committed. Every part is optional.
type Event struct {
	Notification *CreateRequest
	// Live is pushed to connected admins. It is set once the rows for
	// Notification exist.
	Live *Payload
	// AdminEmail goes to every active admin.
	AdminEmail *Email
	// Emails go to explicit recipients, such as a customer.
	Emails []mail.Message
}

type Email struct {
	Subject string
	HTML    string
}

func JobCreated(jobID uuid.UUID, ticket, actor, customer string) Event {
	return Event{Notification: &CreateRequest{
		Title:             "New Job Created",
		Message:           fmt.Sprintf("New job %s created by %s for %s", ticket, actor, customer),
		Type:              TypeNewJob,
		RelatedEntityType: EntityJob,
		RelatedEntityID:   &jobID,
		Priority:          PriorityMedium,
	}}
}

// StatusChanged notifies admins; completion, when set, is emailed to the
// customer.
func StatusChanged(jobID uuid.UUID, ticket, from, to, actor string, completion *mail.Message) Event {
	evt := Event{Notification: &CreateRequest{
		Title:             "Job Status Updated",
		Message:           fmt.Sprintf("Job %s status changed from %s to %s by %s", ticket, from, to, actor),
		Type:              TypeStatusChange,
		RelatedEntityType: EntityJob,
		RelatedEntityID:   &jobID,
		Priority:          PriorityMedium,
	}}
	if completion != nil {
		evt.Emails = []mail.Message{*completion}
	}
	return evt
}

func PaymentReceived(p PaymentDetails) Event {
	msg := fmt.Sprintf("Payment of %s recorded for job %s by %s. Balance: %s",
		FormatAmount(p.Currency, p.Amount), p.TicketID, p.RecordedBy, FormatAmount(p.Currency, p.Balance))
	return Event{
		Notification: &CreateRequest{
			Title:             "Payment Received",
			Message:           msg,
			Type:              TypePaymentUpdate,
			RelatedEntityType: EntityPayment,
			RelatedEntityID:   &p.PaymentID,
			Priority:          PriorityHigh,
		},
		AdminEmail: &Email{
			Subject: fmt.Sprintf("Payment Update - %s", p.TicketID),
			HTML:    render(paymentTemplate, p),
		},
	}
}

// PaymentDetails feeds the payment notification and email.
type PaymentDetails struct {
	PaymentID     uuid.UUID
	TicketID      string
	CustomerName  string
	RecordedBy    string
	Amount        decimal.Decimal
	AmountPaid    decimal.Decimal
	Balance       decimal.Decimal
	TotalCost     decimal.Decimal
	PaymentMethod string
	PaymentStatus string
	Currency      string
}

func LowStock(s StockDetails) Event {
	return Event{
		Notification: &CreateRequest{
			Title:             "Low Stock Alert",
			Message:           fmt.Sprintf("%s is running low. Current stock: %s %s", s.MaterialName, s.CurrentStock.String(), s.UnitOfMeasure),
			Type:              TypeLowStock,
			RelatedEntityType: EntityInventory,
			RelatedEntityID:   &s.ItemID,
			Priority:          PriorityHigh,
		},
		AdminEmail: &Email{
			Subject: fmt.Sprintf("Low Stock Alert - %s", s.MaterialName),
			HTML:    render(lowStockTemplate, s),
		},
	}
}

// StockDetails feeds the low-stock notification and email.
type StockDetails struct {
	ItemID        uuid.UUID
	MaterialName  string
	CurrentStock  decimal.Decimal
	Threshold     decimal.Decimal
	UnitOfMeasure string
	Level         string
}

// UserCreated tells admins about the new account and mails the temporary
// password to the admin who created it.
func UserCreated(userID uuid.UUID, name, email, role, tempPassword, creatorName, creatorEmail string) Event {
	evt := Event{Notification: &CreateRequest{
		Title:             "New User Created",
		Message:           fmt.Sprintf("%s account for %s (%s) created by %s", role, name, email, creatorName),
		Type:              TypeSystem,
		RelatedEntityType: EntityUser,
		RelatedEntityID:   &userID,
		Priority:          PriorityLow,
	}}
	if creatorEmail != "" {
		evt.Emails = []mail.Message{{
			To:      []string{creatorEmail},
			Subject: fmt.Sprintf("New Worker Account Created - %s", name),
			HTML: render(userCreatedTemplate, map[string]string{
				"Name": name, "Email": email, "Role": role, "Password": tempPassword,
			}),
		}}
	}
	return evt
}

// JobCompletedEmail builds the customer-facing completion notice.
func JobCompletedEmail(to, customerName, ticket, description, total, businessName string) mail.Message {
	return mail.Message{
		To:      []string{to},
		Subject: fmt.Sprintf("Your print job %s is ready", ticket),
		HTML: render(jobCompletedTemplate, map[string]string{
			"Customer": customerName, "Ticket": ticket, "Description": description, "Total": total, "Business": businessName,
		}),
	}
}

// FormatAmount renders 4000 as "₦4,000" and 1234.5 as "₦1,234.50".
func FormatAmount(symbol string, d decimal.Decimal) string {
	neg := d.IsNegative()
	s := d.Abs().StringFixed(2)
	whole, frac := s[:len(s)-3], s[len(s)-2:]

	var b strings.Builder
	for i, c := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}
	out := b.String()
	if frac != "00" {
		out += "." + frac
	}
	if neg {
		return "-" + symbol + out
	}
	return symbol + out
}
