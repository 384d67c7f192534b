package notification

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
	"github.com/georgemunganga/printpress-backend/internal/mail"
	"github.com/georgemunganga/printpress-backend/internal/metrics"
	"github.com/georgemunganga/printpress-backend/internal/modules/realtime"
)

// Broadcaster pushes live messages to connected admins.
type Broadcaster interface {
	BroadcastToAdmins(msg realtime.Message) int
}

// Dispatcher turns events into notification rows, live pushes and email.
// Nothing it does is reported back to the business operation that raised
// the event; failures are logged.
type Dispatcher struct {
	repo   Repository
	hub    Broadcaster
	mailer mail.Mailer
	logger *slog.Logger
	now    func() time.Time
}

func NewDispatcher(repo Repository, hub Broadcaster, mailer mail.Mailer, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{repo: repo, hub: hub, mailer: mailer, logger: logger, now: time.Now}
}

// CreateNotification validates req and writes one row per active admin.
func (d *Dispatcher) CreateNotification(ctx context.Context, req CreateRequest) ([]*Notification, error) {
	req.Title = strings.TrimSpace(req.Title)
	req.Message = strings.TrimSpace(req.Message)
	if req.Title == "" || req.Message == "" {
		return nil, apperr.Validation("title and message are required")
	}
	if !req.Type.Valid() {
		return nil, apperr.Validation("invalid notification type %q", req.Type)
	}
	if req.Priority == "" {
		req.Priority = PriorityMedium
	}
	if !req.Priority.Valid() {
		return nil, apperr.Validation("invalid priority %q", req.Priority)
	}
	if req.RelatedEntityType != "" && !req.RelatedEntityType.Valid() {
		return nil, apperr.Validation("invalid related entity type %q", req.RelatedEntityType)
	}

	rows, err := d.repo.CreateForAdmins(ctx, req, d.now().Add(DefaultExpiry))
	if err != nil {
		return nil, err
	}
	metrics.NotificationsCreated.WithLabelValues(string(req.Type)).Add(float64(len(rows)))
	return rows, nil
}

// Dispatch handles one event from the outbox. Rows for an event that was not
// recorded yet are written first.
func (d *Dispatcher) Dispatch(ctx context.Context, evt Event) {
	evt = d.Record(ctx, evt)
	if evt.Live != nil {
		delivered := d.hub.BroadcastToAdmins(realtime.NewNotification(*evt.Live))
		d.logger.Info("notification dispatched", "type", evt.Live.Type, "rows", evt.Live.Recipients, "live", delivered)
	}
	if evt.AdminEmail != nil {
		d.emailAdmins(ctx, *evt.AdminEmail)
	}
	for _, msg := range evt.Emails {
		if err := d.mailer.Send(ctx, msg); err != nil {
			d.logger.Warn("notification email failed", "subject", msg.Subject, "error", err)
		}
	}
}

// Record writes the rows for evt.Notification and returns evt with the
// request replaced by its live payload. A failed write is logged and leaves
// nothing to push.
func (d *Dispatcher) Record(ctx context.Context, evt Event) Event {
	if evt.Notification == nil {
		return evt
	}
	req := *evt.Notification
	evt.Notification = nil

	rows, err := d.CreateNotification(ctx, req)
	if err != nil {
		d.logger.Error("create notification failed", "type", req.Type, "title", req.Title, "error", err)
		return evt
	}
	if len(rows) == 0 {
		d.logger.Debug("no active admins to notify", "type", req.Type)
		return evt
	}

	evt.Live = &Payload{
		Title:             rows[0].Title,
		Message:           rows[0].Message,
		Type:              rows[0].Type,
		Priority:          rows[0].Priority,
		RelatedEntityType: req.RelatedEntityType,
		RelatedEntityID:   req.RelatedEntityID,
		Recipients:        len(rows),
		CreatedAt:         rows[0].CreatedAt,
	}
	return evt
}

func (d *Dispatcher) emailAdmins(ctx context.Context, email Email) {
	admins, err := d.repo.ActiveAdmins(ctx)
	if err != nil {
		d.logger.Error("load admin recipients failed", "subject", email.Subject, "error", err)
		return
	}
	var to []string
	for _, a := range admins {
		if a.Email != "" {
			to = append(to, a.Email)
		}
	}
	if len(to) == 0 {
		return
	}
	if err := d.mailer.Send(ctx, mail.Message{To: to, Subject: email.Subject, HTML: email.HTML}); err != nil {
		d.logger.Warn("admin email failed", "subject", email.Subject, "error", err)
	}
}
