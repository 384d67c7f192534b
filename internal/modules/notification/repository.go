package notification

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Repository persists notifications. CreateForAdmins writes one row per
// admin that is active at call time.
type Repository interface {
	CreateForAdmins(ctx context.Context, req CreateRequest, expiresAt time.Time) ([]*Notification, error)
	ListNotifications(ctx context.Context, userID uuid.UUID, opts ListOptions) ([]*Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
	ActiveAdmins(ctx context.Context) ([]Recipient, error)
}
