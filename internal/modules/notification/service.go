package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/georgemunganga/printpress-backend/internal/apperr"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// Service is the per-user inbox.
type Service interface {
	List(ctx context.Context, userID uuid.UUID, opts ListOptions) ([]*Notification, error)
	UnreadCount(ctx context.Context, userID uuid.UUID) (int, error)
	MarkRead(ctx context.Context, userID uuid.UUID, id string) error
	MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error)
}

type service struct{ repo Repository }

func NewService(repo Repository) Service { return &service{repo: repo} }

func (s *service) List(ctx context.Context, userID uuid.UUID, opts ListOptions) ([]*Notification, error) {
	if opts.Limit <= 0 {
		opts.Limit = defaultListLimit
	}
	if opts.Limit > maxListLimit {
		opts.Limit = maxListLimit
	}
	items, err := s.repo.ListNotifications(ctx, userID, opts)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []*Notification{}
	}
	return items, nil
}

func (s *service) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	return s.repo.UnreadCount(ctx, userID)
}

// MarkRead is a no-op for rows that are already read or belong to someone else.
func (s *service) MarkRead(ctx context.Context, userID uuid.UUID, id string) error {
	nid, err := uuid.Parse(id)
	if err != nil {
		return apperr.Validation("invalid notification id")
	}
	return s.repo.MarkRead(ctx, nid, userID)
}

func (s *service) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.repo.MarkAllRead(ctx, userID)
}
