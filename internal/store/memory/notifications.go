package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/georgemunganga/printpress-backend/internal/modules/notification"
)

// CreateForAdmins writes one row per active admin under a single lock, so
// every row sees the same set of admins.
func (s *Store) CreateForAdmins(_ context.Context, req notification.CreateRequest, expiresAt time.Time) ([]*notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*notification.Notification
	for _, a := range s.activeAdmins() {
		n := &notification.Notification{
			ID:              uuid.New(),
			UserID:          a.UserID,
			Title:           req.Title,
			Message:         req.Message,
			Type:            req.Type,
			RelatedEntityID: req.RelatedEntityID,
			Priority:        req.Priority,
			CreatedAt:       s.now(),
		}
		if req.RelatedEntityType != "" {
			et := req.RelatedEntityType
			n.RelatedEntityType = &et
		}
		if req.ActionURL != "" {
			u := req.ActionURL
			n.ActionURL = &u
		}
		exp := expiresAt
		n.ExpiresAt = &exp
		s.notifications = append(s.notifications, n)
		cp := *n
		out = append(out, &cp)
	}
	return out, nil
}

// ListNotifications returns the user's live notifications, newest first.
func (s *Store) ListNotifications(_ context.Context, userID uuid.UUID, opts notification.ListOptions) ([]*notification.Notification, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*notification.Notification
	for _, n := range s.live(userID) {
		if opts.UnreadOnly && n.IsRead {
			continue
		}
		cp := *n
		out = append(out, &cp)
	}
	sortBy(out, func(a, b *notification.Notification) bool { return a.CreatedAt.After(b.CreatedAt) })
	return page(out, 0, opts.Limit), nil
}

func (s *Store) UnreadCount(_ context.Context, userID uuid.UUID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, n := range s.live(userID) {
		if !n.IsRead {
			count++
		}
	}
	return count, nil
}

// MarkRead is a no-op for unknown ids and for other users' notifications.
func (s *Store) MarkRead(_ context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, n := range s.notifications {
		if n.ID == id && n.UserID == userID {
			n.IsRead = true
		}
	}
	return nil
}

func (s *Store) MarkAllRead(_ context.Context, userID uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var count int64
	for _, n := range s.notifications {
		if n.UserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}

func (s *Store) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	kept := s.notifications[:0]
	var purged int64
	for _, n := range s.notifications {
		if n.ExpiresAt != nil && n.ExpiresAt.Before(now) {
			purged++
			continue
		}
		kept = append(kept, n)
	}
	s.notifications = kept
	return purged, nil
}

func (s *Store) live(userID uuid.UUID) []*notification.Notification {
	now := s.now()
	var out []*notification.Notification
	for _, n := range s.notifications {
		if n.UserID == userID && (n.ExpiresAt == nil || n.ExpiresAt.After(now)) {
			out = append(out, n)
		}
	}
	return out
}
