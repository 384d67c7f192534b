package notification

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type postgresRepo struct{ db *sql.DB }

func NewPostgresRepository(db *sql.DB) Repository { return &postgresRepo{db: db} }

const notificationColumns = `id, user_id, title, message, type, related_entity_type, related_entity_id,
	is_read, priority, action_url, created_at, expires_at`

func (r *postgresRepo) CreateForAdmins(ctx context.Context, req CreateRequest, expiresAt time.Time) ([]*Notification, error) {
	// Fan-out happens in one statement so every admin row shares the same
	// snapshot of who is active.
	rows, err := r.db.QueryContext(ctx, `
		INSERT INTO notifications
			(user_id, title, message, type, related_entity_type, related_entity_id, priority, action_url, expires_at)
		SELECT id, $1::text, $2::text, $3::text, $4::text, $5::uuid, $6::text, $7::text, $8::timestamptz
		FROM users WHERE role = 'admin' AND is_active = true
		RETURNING `+notificationColumns,
		req.Title, req.Message, string(req.Type), nilIfEmpty(string(req.RelatedEntityType)),
		req.RelatedEntityID, string(req.Priority), nilIfEmpty(req.ActionURL), expiresAt)
	if err != nil {
		return nil, fmt.Errorf("insert notifications: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func (r *postgresRepo) ListNotifications(ctx context.Context, userID uuid.UUID, opts ListOptions) ([]*Notification, error) {
	q := `SELECT ` + notificationColumns + ` FROM notifications
		WHERE user_id = $1 AND (expires_at IS NULL OR expires_at > now())`
	if opts.UnreadOnly {
		q += ` AND is_read = false`
	}
	q += ` ORDER BY created_at DESC LIMIT $2`

	rows, err := r.db.QueryContext(ctx, q, userID, opts.Limit)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()
	return scanNotifications(rows)
}

func (r *postgresRepo) UnreadCount(ctx context.Context, userID uuid.UUID) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM notifications
		WHERE user_id = $1 AND is_read = false AND (expires_at IS NULL OR expires_at > now())`,
		userID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return n, nil
}

func (r *postgresRepo) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = true WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	return nil
}

func (r *postgresRepo) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = true WHERE user_id = $1 AND is_read = false`, userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *postgresRepo) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`DELETE FROM notifications WHERE expires_at IS NOT NULL AND expires_at < $1`, now)
	if err != nil {
		return 0, fmt.Errorf("purge notifications: %w", err)
	}
	n, _ := res.RowsAffected()
	return n, nil
}

func (r *postgresRepo) ActiveAdmins(ctx context.Context) ([]Recipient, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, email FROM users
		WHERE role = 'admin' AND is_active = true
		ORDER BY created_at`)
	if err != nil {
		return nil, fmt.Errorf("list active admins: %w", err)
	}
	defer rows.Close()

	var out []Recipient
	for rows.Next() {
		var rc Recipient
		if err := rows.Scan(&rc.UserID, &rc.Name, &rc.Email); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}

// ── helpers ──────────────────────────────────────────────────────────────────

func scanNotifications(rows *sql.Rows) ([]*Notification, error) {
	var out []*Notification
	for rows.Next() {
		n := &Notification{}
		var entityType, actionURL sql.NullString
		var entityID uuid.NullUUID
		var expiresAt sql.NullTime
		if err := rows.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &entityType, &entityID,
			&n.IsRead, &n.Priority, &actionURL, &n.CreatedAt, &expiresAt); err != nil {
			return nil, err
		}
		if entityType.Valid {
			et := EntityType(entityType.String)
			n.RelatedEntityType = &et
		}
		if entityID.Valid {
			id := entityID.UUID
			n.RelatedEntityID = &id
		}
		if actionURL.Valid {
			n.ActionURL = &actionURL.String
		}
		if expiresAt.Valid {
			n.ExpiresAt = &expiresAt.Time
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}
