package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/ports/secondary"
)

const notificationColumns = "id, target_user_id, message, scheduled_at, created_by, created_at, sent, sent_at"

// NotificationRepository implements secondary.NotificationRepository with SQLite.
type NotificationRepository struct {
	db *sql.DB
}

// NewNotificationRepository creates a new SQLite notification repository.
func NewNotificationRepository(db *sql.DB) *NotificationRepository {
	return &NotificationRepository{db: db}
}

// Create persists a new notification and returns its id.
func (r *NotificationRepository) Create(ctx context.Context, n *secondary.NotificationRecord) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO scheduled_notifications (target_user_id, message, scheduled_at, created_by, created_at) VALUES (?, ?, ?, ?, ?)",
		n.TargetUserID, n.Message, n.ScheduledAt.UTC(), n.CreatedBy, now(),
	)
	if err != nil {
		return 0, courterr.Persistence("notification.create", err, "failed to schedule notification")
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, courterr.Persistence("notification.create", err, "failed to read notification id")
	}
	return id, nil
}

// GetByID retrieves a notification.
func (r *NotificationRepository) GetByID(ctx context.Context, id int64) (*secondary.NotificationRecord, error) {
	record, err := scanNotification(r.db.QueryRowContext(ctx,
		"SELECT "+notificationColumns+" FROM scheduled_notifications WHERE id = ?", id))
	if err == sql.ErrNoRows {
		return nil, courterr.NotFound("notification.get", "notification %d not found", id)
	}
	if err != nil {
		return nil, courterr.Persistence("notification.get", err, "failed to get notification")
	}
	return record, nil
}

// DeleteUnsent deletes a notification only if it has not been sent.
func (r *NotificationRepository) DeleteUnsent(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM scheduled_notifications WHERE id = ? AND sent = 0", id)
	if err != nil {
		return courterr.Persistence("notification.cancel", err, "failed to cancel notification")
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	return courterr.Conflict("notification.cancel", "notification %d has already been sent and cannot be cancelled", id)
}

// ListPending returns unsent notifications ordered by schedule.
func (r *NotificationRepository) ListPending(ctx context.Context) ([]*secondary.NotificationRecord, error) {
	return r.list(ctx, "notification.list",
		"SELECT "+notificationColumns+" FROM scheduled_notifications WHERE sent = 0 ORDER BY scheduled_at, id")
}

// ListDue returns unsent notifications scheduled at or before now.
func (r *NotificationRepository) ListDue(ctx context.Context, at time.Time) ([]*secondary.NotificationRecord, error) {
	return r.list(ctx, "notification.due",
		"SELECT "+notificationColumns+" FROM scheduled_notifications WHERE sent = 0 AND scheduled_at <= ? ORDER BY scheduled_at, id",
		at.UTC())
}

// MarkSent flips sent to true. Only the first caller sees true.
func (r *NotificationRepository) MarkSent(ctx context.Context, id int64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE scheduled_notifications SET sent = 1, sent_at = ? WHERE id = ? AND sent = 0",
		at.UTC(), id,
	)
	if err != nil {
		return false, courterr.Persistence("notification.mark_sent", err, "failed to mark notification sent")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, courterr.Persistence("notification.mark_sent", err, "failed to read update result")
	}
	return n == 1, nil
}

func (r *NotificationRepository) list(ctx context.Context, op, query string, args ...any) ([]*secondary.NotificationRecord, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, courterr.Persistence(op, err, "failed to list notifications")
	}
	defer rows.Close()

	var out []*secondary.NotificationRecord
	for rows.Next() {
		record, err := scanNotification(rows)
		if err != nil {
			return nil, courterr.Persistence(op, err, "failed to scan notification")
		}
		out = append(out, record)
	}
	if err := rows.Err(); err != nil {
		return nil, courterr.Persistence(op, err, "failed to list notifications")
	}
	return out, nil
}

func scanNotification(s scanner) (*secondary.NotificationRecord, error) {
	var (
		scheduledAt sql.NullTime
		createdAt   sql.NullTime
		sentAt      sql.NullTime
	)
	record := &secondary.NotificationRecord{}
	err := s.Scan(&record.ID, &record.TargetUserID, &record.Message, &scheduledAt,
		&record.CreatedBy, &createdAt, &record.Sent, &sentAt)
	if err != nil {
		return nil, err
	}
	record.ScheduledAt = timeOrZero(scheduledAt)
	record.CreatedAt = timeOrZero(createdAt)
	record.SentAt = timeOrZero(sentAt)
	return record, nil
}

// Ensure NotificationRepository implements the interface
var _ secondary.NotificationRepository = (*NotificationRepository)(nil)
