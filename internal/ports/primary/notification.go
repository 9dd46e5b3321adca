package primary

import (
	"context"
	"time"
)

// NotificationService defines the primary port for scheduled notifications.
type NotificationService interface {
	// Schedule schedules a DM to a user.
	Schedule(ctx context.Context, req ScheduleRequest) (*Notification, error)

	// Cancel deletes an unsent notification.
	Cancel(ctx context.Context, id int64) error

	// ListPending lists unsent notifications.
	ListPending(ctx context.Context) ([]*Notification, error)

	// DeliverDue sends every due notification and marks it sent.
	DeliverDue(ctx context.Context, now time.Time) (*SweepResult, error)
}

// ScheduleRequest contains parameters for scheduling a notification.
type ScheduleRequest struct {
	TargetUserID int64
	Date         string // YYYY-MM-DD
	Time         string // HH:MM
	Message      string
}

// Notification represents a scheduled notification at the port boundary.
type Notification struct {
	ID           int64
	TargetUserID int64
	Message      string
	ScheduledAt  time.Time
	CreatedBy    int64
	Sent         bool
}

// SweepResult reports one delivery sweep.
type SweepResult struct {
	Due     int
	Sent    int
	Skipped int // already marked by an overlapping run
	Failed  int
}
