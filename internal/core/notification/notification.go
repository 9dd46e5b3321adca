// Package notification contains the pure rules for scheduled notifications.
package notification

import (
	"fmt"
	"strings"
	"time"

	"github.com/example/court/internal/core/courterr"
)

// Input layouts accepted from users.
const (
	DateLayout = "2006-01-02"
	TimeLayout = "15:04"
)

// GuardResult represents the outcome of a guard evaluation.
type GuardResult struct {
	Allowed bool
	Kind    courterr.Kind
	Reason  string
}

// Error converts the guard result to a classified error if not allowed.
func (r GuardResult) Error(op string) error {
	if r.Allowed {
		return nil
	}
	return &courterr.Error{Kind: r.Kind, Op: op, Msg: r.Reason}
}

// ParseSchedule parses a date ("YYYY-MM-DD") and a time ("HH:MM") in loc.
func ParseSchedule(date, clock string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	at, err := time.ParseInLocation(DateLayout+" "+TimeLayout, strings.TrimSpace(date)+" "+strings.TrimSpace(clock), loc)
	if err != nil {
		return time.Time{}, courterr.Validation("notification.schedule", "invalid date or time %q %q (use YYYY-MM-DD and HH:MM)", date, clock)
	}
	return at, nil
}

// ScheduleContext provides context for schedule guards.
type ScheduleContext struct {
	ScheduledAt time.Time
	Now         time.Time
	Message     string
}

// CanSchedule evaluates whether a notification can be scheduled.
// Rules:
// - Message must not be empty
// - Scheduled time must not be before the start of the current minute
func CanSchedule(ctx ScheduleContext) GuardResult {
	if strings.TrimSpace(ctx.Message) == "" {
		return GuardResult{Kind: courterr.KindValidation, Reason: "notification message cannot be empty"}
	}
	if ctx.ScheduledAt.Before(ctx.Now.Truncate(time.Minute)) {
		return GuardResult{
			Kind:   courterr.KindValidation,
			Reason: "cannot schedule a notification in the past (" + ctx.ScheduledAt.Format(DateLayout+" "+TimeLayout) + ")",
		}
	}
	return GuardResult{Allowed: true}
}

// CancelContext provides context for cancel guards.
type CancelContext struct {
	NotificationID int64
	Sent           bool
}

// CanCancel evaluates whether a notification can be cancelled.
// Rules:
// - Notification must not have been sent
func CanCancel(ctx CancelContext) GuardResult {
	if ctx.Sent {
		return GuardResult{
			Kind:   courterr.KindConflict,
			Reason: fmt.Sprintf("notification %d has already been sent and cannot be cancelled", ctx.NotificationID),
		}
	}
	return GuardResult{Allowed: true}
}

// IsDue reports whether an unsent notification scheduled at t should be
// delivered by a sweep running at now.
func IsDue(scheduledAt, now time.Time, sent bool) bool {
	return !sent && !scheduledAt.After(now)
}
