package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/example/court/internal/core/caselife"
	"github.com/example/court/internal/core/notification"
	"github.com/example/court/internal/core/permission"
	"github.com/example/court/internal/ctxutil"
	"github.com/example/court/internal/ports/primary"
	"github.com/example/court/internal/ports/secondary"
)

// NotificationServiceImpl implements the NotificationService interface.
type NotificationServiceImpl struct {
	notificationRepo secondary.NotificationRepository
	permissions      primary.PermissionService
	platform         secondary.ChatPlatform
	logWriter        secondary.LogWriter
	logger           *zap.SugaredLogger
	loc              *time.Location
	now              func() time.Time
}

// NewNotificationService creates a new NotificationService with injected
// dependencies. Dates and times are interpreted in loc.
func NewNotificationService(
	notificationRepo secondary.NotificationRepository,
	permissions primary.PermissionService,
	platform secondary.ChatPlatform,
	logWriter secondary.LogWriter,
	logger *zap.SugaredLogger,
	loc *time.Location,
) *NotificationServiceImpl {
	if loc == nil {
		loc = time.UTC
	}
	return &NotificationServiceImpl{
		notificationRepo: notificationRepo,
		permissions:      permissions,
		platform:         platform,
		logWriter:        logWriter,
		logger:           logger,
		loc:              loc,
		now:              time.Now,
	}
}

func (s *NotificationServiceImpl) require(ctx context.Context) error {
	return s.permissions.Check(ctx, primary.CheckRequest{Function: string(permission.FunctionNotificationManagement)})
}

// Schedule schedules a DM to a user.
func (s *NotificationServiceImpl) Schedule(ctx context.Context, req primary.ScheduleRequest) (*primary.Notification, error) {
	const op = "notification.schedule"

	if err := s.require(ctx); err != nil {
		return nil, err
	}
	at, err := notification.ParseSchedule(req.Date, req.Time, s.loc)
	if err != nil {
		return nil, err
	}
	guard := notification.CanSchedule(notification.ScheduleContext{
		ScheduledAt: at,
		Now:         s.now().In(s.loc),
		Message:     req.Message,
	})
	if err := guard.Error(op); err != nil {
		return nil, err
	}

	record := &secondary.NotificationRecord{
		TargetUserID: req.TargetUserID,
		Message:      strings.TrimSpace(req.Message),
		ScheduledAt:  at.UTC(),
		CreatedBy:    ctxutil.ActorFromContext(ctx),
	}
	id, err := s.notificationRepo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to schedule notification: %w", err)
	}
	record.ID = id

	_ = s.logWriter.LogCreate(ctx, "notification", strconv.FormatInt(id, 10))
	s.logger.Infow("notification scheduled", "notification_id", id, "user_id", req.TargetUserID, "at", at)
	return s.recordToNotification(record), nil
}

// Cancel deletes an unsent notification. A sent notification is kept.
func (s *NotificationServiceImpl) Cancel(ctx context.Context, id int64) error {
	if err := s.require(ctx); err != nil {
		return err
	}
	record, err := s.notificationRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	guard := notification.CanCancel(notification.CancelContext{NotificationID: id, Sent: record.Sent})
	if err := guard.Error("notification.cancel"); err != nil {
		return err
	}
	// The repository re-checks sent, so a sweep that wins the race still
	// leaves the record in place.
	if err := s.notificationRepo.DeleteUnsent(ctx, id); err != nil {
		return err
	}
	_ = s.logWriter.LogDelete(ctx, "notification", strconv.FormatInt(id, 10))
	s.logger.Infow("notification cancelled", "notification_id", id)
	return nil
}

// ListPending lists unsent notifications.
func (s *NotificationServiceImpl) ListPending(ctx context.Context) ([]*primary.Notification, error) {
	records, err := s.notificationRepo.ListPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications: %w", err)
	}
	out := make([]*primary.Notification, len(records))
	for i, r := range records {
		out[i] = s.recordToNotification(r)
	}
	return out, nil
}

// DeliverDue sends every due notification and marks it sent. Delivery is
// at-least-once: a crash between send and mark repeats the DM on the next run.
func (s *NotificationServiceImpl) DeliverDue(ctx context.Context, now time.Time) (*primary.SweepResult, error) {
	due, err := s.notificationRepo.ListDue(ctx, now.UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to load due notifications: %w", err)
	}

	result := &primary.SweepResult{}
	for _, n := range due {
		if !notification.IsDue(n.ScheduledAt, now, n.Sent) {
			continue
		}
		result.Due++
		logger := s.logger.With("notification_id", n.ID, "user_id", n.TargetUserID)

		_, err := s.platform.SendDirectMessage(ctx, n.TargetUserID, secondary.OutgoingMessage{
			Embed: &secondary.EmbedRecord{Title: "Reminder from the court", Description: n.Message, Color: caselife.ColorInfo},
		})
		if err != nil {
			result.Failed++
			logger.Warnw("notification not delivered", "error", err)
			continue
		}

		marked, err := s.notificationRepo.MarkSent(ctx, n.ID, now.UTC())
		if err != nil {
			result.Failed++
			logger.Errorw("notification sent but not marked", "error", err)
			continue
		}
		if !marked {
			result.Skipped++
			logger.Infow("notification already marked by another run")
			continue
		}
		result.Sent++
		_ = s.logWriter.LogUpdate(ctx, "notification", strconv.FormatInt(n.ID, 10), "sent", "false", "true")
	}

	if result.Due > 0 {
		s.logger.Infow("notification sweep", "due", result.Due, "sent", result.Sent, "skipped", result.Skipped, "failed", result.Failed)
	}
	return result, nil
}

func (s *NotificationServiceImpl) recordToNotification(r *secondary.NotificationRecord) *primary.Notification {
	return &primary.Notification{
		ID:           r.ID,
		TargetUserID: r.TargetUserID,
		Message:      r.Message,
		ScheduledAt:  r.ScheduledAt.In(s.loc),
		CreatedBy:    r.CreatedBy,
		Sent:         r.Sent,
	}
}

// Ensure NotificationServiceImpl implements the interface
var _ primary.NotificationService = (*NotificationServiceImpl)(nil)
