package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/court/internal/adapters/memory"
	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/ctxutil"
	"github.com/example/court/internal/ports/primary"
	"github.com/example/court/internal/ports/secondary"
)

func newTestNotificationService(t *testing.T) (*NotificationServiceImpl, *mockNotificationRepository, *memory.Platform) {
	t.Helper()
	oslo, err := time.LoadLocation("Europe/Oslo")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}
	platform := memory.NewPlatform(testGuildID, testOwnerID)
	repo := newMockNotificationRepository()
	svc := NewNotificationService(repo, allowAll(), platform, &mockLogWriter{}, testLogger(), oslo)
	svc.now = func() time.Time { return time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC) }
	return svc, repo, platform
}

func TestNotificationService_Schedule(t *testing.T) {
	svc, repo, _ := newTestNotificationService(t)
	ctx := ctxutil.WithActorID(context.Background(), testJudgeID)

	n, err := svc.Schedule(ctx, primary.ScheduleRequest{TargetUserID: testCreatorID, Date: "2026-05-02", Time: "14:30", Message: " hearing "})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if n.Message != "hearing" || n.CreatedBy != testJudgeID {
		t.Errorf("unexpected notification %+v", n)
	}

	stored := repo.notifications[n.ID]
	want := time.Date(2026, 5, 2, 12, 30, 0, 0, time.UTC)
	if !stored.ScheduledAt.Equal(want) || stored.ScheduledAt.Location() != time.UTC {
		t.Errorf("expected %v stored in UTC, got %v", want, stored.ScheduledAt)
	}
}

func TestNotificationService_Schedule_Rejections(t *testing.T) {
	svc, repo, _ := newTestNotificationService(t)

	tests := []struct {
		name string
		req  primary.ScheduleRequest
	}{
		{"past", primary.ScheduleRequest{TargetUserID: 1, Date: "2026-04-30", Time: "10:00", Message: "m"}},
		{"malformed date", primary.ScheduleRequest{TargetUserID: 1, Date: "02.05.2026", Time: "10:00", Message: "m"}},
		{"empty message", primary.ScheduleRequest{TargetUserID: 1, Date: "2026-05-02", Time: "10:00", Message: " "}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Schedule(context.Background(), tt.req)
			if !errors.Is(err, courterr.ErrValidation) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
	if len(repo.notifications) != 0 {
		t.Errorf("expected nothing stored, got %d", len(repo.notifications))
	}
}

func TestNotificationService_Cancel(t *testing.T) {
	svc, repo, _ := newTestNotificationService(t)
	ctx := context.Background()
	pending, _ := repo.Create(ctx, &secondary.NotificationRecord{TargetUserID: 1, Message: "a", ScheduledAt: time.Now().Add(time.Hour)})
	sent, _ := repo.Create(ctx, &secondary.NotificationRecord{TargetUserID: 1, Message: "b", ScheduledAt: time.Now().Add(-time.Hour), Sent: true})

	if err := svc.Cancel(ctx, pending); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if err := svc.Cancel(ctx, sent); !errors.Is(err, courterr.ErrConflict) {
		t.Errorf("expected conflict for a sent notification, got %v", err)
	}
	if _, ok := repo.notifications[sent]; !ok {
		t.Error("expected sent notification kept")
	}
	if err := svc.Cancel(ctx, 99); !errors.Is(err, courterr.ErrNotFound) {
		t.Errorf("expected not found, got %v", err)
	}
}

func TestNotificationService_DeliverDue(t *testing.T) {
	svc, repo, platform := newTestNotificationService(t)
	ctx := context.Background()
	now := time.Date(2026, 5, 1, 8, 0, 0, 0, time.UTC)

	due, _ := repo.Create(ctx, &secondary.NotificationRecord{TargetUserID: 10, Message: "due", ScheduledAt: now.Add(-time.Minute)})
	closed, _ := repo.Create(ctx, &secondary.NotificationRecord{TargetUserID: 11, Message: "dm closed", ScheduledAt: now.Add(-time.Minute)})
	raced, _ := repo.Create(ctx, &secondary.NotificationRecord{TargetUserID: 12, Message: "raced", ScheduledAt: now.Add(-time.Minute)})
	future, _ := repo.Create(ctx, &secondary.NotificationRecord{TargetUserID: 13, Message: "later", ScheduledAt: now.Add(time.Hour)})
	platform.CloseDMs(11)
	repo.markedElsewhere[raced] = true

	result, err := svc.DeliverDue(ctx, now)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if result.Due != 3 || result.Sent != 1 || result.Failed != 1 || result.Skipped != 1 {
		t.Errorf("unexpected sweep result %+v", result)
	}
	if !repo.notifications[due].Sent {
		t.Error("expected delivered notification marked sent")
	}
	if repo.notifications[closed].Sent {
		t.Error("expected undelivered notification to stay pending")
	}
	if repo.notifications[future].Sent {
		t.Error("expected future notification untouched")
	}

	again, err := svc.DeliverDue(ctx, now)
	if err != nil {
		t.Fatal(err)
	}
	if again.Sent != 0 {
		t.Errorf("expected no duplicate delivery, got %+v", again)
	}
}
