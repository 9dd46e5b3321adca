package notification

import (
	"testing"
	"time"

	"github.com/example/court/internal/core/courterr"
)

func TestParseSchedule(t *testing.T) {
	oslo, err := time.LoadLocation("Europe/Oslo")
	if err != nil {
		oslo = time.FixedZone("CET", 3600)
	}

	got, err := ParseSchedule("2026-03-14", "09:30", oslo)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.Year() != 2026 || got.Month() != time.March || got.Day() != 14 || got.Hour() != 9 || got.Minute() != 30 {
		t.Errorf("ParseSchedule = %v", got)
	}
	if got.Location() != oslo {
		t.Errorf("location = %v, want %v", got.Location(), oslo)
	}

	for _, bad := range [][2]string{
		{"14.03.2026", "09:30"},
		{"2026-03-14", "9.30"},
		{"2026-02-30", "09:30"},
		{"", ""},
	} {
		if _, err := ParseSchedule(bad[0], bad[1], time.UTC); courterr.KindOf(err) != courterr.KindValidation {
			t.Errorf("ParseSchedule(%q, %q) err = %v, want validation", bad[0], bad[1], err)
		}
	}
}

func TestCanSchedule(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 30, 45, 0, time.UTC)

	tests := []struct {
		name        string
		at          time.Time
		message     string
		wantAllowed bool
	}{
		{"current minute boundary", time.Date(2026, 5, 1, 12, 30, 0, 0, time.UTC), "hello", true},
		{"future", now.Add(time.Hour), "hello", true},
		{"previous minute", time.Date(2026, 5, 1, 12, 29, 0, 0, time.UTC), "hello", false},
		{"yesterday", now.AddDate(0, 0, -1), "hello", false},
		{"empty message", now.Add(time.Hour), "  ", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanSchedule(ScheduleContext{ScheduledAt: tt.at, Now: now, Message: tt.message})
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v (reason %q)", result.Allowed, tt.wantAllowed, result.Reason)
			}
			if !tt.wantAllowed && result.Kind != courterr.KindValidation {
				t.Errorf("Kind = %q, want validation", result.Kind)
			}
		})
	}
}

func TestCanCancel(t *testing.T) {
	if r := CanCancel(CancelContext{NotificationID: 3}); !r.Allowed {
		t.Errorf("unsent notification should be cancellable: %+v", r)
	}
	r := CanCancel(CancelContext{NotificationID: 3, Sent: true})
	if r.Allowed {
		t.Fatal("sent notification should not be cancellable")
	}
	if r.Reason != "notification 3 has already been sent and cannot be cancelled" {
		t.Errorf("Reason = %q", r.Reason)
	}
	if courterr.KindOf(r.Error("notification.cancel")) != courterr.KindConflict {
		t.Error("expected conflict kind")
	}
}

func TestIsDue(t *testing.T) {
	now := time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	if !IsDue(now, now, false) {
		t.Error("notification scheduled now should be due")
	}
	if IsDue(now.Add(time.Minute), now, false) {
		t.Error("future notification should not be due")
	}
	if IsDue(now.Add(-time.Hour), now, true) {
		t.Error("sent notification should never be due")
	}
}
