package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/ports/primary"
	"github.com/example/court/internal/ports/secondary"
)

// mockAuditLogRepository implements secondary.AuditLogRepository for testing.
type mockAuditLogRepository struct {
	logs     []*secondary.AuditRecord
	listErr  error
	pruned   int
	prunedAt int
}

func (m *mockAuditLogRepository) Create(ctx context.Context, entry *secondary.AuditRecord) error {
	entry.ID = int64(len(m.logs) + 1)
	m.logs = append(m.logs, entry)
	return nil
}

func (m *mockAuditLogRepository) List(ctx context.Context, filters secondary.AuditFilters) ([]*secondary.AuditRecord, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	var result []*secondary.AuditRecord
	for i := len(m.logs) - 1; i >= 0; i-- {
		l := m.logs[i]
		if filters.EntityType != "" && l.EntityType != filters.EntityType {
			continue
		}
		if filters.EntityID != "" && l.EntityID != filters.EntityID {
			continue
		}
		if filters.ActorID != 0 && l.ActorID != filters.ActorID {
			continue
		}
		if filters.Action != "" && l.Action != filters.Action {
			continue
		}
		result = append(result, l)
		if filters.Limit > 0 && len(result) == filters.Limit {
			break
		}
	}
	return result, nil
}

func (m *mockAuditLogRepository) PruneOlderThan(ctx context.Context, days int) (int, error) {
	m.prunedAt = days
	return m.pruned, nil
}

var _ secondary.AuditLogRepository = (*mockAuditLogRepository)(nil)

func newTestLogService() (*LogServiceImpl, *mockAuditLogRepository) {
	repo := &mockAuditLogRepository{}
	return NewLogService(repo), repo
}

func TestLogService_ListLogs(t *testing.T) {
	service, repo := newTestLogService()
	ctx := context.Background()
	now := time.Now()

	_ = repo.Create(ctx, &secondary.AuditRecord{Timestamp: now, ActorID: testJudgeID, EntityType: "case", EntityID: "1", Action: "create"})
	_ = repo.Create(ctx, &secondary.AuditRecord{Timestamp: now, ActorID: testJudgeID, EntityType: "case", EntityID: "1", Action: "update", FieldName: "status", OldValue: "open", NewValue: "assigned"})
	_ = repo.Create(ctx, &secondary.AuditRecord{Timestamp: now, EntityType: "evidence", EntityID: "1.1", Action: "create"})

	logs, err := service.ListLogs(ctx, primary.LogFilters{EntityType: "case"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(logs))
	}
	if logs[0].FieldName != "status" || logs[0].NewValue != "assigned" {
		t.Errorf("expected newest entry first, got %+v", logs[0])
	}

	logs, err = service.ListLogs(ctx, primary.LogFilters{Limit: 1})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(logs) != 1 || logs[0].EntityType != "evidence" {
		t.Errorf("expected the single newest entry, got %+v", logs)
	}
}

func TestLogService_ListLogs_Error(t *testing.T) {
	service, repo := newTestLogService()
	repo.listErr = errors.New("database error")

	if _, err := service.ListLogs(context.Background(), primary.LogFilters{}); err == nil {
		t.Error("expected error, got nil")
	}
}

func TestLogService_PruneLogs(t *testing.T) {
	service, repo := newTestLogService()
	repo.pruned = 5

	count, err := service.PruneLogs(context.Background(), 30)
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if count != 5 || repo.prunedAt != 30 {
		t.Errorf("expected 5 pruned at 30 days, got %d at %d", count, repo.prunedAt)
	}

	if _, err := service.PruneLogs(context.Background(), 0); !errors.Is(err, courterr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
}
