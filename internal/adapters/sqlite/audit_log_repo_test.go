package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/example/court/internal/adapters/sqlite"
	"github.com/example/court/internal/ctxutil"
	"github.com/example/court/internal/ports/secondary"
)

func TestLogWriterAdapter_AttributesActor(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAuditLogRepository(db)
	writer := sqlite.NewLogWriterAdapter(repo)

	ctx := ctxutil.WithActorID(context.Background(), 77)
	if err := writer.LogCreate(ctx, "case", "1"); err != nil {
		t.Fatalf("LogCreate failed: %v", err)
	}
	if err := writer.LogUpdate(ctx, "case", "1", "status", "open", "assigned"); err != nil {
		t.Fatalf("LogUpdate failed: %v", err)
	}
	if err := writer.LogDelete(context.Background(), "evidence", "1.2"); err != nil {
		t.Fatalf("LogDelete failed: %v", err)
	}

	caseEntries, err := repo.List(context.Background(), secondary.AuditFilters{EntityType: "case", EntityID: "1"})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(caseEntries) != 2 {
		t.Fatalf("expected 2 case entries, got %d", len(caseEntries))
	}
	update := caseEntries[0]
	if update.Action != "update" || update.ActorID != 77 || update.OldValue != "open" || update.NewValue != "assigned" {
		t.Errorf("unexpected newest entry %+v", update)
	}

	system, _ := repo.List(context.Background(), secondary.AuditFilters{Action: "delete"})
	if len(system) != 1 || system[0].ActorID != 0 {
		t.Errorf("expected one system delete, got %+v", system)
	}
}

func TestAuditLogRepository_PruneOlderThan(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewAuditLogRepository(db)
	ctx := context.Background()

	old := &secondary.AuditRecord{Timestamp: time.Now().UTC().AddDate(0, 0, -40), EntityType: "case", EntityID: "1", Action: "create"}
	recent := &secondary.AuditRecord{EntityType: "case", EntityID: "2", Action: "create"}
	_ = repo.Create(ctx, old)
	_ = repo.Create(ctx, recent)

	n, err := repo.PruneOlderThan(ctx, 30)
	if err != nil {
		t.Fatalf("PruneOlderThan failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 pruned, got %d", n)
	}

	left, _ := repo.List(ctx, secondary.AuditFilters{Limit: 10})
	if len(left) != 1 || left[0].EntityID != "2" {
		t.Errorf("expected only the recent entry, got %+v", left)
	}
}
