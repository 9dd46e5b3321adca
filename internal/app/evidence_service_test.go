package app

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/example/court/internal/adapters/memory"
	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/ctxutil"
	"github.com/example/court/internal/ports/primary"
	"github.com/example/court/internal/ports/secondary"
)

func newTestEvidenceService(perms *mockPermissionService) (*EvidenceServiceImpl, *mockEvidenceRepository, *memory.Platform, int64) {
	platform := memory.NewPlatform(testGuildID, testOwnerID)
	platform.AddChannel(secondary.ChannelRecord{ID: testChannelID, Name: "sak-7", ParentID: testIntakeID})

	cases := newMockCaseRepository()
	c := cases.put(&secondary.CaseRecord{ID: 7, ChannelID: testChannelID, CreatorID: testCreatorID, Status: "open"})
	ledger := newMockEvidenceRepository()

	svc := NewEvidenceService(cases, ledger, perms, platform, &mockLogWriter{}, testLogger())
	return svc, ledger, platform, c.ID
}

func TestEvidenceService_AddEvidence(t *testing.T) {
	perms := allowAll()
	svc, _, platform, _ := newTestEvidenceService(perms)
	ctx := ctxutil.WithActorID(context.Background(), testCreatorID)

	first, err := svc.AddEvidence(ctx, primary.AddEvidenceRequest{ChannelID: testChannelID, Description: "receipt", Link: "https://x/1"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	second, err := svc.AddEvidence(ctx, primary.AddEvidenceRequest{ChannelID: testChannelID, Description: "photo", Link: "https://x/2"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if first.DisplayID != "7.1" || second.DisplayID != "7.2" {
		t.Errorf("expected 7.1 and 7.2, got %s and %s", first.DisplayID, second.DisplayID)
	}
	if first.SubmitterID != testCreatorID {
		t.Errorf("expected submitter %d, got %d", testCreatorID, first.SubmitterID)
	}
	if len(platform.Sent()) != 2 {
		t.Errorf("expected a notice per item, got %d", len(platform.Sent()))
	}
	if len(perms.checks) != 2 || perms.checks[0] != "evidence_management" {
		t.Errorf("expected evidence_management checks, got %v", perms.checks)
	}
}

func TestEvidenceService_AddEvidence_Validation(t *testing.T) {
	svc, ledger, _, caseID := newTestEvidenceService(allowAll())

	_, err := svc.AddEvidence(context.Background(), primary.AddEvidenceRequest{ChannelID: testChannelID, Description: " ", Link: "l"})
	if !errors.Is(err, courterr.ErrValidation) {
		t.Errorf("expected validation error, got %v", err)
	}
	if n, _ := ledger.Count(context.Background(), caseID); n != 0 {
		t.Errorf("expected empty ledger, got %d", n)
	}
}

func TestEvidenceService_AddEvidence_Denied(t *testing.T) {
	svc, _, platform, _ := newTestEvidenceService(denyFunctions("evidence_management"))

	_, err := svc.AddEvidence(context.Background(), primary.AddEvidenceRequest{ChannelID: testChannelID, Description: "d", Link: "l"})
	if !errors.Is(err, courterr.ErrPermission) {
		t.Fatalf("expected permission error, got %v", err)
	}
	if len(platform.Sent()) != 0 {
		t.Error("expected no notice")
	}
}

func TestEvidenceService_RemoveEvidence_Renumbers(t *testing.T) {
	svc, _, _, _ := newTestEvidenceService(allowAll())
	ctx := context.Background()
	for _, d := range []string{"a", "b", "c"} {
		if _, err := svc.AddEvidence(ctx, primary.AddEvidenceRequest{ChannelID: testChannelID, Description: d, Link: "l"}); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := svc.RemoveEvidence(ctx, primary.RemoveEvidenceRequest{ChannelID: testChannelID, DisplayID: "7.2"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if removed.Description != "b" || removed.DisplayID != "7.2" {
		t.Errorf("expected b at 7.2, got %+v", removed)
	}

	items, err := svc.ListEvidence(ctx, testChannelID)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 || items[1].Description != "c" || items[1].DisplayID != "7.2" {
		t.Errorf("expected c renumbered to 7.2, got %+v", items)
	}
}

func TestEvidenceService_RemoveEvidence_Rejections(t *testing.T) {
	svc, _, _, _ := newTestEvidenceService(allowAll())
	ctx := context.Background()
	if _, err := svc.AddEvidence(ctx, primary.AddEvidenceRequest{ChannelID: testChannelID, Description: "a", Link: "l"}); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name      string
		displayID string
		want      error
	}{
		{"malformed", "7-1", courterr.ErrValidation},
		{"other case", "8.1", courterr.ErrNotFound},
		{"out of range", "7.5", courterr.ErrNotFound},
		{"zero position", "7.0", courterr.ErrNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.RemoveEvidence(ctx, primary.RemoveEvidenceRequest{ChannelID: testChannelID, DisplayID: tt.displayID})
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}

	items, _ := svc.ListEvidence(ctx, testChannelID)
	if len(items) != 1 {
		t.Errorf("expected ledger untouched, got %d items", len(items))
	}
}

func TestEvidenceService_ConcurrentAddsGetDistinctPositions(t *testing.T) {
	svc, _, _, _ := newTestEvidenceService(allowAll())
	ctx := context.Background()

	var wg sync.WaitGroup
	ids := make([]string, 10)
	for i := range ids {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ev, err := svc.AddEvidence(ctx, primary.AddEvidenceRequest{ChannelID: testChannelID, Description: fmt.Sprint(i), Link: "l"})
			if err == nil {
				ids[i] = ev.DisplayID
			}
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, id := range ids {
		if id == "" || seen[id] {
			t.Fatalf("expected distinct display ids, got %v", ids)
		}
		seen[id] = true
	}
}
