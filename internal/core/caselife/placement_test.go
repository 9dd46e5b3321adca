package caselife

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/core/effects"
)

func TestPlanArchive(t *testing.T) {
	got := PlanArchive(ArchivePlacement{ChannelID: 10, ArchiveCategoryID: 20, EveryoneRoleID: 1, RevokeSend: true})
	want := []effects.Effect{
		effects.MoveChannelEffect{ChannelID: 10, CategoryID: 20},
		effects.SyncPermissionsEffect{ChannelID: 10},
		effects.PermissionEffect{ChannelID: 10, TargetID: 1, Target: effects.TargetRole, Send: effects.Deny},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PlanArchive mismatch (-want +got):\n%s", diff)
	}

	archiveOnly := PlanArchive(ArchivePlacement{ChannelID: 10, ArchiveCategoryID: 20, EveryoneRoleID: 1})
	if len(archiveOnly) != 2 {
		t.Errorf("archive-only placement should not revoke send, got %d effects", len(archiveOnly))
	}
}

func TestPlanCategoryMove(t *testing.T) {
	if got := PlanCategoryMove(1, 2, 0); len(got) != 1 {
		t.Errorf("move without role: got %d effects, want 1", len(got))
	}
	got := PlanCategoryMove(1, 2, 3)
	want := []effects.Effect{
		effects.MoveChannelEffect{ChannelID: 1, CategoryID: 2},
		effects.PermissionEffect{ChannelID: 1, TargetID: 3, Target: effects.TargetRole, View: effects.Allow, Send: effects.Allow},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("PlanCategoryMove mismatch (-want +got):\n%s", diff)
	}
}

func TestPlanRelocation(t *testing.T) {
	targets := RelocationTargets{
		ChannelID:         100,
		OriginCategoryID:  1,
		JudgeCategoryID:   2,
		JudgeID:           77,
		ArchiveCategoryID: 3,
		EveryoneRoleID:    999,
	}

	tests := []struct {
		name         string
		status       Status
		archived     bool
		targets      RelocationTargets
		wantCategory int64
		wantCount    int
		wantKind     courterr.Kind
	}{
		{name: "closed goes to archive and revokes send", status: StatusClosed, archived: true, targets: targets, wantCategory: 3, wantCount: 3},
		{name: "archived open goes to archive keeps send", status: StatusOpen, archived: true, targets: targets, wantCategory: 3, wantCount: 2},
		{name: "assigned goes to judge", status: StatusAssigned, targets: targets, wantCategory: 2, wantCount: 2},
		{name: "open goes to origin", status: StatusOpen, targets: targets, wantCategory: 1, wantCount: 1},
		{
			name:     "missing archive category",
			status:   StatusClosed,
			targets:  RelocationTargets{ChannelID: 100},
			wantKind: courterr.KindNotFound,
		},
		{
			name:     "missing judge category",
			status:   StatusAssigned,
			targets:  RelocationTargets{ChannelID: 100, ArchiveCategoryID: 3},
			wantKind: courterr.KindNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			effs, result := PlanRelocation(tt.status, tt.archived, tt.targets)
			if tt.wantKind != "" {
				if result.Allowed || result.Kind != tt.wantKind {
					t.Fatalf("result = %+v, want denial of kind %q", result, tt.wantKind)
				}
				return
			}
			if !result.Allowed {
				t.Fatalf("unexpected denial: %s", result.Reason)
			}
			if len(effs) != tt.wantCount {
				t.Fatalf("got %d effects, want %d", len(effs), tt.wantCount)
			}
			move, ok := effs[0].(effects.MoveChannelEffect)
			if !ok || move.CategoryID != tt.wantCategory {
				t.Errorf("first effect = %#v, want move to %d", effs[0], tt.wantCategory)
			}
		})
	}
}
