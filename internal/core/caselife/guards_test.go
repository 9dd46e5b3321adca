package caselife

import (
	"testing"

	"github.com/example/court/internal/core/courterr"
)

func TestCanClaim(t *testing.T) {
	tests := []struct {
		name        string
		ctx         ClaimContext
		wantAllowed bool
		wantKind    courterr.Kind
		wantReason  string
	}{
		{
			name: "judge can claim open unassigned case",
			ctx: ClaimContext{
				Case:           CaseState{CaseID: 1, Status: StatusOpen},
				CallerIsJudge:  true,
				JudgeQuartered: true,
			},
			wantAllowed: true,
		},
		{
			name: "non-judge cannot claim",
			ctx: ClaimContext{
				Case:           CaseState{CaseID: 1, Status: StatusOpen},
				JudgeQuartered: true,
			},
			wantKind:   courterr.KindPermission,
			wantReason: "only judges can claim cases",
		},
		{
			name: "cannot claim assigned case",
			ctx: ClaimContext{
				Case:           CaseState{CaseID: 2, Status: StatusAssigned, AssignedJudgeID: 99},
				CallerIsJudge:  true,
				JudgeQuartered: true,
			},
			wantKind:   courterr.KindConflict,
			wantReason: "case 2 is already assigned to a judge",
		},
		{
			name: "cannot claim closed case",
			ctx: ClaimContext{
				Case:           CaseState{CaseID: 3, Status: StatusClosed},
				CallerIsJudge:  true,
				JudgeQuartered: true,
			},
			wantKind:   courterr.KindConflict,
			wantReason: "case 3 cannot be claimed (current status: closed)",
		},
		{
			name: "judge without category cannot claim",
			ctx: ClaimContext{
				Case:          CaseState{CaseID: 4, Status: StatusOpen},
				CallerIsJudge: true,
			},
			wantKind:   courterr.KindNotFound,
			wantReason: "no judge category is registered for you",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanClaim(tt.ctx)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed {
				if result.Reason != tt.wantReason {
					t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
				}
				if result.Kind != tt.wantKind {
					t.Errorf("Kind = %q, want %q", result.Kind, tt.wantKind)
				}
			}
		})
	}
}

func TestCanArchive(t *testing.T) {
	tests := []struct {
		name        string
		state       CaseState
		wantAllowed bool
		wantReason  string
	}{
		{
			name:        "open case can be archived",
			state:       CaseState{CaseID: 1, Status: StatusOpen},
			wantAllowed: true,
		},
		{
			name:        "assigned case can be archived",
			state:       CaseState{CaseID: 1, Status: StatusAssigned, AssignedJudgeID: 5},
			wantAllowed: true,
		},
		{
			name:       "archived case cannot be archived again",
			state:      CaseState{CaseID: 1, Status: StatusOpen, Archived: true},
			wantReason: "case 1 is already archived",
		},
		{
			name:       "closed case cannot be archived",
			state:      CaseState{CaseID: 1, Status: StatusClosed, Archived: true},
			wantReason: "case 1 is closed; closed cases are archived already",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CanArchive(tt.state)
			if result.Allowed != tt.wantAllowed {
				t.Errorf("Allowed = %v, want %v", result.Allowed, tt.wantAllowed)
			}
			if !tt.wantAllowed && result.Reason != tt.wantReason {
				t.Errorf("Reason = %q, want %q", result.Reason, tt.wantReason)
			}
		})
	}
}

func TestCanCloseWithReason(t *testing.T) {
	open := CaseState{CaseID: 8, Status: StatusOpen}

	if r := CanCloseWithReason(open, ""); r.Allowed || r.Kind != courterr.KindValidation {
		t.Errorf("empty reason: got %+v, want validation denial", r)
	}
	if r := CanCloseWithReason(open, "settled"); !r.Allowed {
		t.Errorf("open case with reason should be closable: %+v", r)
	}
	closed := CaseState{CaseID: 8, Status: StatusClosed}
	if r := CanCloseWithReason(closed, "again"); r.Allowed || r.Kind != courterr.KindConflict {
		t.Errorf("closed case: got %+v, want conflict denial", r)
	}
}

func TestCanDeleteChannel(t *testing.T) {
	if r := CanDeleteChannel(CaseState{CaseID: 1, Status: StatusAssigned}); r.Allowed {
		t.Error("expected active case channel deletion to be denied")
	}
	if r := CanDeleteChannel(CaseState{CaseID: 1, Status: StatusClosed}); !r.Allowed {
		t.Error("expected closed case channel deletion to be allowed")
	}
}

func TestGuardResultError(t *testing.T) {
	if err := allow().Error("op"); err != nil {
		t.Errorf("allowed result should have nil error, got %v", err)
	}
	err := CanMove(CaseState{CaseID: 3, Status: StatusClosed}).Error("case.move")
	if courterr.KindOf(err) != courterr.KindConflict {
		t.Errorf("KindOf = %q, want conflict", courterr.KindOf(err))
	}
}

func TestPlacementFor(t *testing.T) {
	tests := []struct {
		status   Status
		archived bool
		want     Placement
	}{
		{StatusOpen, false, PlacementOrigin},
		{StatusOpen, true, PlacementArchive},
		{StatusAssigned, false, PlacementJudge},
		{StatusAssigned, true, PlacementArchive},
		{StatusClosed, false, PlacementArchive},
		{StatusClosed, true, PlacementArchive},
	}
	for _, tt := range tests {
		if got := PlacementFor(tt.status, tt.archived); got != tt.want {
			t.Errorf("PlacementFor(%s, %v) = %s, want %s", tt.status, tt.archived, got, tt.want)
		}
	}
}
