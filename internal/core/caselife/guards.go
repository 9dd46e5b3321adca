package caselife

import (
	"fmt"

	"github.com/example/court/internal/core/courterr"
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

func allow() GuardResult { return GuardResult{Allowed: true} }

func deny(kind courterr.Kind, format string, args ...any) GuardResult {
	return GuardResult{Kind: kind, Reason: fmt.Sprintf(format, args...)}
}

// CaseState is the slice of a case the guards look at.
type CaseState struct {
	CaseID          int64
	Status          Status
	Archived        bool
	AssignedJudgeID int64 // 0 when unassigned
}

// ClaimContext provides context for claim guards.
type ClaimContext struct {
	Case           CaseState
	CallerIsJudge  bool // holds the judge capability
	JudgeQuartered bool // has a registered judge category
}

// CanClaim evaluates whether a case can be claimed.
// Rules:
// - Caller must hold the judge capability
// - Case must be open and unassigned
// - Caller must have a judge category to receive the channel
func CanClaim(ctx ClaimContext) GuardResult {
	if !ctx.CallerIsJudge {
		return deny(courterr.KindPermission, "only judges can claim cases")
	}
	if ctx.Case.AssignedJudgeID != 0 || ctx.Case.Status == StatusAssigned {
		return deny(courterr.KindConflict, "case %d is already assigned to a judge", ctx.Case.CaseID)
	}
	if ctx.Case.Status != StatusOpen {
		return deny(courterr.KindConflict, "case %d cannot be claimed (current status: %s)", ctx.Case.CaseID, ctx.Case.Status)
	}
	if !ctx.JudgeQuartered {
		return deny(courterr.KindNotFound, "no judge category is registered for you")
	}
	return allow()
}

// CanMove evaluates whether a case channel can be moved to another category.
// Rules:
// - Case must not be closed
func CanMove(c CaseState) GuardResult {
	if c.Status == StatusClosed {
		return deny(courterr.KindConflict, "case %d is closed and cannot be moved", c.CaseID)
	}
	return allow()
}

// CanClose evaluates whether a case can be closed (with or without reason).
// Rules:
// - Status must be open or assigned
func CanClose(c CaseState) GuardResult {
	if !c.Status.Active() {
		return deny(courterr.KindConflict, "case %d is already closed", c.CaseID)
	}
	return allow()
}

// CanCloseWithReason adds the reason requirement to CanClose.
func CanCloseWithReason(c CaseState, reason string) GuardResult {
	if reason == "" {
		return deny(courterr.KindValidation, "a closing reason is required")
	}
	return CanClose(c)
}

// CanArchive evaluates whether a case can be archived without closing.
// Rules:
// - Status must be open or assigned
// - Case must not already be archived
func CanArchive(c CaseState) GuardResult {
	if !c.Status.Active() {
		return deny(courterr.KindConflict, "case %d is closed; closed cases are archived already", c.CaseID)
	}
	if c.Archived {
		return deny(courterr.KindConflict, "case %d is already archived", c.CaseID)
	}
	return allow()
}

// CanDeleteChannel evaluates whether the delete affordance may remove the
// case channel. The case record is always kept.
// Rules:
// - Case must be closed
func CanDeleteChannel(c CaseState) GuardResult {
	if c.Status != StatusClosed {
		return deny(courterr.KindConflict, "case %d must be closed before its channel can be deleted", c.CaseID)
	}
	return allow()
}
