// Package permission evaluates capability checks against role configuration.
// This is part of the Functional Core - no I/O, only pure functions.
package permission

import (
	"fmt"
	"strings"

	"github.com/example/court/internal/core/courterr"
)

// Function names a capability that a guild can bind to a role.
type Function string

const (
	FunctionJudge                  Function = "judge"
	FunctionAdmin                  Function = "admin"
	FunctionCaseManagement         Function = "case_management"
	FunctionEvidenceManagement     Function = "evidence_management"
	FunctionNotificationManagement Function = "notification_management"
	FunctionArchiveAccess          Function = "archive_access"
)

// Functions lists every known function in display order.
var Functions = []Function{
	FunctionJudge,
	FunctionAdmin,
	FunctionCaseManagement,
	FunctionEvidenceManagement,
	FunctionNotificationManagement,
	FunctionArchiveAccess,
}

// ParseFunction validates a user-supplied function name.
func ParseFunction(s string) (Function, error) {
	f := Function(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Functions {
		if f == known {
			return f, nil
		}
	}
	names := make([]string, len(Functions))
	for i, known := range Functions {
		names[i] = string(known)
	}
	return "", courterr.Validation("permission.parse", "unknown function %q (valid: %s)", s, strings.Join(names, ", "))
}

// Member is the caller as seen by a capability check.
type Member struct {
	UserID        int64
	RoleIDs       []int64
	Administrator bool
	GuildOwner    bool
}

// HasRole reports whether the member holds roleID.
func (m Member) HasRole(roleID int64) bool {
	for _, r := range m.RoleIDs {
		if r == roleID {
			return true
		}
	}
	return false
}

// CheckContext provides context for a capability check.
type CheckContext struct {
	Member   Member
	Function Function
	// RoleID is the configured role for Function, 0 when unset.
	RoleID int64
	// RoleExists is false when the configured role was deleted from the guild.
	RoleExists bool
	// RegisteredJudge satisfies FunctionJudge regardless of role membership.
	RegisteredJudge bool
	// CaseCreator satisfies FunctionEvidenceManagement for the caller's own case.
	CaseCreator bool
}

// GuardResult represents the outcome of a capability check.
type GuardResult struct {
	Allowed bool
	Reason  string
}

// Error converts the result to a permission error if not allowed.
func (r GuardResult) Error(op string) error {
	if r.Allowed {
		return nil
	}
	return courterr.Permission(op, "%s", r.Reason)
}

// Evaluate decides whether the member holds the requested capability.
// Rules, in order:
// - Guild owner is always allowed
// - Administrators are always allowed
// - A registered judge satisfies the judge function
// - A case creator satisfies evidence management on their own case
// - No role configured, or the configured role is gone: administrator required
// - Otherwise the member must hold the configured role
func Evaluate(ctx CheckContext) GuardResult {
	if ctx.Member.GuildOwner || ctx.Member.Administrator {
		return GuardResult{Allowed: true}
	}
	if ctx.Function == FunctionJudge && ctx.RegisteredJudge {
		return GuardResult{Allowed: true}
	}
	if ctx.Function == FunctionEvidenceManagement && (ctx.CaseCreator || ctx.RegisteredJudge) {
		return GuardResult{Allowed: true}
	}
	if ctx.RoleID == 0 || !ctx.RoleExists {
		return GuardResult{Reason: fmt.Sprintf("you need administrator rights (no role is configured for %s)", ctx.Function)}
	}
	if ctx.Member.HasRole(ctx.RoleID) {
		return GuardResult{Allowed: true}
	}
	return GuardResult{Reason: fmt.Sprintf("you do not have permission for %s", ctx.Function)}
}
