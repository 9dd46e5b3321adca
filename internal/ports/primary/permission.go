package primary

import "context"

// PermissionService defines the primary port for capability checks and
// role configuration.
type PermissionService interface {
	// Check returns a permission error unless the acting user holds function.
	Check(ctx context.Context, req CheckRequest) error

	// SetRole binds a function to a role.
	SetRole(ctx context.Context, function string, roleID int64) error

	// ListRoles lists every function with its bound role.
	ListRoles(ctx context.Context) ([]*RoleBinding, error)
}

// CheckRequest describes a capability check.
type CheckRequest struct {
	Function string
	// CaseCreatorID lets the creator of the case pass evidence checks.
	CaseCreatorID int64
}

// RoleBinding is one function-to-role binding. RoleID is 0 when unbound.
type RoleBinding struct {
	Function string
	RoleID   int64
}
