package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/core/permission"
	"github.com/example/court/internal/ctxutil"
	"github.com/example/court/internal/ports/primary"
	"github.com/example/court/internal/ports/secondary"
)

// PermissionServiceImpl implements the PermissionService interface.
type PermissionServiceImpl struct {
	roleRepo  secondary.RolePermissionRepository
	judgeRepo secondary.JudgeRepository
	platform  secondary.ChatPlatform
	logWriter secondary.LogWriter
	logger    *zap.SugaredLogger
}

// NewPermissionService creates a new PermissionService with injected dependencies.
func NewPermissionService(
	roleRepo secondary.RolePermissionRepository,
	judgeRepo secondary.JudgeRepository,
	platform secondary.ChatPlatform,
	logWriter secondary.LogWriter,
	logger *zap.SugaredLogger,
) *PermissionServiceImpl {
	return &PermissionServiceImpl{
		roleRepo:  roleRepo,
		judgeRepo: judgeRepo,
		platform:  platform,
		logWriter: logWriter,
		logger:    logger,
	}
}

// Check returns a permission error unless the acting user holds the function.
// A context without an actor is the local operator and passes every check.
func (s *PermissionServiceImpl) Check(ctx context.Context, req primary.CheckRequest) error {
	fn, err := permission.ParseFunction(req.Function)
	if err != nil {
		return err
	}
	actor := ctxutil.ActorFromContext(ctx)
	if actor == 0 {
		return nil
	}

	member, err := s.platform.GetMember(ctx, actor)
	if err != nil {
		return fmt.Errorf("failed to resolve member: %w", err)
	}

	check := permission.CheckContext{
		Member: permission.Member{
			UserID:        member.UserID,
			RoleIDs:       member.RoleIDs,
			Administrator: member.Administrator,
			GuildOwner:    member.Owner,
		},
		Function:    fn,
		CaseCreator: req.CaseCreatorID != 0 && req.CaseCreatorID == actor,
	}

	if fn == permission.FunctionJudge || fn == permission.FunctionEvidenceManagement {
		registered, err := s.isJudge(ctx, actor)
		if err != nil {
			return err
		}
		check.RegisteredJudge = registered
	}

	binding, err := s.roleRepo.Get(ctx, s.platform.GuildID(), string(fn))
	if err != nil {
		return fmt.Errorf("failed to load role binding: %w", err)
	}
	if binding != nil {
		check.RoleID = binding.RoleID
		guild, err := s.platform.GetGuild(ctx)
		if err != nil {
			return fmt.Errorf("failed to load guild roles: %w", err)
		}
		check.RoleExists = guild.HasRole(binding.RoleID)
	}

	result := permission.Evaluate(check)
	if !result.Allowed {
		s.logger.Debugw("capability denied", "user_id", actor, "function", fn, "reason", result.Reason)
	}
	return result.Error("permission.check")
}

func (s *PermissionServiceImpl) isJudge(ctx context.Context, userID int64) (bool, error) {
	_, err := s.judgeRepo.GetByUser(ctx, userID)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, courterr.ErrNotFound):
		return false, nil
	default:
		return false, fmt.Errorf("failed to look up judge: %w", err)
	}
}

// SetRole binds a function to a role. Requires the admin capability.
func (s *PermissionServiceImpl) SetRole(ctx context.Context, function string, roleID int64) error {
	fn, err := permission.ParseFunction(function)
	if err != nil {
		return err
	}
	if err := s.Check(ctx, primary.CheckRequest{Function: string(permission.FunctionAdmin)}); err != nil {
		return err
	}

	guild, err := s.platform.GetGuild(ctx)
	if err != nil {
		return fmt.Errorf("failed to load guild roles: %w", err)
	}
	if !guild.HasRole(roleID) {
		return courterr.NotFound("permission.set_role", "role %d does not exist in this guild", roleID)
	}

	previous, err := s.roleRepo.Get(ctx, guild.ID, string(fn))
	if err != nil {
		return fmt.Errorf("failed to load role binding: %w", err)
	}
	if err := s.roleRepo.Set(ctx, &secondary.RolePermissionRecord{GuildID: guild.ID, Function: string(fn), RoleID: roleID}); err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}

	old := ""
	if previous != nil {
		old = strconv.FormatInt(previous.RoleID, 10)
	}
	_ = s.logWriter.LogUpdate(ctx, "role_permission", string(fn), "role_id", old, strconv.FormatInt(roleID, 10))
	return nil
}

// ListRoles lists every function with its bound role.
func (s *PermissionServiceImpl) ListRoles(ctx context.Context) ([]*primary.RoleBinding, error) {
	records, err := s.roleRepo.List(ctx, s.platform.GuildID())
	if err != nil {
		return nil, fmt.Errorf("failed to list roles: %w", err)
	}
	bound := make(map[string]int64, len(records))
	for _, r := range records {
		bound[r.Function] = r.RoleID
	}

	bindings := make([]*primary.RoleBinding, len(permission.Functions))
	for i, fn := range permission.Functions {
		bindings[i] = &primary.RoleBinding{Function: string(fn), RoleID: bound[string(fn)]}
	}
	return bindings, nil
}

// Ensure PermissionServiceImpl implements the interface
var _ primary.PermissionService = (*PermissionServiceImpl)(nil)
