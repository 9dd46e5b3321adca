package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/example/court/internal/core/category"
	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/core/permission"
	"github.com/example/court/internal/ports/primary"
	"github.com/example/court/internal/ports/secondary"
)

// JudgeServiceImpl implements the JudgeService interface.
type JudgeServiceImpl struct {
	judgeRepo    secondary.JudgeRepository
	categoryRepo secondary.CategoryRepository
	caseRepo     secondary.CaseRepository
	permissions  primary.PermissionService
	platform     secondary.ChatPlatform
	logWriter    secondary.LogWriter
	logger       *zap.SugaredLogger
	judgeRoleID  int64
}

// NewJudgeService creates a new JudgeService with injected dependencies.
// judgeRoleID is granted to appointed judges when non-zero.
func NewJudgeService(
	judgeRepo secondary.JudgeRepository,
	categoryRepo secondary.CategoryRepository,
	caseRepo secondary.CaseRepository,
	permissions primary.PermissionService,
	platform secondary.ChatPlatform,
	logWriter secondary.LogWriter,
	logger *zap.SugaredLogger,
	judgeRoleID int64,
) *JudgeServiceImpl {
	return &JudgeServiceImpl{
		judgeRepo:    judgeRepo,
		categoryRepo: categoryRepo,
		caseRepo:     caseRepo,
		permissions:  permissions,
		platform:     platform,
		logWriter:    logWriter,
		logger:       logger,
		judgeRoleID:  judgeRoleID,
	}
}

// AppointJudge creates the judge's category and registers the judge.
func (s *JudgeServiceImpl) AppointJudge(ctx context.Context, req primary.AppointJudgeRequest) (*primary.Judge, error) {
	if err := s.permissions.Check(ctx, primary.CheckRequest{Function: string(permission.FunctionAdmin)}); err != nil {
		return nil, err
	}

	member, err := s.platform.GetMember(ctx, req.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve member: %w", err)
	}
	if member.Bot {
		return nil, courterr.Validation("judge.appoint", "bots cannot be appointed as judges")
	}

	name := strings.TrimSpace(req.CategoryName)
	if name == "" {
		name = "Judge " + member.DisplayName
	}

	cat, err := s.platform.CreateCategory(ctx, name, []secondary.PermissionOverwrite{
		{TargetID: s.platform.GuildID(), Target: secondary.OverwriteRole, Deny: secondary.PermissionView},
		{TargetID: req.UserID, Target: secondary.OverwriteMember, Allow: secondary.PermissionView | secondary.PermissionSend},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create judge category: %w", err)
	}

	if err := s.categoryRepo.Upsert(ctx, &secondary.CategoryRecord{
		CategoryID: cat.ID,
		Name:       cat.Name,
		Kind:       string(category.KindJudge),
	}); err != nil {
		s.cleanupCategory(ctx, cat.ID)
		return nil, fmt.Errorf("failed to register judge category: %w", err)
	}
	record := &secondary.JudgeRecord{UserID: req.UserID, CategoryID: cat.ID, CategoryName: cat.Name}
	if err := s.judgeRepo.Upsert(ctx, record); err != nil {
		_ = s.categoryRepo.Delete(ctx, cat.ID)
		s.cleanupCategory(ctx, cat.ID)
		return nil, fmt.Errorf("failed to register judge: %w", err)
	}

	if s.judgeRoleID != 0 {
		if err := s.platform.AddMemberRole(ctx, req.UserID, s.judgeRoleID); err != nil {
			s.logger.Warnw("judge role not granted", "user_id", req.UserID, "error", err)
		}
	}

	_ = s.logWriter.LogCreate(ctx, "judge", strconv.FormatInt(req.UserID, 10))
	s.logger.Infow("judge appointed", "user_id", req.UserID, "category_id", cat.ID)
	return recordToJudge(record), nil
}

func (s *JudgeServiceImpl) cleanupCategory(ctx context.Context, categoryID int64) {
	if err := s.platform.DeleteChannel(ctx, categoryID, "judge registration failed"); err != nil {
		s.logger.Warnw("orphaned judge category", "category_id", categoryID, "error", err)
	}
}

// DismissJudge removes a judge who holds no active assigned cases.
func (s *JudgeServiceImpl) DismissJudge(ctx context.Context, userID int64) (*primary.DismissJudgeResponse, error) {
	const op = "judge.dismiss"

	if err := s.permissions.Check(ctx, primary.CheckRequest{Function: string(permission.FunctionAdmin)}); err != nil {
		return nil, err
	}
	judge, err := s.judgeRepo.GetByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	active, err := s.caseRepo.CountOpenAssigned(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to count assigned cases: %w", err)
	}
	if active > 0 {
		return nil, courterr.Conflict(op, "judge still holds %d active case(s); reassign or close them first", active)
	}

	if err := s.judgeRepo.Delete(ctx, userID); err != nil {
		return nil, err
	}
	if err := s.categoryRepo.Delete(ctx, judge.CategoryID); err != nil && courterr.KindOf(err) != courterr.KindNotFound {
		return nil, fmt.Errorf("failed to unregister judge category: %w", err)
	}
	_ = s.logWriter.LogDelete(ctx, "judge", strconv.FormatInt(userID, 10))

	resp := &primary.DismissJudgeResponse{}
	if s.judgeRoleID != 0 {
		if err := s.platform.RemoveMemberRole(ctx, userID, s.judgeRoleID); err != nil {
			resp.Warnings = append(resp.Warnings, "judge role not removed: "+courterr.Message(err))
		}
	}
	if err := s.platform.DeleteChannel(ctx, judge.CategoryID, "judge dismissed"); err != nil {
		resp.Warnings = append(resp.Warnings, "judge category not deleted: "+courterr.Message(err))
	}
	for _, w := range resp.Warnings {
		s.logger.Warnw("judge dismissal incomplete", "user_id", userID, "warning", w)
	}
	s.logger.Infow("judge dismissed", "user_id", userID)
	return resp, nil
}

// ListJudges lists registered judges.
func (s *JudgeServiceImpl) ListJudges(ctx context.Context) ([]*primary.Judge, error) {
	records, err := s.judgeRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list judges: %w", err)
	}
	judges := make([]*primary.Judge, len(records))
	for i, r := range records {
		judges[i] = recordToJudge(r)
	}
	return judges, nil
}

func recordToJudge(r *secondary.JudgeRecord) *primary.Judge {
	return &primary.Judge{UserID: r.UserID, CategoryID: r.CategoryID, CategoryName: r.CategoryName}
}

// Ensure JudgeServiceImpl implements the interface
var _ primary.JudgeService = (*JudgeServiceImpl)(nil)
