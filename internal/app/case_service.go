package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/example/court/internal/core/caselife"
	"github.com/example/court/internal/core/category"
	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/ctxutil"
	"github.com/example/court/internal/ports/primary"
	"github.com/example/court/internal/ports/secondary"
)

// searchLimit caps archive search results.
const searchLimit = 25

// CaseServiceImpl implements the CaseService interface.
type CaseServiceImpl struct {
	caseRepo     secondary.CaseRepository
	evidenceRepo secondary.EvidenceRepository
	categoryRepo secondary.CategoryRepository
	platform     secondary.ChatPlatform
	logWriter    secondary.LogWriter
	logger       *zap.SugaredLogger
}

// NewCaseService creates a new CaseService with injected dependencies.
func NewCaseService(
	caseRepo secondary.CaseRepository,
	evidenceRepo secondary.EvidenceRepository,
	categoryRepo secondary.CategoryRepository,
	platform secondary.ChatPlatform,
	logWriter secondary.LogWriter,
	logger *zap.SugaredLogger,
) *CaseServiceImpl {
	return &CaseServiceImpl{
		caseRepo:     caseRepo,
		evidenceRepo: evidenceRepo,
		categoryRepo: categoryRepo,
		platform:     platform,
		logWriter:    logWriter,
		logger:       logger,
	}
}

// OpenCase creates a case channel for the acting user in an intake category.
func (s *CaseServiceImpl) OpenCase(ctx context.Context, req primary.OpenCaseRequest) (*primary.OpenCaseResponse, error) {
	const op = "case.open"

	creator := ctxutil.ActorFromContext(ctx)
	if creator == 0 {
		return nil, courterr.Validation(op, "opening a case needs an acting user")
	}

	cat, err := s.categoryRepo.GetByID(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if category.Kind(cat.Kind) != category.KindIntake {
		return nil, courterr.Validation(op, "category %s is not an intake category", cat.Name)
	}

	member, err := s.platform.GetMember(ctx, creator)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve creator: %w", err)
	}

	nextID, err := s.caseRepo.NextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute case number: %w", err)
	}

	title := strings.TrimSpace(req.Title)
	if title == "" {
		title = "Case for " + member.DisplayName
	}

	overwrites := []secondary.PermissionOverwrite{
		{TargetID: s.platform.GuildID(), Target: secondary.OverwriteRole, Deny: secondary.PermissionView},
		{TargetID: creator, Target: secondary.OverwriteMember, Allow: secondary.PermissionView | secondary.PermissionSend},
	}
	if cat.RoleID != 0 {
		overwrites = append(overwrites, secondary.PermissionOverwrite{
			TargetID: cat.RoleID, Target: secondary.OverwriteRole, Allow: secondary.PermissionView | secondary.PermissionSend,
		})
	}

	channel, err := s.platform.CreateTextChannel(ctx, secondary.CreateChannelRequest{
		Name:       caselife.ChannelName(member.DisplayName, nextID),
		ParentID:   cat.CategoryID,
		Topic:      title,
		Overwrites: overwrites,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create case channel: %w", err)
	}

	created, err := s.caseRepo.Create(ctx, &secondary.CaseRecord{
		ChannelID:   channel.ID,
		CategoryID:  cat.CategoryID,
		CreatorID:   creator,
		Title:       title,
		Description: req.Description,
		Status:      string(caselife.InitialStatus()),
	})
	if err != nil {
		if delErr := s.platform.DeleteChannel(ctx, channel.ID, "case registration failed"); delErr != nil {
			s.logger.Warnw("orphaned case channel", "channel_id", channel.ID, "error", delErr)
		}
		return nil, fmt.Errorf("failed to register case: %w", err)
	}

	logger := s.logger.With("case_id", created.ID, "channel_id", channel.ID)
	if created.ID != nextID {
		logger.Infow("case number differs from channel name", "expected", nextID)
	}
	_ = s.logWriter.LogCreate(ctx, "case", strconv.FormatInt(created.ID, 10))

	welcome, err := renderMessage("welcome", map[string]any{"Mention": mention(creator), "CaseID": created.ID})
	if err == nil {
		_, err = s.platform.SendMessage(ctx, channel.ID, secondary.OutgoingMessage{
			Content: welcome,
			Embed: &secondary.EmbedRecord{
				Title:       fmt.Sprintf("Case #%d - %s", created.ID, title),
				Description: req.Description,
				Color:       caselife.ColorInfo,
			},
		})
	}
	if err != nil {
		logger.Warnw("welcome message not posted", "error", err)
	}
	logger.Infow("case opened", "creator_id", creator, "category_id", cat.CategoryID)

	return &primary.OpenCaseResponse{Case: recordToCase(created, 0)}, nil
}

// GetCase retrieves a case by id.
func (s *CaseServiceImpl) GetCase(ctx context.Context, caseID int64) (*primary.Case, error) {
	record, err := s.caseRepo.GetByID(ctx, caseID)
	if err != nil {
		return nil, err
	}
	return s.withEvidenceCount(ctx, record)
}

// GetCaseByChannel retrieves the case bound to a channel.
func (s *CaseServiceImpl) GetCaseByChannel(ctx context.Context, channelID int64) (*primary.Case, error) {
	record, err := s.caseRepo.GetByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	return s.withEvidenceCount(ctx, record)
}

func (s *CaseServiceImpl) withEvidenceCount(ctx context.Context, record *secondary.CaseRecord) (*primary.Case, error) {
	count, err := s.evidenceRepo.Count(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to count evidence: %w", err)
	}
	return recordToCase(record, count), nil
}

// ListCases lists cases with optional filters.
func (s *CaseServiceImpl) ListCases(ctx context.Context, filters primary.CaseFilters) ([]*primary.Case, error) {
	if filters.Status != "" && !caselife.Status(filters.Status).Valid() {
		return nil, courterr.Validation("case.list", "unknown status %q (valid: open, assigned, closed)", filters.Status)
	}
	records, err := s.caseRepo.List(ctx, secondary.CaseFilters{
		Status:   filters.Status,
		JudgeID:  filters.JudgeID,
		Archived: filters.Archived,
		Limit:    filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list cases: %w", err)
	}
	return recordsToCases(records), nil
}

// SearchArchive searches closed and archived cases.
func (s *CaseServiceImpl) SearchArchive(ctx context.Context, term string) ([]*primary.Case, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return nil, courterr.Validation("case.search", "search term cannot be empty")
	}
	records, err := s.caseRepo.Search(ctx, term, searchLimit)
	if err != nil {
		return nil, fmt.Errorf("failed to search archive: %w", err)
	}
	return recordsToCases(records), nil
}

// GetStats returns case statistics.
func (s *CaseServiceImpl) GetStats(ctx context.Context) (*primary.CaseStats, error) {
	stats, err := s.caseRepo.Stats(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load statistics: %w", err)
	}
	out := &primary.CaseStats{
		Total:    stats.Total,
		Open:     stats.ByStatus[string(caselife.StatusOpen)],
		Assigned: stats.ByStatus[string(caselife.StatusAssigned)],
		Closed:   stats.ByStatus[string(caselife.StatusClosed)],
		Archived: stats.Archived,
	}
	for _, j := range stats.ByJudge {
		out.ByJudge = append(out.ByJudge, primary.JudgeCaseCount{JudgeID: j.JudgeID, Total: j.Total, Active: j.Active})
	}
	return out, nil
}

// Helper methods

func recordsToCases(records []*secondary.CaseRecord) []*primary.Case {
	cases := make([]*primary.Case, len(records))
	for i, r := range records {
		cases[i] = recordToCase(r, 0)
	}
	return cases
}

func recordToCase(r *secondary.CaseRecord, evidenceCount int) *primary.Case {
	return &primary.Case{
		ID:              r.ID,
		ChannelID:       r.ChannelID,
		CategoryID:      r.CategoryID,
		CreatorID:       r.CreatorID,
		AssignedJudgeID: r.AssignedJudgeID,
		Title:           r.Title,
		Description:     r.Description,
		Status:          r.Status,
		StatusLabel:     caselife.Status(r.Status).Label(),
		Archived:        r.Archived,
		CreatedAt:       r.CreatedAt,
		ClosedAt:        r.ClosedAt,
		ClosingReason:   r.ClosingReason,
		ArchiveRef:      r.ArchiveRef,
		EvidenceCount:   evidenceCount,
	}
}

// caseState extracts the guard view of a case record.
func caseState(r *secondary.CaseRecord) caselife.CaseState {
	return caselife.CaseState{
		CaseID:          r.ID,
		Status:          caselife.Status(r.Status),
		Archived:        r.Archived,
		AssignedJudgeID: r.AssignedJudgeID,
	}
}

// Ensure CaseServiceImpl implements the interface
var _ primary.CaseService = (*CaseServiceImpl)(nil)
