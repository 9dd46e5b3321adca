package app

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/example/court/internal/core/caselife"
	"github.com/example/court/internal/core/category"
	"github.com/example/court/internal/core/courterr"
	"github.com/example/court/internal/core/effects"
	"github.com/example/court/internal/core/permission"
	"github.com/example/court/internal/ctxutil"
	"github.com/example/court/internal/ports/primary"
	"github.com/example/court/internal/ports/secondary"
)

// LifecycleServiceImpl implements the LifecycleService interface.
type LifecycleServiceImpl struct {
	caseRepo     secondary.CaseRepository
	judgeRepo    secondary.JudgeRepository
	categoryRepo secondary.CategoryRepository
	permissions  primary.PermissionService
	transcripts  primary.TranscriptService
	documents    secondary.DocumentStore
	platform     secondary.ChatPlatform
	executor     EffectExecutor
	logWriter    secondary.LogWriter
	logger       *zap.SugaredLogger
	now          func() time.Time
}

// LifecycleDeps groups the dependencies of the lifecycle service.
type LifecycleDeps struct {
	Cases       secondary.CaseRepository
	Judges      secondary.JudgeRepository
	Categories  secondary.CategoryRepository
	Permissions primary.PermissionService
	Transcripts primary.TranscriptService
	Documents   secondary.DocumentStore
	Platform    secondary.ChatPlatform
	Executor    EffectExecutor
	LogWriter   secondary.LogWriter
	Logger      *zap.SugaredLogger
}

// NewLifecycleService creates a new LifecycleService with injected dependencies.
func NewLifecycleService(deps LifecycleDeps) *LifecycleServiceImpl {
	return &LifecycleServiceImpl{
		caseRepo:     deps.Cases,
		judgeRepo:    deps.Judges,
		categoryRepo: deps.Categories,
		permissions:  deps.Permissions,
		transcripts:  deps.Transcripts,
		documents:    deps.Documents,
		platform:     deps.Platform,
		executor:     deps.Executor,
		logWriter:    deps.LogWriter,
		logger:       deps.Logger,
		now:          func() time.Time { return time.Now().UTC() },
	}
}

func (s *LifecycleServiceImpl) require(ctx context.Context, fn permission.Function) error {
	return s.permissions.Check(ctx, primary.CheckRequest{Function: string(fn)})
}

func (s *LifecycleServiceImpl) caseID(c *secondary.CaseRecord) string {
	return strconv.FormatInt(c.ID, 10)
}

// Claim assigns the case to the acting judge and moves its channel into the
// judge's category.
func (s *LifecycleServiceImpl) Claim(ctx context.Context, req primary.CaseActionRequest) (*primary.ActionResponse, error) {
	const op = "case.claim"

	callerIsJudge := true
	if err := s.require(ctx, permission.FunctionJudge); err != nil {
		if courterr.KindOf(err) != courterr.KindPermission {
			return nil, err
		}
		callerIsJudge = false
	}

	c, err := s.caseRepo.GetByChannel(ctx, req.ChannelID)
	if err != nil {
		return nil, err
	}

	actor := ctxutil.ActorFromContext(ctx)
	judge, err := s.judgeRepo.GetByUser(ctx, actor)
	if err != nil && !errors.Is(err, courterr.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up judge: %w", err)
	}

	guard := caselife.CanClaim(caselife.ClaimContext{
		Case:           caseState(c),
		CallerIsJudge:  callerIsJudge,
		JudgeQuartered: judge != nil,
	})
	if err := guard.Error(op); err != nil {
		return nil, err
	}

	if err := s.caseRepo.Assign(ctx, c.ID, actor); err != nil {
		return nil, err
	}
	_ = s.logWriter.LogUpdate(ctx, "case", s.caseID(c), "status", c.Status, string(caselife.StatusAssigned))
	_ = s.logWriter.LogUpdate(ctx, "case", s.caseID(c), "assigned_judge_id", "", strconv.FormatInt(actor, 10))

	judgeName := mention(actor)
	if m, err := s.platform.GetMember(ctx, actor); err == nil {
		judgeName = m.DisplayName
	}

	effs := caselife.PlanJudgeQuarters(c.ChannelID, judge.CategoryID, actor)
	effs = append(effs, effects.NoticeEffect{
		ChannelID: c.ChannelID,
		Title:     "Case assigned",
		Body:      fmt.Sprintf("Case #%d has been assigned to %s.", c.ID, mention(actor)),
		Color:     caselife.ColorSuccess,
	})
	if dm, err := renderMessage("claimed_dm", map[string]any{"CaseID": c.ID, "Title": c.Title, "Judge": judgeName}); err == nil {
		effs = append(effs, effects.DirectMessageEffect{UserID: c.CreatorID, Body: dm, BestEffort: true})
	}

	resp := &primary.ActionResponse{CaseID: c.ID, Message: fmt.Sprintf("Case #%d assigned to %s", c.ID, judgeName)}
	if err := s.executor.Execute(ctx, effs); err != nil {
		s.logger.Warnw("claim placement incomplete", "case_id", c.ID, "error", err)
		resp.Warnings = append(resp.Warnings, "channel placement failed, run case relocate: "+courterr.Message(err))
	}
	s.logger.Infow("case claimed", "case_id", c.ID, "judge_id", actor)
	return resp, nil
}

// Move moves the case channel to a registered category resolved by name.
func (s *LifecycleServiceImpl) Move(ctx context.Context, req primary.MoveRequest) (*primary.ActionResponse, error) {
	const op = "case.move"

	if err := s.require(ctx, permission.FunctionJudge); err != nil {
		return nil, err
	}
	c, err := s.caseRepo.GetByChannel(ctx, req.ChannelID)
	if err != nil {
		return nil, err
	}
	if err := caselife.CanMove(caseState(c)).Error(op); err != nil {
		return nil, err
	}

	records, err := s.categoryRepo.List(ctx, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	candidates := make([]category.Candidate, len(records))
	for i, r := range records {
		candidates[i] = category.Candidate{CategoryID: r.CategoryID, Name: r.Name, RoleID: r.RoleID, Kind: category.Kind(r.Kind)}
	}
	target, err := category.Resolve(req.CategoryName, candidates)
	if err != nil {
		return nil, err
	}

	effs := caselife.PlanCategoryMove(c.ChannelID, target.CategoryID, target.RoleID)
	effs = append(effs, effects.NoticeEffect{
		ChannelID: c.ChannelID,
		Title:     "Case moved",
		Body:      fmt.Sprintf("Case #%d has been moved to %s.", c.ID, target.Name),
		Color:     caselife.ColorInfo,
	})
	if err := s.executor.Execute(ctx, effs); err != nil {
		return nil, err
	}
	s.logger.Infow("case moved", "case_id", c.ID, "category_id", target.CategoryID)
	return &primary.ActionResponse{CaseID: c.ID, Message: fmt.Sprintf("Case #%d moved to %s", c.ID, target.Name)}, nil
}

// archiveCategory returns the registered archive category id.
func (s *LifecycleServiceImpl) archiveCategory(ctx context.Context) (int64, error) {
	cat, err := s.categoryRepo.GetArchive(ctx)
	if err != nil {
		return 0, err
	}
	return cat.CategoryID, nil
}

// closureEffects places a closed case in the archive and posts the notice
// carrying the delete affordance.
func (s *LifecycleServiceImpl) closureEffects(c *secondary.CaseRecord, archiveID int64, reason string) []effects.Effect {
	effs := caselife.PlanArchive(caselife.ArchivePlacement{
		ChannelID:         c.ChannelID,
		ArchiveCategoryID: archiveID,
		EveryoneRoleID:    s.platform.GuildID(),
		RevokeSend:        true,
	})
	body := fmt.Sprintf("Case #%d has been closed and archived.", c.ID)
	if reason != "" {
		body += "\n\n**Reason:** " + reason
	}
	return append(effs, effects.NoticeEffect{
		ChannelID:    c.ChannelID,
		Title:        "Case closed",
		Body:         body,
		Color:        caselife.ColorClosed,
		DeleteButton: true,
	})
}

// Close closes the case without exporting a transcript.
func (s *LifecycleServiceImpl) Close(ctx context.Context, req primary.CaseActionRequest) (*primary.ActionResponse, error) {
	const op = "case.close"

	if err := s.require(ctx, permission.FunctionCaseManagement); err != nil {
		return nil, err
	}
	c, err := s.caseRepo.GetByChannel(ctx, req.ChannelID)
	if err != nil {
		return nil, err
	}
	if err := caselife.CanClose(caseState(c)).Error(op); err != nil {
		return nil, err
	}
	archiveID, err := s.archiveCategory(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.caseRepo.Close(ctx, c.ID, secondary.CloseFields{ClosedAt: s.now()}); err != nil {
		return nil, err
	}
	_ = s.logWriter.LogUpdate(ctx, "case", s.caseID(c), "status", c.Status, string(caselife.StatusClosed))

	resp := &primary.ActionResponse{CaseID: c.ID, Message: fmt.Sprintf("Case #%d closed", c.ID)}
	if err := s.executor.Execute(ctx, s.closureEffects(c, archiveID, "")); err != nil {
		s.logger.Warnw("close placement incomplete", "case_id", c.ID, "error", err)
		resp.Warnings = append(resp.Warnings, "archive placement failed, run case relocate: "+courterr.Message(err))
	}
	s.logger.Infow("case closed", "case_id", c.ID)
	return resp, nil
}

// saga tracks one close-with-reason run.
type saga struct {
	report   *primary.CloseReport
	progress func(primary.StepReport)
	logger   *zap.SugaredLogger
}

var sagaSteps = []string{primary.StepExport, primary.StepStore, primary.StepNotify, primary.StepCommit, primary.StepRelocate}

func (g *saga) record(step, outcome, detail string) {
	r := primary.StepReport{Step: step, Outcome: outcome, Detail: detail}
	for i, name := range sagaSteps {
		if name == step {
			r.Index = i + 1
		}
	}
	g.report.Steps = append(g.report.Steps, r)
	switch outcome {
	case primary.StepFailed:
		g.logger.Errorw("close step failed", "step", step, "detail", detail)
	case primary.StepWarning:
		g.logger.Warnw("close step warning", "step", step, "detail", detail)
	default:
		g.logger.Infow("close step done", "step", step, "outcome", outcome)
	}
	if g.progress != nil {
		g.progress(r)
	}
}

// abort marks step failed and every later step skipped.
func (g *saga) abort(step string, err error) error {
	g.record(step, primary.StepFailed, courterr.Message(err))
	skipping := false
	for _, name := range sagaSteps {
		if skipping {
			g.record(name, primary.StepSkipped, "")
		}
		if name == step {
			skipping = true
		}
	}
	return err
}

// CloseWithReason runs export, store, notify, commit and relocate in order.
// Export and store failures abort with no state change. The commit is the
// durability point: later failures are warnings and nothing is rolled back.
func (s *LifecycleServiceImpl) CloseWithReason(ctx context.Context, req primary.CloseWithReasonRequest) (*primary.CloseReport, error) {
	const op = "case.close_with_reason"

	if err := s.require(ctx, permission.FunctionJudge); err != nil {
		return nil, err
	}
	c, err := s.caseRepo.GetByChannel(ctx, req.ChannelID)
	if err != nil {
		return nil, err
	}
	reason := strings.TrimSpace(req.Reason)
	if err := caselife.CanCloseWithReason(caseState(c), reason).Error(op); err != nil {
		return nil, err
	}
	archiveID, err := s.archiveCategory(ctx)
	if err != nil {
		return nil, err
	}

	runID := uuid.NewString()
	g := &saga{
		report:   &primary.CloseReport{RunID: runID, CaseID: c.ID},
		progress: req.Progress,
		logger:   s.logger.With("run_id", runID, "case_id", c.ID, "channel_id", c.ChannelID),
	}

	// 1. export
	doc, err := s.transcripts.ExportCase(ctx, primary.ExportCaseRequest{CaseID: c.ID})
	if err != nil {
		return g.report, g.abort(primary.StepExport, err)
	}
	g.record(primary.StepExport, primary.StepOK, fmt.Sprintf("%d messages, %s", doc.MessageCount, doc.Name))

	// 2. store
	ref, err := s.documents.Store(ctx, secondary.Document{
		Name:        doc.Name,
		ContentType: "text/html; charset=utf-8",
		Data:        doc.Data,
		CaseID:      c.ID,
		Caption:     fmt.Sprintf("**Case #%d closed:** %s\n**Reason:** %s", c.ID, c.Title, reason),
	})
	if err != nil {
		return g.report, g.abort(primary.StepStore, err)
	}
	g.report.ArchiveRef = ref
	g.record(primary.StepStore, primary.StepOK, ref)

	// 3. notify
	dm, err := renderMessage("closed_dm", map[string]any{"CaseID": c.ID, "Title": c.Title, "Reason": reason, "ArchiveRef": ref})
	if err == nil {
		_, err = s.platform.SendDirectMessage(ctx, c.CreatorID, secondary.OutgoingMessage{Content: dm})
	}
	if err != nil {
		g.record(primary.StepNotify, primary.StepWarning, "creator not notified: "+courterr.Message(err))
	} else {
		g.record(primary.StepNotify, primary.StepOK, "")
	}

	// 4. commit
	if err := s.caseRepo.Close(ctx, c.ID, secondary.CloseFields{ClosedAt: s.now(), Reason: reason, ArchiveRef: ref}); err != nil {
		return g.report, g.abort(primary.StepCommit, err)
	}
	g.report.Committed = true
	_ = s.logWriter.LogUpdate(ctx, "case", s.caseID(c), "status", c.Status, string(caselife.StatusClosed))
	_ = s.logWriter.LogUpdate(ctx, "case", s.caseID(c), "archive_ref", "", ref)
	g.record(primary.StepCommit, primary.StepOK, "")

	// 5. relocate
	if err := s.executor.Execute(ctx, s.closureEffects(c, archiveID, reason)); err != nil {
		g.record(primary.StepRelocate, primary.StepWarning, "channel not archived, run case relocate: "+courterr.Message(err))
	} else {
		g.record(primary.StepRelocate, primary.StepOK, "")
	}
	return g.report, nil
}

// Archive places the case in the archive without closing it.
func (s *LifecycleServiceImpl) Archive(ctx context.Context, req primary.CaseActionRequest) (*primary.ActionResponse, error) {
	const op = "case.archive"

	if err := s.require(ctx, permission.FunctionCaseManagement); err != nil {
		return nil, err
	}
	c, err := s.caseRepo.GetByChannel(ctx, req.ChannelID)
	if err != nil {
		return nil, err
	}
	if err := caselife.CanArchive(caseState(c)).Error(op); err != nil {
		return nil, err
	}
	archiveID, err := s.archiveCategory(ctx)
	if err != nil {
		return nil, err
	}

	if err := s.caseRepo.MarkArchived(ctx, c.ID); err != nil {
		return nil, err
	}
	_ = s.logWriter.LogUpdate(ctx, "case", s.caseID(c), "archived", "false", "true")

	effs := caselife.PlanArchive(caselife.ArchivePlacement{
		ChannelID:         c.ChannelID,
		ArchiveCategoryID: archiveID,
		EveryoneRoleID:    s.platform.GuildID(),
	})
	effs = append(effs, effects.NoticeEffect{
		ChannelID: c.ChannelID,
		Title:     "Case archived",
		Body:      fmt.Sprintf("Case #%d has been archived. It stays %s.", c.ID, strings.ToLower(caselife.Status(c.Status).Label())),
		Color:     caselife.ColorArchive,
	})

	resp := &primary.ActionResponse{CaseID: c.ID, Message: fmt.Sprintf("Case #%d archived", c.ID)}
	if err := s.executor.Execute(ctx, effs); err != nil {
		s.logger.Warnw("archive placement incomplete", "case_id", c.ID, "error", err)
		resp.Warnings = append(resp.Warnings, "archive placement failed, run case relocate: "+courterr.Message(err))
	}
	s.logger.Infow("case archived", "case_id", c.ID)
	return resp, nil
}

// Relocate re-applies the channel placement implied by the stored state.
func (s *LifecycleServiceImpl) Relocate(ctx context.Context, req primary.CaseActionRequest) (*primary.ActionResponse, error) {
	const op = "case.relocate"

	if err := s.require(ctx, permission.FunctionCaseManagement); err != nil {
		return nil, err
	}
	c, err := s.caseRepo.GetByChannel(ctx, req.ChannelID)
	if err != nil {
		return nil, err
	}

	targets := caselife.RelocationTargets{
		ChannelID:        c.ChannelID,
		OriginCategoryID: c.CategoryID,
		JudgeID:          c.AssignedJudgeID,
		EveryoneRoleID:   s.platform.GuildID(),
	}
	if origin, err := s.categoryRepo.GetByID(ctx, c.CategoryID); err == nil {
		targets.OriginRoleID = origin.RoleID
	} else if !errors.Is(err, courterr.ErrNotFound) {
		return nil, err
	}
	if c.AssignedJudgeID != 0 {
		if j, err := s.judgeRepo.GetByUser(ctx, c.AssignedJudgeID); err == nil {
			targets.JudgeCategoryID = j.CategoryID
		} else if !errors.Is(err, courterr.ErrNotFound) {
			return nil, err
		}
	}
	if archiveID, err := s.archiveCategory(ctx); err == nil {
		targets.ArchiveCategoryID = archiveID
	} else if !errors.Is(err, courterr.ErrNotFound) {
		return nil, err
	}

	status := caselife.Status(c.Status)
	effs, guard := caselife.PlanRelocation(status, c.Archived, targets)
	if err := guard.Error(op); err != nil {
		return nil, err
	}
	if err := s.executor.Execute(ctx, effs); err != nil {
		return nil, err
	}

	placement := caselife.PlacementFor(status, c.Archived)
	s.logger.Infow("case relocated", "case_id", c.ID, "placement", placement)
	return &primary.ActionResponse{CaseID: c.ID, Message: fmt.Sprintf("Case #%d placed in %s category", c.ID, placement)}, nil
}

// LegacyArchive exports and stores a channel that was never registered as a case.
func (s *LifecycleServiceImpl) LegacyArchive(ctx context.Context, req primary.LegacyArchiveRequest) (*primary.LegacyArchiveResponse, error) {
	const op = "case.legacy_archive"

	if err := s.require(ctx, permission.FunctionJudge); err != nil {
		return nil, err
	}
	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, courterr.Validation(op, "a title is required")
	}
	existing, err := s.caseRepo.GetByChannel(ctx, req.ChannelID)
	switch {
	case err == nil:
		return nil, courterr.Conflict(op, "channel is registered as case #%d; close it instead", existing.ID)
	case !errors.Is(err, courterr.ErrNotFound):
		return nil, err
	}

	doc, err := s.transcripts.ExportChannel(ctx, primary.ExportChannelRequest{
		ChannelID:   req.ChannelID,
		Title:       title,
		Description: req.Description,
	})
	if err != nil {
		return nil, err
	}

	archivedBy := "court"
	if actor := ctxutil.ActorFromContext(ctx); actor != 0 {
		archivedBy = mention(actor)
	}
	ref, err := s.documents.Store(ctx, secondary.Document{
		Name:        doc.Name,
		ContentType: "text/html; charset=utf-8",
		Data:        doc.Data,
		Caption: fmt.Sprintf("**Legacy archive:** %s\n**Description:** %s\n**Archived by:** %s",
			title, req.Description, archivedBy),
	})
	if err != nil {
		return nil, err
	}
	_ = s.logWriter.LogCreate(ctx, "legacy_archive", strconv.FormatInt(req.ChannelID, 10))

	resp := &primary.LegacyArchiveResponse{ArchiveRef: ref, MessageCount: doc.MessageCount}
	if req.DeleteChannel {
		if err := s.platform.DeleteChannel(ctx, req.ChannelID, "legacy archive of "+title); err != nil {
			resp.Warnings = append(resp.Warnings, "channel not deleted: "+courterr.Message(err))
		} else {
			resp.ChannelDeleted = true
		}
	}
	s.logger.Infow("legacy channel archived", "channel_id", req.ChannelID, "ref", ref, "deleted", resp.ChannelDeleted)
	return resp, nil
}

// PostNote posts a judge note into the case channel.
func (s *LifecycleServiceImpl) PostNote(ctx context.Context, req primary.NoteRequest) error {
	if err := s.require(ctx, permission.FunctionJudge); err != nil {
		return err
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return courterr.Validation("case.note", "note text cannot be empty")
	}
	c, err := s.caseRepo.GetByChannel(ctx, req.ChannelID)
	if err != nil {
		return err
	}

	author := "the court"
	if actor := ctxutil.ActorFromContext(ctx); actor != 0 {
		author = mention(actor)
	}
	_, err = s.platform.SendMessage(ctx, c.ChannelID, secondary.OutgoingMessage{
		Embed: &secondary.EmbedRecord{
			Title:       caselife.NoteTitle,
			Description: text,
			Color:       caselife.ColorInfo,
			Fields:      []secondary.EmbedFieldRecord{{Name: "Written by", Value: author, Inline: true}},
		},
	})
	return err
}

// SendDirectMessage sends a DM to a user through the bot.
func (s *LifecycleServiceImpl) SendDirectMessage(ctx context.Context, req primary.DirectMessageRequest) error {
	if err := s.require(ctx, permission.FunctionJudge); err != nil {
		return err
	}
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return courterr.Validation("case.dm", "message text cannot be empty")
	}

	title := "Message from the court"
	if actor := ctxutil.ActorFromContext(ctx); actor != 0 {
		if m, err := s.platform.GetMember(ctx, actor); err == nil {
			title = "Message from judge " + m.DisplayName
		}
	}
	_, err := s.platform.SendDirectMessage(ctx, req.UserID, secondary.OutgoingMessage{
		Embed: &secondary.EmbedRecord{Title: title, Description: text, Color: caselife.ColorInfo},
	})
	if err != nil {
		return err
	}
	s.logger.Infow("direct message sent", "user_id", req.UserID)
	return nil
}

// DeleteChannel deletes a closed case's channel. The case record is kept.
func (s *LifecycleServiceImpl) DeleteChannel(ctx context.Context, req primary.CaseActionRequest) error {
	const op = "case.delete_channel"

	if err := s.require(ctx, permission.FunctionJudge); err != nil {
		return err
	}
	c, err := s.caseRepo.GetByChannel(ctx, req.ChannelID)
	if err != nil {
		return err
	}
	if err := caselife.CanDeleteChannel(caseState(c)).Error(op); err != nil {
		return err
	}
	if err := s.platform.DeleteChannel(ctx, c.ChannelID, fmt.Sprintf("case #%d closed", c.ID)); err != nil {
		return err
	}
	_ = s.logWriter.LogDelete(ctx, "case_channel", strconv.FormatInt(c.ChannelID, 10))
	s.logger.Infow("case channel deleted", "case_id", c.ID, "channel_id", c.ChannelID)
	return nil
}

// Ensure LifecycleServiceImpl implements the interface
var _ primary.LifecycleService = (*LifecycleServiceImpl)(nil)
