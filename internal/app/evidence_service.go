package app

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/example/court/internal/core/caselife"
	"github.com/example/court/internal/core/evidence"
	"github.com/example/court/internal/core/permission"
	"github.com/example/court/internal/ctxutil"
	"github.com/example/court/internal/ports/primary"
	"github.com/example/court/internal/ports/secondary"
)

// EvidenceServiceImpl implements the EvidenceService interface.
type EvidenceServiceImpl struct {
	caseRepo     secondary.CaseRepository
	evidenceRepo secondary.EvidenceRepository
	permissions  primary.PermissionService
	platform     secondary.ChatPlatform
	logWriter    secondary.LogWriter
	logger       *zap.SugaredLogger
	locks        *keyedMutex
}

// NewEvidenceService creates a new EvidenceService with injected dependencies.
func NewEvidenceService(
	caseRepo secondary.CaseRepository,
	evidenceRepo secondary.EvidenceRepository,
	permissions primary.PermissionService,
	platform secondary.ChatPlatform,
	logWriter secondary.LogWriter,
	logger *zap.SugaredLogger,
) *EvidenceServiceImpl {
	return &EvidenceServiceImpl{
		caseRepo:     caseRepo,
		evidenceRepo: evidenceRepo,
		permissions:  permissions,
		platform:     platform,
		logWriter:    logWriter,
		logger:       logger,
		locks:        newKeyedMutex(),
	}
}

// AddEvidence appends an item to the case bound to the channel.
func (s *EvidenceServiceImpl) AddEvidence(ctx context.Context, req primary.AddEvidenceRequest) (*primary.Evidence, error) {
	c, err := s.caseRepo.GetByChannel(ctx, req.ChannelID)
	if err != nil {
		return nil, err
	}
	if err := s.permissions.Check(ctx, primary.CheckRequest{
		Function:      string(permission.FunctionEvidenceManagement),
		CaseCreatorID: c.CreatorID,
	}); err != nil {
		return nil, err
	}
	if err := evidence.ValidateSubmission(req.Description, req.Link); err != nil {
		return nil, err
	}

	item := &secondary.EvidenceRecord{
		CaseID:      c.ID,
		SubmitterID: ctxutil.ActorFromContext(ctx),
		Description: strings.TrimSpace(req.Description),
		Link:        strings.TrimSpace(req.Link),
	}

	unlock := s.locks.Lock(c.ID)
	position, err := s.evidenceRepo.Add(ctx, item)
	unlock()
	if err != nil {
		return nil, fmt.Errorf("failed to add evidence: %w", err)
	}

	displayID := evidence.Format(c.ID, position)
	_ = s.logWriter.LogCreate(ctx, "evidence", displayID)
	s.logger.Infow("evidence added", "case_id", c.ID, "evidence_id", displayID)

	s.notice(ctx, c.ChannelID, "Evidence registered", fmt.Sprintf("**%s** %s\n%s", displayID, item.Description, item.Link), caselife.ColorSuccess)

	return recordToEvidence(item), nil
}

// RemoveEvidence removes the item currently shown under the display id.
func (s *EvidenceServiceImpl) RemoveEvidence(ctx context.Context, req primary.RemoveEvidenceRequest) (*primary.Evidence, error) {
	id, err := evidence.ParseDisplayID(strings.TrimSpace(req.DisplayID))
	if err != nil {
		return nil, err
	}
	c, err := s.caseRepo.GetByChannel(ctx, req.ChannelID)
	if err != nil {
		return nil, err
	}
	if err := s.permissions.Check(ctx, primary.CheckRequest{Function: string(permission.FunctionEvidenceManagement)}); err != nil {
		return nil, err
	}
	if err := evidence.CheckBelongsTo(id, c.ID); err != nil {
		return nil, err
	}

	unlock := s.locks.Lock(c.ID)
	removed, err := s.evidenceRepo.RemoveAt(ctx, c.ID, id.Position)
	unlock()
	if err != nil {
		return nil, err
	}

	_ = s.logWriter.LogDelete(ctx, "evidence", id.String())
	s.logger.Infow("evidence removed", "case_id", c.ID, "evidence_id", id.String())

	s.notice(ctx, c.ChannelID, "Evidence removed", fmt.Sprintf("**%s** %s\nLater evidence numbers have moved down by one.", id, removed.Description), caselife.ColorWarning)

	return recordToEvidence(removed), nil
}

// ListEvidence lists the items of the case bound to a channel.
func (s *EvidenceServiceImpl) ListEvidence(ctx context.Context, channelID int64) ([]*primary.Evidence, error) {
	c, err := s.caseRepo.GetByChannel(ctx, channelID)
	if err != nil {
		return nil, err
	}
	records, err := s.evidenceRepo.List(ctx, c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list evidence: %w", err)
	}
	items := make([]*primary.Evidence, len(records))
	for i, r := range records {
		items[i] = recordToEvidence(r)
	}
	return items, nil
}

// notice posts a ledger notice into the case channel. Failures are logged only.
func (s *EvidenceServiceImpl) notice(ctx context.Context, channelID int64, title, body string, color int) {
	_, err := s.platform.SendMessage(ctx, channelID, secondary.OutgoingMessage{
		Embed: &secondary.EmbedRecord{Title: title, Description: body, Color: color},
	})
	if err != nil {
		s.logger.Warnw("evidence notice not posted", "channel_id", channelID, "error", err)
	}
}

func recordToEvidence(r *secondary.EvidenceRecord) *primary.Evidence {
	return &primary.Evidence{
		DisplayID:   evidence.Format(r.CaseID, r.Position),
		CaseID:      r.CaseID,
		Position:    r.Position,
		SubmitterID: r.SubmitterID,
		Description: r.Description,
		Link:        r.Link,
		SubmittedAt: r.SubmittedAt,
	}
}

// Ensure EvidenceServiceImpl implements the interface
var _ primary.EvidenceService = (*EvidenceServiceImpl)(nil)
