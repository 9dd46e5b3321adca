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
	"github.com/example/court/internal/core/permission"
	"github.com/example/court/internal/ports/primary"
	"github.com/example/court/internal/ports/secondary"
)

const defaultButtonText = "Open case"

// PanelServiceImpl implements the PanelService interface.
type PanelServiceImpl struct {
	panelRepo    secondary.PanelRepository
	categoryRepo secondary.CategoryRepository
	permissions  primary.PermissionService
	platform     secondary.ChatPlatform
	logWriter    secondary.LogWriter
	logger       *zap.SugaredLogger
}

// NewPanelService creates a new PanelService with injected dependencies.
func NewPanelService(
	panelRepo secondary.PanelRepository,
	categoryRepo secondary.CategoryRepository,
	permissions primary.PermissionService,
	platform secondary.ChatPlatform,
	logWriter secondary.LogWriter,
	logger *zap.SugaredLogger,
) *PanelServiceImpl {
	return &PanelServiceImpl{
		panelRepo:    panelRepo,
		categoryRepo: categoryRepo,
		permissions:  permissions,
		platform:     platform,
		logWriter:    logWriter,
		logger:       logger,
	}
}

// CreatePanel registers the intake category and posts its panel.
func (s *PanelServiceImpl) CreatePanel(ctx context.Context, req primary.CreatePanelRequest) (*primary.Panel, error) {
	const op = "panel.create"

	title := strings.TrimSpace(req.Title)
	if title == "" {
		return nil, courterr.Validation(op, "panel title cannot be empty")
	}
	if err := s.permissions.Check(ctx, primary.CheckRequest{Function: string(permission.FunctionAdmin)}); err != nil {
		return nil, err
	}

	cat, err := s.platform.GetChannel(ctx, req.CategoryID)
	if err != nil {
		return nil, err
	}
	if !cat.Category {
		return nil, courterr.Validation(op, "channel %s is not a category", cat.Name)
	}
	if _, err := s.platform.GetChannel(ctx, req.ChannelID); err != nil {
		return nil, err
	}

	if err := s.categoryRepo.Upsert(ctx, &secondary.CategoryRecord{
		CategoryID: cat.ID,
		Name:       cat.Name,
		RoleID:     req.RoleID,
		Kind:       string(category.KindIntake),
	}); err != nil {
		return nil, fmt.Errorf("failed to register intake category: %w", err)
	}

	buttonText := strings.TrimSpace(req.ButtonText)
	if buttonText == "" {
		buttonText = defaultButtonText
	}
	sent, err := s.platform.SendMessage(ctx, req.ChannelID, secondary.OutgoingMessage{
		Embed: &secondary.EmbedRecord{Title: title, Description: req.Description, Color: caselife.ColorInfo},
		Buttons: []secondary.Button{{
			CustomID: caselife.IntakeButtonID(cat.ID),
			Label:    buttonText,
			Emoji:    req.Emoji,
		}},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to post panel: %w", err)
	}

	record := &secondary.PanelRecord{
		CategoryID:  cat.ID,
		ChannelID:   req.ChannelID,
		MessageID:   sent.ID,
		Title:       title,
		Description: req.Description,
		Emoji:       req.Emoji,
		ButtonText:  buttonText,
		RoleID:      req.RoleID,
	}
	id, err := s.panelRepo.Create(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to register panel: %w", err)
	}
	record.ID = id

	_ = s.logWriter.LogCreate(ctx, "panel", strconv.FormatInt(id, 10))
	s.logger.Infow("panel created", "panel_id", id, "category_id", cat.ID, "channel_id", req.ChannelID)
	return recordToPanel(record), nil
}

// ListPanels lists panels.
func (s *PanelServiceImpl) ListPanels(ctx context.Context) ([]*primary.Panel, error) {
	records, err := s.panelRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list panels: %w", err)
	}
	out := make([]*primary.Panel, len(records))
	for i, r := range records {
		out[i] = recordToPanel(r)
	}
	return out, nil
}

// ResolveButton maps an intake button custom id to its panel.
func (s *PanelServiceImpl) ResolveButton(ctx context.Context, customID string) (*primary.Panel, error) {
	categoryID, ok := caselife.ParseIntakeButtonID(customID)
	if !ok {
		return nil, courterr.Validation("panel.resolve", "unknown button %q", customID)
	}
	record, err := s.panelRepo.GetByCategory(ctx, categoryID)
	if err != nil {
		if courterr.KindOf(err) == courterr.KindNotFound {
			return nil, courterr.NotFound("panel.resolve", "this button is no longer registered")
		}
		return nil, err
	}
	return recordToPanel(record), nil
}

func recordToPanel(r *secondary.PanelRecord) *primary.Panel {
	return &primary.Panel{
		ID:          r.ID,
		CategoryID:  r.CategoryID,
		ChannelID:   r.ChannelID,
		MessageID:   r.MessageID,
		Title:       r.Title,
		Description: r.Description,
		Emoji:       r.Emoji,
		ButtonText:  r.ButtonText,
		RoleID:      r.RoleID,
		ButtonID:    caselife.IntakeButtonID(r.CategoryID),
	}
}

// Ensure PanelServiceImpl implements the interface
var _ primary.PanelService = (*PanelServiceImpl)(nil)
