package app

import (
	"context"
	"errors"
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

// CategoryServiceImpl implements the CategoryService interface.
type CategoryServiceImpl struct {
	categoryRepo secondary.CategoryRepository
	permissions  primary.PermissionService
	platform     secondary.ChatPlatform
	logWriter    secondary.LogWriter
	logger       *zap.SugaredLogger
}

// NewCategoryService creates a new CategoryService with injected dependencies.
func NewCategoryService(
	categoryRepo secondary.CategoryRepository,
	permissions primary.PermissionService,
	platform secondary.ChatPlatform,
	logWriter secondary.LogWriter,
	logger *zap.SugaredLogger,
) *CategoryServiceImpl {
	return &CategoryServiceImpl{
		categoryRepo: categoryRepo,
		permissions:  permissions,
		platform:     platform,
		logWriter:    logWriter,
		logger:       logger,
	}
}

func (s *CategoryServiceImpl) requireAdmin(ctx context.Context) error {
	return s.permissions.Check(ctx, primary.CheckRequest{Function: string(permission.FunctionAdmin)})
}

// platformCategory resolves a platform channel and checks it is a category.
func (s *CategoryServiceImpl) platformCategory(ctx context.Context, op string, id int64) (*secondary.ChannelRecord, error) {
	ch, err := s.platform.GetChannel(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ch.Category {
		return nil, courterr.Validation(op, "channel %s is not a category", ch.Name)
	}
	return ch, nil
}

// RegisterCategory registers an existing platform category as intake or custom.
func (s *CategoryServiceImpl) RegisterCategory(ctx context.Context, req primary.RegisterCategoryRequest) (*primary.Category, error) {
	const op = "category.register"

	kind := category.Kind(strings.ToLower(req.Kind))
	if kind == "" {
		kind = category.KindCustom
	}
	if kind != category.KindIntake && kind != category.KindCustom {
		return nil, courterr.Validation(op, "kind must be intake or custom, got %q", req.Kind)
	}
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	ch, err := s.platformCategory(ctx, op, req.CategoryID)
	if err != nil {
		return nil, err
	}

	record := &secondary.CategoryRecord{CategoryID: ch.ID, Name: ch.Name, RoleID: req.RoleID, Kind: string(kind)}
	if err := s.categoryRepo.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to register category: %w", err)
	}
	_ = s.logWriter.LogCreate(ctx, "category", strconv.FormatInt(ch.ID, 10))
	s.logger.Infow("category registered", "category_id", ch.ID, "kind", kind)
	return recordToCategory(record), nil
}

// SetArchiveCategory marks a platform category as the archive.
func (s *CategoryServiceImpl) SetArchiveCategory(ctx context.Context, categoryID int64) (*primary.Category, error) {
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}
	ch, err := s.platformCategory(ctx, "category.set_archive", categoryID)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.SetArchive(ctx, ch.ID, ch.Name); err != nil {
		return nil, fmt.Errorf("failed to set archive category: %w", err)
	}
	_ = s.logWriter.LogUpdate(ctx, "category", strconv.FormatInt(ch.ID, 10), "kind", "", string(category.KindArchive))
	s.logger.Infow("archive category set", "category_id", ch.ID)
	return &primary.Category{CategoryID: ch.ID, Name: ch.Name, Kind: string(category.KindArchive)}, nil
}

// ListCategories lists registered categories, optionally of one kind.
func (s *CategoryServiceImpl) ListCategories(ctx context.Context, kind string) ([]*primary.Category, error) {
	if kind != "" && !category.Kind(kind).Valid() {
		return nil, courterr.Validation("category.list", "unknown kind %q (valid: intake, judge, archive, custom)", kind)
	}
	records, err := s.categoryRepo.List(ctx, kind)
	if err != nil {
		return nil, fmt.Errorf("failed to list categories: %w", err)
	}
	out := make([]*primary.Category, len(records))
	for i, r := range records {
		out[i] = recordToCategory(r)
	}
	return out, nil
}

// Setup ensures the intake category, the archive category and the archive
// log channel exist and are registered. Objects are adopted by name.
func (s *CategoryServiceImpl) Setup(ctx context.Context, req primary.SetupRequest) (*primary.SetupReport, error) {
	const op = "category.setup"

	if req.IntakeName == "" || req.ArchiveName == "" || req.LogChannelName == "" {
		return nil, courterr.Validation(op, "intake, archive and log channel names are required")
	}
	if err := s.requireAdmin(ctx); err != nil {
		return nil, err
	}

	channels, err := s.platform.ListChannels(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list channels: %w", err)
	}
	report := &primary.SetupReport{}
	everyone := s.platform.GuildID()

	intake, err := s.ensureCategory(ctx, channels, req.IntakeName, nil, report)
	if err != nil {
		return nil, err
	}
	record := &secondary.CategoryRecord{CategoryID: intake.ID, Name: intake.Name, Kind: string(category.KindIntake)}
	if existing, err := s.categoryRepo.GetByID(ctx, intake.ID); err == nil {
		record.RoleID = existing.RoleID
	} else if !errors.Is(err, courterr.ErrNotFound) {
		return nil, err
	}
	if err := s.categoryRepo.Upsert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to register intake category: %w", err)
	}
	report.IntakeCategoryID = intake.ID

	archive, err := s.ensureCategory(ctx, channels, req.ArchiveName, []secondary.PermissionOverwrite{
		{TargetID: everyone, Target: secondary.OverwriteRole, Deny: secondary.PermissionSend},
	}, report)
	if err != nil {
		return nil, err
	}
	if err := s.categoryRepo.SetArchive(ctx, archive.ID, archive.Name); err != nil {
		return nil, fmt.Errorf("failed to register archive category: %w", err)
	}
	report.ArchiveCategoryID = archive.ID

	var logChannel *secondary.ChannelRecord
	for _, ch := range channels {
		if !ch.Category && strings.EqualFold(ch.Name, req.LogChannelName) {
			logChannel = ch
			break
		}
	}
	if logChannel == nil {
		logChannel, err = s.platform.CreateTextChannel(ctx, secondary.CreateChannelRequest{
			Name:     req.LogChannelName,
			ParentID: archive.ID,
			Topic:    "Archived case transcripts",
			Overwrites: []secondary.PermissionOverwrite{
				{TargetID: everyone, Target: secondary.OverwriteRole, Deny: secondary.PermissionView | secondary.PermissionSend},
			},
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create archive log channel: %w", err)
		}
		report.Created = append(report.Created, logChannel.Name)
	}
	report.LogChannelID = logChannel.ID

	if len(report.Created) > 0 {
		_ = s.logWriter.LogCreate(ctx, "setup", strings.Join(report.Created, ","))
	}
	s.logger.Infow("guild setup complete", "intake", intake.ID, "archive", archive.ID, "log_channel", logChannel.ID, "created", report.Created)
	return report, nil
}

func (s *CategoryServiceImpl) ensureCategory(ctx context.Context, channels []*secondary.ChannelRecord, name string, overwrites []secondary.PermissionOverwrite, report *primary.SetupReport) (*secondary.ChannelRecord, error) {
	for _, ch := range channels {
		if ch.Category && strings.EqualFold(ch.Name, name) {
			return ch, nil
		}
	}
	created, err := s.platform.CreateCategory(ctx, name, overwrites)
	if err != nil {
		return nil, fmt.Errorf("failed to create category %s: %w", name, err)
	}
	report.Created = append(report.Created, created.Name)
	return created, nil
}

func recordToCategory(r *secondary.CategoryRecord) *primary.Category {
	return &primary.Category{CategoryID: r.CategoryID, Name: r.Name, RoleID: r.RoleID, Kind: r.Kind}
}

// Ensure CategoryServiceImpl implements the interface
var _ primary.CategoryService = (*CategoryServiceImpl)(nil)
