// Package wire provides dependency injection for the court application.
// It creates singleton services with lazy initialization.
package wire

import (
	"database/sql"
	"fmt"
	"io"
	"os"
	"sync"

	"go.uber.org/zap"

	"github.com/example/court/internal/adapters/archive"
	cliadapter "github.com/example/court/internal/adapters/cli"
	"github.com/example/court/internal/adapters/discord"
	"github.com/example/court/internal/adapters/filesystem"
	"github.com/example/court/internal/adapters/interactions"
	"github.com/example/court/internal/adapters/scheduler"
	"github.com/example/court/internal/adapters/sqlite"
	"github.com/example/court/internal/app"
	"github.com/example/court/internal/config"
	"github.com/example/court/internal/db"
	"github.com/example/court/internal/logging"
	"github.com/example/court/internal/ports/primary"
	"github.com/example/court/internal/ports/secondary"
)

// Services holds every primary port of the court.
type Services struct {
	Cases         primary.CaseService
	Lifecycle     primary.LifecycleService
	Evidence      primary.EvidenceService
	Judges        primary.JudgeService
	Categories    primary.CategoryService
	Permissions   primary.PermissionService
	Panels        primary.PanelService
	Notifications primary.NotificationService
	Transcripts   primary.TranscriptService
	Logs          primary.LogService
}

var (
	cfg    = config.Default()
	logger = logging.Nop()

	services *Services
	initErr  error
	once     sync.Once

	logService primary.LogService
	logErr     error
	logOnce    sync.Once
)

// Configure sets the configuration and logger the singletons are built
// from. It must be called before the first accessor.
func Configure(c config.Config, l *zap.SugaredLogger) {
	cfg = c
	if l != nil {
		logger = l
	}
	db.Configure(c.DBPath)
}

// Config returns the active configuration.
func Config() config.Config {
	return cfg
}

// Logger returns the process logger.
func Logger() *zap.SugaredLogger {
	return logger
}

// Database returns the shared database connection.
func Database() (*sql.DB, error) {
	return db.GetDB()
}

// Get returns the singleton services. The chat platform settings are
// required.
func Get() (*Services, error) {
	once.Do(initServices)
	return services, initErr
}

// LogService returns the audit log service. It needs only the database.
func LogService() (primary.LogService, error) {
	logOnce.Do(func() {
		database, err := db.GetDB()
		if err != nil {
			logErr = fmt.Errorf("failed to initialize database: %w", err)
			return
		}
		logService = app.NewLogService(sqlite.NewAuditLogRepository(database))
	})
	return logService, logErr
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	if err := cfg.RequirePlatform(); err != nil {
		initErr = err
		return
	}

	database, err := db.GetDB()
	if err != nil {
		initErr = fmt.Errorf("failed to initialize database: %w", err)
		return
	}

	// Repository adapters (secondary ports) with injected DB
	caseRepo := sqlite.NewCaseRepository(database)
	evidenceRepo := sqlite.NewEvidenceRepository(database)
	judgeRepo := sqlite.NewJudgeRepository(database)
	categoryRepo := sqlite.NewCategoryRepository(database)
	roleRepo := sqlite.NewRolePermissionRepository(database)
	panelRepo := sqlite.NewPanelRepository(database)
	notificationRepo := sqlite.NewNotificationRepository(database)
	auditRepo := sqlite.NewAuditLogRepository(database)
	logWriter := sqlite.NewLogWriterAdapter(auditRepo)

	platform, err := newPlatform()
	if err != nil {
		initErr = err
		return
	}
	documents := newDocumentStore(platform)
	executor := app.NewEffectExecutor(platform, logger)

	permissions := app.NewPermissionService(roleRepo, judgeRepo, platform, logWriter, logger)
	transcripts, err := app.NewTranscriptService(caseRepo, evidenceRepo, platform, app.TranscriptOptions{
		Keywords: cfg.Keywords,
		Footer:   cfg.CourtName,
		Location: cfg.Location(),
	}, logger)
	if err != nil {
		initErr = fmt.Errorf("failed to initialize transcript renderer: %w", err)
		return
	}

	services = &Services{
		Cases: app.NewCaseService(caseRepo, evidenceRepo, categoryRepo, platform, logWriter, logger),
		Lifecycle: app.NewLifecycleService(app.LifecycleDeps{
			Cases:       caseRepo,
			Judges:      judgeRepo,
			Categories:  categoryRepo,
			Permissions: permissions,
			Transcripts: transcripts,
			Documents:   documents,
			Platform:    platform,
			Executor:    executor,
			LogWriter:   logWriter,
			Logger:      logger,
		}),
		Evidence:      app.NewEvidenceService(caseRepo, evidenceRepo, permissions, platform, logWriter, logger),
		Judges:        app.NewJudgeService(judgeRepo, categoryRepo, caseRepo, permissions, platform, logWriter, logger, cfg.JudgeRoleID),
		Categories:    app.NewCategoryService(categoryRepo, permissions, platform, logWriter, logger),
		Permissions:   permissions,
		Panels:        app.NewPanelService(panelRepo, categoryRepo, permissions, platform, logWriter, logger),
		Notifications: app.NewNotificationService(notificationRepo, permissions, platform, logWriter, logger, cfg.Location()),
		Transcripts:   transcripts,
		Logs:          app.NewLogService(auditRepo),
	}
}

func newPlatform() (*discord.Platform, error) {
	var opts []discord.Option
	if cfg.APIBaseURL != "" {
		opts = append(opts, discord.WithBaseURL(cfg.APIBaseURL))
	}
	session, err := discord.NewSession(cfg.Token, logger, opts...)
	if err != nil {
		return nil, err
	}
	return discord.NewPlatform(session, cfg.GuildID), nil
}

func newDocumentStore(platform secondary.ChatPlatform) secondary.DocumentStore {
	if cfg.Archive.Store == config.ArchiveStoreFilesystem {
		return filesystem.NewDocumentStore(cfg.Archive.Dir)
	}
	return archive.NewChannelStore(platform, cfg.Archive.LogChannelID, cfg.Archive.LogChannelName)
}

// InteractionsServer builds the webhook server for court serve.
func InteractionsServer() (*interactions.Server, error) {
	s, err := Get()
	if err != nil {
		return nil, err
	}
	key, err := interactions.ParsePublicKey(cfg.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("invalid public_key (set public_key or COURT_PUBLIC_KEY): %w", err)
	}
	return interactions.NewServer(key, interactions.Services{
		Cases:     s.Cases,
		Panels:    s.Panels,
		Lifecycle: s.Lifecycle,
	}, logger), nil
}

// Scheduler builds the background job runner for court serve.
func Scheduler() (*scheduler.Scheduler, error) {
	s, err := Get()
	if err != nil {
		return nil, err
	}
	return scheduler.New(s.Notifications, s.Logs, scheduler.Config{
		SweepSchedule:      cfg.SweepSchedule,
		AuditRetentionDays: cfg.AuditRetentionDays,
	}, logger), nil
}

// CaseAdapter returns a new CaseAdapter writing to stdout.
// Each call creates a new adapter (adapters are stateless translators).
func CaseAdapter() (*cliadapter.CaseAdapter, error) {
	return CaseAdapterWithOutput(os.Stdout)
}

// CaseAdapterWithOutput returns a new CaseAdapter writing to the given output.
func CaseAdapterWithOutput(out io.Writer) (*cliadapter.CaseAdapter, error) {
	s, err := Get()
	if err != nil {
		return nil, err
	}
	return cliadapter.NewCaseAdapter(s.Cases, s.Lifecycle, out), nil
}

// EvidenceAdapter returns a new EvidenceAdapter writing to stdout.
func EvidenceAdapter() (*cliadapter.EvidenceAdapter, error) {
	s, err := Get()
	if err != nil {
		return nil, err
	}
	return cliadapter.NewEvidenceAdapter(s.Evidence, os.Stdout), nil
}
