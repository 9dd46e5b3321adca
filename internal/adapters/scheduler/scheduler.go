// Package scheduler runs the court's periodic background jobs: the
// notification delivery sweep and the audit log retention prune.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/example/court/internal/ports/primary"
)

// PruneSchedule runs the audit prune daily at 03:00 UTC.
const PruneSchedule = "0 3 * * *"

const (
	sweepTimeout = 2 * time.Minute
	pruneTimeout = 5 * time.Minute
)

// Config holds the job schedules.
type Config struct {
	SweepSchedule      string
	AuditRetentionDays int // 0 disables the prune job
}

// Scheduler owns the cron runner and its jobs.
type Scheduler struct {
	cron          *cron.Cron
	notifications primary.NotificationService
	logs          primary.LogService
	cfg           Config
	logger        *zap.SugaredLogger
	now           func() time.Time
}

// New creates a scheduler. Jobs are registered by Start.
func New(notifications primary.NotificationService, logs primary.LogService, cfg Config, logger *zap.SugaredLogger) *Scheduler {
	cl := cronLogger{logger}
	return &Scheduler{
		cron: cron.New(
			cron.WithLocation(time.UTC),
			cron.WithLogger(cl),
			cron.WithChain(cron.Recover(cl), cron.SkipIfStillRunning(cl)),
		),
		notifications: notifications,
		logs:          logs,
		cfg:           cfg,
		logger:        logger,
		now:           time.Now,
	}
}

// Start registers the jobs and starts the runner.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc(s.cfg.SweepSchedule, s.sweep); err != nil {
		return fmt.Errorf("failed to register notification sweep %q: %w", s.cfg.SweepSchedule, err)
	}
	if s.cfg.AuditRetentionDays > 0 {
		if _, err := s.cron.AddFunc(PruneSchedule, s.prune); err != nil {
			return fmt.Errorf("failed to register audit prune: %w", err)
		}
	}

	s.cron.Start()
	s.logger.Infow("scheduler started", "sweep", s.cfg.SweepSchedule, "audit_retention_days", s.cfg.AuditRetentionDays)
	return nil
}

// Stop stops the runner and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// RunSweep delivers every due notification once.
func (s *Scheduler) RunSweep(ctx context.Context) (*primary.SweepResult, error) {
	logger := s.logger.With("run_id", uuid.NewString())
	result, err := s.notifications.DeliverDue(ctx, s.now())
	if err != nil {
		logger.Errorw("notification sweep failed", "error", err)
		return nil, err
	}
	if result.Due > 0 {
		logger.Infow("notification sweep complete",
			"due", result.Due,
			"sent", result.Sent,
			"failed", result.Failed,
			"skipped", result.Skipped,
		)
	}
	return result, nil
}

// RunPrune deletes audit entries older than the retention.
func (s *Scheduler) RunPrune(ctx context.Context) (int, error) {
	n, err := s.logs.PruneLogs(ctx, s.cfg.AuditRetentionDays)
	if err != nil {
		s.logger.Errorw("audit prune failed", "error", err)
		return 0, err
	}
	s.logger.Infow("audit prune complete", "deleted", n, "older_than_days", s.cfg.AuditRetentionDays)
	return n, nil
}

func (s *Scheduler) sweep() {
	ctx, cancel := context.WithTimeout(context.Background(), sweepTimeout)
	defer cancel()
	_, _ = s.RunSweep(ctx)
}

func (s *Scheduler) prune() {
	ctx, cancel := context.WithTimeout(context.Background(), pruneTimeout)
	defer cancel()
	_, _ = s.RunPrune(ctx)
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	l *zap.SugaredLogger
}

func (c cronLogger) Info(msg string, keysAndValues ...interface{}) {
	c.l.Debugw(msg, keysAndValues...)
}

func (c cronLogger) Error(err error, msg string, keysAndValues ...interface{}) {
	c.l.Errorw(msg, append(keysAndValues, "error", err)...)
}
