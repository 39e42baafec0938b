package app

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/Freeeeeet/timetable/internal/model"
)

// auditTimeout bounds one audit run.
const auditTimeout = 2 * time.Minute

type ConflictCounter interface {
	CountConflicts(ctx context.Context) (*model.ConflictReport, error)
}

// AuditNotifier is told about every completed audit.
type AuditNotifier interface {
	NotifyConflicts(ctx context.Context, report *model.ConflictReport) error
}

// Scheduler runs the periodic conflict audit.
type Scheduler struct {
	cron      *cron.Cron
	conflicts ConflictCounter
	notifier  AuditNotifier
	logger    *zap.Logger
}

// NewScheduler registers the audit on spec, a cron expression or descriptor
// such as "@every 1h". notifier may be nil.
func NewScheduler(spec string, conflicts ConflictCounter, notifier AuditNotifier, logger *zap.Logger) (*Scheduler, error) {
	cronLogger := cron.PrintfLogger(zap.NewStdLog(logger.Named("cron")))
	s := &Scheduler{
		cron:      cron.New(cron.WithChain(cron.SkipIfStillRunning(cronLogger))),
		conflicts: conflicts,
		notifier:  notifier,
		logger:    logger,
	}

	if _, err := s.cron.AddFunc(spec, s.runScheduled); err != nil {
		return nil, fmt.Errorf("schedule conflict audit %q: %w", spec, err)
	}
	return s, nil
}

// Start runs the scheduler until ctx is cancelled and waits for a running
// audit to finish.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("Starting background scheduler")
	s.cron.Start()

	<-ctx.Done()

	s.logger.Info("Stopping background scheduler")
	<-s.cron.Stop().Done()
	return nil
}

func (s *Scheduler) runScheduled() {
	ctx, cancel := context.WithTimeout(context.Background(), auditTimeout)
	defer cancel()

	if _, err := s.RunAudit(ctx); err != nil {
		s.logger.Error("Conflict audit failed", zap.Error(err))
	}
}

// RunAudit counts conflicts once and notifies about the result.
func (s *Scheduler) RunAudit(ctx context.Context) (*model.ConflictReport, error) {
	runID := uuid.New().String()
	s.logger.Info("Starting conflict audit", zap.String("run_id", runID))

	report, err := s.conflicts.CountConflicts(ctx)
	if err != nil {
		return nil, fmt.Errorf("count conflicts: %w", err)
	}

	s.logger.Info("Conflict audit completed",
		zap.String("run_id", runID),
		zap.Int("conflicts", report.ConflictCount),
		zap.Int("rows", report.RowsScanned))

	if s.notifier != nil {
		if err := s.notifier.NotifyConflicts(ctx, report); err != nil {
			s.logger.Warn("Failed to send audit notification",
				zap.String("run_id", runID),
				zap.Error(err))
		}
	}

	return report, nil
}
