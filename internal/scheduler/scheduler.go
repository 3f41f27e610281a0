package scheduler

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/tomschnierer025/weedtracker/internal/config"
	"github.com/tomschnierer025/weedtracker/internal/service/tracker"
)

// Scheduler manages the background jobs: the nightly snapshot, the follow-up
// reminder sweep and the low-stock advisory.
type Scheduler struct {
	cron   *cron.Cron
	svc    *tracker.Service
	cfg    config.SchedulerConfig
	logger *zap.Logger
}

// NewScheduler creates a new scheduler instance.
func NewScheduler(cfg config.SchedulerConfig, svc *tracker.Service, logger *zap.Logger) *Scheduler {
	if logger == nil {
		logger = zap.NewNop()
	}

	location, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		logger.Warn("unknown timezone, falling back to local", zap.String("timezone", cfg.Timezone))
		location = time.Local
	}

	return &Scheduler{
		cron:   cron.New(cron.WithLocation(location)),
		svc:    svc,
		cfg:    cfg,
		logger: logger,
	}
}

// Start registers the cron entries and starts the scheduler.
func (s *Scheduler) Start() {
	s.logger.Info("starting scheduler")

	if _, err := s.cron.AddFunc(s.cfg.SnapshotCron, s.takeSnapshot); err != nil {
		s.logger.Error("failed to schedule snapshot job", zap.Error(err))
	}
	if _, err := s.cron.AddFunc(s.cfg.ReminderCron, s.sweepReminders); err != nil {
		s.logger.Error("failed to schedule reminder sweep", zap.Error(err))
	}
	if _, err := s.cron.AddFunc(s.cfg.ReminderCron, s.reportLowStock); err != nil {
		s.logger.Error("failed to schedule low-stock report", zap.Error(err))
	}

	s.cron.Start()
}

// Stop stops the scheduler.
func (s *Scheduler) Stop() {
	s.logger.Info("stopping scheduler")
	s.cron.Stop()
}

func (s *Scheduler) takeSnapshot() {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	info, err := s.svc.Snapshot(ctx)
	if err != nil {
		s.logger.Error("scheduled snapshot failed", zap.Error(err))
		return
	}
	s.logger.Info("scheduled snapshot taken", zap.String("snapshot_id", info.ID))
}

func (s *Scheduler) sweepReminders() {
	due := s.svc.DueReminders(time.Now())
	for _, job := range due {
		s.logger.Info("job follow-up due",
			zap.String("job_id", job.ID),
			zap.String("name", job.Name),
			zap.String("weed", job.Weed),
			zap.Int("reminder_weeks", job.ReminderWeeks))
	}
	if len(due) == 0 {
		s.logger.Debug("no follow-ups due")
	}
}

func (s *Scheduler) reportLowStock() {
	for _, chemical := range s.svc.LowStockChemicals() {
		s.logger.Warn("chemical below reorder threshold",
			zap.String("name", chemical.Name),
			zap.Int("container_count", chemical.ContainerCount),
			zap.Int("reorder_threshold", chemical.ReorderThreshold))
	}
}
