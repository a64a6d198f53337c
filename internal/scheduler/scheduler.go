package scheduler

import (
	"context"
	"fmt"
	"time"

	"memberhub-backend/internal/config"
	"memberhub-backend/internal/jobs"
	"memberhub-backend/internal/logger"

	"github.com/robfig/cron/v3"
)

// Scheduler drives the maintenance jobs on six-field cron specs in UTC.
type Scheduler struct {
	cron   *cron.Cron
	runner *jobs.Runner
}

func New(runner *jobs.Runner) *Scheduler {
	return &Scheduler{
		cron:   cron.New(cron.WithSeconds(), cron.WithLocation(time.UTC)),
		runner: runner,
	}
}

func (s *Scheduler) Register(cfg config.SchedulerConfig) error {
	entries := []struct {
		name string
		spec string
		run  func(context.Context)
	}{
		{"expire_invitations", cfg.ExpireInvitations, s.runner.ExpireInvitations},
		{"reconcile_orphaned_codes", cfg.ReconcileCodes, s.runner.ReconcileOrphanedCodes},
		{"purge_invitations", cfg.PurgeInvitations, s.runner.PurgeExpiredInvitations},
	}
	for _, e := range entries {
		run := e.run
		if _, err := s.cron.AddFunc(e.spec, func() { run(context.Background()) }); err != nil {
			return fmt.Errorf("failed to schedule %s (%q): %w", e.name, e.spec, err)
		}
		logger.Info("Job scheduled", "job", e.name, "spec", e.spec)
	}
	return nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	logger.Info("Scheduler started", "jobs", len(s.cron.Entries()))
}

// Stop halts scheduling and waits for in-flight jobs to finish.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	logger.Info("Scheduler stopped")
}
