// Package jobs runs the scheduled maintenance sweeps.
package jobs

import (
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"vitalwatch-server/internal/config"
	"vitalwatch-server/internal/services"
)

// Runner schedules the invitation sweep, the notification cleanup and
// the daily report generation.
type Runner struct {
	cron        *cron.Cron
	logger      *zap.Logger
	cfg         config.JobsConfig
	invitations *services.InvitationService
	reports     *services.ReportService
	running     bool
	mu          sync.Mutex
}

// NewRunner creates a new job runner.
func NewRunner(cfg config.JobsConfig, invitations *services.InvitationService, reports *services.ReportService, logger *zap.Logger) *Runner {
	return &Runner{
		cron:        cron.New(),
		logger:      logger,
		cfg:         cfg,
		invitations: invitations,
		reports:     reports,
	}
}

// Start registers the jobs and starts the scheduler.
func (r *Runner) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("job runner already running")
	}

	if _, err := r.cron.AddFunc(r.cfg.InvitationSweepSpec, r.sweepInvitations); err != nil {
		return fmt.Errorf("invalid invitation sweep spec %q: %w", r.cfg.InvitationSweepSpec, err)
	}
	if _, err := r.cron.AddFunc(r.cfg.NotificationSweepSpec, r.sweepNotifications); err != nil {
		return fmt.Errorf("invalid notification sweep spec %q: %w", r.cfg.NotificationSweepSpec, err)
	}
	if _, err := r.cron.AddFunc(r.cfg.DailyReportSpec, r.generateReports); err != nil {
		return fmt.Errorf("invalid daily report spec %q: %w", r.cfg.DailyReportSpec, err)
	}

	r.cron.Start()
	r.running = true
	r.logger.Info("Job runner started",
		zap.String("invitation_sweep", r.cfg.InvitationSweepSpec),
		zap.String("notification_sweep", r.cfg.NotificationSweepSpec),
		zap.String("daily_report", r.cfg.DailyReportSpec))
	return nil
}

// Stop stops the scheduler and waits for in-flight jobs to finish.
func (r *Runner) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return
	}
	ctx := r.cron.Stop()
	<-ctx.Done()
	r.running = false
	r.logger.Info("Job runner stopped")
}

func (r *Runner) sweepInvitations() {
	count, err := r.invitations.SweepExpired(time.Now())
	if err != nil {
		r.logger.Error("Invitation sweep failed", zap.Error(err))
		return
	}
	r.logger.Info("Invitation sweep completed", zap.Int64("removed", count))
}

func (r *Runner) sweepNotifications() {
	count, err := r.reports.CleanupReadNotifications(time.Now())
	if err != nil {
		r.logger.Error("Notification cleanup failed", zap.Error(err))
		return
	}
	r.logger.Info("Notification cleanup completed", zap.Int64("removed", count))
}

func (r *Runner) generateReports() {
	count, err := r.reports.GenerateDailyReports(time.Now())
	if err != nil {
		r.logger.Error("Daily report generation failed", zap.Error(err))
		return
	}
	r.logger.Info("Daily reports generated", zap.Int("patients", count))
}
