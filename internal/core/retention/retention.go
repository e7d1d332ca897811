package retention

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/bagusramadhan/practice-suite-be/internal/modules/practice/repositories"
	"github.com/bagusramadhan/practice-suite-be/internal/shared/utils"
)

// Sweeper periodically deletes execution logs and read notifications
// older than the configured retention window
type Sweeper struct {
	workflows     repositories.WorkflowRepo
	notifications repositories.NotificationRepo
	retentionDays int
	schedule      string
	cron          *cron.Cron
}

// NewSweeper creates a new retention sweeper
func NewSweeper(workflows repositories.WorkflowRepo, notifications repositories.NotificationRepo, retentionDays int, schedule string) *Sweeper {
	return &Sweeper{
		workflows:     workflows,
		notifications: notifications,
		retentionDays: retentionDays,
		schedule:      schedule,
		cron:          cron.New(cron.WithSeconds()),
	}
}

// Start registers the sweep job and starts the cron scheduler
func (s *Sweeper) Start() error {
	log.Println("⏰ Starting retention sweeper...")

	if _, err := s.cron.AddFunc(s.schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		s.Sweep(ctx)
	}); err != nil {
		return fmt.Errorf("failed to schedule retention sweep: %w", err)
	}

	s.cron.Start()
	log.Printf("✅ Retention sweeper started (every %q, keep %d days)", s.schedule, s.retentionDays)
	return nil
}

// Stop stops the cron scheduler
func (s *Sweeper) Stop() {
	log.Println("⏰ Stopping retention sweeper...")
	s.cron.Stop()
	log.Println("✅ Retention sweeper stopped")
}

// Sweep deletes expired execution logs and read notifications. Runs
// once; callers other than the cron loop can invoke it directly.
func (s *Sweeper) Sweep(ctx context.Context) {
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)

	logs, err := s.workflows.DeleteExecutionsBefore(ctx, cutoff)
	if err != nil {
		utils.LogError("retention sweep failed for execution logs", err, nil)
	} else if logs > 0 {
		utils.LogInfo("retention sweep removed expired execution logs", map[string]interface{}{
			"deleted": logs,
			"cutoff":  cutoff.Format("2006-01-02"),
		})
	}

	notifs, err := s.notifications.DeleteBefore(ctx, cutoff)
	if err != nil {
		utils.LogError("retention sweep failed for notifications", err, nil)
	} else if notifs > 0 {
		utils.LogInfo("retention sweep removed expired notifications", map[string]interface{}{
			"deleted": notifs,
			"cutoff":  cutoff.Format("2006-01-02"),
		})
	}
}
