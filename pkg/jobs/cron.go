package jobs

import (
	"log"
	"time"

	"github.com/robfig/cron/v3"
)

// CronManager manages scheduled maintenance jobs
type CronManager struct {
	cron          *cron.Cron
	orchestrator  *Service
	retentionDays int
	logger        *log.Logger
}

// NewCronManager creates a new cron manager
func NewCronManager(orchestrator *Service, retentionDays int, logger *log.Logger) *CronManager {
	if logger == nil {
		logger = log.Default()
	}
	if retentionDays <= 0 {
		retentionDays = 30
	}

	return &CronManager{
		cron:          cron.New(),
		orchestrator:  orchestrator,
		retentionDays: retentionDays,
		logger:        logger,
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	cm.logger.Println("Setting up cron jobs...")

	// Daily at 3 AM: sweep terminal jobs past the retention window
	_, err := cm.cron.AddFunc("0 3 * * *", func() {
		cm.logger.Println("🕐 Running job retention sweep...")
		removed := cm.orchestrator.Cleanup(time.Duration(cm.retentionDays) * 24 * time.Hour)
		cm.logger.Printf("✅ Retention sweep completed: %d jobs removed", removed)
	})
	if err != nil {
		return err
	}

	cm.logger.Println("✅ Cron jobs configured successfully")
	cm.logger.Printf("  - Daily at 3 AM: remove finished jobs older than %d days", cm.retentionDays)

	return nil
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.logger.Println("🚀 Starting cron scheduler...")
	cm.cron.Start()
}

// Stop stops the cron scheduler
func (cm *CronManager) Stop() {
	cm.logger.Println("🛑 Stopping cron scheduler...")
	cm.cron.Stop()
}
