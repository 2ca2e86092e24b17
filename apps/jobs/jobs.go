package jobs

import (
	"time"

	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/evo/v2/lib/log"
	"github.com/iesreza/stayhub-backend/apps/models"
)

// Job names as constants for consistency
const (
	JobPurgeOrphanValues        = "purge_orphan_field_values"
	JobCleanupWebhookDeliveries = "cleanup_webhook_deliveries"
	JobCleanupJobExecutions     = "cleanup_job_executions"
)

// RegisterAllJobs registers all background jobs with the scheduler
func RegisterAllJobs(s *Scheduler) {
	jobs := []JobDefinition{
		{
			Name:        JobPurgeOrphanValues,
			Description: "Remove field values whose definition has been deleted",
			Schedule:    getSettingString(SettingOrphanGCSchedule, "0 0 3 * * *"),
			Timeout:     10 * time.Minute,
			Enabled:     getSettingBool(SettingOrphanGCEnabled, true),
			Handler:     handlePurgeOrphanValues,
		},
		{
			Name:        JobCleanupWebhookDeliveries,
			Description: "Delete webhook delivery logs older than the configured retention period",
			Schedule:    "0 30 3 * * *",
			Timeout:     10 * time.Minute,
			Enabled:     true,
			Handler:     handleCleanupWebhookDeliveries,
		},
		{
			Name:        JobCleanupJobExecutions,
			Description: "Clean up job execution history older than the retention period",
			Schedule:    "0 0 4 * * *",
			Timeout:     5 * time.Minute,
			Enabled:     true,
			Handler:     handleCleanupJobExecutions,
		},
	}

	for _, job := range jobs {
		if err := s.RegisterJob(job); err != nil {
			log.Error("[jobs] Failed to register job %s: %v", job.Name, err)
		}
	}
}

// Job handlers

func handlePurgeOrphanValues(ctx *JobContext) error {
	removed, err := models.PurgeOrphanFieldValues()
	if err != nil {
		return err
	}

	ctx.IncrementProcessed(int(removed))
	ctx.SetMetadata("values_removed", removed)
	log.Info("[%s] Removed %d orphaned field values", JobPurgeOrphanValues, removed)
	return nil
}

func handleCleanupWebhookDeliveries(ctx *JobContext) error {
	retentionDays := getSettingInt(SettingWebhookLogRetentionDays, 30)
	cutoff := time.Now().AddDate(0, 0, -retentionDays)

	result := db.Where("created_at < ?", cutoff).Delete(&models.WebhookDelivery{})
	if result.Error != nil {
		return result.Error
	}

	ctx.IncrementProcessed(int(result.RowsAffected))
	ctx.SetMetadata("deliveries_removed", result.RowsAffected)
	ctx.SetMetadata("retention_days", retentionDays)
	log.Info("[%s] Removed %d webhook delivery logs older than %d days",
		JobCleanupWebhookDeliveries, result.RowsAffected, retentionDays)
	return nil
}

func handleCleanupJobExecutions(ctx *JobContext) error {
	deleted, err := ForceCleanupOldLogs()
	if err != nil {
		return err
	}

	ctx.IncrementProcessed(int(deleted))
	ctx.SetMetadata("logs_removed", deleted)
	log.Info("[%s] Cleaned up %d old job execution records", JobCleanupJobExecutions, deleted)
	return nil
}
