package jobs

import (
	"strconv"

	"github.com/getevo/evo/v2"
	"github.com/iesreza/stayhub-backend/apps/models"
	"github.com/iesreza/stayhub-backend/lib/response"
)

// Job settings keys
const (
	// Orphaned field value cleanup
	SettingOrphanGCEnabled  = "jobs.orphan_gc.enabled"
	SettingOrphanGCSchedule = "jobs.orphan_gc.schedule"

	// Webhook delivery log retention
	SettingWebhookLogRetentionDays = "jobs.webhook_log.retention_days"
)

// JobSettingsCategory is the settings category for job settings
const JobSettingsCategory = "jobs"

// DefaultJobSettings defines the default values for job settings
var DefaultJobSettings = []models.Setting{
	{
		Key:      SettingOrphanGCEnabled,
		Value:    "true",
		Type:     "boolean",
		Category: JobSettingsCategory,
		Label:    "Enable Orphaned Value Cleanup",
	},
	{
		Key:      SettingOrphanGCSchedule,
		Value:    "0 0 3 * * *",
		Type:     "string",
		Category: JobSettingsCategory,
		Label:    "Orphaned Value Cleanup Schedule",
	},
	{
		Key:      SettingWebhookLogRetentionDays,
		Value:    "30",
		Type:     "number",
		Category: JobSettingsCategory,
		Label:    "Webhook Delivery Log Retention (days)",
	},
}

// InitJobSettings creates default job settings if they don't exist
func InitJobSettings() {
	models.EnsureDefaultSettings(DefaultJobSettings)
}

// JobSettingsResponse represents the job settings for API response
type JobSettingsResponse struct {
	OrphanGC struct {
		Enabled  bool   `json:"enabled"`
		Schedule string `json:"schedule"`
	} `json:"orphan_gc"`
	WebhookLog struct {
		RetentionDays int `json:"retention_days"`
	} `json:"webhook_log"`
}

// JobSettingsUpdateRequest represents the request to update job settings
type JobSettingsUpdateRequest struct {
	OrphanGC *struct {
		Enabled  *bool   `json:"enabled"`
		Schedule *string `json:"schedule"`
	} `json:"orphan_gc,omitempty"`
	WebhookLog *struct {
		RetentionDays *int `json:"retention_days"`
	} `json:"webhook_log,omitempty"`
}

// GetJobSettings returns all job settings
// GET /api/settings/jobs
func GetJobSettings(req *evo.Request) interface{} {
	settings := JobSettingsResponse{}

	settings.OrphanGC.Enabled = getSettingBool(SettingOrphanGCEnabled, true)
	settings.OrphanGC.Schedule = getSettingString(SettingOrphanGCSchedule, "0 0 3 * * *")
	settings.WebhookLog.RetentionDays = getSettingInt(SettingWebhookLogRetentionDays, 30)

	return response.OK(settings)
}

// UpdateJobSettings updates job settings. Schedule changes take effect on
// the next restart; retention changes apply on the next run.
// PUT /api/settings/jobs
func UpdateJobSettings(req *evo.Request) interface{} {
	var request JobSettingsUpdateRequest
	if err := req.BodyParser(&request); err != nil {
		return response.BadRequest(nil, "Invalid request body")
	}

	if request.OrphanGC != nil {
		if request.OrphanGC.Enabled != nil {
			updateSettingBool(SettingOrphanGCEnabled, *request.OrphanGC.Enabled)
		}
		if request.OrphanGC.Schedule != nil {
			if *request.OrphanGC.Schedule == "" {
				return response.BadRequest(nil, "Schedule cannot be empty")
			}
			models.SetSetting(SettingOrphanGCSchedule, *request.OrphanGC.Schedule, "", "", "")
		}
	}

	if request.WebhookLog != nil {
		if request.WebhookLog.RetentionDays != nil {
			if *request.WebhookLog.RetentionDays < 1 {
				return response.BadRequest(nil, "Retention days must be at least 1")
			}
			updateSettingInt(SettingWebhookLogRetentionDays, *request.WebhookLog.RetentionDays)
		}
	}

	return GetJobSettings(req)
}

// Helper functions

func getSettingBool(key string, defaultValue bool) bool {
	setting, err := models.GetSetting(key)
	if err != nil || setting == nil {
		return defaultValue
	}
	return setting.Value == "true" || setting.Value == "1"
}

func getSettingInt(key string, defaultValue int) int {
	setting, err := models.GetSetting(key)
	if err != nil || setting == nil {
		return defaultValue
	}
	val, err := strconv.Atoi(setting.Value)
	if err != nil {
		return defaultValue
	}
	return val
}

func getSettingString(key string, defaultValue string) string {
	setting, err := models.GetSetting(key)
	if err != nil || setting == nil || setting.Value == "" {
		return defaultValue
	}
	return setting.Value
}

func updateSettingBool(key string, value bool) {
	strValue := "false"
	if value {
		strValue = "true"
	}
	models.SetSetting(key, strValue, "", "", "")
}

func updateSettingInt(key string, value int) {
	models.SetSetting(key, strconv.Itoa(value), "", "", "")
}
