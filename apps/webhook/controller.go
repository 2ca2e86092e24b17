package webhook

import (
	"time"

	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/db"
	"github.com/iesreza/stayhub-backend/apps/models"
	"github.com/iesreza/stayhub-backend/lib/response"
)

type Controller struct{}

// TestWebhook sends a test payload to the webhook
func (c Controller) TestWebhook(request *evo.Request) any {
	webhookID := request.Param("id").String()
	var webhook models.Webhook

	if err := db.First(&webhook, webhookID).Error; err != nil {
		return response.NotFound(request, "Webhook not found")
	}

	if err := SendWebhook(&webhook, models.WebhookEventWebhookTest, map[string]any{
		"message":    "This is a test webhook",
		"webhook_id": webhook.ID,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
	}); err != nil {
		return response.InternalError(request, "Failed to send test webhook: "+err.Error())
	}

	return response.OK(map[string]any{
		"message": "Test webhook sent successfully",
	})
}

// ListDeliveries returns the delivery log of one webhook, newest first
func (c Controller) ListDeliveries(request *evo.Request) any {
	webhookID := request.Param("id").String()
	var webhook models.Webhook
	if err := db.First(&webhook, webhookID).Error; err != nil {
		return response.NotFound(request, "Webhook not found")
	}

	limit := int(request.Query("limit").Int())
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var deliveries []models.WebhookDelivery
	err := db.Where("webhook_id = ?", webhook.ID).
		Order("created_at DESC").
		Limit(limit).
		Find(&deliveries).Error
	if err != nil {
		return response.Error(response.ErrDatabaseError)
	}
	return response.List(deliveries, len(deliveries))
}
