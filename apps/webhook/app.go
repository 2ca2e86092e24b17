package webhook

import (
	"github.com/getevo/evo/v2"
	"github.com/iesreza/stayhub-backend/apps/models"
	"github.com/iesreza/stayhub-backend/apps/redis"
	"github.com/iesreza/stayhub-backend/apps/system"
)

type App struct {
}

func (a App) Register() error {
	// Set the webhook broadcaster callback in models package
	models.WebhookBroadcaster = BroadcastWebhook
	return nil
}

func (a App) Router() error {
	var controller Controller

	// Webhook CRUD itself is served by restify; the model embeds restify.API

	evo.Use("/api/admin/webhooks", system.AdminMiddleware)
	evo.Use("/api/admin/webhooks", redis.EvoRateLimitMiddleware("webhooks.test"))

	evo.Post("/api/admin/webhooks/:id/test", controller.TestWebhook)
	evo.Get("/api/admin/webhooks/:id/deliveries", controller.ListDeliveries)

	return nil
}

func (a App) WhenReady() error {
	// Handle CLI commands
	GenerateMockWebhook()
	return nil
}

func (a App) Name() string {
	return "webhook"
}
