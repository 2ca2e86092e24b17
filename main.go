package main

import (
	"github.com/getevo/evo/v2"
	"github.com/getevo/evo/v2/lib/application"
	"github.com/iesreza/stayhub-backend/apps/fields"
	"github.com/iesreza/stayhub-backend/apps/jobs"
	"github.com/iesreza/stayhub-backend/apps/models"
	"github.com/iesreza/stayhub-backend/apps/nats"
	"github.com/iesreza/stayhub-backend/apps/properties"
	"github.com/iesreza/stayhub-backend/apps/redis"
	"github.com/iesreza/stayhub-backend/apps/storage"
	"github.com/iesreza/stayhub-backend/apps/system"
	"github.com/iesreza/stayhub-backend/apps/units"
	"github.com/iesreza/stayhub-backend/apps/webhook"
)

func main() {
	evo.Setup()

	var apps = application.GetInstance()
	apps.Register(system.App{}, models.App{}, redis.App{}, nats.App{}, storage.App{}, properties.App{}, fields.App{}, units.App{}, webhook.App{}, jobs.App{})

	evo.Run()
}
