package units

import (
	"github.com/getevo/evo/v2"
	"github.com/iesreza/stayhub-backend/apps/redis"
	"github.com/iesreza/stayhub-backend/apps/system"
)

type App struct {
}

func (a App) Register() error {
	return nil
}

func (a App) Router() error {
	var controller Controller

	evo.Use("/api/units", system.AdminMiddleware)
	evo.Use("/api/units", redis.EvoRateLimitMiddleware("units.api"))

	evo.Get("/api/units", controller.ListUnits)
	evo.Post("/api/units", controller.CreateUnit)
	evo.Get("/api/units/:id", controller.GetUnit)
	evo.Put("/api/units/:id", controller.UpdateUnit)
	evo.Delete("/api/units/:id", controller.DeleteUnit)

	evo.Get("/api/units/:id/form", controller.GetForm)
	evo.Put("/api/units/:id/fields", controller.CommitValues)
	evo.Get("/api/units/:id/fields/:field", controller.GetValue)
	evo.Delete("/api/units/:id/fields/:field", controller.ClearValue)

	return nil
}

func (a App) WhenReady() error {
	return nil
}

func (a App) Name() string {
	return "units"
}
