package properties

import (
	"github.com/getevo/evo/v2"
	"github.com/iesreza/stayhub-backend/apps/system"
)

type App struct {
}

func (a App) Register() error {
	return nil
}

func (a App) Router() error {
	var controller Controller

	evo.Use("/api/property-types", system.AdminMiddleware)
	evo.Use("/api/unit-types", system.AdminMiddleware)

	evo.Get("/api/property-types", controller.ListPropertyTypes)
	evo.Post("/api/property-types", controller.CreatePropertyType)
	evo.Get("/api/property-types/:id", controller.GetPropertyType)
	evo.Put("/api/property-types/:id", controller.UpdatePropertyType)
	evo.Delete("/api/property-types/:id", controller.DeletePropertyType)

	evo.Get("/api/unit-types", controller.ListUnitTypes)
	evo.Post("/api/unit-types", controller.CreateUnitType)
	evo.Put("/api/unit-types/:id", controller.UpdateUnitType)
	evo.Delete("/api/unit-types/:id", controller.DeleteUnitType)

	return nil
}

func (a App) WhenReady() error {
	return nil
}

func (a App) Name() string {
	return "properties"
}
