package fields

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
	var groups GroupController

	evo.Use("/api/admin/fields", system.AdminMiddleware)
	evo.Use("/api/admin/field-groups", system.AdminMiddleware)
	evo.Use("/api/admin/field-types", system.AdminMiddleware)
	evo.Use("/api/admin/fields", redis.EvoRateLimitMiddleware("fields.admin"))
	evo.Use("/api/admin/field-groups", redis.EvoRateLimitMiddleware("fields.admin"))

	// Field type catalog
	evo.Get("/api/admin/field-types", controller.ListFieldTypes)

	// Field definitions
	evo.Get("/api/admin/fields", controller.ListDefinitions)
	evo.Post("/api/admin/fields", controller.CreateDefinition)
	evo.Get("/api/admin/fields/schema", controller.GetSchema)
	evo.Get("/api/admin/fields/orphans", controller.ListOrphanValues)
	evo.Delete("/api/admin/fields/orphans", controller.PurgeOrphanValues)
	evo.Get("/api/admin/fields/:id", controller.GetDefinition)
	evo.Put("/api/admin/fields/:id", controller.UpdateDefinition)
	evo.Delete("/api/admin/fields/:id", controller.DeleteDefinition)

	// Field groups
	evo.Get("/api/admin/field-groups", groups.ListGroups)
	evo.Post("/api/admin/field-groups", groups.CreateGroup)
	evo.Post("/api/admin/field-groups/reorder", groups.ReorderGroups)
	evo.Get("/api/admin/field-groups/:id", groups.GetGroup)
	evo.Put("/api/admin/field-groups/:id", groups.UpdateGroup)
	evo.Delete("/api/admin/field-groups/:id", groups.DeleteGroup)
	evo.Post("/api/admin/field-groups/:id/fields/:field", groups.AssignField)
	evo.Delete("/api/admin/field-groups/fields/:field", groups.DetachField)

	return nil
}

func (a App) WhenReady() error {
	SubscribeSchemaChanges()
	return nil
}

func (a App) Name() string {
	return "fields"
}
