package models

import (
	"github.com/getevo/evo/v2/lib/args"
	"github.com/getevo/evo/v2/lib/db"
)

type App struct{}

func (a App) Register() error {
	// Register all models with GORM
	db.UseModel(PropertyType{})
	db.UseModel(UnitType{})
	db.UseModel(Unit{})

	// Dynamic field engine models
	db.UseModel(FieldDefinition{})
	db.UseModel(FieldGroup{})
	db.UseModel(FieldValue{})

	db.UseModel(Webhook{})
	db.UseModel(WebhookDelivery{})

	// Settings model
	db.UseModel(Setting{})

	return nil
}

func (a App) Router() error {
	return nil
}

func (a App) WhenReady() error {
	if args.Exists("--migration-do") {
		err := db.DoMigration()
		if err != nil {
			return err
		}
	}
	return nil
}

func (a App) Name() string {
	return "models"
}
