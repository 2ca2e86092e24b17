package models

import (
	"time"

	"github.com/getevo/restify"
)

// Unit status constants
const (
	UnitStatusAvailable   = "available"
	UnitStatusOccupied    = "occupied"
	UnitStatusMaintenance = "maintenance"
)

// Unit represents a concrete bookable unit. Its dynamic attributes live in
// field_values rows keyed by the field definitions of its unit type.
type Unit struct {
	ID         uint      `gorm:"column:id;primaryKey" json:"id"`
	UnitTypeID uint      `gorm:"column:unit_type_id;not null;index;fk:unit_types" json:"unit_type_id"`
	Code       string    `gorm:"column:code;size:50;uniqueIndex;not null" json:"code"`
	Name       string    `gorm:"column:name;size:255;not null" json:"name"`
	Status     string    `gorm:"column:status;size:20;not null;default:'available';check:status IN ('available','occupied','maintenance')" json:"status"`
	CreatedAt  time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	UnitType UnitType     `gorm:"foreignKey:UnitTypeID;references:ID" json:"unit_type,omitempty"`
	Values   []FieldValue `gorm:"foreignKey:UnitID;references:ID" json:"values,omitempty"`

	restify.API
}

func (Unit) TableName() string {
	return "units"
}
