package models

import (
	"time"

	"github.com/getevo/restify"
)

// Owner scope constants for field definitions and field groups
const (
	OwnerScopePropertyType = "property_type"
	OwnerScopeUnitType     = "unit_type"
)

// PropertyType represents a category of bookable property (hotel, villa,
// chalet, ...). Field definitions attached to a property type describe the
// attributes every property of that type carries.
type PropertyType struct {
	ID          uint      `gorm:"column:id;primaryKey" json:"id"`
	Name        string    `gorm:"column:name;size:100;uniqueIndex;not null;check:name REGEXP '^[a-z_]+$'" json:"name"`
	DisplayName string    `gorm:"column:display_name;size:255;not null" json:"display_name"`
	Description *string   `gorm:"column:description;type:text" json:"description"`
	Icon        *string   `gorm:"column:icon;size:100" json:"icon"`
	Enabled     bool      `gorm:"column:enabled;default:1" json:"enabled"`
	CreatedAt   time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	UnitTypes []UnitType `gorm:"foreignKey:PropertyTypeID;references:ID" json:"unit_types,omitempty"`

	restify.API
}

func (PropertyType) TableName() string {
	return "property_types"
}

// UnitType represents a kind of bookable unit within a property type
// (double room, suite, studio, ...). Units reference a unit type, and the
// unit type owns the schema of unit-level field definitions.
type UnitType struct {
	ID             uint      `gorm:"column:id;primaryKey" json:"id"`
	PropertyTypeID uint      `gorm:"column:property_type_id;not null;index;fk:property_types" json:"property_type_id"`
	Name           string    `gorm:"column:name;size:100;not null;check:name REGEXP '^[a-z_]+$'" json:"name"`
	DisplayName    string    `gorm:"column:display_name;size:255;not null" json:"display_name"`
	Description    *string   `gorm:"column:description;type:text" json:"description"`
	MaxOccupancy   int       `gorm:"column:max_occupancy;default:2" json:"max_occupancy"`
	Enabled        bool      `gorm:"column:enabled;default:1" json:"enabled"`
	CreatedAt      time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	PropertyType PropertyType `gorm:"foreignKey:PropertyTypeID;references:ID" json:"property_type,omitempty"`
	Units        []Unit       `gorm:"foreignKey:UnitTypeID;references:ID" json:"units,omitempty"`

	restify.API
}

func (UnitType) TableName() string {
	return "unit_types"
}
