package models

import (
	"encoding/json"
	"time"

	"github.com/getevo/restify"
	"github.com/iesreza/stayhub-backend/lib/dynamicform"
	"gorm.io/datatypes"
)

// DefaultFieldCategory is the implicit bucket for ungrouped definitions that
// carry no category of their own.
const DefaultFieldCategory = "general"

// FieldDefinition describes one operator-defined attribute attached to a
// property type or unit type. Administrators create definitions through the
// admin interface; end users fill in values for them per unit without any
// code change per field.
//
// Usage:
// 1. Create FieldDefinition: owner_scope="unit_type", field_name="sea_view",
//    field_type_key="boolean"
// 2. The unit form renders the field with its catalog default
// 3. Committed values are stored as field_values rows keyed by (unit, field)
//
// ValidationRules is an open JSON map; keys the referenced field type does
// not understand are dropped on write rather than rejected, so configuration
// shipped before a type's accepted-key set changed keeps working.
type FieldDefinition struct {
	ID              uint           `gorm:"column:id;primaryKey" json:"id"`
	OwnerScope      string         `gorm:"column:owner_scope;size:20;not null;uniqueIndex:idx_owner_field_name;check:owner_scope IN ('property_type','unit_type')" json:"owner_scope"`
	OwnerTypeID     uint           `gorm:"column:owner_type_id;not null;uniqueIndex:idx_owner_field_name" json:"owner_type_id"`
	FieldName       string         `gorm:"column:field_name;size:100;not null;uniqueIndex:idx_owner_field_name;check:field_name REGEXP '^[a-z0-9_]+$'" json:"field_name"`
	DisplayName     string         `gorm:"column:display_name;size:255;not null" json:"display_name"`
	Description     *string        `gorm:"column:description;type:text" json:"description"`
	FieldTypeKey    string         `gorm:"column:field_type_key;size:50;not null" json:"field_type_key"`
	FieldOptions    datatypes.JSON `gorm:"column:field_options;type:json" json:"field_options"`
	ValidationRules datatypes.JSON `gorm:"column:validation_rules;type:json" json:"validation_rules"`
	IsRequired      bool           `gorm:"column:is_required;default:0" json:"is_required"`
	IsSearchable    bool           `gorm:"column:is_searchable;default:0" json:"is_searchable"`
	IsPublic        bool           `gorm:"column:is_public;default:1" json:"is_public"`
	IsForUnits      bool           `gorm:"column:is_for_units;default:1" json:"is_for_units"`
	SortOrder       int            `gorm:"column:sort_order;default:0" json:"sort_order"`
	Category        string         `gorm:"column:category;size:100;not null;default:'general'" json:"category"`
	GroupID         *uint          `gorm:"column:group_id;index;fk:field_groups" json:"group_id"`
	CreatedAt       time.Time      `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Group *FieldGroup `gorm:"foreignKey:GroupID;references:ID" json:"group,omitempty"`

	restify.API
}

func (FieldDefinition) TableName() string {
	return "field_definitions"
}

// OptionsMap decodes the open field_options column. A missing or malformed
// column decodes to an empty map.
func (d *FieldDefinition) OptionsMap() map[string]any {
	return decodeJSONMap(d.FieldOptions)
}

// RulesMap decodes the open validation_rules column.
func (d *FieldDefinition) RulesMap() map[string]any {
	return decodeJSONMap(d.ValidationRules)
}

// FormDefinition converts the row into the engine's view of the schema.
func (d *FieldDefinition) FormDefinition() dynamicform.Definition {
	return dynamicform.Definition{
		FieldID:   d.ID,
		FieldName: d.FieldName,
		TypeKey:   d.FieldTypeKey,
		Required:  d.IsRequired,
		Options:   d.OptionsMap(),
		Rules:     d.RulesMap(),
	}
}

// EffectiveCategory returns the category bucket an ungrouped definition
// renders under.
func (d *FieldDefinition) EffectiveCategory() string {
	if d.Category == "" {
		return DefaultFieldCategory
	}
	return d.Category
}

// SanitizeValidationRules rewrites validation_rules so it only carries keys
// the field type understands. Unknown keys are dropped silently; the lenient
// behavior is deliberate so the admin UI can ship rules ahead of the backend.
func (d *FieldDefinition) SanitizeValidationRules() {
	rules := d.RulesMap()
	if len(rules) == 0 {
		return
	}
	sanitized := FilterValidationRules(d.FieldTypeKey, rules)
	encoded, err := json.Marshal(sanitized)
	if err != nil {
		return
	}
	d.ValidationRules = datatypes.JSON(encoded)
}

// FilterValidationRules keeps only the rule keys accepted by the given field
// type.
func FilterValidationRules(typeKey string, rules map[string]any) map[string]any {
	accepted := make(map[string]bool)
	for _, key := range dynamicform.AcceptedKeys(typeKey) {
		accepted[key] = true
	}
	filtered := make(map[string]any, len(rules))
	for key, value := range rules {
		if accepted[key] {
			filtered[key] = value
		}
	}
	return filtered
}

func decodeJSONMap(raw datatypes.JSON) map[string]any {
	result := map[string]any{}
	if len(raw) == 0 {
		return result
	}
	_ = json.Unmarshal(raw, &result)
	return result
}
