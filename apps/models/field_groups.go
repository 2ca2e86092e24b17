package models

import (
	"time"

	"github.com/getevo/restify"
)

// FieldGroup is a presentation container organizing field definitions into
// collapsible sections. A definition belongs to at most one group at a time;
// assigning it elsewhere detaches it from the previous group. Definitions
// without a group fall into per-category buckets computed on demand.
type FieldGroup struct {
	ID                  uint      `gorm:"column:id;primaryKey" json:"id"`
	OwnerScope          string    `gorm:"column:owner_scope;size:20;not null;uniqueIndex:idx_owner_group_name;check:owner_scope IN ('property_type','unit_type')" json:"owner_scope"`
	OwnerTypeID         uint      `gorm:"column:owner_type_id;not null;uniqueIndex:idx_owner_group_name" json:"owner_type_id"`
	GroupName           string    `gorm:"column:group_name;size:100;not null;uniqueIndex:idx_owner_group_name;check:group_name REGEXP '^[a-z0-9_]+$'" json:"group_name"`
	DisplayName         string    `gorm:"column:display_name;size:255;not null" json:"display_name"`
	Description         *string   `gorm:"column:description;type:text" json:"description"`
	SortOrder           int       `gorm:"column:sort_order;default:0" json:"sort_order"`
	IsCollapsible       bool      `gorm:"column:is_collapsible;default:1" json:"is_collapsible"`
	IsExpandedByDefault bool      `gorm:"column:is_expanded_by_default;default:1" json:"is_expanded_by_default"`
	CreatedAt           time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt           time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Fields []FieldDefinition `gorm:"foreignKey:GroupID;references:ID" json:"fields,omitempty"`

	restify.API
}

func (FieldGroup) TableName() string {
	return "field_groups"
}
