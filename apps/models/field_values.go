package models

import (
	"encoding/json"
	"strconv"
	"time"

	"github.com/getevo/evo/v2/lib/db"
	"github.com/getevo/restify"
	"github.com/iesreza/stayhub-backend/lib/dynamicform"
	"gorm.io/gorm"
)

// FieldValue is the persisted value of one field definition for one unit.
// At most one row exists per (unit, field) pair; committing a form upserts
// on that key. RawValue carries the string serialization: multiselect and
// tag values as an ordered de-duplicated JSON array, numbers in canonical
// decimal form, booleans as "true"/"false", everything else verbatim.
type FieldValue struct {
	ID        uint      `gorm:"column:id;primaryKey" json:"id"`
	UnitID    uint      `gorm:"column:unit_id;not null;uniqueIndex:idx_unit_field;fk:units" json:"unit_id"`
	FieldID   uint      `gorm:"column:field_id;not null;uniqueIndex:idx_unit_field;index" json:"field_id"`
	RawValue  string    `gorm:"column:raw_value;type:text" json:"raw_value"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime" json:"updated_at"`

	// Relationships
	Unit Unit `gorm:"foreignKey:UnitID;references:ID" json:"unit,omitempty"`

	restify.API
}

func (FieldValue) TableName() string {
	return "field_values"
}

// Existing converts the row into the engine's existing-value shape.
func (v *FieldValue) Existing() dynamicform.ExistingValue {
	return dynamicform.ExistingValue{FieldID: v.FieldID, RawValue: v.RawValue}
}

// EncodeFieldValue serializes a typed in-memory value from a committed map
// into the raw string stored in field_values.
func EncodeFieldValue(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case bool:
		return strconv.FormatBool(v)
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case int:
		return strconv.Itoa(v)
	case []string:
		encoded, err := json.Marshal(dedupeOrdered(v))
		if err != nil {
			return "[]"
		}
		return string(encoded)
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
		return EncodeFieldValue(items)
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return ""
	}
	return string(encoded)
}

// GetFieldValue retrieves the value row for one (unit, field) pair.
func GetFieldValue(unitID, fieldID uint) (*FieldValue, error) {
	var value FieldValue
	err := db.Where("unit_id = ? AND field_id = ?", unitID, fieldID).First(&value).Error
	if err != nil {
		return nil, err
	}
	return &value, nil
}

// UpsertFieldValueTx creates or replaces the value for a (unit, field) pair
// inside an existing transaction, so a form commit either persists every
// field or none of them. Repeating the same upsert leaves the stored state
// unchanged.
func UpsertFieldValueTx(tx *gorm.DB, unitID, fieldID uint, rawValue string) error {
	var value FieldValue
	err := tx.Where("unit_id = ? AND field_id = ?", unitID, fieldID).First(&value).Error
	if err != nil {
		value = FieldValue{UnitID: unitID, FieldID: fieldID, RawValue: rawValue}
		return tx.Create(&value).Error
	}
	if value.RawValue == rawValue {
		return nil
	}
	value.RawValue = rawValue
	return tx.Save(&value).Error
}

// DeleteFieldValue removes the value for a (unit, field) pair and reports
// whether a row existed.
func DeleteFieldValue(unitID, fieldID uint) (int64, error) {
	result := db.Where("unit_id = ? AND field_id = ?", unitID, fieldID).Delete(&FieldValue{})
	return result.RowsAffected, result.Error
}

// ListUnitFieldValues returns all stored values of a unit.
func ListUnitFieldValues(unitID uint) ([]FieldValue, error) {
	var values []FieldValue
	err := db.Where("unit_id = ?", unitID).Order("field_id").Find(&values).Error
	return values, err
}

// ListOrphanFieldValues returns values whose field definition no longer
// exists. Orphans never block form rendering; they linger until the cleanup
// job or an operator purges them.
func ListOrphanFieldValues(limit int) ([]FieldValue, error) {
	var values []FieldValue
	query := db.Where("field_id NOT IN (SELECT id FROM field_definitions)")
	if limit > 0 {
		query = query.Limit(limit)
	}
	err := query.Find(&values).Error
	return values, err
}

// PurgeOrphanFieldValues deletes all orphaned values and reports how many
// rows went away.
func PurgeOrphanFieldValues() (int64, error) {
	result := db.Where("field_id NOT IN (SELECT id FROM field_definitions)").Delete(&FieldValue{})
	return result.RowsAffected, result.Error
}

func dedupeOrdered(items []string) []string {
	seen := make(map[string]bool, len(items))
	result := make([]string, 0, len(items))
	for _, item := range items {
		if seen[item] {
			continue
		}
		seen[item] = true
		result = append(result, item)
	}
	return result
}
