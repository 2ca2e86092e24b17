package units

import (
	"github.com/getevo/evo/v2/lib/db"
	"github.com/iesreza/stayhub-backend/apps/fields"
	"github.com/iesreza/stayhub-backend/apps/models"
	"github.com/iesreza/stayhub-backend/lib/dynamicform"
)

// ValueInput is one submitted change to a unit's field. Value carries the raw
// input handed to the field's coercion. RemoveTagIndex instead removes the
// tag at that position for tag fields.
type ValueInput struct {
	FieldID        uint   `json:"field_id"`
	Value          string `json:"value"`
	RemoveTagIndex *int   `json:"remove_tag_index,omitempty"`
}

// UnitFormPayload is the full form state handed to a rendering client:
// the schema view for layout plus the current value of every field.
type UnitFormPayload struct {
	Unit   models.Unit          `json:"unit"`
	Schema *fields.SchemaView   `json:"schema"`
	Values dynamicform.ValueMap `json:"values"`
}

// loadFormDefinitions resolves the definitions applicable to one unit: the
// unit type's own fields plus the owning property type's fields that are
// flagged for units. Shared fields merge into the view's ungrouped category
// sections, so every definition the engine sees is also part of the layout.
func loadFormDefinitions(unit *models.Unit) ([]models.FieldDefinition, *fields.SchemaView, error) {
	view, err := fields.SchemaFor(models.OwnerScopeUnitType, unit.UnitTypeID)
	if err != nil {
		return nil, nil, err
	}

	if unit.UnitType.PropertyTypeID != 0 {
		var shared []models.FieldDefinition
		err = db.Where("owner_scope = ? AND owner_type_id = ? AND is_for_units = ?",
			models.OwnerScopePropertyType, unit.UnitType.PropertyTypeID, true).
			Order("sort_order, field_name").
			Find(&shared).Error
		if err != nil {
			return nil, nil, err
		}
		view.MergeUngrouped(shared)
	}

	return view.Definitions(), view, nil
}

// engineDefinitions converts model rows into the form engine's view of them.
func engineDefinitions(defs []models.FieldDefinition) []dynamicform.Definition {
	converted := make([]dynamicform.Definition, 0, len(defs))
	for _, def := range defs {
		converted = append(converted, def.FormDefinition())
	}
	return converted
}

// initializeValues builds the in-memory value map of a unit from its stored
// rows, seeding defaults for fields with no stored value.
func initializeValues(defs []dynamicform.Definition, stored []models.FieldValue) dynamicform.ValueMap {
	existing := make([]dynamicform.ExistingValue, 0, len(stored))
	for _, row := range stored {
		existing = append(existing, row.Existing())
	}
	return dynamicform.Initialize(defs, existing)
}

// applyInputs runs submitted changes through the engine in submission order.
// The second return value is the first input referencing a field outside the
// unit's schema, nil when all inputs were applicable. Rejected coercions are
// not errors; they leave the value unchanged.
func applyInputs(defs []dynamicform.Definition, values dynamicform.ValueMap, inputs []ValueInput) (dynamicform.ValueMap, *ValueInput) {
	byID := make(map[uint]dynamicform.Definition, len(defs))
	for _, def := range defs {
		byID[def.FieldID] = def
	}

	for i, input := range inputs {
		def, ok := byID[input.FieldID]
		if !ok {
			return values, &inputs[i]
		}
		if input.RemoveTagIndex != nil {
			values = dynamicform.RemoveTag(values, def, *input.RemoveTagIndex)
			continue
		}
		values = dynamicform.Update(values, def, input.Value)
	}
	return values, nil
}
