package units

import (
	"testing"

	"github.com/iesreza/stayhub-backend/apps/fields"
	"github.com/iesreza/stayhub-backend/apps/models"
	"github.com/iesreza/stayhub-backend/lib/dynamicform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func testDefinitions() []dynamicform.Definition {
	rows := []models.FieldDefinition{
		{
			ID:              1,
			FieldName:       "bedrooms",
			FieldTypeKey:    dynamicform.TypeNumber,
			ValidationRules: datatypes.JSON(`{"min":0,"max":10}`),
		},
		{
			ID:           2,
			FieldName:    "furnished",
			FieldTypeKey: dynamicform.TypeBoolean,
		},
		{
			ID:           3,
			FieldName:    "keywords",
			FieldTypeKey: dynamicform.TypeTag,
		},
	}
	return engineDefinitions(rows)
}

func TestInitializeValuesSeedsDefaultsAndStoredRows(t *testing.T) {
	defs := testDefinitions()
	stored := []models.FieldValue{
		{UnitID: 1, FieldID: 1, RawValue: "3"},
		{UnitID: 1, FieldID: 99, RawValue: "orphan"},
	}

	values := initializeValues(defs, stored)

	assert.Equal(t, float64(3), values[1])
	assert.Equal(t, false, values[2])
	assert.Equal(t, []string{}, values[3])
	_, hasOrphan := values[99]
	assert.False(t, hasOrphan, "orphan rows never enter the form state")
}

func TestApplyInputsInOrder(t *testing.T) {
	defs := testDefinitions()
	values := initializeValues(defs, nil)

	updated, rejected := applyInputs(defs, values, []ValueInput{
		{FieldID: 1, Value: "4"},
		{FieldID: 2},
		{FieldID: 3, Value: "beach, family"},
	})

	require.Nil(t, rejected)
	assert.Equal(t, float64(4), updated[1])
	assert.Equal(t, true, updated[2])
	assert.Equal(t, []string{"beach", "family"}, updated[3])
}

func TestApplyInputsUnknownFieldStopsProcessing(t *testing.T) {
	defs := testDefinitions()
	values := initializeValues(defs, nil)

	_, rejected := applyInputs(defs, values, []ValueInput{
		{FieldID: 1, Value: "4"},
		{FieldID: 42, Value: "x"},
	})

	require.NotNil(t, rejected)
	assert.Equal(t, uint(42), rejected.FieldID)
}

func TestApplyInputsRejectedCoercionKeepsValue(t *testing.T) {
	defs := testDefinitions()
	values := initializeValues(defs, []models.FieldValue{{FieldID: 1, RawValue: "3"}})

	updated, rejected := applyInputs(defs, values, []ValueInput{
		{FieldID: 1, Value: "999"},
	})

	require.Nil(t, rejected)
	assert.Equal(t, float64(3), updated[1], "out of range input keeps the previous value")
}

func TestSharedPropertyFieldsAppearInSchemaAndValues(t *testing.T) {
	own := []models.FieldDefinition{
		{ID: 1, OwnerScope: models.OwnerScopeUnitType, OwnerTypeID: 5, FieldName: "bedrooms", FieldTypeKey: dynamicform.TypeNumber},
	}
	shared := []models.FieldDefinition{
		{ID: 2, OwnerScope: models.OwnerScopePropertyType, OwnerTypeID: 9, FieldName: "house_rules", FieldTypeKey: dynamicform.TypeText, IsForUnits: true, Category: "policies"},
	}

	view := fields.BuildSchemaView(models.OwnerScopeUnitType, 5, nil, own)
	view.MergeUngrouped(shared)

	defs := view.Definitions()
	require.Len(t, defs, 2)
	assert.Contains(t, view.Categories, "policies")

	values := initializeValues(engineDefinitions(defs), nil)
	for _, def := range defs {
		_, ok := values[def.ID]
		assert.True(t, ok, "field %s must be in both the layout and the value map", def.FieldName)
	}
}

func TestApplyInputsRemovesTagByIndex(t *testing.T) {
	defs := testDefinitions()
	values := initializeValues(defs, []models.FieldValue{{FieldID: 3, RawValue: `["beach","family","pool"]`}})

	index := 1
	updated, rejected := applyInputs(defs, values, []ValueInput{
		{FieldID: 3, RemoveTagIndex: &index},
	})

	require.Nil(t, rejected)
	assert.Equal(t, []string{"beach", "pool"}, updated[3])
}
