package models

import (
	"testing"

	"github.com/iesreza/stayhub-backend/lib/dynamicform"
	"github.com/stretchr/testify/assert"
	"gorm.io/datatypes"
)

func TestFilterValidationRulesDropsUnknownKeys(t *testing.T) {
	rules := map[string]any{
		"min":       float64(0),
		"max":       float64(10),
		"pattern":   "^x$", // not understood by numeric types
		"minLength": float64(3),
	}

	filtered := FilterValidationRules(dynamicform.TypeNumber, rules)
	assert.Equal(t, map[string]any{"min": float64(0), "max": float64(10)}, filtered)

	filtered = FilterValidationRules(dynamicform.TypeText, rules)
	assert.Equal(t, map[string]any{"pattern": "^x$", "minLength": float64(3)}, filtered)
}

func TestSanitizeValidationRules(t *testing.T) {
	def := FieldDefinition{
		FieldTypeKey:    dynamicform.TypeNumber,
		ValidationRules: datatypes.JSON(`{"min":1,"pattern":"^a$"}`),
	}
	def.SanitizeValidationRules()

	rules := def.RulesMap()
	assert.Equal(t, float64(1), rules["min"])
	_, hasPattern := rules["pattern"]
	assert.False(t, hasPattern, "pattern is not a numeric rule and must be dropped")
}

func TestFormDefinitionConversion(t *testing.T) {
	def := FieldDefinition{
		ID:              5,
		FieldName:       "amenities",
		FieldTypeKey:    dynamicform.TypeMultiselect,
		IsRequired:      true,
		FieldOptions:    datatypes.JSON(`{"options":["wifi","pool"]}`),
		ValidationRules: datatypes.JSON(`{"maxItems":2}`),
	}

	form := def.FormDefinition()
	assert.Equal(t, uint(5), form.FieldID)
	assert.Equal(t, "amenities", form.FieldName)
	assert.Equal(t, dynamicform.TypeMultiselect, form.TypeKey)
	assert.True(t, form.Required)
	assert.Equal(t, []any{"wifi", "pool"}, form.Options["options"])
	assert.Equal(t, float64(2), form.Rules["maxItems"])
}

func TestFormDefinitionWithMalformedJSON(t *testing.T) {
	def := FieldDefinition{
		ID:              6,
		FieldName:       "broken",
		FieldTypeKey:    dynamicform.TypeText,
		FieldOptions:    datatypes.JSON(`{not json`),
		ValidationRules: nil,
	}

	form := def.FormDefinition()
	assert.Empty(t, form.Options)
	assert.Empty(t, form.Rules)
}

func TestEffectiveCategory(t *testing.T) {
	def := FieldDefinition{Category: ""}
	assert.Equal(t, DefaultFieldCategory, def.EffectiveCategory())

	def.Category = "pricing"
	assert.Equal(t, "pricing", def.EffectiveCategory())
}
