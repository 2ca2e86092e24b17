package dynamicform

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDefaultValueTotality(t *testing.T) {
	for _, typeKey := range TypeKeys() {
		def := Definition{FieldID: 1, FieldName: "field", TypeKey: typeKey}
		assert.NotPanics(t, func() {
			value := DefaultValueFor(def)
			switch typeKey {
			case TypeBoolean, TypeCheckbox:
				assert.Equal(t, false, value, typeKey)
			case TypeMultiselect, TypeTag:
				assert.Equal(t, []string{}, value, typeKey)
			case TypeNumber, TypeCurrency, TypePercentage, TypeRange:
				assert.IsType(t, float64(0), value, typeKey)
			default:
				assert.Equal(t, "", value, typeKey)
			}
		}, typeKey)
	}
}

func TestDefaultValueUnknownTypeFallsBackToText(t *testing.T) {
	def := Definition{FieldID: 7, TypeKey: "hologram"}
	assert.False(t, IsKnown("hologram"))
	assert.Equal(t, "", DefaultValueFor(def))
	assert.Equal(t, AcceptedKeys(TypeText), AcceptedKeys("hologram"))
}

func TestNumericDefaultUsesConfiguredMinimum(t *testing.T) {
	def := Definition{
		FieldID: 2,
		TypeKey: TypeCurrency,
		Rules:   map[string]any{RuleMin: float64(50)},
	}
	assert.Equal(t, float64(50), DefaultValueFor(def))

	// min may arrive as a string when rules were edited by hand
	def.Rules = map[string]any{RuleMin: "25"}
	assert.Equal(t, float64(25), DefaultValueFor(def))

	def.Rules = nil
	assert.Equal(t, float64(0), DefaultValueFor(def))
}

func TestAcceptedKeysPerFamily(t *testing.T) {
	assert.ElementsMatch(t, []string{RuleMin, RuleMax, RuleStep}, AcceptedKeys(TypeNumber))
	assert.ElementsMatch(t, []string{RuleMinLength, RuleMaxLength, RulePattern}, AcceptedKeys(TypeText))
	assert.ElementsMatch(t, []string{RuleMinDate, RuleMaxDate}, AcceptedKeys(TypeDatetime))
	assert.Empty(t, AcceptedKeys(TypeBoolean))
	assert.Empty(t, AcceptedKeys(TypeSelect))
}

func TestIsKnownCoversCatalog(t *testing.T) {
	for _, typeKey := range []string{
		TypeText, TypeTextarea, TypeNumber, TypeCurrency, TypePercentage,
		TypeBoolean, TypeCheckbox, TypeSelect, TypeMultiselect, TypeDate,
		TypeDatetime, TypeTime, TypeEmail, TypePhone, TypeURL, TypeColor,
		TypeRange, TypeRating, TypeFile, TypeImage, TypeTag,
	} {
		assert.True(t, IsKnown(typeKey), typeKey)
	}
}
