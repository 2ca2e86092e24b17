package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncodeFieldValueStrings(t *testing.T) {
	assert.Equal(t, "sea view", EncodeFieldValue("sea view"))
	assert.Equal(t, "", EncodeFieldValue(nil))
	assert.Equal(t, "", EncodeFieldValue(""))
}

func TestEncodeFieldValueNumbersAreCanonicalDecimal(t *testing.T) {
	assert.Equal(t, "3", EncodeFieldValue(float64(3)))
	assert.Equal(t, "3.5", EncodeFieldValue(3.5))
	assert.Equal(t, "1250000", EncodeFieldValue(float64(1250000)))
	assert.Equal(t, "42", EncodeFieldValue(42))
}

func TestEncodeFieldValueBooleans(t *testing.T) {
	assert.Equal(t, "true", EncodeFieldValue(true))
	assert.Equal(t, "false", EncodeFieldValue(false))
}

func TestEncodeFieldValueSequencesAreOrderedAndDeduped(t *testing.T) {
	assert.Equal(t, `["wifi","pool"]`, EncodeFieldValue([]string{"wifi", "pool"}))
	assert.Equal(t, `["wifi","pool"]`, EncodeFieldValue([]string{"wifi", "pool", "wifi"}))
	assert.Equal(t, `[]`, EncodeFieldValue([]string{}))
	assert.Equal(t, `["a","b"]`, EncodeFieldValue([]any{"a", "b", "a"}))
}

func TestFieldValueExisting(t *testing.T) {
	value := FieldValue{ID: 1, UnitID: 10, FieldID: 20, RawValue: `["wifi"]`}
	existing := value.Existing()
	assert.Equal(t, uint(20), existing.FieldID)
	assert.Equal(t, `["wifi"]`, existing.RawValue)
}
