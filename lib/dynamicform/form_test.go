package dynamicform

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleSchema() []Definition {
	return []Definition{
		{
			FieldID:   1,
			FieldName: "bedrooms",
			TypeKey:   TypeNumber,
			Rules:     map[string]any{RuleMin: float64(0), RuleMax: float64(10)},
		},
		{
			FieldID:   2,
			FieldName: "amenities",
			TypeKey:   TypeMultiselect,
			Options:   map[string]any{"options": []any{"wifi", "pool", "parking"}},
		},
		{
			FieldID:   3,
			FieldName: "view",
			TypeKey:   TypeSelect,
			Options:   map[string]any{"options": []any{"sea", "garden"}},
		},
		{FieldID: 4, FieldName: "furnished", TypeKey: TypeBoolean},
		{FieldID: 5, FieldName: "keywords", TypeKey: TypeTag},
	}
}

func TestInitializeDefaults(t *testing.T) {
	values := Initialize(sampleSchema(), nil)

	assert.Equal(t, float64(0), values[1])
	assert.Equal(t, []string{}, values[2])
	assert.Equal(t, "", values[3])
	assert.Equal(t, false, values[4])
	assert.Equal(t, []string{}, values[5])
}

func TestInitializeSeedsExistingValues(t *testing.T) {
	existing := []ExistingValue{
		{FieldID: 1, RawValue: "3"},
		{FieldID: 2, RawValue: `["wifi","pool"]`},
		{FieldID: 4, RawValue: "true"},
		{FieldID: 99, RawValue: "orphaned"}, // definition no longer exists
	}

	values := Initialize(sampleSchema(), existing)

	assert.Equal(t, float64(3), values[1])
	assert.Equal(t, []string{"wifi", "pool"}, values[2])
	assert.Equal(t, true, values[4])
	_, ok := values[99]
	assert.False(t, ok, "orphan values must not leak into the session")
}

func TestInitializeIdempotence(t *testing.T) {
	existing := []ExistingValue{{FieldID: 1, RawValue: "5"}}
	first := Initialize(sampleSchema(), existing)
	second := Initialize(sampleSchema(), existing)
	assert.Equal(t, first, second)
}

func TestUpdateReturnsNewMap(t *testing.T) {
	defs := sampleSchema()
	original := Initialize(defs, nil)

	updated := Update(original, defs[0], "7")

	assert.Equal(t, float64(7), updated[1])
	assert.Equal(t, float64(0), original[1], "the input map must stay untouched")
}

func TestNumberRangeRejection(t *testing.T) {
	defs := sampleSchema()
	values := Initialize(defs, nil)

	values = Update(values, defs[0], "7")
	require.Equal(t, float64(7), values[1])

	// Out of range and unparsable inputs keep the last valid value.
	rejected := Update(values, defs[0], "15")
	assert.Equal(t, float64(7), rejected[1])

	rejected = Update(values, defs[0], "a lot")
	assert.Equal(t, float64(7), rejected[1])
}

func TestPercentageHardBounds(t *testing.T) {
	def := Definition{
		FieldID: 10, FieldName: "occupancy", TypeKey: TypePercentage,
		Rules: map[string]any{RuleMax: float64(500)},
	}
	values := Initialize([]Definition{def}, nil)

	// The configured max of 500 does not widen the hard [0,100] bound.
	values = Update(values, def, "120")
	assert.Equal(t, float64(0), values[10])

	values = Update(values, def, "85")
	assert.Equal(t, float64(85), values[10])
}

func TestSelectMembership(t *testing.T) {
	defs := sampleSchema()
	values := Initialize(defs, nil)

	values = Update(values, defs[2], "sea")
	assert.Equal(t, "sea", values[3])

	values = Update(values, defs[2], "mountain")
	assert.Equal(t, "sea", values[3], "non-member value is a no-op")

	values = Update(values, defs[2], "")
	assert.Equal(t, "", values[3], "empty string clears the selection")
}

func TestMultiselectToggleDedup(t *testing.T) {
	defs := sampleSchema()
	values := Initialize(defs, nil)

	values = Update(values, defs[1], "wifi")
	values = Update(values, defs[1], "pool")
	assert.Equal(t, []string{"wifi", "pool"}, values[2])

	// Toggling twice returns the field to its pre-toggle state.
	toggled := Update(values, defs[1], "wifi")
	assert.Equal(t, []string{"pool"}, toggled[2])
	toggled = Update(toggled, defs[1], "wifi")
	assert.Equal(t, []string{"pool", "wifi"}, toggled[2])

	rejected := Update(values, defs[1], "sauna")
	assert.Equal(t, []string{"wifi", "pool"}, rejected[2])
}

func TestBooleanToggle(t *testing.T) {
	defs := sampleSchema()
	values := Initialize(defs, nil)

	values = Update(values, defs[3], "")
	assert.Equal(t, true, values[4])
	values = Update(values, defs[3], "")
	assert.Equal(t, false, values[4])
}

func TestRatingClamp(t *testing.T) {
	def := Definition{FieldID: 20, FieldName: "stars", TypeKey: TypeRating}
	values := Initialize([]Definition{def}, nil)

	values = Update(values, def, "9")
	assert.Equal(t, float64(5), values[20])
	values = Update(values, def, "0")
	assert.Equal(t, float64(1), values[20])
	values = Update(values, def, "3")
	assert.Equal(t, float64(3), values[20])
}

func TestTagEntryAndRemoval(t *testing.T) {
	defs := sampleSchema()
	values := Initialize(defs, nil)

	values = Update(values, defs[4], "beach, family")
	assert.Equal(t, []string{"beach", "family"}, values[5])

	// Case-sensitive exact duplicates are silently ignored.
	same := Update(values, defs[4], "beach")
	assert.Equal(t, []string{"beach", "family"}, same[5])

	values = Update(values, defs[4], "Beach")
	assert.Equal(t, []string{"beach", "family", "Beach"}, values[5])

	values = RemoveTag(values, defs[4], 1)
	assert.Equal(t, []string{"beach", "Beach"}, values[5])

	unchanged := RemoveTag(values, defs[4], 10)
	assert.Equal(t, values, unchanged)
}

func TestUnknownTypeBehavesLikeText(t *testing.T) {
	def := Definition{FieldID: 30, FieldName: "legacy", TypeKey: "retired_widget"}
	values := Initialize([]Definition{def}, nil)
	assert.Equal(t, "", values[30])

	values = Update(values, def, "anything goes")
	assert.Equal(t, "anything goes", values[30])
}

func TestCommitReturnsMapUnchanged(t *testing.T) {
	defs := sampleSchema()
	values := Initialize(defs, nil)
	values = Update(values, defs[0], "4")

	committed := Commit(values)
	assert.Equal(t, values, committed)
}

func TestValidateRequiredAndPattern(t *testing.T) {
	defs := []Definition{
		{FieldID: 1, FieldName: "code", TypeKey: TypeText, Required: true,
			Rules: map[string]any{RulePattern: "^[A-Z]{3}$"}},
		{FieldID: 2, FieldName: "floor", TypeKey: TypeNumber, Required: true},
	}

	values := Initialize(defs, nil)
	failures := Validate(defs, values)
	require.Len(t, failures, 1)
	assert.Equal(t, uint(1), failures[0].FieldID)
	assert.Equal(t, "value is required", failures[0].Reason)

	// Zero is a valid value for a required numeric field.
	values = Update(values, defs[0], "ab")
	failures = Validate(defs, values)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Reason, "pattern")

	values = Update(values, defs[0], "ABC")
	assert.Empty(t, Validate(defs, values))
}

func TestValidateDateBounds(t *testing.T) {
	defs := []Definition{
		{FieldID: 1, FieldName: "available_from", TypeKey: TypeDate,
			Rules: map[string]any{RuleMinDate: "2026-01-01", RuleMaxDate: "2026-12-31"}},
	}
	values := Initialize(defs, nil)

	// Date rules are advisory while typing and enforced at commit.
	values = Update(values, defs[0], "2025-06-01")
	failures := Validate(defs, values)
	require.Len(t, failures, 1)
	assert.Contains(t, failures[0].Reason, "before")

	values = Update(values, defs[0], "2026-06-01")
	assert.Empty(t, Validate(defs, values))
}

func TestEditSessionEndToEnd(t *testing.T) {
	defs := []Definition{
		{FieldID: 1, FieldName: "f1", TypeKey: TypeNumber, Required: true,
			Rules: map[string]any{RuleMin: float64(0), RuleMax: float64(5)}},
		{FieldID: 2, FieldName: "f2", TypeKey: TypeMultiselect, Required: true,
			Options: map[string]any{"options": []any{"A", "B"}}},
	}

	values := Initialize(defs, nil)
	assert.Equal(t, float64(0), values[1])
	assert.Equal(t, []string{}, values[2])

	values = Update(values, defs[0], "6")
	assert.Equal(t, float64(0), values[1])

	values = Update(values, defs[1], "A")
	assert.Equal(t, []string{"A"}, values[2])

	// f1 holds 0 which is in range, f2 is non-empty: nothing outstanding.
	assert.Empty(t, Validate(defs, Commit(values)))
}
