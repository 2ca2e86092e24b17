package dynamicform

// ValueMap holds the working state of one editing session, keyed by field
// definition ID. It is treated as an immutable snapshot: Update returns a new
// map and never mutates its input, so callers can diff against the map
// returned by Initialize to find what changed. A map must not be shared
// between concurrent sessions.
type ValueMap map[uint]any

// ExistingValue is a persisted raw value handed to Initialize. RawValue is
// always the string serialization produced by the values model.
type ExistingValue struct {
	FieldID  uint   `json:"field_id"`
	RawValue string `json:"field_value"`
}

// Initialize seeds a value map for the given schema. Every definition gets
// either its decoded existing value or the catalog default, in schema order.
// Existing values whose definition is no longer part of the schema are
// orphans and are ignored here; the jobs app garbage-collects them.
func Initialize(defs []Definition, existing []ExistingValue) ValueMap {
	raw := make(map[uint]string, len(existing))
	for _, value := range existing {
		raw[value.FieldID] = value.RawValue
	}

	values := make(ValueMap, len(defs))
	for _, def := range defs {
		if stored, ok := raw[def.FieldID]; ok {
			values[def.FieldID] = handlerFor(def.TypeKey).Decode(def, stored)
			continue
		}
		values[def.FieldID] = DefaultValueFor(def)
	}
	return values
}

// Update applies one raw input to one field and returns the resulting map.
// When the input is rejected by the field type (unparsable number, value out
// of range, non-member select option) the original map is returned unchanged
// so the last valid value survives the keystroke.
func Update(values ValueMap, def Definition, raw string) ValueMap {
	next, ok := handlerFor(def.TypeKey).Coerce(def, values[def.FieldID], raw)
	if !ok {
		return values
	}
	return values.with(def.FieldID, next)
}

// RemoveTag drops the tag at the given index from a tag field. Out-of-range
// indexes are a no-op.
func RemoveTag(values ValueMap, def Definition, index int) ValueMap {
	tags := toStringSlice(values[def.FieldID])
	if index < 0 || index >= len(tags) {
		return values
	}
	next := make([]string, 0, len(tags)-1)
	next = append(next, tags[:index]...)
	next = append(next, tags[index+1:]...)
	return values.with(def.FieldID, next)
}

// Commit finalizes the session and returns the map as-is. It exists as the
// explicit seam between editing and persistence: callers validate the result
// and re-serialize it into value rows. A failed persistence leaves the map
// intact so the edits can be resubmitted.
func Commit(values ValueMap) ValueMap {
	return values
}

// with returns a copy of the map with a single key replaced.
func (values ValueMap) with(fieldID uint, value any) ValueMap {
	next := make(ValueMap, len(values)+1)
	for key, existing := range values {
		next[key] = existing
	}
	next[fieldID] = value
	return next
}
