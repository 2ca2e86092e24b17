package dynamicform

import (
	"strconv"
	"strings"
)

// Field type keys supported by the catalog
const (
	TypeText        = "text"
	TypeTextarea    = "textarea"
	TypeNumber      = "number"
	TypeCurrency    = "currency"
	TypePercentage  = "percentage"
	TypeBoolean     = "boolean"
	TypeCheckbox    = "checkbox"
	TypeSelect      = "select"
	TypeMultiselect = "multiselect"
	TypeDate        = "date"
	TypeDatetime    = "datetime"
	TypeTime        = "time"
	TypeEmail       = "email"
	TypePhone       = "phone"
	TypeURL         = "url"
	TypeColor       = "color"
	TypeRange       = "range"
	TypeRating      = "rating"
	TypeFile        = "file"
	TypeImage       = "image"
	TypeTag         = "tag"
)

// Validation rule keys understood by the catalog
const (
	RuleMin       = "min"
	RuleMax       = "max"
	RuleStep      = "step"
	RuleMinLength = "minLength"
	RuleMaxLength = "maxLength"
	RulePattern   = "pattern"
	RuleMinDate   = "minDate"
	RuleMaxDate   = "maxDate"
	RuleMinItems  = "minItems"
	RuleMaxItems  = "maxItems"
	RuleMaxSize   = "maxSize"
	RuleAccept    = "accept"
)

// Rating bounds are fixed and not configurable per definition
const (
	RatingMin = 1
	RatingMax = 5
)

// Definition is the engine's view of a field definition. It carries only what
// the catalog and the form engine interpret; fields controllers convert their
// gorm models into this shape before driving a form session.
type Definition struct {
	FieldID   uint           `json:"field_id"`
	FieldName string         `json:"field_name"`
	TypeKey   string         `json:"type_key"`
	Required  bool           `json:"required"`
	Options   map[string]any `json:"options,omitempty"`
	Rules     map[string]any `json:"rules,omitempty"`
}

// Handler bundles the per-type behavior for one field type. Adding a field
// type means registering a new handler here; the form engine itself carries
// no per-type control flow.
type Handler struct {
	// AcceptedKeys lists the validation rule keys this type understands.
	// Rule keys outside this set are dropped when a definition is saved.
	AcceptedKeys []string

	// Default returns the initial value for an untouched field.
	Default func(def Definition) any

	// Coerce applies a raw input to the previous value. It returns the new
	// value and whether the input was accepted; a rejected input leaves the
	// field untouched.
	Coerce func(def Definition, prev any, raw string) (any, bool)

	// Decode turns a persisted string value back into the in-memory shape.
	Decode func(def Definition, raw string) any
}

var catalog = map[string]Handler{}

func register(typeKey string, handler Handler) {
	catalog[typeKey] = handler
}

// IsKnown reports whether the type key is registered in the catalog.
func IsKnown(typeKey string) bool {
	_, ok := catalog[typeKey]
	return ok
}

// TypeKeys returns all registered type keys.
func TypeKeys() []string {
	keys := make([]string, 0, len(catalog))
	for key := range catalog {
		keys = append(keys, key)
	}
	return keys
}

// AcceptedKeys returns the validation rule keys understood by the given type.
// Unknown types degrade to the text type's accepted keys.
func AcceptedKeys(typeKey string) []string {
	return handlerFor(typeKey).AcceptedKeys
}

// DefaultValueFor returns the initial value for a definition. It is total:
// a definition referencing a retired or unknown type key falls back to text
// semantics instead of failing, so a stale schema still renders.
func DefaultValueFor(def Definition) any {
	return handlerFor(def.TypeKey).Default(def)
}

// handlerFor resolves the handler for a type key, falling back to text.
func handlerFor(typeKey string) Handler {
	if handler, ok := catalog[typeKey]; ok {
		return handler
	}
	return catalog[TypeText]
}

// ruleFloat reads a numeric validation rule. JSON decoding may deliver the
// value as float64, int or string depending on how the rule was written.
func ruleFloat(rules map[string]any, key string) (float64, bool) {
	raw, ok := rules[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
		if err != nil {
			return 0, false
		}
		return parsed, true
	}
	return 0, false
}

// ruleString reads a string validation rule.
func ruleString(rules map[string]any, key string) (string, bool) {
	raw, ok := rules[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

// optionList reads the configured options of a select/multiselect definition.
func optionList(def Definition) []string {
	raw, ok := def.Options["options"]
	if !ok {
		return nil
	}
	switch v := raw.(type) {
	case []string:
		return v
	case []any:
		options := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				options = append(options, s)
			}
		}
		return options
	}
	return nil
}

// numericDefault seeds numeric fields from the configured minimum if present.
func numericDefault(def Definition) any {
	if min, ok := ruleFloat(def.Rules, RuleMin); ok {
		return min
	}
	return float64(0)
}
