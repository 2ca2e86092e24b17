package dynamicform

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

func init() {
	textHandler := Handler{
		AcceptedKeys: []string{RuleMinLength, RuleMaxLength, RulePattern},
		Default:      func(Definition) any { return "" },
		Coerce: func(_ Definition, _ any, raw string) (any, bool) {
			return raw, true
		},
		Decode: func(_ Definition, raw string) any { return raw },
	}

	// Free-text family. Pattern rules are advisory during editing and only
	// enforced at commit time, so every keystroke is accepted as-is.
	register(TypeText, textHandler)
	register(TypeTextarea, textHandler)
	register(TypeEmail, textHandler)
	register(TypePhone, textHandler)
	register(TypeURL, textHandler)
	register(TypeColor, textHandler)

	numberHandler := Handler{
		AcceptedKeys: []string{RuleMin, RuleMax, RuleStep},
		Default:      numericDefault,
		Coerce:       coerceNumber,
		Decode:       decodeNumber,
	}
	register(TypeNumber, numberHandler)
	register(TypeCurrency, numberHandler)
	register(TypeRange, numberHandler)

	register(TypePercentage, Handler{
		AcceptedKeys: []string{RuleMin, RuleMax, RuleStep},
		Default:      numericDefault,
		Coerce:       coercePercentage,
		Decode:       decodeNumber,
	})

	booleanHandler := Handler{
		AcceptedKeys: nil,
		Default:      func(Definition) any { return false },
		Coerce: func(_ Definition, prev any, _ string) (any, bool) {
			// Booleans toggle; the raw input is ignored.
			current, _ := prev.(bool)
			return !current, true
		},
		Decode: func(_ Definition, raw string) any { return raw == "true" },
	}
	register(TypeBoolean, booleanHandler)
	register(TypeCheckbox, booleanHandler)

	register(TypeSelect, Handler{
		AcceptedKeys: nil,
		Default:      func(Definition) any { return "" },
		Coerce: func(def Definition, prev any, raw string) (any, bool) {
			if raw == "" {
				return "", true
			}
			for _, option := range optionList(def) {
				if option == raw {
					return raw, true
				}
			}
			return prev, false
		},
		Decode: func(_ Definition, raw string) any { return raw },
	})

	register(TypeMultiselect, Handler{
		AcceptedKeys: []string{RuleMinItems, RuleMaxItems},
		Default:      func(Definition) any { return []string{} },
		Coerce: func(def Definition, prev any, raw string) (any, bool) {
			valid := false
			for _, option := range optionList(def) {
				if option == raw {
					valid = true
					break
				}
			}
			if !valid {
				return prev, false
			}
			return toggleMember(toStringSlice(prev), raw), true
		},
		Decode: decodeStringSlice,
	})

	dateHandler := Handler{
		AcceptedKeys: []string{RuleMinDate, RuleMaxDate},
		Default:      func(Definition) any { return "" },
		Coerce: func(_ Definition, _ any, raw string) (any, bool) {
			// Native textual form of the date input; minDate/maxDate are
			// enforced at commit time.
			return raw, true
		},
		Decode: func(_ Definition, raw string) any { return raw },
	}
	register(TypeDate, dateHandler)
	register(TypeDatetime, dateHandler)
	register(TypeTime, dateHandler)

	register(TypeRating, Handler{
		AcceptedKeys: nil,
		Default:      func(Definition) any { return "" },
		Coerce: func(_ Definition, prev any, raw string) (any, bool) {
			parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
			if err != nil {
				return prev, false
			}
			value := math.Round(parsed)
			if value < RatingMin {
				value = RatingMin
			}
			if value > RatingMax {
				value = RatingMax
			}
			return value, true
		},
		Decode: decodeNumber,
	})

	register(TypeTag, Handler{
		AcceptedKeys: []string{RuleMaxItems},
		Default:      func(Definition) any { return []string{} },
		Coerce: func(_ Definition, prev any, raw string) (any, bool) {
			tags := toStringSlice(prev)
			changed := false
			for _, part := range strings.Split(raw, ",") {
				tag := strings.TrimSpace(part)
				if tag == "" || containsString(tags, tag) {
					continue
				}
				tags = append(append([]string{}, tags...), tag)
				changed = true
			}
			if !changed {
				return prev, false
			}
			return tags, true
		},
		Decode: decodeStringSlice,
	})

	fileHandler := Handler{
		AcceptedKeys: []string{RuleMaxSize, RuleAccept},
		Default:      func(Definition) any { return "" },
		Coerce: func(_ Definition, _ any, raw string) (any, bool) {
			// Only the stored name/URL returned by the upload collaborator
			// is recorded here; the binary itself goes through the storage
			// app.
			return raw, true
		},
		Decode: func(_ Definition, raw string) any { return raw },
	}
	register(TypeFile, fileHandler)
	register(TypeImage, fileHandler)
}

func coerceNumber(def Definition, prev any, raw string) (any, bool) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return prev, false
	}
	if min, ok := ruleFloat(def.Rules, RuleMin); ok && parsed < min {
		return prev, false
	}
	if max, ok := ruleFloat(def.Rules, RuleMax); ok && parsed > max {
		return prev, false
	}
	return parsed, true
}

// coercePercentage applies number semantics hard-bounded to [0,100] no matter
// what the configured rules say.
func coercePercentage(def Definition, prev any, raw string) (any, bool) {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return prev, false
	}
	lower, upper := float64(0), float64(100)
	if min, ok := ruleFloat(def.Rules, RuleMin); ok && min > lower {
		lower = min
	}
	if max, ok := ruleFloat(def.Rules, RuleMax); ok && max < upper {
		upper = max
	}
	if parsed < lower || parsed > upper {
		return prev, false
	}
	return parsed, true
}

func decodeNumber(def Definition, raw string) any {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return DefaultValueFor(def)
	}
	return parsed
}

func decodeStringSlice(_ Definition, raw string) any {
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return []string{}
	}
	return dedupeStrings(items)
}

// toggleMember removes the value if present, appends it otherwise. The input
// slice is never mutated.
func toggleMember(items []string, value string) []string {
	for i, item := range items {
		if item == value {
			next := make([]string, 0, len(items)-1)
			next = append(next, items[:i]...)
			return append(next, items[i+1:]...)
		}
	}
	next := make([]string, 0, len(items)+1)
	next = append(next, items...)
	return append(next, value)
}

func toStringSlice(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		items := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				items = append(items, s)
			}
		}
		return items
	}
	return nil
}

func containsString(items []string, value string) bool {
	for _, item := range items {
		if item == value {
			return true
		}
	}
	return false
}

func dedupeStrings(items []string) []string {
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
