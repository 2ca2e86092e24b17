package dynamicform

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

// Failure describes one commit-time validation problem. The caller decides
// whether failures block persistence.
type Failure struct {
	FieldID   uint   `json:"field_id"`
	FieldName string `json:"field_name"`
	Reason    string `json:"reason"`
}

// Validate scans a committed value map against each definition's rules and
// returns the outstanding failures. Nothing is maintained incrementally
// during editing; this is the single place where required/pattern/length and
// advisory date bounds are enforced.
func Validate(defs []Definition, values ValueMap) []Failure {
	var failures []Failure
	for _, def := range defs {
		value := values[def.FieldID]

		if def.Required && isEmptyValue(value) {
			failures = append(failures, Failure{
				FieldID:   def.FieldID,
				FieldName: def.FieldName,
				Reason:    "value is required",
			})
			continue
		}
		if isEmptyValue(value) {
			continue
		}

		if reason := checkRules(def, value); reason != "" {
			failures = append(failures, Failure{
				FieldID:   def.FieldID,
				FieldName: def.FieldName,
				Reason:    reason,
			})
		}
	}
	return failures
}

// isEmptyValue reports whether a value counts as unset for the required
// check. Zero is a legitimate numeric value and false a legitimate boolean,
// so only empty strings and empty sequences count as empty.
func isEmptyValue(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []string:
		return len(v) == 0
	case []any:
		return len(v) == 0
	}
	return false
}

func checkRules(def Definition, value any) string {
	if s, ok := value.(string); ok {
		if pattern, found := ruleString(def.Rules, RulePattern); found && pattern != "" {
			re, err := regexp.Compile(pattern)
			// An uncompilable pattern is stale configuration, not a user
			// error; it never blocks a commit.
			if err == nil && !re.MatchString(s) {
				return "value does not match the required pattern"
			}
		}
		if min, found := ruleFloat(def.Rules, RuleMinLength); found && float64(utf8.RuneCountInString(s)) < min {
			return fmt.Sprintf("value must be at least %d characters", int(min))
		}
		if max, found := ruleFloat(def.Rules, RuleMaxLength); found && float64(utf8.RuneCountInString(s)) > max {
			return fmt.Sprintf("value must be at most %d characters", int(max))
		}
		if minDate, found := ruleString(def.Rules, RuleMinDate); found && minDate != "" && s < minDate {
			return fmt.Sprintf("date must not be before %s", minDate)
		}
		if maxDate, found := ruleString(def.Rules, RuleMaxDate); found && maxDate != "" && s > maxDate {
			return fmt.Sprintf("date must not be after %s", maxDate)
		}
	}

	if n, ok := value.(float64); ok {
		if min, found := ruleFloat(def.Rules, RuleMin); found && n < min {
			return fmt.Sprintf("value must be at least %v", min)
		}
		if max, found := ruleFloat(def.Rules, RuleMax); found && n > max {
			return fmt.Sprintf("value must be at most %v", max)
		}
	}

	if items := toStringSlice(value); items != nil {
		if min, found := ruleFloat(def.Rules, RuleMinItems); found && float64(len(items)) < min {
			return fmt.Sprintf("at least %d selections required", int(min))
		}
		if max, found := ruleFloat(def.Rules, RuleMaxItems); found && float64(len(items)) > max {
			return fmt.Sprintf("at most %d selections allowed", int(max))
		}
	}

	return ""
}
