package llm

import (
	"fmt"
	"strconv"
	"strings"
)

// ValidationError signals the result failed schema validation; the
// HTTP handler reports 422 with the error text and Violations. It
// carries no copy of the raw model response, so no raw-response
// preview is returned.
type ValidationError struct {
	Violations []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("analysis result failed validation: %s", strings.Join(e.Violations, "; "))
}

// Validate checks result against the Glossary's Analysis Schema,
// collecting every violation rather than failing fast. match_score
// and recommendation each carry an extra coercion/range rule beyond
// their base kind.
func Validate(result map[string]any) []string {
	var violations []string

	for field, kind := range requiredFields {
		v, ok := result[field]
		if !ok {
			violations = append(violations, fmt.Sprintf("missing field %q", field))
			continue
		}
		switch kind {
		case kindString:
			if _, ok := v.(string); !ok {
				violations = append(violations, fmt.Sprintf("field %q must be a string", field))
			}
		case kindArray:
			if _, ok := v.([]any); !ok {
				violations = append(violations, fmt.Sprintf("field %q must be an array", field))
			}
		case kindNumber:
			// match_score is checked separately below with its [1,10] rule.
		}
	}

	if n, ok := coerceInt(result["match_score"]); !ok {
		violations = append(violations, `field "match_score" must be an integer`)
	} else if n < 1 || n > 10 {
		violations = append(violations, `field "match_score" must be between 1 and 10`)
	}

	if rec, ok := result["recommendation"].(string); ok {
		normalised := strings.ToLower(strings.TrimSpace(rec))
		if !ValidRecommendations[normalised] {
			violations = append(violations, `field "recommendation" must be one of apply, maybe, skip`)
		}
		result["recommendation"] = normalised
	}

	return violations
}

func coerceInt(v any) (int, bool) {
	switch n := v.(type) {
	case float64:
		return int(n), true
	case int:
		return n, true
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(n))
		return i, err == nil
	default:
		return 0, false
	}
}

// toInt64 mirrors coerceInt for the int64 row IDs store getters return.
func toInt64(v any) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case float64:
		return int64(n), true
	case int:
		return int64(n), true
	case string:
		i, err := strconv.ParseInt(strings.TrimSpace(n), 10, 64)
		return i, err == nil
	default:
		return 0, false
	}
}
