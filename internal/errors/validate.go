package errors

import (
	"math"
	"reflect"
	"regexp"
	"strings"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidateEmail reports whether value looks like an address: a local part and
// a dotted domain without whitespace or a second @. Nothing stricter.
func ValidateEmail(value string) bool {
	return emailPattern.MatchString(value)
}

// ValidationResult lists required fields that were missing, in request order.
type ValidationResult struct {
	IsValid       bool     `json:"isValid"`
	MissingFields []string `json:"missingFields"`
}

// ValidateRequiredFields checks that every name in required has a present
// value in data. Absent keys, nil, false, numeric zero, NaN, the empty string
// and whitespace-only strings all count as missing.
func ValidateRequiredFields(data map[string]any, required []string) ValidationResult {
	missing := make([]string, 0)
	for _, name := range required {
		value, ok := data[name]
		if !ok || isBlank(value) {
			missing = append(missing, name)
		}
	}
	return ValidationResult{
		IsValid:       len(missing) == 0,
		MissingFields: missing,
	}
}

func isBlank(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case bool:
		return !v
	case float64:
		return v == 0 || math.IsNaN(v)
	case float32:
		return v == 0 || math.IsNaN(float64(v))
	}

	rv := reflect.ValueOf(value)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int() == 0
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return rv.Uint() == 0
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}
