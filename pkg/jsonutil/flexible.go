package jsonutil

import (
	"encoding/json"
	"fmt"
)

// FlexibleStringValue converts a json.RawMessage to a string, accepting numbers
// and booleans where a string is expected. Returns empty string for null/empty.
func FlexibleStringValue(raw json.RawMessage) string {
	if isNull(raw) {
		return ""
	}

	var strVal string
	if err := json.Unmarshal(raw, &strVal); err == nil {
		return strVal
	}

	var numVal float64
	if err := json.Unmarshal(raw, &numVal); err == nil {
		if numVal == float64(int64(numVal)) {
			return fmt.Sprintf("%d", int64(numVal))
		}
		return fmt.Sprintf("%g", numVal)
	}

	var boolVal bool
	if err := json.Unmarshal(raw, &boolVal); err == nil {
		return fmt.Sprintf("%t", boolVal)
	}

	// Objects and arrays keep their raw JSON form.
	return string(raw)
}

// FlexibleStringSlice converts a json.RawMessage holding an array into strings,
// coercing each element with FlexibleStringValue. Null elements are dropped.
// Anything that is not an array yields an empty, non-nil slice.
func FlexibleStringSlice(raw json.RawMessage) []string {
	result := []string{}
	if isNull(raw) {
		return result
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return result
	}

	for _, item := range items {
		if isNull(item) {
			continue
		}
		result = append(result, FlexibleStringValue(item))
	}
	return result
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || string(raw) == "null"
}
