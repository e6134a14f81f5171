// Package transform post-processes decoded intervals.icu responses before
// they are handed back to the MCP client: it strips empty fields to cut
// payload noise and provides the numeric helpers the grouping tools share.
package transform

// Clean returns v with every object key whose value is null, an empty
// string, an empty array, or an empty object removed, applied recursively
// at every nesting level.
//
// Only object keys are dropped. Array elements are cleaned in place but
// never removed, so an element that cleans down to an empty object stays in
// the array as {}. Zero, false and negative numbers are real values and are
// kept. Clean is idempotent.
//
// The type switch covers the closed set of values encoding/json decodes
// into: nil, bool, float64, string, []any and map[string]any.
func Clean(v any) any {
	switch val := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(val))
		for k, elem := range val {
			cleaned := Clean(elem)
			if isEmpty(cleaned) {
				continue
			}
			out[k] = cleaned
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, elem := range val {
			out[i] = Clean(elem)
		}
		return out
	default:
		return v
	}
}

// CleanList cleans each record of a list endpoint response.
func CleanList(records []any) []any {
	out := make([]any, len(records))
	for i, r := range records {
		out[i] = Clean(r)
	}
	return out
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case []any:
		return len(val) == 0
	case map[string]any:
		return len(val) == 0
	}
	return false
}
