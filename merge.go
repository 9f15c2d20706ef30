// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The tierconf Authors

package tierconf

// Merge deep-merges source into target and returns the result without
// mutating either argument. Values are the JSON-like types produced by
// encoding/json: map[string]any, []any, string, float64, bool, nil.
//
// Dispatch order, matching what every config cascade in this package relies
// on:
//   - a source slice replaces the target value entirely (fresh copy, no
//     concatenation, no index-wise merge);
//   - a source map merges recursively into a shallow copy of the target map
//     (a non-map target is treated as empty), keys present only in target
//     are kept as-is;
//   - anything else (primitives, nil) overwrites the target value.
func Merge(target, source any) any {
	if sourceSlice, ok := source.([]any); ok {
		result := make([]any, len(sourceSlice))
		copy(result, sourceSlice)
		return result
	}

	if sourceMap, ok := source.(map[string]any); ok {
		var result map[string]any
		if targetMap, ok := target.(map[string]any); ok {
			result = make(map[string]any, len(targetMap)+len(sourceMap))
			for k, v := range targetMap {
				result[k] = v
			}
		} else {
			result = make(map[string]any, len(sourceMap))
		}

		for key, value := range sourceMap {
			if existing, exists := result[key]; exists {
				result[key] = Merge(existing, value)
			} else {
				result[key] = value
			}
		}
		return result
	}

	return source
}
