// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The tierconf Authors

package tierconf

import (
	"strings"
	"unicode"
)

// CoerceBool coerces an arbitrary config value to a boolean.
//
// True for boolean true, integer or float 1, or a string that
// case-insensitively trims to "true" or "1". Everything else, including the
// empty string, other numbers, and nil, is false.
func CoerceBool(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case int:
		return v == 1
	case float64:
		return v == 1
	case string:
		lower := strings.ToLower(strings.TrimSpace(v))
		return lower == "true" || lower == "1"
	default:
		return false
	}
}

// CamelToUpperSnake converts a camelCase or PascalCase key to
// UPPER_SNAKE_CASE, the form used for environment variable lookups.
// Underscores and spaces in the input are dropped; word boundaries are
// detected on lower→upper and acronym→word transitions. Input that is
// already UPPER_SNAKE_CASE is returned unchanged.
func CamelToUpperSnake(input string) string {
	if input == "" {
		return ""
	}
	if isUpperSnake(input) {
		return input
	}

	runes := []rune(input)
	var out strings.Builder
	out.Grow(len(runes) + 4)

	for i, ch := range runes {
		if ch == '_' || ch == ' ' {
			continue
		}

		switch {
		case unicode.IsUpper(ch):
			if i > 0 {
				prevIsLower := unicode.IsLower(runes[i-1])
				nextIsLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
				if prevIsLower || nextIsLower {
					out.WriteRune('_')
				}
			}
			out.WriteRune(ch)
		case unicode.IsLower(ch):
			out.WriteRune(unicode.ToUpper(ch))
		default:
			out.WriteRune(ch)
		}
	}

	return out.String()
}

func isUpperSnake(s string) bool {
	if s == "" || s[0] == '_' || s[len(s)-1] == '_' {
		return false
	}
	prevUnderscore := false
	for _, r := range s {
		if r == '_' {
			if prevUnderscore {
				return false
			}
			prevUnderscore = true
			continue
		}
		prevUnderscore = false
		if !unicode.IsUpper(r) && !unicode.IsDigit(r) {
			return false
		}
	}
	return true
}

// coalesce returns the first non-empty string.
func coalesce(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

// environMap converts os.Environ-style "KEY=value" pairs to a map.
func environMap(environ []string) map[string]string {
	result := make(map[string]string, len(environ))
	for _, e := range environ {
		if i := strings.IndexByte(e, '='); i >= 0 {
			result[e[:i]] = e[i+1:]
		}
	}
	return result
}
