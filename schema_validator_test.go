package tierconf

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestValidateSchema_CleanSchema verifies a schema built from the supported
// subset passes.
func TestValidateSchema_CleanSchema(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"API_URL": map[string]any{"type": "string", "format": "uri"},
			"RETRIES": map[string]any{"type": "integer", "minimum": float64(0), "maximum": float64(10)},
			"HOSTS":   map[string]any{"type": "array", "items": map[string]any{"type": "string"}, "minItems": float64(1)},
		},
		"required": []any{"API_URL"},
	}

	result := ValidateSchema(schema)
	assert.True(t, result.Valid)
	assert.Empty(t, result.Errors)
}

// TestValidateSchema_RejectedKeyword verifies an incompatible keyword is
// reported with its path and a suggestion.
func TestValidateSchema_RejectedKeyword(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"MODE": map[string]any{
				"type": "string",
				"if":   map[string]any{"const": "a"},
			},
		},
	}

	result := ValidateSchema(schema)
	require.False(t, result.Valid)
	require.Len(t, result.Errors, 1)

	e := result.Errors[0]
	assert.Equal(t, "/properties/MODE", e.Path)
	assert.Equal(t, "if", e.Keyword)
	assert.NotEmpty(t, e.Suggestion)
}

// TestValidateSchema_UnsupportedFormat verifies format values outside the
// portable set are rejected.
func TestValidateSchema_UnsupportedFormat(t *testing.T) {
	schema := map[string]any{"type": "string", "format": "hostname"}

	result := ValidateSchema(schema)
	require.False(t, result.Valid)
	require.Len(t, result.Errors, 1)
	assert.Equal(t, "format", result.Errors[0].Keyword)
	assert.Equal(t, "/", result.Errors[0].Path)
}

// TestValidateSchema_RecursesComposition verifies the walk descends into
// items, additionalProperties, composition branches, and definitions.
func TestValidateSchema_RecursesComposition(t *testing.T) {
	schema := map[string]any{
		"anyOf": []any{
			map[string]any{"type": "string"},
			map[string]any{"type": "object", "patternProperties": map[string]any{}},
		},
		"items":                map[string]any{"not": map[string]any{}},
		"additionalProperties": map[string]any{"contains": map[string]any{}},
		"$defs": map[string]any{
			"inner": map[string]any{"prefixItems": []any{}},
		},
	}

	result := ValidateSchema(schema)
	require.False(t, result.Valid)

	keywords := make(map[string]string, len(result.Errors))
	for _, e := range result.Errors {
		keywords[e.Keyword] = e.Path
	}
	assert.Equal(t, "/anyOf/1", keywords["patternProperties"])
	assert.Equal(t, "/items", keywords["not"])
	assert.Equal(t, "/additionalProperties", keywords["contains"])
	assert.Equal(t, "/$defs/inner", keywords["prefixItems"])
}

// TestValidateSchema_UnknownKeywordIgnored verifies unrecognized keywords
// pass through without errors.
func TestValidateSchema_UnknownKeywordIgnored(t *testing.T) {
	schema := map[string]any{"type": "string", "x-custom-annotation": "anything"}
	assert.True(t, ValidateSchema(schema).Valid)
}
