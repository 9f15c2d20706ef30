// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The tierconf Authors

package tierconf

import "fmt"

// SchemaValidationError describes one use of a JSON Schema keyword that is
// not portable across the SDK languages, with enough context to fix it.
type SchemaValidationError struct {
	Path       string `json:"path"`
	Keyword    string `json:"keyword"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

// SchemaValidationResult is the outcome of [ValidateSchema].
type SchemaValidationResult struct {
	Valid  bool                    `json:"valid"`
	Errors []SchemaValidationError `json:"errors"`
}

// Keywords every SDK language can evaluate.
var supportedKeywords = map[string]bool{
	"type": true, "properties": true, "required": true, "enum": true, "const": true, "default": true,
	"title": true, "description": true, "$schema": true,
	"minLength": true, "maxLength": true, "pattern": true, "format": true,
	"minimum": true, "maximum": true, "exclusiveMinimum": true, "exclusiveMaximum": true, "multipleOf": true,
	"items": true, "minItems": true, "maxItems": true, "uniqueItems": true,
	"additionalProperties": true,
	"anyOf":                true, "oneOf": true, "allOf": true,
	"$ref": true, "$defs": true, "definitions": true,
}

var supportedFormats = map[string]bool{
	"email": true, "uri": true, "uuid": true, "date-time": true, "ipv4": true, "ipv6": true,
}

type rejectedKeyword struct {
	message    string
	suggestion string
}

var rejectedKeywords = map[string]rejectedKeyword{
	"if": {
		message:    "Conditional schemas (if/then/else) are not supported across all SDK languages.",
		suggestion: `Use "oneOf" or "anyOf" with discriminator properties instead.`,
	},
	"then": {
		message:    "Conditional schemas (if/then/else) are not supported across all SDK languages.",
		suggestion: `Use "oneOf" or "anyOf" with discriminator properties instead.`,
	},
	"else": {
		message:    "Conditional schemas (if/then/else) are not supported across all SDK languages.",
		suggestion: `Use "oneOf" or "anyOf" with discriminator properties instead.`,
	},
	"patternProperties": {
		message:    `"patternProperties" is not supported across all SDK languages.`,
		suggestion: `Use explicit "properties" with known key names, or "additionalProperties" with a type constraint.`,
	},
	"propertyNames": {
		message:    `"propertyNames" is not supported across all SDK languages.`,
		suggestion: "Validate property names in application code instead.",
	},
	"dependencies": {
		message:    `"dependencies" is not supported across all SDK languages.`,
		suggestion: `Use "required" within "oneOf"/"anyOf" variants to express conditional requirements.`,
	},
	"contains": {
		message:    `"contains" is not supported across all SDK languages.`,
		suggestion: `Use "items" with a union type ("anyOf") instead.`,
	},
	"not": {
		message:    `"not" is not supported across all SDK languages.`,
		suggestion: `Express the constraint positively using "enum", "oneOf", or validation in application code.`,
	},
	"prefixItems": {
		message:    `"prefixItems" (tuple validation) is not supported across all SDK languages.`,
		suggestion: `Use an "object" with named fields instead of a positional tuple.`,
	},
	"unevaluatedProperties": {
		message:    `"unevaluatedProperties" is not supported across all SDK languages.`,
		suggestion: `Use "additionalProperties" instead.`,
	},
	"unevaluatedItems": {
		message:    `"unevaluatedItems" is not supported across all SDK languages.`,
		suggestion: `Use "items" with a specific schema instead.`,
	},
}

// ValidateSchema checks that a JSON Schema uses only the keyword subset that
// every SDK language (TypeScript, Python, Rust, Go) evaluates identically.
// Unknown keywords are ignored; known-incompatible keywords and unsupported
// "format" values are reported with their path in the schema tree.
func ValidateSchema(schema map[string]any) SchemaValidationResult {
	errs := make([]SchemaValidationError, 0)
	walkSchema(schema, "", &errs)
	return SchemaValidationResult{Valid: len(errs) == 0, Errors: errs}
}

func walkSchema(node any, path string, errs *[]SchemaValidationError) {
	obj, ok := node.(map[string]any)
	if !ok {
		return
	}

	effectivePath := path
	if effectivePath == "" {
		effectivePath = "/"
	}

	for key, value := range obj {
		if rejected, found := rejectedKeywords[key]; found {
			*errs = append(*errs, SchemaValidationError{
				Path:       effectivePath,
				Keyword:    key,
				Message:    rejected.message,
				Suggestion: rejected.suggestion,
			})
			continue
		}

		if !supportedKeywords[key] {
			// Unknown keywords pass through; only known-incompatible ones
			// are rejected.
			continue
		}

		if key == "format" {
			if format, ok := value.(string); ok && !supportedFormats[format] {
				*errs = append(*errs, SchemaValidationError{
					Path:       effectivePath,
					Keyword:    "format",
					Message:    fmt.Sprintf("Format %q is not supported across all SDK languages.", format),
					Suggestion: `Supported formats: date-time, email, ipv4, ipv6, uri, uuid. Use "pattern" for custom string validation.`,
				})
			}
		}
	}

	if props, ok := obj["properties"].(map[string]any); ok {
		for name, sub := range props {
			walkSchema(sub, path+"/properties/"+name, errs)
		}
	}

	if items, ok := obj["items"].(map[string]any); ok {
		walkSchema(items, path+"/items", errs)
	}

	if additional, ok := obj["additionalProperties"].(map[string]any); ok {
		walkSchema(additional, path+"/additionalProperties", errs)
	}

	for _, compKey := range []string{"anyOf", "oneOf", "allOf"} {
		if arr, ok := obj[compKey].([]any); ok {
			for i, sub := range arr {
				walkSchema(sub, fmt.Sprintf("%s/%s/%d", path, compKey, i), errs)
			}
		}
	}

	for _, defsKey := range []string{"$defs", "definitions"} {
		if defs, ok := obj[defsKey].(map[string]any); ok {
			for name, sub := range defs {
				walkSchema(sub, fmt.Sprintf("%s/%s/%s", path, defsKey, name), errs)
			}
		}
	}
}
