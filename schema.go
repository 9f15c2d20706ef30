// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The tierconf Authors

package tierconf

import "encoding/json"

// Tier names one of the three namespaces a config value belongs to. All
// tiers read the same merged snapshot; the partition controls schema
// grouping and per-tier caching.
type Tier string

const (
	// TierPublic holds values visible to any consumer.
	TierPublic Tier = "public"
	// TierSecret holds values encrypted at rest on the config service.
	TierSecret Tier = "secret"
	// TierFeatureFlag holds feature flag values.
	TierFeatureFlag Tier = "feature_flag"
)

// IsValid reports whether t is one of the known tiers.
func (t Tier) IsValid() bool {
	switch t {
	case TierPublic, TierSecret, TierFeatureFlag:
		return true
	}
	return false
}

// MarshalJSON encodes the tier as its string name.
func (t Tier) MarshalJSON() ([]byte, error) {
	return json.Marshal(string(t))
}

// UnmarshalJSON decodes the tier from its string name.
func (t *Tier) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	*t = Tier(s)
	return nil
}

// Definition holds the per-tier schemas produced by [DefineConfig] together
// with the combined JSON Schema document describing all three tiers.
type Definition struct {
	PublicSchema      map[string]any `json:"public_schema"`
	SecretSchema      map[string]any `json:"secret_schema"`
	FeatureFlagSchema map[string]any `json:"feature_flag_schema"`
	JSONSchema        map[string]any `json:"json_schema"`
}

// DefineConfig assembles a configuration definition from optional per-tier
// JSON Schemas. A nil schema is recorded as empty and rendered as an empty
// object schema in the combined document.
func DefineConfig(public, secret, featureFlag map[string]any) *Definition {
	emptyObject := map[string]any{"type": "object", "properties": map[string]any{}}

	orEmpty := func(s map[string]any) map[string]any {
		if s == nil {
			return map[string]any{}
		}
		return s
	}
	orEmptyObject := func(s map[string]any) map[string]any {
		if s == nil {
			return emptyObject
		}
		return s
	}

	jsonSchema := map[string]any{
		"$schema": "https://json-schema.org/draft/2020-12/schema",
		"type":    "object",
		"properties": map[string]any{
			"public":        orEmptyObject(public),
			"secret":        orEmptyObject(secret),
			"feature_flags": orEmptyObject(featureFlag),
		},
	}

	return &Definition{
		PublicSchema:      orEmpty(public),
		SecretSchema:      orEmpty(secret),
		FeatureFlagSchema: orEmpty(featureFlag),
		JSONSchema:        jsonSchema,
	}
}
