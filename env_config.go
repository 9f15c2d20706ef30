// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The tierconf Authors

package tierconf

import (
	"encoding/json"
	"os"
	"sort"
	"strconv"
	"strings"
)

// Environment variables with built-in meaning to the readers and managers.
const (
	EnvEnvironmentName = "TIERCONF_ENV"
	EnvIsLocal         = "IS_LOCAL"

	defaultEnvironment = "development"
)

// Keys set unconditionally by [ReadEnvConfig] and [LoadFileConfig] after
// their scan, overriding any same-named value from the source.
const (
	KeyEnv           = "ENV"
	KeyIsLocal       = "IS_LOCAL"
	KeyRegion        = "REGION"
	KeyCloudProvider = "CLOUD_PROVIDER"
)

// ReadEnvConfig extracts config values from the current process environment.
// See [ReadEnvConfigFromEnv].
func ReadEnvConfig(schemaKeys map[string]bool, prefix string, schemaTypes map[string]string) map[string]any {
	return ReadEnvConfigFromEnv(schemaKeys, prefix, schemaTypes, environMap(os.Environ()))
}

// ReadEnvConfigFromEnv extracts config values from the given environment
// map. For each variable, the effective key is the variable name with prefix
// stripped when it starts with prefix, otherwise the name itself; variables
// whose effective key is not in schemaKeys are skipped.
//
// schemaTypes optionally coerces values per effective key:
//   - "boolean": [CoerceBool] semantics;
//   - "number": float when the value contains a '.', integer otherwise;
//   - "json" / "object": parsed as JSON.
//
// A value that fails number or JSON parsing is kept as the raw string.
//
// Variables are scanned in sorted name order, so when both a prefixed and a
// bare variable map to the same effective key the lexicographically last
// variable wins deterministically.
//
// After the scan the built-in keys ENV (TIERCONF_ENV, default
// "development"), IS_LOCAL, REGION and CLOUD_PROVIDER are set
// unconditionally and win over any schema key of the same name.
func ReadEnvConfigFromEnv(schemaKeys map[string]bool, prefix string, schemaTypes map[string]string, env map[string]string) map[string]any {
	result := make(map[string]any)

	names := make([]string, 0, len(env))
	for name := range env {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		value := env[name]

		key := name
		if prefix != "" && strings.HasPrefix(name, prefix) {
			key = name[len(prefix):]
		}
		if !schemaKeys[key] {
			continue
		}

		result[key] = coerceEnvValue(value, schemaTypes[key])
	}

	cloud := DetectCloudRegionFromEnv(env)
	result[KeyEnv] = coalesce(env[EnvEnvironmentName], defaultEnvironment)
	result[KeyIsLocal] = CoerceBool(env[EnvIsLocal])
	result[KeyRegion] = cloud.Region
	result[KeyCloudProvider] = cloud.Provider

	return result
}

// coerceEnvValue applies the schema type hint to a raw env value, falling
// back to the raw string when parsing fails or no hint applies.
func coerceEnvValue(value, typ string) any {
	switch typ {
	case "boolean":
		return CoerceBool(value)
	case "number":
		if strings.Contains(value, ".") {
			if f, err := strconv.ParseFloat(value, 64); err == nil {
				return f
			}
		} else if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	case "json", "object":
		var parsed any
		if err := json.Unmarshal([]byte(value), &parsed); err == nil {
			return parsed
		}
	}
	return value
}
