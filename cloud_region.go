// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The tierconf Authors

package tierconf

import "os"

// Environment variables consulted by [DetectCloudRegion], in priority order.
const (
	EnvCloudProviderOverride = "TIERCONF_CLOUD_PROVIDER"
	EnvCloudRegionOverride   = "TIERCONF_CLOUD_REGION"
)

// CloudRegion holds a detected cloud provider and region. Both fields are
// always populated; "unknown" is a valid value, not an absence.
type CloudRegion struct {
	Provider string
	Region   string
}

// DetectCloudRegion detects the cloud provider and region from the current
// process environment. See [DetectCloudRegionFromEnv].
func DetectCloudRegion() CloudRegion {
	return DetectCloudRegionFromEnv(environMap(os.Environ()))
}

// DetectCloudRegionFromEnv detects the cloud provider and region from the
// given environment map. First match wins:
//
//  1. TIERCONF_CLOUD_PROVIDER / TIERCONF_CLOUD_REGION override pair: if
//     either is set, both fields come from the pair, the missing one
//     defaulting to "unknown".
//  2. AWS_REGION, then AWS_DEFAULT_REGION → provider "aws".
//  3. AZURE_REGION, then AZURE_LOCATION → provider "azure".
//  4. GOOGLE_CLOUD_REGION, then CLOUDSDK_COMPUTE_REGION → provider "gcp".
//  5. ("unknown", "unknown").
//
// An empty-string value is treated as absent.
func DetectCloudRegionFromEnv(env map[string]string) CloudRegion {
	if env[EnvCloudProviderOverride] != "" || env[EnvCloudRegionOverride] != "" {
		return CloudRegion{
			Provider: coalesce(env[EnvCloudProviderOverride], "unknown"),
			Region:   coalesce(env[EnvCloudRegionOverride], "unknown"),
		}
	}

	if r := coalesce(env["AWS_REGION"], env["AWS_DEFAULT_REGION"]); r != "" {
		return CloudRegion{Provider: "aws", Region: r}
	}

	if r := coalesce(env["AZURE_REGION"], env["AZURE_LOCATION"]); r != "" {
		return CloudRegion{Provider: "azure", Region: r}
	}

	if r := coalesce(env["GOOGLE_CLOUD_REGION"], env["CLOUDSDK_COMPUTE_REGION"]); r != "" {
		return CloudRegion{Provider: "gcp", Region: r}
	}

	return CloudRegion{Provider: "unknown", Region: "unknown"}
}
