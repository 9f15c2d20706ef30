// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The tierconf Authors

// Package tierconf resolves application configuration from up to three
// sources (JSON file cascades, a remote config service, and environment
// variables) into a single merged namespace partitioned into three tiers:
// public, secret, and feature flag.
//
// The two entry points are [NewManager], which merges all three sources with
// environment variables winning over remote values and remote values winning
// over files, and [NewLocalManager], which works without a remote service and
// lets file values win over the environment. Both initialize lazily on first
// access and cache per-tier lookups with a configurable TTL:
//
//	mgr := tierconf.NewManager(
//		tierconf.WithAPIKey("sk-..."),
//		tierconf.WithBaseURL("https://config.example.com"),
//		tierconf.WithOrgID("org-1"),
//	)
//	v, err := mgr.GetPublic(ctx, "API_URL")
//
// [Client] talks to the remote config service directly for point lookups.
// [Merge], [DetectCloudRegion], [ReadEnvConfig] and [LoadFileConfig] are the
// building blocks the managers are assembled from and are exported for
// callers that need to compose them differently.
package tierconf
