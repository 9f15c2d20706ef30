// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The tierconf Authors

package tierconf

// DeferredValue computes one config value from the merged snapshot. The
// function receives the pre-resolution snapshot: it never observes other
// deferred results, nor a previous value under its own key. Evaluation
// order across deferred entries is unspecified.
type DeferredValue func(snapshot map[string]any) any

// resolveDeferred evaluates every registered deferred value against a copy
// of config taken before any of them ran, then injects each result under its
// registered key, overwriting any value the merge produced there.
func resolveDeferred(config map[string]any, deferred map[string]DeferredValue) {
	if len(deferred) == 0 {
		return
	}

	snapshot := make(map[string]any, len(config))
	for k, v := range config {
		snapshot[k] = v
	}

	for key, resolve := range deferred {
		config[key] = resolve(snapshot)
	}
}
