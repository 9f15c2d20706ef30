// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The tierconf Authors

package tierconf

import "errors"

// Sentinel errors returned by the file-config loader, the remote client, and
// the manager constructors. All I/O-level failures wrap one of these so that
// callers can branch with [errors.Is] without parsing messages.
var (
	// ErrConfigDirNotFound indicates that no config directory was found
	// after checking the override variable, the working directory
	// candidates, and the walk-up search.
	ErrConfigDirNotFound = errors.New("config directory not found")

	// ErrDefaultConfigMissing indicates that the mandatory default.json is
	// absent from an otherwise valid config directory.
	ErrDefaultConfigMissing = errors.New("default.json not found")

	// ErrInvalidConfigFile indicates that a cascade file exists but cannot
	// be parsed as a JSON object.
	ErrInvalidConfigFile = errors.New("invalid config file")

	// ErrMissingCredentials indicates that a remote client was constructed
	// without a base URL, API key, or organization ID after consulting both
	// the explicit arguments and the environment.
	ErrMissingCredentials = errors.New("missing remote config credentials")

	// ErrKeyNotFound indicates that the remote service has no value for the
	// requested key in the requested environment (HTTP 404).
	ErrKeyNotFound = errors.New("config key not found")
)
