// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The tierconf Authors

// Package logger provides the zerolog constructors shared by the tierconf
// managers and remote client.
//
// Library code never configures global zerolog state: each component gets
// its own logger instance, replaceable through the WithLogger options on the
// public API.
package logger

import (
	"os"

	"github.com/rs/zerolog"
)

// New constructs a logger for the given role label (e.g. "config-manager",
// "config-client"). Output is JSON on stderr with a timestamp and a "role"
// field for filtering; the level is Warn so an embedding application only
// hears from the library when something degrades.
func New(role string) zerolog.Logger {
	return zerolog.New(os.Stderr).
		Level(zerolog.WarnLevel).
		With().
		Str("role", role).
		Timestamp().
		Logger()
}

// Nop returns a logger that discards all output. Intended for tests.
func Nop() zerolog.Logger {
	return zerolog.Nop()
}
