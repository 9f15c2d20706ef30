// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The tierconf Authors

package tierconf

import "context"

//go:generate mockgen -source=interfaces.go -destination=remote_source_mock.go -package=tierconf

// RemoteSource is the remote-config boundary consumed by [Manager]. The
// manager performs a single FetchAll per initialization epoch and treats any
// error as a non-fatal, empty contribution.
//
// [Client] is the production implementation; tests inject mocks or stubs via
// [WithRemoteSource].
type RemoteSource interface {
	// FetchAll returns the flat key→value map the service holds for the
	// given environment name.
	FetchAll(ctx context.Context, environment string) (map[string]any, error)
}
