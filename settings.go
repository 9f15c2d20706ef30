// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The tierconf Authors

package tierconf

import (
	"fmt"

	"dario.cat/mergo"
	"github.com/caarlos0/env/v11"
)

// Environment variables holding remote config service credentials.
const (
	EnvAPIKey  = "TIERCONF_API_KEY"
	EnvBaseURL = "TIERCONF_API_URL"
	EnvOrgID   = "TIERCONF_ORG_ID"
)

// settings holds the remote-service coordinates a manager or client needs.
// Each field resolves from the explicit constructor value first, then from
// its environment variable, and may end up empty.
type settings struct {
	APIKey      string `env:"TIERCONF_API_KEY"`
	BaseURL     string `env:"TIERCONF_API_URL"`
	OrgID       string `env:"TIERCONF_ORG_ID"`
	Environment string `env:"TIERCONF_ENV"`
}

// complete reports whether all three remote credentials resolved.
func (s settings) complete() bool {
	return s.APIKey != "" && s.BaseURL != "" && s.OrgID != ""
}

type settingsBuilder struct {
	layers []*settings
	err    error
}

func newSettingsBuilder() *settingsBuilder {
	return &settingsBuilder{layers: make([]*settings, 0, 2)}
}

// build merges the collected layers in order; earlier layers win on
// non-zero fields, so explicit values must be added before env values.
func (b *settingsBuilder) build() (settings, error) {
	if b.err != nil {
		return settings{}, fmt.Errorf("error occured during building settings: %w", b.err)
	}

	merged := settings{}
	for _, layer := range b.layers {
		if err := mergo.Merge(&merged, layer); err != nil {
			return settings{}, fmt.Errorf("error merging settings: %w", err)
		}
	}
	return merged, nil
}

func (b *settingsBuilder) withExplicit(s settings) *settingsBuilder {
	b.layers = append(b.layers, &s)
	return b
}

func (b *settingsBuilder) withEnv(environment map[string]string) *settingsBuilder {
	envSettings := &settings{}
	if err := env.ParseWithOptions(envSettings, env.Options{Environment: environment}); err != nil {
		b.err = err
		return b
	}

	b.layers = append(b.layers, envSettings)
	return b
}

// resolveSettings layers explicit constructor values over the environment.
func resolveSettings(explicit settings, environment map[string]string) (settings, error) {
	return newSettingsBuilder().
		withExplicit(explicit).
		withEnv(environment).
		build()
}
