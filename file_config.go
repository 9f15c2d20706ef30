// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 The tierconf Authors

package tierconf

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
)

// Environment variables consulted during config directory discovery.
const (
	EnvConfigDir     = "TIERCONF_CONFIG_DIR"
	EnvLevelsUpLimit = "TIERCONF_LEVELS_UP_LIMIT"

	defaultLevelsUp = 5
)

// Directory names probed during discovery, in order.
var dirCandidates = []string{".tierconf", "tierconf"}

// FindConfigDirectory locates the directory holding the JSON config cascade.
//
// Search order:
//
//  1. TIERCONF_CONFIG_DIR: returned if it exists on disk, otherwise the
//     lookup fails with no fallback.
//  2. The cache, unless ignoreCache is set. A cached path that no longer
//     exists is evicted and the search continues.
//  3. ".tierconf" and "tierconf" directly under the working directory.
//  4. The same two names at each ancestor of the working directory, up to
//     TIERCONF_LEVELS_UP_LIMIT levels (default 5; a non-numeric override
//     silently falls back to the default), stopping at the filesystem root.
//
// A discovered path from steps 3-4 is stored in cache before returning.
// A nil cache uses [DefaultDirCache].
func FindConfigDirectory(env map[string]string, cache *DirCache, ignoreCache bool) (string, error) {
	if env == nil {
		env = environMap(os.Environ())
	}
	if cache == nil {
		cache = DefaultDirCache
	}

	if dir := env[EnvConfigDir]; dir != "" {
		if isDir(dir) {
			return dir, nil
		}
		return "", fmt.Errorf("%w: directory in %s does not exist: %s", ErrConfigDirNotFound, EnvConfigDir, dir)
	}

	if !ignoreCache {
		if dir, ok := cache.Get(); ok {
			if isDir(dir) {
				return dir, nil
			}
			cache.Reset()
		}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("get working directory: %w", err)
	}

	for _, c := range dirCandidates {
		dir := filepath.Join(cwd, c)
		if isDir(dir) {
			cache.Set(dir)
			return dir, nil
		}
	}

	levelsUp := defaultLevelsUp
	if v := env[EnvLevelsUpLimit]; v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			levelsUp = n
		}
	}

	searchDir := cwd
	for i := 0; i < levelsUp; i++ {
		parent := filepath.Dir(searchDir)
		if parent == searchDir {
			break // filesystem root
		}
		searchDir = parent
		for _, c := range dirCandidates {
			dir := filepath.Join(searchDir, c)
			if isDir(dir) {
				cache.Set(dir)
				return dir, nil
			}
		}
	}

	return "", fmt.Errorf("%w: searched %d levels up from %s", ErrConfigDirNotFound, levelsUp, cwd)
}

// LoadFileConfig loads and deep-merges the JSON file cascade from the
// discovered config directory.
//
// Cascade order, later files winning on conflict:
//
//	default.json                      required
//	local.json                        when IS_LOCAL coerces true
//	{env}.json
//	{env}.{provider}.json             when provider is known
//	{env}.{provider}.{region}.json    when provider and region are known
//
// An absent optional file is skipped; a present but unparseable file is
// fatal. After the cascade the built-in keys ENV, IS_LOCAL, REGION and
// CLOUD_PROVIDER are set unconditionally, overriding cascade values.
//
// A nil env reads the process environment; a nil cache uses
// [DefaultDirCache].
func LoadFileConfig(env map[string]string, cache *DirCache) (map[string]any, error) {
	if env == nil {
		env = environMap(os.Environ())
	}

	configDir, err := FindConfigDirectory(env, cache, false)
	if err != nil {
		return nil, err
	}

	envName := coalesce(env[EnvEnvironmentName], defaultEnvironment)
	isLocal := CoerceBool(env[EnvIsLocal])
	cloud := DetectCloudRegionFromEnv(env)

	files := []string{"default.json"}
	if isLocal {
		files = append(files, "local.json")
	}
	files = append(files, envName+".json")
	if cloud.Provider != "unknown" {
		files = append(files, fmt.Sprintf("%s.%s.json", envName, cloud.Provider))
		if cloud.Region != "unknown" {
			files = append(files, fmt.Sprintf("%s.%s.%s.json", envName, cloud.Provider, cloud.Region))
		}
	}

	merged := make(map[string]any)
	for _, name := range files {
		path := filepath.Join(configDir, name)

		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				if name == "default.json" {
					return nil, fmt.Errorf("%w in %s", ErrDefaultConfigMissing, configDir)
				}
				continue
			}
			return nil, fmt.Errorf("read %s: %w", path, err)
		}

		var fileConfig map[string]any
		if err := json.Unmarshal(data, &fileConfig); err != nil {
			return nil, fmt.Errorf("%w: parse %s: %w", ErrInvalidConfigFile, path, err)
		}

		merged = Merge(merged, fileConfig).(map[string]any)
	}

	merged[KeyEnv] = envName
	merged[KeyIsLocal] = isLocal
	merged[KeyRegion] = cloud.Region
	merged[KeyCloudProvider] = cloud.Provider

	return merged, nil
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
