// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quorum Contributors

// Package xdg locates the Quorum config file under the XDG Base Directory layout.
package xdg

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
)

const appName = "quorum"

// ConfigFileName is the file looked up in ConfigDir.
const ConfigFileName = "config.yaml"

// ConfigDir returns the XDG config directory for quorum.
// Checks XDG_CONFIG_HOME first, falls back to ~/.config.
func ConfigDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		base = filepath.Join(os.Getenv("HOME"), ".config")
	}
	return filepath.Join(base, appName)
}

// ConfigFile returns the default config file path and whether it exists.
// Permission errors count as existing so the load reports them.
func ConfigFile() (string, bool) {
	path := filepath.Join(ConfigDir(), ConfigFileName)
	_, err := os.Stat(path)
	if errors.Is(err, fs.ErrNotExist) {
		return path, false
	}
	return path, true
}

// ResolveConfigPath returns explicit when set, otherwise the default config
// file if present, otherwise "".
func ResolveConfigPath(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if path, ok := ConfigFile(); ok {
		return path
	}
	return ""
}
