// Copyright 2026 Teradata
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package config locates the assay data directory. It reads the
// environment directly rather than viper because the data directory is
// needed to find the config file in the first place.
package config

import (
	"os"
	"path/filepath"
	"strings"
)

// GetDataDir returns the assay data directory.
//
// Priority:
// 1. ASSAY_DATA_DIR environment variable (if set and non-empty)
// 2. ~/.assay (default)
//
// The returned path is always absolute. Tilde (~) in ASSAY_DATA_DIR is
// expanded to the user's home directory; relative paths are made
// absolute.
//
// Examples:
//
//	ASSAY_DATA_DIR=/custom/assay      -> /custom/assay
//	ASSAY_DATA_DIR=~/my-assay         -> /home/user/my-assay
//	ASSAY_DATA_DIR=relative/path      -> /current/dir/relative/path
//	ASSAY_DATA_DIR not set            -> /home/user/.assay
func GetDataDir() string {
	if dataDir := os.Getenv("ASSAY_DATA_DIR"); dataDir != "" {
		return expandPath(dataDir)
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// Fallback to current directory if home dir cannot be determined
		return ".assay"
	}
	return filepath.Join(homeDir, ".assay")
}

// GetSubDir returns a subdirectory within the assay data directory.
// Example: GetSubDir("reports") returns ~/.assay/reports
func GetSubDir(subdir string) string {
	return filepath.Join(GetDataDir(), subdir)
}

// expandPath expands ~ and resolves to absolute path
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return path // Return as-is if we can't get home dir
		}
		return filepath.Join(homeDir, path[2:])
	}

	absPath, err := filepath.Abs(path)
	if err != nil {
		return path // Return as-is if we can't make it absolute
	}
	return absPath
}
