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

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetDataDir(t *testing.T) {
	t.Run("default to ~/.assay", func(t *testing.T) {
		t.Setenv("ASSAY_DATA_DIR", "")

		dataDir := GetDataDir()

		homeDir, err := os.UserHomeDir()
		require.NoError(t, err)
		expected := filepath.Join(homeDir, ".assay")
		assert.Equal(t, expected, dataDir)
	})

	t.Run("use ASSAY_DATA_DIR when set", func(t *testing.T) {
		customDir := "/custom/assay/data"
		t.Setenv("ASSAY_DATA_DIR", customDir)

		dataDir := GetDataDir()

		assert.Equal(t, customDir, dataDir)
	})

	t.Run("expand ~ in ASSAY_DATA_DIR", func(t *testing.T) {
		t.Setenv("ASSAY_DATA_DIR", "~/custom/.assay")

		dataDir := GetDataDir()

		homeDir, err := os.UserHomeDir()
		require.NoError(t, err)
		expected := filepath.Join(homeDir, "custom", ".assay")
		assert.Equal(t, expected, dataDir)
	})

	t.Run("make relative path absolute in ASSAY_DATA_DIR", func(t *testing.T) {
		t.Setenv("ASSAY_DATA_DIR", "relative/path")

		dataDir := GetDataDir()

		assert.True(t, filepath.IsAbs(dataDir))
		assert.True(t, strings.HasSuffix(dataDir, "relative/path") || strings.HasSuffix(dataDir, "relative\\path"))
	})
}

func TestGetSubDir(t *testing.T) {
	t.Run("return subdirectory path", func(t *testing.T) {
		t.Setenv("ASSAY_DATA_DIR", "")

		reportsDir := GetSubDir("reports")

		homeDir, err := os.UserHomeDir()
		require.NoError(t, err)
		expected := filepath.Join(homeDir, ".assay", "reports")
		assert.Equal(t, expected, reportsDir)
	})

	t.Run("respect ASSAY_DATA_DIR for subdirectories", func(t *testing.T) {
		customDir := "/custom/assay"
		t.Setenv("ASSAY_DATA_DIR", customDir)

		cacheDir := GetSubDir("cache")

		expected := filepath.Join(customDir, "cache")
		assert.Equal(t, expected, cacheDir)
	})
}

func TestExpandPath(t *testing.T) {
	homeDir, err := os.UserHomeDir()
	require.NoError(t, err)

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "expand tilde",
			input:    "~/test/path",
			expected: filepath.Join(homeDir, "test", "path"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/absolute/path",
			expected: "/absolute/path",
		},
		{
			name:  "relative path made absolute",
			input: "relative/path",
			// expected is checked for being absolute, not exact match
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)

			if tt.name == "relative path made absolute" {
				assert.True(t, filepath.IsAbs(result))
				assert.True(t, strings.HasSuffix(result, "relative/path") || strings.HasSuffix(result, "relative\\path"))
			} else {
				assert.Equal(t, tt.expected, result)
			}
		})
	}
}
