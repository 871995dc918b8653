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

package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/assay/pkg/types"
)

func TestCreateKnownProviders(t *testing.T) {
	f := New(Config{
		AnthropicAPIKey: "key-a",
		OpenAIAPIKey:    "key-o",
		XAIAPIKey:       "key-x",
		GeminiAPIKey:    "key-g",
	})

	tests := []struct {
		provider  string
		model     string
		wantName  string
		wantModel string
	}{
		{"anthropic", "claude-sonnet-4-5-20250929", "anthropic", "claude-sonnet-4-5-20250929"},
		{"openai", "gpt-4.1", "openai", "gpt-4.1"},
		{"xai", "grok-4", "xai", "grok-4"},
		{"gemini", "gemini-2.5-flash", "gemini", "gemini-2.5-flash"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			model, err := f.Create(types.ModelConfig{Provider: tt.provider, Model: tt.model})
			require.NoError(t, err)
			assert.Equal(t, tt.wantName, model.Name())
			assert.Equal(t, tt.wantModel, model.Model())
		})
	}
}

func TestCreateXAIDefaults(t *testing.T) {
	f := New(Config{XAIAPIKey: "key-x"})

	model, err := f.Create(types.ModelConfig{Provider: "xai"})
	require.NoError(t, err)
	assert.Equal(t, "xai", model.Name())
	assert.Equal(t, "grok-4", model.Model())
}

func TestCreateMissingCredentials(t *testing.T) {
	f := New(Config{})

	tests := []struct {
		provider string
		envVar   string
	}{
		{"anthropic", "ANTHROPIC_API_KEY"},
		{"openai", "OPENAI_API_KEY"},
		{"xai", "XAI_API_KEY"},
		{"gemini", "GEMINI_API_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			t.Setenv(tt.envVar, "")

			_, err := f.Create(types.ModelConfig{Provider: tt.provider})
			require.Error(t, err)

			var cfgErr *types.ConfigError
			require.ErrorAs(t, err, &cfgErr)
			assert.Contains(t, err.Error(), tt.envVar)
		})
	}
}

func TestCreateCredentialsFromEnv(t *testing.T) {
	t.Setenv("ANTHROPIC_API_KEY", "env-key")

	f := New(Config{})
	model, err := f.Create(types.ModelConfig{Provider: "anthropic"})
	require.NoError(t, err)
	assert.Equal(t, "anthropic", model.Name())
}

func TestCreateUnsupportedProvider(t *testing.T) {
	f := New(Config{})

	_, err := f.Create(types.ModelConfig{Provider: "cohere"})
	require.Error(t, err)

	var cfgErr *types.ConfigError
	require.ErrorAs(t, err, &cfgErr)
	assert.Contains(t, err.Error(), "unsupported provider")
}

func TestCreateBedrockStaticCredentials(t *testing.T) {
	f := New(Config{
		BedrockRegion:          "us-west-2",
		BedrockAccessKeyID:     "AKIATEST",
		BedrockSecretAccessKey: "secret",
	})

	model, err := f.Create(types.ModelConfig{Provider: "bedrock"})
	require.NoError(t, err)
	assert.Equal(t, "bedrock", model.Name())
}
