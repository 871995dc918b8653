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

package bedrock

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClientDefaults(t *testing.T) {
	t.Setenv("AWS_BEDROCK_MODEL_ID", "")
	t.Setenv("AWS_DEFAULT_REGION", "")

	client, err := NewClient(Config{
		AccessKeyID:     "AKIATEST",
		SecretAccessKey: "secret",
	})
	require.NoError(t, err)

	assert.Equal(t, "bedrock", client.Name())
	assert.Equal(t, DefaultModelID, client.Model())
	assert.Equal(t, DefaultRegion, client.Region())
	assert.Equal(t, int64(DefaultMaxTokens), client.maxTokens)
	assert.Equal(t, DefaultTemperature, client.temperature)
}

func TestNewClientOverrides(t *testing.T) {
	client, err := NewClient(Config{
		Region:          "eu-central-1",
		AccessKeyID:     "AKIATEST",
		SecretAccessKey: "secret",
		ModelID:         "eu.anthropic.claude-sonnet-4-5-20250929-v1:0",
		MaxTokens:       2048,
		Temperature:     0.3,
	})
	require.NoError(t, err)

	assert.Equal(t, "eu.anthropic.claude-sonnet-4-5-20250929-v1:0", client.Model())
	assert.Equal(t, "eu-central-1", client.Region())
	assert.Equal(t, int64(2048), client.maxTokens)
	assert.Equal(t, 0.3, client.temperature)
}

func TestNewClientModelFromEnv(t *testing.T) {
	t.Setenv("AWS_BEDROCK_MODEL_ID", "us.anthropic.claude-haiku-4-5-v1:0")

	client, err := NewClient(Config{
		AccessKeyID:     "AKIATEST",
		SecretAccessKey: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "us.anthropic.claude-haiku-4-5-v1:0", client.Model())
}

func TestNewClientRegionFromEnv(t *testing.T) {
	t.Setenv("AWS_DEFAULT_REGION", "ap-southeast-2")

	client, err := NewClient(Config{
		AccessKeyID:     "AKIATEST",
		SecretAccessKey: "secret",
	})
	require.NoError(t, err)
	assert.Equal(t, "ap-southeast-2", client.Region())
}
