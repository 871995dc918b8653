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

// Package factory creates ChatModel clients from a ModelConfig. It is
// the single place that knows which providers exist and where their
// credentials come from.
package factory

import (
	"os"
	"time"

	"github.com/teradata-labs/assay/pkg/llm/anthropic"
	"github.com/teradata-labs/assay/pkg/llm/bedrock"
	"github.com/teradata-labs/assay/pkg/llm/gemini"
	"github.com/teradata-labs/assay/pkg/llm/openai"
	"github.com/teradata-labs/assay/pkg/types"
)

// Config holds credentials and connection settings for every supported
// provider. Empty fields fall back to the provider's environment
// variable.
type Config struct {
	// Anthropic configuration
	AnthropicAPIKey string

	// OpenAI configuration
	OpenAIAPIKey string

	// xAI configuration
	XAIAPIKey string

	// Gemini configuration
	GeminiAPIKey string

	// Bedrock configuration
	BedrockRegion          string
	BedrockAccessKeyID     string
	BedrockSecretAccessKey string
	BedrockSessionToken    string
	BedrockProfile         string

	// Common settings
	Timeout time.Duration
}

// Factory creates ChatModel clients based on configuration.
type Factory struct {
	config Config
}

// New creates a new provider factory.
func New(config Config) *Factory {
	return &Factory{config: config}
}

// Create builds the ChatModel selected by mc. Missing credentials are
// reported as *types.ConfigError naming both the config key and the
// environment variable that can supply them.
func (f *Factory) Create(mc types.ModelConfig) (types.ChatModel, error) {
	switch mc.Provider {
	case "anthropic":
		return f.createAnthropic(mc)
	case "openai":
		return f.createOpenAI(mc)
	case "xai":
		return f.createXAI(mc)
	case "gemini":
		return f.createGemini(mc)
	case "bedrock":
		return f.createBedrock(mc)
	default:
		return nil, types.NewConfigError("unsupported provider: %s", mc.Provider)
	}
}

func (f *Factory) createAnthropic(mc types.ModelConfig) (types.ChatModel, error) {
	apiKey := f.config.AnthropicAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
	}
	if apiKey == "" {
		return nil, types.NewConfigError("anthropic API key not configured (set llm.anthropic_api_key or ANTHROPIC_API_KEY)")
	}

	return anthropic.NewClient(anthropic.Config{
		APIKey:      apiKey,
		Model:       mc.Model,
		MaxTokens:   mc.MaxOutputTokens,
		Temperature: mc.Temperature,
		Timeout:     f.config.Timeout,
	}), nil
}

func (f *Factory) createOpenAI(mc types.ModelConfig) (types.ChatModel, error) {
	apiKey := f.config.OpenAIAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("OPENAI_API_KEY")
	}
	if apiKey == "" {
		return nil, types.NewConfigError("openai API key not configured (set llm.openai_api_key or OPENAI_API_KEY)")
	}

	return openai.NewClient(openai.Config{
		APIKey:      apiKey,
		Model:       mc.Model,
		MaxTokens:   mc.MaxOutputTokens,
		Temperature: mc.Temperature,
		Timeout:     f.config.Timeout,
	}), nil
}

// createXAI reuses the OpenAI client: Grok's chat completions API is
// wire-compatible, only the endpoint and default model differ.
func (f *Factory) createXAI(mc types.ModelConfig) (types.ChatModel, error) {
	apiKey := f.config.XAIAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("XAI_API_KEY")
	}
	if apiKey == "" {
		return nil, types.NewConfigError("xai API key not configured (set llm.xai_api_key or XAI_API_KEY)")
	}

	return openai.NewClient(openai.Config{
		ProviderName: "xai",
		APIKey:       apiKey,
		Model:        mc.Model,
		MaxTokens:    mc.MaxOutputTokens,
		Temperature:  mc.Temperature,
		Timeout:      f.config.Timeout,
	}), nil
}

func (f *Factory) createGemini(mc types.ModelConfig) (types.ChatModel, error) {
	apiKey := f.config.GeminiAPIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, types.NewConfigError("gemini API key not configured (set llm.gemini_api_key or GEMINI_API_KEY)")
	}

	return gemini.NewClient(gemini.Config{
		APIKey:      apiKey,
		Model:       mc.Model,
		MaxTokens:   mc.MaxOutputTokens,
		Temperature: mc.Temperature,
		Timeout:     f.config.Timeout,
	}), nil
}

// createBedrock passes credentials straight through: the AWS default
// chain (IAM role, env vars, shared config) covers the empty case, so
// no key check happens here. A malformed setup surfaces as an LLMError
// on the first call instead.
func (f *Factory) createBedrock(mc types.ModelConfig) (types.ChatModel, error) {
	client, err := bedrock.NewClient(bedrock.Config{
		Region:          f.config.BedrockRegion,
		AccessKeyID:     f.config.BedrockAccessKeyID,
		SecretAccessKey: f.config.BedrockSecretAccessKey,
		SessionToken:    f.config.BedrockSessionToken,
		Profile:         f.config.BedrockProfile,
		ModelID:         mc.Model,
		MaxTokens:       mc.MaxOutputTokens,
		Temperature:     mc.Temperature,
	})
	if err != nil {
		return nil, types.NewConfigError("bedrock client setup failed: %v", err)
	}
	return client, nil
}
