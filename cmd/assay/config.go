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
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
	assayconfig "github.com/teradata-labs/assay/pkg/config"
	"github.com/teradata-labs/assay/pkg/types"
	"github.com/zalando/go-keyring"
)

const (
	// ServiceName for keyring storage
	ServiceName = "assay"
	// DefaultConfigFileName is the name of the config file
	DefaultConfigFileName = "assay"
)

// Config holds all configuration for the assay CLI.
// Priority: CLI flags > config file > env vars > defaults
type Config struct {
	// DataDir is the assay data directory (computed from ASSAY_DATA_DIR env var or ~/.assay)
	// This field is set during config initialization and is read-only.
	DataDir string `mapstructure:"-"`

	// LLM provider configuration
	LLM LLMConfig `mapstructure:"llm"`

	// Evaluation defaults (overridable per run via flags)
	Evaluation EvaluationConfig `mapstructure:"evaluation"`

	// Logging configuration
	Logging LoggingConfig `mapstructure:"logging"`
}

// LLMConfig holds LLM provider configuration.
type LLMConfig struct {
	Provider string `mapstructure:"provider"` // anthropic, openai, xai, gemini, bedrock
	Model    string `mapstructure:"model"`    // overrides the provider default when set

	// Anthropic-specific
	AnthropicAPIKey string `mapstructure:"anthropic_api_key"` // From CLI/env/keyring only

	// OpenAI-specific
	OpenAIAPIKey string `mapstructure:"openai_api_key"` // From CLI/env/keyring only

	// xAI-specific
	XAIAPIKey string `mapstructure:"xai_api_key"` // From CLI/env/keyring only

	// Gemini-specific
	GeminiAPIKey string `mapstructure:"gemini_api_key"` // From CLI/env/keyring only

	// Bedrock-specific
	BedrockRegion          string `mapstructure:"bedrock_region"`
	BedrockAccessKeyID     string `mapstructure:"bedrock_access_key_id"`     // From CLI/env/keyring only
	BedrockSecretAccessKey string `mapstructure:"bedrock_secret_access_key"` // From CLI/env/keyring only
	BedrockSessionToken    string `mapstructure:"bedrock_session_token"`     // From CLI/env/keyring only
	BedrockProfile         string `mapstructure:"bedrock_profile"`

	// Common generation parameters
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
	Timeout     int     `mapstructure:"timeout_seconds"` // per agent call

	// Call pacing for the per-round agent burst (0 disables)
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// EvaluationConfig holds evaluation loop defaults.
type EvaluationConfig struct {
	MaxRounds            int     `mapstructure:"max_rounds"`
	ConvergenceThreshold float64 `mapstructure:"convergence_threshold"`
	RAGThresholdBytes    int     `mapstructure:"rag_threshold_bytes"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // text, json
}

// LoadConfig loads configuration from multiple sources with proper priority:
// 1. Command line flags (highest priority)
// 2. Config file
// 3. Environment variables
// 4. Defaults (lowest priority)
func LoadConfig(cfgFile string) (*Config, error) {
	setDefaults()

	if cfgFile != "" {
		// Use config file from flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in standard locations
		viper.AddConfigPath(assayconfig.GetDataDir()) // assay data directory (respects ASSAY_DATA_DIR)
		viper.AddConfigPath(".")                      // Current directory
		viper.SetConfigName(DefaultConfigFileName)    // assay.yaml
		viper.SetConfigType("yaml")
	}

	// Read config file (if it exists)
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file %s: %w", viper.ConfigFileUsed(), err)
		}
		// Config file not found; using defaults + env vars + flags
	}

	// Bind environment variables (ASSAY_LLM_ANTHROPIC_API_KEY etc.)
	viper.SetEnvPrefix("ASSAY")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	// Set DataDir from environment or default. Not loaded from the
	// config file: the file lives inside this directory.
	config.DataDir = assayconfig.GetDataDir()

	// Load secrets from keyring if not provided via CLI/env.
	// Non-fatal: keyring might not be available - user can provide secrets via CLI/env
	_ = loadSecretsFromKeyring(&config)

	return &config, nil
}

// setDefaults sets default configuration values.
func setDefaults() {
	// LLM defaults
	viper.SetDefault("llm.provider", "anthropic")
	viper.SetDefault("llm.model", "")
	viper.SetDefault("llm.bedrock_region", "us-west-2")
	viper.SetDefault("llm.bedrock_profile", "")
	viper.SetDefault("llm.temperature", 0.7)
	viper.SetDefault("llm.max_tokens", 4096)
	viper.SetDefault("llm.timeout_seconds", int(types.DefaultAgentTimeout.Seconds()))
	viper.SetDefault("llm.requests_per_second", 2.0)
	viper.SetDefault("llm.burst", 5)

	// Secrets default to empty; registering the keys lets AutomaticEnv
	// surface ASSAY_LLM_* values through Unmarshal.
	viper.SetDefault("llm.anthropic_api_key", "")
	viper.SetDefault("llm.openai_api_key", "")
	viper.SetDefault("llm.xai_api_key", "")
	viper.SetDefault("llm.gemini_api_key", "")
	viper.SetDefault("llm.bedrock_access_key_id", "")
	viper.SetDefault("llm.bedrock_secret_access_key", "")
	viper.SetDefault("llm.bedrock_session_token", "")

	// Evaluation defaults mirror pkg/types so a bare config behaves
	// exactly like types.NewEvaluationRequest.
	viper.SetDefault("evaluation.max_rounds", types.DefaultMaxRounds)
	viper.SetDefault("evaluation.convergence_threshold", types.DefaultConvergenceThreshold)
	viper.SetDefault("evaluation.rag_threshold_bytes", types.DefaultRAGThreshold)

	// Logging defaults
	viper.SetDefault("logging.level", "info")
	viper.SetDefault("logging.format", "text")
}

// SecretMapping defines how to load a secret from keyring into the config.
// The key is the keyring key name, and the setter is a function that applies the value to the config.
type SecretMapping struct {
	KeyringKey string
	Setter     func(*Config, string)
	IsSet      func(*Config) bool // Returns true if the value is already set (skip keyring lookup)
}

// GetSecretMappings returns all secret mappings for the application.
func GetSecretMappings() []SecretMapping {
	return []SecretMapping{
		{
			KeyringKey: "anthropic_api_key",
			Setter:     func(c *Config, val string) { c.LLM.AnthropicAPIKey = val },
			IsSet:      func(c *Config) bool { return c.LLM.AnthropicAPIKey != "" },
		},
		{
			KeyringKey: "openai_api_key",
			Setter:     func(c *Config, val string) { c.LLM.OpenAIAPIKey = val },
			IsSet:      func(c *Config) bool { return c.LLM.OpenAIAPIKey != "" },
		},
		{
			KeyringKey: "xai_api_key",
			Setter:     func(c *Config, val string) { c.LLM.XAIAPIKey = val },
			IsSet:      func(c *Config) bool { return c.LLM.XAIAPIKey != "" },
		},
		{
			KeyringKey: "gemini_api_key",
			Setter:     func(c *Config, val string) { c.LLM.GeminiAPIKey = val },
			IsSet:      func(c *Config) bool { return c.LLM.GeminiAPIKey != "" },
		},
		{
			KeyringKey: "bedrock_access_key_id",
			Setter:     func(c *Config, val string) { c.LLM.BedrockAccessKeyID = val },
			IsSet:      func(c *Config) bool { return c.LLM.BedrockAccessKeyID != "" },
		},
		{
			KeyringKey: "bedrock_secret_access_key",
			Setter:     func(c *Config, val string) { c.LLM.BedrockSecretAccessKey = val },
			IsSet:      func(c *Config) bool { return c.LLM.BedrockSecretAccessKey != "" },
		},
		{
			KeyringKey: "bedrock_session_token",
			Setter:     func(c *Config, val string) { c.LLM.BedrockSessionToken = val },
			IsSet:      func(c *Config) bool { return c.LLM.BedrockSessionToken != "" },
		},
	}
}

// loadSecretsFromKeyring loads API keys from system keyring using the secret mappings.
func loadSecretsFromKeyring(config *Config) error {
	for _, mapping := range GetSecretMappings() {
		// Skip if value is already set (from CLI/env/config file)
		if mapping.IsSet(config) {
			continue
		}

		value, err := GetSecretFromKeyring(mapping.KeyringKey)
		if err == nil && value != "" {
			mapping.Setter(config, value)
		}
		// Non-fatal: if keyring doesn't have the key, just continue
	}

	return nil
}

// GetSecretFromKeyring retrieves a secret from the system keyring.
func GetSecretFromKeyring(key string) (string, error) {
	return keyring.Get(ServiceName, key)
}

// SaveSecretToKeyring saves a secret to the system keyring.
func SaveSecretToKeyring(key, value string) error {
	return keyring.Set(ServiceName, key, value)
}

// DeleteSecretFromKeyring removes a secret from the system keyring.
func DeleteSecretFromKeyring(key string) error {
	return keyring.Delete(ServiceName, key)
}

// ListAvailableSecretKeys returns all known secret keys that can be stored in the keyring.
func ListAvailableSecretKeys() []string {
	mappings := GetSecretMappings()
	keys := make([]string, len(mappings))
	for i, mapping := range mappings {
		keys[i] = mapping.KeyringKey
	}
	return keys
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.LLM.Provider == "" {
		return fmt.Errorf("llm.provider is required")
	}

	// The provider clients also read their native env vars directly
	// (ANTHROPIC_API_KEY etc.), so an empty config field is only an
	// error when that fallback is empty too.
	switch c.LLM.Provider {
	case "anthropic":
		if c.LLM.AnthropicAPIKey == "" && os.Getenv("ANTHROPIC_API_KEY") == "" {
			return fmt.Errorf("anthropic API key is required (set ANTHROPIC_API_KEY or save to keyring with 'assay config set-key anthropic_api_key')")
		}

	case "openai":
		if c.LLM.OpenAIAPIKey == "" && os.Getenv("OPENAI_API_KEY") == "" {
			return fmt.Errorf("openai API key is required (set OPENAI_API_KEY or save to keyring with 'assay config set-key openai_api_key')")
		}

	case "xai":
		if c.LLM.XAIAPIKey == "" && os.Getenv("XAI_API_KEY") == "" {
			return fmt.Errorf("xai API key is required (set XAI_API_KEY or save to keyring with 'assay config set-key xai_api_key')")
		}

	case "gemini":
		if c.LLM.GeminiAPIKey == "" && os.Getenv("GEMINI_API_KEY") == "" {
			return fmt.Errorf("gemini API key is required (set GEMINI_API_KEY or save to keyring with 'assay config set-key gemini_api_key')")
		}

	case "bedrock":
		if c.LLM.BedrockRegion == "" {
			return fmt.Errorf("bedrock region is required (set llm.bedrock_region in config or ASSAY_LLM_BEDROCK_REGION env var)")
		}
		// Explicit credentials are not required here: the user might be
		// using an AWS profile, an IAM role, or AWS_* environment
		// variables. The Bedrock client validates auth at runtime.

	default:
		return fmt.Errorf("unsupported LLM provider: %s (must be anthropic, openai, xai, gemini, or bedrock)", c.LLM.Provider)
	}

	if c.LLM.MaxTokens < 1 {
		return fmt.Errorf("llm.max_tokens must be positive")
	}
	if c.LLM.Timeout < 1 {
		return fmt.Errorf("llm.timeout_seconds must be positive")
	}
	if c.LLM.RequestsPerSecond < 0 {
		return fmt.Errorf("llm.requests_per_second must be >= 0 (0 disables pacing)")
	}

	if c.Evaluation.MaxRounds < 1 || c.Evaluation.MaxRounds > types.MaxRoundsLimit {
		return fmt.Errorf("evaluation.max_rounds must be in [1,%d]", types.MaxRoundsLimit)
	}
	if c.Evaluation.ConvergenceThreshold < 0 || c.Evaluation.ConvergenceThreshold > 1 {
		return fmt.Errorf("evaluation.convergence_threshold must be in [0,1]")
	}
	if c.Evaluation.RAGThresholdBytes < 0 {
		return fmt.Errorf("evaluation.rag_threshold_bytes must be >= 0")
	}

	return nil
}

// GenerateExampleConfig generates an example configuration file.
func GenerateExampleConfig() string {
	return `# Assay Configuration
# Priority: CLI flags > config file > environment variables > defaults

llm:
  # Provider options: anthropic, openai, xai, gemini, bedrock
  provider: anthropic

  # Model id (leave empty for the provider default)
  # model: claude-sonnet-4-5-20250929

  # Anthropic configuration
  # anthropic_api_key: set via keyring (assay config set-key anthropic_api_key)

  # OpenAI configuration
  # openai_api_key: set via keyring (assay config set-key openai_api_key)

  # xAI configuration
  # xai_api_key: set via keyring (assay config set-key xai_api_key)

  # Google Gemini configuration
  # gemini_api_key: set via keyring (assay config set-key gemini_api_key)

  # AWS Bedrock configuration
  bedrock_region: us-west-2
  # bedrock_profile: default  # Use AWS profile instead of explicit credentials
  # bedrock_access_key_id: set via keyring or env (ASSAY_LLM_BEDROCK_ACCESS_KEY_ID)
  # bedrock_secret_access_key: set via keyring or env (ASSAY_LLM_BEDROCK_SECRET_ACCESS_KEY)

  # Common generation parameters (apply to all providers)
  temperature: 0.7
  max_tokens: 4096
  timeout_seconds: 300

  # Pacing for the per-round agent call burst (0 disables)
  requests_per_second: 2
  burst: 5

evaluation:
  max_rounds: 3
  convergence_threshold: 0.85
  rag_threshold_bytes: 102400

logging:
  level: info  # debug, info, warn, error
  format: text # text, json

# Note: Secrets should NEVER be committed to config files.
# Use the keyring for secure storage:
#   assay config set-key anthropic_api_key
#   assay config set-key bedrock_access_key_id
#   assay config set-key bedrock_secret_access_key
`
}
