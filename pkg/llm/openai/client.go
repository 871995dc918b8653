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

// Package openai implements the ChatModel interface for OpenAI's Chat
// Completions API. xAI's Grok API is wire-compatible, so the same
// client serves both providers; set ProviderName and Endpoint to use
// it against x.ai.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/teradata-labs/assay/pkg/llm"
	"github.com/teradata-labs/assay/pkg/types"
)

const (
	// DefaultModel is the default OpenAI model.
	DefaultModel = "gpt-4.1"
	// DefaultEndpoint is the default OpenAI chat completions endpoint.
	DefaultEndpoint = "https://api.openai.com/v1/chat/completions"
	// XAIEndpoint is the Grok chat completions endpoint.
	XAIEndpoint = "https://api.x.ai/v1/chat/completions"
	// DefaultXAIModel is the default Grok model.
	DefaultXAIModel = "grok-4"
	// DefaultMaxTokens is the default maximum tokens per reply.
	DefaultMaxTokens = 4096
	// DefaultTemperature is the default sampling temperature.
	DefaultTemperature = 1.0
	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 60 * time.Second
)

// Client calls an OpenAI-compatible chat completions API.
type Client struct {
	providerName string
	apiKey       string
	model        string
	endpoint     string
	maxTokens    int
	temperature  float64
	httpClient   *http.Client
}

var _ types.ChatModel = (*Client)(nil)

// Config holds configuration for the client.
type Config struct {
	APIKey       string
	Model        string // Default: gpt-4.1 (grok-4 when ProviderName is "xai")
	Endpoint     string // Default: https://api.openai.com/v1/chat/completions
	ProviderName string // Default: "openai"; set "xai" for Grok
	Timeout      time.Duration
	MaxTokens    int     // Default: 4096
	Temperature  float64 // Default: 1.0
}

// NewClient creates a new OpenAI-compatible client.
func NewClient(config Config) *Client {
	if config.ProviderName == "" {
		config.ProviderName = "openai"
	}
	if config.ProviderName == "xai" {
		if config.Model == "" {
			config.Model = DefaultXAIModel
		}
		if config.Endpoint == "" {
			config.Endpoint = XAIEndpoint
		}
	}
	if config.Model == "" {
		if envModel := os.Getenv("OPENAI_DEFAULT_MODEL"); envModel != "" {
			config.Model = envModel
		} else {
			config.Model = DefaultModel
		}
	}
	if config.Endpoint == "" {
		if envEndpoint := os.Getenv("OPENAI_API_ENDPOINT"); envEndpoint != "" {
			config.Endpoint = envEndpoint
		} else {
			config.Endpoint = DefaultEndpoint
		}
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.MaxTokens == 0 {
		config.MaxTokens = DefaultMaxTokens
	}
	if config.Temperature == 0 {
		config.Temperature = DefaultTemperature
	}

	return &Client{
		providerName: config.ProviderName,
		apiKey:       config.APIKey,
		model:        config.Model,
		endpoint:     config.Endpoint,
		maxTokens:    config.MaxTokens,
		temperature:  config.Temperature,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Name returns the provider name ("openai" or "xai").
func (c *Client) Name() string {
	return c.providerName
}

// Model returns the model identifier.
func (c *Client) Model() string {
	return c.model
}

// Complete sends a system/user prompt pair as a two-message chat.
func (c *Client) Complete(ctx context.Context, req types.CompletionRequest) (*types.Completion, error) {
	messages := make([]chatMessage, 0, 2)
	if req.SystemPrompt != "" {
		messages = append(messages, chatMessage{Role: "system", Content: req.SystemPrompt})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.UserPrompt})

	apiReq := &chatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	}

	resp, err := c.callAPI(ctx, apiReq)
	if err != nil {
		return nil, types.NewLLMError(c.Name(), err)
	}
	if len(resp.Choices) == 0 {
		return nil, types.NewLLMError(c.Name(), fmt.Errorf("response contained no choices"))
	}

	text := resp.Choices[0].Message.Content

	usage := types.TokenUsage{
		InputTokens:  resp.Usage.PromptTokens,
		OutputTokens: resp.Usage.CompletionTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}
	if usage.TotalTokens == 0 {
		usage = llm.EstimateUsage(req.SystemPrompt, req.UserPrompt, text)
	}

	return &types.Completion{Text: text, Usage: usage}, nil
}

func (c *Client) callAPI(ctx context.Context, req *chatCompletionRequest) (*chatCompletionResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() { _ = httpResp.Body.Close() }()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API error (status %d): %s", httpResp.StatusCode, string(respBody))
	}

	var resp chatCompletionResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}

	return &resp, nil
}

// chatCompletionRequest is the Chat Completions API request shape.
type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// chatCompletionResponse is the Chat Completions API response shape.
type chatCompletionResponse struct {
	ID      string                 `json:"id"`
	Object  string                 `json:"object"`
	Model   string                 `json:"model"`
	Choices []chatCompletionChoice `json:"choices"`
	Usage   chatCompletionUsage    `json:"usage"`
}

type chatCompletionChoice struct {
	Index        int         `json:"index"`
	Message      chatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatCompletionUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}
