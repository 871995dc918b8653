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

// Package gemini implements the ChatModel interface for Google's
// Gemini generateContent API.
package gemini

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
	// DefaultModel is the default Gemini model.
	DefaultModel = "gemini-2.5-flash"
	// DefaultBaseURL is the default Gemini API base URL; the model and
	// API key are interpolated per request.
	DefaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"
	// DefaultMaxTokens is the default maximum tokens per reply.
	DefaultMaxTokens = 4096
	// DefaultTemperature is the default sampling temperature.
	DefaultTemperature = 1.0
	// DefaultTimeout is the default HTTP timeout.
	DefaultTimeout = 60 * time.Second
)

// Client calls the Gemini generateContent API.
type Client struct {
	apiKey      string
	model       string
	baseURL     string
	maxTokens   int
	temperature float64
	httpClient  *http.Client
}

var _ types.ChatModel = (*Client)(nil)

// Config holds configuration for the Gemini client.
type Config struct {
	APIKey      string
	Model       string // Default: gemini-2.5-flash
	BaseURL     string // Default: https://generativelanguage.googleapis.com/v1beta
	Timeout     time.Duration
	MaxTokens   int     // Default: 4096
	Temperature float64 // Default: 1.0
}

// NewClient creates a new Gemini client.
func NewClient(config Config) *Client {
	if config.Model == "" {
		if envModel := os.Getenv("GEMINI_DEFAULT_MODEL"); envModel != "" {
			config.Model = envModel
		} else {
			config.Model = DefaultModel
		}
	}
	if config.BaseURL == "" {
		config.BaseURL = DefaultBaseURL
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
		apiKey:      config.APIKey,
		model:       config.Model,
		baseURL:     config.BaseURL,
		maxTokens:   config.MaxTokens,
		temperature: config.Temperature,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return "gemini"
}

// Model returns the model identifier.
func (c *Client) Model() string {
	return c.model
}

// Complete sends a system/user prompt pair to Gemini. Gemini has no
// system role, so the system prompt is prepended as a user turn.
func (c *Client) Complete(ctx context.Context, req types.CompletionRequest) (*types.Completion, error) {
	var contents []content
	if req.SystemPrompt != "" {
		contents = append(contents, content{
			Role:  "user",
			Parts: []part{{Text: "System instruction: " + req.SystemPrompt}},
		})
	}
	contents = append(contents, content{
		Role:  "user",
		Parts: []part{{Text: req.UserPrompt}},
	})

	apiReq := &generateContentRequest{
		Contents: contents,
		GenerationConfig: generationConfig{
			Temperature:     c.temperature,
			MaxOutputTokens: c.maxTokens,
		},
	}

	resp, err := c.callAPI(ctx, apiReq)
	if err != nil {
		return nil, types.NewLLMError(c.Name(), err)
	}
	if len(resp.Candidates) == 0 {
		return nil, types.NewLLMError(c.Name(), fmt.Errorf("response contained no candidates"))
	}

	text := ""
	for _, p := range resp.Candidates[0].Content.Parts {
		text += p.Text
	}

	usage := types.TokenUsage{
		InputTokens:  resp.UsageMetadata.PromptTokenCount,
		OutputTokens: resp.UsageMetadata.CandidatesTokenCount,
		TotalTokens:  resp.UsageMetadata.TotalTokenCount,
	}
	if usage.TotalTokens == 0 {
		usage = llm.EstimateUsage(req.SystemPrompt, req.UserPrompt, text)
	}

	return &types.Completion{Text: text, Usage: usage}, nil
}

func (c *Client) callAPI(ctx context.Context, req *generateContentRequest) (*generateContentResponse, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	apiURL := fmt.Sprintf("%s/models/%s:generateContent?key=%s", c.baseURL, c.model, c.apiKey)

	httpReq, err := http.NewRequestWithContext(ctx, "POST", apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

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

	var resp generateContentResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w", err)
	}
	if resp.Error != nil {
		return nil, fmt.Errorf("API error %d (%s): %s", resp.Error.Code, resp.Error.Status, resp.Error.Message)
	}

	return &resp, nil
}

// generateContentRequest is the Gemini API request shape.
type generateContentRequest struct {
	Contents         []content        `json:"contents"`
	GenerationConfig generationConfig `json:"generationConfig,omitempty"`
}

type content struct {
	Role  string `json:"role"`
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text,omitempty"`
}

type generationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

// generateContentResponse is the Gemini API response shape.
type generateContentResponse struct {
	Candidates    []candidate   `json:"candidates,omitempty"`
	UsageMetadata usageMetadata `json:"usageMetadata,omitempty"`
	Error         *apiError     `json:"error,omitempty"`
}

type candidate struct {
	Content      content `json:"content"`
	FinishReason string  `json:"finishReason"`
	Index        int     `json:"index"`
}

type usageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
	TotalTokenCount      int `json:"totalTokenCount"`
}

type apiError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Status  string `json:"status"`
}
