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

package anthropic

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/teradata-labs/assay/pkg/types"
)

func TestNewClientDefaults(t *testing.T) {
	client := NewClient(Config{APIKey: "test-key"})

	assert.Equal(t, "anthropic", client.Name())
	assert.Equal(t, DefaultModel, client.Model())
	assert.Equal(t, DefaultEndpoint, client.endpoint)
	assert.Equal(t, DefaultMaxTokens, client.maxTokens)
	assert.Equal(t, DefaultTemperature, client.temperature)
}

func TestNewClientOverrides(t *testing.T) {
	client := NewClient(Config{
		APIKey:      "test-key",
		Model:       "claude-3-opus-20240229",
		Endpoint:    "http://localhost:9999/v1/messages",
		MaxTokens:   1024,
		Temperature: 0.2,
	})

	assert.Equal(t, "claude-3-opus-20240229", client.Model())
	assert.Equal(t, "http://localhost:9999/v1/messages", client.endpoint)
	assert.Equal(t, 1024, client.maxTokens)
	assert.Equal(t, 0.2, client.temperature)
}

func TestCompleteSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, apiVersion, r.Header.Get("anthropic-version"))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req messagesRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "You are a QA engineer.", req.System)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)
		assert.Equal(t, "Evaluate this diff.", req.Messages[0].Content)

		resp := messagesResponse{
			ID:   "msg_test",
			Type: "message",
			Role: "assistant",
			Content: []contentBlock{
				{Type: "text", Text: `{"summary":"ok"}`},
			},
			StopReason: "end_turn",
			Usage:      usage{InputTokens: 120, OutputTokens: 30},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", Endpoint: server.URL})

	completion, err := client.Complete(context.Background(), types.CompletionRequest{
		SystemPrompt: "You are a QA engineer.",
		UserPrompt:   "Evaluate this diff.",
	})
	require.NoError(t, err)

	assert.Equal(t, `{"summary":"ok"}`, completion.Text)
	assert.Equal(t, 120, completion.Usage.InputTokens)
	assert.Equal(t, 30, completion.Usage.OutputTokens)
	assert.Equal(t, 150, completion.Usage.TotalTokens)
}

func TestCompleteJoinsTextBlocks(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := messagesResponse{
			Content: []contentBlock{
				{Type: "text", Text: "part one "},
				{Type: "thinking", Text: "ignored"},
				{Type: "text", Text: "part two"},
			},
			Usage: usage{InputTokens: 10, OutputTokens: 5},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", Endpoint: server.URL})
	completion, err := client.Complete(context.Background(), types.CompletionRequest{UserPrompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "part one part two", completion.Text)
}

func TestCompleteAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error"}}`))
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", Endpoint: server.URL})
	_, err := client.Complete(context.Background(), types.CompletionRequest{UserPrompt: "hi"})
	require.Error(t, err)

	var llmErr *types.LLMError
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, "anthropic", llmErr.Provider)
	assert.Contains(t, err.Error(), "status 429")
}

func TestCompleteContextCancelled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", Endpoint: server.URL})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := client.Complete(ctx, types.CompletionRequest{UserPrompt: "hi"})
	require.Error(t, err)

	var llmErr *types.LLMError
	assert.ErrorAs(t, err, &llmErr)
}

func TestCompleteEstimatesMissingUsage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := messagesResponse{
			Content: []contentBlock{{Type: "text", Text: "reply text"}},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", Endpoint: server.URL})
	completion, err := client.Complete(context.Background(), types.CompletionRequest{
		SystemPrompt: "system",
		UserPrompt:   "user prompt",
	})
	require.NoError(t, err)
	assert.Greater(t, completion.Usage.TotalTokens, 0)
}
