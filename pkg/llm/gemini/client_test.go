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

package gemini

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
	client := NewClient(Config{APIKey: "k"})

	assert.Equal(t, "gemini", client.Name())
	assert.Equal(t, DefaultModel, client.Model())
	assert.Equal(t, DefaultBaseURL, client.baseURL)
}

func TestCompleteSuccess(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "POST", r.Method)
		assert.Contains(t, r.URL.Path, "gemini-2.5-flash")
		assert.Contains(t, r.URL.RawQuery, "key=test-key")

		var req generateContentRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		// System prompt rides as a prepended user turn.
		require.Len(t, req.Contents, 2)
		assert.Contains(t, req.Contents[0].Parts[0].Text, "System instruction: ")
		assert.Equal(t, "Evaluate.", req.Contents[1].Parts[0].Text)

		resp := generateContentResponse{
			Candidates: []candidate{
				{
					Content:      content{Role: "model", Parts: []part{{Text: `{"summary":"ok"}`}}},
					FinishReason: "STOP",
				},
			},
			UsageMetadata: usageMetadata{
				PromptTokenCount:     25,
				CandidatesTokenCount: 12,
				TotalTokenCount:      37,
			},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "test-key", BaseURL: server.URL})
	completion, err := client.Complete(context.Background(), types.CompletionRequest{
		SystemPrompt: "You are an architect.",
		UserPrompt:   "Evaluate.",
	})
	require.NoError(t, err)

	assert.Equal(t, `{"summary":"ok"}`, completion.Text)
	assert.Equal(t, types.TokenUsage{InputTokens: 25, OutputTokens: 12, TotalTokens: 37}, completion.Usage)
}

func TestCompleteNoCandidates(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(generateContentResponse{})
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	_, err := client.Complete(context.Background(), types.CompletionRequest{UserPrompt: "hi"})
	require.Error(t, err)

	var llmErr *types.LLMError
	require.ErrorAs(t, err, &llmErr)
	assert.Equal(t, "gemini", llmErr.Provider)
}

func TestCompleteEmbeddedError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := generateContentResponse{
			Error: &apiError{Code: 400, Message: "invalid argument", Status: "INVALID_ARGUMENT"},
		}
		_ = json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	_, err := client.Complete(context.Background(), types.CompletionRequest{UserPrompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "INVALID_ARGUMENT")
}

func TestCompleteHTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	client := NewClient(Config{APIKey: "k", BaseURL: server.URL})
	_, err := client.Complete(context.Background(), types.CompletionRequest{UserPrompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 503")
}
