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

package types

import "context"

// CompletionRequest carries one agent prompt pair to a ChatModel.
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string
}

// Completion is a ChatModel reply. Text is handed verbatim to the
// agent's JSON parser; the orchestrator never inspects it.
type Completion struct {
	Text  string
	Usage TokenUsage
}

// ChatModel abstracts an LLM provider. Implementations must be safe
// for concurrent use: the orchestrator issues five Complete calls in
// parallel within each round.
type ChatModel interface {
	// Complete sends a system/user prompt pair and returns the reply.
	// Transport and provider-side failures are surfaced as *LLMError.
	Complete(ctx context.Context, req CompletionRequest) (*Completion, error)

	// Name returns the provider name (e.g. "anthropic").
	Name() string

	// Model returns the model identifier in use.
	Model() string
}
