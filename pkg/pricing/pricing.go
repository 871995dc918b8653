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

// Package pricing holds the static token price table used to turn an
// evaluation's token usage into a USD cost. The table is fixed at
// process start and never reloaded mid-evaluation; an unknown
// (provider, model) pair prices at zero rather than failing.
package pricing

import (
	"sort"
	"strings"

	"github.com/teradata-labs/assay/pkg/types"
)

// ModelInfo describes one priced model.
type ModelInfo struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	Provider      string  `json:"provider"`
	ContextWindow int     `json:"contextWindow"`
	InputPer1M    float64 `json:"inputPer1mUsd"`
	OutputPer1M   float64 `json:"outputPer1mUsd"`
}

// Registry is a read-only provider -> model price table.
type Registry struct {
	models map[string][]ModelInfo
}

// NewRegistry returns the built-in price table.
func NewRegistry() *Registry {
	return &Registry{
		models: map[string][]ModelInfo{
			"anthropic": {
				{
					ID:            "claude-sonnet-4-5-20250929",
					Name:          "Claude Sonnet 4.5",
					Provider:      "anthropic",
					ContextWindow: 200000,
					InputPer1M:    3.0,
					OutputPer1M:   15.0,
				},
				{
					ID:            "claude-haiku-4-5-20251001",
					Name:          "Claude Haiku 4.5",
					Provider:      "anthropic",
					ContextWindow: 200000,
					InputPer1M:    0.8,
					OutputPer1M:   4.0,
				},
				{
					ID:            "claude-3-5-sonnet-20241022",
					Name:          "Claude 3.5 Sonnet",
					Provider:      "anthropic",
					ContextWindow: 200000,
					InputPer1M:    3.0,
					OutputPer1M:   15.0,
				},
				{
					ID:            "claude-3-opus-20240229",
					Name:          "Claude 3 Opus",
					Provider:      "anthropic",
					ContextWindow: 200000,
					InputPer1M:    15.0,
					OutputPer1M:   75.0,
				},
			},
			"bedrock": {
				{
					ID:            "us.anthropic.claude-sonnet-4-5-20250929-v1:0",
					Name:          "Claude Sonnet 4.5 (Bedrock)",
					Provider:      "bedrock",
					ContextWindow: 200000,
					InputPer1M:    3.0,
					OutputPer1M:   15.0,
				},
				{
					ID:            "us.anthropic.claude-opus-4-5-20251101-v1:0",
					Name:          "Claude Opus 4.5 (Bedrock)",
					Provider:      "bedrock",
					ContextWindow: 200000,
					InputPer1M:    15.0,
					OutputPer1M:   75.0,
				},
				{
					ID:            "us.anthropic.claude-haiku-4-5-20251001-v1:0",
					Name:          "Claude Haiku 4.5 (Bedrock)",
					Provider:      "bedrock",
					ContextWindow: 200000,
					InputPer1M:    0.8,
					OutputPer1M:   4.0,
				},
			},
			"openai": {
				{
					ID:            "gpt-4.1",
					Name:          "GPT-4.1",
					Provider:      "openai",
					ContextWindow: 1000000,
					InputPer1M:    2.0,
					OutputPer1M:   8.0,
				},
				{
					ID:            "gpt-4o",
					Name:          "GPT-4o",
					Provider:      "openai",
					ContextWindow: 128000,
					InputPer1M:    2.5,
					OutputPer1M:   10.0,
				},
				{
					ID:            "gpt-4-turbo",
					Name:          "GPT-4 Turbo",
					Provider:      "openai",
					ContextWindow: 128000,
					InputPer1M:    10.0,
					OutputPer1M:   30.0,
				},
				{
					ID:            "gpt-4o-mini",
					Name:          "GPT-4o Mini",
					Provider:      "openai",
					ContextWindow: 128000,
					InputPer1M:    0.15,
					OutputPer1M:   0.6,
				},
			},
			"gemini": {
				{
					ID:            "gemini-2.5-pro",
					Name:          "Gemini 2.5 Pro",
					Provider:      "gemini",
					ContextWindow: 1000000,
					InputPer1M:    1.25,
					OutputPer1M:   10.0,
				},
				{
					ID:            "gemini-2.5-flash",
					Name:          "Gemini 2.5 Flash",
					Provider:      "gemini",
					ContextWindow: 1000000,
					InputPer1M:    0.3,
					OutputPer1M:   2.5,
				},
				{
					ID:            "gemini-1.5-pro",
					Name:          "Gemini 1.5 Pro",
					Provider:      "gemini",
					ContextWindow: 2000000,
					InputPer1M:    1.25,
					OutputPer1M:   5.0,
				},
				{
					ID:            "gemini-2.0-flash-exp",
					Name:          "Gemini 2.0 Flash",
					Provider:      "gemini",
					ContextWindow: 1000000,
					InputPer1M:    0.0,
					OutputPer1M:   0.0,
				},
			},
			"xai": {
				{
					ID:            "grok-4",
					Name:          "Grok 4",
					Provider:      "xai",
					ContextWindow: 256000,
					InputPer1M:    3.0,
					OutputPer1M:   15.0,
				},
				{
					ID:            "grok-3-mini",
					Name:          "Grok 3 Mini",
					Provider:      "xai",
					ContextWindow: 131072,
					InputPer1M:    0.3,
					OutputPer1M:   0.5,
				},
			},
		},
	}
}

// Lookup finds the price entry for a (provider, model) pair. Bedrock
// model IDs are matched with and without their regional routing prefix
// (us. / eu. / apac.).
func (r *Registry) Lookup(provider, model string) (ModelInfo, bool) {
	for _, info := range r.models[provider] {
		if info.ID == model {
			return info, true
		}
	}
	if provider == "bedrock" {
		stripped := stripRegionPrefix(model)
		for _, info := range r.models[provider] {
			if stripRegionPrefix(info.ID) == stripped {
				return info, true
			}
		}
	}
	return ModelInfo{}, false
}

// Cost prices a usage record. The boolean reports whether the pair was
// found; unknown pairs cost zero so an evaluation is never aborted
// over accounting. Callers should log a warning when it is false.
func (r *Registry) Cost(provider, model string, usage types.TokenUsage) (float64, bool) {
	info, ok := r.Lookup(provider, model)
	if !ok {
		return 0, false
	}
	cost := float64(usage.InputTokens)*info.InputPer1M/1e6 +
		float64(usage.OutputTokens)*info.OutputPer1M/1e6
	return cost, true
}

// Providers returns the known provider names, sorted.
func (r *Registry) Providers() []string {
	providers := make([]string, 0, len(r.models))
	for p := range r.models {
		providers = append(providers, p)
	}
	sort.Strings(providers)
	return providers
}

// ModelsFor returns the price entries for one provider.
func (r *Registry) ModelsFor(provider string) []ModelInfo {
	src := r.models[provider]
	if src == nil {
		return nil
	}
	out := make([]ModelInfo, len(src))
	copy(out, src)
	return out
}

// AllModels returns every entry ordered by provider then listing order.
func (r *Registry) AllModels() []ModelInfo {
	var all []ModelInfo
	for _, provider := range r.Providers() {
		all = append(all, r.models[provider]...)
	}
	return all
}

func stripRegionPrefix(model string) string {
	for _, prefix := range []string{"us.", "eu.", "apac."} {
		if strings.HasPrefix(model, prefix) {
			return strings.TrimPrefix(model, prefix)
		}
	}
	return model
}
