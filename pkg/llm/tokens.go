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

// Package llm holds helpers shared by the provider clients, chiefly
// token estimation for providers that omit usage data in replies.
package llm

import (
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/teradata-labs/assay/pkg/types"
)

// TokenEstimator counts tokens with tiktoken's cl100k_base encoding, a
// close approximation across the providers we call. When the encoding
// cannot be loaded it degrades to the usual chars/4 heuristic.
type TokenEstimator struct {
	encoder *tiktoken.Tiktoken
	mu      sync.Mutex
}

var (
	globalEstimator *TokenEstimator
	estimatorOnce   sync.Once
)

// Estimator returns the process-wide token estimator.
func Estimator() *TokenEstimator {
	estimatorOnce.Do(func() {
		tkm, err := tiktoken.GetEncoding("cl100k_base")
		if err != nil {
			globalEstimator = &TokenEstimator{encoder: nil}
			return
		}
		globalEstimator = &TokenEstimator{encoder: tkm}
	})
	return globalEstimator
}

// Count returns the token count for one text.
func (e *TokenEstimator) Count(text string) int {
	if e.encoder == nil {
		return len(text) / 4
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	return len(e.encoder.Encode(text, nil, nil))
}

// CountAll sums token counts across several texts.
func (e *TokenEstimator) CountAll(texts ...string) int {
	total := 0
	for _, text := range texts {
		total += e.Count(text)
	}
	return total
}

// EstimateUsage builds a usage record for a call whose provider did
// not report one, from the prompts sent and the completion received.
func EstimateUsage(systemPrompt, userPrompt, completion string) types.TokenUsage {
	est := Estimator()
	in := est.CountAll(systemPrompt, userPrompt)
	out := est.Count(completion)
	return types.TokenUsage{
		InputTokens:  in,
		OutputTokens: out,
		TotalTokens:  in + out,
	}
}
