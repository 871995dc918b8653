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
package llm

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/teradata-labs/assay/pkg/types"
)

// InstrumentedModel decorates a ChatModel with call pacing and
// structured logging of every completion: provider, model, latency and
// token usage. The wrapper is transparent; completions and errors pass
// through unchanged.
type InstrumentedModel struct {
	model   types.ChatModel
	limiter *Limiter
	logger  *zap.Logger
}

// Instrument wraps model. limiter may be nil (no pacing) and logger may
// be nil (no logging).
func Instrument(model types.ChatModel, limiter *Limiter, logger *zap.Logger) *InstrumentedModel {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InstrumentedModel{
		model:   model,
		limiter: limiter,
		logger:  logger,
	}
}

// Name returns the underlying provider name.
func (m *InstrumentedModel) Name() string { return m.model.Name() }

// Model returns the underlying model identifier.
func (m *InstrumentedModel) Model() string { return m.model.Model() }

// Complete waits for a pacing slot, forwards the request, and logs the
// outcome with timing and token usage.
func (m *InstrumentedModel) Complete(ctx context.Context, req types.CompletionRequest) (*types.Completion, error) {
	if err := m.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	resp, err := m.model.Complete(ctx, req)
	duration := time.Since(start)

	if err != nil {
		m.logger.Warn("completion failed",
			zap.String("provider", m.model.Name()),
			zap.String("model", m.model.Model()),
			zap.Int64("duration_ms", duration.Milliseconds()),
			zap.Error(err),
		)
		return nil, err
	}

	m.logger.Debug("completion finished",
		zap.String("provider", m.model.Name()),
		zap.String("model", m.model.Model()),
		zap.Int64("duration_ms", duration.Milliseconds()),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
	)
	return resp, nil
}

var _ types.ChatModel = (*InstrumentedModel)(nil)
