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

package agent

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/teradata-labs/assay/pkg/types"
)

// Agent evaluates a change from one reviewer role's perspective.
// Instances hold no per-round state and are safe for concurrent use as
// long as the underlying ChatModel is.
type Agent struct {
	role    types.AgentRole
	model   types.ChatModel
	timeout time.Duration
	logger  *zap.Logger
}

// New builds an agent for role. A non-positive timeout falls back to
// the default per-call deadline.
func New(role types.AgentRole, model types.ChatModel, timeout time.Duration, logger *zap.Logger) *Agent {
	if timeout <= 0 {
		timeout = types.DefaultAgentTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Agent{
		role:    role,
		model:   model,
		timeout: timeout,
		logger:  logger,
	}
}

// Role returns the roster role this agent plays.
func (a *Agent) Role() types.AgentRole {
	return a.role
}

// Execute runs one round for this agent. It never returns an error:
// transport failures and timeouts degrade to a neutral fallback after
// one retry, and a reply that still will not parse keeps its raw text
// as the summary. Token usage is accumulated across attempts either
// way, so even a failed round is billed.
func (a *Agent) Execute(ctx context.Context, rc RoundContext) types.AgentResult {
	log := a.logger.With(zap.String("agent", string(a.role)), zap.Int("round", rc.Round))
	system := a.systemPrompt(rc)
	user := a.userPrompt(rc)

	var usage types.TokenUsage
	var lastErr error
	for attempt := 1; attempt <= 2; attempt++ {
		raw, err := a.invoke(ctx, system, user, &usage)
		if err == nil {
			parsed, perr := parseReply(raw, log)
			if perr == nil {
				return types.AgentResult{
					AgentName:  a.role.Display(),
					AgentRole:  a.role,
					Round:      rc.Round,
					Summary:    parsed.summary,
					Details:    parsed.details,
					Metrics:    parsed.metrics,
					TokenUsage: usage,
				}
			}
			lastErr = perr
		} else {
			lastErr = err
		}
		// A dead evaluation context is not worth a retry.
		if ctx.Err() != nil {
			break
		}
		if attempt == 1 {
			log.Warn("agent attempt failed, retrying once", zap.Error(lastErr))
		}
	}

	result := types.NeutralResult(a.role, rc.Round)
	result.TokenUsage = usage
	var parseErr *types.ParseError
	if errors.As(lastErr, &parseErr) {
		result.Summary = truncate(strings.TrimSpace(parseErr.Raw), maxSummaryLen)
		log.Warn("agent reply unparseable after retry, keeping raw text as summary", zap.Error(lastErr))
	} else {
		log.Warn("agent failed, substituting neutral result", zap.Error(lastErr))
	}
	return result
}

// invoke makes a single model call under the per-call deadline and
// accumulates its token usage.
func (a *Agent) invoke(ctx context.Context, system, user string, usage *types.TokenUsage) (string, error) {
	callCtx, cancel := context.WithTimeout(ctx, a.timeout)
	defer cancel()

	start := time.Now()
	completion, err := a.model.Complete(callCtx, types.CompletionRequest{
		SystemPrompt: system,
		UserPrompt:   user,
	})
	if err != nil {
		if errors.Is(callCtx.Err(), context.DeadlineExceeded) && ctx.Err() == nil {
			return "", &types.TimeoutError{Role: a.role, Elapsed: time.Since(start)}
		}
		return "", err
	}
	usage.Add(completion.Usage)
	return completion.Text, nil
}
