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
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/teradata-labs/assay/pkg/types"
)

// stubModel replays scripted replies in order; the last entry repeats.
type stubModel struct {
	mu      sync.Mutex
	replies []stubReply
	calls   []types.CompletionRequest
}

type stubReply struct {
	text  string
	usage types.TokenUsage
	err   error
	block bool
}

func (s *stubModel) Complete(ctx context.Context, req types.CompletionRequest) (*types.Completion, error) {
	s.mu.Lock()
	s.calls = append(s.calls, req)
	idx := len(s.calls) - 1
	if idx >= len(s.replies) {
		idx = len(s.replies) - 1
	}
	reply := s.replies[idx]
	s.mu.Unlock()

	if reply.block {
		<-ctx.Done()
		return nil, types.NewLLMError("stub", ctx.Err())
	}
	if reply.err != nil {
		return nil, reply.err
	}
	return &types.Completion{Text: reply.text, Usage: reply.usage}, nil
}

func (s *stubModel) Name() string  { return "stub" }
func (s *stubModel) Model() string { return "stub-1" }

func (s *stubModel) callCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}

func TestExecuteSuccess(t *testing.T) {
	model := &stubModel{replies: []stubReply{{
		text:  wellFormedReply,
		usage: types.TokenUsage{InputTokens: 120, OutputTokens: 60, TotalTokens: 180},
	}}}
	a := New(types.RoleQAEngineer, model, time.Minute, zap.NewNop())

	result := a.Execute(context.Background(), firstRoundContext(sessionDiff))

	assert.Equal(t, types.RoleQAEngineer, result.AgentRole)
	assert.Equal(t, "QA Engineer", result.AgentName)
	assert.Equal(t, 1, result.Round)
	assert.False(t, result.Failed())
	assert.Equal(t, "Small, low-risk fix with solid tests.", result.Summary)
	assert.InDelta(t, 7, result.Metrics.TestCoverage, 1e-9)
	assert.Equal(t, types.TokenUsage{InputTokens: 120, OutputTokens: 60, TotalTokens: 180}, result.TokenUsage)
	assert.Equal(t, 1, model.callCount())
}

func TestExecuteRetriesTransportErrorOnce(t *testing.T) {
	model := &stubModel{replies: []stubReply{
		{err: types.NewLLMError("stub", errors.New("connection reset"))},
		{text: wellFormedReply, usage: types.TokenUsage{InputTokens: 100, OutputTokens: 50, TotalTokens: 150}},
	}}
	a := New(types.RoleBusinessAnalyst, model, time.Minute, zap.NewNop())

	result := a.Execute(context.Background(), firstRoundContext(sessionDiff))

	assert.False(t, result.Failed())
	assert.Equal(t, 2, model.callCount())
	assert.Equal(t, 150, result.TokenUsage.TotalTokens)
}

func TestExecuteNeutralFallbackAfterRetry(t *testing.T) {
	model := &stubModel{replies: []stubReply{
		{err: types.NewLLMError("stub", errors.New("boom"))},
	}}
	a := New(types.RoleDeveloperAuthor, model, time.Minute, zap.NewNop())

	result := a.Execute(context.Background(), firstRoundContext(sessionDiff))

	assert.True(t, result.Failed())
	assert.Empty(t, result.Summary)
	assert.Equal(t, types.NeutralPillarScores(), result.Metrics)
	assert.Equal(t, 2, model.callCount(), "exactly one retry")
}

func TestExecuteParseFallbackKeepsRawText(t *testing.T) {
	model := &stubModel{replies: []stubReply{
		{text: "I think this commit is fine.", usage: types.TokenUsage{InputTokens: 40, OutputTokens: 8, TotalTokens: 48}},
	}}
	a := New(types.RoleDeveloperReviewer, model, time.Minute, zap.NewNop())

	result := a.Execute(context.Background(), firstRoundContext(sessionDiff))

	assert.False(t, result.Failed(), "prose fallback still counts as an answer")
	assert.Equal(t, "I think this commit is fine.", result.Summary)
	assert.Empty(t, result.Details)
	assert.Equal(t, types.NeutralPillarScores(), result.Metrics)
	assert.Equal(t, 2, model.callCount())
	assert.Equal(t, 96, result.TokenUsage.TotalTokens, "both attempts are billed")
}

func TestExecuteParseErrorThenSuccess(t *testing.T) {
	model := &stubModel{replies: []stubReply{
		{text: "not json at all"},
		{text: wellFormedReply},
	}}
	a := New(types.RoleSeniorArchitect, model, time.Minute, zap.NewNop())

	result := a.Execute(context.Background(), firstRoundContext(sessionDiff))

	assert.False(t, result.Failed())
	assert.Equal(t, "Small, low-risk fix with solid tests.", result.Summary)
	assert.Equal(t, 2, model.callCount())
}

func TestExecuteTimesOutSlowModel(t *testing.T) {
	model := &stubModel{replies: []stubReply{{block: true}}}
	a := New(types.RoleDeveloperAuthor, model, 30*time.Millisecond, zap.NewNop())

	start := time.Now()
	result := a.Execute(context.Background(), firstRoundContext(sessionDiff))

	assert.True(t, result.Failed())
	assert.Equal(t, 2, model.callCount(), "timeout is retried like any transport failure")
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestExecuteSkipsRetryWhenEvaluationCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	model := &stubModel{replies: []stubReply{{err: types.NewLLMError("stub", context.Canceled)}}}
	a := New(types.RoleQAEngineer, model, time.Minute, zap.NewNop())

	result := a.Execute(ctx, firstRoundContext(sessionDiff))

	assert.True(t, result.Failed())
	assert.Equal(t, 1, model.callCount(), "a dead evaluation gets no retry")
}

func TestExecuteSendsRolePrompts(t *testing.T) {
	model := &stubModel{replies: []stubReply{{text: wellFormedReply}}}
	a := New(types.RoleSeniorArchitect, model, time.Minute, zap.NewNop())

	a.Execute(context.Background(), firstRoundContext(sessionDiff))

	require.Equal(t, 1, model.callCount())
	assert.Contains(t, model.calls[0].SystemPrompt, "Senior Architect")
	assert.Contains(t, model.calls[0].UserPrompt, "diff --git")
}

func TestNewDefaults(t *testing.T) {
	a := New(types.RoleBusinessAnalyst, nil, 0, nil)
	assert.Equal(t, types.DefaultAgentTimeout, a.timeout)
	assert.NotNil(t, a.logger)
	assert.Equal(t, types.RoleBusinessAnalyst, a.Role())
}
