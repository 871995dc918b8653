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

// Package evaluation owns the round loop: it dispatches the five-agent
// panel in parallel, folds each round into the consensus, and stops
// when the team converges or the round budget runs out. Agent-level
// failures never abort an evaluation; only bad input or a missing
// model can.
package evaluation

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/teradata-labs/assay/pkg/agent"
	"github.com/teradata-labs/assay/pkg/consensus"
	"github.com/teradata-labs/assay/pkg/diffindex"
	"github.com/teradata-labs/assay/pkg/pricing"
	"github.com/teradata-labs/assay/pkg/types"
)

// Orchestrator drives evaluations against one chat model. It is
// stateless between Evaluate calls and safe for concurrent use as long
// as the model is.
type Orchestrator struct {
	model   types.ChatModel
	pricing *pricing.Registry
	logger  *zap.Logger
	events  chan<- Event
}

// Option is a functional option for configuring an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the structured logger.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithEvents sets a channel receiving best-effort progress events.
func WithEvents(events chan<- Event) Option {
	return func(o *Orchestrator) {
		o.events = events
	}
}

// WithPricing overrides the default price table.
func WithPricing(registry *pricing.Registry) Option {
	return func(o *Orchestrator) {
		if registry != nil {
			o.pricing = registry
		}
	}
}

// New builds an orchestrator around model.
func New(model types.ChatModel, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		model:   model,
		pricing: pricing.NewRegistry(),
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// state is the mutable heart of one evaluation. Only the orchestrator
// touches it, and only between rounds; agents see copied snapshots.
type state struct {
	currentRound         int
	allResults           []types.AgentResult
	conversationHistory  []types.ConversationMessage
	pillarScores         types.PillarScores
	previousRoundResults []types.AgentResult
	converged            bool
	convergenceScore     float64
	totalUsage           types.TokenUsage
}

// Evaluate runs the full discussion for one request. It returns an
// InputError for an invalid request and a ConfigError when no model is
// wired; every per-agent failure is absorbed into fallback results and
// the outcome is always structurally complete.
func (o *Orchestrator) Evaluate(ctx context.Context, req types.EvaluationRequest) (*types.EvaluationOutcome, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if o.model == nil {
		return nil, types.NewConfigError("no chat model configured")
	}

	start := time.Now()
	evaluationID := uuid.New().String()
	log := o.logger.With(
		zap.String("evaluation_id", evaluationID),
		zap.String("commit", req.CommitHash),
	)

	log.Info("evaluation started",
		zap.String("provider", o.model.Name()),
		zap.String("model", o.model.Model()),
		zap.Int("diff_bytes", len(req.Diff)),
		zap.Int("max_rounds", req.MaxRounds),
		zap.Float64("convergence_threshold", req.ConvergenceThreshold))
	o.emit(Event{Type: EventEvaluationStarted, EvaluationID: evaluationID})

	var index *diffindex.Index
	if len(req.Diff) > req.RAGThreshold {
		built, err := diffindex.Build(req.Diff, diffindex.Config{Logger: o.logger})
		if err != nil {
			log.Warn("diff index build failed, serving the diff inline", zap.Error(err))
		} else {
			index = built
			stats := built.Stats()
			log.Info("diff index built",
				zap.Int("documents", stats.DocumentCount),
				zap.Int("files", len(stats.FilesChanged)),
				zap.Int("additions", stats.Additions),
				zap.Int("deletions", stats.Deletions))
			o.emit(Event{Type: EventIndexBuilt, EvaluationID: evaluationID})
		}
	}

	team := make([]*agent.Agent, 0, len(types.Roster()))
	for _, role := range types.Roster() {
		team = append(team, agent.New(role, o.model, req.AgentTimeout, o.logger))
	}

	st := &state{}
	for round := 1; round <= req.MaxRounds; round++ {
		// Round 1 always runs; afterwards an expired evaluation
		// deadline freezes whatever rounds completed.
		if round > 1 && ctx.Err() != nil {
			log.Warn("evaluation deadline expired between rounds",
				zap.Int("completed_rounds", st.currentRound),
				zap.Error(ctx.Err()))
			break
		}

		purpose := types.PurposeForRound(round)
		log.Info("round started", zap.Int("round", round), zap.String("purpose", string(purpose)))
		o.emit(Event{Type: EventRoundStarted, EvaluationID: evaluationID, Round: round, Purpose: purpose})

		results := o.runRound(ctx, evaluationID, team, round, purpose, index, req, st)

		st.currentRound = round
		st.allResults = append(st.allResults, results...)
		now := time.Now().UTC()
		for _, r := range results {
			st.conversationHistory = append(st.conversationHistory, types.ConversationMessage{
				Round:     round,
				AgentRole: r.AgentRole,
				AgentName: r.AgentName,
				Timestamp: now,
				Message:   r.Summary,
			})
			st.totalUsage.Add(r.TokenUsage)
		}
		st.pillarScores = consensus.Aggregate(results)
		st.convergenceScore = consensus.Score(st.previousRoundResults, results)

		if drift := consensus.Drift(st.previousRoundResults, results); drift != "" {
			log.Debug("summary drift", zap.Int("round", round), zap.String("drift", drift))
		}
		log.Info("round completed",
			zap.Int("round", round),
			zap.String("purpose", string(purpose)),
			zap.Float64("convergence_score", st.convergenceScore))
		o.emit(Event{Type: EventRoundCompleted, EvaluationID: evaluationID, Round: round, Purpose: purpose, ConvergenceScore: st.convergenceScore})

		if st.convergenceScore >= req.ConvergenceThreshold {
			st.converged = true
			log.Info("team converged",
				zap.Int("round", round),
				zap.Float64("convergence_score", st.convergenceScore))
			o.emit(Event{Type: EventConverged, EvaluationID: evaluationID, Round: round, ConvergenceScore: st.convergenceScore})
			break
		}
		st.previousRoundResults = results
	}

	outcome := &types.EvaluationOutcome{
		EvaluationID:        evaluationID,
		CommitHash:          req.CommitHash,
		Timestamp:           start.UTC(),
		Provider:            o.model.Name(),
		Model:               o.model.Model(),
		RoundsExecuted:      st.currentRound,
		Converged:           st.converged,
		ConvergenceScore:    st.convergenceScore,
		PillarScores:        st.pillarScores,
		AllResults:          st.allResults,
		ConversationHistory: st.conversationHistory,
		TotalTokenUsage:     st.totalUsage,
		DurationMs:          time.Since(start).Milliseconds(),
	}

	cost, known := o.pricing.Cost(o.model.Name(), o.model.Model(), st.totalUsage)
	if !known {
		log.Warn("no pricing for provider/model, reporting zero cost",
			zap.String("provider", o.model.Name()),
			zap.String("model", o.model.Model()))
	}
	outcome.TotalCostUSD = cost

	log.Info("evaluation completed",
		zap.Int("rounds", outcome.RoundsExecuted),
		zap.Bool("converged", outcome.Converged),
		zap.Float64("convergence_score", outcome.ConvergenceScore),
		zap.Int("total_tokens", outcome.TotalTokenUsage.TotalTokens),
		zap.Float64("cost_usd", outcome.TotalCostUSD),
		zap.Int64("duration_ms", outcome.DurationMs))
	o.emit(Event{Type: EventEvaluationCompleted, EvaluationID: evaluationID})

	return outcome, nil
}

// runRound fans the five agents out in parallel and reorders their
// results into canonical roster order, hiding completion order.
func (o *Orchestrator) runRound(ctx context.Context, evaluationID string, team []*agent.Agent, round int, purpose types.RoundPurpose, index *diffindex.Index, req types.EvaluationRequest, st *state) []types.AgentResult {
	rc := agent.RoundContext{
		Diff:                req.Diff,
		Index:               index,
		FilesChanged:        req.FilesChanged,
		Round:               round,
		Purpose:             purpose,
		AllResults:          append([]types.AgentResult(nil), st.allResults...),
		ConversationHistory: append([]types.ConversationMessage(nil), st.conversationHistory...),
	}

	resultCh := make(chan types.AgentResult, len(team))
	for _, member := range team {
		member := member
		go func() {
			resultCh <- member.Execute(ctx, rc)
		}()
	}

	byRole := make(map[types.AgentRole]types.AgentResult, len(team))
	for range team {
		r := <-resultCh
		byRole[r.AgentRole] = r
		o.emit(Event{Type: EventAgentCompleted, EvaluationID: evaluationID, Round: round, Purpose: purpose, AgentRole: r.AgentRole})
	}

	ordered := make([]types.AgentResult, 0, len(team))
	for _, role := range types.Roster() {
		r, ok := byRole[role]
		if !ok {
			r = types.NeutralResult(role, round)
		}
		ordered = append(ordered, r)
	}
	return ordered
}

// emit delivers an event without ever blocking the evaluation.
func (o *Orchestrator) emit(ev Event) {
	if o.events == nil {
		return
	}
	ev.Timestamp = time.Now().UTC()
	select {
	case o.events <- ev:
	default:
	}
}
