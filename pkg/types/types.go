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

// Package types defines the shared domain model for commit evaluations:
// the seven-pillar score vector, agent roles and results, evaluation
// requests and outcomes, and the ChatModel provider interface.
package types

import (
	"strings"
	"time"
)

// Metric identifies one of the seven evaluation pillars. The string
// value doubles as the JSON key agents use in their replies.
type Metric string

const (
	MetricFunctionalImpact   Metric = "functionalImpact"
	MetricIdealTimeHours     Metric = "idealTimeHours"
	MetricTestCoverage       Metric = "testCoverage"
	MetricCodeQuality        Metric = "codeQuality"
	MetricCodeComplexity     Metric = "codeComplexity"
	MetricActualTimeHours    Metric = "actualTimeHours"
	MetricTechnicalDebtHours Metric = "technicalDebtHours"
)

// Metrics returns the seven pillars in canonical order.
func Metrics() []Metric {
	return []Metric{
		MetricFunctionalImpact,
		MetricIdealTimeHours,
		MetricTestCoverage,
		MetricCodeQuality,
		MetricCodeComplexity,
		MetricActualTimeHours,
		MetricTechnicalDebtHours,
	}
}

// TenPointScale reports whether the metric is scored 1-10. The
// remaining metrics are measured in hours.
func (m Metric) TenPointScale() bool {
	switch m {
	case MetricFunctionalImpact, MetricTestCoverage, MetricCodeQuality, MetricCodeComplexity:
		return true
	}
	return false
}

// Neutral returns the fallback value substituted when an agent fails:
// 5 on ten-point scales, 0 on hour scales.
func (m Metric) Neutral() float64 {
	if m.TenPointScale() {
		return 5
	}
	return 0
}

// Clamp clips a raw value into the metric's legal domain. Ten-point
// scales clip to [1,10], hour metrics to >= 0. technicalDebtHours is
// unbounded: negative values mean debt was paid down.
func (m Metric) Clamp(v float64) float64 {
	if m.TenPointScale() {
		if v < 1 {
			return 1
		}
		if v > 10 {
			return 10
		}
		return v
	}
	if m == MetricTechnicalDebtHours {
		return v
	}
	if v < 0 {
		return 0
	}
	return v
}

// PillarScores is the seven-metric vector every agent produces each
// round. codeComplexity is inverted (lower is better); idealTimeHours
// is also lower-better; technicalDebtHours is sign-carrying, with
// negative meaning debt reduced.
type PillarScores struct {
	FunctionalImpact   float64 `json:"functionalImpact"`
	IdealTimeHours     float64 `json:"idealTimeHours"`
	TestCoverage       float64 `json:"testCoverage"`
	CodeQuality        float64 `json:"codeQuality"`
	CodeComplexity     float64 `json:"codeComplexity"`
	ActualTimeHours    float64 `json:"actualTimeHours"`
	TechnicalDebtHours float64 `json:"technicalDebtHours"`
}

// NeutralPillarScores returns the fallback vector used for failed agents.
func NeutralPillarScores() PillarScores {
	var p PillarScores
	for _, m := range Metrics() {
		p.Set(m, m.Neutral())
	}
	return p
}

// Get returns the value for a metric. Unknown metrics return 0.
func (p PillarScores) Get(m Metric) float64 {
	switch m {
	case MetricFunctionalImpact:
		return p.FunctionalImpact
	case MetricIdealTimeHours:
		return p.IdealTimeHours
	case MetricTestCoverage:
		return p.TestCoverage
	case MetricCodeQuality:
		return p.CodeQuality
	case MetricCodeComplexity:
		return p.CodeComplexity
	case MetricActualTimeHours:
		return p.ActualTimeHours
	case MetricTechnicalDebtHours:
		return p.TechnicalDebtHours
	}
	return 0
}

// Set assigns the value for a metric. Unknown metrics are ignored.
func (p *PillarScores) Set(m Metric, v float64) {
	switch m {
	case MetricFunctionalImpact:
		p.FunctionalImpact = v
	case MetricIdealTimeHours:
		p.IdealTimeHours = v
	case MetricTestCoverage:
		p.TestCoverage = v
	case MetricCodeQuality:
		p.CodeQuality = v
	case MetricCodeComplexity:
		p.CodeComplexity = v
	case MetricActualTimeHours:
		p.ActualTimeHours = v
	case MetricTechnicalDebtHours:
		p.TechnicalDebtHours = v
	}
}

// AgentRole identifies one of the five evaluation personas.
type AgentRole string

const (
	RoleBusinessAnalyst   AgentRole = "business_analyst"
	RoleQAEngineer        AgentRole = "qa_engineer"
	RoleDeveloperAuthor   AgentRole = "developer_author"
	RoleSeniorArchitect   AgentRole = "senior_architect"
	RoleDeveloperReviewer AgentRole = "developer_reviewer"
)

// Roster returns the five roles in canonical dispatch order. Results
// and conversation history are always stored in this order regardless
// of goroutine completion order.
func Roster() []AgentRole {
	return []AgentRole{
		RoleBusinessAnalyst,
		RoleQAEngineer,
		RoleDeveloperAuthor,
		RoleSeniorArchitect,
		RoleDeveloperReviewer,
	}
}

// Display returns the human-readable role label.
func (r AgentRole) Display() string {
	switch r {
	case RoleBusinessAnalyst:
		return "Business Analyst"
	case RoleQAEngineer:
		return "QA Engineer"
	case RoleDeveloperAuthor:
		return "Developer Author"
	case RoleSeniorArchitect:
		return "Senior Architect"
	case RoleDeveloperReviewer:
		return "Developer Reviewer"
	}
	return string(r)
}

// Valid reports whether r is one of the five roster roles.
func (r AgentRole) Valid() bool {
	switch r {
	case RoleBusinessAnalyst, RoleQAEngineer, RoleDeveloperAuthor, RoleSeniorArchitect, RoleDeveloperReviewer:
		return true
	}
	return false
}

// RoundPurpose tags what the team is doing in a given discussion round.
type RoundPurpose string

const (
	PurposeInitial    RoundPurpose = "initial"
	PurposeConcerns   RoundPurpose = "concerns"
	PurposeValidation RoundPurpose = "validation"
)

// PurposeForRound maps a 1-based round number onto the purpose
// sequence [initial, concerns, validation, concerns, validation, ...].
func PurposeForRound(round int) RoundPurpose {
	switch {
	case round <= 1:
		return PurposeInitial
	case round%2 == 0:
		return PurposeConcerns
	default:
		return PurposeValidation
	}
}

// TokenUsage records LLM token consumption for one call or, summed,
// for a whole evaluation.
type TokenUsage struct {
	InputTokens  int `json:"inputTokens"`
	OutputTokens int `json:"outputTokens"`
	TotalTokens  int `json:"totalTokens"`
}

// Add accumulates another usage record into u.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.TotalTokens += other.TotalTokens
}

// AgentResult is one agent's output for one round.
type AgentResult struct {
	AgentName  string       `json:"agentName"`
	AgentRole  AgentRole    `json:"agentRole"`
	Round      int          `json:"round"`
	Summary    string       `json:"summary"`
	Details    string       `json:"details,omitempty"`
	Metrics    PillarScores `json:"metrics"`
	TokenUsage TokenUsage   `json:"tokenUsage"`
}

// NeutralResult builds the fallback result substituted when an agent's
// LLM call fails outright or times out. Its empty summary marks it as
// failed: the aggregator renormalizes around it and the convergence
// detector scores it as zero similarity.
func NeutralResult(role AgentRole, round int) AgentResult {
	return AgentResult{
		AgentName: role.Display(),
		AgentRole: role,
		Round:     round,
		Metrics:   NeutralPillarScores(),
	}
}

// Failed reports whether this result is a transport-failure fallback.
// Parse-failure fallbacks carry the raw reply text as their summary
// and are not considered failed.
func (r AgentResult) Failed() bool {
	return r.Summary == ""
}

// ConversationMessage is one append-only entry in the team discussion
// transcript. ConcernsRaised and ReferencesTo are left empty by the
// orchestrator; downstream formatters may derive them from Message.
type ConversationMessage struct {
	Round          int       `json:"round"`
	AgentRole      AgentRole `json:"agentRole"`
	AgentName      string    `json:"agentName"`
	Timestamp      time.Time `json:"timestamp"`
	Message        string    `json:"message"`
	ConcernsRaised []string  `json:"concernsRaised,omitempty"`
	ReferencesTo   []string  `json:"referencesTo,omitempty"`
}

// ModelConfig selects the LLM provider and sampling parameters for an
// evaluation.
type ModelConfig struct {
	Provider        string  `json:"provider"`
	Model           string  `json:"model"`
	Temperature     float64 `json:"temperature"`
	MaxOutputTokens int     `json:"maxOutputTokens"`
}

// Evaluation request defaults.
const (
	DefaultMaxRounds            = 3
	MaxRoundsLimit              = 5
	DefaultConvergenceThreshold = 0.85
	DefaultRAGThreshold         = 100 * 1024
	DefaultAgentTimeout         = 5 * time.Minute
	MaxCommitHashLen            = 40
)

// EvaluationRequest is the input to an evaluation. Construct with
// NewEvaluationRequest to pick up defaults, then override fields as
// needed; a zero ConvergenceThreshold is honored as-is (the evaluation
// stops after round 1).
type EvaluationRequest struct {
	Diff                 string        `json:"diff"`
	FilesChanged         []string      `json:"filesChanged,omitempty"`
	CommitHash           string        `json:"commitHash,omitempty"`
	MaxRounds            int           `json:"maxRounds"`
	ConvergenceThreshold float64       `json:"convergenceThreshold"`
	RAGThreshold         int           `json:"ragThreshold"`
	AgentTimeout         time.Duration `json:"agentTimeout"`
	ModelConfig          ModelConfig   `json:"modelConfig"`
}

// NewEvaluationRequest returns a request for the given diff with all
// tunables at their defaults.
func NewEvaluationRequest(diff string) EvaluationRequest {
	return EvaluationRequest{
		Diff:                 diff,
		MaxRounds:            DefaultMaxRounds,
		ConvergenceThreshold: DefaultConvergenceThreshold,
		RAGThreshold:         DefaultRAGThreshold,
		AgentTimeout:         DefaultAgentTimeout,
	}
}

// Validate checks the request before any LLM call is made. All
// violations are reported as *InputError.
func (r *EvaluationRequest) Validate() error {
	if strings.TrimSpace(r.Diff) == "" {
		return NewInputError("diff is empty")
	}
	if len(r.CommitHash) > MaxCommitHashLen {
		return NewInputError("commit hash exceeds %d characters", MaxCommitHashLen)
	}
	if r.MaxRounds < 1 || r.MaxRounds > MaxRoundsLimit {
		return NewInputError("maxRounds %d out of range [1,%d]", r.MaxRounds, MaxRoundsLimit)
	}
	if r.ConvergenceThreshold < 0 || r.ConvergenceThreshold > 1 {
		return NewInputError("convergenceThreshold %.3f out of range [0,1]", r.ConvergenceThreshold)
	}
	if r.RAGThreshold < 0 {
		return NewInputError("ragThreshold must be >= 0")
	}
	if r.AgentTimeout <= 0 {
		return NewInputError("agentTimeout must be positive")
	}
	return nil
}

// EvaluationOutcome is the frozen record of a completed evaluation.
// Invariant: len(AllResults) == RoundsExecuted * 5, ordered by
// (round ascending, roster order).
type EvaluationOutcome struct {
	EvaluationID        string                `json:"evaluationId"`
	CommitHash          string                `json:"commitHash,omitempty"`
	Timestamp           time.Time             `json:"timestamp"`
	Provider            string                `json:"provider"`
	Model               string                `json:"model"`
	RoundsExecuted      int                   `json:"roundsExecuted"`
	Converged           bool                  `json:"converged"`
	ConvergenceScore    float64               `json:"convergenceScore"`
	PillarScores        PillarScores          `json:"pillarScores"`
	AllResults          []AgentResult         `json:"allResults"`
	ConversationHistory []ConversationMessage `json:"conversationHistory"`
	TotalTokenUsage     TokenUsage            `json:"totalTokenUsage"`
	TotalCostUSD        float64               `json:"totalCostUsd"`
	DurationMs          int64                 `json:"durationMs"`
}

// ResultsForRound returns the five results of one round in roster
// order, or nil if the round was not executed.
func (o *EvaluationOutcome) ResultsForRound(round int) []AgentResult {
	if round < 1 || round > o.RoundsExecuted {
		return nil
	}
	start := (round - 1) * len(Roster())
	end := start + len(Roster())
	if end > len(o.AllResults) {
		return nil
	}
	return o.AllResults[start:end]
}
