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

package evaluation

import (
	"time"

	"github.com/teradata-labs/assay/pkg/types"
)

// EventType tags a progress notification emitted during an evaluation.
type EventType string

const (
	EventEvaluationStarted   EventType = "evaluation_started"
	EventIndexBuilt          EventType = "index_built"
	EventRoundStarted        EventType = "round_started"
	EventAgentCompleted      EventType = "agent_completed"
	EventRoundCompleted      EventType = "round_completed"
	EventConverged           EventType = "converged"
	EventEvaluationCompleted EventType = "evaluation_completed"
)

// Event is one progress notification. Delivery is best-effort: an
// event is dropped rather than ever blocking the evaluation, so
// consumers that care should size their channel generously.
type Event struct {
	Type             EventType          `json:"type"`
	EvaluationID     string             `json:"evaluationId"`
	Round            int                `json:"round,omitempty"`
	Purpose          types.RoundPurpose `json:"purpose,omitempty"`
	AgentRole        types.AgentRole    `json:"agentRole,omitempty"`
	ConvergenceScore float64            `json:"convergenceScore,omitempty"`
	Timestamp        time.Time          `json:"timestamp"`
}
