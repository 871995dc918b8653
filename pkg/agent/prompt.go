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
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/teradata-labs/assay/pkg/consensus"
	"github.com/teradata-labs/assay/pkg/diffindex"
	"github.com/teradata-labs/assay/pkg/types"
)

// RoundContext is the read-only snapshot an agent receives for one
// round. Index is non-nil when the diff was large enough to be
// indexed; Diff always carries the raw text for the inline path.
type RoundContext struct {
	Diff                string
	Index               *diffindex.Index
	FilesChanged        []string
	Round               int
	Purpose             types.RoundPurpose
	AllResults          []types.AgentResult
	ConversationHistory []types.ConversationMessage
}

const outputInstructions = `Respond with a single JSON object and nothing else:

{
  "summary": "your assessment in one short paragraph (at most 500 characters)",
  "details": "longer reasoning; may be empty",
  "metrics": {
    "functionalImpact": <number>,
    "idealTimeHours": <number>,
    "testCoverage": <number>,
    "codeQuality": <number>,
    "codeComplexity": <number>,
    "actualTimeHours": <number>,
    "technicalDebtHours": <number>
  }
}
`

// systemPrompt composes the role declaration, round instructions,
// scoring rubric, output contract, and the compacted team discussion.
// The emphasis annotations come from the same weight matrix the
// aggregator uses, so what the model is told about its influence and
// what the consensus actually does cannot disagree.
func (a *Agent) systemPrompt(rc RoundContext) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Role\n\nYou are the %s on a five-person panel evaluating a single source-code change. %s\n\n",
		a.role.Display(), roleSpecs[a.role].persona)

	fmt.Fprintf(&b, "# Round %d: %s\n\n%s\n\n", rc.Round, rc.Purpose, purposeInstructions(rc.Purpose))

	b.WriteString("# Scoring\n\nScore all 7 metrics in every round, from your role's perspective:\n\n")
	for _, m := range types.Metrics() {
		fmt.Fprintf(&b, "- %s (%s): %s. Emphasis for you: %s.\n",
			m, metricDomain(m), metricHint(m), emphasisNote(consensus.EmphasisTier(a.role, m)))
	}

	b.WriteString("\n# Output\n\n")
	b.WriteString(outputInstructions)

	if block := discussionBlock(rc); block != "" {
		b.WriteString("\n")
		b.WriteString(block)
	}
	return b.String()
}

// userPrompt supplies the diff context. Large diffs are served from
// the index on round 1 and withheld afterwards; small diffs go inline
// every round.
func (a *Agent) userPrompt(rc RoundContext) string {
	switch {
	case rc.Index != nil && rc.Round == 1:
		return a.retrievalPrompt(rc)
	case rc.Index != nil:
		return indexSummaryPrompt(rc)
	default:
		return inlineDiffPrompt(rc)
	}
}

func purposeInstructions(p types.RoundPurpose) string {
	switch p {
	case types.PurposeConcerns:
		return "Review all other agents' scores from the prior rounds. For each metric outside your primary expertise where the responsible agent's value seems inconsistent with the change, raise a specific question. Defend your own primary scores."
	case types.PurposeValidation:
		return "Respond to the concerns raised about your primary scores. Revise your secondary and tertiary scores where peers have convinced you. Publish your final scores."
	default:
		return "Provide an independent assessment of the change. Do not assume any other reviewer's position; none have been shared yet."
	}
}

func emphasisNote(t consensus.Tier) string {
	switch t {
	case consensus.TierPrimary:
		return "PRIMARY, you own this score and the consensus leans on your value"
	case consensus.TierSecondary:
		return "secondary, your opinion carries real weight"
	default:
		return "tertiary, score it but defer to the experts"
	}
}

func metricDomain(m types.Metric) string {
	switch {
	case m == types.MetricCodeComplexity:
		return "1-10, lower is better"
	case m == types.MetricTechnicalDebtHours:
		return "hours, negative means debt repaid"
	case m.TenPointScale():
		return "1-10, higher is better"
	default:
		return "hours, >= 0"
	}
}

func metricHint(m types.Metric) string {
	switch m {
	case types.MetricFunctionalImpact:
		return "user-visible functional impact of the change"
	case types.MetricIdealTimeHours:
		return "hours this work should take an unimpeded expert"
	case types.MetricTestCoverage:
		return "how well the change is covered by tests"
	case types.MetricCodeQuality:
		return "craftsmanship of the change as written"
	case types.MetricCodeComplexity:
		return "complexity the change adds"
	case types.MetricActualTimeHours:
		return "hours the author most likely spent"
	case types.MetricTechnicalDebtHours:
		return "technical debt introduced by the change"
	}
	return string(m)
}

// discussionBlock compacts the team transcript into one line per agent
// per prior round: the agent's summary plus, for agents that actually
// answered, their score vector from that round.
func discussionBlock(rc RoundContext) string {
	if len(rc.ConversationHistory) == 0 {
		return ""
	}

	scores := make(map[string]types.PillarScores, len(rc.AllResults))
	for _, r := range rc.AllResults {
		if r.Failed() {
			continue
		}
		scores[fmt.Sprintf("%d/%s", r.Round, r.AgentRole)] = r.Metrics
	}

	var b strings.Builder
	b.WriteString("# Team Discussion So Far\n")
	lastRound := 0
	for _, msg := range rc.ConversationHistory {
		if msg.Round != lastRound {
			fmt.Fprintf(&b, "\n## Round %d (%s)\n", msg.Round, types.PurposeForRound(msg.Round))
			lastRound = msg.Round
		}
		if msg.Message == "" {
			fmt.Fprintf(&b, "- %s: (no response this round)\n", msg.AgentRole.Display())
			continue
		}
		fmt.Fprintf(&b, "- %s: %s", msg.AgentRole.Display(), msg.Message)
		if v, ok := scores[fmt.Sprintf("%d/%s", msg.Round, msg.AgentRole)]; ok {
			b.WriteString(" " + compactScores(v))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func compactScores(v types.PillarScores) string {
	parts := make([]string, 0, len(types.Metrics()))
	for _, m := range types.Metrics() {
		parts = append(parts, fmt.Sprintf("%s=%g", m, v.Get(m)))
	}
	return "[" + strings.Join(parts, " ") + "]"
}

func inlineDiffPrompt(rc RoundContext) string {
	var b strings.Builder
	b.WriteString("# Change Under Review\n\n")
	if len(rc.FilesChanged) > 0 {
		fmt.Fprintf(&b, "Files changed (hint): %s\n\n", strings.Join(rc.FilesChanged, ", "))
	}
	b.WriteString("```diff\n")
	b.WriteString(rc.Diff)
	if !strings.HasSuffix(rc.Diff, "\n") {
		b.WriteString("\n")
	}
	b.WriteString("```\n")
	return b.String()
}

// retrievalPrompt runs the role's three queries against the index and
// joins the retrieved regions, skipping chunks already shown under an
// earlier query.
func (a *Agent) retrievalPrompt(rc RoundContext) string {
	stats := rc.Index.Stats()
	var b strings.Builder
	b.WriteString("# Change Under Review (retrieved excerpts)\n\n")
	fmt.Fprintf(&b, "The diff is large; below are the regions most relevant to your role. Overall: %d files changed, +%d/-%d lines, %d indexed regions.\n",
		len(stats.FilesChanged), stats.Additions, stats.Deletions, stats.DocumentCount)
	if len(stats.FilesChanged) > 0 {
		fmt.Fprintf(&b, "Files: %s\n", strings.Join(stats.FilesChanged, ", "))
	}

	seen := make(map[string]bool)
	for _, q := range RAGQueries(a.role) {
		chunks, err := rc.Index.Query(q, diffindex.DefaultTopK)
		if err != nil {
			a.logger.Warn("diff retrieval failed",
				zap.String("agent", string(a.role)),
				zap.String("query", q),
				zap.Error(err))
			continue
		}
		fmt.Fprintf(&b, "\n## %s\n", q)
		for _, sc := range chunks {
			key := fmt.Sprintf("%s:%d:%d", sc.Chunk.Meta.File, sc.Chunk.Meta.HunkStartLine, len(sc.Chunk.Content))
			if seen[key] {
				continue
			}
			seen[key] = true
			fmt.Fprintf(&b, "\n### %s @ line %d (%s, +%d/-%d)\n```diff\n%s\n```\n",
				sc.Chunk.Meta.File, sc.Chunk.Meta.HunkStartLine, sc.Chunk.Meta.ChangeType,
				sc.Chunk.Meta.AddedLines, sc.Chunk.Meta.DeletedLines, sc.Chunk.Content)
		}
	}
	return b.String()
}

// indexSummaryPrompt is the round >= 2 path for indexed diffs: the raw
// diff is withheld and the accumulated discussion stands in for it.
func indexSummaryPrompt(rc RoundContext) string {
	stats := rc.Index.Stats()
	var b strings.Builder
	b.WriteString("# Change Under Review\n\n")
	fmt.Fprintf(&b, "The relevant diff excerpts were shown in round 1. Work from the team discussion and your prior assessment. Overall: %d files changed, +%d/-%d lines.\n",
		len(stats.FilesChanged), stats.Additions, stats.Deletions)
	return b.String()
}
