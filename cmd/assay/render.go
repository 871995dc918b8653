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
package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/teradata-labs/assay/pkg/consensus"
	"github.com/teradata-labs/assay/pkg/types"
)

const bannerLine = "==========================================================="

// metricLabel maps pillar names to report labels. Order of display
// follows types.Metrics().
var metricLabel = map[types.Metric]string{
	types.MetricFunctionalImpact:   "Functional Impact",
	types.MetricIdealTimeHours:     "Ideal Time",
	types.MetricTestCoverage:       "Test Coverage",
	types.MetricCodeQuality:        "Code Quality",
	types.MetricCodeComplexity:     "Code Complexity",
	types.MetricActualTimeHours:    "Actual Time",
	types.MetricTechnicalDebtHours: "Technical Debt",
}

// renderJSON writes the full outcome record as indented JSON.
func renderJSON(w io.Writer, outcome *types.EvaluationOutcome) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(outcome)
}

// renderText writes the human-readable report. Verbose mode appends
// per-agent summaries for every round and the summary drift between
// consecutive rounds.
func renderText(w io.Writer, outcome *types.EvaluationOutcome, verbose bool) error {
	fmt.Fprintln(w, bannerLine)
	fmt.Fprintln(w, "EVALUATION COMPLETED")
	fmt.Fprintln(w, bannerLine)
	fmt.Fprintln(w)

	fmt.Fprintf(w, "Evaluation: %s\n", outcome.EvaluationID)
	if outcome.CommitHash != "" {
		fmt.Fprintf(w, "Commit:     %s\n", outcome.CommitHash)
	}
	fmt.Fprintf(w, "Provider:   %s (%s)\n", outcome.Provider, outcome.Model)

	converged := "no"
	if outcome.Converged {
		converged = "yes"
	}
	fmt.Fprintf(w, "Rounds:     %d (converged: %s, score %.3f)\n",
		outcome.RoundsExecuted, converged, outcome.ConvergenceScore)
	fmt.Fprintf(w, "Duration:   %.1fs\n", float64(outcome.DurationMs)/1000.0)
	fmt.Fprintf(w, "Tokens:     %d in / %d out\n",
		outcome.TotalTokenUsage.InputTokens, outcome.TotalTokenUsage.OutputTokens)
	fmt.Fprintf(w, "Cost:       $%.4f\n", outcome.TotalCostUSD)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Consensus Scores:")
	for _, m := range types.Metrics() {
		v := outcome.PillarScores.Get(m)
		if m.TenPointScale() {
			note := ""
			if m == types.MetricCodeComplexity {
				note = "  (lower is better)"
			}
			fmt.Fprintf(w, "  %-18s %5.1f / 10%s\n", metricLabel[m]+":", v, note)
		} else {
			fmt.Fprintf(w, "  %-18s %5.1f h\n", metricLabel[m]+":", v)
		}
	}

	if !verbose {
		return nil
	}

	for round := 1; round <= outcome.RoundsExecuted; round++ {
		results := outcome.ResultsForRound(round)
		if results == nil {
			continue
		}

		fmt.Fprintln(w)
		fmt.Fprintf(w, "Round %d (%s):\n", round, types.PurposeForRound(round))
		for _, res := range results {
			if res.Failed() {
				fmt.Fprintf(w, "  ✗ %s: (no answer)\n", res.AgentRole.Display())
				continue
			}
			fmt.Fprintf(w, "  ✓ %s: %s\n", res.AgentRole.Display(), truncateLine(res.Summary, 120))
		}

		if round > 1 {
			prev := outcome.ResultsForRound(round - 1)
			if drift := consensus.Drift(prev, results); drift != "" {
				fmt.Fprintln(w)
				fmt.Fprintf(w, "Drift from round %d:\n", round-1)
				for _, line := range strings.Split(strings.TrimRight(drift, "\n"), "\n") {
					fmt.Fprintf(w, "  %s\n", line)
				}
			}
		}
	}

	return nil
}

// truncateLine flattens a summary to a single line capped at max runes.
func truncateLine(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "..."
}
