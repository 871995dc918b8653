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

package consensus

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teradata-labs/assay/pkg/types"
)

func talkativeRound(summary string, metrics types.PillarScores) []types.AgentResult {
	var results []types.AgentResult
	for _, role := range types.Roster() {
		r := scored(role, metrics)
		r.Summary = summary
		results = append(results, r)
	}
	return results
}

func TestScoreFirstRoundNeverConverges(t *testing.T) {
	curr := talkativeRound("initial take", types.NeutralPillarScores())
	assert.Zero(t, Score(nil, curr))
}

func TestScoreIdenticalRounds(t *testing.T) {
	metrics := types.PillarScores{
		FunctionalImpact: 7, IdealTimeHours: 3, TestCoverage: 5,
		CodeQuality: 8, CodeComplexity: 4, ActualTimeHours: 6,
		TechnicalDebtHours: 1,
	}
	prev := talkativeRound("the change adds retry logic to the session store", metrics)
	curr := talkativeRound("the change adds retry logic to the session store", metrics)
	assert.InDelta(t, 1.0, Score(prev, curr), 1e-9)
}

func TestScoreDivergentRounds(t *testing.T) {
	prev := talkativeRound("alpha beta", types.PillarScores{
		FunctionalImpact: 1, TestCoverage: 1, CodeQuality: 1, CodeComplexity: 1,
	})
	curr := talkativeRound("gamma delta", types.PillarScores{
		FunctionalImpact: 10, TestCoverage: 10, CodeQuality: 10, CodeComplexity: 10,
		IdealTimeHours: 40, ActualTimeHours: 40, TechnicalDebtHours: 40,
	})
	// Disjoint prose zeroes the content term. The four bounded metrics
	// each moved 9 of 10 (stability 0.1) and the three hour metrics
	// moved their full combined magnitude (stability 0), so the blend
	// is 0.3 * 0.4/7.
	got := Score(prev, curr)
	assert.InDelta(t, 0.3*0.4/7, got, 1e-9)
	assert.Less(t, got, 0.1)
}

func TestScoreFallbackContributesNoContent(t *testing.T) {
	metrics := types.PillarScores{
		FunctionalImpact: 6, IdealTimeHours: 2, TestCoverage: 6,
		CodeQuality: 6, CodeComplexity: 6, ActualTimeHours: 2,
		TechnicalDebtHours: 0,
	}
	prev := talkativeRound("stable view of the change", metrics)
	curr := talkativeRound("stable view of the change", metrics)
	curr[1] = types.NeutralResult(types.RoleQAEngineer, 2)
	// Four of five summaries match (content 0.8); the failed agent is
	// excluded from the aggregate so the vector itself holds still.
	assert.InDelta(t, 0.7*0.8+0.3*1.0, Score(prev, curr), 1e-9)
}

func TestScoreRawTextFallbackStillOverlaps(t *testing.T) {
	metrics := types.NeutralPillarScores()
	prev := talkativeRound("the diff adds session handling", metrics)
	curr := talkativeRound("the diff adds session handling", metrics)
	// A parse-failure fallback keeps the raw reply as its summary, so
	// it still earns partial credit for saying similar things.
	curr[1].Summary = "this change adds session handling to the auth layer"
	// Jaccard between the two summaries: 4 shared tokens, 10 distinct.
	want := 0.7*(4*1.0+0.4)/5 + 0.3*1.0
	assert.InDelta(t, want, Score(prev, curr), 1e-9)
}

func TestScoreHourMetricsScaleByMagnitude(t *testing.T) {
	before := types.PillarScores{FunctionalImpact: 5, TestCoverage: 5, CodeQuality: 5, CodeComplexity: 5, ActualTimeHours: 2}
	after := before
	after.ActualTimeHours = 4
	prev := talkativeRound("steady assessment", before)
	curr := talkativeRound("steady assessment", after)
	// actualTimeHours moved 2 against a |2|+|4| scale: stability 2/3
	// for that pillar, 1 for the other six.
	want := 0.7 + 0.3*(6+2.0/3)/7
	assert.InDelta(t, want, Score(prev, curr), 1e-9)
}

func TestJaccard(t *testing.T) {
	set := func(toks ...string) map[string]struct{} {
		s := make(map[string]struct{}, len(toks))
		for _, tok := range toks {
			s[tok] = struct{}{}
		}
		return s
	}
	assert.InDelta(t, 1.0, jaccard(set(), set()), 1e-9, "two empty sets agree vacuously")
	assert.InDelta(t, 0.0, jaccard(set("a"), set("b")), 1e-9)
	assert.InDelta(t, 0.5, jaccard(set("a", "b", "c"), set("b", "c", "d")), 1e-9)
}

func TestTokenSet(t *testing.T) {
	got := tokenSet("Fix the auth_token bug (issue #42), re-fix later")
	want := map[string]struct{}{
		"fix": {}, "the": {}, "auth_token": {}, "bug": {},
		"issue": {}, "42": {}, "re": {}, "later": {},
	}
	assert.Equal(t, want, got)
}
