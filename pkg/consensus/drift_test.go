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
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/teradata-labs/assay/pkg/types"
)

func TestDriftEmptyWhenTeamHoldsPosition(t *testing.T) {
	metrics := types.NeutralPillarScores()
	prev := talkativeRound("no movement here", metrics)
	curr := talkativeRound("no movement here", metrics)
	assert.Empty(t, Drift(prev, curr))
}

func TestDriftRendersChangedSummaries(t *testing.T) {
	metrics := types.NeutralPillarScores()
	prev := talkativeRound("coverage looks thin for the new branch logic", metrics)
	curr := talkativeRound("coverage looks thin for the new branch logic", metrics)
	curr[1].Summary = "coverage concerns resolved after the author pointed at the table tests"

	out := Drift(prev, curr)
	assert.Contains(t, out, "@@ QA Engineer @@")
	assert.Contains(t, out, "- ")
	assert.Contains(t, out, "+ ")
	assert.NotContains(t, out, "@@ Business Analyst @@")
}

func TestDriftRendersEachChangedRoleOnce(t *testing.T) {
	metrics := types.NeutralPillarScores()
	prev := talkativeRound("first pass", metrics)
	curr := talkativeRound("first pass", metrics)
	curr[0].Summary = "second pass with revised impact"
	curr[4].Summary = "second pass with style nits withdrawn"

	out := Drift(prev, curr)
	assert.Equal(t, 1, strings.Count(out, "@@ Business Analyst @@"))
	assert.Equal(t, 1, strings.Count(out, "@@ Developer Reviewer @@"))
	assert.NotContains(t, out, "@@ QA Engineer @@")
	assert.Less(t, strings.Index(out, "@@ Business Analyst @@"), strings.Index(out, "@@ Developer Reviewer @@"))
}

func TestDriftIgnoresRolesMissingFromPriorRound(t *testing.T) {
	curr := talkativeRound("fresh round", types.NeutralPillarScores())
	assert.Empty(t, Drift(nil, curr))
}
