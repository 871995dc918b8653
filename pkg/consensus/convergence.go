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
	"math"
	"strings"
	"unicode"

	"github.com/teradata-labs/assay/pkg/types"
)

// Convergence blends two signals: how much the agents' written
// assessments overlap between rounds, and how little the aggregated
// metrics moved. Text overlap dominates because agents that keep
// saying the same thing have stopped debating even if their numbers
// still wobble slightly.
const (
	contentWeight   = 0.7
	stabilityWeight = 0.3
)

// Score measures how settled the discussion is between two consecutive
// rounds, in [0, 1]. With no prior round there is nothing to compare
// against and the score is 0.
func Score(prev, curr []types.AgentResult) float64 {
	if len(prev) == 0 {
		return 0
	}
	content := contentSimilarity(prev, curr)
	stability := metricStability(Aggregate(prev), Aggregate(curr))
	return contentWeight*content + stabilityWeight*stability
}

// contentSimilarity is the mean Jaccard overlap between each agent's
// prose in the two rounds, paired by role. A missing or fallback
// result on either side contributes 0: an agent that produced nothing
// cannot be said to agree with itself.
func contentSimilarity(prev, curr []types.AgentResult) float64 {
	if len(curr) == 0 {
		return 0
	}
	prior := make(map[types.AgentRole]types.AgentResult, len(prev))
	for _, r := range prev {
		prior[r.AgentRole] = r
	}
	var sum float64
	for _, r := range curr {
		p, ok := prior[r.AgentRole]
		if !ok || p.Failed() || r.Failed() {
			continue
		}
		sum += jaccard(tokenSet(p.Summary+" "+p.Details), tokenSet(r.Summary+" "+r.Details))
	}
	return sum / float64(len(curr))
}

// metricStability is the mean per-metric closeness of the two rounds'
// aggregated vectors. Bounded metrics compare against their fixed
// 10-point range; open-ended hour estimates compare against their own
// magnitude so a jump from 40h to 80h registers as instability while
// 0.2h to 0.4h barely moves the needle.
func metricStability(prev, curr types.PillarScores) float64 {
	metrics := types.Metrics()
	var sum float64
	for _, m := range metrics {
		p, c := prev.Get(m), curr.Get(m)
		scale := 10.0
		if !m.TenPointScale() {
			scale = math.Max(1, math.Abs(p)+math.Abs(c))
		}
		sim := 1 - math.Abs(c-p)/scale
		if sim < 0 {
			sim = 0
		}
		sum += sim
	}
	return sum / float64(len(metrics))
}

func jaccard(a, b map[string]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1
	}
	inter := 0
	for tok := range a {
		if _, ok := b[tok]; ok {
			inter++
		}
	}
	return float64(inter) / float64(len(a)+len(b)-inter)
}

func tokenSet(text string) map[string]struct{} {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	set := make(map[string]struct{}, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}
