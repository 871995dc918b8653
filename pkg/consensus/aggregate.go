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
	"github.com/teradata-labs/assay/pkg/types"
)

// Aggregate blends one round's results into a single score vector.
// Each metric is a weighted mean over the agents that produced a real
// assessment; agents that fell back to a neutral result are left out
// and the surviving weights renormalized, so a single timeout shifts
// influence to the rest of the team instead of dragging every metric
// toward the midpoint. If nobody produced a real assessment the
// neutral vector comes back.
func Aggregate(results []types.AgentResult) types.PillarScores {
	var scores types.PillarScores
	for _, m := range types.Metrics() {
		var sum, weightTotal float64
		for _, r := range results {
			if r.Failed() {
				continue
			}
			w := Weight(r.AgentRole, m)
			sum += w * r.Metrics.Get(m)
			weightTotal += w
		}
		if weightTotal == 0 {
			scores.Set(m, m.Neutral())
			continue
		}
		scores.Set(m, sum/weightTotal)
	}
	return scores
}
