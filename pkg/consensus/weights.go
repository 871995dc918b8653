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

// Package consensus blends the five agents' metric vectors into one
// weighted score vector and decides when consecutive rounds are close
// enough to stop. Every metric has a domain expert whose opinion
// carries most of the weight, but no agent's voice is ever zeroed.
package consensus

import (
	"github.com/teradata-labs/assay/pkg/types"
)

// Tier labels how strongly a role's opinion counts for a metric.
type Tier int

const (
	TierTertiary Tier = iota
	TierSecondary
	TierPrimary
)

func (t Tier) String() string {
	switch t {
	case TierPrimary:
		return "primary"
	case TierSecondary:
		return "secondary"
	default:
		return "tertiary"
	}
}

// emphasisPoints holds each role's stake in a metric: 10 for the
// domain expert, 4-5 for strong secondary reviewers, 2-3 for the rest.
// Normalizing each metric's column turns the points into weights that
// sum to exactly 1.0.
var emphasisPoints = map[types.Metric]map[types.AgentRole]int{
	types.MetricFunctionalImpact: {
		types.RoleBusinessAnalyst:   10,
		types.RoleQAEngineer:        3,
		types.RoleDeveloperAuthor:   3,
		types.RoleSeniorArchitect:   4,
		types.RoleDeveloperReviewer: 3,
	},
	types.MetricIdealTimeHours: {
		types.RoleBusinessAnalyst:   10,
		types.RoleQAEngineer:        2,
		types.RoleDeveloperAuthor:   4,
		types.RoleSeniorArchitect:   5,
		types.RoleDeveloperReviewer: 3,
	},
	types.MetricTestCoverage: {
		types.RoleBusinessAnalyst:   3,
		types.RoleQAEngineer:        10,
		types.RoleDeveloperAuthor:   3,
		types.RoleSeniorArchitect:   4,
		types.RoleDeveloperReviewer: 5,
	},
	types.MetricCodeQuality: {
		types.RoleBusinessAnalyst:   2,
		types.RoleQAEngineer:        4,
		types.RoleDeveloperAuthor:   3,
		types.RoleSeniorArchitect:   5,
		types.RoleDeveloperReviewer: 10,
	},
	types.MetricCodeComplexity: {
		types.RoleBusinessAnalyst:   2,
		types.RoleQAEngineer:        3,
		types.RoleDeveloperAuthor:   4,
		types.RoleSeniorArchitect:   10,
		types.RoleDeveloperReviewer: 5,
	},
	types.MetricActualTimeHours: {
		types.RoleBusinessAnalyst:   3,
		types.RoleQAEngineer:        2,
		types.RoleDeveloperAuthor:   10,
		types.RoleSeniorArchitect:   4,
		types.RoleDeveloperReviewer: 3,
	},
	types.MetricTechnicalDebtHours: {
		types.RoleBusinessAnalyst:   3,
		types.RoleQAEngineer:        3,
		types.RoleDeveloperAuthor:   3,
		types.RoleSeniorArchitect:   10,
		types.RoleDeveloperReviewer: 4,
	},
}

var weights map[types.Metric]map[types.AgentRole]float64

func init() {
	weights = make(map[types.Metric]map[types.AgentRole]float64, len(emphasisPoints))
	for m, points := range emphasisPoints {
		total := 0
		for _, p := range points {
			total += p
		}
		row := make(map[types.AgentRole]float64, len(points))
		for role, p := range points {
			row[role] = float64(p) / float64(total)
		}
		weights[m] = row
	}
}

// Weight returns the share of the consensus for metric m credited to
// role. Shares for one metric across the roster sum to 1.
func Weight(role types.AgentRole, m types.Metric) float64 {
	return weights[m][role]
}

// EmphasisTier classifies role's stake in m. The 10-point expert is
// primary, 4-5 points secondary, 2-3 tertiary.
func EmphasisTier(role types.AgentRole, m types.Metric) Tier {
	switch p := emphasisPoints[m][role]; {
	case p >= 10:
		return TierPrimary
	case p >= 4:
		return TierSecondary
	default:
		return TierTertiary
	}
}

// PrimaryMetrics returns the metrics role owns, in canonical order.
func PrimaryMetrics(role types.AgentRole) []types.Metric {
	var out []types.Metric
	for _, m := range types.Metrics() {
		if EmphasisTier(role, m) == TierPrimary {
			out = append(out, m)
		}
	}
	return out
}
