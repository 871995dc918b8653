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

// Package agent runs one reviewer role for one discussion round: build
// the role's prompts, call the chat model, parse the JSON reply, and
// absorb every failure into a fallback result so the evaluation never
// stops because a single reviewer did.
package agent

import (
	"github.com/teradata-labs/assay/pkg/types"
)

// roleSpec holds the pieces that differ between the five reviewers:
// the persona paragraph for the system prompt and the retrieval
// queries issued against the diff index on the first round.
type roleSpec struct {
	persona    string
	ragQueries [3]string
}

var roleSpecs = map[types.AgentRole]roleSpec{
	types.RoleBusinessAnalyst: {
		persona: "You assess business value and scope. Focus on functional and user-facing impact, requirements coverage, and how long this work should ideally take. Consider API surface changes and business-rule changes.",
		ragQueries: [3]string{
			"functional or user-facing changes",
			"API/interface changes",
			"configuration or business-rule changes",
		},
	},
	types.RoleQAEngineer: {
		persona: "You assess test quality. Focus on test coverage, new test cases and assertions, and business logic left untested. Consider edge cases and regression risk.",
		ragQueries: [3]string{
			"all test-file changes",
			"new test cases or assertions",
			"business logic changes that need testing",
		},
	},
	types.RoleDeveloperAuthor: {
		persona: "You estimate implementation effort as the developer who would have written this change. Focus on the hours of work it actually represents. Consider refactoring scope and the mechanics of the edit.",
		ragQueries: [3]string{
			"all source changes excluding tests and docs",
			"refactoring or code organization",
			"new features or functionality",
		},
	},
	types.RoleSeniorArchitect: {
		persona: "You assess structure. Focus on the complexity this change adds and the technical debt it introduces or repays. Consider architectural soundness, data model changes, and long-term maintainability.",
		ragQueries: [3]string{
			"architectural or structural changes",
			"data model / schema changes",
			"complex algorithms / tech-debt areas",
		},
	},
	types.RoleDeveloperReviewer: {
		persona: "You review craftsmanship. Focus on code quality, naming, style, and clarity. Consider readability and whether the change would pass a careful review.",
		ragQueries: [3]string{
			"code style and formatting changes",
			"code quality issues",
			"complex logic needing review",
		},
	},
}

// RAGQueries returns the three retrieval queries role issues on the
// first round of a large-diff evaluation, in issue order.
func RAGQueries(role types.AgentRole) []string {
	spec := roleSpecs[role]
	return []string{spec.ragQueries[0], spec.ragQueries[1], spec.ragQueries[2]}
}
