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

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/teradata-labs/assay/pkg/types"
)

// Drift renders how each agent's summary moved between two rounds, one
// section per role that changed its story, for debug logs and the
// verbose CLI view. Roles with identical summaries are skipped, so an
// empty string means the team held its position.
func Drift(prev, curr []types.AgentResult) string {
	prior := make(map[types.AgentRole]types.AgentResult, len(prev))
	for _, r := range prev {
		prior[r.AgentRole] = r
	}

	dmp := diffmatchpatch.New()
	var result strings.Builder
	for _, r := range curr {
		p, ok := prior[r.AgentRole]
		if !ok || p.Summary == r.Summary {
			continue
		}
		if result.Len() > 0 {
			result.WriteString("\n")
		}
		result.WriteString("@@ " + r.AgentRole.Display() + " @@\n")

		diffs := dmp.DiffMain(p.Summary, r.Summary, false)
		diffs = dmp.DiffCleanupSemantic(diffs)
		for _, diff := range diffs {
			text := diff.Text
			switch diff.Type {
			case diffmatchpatch.DiffInsert:
				result.WriteString("+ ")
				result.WriteString(strings.ReplaceAll(text, "\n", "\n+ "))
				result.WriteString("\n")
			case diffmatchpatch.DiffDelete:
				result.WriteString("- ")
				result.WriteString(strings.ReplaceAll(text, "\n", "\n- "))
				result.WriteString("\n")
			case diffmatchpatch.DiffEqual:
				// Show context (first/last line of unchanged text)
				lines := strings.Split(text, "\n")
				if len(lines) > 4 {
					result.WriteString("  " + lines[0] + "\n")
					result.WriteString("  ...\n")
					result.WriteString("  " + lines[len(lines)-1] + "\n")
				} else {
					for _, line := range lines {
						if line != "" {
							result.WriteString("  " + line + "\n")
						}
					}
				}
			}
		}
	}
	return result.String()
}
