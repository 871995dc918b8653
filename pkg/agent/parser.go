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
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/xeipuuv/gojsonschema"
	"go.uber.org/zap"

	"github.com/teradata-labs/assay/pkg/types"
)

// maxSummaryLen caps summaries, parsed and fallback alike.
const maxSummaryLen = 500

// replySchema type-checks the reply shape. Metric keys are not
// required; missing metrics are filled with neutrals, not rejected.
// Extra top-level keys are ignored.
const replySchema = `{
	"type": "object",
	"properties": {
		"summary": {"type": "string"},
		"details": {"type": "string"},
		"metrics": {
			"type": "object",
			"additionalProperties": {"type": "number"}
		}
	},
	"required": ["summary"]
}`

var replySchemaLoader = gojsonschema.NewStringLoader(replySchema)

// reCodeFence matches a markdown code fence with an optional json
// language tag; the fenced content is subgroup 1.
var reCodeFence = regexp.MustCompile("(?s)```(?:json)?[ \\t]*\\n(.*?)\\n```")

type replyPayload struct {
	Summary string             `json:"summary"`
	Details string             `json:"details"`
	Metrics map[string]float64 `json:"metrics"`
}

type parsedReply struct {
	summary string
	details string
	metrics types.PillarScores
}

// parseReply decodes a model reply into a scored assessment. Every
// failure mode comes back as a ParseError carrying the raw text so the
// caller can fall back to it.
func parseReply(raw string, logger *zap.Logger) (*parsedReply, error) {
	candidate, ok := extractJSON(raw)
	if !ok {
		return nil, &types.ParseError{Raw: raw, Err: errors.New("no JSON object in reply")}
	}

	result, err := gojsonschema.Validate(replySchemaLoader, gojsonschema.NewStringLoader(candidate))
	if err != nil {
		return nil, &types.ParseError{Raw: raw, Err: fmt.Errorf("schema validation failed: %w", err)}
	}
	if !result.Valid() {
		errs := make([]string, len(result.Errors()))
		for i, e := range result.Errors() {
			errs[i] = e.String()
		}
		return nil, &types.ParseError{Raw: raw, Err: fmt.Errorf("reply shape invalid: %v", errs)}
	}

	var payload replyPayload
	if err := json.Unmarshal([]byte(candidate), &payload); err != nil {
		return nil, &types.ParseError{Raw: raw, Err: err}
	}
	summary := strings.TrimSpace(payload.Summary)
	if summary == "" {
		return nil, &types.ParseError{Raw: raw, Err: errors.New("reply carried an empty summary")}
	}

	var scores types.PillarScores
	var missing []string
	for _, m := range types.Metrics() {
		v, ok := payload.Metrics[string(m)]
		if !ok {
			missing = append(missing, string(m))
			scores.Set(m, m.Neutral())
			continue
		}
		scores.Set(m, m.Clamp(v))
	}
	if len(missing) > 0 {
		logger.Warn("agent reply missing metrics, filled with neutral values",
			zap.Strings("metrics", missing))
	}

	return &parsedReply{
		summary: truncate(summary, maxSummaryLen),
		details: payload.Details,
		metrics: scores,
	}, nil
}

// extractJSON pulls the first valid JSON object out of freeform model
// output: fenced blocks first (highest reliability when present), then
// brace matching over the raw text.
func extractJSON(text string) (string, bool) {
	for _, loc := range reCodeFence.FindAllStringSubmatchIndex(text, -1) {
		inner := strings.TrimSpace(text[loc[2]:loc[3]])
		if inner != "" && json.Valid([]byte(inner)) {
			return inner, true
		}
	}
	for i := 0; i < len(text); i++ {
		if text[i] != '{' {
			continue
		}
		end := matchingBrace(text, i)
		if end < 0 {
			continue
		}
		candidate := text[i : end+1]
		if json.Valid([]byte(candidate)) {
			return candidate, true
		}
	}
	return "", false
}

// matchingBrace returns the index of the '}' that closes the '{' at
// position start, handling nested braces, double-quoted strings, and
// escape sequences. Returns -1 when unbalanced.
func matchingBrace(text string, start int) int {
	depth := 0
	inString := false
	for i := start; i < len(text); i++ {
		ch := text[i]
		if inString {
			switch ch {
			case '\\':
				i++
			case '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}
