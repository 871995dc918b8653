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

package diffindex

import (
	"regexp"
	"strconv"
	"strings"
)

// fileSection is one file's portion of a unified diff before chunking.
type fileSection struct {
	path       string
	changeType ChangeType
	binary     bool
	renamed    bool
	hunks      []hunk
}

// hunk is one @@ block: header line plus body lines. oldLeft/newLeft
// track how many old-file and new-file lines the header still owes, so
// the parser knows exactly where the hunk ends.
type hunk struct {
	header    string
	body      []string
	startLine int
	added     int
	deleted   int

	oldLeft int
	newLeft int
}

func (h *hunk) done() bool {
	return h.oldLeft <= 0 && h.newLeft <= 0
}

var hunkHeaderRe = regexp.MustCompile(`^@@ -(\d+)(?:,(\d+))? \+(\d+)(?:,(\d+))? @@`)

// parseDiff splits a unified diff into per-file sections. Git-style
// "diff --git" headers delimit files; a plain unified diff without git
// headers is treated as a single section.
func parseDiff(diff string) []fileSection {
	lines := strings.Split(diff, "\n")

	var sections []fileSection
	var cur *fileSection
	var curHunk *hunk

	flushHunk := func() {
		if curHunk != nil && cur != nil {
			cur.hunks = append(cur.hunks, *curHunk)
		}
		curHunk = nil
	}
	flushSection := func() {
		flushHunk()
		if cur != nil {
			sections = append(sections, finalizeSection(*cur))
		}
		cur = nil
	}

	for _, line := range lines {
		if strings.HasPrefix(line, "diff --git ") {
			flushSection()
			sec := fileSection{changeType: ChangeModified}
			if _, newPath, ok := parseGitHeaderPaths(line); ok {
				sec.path = newPath
			}
			cur = &sec
			continue
		}
		if cur == nil {
			if strings.HasPrefix(line, "--- ") || strings.HasPrefix(line, "@@") {
				cur = &fileSection{changeType: ChangeModified}
			} else {
				continue
			}
		}

		if h, ok := parseHunkHeader(line); ok {
			flushHunk()
			curHunk = h
			continue
		}

		if curHunk != nil && !curHunk.done() {
			curHunk.body = append(curHunk.body, line)
			switch {
			case strings.HasPrefix(line, "+"):
				curHunk.added++
				curHunk.newLeft--
			case strings.HasPrefix(line, "-"):
				curHunk.deleted++
				curHunk.oldLeft--
			case strings.HasPrefix(line, `\`):
				// "\ No newline at end of file" owes nothing.
			default:
				curHunk.oldLeft--
				curHunk.newLeft--
			}
			continue
		}

		// File header region between "diff --git" and the first hunk.
		switch {
		case strings.HasPrefix(line, "--- "):
			if len(cur.hunks) > 0 || curHunk != nil {
				// A plain diff starts its next file here.
				flushSection()
				cur = &fileSection{changeType: ChangeModified}
			}
			target := stripPathPrefix(strings.TrimPrefix(line, "--- "))
			if target == "/dev/null" {
				cur.changeType = ChangeAdded
			} else if cur.path == "" {
				cur.path = target
			}
		case strings.HasPrefix(line, "+++ "):
			target := stripPathPrefix(strings.TrimPrefix(line, "+++ "))
			if target == "/dev/null" {
				cur.changeType = ChangeRemoved
			} else {
				cur.path = target
			}
		case strings.HasPrefix(line, "new file mode"):
			cur.changeType = ChangeAdded
		case strings.HasPrefix(line, "deleted file mode"):
			cur.changeType = ChangeRemoved
		case strings.HasPrefix(line, "rename from "):
			cur.renamed = true
		case strings.HasPrefix(line, "rename to "):
			cur.renamed = true
			cur.path = strings.TrimSpace(strings.TrimPrefix(line, "rename to "))
		case strings.HasPrefix(line, "Binary files "), line == "GIT binary patch":
			cur.binary = true
		}
	}
	flushSection()

	return sections
}

// parseHunkHeader decodes "@@ -oldStart[,oldCount] +newStart[,newCount] @@".
// An omitted count means 1.
func parseHunkHeader(line string) (*hunk, bool) {
	m := hunkHeaderRe.FindStringSubmatch(line)
	if m == nil {
		return nil, false
	}
	oldStart, _ := strconv.Atoi(m[1])
	newStart, _ := strconv.Atoi(m[3])
	oldCount, newCount := 1, 1
	if m[2] != "" {
		oldCount, _ = strconv.Atoi(m[2])
	}
	if m[4] != "" {
		newCount, _ = strconv.Atoi(m[4])
	}

	start := newStart
	if newCount == 0 {
		// Pure deletion: anchor on the old file instead.
		start = oldStart
	}
	return &hunk{
		header:    line,
		startLine: start,
		oldLeft:   oldCount,
		newLeft:   newCount,
	}, true
}

// parseGitHeaderPaths extracts the a/ and b/ paths from a
// "diff --git a/old b/new" line.
func parseGitHeaderPaths(line string) (oldPath, newPath string, ok bool) {
	rest := strings.TrimPrefix(line, "diff --git ")
	if i := strings.LastIndex(rest, " b/"); i >= 0 {
		return strings.TrimPrefix(rest[:i], "a/"), rest[i+len(" b/"):], true
	}
	fields := strings.Fields(rest)
	if len(fields) == 2 {
		return strings.TrimPrefix(fields[0], "a/"), strings.TrimPrefix(fields[1], "b/"), true
	}
	return "", "", false
}

// stripPathPrefix removes the a/ or b/ prefix and any trailing
// tab-separated timestamp from a ---/+++ target.
func stripPathPrefix(p string) string {
	p = strings.TrimSpace(p)
	if i := strings.IndexByte(p, '\t'); i >= 0 {
		p = p[:i]
	}
	if p == "/dev/null" {
		return p
	}
	p = strings.TrimPrefix(p, "a/")
	p = strings.TrimPrefix(p, "b/")
	return p
}

func finalizeSection(sec fileSection) fileSection {
	if sec.renamed && len(sec.hunks) == 0 && !sec.binary {
		sec.changeType = ChangeRenamed
	}
	return sec
}

// chunksFor converts one parsed section into indexable chunks. Binary
// sections yield nothing; rename-only sections yield a single empty
// marker chunk.
func chunksFor(sec fileSection) []Chunk {
	if sec.binary {
		return nil
	}
	if len(sec.hunks) == 0 {
		if sec.changeType == ChangeRenamed {
			return []Chunk{{
				Meta: ChunkMeta{File: sec.path, ChangeType: ChangeRenamed},
			}}
		}
		return nil
	}

	var chunks []Chunk
	for _, h := range sec.hunks {
		content := h.header
		if len(h.body) > 0 {
			content += "\n" + strings.Join(h.body, "\n")
		}
		if len(content) <= maxChunkSize {
			chunks = append(chunks, Chunk{
				Content: content,
				Meta: ChunkMeta{
					File:          sec.path,
					HunkStartLine: h.startLine,
					AddedLines:    h.added,
					DeletedLines:  h.deleted,
					ChangeType:    sec.changeType,
				},
			})
			continue
		}
		for _, piece := range splitHunkBody(h.body) {
			added, deleted := countChanges(piece)
			chunks = append(chunks, Chunk{
				Content: h.header + "\n" + strings.Join(piece, "\n"),
				Meta: ChunkMeta{
					File:          sec.path,
					HunkStartLine: h.startLine,
					AddedLines:    added,
					DeletedLines:  deleted,
					ChangeType:    sec.changeType,
				},
			})
		}
	}
	return chunks
}

// splitHunkBody splits an oversized hunk body on blank lines once a
// piece reaches minChunkSize, or every splitWindowLines lines when no
// blank line shows up in time.
func splitHunkBody(body []string) [][]string {
	var segments [][]string
	var seg []string
	size := 0
	for _, line := range body {
		seg = append(seg, line)
		size += len(line) + 1
		if (isBlankDiffLine(line) && size >= minChunkSize) ||
			len(seg) >= splitWindowLines ||
			size >= maxChunkSize {
			segments = append(segments, seg)
			seg = nil
			size = 0
		}
	}
	if len(seg) > 0 {
		segments = append(segments, seg)
	}
	return segments
}

// isBlankDiffLine reports whether a hunk body line carries no content
// beyond its +/-/space marker.
func isBlankDiffLine(line string) bool {
	if line == "" {
		return true
	}
	switch line[0] {
	case '+', '-', ' ':
		return strings.TrimSpace(line[1:]) == ""
	}
	return strings.TrimSpace(line) == ""
}

func countChanges(lines []string) (added, deleted int) {
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "+"):
			added++
		case strings.HasPrefix(line, "-"):
			deleted++
		}
	}
	return added, deleted
}
