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
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const twoFileDiff = `diff --git a/internal/auth/session.go b/internal/auth/session.go
index 2f1a9b3..8c44d17 100644
--- a/internal/auth/session.go
+++ b/internal/auth/session.go
@@ -10,4 +10,7 @@ func NewSession(user string) *Session {
 	s := &Session{User: user}
 	s.token = issueToken(user)
+	if s.token == "" {
+		return nil
+	}
 	return s
 }
@@ -40,5 +43,5 @@ func (s *Session) Validate() error {
 	if s.expired() {
-		return ErrExpired
+		return fmt.Errorf("session expired for %s", s.User)
 	}
 	return nil
 }
diff --git a/pkg/matrix/multiply.go b/pkg/matrix/multiply.go
index 1111111..2222222 100644
--- a/pkg/matrix/multiply.go
+++ b/pkg/matrix/multiply.go
@@ -5,3 +5,6 @@ func Multiply(a, b Matrix) Matrix {
 	out := NewMatrix(a.Rows, b.Cols)
+	if a.Cols != b.Rows {
+		panic("dimension mismatch")
+	}
 	return out
 }
`

func TestParseDiffTwoFiles(t *testing.T) {
	sections := parseDiff(twoFileDiff)
	require.Len(t, sections, 2)

	auth := sections[0]
	assert.Equal(t, "internal/auth/session.go", auth.path)
	assert.Equal(t, ChangeModified, auth.changeType)
	require.Len(t, auth.hunks, 2)
	assert.Equal(t, 10, auth.hunks[0].startLine)
	assert.Equal(t, 3, auth.hunks[0].added)
	assert.Equal(t, 0, auth.hunks[0].deleted)
	assert.Equal(t, 43, auth.hunks[1].startLine)
	assert.Equal(t, 1, auth.hunks[1].added)
	assert.Equal(t, 1, auth.hunks[1].deleted)

	matrix := sections[1]
	assert.Equal(t, "pkg/matrix/multiply.go", matrix.path)
	require.Len(t, matrix.hunks, 1)
	assert.Equal(t, 5, matrix.hunks[0].startLine)
	assert.Equal(t, 3, matrix.hunks[0].added)
}

func TestParseDiffAddedAndRemovedFiles(t *testing.T) {
	diff := `diff --git a/docs/changelog.md b/docs/changelog.md
new file mode 100644
index 0000000..3b18e51
--- /dev/null
+++ b/docs/changelog.md
@@ -0,0 +1,3 @@
+# Changelog
+
+Initial release notes.
diff --git a/scripts/legacy.sh b/scripts/legacy.sh
deleted file mode 100644
index 5d2a1c8..0000000
--- a/scripts/legacy.sh
+++ /dev/null
@@ -1,2 +0,0 @@
-#!/bin/sh
-echo legacy
`

	sections := parseDiff(diff)
	require.Len(t, sections, 2)

	added := sections[0]
	assert.Equal(t, "docs/changelog.md", added.path)
	assert.Equal(t, ChangeAdded, added.changeType)
	require.Len(t, added.hunks, 1)
	assert.Equal(t, 1, added.hunks[0].startLine)
	assert.Equal(t, 3, added.hunks[0].added)

	removed := sections[1]
	assert.Equal(t, "scripts/legacy.sh", removed.path)
	assert.Equal(t, ChangeRemoved, removed.changeType)
	require.Len(t, removed.hunks, 1)
	// Pure deletions anchor on the old file.
	assert.Equal(t, 1, removed.hunks[0].startLine)
	assert.Equal(t, 2, removed.hunks[0].deleted)
}

func TestParseDiffRenameOnly(t *testing.T) {
	diff := `diff --git a/pkg/util/strings.go b/pkg/text/strings.go
similarity index 100%
rename from pkg/util/strings.go
rename to pkg/text/strings.go
`

	sections := parseDiff(diff)
	require.Len(t, sections, 1)
	assert.Equal(t, ChangeRenamed, sections[0].changeType)
	assert.Equal(t, "pkg/text/strings.go", sections[0].path)
	assert.Empty(t, sections[0].hunks)

	chunks := chunksFor(sections[0])
	require.Len(t, chunks, 1)
	assert.Empty(t, chunks[0].Content)
	assert.Equal(t, ChangeRenamed, chunks[0].Meta.ChangeType)
}

func TestParseDiffBinary(t *testing.T) {
	diff := `diff --git a/assets/logo.png b/assets/logo.png
index 1234567..89abcde 100644
Binary files a/assets/logo.png and b/assets/logo.png differ
`

	sections := parseDiff(diff)
	require.Len(t, sections, 1)
	assert.True(t, sections[0].binary)
	assert.Empty(t, chunksFor(sections[0]))
}

func TestParseDiffPlainUnified(t *testing.T) {
	diff := "--- main.c\t2026-01-03 10:00:00\n" +
		"+++ main.c\t2026-01-03 10:05:00\n" +
		`@@ -1,4 +1,5 @@
 #include <stdio.h>
 int main(void) {
+	printf("hello\n");
 	return 0;
 }
`

	sections := parseDiff(diff)
	require.Len(t, sections, 1)
	assert.Equal(t, "main.c", sections[0].path)
	require.Len(t, sections[0].hunks, 1)
	assert.Equal(t, 1, sections[0].hunks[0].added)
}

func TestChunksForSplitsOversizedHunk(t *testing.T) {
	var body strings.Builder
	for i := 0; i < 120; i++ {
		if i%10 == 9 {
			body.WriteString(" \n")
			continue
		}
		fmt.Fprintf(&body, " 	result = accumulate(result, transform(input[%d]))\n", i)
	}

	diff := "diff --git a/pkg/batch/run.go b/pkg/batch/run.go\n" +
		"--- a/pkg/batch/run.go\n" +
		"+++ b/pkg/batch/run.go\n" +
		"@@ -1,120 +1,120 @@\n" +
		body.String()

	sections := parseDiff(diff)
	require.Len(t, sections, 1)
	require.Len(t, sections[0].hunks, 1)

	chunks := chunksFor(sections[0])
	require.Greater(t, len(chunks), 1)
	for _, c := range chunks {
		assert.LessOrEqual(t, len(c.Content), maxChunkSize+200)
		assert.Equal(t, "pkg/batch/run.go", c.Meta.File)
		assert.Equal(t, 1, c.Meta.HunkStartLine)
		assert.Equal(t, ChangeModified, c.Meta.ChangeType)
	}
}

func TestParseHunkHeader(t *testing.T) {
	tests := []struct {
		line      string
		wantStart int
		wantOld   int
		wantNew   int
	}{
		{"@@ -10,4 +12,7 @@ func foo() {", 12, 4, 7},
		{"@@ -1 +1 @@", 1, 1, 1},
		{"@@ -5,0 +6,2 @@", 6, 0, 2},
		{"@@ -3,2 +0,0 @@", 3, 2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.line, func(t *testing.T) {
			h, ok := parseHunkHeader(tt.line)
			require.True(t, ok)
			assert.Equal(t, tt.wantStart, h.startLine)
			assert.Equal(t, tt.wantOld, h.oldLeft)
			assert.Equal(t, tt.wantNew, h.newLeft)
		})
	}

	_, ok := parseHunkHeader("not a hunk header")
	assert.False(t, ok)
}
