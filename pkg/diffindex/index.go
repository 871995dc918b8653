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

// Package diffindex builds a per-evaluation TF-IDF retrieval index over
// a unified diff. Large diffs are chunked per hunk and embedded into
// fixed-width hashed term vectors, so agents can pull only the regions
// relevant to their role instead of reading the whole diff inline.
package diffindex

import (
	"fmt"
	"hash/fnv"
	"math"
	"runtime"
	"sort"
	"strings"
	"unicode"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	// DefaultDimensions is the width of chunk embedding vectors.
	DefaultDimensions = 128
	// DefaultTopK is the number of chunks a query returns when the
	// caller passes topK <= 0.
	DefaultTopK = 3

	// Chunk sizing: hunks above maxChunkSize are split on blank lines
	// once a piece reaches minChunkSize, or every splitWindowLines
	// lines when no blank line shows up.
	minChunkSize     = 500
	maxChunkSize     = 2000
	splitWindowLines = 40
)

// ChangeType classifies what happened to a file in the diff.
type ChangeType string

const (
	ChangeAdded    ChangeType = "added"
	ChangeRemoved  ChangeType = "removed"
	ChangeModified ChangeType = "modified"
	ChangeRenamed  ChangeType = "renamed"
)

// ChunkMeta locates a chunk inside the original diff.
type ChunkMeta struct {
	File          string
	HunkStartLine int
	AddedLines    int
	DeletedLines  int
	ChangeType    ChangeType
}

// Chunk is one indexable slice of the diff: at most one hunk, or a
// piece of an oversized hunk. Rename-only files produce a single chunk
// with empty content.
type Chunk struct {
	Content   string
	Meta      ChunkMeta
	Embedding []float64
}

// ScoredChunk pairs a chunk with its similarity to a query.
type ScoredChunk struct {
	Chunk Chunk
	Score float64
}

// Stats summarizes the indexed diff. The numbers come from the parsed
// diff itself, not from the surviving chunks, so binary files still
// count as changed.
type Stats struct {
	FilesChanged  []string `json:"filesChanged"`
	Additions     int      `json:"additions"`
	Deletions     int      `json:"deletions"`
	DocumentCount int      `json:"documentCount"`
}

// Config controls index construction.
type Config struct {
	Dimensions int         // Default: 128
	Logger     *zap.Logger // Default: no-op
}

// Index is an immutable TF-IDF index over one diff. Build freezes the
// vocabulary; Query only reads, so a single Index is safe for
// concurrent use by all five agents.
type Index struct {
	dims   int
	chunks []Chunk
	idf    map[string]float64
	stats  Stats
}

// Build parses the diff, chunks it per hunk, and embeds every chunk.
func Build(diff string, cfg Config) (*Index, error) {
	if cfg.Dimensions <= 0 {
		cfg.Dimensions = DefaultDimensions
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	if strings.TrimSpace(diff) == "" {
		return nil, fmt.Errorf("diff is empty")
	}

	sections := parseDiff(diff)
	if len(sections) == 0 {
		return nil, fmt.Errorf("no file sections found in diff")
	}

	ix := &Index{
		dims: cfg.Dimensions,
		idf:  make(map[string]float64),
	}

	seen := make(map[string]struct{})
	for _, sec := range sections {
		if sec.binary {
			logger.Debug("dropping binary patch from index", zap.String("file", sec.path))
			continue
		}
		for _, chunk := range chunksFor(sec) {
			key := fmt.Sprintf("%s\x00%d\x00%x", chunk.Meta.File, chunk.Meta.HunkStartLine, contentHash(chunk.Content))
			if _, dup := seen[key]; dup {
				continue
			}
			seen[key] = struct{}{}
			ix.chunks = append(ix.chunks, chunk)
		}
	}
	if len(ix.chunks) == 0 {
		return nil, fmt.Errorf("diff produced no indexable chunks")
	}

	// Document frequencies over the frozen chunk set.
	df := make(map[string]int)
	for i := range ix.chunks {
		for tok := range uniqueTokens(ix.chunks[i].Content) {
			df[tok]++
		}
	}
	n := float64(len(ix.chunks))
	for tok, count := range df {
		ix.idf[tok] = math.Log(n / float64(count))
	}

	// Embed chunks in parallel. embed only reads the idf map.
	g := new(errgroup.Group)
	g.SetLimit(runtime.NumCPU())
	for i := range ix.chunks {
		i := i
		g.Go(func() error {
			ix.chunks[i].Embedding = ix.embed(ix.chunks[i].Content)
			return nil
		})
	}
	_ = g.Wait()

	ix.stats = buildStats(sections, len(ix.chunks))

	logger.Debug("diff index built",
		zap.Int("files", len(ix.stats.FilesChanged)),
		zap.Int("chunks", len(ix.chunks)),
		zap.Int("dimensions", ix.dims))

	return ix, nil
}

// Query embeds text with the frozen vocabulary and returns the topK
// most similar chunks. Tokens never seen at Build time are ignored, so
// a query about untouched code ranks everything at zero rather than
// failing.
func (ix *Index) Query(text string, topK int) ([]ScoredChunk, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("query text is empty")
	}
	if topK <= 0 {
		topK = DefaultTopK
	}

	qv := ix.embed(text)

	scored := make([]ScoredChunk, len(ix.chunks))
	for i := range ix.chunks {
		var dot float64
		for d, x := range ix.chunks[i].Embedding {
			dot += x * qv[d]
		}
		scored[i] = ScoredChunk{Chunk: ix.chunks[i], Score: dot}
	}
	sort.SliceStable(scored, func(a, b int) bool {
		return scored[a].Score > scored[b].Score
	})
	if topK > len(scored) {
		topK = len(scored)
	}
	return scored[:topK], nil
}

// Stats returns aggregate numbers for the indexed diff.
func (ix *Index) Stats() Stats {
	out := ix.stats
	out.FilesChanged = append([]string(nil), ix.stats.FilesChanged...)
	return out
}

// Dimensions returns the embedding width in use.
func (ix *Index) Dimensions() int {
	return ix.dims
}

// embed builds the L2-normalized hashed TF-IDF vector for text.
func (ix *Index) embed(text string) []float64 {
	v := make([]float64, ix.dims)

	tf := make(map[string]int)
	for _, tok := range tokenize(text) {
		tf[tok]++
	}
	for tok, count := range tf {
		idf, ok := ix.idf[tok]
		if !ok {
			continue
		}
		v[dimensionOf(tok, ix.dims)] += float64(count) * idf
	}

	var norm float64
	for _, x := range v {
		norm += x * x
	}
	if norm > 0 {
		norm = math.Sqrt(norm)
		for i := range v {
			v[i] /= norm
		}
	}
	return v
}

func buildStats(sections []fileSection, documents int) Stats {
	s := Stats{DocumentCount: documents}
	seen := make(map[string]struct{})
	for _, sec := range sections {
		if sec.path != "" {
			if _, dup := seen[sec.path]; !dup {
				seen[sec.path] = struct{}{}
				s.FilesChanged = append(s.FilesChanged, sec.path)
			}
		}
		for _, h := range sec.hunks {
			s.Additions += h.added
			s.Deletions += h.deleted
		}
	}
	return s
}

// tokenize lowercases, splits on non-word runes, and drops tokens of
// length <= 2.
func tokenize(text string) []string {
	fields := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
	out := fields[:0]
	for _, f := range fields {
		if len(f) > 2 {
			out = append(out, f)
		}
	}
	return out
}

func uniqueTokens(text string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, tok := range tokenize(text) {
		set[tok] = struct{}{}
	}
	return set
}

// dimensionOf maps a token to its embedding dimension by FNV-1a hash.
func dimensionOf(token string, dims int) int {
	h := fnv.New32a()
	_, _ = h.Write([]byte(token))
	return int(h.Sum32() % uint32(dims))
}

func contentHash(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s))
	return h.Sum64()
}
