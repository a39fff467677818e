package chunk

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"regexp"
	"sort"
	"strings"

	sitter "github.com/tree-sitter/go-tree-sitter"

	"github.com/codelens-dev/codelens/internal/chunk/lang"
)

const (
	// maxTraversalNodes is the hard cap on emitted candidates for one file's
	// walk: once this many rule matches have been found, the walk stops
	// descending into further children. This bounds per-file explosion, not
	// the number of raw AST nodes visited.
	maxTraversalNodes = 75
	// maxChunksPerFile caps how many chunks one file contributes, after
	// sorting extraction candidates by rule priority.
	maxChunksPerFile = 50
	// genericWindowLines sizes the line window used once no grammar and no
	// pattern fallback produced anything.
	genericWindowLines = 60
	// minPatternChunkLines and minPatternChunkChars are the floors a
	// pattern-fallback chunk must clear to be kept, and minGenericChunkChars
	// is the generic-window floor; anything smaller is noise (stray braces,
	// blank boundaries).
	minPatternChunkLines = 2
	minPatternChunkChars = 25
	minGenericChunkChars = 20
)

type astExtractor struct{}

// NewExtractor returns the default tree-sitter-backed Extractor.
func NewExtractor() Extractor { return &astExtractor{} }

func (e *astExtractor) Extract(ctx context.Context, content, fileName string, language Language) []Chunk {
	cfg, ok := lang.Get(string(language))
	if !ok {
		return genericWindow(content, fileName, language)
	}
	if cfg.Grammar != nil {
		if chunks := extractAST(content, fileName, language, cfg); len(chunks) > 0 {
			return chunks
		}
	}
	if chunks := extractPattern(content, fileName, language, cfg.FallbackPatterns); len(chunks) > 0 {
		return chunks
	}
	return genericWindow(content, fileName, language)
}

type astCandidate struct {
	node *sitter.Node
	rule lang.NodeExtractionRule
}

// extractAST parses content with the language's grammar and lifts every
// node matching a NodeExtractionRule into its own chunk. Returns nil on
// parse failure or when no rule node was found, so the caller degrades to
// the next tier.
func extractAST(content, fileName string, language Language, cfg *lang.Config) []Chunk {
	parser := sitter.NewParser()
	defer parser.Close()
	if err := parser.SetLanguage(cfg.Grammar); err != nil {
		return nil
	}

	source := []byte(content)
	tree := parser.Parse(source, nil)
	if tree == nil {
		return nil
	}
	defer tree.Close()

	rules := make(map[string]lang.NodeExtractionRule, len(cfg.Rules))
	for _, r := range cfg.Rules {
		rules[r.NodeKind] = r
	}

	var candidates []astCandidate
	// walk is depth-first; a node's depth is its distance from the tree
	// root, so root's direct children sit at depth 1. Recursion continues
	// into a matched node's children (to catch methods nested in classes),
	// but once emitted candidates reach maxTraversalNodes the walk stops
	// descending any further.
	var walk func(n *sitter.Node, depth int)
	walk = func(n *sitter.Node, depth int) {
		if n == nil || len(candidates) >= maxTraversalNodes {
			return
		}
		if rule, ok := rules[n.Kind()]; ok && depth <= rule.MaxDepth {
			nodeLen := int(n.EndByte() - n.StartByte())
			nodeLines := int(n.EndPosition().Row-n.StartPosition().Row) + 1
			if nodeLen >= rule.MinLength && nodeLines >= rule.MinLines {
				candidates = append(candidates, astCandidate{node: n, rule: rule})
			}
		}
		if len(candidates) >= maxTraversalNodes {
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			walk(n.Child(uint(i)), depth+1)
		}
	}
	walk(tree.RootNode(), 0)

	if len(candidates) == 0 {
		return nil
	}

	// Keep the highest-priority nodes when the budget is tight.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].rule.Priority > candidates[j].rule.Priority
	})
	if len(candidates) > maxChunksPerFile {
		candidates = candidates[:maxChunksPerFile]
	}
	// Re-sort into source order so chunks read top-to-bottom.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].node.StartByte() < candidates[j].node.StartByte()
	})

	lines := strings.Split(content, "\n")
	chunks := make([]Chunk, 0, len(candidates))
	for _, c := range candidates {
		startLine := int(c.node.StartPosition().Row) + 1
		endLine := int(c.node.EndPosition().Row) + 1
		text := extractLines(lines, startLine, endLine)
		if strings.TrimSpace(text) == "" {
			continue
		}
		if c.rule.IncludeContext {
			if context := enclosingContext(c.node, rules, lines); context != "" {
				text = context + "\n" + text
			}
		}
		chunks = append(chunks, Chunk{
			ID:        chunkID(fileName, startLine, endLine),
			Content:   text,
			FilePath:  fileName,
			StartLine: startLine,
			EndLine:   endLine,
			Language:  language,
			Metadata: map[string]any{
				MetaKind:      c.rule.NodeKind,
				MetaChunkType: c.rule.ChunkType,
				MetaPriority:  c.rule.Priority,
			},
		})
	}
	return chunks
}

// enclosingContext returns the first line of node's nearest rule-matching
// ancestor (its enclosing class, impl, or similar container), trimmed, or
// "" if node has no such ancestor.
func enclosingContext(node *sitter.Node, rules map[string]lang.NodeExtractionRule, lines []string) string {
	for p := node.Parent(); p != nil; p = p.Parent() {
		if _, ok := rules[p.Kind()]; !ok {
			continue
		}
		startLine := int(p.StartPosition().Row) + 1
		if startLine < 1 || startLine > len(lines) {
			return ""
		}
		return strings.TrimSpace(lines[startLine-1])
	}
	return ""
}

// extractPattern chunks content by regex line boundaries: each matching
// line opens a chunk that runs until the next match or end of file.
func extractPattern(content, fileName string, language Language, patterns []*regexp.Regexp) []Chunk {
	if len(patterns) == 0 {
		return nil
	}
	lines := strings.Split(content, "\n")
	var starts []int
	for i, line := range lines {
		for _, p := range patterns {
			if p.MatchString(line) {
				starts = append(starts, i)
				break
			}
		}
	}
	if len(starts) == 0 {
		return nil
	}

	chunks := make([]Chunk, 0, len(starts))
	for idx, s := range starts {
		end := len(lines) - 1
		if idx+1 < len(starts) {
			end = starts[idx+1] - 1
		}
		text := strings.TrimRight(strings.Join(lines[s:end+1], "\n"), "\n")
		if !meetsPatternFloor(text) {
			continue
		}
		startLine := s + 1
		endLine := end + 1
		chunks = append(chunks, Chunk{
			ID:        chunkID(fileName, startLine, endLine),
			Content:   text,
			FilePath:  fileName,
			StartLine: startLine,
			EndLine:   endLine,
			Language:  language,
			Metadata:  map[string]any{MetaChunkType: "pattern"},
		})
		if len(chunks) >= maxChunksPerFile {
			break
		}
	}
	return chunks
}

// genericWindow is the last-resort tier: fixed-size, non-overlapping line
// windows over the raw file, regardless of language. A window whose trimmed
// text is shorter than minGenericChunkChars is dropped, so very short
// content yields no chunks at all.
func genericWindow(content, fileName string, language Language) []Chunk {
	if strings.TrimSpace(content) == "" {
		return nil
	}
	lines := strings.Split(content, "\n")

	var chunks []Chunk
	for start := 0; start < len(lines); start += genericWindowLines {
		end := start + genericWindowLines
		if end > len(lines) {
			end = len(lines)
		}
		text := strings.TrimRight(strings.Join(lines[start:end], "\n"), "\n")
		if len(strings.TrimSpace(text)) >= minGenericChunkChars {
			startLine := start + 1
			endLine := end
			chunks = append(chunks, Chunk{
				ID:        chunkID(fileName, startLine, endLine),
				Content:   text,
				FilePath:  fileName,
				StartLine: startLine,
				EndLine:   endLine,
				Language:  language,
				Metadata:  map[string]any{MetaChunkType: ChunkTypeGeneric},
			})
		}
		if len(chunks) >= maxChunksPerFile {
			break
		}
	}
	return chunks
}

// meetsPatternFloor reports whether text has at least minPatternChunkLines
// non-empty lines and minPatternChunkChars characters of meaningful
// (trimmed) content, the floor below which a pattern-fallback chunk is
// noise rather than a real definition.
func meetsPatternFloor(text string) bool {
	nonEmpty := 0
	chars := 0
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmpty++
		chars += len(trimmed)
	}
	return nonEmpty >= minPatternChunkLines && chars >= minPatternChunkChars
}

// extractLines joins lines[startLine-1:endLine] (both 1-indexed, inclusive).
func extractLines(lines []string, startLine, endLine int) string {
	if startLine < 1 || endLine < 1 || startLine > len(lines) {
		return ""
	}
	start := startLine - 1
	end := endLine
	if end > len(lines) {
		end = len(lines)
	}
	return strings.Join(lines[start:end], "\n")
}

// chunkID is deterministic in (filePath, startLine, endLine) so re-chunking
// unchanged content reproduces the same chunk identity across indexing runs.
func chunkID(filePath string, startLine, endLine int) string {
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s:%d:%d", filePath, startLine, endLine)))
	return hex.EncodeToString(sum[:])[:16]
}
