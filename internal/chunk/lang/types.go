// Package lang holds the per-language extraction configuration used by the
// chunk extractor: which tree-sitter grammar (if any) parses a language,
// which node kinds are worth lifting into their own chunk, and the regex
// fallback used when there is no grammar or the parse fails.
package lang

import (
	"regexp"

	sitter "github.com/tree-sitter/go-tree-sitter"
)

// NodeExtractionRule names one AST node kind worth lifting into its own
// chunk. Priority ranks rules against each other when a file produces more
// candidate nodes than the per-file chunk cap allows — higher priority nodes
// are kept first.
type NodeExtractionRule struct {
	NodeKind  string
	ChunkType string
	Priority  int
	// MinLength and MinLines are the node span's minimum char count and
	// line count for a match to be emitted as a chunk.
	MinLength int
	MinLines  int
	// MaxDepth is the deepest AST depth (root's children are depth 1) at
	// which this rule still matches. Keeps deeply nested closures and
	// local helpers from being lifted out as their own chunks.
	MaxDepth int
	// IncludeContext prefixes the chunk's content with the first line of
	// its nearest rule-matching ancestor (e.g. the enclosing class or impl
	// signature), so a method chunk reads with its container in view.
	IncludeContext bool
}

// Config is everything the extractor needs for one language.
type Config struct {
	// Grammar is nil for languages with no tree-sitter binding in this
	// module; those languages chunk via FallbackPatterns only.
	Grammar *sitter.Language
	Rules   []NodeExtractionRule
	// FallbackPatterns anchor on a line that opens a definition. They are
	// tried in order; the first match on a line starts a new chunk that
	// runs until the next match or end of file.
	FallbackPatterns []*regexp.Regexp
}
