// Package chunk implements the language-aware chunk extractor: it parses
// source files into CodeChunks using a tree-sitter-style AST traversal with
// priority-ranked node rules, a regex boundary fallback, and a generic
// line-window fallback. Extraction never fails outright — each tier degrades
// into the next.
package chunk

import "context"

// Language is one of the fixed language tags from the glossary. Anything
// else collapses to Unknown and is chunked generically.
type Language string

const (
	LangRust       Language = "rust"
	LangPython     Language = "python"
	LangJavaScript Language = "javascript"
	LangTypeScript Language = "typescript"
	LangGo         Language = "go"
	LangJava       Language = "java"
	LangC          Language = "c"
	LangCPP        Language = "cpp"
	LangCSharp     Language = "csharp"
	LangRuby       Language = "ruby"
	LangPHP        Language = "php"
	LangSwift      Language = "swift"
	LangKotlin     Language = "kotlin"
	LangUnknown    Language = "unknown"
)

// Chunk is the fundamental unit of indexed knowledge (spec §3 CodeChunk).
type Chunk struct {
	ID        string         `json:"id"`
	Content   string         `json:"content"`
	FilePath  string         `json:"file_path"`
	StartLine int            `json:"start_line"`
	EndLine   int            `json:"end_line"`
	Language  Language       `json:"language"`
	Metadata  map[string]any `json:"metadata"`
}

// Metadata keys written by the extractor. Callers (the repository, the
// vector store) read these by name; they are never typed structs so that
// backend-specific provenance fields can ride along unchanged.
const (
	MetaKind       = "kind"
	MetaPriority   = "priority"
	MetaChunkType  = "chunk_type"
	ChunkTypeGeneric = "generic"
)

// Extractor is the C1 contract: parse content into an ordered sequence of
// chunks. It never returns an error — parse failures degrade through the
// fallback tiers described in the package doc.
type Extractor interface {
	Extract(ctx context.Context, content, fileName string, language Language) []Chunk
}

// LanguageFromExtension maps a file extension (including the leading dot)
// to a language tag. Unrecognized extensions map to LangUnknown.
func LanguageFromExtension(ext string) Language {
	switch ext {
	case ".rs":
		return LangRust
	case ".py", ".pyi":
		return LangPython
	case ".js", ".jsx", ".mjs", ".cjs":
		return LangJavaScript
	case ".ts", ".tsx", ".mts", ".cts":
		return LangTypeScript
	case ".go":
		return LangGo
	case ".java":
		return LangJava
	case ".c", ".h":
		return LangC
	case ".cpp", ".cc", ".cxx", ".hpp", ".hh":
		return LangCPP
	case ".cs":
		return LangCSharp
	case ".rb":
		return LangRuby
	case ".php":
		return LangPHP
	case ".swift":
		return LangSwift
	case ".kt", ".kts":
		return LangKotlin
	default:
		return LangUnknown
	}
}
