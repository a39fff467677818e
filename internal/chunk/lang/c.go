package lang

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	c "github.com/tree-sitter/tree-sitter-c/bindings/go"
)

func cConfig() *Config {
	return &Config{
		Grammar: sitter.NewLanguage(c.Language()),
		Rules: []NodeExtractionRule{
			{NodeKind: "struct_specifier", ChunkType: "struct", Priority: 90, MinLength: 40, MinLines: 2, MaxDepth: 2},
			{NodeKind: "enum_specifier", ChunkType: "enum", Priority: 85, MinLength: 40, MinLines: 2, MaxDepth: 2},
			{NodeKind: "function_definition", ChunkType: "function", Priority: 80, MinLength: 30, MinLines: 2, MaxDepth: 4, IncludeContext: true},
		},
	}
}
