package lang

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	java "github.com/tree-sitter/tree-sitter-java/bindings/go"
)

func javaConfig() *Config {
	return &Config{
		Grammar: sitter.NewLanguage(java.Language()),
		Rules: []NodeExtractionRule{
			{NodeKind: "class_declaration", ChunkType: "class", Priority: 100, MinLength: 40, MinLines: 2, MaxDepth: 2},
			{NodeKind: "interface_declaration", ChunkType: "interface", Priority: 95, MinLength: 40, MinLines: 2, MaxDepth: 2},
			{NodeKind: "enum_declaration", ChunkType: "enum", Priority: 90, MinLength: 40, MinLines: 2, MaxDepth: 2},
			{NodeKind: "method_declaration", ChunkType: "method", Priority: 80, MinLength: 30, MinLines: 2, MaxDepth: 4, IncludeContext: true},
			{NodeKind: "constructor_declaration", ChunkType: "constructor", Priority: 80, MinLength: 30, MinLines: 2, MaxDepth: 4, IncludeContext: true},
		},
	}
}
