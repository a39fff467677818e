package lang

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	typescript "github.com/tree-sitter/tree-sitter-typescript/bindings/go"
)

func typescriptConfig() *Config {
	return &Config{
		Grammar: sitter.NewLanguage(typescript.LanguageTypescript()),
		Rules: []NodeExtractionRule{
			{NodeKind: "class_declaration", ChunkType: "class", Priority: 100, MinLength: 40, MinLines: 2, MaxDepth: 2},
			{NodeKind: "interface_declaration", ChunkType: "interface", Priority: 95, MinLength: 40, MinLines: 2, MaxDepth: 2},
			{NodeKind: "enum_declaration", ChunkType: "enum", Priority: 90, MinLength: 40, MinLines: 2, MaxDepth: 2},
			{NodeKind: "method_definition", ChunkType: "method", Priority: 85, MinLength: 30, MinLines: 2, MaxDepth: 4, IncludeContext: true},
			{NodeKind: "function_declaration", ChunkType: "function", Priority: 80, MinLength: 30, MinLines: 2, MaxDepth: 4, IncludeContext: true},
		},
	}
}
