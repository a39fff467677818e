package lang

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	rust "github.com/tree-sitter/tree-sitter-rust/bindings/go"
)

func rustConfig() *Config {
	return &Config{
		Grammar: sitter.NewLanguage(rust.Language()),
		Rules: []NodeExtractionRule{
			{NodeKind: "trait_item", ChunkType: "trait", Priority: 100, MinLength: 40, MinLines: 2, MaxDepth: 2},
			{NodeKind: "impl_item", ChunkType: "impl", Priority: 95, MinLength: 40, MinLines: 2, MaxDepth: 2},
			{NodeKind: "struct_item", ChunkType: "struct", Priority: 90, MinLength: 40, MinLines: 2, MaxDepth: 2},
			{NodeKind: "enum_item", ChunkType: "enum", Priority: 90, MinLength: 40, MinLines: 2, MaxDepth: 2},
			{NodeKind: "mod_item", ChunkType: "module", Priority: 85, MinLength: 40, MinLines: 2, MaxDepth: 2},
			{NodeKind: "function_item", ChunkType: "function", Priority: 80, MinLength: 30, MinLines: 2, MaxDepth: 4, IncludeContext: true},
		},
	}
}
