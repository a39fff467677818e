package lang

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	php "github.com/tree-sitter/tree-sitter-php/bindings/go"
)

func phpConfig() *Config {
	return &Config{
		Grammar: sitter.NewLanguage(php.LanguagePHP()),
		Rules: []NodeExtractionRule{
			{NodeKind: "class_declaration", ChunkType: "class", Priority: 100, MinLength: 40, MinLines: 2, MaxDepth: 2},
			{NodeKind: "interface_declaration", ChunkType: "interface", Priority: 95, MinLength: 40, MinLines: 2, MaxDepth: 2},
			{NodeKind: "trait_declaration", ChunkType: "trait", Priority: 90, MinLength: 40, MinLines: 2, MaxDepth: 2},
			{NodeKind: "method_declaration", ChunkType: "method", Priority: 80, MinLength: 30, MinLines: 2, MaxDepth: 4, IncludeContext: true},
			{NodeKind: "function_definition", ChunkType: "function", Priority: 80, MinLength: 30, MinLines: 2, MaxDepth: 4, IncludeContext: true},
		},
	}
}
