package lang

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	ruby "github.com/tree-sitter/tree-sitter-ruby/bindings/go"
)

func rubyConfig() *Config {
	return &Config{
		Grammar: sitter.NewLanguage(ruby.Language()),
		Rules: []NodeExtractionRule{
			{NodeKind: "module", ChunkType: "module", Priority: 95, MinLength: 40, MinLines: 2, MaxDepth: 2},
			{NodeKind: "class", ChunkType: "class", Priority: 90, MinLength: 40, MinLines: 2, MaxDepth: 2},
			{NodeKind: "method", ChunkType: "method", Priority: 80, MinLength: 30, MinLines: 2, MaxDepth: 4, IncludeContext: true},
			{NodeKind: "singleton_method", ChunkType: "method", Priority: 80, MinLength: 30, MinLines: 2, MaxDepth: 4, IncludeContext: true},
		},
	}
}
