package lang

import (
	sitter "github.com/tree-sitter/go-tree-sitter"
	python "github.com/tree-sitter/tree-sitter-python/bindings/go"
)

func pythonConfig() *Config {
	return &Config{
		Grammar: sitter.NewLanguage(python.Language()),
		Rules: []NodeExtractionRule{
			{NodeKind: "class_definition", ChunkType: "class", Priority: 100, MinLength: 40, MinLines: 2, MaxDepth: 2},
			{NodeKind: "decorated_definition", ChunkType: "function", Priority: 90, MinLength: 30, MinLines: 2, MaxDepth: 4, IncludeContext: true},
			{NodeKind: "function_definition", ChunkType: "function", Priority: 80, MinLength: 30, MinLines: 2, MaxDepth: 4, IncludeContext: true},
		},
	}
}
