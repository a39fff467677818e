package lang

import "sync"

var (
	once     sync.Once
	registry map[string]*Config
)

func build() {
	registry = map[string]*Config{
		"python":     pythonConfig(),
		"rust":       rustConfig(),
		"typescript": typescriptConfig(),
		// The TypeScript grammar's statement and declaration node kinds are a
		// superset of plain JavaScript's, so JS sources parse against it
		// cleanly enough for extraction purposes.
		"javascript": typescriptConfig(),
		"java":       javaConfig(),
		"c":          cConfig(),
		// No separate C++ grammar ships in this module; the C grammar
		// covers the struct/function shapes this extractor lifts.
		"cpp":    cConfig(),
		"ruby":   rubyConfig(),
		"php":    phpConfig(),
		"go":     goConfig(),
		"csharp": csharpConfig(),
		"swift":  swiftConfig(),
		"kotlin": kotlinConfig(),
	}
}

// Get returns the Config for a language tag, building the registry lazily
// on first use. ok is false when the language has no entry at all, in
// which case the caller should fall back to generic line-window chunking.
func Get(language string) (cfg *Config, ok bool) {
	once.Do(build)
	cfg, ok = registry[language]
	return cfg, ok
}
