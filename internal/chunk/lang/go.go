package lang

import "regexp"

// No tree-sitter-go grammar ships in this module, so Go sources chunk via
// the regex fallback tier: a line opening a func or type declaration starts
// a new chunk that runs to the next match.
func goConfig() *Config {
	return &Config{
		FallbackPatterns: []*regexp.Regexp{
			regexp.MustCompile(`^func\s+(\([^)]*\)\s+)?\w+`),
			regexp.MustCompile(`^type\s+\w+\s+(struct|interface)\b`),
		},
	}
}
