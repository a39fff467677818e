package lang

import "regexp"

// No Swift grammar ships in this module; fall back to regex boundaries on
// the keywords that open a top-level declaration.
func swiftConfig() *Config {
	return &Config{
		FallbackPatterns: []*regexp.Regexp{
			regexp.MustCompile(`^\s*(public |private |internal |fileprivate |open )?(final )?(class|struct|enum|protocol|extension)\s+\w+`),
			regexp.MustCompile(`^\s*(public |private |internal |fileprivate |open )?func\s+\w+`),
		},
	}
}
