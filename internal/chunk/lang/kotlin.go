package lang

import "regexp"

// No Kotlin grammar ships in this module; fall back to regex boundaries on
// the keywords that open a top-level declaration.
func kotlinConfig() *Config {
	return &Config{
		FallbackPatterns: []*regexp.Regexp{
			regexp.MustCompile(`^\s*(public |private |internal )?(abstract |open |sealed |data )?(class|interface|object)\s+\w+`),
			regexp.MustCompile(`^\s*(public |private |internal )?fun\s+\w+`),
		},
	}
}
