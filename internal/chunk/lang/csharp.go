package lang

import "regexp"

// No C# grammar ships in this module; fall back to regex boundaries on
// class/interface/struct/method signatures.
func csharpConfig() *Config {
	return &Config{
		FallbackPatterns: []*regexp.Regexp{
			regexp.MustCompile(`^\s*(public|private|protected|internal)?\s*(static\s+|sealed\s+|abstract\s+)*class\s+\w+`),
			regexp.MustCompile(`^\s*(public|private|protected|internal)?\s*interface\s+\w+`),
			regexp.MustCompile(`^\s*(public|private|protected|internal)?\s*struct\s+\w+`),
			regexp.MustCompile(`^\s*(public|private|protected|internal)\s+[\w<>\[\],\s]+\s+\w+\s*\([^;]*$`),
		},
	}
}
