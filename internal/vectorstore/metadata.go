package vectorstore

import "sort"

// metaString extracts a string-valued metadata field, returning "" if
// absent or not a string.
func metaString(meta map[string]any, key string) string {
	v, ok := meta[key].(string)
	if !ok {
		return ""
	}
	return v
}

// metaInt extracts an integer-valued metadata field. Values survive a
// JSON round trip as float64 in some backends (sqlite-vec, chromem), so
// both representations are accepted.
func metaInt(meta map[string]any, key string) int {
	switch v := meta[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// SortByStartLine sorts results by metadata["start_line"] ascending,
// matching the reference store's "list by file" ordering.
func SortByStartLine(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return metaInt(results[i].Metadata, "start_line") < metaInt(results[j].Metadata, "start_line")
	})
}

// DominantLanguage picks the most frequent metadata["language"] value
// across results, breaking ties by first occurrence.
func DominantLanguage(results []Result) string {
	counts := make(map[string]int)
	order := make([]string, 0)
	for _, r := range results {
		lang := metaString(r.Metadata, "language")
		if lang == "" {
			continue
		}
		if counts[lang] == 0 {
			order = append(order, lang)
		}
		counts[lang]++
	}
	best := ""
	bestCount := 0
	for _, lang := range order {
		if counts[lang] > bestCount {
			best = lang
			bestCount = counts[lang]
		}
	}
	return best
}

// MetaString and MetaInt are the exported forms of the metadata
// accessors, for backend packages that need the same field extraction.
func MetaString(meta map[string]any, key string) string { return metaString(meta, key) }
func MetaInt(meta map[string]any, key string) int       { return metaInt(meta, key) }
