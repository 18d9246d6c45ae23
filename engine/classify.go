package engine

import (
	"regexp"
	"strings"

	"clockfix/scanner"
)

// letBinding matches a direct local binding of the disallowed call.
var letBinding = regexp.MustCompile(`^\s*let\s+(?:mut\s+)?\w+\s*=.*SystemTime::now`)

// Classify partitions occurrences into category buckets. Every occurrence
// lands in exactly one bucket; precedence is fixed, first match wins:
// conversion chains and field syntax are more specific shapes than the
// generic parenthesis check, so they are tested first.
func Classify(occurrences []scanner.Occurrence) map[scanner.Category][]scanner.Occurrence {
	buckets := make(map[scanner.Category][]scanner.Occurrence)
	for _, occ := range occurrences {
		cat := Categorize(occ.Text)
		buckets[cat] = append(buckets[cat], occ)
	}
	return buckets
}

// Categorize assigns a single line to its usage category.
func Categorize(line string) scanner.Category {
	switch {
	case strings.Contains(line, "duration_since") && strings.Contains(line, "UNIX_EPOCH"):
		return scanner.TimestampConversion
	case letBinding.MatchString(line):
		return scanner.DirectAssignment
	case hasFieldColon(line):
		return scanner.StructField
	case strings.Contains(line, "("):
		return scanner.FunctionCall
	default:
		return scanner.Other
	}
}

// hasFieldColon reports whether the line carries a field-initializer colon.
// Path separators (::) are stripped first so that the qualified call itself
// never reads as field syntax. Incidental colons in comments or type
// annotations still match; those lines end up in a bucket that is only
// reported, never rewritten destructively.
func hasFieldColon(line string) bool {
	return strings.Contains(strings.ReplaceAll(line, "::", ""), ":")
}
