package scanner

import (
	"path/filepath"
	"regexp"
)

// CallPattern recognizes the disallowed wall-clock read, with or without the
// fully-qualified std::time:: prefix.
var CallPattern = regexp.MustCompile(`(?:std::time::)?SystemTime::now\(\)`)

// Matcher locates every Occurrence of the disallowed call under a root.
// The default backend is line-oriented regex matching; a structural backend
// (ast-grep) can be substituted without touching classifier or rewriters.
type Matcher interface {
	Scan(root string) ([]Occurrence, error)
}

// RegexMatcher scans files line-by-line with CallPattern.
type RegexMatcher struct {
	Warn WarnFunc
}

func (m *RegexMatcher) warn(path string, err error) {
	if m.Warn != nil {
		m.Warn(path, err)
	}
}

// Scan walks root and returns all Occurrences in file order, line order.
// Paths in the result are relative to root.
func (m *RegexMatcher) Scan(root string) ([]Occurrence, error) {
	gitignore := LoadGitignore(root)
	files, err := ListSourceFiles(root, gitignore)
	if err != nil {
		return nil, err
	}

	var occurrences []Occurrence
	for _, rel := range files {
		content, err := ReadFileText(filepath.Join(root, rel))
		if err != nil {
			m.warn(rel, err)
			continue
		}
		for i, line := range SplitLines(content) {
			if CallPattern.MatchString(line) {
				occurrences = append(occurrences, Occurrence{
					Path: rel,
					Line: i + 1,
					Text: line,
				})
			}
		}
	}
	return occurrences, nil
}
