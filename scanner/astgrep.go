package scanner

import (
	"encoding/json"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
)

// inlineRules match the disallowed call structurally, qualified or not.
const inlineRules = `id: systemtime-now
language: rust
rule:
  pattern: SystemTime::now()
---
id: systemtime-now-qualified
language: rust
rule:
  pattern: std::time::SystemTime::now()
`

// scanMatch mirrors the fields we need from ast-grep's scan JSON output.
type scanMatch struct {
	File  string `json:"file"`
	Range struct {
		Start struct {
			Line int `json:"line"` // 0-based
		} `json:"start"`
	} `json:"range"`
	Lines string `json:"lines"` // full line(s) containing the match
}

// AstGrepMatcher locates occurrences with the ast-grep CLI instead of line
// regexes. Results feed the same classifier; only the matching backend
// differs.
type AstGrepMatcher struct {
	binary string // "ast-grep" or "sg", whichever is available
}

// NewAstGrepMatcher finds the ast-grep binary if installed.
// Note: Linux has a system "sg" command (setgroups), so we check ast-grep first.
func NewAstGrepMatcher() *AstGrepMatcher {
	if _, err := exec.LookPath("ast-grep"); err == nil {
		return &AstGrepMatcher{binary: "ast-grep"}
	}
	if _, err := exec.LookPath("sg"); err == nil {
		return &AstGrepMatcher{binary: "sg"}
	}
	return &AstGrepMatcher{}
}

// Available checks if the ast-grep CLI was found.
func (m *AstGrepMatcher) Available() bool {
	return m.binary != ""
}

// Scan runs ast-grep over root and converts its matches to Occurrences.
// Paths in the result are relative to root.
func (m *AstGrepMatcher) Scan(root string) ([]Occurrence, error) {
	if !m.Available() {
		return nil, nil
	}

	cmd := exec.Command(m.binary, "scan", "--inline-rules", inlineRules, "--json", root)
	out, err := cmd.Output()
	if err != nil {
		// ast-grep exits non-zero when rules match nothing; accept any
		// output that still is a JSON array.
		if len(out) == 0 || !strings.HasPrefix(strings.TrimSpace(string(out)), "[") {
			return nil, nil
		}
	}

	var matches []scanMatch
	if err := json.Unmarshal(out, &matches); err != nil {
		return nil, err
	}

	// The two rules overlap on qualified calls; dedupe on (path, line).
	seen := make(map[string]bool)
	var occurrences []Occurrence
	for _, match := range matches {
		rel, err := filepath.Rel(root, match.File)
		if err != nil || strings.HasPrefix(rel, "..") {
			rel = match.File
		}
		if filepath.Ext(rel) != SourceExt {
			continue
		}
		line := match.Range.Start.Line + 1
		key := fmt.Sprintf("%s:%d", rel, line)
		if seen[key] {
			continue
		}
		seen[key] = true

		text := match.Lines
		if i := strings.IndexByte(text, '\n'); i >= 0 {
			text = text[:i]
		}
		occurrences = append(occurrences, Occurrence{
			Path: rel,
			Line: line,
			Text: text,
		})
	}
	return occurrences, nil
}
