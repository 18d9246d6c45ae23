package scanner

import (
	"testing"
)

func TestCallPattern(t *testing.T) {
	tests := []struct {
		line string
		want bool
	}{
		{"let now = SystemTime::now();", true},
		{"let now = std::time::SystemTime::now();", true},
		{"created_at: SystemTime::now(),", true},
		{"record(SystemTime::now())", true},
		{"let now = current_system_time();", false},
		{"// SystemTime is fine without a call", false},
	}
	for _, tt := range tests {
		if got := CallPattern.MatchString(tt.line); got != tt.want {
			t.Errorf("CallPattern(%q) = %v, want %v", tt.line, got, tt.want)
		}
	}
}

func TestRegexMatcherScan(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/a.rs", "fn a() {\n    let t = SystemTime::now();\n}\n")
	writeFile(t, root, "src/b.rs", "fn b() {}\n")
	writeFile(t, root, "src/c.rs", "// one\nstate.connected_at = std::time::SystemTime::now();\n// three\nlet x = SystemTime::now();\n")
	writeFile(t, root, "notes.txt", "SystemTime::now()\n")

	matcher := &RegexMatcher{}
	occurrences, err := matcher.Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}

	if len(occurrences) != 3 {
		t.Fatalf("expected 3 occurrences, got %d: %v", len(occurrences), occurrences)
	}

	byKey := make(map[string]Occurrence)
	for _, occ := range occurrences {
		byKey[occ.Path] = occ
		if occ.Line < 1 {
			t.Errorf("line numbers must be 1-based, got %d", occ.Line)
		}
	}
	if occ, ok := byKey["src/a.rs"]; !ok || occ.Line != 2 {
		t.Errorf("expected src/a.rs line 2, got %+v", occ)
	}
	if _, ok := byKey["notes.txt"]; ok {
		t.Error("non-source file must not be scanned")
	}
}

func TestRegexMatcherIgnoresSourceNamedDirectories(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "ok.rs", "let t = SystemTime::now();\n")
	// A directory carrying the source extension must not be treated as a file.
	writeFile(t, root, "trap.rs/inner.txt", "SystemTime::now()\n")

	matcher := &RegexMatcher{}
	occurrences, err := matcher.Scan(root)
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(occurrences) != 1 || occurrences[0].Path != "ok.rs" {
		t.Errorf("expected just ok.rs, got %v", occurrences)
	}
}
