package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"clockfix/scanner"
)

// snapshot captures every file's content under root, keyed by relative path.
func snapshot(t *testing.T, root string) map[string]string {
	t.Helper()
	files := make(map[string]string)
	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info.IsDir() {
			return err
		}
		rel, _ := filepath.Rel(root, path)
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		files[rel] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("snapshot failed: %v", err)
	}
	return files
}

func TestRunEmptyTree(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs", "pub mod state;\n")
	writeFile(t, root, "src/state.rs", "pub struct State;\n")
	before := snapshot(t, root)

	report, err := Run(root, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Total() != 0 || len(report.Fixes) != 0 {
		t.Errorf("clean tree must report nothing, got %+v", report)
	}
	if _, err := os.Stat(filepath.Join(root, DefaultHelperPath)); !os.IsNotExist(err) {
		t.Error("clean tree must not receive a helper module")
	}
	after := snapshot(t, root)
	if len(after) != len(before) {
		t.Errorf("clean tree must stay untouched: %d files before, %d after", len(before), len(after))
	}
}

func TestRunDryRunWritesNothing(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs", "pub mod session;\n")
	writeFile(t, root, "src/session.rs", "created_at: SystemTime::now(),\n")
	writeFile(t, root, "src/handler.rs", "    let t = SystemTime::now();\n")
	before := snapshot(t, root)

	report, err := Run(root, Options{DryRun: true})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Count(scanner.StructField) != 1 {
		t.Errorf("dry run must still classify, got %+v", report.Buckets)
	}
	if len(report.ManualReview) != 1 {
		t.Errorf("dry run must surface manual-review cases, got %v", report.ManualReview)
	}
	after := snapshot(t, root)
	for rel, content := range before {
		if after[rel] != content {
			t.Errorf("dry run modified %s", rel)
		}
	}
	if len(after) != len(before) {
		t.Error("dry run created files")
	}
}

func TestRunFullPipeline(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs", "pub mod session;\npub mod transport;\n")
	writeFile(t, root, "src/session.rs", `impl Session {
    fn open() -> Self {
        Self {
            created_at: SystemTime::now(),
        }
    }
}
`)
	writeFile(t, root, "cli/src/debug.rs", `use std::time::{SystemTime, UNIX_EPOCH};

fn stamp() -> u64 {
    SystemTime::now().duration_since(UNIX_EPOCH)?.as_secs()
}
`)
	writeFile(t, root, "tests/clock.rs", `fn check() {
    let now = SystemTime::now();
}
`)
	writeFile(t, root, "src/transport.rs", `fn accept() {
    let connected = SystemTime::now();
}
`)

	report, err := Run(root, Options{})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	// Helper module exists and is registered.
	helper := readFile(t, root, DefaultHelperPath)
	if !strings.Contains(helper, "pub fn current_unix_timestamp()") {
		t.Error("helper module missing after run")
	}
	if !strings.Contains(readFile(t, root, "src/lib.rs"), "pub mod time_helpers;") {
		t.Error("helper module not registered in lib.rs")
	}

	// Each category got its treatment.
	if !strings.Contains(readFile(t, root, "src/session.rs"), "created_at: current_timestamp,") {
		t.Error("struct field not rewritten")
	}
	if !strings.Contains(readFile(t, root, "cli/src/debug.rs"), "current_unix_timestamp()") {
		t.Error("conversion chain not rewritten")
	}
	if !strings.Contains(readFile(t, root, "tests/clock.rs"), SuppressionAnnotation) {
		t.Error("test assignment not annotated")
	}
	if strings.Contains(readFile(t, root, "src/transport.rs"), SuppressionAnnotation) {
		t.Error("production assignment must not be annotated")
	}
	if len(report.ManualReview) != 1 || report.ManualReview[0].Path != filepath.Join("src", "transport.rs") {
		t.Errorf("production assignment must be queued for manual review, got %v", report.ManualReview)
	}
	if len(report.Fixes) == 0 {
		t.Error("fix log must not be empty after a fixing run")
	}
}

func TestRunMixedCategoriesInOneFile(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs", "pub mod state;\n")
	writeFile(t, root, "cli/src/debug.rs", `use std::time::{SystemTime, UNIX_EPOCH};

fn stamp() -> u64 {
    SystemTime::now().duration_since(UNIX_EPOCH)?.as_secs()
}

fn record() -> Event {
    Event {
        recorded_at: SystemTime::now(),
    }
}
`)

	if _, err := Run(root, Options{}); err != nil {
		t.Fatalf("first run failed: %v", err)
	}

	// Wrapper injection shifts lines below it, so the struct field must be
	// rewritten at its scanned line number within the same run.
	updated := readFile(t, root, "cli/src/debug.rs")
	if !strings.Contains(updated, "recorded_at: current_timestamp,") {
		t.Errorf("struct field in a conversion file must rewrite on the first run, got:\n%s", updated)
	}
	if strings.Contains(updated, "duration_since(UNIX_EPOCH)?") {
		t.Errorf("conversion chain must rewrite in the same run, got:\n%s", updated)
	}

	second, err := Run(root, Options{})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}
	if second.FilesChanged != 0 {
		t.Errorf("second run must write nothing, changed %d files: %v", second.FilesChanged, second.Fixes)
	}
	if got := readFile(t, root, "cli/src/debug.rs"); got != updated {
		t.Errorf("file differs after second run:\n%s", got)
	}
}

func TestRunIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs", "pub mod session;\n")
	writeFile(t, root, "src/session.rs", "        created_at: SystemTime::now(),\n")
	writeFile(t, root, "cli/main.rs", `use std::time::{SystemTime, UNIX_EPOCH};

fn ms() -> u128 {
    SystemTime::now().duration_since(UNIX_EPOCH).unwrap().as_millis()
}
`)
	writeFile(t, root, "tests/clock.rs", "    let now = SystemTime::now();\n")

	if _, err := Run(root, Options{}); err != nil {
		t.Fatalf("first run failed: %v", err)
	}
	first := snapshot(t, root)

	second, err := Run(root, Options{})
	if err != nil {
		t.Fatalf("second run failed: %v", err)
	}

	if second.FilesChanged != 0 {
		t.Errorf("second run must write nothing, changed %d files: %v", second.FilesChanged, second.Fixes)
	}
	for rel, content := range snapshot(t, root) {
		if first[rel] != content {
			t.Errorf("file %s differs after second run", rel)
		}
	}
}
