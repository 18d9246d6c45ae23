package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("mkdir %s: %v", rel, err)
	}
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", rel, err)
	}
}

func readFile(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, rel))
	if err != nil {
		t.Fatalf("read %s: %v", rel, err)
	}
	return string(data)
}

func TestEnsureHelperModuleCreatesAndRegisters(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs", "pub mod journal;\npub mod state;\n\npub use state::State;\n")

	report := NewReport(root)
	if err := EnsureHelperModule(root, DefaultHelperPath, DefaultExportPath, report); err != nil {
		t.Fatalf("EnsureHelperModule failed: %v", err)
	}

	helper := readFile(t, root, DefaultHelperPath)
	for _, fn := range []string{"current_unix_timestamp", "current_unix_timestamp_millis", "current_system_time"} {
		if !strings.Contains(helper, "pub fn "+fn+"(") {
			t.Errorf("helper module missing %s", fn)
		}
	}
	if strings.Count(helper, "SystemTime::now()") != 3 {
		t.Errorf("helper must contain exactly one call per function, got:\n%s", helper)
	}

	lib := readFile(t, root, DefaultExportPath)
	lines := strings.Split(lib, "\n")
	idx := -1
	for i, line := range lines {
		if line == "pub mod time_helpers;" {
			idx = i
		}
	}
	if idx == -1 {
		t.Fatalf("registration line missing from lib.rs:\n%s", lib)
	}
	if lines[idx-1] != "pub mod state;" {
		t.Errorf("registration must follow the last export line, got position %d in:\n%s", idx, lib)
	}
	if len(report.Fixes) != 2 {
		t.Errorf("expected creation and registration fixes, got %v", report.Fixes)
	}
}

func TestEnsureHelperModuleIsIdempotent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs", "pub mod state;\n")

	if err := EnsureHelperModule(root, DefaultHelperPath, DefaultExportPath, NewReport(root)); err != nil {
		t.Fatal(err)
	}
	helperFirst := readFile(t, root, DefaultHelperPath)
	libFirst := readFile(t, root, DefaultExportPath)

	second := NewReport(root)
	if err := EnsureHelperModule(root, DefaultHelperPath, DefaultExportPath, second); err != nil {
		t.Fatal(err)
	}

	if readFile(t, root, DefaultHelperPath) != helperFirst {
		t.Error("helper module must be byte-identical after re-run")
	}
	if readFile(t, root, DefaultExportPath) != libFirst {
		t.Error("export file must not grow on re-run")
	}
	if len(second.Fixes) != 0 || second.FilesChanged != 0 {
		t.Errorf("re-run must be a no-op, got fixes %v", second.Fixes)
	}
}

func TestEnsureHelperModuleRestoresDivergedContent(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs", "pub mod state;\n")
	writeFile(t, root, DefaultHelperPath, "// stale hand edit\n")

	report := NewReport(root)
	if err := EnsureHelperModule(root, DefaultHelperPath, DefaultExportPath, report); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(readFile(t, root, DefaultHelperPath), "stale hand edit") {
		t.Error("diverged helper content must be restored to the canonical template")
	}
}

func TestEnsureHelperModuleRegistersAtTopWhenNoExports(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, "src/lib.rs", "pub use std::time::SystemTime;\n")

	if err := EnsureHelperModule(root, DefaultHelperPath, DefaultExportPath, NewReport(root)); err != nil {
		t.Fatal(err)
	}
	lib := readFile(t, root, DefaultExportPath)
	if !strings.HasPrefix(lib, "pub mod time_helpers;\n") {
		t.Errorf("with no existing export lines the registration goes to the top, got:\n%s", lib)
	}
}

func TestEnsureHelperModuleWarnsOnMissingExportFile(t *testing.T) {
	root := t.TempDir()

	report := NewReport(root)
	if err := EnsureHelperModule(root, DefaultHelperPath, DefaultExportPath, report); err != nil {
		t.Fatalf("missing export file is recoverable, got error: %v", err)
	}
	if len(report.Warnings) != 1 {
		t.Errorf("expected a warning about the missing export file, got %v", report.Warnings)
	}
	if _, err := os.Stat(filepath.Join(root, DefaultExportPath)); !os.IsNotExist(err) {
		t.Error("the tool must not create the export file itself")
	}
}
