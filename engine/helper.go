package engine

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Default project-relative locations for the helper module and the export
// file it is registered in. Overridable for workspaces with nested crates.
const (
	DefaultHelperPath = "src/time_helpers.rs"
	DefaultExportPath = "src/lib.rs"
)

// helperModuleSource is the fixed content of the canonical helper module.
// It is a versioned constant: the injector compares byte-for-byte against
// any existing file, so re-creation is always a no-op after the first run.
const helperModuleSource = `//! Canonical wall-clock access.
//!
//! These helpers are the only approved call sites for the system wall clock.
//! All other code receives time as an explicit value or calls one of these.

use std::time::{SystemTime, UNIX_EPOCH};

/// Current unix timestamp in whole seconds.
pub fn current_unix_timestamp() -> u64 {
    // approved-call-site: SystemTime::now
    SystemTime::now()
        .duration_since(UNIX_EPOCH)
        .map(|d| d.as_secs())
        .unwrap_or(0)
}

/// Current unix timestamp in milliseconds.
pub fn current_unix_timestamp_millis() -> u128 {
    // approved-call-site: SystemTime::now
    SystemTime::now()
        .duration_since(UNIX_EPOCH)
        .map(|d| d.as_millis())
        .unwrap_or(0)
}

/// Current system time as an opaque value, for APIs that require one.
pub fn current_system_time() -> SystemTime {
    // approved-call-site: SystemTime::now
    SystemTime::now()
}
`

// EnsureHelperModule idempotently creates the helper module and registers it
// in the project's export file. It must complete before any rewriter runs so
// rewritten call sites can reference the helper symbols.
func EnsureHelperModule(root, helperPath, exportPath string, report *Report) error {
	absHelper := filepath.Join(root, helperPath)
	report.HelperPath = helperPath

	existing, err := os.ReadFile(absHelper)
	switch {
	case err == nil && string(existing) == helperModuleSource:
		// Fixed point: nothing to write.
	case err == nil || os.IsNotExist(err):
		if mkErr := os.MkdirAll(filepath.Dir(absHelper), 0755); mkErr != nil {
			return fmt.Errorf("create helper directory: %w", mkErr)
		}
		if wrErr := os.WriteFile(absHelper, []byte(helperModuleSource), 0644); wrErr != nil {
			return fmt.Errorf("write helper module: %w", wrErr)
		}
		if err == nil {
			report.AddFix("restored helper module %s to canonical content", helperPath)
		} else {
			report.AddFix("created helper module %s", helperPath)
		}
		report.FilesChanged++
	default:
		return fmt.Errorf("read helper module: %w", err)
	}

	return registerModule(root, helperPath, exportPath, report)
}

// registerModule inserts the module-export line into the export file after
// the last existing export line, or at the top when none exist. Detection is
// by exact-string presence, so repeated runs append nothing.
func registerModule(root, helperPath, exportPath string, report *Report) error {
	modName := strings.TrimSuffix(filepath.Base(helperPath), ".rs")
	exportLine := "pub mod " + modName + ";"

	absExport := filepath.Join(root, exportPath)
	data, err := os.ReadFile(absExport)
	if err != nil {
		// The tool never creates files beyond the helper module itself;
		// a missing export file means registration is up to the operator.
		report.Warn("export file %s missing, register %q manually", exportPath, exportLine)
		return nil
	}

	content := string(data)
	if strings.Contains(content, exportLine) {
		return nil
	}

	lines := strings.Split(content, "\n")
	insertAt := 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "pub mod ") || strings.HasPrefix(trimmed, "mod ") {
			insertAt = i + 1
		}
	}

	updated := make([]string, 0, len(lines)+1)
	updated = append(updated, lines[:insertAt]...)
	updated = append(updated, exportLine)
	updated = append(updated, lines[insertAt:]...)

	if wrErr := os.WriteFile(absExport, []byte(strings.Join(updated, "\n")), 0644); wrErr != nil {
		return fmt.Errorf("register module in %s: %w", exportPath, wrErr)
	}
	report.AddFix("registered %q in %s", exportLine, exportPath)
	report.FilesChanged++
	return nil
}
