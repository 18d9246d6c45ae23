package render

import (
	"fmt"
	"path/filepath"
	"strings"

	"clockfix/engine"
	"clockfix/scanner"
)

// previewLines caps how many occurrences are shown per category before the
// remainder is collapsed into a count.
const previewLines = 3

// Summary renders the run report to stdout: a header panel, per-category
// occurrence counts with short previews, the ordered fix list, and the
// manual-review reminders.
func Summary(report *engine.Report) {
	projectName := filepath.Base(report.Root)

	// Header panel (title in top border)
	statsLine := fmt.Sprintf("Occurrences: %d | Fixes: %d | Files changed: %d",
		report.Total(), len(report.Fixes), report.FilesChanged)
	if report.DryRun {
		statsLine = fmt.Sprintf("Occurrences: %d (dry run, nothing written)", report.Total())
	}

	innerWidth := GetTerminalWidth() - 2
	if innerWidth > 64 {
		innerWidth = 64
	}
	if len(statsLine)+4 > innerWidth {
		innerWidth = len(statsLine) + 4
	}
	titleLine := fmt.Sprintf(" %s ", projectName)
	padding := innerWidth - len(titleLine)
	leftPad := padding / 2
	rightPad := padding - leftPad
	fmt.Printf("╭%s%s%s╮\n", strings.Repeat("─", leftPad), titleLine, strings.Repeat("─", rightPad))
	fmt.Printf("│ %-*s │\n", innerWidth-2, statsLine)
	fmt.Printf("╰%s╯\n", strings.Repeat("─", innerWidth))

	// Per-category counts with a capped preview
	for _, cat := range scanner.Categories {
		occs := report.Buckets[cat]
		if len(occs) == 0 {
			continue
		}
		fmt.Printf("\n%s%s%s (%d)\n", BoldBlue, scanner.Display[cat], Reset, len(occs))
		for i, occ := range occs {
			if i == previewLines {
				fmt.Printf("  %s… and %d more%s\n", Dim, len(occs)-previewLines, Reset)
				break
			}
			fmt.Printf("  %s%s:%d%s %s\n", Cyan, occ.Path, occ.Line, Reset, strings.TrimSpace(occ.Text))
		}
	}

	if len(report.Fixes) > 0 {
		fmt.Printf("\n%sFixes applied:%s\n", Bold, Reset)
		for _, fix := range report.Fixes {
			fmt.Printf("  %s✓%s %s\n", Green, Reset, fix)
		}
	}

	if len(report.ManualReview) > 0 {
		fmt.Printf("\n%sNeeds manual review%s (production assignments require a threaded time parameter):\n", Yellow, Reset)
		for _, occ := range report.ManualReview {
			fmt.Printf("  %s⚠%s %s:%d %s\n", Yellow, Reset, occ.Path, occ.Line, strings.TrimSpace(occ.Text))
		}
	}

	if len(report.Warnings) > 0 {
		fmt.Printf("\n%sWarnings:%s\n", Yellow, Reset)
		for _, warning := range report.Warnings {
			fmt.Printf("  %s•%s %s\n", Yellow, Reset, warning)
		}
	}

	if report.Total() == 0 {
		fmt.Println("No wall-clock reads found. Tree is clean.")
	}
}
