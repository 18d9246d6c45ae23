package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"

	"clockfix/engine"
	"clockfix/render"
)

func main() {
	dryRun := flag.Bool("dry-run", false, "Scan and classify only, write nothing")
	jsonMode := flag.Bool("json", false, "Output the report as JSON")
	diffMode := flag.Bool("diff", false, "Only fix files changed vs a git ref (see --ref)")
	diffRef := flag.String("ref", "main", "Branch/ref to compare against (use with --diff)")
	structural := flag.Bool("structural", false, "Match with ast-grep instead of line regexes (needs ast-grep installed)")
	animate := flag.Bool("animate", false, "Show live pipeline progress (TTY only)")
	debugMode := flag.Bool("debug", false, "Show debug info on stderr")
	helperPath := flag.String("helper-path", engine.DefaultHelperPath, "Project-relative path of the helper module")
	exportPath := flag.String("export-path", engine.DefaultExportPath, "Project-relative path of the module-export file")
	helpMode := flag.Bool("help", false, "Show help")
	flag.Parse()

	if *helpMode {
		fmt.Println("clockfix - Rewrite SystemTime::now() call sites into explicit time values")
		fmt.Println()
		fmt.Println("Usage: clockfix [options] <project-root>")
		fmt.Println()
		fmt.Println("Options:")
		fmt.Println("  --dry-run            Scan and classify only, write nothing")
		fmt.Println("  --json               Output the report as JSON")
		fmt.Println("  --diff               Only fix files changed vs a git ref")
		fmt.Println("  --ref <branch>       Ref to compare against (default: main)")
		fmt.Println("  --structural         Match with ast-grep instead of line regexes")
		fmt.Println("  --animate            Show live pipeline progress")
		fmt.Println("  --helper-path <p>    Helper module path (default: src/time_helpers.rs)")
		fmt.Println("  --export-path <p>    Module-export file path (default: src/lib.rs)")
		fmt.Println()
		fmt.Println("Examples:")
		fmt.Println("  clockfix .                   # Fix the current tree")
		fmt.Println("  clockfix --dry-run ~/proj    # Report without touching files")
		fmt.Println("  clockfix --diff --ref dev .  # Only fix files changed vs dev")
		os.Exit(0)
	}

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: clockfix [options] <project-root>")
		os.Exit(1)
	}

	root := flag.Arg(0)
	absRoot, err := filepath.Abs(root)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error getting absolute path: %v\n", err)
		os.Exit(1)
	}
	if info, err := os.Stat(absRoot); err != nil || !info.IsDir() {
		fmt.Fprintf(os.Stderr, "Error: %s is not a directory\n", root)
		os.Exit(1)
	}

	opts := engine.Options{
		DryRun:     *dryRun,
		Structural: *structural,
		HelperPath: *helperPath,
		ExportPath: *exportPath,
	}
	if *diffMode {
		opts.DiffRef = *diffRef
	}
	if *debugMode {
		fmt.Fprintf(os.Stderr, "[debug] Root path: %s\n", absRoot)
		fmt.Fprintf(os.Stderr, "[debug] Helper module: %s (export file %s)\n", *helperPath, *exportPath)
		opts.Progress = func(stage, detail string) {
			fmt.Fprintf(os.Stderr, "[debug] %s %s\n", stage, detail)
		}
	}

	var report *engine.Report
	var runErr error
	if *animate && render.IsTTY() && !*jsonMode {
		if err := render.Progress(func(send func(stage, detail string)) {
			opts.Progress = send
			report, runErr = engine.Run(absRoot, opts)
		}); err != nil {
			fmt.Fprintf(os.Stderr, "Progress display error: %v\n", err)
		}
	} else {
		report, runErr = engine.Run(absRoot, opts)
	}

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", runErr)
		os.Exit(1)
	}
	if report == nil {
		os.Exit(1)
	}

	if *jsonMode {
		json.NewEncoder(os.Stdout).Encode(report)
	} else {
		render.Summary(report)
	}
}
