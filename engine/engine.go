package engine

import (
	"fmt"

	"clockfix/scanner"
)

// Options configures one engine run.
type Options struct {
	DryRun     bool   // classify and report only, write nothing
	Structural bool   // prefer the ast-grep matcher when available
	DiffRef    string // when set, restrict the run to files changed vs this ref
	HelperPath string // project-relative helper module path
	ExportPath string // project-relative export file path
	Progress   func(stage, detail string)
}

func (o *Options) helperPath() string {
	if o.HelperPath == "" {
		return DefaultHelperPath
	}
	return o.HelperPath
}

func (o *Options) exportPath() string {
	if o.ExportPath == "" {
		return DefaultExportPath
	}
	return o.ExportPath
}

func (o *Options) progress(stage, detail string) {
	if o.Progress != nil {
		o.Progress(stage, detail)
	}
}

// Run executes the full pipeline over root: match, classify, ensure the
// helper module, rewrite per category, report. Per-file failures become
// report warnings; only a failed scan of the tree itself is an error.
//
// The run is single-writer: it assumes nothing else mutates the tree while
// it executes. A second run over the same tree is a no-op.
func Run(root string, opts Options) (*Report, error) {
	report := NewReport(root)
	report.DryRun = opts.DryRun

	var matcher scanner.Matcher
	if opts.Structural {
		astMatcher := scanner.NewAstGrepMatcher()
		if astMatcher.Available() {
			matcher = astMatcher
		} else {
			report.Warn("ast-grep binary not found, using regex matcher")
		}
	}
	if matcher == nil {
		matcher = &scanner.RegexMatcher{Warn: func(path string, err error) {
			report.Warn("read %s: %v", path, err)
		}}
	}

	opts.progress("scan", root)
	occurrences, err := matcher.Scan(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}

	if opts.DiffRef != "" {
		changed, err := scanner.GitDiffFiles(root, opts.DiffRef)
		if err != nil {
			return nil, fmt.Errorf("git diff vs %s: %w", opts.DiffRef, err)
		}
		occurrences = scanner.FilterToChanged(occurrences, changed)
	}

	opts.progress("classify", fmt.Sprintf("%d occurrences", len(occurrences)))
	report.Buckets = Classify(occurrences)

	// A clean tree stays untouched: no helper, no registration, no writes.
	if len(occurrences) == 0 || opts.DryRun {
		for _, occ := range report.Buckets[scanner.DirectAssignment] {
			if !IsTestOrUtilPath(occ.Path) {
				report.ManualReview = append(report.ManualReview, occ)
			}
		}
		opts.progress("done", "")
		return report, nil
	}

	// The helper must exist before any rewriter references its symbols.
	opts.progress("inject", opts.helperPath())
	if err := EnsureHelperModule(root, opts.helperPath(), opts.exportPath(), report); err != nil {
		return nil, err
	}

	// Line-addressed rewriters run before the conversion rewriter: injecting
	// the local wrapper shifts every line below it, which would invalidate
	// the captured line numbers of struct-field and assignment occurrences
	// in the same file. Conversions match on content, never on line numbers.
	opts.progress("rewrite", string(scanner.StructField))
	RewriteStructFields(root, report.Buckets[scanner.StructField], report)
	opts.progress("rewrite", string(scanner.DirectAssignment))
	RewriteAssignments(root, report.Buckets[scanner.DirectAssignment], report)
	opts.progress("rewrite", string(scanner.TimestampConversion))
	RewriteConversions(root, report.Buckets[scanner.TimestampConversion], report)

	opts.progress("done", "")
	return report, nil
}
