package engine

import (
	"fmt"

	"clockfix/scanner"
)

// Report accumulates everything a run observed and changed. It is owned by
// the pipeline and returned to the caller; nothing in the engine keeps
// process-wide state, so runs are re-entrant.
type Report struct {
	Root         string                                    `json:"root"`
	DryRun       bool                                      `json:"dry_run,omitempty"`
	Buckets      map[scanner.Category][]scanner.Occurrence `json:"buckets"`
	Fixes        []string                                  `json:"fixes,omitempty"`
	ManualReview []scanner.Occurrence                      `json:"manual_review,omitempty"`
	Warnings     []string                                  `json:"warnings,omitempty"`
	FilesChanged int                                       `json:"files_changed"`
	HelperPath   string                                    `json:"helper_path,omitempty"`
}

// NewReport creates an empty report for a run rooted at root.
func NewReport(root string) *Report {
	return &Report{
		Root:    root,
		Buckets: make(map[scanner.Category][]scanner.Occurrence),
	}
}

// AddFix appends one human-readable fix description in application order.
func (r *Report) AddFix(format string, args ...any) {
	r.Fixes = append(r.Fixes, fmt.Sprintf(format, args...))
}

// Warn records a recoverable per-file problem. Warnings never abort a run.
func (r *Report) Warn(format string, args ...any) {
	r.Warnings = append(r.Warnings, fmt.Sprintf(format, args...))
}

// Count returns the number of occurrences in one category bucket.
func (r *Report) Count(cat scanner.Category) int {
	return len(r.Buckets[cat])
}

// Total returns the number of occurrences across all buckets.
func (r *Report) Total() int {
	total := 0
	for _, occs := range r.Buckets {
		total += len(occs)
	}
	return total
}
