package scanner

import (
	"os/exec"
	"path/filepath"
	"strings"
)

// GitDiffFiles returns files changed between the working tree and the given
// branch/ref, including untracked files not yet committed.
func GitDiffFiles(root, ref string) (map[string]bool, error) {
	changed := make(map[string]bool)

	cmd := exec.Command("git", "diff", "--name-only", ref)
	cmd.Dir = root
	output, err := cmd.Output()
	if err != nil {
		return nil, err
	}
	for _, line := range strings.Split(strings.TrimSpace(string(output)), "\n") {
		if line != "" {
			changed[line] = true
		}
	}

	cmd2 := exec.Command("git", "ls-files", "--others", "--exclude-standard")
	cmd2.Dir = root
	output2, _ := cmd2.Output()
	for _, line := range strings.Split(strings.TrimSpace(string(output2)), "\n") {
		if line != "" {
			changed[line] = true
		}
	}

	return changed, nil
}

// FilterToChanged keeps only occurrences in changed files. Git reports paths
// with forward slashes, so both separators are checked.
func FilterToChanged(occurrences []Occurrence, changed map[string]bool) []Occurrence {
	var result []Occurrence
	for _, occ := range occurrences {
		if changed[occ.Path] || changed[filepath.ToSlash(occ.Path)] {
			result = append(result, occ)
		}
	}
	return result
}
