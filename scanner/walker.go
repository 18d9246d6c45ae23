package scanner

import (
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	ignore "github.com/sabhiram/go-gitignore"
)

// SourceExt is the extension of files eligible for scanning and rewriting.
const SourceExt = ".rs"

// IgnoredDirs are directories to skip during scanning
var IgnoredDirs = map[string]bool{
	".git":          true,
	"node_modules":  true,
	"vendor":        true,
	"build":         true,
	".idea":         true,
	".vscode":       true,
	"__pycache__":   true,
	".DS_Store":     true,
	"venv":          true,
	".venv":         true,
	".pytest_cache": true,
	"dist":          true,
	"target":        true,
	".gradle":       true,
	".cargo":        true,
}

// WarnFunc receives per-file recoverable problems (unreadable files etc.).
type WarnFunc func(path string, err error)

// LoadGitignore loads .gitignore from root if it exists
func LoadGitignore(root string) *ignore.GitIgnore {
	gitignorePath := filepath.Join(root, ".gitignore")

	if _, err := os.Stat(gitignorePath); err == nil {
		if gitignore, err := ignore.CompileIgnoreFile(gitignorePath); err == nil {
			return gitignore
		}
	}

	return nil
}

// ListSourceFiles walks the directory tree and returns the relative paths of
// all files carrying SourceExt, honoring IgnoredDirs and .gitignore.
func ListSourceFiles(root string, gitignore *ignore.GitIgnore) ([]string, error) {
	var files []string

	err := filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}

		if info.IsDir() {
			if IgnoredDirs[info.Name()] {
				return filepath.SkipDir
			}
			if gitignore != nil && gitignore.MatchesPath(relPath) {
				return filepath.SkipDir
			}
			return nil
		}

		if IgnoredDirs[info.Name()] {
			return nil
		}
		if gitignore != nil && gitignore.MatchesPath(relPath) {
			return nil
		}
		if filepath.Ext(path) != SourceExt {
			return nil
		}

		files = append(files, relPath)
		return nil
	})

	return files, err
}

// ReadFileText reads a file as text. Invalid UTF-8 sequences are replaced so
// that line scanning never fails on stray bytes; truly unreadable files
// surface the underlying error to the caller.
func ReadFileText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	if utf8.Valid(data) {
		return string(data), nil
	}
	return strings.ToValidUTF8(string(data), string(utf8.RuneError)), nil
}

// SplitLines splits content into lines without the trailing newline of each.
// A trailing newline in the file does not produce a phantom empty line.
func SplitLines(content string) []string {
	lines := strings.Split(content, "\n")
	if len(lines) > 0 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
