// walker.go implements the filesystem side of test-file enumeration and
// the comparison between the two views.
package discovery

import (
	"io/fs"
	"path"
	"path/filepath"
	"sort"

	"github.com/mmr-tortoise/ci-probe/internal/model"
)

// Walk returns the on-disk paths under dir that match any of the given
// test-file patterns, skipping directories whose name appears in skipDirs.
// Paths are slash-separated and relative to dir so they compare directly
// against git ls-files output.
//
// Unreadable subdirectories are skipped rather than aborting the walk —
// a permission error under one directory should not hide test files
// elsewhere in the tree.
func Walk(dir string, patterns, skipDirs []string) ([]string, error) {
	skip := make(map[string]bool, len(skipDirs))
	for _, name := range skipDirs {
		skip[name] = true
	}

	var matches []string
	err := filepath.WalkDir(dir, func(p string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			// Skip unreadable entries. If the error is on a directory,
			// SkipDir prevents WalkDir from retrying its children.
			if d != nil && d.IsDir() {
				return fs.SkipDir
			}
			return nil
		}

		if d.IsDir() {
			if p != dir && skip[d.Name()] {
				return fs.SkipDir
			}
			return nil
		}

		if !MatchesAny(d.Name(), patterns) {
			return nil
		}

		rel, relErr := filepath.Rel(dir, p)
		if relErr != nil {
			return nil
		}
		matches = append(matches, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Strings(matches)
	return matches, nil
}

// MatchesAny reports whether the file at relPath matches any of the
// filename patterns. Patterns are matched against the base name only
// ("test_*.py" matches "tests/unit/test_auth.py"), which mirrors pytest's
// own discovery convention.
func MatchesAny(relPath string, patterns []string) bool {
	base := path.Base(relPath)
	for _, pattern := range patterns {
		// path.Match can only fail on a malformed pattern; a malformed
		// pattern simply never matches.
		if ok, _ := path.Match(pattern, base); ok {
			return true
		}
	}
	return false
}

// Enumerate runs both mechanisms and builds the full diagnostic report.
// Each mechanism's failure is recorded on the report instead of being
// returned, so the caller can always print something useful.
func Enumerate(dir string, patterns, skipDirs []string) *model.DiscoveryReport {
	report := &model.DiscoveryReport{
		Patterns: patterns,
	}

	gitFiles, err := ListTracked(dir, patterns)
	if err != nil {
		report.GitError = err.Error()
	} else {
		sort.Strings(gitFiles)
		report.GitFiles = gitFiles
	}

	walkFiles, err := Walk(dir, patterns, skipDirs)
	if err != nil {
		report.WalkError = err.Error()
	} else {
		report.WalkFiles = walkFiles
	}

	// The untracked comparison is only meaningful when the git view is
	// available; without it every on-disk file would look untracked.
	if report.GitError == "" {
		report.Untracked = diffUntracked(report.GitFiles, report.WalkFiles)
	}

	return report
}

// diffUntracked returns the walk paths that are absent from the git
// index listing. Both inputs use the same relative slash-separated
// convention, so plain string comparison suffices.
func diffUntracked(gitFiles, walkFiles []string) []string {
	tracked := make(map[string]bool, len(gitFiles))
	for _, f := range gitFiles {
		tracked[f] = true
	}

	var untracked []string
	for _, f := range walkFiles {
		if !tracked[f] {
			untracked = append(untracked, f)
		}
	}
	return untracked
}
