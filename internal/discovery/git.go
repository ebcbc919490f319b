// git.go implements the version-control side of test-file enumeration.
//
// It shells out to `git ls-files` rather than using a Go Git library
// because the point of this mechanism is to reproduce exactly what a CI
// checkout sees, and `git ls-files` is the authoritative answer from the
// same binary CI uses.
package discovery

import (
	"fmt"
	"os/exec"
	"strings"
)

// ListTracked returns the git-tracked paths under dir that match any of
// the given test-file patterns. Paths are slash-separated and relative to
// dir, exactly as git reports them.
//
// Unlike the rest of the CLI, errors here are returned raw (not wrapped
// in CLIError): the caller records them as informational diagnostics
// because the git view being unavailable must never fail the probe.
func ListTracked(dir string, patterns []string) ([]string, error) {
	output, err := runGit(dir, "ls-files", "-z")
	if err != nil {
		return nil, err
	}

	// -z terminates each path with NUL, which is safe against newlines
	// and other unusual characters in file names.
	var matches []string
	for _, path := range strings.Split(output, "\x00") {
		if path == "" {
			continue
		}
		if MatchesAny(path, patterns) {
			matches = append(matches, path)
		}
	}
	return matches, nil
}

// runGit executes a git command with the given arguments against the
// repository containing dir.
//
// The dir parameter is passed to git via the -C flag, which causes git
// to change to that directory before doing anything else. This avoids
// changing the process's working directory.
func runGit(dir string, args ...string) (string, error) {
	fullArgs := append([]string{"-C", dir}, args...)

	// #nosec G204 — args are constructed internally, not from user input
	cmd := exec.Command("git", fullArgs...)

	// Capture stdout and stderr separately so we can include stderr
	// in error messages while returning stdout on success.
	var stdout, stderr strings.Builder
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		stderrStr := strings.TrimSpace(stderr.String())
		if stderrStr != "" {
			return "", fmt.Errorf("git %s: %s", strings.Join(args, " "), stderrStr)
		}
		return "", fmt.Errorf("git %s: %w", strings.Join(args, " "), err)
	}

	return stdout.String(), nil
}
