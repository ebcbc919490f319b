// Package cli — probe_test.go contains unit tests for the pure formatting
// and path-resolution helpers used by the probe and discover commands.
//
// These tests verify data transformation logic without requiring pytest,
// git, or a Docker daemon.
package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/ci-probe/internal/model"
)

// TestFormatResultLine verifies the one-line verdict for each terminal
// outcome, including that failure messages carry the forwarded exit code.
func TestFormatResultLine(t *testing.T) {
	tests := []struct {
		name   string
		result model.CollectionResult
		want   string
	}{
		{
			name: "collected with count",
			result: model.CollectionResult{
				ExitCode:  0,
				Outcome:   model.OutcomeCollected,
				Collected: 7,
			},
			want: "OK: collected 7 test(s) (exit code 0)",
		},
		{
			name: "collected without count",
			result: model.CollectionResult{
				ExitCode:  0,
				Outcome:   model.OutcomeCollected,
				Collected: -1,
			},
			want: "OK: tests collected (exit code 0)",
		},
		{
			name: "no tests is a warning, not an error",
			result: model.CollectionResult{
				ExitCode:  5,
				Outcome:   model.OutcomeNoTests,
				Collected: 0,
			},
			want: "Warning: no tests were collected (exit code 5)",
		},
		{
			name: "failure names the forwarded code",
			result: model.CollectionResult{
				ExitCode:  2,
				Outcome:   model.OutcomeFailed,
				Collected: -1,
			},
			want: "Collection failed with exit code 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatResultLine(tt.result))
		})
	}
}

// TestPrintDiscoveryText verifies the diagnostic rendering for the key
// report shapes: normal, untracked files, git unavailable, and empty.
func TestPrintDiscoveryText(t *testing.T) {
	t.Run("tracked and untracked", func(t *testing.T) {
		var buf bytes.Buffer
		printDiscoveryText(&buf, &model.DiscoveryReport{
			Patterns:  []string{"test_*.py", "*_test.py"},
			GitFiles:  []string{"tests/test_basic.py"},
			WalkFiles: []string{"tests/test_basic.py", "tests/test_new.py"},
			Untracked: []string{"tests/test_new.py"},
		})

		out := buf.String()
		assert.Contains(t, out, "git index:  1 file(s)")
		assert.Contains(t, out, "filesystem: 2 file(s)")
		assert.Contains(t, out, "not in the git index")
		assert.Contains(t, out, "tests/test_new.py")
	})

	t.Run("git unavailable is informational", func(t *testing.T) {
		var buf bytes.Buffer
		printDiscoveryText(&buf, &model.DiscoveryReport{
			Patterns:  []string{"test_*.py"},
			WalkFiles: []string{"tests/test_basic.py"},
			GitError:  "git ls-files -z: not a git repository",
		})

		out := buf.String()
		assert.Contains(t, out, "git index:  unavailable")
		assert.NotContains(t, out, "Error", "discovery problems are notes, not errors")
	})

	t.Run("empty report prints fallback", func(t *testing.T) {
		var buf bytes.Buffer
		printDiscoveryText(&buf, &model.DiscoveryReport{
			Patterns: []string{"test_*.py"},
		})

		assert.Contains(t, buf.String(), "no candidate test files found by either mechanism")
	})
}

// TestJoinPatterns verifies the pattern-list rendering.
func TestJoinPatterns(t *testing.T) {
	assert.Equal(t, "(none)", joinPatterns(nil))
	assert.Equal(t, "test_*.py", joinPatterns([]string{"test_*.py"}))
	assert.Equal(t, "test_*.py, *_test.py", joinPatterns([]string{"test_*.py", "*_test.py"}))
}

// TestResolveDir verifies directory resolution and its error cases.
func TestResolveDir(t *testing.T) {
	t.Run("existing directory resolves to absolute", func(t *testing.T) {
		dir := t.TempDir()
		got, err := resolveDir(dir)
		require.NoError(t, err)
		assert.True(t, filepath.IsAbs(got))
	})

	t.Run("empty argument uses working directory", func(t *testing.T) {
		got, err := resolveDir("")
		require.NoError(t, err)
		cwd, _ := os.Getwd()
		assert.Equal(t, cwd, got)
	})

	t.Run("missing directory is a general error", func(t *testing.T) {
		_, err := resolveDir(filepath.Join(t.TempDir(), "nope"))
		require.Error(t, err)

		var cliErr *model.CLIError
		require.True(t, errors.As(err, &cliErr))
		assert.Equal(t, model.ExitGeneralError, cliErr.Code)
	})

	t.Run("file is not a directory", func(t *testing.T) {
		dir := t.TempDir()
		file := filepath.Join(dir, "plain.txt")
		require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

		_, err := resolveDir(file)
		require.Error(t, err)

		var cliErr *model.CLIError
		require.True(t, errors.As(err, &cliErr))
		assert.Equal(t, model.ExitGeneralError, cliErr.Code)
	})
}

// TestForwardExitError verifies that the classified exit code survives
// the trip through the error interface.
func TestForwardExitError(t *testing.T) {
	err := &forwardExitError{code: 5}
	assert.Equal(t, "exit code 5", err.Error())

	var fwd *forwardExitError
	require.True(t, errors.As(error(err), &fwd))
	assert.Equal(t, 5, fwd.code)
}
