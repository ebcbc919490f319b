// Package runner — runner_test.go exercises Run against real child
// processes, using the shell as a stand-in collection command so the
// tests do not require pytest.
package runner

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmr-tortoise/ci-probe/internal/model"
)

// shellProfile builds a runner profile that executes the given shell
// script, keeping the pytest sentinel of 5.
func shellProfile(script string) model.RunnerProfile {
	return model.RunnerProfile{
		Name:            "shell",
		Command:         "sh",
		Args:            []string{"-c", script},
		NoTestsExitCode: 5,
	}
}

// skipWithoutShell skips tests that need a POSIX shell.
func skipWithoutShell(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

// TestRunCollected verifies the success path: exit 0 with a parseable
// summary yields the collected outcome and the advisory count.
func TestRunCollected(t *testing.T) {
	skipWithoutShell(t)

	result, err := Run(context.Background(), t.TempDir(),
		shellProfile(`echo "2 tests collected in 0.01s"; exit 0`))
	require.NoError(t, err)

	assert.Equal(t, 0, result.ExitCode)
	assert.Equal(t, model.OutcomeCollected, result.Outcome)
	assert.Equal(t, 2, result.Collected)
	assert.Contains(t, result.Output, "2 tests collected")
}

// TestRunNoTests verifies the sentinel path: exit 5 yields the no-tests
// outcome with the code preserved for forwarding.
func TestRunNoTests(t *testing.T) {
	skipWithoutShell(t)

	result, err := Run(context.Background(), t.TempDir(),
		shellProfile(`echo "no tests ran in 0.00s"; exit 5`))
	require.NoError(t, err)

	assert.Equal(t, 5, result.ExitCode)
	assert.Equal(t, model.OutcomeNoTests, result.Outcome)
	assert.Equal(t, 0, result.Collected)
}

// TestRunFailed verifies that an arbitrary failure code is captured
// verbatim and classified as failed.
func TestRunFailed(t *testing.T) {
	skipWithoutShell(t)

	result, err := Run(context.Background(), t.TempDir(),
		shellProfile(`echo "ImportError: cannot import name 'missing'" >&2; exit 2`))
	require.NoError(t, err)

	assert.Equal(t, 2, result.ExitCode)
	assert.Equal(t, model.OutcomeFailed, result.Outcome)
	assert.Equal(t, -1, result.Collected)
	assert.Contains(t, result.Output, "ImportError", "stderr must be captured too")
}

// TestRunKilledBySignal verifies that a collection process killed by a
// signal (the shape of an OOM-killed pytest in CI) forwards the shell's
// 128+signal convention instead of the meaningless -1 from ExitCode().
func TestRunKilledBySignal(t *testing.T) {
	skipWithoutShell(t)

	result, err := Run(context.Background(), t.TempDir(),
		shellProfile("kill -9 $$"))
	require.NoError(t, err)

	assert.Equal(t, 137, result.ExitCode, "SIGKILL must forward as 128+9")
	assert.Equal(t, model.OutcomeFailed, result.Outcome)
}

// TestRunBinaryMissing verifies that a missing runner binary is an
// environment error, not a classification.
func TestRunBinaryMissing(t *testing.T) {
	profile := model.RunnerProfile{
		Name:            "ghost",
		Command:         "ci-probe-no-such-binary",
		NoTestsExitCode: 5,
	}

	_, err := Run(context.Background(), t.TempDir(), profile)
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitEnvError, cliErr.Code)
	assert.Contains(t, cliErr.Message, "ci-probe-no-such-binary")
}

// TestRunTimeout verifies that a context deadline kills the collection
// and surfaces as a general error rather than a forwarded exit code.
func TestRunTimeout(t *testing.T) {
	skipWithoutShell(t)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	_, err := Run(ctx, t.TempDir(), shellProfile("sleep 10"))
	require.Error(t, err)

	var cliErr *model.CLIError
	require.True(t, errors.As(err, &cliErr))
	assert.Equal(t, model.ExitGeneralError, cliErr.Code)
}
