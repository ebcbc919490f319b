// runner.go runs the collection command as a child process and turns the
// result into a classified CollectionResult.
package runner

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"syscall"
	"time"

	"github.com/mmr-tortoise/ci-probe/internal/model"
)

// Run executes the profile's collection command in dir and classifies the
// result.
//
// The returned error is non-nil only for probe-infrastructure failures:
// the runner binary missing from PATH (ExitEnvError) or the context
// deadline expiring (ExitGeneralError). A collection process that starts
// and exits — with any status — is a successful probe step and yields a
// CollectionResult, never an error; interpreting the status is the
// classification's job.
func Run(ctx context.Context, dir string, profile model.RunnerProfile) (*model.CollectionResult, error) {
	// CommandContext kills the child process when ctx is cancelled or
	// its deadline expires, bounding the collection wall-clock time.
	// #nosec G204 — the command comes from the validated runner profile
	cmd := exec.CommandContext(ctx, profile.Command, profile.Args...)
	cmd.Dir = dir

	start := time.Now()

	// CombinedOutput interleaves stdout and stderr the way a CI log
	// would show them, which is exactly what the diagnostic passthrough
	// should reproduce.
	output, err := cmd.CombinedOutput()
	duration := time.Since(start)

	exitCode := 0
	if err != nil {
		// Distinguish "the process ran and failed" from "the process
		// never ran". Only the former carries a classifiable exit code.
		var exitErr *exec.ExitError
		switch {
		case ctx.Err() != nil:
			// Context cancellation or timeout. The child was killed, so
			// its exit status is an artifact of the signal, not a
			// framework classification.
			return nil, model.WrapCLIError(model.ExitGeneralError,
				fmt.Sprintf("collection did not finish: %v", ctx.Err()), err)

		case errors.As(err, &exitErr):
			exitCode = exitErr.ExitCode()
			// A child killed by a signal has no exit code of its own;
			// ExitCode() reports -1, which os.Exit would truncate to an
			// unrelated 255. The shell reports such deaths as 128+signal
			// (137 for SIGKILL, the OOM-killer's signature in CI), so
			// forward that convention to keep the code meaningful.
			if ws, ok := exitErr.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
				exitCode = 128 + int(ws.Signal())
			}

		default:
			// Start failure: binary not found, not executable, etc.
			return nil, model.WrapCLIError(model.ExitEnvError,
				fmt.Sprintf("failed to run %q — is it installed and on PATH?", profile.Command), err)
		}
	}

	return &model.CollectionResult{
		ExitCode:  exitCode,
		Outcome:   Classify(exitCode, profile.NoTestsExitCode),
		Collected: ParseCollectedCount(string(output)),
		Output:    string(output),
		Duration:  duration,
	}, nil
}
