// Package model defines the domain types for the ci-probe CLI.
//
// The central concept is the probe outcome: a single test-collection run
// is classified into exactly one of three terminal outcomes based on the
// collection process's exit code. The classification is the CLI contract —
// the probe's own exit code always equals the classified code, never a
// remapped value.
package model

import (
	"fmt"
	"strings"
	"time"
)

// Outcome represents the terminal classification of a collection run.
// Every probe invocation that reaches the collection step ends in exactly
// one of these states:
//
//	Collected → the framework found at least one test (exit 0)
//	NoTests   → the framework's reserved "nothing collected" status (exit 5 for pytest)
//	Failed    → any other non-zero status, forwarded verbatim
type Outcome string

const (
	// OutcomeCollected indicates collection succeeded and at least one
	// test was discovered. The probe exits 0.
	OutcomeCollected Outcome = "collected"

	// OutcomeNoTests indicates the test framework reported its reserved
	// "no tests collected" status. This is a warning, not a failure — the
	// probe exits with the same sentinel code so the calling pipeline can
	// decide policy (e.g., treat an empty test suite as non-fatal).
	OutcomeNoTests Outcome = "no-tests"

	// OutcomeFailed indicates a genuine collection failure such as an
	// import error or a syntax error in a test module. The probe forwards
	// the collection process's exit code verbatim.
	OutcomeFailed Outcome = "failed"
)

// String returns the string representation of Outcome.
// This method satisfies the fmt.Stringer interface, enabling
// human-readable output in CLI commands and logging.
func (o Outcome) String() string {
	return string(o)
}

// IsValid checks whether the Outcome value is one of the
// predefined terminal outcomes.
func (o Outcome) IsValid() bool {
	switch o {
	case OutcomeCollected, OutcomeNoTests, OutcomeFailed:
		return true
	default:
		return false
	}
}

// ParseOutcome converts a string to an Outcome.
// Returns an error if the string does not match any valid outcome.
func ParseOutcome(s string) (Outcome, error) {
	outcome := Outcome(strings.ToLower(s))
	if !outcome.IsValid() {
		return "", fmt.Errorf("invalid outcome: %q (valid: collected, no-tests, failed)", s)
	}
	return outcome, nil
}

// RunnerProfile describes how to invoke a test framework's collection
// (dry-run) mode and how to interpret its exit codes.
//
// The built-in profile is pytest, whose convention reserves exit code 5
// for "no tests collected". A repo-level config file can override the
// command or define a different sentinel for another framework.
type RunnerProfile struct {
	// Name identifies the profile (e.g., "pytest").
	Name string `json:"name" yaml:"name"`

	// Command is the executable to invoke.
	Command string `json:"command" yaml:"command"`

	// Args are the arguments that put the framework into collect-only
	// mode. For pytest: ["--collect-only", "-q"].
	Args []string `json:"args" yaml:"args"`

	// NoTestsExitCode is the framework's reserved status for "zero tests
	// discovered during collection". Pytest uses 5.
	NoTestsExitCode int `json:"noTestsExitCode" yaml:"noTestsExitCode"`
}

// Argv returns the full command line (command + args) for display
// and for process invocation.
func (p RunnerProfile) Argv() []string {
	argv := make([]string, 0, len(p.Args)+1)
	argv = append(argv, p.Command)
	argv = append(argv, p.Args...)
	return argv
}

// Validate checks that the profile is usable: it must name a command and
// its sentinel code must be a plausible process exit code. A sentinel of 0
// would make success indistinguishable from an empty suite.
func (p RunnerProfile) Validate() error {
	if p.Command == "" {
		return fmt.Errorf("runner profile %q: command must not be empty", p.Name)
	}
	if p.NoTestsExitCode < 1 || p.NoTestsExitCode > 255 {
		return fmt.Errorf("runner profile %q: noTestsExitCode %d out of range (1-255)",
			p.Name, p.NoTestsExitCode)
	}
	return nil
}

// CollectionResult holds the raw outcome of one collection process run,
// before and after classification. Output is the combined stdout/stderr
// of the collection process — the probe passes it through for diagnostics
// but bases the classification solely on the exit code.
type CollectionResult struct {
	// ExitCode is the collection process's exit status.
	ExitCode int `json:"exitCode"`

	// Outcome is the classification of ExitCode against the profile's
	// sentinel. See Classify in the runner package.
	Outcome Outcome `json:"outcome"`

	// Collected is the number of tests the framework reported collecting,
	// parsed from its summary line. -1 when the count could not be parsed;
	// the count is advisory and never drives the classification.
	Collected int `json:"collected"`

	// Output is the combined stdout/stderr of the collection process.
	Output string `json:"output,omitempty"`

	// Duration is the wall-clock time the collection took.
	Duration time.Duration `json:"-"`
}

// ProbeReport is the top-level result of a probe invocation: the
// discovery diagnostics plus the classified collection result.
type ProbeReport struct {
	// Dir is the absolute path of the probed directory.
	Dir string `json:"dir"`

	// Runner is the name of the runner profile used.
	Runner string `json:"runner"`

	// Command is the full collection command line that was run.
	Command []string `json:"command"`

	// Container is the image the collection ran in, empty for a local run.
	Container string `json:"container,omitempty"`

	// Discovery holds the diagnostic enumeration results.
	// Nil when discovery was skipped (--no-discovery).
	Discovery *DiscoveryReport `json:"discovery,omitempty"`

	// Collection holds the classified collection result.
	Collection CollectionResult `json:"collection"`
}

// ExitCode returns the process exit code mandated by the classification:
// 0 for collected, the sentinel for no-tests, and the forwarded code for
// failed. This is the single place that maps outcome to exit status, so
// the "never remapped" property holds by construction.
func (r *ProbeReport) ExitCode() int {
	return r.Collection.ExitCode
}

// DiscoveryReport holds the results of the two independent test-file
// enumeration mechanisms. Discovery is purely diagnostic: any error here
// is recorded, reported, and never causes the probe itself to fail.
type DiscoveryReport struct {
	// Patterns are the filename globs used to identify test files.
	Patterns []string `json:"patterns"`

	// GitFiles are matching paths listed by the version-control index
	// (git ls-files). Paths are relative to the probed directory,
	// slash-separated as git reports them.
	GitFiles []string `json:"gitFiles"`

	// WalkFiles are matching paths found by the filesystem walk.
	// Same path convention as GitFiles so the two lists are comparable.
	WalkFiles []string `json:"walkFiles"`

	// Untracked are paths present on disk but absent from the git index —
	// the classic cause of a clean CI checkout collecting nothing.
	Untracked []string `json:"untracked,omitempty"`

	// GitError records why the git listing was unavailable (not a
	// repository, git binary missing). Informational only.
	GitError string `json:"gitError,omitempty"`

	// WalkError records a filesystem walk failure. Informational only.
	WalkError string `json:"walkError,omitempty"`
}

// Empty reports whether neither mechanism found any candidate test file.
func (d *DiscoveryReport) Empty() bool {
	return len(d.GitFiles) == 0 && len(d.WalkFiles) == 0
}

// ExitCode defines the CLI exit codes for probe-infrastructure failures —
// errors that occur before any collection classification exists. These are
// deliberately kept in the low range; once a collection has run, the probe
// exits with the classified code instead (see ProbeReport.ExitCode).
type ExitCode int

const (
	// ExitSuccess indicates the command completed successfully.
	ExitSuccess ExitCode = 0

	// ExitGeneralError indicates an unspecified error occurred
	// (bad arguments, timeout, I/O failure).
	ExitGeneralError ExitCode = 1

	// ExitConfigError indicates the repo-level config file is malformed
	// or describes an invalid runner profile.
	ExitConfigError ExitCode = 2

	// ExitEnvError indicates a required part of the environment is
	// unavailable: the runner binary is not on PATH, or the Docker
	// daemon is not reachable in container mode.
	ExitEnvError ExitCode = 3
)

// CLIError is a custom error type that carries an exit code.
// This allows the CLI layer to translate domain errors into
// appropriate process exit codes.
type CLIError struct {
	// Code is the exit code to return to the OS.
	Code ExitCode

	// Message is the human-readable error description.
	Message string

	// Err is the underlying error, if any.
	Err error
}

// Error satisfies the error interface. It returns the human-readable
// error message, optionally including the underlying error.
func (e *CLIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for use with errors.Is/errors.As.
// This follows Go's error wrapping convention introduced in Go 1.13.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// NewCLIError creates a new CLIError with the given exit code and message.
func NewCLIError(code ExitCode, message string) *CLIError {
	return &CLIError{Code: code, Message: message}
}

// WrapCLIError creates a new CLIError that wraps an existing error.
func WrapCLIError(code ExitCode, message string, err error) *CLIError {
	return &CLIError{Code: code, Message: message, Err: err}
}
