// Package runner invokes a test framework's collect-only mode and
// classifies its exit status.
//
// The classification contract is the core of ci-probe: exit 0 means tests
// were collected, the framework's reserved sentinel (pytest: 5) means the
// suite is empty, and every other non-zero status is a genuine collection
// failure whose code is forwarded verbatim to the calling pipeline.
//
// The framework's textual output is captured and passed through for
// diagnostics, and a best-effort collected-test count is parsed from the
// summary line, but the classification is driven solely by the exit code.
package runner
