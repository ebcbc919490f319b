// Package discovery enumerates candidate test files for diagnostic output.
//
// Two independent mechanisms are used, mirroring what a CI engineer does
// by hand when a pipeline collects zero tests:
//
//   - the version-control view: `git ls-files`, which shows what a clean
//     CI checkout will actually contain;
//   - the filesystem view: a directory walk, which shows what exists on
//     the developer's disk.
//
// Comparing the two exposes the most common cause of "no tests collected"
// in CI — a test file that exists locally but was never committed.
//
// Discovery is strictly diagnostic. Every failure mode here (no git
// binary, not a repository, unreadable directory) is downgraded to an
// informational note in the report; it never fails the probe.
package discovery
