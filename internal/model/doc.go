// Package model defines the domain types and value objects for the
// ci-probe CLI.
//
// This package contains pure data structures with no external dependencies.
// All entities (ProbeReport, DiscoveryReport, RunnerProfile, etc.) are
// transient representations built during a single probe invocation — there
// are no persistent state files.
//
// The package also defines exit codes (ExitCode) and a custom error type
// (CLIError) that carries exit codes for proper OS process exit handling.
package model
