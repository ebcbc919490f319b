// Package cli — discover.go implements the "ci-probe discover" command.
//
// The discover command runs only the diagnostic part of the probe: the
// two-mechanism test-file enumeration. It always exits 0 — absence of
// matches is information, not an error — which lets CI pipelines add it
// as a log-only step without affecting job status.
package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/ci-probe/internal/config"
	"github.com/mmr-tortoise/ci-probe/internal/discovery"
	"github.com/mmr-tortoise/ci-probe/internal/model"
)

// discoverFlags holds the flag values for the discover command.
type discoverFlags struct {
	// patterns overrides the test-file globs from config/defaults.
	patterns []string
}

// NewDiscoverCommand creates the "discover" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewDiscoverCommand() *cobra.Command {
	flags := &discoverFlags{}

	cmd := &cobra.Command{
		Use:   "discover [dir]",
		Short: "Enumerate candidate test files without running collection",
		Long: `Enumerate candidate test files through two independent mechanisms:
the git index (what a clean CI checkout will contain) and a filesystem
walk (what exists on this machine). Files found on disk but missing from
the index are flagged — they are invisible to CI.

discover always exits 0; finding nothing is a finding.

Examples:
  ci-probe discover
  ci-probe discover path/to/repo
  ci-probe discover --pattern 'test_*.py' --pattern 'check_*.py'
  ci-probe discover --json`,

		Args: cobra.MaximumNArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runDiscover(dir, flags)
		},
	}

	cmd.Flags().StringArrayVar(&flags.patterns, "pattern", nil,
		"Test filename glob (repeatable; default: from config, else test_*.py, *_test.py)")

	return cmd
}

// runDiscover is the main logic function for the discover command.
func runDiscover(dirArg string, flags *discoverFlags) error {
	dir, err := resolveDir(dirArg)
	if err != nil {
		return err
	}
	VerboseLog("Discovering test files in: %s", dir)

	// Config errors stay fatal here: discovery itself never fails, but a
	// config the user wrote and broke should not be silently ignored.
	cfg, err := config.Load(dir)
	if err != nil {
		return err
	}

	patterns := cfg.Patterns
	if len(flags.patterns) > 0 {
		patterns = flags.patterns
	}

	report := discovery.Enumerate(dir, patterns, cfg.SkipDirs)

	if IsJSONOutput() {
		data, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	printDiscoveryText(os.Stdout, report)
	return nil
}

// printDiscoveryText renders the discovery report as human-readable text.
// It is shared by the discover command and the probe command's diagnostic
// section.
func printDiscoveryText(w io.Writer, report *model.DiscoveryReport) {
	fmt.Fprintf(w, "Test file discovery (patterns: %s)\n", joinPatterns(report.Patterns))

	if report.GitError != "" {
		fmt.Fprintf(w, "  git index:  unavailable (%s)\n", report.GitError)
	} else {
		fmt.Fprintf(w, "  git index:  %d file(s)\n", len(report.GitFiles))
		for _, f := range report.GitFiles {
			fmt.Fprintf(w, "    %s\n", f)
		}
	}

	if report.WalkError != "" {
		fmt.Fprintf(w, "  filesystem: unavailable (%s)\n", report.WalkError)
	} else {
		fmt.Fprintf(w, "  filesystem: %d file(s)\n", len(report.WalkFiles))
		for _, f := range report.WalkFiles {
			fmt.Fprintf(w, "    %s\n", f)
		}
	}

	if len(report.Untracked) > 0 {
		fmt.Fprintf(w, "  warning: %d file(s) on disk but not in the git index — invisible to a clean CI checkout:\n",
			len(report.Untracked))
		for _, f := range report.Untracked {
			fmt.Fprintf(w, "    %s\n", f)
		}
	}

	if report.Empty() {
		fmt.Fprintln(w, "  no candidate test files found by either mechanism")
	}

	fmt.Fprintln(w)
}

// joinPatterns renders the pattern list for display, with a placeholder
// for the pathological empty case.
func joinPatterns(patterns []string) string {
	if len(patterns) == 0 {
		return "(none)"
	}
	out := patterns[0]
	for _, p := range patterns[1:] {
		out += ", " + p
	}
	return out
}
