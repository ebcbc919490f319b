// Package cli — probe.go implements the "ci-probe probe" command.
//
// The probe command is the primary operation. It reproduces, as a proper
// tool, what a CI debug step does by hand: enumerate candidate test files
// two independent ways for the log, run the test framework in collect-only
// mode, and classify the exit status into one of three terminal outcomes.
//
// Orchestration steps:
//  1. Resolve and validate the target directory
//  2. Load the optional repo-level config and resolve the runner profile
//  3. Run discovery diagnostics (unless --no-discovery)
//  4. Run the collection, locally or inside a container
//  5. Output the report (text or JSON) and exit with the classified code
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/mmr-tortoise/ci-probe/internal/config"
	"github.com/mmr-tortoise/ci-probe/internal/discovery"
	"github.com/mmr-tortoise/ci-probe/internal/docker"
	"github.com/mmr-tortoise/ci-probe/internal/model"
	"github.com/mmr-tortoise/ci-probe/internal/runner"
)

// probeFlags holds the flag values for the probe command.
// These are bound to cobra flags in NewProbeCommand.
type probeFlags struct {
	runnerName  string        // --runner: runner profile name
	timeout     time.Duration // --timeout: collection wall-clock bound
	noDiscovery bool          // --no-discovery: skip the enumeration diagnostics
	container   string        // --container: image to run the collection in
	pull        bool          // --pull: pull the image before running
}

// NewProbeCommand creates the "probe" cobra command.
// It is called from NewRootCommand to register as a subcommand.
func NewProbeCommand() *cobra.Command {
	flags := &probeFlags{}

	cmd := &cobra.Command{
		Use:   "probe [dir]",
		Short: "Run test collection and classify the result",
		Long: `Run the test framework in collect-only mode and classify the outcome.

Before collection, candidate test files are enumerated through the git
index and a filesystem walk. The two views are compared: a test file on
disk but missing from the index is the classic cause of CI collecting
nothing, and is called out explicitly.

The probe's exit code is the classification itself:
  0   tests collected
  5   no tests collected (pytest's reserved status, forwarded as a warning)
  N   any other collection failure, forwarded verbatim

Examples:
  ci-probe probe
  ci-probe probe path/to/repo
  ci-probe probe --runner pytest --timeout 2m
  ci-probe probe --container python:3.12-slim --pull
  ci-probe probe --json`,

		// The target directory is optional; it defaults to the current
		// working directory, matching the original CI debug step.
		Args: cobra.MaximumNArgs(1),

		// RunE is used instead of Run so we can return errors. Cobra will
		// pass them to the Execute error handler in root.go.
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runProbe(cmd.Context(), dir, flags)
		},
	}

	// Register command-specific flags.
	cmd.Flags().StringVar(&flags.runnerName, "runner", "", "Runner profile name (default: from config, else pytest)")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 5*time.Minute, "Collection wall-clock bound")
	cmd.Flags().BoolVar(&flags.noDiscovery, "no-discovery", false, "Skip the test-file enumeration diagnostics")
	cmd.Flags().StringVar(&flags.container, "container", "", "Run the collection inside this image (default: local run)")
	cmd.Flags().BoolVar(&flags.pull, "pull", false, "Pull the container image before running")

	return cmd
}

// runProbe is the main orchestration function for the probe command.
func runProbe(ctx context.Context, dirArg string, flags *probeFlags) error {
	// Step 1: Resolve the target directory.
	dir, err := resolveDir(dirArg)
	if err != nil {
		return err
	}
	VerboseLog("Probing directory: %s", dir)

	// Step 2: Load config and resolve the runner profile.
	cfg, err := config.Load(dir)
	if err != nil {
		return err // Load already returns CLIError with ExitConfigError
	}
	if cfg.Source != "" {
		VerboseLog("Loaded config: %s", cfg.Source)
	}

	profile, err := cfg.ResolveProfile(flags.runnerName)
	if err != nil {
		return err
	}
	VerboseLog("Runner profile: %s (%s)", profile.Name, strings.Join(profile.Argv(), " "))

	// A container image set in the config makes container mode the
	// default for this repo; the --container flag overrides it.
	image := flags.container
	if image == "" {
		image = cfg.Container
	}

	report := &model.ProbeReport{
		Dir:       dir,
		Runner:    profile.Name,
		Command:   profile.Argv(),
		Container: image,
	}

	// Step 3: Discovery diagnostics. Never fatal — Enumerate records
	// each mechanism's failure inside the report.
	if !flags.noDiscovery {
		report.Discovery = discovery.Enumerate(dir, cfg.Patterns, cfg.SkipDirs)
		if !IsJSONOutput() {
			printDiscoveryText(os.Stdout, report.Discovery)
		}
	}

	// Step 4: Run the collection with a bounded wall clock.
	runCtx, cancel := context.WithTimeout(ctx, flags.timeout)
	defer cancel()

	var result *model.CollectionResult
	if image != "" {
		result, err = runInContainer(runCtx, dir, image, profile, flags.pull)
	} else {
		result, err = runner.Run(runCtx, dir, profile)
	}
	if err != nil {
		return err
	}
	report.Collection = *result
	VerboseLog("Collection finished in %s with exit code %d", result.Duration.Round(time.Millisecond), result.ExitCode)

	// Step 5: Output the report and exit with the classified code.
	printProbeReport(report)
	if code := report.ExitCode(); code != 0 {
		return &forwardExitError{code: code}
	}
	return nil
}

// resolveDir turns the optional positional argument into an absolute,
// existing directory path.
func resolveDir(dirArg string) (string, error) {
	dir := dirArg
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", model.WrapCLIError(model.ExitGeneralError, "failed to get current directory", err)
		}
		dir = cwd
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("failed to resolve directory %q", dir), err)
	}

	info, err := os.Stat(abs)
	if err != nil {
		return "", model.WrapCLIError(model.ExitGeneralError,
			fmt.Sprintf("directory %q does not exist", dir), err)
	}
	if !info.IsDir() {
		return "", model.NewCLIError(model.ExitGeneralError,
			fmt.Sprintf("%q is not a directory", dir))
	}
	return abs, nil
}

// runInContainer executes the collection inside a one-shot container and
// adapts the result into the same CollectionResult shape a local run
// produces, so classification and reporting are identical for both modes.
func runInContainer(ctx context.Context, dir, image string, profile model.RunnerProfile, pull bool) (*model.CollectionResult, error) {
	cli, err := docker.NewClient()
	if err != nil {
		return nil, err // NewClient already returns CLIError with ExitEnvError
	}
	// defer ensures the Docker client is closed when this function returns,
	// releasing the underlying HTTP connection and resources.
	defer func() { _ = cli.Close() }()

	if err := cli.Ping(ctx); err != nil {
		return nil, err
	}
	VerboseLog("Connected to Docker daemon")

	start := time.Now()
	exitCode, output, err := cli.RunCollection(ctx, docker.RunOptions{
		Image:   image,
		HostDir: dir,
		Argv:    profile.Argv(),
		Pull:    pull,
		Logf:    VerboseLog,
	})
	if err != nil {
		return nil, err
	}

	return &model.CollectionResult{
		ExitCode:  exitCode,
		Outcome:   runner.Classify(exitCode, profile.NoTestsExitCode),
		Collected: runner.ParseCollectedCount(output),
		Output:    output,
		Duration:  time.Since(start),
	}, nil
}

// printProbeReport outputs the probe results in text or JSON format,
// depending on the global --json flag.
func printProbeReport(report *model.ProbeReport) {
	if IsJSONOutput() {
		// MarshalIndent produces human-readable JSON with 2-space
		// indentation. The report embeds the discovery diagnostics and
		// the raw collection output, so --json callers get everything
		// in one document.
		data, _ := json.MarshalIndent(report, "", "  ")
		fmt.Println(string(data))
		return
	}

	fmt.Printf("Collection command: %s\n", strings.Join(report.Command, " "))
	if report.Container != "" {
		fmt.Printf("Container image:    %s\n", report.Container)
	}

	// Pass the framework's own output through, the way the CI log
	// would show it.
	if out := strings.TrimRight(report.Collection.Output, "\n"); out != "" {
		fmt.Println()
		fmt.Println(out)
	}

	fmt.Println()
	fmt.Println(FormatResultLine(report.Collection))
}

// FormatResultLine renders the one-line human-readable verdict for a
// classified collection result.
//
// This function is exported for testing purposes (tested in probe_test.go).
func FormatResultLine(result model.CollectionResult) string {
	switch result.Outcome {
	case model.OutcomeCollected:
		if result.Collected >= 0 {
			return fmt.Sprintf("OK: collected %d test(s) (exit code 0)", result.Collected)
		}
		return "OK: tests collected (exit code 0)"
	case model.OutcomeNoTests:
		return fmt.Sprintf("Warning: no tests were collected (exit code %d)", result.ExitCode)
	default:
		return fmt.Sprintf("Collection failed with exit code %d", result.ExitCode)
	}
}
