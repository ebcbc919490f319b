// Package config handles the optional repo-level configuration file for
// ci-probe.
//
// Configuration is deliberately optional: with no file present, the stock
// pytest profile and the default test-file patterns apply, matching the
// zero-configuration behavior of the original CI debug step. When a file
// is present it may be JSON with comments (JSONC, stripped via
// github.com/tidwall/jsonc) or YAML (gopkg.in/yaml.v3), chosen by file
// extension.
//
// Key responsibilities:
//   - Locate the config file among the supported candidate names
//   - Parse it (JSONC or YAML) into a File struct
//   - Resolve the effective runner profile, patterns, and skip dirs,
//     layering file values over built-in defaults
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/mmr-tortoise/ci-probe/internal/model"
)

// candidateNames are the config file names probed in the target directory,
// in priority order. The first one that exists wins.
var candidateNames = []string{
	".ci-probe.json",
	".ci-probe.jsonc",
	".ci-probe.yml",
	".ci-probe.yaml",
}

// DefaultPatterns are the filename globs that identify candidate test
// files when the config file does not override them. These match pytest's
// default discovery convention.
var DefaultPatterns = []string{"test_*.py", "*_test.py"}

// DefaultSkipDirs are directory names the filesystem walk never descends
// into. They hold generated or vendored trees whose file names routinely
// shadow real test modules (a stale __pycache__ or a dependency's own
// test suite).
var DefaultSkipDirs = []string{
	".git",
	".hg",
	".tox",
	".venv",
	"venv",
	"node_modules",
	"__pycache__",
	".pytest_cache",
	".mypy_cache",
}

// File represents the raw structure of a .ci-probe config file.
// All fields are optional; zero values defer to the built-in defaults.
type File struct {
	// Runner names the profile to use. Defaults to "pytest".
	Runner string `json:"runner,omitempty" yaml:"runner,omitempty"`

	// Profiles defines additional runner profiles by name. A profile here
	// may also shadow a built-in one (e.g., to add pytest flags).
	Profiles []model.RunnerProfile `json:"profiles,omitempty" yaml:"profiles,omitempty"`

	// Patterns overrides the test-file globs used by discovery.
	Patterns []string `json:"patterns,omitempty" yaml:"patterns,omitempty"`

	// SkipDirs overrides the directory names excluded from the
	// filesystem walk.
	SkipDirs []string `json:"skipDirs,omitempty" yaml:"skipDirs,omitempty"`

	// Container is the default image for container mode. The --container
	// flag takes precedence over this value.
	Container string `json:"container,omitempty" yaml:"container,omitempty"`
}

// Config is the resolved configuration: file values layered over defaults.
type Config struct {
	// Runner is the name of the selected profile.
	Runner string

	// Profiles maps profile names to their definitions, built-ins included.
	Profiles map[string]model.RunnerProfile

	// Patterns are the effective test-file globs.
	Patterns []string

	// SkipDirs are the effective walk exclusions.
	SkipDirs []string

	// Container is the default image for container mode ("" = local run).
	Container string

	// Source is the path of the config file that was loaded, or "" when
	// defaults apply. Used in error and verbose messages.
	Source string
}

// builtinProfiles returns the runner profiles shipped with ci-probe.
// A fresh map is returned so callers can overlay config-defined profiles
// without mutating shared state.
func builtinProfiles() map[string]model.RunnerProfile {
	return map[string]model.RunnerProfile{
		"pytest": {
			Name:    "pytest",
			Command: "pytest",
			// -q keeps the collect output to one line per test plus the
			// summary, which is what the count parser expects.
			Args:            []string{"--collect-only", "-q"},
			NoTestsExitCode: 5,
		},
	}
}

// Load reads the config file for the given directory, if one exists,
// and resolves it against the built-in defaults.
//
// A missing file is not an error — the returned Config carries the stock
// pytest profile and default patterns. A file that exists but cannot be
// parsed returns a CLIError with ExitConfigError naming the file, because
// silently ignoring a broken config would mask the user's intent.
func Load(dir string) (*Config, error) {
	cfg := &Config{
		Runner:   "pytest",
		Profiles: builtinProfiles(),
		Patterns: append([]string(nil), DefaultPatterns...),
		SkipDirs: append([]string(nil), DefaultSkipDirs...),
	}

	path, ok := findConfigFile(dir)
	if !ok {
		return cfg, nil
	}
	cfg.Source = path

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.WrapCLIError(model.ExitConfigError,
			fmt.Sprintf("failed to read config file %s", path), err)
	}

	var file File
	if isYAML(path) {
		if err := yaml.Unmarshal(data, &file); err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("failed to parse config file %s", path), err)
		}
	} else {
		// JSONC: strip comments and trailing commas, then parse with the
		// standard library. This mirrors how devcontainer.json-style
		// configs are handled across the ecosystem.
		if err := json.Unmarshal(jsonc.ToJSON(data), &file); err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("failed to parse config file %s", path), err)
		}
	}

	applyFile(cfg, &file)

	// Validate config-defined profiles up front so a broken profile is a
	// config error at load time, not an obscure exec failure later.
	for name, p := range cfg.Profiles {
		if err := p.Validate(); err != nil {
			return nil, model.WrapCLIError(model.ExitConfigError,
				fmt.Sprintf("invalid runner profile %q in %s", name, path), err)
		}
	}

	return cfg, nil
}

// applyFile layers the values from a parsed config file over the defaults
// already present in cfg. Empty file fields leave the defaults untouched.
func applyFile(cfg *Config, file *File) {
	if file.Runner != "" {
		cfg.Runner = file.Runner
	}
	for _, p := range file.Profiles {
		// Config-defined profiles may shadow built-ins by name.
		cfg.Profiles[p.Name] = p
	}
	if len(file.Patterns) > 0 {
		cfg.Patterns = append([]string(nil), file.Patterns...)
	}
	if len(file.SkipDirs) > 0 {
		cfg.SkipDirs = append([]string(nil), file.SkipDirs...)
	}
	if file.Container != "" {
		cfg.Container = file.Container
	}
}

// ResolveProfile returns the runner profile to use for this invocation.
// An explicit name (from the --runner flag) takes precedence over the
// config file's runner key. An unknown name is a config error listing
// the known profiles.
func (c *Config) ResolveProfile(name string) (model.RunnerProfile, error) {
	if name == "" {
		name = c.Runner
	}

	profile, ok := c.Profiles[name]
	if !ok {
		return model.RunnerProfile{}, model.NewCLIError(model.ExitConfigError,
			fmt.Sprintf("unknown runner profile %q (known: %s)", name, strings.Join(c.profileNames(), ", ")))
	}
	return profile, nil
}

// profileNames returns the known profile names, sorted so error
// messages are deterministic.
func (c *Config) profileNames() []string {
	names := make([]string, 0, len(c.Profiles))
	for name := range c.Profiles {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// findConfigFile probes the candidate config file names in dir and
// returns the first that exists as a regular file.
func findConfigFile(dir string) (string, bool) {
	for _, name := range candidateNames {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}
	return "", false
}

// isYAML reports whether the config file should be parsed as YAML,
// based on its extension.
func isYAML(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	return ext == ".yml" || ext == ".yaml"
}
