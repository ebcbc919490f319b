// Package runner — classify_test.go exercises the pure classification
// function and the summary parser against real pytest output shapes.
package runner

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/mmr-tortoise/ci-probe/internal/model"
)

// TestClassify verifies the three-way exit code classification with the
// pytest sentinel, including that non-sentinel failures of every shape
// map to failed.
func TestClassify(t *testing.T) {
	tests := []struct {
		name     string
		exitCode int
		sentinel int
		want     model.Outcome
	}{
		{name: "zero is collected", exitCode: 0, sentinel: 5, want: model.OutcomeCollected},
		{name: "sentinel is no-tests", exitCode: 5, sentinel: 5, want: model.OutcomeNoTests},
		{name: "tests failed during collection import", exitCode: 1, sentinel: 5, want: model.OutcomeFailed},
		{name: "interrupted", exitCode: 2, sentinel: 5, want: model.OutcomeFailed},
		{name: "internal error", exitCode: 3, sentinel: 5, want: model.OutcomeFailed},
		{name: "usage error", exitCode: 4, sentinel: 5, want: model.OutcomeFailed},
		{name: "signal-style code", exitCode: 137, sentinel: 5, want: model.OutcomeFailed},
		{name: "custom sentinel respected", exitCode: 7, sentinel: 7, want: model.OutcomeNoTests},
		{name: "pytest sentinel is failed under custom sentinel", exitCode: 5, sentinel: 7, want: model.OutcomeFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.exitCode, tt.sentinel))
		})
	}
}

// TestParseCollectedCount verifies the summary parser against output
// captured from pytest --collect-only -q across versions.
func TestParseCollectedCount(t *testing.T) {
	tests := []struct {
		name   string
		output string
		want   int
	}{
		{
			name: "plural summary",
			output: "tests/test_basic.py::test_addition\n" +
				"tests/test_basic.py::test_subtraction\n" +
				"tests/test_generator.py::test_parse_response\n\n" +
				"3 tests collected in 0.02s\n",
			want: 3,
		},
		{
			name:   "singular summary",
			output: "tests/test_basic.py::test_addition\n\n1 test collected in 0.01s\n",
			want:   1,
		},
		{
			name:   "deselection summary counts selected",
			output: "2/5 tests collected in 0.01s\n",
			want:   2,
		},
		{
			name:   "empty suite",
			output: "no tests ran in 0.00s\n",
			want:   0,
		},
		{
			name:   "no tests collected wording",
			output: "no tests collected in 0.00s\n",
			want:   0,
		},
		{
			name: "collection error has no count",
			output: "ERROR tests/test_broken.py - ImportError: cannot import name 'missing'\n" +
				"!!!!!!!!!!!!!!!!!!!! Interrupted: 1 error during collection !!!!!!!!!!!!!!!!!!!!\n" +
				"1 error in 0.08s\n",
			want: -1,
		},
		{
			name:   "empty output",
			output: "",
			want:   -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseCollectedCount(tt.output))
		})
	}
}
