// classify.go holds the pure classification and summary-parsing logic.
// Both functions are deterministic over their inputs, which keeps the
// exit-code contract trivially testable without spawning processes.
package runner

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/mmr-tortoise/ci-probe/internal/model"
)

// Classify maps a collection process exit code to its terminal outcome:
//
//	0        → collected
//	sentinel → no-tests  (pytest reserves 5 for "no tests collected")
//	other    → failed    (the code is forwarded verbatim by the caller)
func Classify(exitCode, sentinel int) model.Outcome {
	switch exitCode {
	case 0:
		return model.OutcomeCollected
	case sentinel:
		return model.OutcomeNoTests
	default:
		return model.OutcomeFailed
	}
}

// collectedRe matches the pytest -q collection summary, e.g.
// "3 tests collected in 0.01s", "1 test collected in 0.00s", or the
// deselection form "2/5 tests collected in 0.01s" (the first number is
// the selected count).
var collectedRe = regexp.MustCompile(`(\d+)(?:/\d+)? tests? collected`)

// ParseCollectedCount extracts the number of collected tests from the
// framework's output. Returns -1 when no summary line is recognized.
//
// The count is advisory — it feeds the human-readable report only.
// Classification never depends on it, so an unrecognized summary format
// (a new pytest version, a custom runner) degrades gracefully.
func ParseCollectedCount(output string) int {
	if m := collectedRe.FindStringSubmatch(output); m != nil {
		n, err := strconv.Atoi(m[1])
		if err != nil {
			return -1
		}
		return n
	}

	// Pytest prints these forms instead of a count when the suite is
	// empty or collection was interrupted before counting.
	if strings.Contains(output, "no tests ran") ||
		strings.Contains(output, "no tests collected") {
		return 0
	}

	return -1
}
