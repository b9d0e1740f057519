package framework

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Outcome is the final classification of a single test.
type Outcome int

const (
	OutcomePass Outcome = iota
	OutcomeFail
	OutcomeSkip
	OutcomeXfail
	OutcomeXpass
	// OutcomeError means the test could not be run at all, for instance because a fixture could not be
	// set up or its parameterisation was invalid. It is distinct from an assertion failure.
	OutcomeError
)

var outcomeNames = map[Outcome]string{
	OutcomePass:  "PASS",
	OutcomeFail:  "FAIL",
	OutcomeSkip:  "SKIP",
	OutcomeXfail: "XFAIL",
	OutcomeXpass: "XPASS",
	OutcomeError: "ERROR",
}

func (o Outcome) String() string {
	if s, ok := outcomeNames[o]; ok {
		return s
	}
	return fmt.Sprintf("Outcome(%d)", int(o))
}

// IsFailure is true for outcomes that make a run unsuccessful.
func (o Outcome) IsFailure() bool {
	return o == OutcomeFail || o == OutcomeError
}

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID   TestID
	Outcome  Outcome
	Errors   []error
	Reason   string
	Duration time.Duration
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Count returns the number of results with the given outcome.
func (r Results) Count(outcome Outcome) int {
	n := 0
	for _, t := range r.Tests {
		if t.Outcome == outcome {
			n++
		}
	}
	return n
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// Leaf returns the last element of the path, or "" for the root.
func (t TestID) Leaf() string {
	if len(t.Path) == 0 {
		return ""
	}
	return t.Path[len(t.Path)-1]
}

func (t TestID) child(name string) TestID {
	return TestID{Path: append(append([]string(nil), t.Path...), name)}
}

// PrintResults writes a one-line-per-outcome summary followed by the failed test IDs.
func PrintResults(w io.Writer, results Results) {
	var parts []string
	for _, o := range []Outcome{OutcomePass, OutcomeFail, OutcomeError, OutcomeSkip, OutcomeXfail, OutcomeXpass} {
		if n := results.Count(o); n > 0 {
			parts = append(parts, fmt.Sprintf("%d %s", n, strings.ToLower(o.String())))
		}
	}
	if len(parts) == 0 {
		fmt.Fprintln(w, "No tests were run")
		return
	}
	fmt.Fprintf(w, "%d tests: %s\n", len(results.Tests), strings.Join(parts, ", "))
	if len(results.Failures) > 0 {
		fmt.Fprintln(w, "Failed tests:")
		for _, f := range results.Failures {
			fmt.Fprintf(w, "  %s (%s)\n", f.TestID, f.Outcome)
		}
	}
}
