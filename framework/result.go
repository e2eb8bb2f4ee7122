package framework

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

type TestResult struct {
	TestID  TestID
	Errors  []error
	Skipped bool
}

func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// Counts returns the number of tests that passed, failed, and were skipped. Tests that were
// excluded by a filter never ran and are not counted, and neither are tests that only grouped
// subtests.
func (r Results) Counts() (passed, failed, skipped int) {
	parents := make(map[string]bool)
	for _, t := range r.Tests {
		if len(t.TestID.Path) > 1 {
			parents[TestID{Path: t.TestID.Path[:len(t.TestID.Path)-1]}.String()] = true
		}
	}
	for _, t := range r.Tests {
		if parents[t.TestID.String()] && len(t.Errors) == 0 {
			continue
		}
		switch {
		case t.Skipped:
			skipped++
		case len(t.Errors) > 0:
			failed++
		default:
			passed++
		}
	}
	return
}

type TestID struct {
	Path []string
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// PrintResults writes a summary of the test run, followed by every failed test and its errors.
func PrintResults(dest io.Writer, results Results) {
	passed, failed, skipped := results.Counts()
	fmt.Fprintf(dest, "Ran %d tests: %s, %s, %s\n",
		passed+failed+skipped,
		color.GreenString("%d passed", passed),
		color.RedString("%d failed", failed),
		color.YellowString("%d skipped", skipped),
	)
	if results.OK() {
		fmt.Fprintln(dest, color.GreenString("All tests passed"))
		return
	}
	fmt.Fprintln(dest, color.RedString("FAILED TESTS:"))
	for _, f := range results.Failures {
		fmt.Fprintf(dest, "* %s\n", f.TestID)
		for _, err := range f.Errors {
			for _, line := range strings.Split(err.Error(), "\n") {
				fmt.Fprintf(dest, "    %s\n", line)
			}
		}
	}
}
