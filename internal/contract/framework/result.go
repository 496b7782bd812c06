package framework

import (
	"fmt"
	"io"
	"strings"
	"time"
)

// Results is the outcome of a whole run
type Results struct {
	Tests    []TestResult
	Failures []TestResult
}

// TestResult is the outcome of one test
type TestResult struct {
	TestID   TestID
	Errors   []error
	Skipped  bool
	Duration time.Duration
}

// OK is true when nothing failed
func (r Results) OK() bool {
	return len(r.Failures) == 0
}

// TestID identifies a test by the names of it and its parents
type TestID struct {
	Path []string
}

// Plus returns the id of a subtest called name
func (t TestID) Plus(name string) TestID {
	path := make([]string, 0, len(t.Path)+1)
	path = append(path, t.Path...)
	return TestID{Path: append(path, name)}
}

func (t TestID) String() string {
	return strings.Join(t.Path, "/")
}

// PrintResults writes a summary of the run to w
func PrintResults(w io.Writer, results Results) {
	if results.OK() {
		fmt.Fprintf(w, "All tests passed (%d)\n", len(results.Tests))
		return
	}
	fmt.Fprintf(w, "FAILED TESTS (%d of %d):\n", len(results.Failures), len(results.Tests))
	for _, f := range results.Failures {
		fmt.Fprintf(w, "* %s\n", f.TestID)
		for _, err := range f.Errors {
			for _, line := range strings.Split(reformatError(err).Error(), "\n") {
				fmt.Fprintf(w, "    %s\n", line)
			}
		}
	}
}

// reformatError trims the leading blank lines testify puts in front of its messages
func reformatError(err error) error {
	msg := strings.TrimLeft(err.Error(), "\n")
	if msg == err.Error() {
		return err
	}
	return fmt.Errorf("%s", msg)
}
