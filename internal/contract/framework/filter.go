package framework

import (
	"fmt"
	"io"
	"regexp"
	"strings"
)

// Filter decides whether the test with the given id should run
type Filter func(TestID) bool

// RegexFilters selects tests by name. Like go test -run, a pattern is split on "/" and
// each element is matched against the same level of the test path, so a group runs
// whenever its own level matches.
type RegexFilters struct {
	MustMatch    RegexList
	MustNotMatch RegexList
}

// AsFilter runs a test when it matches any MustMatch pattern (or none are set) and no
// MustNotMatch pattern.
func (r RegexFilters) AsFilter(id TestID) bool {
	if r.MustMatch.IsDefined() && !r.MustMatch.anyPrefixMatch(id.Path) {
		return false
	}
	return !r.MustNotMatch.anyFullMatch(id.Path)
}

// Describe writes a human-readable summary of the active filters, if any
func (r RegexFilters) Describe(w io.Writer) {
	if !r.MustMatch.IsDefined() && !r.MustNotMatch.IsDefined() {
		return
	}
	fmt.Fprintln(w, "Some tests will be skipped based on the filter criteria for this test run:")
	if r.MustMatch.IsDefined() {
		fmt.Fprintf(w, "  skip any not matching %s\n", r.MustMatch)
	}
	if r.MustNotMatch.IsDefined() {
		fmt.Fprintf(w, "  skip any matching %s\n", r.MustNotMatch)
	}
	fmt.Fprintln(w)
}

// RegexList is a flag.Value collecting one pattern per occurrence
type RegexList struct {
	sources  []string
	patterns [][]*regexp.Regexp
}

func (r RegexList) String() string {
	quoted := make([]string, 0, len(r.sources))
	for _, src := range r.sources {
		quoted = append(quoted, `"`+src+`"`)
	}
	return strings.Join(quoted, " or ")
}

// Set is called by the flag package for each occurrence of the flag
func (r *RegexList) Set(value string) error {
	var levels []*regexp.Regexp
	for _, part := range strings.Split(value, "/") {
		rx, err := regexp.Compile(part)
		if err != nil {
			return fmt.Errorf("invalid regex %q: %w", value, err)
		}
		levels = append(levels, rx)
	}
	r.sources = append(r.sources, value)
	r.patterns = append(r.patterns, levels)
	return nil
}

// Patterns returns the source of every pattern
func (r RegexList) Patterns() []string {
	return append([]string(nil), r.sources...)
}

func (r RegexList) IsDefined() bool {
	return len(r.patterns) != 0
}

// anyPrefixMatch is true when some pattern matches every level path and the pattern share
func (r RegexList) anyPrefixMatch(path []string) bool {
	for _, levels := range r.patterns {
		if matchLevels(levels, path) {
			return true
		}
	}
	return false
}

// anyFullMatch is like anyPrefixMatch but the path must be at least as deep as the pattern
func (r RegexList) anyFullMatch(path []string) bool {
	for _, levels := range r.patterns {
		if len(path) >= len(levels) && matchLevels(levels, path) {
			return true
		}
	}
	return false
}

func matchLevels(levels []*regexp.Regexp, path []string) bool {
	for i := 0; i < len(levels) && i < len(path); i++ {
		if !levels[i].MatchString(path[i]) {
			return false
		}
	}
	return true
}
