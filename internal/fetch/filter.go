package fetch

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/belkhir-nacim/ecmwf-datadownloaded/internal/catalog"
)

// ErrInvalidPattern indicates the filter pattern does not compile.
var ErrInvalidPattern = errors.New("fetch: invalid pattern")

// Matcher is a compiled, reusable name filter. The zero pattern matches
// everything. Matching is case-sensitive and unanchored, and applies to the
// file name only, never the URL.
type Matcher struct {
	re *regexp.Regexp
}

// CompilePattern compiles a filter pattern once at the boundary. An empty
// pattern yields a match-all Matcher.
func CompilePattern(pattern string) (*Matcher, error) {
	if pattern == "" {
		return &Matcher{}, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidPattern, err)
	}
	return &Matcher{re: re}, nil
}

// Apply filters descriptors by name, preserving input order. An empty result
// is a valid "nothing matched" outcome, not an error.
func (m *Matcher) Apply(descriptors []catalog.FileDescriptor) []catalog.FileDescriptor {
	if m.re == nil {
		return descriptors
	}
	var matched []catalog.FileDescriptor
	for _, fd := range descriptors {
		if m.re.MatchString(fd.Name) {
			matched = append(matched, fd)
		}
	}
	return matched
}
