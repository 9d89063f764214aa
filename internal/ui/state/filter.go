package state

import (
	"errors"
	"fmt"
	"regexp"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// ErrInvalidPattern wraps pattern compilation failures.
var ErrInvalidPattern = errors.New("invalid filter pattern")

// Matcher decides which entry IDs are visible.
type Matcher interface {
	Match(text string) bool
	String() string
}

// Compiler turns search text into a Matcher. An empty pattern compiles to a
// nil Matcher, which clears the filter.
type Compiler func(pattern string) (Matcher, error)

// MatchMode selects how search text is interpreted.
type MatchMode string

const (
	MatchRegex MatchMode = "regex"
	MatchFuzzy MatchMode = "fuzzy"
)

// ParseMatchMode validates a user supplied mode name.
func ParseMatchMode(s string) (MatchMode, error) {
	switch MatchMode(s) {
	case MatchRegex, MatchFuzzy:
		return MatchMode(s), nil
	case "":
		return MatchRegex, nil
	}
	return "", fmt.Errorf("unknown match mode %q (want %q or %q)", s, MatchRegex, MatchFuzzy)
}

// NewCompiler returns the Compiler for mode; unknown modes fall back to regex.
func NewCompiler(mode MatchMode) Compiler {
	if mode == MatchFuzzy {
		return CompileFuzzy
	}
	return CompileRegex
}

// CompileRegex compiles pattern as a regular expression.
func CompileRegex(pattern string) (Matcher, error) {
	if pattern == "" {
		return nil, nil
	}
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidPattern, err)
	}
	return regexMatcher{re: re}, nil
}

// CompileFuzzy builds a case-insensitive fuzzy matcher. It never fails.
func CompileFuzzy(pattern string) (Matcher, error) {
	if pattern == "" {
		return nil, nil
	}
	return fuzzyMatcher(pattern), nil
}

type regexMatcher struct {
	re *regexp.Regexp
}

func (m regexMatcher) Match(text string) bool { return m.re.MatchString(text) }
func (m regexMatcher) String() string         { return m.re.String() }

type fuzzyMatcher string

func (m fuzzyMatcher) Match(text string) bool {
	return fuzzy.MatchNormalizedFold(string(m), text)
}

func (m fuzzyMatcher) String() string { return string(m) }

// SetFilter replaces the active matcher. The cursor moves to the first entry
// of the new view, or is cleared when nothing matches.
func (c *Collection[T]) SetFilter(m Matcher) {
	c.matcher = m
	if c.FilteredLen() == 0 {
		c.cursor = -1
		return
	}
	c.cursor = 0
}

// Filter returns the active matcher, nil when unfiltered.
func (c *Collection[T]) Filter() Matcher {
	return c.matcher
}
