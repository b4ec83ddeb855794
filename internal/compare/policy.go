package compare

import (
	"fmt"
	"strings"
)

// IgnorePolicy selects which whitespace differences the comparison ignores.
type IgnorePolicy int

const (
	IgnoreNone IgnorePolicy = iota
	IgnoreTrimWhitespace
	IgnoreWhitespace
)

var ignoreNames = map[IgnorePolicy]string{
	IgnoreNone:           "default",
	IgnoreTrimWhitespace: "trim",
	IgnoreWhitespace:     "whitespace",
}

func (p IgnorePolicy) String() string {
	if s, ok := ignoreNames[p]; ok {
		return s
	}
	return "unknown"
}

// Next cycles through the policies, used by the toggle key binding.
func (p IgnorePolicy) Next() IgnorePolicy {
	return (p + 1) % IgnorePolicy(len(ignoreNames))
}

func ParseIgnorePolicy(s string) (IgnorePolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return IgnoreNone, nil
	}
	for p, name := range ignoreNames {
		if name == s {
			return p, nil
		}
	}
	return IgnoreNone, fmt.Errorf("unknown ignore policy %q", s)
}

// HighlightPolicy selects the granularity of highlighted differences.
type HighlightPolicy int

const (
	HighlightByWord HighlightPolicy = iota
	HighlightByLine
	HighlightByChar
	HighlightNone
)

var highlightNames = map[HighlightPolicy]string{
	HighlightByWord: "word",
	HighlightByLine: "line",
	HighlightByChar: "char",
	HighlightNone:   "none",
}

func (p HighlightPolicy) String() string {
	if s, ok := highlightNames[p]; ok {
		return s
	}
	return "unknown"
}

func (p HighlightPolicy) Next() HighlightPolicy {
	return (p + 1) % HighlightPolicy(len(highlightNames))
}

// ShouldCompare is false for HighlightNone: the texts are not compared at all.
func (p HighlightPolicy) ShouldCompare() bool {
	return p != HighlightNone
}

// FineFragments reports whether blocks carry word or character sub-ranges.
func (p HighlightPolicy) FineFragments() bool {
	return p == HighlightByWord || p == HighlightByChar
}

func ParseHighlightPolicy(s string) (HighlightPolicy, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return HighlightByWord, nil
	}
	for p, name := range highlightNames {
		if name == s {
			return p, nil
		}
	}
	return HighlightByWord, fmt.Errorf("unknown highlight policy %q", s)
}

// Policy is the comparison configuration handed to an Oracle.
type Policy struct {
	Ignore    IgnorePolicy
	Highlight HighlightPolicy
}

func DefaultPolicy() Policy {
	return Policy{Ignore: IgnoreNone, Highlight: HighlightByWord}
}

func (p Policy) String() string {
	return fmt.Sprintf("ignore=%s highlight=%s", p.Ignore, p.Highlight)
}
