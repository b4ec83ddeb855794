// Package compare turns two texts into an ordered list of differing line
// blocks. The comparison itself is pluggable behind Oracle; this package ships
// a Myers-style oracle on top of diffmatchpatch, a SequenceMatcher oracle and
// one that shells out to git. It also converts fragment lists to and from
// unified diffs.
package compare

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"mergeview/internal/fragment"
)

// ErrTooLarge is returned when the inputs exceed the configured line limit.
var ErrTooLarge = errors.New("contents too large to compare")

// DefaultMaxLines is the per-side line limit above which oracles refuse.
const DefaultMaxLines = 100_000

// Oracle compares two texts and returns only the differing blocks, sorted by
// StartLine1 and non-overlapping on both sides. It returns ErrTooLarge when it
// refuses the input and ctx.Err() when cancelled.
type Oracle interface {
	Compare(ctx context.Context, text1, text2 string, policy Policy) ([]fragment.LineFragment, error)
}

// OracleFunc adapts a function to Oracle.
type OracleFunc func(ctx context.Context, text1, text2 string, policy Policy) ([]fragment.LineFragment, error)

func (f OracleFunc) Compare(ctx context.Context, text1, text2 string, policy Policy) ([]fragment.LineFragment, error) {
	return f(ctx, text1, text2, policy)
}

type Options struct {
	MaxLines int
	FileName string
	Log      *zap.Logger
}

type Option func(*Options)

func WithMaxLines(n int) Option {
	return func(o *Options) { o.MaxLines = n }
}

// WithFileName picks the lexer used to split words for HighlightByWord.
func WithFileName(name string) Option {
	return func(o *Options) { o.FileName = name }
}

func WithLogger(l *zap.Logger) Option {
	return func(o *Options) { o.Log = l }
}

func buildOptions(opts []Option) Options {
	o := Options{MaxLines: DefaultMaxLines, Log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Log == nil {
		o.Log = zap.NewNop()
	}
	return o
}

// Algorithm names accepted by NewOracle.
const (
	AlgorithmMyers    = "myers"
	AlgorithmSequence = "sequence"
	AlgorithmGit      = "git"
)

// Algorithms lists the names accepted by NewOracle.
func Algorithms() []string {
	return []string{AlgorithmMyers, AlgorithmSequence, AlgorithmGit}
}

// NewOracle builds the oracle registered under name.
func NewOracle(name string, opts ...Option) (Oracle, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", AlgorithmMyers:
		return NewLineOracle(opts...), nil
	case AlgorithmSequence:
		return NewSequenceOracle(opts...), nil
	case AlgorithmGit:
		return NewGitOracle(opts...), nil
	default:
		return nil, fmt.Errorf("unknown algorithm %q", name)
	}
}

// splitText is a text cut into lines that keep their terminators, plus the
// offset of each line start. offsets has one extra entry equal to len(text).
type splitText struct {
	text    string
	lines   []string
	offsets []int
}

func split(text string) *splitText {
	s := &splitText{text: text}
	start := 0
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			s.lines = append(s.lines, text[start:i+1])
			s.offsets = append(s.offsets, start)
			start = i + 1
		}
	}
	if start < len(text) {
		s.lines = append(s.lines, text[start:])
		s.offsets = append(s.offsets, start)
	}
	s.offsets = append(s.offsets, len(text))
	return s
}

func (s *splitText) offset(line int) int {
	return s.offsets[line]
}

// keys returns the comparison key of every line under the ignore policy.
func (s *splitText) keys(p IgnorePolicy) []string {
	out := make([]string, len(s.lines))
	for i, line := range s.lines {
		out[i] = lineKey(line, p)
	}
	return out
}

// normalized joins the keys of every line, each with a newline, so the
// result has exactly as many lines as s.
func (s *splitText) normalized(p IgnorePolicy) string {
	var b strings.Builder
	for _, key := range s.keys(p) {
		b.WriteString(key)
		b.WriteByte('\n')
	}
	return b.String()
}

func lineKey(line string, p IgnorePolicy) string {
	switch p {
	case IgnoreTrimWhitespace:
		return strings.TrimSpace(line)
	case IgnoreWhitespace:
		return strings.Map(func(r rune) rune {
			if unicode.IsSpace(r) {
				return -1
			}
			return r
		}, line)
	default:
		return line
	}
}

func checkSize(s1, s2 *splitText, maxLines int) error {
	if maxLines > 0 && (len(s1.lines) > maxLines || len(s2.lines) > maxLines) {
		return fmt.Errorf("%d and %d lines, limit %d: %w", len(s1.lines), len(s2.lines), maxLines, ErrTooLarge)
	}
	return nil
}

// blockBuilder collects differing line ranges and turns them into fragments,
// merging ranges that touch.
type blockBuilder struct {
	s1, s2 *splitText
	out    []fragment.LineFragment
}

func (b *blockBuilder) add(start1, end1, start2, end2 int) {
	if start1 == end1 && start2 == end2 {
		return
	}
	if n := len(b.out); n > 0 {
		last := &b.out[n-1]
		if last.EndLine1 == start1 && last.EndLine2 == start2 {
			last.EndLine1 = end1
			last.EndLine2 = end2
			last.EndOffset1 = b.s1.offset(end1)
			last.EndOffset2 = b.s2.offset(end2)
			return
		}
	}
	b.out = append(b.out, fragment.LineFragment{
		StartLine1:   start1,
		EndLine1:     end1,
		StartLine2:   start2,
		EndLine2:     end2,
		StartOffset1: b.s1.offset(start1),
		EndOffset1:   b.s1.offset(end1),
		StartOffset2: b.s2.offset(start2),
		EndOffset2:   b.s2.offset(end2),
	})
}

// indexRune maps a dictionary index to a rune that is valid UTF-8, skipping
// the surrogate range.
func indexRune(i int) rune {
	r := rune(i + 1)
	if r >= 0xD800 {
		r += 0x800
	}
	return r
}

// encode maps equal strings to equal runes across both slices.
func encode(a, b []string) ([]rune, []rune) {
	dict := make(map[string]rune, len(a)+len(b))
	enc := func(items []string) []rune {
		out := make([]rune, len(items))
		for i, s := range items {
			r, ok := dict[s]
			if !ok {
				r = indexRune(len(dict))
				dict[s] = r
			}
			out[i] = r
		}
		return out
	}
	return enc(a), enc(b)
}
