package navigate

import (
	"iter"
	"testing"

	"github.com/stretchr/testify/require"

	"mergeview/internal/document"
	"mergeview/internal/fragment"
	"mergeview/internal/tracker"
)

func seq(start int, lines ...string) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		for i, l := range lines {
			if !yield(start+i, l) {
				return
			}
		}
	}
}

func TestCapture(t *testing.T) {
	doc := document.New("", "a\nb\nc\nd\ne")
	require.Equal(t, Context{Before: []string{"a", "b"}, Target: "c", After: []string{"d", "e"}}, Capture(doc, 2, 2))
	require.Equal(t, Context{Before: []string{}, Target: "a", After: []string{"b"}}, Capture(doc, 0, 1))
	require.Equal(t, Context{Before: []string{"d"}, Target: "e", After: []string{}}, Capture(doc, 9, 1))
}

func TestResolvePrefersChangedLines(t *testing.T) {
	ctx := Context{Before: []string{"x"}, Target: "y", After: []string{"z"}}
	all := seq(0, "x", "y", "z", "q", "x", "y", "z")
	changed := seq(4, "x", "y", "z")

	line, ok := Resolve(ctx, changed, all)
	require.True(t, ok)
	require.Equal(t, 5, line)

	line, ok = Resolve(ctx, seq(0), all)
	require.True(t, ok)
	require.Equal(t, 1, line)
}

func TestResolveNeedsConsecutiveLines(t *testing.T) {
	ctx := Context{Before: []string{"x"}, Target: "y"}
	changed := func(yield func(int, string) bool) {
		_ = yield(1, "x") && yield(5, "y")
	}
	line, ok := Resolve(ctx, changed, seq(0, "a", "x", "b", "x", "y"))
	require.True(t, ok)
	require.Equal(t, 4, line)
}

func TestResolveNotFound(t *testing.T) {
	_, ok := Resolve(Context{Target: "missing"}, nil, seq(0, "a", "b"))
	require.False(t, ok)
}

func TestResolveAgainstDocument(t *testing.T) {
	old := document.New("", "one\ntwo\nthree\nfour\n")
	ctx := Capture(old, 2, 1)

	live := document.New("", "zero\none\ntwo\nthree\nfour\n")
	tr := tracker.New(nil)
	tr.Reset([]fragment.LineFragment{{StartLine1: 0, EndLine1: 0, StartLine2: 0, EndLine2: 1}})

	line, ok := Resolve(ctx, ChangedLines(tr.Active(), fragment.Side2, live), AllLines(live))
	require.True(t, ok)
	require.Equal(t, 3, line)
}
