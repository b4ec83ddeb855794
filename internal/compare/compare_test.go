package compare

import (
	"context"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mergeview/internal/fragment"
)

var linePolicy = Policy{Ignore: IgnoreNone, Highlight: HighlightByLine}

func oracles(t *testing.T) map[string]Oracle {
	t.Helper()
	out := map[string]Oracle{
		AlgorithmMyers:    NewLineOracle(),
		AlgorithmSequence: NewSequenceOracle(),
	}
	if _, err := exec.LookPath("git"); err == nil {
		out[AlgorithmGit] = NewGitOracle()
	}
	return out
}

func TestOraclesFindSingleModification(t *testing.T) {
	for name, o := range oracles(t) {
		t.Run(name, func(t *testing.T) {
			frs, err := o.Compare(context.Background(), "a\nb\nc\n", "a\nx\nc\n", linePolicy)
			require.NoError(t, err)
			require.Equal(t, []fragment.LineFragment{{
				StartLine1: 1, EndLine1: 2, StartLine2: 1, EndLine2: 2,
				StartOffset1: 2, EndOffset1: 4, StartOffset2: 2, EndOffset2: 4,
			}}, frs)
			require.Equal(t, fragment.Modified, frs[0].Type())
		})
	}
}

func TestOraclesFindInsertionAndDeletion(t *testing.T) {
	for name, o := range oracles(t) {
		t.Run(name, func(t *testing.T) {
			frs, err := o.Compare(context.Background(), "a\nc\nd\n", "a\nb\nc\n", linePolicy)
			require.NoError(t, err)
			require.Len(t, frs, 2)

			require.Equal(t, fragment.Inserted, frs[0].Type())
			require.Equal(t, 1, frs[0].StartLine1)
			require.Equal(t, 1, frs[0].StartLine2)
			require.Equal(t, 2, frs[0].EndLine2)
			require.Equal(t, 2, frs[0].StartOffset2)
			require.Equal(t, 4, frs[0].EndOffset2)

			require.Equal(t, fragment.Deleted, frs[1].Type())
			require.Equal(t, 2, frs[1].StartLine1)
			require.Equal(t, 3, frs[1].EndLine1)
			require.Equal(t, 4, frs[1].StartOffset1)
			require.Equal(t, 6, frs[1].EndOffset1)
		})
	}
}

func TestOraclesOutputIsValid(t *testing.T) {
	pairs := [][2]string{
		{"", "a\nb\n"},
		{"a\nb\n", ""},
		{"one\ntwo\nthree\nfour\nfive\n", "zero\none\nthree\nFOUR\nfive\nsix"},
		{"x\ny\nx\ny\nx\n", "y\nx\ny\nx\ny\n"},
		{"a\nb", "a\nb\n"},
	}
	for name, o := range oracles(t) {
		for _, p := range pairs {
			frs, err := o.Compare(context.Background(), p[0], p[1], DefaultPolicy())
			require.NoError(t, err, name)
			require.NoError(t, fragment.Validate(frs), "%s %q vs %q", name, p[0], p[1])
			require.NotEmpty(t, frs, "%s %q vs %q", name, p[0], p[1])
		}
	}
}

func TestOraclesIdenticalTextsHaveNoFragments(t *testing.T) {
	for name, o := range oracles(t) {
		frs, err := o.Compare(context.Background(), "same\ntext\n", "same\ntext\n", DefaultPolicy())
		require.NoError(t, err, name)
		require.Empty(t, frs, name)
	}
}

func TestIgnorePolicies(t *testing.T) {
	o := NewLineOracle()
	ctx := context.Background()

	frs, err := o.Compare(ctx, "  a\nb\n", "a\nb\n", Policy{Ignore: IgnoreTrimWhitespace})
	require.NoError(t, err)
	require.Empty(t, frs)

	frs, err = o.Compare(ctx, "a b\n", "ab\n", Policy{Ignore: IgnoreTrimWhitespace})
	require.NoError(t, err)
	require.Len(t, frs, 1)

	frs, err = o.Compare(ctx, "a b\n", "ab\n", Policy{Ignore: IgnoreWhitespace})
	require.NoError(t, err)
	require.Empty(t, frs)

	frs, err = o.Compare(ctx, "a b\n", "ab\n", Policy{Ignore: IgnoreNone})
	require.NoError(t, err)
	require.Len(t, frs, 1)
}

func TestOraclesAgreeUnderIgnorePolicies(t *testing.T) {
	pairs := [][2]string{
		{"x\na\ny\n", "x\n    a\ny\n"},
		{"a b\nc\n", "ab\nc\n"},
		{"a\nb", "a\nb\n"},
		{"  keep\nold\n", "keep \nnew\n"},
	}
	ranges := func(frs []fragment.LineFragment) [][4]int {
		out := [][4]int{}
		for _, f := range frs {
			out = append(out, [4]int{f.StartLine1, f.EndLine1, f.StartLine2, f.EndLine2})
		}
		return out
	}
	ctx := context.Background()
	for _, ignore := range []IgnorePolicy{IgnoreNone, IgnoreTrimWhitespace, IgnoreWhitespace} {
		p := Policy{Ignore: ignore, Highlight: HighlightByLine}
		for _, pair := range pairs {
			want, err := NewLineOracle().Compare(ctx, pair[0], pair[1], p)
			require.NoError(t, err)
			for name, o := range oracles(t) {
				got, err := o.Compare(ctx, pair[0], pair[1], p)
				require.NoError(t, err, name)
				assert.Equal(t, ranges(want), ranges(got), "%s %s %q vs %q", name, ignore, pair[0], pair[1])
			}
		}
	}
}

func TestTooLarge(t *testing.T) {
	o := NewLineOracle(WithMaxLines(2))
	_, err := o.Compare(context.Background(), "a\nb\nc\n", "a\n", DefaultPolicy())
	require.ErrorIs(t, err, ErrTooLarge)

	s := NewSequenceOracle(WithMaxLines(2))
	_, err = s.Compare(context.Background(), "a\n", "a\nb\nc\n", DefaultPolicy())
	require.ErrorIs(t, err, ErrTooLarge)
}

func TestCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewLineOracle().Compare(ctx, "a\n", "b\n", DefaultPolicy())
	require.ErrorIs(t, err, context.Canceled)
}

func TestInnerFragments(t *testing.T) {
	o := NewLineOracle()
	ctx := context.Background()

	frs, err := o.Compare(ctx, "a\nb\nc\n", "a\nx\nc\n", Policy{Highlight: HighlightByWord})
	require.NoError(t, err)
	require.Equal(t, []fragment.DiffFragment{{StartOffset1: 0, EndOffset1: 1, StartOffset2: 0, EndOffset2: 1}}, frs[0].Inner)

	frs, err = o.Compare(ctx, "call(foo, bar)\n", "call(foo, baz)\n", Policy{Highlight: HighlightByWord})
	require.NoError(t, err)
	require.Len(t, frs[0].Inner, 1)
	in := frs[0].Inner[0]
	require.Equal(t, "bar", "call(foo, bar)\n"[in.StartOffset1:in.EndOffset1])
	require.Equal(t, "baz", "call(foo, baz)\n"[in.StartOffset2:in.EndOffset2])

	frs, err = o.Compare(ctx, "abc\n", "abd\n", Policy{Highlight: HighlightByChar})
	require.NoError(t, err)
	require.Equal(t, []fragment.DiffFragment{{StartOffset1: 2, EndOffset1: 3, StartOffset2: 2, EndOffset2: 3}}, frs[0].Inner)

	frs, err = o.Compare(ctx, "abc\n", "abd\n", linePolicy)
	require.NoError(t, err)
	require.Nil(t, frs[0].Inner)
}

func TestInnerDropsWhitespaceUnderIgnore(t *testing.T) {
	frs, err := NewLineOracle().Compare(context.Background(), "x = 1\n", "x  =  2\n", Policy{Ignore: IgnoreWhitespace, Highlight: HighlightByWord})
	require.NoError(t, err)
	require.Len(t, frs, 1)
	for _, in := range frs[0].Inner {
		assert.NotEqual(t, "", strings.TrimSpace("x  =  2\n"[in.StartOffset2:in.EndOffset2]))
	}
}

func TestSplitWords(t *testing.T) {
	require.Equal(t, []string{"foo", "(", "bar", ",", " ", "12", ")", "\n"}, splitWords("foo(bar, 12)\n"))
	require.Nil(t, splitWords(""))
}

func TestWordSplitterCoversText(t *testing.T) {
	w := newWordSplitter("main.go")
	for _, text := range []string{"func main() {\n", "x := \"a b\"\n", "\treturn nil"} {
		require.Equal(t, text, strings.Join(w.split(text), ""))
	}
}

func TestNewOracle(t *testing.T) {
	for _, name := range Algorithms() {
		o, err := NewOracle(name)
		require.NoError(t, err)
		require.NotNil(t, o)
	}
	_, err := NewOracle("patience")
	require.Error(t, err)
}

func TestParsePolicies(t *testing.T) {
	p, err := ParseIgnorePolicy(" Trim ")
	require.NoError(t, err)
	require.Equal(t, IgnoreTrimWhitespace, p)
	_, err = ParseIgnorePolicy("tabs")
	require.Error(t, err)

	h, err := ParseHighlightPolicy("")
	require.NoError(t, err)
	require.Equal(t, HighlightByWord, h)
	require.False(t, HighlightNone.ShouldCompare())
	require.Equal(t, HighlightByWord, HighlightNone.Next())
	require.Equal(t, IgnoreNone, IgnoreWhitespace.Next())
}
