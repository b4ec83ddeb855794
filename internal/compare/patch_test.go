package compare

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestFormatPatch(t *testing.T) {
	text1, text2 := "a\nb\nc\n", "a\nx\nc\n"
	frs, err := NewLineOracle().Compare(context.Background(), text1, text2, linePolicy)
	require.NoError(t, err)

	out, err := FormatPatch("left.txt", "right.txt", text1, text2, frs, 3)
	require.NoError(t, err)
	s := string(out)
	require.Contains(t, s, "--- left.txt\n")
	require.Contains(t, s, "+++ right.txt\n")
	require.Contains(t, s, "@@ -1,3 +1,3 @@")
	require.Contains(t, s, " a\n-b\n+x\n c\n")
}

func TestFormatPatchEmpty(t *testing.T) {
	out, err := FormatPatch("a", "b", "x\n", "x\n", nil, 3)
	require.NoError(t, err)
	require.Empty(t, out)

	frs, err := ParsePatch(out, "x\n", "x\n")
	require.NoError(t, err)
	require.Empty(t, frs)
}

func TestPatchRoundTrip(t *testing.T) {
	pairs := []struct {
		name         string
		text1, text2 string
		context      int
	}{
		{"modification", "a\nb\nc\n", "a\nx\nc\n", 3},
		{"separate hunks", "1\n2\n3\n4\n5\n6\n7\n8\n9\n10\n", "1\nTWO\n3\n4\n5\n6\n7\n8\nNINE\n10\n", 1},
		{"zero context", "1\n2\n3\n", "0\n1\n3\n", 0},
		{"from empty", "", "a\nb\n", 3},
		{"to empty", "a\nb\n", "", 2},
		{"missing newline", "a\nb", "a\nc", 3},
	}
	for _, tt := range pairs {
		t.Run(tt.name, func(t *testing.T) {
			want, err := NewLineOracle().Compare(context.Background(), tt.text1, tt.text2, linePolicy)
			require.NoError(t, err)
			require.NotEmpty(t, want)

			raw, err := FormatPatch("l", "r", tt.text1, tt.text2, want, tt.context)
			require.NoError(t, err)

			got, err := ParsePatch(raw, tt.text1, tt.text2)
			require.NoError(t, err)
			require.Equal(t, want, got)
		})
	}
}

func TestFormatPatchMarksMissingNewline(t *testing.T) {
	frs, err := NewLineOracle().Compare(context.Background(), "a\nb", "a\nc", linePolicy)
	require.NoError(t, err)
	out, err := FormatPatch("l", "r", "a\nb", "a\nc", frs, 1)
	require.NoError(t, err)
	require.Equal(t, 2, strings.Count(string(out), noNewlineMarker))
}

func TestParsePatchRejectsOutOfRange(t *testing.T) {
	raw := "--- l\n+++ r\n@@ -5,1 +5,1 @@\n-x\n+y\n"
	_, err := ParsePatch([]byte(raw), "a\n", "b\n")
	require.Error(t, err)
}
