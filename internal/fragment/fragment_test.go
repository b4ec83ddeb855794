package fragment

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTypeFromEmptySides(t *testing.T) {
	require.Equal(t, Inserted, LineFragment{StartLine1: 2, EndLine1: 2, StartLine2: 2, EndLine2: 4}.Type())
	require.Equal(t, Deleted, LineFragment{StartLine1: 2, EndLine1: 3, StartLine2: 2, EndLine2: 2}.Type())
	require.Equal(t, Modified, LineFragment{StartLine1: 1, EndLine1: 2, StartLine2: 1, EndLine2: 3}.Type())
}

func TestSideHelpers(t *testing.T) {
	require.Equal(t, Side2, Side1.Other())
	require.Equal(t, Side1, Side2.Other())
	require.Equal(t, "a", Select(Side1, "a", "b"))
	require.Equal(t, "b", Select(Side2, "a", "b"))

	f := LineFragment{StartLine1: 1, EndLine1: 2, StartLine2: 3, EndLine2: 5, StartOffset1: 2, EndOffset1: 4, StartOffset2: 6, EndOffset2: 10}
	require.Equal(t, 3, f.StartLine(Side2))
	require.Equal(t, 4, f.EndOffset(Side1))
	require.False(t, f.IsEmpty(Side1))
}

func TestValidateAcceptsOrderedList(t *testing.T) {
	frs := []LineFragment{
		{StartLine1: 1, EndLine1: 2, StartLine2: 1, EndLine2: 2, StartOffset1: 2, EndOffset1: 4, StartOffset2: 2, EndOffset2: 4,
			Inner: []DiffFragment{{StartOffset1: 0, EndOffset1: 1, StartOffset2: 0, EndOffset2: 1}}},
		{StartLine1: 3, EndLine1: 3, StartLine2: 3, EndLine2: 5, StartOffset1: 6, EndOffset1: 6, StartOffset2: 6, EndOffset2: 10},
	}
	require.NoError(t, Validate(frs))
	require.NoError(t, Validate(nil))
}

func TestValidateRejectsViolations(t *testing.T) {
	tests := []struct {
		name string
		frs  []LineFragment
		want error
	}{
		{
			name: "inverted",
			frs:  []LineFragment{{StartLine1: 3, EndLine1: 2}},
			want: ErrNegativeRange,
		},
		{
			name: "empty lines with offsets",
			frs:  []LineFragment{{StartLine1: 2, EndLine1: 2, StartLine2: 2, EndLine2: 3, StartOffset1: 4, EndOffset1: 5, StartOffset2: 4, EndOffset2: 6}},
			want: ErrOffsets,
		},
		{
			name: "unsorted",
			frs: []LineFragment{
				{StartLine1: 4, EndLine1: 5, StartLine2: 4, EndLine2: 5, StartOffset1: 8, EndOffset1: 10, StartOffset2: 8, EndOffset2: 10},
				{StartLine1: 1, EndLine1: 2, StartLine2: 1, EndLine2: 2, StartOffset1: 2, EndOffset1: 4, StartOffset2: 2, EndOffset2: 4},
			},
			want: ErrUnsorted,
		},
		{
			name: "overlap on side 2",
			frs: []LineFragment{
				{StartLine1: 1, EndLine1: 2, StartLine2: 1, EndLine2: 4, StartOffset1: 2, EndOffset1: 4, StartOffset2: 2, EndOffset2: 8},
				{StartLine1: 3, EndLine1: 4, StartLine2: 3, EndLine2: 5, StartOffset1: 6, EndOffset1: 8, StartOffset2: 6, EndOffset2: 10},
			},
			want: ErrOverlap,
		},
		{
			name: "inner out of block",
			frs: []LineFragment{
				{StartLine1: 0, EndLine1: 1, StartLine2: 0, EndLine2: 1, StartOffset1: 0, EndOffset1: 2, StartOffset2: 0, EndOffset2: 2,
					Inner: []DiffFragment{{StartOffset1: 0, EndOffset1: 3, StartOffset2: 0, EndOffset2: 1}}},
			},
			want: ErrInner,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, Validate(tt.frs), tt.want)
		})
	}
}
