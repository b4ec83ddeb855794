// Package fragment holds the immutable result of comparing two texts: ordered
// pairs of line ranges (one per side) that differ, with optional finer
// word or character ranges inside each pair.
package fragment

import "fmt"

// Side selects one of the two compared texts.
type Side int

const (
	Side1 Side = iota
	Side2
)

// Other returns the opposite side.
func (s Side) Other() Side {
	if s == Side1 {
		return Side2
	}
	return Side1
}

// Index is 0 for Side1 and 1 for Side2.
func (s Side) Index() int {
	return int(s)
}

func (s Side) String() string {
	if s == Side1 {
		return "left"
	}
	return "right"
}

// Select returns v1 for Side1 and v2 for Side2.
func Select[T any](s Side, v1, v2 T) T {
	if s == Side1 {
		return v1
	}
	return v2
}

// ChangeType classifies a fragment by which of its sides is empty.
type ChangeType int

const (
	Modified ChangeType = iota
	Inserted
	Deleted
)

func (t ChangeType) String() string {
	switch t {
	case Inserted:
		return "inserted"
	case Deleted:
		return "deleted"
	default:
		return "modified"
	}
}

// TypeOf derives the change type from the two line ranges.
func TypeOf(start1, end1, start2, end2 int) ChangeType {
	switch {
	case start1 == end1 && start2 != end2:
		return Inserted
	case start2 == end2 && start1 != end1:
		return Deleted
	default:
		return Modified
	}
}

// DiffFragment is a fine-grained range pair inside a LineFragment. Offsets are
// relative to the owning block's StartOffset1 and StartOffset2.
type DiffFragment struct {
	StartOffset1 int
	EndOffset1   int
	StartOffset2 int
	EndOffset2   int
}

// StartOffset returns the relative start offset on side.
func (f DiffFragment) StartOffset(side Side) int {
	return Select(side, f.StartOffset1, f.StartOffset2)
}

// EndOffset returns the relative end offset on side.
func (f DiffFragment) EndOffset(side Side) int {
	return Select(side, f.EndOffset1, f.EndOffset2)
}

// LineFragment is one aligned block. Line ranges are half-open; offsets are
// character (byte) offsets into the compared text and cover the same lines,
// including the line terminator of every line but possibly the last one.
type LineFragment struct {
	StartLine1 int
	EndLine1   int
	StartLine2 int
	EndLine2   int

	StartOffset1 int
	EndOffset1   int
	StartOffset2 int
	EndOffset2   int

	// Inner is nil when fine highlighting was not requested.
	Inner []DiffFragment
}

func (f LineFragment) StartLine(side Side) int {
	return Select(side, f.StartLine1, f.StartLine2)
}

func (f LineFragment) EndLine(side Side) int {
	return Select(side, f.EndLine1, f.EndLine2)
}

func (f LineFragment) StartOffset(side Side) int {
	return Select(side, f.StartOffset1, f.StartOffset2)
}

func (f LineFragment) EndOffset(side Side) int {
	return Select(side, f.EndOffset1, f.EndOffset2)
}

// IsEmpty reports whether the line range on side is empty.
func (f LineFragment) IsEmpty(side Side) bool {
	return f.StartLine(side) == f.EndLine(side)
}

// Type is Inserted when side 1 is empty, Deleted when side 2 is empty.
func (f LineFragment) Type() ChangeType {
	return TypeOf(f.StartLine1, f.EndLine1, f.StartLine2, f.EndLine2)
}

func (f LineFragment) String() string {
	return fmt.Sprintf("[%d,%d)-[%d,%d) %s", f.StartLine1, f.EndLine1, f.StartLine2, f.EndLine2, f.Type())
}
