package fragment

import (
	"errors"
	"fmt"
)

var (
	ErrNegativeRange = errors.New("negative or inverted range")
	ErrOffsets       = errors.New("offsets inconsistent with lines")
	ErrUnsorted      = errors.New("fragments not sorted")
	ErrOverlap       = errors.New("fragments overlap")
	ErrInner         = errors.New("inner fragment outside its block")
)

// Validate checks the ordered-list contract: every fragment has sane ranges,
// fragments ascend by StartLine1 and no two fragments overlap on either side.
// It returns the first violation found.
func Validate(fragments []LineFragment) error {
	for i, f := range fragments {
		if err := validateOne(f); err != nil {
			return fmt.Errorf("fragment[%d] %s: %w", i, f, err)
		}
		if i == 0 {
			continue
		}
		prev := fragments[i-1]
		if f.StartLine1 < prev.StartLine1 {
			return fmt.Errorf("fragment[%d] %s after %s: %w", i, f, prev, ErrUnsorted)
		}
		for _, side := range []Side{Side1, Side2} {
			if f.StartLine(side) < prev.EndLine(side) || f.StartOffset(side) < prev.EndOffset(side) {
				return fmt.Errorf("fragment[%d] %s and %s on %s: %w", i, f, prev, side, ErrOverlap)
			}
		}
	}
	return nil
}

func validateOne(f LineFragment) error {
	for _, side := range []Side{Side1, Side2} {
		start, end := f.StartLine(side), f.EndLine(side)
		if start < 0 || end < start {
			return ErrNegativeRange
		}
		so, eo := f.StartOffset(side), f.EndOffset(side)
		if so < 0 || eo < so {
			return ErrNegativeRange
		}
		if start == end && so != eo {
			return ErrOffsets
		}
	}
	for j, in := range f.Inner {
		for _, side := range []Side{Side1, Side2} {
			width := f.EndOffset(side) - f.StartOffset(side)
			if in.StartOffset(side) < 0 || in.EndOffset(side) < in.StartOffset(side) || in.EndOffset(side) > width {
				return fmt.Errorf("inner[%d]: %w", j, ErrInner)
			}
		}
	}
	return nil
}
