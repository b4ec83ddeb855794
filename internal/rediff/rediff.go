// Package rediff runs comparisons off the owning goroutine and hands the
// results back over a channel, tagged with the stamps of the snapshots they
// were computed from.
package rediff

import (
	"context"
	"errors"
	"fmt"

	"mergeview/internal/compare"
	"mergeview/internal/document"
	"mergeview/internal/fragment"
)

type Outcome int

const (
	OutcomeOK Outcome = iota
	OutcomeTooLarge
	OutcomeCancelled
	OutcomeFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeOK:
		return "ok"
	case OutcomeTooLarge:
		return "too large"
	case OutcomeCancelled:
		return "cancelled"
	default:
		return "failed"
	}
}

// Input is everything one comparison needs. A nil side is absent, as for a
// file that does not exist yet.
type Input struct {
	Side1  *document.Snapshot
	Side2  *document.Snapshot
	Policy compare.Policy
}

// Stamps returns the captured stamps, 0 for an absent side.
func (in Input) Stamps() (int64, int64) {
	var s1, s2 int64
	if in.Side1 != nil {
		s1 = in.Side1.Stamp
	}
	if in.Side2 != nil {
		s2 = in.Side2.Stamp
	}
	return s1, s2
}

type Result struct {
	Outcome    Outcome
	Fragments  []fragment.LineFragment
	Equal      bool
	Stamp1     int64
	Stamp2     int64
	Generation uint64
	Err        error
}

// Recompute produces the result for in. It never panics: a panicking oracle is
// reported as OutcomeFailed.
func Recompute(ctx context.Context, oracle compare.Oracle, in Input) (res Result) {
	res.Stamp1, res.Stamp2 = in.Stamps()
	defer func() {
		if r := recover(); r != nil {
			res.Outcome = OutcomeFailed
			res.Fragments = nil
			res.Equal = false
			res.Err = fmt.Errorf("compare panicked: %v", r)
		}
	}()

	switch {
	case in.Side1 == nil && in.Side2 == nil:
		res.Equal = true
		return res
	case in.Side1 == nil:
		if in.Side2.Text != "" {
			res.Fragments = []fragment.LineFragment{whole(in.Side2, fragment.Side2)}
		}
		return res
	case in.Side2 == nil:
		if in.Side1.Text != "" {
			res.Fragments = []fragment.LineFragment{whole(in.Side1, fragment.Side1)}
		}
		return res
	}

	text1, text2 := in.Side1.Text, in.Side2.Text
	if !in.Policy.Highlight.ShouldCompare() {
		res.Equal = text1 == text2
		return res
	}

	frs, err := oracle.Compare(ctx, text1, text2, in.Policy)
	switch {
	case err == nil:
	case errors.Is(err, compare.ErrTooLarge):
		res.Outcome = OutcomeTooLarge
		res.Err = err
		return res
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded), ctx.Err() != nil:
		res.Outcome = OutcomeCancelled
		res.Err = err
		return res
	default:
		res.Outcome = OutcomeFailed
		res.Err = err
		return res
	}

	if err := fragment.Validate(frs); err != nil {
		res.Outcome = OutcomeFailed
		res.Err = fmt.Errorf("oracle output: %w", err)
		return res
	}
	res.Fragments = frs
	res.Equal = len(frs) == 0 && text1 == text2
	return res
}

// whole is the single fragment covering all of snap on side, with the other
// side empty.
func whole(snap *document.Snapshot, side fragment.Side) fragment.LineFragment {
	lines := snap.LineCount
	// A trailing newline starts an empty last line that holds no content.
	if lines > 1 && snap.Text[len(snap.Text)-1] == '\n' {
		lines--
	}
	if side == fragment.Side1 {
		return fragment.LineFragment{EndLine1: lines, EndOffset1: len(snap.Text)}
	}
	return fragment.LineFragment{EndLine2: lines, EndOffset2: len(snap.Text)}
}
