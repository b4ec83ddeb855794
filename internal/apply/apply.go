// Package apply copies selected changes from one side of a diff into the
// other.
package apply

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"mergeview/internal/document"
	"mergeview/internal/fragment"
	"mergeview/internal/tracker"
)

var (
	ErrReadOnly        = errors.New("target document is read-only")
	ErrNothingSelected = errors.New("no change is selected")
)

// LineSet is a sorted set of line numbers.
type LineSet struct {
	lines []int
}

func NewLineSet(lines ...int) LineSet {
	var s LineSet
	for _, l := range lines {
		s.Add(l)
	}
	return s
}

// Range returns the set of lines [line1, line2).
func Range(line1, line2 int) LineSet {
	var s LineSet
	for l := line1; l < line2; l++ {
		s.lines = append(s.lines, l)
	}
	return s
}

func (s *LineSet) Add(line int) {
	i, ok := slices.BinarySearch(s.lines, line)
	if !ok {
		s.lines = slices.Insert(s.lines, i, line)
	}
}

func (s *LineSet) Remove(line int) {
	if i, ok := slices.BinarySearch(s.lines, line); ok {
		s.lines = slices.Delete(s.lines, i, i+1)
	}
}

// Toggle flips membership of line and reports whether it is now present.
func (s *LineSet) Toggle(line int) bool {
	if s.Contains(line) {
		s.Remove(line)
		return false
	}
	s.Add(line)
	return true
}

func (s LineSet) Contains(line int) bool {
	_, ok := slices.BinarySearch(s.lines, line)
	return ok
}

func (s LineSet) Len() int { return len(s.lines) }

func (s LineSet) Lines() []int { return slices.Clone(s.lines) }

// Union returns the lines present in either set.
func (s LineSet) Union(o LineSet) LineSet {
	out := LineSet{lines: slices.Clone(s.lines)}
	for _, l := range o.lines {
		out.Add(l)
	}
	return out
}

// Selection is the caret and selection state of the source pane.
type Selection struct {
	// Lines holds every selected line, or the caret line without a selection.
	Lines        LineSet
	Carets       int
	HasSelection bool
	Caret        int
}

// CaretSelection is the state of a single caret on line with nothing selected.
func CaretSelection(line int) Selection {
	return Selection{Lines: NewLineSet(line), Carets: 1, Caret: line}
}

// IsSomeChangeSelected reports whether applying is worth offering: always with
// several carets or an explicit selection, otherwise only when the caret line
// touches a change.
func IsSomeChangeSelected(changes []*tracker.Change, side fragment.Side, sel Selection) bool {
	if len(changes) == 0 {
		return false
	}
	if sel.Carets != 1 || sel.HasSelection {
		return true
	}
	for _, c := range changes {
		if tracker.IsSelectedByLine(c, side, sel.Caret) {
			return true
		}
	}
	return false
}

// Selected replaces, in dst, the range of every active change selected on
// side with that change's lines from src. The replacements form one undo
// step, run from the last change to the first, and the applied changes are
// invalidated. It returns the number of changes applied.
func Selected(tr *tracker.Tracker, side fragment.Side, src, dst *document.Document, lines LineSet) (int, error) {
	if dst.ReadOnly() {
		return 0, ErrReadOnly
	}

	active := tr.Active()
	var picked []*tracker.Change
	for i := len(active) - 1; i >= 0; i-- {
		if tracker.IsSelectedByLines(active[i], side, lines.Contains) {
			picked = append(picked, active[i])
		}
	}
	if len(picked) == 0 {
		return 0, ErrNothingSelected
	}

	other := side.Other()
	err := dst.Transaction("Replace selected changes", func() error {
		for _, c := range picked {
			if err := ReplaceLines(dst, c.StartLine(other), c.EndLine(other), src, c.StartLine(side), c.EndLine(side)); err != nil {
				return fmt.Errorf("apply change %d-%d: %w", c.StartLine(side), c.EndLine(side), err)
			}
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	tr.Invalidate(picked...)
	return len(picked), nil
}

// ReplaceLines makes lines [dstLine1, dstLine2) of dst equal to lines
// [srcLine1, srcLine2) of src. Line spans include their terminators, so a
// final line that differs only by its newline is copied exactly.
func ReplaceLines(dst *document.Document, dstLine1, dstLine2 int, src *document.Document, srcLine1, srcLine2 int) error {
	if dstLine1 == dstLine2 && srcLine1 == srcLine2 {
		return nil
	}
	content := linesContent(src, srcLine1, srcLine2)
	start, end := linesRange(dst, dstLine1, dstLine2)
	if content != "" {
		// Keep the copied lines apart from their new neighbours.
		if end < dst.Len() && !strings.HasSuffix(content, "\n") {
			content += "\n"
		}
		if start == dst.Len() && start > 0 && dst.Text()[start-1] != '\n' {
			content = "\n" + content
		}
	}
	if start == end {
		if content == "" {
			return nil
		}
		return dst.Insert(start, content)
	}
	return dst.Replace(start, end-start, content)
}

// linesRange spans lines [line1, line2) including the terminator of the last
// one, if it has any.
func linesRange(d *document.Document, line1, line2 int) (int, int) {
	return lineOffset(d, line1), lineOffset(d, line2)
}

func lineOffset(d *document.Document, line int) int {
	if line >= d.LineCount() {
		return d.Len()
	}
	return d.LineStartOffset(line)
}

func linesContent(d *document.Document, line1, line2 int) string {
	start, end := linesRange(d, line1, line2)
	return d.Text()[start:end]
}
