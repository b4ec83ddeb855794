// Package tracker keeps the changes of one comparison aligned with their
// documents while the user edits, without rerunning the comparison.
//
// An edit is a replaced line range [line1, line2) on one side plus the net
// change in line count. Changes entirely after the edit shift, changes entirely
// before it stay, and changes that fully contain it grow or shrink. Anything
// else makes the change unreliable and it is invalidated until the next
// comparison.
package tracker

import (
	"mergeview/internal/document"
	"mergeview/internal/fragment"
)

// Decoration is the visual state owned by one change.
type Decoration interface {
	// Update is called after the change's coordinates moved.
	Update(c *Change)
	Release()
}

// Decorator creates decorations for new changes.
type Decorator interface {
	Decorate(c *Change) Decoration
}

// NopDecorator decorates nothing.
type NopDecorator struct{}

func (NopDecorator) Decorate(*Change) Decoration { return nopDecoration{} }

type nopDecoration struct{}

func (nopDecoration) Update(*Change) {}
func (nopDecoration) Release()       {}

// Change is the live counterpart of one fragment.
type Change struct {
	fragment *fragment.LineFragment
	typ      fragment.ChangeType
	start    [2]int
	end      [2]int
	inner    []fragment.DiffFragment
	deco     Decoration
}

func newChange(f fragment.LineFragment) *Change {
	return &Change{
		fragment: &f,
		typ:      f.Type(),
		start:    [2]int{f.StartLine1, f.StartLine2},
		end:      [2]int{f.EndLine1, f.EndLine2},
		inner:    f.Inner,
	}
}

// Fragment is the originating fragment, nil once the change is invalid.
func (c *Change) Fragment() *fragment.LineFragment { return c.fragment }

func (c *Change) IsValid() bool { return c.fragment != nil }

// Type is fixed at creation; reprojection never turns an insertion into a
// modification.
func (c *Change) Type() fragment.ChangeType { return c.typ }

func (c *Change) StartLine(side fragment.Side) int { return c.start[side.Index()] }

func (c *Change) EndLine(side fragment.Side) int { return c.end[side.Index()] }

// Inner returns the fine fragments, or nil once an edit has landed inside the
// change and their offsets are no longer meaningful.
func (c *Change) Inner() []fragment.DiffFragment { return c.inner }

func (c *Change) Decoration() Decoration { return c.deco }

// Touches reports whether line falls within the change on side, treating an
// empty range as covering its start line.
func (c *Change) Touches(side fragment.Side, line int) bool {
	start, end := c.StartLine(side), c.EndLine(side)
	if start == end {
		return line == start
	}
	return line >= start && line < end
}

func (c *Change) invalidate() {
	c.fragment = nil
	c.inner = nil
	c.release()
}

func (c *Change) release() {
	if c.deco != nil {
		c.deco.Release()
		c.deco = nil
	}
}

// Tracker owns the active and invalidated changes of one session. It is not
// safe for concurrent use.
type Tracker struct {
	decorator Decorator
	active    []*Change
	invalid   []*Change
}

func New(d Decorator) *Tracker {
	if d == nil {
		d = NopDecorator{}
	}
	return &Tracker{decorator: d}
}

// Reset destroys all changes and creates one decorated change per fragment.
func (t *Tracker) Reset(frs []fragment.LineFragment) {
	t.Clear()
	t.active = make([]*Change, 0, len(frs))
	for _, f := range frs {
		c := newChange(f)
		c.deco = t.decorator.Decorate(c)
		t.active = append(t.active, c)
	}
}

// Clear destroys every change, releasing decorations.
func (t *Tracker) Clear() {
	for _, c := range t.active {
		c.release()
	}
	for _, c := range t.invalid {
		c.release()
	}
	t.active = nil
	t.invalid = nil
}

func (t *Tracker) Active() []*Change { return t.active }

func (t *Tracker) Invalid() []*Change { return t.invalid }

func (t *Tracker) Len() int { return len(t.active) }

// Total counts active and invalidated changes.
func (t *Tracker) Total() int { return len(t.active) + len(t.invalid) }

// OnEdit reprojects the active changes for an edit replacing lines
// [line1, line2) on side with a net line delta of shift. It returns the number
// of changes invalidated.
func (t *Tracker) OnEdit(side fragment.Side, line1, line2, shift int) int {
	if len(t.active) == 0 {
		return 0
	}
	i := side.Index()
	kept := t.active[:0]
	invalidated := 0
	for _, c := range t.active {
		start, end := c.start[i], c.end[i]
		switch {
		case end <= line1:
			kept = append(kept, c)
			continue
		case start >= line2:
			c.start[i] += shift
			c.end[i] += shift
		case start <= line1 && end >= line2:
			c.end[i] += shift
			c.inner = nil
		default:
			c.invalidate()
			t.invalid = append(t.invalid, c)
			invalidated++
			continue
		}
		if c.deco != nil {
			c.deco.Update(c)
		}
		kept = append(kept, c)
	}
	clear(t.active[len(kept):])
	t.active = kept
	return invalidated
}

// Invalidate moves the given active changes to the invalidated sequence.
func (t *Tracker) Invalidate(changes ...*Change) {
	drop := make(map[*Change]bool, len(changes))
	for _, c := range changes {
		drop[c] = true
	}
	kept := t.active[:0]
	for _, c := range t.active {
		if drop[c] {
			c.invalidate()
			t.invalid = append(t.invalid, c)
			continue
		}
		kept = append(kept, c)
	}
	clear(t.active[len(kept):])
	t.active = kept
}

// EditRange computes the line range an edit replaces, on the document as it is
// before the edit, and the net line delta.
func EditRange(doc *document.Document, e document.Event) (line1, line2, shift int) {
	offset1 := e.Offset
	offset2 := e.Offset + len(e.OldText)
	// Replacing whole lines including their terminators touches one line less.
	if e.OldText != "" && e.NewText != "" &&
		e.OldText[len(e.OldText)-1] == '\n' && e.NewText[len(e.NewText)-1] == '\n' {
		offset2--
	}
	line1 = doc.LineNumber(offset1)
	line2 = doc.LineNumber(offset2) + 1
	shift = document.CountNewlines(e.NewText) - document.CountNewlines(e.OldText)
	return line1, line2, shift
}

// IsSelectedByLines reports whether the change's range on side intersects the
// selected lines. An empty range is selected when its start line is.
func IsSelectedByLines(c *Change, side fragment.Side, selected func(line int) bool) bool {
	start, end := c.StartLine(side), c.EndLine(side)
	if start == end {
		return selected(start)
	}
	for l := start; l < end; l++ {
		if selected(l) {
			return true
		}
	}
	return false
}

// IsSelectedByLine reports whether line selects the change on side.
func IsSelectedByLine(c *Change, side fragment.Side, line int) bool {
	return c.Touches(side, line)
}
