// Package document is the mutable text buffer shown on one side of a diff.
//
// A Document tracks line boundaries, a modification stamp that grows with every
// edit, and listeners that are told about an edit before it becomes visible.
// Lines are separated by '\n'; a trailing newline starts a final empty line, so
// the empty text has exactly one line.
package document

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	ErrOutOfRange = errors.New("offset out of range")
	ErrReadOnly   = errors.New("document is read-only")
)

// Event describes an edit about to be applied: the text at
// [Offset, Offset+len(OldText)) is replaced by NewText.
type Event struct {
	Offset  int
	OldText string
	NewText string
}

// Listener is called before the edit in e is applied to d.
type Listener func(d *Document, e Event)

// Snapshot is an immutable copy of a document's content.
type Snapshot struct {
	Text      string
	Stamp     int64
	LineCount int
}

type Document struct {
	name       string
	text       string
	lineStarts []int
	stamp      int64
	readOnly   bool

	listeners map[int]Listener
	nextID    int

	undo []group
	open *group
}

type edit struct {
	offset  int
	oldText string
	newText string
}

type group struct {
	name  string
	edits []edit
}

// New creates a document holding text.
func New(name, text string) *Document {
	d := &Document{name: name, listeners: make(map[int]Listener)}
	d.setText(text)
	return d
}

func (d *Document) Name() string { return d.name }

func (d *Document) Text() string { return d.text }

func (d *Document) Len() int { return len(d.text) }

func (d *Document) Stamp() int64 { return d.stamp }

func (d *Document) ReadOnly() bool { return d.readOnly }

func (d *Document) SetReadOnly(v bool) { d.readOnly = v }

func (d *Document) LineCount() int { return len(d.lineStarts) }

func (d *Document) Snapshot() Snapshot {
	return Snapshot{Text: d.text, Stamp: d.stamp, LineCount: len(d.lineStarts)}
}

// LineStartOffset returns the offset of the first character of line.
func (d *Document) LineStartOffset(line int) int {
	return d.lineStarts[d.clampLine(line)]
}

// LineEndOffset returns the offset just past the last character of line,
// excluding its terminator.
func (d *Document) LineEndOffset(line int) int {
	line = d.clampLine(line)
	if line+1 < len(d.lineStarts) {
		return d.lineStarts[line+1] - 1
	}
	return len(d.text)
}

// LineText returns the text of line without its terminator.
func (d *Document) LineText(line int) string {
	return d.text[d.LineStartOffset(line):d.LineEndOffset(line)]
}

// LineNumber returns the line containing offset. An offset equal to the text
// length belongs to the last line.
func (d *Document) LineNumber(offset int) int {
	if offset <= 0 {
		return 0
	}
	if offset >= len(d.text) {
		return len(d.lineStarts) - 1
	}
	return sort.Search(len(d.lineStarts), func(i int) bool { return d.lineStarts[i] > offset }) - 1
}

// Lines returns the text of lines [line1, line2).
func (d *Document) Lines(line1, line2 int) []string {
	out := make([]string, 0, max(0, line2-line1))
	for i := line1; i < line2 && i < len(d.lineStarts); i++ {
		out = append(out, d.LineText(i))
	}
	return out
}

// AddListener registers l and returns a function that removes it.
func (d *Document) AddListener(l Listener) func() {
	id := d.nextID
	d.nextID++
	d.listeners[id] = l
	return func() { delete(d.listeners, id) }
}

// Replace substitutes text for [offset, offset+length). Listeners see the edit
// before it is applied.
func (d *Document) Replace(offset, length int, text string) error {
	if d.readOnly {
		return ErrReadOnly
	}
	if offset < 0 || length < 0 || offset+length > len(d.text) {
		return fmt.Errorf("replace [%d,%d) in %d chars: %w", offset, offset+length, len(d.text), ErrOutOfRange)
	}
	old := d.text[offset : offset+length]
	if old == text {
		return nil
	}
	d.apply(edit{offset: offset, oldText: old, newText: text})
	if d.open != nil {
		d.open.edits = append(d.open.edits, edit{offset: offset, oldText: old, newText: text})
	} else {
		d.undo = append(d.undo, group{edits: []edit{{offset: offset, oldText: old, newText: text}}})
	}
	return nil
}

func (d *Document) Insert(offset int, text string) error {
	return d.Replace(offset, 0, text)
}

func (d *Document) Delete(start, end int) error {
	return d.Replace(start, end-start, "")
}

// SetText replaces the whole content as a single edit.
func (d *Document) SetText(text string) error {
	return d.Replace(0, len(d.text), text)
}

// Transaction runs fn with all edits grouped into one undo step. If fn fails,
// the edits it made are reverted and the error is returned.
func (d *Document) Transaction(name string, fn func() error) error {
	if d.open != nil {
		return fn()
	}
	d.open = &group{name: name}
	err := fn()
	g := d.open
	d.open = nil
	if err != nil {
		d.revert(g.edits)
		return err
	}
	if len(g.edits) > 0 {
		d.undo = append(d.undo, *g)
	}
	return nil
}

// CanUndo reports whether Undo has something to revert.
func (d *Document) CanUndo() bool {
	return len(d.undo) > 0
}

// Undo reverts the most recent edit group. The reverting edits go through the
// listeners like any other edit.
func (d *Document) Undo() (string, bool) {
	if len(d.undo) == 0 || d.open != nil {
		return "", false
	}
	g := d.undo[len(d.undo)-1]
	d.undo = d.undo[:len(d.undo)-1]
	d.revert(g.edits)
	return g.name, true
}

func (d *Document) revert(edits []edit) {
	for i := len(edits) - 1; i >= 0; i-- {
		e := edits[i]
		d.apply(edit{offset: e.offset, oldText: e.newText, newText: e.oldText})
	}
}

func (d *Document) apply(e edit) {
	ev := Event{Offset: e.offset, OldText: e.oldText, NewText: e.newText}
	for _, id := range d.listenerIDs() {
		if l, ok := d.listeners[id]; ok {
			l(d, ev)
		}
	}
	d.setText(d.text[:e.offset] + e.newText + d.text[e.offset+len(e.oldText):])
	d.stamp++
}

func (d *Document) listenerIDs() []int {
	ids := make([]int, 0, len(d.listeners))
	for id := range d.listeners {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func (d *Document) setText(text string) {
	d.text = text
	d.lineStarts = d.lineStarts[:0]
	d.lineStarts = append(d.lineStarts, 0)
	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			d.lineStarts = append(d.lineStarts, i+1)
		}
	}
}

func (d *Document) clampLine(line int) int {
	if line < 0 {
		return 0
	}
	if line >= len(d.lineStarts) {
		return len(d.lineStarts) - 1
	}
	return line
}

// CountNewlines returns the number of '\n' in s.
func CountNewlines(s string) int {
	return strings.Count(s, "\n")
}

// SplitLines splits text the way Document counts lines.
func SplitLines(text string) []string {
	return strings.Split(text, "\n")
}
