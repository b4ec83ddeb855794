// Package navigate finds a line in a live document from the text around it,
// as recorded at some earlier point.
package navigate

import (
	"iter"
	"slices"

	"mergeview/internal/document"
	"mergeview/internal/fragment"
	"mergeview/internal/tracker"
)

// Context identifies a line by its own text and the lines around it.
type Context struct {
	Before []string `json:"before,omitempty"`
	Target string   `json:"target"`
	After  []string `json:"after,omitempty"`
}

// Capture records up to radius lines on each side of line in doc.
func Capture(doc *document.Document, line, radius int) Context {
	n := doc.LineCount()
	line = min(max(line, 0), n-1)
	return Context{
		Before: doc.Lines(max(0, line-radius), line),
		Target: doc.LineText(line),
		After:  doc.Lines(line+1, min(n, line+1+radius)),
	}
}

func (c Context) window() []string {
	w := make([]string, 0, len(c.Before)+1+len(c.After))
	w = append(w, c.Before...)
	w = append(w, c.Target)
	return append(w, c.After...)
}

// Resolve returns the line matching ctx, looking first at changed lines and
// then at every line. Within a pass the lowest matching line wins. Lines only
// form a window when their numbers are consecutive.
func Resolve(ctx Context, changed, all iter.Seq2[int, string]) (int, bool) {
	window := ctx.window()
	if line, ok := scan(window, len(ctx.Before), changed); ok {
		return line, true
	}
	return scan(window, len(ctx.Before), all)
}

type numbered struct {
	line int
	text string
}

func scan(window []string, target int, lines iter.Seq2[int, string]) (int, bool) {
	if lines == nil {
		return 0, false
	}
	buf := make([]numbered, 0, len(window))
	for line, text := range lines {
		if len(buf) > 0 && buf[len(buf)-1].line+1 != line {
			buf = buf[:0]
		}
		if len(buf) == len(window) {
			buf = slices.Delete(buf, 0, 1)
		}
		buf = append(buf, numbered{line: line, text: text})
		if len(buf) == len(window) && matches(buf, window) {
			return buf[target].line, true
		}
	}
	return 0, false
}

func matches(buf []numbered, window []string) bool {
	for i, w := range window {
		if buf[i].text != w {
			return false
		}
	}
	return true
}

// ChangedLines yields the lines covered by the changes on side, in order.
func ChangedLines(changes []*tracker.Change, side fragment.Side, doc *document.Document) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		for _, c := range changes {
			end := min(c.EndLine(side), doc.LineCount())
			for l := c.StartLine(side); l < end; l++ {
				if !yield(l, doc.LineText(l)) {
					return
				}
			}
		}
	}
}

// AllLines yields every line of doc.
func AllLines(doc *document.Document) iter.Seq2[int, string] {
	return func(yield func(int, string) bool) {
		for l := 0; l < doc.LineCount(); l++ {
			if !yield(l, doc.LineText(l)) {
				return
			}
		}
	}
}
