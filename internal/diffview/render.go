// Package diffview renders one side of a two-document diff and the divider
// between the panes.
package diffview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"mergeview/internal/document"
	"mergeview/internal/fragment"
	"mergeview/internal/tracker"
)

const tabWidth = 4

// PaneInput is everything RenderPane needs for one side.
type PaneInput struct {
	Doc  *document.Document
	Side fragment.Side
	// Width is the content width every returned line is padded to.
	Width int
	// Top and Height select the visible lines; Height <= 0 renders to the end.
	Top    int
	Height int
	// Cursor is the caret line, or -1 when the pane has no caret.
	Cursor   int
	Marks    *Highlights
	Invalid  []*tracker.Change
	Selected func(line int) bool
	Anchored func(line int) bool
}

// RenderPane returns one line of output per visible document line.
func RenderPane(in PaneInput) []string {
	width := max(1, in.Width)
	n := in.Doc.LineCount()
	top := min(max(in.Top, 0), n)
	end := n
	if in.Height > 0 {
		end = min(n, top+in.Height)
	}

	var live map[int]*tracker.Change
	if in.Marks != nil {
		live = in.Marks.Index(in.Side)
	}
	invalid := make(map[int]bool)
	for _, c := range in.Invalid {
		for l := c.StartLine(in.Side); l < c.EndLine(in.Side); l++ {
			invalid[l] = true
		}
	}

	numW := max(3, digits(n))
	out := make([]string, 0, end-top)
	for line := top; line < end; line++ {
		out = append(out, renderLine(in, line, width, numW, live[line], invalid[line]))
	}
	return out
}

func renderLine(in PaneInput, line, width, numW int, c *tracker.Change, invalid bool) string {
	cursorMark := " "
	if line == in.Cursor {
		cursorMark = cursorStyle.Render(">")
	}
	selMark := " "
	if in.Selected != nil && in.Selected(line) {
		selMark = cursorStyle.Render("*")
	}
	anchorMark := " "
	if in.Anchored != nil && in.Anchored(line) {
		anchorMark = cursorStyle.Render("@")
	}

	kind := ' '
	style := plainStyle
	switch {
	case c != nil:
		kind = markFor(c.Type())
		style = styleFor(c.Type())
	case invalid:
		kind = '!'
		style = invalidStyle
	}

	meta := gutterStyle.Render(fmt.Sprintf("%c %*d ", kind, numW, line+1))
	prefix := cursorMark + selMark + anchorMark + meta
	textW := max(0, width-lipgloss.Width(prefix))

	text := in.Doc.LineText(line)
	var spans []span
	if c != nil {
		spans = innerSpans(in.Doc, in.Side, c, line)
	}
	body := ansi.Truncate(styleSegments(text, spans, style), textW, "")
	if pad := textW - ansi.StringWidth(body); pad > 0 {
		body += style.Render(strings.Repeat(" ", pad))
	}
	return prefix + body
}

// span is a byte range of a line's text.
type span struct{ start, end int }

// innerSpans converts the change's inner fragments, which are relative to the
// start of its first line, into byte ranges of line.
func innerSpans(doc *document.Document, side fragment.Side, c *tracker.Change, line int) []span {
	inner := c.Inner()
	if len(inner) == 0 {
		return nil
	}
	base := doc.LineStartOffset(c.StartLine(side))
	lineStart := doc.LineStartOffset(line)
	lineEnd := doc.LineEndOffset(line)

	var out []span
	for _, f := range inner {
		s := max(base+f.StartOffset(side), lineStart)
		e := min(base+f.EndOffset(side), lineEnd)
		if s < e {
			out = append(out, span{start: s - lineStart, end: e - lineStart})
		}
	}
	return out
}

func styleSegments(text string, spans []span, base lipgloss.Style) string {
	var b strings.Builder
	col := 0
	pos := 0
	emit := func(seg string, st lipgloss.Style) {
		if seg == "" {
			return
		}
		expanded := expandTabs(seg, col)
		col += len([]rune(expanded))
		b.WriteString(st.Render(expanded))
	}
	for _, sp := range spans {
		if sp.start < pos || sp.end > len(text) {
			continue
		}
		emit(text[pos:sp.start], base)
		emit(text[sp.start:sp.end], innerStyle)
		pos = sp.end
	}
	emit(text[pos:], base)
	return b.String()
}

func expandTabs(s string, col int) string {
	if !strings.ContainsRune(s, '\t') {
		return s
	}
	var b strings.Builder
	for _, r := range s {
		if r == '\t' {
			n := tabWidth - col%tabWidth
			b.WriteString(strings.Repeat(" ", n))
			col += n
			continue
		}
		b.WriteRune(r)
		col++
	}
	return b.String()
}

func digits(n int) int {
	if n <= 0 {
		return 1
	}
	d := 0
	for n > 0 {
		d++
		n /= 10
	}
	return d
}
