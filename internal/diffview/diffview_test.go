package diffview

import (
	"context"
	"strings"
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"mergeview/internal/compare"
	"mergeview/internal/document"
	"mergeview/internal/fragment"
	"mergeview/internal/syncscroll"
	"mergeview/internal/tracker"
)

func setup(t *testing.T, text1, text2 string) (*document.Document, *document.Document, *tracker.Tracker, *Highlights) {
	t.Helper()
	doc1 := document.New("left", text1)
	doc2 := document.New("right", text2)
	frs, err := compare.NewLineOracle().Compare(context.Background(), text1, text2, compare.DefaultPolicy())
	if err != nil {
		t.Fatalf("Compare() error = %v", err)
	}
	h := NewHighlights()
	tr := tracker.New(h)
	tr.Reset(frs)
	return doc1, doc2, tr, h
}

func TestRenderPaneMarksChangedLines(t *testing.T) {
	doc1, doc2, _, h := setup(t, "a\nb\nc", "a\nx\ny\nc")

	left := RenderPane(PaneInput{Doc: doc1, Side: fragment.Side1, Width: 30, Cursor: 1, Marks: h})
	right := RenderPane(PaneInput{Doc: doc2, Side: fragment.Side2, Width: 30, Cursor: -1, Marks: h,
		Selected: func(line int) bool { return line == 2 },
		Anchored: func(line int) bool { return line == 3 },
	})

	if len(left) != 3 || len(right) != 4 {
		t.Fatalf("line counts left=%d right=%d", len(left), len(right))
	}
	if got := ansi.Strip(left[1]); !strings.HasPrefix(got, ">  ~   2 b") {
		t.Fatalf("left[1]=%q", got)
	}
	if got := ansi.Strip(left[0]); !strings.HasPrefix(got, "       1 a") {
		t.Fatalf("left[0]=%q", got)
	}
	if got := ansi.Strip(right[2]); !strings.HasPrefix(got, " * ~   3 y") {
		t.Fatalf("right[2]=%q", got)
	}
	if got := ansi.Strip(right[3]); !strings.HasPrefix(got, "  @    4 c") {
		t.Fatalf("right[3]=%q", got)
	}
	for i, line := range append(left, right...) {
		if lipgloss.Width(line) != 30 {
			t.Fatalf("line %d width=%d want 30: %q", i, lipgloss.Width(line), line)
		}
	}
}

func TestRenderPaneWindowAndTruncation(t *testing.T) {
	doc := document.New("", "one\ntwo\nthree and a very long tail that cannot fit\nfour")
	out := RenderPane(PaneInput{Doc: doc, Side: fragment.Side1, Width: 16, Top: 1, Height: 2, Cursor: -1})
	if len(out) != 2 {
		t.Fatalf("len(out)=%d want 2", len(out))
	}
	if got := ansi.Strip(out[1]); got != "       3 three a" {
		t.Fatalf("out[1]=%q", got)
	}
}

func TestRenderPaneShowsInvalidChanges(t *testing.T) {
	doc1, _, tr, h := setup(t, "a\nb\nc\n", "a\nx\nc\n")
	tr.Invalidate(tr.Active()...)

	out := RenderPane(PaneInput{Doc: doc1, Side: fragment.Side1, Width: 20, Cursor: -1, Marks: h, Invalid: tr.Invalid()})
	if got := ansi.Strip(out[1]); !strings.HasPrefix(got, "   !   2 b") {
		t.Fatalf("out[1]=%q", got)
	}
}

func TestInnerSpansPerLine(t *testing.T) {
	doc1, doc2, tr, _ := setup(t, "keep\nold value\n", "keep\nnew value\n")
	c := tr.Active()[0]
	if len(c.Inner()) == 0 {
		t.Fatalf("expected inner fragments")
	}

	got := innerSpans(doc1, fragment.Side1, c, 1)
	if len(got) != 1 || doc1.LineText(1)[got[0].start:got[0].end] != "old" {
		t.Fatalf("innerSpans(side1)=%v", got)
	}
	got = innerSpans(doc2, fragment.Side2, c, 1)
	if len(got) != 1 || doc2.LineText(1)[got[0].start:got[0].end] != "new" {
		t.Fatalf("innerSpans(side2)=%v", got)
	}
}

func TestHighlightsFollowTracker(t *testing.T) {
	_, _, tr, h := setup(t, "1\n2\n3\n4\n5\n", "1\nB\n3\n4\nE\n")
	if h.Len() != 2 {
		t.Fatalf("Len()=%d want 2", h.Len())
	}
	if c, ok := h.At(fragment.Side2, 4); !ok || c.StartLine(fragment.Side2) != 4 {
		t.Fatalf("At(side2, 4)=(%v, %v)", c, ok)
	}

	v := h.Version()
	tr.OnEdit(fragment.Side1, 0, 1, 1)
	if h.Version() == v {
		t.Fatalf("Version() did not move after reprojection")
	}
	if _, ok := h.At(fragment.Side1, 2); !ok {
		t.Fatalf("expected shifted change at side1 line 2")
	}

	tr.Invalidate(tr.Active()[0])
	if h.Len() != 1 {
		t.Fatalf("Len() after invalidate=%d want 1", h.Len())
	}
	tr.Clear()
	if h.Len() != 0 {
		t.Fatalf("Len() after clear=%d want 0", h.Len())
	}
}

func TestRenderDivider(t *testing.T) {
	m := syncscroll.New([]syncscroll.Block{{Start1: 1, End1: 2, Start2: 1, End2: 3}, {Start1: 3, End1: 3, Start2: 4, End2: 5}}, 5, 7)
	got := RenderDivider(m, 0, 0, 5)
	want := []string{" │ ", "▐─▌", " │▌", "_│ ", " │▌"}
	if len(got) != len(want) {
		t.Fatalf("len=%d want %d", len(got), len(want))
	}
	for i := range want {
		if ansi.Strip(got[i]) != want[i] {
			t.Fatalf("row %d=%q want %q", i, ansi.Strip(got[i]), want[i])
		}
	}
}

func TestExpandTabs(t *testing.T) {
	tests := []struct {
		in   string
		col  int
		want string
	}{
		{in: "\tx", want: "    x"},
		{in: "ab\tc", want: "ab  c"},
		{in: "\t", col: 3, want: " "},
		{in: "plain", want: "plain"},
	}
	for _, tt := range tests {
		if got := expandTabs(tt.in, tt.col); got != tt.want {
			t.Fatalf("expandTabs(%q, %d)=%q want %q", tt.in, tt.col, got, tt.want)
		}
	}
}

func TestJoinRows(t *testing.T) {
	got := JoinRows([]string{"a", "b"}, []string{"|", "|"}, []string{"c"})
	if got != "a|c\nb|" {
		t.Fatalf("JoinRows()=%q", got)
	}
}
