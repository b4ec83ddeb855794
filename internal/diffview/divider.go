package diffview

import (
	"strings"

	"mergeview/internal/syncscroll"
)

// DividerWidth is the width of every line RenderDivider returns.
const DividerWidth = 3

// RenderDivider draws the connectors between two panes whose first visible
// lines are top1 and top2. A row shows which side is inside a changed block,
// and joins the two when both rows belong to the same block. An empty range
// is marked on the row where it sits.
func RenderDivider(m *syncscroll.Mapper, top1, top2, height int) []string {
	var blocks []syncscroll.Block
	m.Blocks(func(b syncscroll.Block) bool {
		if b.End1 < top1 && b.End2 < top2 {
			return true
		}
		blocks = append(blocks, b)
		return b.Start1 <= top1+height || b.Start2 <= top2+height
	})

	out := make([]string, 0, height)
	for row := 0; row < height; row++ {
		line1, line2 := top1+row, top2+row
		left, mid, right := " ", "│", " "
		b1, ok1 := blockAt(blocks, line1, true)
		b2, ok2 := blockAt(blocks, line2, false)
		switch {
		case ok1 && b1.Start1 == b1.End1:
			left = "_"
		case ok1:
			left = "▐"
		}
		switch {
		case ok2 && b2.Start2 == b2.End2:
			right = "_"
		case ok2:
			right = "▌"
		}
		if ok1 && ok2 && b1 == b2 {
			mid = "─"
		}
		out = append(out, dividerStyle.Render(left+mid+right))
	}
	return out
}

func blockAt(blocks []syncscroll.Block, line int, first bool) (syncscroll.Block, bool) {
	for _, b := range blocks {
		start, end := b.Start2, b.End2
		if first {
			start, end = b.Start1, b.End1
		}
		if start == end && line == start {
			return b, true
		}
		if line >= start && line < end {
			return b, true
		}
	}
	return syncscroll.Block{}, false
}

// JoinRows places the left pane, divider and right pane lines side by side.
func JoinRows(left, divider, right []string) string {
	n := max(len(left), len(divider), len(right))
	rows := make([]string, n)
	for i := range n {
		rows[i] = at(left, i) + at(divider, i) + at(right, i)
	}
	return strings.Join(rows, "\n")
}

func at(lines []string, i int) string {
	if i < len(lines) {
		return lines[i]
	}
	return ""
}
