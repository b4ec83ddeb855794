package app

import "mergeview/internal/diffview"

// paneWidths returns the content widths of the two diff panes. Each pane has
// a left and right border; the divider sits between them.
func paneWidths(totalWidth int) (int, int) {
	available := totalWidth - 4 - diffview.DividerWidth
	if available < 2 {
		return 1, 1
	}
	left := available / 2
	return left, available - left
}

// paneHeight is the number of document lines a pane shows once the footer,
// dock, pane title and borders are taken out.
func paneHeight(totalHeight, footerHeight, dockHeight int) int {
	return max(1, totalHeight-footerHeight-dockHeight-3)
}

// scrollTop keeps line inside the window [top, top+height), leaving padding
// lines around it when the window allows.
func scrollTop(top, line, height, lineCount, padding int) int {
	if height <= 0 {
		return 0
	}
	padding = min(padding, (height-1)/2)
	if line-padding < top {
		top = line - padding
	}
	if line+padding >= top+height {
		top = line + padding - height + 1
	}
	return min(max(top, 0), max(0, lineCount-height))
}
