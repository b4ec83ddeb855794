package anchors

import (
	"fmt"
	"strings"
)

func ExportPlain(anchors []Anchor, title string) string {
	if title == "" {
		title = "Anchors"
	}

	lines := []string{title, ""}
	for i, a := range anchors {
		header := fmt.Sprintf("%d) %s:%d", i+1, a.Path, a.Line+1)
		if a.Stale {
			header += " (stale)"
		}
		lines = append(lines, header)
		if a.Note != "" {
			lines = append(lines, "   Note: "+a.Note)
		}
		lines = append(lines, "   Context:")
		for _, ln := range a.Context.Before {
			lines = append(lines, "     "+ln)
		}
		lines = append(lines, "     > "+a.Context.Target)
		for _, ln := range a.Context.After {
			lines = append(lines, "     "+ln)
		}
		lines = append(lines, "")
	}
	return strings.TrimRight(strings.Join(lines, "\n"), "\n")
}
