package compare

import (
	"bytes"
	"fmt"
	"strings"

	sgdiff "github.com/sourcegraph/go-diff/diff"

	"mergeview/internal/fragment"
)

const noNewlineMarker = "\\ No newline at end of file"

// ParsePatch reads a single-file unified diff of text1 against text2 and
// returns its changed blocks with offsets into both texts. An empty patch
// yields no fragments.
func ParsePatch(raw []byte, text1, text2 string) ([]fragment.LineFragment, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, nil
	}
	fileDiffs, err := sgdiff.ParseMultiFileDiff(raw)
	if err != nil {
		return nil, fmt.Errorf("parse patch: %w", err)
	}
	if len(fileDiffs) > 1 {
		return nil, fmt.Errorf("parse patch: expected one file, got %d", len(fileDiffs))
	}

	s1, s2 := split(text1), split(text2)
	b := &blockBuilder{s1: s1, s2: s2}
	for _, fd := range fileDiffs {
		for _, h := range fd.Hunks {
			if err := walkHunk(h, b); err != nil {
				return nil, err
			}
		}
	}
	if err := fragment.Validate(b.out); err != nil {
		return nil, fmt.Errorf("parse patch: %w", err)
	}
	return b.out, nil
}

func walkHunk(h *sgdiff.Hunk, b *blockBuilder) error {
	// A zero-length range names the line before the change.
	old := int(h.OrigStartLine)
	if h.OrigLines > 0 {
		old--
	}
	cur := int(h.NewStartLine)
	if h.NewLines > 0 {
		cur--
	}
	if old+int(h.OrigLines) > len(b.s1.lines) || cur+int(h.NewLines) > len(b.s2.lines) {
		return fmt.Errorf("parse patch: hunk %s out of range", hunkHeader(h))
	}

	lines := strings.Split(string(h.Body), "\n")
	for i := 0; i < len(lines); {
		line := lines[i]
		if line == "" {
			i++
			continue
		}
		switch line[0] {
		case ' ':
			old++
			cur++
			i++
		case '-', '+':
			dels, adds := 0, 0
			for i < len(lines) && lines[i] != "" && (lines[i][0] == '-' || lines[i][0] == '+' || lines[i][0] == '\\') {
				switch lines[i][0] {
				case '-':
					dels++
				case '+':
					adds++
				}
				i++
			}
			b.add(old, old+dels, cur, cur+adds)
			old += dels
			cur += adds
		default:
			i++
		}
	}
	return nil
}

func hunkHeader(h *sgdiff.Hunk) string {
	return fmt.Sprintf("@@ -%d,%d +%d,%d @@", h.OrigStartLine, h.OrigLines, h.NewStartLine, h.NewLines)
}

// FormatPatch renders frs as a unified diff of text1 against text2 with the
// given number of context lines around each change.
func FormatPatch(name1, name2, text1, text2 string, frs []fragment.LineFragment, context int) ([]byte, error) {
	if len(frs) == 0 {
		return nil, nil
	}
	if context < 0 {
		context = 0
	}
	s1, s2 := split(text1), split(text2)
	fd := &sgdiff.FileDiff{OrigName: name1, NewName: name2}

	for i := 0; i < len(frs); {
		j := i + 1
		for j < len(frs) && frs[j].StartLine1-frs[j-1].EndLine1 <= 2*context {
			j++
		}
		fd.Hunks = append(fd.Hunks, buildHunk(s1, s2, frs[i:j], context))
		i = j
	}

	out, err := sgdiff.PrintFileDiff(fd)
	if err != nil {
		return nil, fmt.Errorf("format patch: %w", err)
	}
	return out, nil
}

func buildHunk(s1, s2 *splitText, group []fragment.LineFragment, context int) *sgdiff.Hunk {
	first, last := group[0], group[len(group)-1]
	lead := min(context, first.StartLine1, first.StartLine2)
	trail := min(context, len(s1.lines)-last.EndLine1, len(s2.lines)-last.EndLine2)
	start1, start2 := first.StartLine1-lead, first.StartLine2-lead
	end1 := last.EndLine1 + trail

	var body bytes.Buffer
	writeLine := func(prefix byte, line string) {
		body.WriteByte(prefix)
		body.WriteString(line)
		if !strings.HasSuffix(line, "\n") {
			body.WriteString("\n" + noNewlineMarker + "\n")
		}
	}

	l1 := start1
	for _, f := range group {
		for ; l1 < f.StartLine1; l1++ {
			writeLine(' ', s1.lines[l1])
		}
		for k := f.StartLine1; k < f.EndLine1; k++ {
			writeLine('-', s1.lines[k])
		}
		for k := f.StartLine2; k < f.EndLine2; k++ {
			writeLine('+', s2.lines[k])
		}
		l1 = f.EndLine1
	}
	for ; l1 < end1; l1++ {
		writeLine(' ', s1.lines[l1])
	}

	origLines := end1 - start1
	newLines := origLines + delta(group)
	h := &sgdiff.Hunk{
		OrigStartLine: int32(start1),
		OrigLines:     int32(origLines),
		NewStartLine:  int32(start2),
		NewLines:      int32(newLines),
		Body:          body.Bytes(),
	}
	if origLines > 0 {
		h.OrigStartLine++
	}
	if newLines > 0 {
		h.NewStartLine++
	}
	return h
}

func delta(group []fragment.LineFragment) int {
	d := 0
	for _, f := range group {
		d += (f.EndLine2 - f.StartLine2) - (f.EndLine1 - f.StartLine1)
	}
	return d
}
