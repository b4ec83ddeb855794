package compare

import (
	"context"
	"strings"
	"unicode"

	"github.com/sergi/go-diff/diffmatchpatch"

	"mergeview/internal/fragment"
)

// maxInnerBytes bounds the block size for which fine fragments are computed.
const maxInnerBytes = 64 << 10

// refine attaches word or character fragments to modified blocks when the
// highlight policy asks for them.
func refine(ctx context.Context, frs []fragment.LineFragment, text1, text2 string, policy Policy, words *wordSplitter) ([]fragment.LineFragment, error) {
	if !policy.Highlight.FineFragments() {
		return frs, nil
	}
	for i := range frs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		f := &frs[i]
		if f.Type() != fragment.Modified {
			continue
		}
		b1 := text1[f.StartOffset1:f.EndOffset1]
		b2 := text2[f.StartOffset2:f.EndOffset2]
		if len(b1)+len(b2) > maxInnerBytes {
			continue
		}
		var inner []fragment.DiffFragment
		if policy.Highlight == HighlightByChar {
			inner = charFragments(b1, b2)
		} else {
			inner = tokenFragments(words.split(b1), words.split(b2))
		}
		if policy.Ignore != IgnoreNone {
			inner = dropBlank(inner, b1, b2)
		}
		f.Inner = inner
	}
	return frs, nil
}

type innerBuilder struct {
	out []fragment.DiffFragment
}

func (b *innerBuilder) add(start1, end1, start2, end2 int) {
	if start1 == end1 && start2 == end2 {
		return
	}
	if n := len(b.out); n > 0 {
		last := &b.out[n-1]
		if last.EndOffset1 == start1 && last.EndOffset2 == start2 {
			last.EndOffset1 = end1
			last.EndOffset2 = end2
			return
		}
	}
	b.out = append(b.out, fragment.DiffFragment{StartOffset1: start1, EndOffset1: end1, StartOffset2: start2, EndOffset2: end2})
}

func charFragments(b1, b2 string) []fragment.DiffFragment {
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupMerge(dmp.DiffMain(b1, b2, false))
	var b innerBuilder
	o1, o2 := 0, 0
	for _, d := range diffs {
		n := len(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			o1 += n
			o2 += n
		case diffmatchpatch.DiffDelete:
			b.add(o1, o1+n, o2, o2)
			o1 += n
		case diffmatchpatch.DiffInsert:
			b.add(o1, o1, o2, o2+n)
			o2 += n
		}
	}
	return b.out
}

func tokenFragments(t1, t2 []string) []fragment.DiffFragment {
	r1, r2 := encode(t1, t2)
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupMerge(dmp.DiffMainRunes(r1, r2, false))

	var b innerBuilder
	i1, i2 := 0, 0
	o1, o2 := 0, 0
	for _, d := range diffs {
		n := len([]rune(d.Text))
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			o1 += tokenBytes(t1[i1 : i1+n])
			o2 += tokenBytes(t2[i2 : i2+n])
			i1 += n
			i2 += n
		case diffmatchpatch.DiffDelete:
			w := tokenBytes(t1[i1 : i1+n])
			b.add(o1, o1+w, o2, o2)
			o1 += w
			i1 += n
		case diffmatchpatch.DiffInsert:
			w := tokenBytes(t2[i2 : i2+n])
			b.add(o1, o1, o2, o2+w)
			o2 += w
			i2 += n
		}
	}
	return b.out
}

func tokenBytes(tokens []string) int {
	n := 0
	for _, t := range tokens {
		n += len(t)
	}
	return n
}

func dropBlank(inner []fragment.DiffFragment, b1, b2 string) []fragment.DiffFragment {
	out := inner[:0]
	for _, f := range inner {
		if isBlank(b1[f.StartOffset1:f.EndOffset1]) && isBlank(b2[f.StartOffset2:f.EndOffset2]) {
			continue
		}
		out = append(out, f)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func isBlank(s string) bool {
	return strings.TrimFunc(s, unicode.IsSpace) == ""
}
