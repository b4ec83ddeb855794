package compare

import (
	"context"
	"unicode/utf8"

	"github.com/sergi/go-diff/diffmatchpatch"
	"go.uber.org/zap"

	"mergeview/internal/fragment"
)

// LineOracle compares texts line by line with diffmatchpatch. Every distinct
// line key becomes one rune, so the Myers pass runs over lines rather than
// characters.
type LineOracle struct {
	opts  Options
	words *wordSplitter
}

func NewLineOracle(opts ...Option) *LineOracle {
	o := buildOptions(opts)
	return &LineOracle{opts: o, words: newWordSplitter(o.FileName)}
}

func (o *LineOracle) Compare(ctx context.Context, text1, text2 string, policy Policy) ([]fragment.LineFragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s1, s2 := split(text1), split(text2)
	if err := checkSize(s1, s2, o.opts.MaxLines); err != nil {
		return nil, err
	}

	r1, r2 := encode(s1.keys(policy.Ignore), s2.keys(policy.Ignore))
	dmp := diffmatchpatch.New()
	diffs := dmp.DiffCleanupMerge(dmp.DiffMainRunes(r1, r2, false))
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := &blockBuilder{s1: s1, s2: s2}
	line1, line2 := 0, 0
	for _, d := range diffs {
		n := utf8.RuneCountInString(d.Text)
		switch d.Type {
		case diffmatchpatch.DiffEqual:
			line1 += n
			line2 += n
		case diffmatchpatch.DiffDelete:
			b.add(line1, line1+n, line2, line2)
			line1 += n
		case diffmatchpatch.DiffInsert:
			b.add(line1, line1, line2, line2+n)
			line2 += n
		}
	}

	o.opts.Log.Debug("line compare",
		zap.Int("lines1", len(s1.lines)),
		zap.Int("lines2", len(s2.lines)),
		zap.Int("fragments", len(b.out)),
		zap.Stringer("policy", policy))
	return refine(ctx, b.out, text1, text2, policy, o.words)
}
