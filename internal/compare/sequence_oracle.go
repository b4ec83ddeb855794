package compare

import (
	"context"

	"github.com/pmezard/go-difflib/difflib"
	"go.uber.org/zap"

	"mergeview/internal/fragment"
)

// SequenceOracle uses difflib's SequenceMatcher, which favours long matching
// runs over the minimal edit script.
type SequenceOracle struct {
	opts  Options
	words *wordSplitter
}

func NewSequenceOracle(opts ...Option) *SequenceOracle {
	o := buildOptions(opts)
	return &SequenceOracle{opts: o, words: newWordSplitter(o.FileName)}
}

func (o *SequenceOracle) Compare(ctx context.Context, text1, text2 string, policy Policy) ([]fragment.LineFragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s1, s2 := split(text1), split(text2)
	if err := checkSize(s1, s2, o.opts.MaxLines); err != nil {
		return nil, err
	}

	m := difflib.NewMatcherWithJunk(s1.keys(policy.Ignore), s2.keys(policy.Ignore), false, nil)
	ops := m.GetOpCodes()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	b := &blockBuilder{s1: s1, s2: s2}
	for _, op := range ops {
		if op.Tag == 'e' {
			continue
		}
		b.add(op.I1, op.I2, op.J1, op.J2)
	}

	o.opts.Log.Debug("sequence compare",
		zap.Int("opcodes", len(ops)),
		zap.Int("fragments", len(b.out)),
		zap.Stringer("policy", policy))
	return refine(ctx, b.out, text1, text2, policy, o.words)
}
