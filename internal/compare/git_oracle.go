package compare

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"mergeview/internal/fragment"
	"mergeview/internal/git"
)

// GitOracle delegates the line comparison to git diff --no-index. Under an
// ignore policy git sees the same normalised lines the other oracles compare,
// one per original line, so hunk line numbers map straight back to the texts.
type GitOracle struct {
	opts  Options
	words *wordSplitter
}

func NewGitOracle(opts ...Option) *GitOracle {
	o := buildOptions(opts)
	return &GitOracle{opts: o, words: newWordSplitter(o.FileName)}
}

func (o *GitOracle) Compare(ctx context.Context, text1, text2 string, policy Policy) ([]fragment.LineFragment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s1, s2 := split(text1), split(text2)
	if err := checkSize(s1, s2, o.opts.MaxLines); err != nil {
		return nil, err
	}
	in1, in2 := text1, text2
	if policy.Ignore != IgnoreNone {
		in1, in2 = s1.normalized(policy.Ignore), s2.normalized(policy.Ignore)
	}

	dir, err := os.MkdirTemp("", "mergeview-*")
	if err != nil {
		return nil, fmt.Errorf("git compare: %w", err)
	}
	defer os.RemoveAll(dir)

	path1 := filepath.Join(dir, "left")
	path2 := filepath.Join(dir, "right")
	if err := os.WriteFile(path1, []byte(in1), 0o600); err != nil {
		return nil, fmt.Errorf("git compare: %w", err)
	}
	if err := os.WriteFile(path2, []byte(in2), 0o600); err != nil {
		return nil, fmt.Errorf("git compare: %w", err)
	}

	flags := []string{"-U0", "--diff-algorithm=myers"}

	raw, err := git.DiffNoIndex(ctx, dir, flags, "left", "right")
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("git compare: %w", err)
	}

	frs, err := ParsePatch([]byte(raw), text1, text2)
	if err != nil {
		return nil, err
	}
	o.opts.Log.Debug("git compare", zap.Int("fragments", len(frs)), zap.Stringer("policy", policy))
	return refine(ctx, frs, text1, text2, policy, o.words)
}
