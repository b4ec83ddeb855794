package git

import (
	"context"

	"mergeview/internal/util"
)

// DiffNoIndex runs git diff --no-index over two files outside any repository
// and returns the raw patch. Identical files yield an empty patch.
func DiffNoIndex(ctx context.Context, cwd string, flags []string, path1, path2 string) (string, error) {
	args := []string{"diff", "--no-index", "--no-color", "--no-ext-diff"}
	args = append(args, flags...)
	args = append(args, "--", path1, path2)

	// --no-index returns exit code 1 when a diff exists.
	out, _, err := util.RunAllowExit(ctx, cwd, []int{1}, "git", args...)
	if err != nil {
		return "", err
	}
	return out, nil
}
