package git

import (
	"context"
	"path/filepath"
	"strings"

	"mergeview/internal/util"
)

func DiscoverRepoRoot(ctx context.Context, cwd string) (string, error) {
	out, err := util.Run(ctx, cwd, "git", "rev-parse", "--show-toplevel")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

func DiscoverGitDir(ctx context.Context, cwd string) (string, error) {
	out, err := util.Run(ctx, cwd, "git", "rev-parse", "--absolute-git-dir")
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

// HeadVersion returns the content of path at HEAD. ok is false when the file
// does not exist at HEAD (untracked or newly added).
func HeadVersion(ctx context.Context, path string) (text string, ok bool, err error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", false, err
	}
	dir, base := filepath.Split(abs)

	item, found, err := FileStatus(ctx, dir, base)
	if err != nil {
		return "", false, err
	}
	if found && (item.Status == "??" || strings.HasPrefix(item.Status, "A")) {
		return "", false, nil
	}

	out, _, err := util.RunAllowExit(ctx, dir, nil, "git", "show", "HEAD:./"+base)
	if err != nil {
		return "", false, err
	}
	return out, true, nil
}
