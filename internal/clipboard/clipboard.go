// Package clipboard copies exported text to the system clipboard.
package clipboard

import (
	"context"
	"errors"
	"runtime"

	"github.com/atotto/clipboard"

	"mergeview/internal/util"
)

var ErrUnsupported = errors.New("clipboard is not available on this system")

// CopyText writes text to the clipboard. When no clipboard helper is found by
// the clipboard library, the platform command is run directly.
func CopyText(ctx context.Context, text string) error {
	if !clipboard.Unsupported {
		if err := clipboard.WriteAll(text); err == nil {
			return nil
		}
	}
	return copyWithCommand(ctx, runtime.GOOS, text)
}

func copyWithCommand(ctx context.Context, goos, text string) error {
	name, args, ok := command(goos)
	if !ok {
		return ErrUnsupported
	}
	_, err := util.RunWithStdin(ctx, "", text, name, args...)
	return err
}

func command(goos string) (string, []string, bool) {
	switch goos {
	case "darwin":
		return "pbcopy", nil, true
	case "linux":
		return "xclip", []string{"-selection", "clipboard"}, true
	case "windows":
		return "clip", nil, true
	default:
		return "", nil, false
	}
}
