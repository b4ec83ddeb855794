package util

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

func command(ctx context.Context, cwd, name string, args []string) *exec.Cmd {
	cmd := exec.CommandContext(ctx, name, args...)
	if cwd != "" {
		cmd.Dir = cwd
	}
	return cmd
}

func commandError(name string, args []string, err error, output []byte) error {
	return fmt.Errorf("command failed: %s %s: %w (%s)", name, strings.Join(args, " "), err, strings.TrimSpace(string(output)))
}

func Run(ctx context.Context, cwd string, name string, args ...string) (string, error) {
	out, err := command(ctx, cwd, name, args).CombinedOutput()
	if err != nil {
		return "", commandError(name, args, err, out)
	}
	return string(out), nil
}

// RunWithStdin is Run with text fed to the command's standard input.
// Clipboard helpers read what to copy that way.
func RunWithStdin(ctx context.Context, cwd, stdin, name string, args ...string) (string, error) {
	cmd := command(ctx, cwd, name, args)
	cmd.Stdin = strings.NewReader(stdin)

	out, err := cmd.CombinedOutput()
	if err != nil {
		return "", commandError(name, args, err, out)
	}
	return string(out), nil
}

// RunAllowExit runs name like Run but only captures stdout, and treats the
// listed exit codes as success. git diff exits 1 when the inputs differ.
func RunAllowExit(ctx context.Context, cwd string, allowed []int, name string, args ...string) (string, int, error) {
	out, err := command(ctx, cwd, name, args).Output()
	if err == nil {
		return string(out), 0, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		code := exitErr.ExitCode()
		for _, a := range allowed {
			if code == a {
				return string(out), code, nil
			}
		}
		return "", code, commandError(name, args, err, exitErr.Stderr)
	}
	return "", -1, fmt.Errorf("command failed: %s %s: %w", name, strings.Join(args, " "), err)
}
