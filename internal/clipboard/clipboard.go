// Package clipboard copies text to the system paste buffer through an
// external tool.
package clipboard

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"runtime"
)

// ErrToolNotFound is returned when no copy tool exists on this host.
var ErrToolNotFound = errors.New("clipboard tool not found")

// Command is a resolved copy tool invocation.
type Command struct {
	Path string
	Args []string
}

// SelectCommand picks the copy tool for goos. An override names an explicit
// command and skips platform detection.
func SelectCommand(goos, override string, lookPath func(string) (string, error)) (Command, error) {
	if override != "" {
		path, err := lookPath(override)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %s", ErrToolNotFound, override)
		}
		return Command{Path: path}, nil
	}

	switch goos {
	case "darwin":
		path, err := lookPath("pbcopy")
		if err != nil {
			return Command{}, ErrToolNotFound
		}
		return Command{Path: path}, nil
	case "linux":
		if path, err := lookPath("wl-copy"); err == nil {
			return Command{Path: path}, nil
		}
		if path, err := lookPath("xclip"); err == nil {
			return Command{Path: path, Args: []string{"-selection", "clipboard"}}, nil
		}
		return Command{}, ErrToolNotFound
	default:
		return Command{}, ErrToolNotFound
	}
}

// Resolve picks the copy tool for this host, honoring override.
func Resolve(override string) (Command, error) {
	return SelectCommand(runtime.GOOS, override, exec.LookPath)
}

// Copy pipes text into the resolved tool's stdin.
func (c Command) Copy(ctx context.Context, text string) error {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...)
	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("clipboard stdin: %w", err)
	}

	if err := cmd.Start(); err != nil {
		_ = stdin.Close()
		return fmt.Errorf("start clipboard command: %w", err)
	}

	if _, err := stdin.Write([]byte(text)); err != nil {
		_ = stdin.Close()
		_ = cmd.Wait()
		return fmt.Errorf("write clipboard data: %w", err)
	}
	_ = stdin.Close()

	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("clipboard command failed: %w", err)
	}
	return nil
}
