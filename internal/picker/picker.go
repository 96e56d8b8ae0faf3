// Package picker runs an interactive fuzzy finder over history lines.
package picker

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

var (
	// ErrToolNotFound indicates no picker binary is available on PATH.
	ErrToolNotFound = errors.New("no picker tool found")
	// ErrCancelled indicates the user dismissed the picker without choosing.
	ErrCancelled = errors.New("selection cancelled")
)

// Command describes a resolved picker invocation.
type Command struct {
	Path string
	Args []string
}

// SelectCommand locates the picker binary using the provided lookup
// function. An empty command name falls back to fzf, keeping the log in
// its original order with the newest input nearest the prompt.
func SelectCommand(command string, args []string, lookPath func(string) (string, error)) (Command, error) {
	if command == "" {
		command = "fzf"
		if len(args) == 0 {
			args = []string{"--no-sort", "--tac"}
		}
	}
	path, err := lookPath(command)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %s", ErrToolNotFound, command)
	}
	return Command{Path: path, Args: args}, nil
}

// Resolve finds the picker for the current environment.
func Resolve(command string, args []string) (Command, error) {
	return SelectCommand(command, args, exec.LookPath)
}

// Select presents lines in the picker and returns the chosen line.
func (c Command) Select(ctx context.Context, lines []string) (string, error) {
	cmd := exec.CommandContext(ctx, c.Path, c.Args...) // #nosec G204
	cmd.Stdin = strings.NewReader(strings.Join(lines, "\n") + "\n")
	cmd.Stderr = os.Stderr

	out, err := cmd.Output()
	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			// fzf exits 130 on ctrl-c or escape and 1 when nothing matched.
			switch exitErr.ExitCode() {
			case 1, 130:
				return "", ErrCancelled
			}
		}
		return "", fmt.Errorf("run picker: %w", err)
	}
	return strings.TrimSuffix(string(out), "\n"), nil
}
