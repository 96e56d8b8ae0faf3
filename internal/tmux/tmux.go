// Package tmux stores pane markers in the tmux server's global environment
// and reports pane identity.
package tmux

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"panehist/internal/marker"
)

// ErrNotInTmux is returned when the process has no pane identity.
var ErrNotInTmux = errors.New("not running inside tmux")

const (
	startKeyPrefix   = "PANEHIST_START_TS"
	projectKeyPrefix = "PANEHIST_PROJECT"
)

// Runner executes one tmux command and returns its stdout.
type Runner func(ctx context.Context, args ...string) ([]byte, error)

func runTmux(ctx context.Context, args ...string) ([]byte, error) {
	out, err := exec.CommandContext(ctx, "tmux", args...).Output()
	if err != nil {
		return nil, fmt.Errorf("tmux %s: %w", args[0], err)
	}
	return out, nil
}

// CurrentPane returns the pane identity tmux exported to this process.
func CurrentPane() (string, error) {
	pane := os.Getenv("TMUX_PANE")
	if pane == "" {
		return "", ErrNotInTmux
	}
	return pane, nil
}

// Available reports whether a tmux binary answers on this host.
func Available(ctx context.Context) bool {
	_, err := exec.CommandContext(ctx, "tmux", "-V").CombinedOutput()
	return err == nil
}

// EnvStore implements marker.Store on the tmux global environment. The
// variable names embed the pane identity, so markers from different panes
// never collide even though the environment itself is server-wide.
type EnvStore struct {
	run Runner
}

// NewEnvStore returns a store that shells out to the tmux binary.
func NewEnvStore() *EnvStore {
	return &EnvStore{run: runTmux}
}

// NewEnvStoreWithRunner returns a store backed by run instead of a real
// tmux binary.
func NewEnvStoreWithRunner(run Runner) *EnvStore {
	return &EnvStore{run: run}
}

// Get reads both marker variables for pane. A missing or unparsable half
// means the pane has no marker.
func (s *EnvStore) Get(ctx context.Context, pane string) (marker.Marker, error) {
	startRaw, err := s.getVar(ctx, envKey(startKeyPrefix, pane))
	if err != nil {
		return marker.Marker{}, err
	}
	project, err := s.getVar(ctx, envKey(projectKeyPrefix, pane))
	if err != nil {
		return marker.Marker{}, err
	}

	startTS, err := strconv.ParseInt(startRaw, 10, 64)
	if err != nil {
		return marker.Marker{}, marker.ErrNoMarker
	}

	return marker.Marker{StartTS: startTS, Project: project}, nil
}

// Set records m for pane, replacing any previous marker.
func (s *EnvStore) Set(ctx context.Context, pane string, m marker.Marker) error {
	if _, err := s.run(ctx, "set-environment", "-g", envKey(startKeyPrefix, pane), strconv.FormatInt(m.StartTS, 10)); err != nil {
		return fmt.Errorf("store start time: %w", err)
	}
	if _, err := s.run(ctx, "set-environment", "-g", envKey(projectKeyPrefix, pane), m.Project); err != nil {
		return fmt.Errorf("store project: %w", err)
	}
	return nil
}

// Clear removes both marker variables for pane.
func (s *EnvStore) Clear(ctx context.Context, pane string) error {
	if _, err := s.run(ctx, "set-environment", "-g", "-u", envKey(startKeyPrefix, pane)); err != nil {
		return fmt.Errorf("clear start time: %w", err)
	}
	if _, err := s.run(ctx, "set-environment", "-g", "-u", envKey(projectKeyPrefix, pane)); err != nil {
		return fmt.Errorf("clear project: %w", err)
	}
	return nil
}

func (s *EnvStore) getVar(ctx context.Context, name string) (string, error) {
	out, err := s.run(ctx, "show-environment", "-g", name)
	if err != nil {
		// tmux exits non-zero for unknown variables
		return "", marker.ErrNoMarker
	}

	prefix := name + "="
	for _, line := range strings.Split(strings.TrimSpace(string(out)), "\n") {
		if strings.HasPrefix(line, prefix) {
			value := strings.TrimPrefix(line, prefix)
			if value == "" {
				return "", marker.ErrNoMarker
			}
			return value, nil
		}
	}
	return "", marker.ErrNoMarker
}

// envKey builds a variable name carrying the pane identity. Pane ids look
// like "%12"; anything outside [A-Za-z0-9_] maps to '_'.
func envKey(prefix, pane string) string {
	mapped := strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, pane)
	return prefix + "_" + mapped
}
