package tmux

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"panehist/internal/marker"
)

type call struct {
	args []string
}

// fakeRunner answers show-environment from vars and records every call.
type fakeRunner struct {
	vars  map[string]string
	calls []call
}

func (f *fakeRunner) run(_ context.Context, args ...string) ([]byte, error) {
	f.calls = append(f.calls, call{args: args})

	if args[0] != "show-environment" {
		return nil, nil
	}
	name := args[len(args)-1]
	value, ok := f.vars[name]
	if !ok {
		return nil, fmt.Errorf("tmux show-environment: unknown variable: %s", name)
	}
	return []byte(name + "=" + value + "\n"), nil
}

func TestEnvStoreSet(t *testing.T) {
	runner := &fakeRunner{}
	store := NewEnvStoreWithRunner(runner.run)

	m := marker.Marker{StartTS: 1736071200000, Project: "/home/amy/web"}
	if err := store.Set(context.Background(), "%5", m); err != nil {
		t.Fatalf("Set returned error: %v", err)
	}

	if len(runner.calls) != 2 {
		t.Fatalf("expected 2 tmux calls, got %d", len(runner.calls))
	}
	wantFirst := []string{"set-environment", "-g", "PANEHIST_START_TS__5", "1736071200000"}
	if got := strings.Join(runner.calls[0].args, " "); got != strings.Join(wantFirst, " ") {
		t.Fatalf("unexpected first call: %s", got)
	}
	wantSecond := []string{"set-environment", "-g", "PANEHIST_PROJECT__5", "/home/amy/web"}
	if got := strings.Join(runner.calls[1].args, " "); got != strings.Join(wantSecond, " ") {
		t.Fatalf("unexpected second call: %s", got)
	}
}

func TestEnvStoreGet(t *testing.T) {
	runner := &fakeRunner{vars: map[string]string{
		"PANEHIST_START_TS__5": "1736071200000",
		"PANEHIST_PROJECT__5":  "/home/amy/web",
	}}
	store := NewEnvStoreWithRunner(runner.run)

	m, err := store.Get(context.Background(), "%5")
	if err != nil {
		t.Fatalf("Get returned error: %v", err)
	}
	if m.StartTS != 1736071200000 {
		t.Fatalf("unexpected start ts: %d", m.StartTS)
	}
	if m.Project != "/home/amy/web" {
		t.Fatalf("unexpected project: %s", m.Project)
	}
}

func TestEnvStoreGet_Missing(t *testing.T) {
	runner := &fakeRunner{}
	store := NewEnvStoreWithRunner(runner.run)

	if _, err := store.Get(context.Background(), "%5"); !errors.Is(err, marker.ErrNoMarker) {
		t.Fatalf("expected ErrNoMarker, got %v", err)
	}
}

func TestEnvStoreGet_HalfMarker(t *testing.T) {
	runner := &fakeRunner{vars: map[string]string{
		"PANEHIST_START_TS__5": "1736071200000",
	}}
	store := NewEnvStoreWithRunner(runner.run)

	if _, err := store.Get(context.Background(), "%5"); !errors.Is(err, marker.ErrNoMarker) {
		t.Fatalf("expected ErrNoMarker for half a marker, got %v", err)
	}
}

func TestEnvStoreGet_BadStartTS(t *testing.T) {
	runner := &fakeRunner{vars: map[string]string{
		"PANEHIST_START_TS__5": "not-a-number",
		"PANEHIST_PROJECT__5":  "/home/amy/web",
	}}
	store := NewEnvStoreWithRunner(runner.run)

	if _, err := store.Get(context.Background(), "%5"); !errors.Is(err, marker.ErrNoMarker) {
		t.Fatalf("expected ErrNoMarker for bad timestamp, got %v", err)
	}
}

func TestEnvStoreClear(t *testing.T) {
	runner := &fakeRunner{}
	store := NewEnvStoreWithRunner(runner.run)

	if err := store.Clear(context.Background(), "%5"); err != nil {
		t.Fatalf("Clear returned error: %v", err)
	}

	if len(runner.calls) != 2 {
		t.Fatalf("expected 2 tmux calls, got %d", len(runner.calls))
	}
	want := []string{"set-environment", "-g", "-u", "PANEHIST_START_TS__5"}
	if got := strings.Join(runner.calls[0].args, " "); got != strings.Join(want, " ") {
		t.Fatalf("unexpected first call: %s", got)
	}
}

func TestEnvKey(t *testing.T) {
	if got := envKey(startKeyPrefix, "%12"); got != "PANEHIST_START_TS__12" {
		t.Fatalf("unexpected key: %s", got)
	}
	if got := envKey(projectKeyPrefix, "pane:0.1"); got != "PANEHIST_PROJECT_pane_0_1" {
		t.Fatalf("unexpected key: %s", got)
	}
}

func TestCurrentPane(t *testing.T) {
	t.Setenv("TMUX_PANE", "%3")
	pane, err := CurrentPane()
	if err != nil {
		t.Fatalf("CurrentPane returned error: %v", err)
	}
	if pane != "%3" {
		t.Fatalf("unexpected pane: %s", pane)
	}
}

func TestCurrentPane_Outside(t *testing.T) {
	t.Setenv("TMUX_PANE", "")
	if _, err := CurrentPane(); !errors.Is(err, ErrNotInTmux) {
		t.Fatalf("expected ErrNotInTmux, got %v", err)
	}
}
