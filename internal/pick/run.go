// Package pick drives the interactive recovery flow for one tmux pane.
package pick

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"panehist/internal/format"
	"panehist/internal/history"
	"panehist/internal/marker"
	"panehist/internal/picker"
)

// Selector presents candidate lines and returns the chosen one.
type Selector interface {
	Select(ctx context.Context, lines []string) (string, error)
}

// Copier places text on the system clipboard.
type Copier interface {
	Copy(ctx context.Context, text string) error
}

// Options defines the configurable parameters for a recovery run.
type Options struct {
	Pane    string
	All     bool
	Print   bool
	History string
	Markers marker.Store
	Select  Selector
	Clip    Copier
	Out     io.Writer
	Errs    io.Writer
}

// Run recovers one previously typed input for the pane and either copies
// it to the clipboard or prints it.
func Run(ctx context.Context, opts Options) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.Errs == nil {
		opts.Errs = os.Stderr
	}
	if opts.Pane == "" {
		return errors.New("no pane id; run inside tmux or pass --pane")
	}

	m, err := opts.Markers.Get(ctx, opts.Pane)
	if err != nil {
		if errors.Is(err, marker.ErrNoMarker) {
			return fmt.Errorf("pane %s has no marker; run panehist mark first", opts.Pane)
		}
		return err
	}

	records, err := history.LoadFile(opts.History)
	if err != nil {
		return err
	}

	var scoped []history.Record
	if opts.All {
		scoped = history.ProjectRecords(records, m.Project)
	} else {
		sessionID, err := history.FindSession(records, m.StartTS, m.Project)
		if err != nil {
			if errors.Is(err, history.ErrSessionNotFound) {
				fmt.Fprintln(opts.Errs, "no history found")
				return nil
			}
			return err
		}
		scoped = history.SessionRecords(records, sessionID)
	}

	lines := format.Lines(scoped)
	if len(lines) == 0 {
		fmt.Fprintln(opts.Errs, "no history found")
		return nil
	}

	choice, err := opts.Select.Select(ctx, lines)
	if err != nil {
		if errors.Is(err, picker.ErrCancelled) {
			return nil
		}
		return err
	}

	text := format.Decode(choice)
	if opts.Print {
		_, err := fmt.Fprintln(opts.Out, text)
		return err
	}
	return opts.Clip.Copy(ctx, text)
}
