// Package format renders history records and session listings.
package format

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"panehist/internal/history"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// WriteSessions writes session summaries to w in the requested format.
func WriteSessions(w io.Writer, items []history.SessionSummary, includeHeader bool, format string) error {
	format = strings.ToLower(format)
	switch format {
	case "", "table":
		return writeSessionsTable(w, items, includeHeader)
	case "plain":
		return writeSessionsPlain(w, items, includeHeader)
	case "json":
		return writeSessionsJSON(w, items)
	case "jsonl":
		return writeSessionsJSONL(w, items)
	default:
		return fmt.Errorf("unsupported format: %s", format)
	}
}

func writeSessionsPlain(w io.Writer, items []history.SessionSummary, includeHeader bool) error {
	if includeHeader {
		if _, err := fmt.Fprintln(w, "started\tsession_id\tlast_activity\tinputs\tfirst_input"); err != nil {
			return err
		}
	}

	for _, item := range items {
		line := fmt.Sprintf(
			"%s\t%s\t%s\t%d\t%s",
			formatTime(item.StartedAt),
			item.ID,
			formatTime(item.LastActivity),
			item.Inputs,
			encodePreview(item.FirstInput),
		)
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func writeSessionsJSON(w io.Writer, items []history.SessionSummary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(items)
}

func writeSessionsJSONL(w io.Writer, items []history.SessionSummary) error {
	enc := json.NewEncoder(w)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return err
		}
	}
	return nil
}

func writeSessionsTable(w io.Writer, items []history.SessionSummary, includeHeader bool) error {
	tw := table.NewWriter()
	tw.SetOutputMirror(w)
	tw.SetStyle(table.StyleRounded)
	tw.Style().Options.SeparateRows = true
	tw.Style().Options.SeparateHeader = true
	tw.Style().Options.DrawBorder = true

	tw.SetColumnConfigs([]table.ColumnConfig{
		{Number: 1, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 2, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 3, Align: text.AlignLeft, AlignHeader: text.AlignCenter},
		{Number: 4, Align: text.AlignRight, AlignHeader: text.AlignCenter},
		{Number: 5, Align: text.AlignLeft, AlignHeader: text.AlignCenter, WidthMax: 80},
	})

	if includeHeader {
		tw.AppendHeader(table.Row{"Started", "Session ID", "Last Activity", "Inputs", "First Input"})
	}

	for _, item := range items {
		tw.AppendRow(table.Row{
			formatTime(item.StartedAt),
			item.ID,
			formatTime(item.LastActivity),
			item.Inputs,
			encodePreview(item.FirstInput),
		})
	}

	if len(items) == 0 {
		tw.AppendRow(table.Row{"-", "(no sessions)", "-", 0, "-"})
	}

	_ = tw.Render()
	return nil
}

// encodePreview keeps a preview on one line using the same mark the
// history lines use.
func encodePreview(preview string) string {
	return strings.ReplaceAll(preview, "\n", newlineMark)
}

func formatTime(ts time.Time) string {
	if ts.IsZero() {
		return "-"
	}
	return ts.Format(time.RFC3339)
}
