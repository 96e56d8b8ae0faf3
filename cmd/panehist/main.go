package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"panehist/internal/clipboard"
	"panehist/internal/config"
	"panehist/internal/format"
	"panehist/internal/history"
	"panehist/internal/marker"
	"panehist/internal/pick"
	"panehist/internal/picker"
	"panehist/internal/tmux"

	"github.com/mattn/go-isatty"
	"github.com/mattn/go-runewidth"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var rootCmd = &cobra.Command{
	Use:           "panehist",
	Short:         "Recover inputs typed in the current tmux pane",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(newShowCmd())
	rootCmd.AddCommand(newPickCmd())
	rootCmd.AddCommand(newMarkCmd())
	rootCmd.AddCommand(newSessionsCmd())
	rootCmd.AddCommand(newDecodeCmd())
	rootCmd.AddCommand(newDoctorCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "panehist: %v\n", err)
		os.Exit(1)
	}
}

func newShowCmd() *cobra.Command {
	var (
		all         bool
		historyPath string
	)

	cmd := &cobra.Command{
		Use:   "show <start-ts> <project>",
		Short: "Print the inputs typed in one session",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				project string
				startTS int64
			)
			if all {
				if len(args) != 1 {
					return errors.New("--all takes a single <project> argument")
				}
				project = args[0]
			} else {
				if len(args) != 2 {
					return errors.New("expected <start-ts> and <project> arguments")
				}
				ts, err := strconv.ParseInt(args[0], 10, 64)
				if err != nil {
					return fmt.Errorf("invalid start timestamp: %w", err)
				}
				startTS = ts
				project = args[1]
			}

			path, err := resolveHistoryPath(historyPath)
			if err != nil {
				return err
			}
			records, err := history.LoadFile(path)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if all {
				return writeLines(out, format.Lines(history.ProjectRecords(records, project)))
			}

			sessionID, err := history.FindSession(records, startTS, project)
			if err != nil {
				if errors.Is(err, history.ErrSessionNotFound) {
					return nil
				}
				return err
			}
			return writeLines(out, format.Lines(history.SessionRecords(records, sessionID)))
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&all, "all", false, "show every session for the project, grouped by session")
	flags.StringVar(&historyPath, "history", "", "override the history log path")

	return cmd
}

func newPickCmd() *cobra.Command {
	var (
		pane        string
		all         bool
		printFlag   bool
		historyPath string
	)

	cmd := &cobra.Command{
		Use:   "pick",
		Short: "Select a past input for this pane and copy it",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if pane == "" {
				p, err := tmux.CurrentPane()
				if err != nil {
					return err
				}
				pane = p
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if historyPath == "" {
				historyPath = cfg.History
			}

			sel, err := picker.Resolve(cfg.Picker.Command, cfg.Picker.Args)
			if err != nil {
				return err
			}
			var clip pick.Copier
			if !printFlag {
				c, err := clipboard.Resolve(cfg.Clipboard.Command)
				if err != nil {
					return err
				}
				clip = c
			}

			return pick.Run(ctx, pick.Options{
				Pane:    pane,
				All:     all,
				Print:   printFlag,
				History: historyPath,
				Markers: tmux.NewEnvStore(),
				Select:  sel,
				Clip:    clip,
				Out:     cmd.OutOrStdout(),
				Errs:    cmd.ErrOrStderr(),
			})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&pane, "pane", "", "pane id to recover for (default: current tmux pane)")
	flags.BoolVar(&all, "all", false, "offer every session for the marked project, not just this pane's")
	flags.BoolVar(&printFlag, "print", false, "print the selection to stdout instead of copying it")
	flags.StringVar(&historyPath, "history", "", "override the history log path")

	return cmd
}

func newMarkCmd() *cobra.Command {
	var (
		pane    string
		project string
		ts      int64
		clear   bool
	)

	cmd := &cobra.Command{
		Use:   "mark",
		Short: "Record the launch marker for this pane",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			if pane == "" {
				p, err := tmux.CurrentPane()
				if err != nil {
					return err
				}
				pane = p
			}

			store := tmux.NewEnvStore()
			if clear {
				return store.Clear(ctx, pane)
			}

			if project == "" {
				wd, err := os.Getwd()
				if err != nil {
					return fmt.Errorf("determine current directory: %w", err)
				}
				project = wd
			}
			if ts == 0 {
				ts = time.Now().UnixMilli()
			}

			return store.Set(ctx, pane, marker.Marker{StartTS: ts, Project: project})
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&pane, "pane", "", "pane id to mark (default: current tmux pane)")
	flags.StringVar(&project, "project", "", "project path to record (default: current directory)")
	flags.Int64Var(&ts, "ts", 0, "start timestamp in milliseconds (default: now)")
	flags.BoolVar(&clear, "clear", false, "remove the marker instead of writing one")

	return cmd
}

func newSessionsCmd() *cobra.Command {
	var (
		formatFlag   string
		noHeader     bool
		previewWidth int
		limit        int
		historyPath  string
	)

	cmd := &cobra.Command{
		Use:   "sessions <project>",
		Short: "List the sessions recorded for a project",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveHistoryPath(historyPath)
			if err != nil {
				return err
			}
			records, err := history.LoadFile(path)
			if err != nil {
				return err
			}

			summaries := history.SummarizeSessions(records, args[0])
			if limit > 0 && len(summaries) > limit {
				summaries = summaries[:limit]
			}

			out := cmd.OutOrStdout()
			outFile, _ := out.(*os.File)
			width := determinePreviewWidth(outFile, previewWidth)
			for i := range summaries {
				summaries[i].FirstInput = truncateDisplay(summaries[i].FirstInput, width)
			}

			includeHeader := !noHeader
			return format.WriteSessions(out, summaries, includeHeader, strings.ToLower(formatFlag))
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&formatFlag, "format", "table", "output format: table, plain, json, or jsonl")
	flags.BoolVar(&noHeader, "no-header", false, "omit header row for plain output")
	flags.IntVar(&previewWidth, "preview-width", 0, "maximum display width of the first-input column (0 sizes to the terminal)")
	flags.IntVar(&limit, "limit", 0, "limit number of sessions returned (0 means no limit)")
	flags.StringVar(&historyPath, "history", "", "override the history log path")

	return cmd
}

func newDecodeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "decode [line]",
		Short: "Turn a formatted history line back into raw input text",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 1 {
				_, err := fmt.Fprintln(out, format.Decode(args[0]))
				return err
			}

			scanner := bufio.NewScanner(cmd.InOrStdin())
			buf := make([]byte, 1024)
			scanner.Buffer(buf, 8*1024*1024) // Allow large pasted inputs
			for scanner.Scan() {
				if _, err := fmt.Fprintln(out, format.Decode(scanner.Text())); err != nil {
					return err
				}
			}
			if err := scanner.Err(); err != nil {
				return fmt.Errorf("read stdin: %w", err)
			}
			return nil
		},
	}

	return cmd
}

func newDoctorCmd() *cobra.Command {
	var (
		forceColor   bool
		forceNoColor bool
		historyPath  string
	)

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the environment panehist depends on",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if forceColor && forceNoColor {
				return errors.New("--color and --no-color cannot be used together")
			}

			ctx := cmd.Context()
			out := cmd.OutOrStdout()
			useColor := resolveColorChoice(out, forceColor, forceNoColor)

			passed := 0
			failed := 0
			check := func(name string, ok bool, detail string) {
				if ok {
					fmt.Fprintf(out, "  %s %s\n", colorize(useColor, ansiGreen, "✓"), name)
					passed++
					return
				}
				fmt.Fprintf(out, "  %s %s: %s\n", colorize(useColor, ansiRed, "✗"), name, detail)
				failed++
			}

			check("tmux available", tmux.Available(ctx), "install tmux")

			pane, paneErr := tmux.CurrentPane()
			check("pane identity", paneErr == nil, "run inside tmux")
			if paneErr == nil {
				_, markErr := tmux.NewEnvStore().Get(ctx, pane)
				check("marker for this pane", markErr == nil, "run: panehist mark")
			}

			cfg, cfgErr := config.Load()
			if cfgErr != nil {
				check("config readable", false, cfgErr.Error())
			} else {
				check("config readable", true, "")
			}

			path := historyPath
			if path == "" && cfgErr == nil {
				path = cfg.History
			}
			if path != "" {
				records, histErr := history.LoadFile(path)
				if histErr != nil {
					check("history log readable", false, histErr.Error())
				} else {
					check("history log readable", true, "")
					fmt.Fprintf(out, "  → %d records in %s\n", len(records), path)
				}
			}

			var pickerCfg, clipCfg config.ToolConfig
			if cfgErr == nil {
				pickerCfg = cfg.Picker
				clipCfg = cfg.Clipboard
			}
			_, pickErr := picker.Resolve(pickerCfg.Command, pickerCfg.Args)
			check("picker tool", pickErr == nil, "install fzf")
			_, clipErr := clipboard.Resolve(clipCfg.Command)
			check("clipboard tool", clipErr == nil, "install wl-copy or xclip")

			fmt.Fprintf(out, "\nResults: %d passed, %d failed\n", passed, failed)
			return nil
		},
	}

	flags := cmd.Flags()
	flags.BoolVar(&forceColor, "color", false, "force-enable ANSI colors even when stdout is not a TTY")
	flags.BoolVar(&forceNoColor, "no-color", false, "disable ANSI colors regardless of terminal detection")
	flags.StringVar(&historyPath, "history", "", "override the history log path")

	return cmd
}

func resolveHistoryPath(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	cfg, err := config.Load()
	if err != nil {
		return "", err
	}
	return cfg.History, nil
}

func writeLines(out io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(out, line); err != nil {
			return err
		}
	}
	return nil
}

func truncateDisplay(text string, max int) string {
	if max <= 0 || runewidth.StringWidth(text) <= max {
		return text
	}
	width := 0
	var b strings.Builder
	for _, r := range text {
		rw := runewidth.RuneWidth(r)
		if width+rw > max-1 {
			break
		}
		b.WriteRune(r)
		width += rw
	}
	return b.String() + "…"
}

func determinePreviewWidth(out *os.File, flagWidth int) int {
	if flagWidth > 0 {
		return flagWidth
	}
	width := 0
	if out != nil {
		if w, _, err := term.GetSize(int(out.Fd())); err == nil && w > 0 {
			width = w
		}
	}
	if width == 0 {
		if colsStr := os.Getenv("COLUMNS"); colsStr != "" {
			if v, err := strconv.Atoi(colsStr); err == nil && v > 0 {
				width = v
			}
		}
	}
	if width == 0 {
		width = 120
	}
	// Leave room for the fixed columns of the sessions table.
	preview := width - 90
	if preview < 24 {
		preview = 24
	}
	return preview
}

const (
	ansiReset = "\x1b[0m"
	ansiGreen = "\x1b[32m"
	ansiRed   = "\x1b[31m"
)

func colorize(enabled bool, code string, text string) string {
	if !enabled {
		return text
	}
	return code + text + ansiReset
}

func resolveColorChoice(out io.Writer, forceColor, forceNoColor bool) bool {
	if forceColor {
		return true
	}
	if forceNoColor {
		return false
	}
	return shouldUseColorAuto(out)
}

func shouldUseColorAuto(out io.Writer) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	file, ok := out.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
