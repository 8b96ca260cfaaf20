package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/japaniel/spellingbee/pkg/config"
	"github.com/japaniel/spellingbee/pkg/db"
	"github.com/japaniel/spellingbee/pkg/puzzle"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigPath string
	DataDir    string
	Days       int
	Verbose    bool
}

// app carries the process streams and clock so commands can run in tests.
type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer
	now    func() time.Time
	opts   RootOptions
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{in: in, out: out, errOut: errOut, now: time.Now}
}

// NewRootCommand builds the spellingbee command tree around a.
func NewRootCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "spellingbee [YYYYMMDD]",
		Short: "Play the daily seven-letter word puzzle",
		Long: "Play the daily seven-letter word puzzle. With no argument today's puzzle is played;\n" +
			"a YYYYMMDD argument plays that day. Guesses are saved as you go and the\n" +
			"session resumes where you left off.",
		Args:          usageArgs(cobra.MaximumNArgs(1)),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			date := a.now().Format(puzzle.DateLayout)
			if len(args) == 1 {
				date = args[0]
				if _, err := time.Parse(puzzle.DateLayout, date); err != nil {
					return NewExitError(ExitUsage, fmt.Sprintf("invalid date %q: want YYYYMMDD", date))
				}
			}
			return a.play(cmd, date)
		},
	}
	cmd.SetIn(a.in)
	cmd.SetOut(a.out)
	cmd.SetErr(a.errOut)
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return WrapExitError(ExitUsage, "invalid flags", err)
	})

	cmd.PersistentFlags().StringVar(&a.opts.ConfigPath, "config", "", "config file (default "+config.DefaultFile+" when present)")
	cmd.PersistentFlags().StringVar(&a.opts.DataDir, "data-dir", "", "directory for the puzzle table, index and session logs")
	cmd.PersistentFlags().IntVar(&a.opts.Days, "days", 0, "most days one update fetches (default from config)")
	cmd.PersistentFlags().BoolVarP(&a.opts.Verbose, "verbose", "v", false, "debug logging on stderr")

	cmd.AddCommand(NewUpdateCommand(a))
	return cmd
}

func usageArgs(check cobra.PositionalArgs) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if err := check(cmd, args); err != nil {
			return WrapExitError(ExitUsage, "usage: "+cmd.UseLine(), err)
		}
		return nil
	}
}

func (a *app) logger() *slog.Logger {
	level := slog.LevelInfo
	if a.opts.Verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(a.errOut, &slog.HandlerOptions{Level: level}))
}

// loadConfig reads the config and applies the flags set on cmd.
func (a *app) loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(a.opts.ConfigPath)
	if err != nil {
		return cfg, WrapExitError(ExitUsage, "load config", err)
	}
	if cmd.Flags().Changed("data-dir") {
		cfg.DataDir = a.opts.DataDir
	}
	if cmd.Flags().Changed("days") {
		cfg.UpdateDays = a.opts.Days
	}
	if err := cfg.Validate(); err != nil {
		return cfg, WrapExitError(ExitUsage, "invalid settings", err)
	}
	return cfg, nil
}

// openTable returns the flat table, fronted by the SQLite index when one is
// configured. With readOnly set the index is only opened when the table file
// exists, so a lookup never creates an empty index. An index that cannot be
// opened is logged and skipped. The returned close function is never nil.
func (a *app) openTable(cfg config.Config, log *slog.Logger, readOnly bool) (puzzle.Table, func() error) {
	table := puzzle.NewStore(cfg.StoreFile())
	noIndex := func() error { return nil }
	path := cfg.IndexFile()
	if path == "" {
		return table, noIndex
	}
	if readOnly {
		if _, err := os.Stat(table.Path); err != nil {
			log.Debug("puzzle table not readable, index not opened", "path", table.Path, "err", err)
			return table, noIndex
		}
	}
	conn, err := db.Open(path)
	if err != nil {
		log.Warn("puzzle index unavailable, using the table only", "path", path, "err", err)
		return table, noIndex
	}
	indexed := db.NewIndexedStore(table, conn)
	indexed.Logger = log
	return indexed, conn.Close
}
