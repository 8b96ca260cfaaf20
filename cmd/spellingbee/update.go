package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/japaniel/spellingbee/pkg/db"
	"github.com/japaniel/spellingbee/pkg/updater"
)

// UpdateOptions holds flags for the update command.
type UpdateOptions struct {
	Reindex bool
}

// NewUpdateCommand fetches the days missing from the puzzle table.
func NewUpdateCommand(a *app) *cobra.Command {
	opts := &UpdateOptions{}
	cmd := &cobra.Command{
		Use:   "update",
		Short: "Fetch puzzles for the days missing from the table",
		Long: "Walk forward from the newest stored day, one page per day, and append each\n" +
			"day's puzzle to the table. Stops at today or after --days days.",
		Args: usageArgs(cobra.NoArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.update(cmd, opts)
		},
	}
	cmd.Flags().BoolVar(&opts.Reindex, "reindex", false, "rebuild the SQLite index from the table after updating")
	return cmd
}

func (a *app) update(cmd *cobra.Command, opts *UpdateOptions) (err error) {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	log := a.logger()

	if err := os.MkdirAll(filepath.Dir(cfg.LogPath), 0o755); err != nil {
		return WrapExitError(ExitFailure, "create log directory", err)
	}
	logFile, err := os.OpenFile(cfg.LogPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return WrapExitError(ExitFailure, "open operator log", err)
	}
	defer logFile.Close()
	oplog := slog.New(slog.NewTextHandler(logFile, nil))

	table, closeTable := a.openTable(cfg, log, false)
	defer func() {
		if cerr := closeTable(); cerr != nil && err == nil {
			err = WrapExitError(ExitFailure, "close puzzle index", cerr)
		}
	}()

	u := &updater.Updater{
		Table:     table,
		Fetcher:   updater.NewFetcher(cfg.BaseURL, cfg.UserAgent, cfg.RequestTimeout),
		Limiter:   updater.NewLimiter(cfg.RequestInterval),
		Workers:   cfg.Workers,
		Days:      cfg.UpdateDays,
		FirstDate: cfg.FirstDate,
		Log:       oplog,
		Out:       a.out,
		Now:       a.now,
	}
	report, err := u.Run(cmd.Context())
	for _, s := range report.Skipped {
		log.Debug("skipped", "date", s.Date, "reason", s.Reason)
	}
	if err != nil {
		var netErr *updater.NetworkError
		if errors.As(err, &netErr) {
			return WrapExitError(ExitFailure, fmt.Sprintf("update stopped after %d new days", len(report.Added)), err)
		}
		return WrapExitError(ExitFailure, "update failed", err)
	}

	indexed, hasIndex := table.(*db.IndexedStore)
	if opts.Reindex {
		if !hasIndex {
			return NewExitError(ExitUsage, "--reindex needs the SQLite index enabled")
		}
		n, err := indexed.Reindex()
		if err != nil {
			return WrapExitError(ExitFailure, "reindex", err)
		}
		fmt.Fprintf(a.out, "Reindexed %d days.\n", n)
	}
	if hasIndex {
		logIndexStatus(log, indexed)
	}

	fmt.Fprintf(a.out, "Update complete: %d added, %d already in file, %d skipped.\n",
		len(report.Added), len(report.Duplicates), len(report.Skipped))
	return nil
}

func logIndexStatus(log *slog.Logger, indexed *db.IndexedStore) {
	newest, err := db.LastDate(indexed.DB)
	if err != nil {
		log.Warn("puzzle index unreadable", "err", err)
		return
	}
	n, err := db.CountPuzzles(indexed.DB)
	if err != nil {
		log.Warn("puzzle index unreadable", "err", err)
		return
	}
	log.Debug("puzzle index", "days", n, "newest", newest)
}
