package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/japaniel/spellingbee/pkg/puzzle"
	"github.com/japaniel/spellingbee/pkg/session"
	"github.com/japaniel/spellingbee/pkg/terminal"
)

// play runs an interactive session for date, resuming from its log.
func (a *app) play(cmd *cobra.Command, date string) (err error) {
	cfg, err := a.loadConfig(cmd)
	if err != nil {
		return err
	}
	log := a.logger()

	table, closeTable := a.openTable(cfg, log, true)
	defer func() {
		if cerr := closeTable(); cerr != nil && err == nil {
			err = WrapExitError(ExitFailure, "close puzzle index", cerr)
		}
	}()

	rec, err := table.Lookup(date)
	if errors.Is(err, puzzle.ErrDateNotFound) {
		return NewExitError(ExitData, fmt.Sprintf("date not found: %s", date))
	}
	if err != nil {
		return WrapExitError(ExitData, "load puzzle", err)
	}

	path := session.LogPath(cfg.SessionsDir(), date)
	st, err := session.Replay(path, rec)
	if errors.Is(err, session.ErrMalformedLogLine) {
		return WrapExitError(ExitData, "corrupt session log", err)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "resume session", err)
	}
	log.Debug("session resumed", "date", date, "found", len(st.Found()), "score", st.Total(), "log", path)

	sessionLog, err := session.OpenLog(path)
	if err != nil {
		return WrapExitError(ExitFailure, "open session log", err)
	}
	defer func() {
		if cerr := sessionLog.Close(); cerr != nil && err == nil {
			err = WrapExitError(ExitFailure, "close session log", cerr)
		}
	}()

	term := terminal.New(a.in, a.out)
	ctrl := session.NewController(rec, st, sessionLog, term, term)
	ctrl.Logger = log
	if err := ctrl.Run(cmd.Context()); err != nil {
		return WrapExitError(ExitFailure, "session", err)
	}
	return nil
}
