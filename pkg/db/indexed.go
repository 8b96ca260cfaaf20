package db

import (
	"database/sql"
	"errors"
	"log/slog"

	"github.com/japaniel/spellingbee/pkg/puzzle"
)

// IndexedStore puts the SQLite index in front of the flat table. The table
// stays the source of truth: appends land there first and are mirrored into
// the index, and lookups that miss the index fall back to a table scan and
// backfill the index.
type IndexedStore struct {
	Table *puzzle.Store
	DB    *sql.DB
	// Logger reports index failures, which never fail the caller. nil means slog.Default().
	Logger *slog.Logger
}

// NewIndexedStore wraps table with the index in conn.
func NewIndexedStore(table *puzzle.Store, conn *sql.DB) *IndexedStore {
	return &IndexedStore{Table: table, DB: conn}
}

func (s *IndexedStore) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}

// Lookup implements puzzle.Table.
func (s *IndexedStore) Lookup(date string) (*puzzle.Record, error) {
	r, err := GetPuzzle(s.DB, date)
	if err == nil {
		return r, nil
	}
	if !errors.Is(err, puzzle.ErrDateNotFound) {
		s.logger().Warn("puzzle index lookup failed, scanning table", "date", date, "err", err)
	}

	r, err = s.Table.Lookup(date)
	if err != nil {
		return nil, err
	}
	if err := PutPuzzle(s.DB, r); err != nil {
		s.logger().Warn("puzzle index backfill failed", "date", date, "err", err)
	}
	return r, nil
}

// Append implements puzzle.Table.
func (s *IndexedStore) Append(r *puzzle.Record) (puzzle.AppendResult, error) {
	res, err := s.Table.Append(r)
	if err != nil {
		return res, err
	}
	if res == puzzle.Inserted {
		if err := PutPuzzle(s.DB, r); err != nil {
			s.logger().Warn("puzzle index write failed", "date", r.Date, "err", err)
		}
	}
	return res, nil
}

// LastDate implements puzzle.Table. It reads the table, since the index
// may be missing dates that were never looked up.
func (s *IndexedStore) LastDate() (string, error) {
	return s.Table.LastDate()
}

// Reindex loads every table record into the index and returns how many
// dates were added.
func (s *IndexedStore) Reindex() (int, error) {
	before, err := CountPuzzles(s.DB)
	if err != nil {
		return 0, err
	}
	records, err := s.Table.Records()
	if err != nil {
		return 0, err
	}
	tx, err := s.DB.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()
	for _, r := range records {
		if err := PutPuzzle(tx, r); err != nil {
			return 0, err
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, err
	}
	after, err := CountPuzzles(s.DB)
	if err != nil {
		return 0, err
	}
	return after - before, nil
}
