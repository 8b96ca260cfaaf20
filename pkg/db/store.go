package db

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/japaniel/spellingbee/pkg/puzzle"
)

// DBExecutor is an interface that allows methods to accept either *sql.DB or *sql.Tx
type DBExecutor interface {
	Exec(query string, args ...interface{}) (sql.Result, error)
	Query(query string, args ...interface{}) (*sql.Rows, error)
	QueryRow(query string, args ...interface{}) *sql.Row
}

// PutPuzzle indexes r. An existing row for the same date is left alone,
// matching the append-only table it mirrors.
func PutPuzzle(db DBExecutor, r *puzzle.Record) error {
	_, err := db.Exec(
		`INSERT INTO puzzles (date, genius_threshold, key_letter, words) VALUES (?, ?, ?, ?)
		 ON CONFLICT(date) DO NOTHING`,
		r.Date, r.GeniusThreshold, string(r.KeyLetter), strings.Join(r.Words, ","),
	)
	if err != nil {
		return fmt.Errorf("index puzzle %s: %w", r.Date, err)
	}
	return nil
}

// GetPuzzle loads the indexed record for date, or puzzle.ErrDateNotFound.
func GetPuzzle(db DBExecutor, date string) (*puzzle.Record, error) {
	var (
		genius int
		key    string
		words  string
	)
	err := db.QueryRow(`SELECT genius_threshold, key_letter, words FROM puzzles WHERE date = ?`, date).
		Scan(&genius, &key, &words)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", puzzle.ErrDateNotFound, date)
	}
	if err != nil {
		return nil, fmt.Errorf("query puzzle %s: %w", date, err)
	}
	if utf8.RuneCountInString(key) != 1 {
		return nil, fmt.Errorf("%w: %s: indexed key letter %q", puzzle.ErrInvalidRecord, date, key)
	}
	k, _ := utf8.DecodeRuneInString(key)
	return puzzle.NewRecord(date, genius, k, strings.Split(words, ","))
}

// LastDate returns the newest indexed date, or "" when the index is empty.
func LastDate(db DBExecutor) (string, error) {
	var last sql.NullString
	if err := db.QueryRow(`SELECT MAX(date) FROM puzzles`).Scan(&last); err != nil {
		return "", err
	}
	return last.String, nil
}

// CountPuzzles returns the number of indexed dates.
func CountPuzzles(db DBExecutor) (int, error) {
	var n int
	err := db.QueryRow(`SELECT COUNT(*) FROM puzzles`).Scan(&n)
	return n, err
}
