package puzzle

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// AppendResult reports what Append did with a record.
type AppendResult int

const (
	// Inserted means the record was written as a new line.
	Inserted AppendResult = iota
	// Duplicate means a record for the same date already existed; nothing was written.
	Duplicate
)

func (r AppendResult) String() string {
	switch r {
	case Inserted:
		return "added words"
	case Duplicate:
		return "already in file"
	default:
		return fmt.Sprintf("AppendResult(%d)", int(r))
	}
}

// Table is the read/append surface shared by the flat store and its indexed wrapper.
type Table interface {
	Lookup(date string) (*Record, error)
	Append(r *Record) (AppendResult, error)
	LastDate() (string, error)
}

// Store is the append-only, tab-separated puzzle table. One line per date;
// lines are never rewritten or removed. A missing file is an empty table.
type Store struct {
	Path string
}

// NewStore returns a store backed by the file at path.
func NewStore(path string) *Store {
	return &Store{Path: path}
}

// Lookup scans the table for date. Returns ErrDateNotFound when absent.
func (s *Store) Lookup(date string) (*Record, error) {
	var found *Record
	var parseErr error
	err := s.scan(func(line string) bool {
		if lineDate(line) != date {
			return true
		}
		found, parseErr = ParseLine(line)
		return false
	})
	if err != nil {
		return nil, err
	}
	if parseErr != nil {
		return nil, parseErr
	}
	if found == nil {
		return nil, fmt.Errorf("%w: %s", ErrDateNotFound, date)
	}
	return found, nil
}

// Append writes r unless a line for r.Date already exists.
func (s *Store) Append(r *Record) (AppendResult, error) {
	if err := r.Validate(); err != nil {
		return 0, err
	}
	exists := false
	err := s.scan(func(line string) bool {
		if lineDate(line) == r.Date {
			exists = true
			return false
		}
		return true
	})
	if err != nil {
		return 0, err
	}
	if exists {
		return Duplicate, nil
	}

	if dir := filepath.Dir(s.Path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return 0, fmt.Errorf("create store directory: %w", err)
		}
	}
	f, err := os.OpenFile(s.Path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return 0, fmt.Errorf("open store: %w", err)
	}
	defer f.Close()
	if _, err := f.WriteString(FormatLine(r) + "\n"); err != nil {
		return 0, fmt.Errorf("write store: %w", err)
	}
	if err := f.Sync(); err != nil {
		return 0, fmt.Errorf("sync store: %w", err)
	}
	return Inserted, nil
}

// LastDate returns the date on the final line of the table, or "" for an empty table.
func (s *Store) LastDate() (string, error) {
	var last string
	err := s.scan(func(line string) bool {
		last = lineDate(line)
		return true
	})
	return last, err
}

// Dates lists every date in table order.
func (s *Store) Dates() ([]string, error) {
	var dates []string
	err := s.scan(func(line string) bool {
		dates = append(dates, lineDate(line))
		return true
	})
	return dates, err
}

// Records parses every line in one pass, in table order.
func (s *Store) Records() ([]*Record, error) {
	var records []*Record
	var parseErr error
	err := s.scan(func(line string) bool {
		r, err := ParseLine(line)
		if err != nil {
			parseErr = err
			return false
		}
		records = append(records, r)
		return true
	})
	if err != nil {
		return nil, err
	}
	if parseErr != nil {
		return nil, parseErr
	}
	return records, nil
}

// scan calls fn for each non-blank line until fn returns false.
func (s *Store) scan(fn func(line string) bool) error {
	f, err := os.Open(s.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("open store: %w", err)
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	// A day's word list can run to a few kilobytes.
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		if !fn(line) {
			break
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("read store: %w", err)
	}
	return nil
}
