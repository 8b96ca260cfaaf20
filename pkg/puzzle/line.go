package puzzle

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	fieldSep = "\t"
	wordSep  = ","
)

// FormatLine renders a record as one table line, without the trailing newline.
func FormatLine(r *Record) string {
	return strings.Join([]string{
		r.Date,
		strconv.Itoa(r.GeniusThreshold),
		string(r.KeyLetter),
		strings.Join(r.Words, wordSep),
	}, fieldSep)
}

// ParseLine parses a table line and validates the resulting record.
func ParseLine(line string) (*Record, error) {
	fields := strings.Split(strings.TrimRight(line, "\r\n"), fieldSep)
	if len(fields) != 4 {
		return nil, fmt.Errorf("%w: want 4 tab-separated fields, got %d", ErrInvalidRecord, len(fields))
	}
	genius, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil, fmt.Errorf("%w: %s: genius threshold %q: %v", ErrInvalidRecord, fields[0], fields[1], err)
	}
	if utf8.RuneCountInString(fields[2]) != 1 {
		return nil, fmt.Errorf("%w: %s: key letter %q", ErrInvalidRecord, fields[0], fields[2])
	}
	key, _ := utf8.DecodeRuneInString(fields[2])
	var words []string
	if fields[3] != "" {
		words = strings.Split(fields[3], wordSep)
	}
	return NewRecord(fields[0], genius, key, words)
}

// lineDate returns the date field of a table line without parsing the rest.
func lineDate(line string) string {
	date, _, _ := strings.Cut(line, fieldSep)
	return date
}
