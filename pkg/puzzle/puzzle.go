package puzzle

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode"

	"github.com/samber/lo"
)

// DateLayout is the layout of a puzzle date identifier (e.g. "20200507").
const DateLayout = "20060102"

// LetterCount is the number of distinct letters in every puzzle.
const LetterCount = 7

var (
	// ErrDateNotFound is returned when a date has no record in the store.
	ErrDateNotFound = errors.New("date not found")
	// ErrInvalidRecord is returned for records that break the puzzle invariants.
	ErrInvalidRecord = errors.New("invalid puzzle record")
)

// Record is one day's puzzle: the valid words, the key letter every word
// contains and the score needed for genius.
type Record struct {
	Date            string
	GeniusThreshold int
	KeyLetter       rune
	Words           []string // source order, used when writing the table back out

	wordSet map[string]struct{}
	letters []rune
}

// NewRecord builds a record and checks its invariants.
func NewRecord(date string, genius int, key rune, words []string) (*Record, error) {
	r := &Record{
		Date:            date,
		GeniusThreshold: genius,
		KeyLetter:       key,
		Words:           slices.Clone(words),
	}
	r.index()
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Record) index() {
	r.wordSet = make(map[string]struct{}, len(r.Words))
	lo.ForEach(r.Words, func(w string, _ int) {
		r.wordSet[w] = struct{}{}
	})
	r.letters = LetterSet(r.Words)
}

// Validate reports whether the record satisfies the puzzle invariants.
func (r *Record) Validate() error {
	if r.letters == nil || r.wordSet == nil {
		r.index()
	}
	if _, err := time.Parse(DateLayout, r.Date); err != nil {
		return fmt.Errorf("%w: bad date %q", ErrInvalidRecord, r.Date)
	}
	if r.GeniusThreshold < 0 {
		return fmt.Errorf("%w: %s: negative genius threshold %d", ErrInvalidRecord, r.Date, r.GeniusThreshold)
	}
	if len(r.Words) == 0 {
		return fmt.Errorf("%w: %s: no words", ErrInvalidRecord, r.Date)
	}
	if len(r.letters) != LetterCount {
		return fmt.Errorf("%w: %s: %d distinct letters, want %d", ErrInvalidRecord, r.Date, len(r.letters), LetterCount)
	}
	if !slices.Contains(r.letters, r.KeyLetter) {
		return fmt.Errorf("%w: %s: key letter %q not among puzzle letters", ErrInvalidRecord, r.Date, r.KeyLetter)
	}
	for _, w := range r.Words {
		if w == "" || strings.ToLower(w) != w || strings.IndexFunc(w, unicode.IsSpace) >= 0 {
			return fmt.Errorf("%w: %s: word %q must be lowercase without spaces", ErrInvalidRecord, r.Date, w)
		}
		if !strings.ContainsRune(w, r.KeyLetter) {
			return fmt.Errorf("%w: %s: word %q lacks key letter %q", ErrInvalidRecord, r.Date, w, r.KeyLetter)
		}
	}
	return nil
}

// Letters returns the seven puzzle letters in alphabetical order.
func (r *Record) Letters() []rune {
	if r.letters == nil {
		r.index()
	}
	return slices.Clone(r.letters)
}

// HasLetter reports whether c is one of the puzzle letters.
func (r *Record) HasLetter(c rune) bool {
	if r.letters == nil {
		r.index()
	}
	_, found := slices.BinarySearch(r.letters, c)
	return found
}

// IsWord reports whether w is one of the puzzle's valid words.
func (r *Record) IsWord(w string) bool {
	if r.wordSet == nil {
		r.index()
	}
	_, ok := r.wordSet[w]
	return ok
}

// LetterSet returns the sorted distinct letters used across words.
func LetterSet(words []string) []rune {
	all := lo.FlatMap(words, func(w string, _ int) []rune { return []rune(w) })
	set := lo.Uniq(all)
	slices.Sort(set)
	return set
}
