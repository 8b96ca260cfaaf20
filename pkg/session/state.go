// Package session holds a player's progress on one puzzle date: the found
// words and score, the append-only log that records them, and the loop that
// drives a game from input lines.
package session

import (
	"slices"
	"sort"
	"strings"

	"github.com/samber/lo"
)

// State is the resumable progress on one puzzle.
type State struct {
	found map[string]struct{}
	score int
}

// NewState returns an empty state.
func NewState() *State {
	return &State{found: make(map[string]struct{})}
}

// Has reports whether word has been found.
func (s *State) Has(word string) bool {
	_, ok := s.found[word]
	return ok
}

// Total is the cumulative score.
func (s *State) Total() int { return s.score }

// Accept records word and returns the new cumulative score.
func (s *State) Accept(word string, delta int) int {
	s.found[word] = struct{}{}
	s.score += delta
	return s.score
}

// Found returns the found words in alphabetical order.
func (s *State) Found() []string {
	words := lo.Keys(s.found)
	sort.Strings(words)
	return words
}

// FormatFoundWords sorts words and puts each run sharing a first letter on
// its own line.
func FormatFoundWords(words []string) string {
	sorted := slices.Clone(words)
	sort.Strings(sorted)

	var b strings.Builder
	var last rune
	for _, w := range sorted {
		if w == "" {
			continue
		}
		first := []rune(w)[0]
		if b.Len() > 0 {
			if first != last {
				b.WriteByte('\n')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteString(w)
		last = first
	}
	return b.String()
}
