// Package scoring decides what a guess is worth against a day's puzzle.
package scoring

import (
	"strings"

	"github.com/samber/lo"

	"github.com/japaniel/spellingbee/pkg/puzzle"
)

// PangramBonus is added to the score of a word that uses all seven letters.
const PangramBonus = 7

// Kind classifies the outcome of a guess.
type Kind int

const (
	AlreadyFound Kind = iota
	Accepted
	InvalidLetters
	MissingKeyLetter
	NotAWord
)

func (k Kind) String() string {
	switch k {
	case AlreadyFound:
		return "already-found"
	case Accepted:
		return "accepted"
	case InvalidLetters:
		return "invalid-letters"
	case MissingKeyLetter:
		return "missing-key-letter"
	case NotAWord:
		return "not-a-word"
	default:
		return "unknown"
	}
}

// Outcome is the result of evaluating one guess. Delta, Pangram and
// ReachesGenius are only meaningful when Kind is Accepted.
type Outcome struct {
	Kind          Kind
	Delta         int
	Pangram       bool
	ReachesGenius bool
}

// FoundSet is the read side of a session needed to judge a guess.
type FoundSet interface {
	Has(word string) bool
	Total() int
}

// Evaluate judges guess against rec given what has already been found.
// Checks run in a fixed order: already found, valid word, letters outside
// the puzzle, missing key letter, and finally not a word.
func Evaluate(guess string, rec *puzzle.Record, found FoundSet) Outcome {
	if found.Has(guess) {
		return Outcome{Kind: AlreadyFound}
	}
	if rec.IsWord(guess) {
		delta, pangram := WordScore(guess)
		return Outcome{
			Kind:          Accepted,
			Delta:         delta,
			Pangram:       pangram,
			ReachesGenius: found.Total()+delta >= rec.GeniusThreshold,
		}
	}
	if strings.IndexFunc(guess, func(c rune) bool { return !rec.HasLetter(c) }) >= 0 {
		return Outcome{Kind: InvalidLetters}
	}
	if !strings.ContainsRune(guess, rec.KeyLetter) {
		return Outcome{Kind: MissingKeyLetter}
	}
	return Outcome{Kind: NotAWord}
}

// WordScore returns the points for word and whether it is a pangram.
// Four-letter words score one point; longer words score their length,
// plus PangramBonus when all seven puzzle letters appear.
func WordScore(word string) (int, bool) {
	n := len([]rune(word))
	score := n
	if n == 4 {
		score = 1
	}
	pangram := len(lo.Uniq([]rune(word))) == puzzle.LetterCount
	if pangram {
		score += PangramBonus
	}
	return score, pangram
}
