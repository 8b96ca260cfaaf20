package puzzle

import (
	"errors"
	"slices"

	"github.com/samber/lo"
)

// ErrAmbiguousKeyLetter is returned when the words do not share exactly one letter.
var ErrAmbiguousKeyLetter = errors.New("key letter is ambiguous")

// ResolveKeyLetter finds the one letter common to every word. When the
// intersection is not a single letter the sorted candidates are returned
// along with ErrAmbiguousKeyLetter so the caller can decide what to do.
func ResolveKeyLetter(words []string) (rune, []rune, error) {
	if len(words) == 0 {
		return 0, nil, ErrAmbiguousKeyLetter
	}
	common := LetterSet(words[:1])
	for _, w := range words[1:] {
		letters := []rune(w)
		common = lo.Filter(common, func(c rune, _ int) bool {
			return slices.Contains(letters, c)
		})
		if len(common) == 0 {
			break
		}
	}
	if len(common) != 1 {
		return 0, common, ErrAmbiguousKeyLetter
	}
	return common[0], common, nil
}
