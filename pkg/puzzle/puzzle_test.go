package puzzle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var confettiWords = []string{"confetti", "notice", "coin", "tone", "icon", "coffee", "font", "conceit"}

func TestNewRecordDerivesSevenLetters(t *testing.T) {
	r, err := NewRecord("20200507", 40, 'o', confettiWords)
	require.NoError(t, err)
	assert.Equal(t, []rune("cefinot"), r.Letters())
	assert.True(t, r.HasLetter('f'))
	assert.False(t, r.HasLetter('z'))
	assert.True(t, r.IsWord("coin"))
	assert.False(t, r.IsWord("coins"))
}

func TestNewRecordRejectsMalformedPuzzles(t *testing.T) {
	tests := []struct {
		name  string
		date  string
		key   rune
		words []string
	}{
		{"too few letters", "20200507", 'o', []string{"coin", "icon"}},
		{"too many letters", "20200507", 'o', append([]string{"zoo"}, confettiWords...)},
		{"word without key letter", "20200507", 'o', append([]string{"teen"}, confettiWords...)},
		{"key letter outside set", "20200507", 'z', confettiWords},
		{"uppercase word", "20200507", 'o', append([]string{"Coin"}, confettiWords...)},
		{"bad date", "2020-05-07", 'o', confettiWords},
		{"no words", "20200507", 'o', nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRecord(tt.date, 40, tt.key, tt.words)
			assert.ErrorIs(t, err, ErrInvalidRecord)
		})
	}
}

func TestResolveKeyLetter(t *testing.T) {
	t.Run("single common letter", func(t *testing.T) {
		key, candidates, err := ResolveKeyLetter([]string{"dog", "pot"})
		require.NoError(t, err)
		assert.Equal(t, 'o', key)
		assert.Equal(t, []rune{'o'}, candidates)
	})

	t.Run("full puzzle", func(t *testing.T) {
		key, _, err := ResolveKeyLetter(confettiWords)
		require.NoError(t, err)
		assert.Equal(t, 'o', key)
	})

	t.Run("ambiguous intersection is not resolved", func(t *testing.T) {
		key, candidates, err := ResolveKeyLetter([]string{"cab", "bat", "tab"})
		assert.ErrorIs(t, err, ErrAmbiguousKeyLetter)
		assert.Zero(t, key)
		assert.Equal(t, []rune{'a', 'b'}, candidates)
	})

	t.Run("all letters shared", func(t *testing.T) {
		_, candidates, err := ResolveKeyLetter([]string{"dog", "god"})
		assert.ErrorIs(t, err, ErrAmbiguousKeyLetter)
		assert.Equal(t, []rune("dgo"), candidates)
	})

	t.Run("nothing shared", func(t *testing.T) {
		_, candidates, err := ResolveKeyLetter([]string{"dog", "cat"})
		assert.ErrorIs(t, err, ErrAmbiguousKeyLetter)
		assert.Empty(t, candidates)
	})

	t.Run("no words", func(t *testing.T) {
		_, _, err := ResolveKeyLetter(nil)
		assert.ErrorIs(t, err, ErrAmbiguousKeyLetter)
	})
}

func TestLineRoundTrip(t *testing.T) {
	r, err := NewRecord("20200507", 40, 'o', confettiWords)
	require.NoError(t, err)

	line := FormatLine(r)
	assert.Equal(t, "20200507\t40\to\tconfetti,notice,coin,tone,icon,coffee,font,conceit", line)

	parsed, err := ParseLine(line + "\n")
	require.NoError(t, err)
	assert.Equal(t, r.Date, parsed.Date)
	assert.Equal(t, r.GeniusThreshold, parsed.GeniusThreshold)
	assert.Equal(t, r.KeyLetter, parsed.KeyLetter)
	assert.Equal(t, r.Words, parsed.Words)
}

func TestParseLineErrors(t *testing.T) {
	for _, line := range []string{
		"20200507\t40\to",
		"20200507\tforty\to\tcoin",
		"20200507\t40\too\tconfetti,notice",
		"20200507\t40\t\tconfetti,notice",
		"20200507\t40\to\t",
	} {
		_, err := ParseLine(line)
		assert.ErrorIs(t, err, ErrInvalidRecord, "line %q", line)
	}
}
