package updater

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var confettiWords = []string{"confetti", "notice", "coin", "tone", "icon", "coffee", "font", "conceit"}

// beePage renders a puzzle page in one of the site's layouts.
func beePage(genius int, listOpen, listClose string, words []string) string {
	var b strings.Builder
	b.WriteString("<html><head><title>Spelling Bee Answers</title></head><body>")
	if genius > 0 {
		fmt.Fprintf(&b, "<h3>Points Needed for Genius: %d</h3>", genius)
	}
	b.WriteString(listOpen + "<ul>")
	for _, w := range words {
		fmt.Fprintf(&b, "<li> %s </li>", strings.ToUpper(w[:1])+w[1:])
	}
	b.WriteString("</ul>" + listClose + "</body></html>")
	return b.String()
}

func TestParsePageLayouts(t *testing.T) {
	layouts := map[string][2]string{
		"answer-list id":      {`<div id="answer-list">`, "</div>"},
		"answer-list class":   {`<div class="answer-list">`, "</div>"},
		"main-answer-list id": {`<section id="main-answer-list">`, "</section>"},
	}
	for name, l := range layouts {
		t.Run(name, func(t *testing.T) {
			page, err := ParsePage([]byte(beePage(40, l[0], l[1], confettiWords)), "http://nytbee.com/Bee_20200507.html")
			require.NoError(t, err)
			assert.Equal(t, 40, page.Genius)
			assert.Equal(t, confettiWords, page.Words)
		})
	}
}

func TestParsePageMissingParts(t *testing.T) {
	_, err := ParsePage([]byte(beePage(0, `<div id="answer-list">`, "</div>", confettiWords)), "http://nytbee.com/Bee_20200507.html")
	assert.ErrorIs(t, err, ErrGeniusNotFound)

	_, err = ParsePage([]byte(beePage(40, `<div id="other">`, "</div>", confettiWords)), "http://nytbee.com/Bee_20200507.html")
	assert.ErrorIs(t, err, ErrNoAnswers)
}

func TestParsePageGeniusFromArticleText(t *testing.T) {
	filler := strings.Repeat("Today's hive was a gentle one, with plenty of short words around the centre letter and a single long pangram hiding in plain sight. ", 6)
	body := `<html><head><title>Bee</title></head><body><article><h1>Answers</h1>` +
		`<p>` + filler + `Points Needed for Genius: 42. ` + filler + `</p>` +
		`<div id="answer-list"><ul><li>coin</li><li>icon</li></ul></div></article></body></html>`

	page, err := ParsePage([]byte(body), "http://nytbee.com/Bee_20200507.html")
	require.NoError(t, err)
	assert.Equal(t, 42, page.Genius)
	assert.Equal(t, []string{"coin", "icon"}, page.Words)
}
