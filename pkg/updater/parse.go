package updater

import (
	"bytes"
	"errors"
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-shiori/go-readability"
	"github.com/samber/lo"
)

var (
	// ErrGeniusNotFound means the page has no genius threshold, usually a placeholder page.
	ErrGeniusNotFound = errors.New("genius threshold not found")
	// ErrNoAnswers means none of the known answer-list layouts was present.
	ErrNoAnswers = errors.New("answer list not found")
)

const geniusHeading = "Points Needed for Genius"

// answerListSelectors are the layouts the site has used over the years, newest last.
var answerListSelectors = []string{"#answer-list", "div.answer-list", "#main-answer-list"}

var reGenius = regexp.MustCompile(`(?i)Points Needed for Genius\W*(\d+)`)

// Page is what a puzzle page says about its day.
type Page struct {
	Genius int
	Words  []string
}

// ParsePage extracts the genius threshold and the answer list from a page.
func ParsePage(body []byte, pageURL string) (Page, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Page{}, fmt.Errorf("parse html: %w", err)
	}

	genius, ok := geniusFromHeadings(doc)
	if !ok {
		genius, ok = geniusFromText(body, pageURL)
	}
	if !ok {
		return Page{}, ErrGeniusNotFound
	}

	for _, sel := range answerListSelectors {
		list := doc.Find(sel).First()
		if list.Length() == 0 {
			continue
		}
		words := list.Find("li").Map(func(_ int, li *goquery.Selection) string {
			return strings.ToLower(strings.TrimSpace(li.Text()))
		})
		words = lo.Filter(words, func(w string, _ int) bool { return w != "" })
		return Page{Genius: genius, Words: words}, nil
	}
	return Page{}, ErrNoAnswers
}

func geniusFromHeadings(doc *goquery.Document) (int, bool) {
	var genius int
	var found bool
	doc.Find("h3").EachWithBreak(func(_ int, h *goquery.Selection) bool {
		text := strings.TrimSpace(h.Text())
		if !strings.HasPrefix(text, geniusHeading) {
			return true
		}
		fields := strings.Fields(text)
		n, err := strconv.Atoi(fields[len(fields)-1])
		if err != nil {
			return true
		}
		genius, found = n, true
		return false
	})
	return genius, found
}

// geniusFromText falls back to the readable text of the page for layouts
// that moved the threshold out of an h3.
func geniusFromText(body []byte, pageURL string) (int, bool) {
	u, err := url.Parse(pageURL)
	if err != nil {
		return 0, false
	}
	article, err := readability.FromReader(bytes.NewReader(body), u)
	if err != nil {
		return 0, false
	}
	m := reGenius.FindStringSubmatch(article.TextContent)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
