// Package terminal draws the puzzle and reads guesses on a text terminal.
package terminal

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"unicode"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"

	"github.com/japaniel/spellingbee/pkg/session"
)

const clearScreen = "\033[H\033[2J"

var (
	colorHoney = lipgloss.Color("#F7DA21")
	colorComb  = lipgloss.Color("#E6E6E6")
	colorMuted = lipgloss.Color("#8A8A8A")
)

var styles = struct {
	Heading lipgloss.Style
	Key     lipgloss.Style
	Letter  lipgloss.Style
	Hive    lipgloss.Style
	Muted   lipgloss.Style
	Score   lipgloss.Style
	Message lipgloss.Style
}{
	Heading: lipgloss.NewStyle().Bold(true),
	Key:     lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#000000")).Background(colorHoney).Padding(0, 1),
	Letter:  lipgloss.NewStyle().Foreground(lipgloss.Color("#000000")).Background(colorComb).Padding(0, 1),
	Hive: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorHoney).
		Padding(0, 2),
	Muted:   lipgloss.NewStyle().Foreground(colorMuted),
	Score:   lipgloss.NewStyle().Bold(true).Foreground(colorHoney),
	Message: lipgloss.NewStyle().Italic(true),
}

// Terminal is a session.Renderer and session.LineReader over a pair of streams.
type Terminal struct {
	in     *bufio.Reader
	out    io.Writer
	styled bool

	once  sync.Once
	lines chan lineResult
}

type lineResult struct {
	line string
	err  error
}

// New wraps in and out. Styling and screen clearing are only used when out
// is a terminal.
func New(in io.Reader, out io.Writer) *Terminal {
	styled := false
	if f, ok := out.(*os.File); ok {
		styled = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Terminal{in: bufio.NewReader(in), out: out, styled: styled}
}

// Render draws one frame.
func (t *Terminal) Render(v session.View) error {
	var frame string
	if t.styled {
		frame = clearScreen + RenderStyled(v)
	} else {
		frame = RenderPlain(v)
	}
	_, err := io.WriteString(t.out, frame)
	return err
}

// ReadLine returns the next line without its newline. A final line with no
// newline is returned before io.EOF. It returns ctx.Err() as soon as ctx is
// done; a line still being typed is delivered to the next call.
func (t *Terminal) ReadLine(ctx context.Context) (string, error) {
	t.once.Do(func() {
		t.lines = make(chan lineResult)
		go t.pump()
	})
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case r, ok := <-t.lines:
		if !ok {
			return "", io.EOF
		}
		return r.line, r.err
	}
}

// pump reads lines until the input fails, then closes t.lines.
func (t *Terminal) pump() {
	defer close(t.lines)
	for {
		line, err := t.readLine()
		t.lines <- lineResult{line: line, err: err}
		if err != nil {
			return
		}
	}
}

func (t *Terminal) readLine() (string, error) {
	line, err := t.in.ReadString('\n')
	if errors.Is(err, io.EOF) && line != "" {
		return strings.TrimRight(line, "\r\n"), nil
	}
	if err != nil {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// RenderPlain draws a frame with no escape sequences.
func RenderPlain(v session.View) string {
	var b strings.Builder
	b.WriteString("found words:\n")
	b.WriteString(session.FormatFoundWords(v.Found))
	b.WriteString("\n\n")
	b.WriteString(hive(v, func(r rune) string { return string(r) }, string(unicode.ToUpper(v.KeyLetter))))
	b.WriteString("\n")
	b.WriteString(footer(v))
	return b.String()
}

// RenderStyled draws a frame with lipgloss colours and a boxed hive.
func RenderStyled(v session.View) string {
	found := session.FormatFoundWords(v.Found)
	if found == "" {
		found = styles.Muted.Render("none yet")
	}
	comb := hive(v,
		func(r rune) string { return styles.Letter.Render(string(unicode.ToUpper(r))) },
		styles.Key.Render(string(unicode.ToUpper(v.KeyLetter))))

	status := fmt.Sprintf("Genius = %d    score = %s", v.GeniusThreshold, styles.Score.Render(fmt.Sprint(v.Score)))
	last := fmt.Sprintf("last word: %s (%s) (%s)", v.LastGuess, v.LastDelta, styles.Message.Render(v.Message))

	return lipgloss.JoinVertical(lipgloss.Left,
		styles.Heading.Render("found words:"),
		found,
		"",
		styles.Hive.Render(strings.TrimRight(comb, "\n")),
		styles.Muted.Render("type 's' to shuffle letters"),
		styles.Muted.Render("type 'q' to quit"),
		status,
		last,
	) + "\n"
}

// hive lays the six outer letters around the key letter.
func hive(v session.View, letter func(rune) string, key string) string {
	n := make([]string, 6)
	for i := range n {
		if i < len(v.Outer) {
			n[i] = letter(v.Outer[i])
		} else {
			n[i] = " "
		}
	}
	return fmt.Sprintf("   %s\n%s     %s\n   %s\n%s     %s\n   %s\n",
		n[0], n[1], n[2], key, n[3], n[4], n[5])
}

func footer(v session.View) string {
	return fmt.Sprintf("type 's' to shuffle letters\ntype 'q' to quit\nGenius = %d\nscore = %d\nlast word: %s (%s) (%s)\n",
		v.GeniusThreshold, v.Score, v.LastGuess, v.LastDelta, v.Message)
}
