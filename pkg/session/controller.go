package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/japaniel/spellingbee/pkg/puzzle"
	"github.com/japaniel/spellingbee/pkg/scoring"
)

// Commands recognised by the loop. Every other line is a guess.
const (
	QuitCommand    = "q"
	ShuffleCommand = "s"
)

// Phase is the controller's state.
type Phase int

const (
	Playing Phase = iota
	Exited
)

// View is everything a renderer needs to draw one turn.
type View struct {
	Date            string
	Found           []string
	KeyLetter       rune
	Outer           []rune // the six non-key letters, shuffled when asked
	GeniusThreshold int
	Score           int
	LastGuess       string
	LastDelta       string // empty unless the last guess scored
	Message         string
}

// Renderer draws a View. The terminal adapter implements it.
type Renderer interface {
	Render(v View) error
}

// LineReader blocks for one line of input. io.EOF ends the session. It
// should return ctx.Err() promptly once ctx is done.
type LineReader interface {
	ReadLine(ctx context.Context) (string, error)
}

// Controller runs the guess loop for one puzzle date.
type Controller struct {
	Record   *puzzle.Record
	State    *State
	Log      *Log
	Renderer Renderer
	Input    LineReader
	// Logger receives debug output for each turn. nil means no logging.
	Logger *slog.Logger
	// Shuffle reorders the outer letters in place. Defaults to math/rand/v2.
	Shuffle func([]rune)

	phase     Phase
	shuffle   bool
	lastGuess string
	lastDelta string
	message   string
}

// NewController wires a controller for rec, resuming from st.
func NewController(rec *puzzle.Record, st *State, log *Log, r Renderer, in LineReader) *Controller {
	return &Controller{
		Record:   rec,
		State:    st,
		Log:      log,
		Renderer: r,
		Input:    in,
		Shuffle: func(letters []rune) {
			rand.Shuffle(len(letters), func(i, j int) { letters[i], letters[j] = letters[j], letters[i] })
		},
	}
}

// Phase reports whether the loop is still playing.
func (c *Controller) Phase() Phase { return c.phase }

// Run writes the starting event, then renders and reads until the player
// quits, input ends, or ctx is cancelled. The leaving event is written on
// every one of those paths.
func (c *Controller) Run(ctx context.Context) error {
	if err := c.Log.Start(); err != nil {
		return err
	}
	for c.phase == Playing {
		if ctx.Err() != nil {
			return c.quit()
		}
		if err := c.Renderer.Render(c.View()); err != nil {
			return fmt.Errorf("render: %w", err)
		}
		line, err := c.Input.ReadLine(ctx)
		// A line that arrives after cancellation is dropped, not scored.
		if ctx.Err() != nil || errors.Is(err, io.EOF) {
			return c.quit()
		}
		if err != nil {
			return fmt.Errorf("read input: %w", err)
		}
		if err := c.Step(line); err != nil {
			return err
		}
	}
	return nil
}

// Step handles one line of input.
func (c *Controller) Step(input string) error {
	if c.phase == Exited {
		return nil
	}
	guess := strings.ToLower(strings.TrimSpace(input))
	c.lastGuess, c.lastDelta, c.message, c.shuffle = guess, "", "", false

	switch guess {
	case QuitCommand:
		return c.quit()
	case ShuffleCommand:
		c.shuffle = true
		return nil
	}

	out := scoring.Evaluate(guess, c.Record, c.State)
	c.message = Message(out, c.Record.KeyLetter)
	if c.Logger != nil {
		c.Logger.Debug("guess", "date", c.Record.Date, "word", guess, "outcome", out.Kind.String(), "delta", out.Delta)
	}
	if out.Kind != scoring.Accepted {
		return nil
	}
	score := c.State.Accept(guess, out.Delta)
	c.lastDelta = strconv.Itoa(out.Delta)
	return c.Log.Record(guess, score)
}

func (c *Controller) quit() error {
	c.phase = Exited
	return c.Log.Leave()
}

// View builds the next frame.
func (c *Controller) View() View {
	outer := lo.Filter(c.Record.Letters(), func(l rune, _ int) bool { return l != c.Record.KeyLetter })
	if c.shuffle && c.Shuffle != nil {
		c.Shuffle(outer)
	}
	return View{
		Date:            c.Record.Date,
		Found:           c.State.Found(),
		KeyLetter:       c.Record.KeyLetter,
		Outer:           outer,
		GeniusThreshold: c.Record.GeniusThreshold,
		Score:           c.State.Total(),
		LastGuess:       c.lastGuess,
		LastDelta:       c.lastDelta,
		Message:         c.message,
	}
}

// Message is the status text shown for an outcome.
func Message(out scoring.Outcome, key rune) string {
	switch out.Kind {
	case scoring.AlreadyFound:
		return "already found"
	case scoring.Accepted:
		var parts []string
		if out.Pangram {
			parts = append(parts, "Pangram!")
		}
		if out.ReachesGenius {
			parts = append(parts, "Genius achieved!")
		}
		return strings.Join(parts, " ")
	case scoring.InvalidLetters:
		return "used wrong letter"
	case scoring.MissingKeyLetter:
		return fmt.Sprintf("missing the letter %c", key)
	default:
		return "word not found"
	}
}
