package session

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/japaniel/spellingbee/pkg/puzzle"
	"github.com/japaniel/spellingbee/pkg/scoring"
)

// TimestampLayout formats log timestamps down to the microsecond.
const TimestampLayout = "2006.01.02.15.04.05.000000"

// Lifecycle events written as comment lines.
const (
	EventStarting = "starting"
	EventLeaving  = "leaving"
)

const commentPrefix = "#"

// ErrMalformedLogLine is matched by every MalformedLogLineError.
var ErrMalformedLogLine = errors.New("malformed session log line")

// MalformedLogLineError describes a log line that cannot be replayed.
type MalformedLogLineError struct {
	Line   int
	Text   string
	Reason string
}

func (e *MalformedLogLineError) Error() string {
	return fmt.Sprintf("session log line %d: %s: %q", e.Line, e.Reason, e.Text)
}

func (e *MalformedLogLineError) Is(target error) bool { return target == ErrMalformedLogLine }

// Entry is one parsed log line. Event is set for lifecycle lines, Word and
// Score for guesses.
type Entry struct {
	Line      int
	Timestamp string
	Event     string
	Word      string
	Score     int
}

// LogPath is where the log for date lives under dir.
func LogPath(dir, date string) string {
	return filepath.Join(dir, date+".out")
}

// Log appends to a day's session log. It is opened once per session and
// must be closed when the session ends.
type Log struct {
	f   *os.File
	Now func() time.Time
}

// OpenLog opens (creating if needed) the log at path for appending.
func OpenLog(path string) (*Log, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("create session directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, fmt.Errorf("open session log: %w", err)
	}
	return &Log{f: f, Now: time.Now}, nil
}

func (l *Log) timestamp() string {
	return l.Now().Format(TimestampLayout)
}

// Start writes the "starting" lifecycle line.
func (l *Log) Start() error { return l.event(EventStarting) }

// Leave writes the "leaving" lifecycle line.
func (l *Log) Leave() error { return l.event(EventLeaving) }

func (l *Log) event(name string) error {
	return l.write(commentPrefix + l.timestamp() + "\t" + name + "\n")
}

// Record appends an accepted word with the cumulative score after it.
func (l *Log) Record(word string, score int) error {
	return l.write(l.timestamp() + "\t" + word + "\t" + strconv.Itoa(score) + "\n")
}

func (l *Log) write(line string) error {
	if _, err := l.f.WriteString(line); err != nil {
		return fmt.Errorf("write session log: %w", err)
	}
	return nil
}

// Close syncs and closes the file.
func (l *Log) Close() error {
	if err := l.f.Sync(); err != nil {
		l.f.Close()
		return fmt.Errorf("sync session log: %w", err)
	}
	return l.f.Close()
}

// ReadEntries parses every line of a session log.
func ReadEntries(r io.Reader) ([]Entry, error) {
	var entries []Entry
	sc := bufio.NewScanner(r)
	n := 0
	for sc.Scan() {
		n++
		text := strings.TrimRight(sc.Text(), "\r")
		if strings.TrimSpace(text) == "" {
			continue
		}
		e, err := parseEntry(n, text)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read session log: %w", err)
	}
	return entries, nil
}

func parseEntry(n int, text string) (Entry, error) {
	malformed := func(reason string) error {
		return &MalformedLogLineError{Line: n, Text: text, Reason: reason}
	}
	fields := strings.Split(text, "\t")
	if rest, ok := strings.CutPrefix(text, commentPrefix); ok {
		fields = strings.Split(rest, "\t")
		if len(fields) != 2 {
			return Entry{}, malformed("want timestamp and event")
		}
		if fields[1] != EventStarting && fields[1] != EventLeaving {
			return Entry{}, malformed("unknown event")
		}
		return Entry{Line: n, Timestamp: fields[0], Event: fields[1]}, nil
	}
	if len(fields) != 3 {
		return Entry{}, malformed("want timestamp, word and score")
	}
	if fields[1] == "" {
		return Entry{}, malformed("empty word")
	}
	score, err := strconv.Atoi(fields[2])
	if err != nil || score < 0 {
		return Entry{}, malformed("bad score")
	}
	return Entry{Line: n, Timestamp: fields[0], Word: fields[1], Score: score}, nil
}

// Replay rebuilds the state for rec from the log at path. A missing log is an
// empty session. Any line that does not match what live play would have
// written is fatal: skipping it would leave score and found words out of step.
func Replay(path string, rec *puzzle.Record) (*State, error) {
	f, err := os.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return NewState(), nil
		}
		return nil, fmt.Errorf("open session log: %w", err)
	}
	defer f.Close()

	entries, err := ReadEntries(f)
	if err != nil {
		return nil, err
	}
	return ReplayEntries(entries, rec)
}

// ReplayEntries applies parsed entries to a fresh state.
func ReplayEntries(entries []Entry, rec *puzzle.Record) (*State, error) {
	st := NewState()
	for _, e := range entries {
		if e.Event != "" {
			continue
		}
		malformed := func(reason string) error {
			return &MalformedLogLineError{Line: e.Line, Text: e.Timestamp + "\t" + e.Word + "\t" + strconv.Itoa(e.Score), Reason: reason}
		}
		if !rec.IsWord(e.Word) {
			return nil, malformed("not a word of " + rec.Date)
		}
		if st.Has(e.Word) {
			return nil, malformed("word logged twice")
		}
		delta, _ := scoring.WordScore(e.Word)
		if want := st.Total() + delta; e.Score != want {
			return nil, malformed(fmt.Sprintf("score %d, want %d", e.Score, want))
		}
		st.Accept(e.Word, delta)
	}
	return st, nil
}
