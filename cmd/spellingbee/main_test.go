package main

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/japaniel/spellingbee/pkg/db"
	"github.com/japaniel/spellingbee/pkg/puzzle"
)

var confettiWords = []string{"confetti", "notice", "coin", "tone", "icon", "coffee", "font", "conceit"}

var may2 = time.Date(2020, 5, 2, 9, 0, 0, 0, time.Local)

// runCLI executes the command tree in dir with stdin as input.
func runCLI(t *testing.T, dir, stdin string, args ...string) (string, error) {
	t.Helper()
	t.Chdir(dir)
	var out, errOut bytes.Buffer
	a := newApp(strings.NewReader(stdin), &out, &errOut)
	a.now = func() time.Time { return may2 }
	cmd := NewRootCommand(a)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seedTable(t *testing.T, dir string, dates ...string) {
	t.Helper()
	store := puzzle.NewStore(filepath.Join(dir, "data", "saved-words.txt"))
	for _, d := range dates {
		rec, err := puzzle.NewRecord(d, 40, 'o', confettiWords)
		require.NoError(t, err)
		_, err = store.Append(rec)
		require.NoError(t, err)
	}
}

func puzzlePage(genius int, words []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<html><body><h3>Points Needed for Genius: %d</h3><div id=\"answer-list\"><ul>", genius)
	for _, w := range words {
		fmt.Fprintf(&b, "<li>%s</li>", w)
	}
	b.WriteString("</ul></div></body></html>")
	return b.String()
}

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand(newApp(strings.NewReader(""), &bytes.Buffer{}, &bytes.Buffer{}))
	assert.Equal(t, "spellingbee", cmd.Name())

	sub, _, err := cmd.Find([]string{"update"})
	require.NoError(t, err)
	assert.Equal(t, "update", sub.Name())
	assert.NotNil(t, sub.Flags().Lookup("reindex"))

	for _, name := range []string{"config", "data-dir", "days", "verbose"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(name), name)
	}
	assert.Equal(t, "v", cmd.PersistentFlags().Lookup("verbose").Shorthand)
}

func TestUsageErrors(t *testing.T) {
	cases := map[string][]string{
		"two dates":     {"20200501", "20200502"},
		"bad date":      {"2020-05-01"},
		"unknown flag":  {"--bogus"},
		"update args":   {"update", "extra"},
		"negative days": {"--days=-1", "update"},
		"zero days":     {"--days=0", "update"},
		"empty dir":     {"--data-dir=", "20200501"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := runCLI(t, t.TempDir(), "", args...)
			require.Error(t, err)
			assert.Equal(t, ExitUsage, GetExitCode(err))
		})
	}
}

func TestPlayUnknownDate(t *testing.T) {
	dir := t.TempDir()
	seedTable(t, dir, "20200501")

	_, err := runCLI(t, dir, "q\n", "20200430")
	require.Error(t, err)
	assert.Equal(t, ExitData, GetExitCode(err))
	assert.Contains(t, err.Error(), "date not found")
	assert.FileExists(t, filepath.Join(dir, "data", "puzzles.db"))
}

func TestPlayWithoutTableCreatesNothing(t *testing.T) {
	dir := t.TempDir()

	_, err := runCLI(t, dir, "q\n", "20200501")
	require.Error(t, err)
	assert.Equal(t, ExitData, GetExitCode(err))
	assert.NoDirExists(t, filepath.Join(dir, "data"))
}

func TestPlayTodayAndResume(t *testing.T) {
	dir := t.TempDir()
	seedTable(t, dir, "20200501", "20200502")

	out, err := runCLI(t, dir, "coin\nnotice\nzzzz\nq\n")
	require.NoError(t, err)
	assert.Contains(t, out, "score = 7\n")
	assert.Contains(t, out, "last word: zzzz () (used wrong letter)")

	logData, err := os.ReadFile(filepath.Join(dir, "data", "sessions", "20200502.out"))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(logData)), "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasSuffix(lines[0], "\tstarting"))
	assert.True(t, strings.HasSuffix(lines[1], "\tcoin\t1"))
	assert.True(t, strings.HasSuffix(lines[2], "\tnotice\t7"))
	assert.True(t, strings.HasSuffix(lines[3], "\tleaving"))

	// the second sitting starts from the logged state
	out, err = runCLI(t, dir, "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "found words:\ncoin\nnotice\n"))
	assert.Contains(t, out, "score = 7\n")

	// other dates keep their own logs
	out, err = runCLI(t, dir, "q\n", "20200501")
	require.NoError(t, err)
	assert.Contains(t, out, "score = 0\n")
}

func TestPlayCorruptLog(t *testing.T) {
	dir := t.TempDir()
	seedTable(t, dir, "20200501")
	sessions := filepath.Join(dir, "data", "sessions")
	require.NoError(t, os.MkdirAll(sessions, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(sessions, "20200501.out"), []byte("not a log line\n"), 0o644))

	_, err := runCLI(t, dir, "q\n", "20200501")
	require.Error(t, err)
	assert.Equal(t, ExitData, GetExitCode(err))
	assert.Contains(t, err.Error(), "corrupt session log")
}

func TestUpdateAgainstLocalSite(t *testing.T) {
	pages := map[string]string{
		"/Bee_20200501.html": puzzlePage(40, confettiWords),
		"/Bee_20200502.html": puzzlePage(38, confettiWords),
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, ok := pages[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write([]byte(body))
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := fmt.Sprintf("base_url: %s\nfirst_date: \"20200501\"\nrequest_interval: 0s\nworkers: 2\n", srv.URL)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spellingbee.yaml"), []byte(cfg), 0o644))

	out, err := runCLI(t, dir, "", "update")
	require.NoError(t, err)
	assert.Contains(t, out, "Getting words for 20200501...")
	assert.Contains(t, out, "Update complete: 2 added, 0 already in file, 0 skipped.")

	dates, err := puzzle.NewStore(filepath.Join(dir, "data", "saved-words.txt")).Dates()
	require.NoError(t, err)
	assert.Equal(t, []string{"20200501", "20200502"}, dates)

	oplog, err := os.ReadFile(filepath.Join(dir, "log", "log-file.txt"))
	require.NoError(t, err)
	assert.Contains(t, string(oplog), "added words")

	conn, err := db.Open(filepath.Join(dir, "data", "puzzles.db"))
	require.NoError(t, err)
	n, err := db.CountPuzzles(conn)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, conn.Close())

	out, err = runCLI(t, dir, "", "update", "--reindex")
	require.NoError(t, err)
	assert.Contains(t, out, "Reindexed 0 days.")
	assert.Contains(t, out, "Update complete: 0 added")

	// the fetched day is playable
	out, err = runCLI(t, dir, "q\n", "20200502")
	require.NoError(t, err)
	assert.Contains(t, out, "Genius = 38\n")
}

func TestUpdateNetworkFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	dir := t.TempDir()
	cfg := fmt.Sprintf("base_url: %s\nfirst_date: \"20200501\"\nrequest_interval: 0s\n", srv.URL)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "spellingbee.yaml"), []byte(cfg), 0o644))

	_, err := runCLI(t, dir, "", "update")
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, err.Error(), "503")
}

func TestGetExitCode(t *testing.T) {
	assert.Equal(t, ExitSuccess, GetExitCode(nil))
	assert.Equal(t, ExitFailure, GetExitCode(fmt.Errorf("plain")))
	wrapped := fmt.Errorf("outer: %w", NewExitError(ExitData, "date not found"))
	assert.Equal(t, ExitData, GetExitCode(wrapped))
}
