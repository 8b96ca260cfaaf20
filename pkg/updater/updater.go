// Package updater fills the puzzle table from the puzzle site, one page per
// day, walking forward from the newest stored date.
package updater

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/japaniel/spellingbee/pkg/puzzle"
)

// KeyLetterFallback is consulted when the answers share more or fewer than
// one letter. It must return one of the candidates.
type KeyLetterFallback func(ctx context.Context, date string, candidates []rune) (rune, error)

// Skip records a date that was fetched but not stored.
type Skip struct {
	Date   string
	Reason string
}

// Report summarises an update run.
type Report struct {
	RunID      string
	Added      []string
	Duplicates []string
	Skipped    []Skip
}

// Updater walks dates forward and appends each day's record to Table.
type Updater struct {
	Table   puzzle.Table
	Fetcher *Fetcher
	// Limiter spaces requests to the site. nil means no limit.
	Limiter *rate.Limiter
	Workers int
	// Days is the most dates one run will try.
	Days int
	// FirstDate is where an empty table starts.
	FirstDate string
	// Fallback resolves ambiguous key letters. nil refuses such records.
	Fallback KeyLetterFallback
	// Log is the operator log. nil means slog.Default().
	Log *slog.Logger
	// Out receives progress lines. nil discards them.
	Out io.Writer
	Now func() time.Time

	outMu sync.Mutex
}

// NewLimiter allows one request per interval; zero disables the limit.
func NewLimiter(interval time.Duration) *rate.Limiter {
	if interval <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Every(interval), 1)
}

type fetchResult struct {
	index  int
	date   string
	record *puzzle.Record
	skip   string
	err    error
}

// Run fetches up to Days dates after the newest stored one, never past
// today, and appends them in date order. A network failure stops the run
// after everything before the failing date has been written.
func (u *Updater) Run(ctx context.Context) (Report, error) {
	report := Report{RunID: uuid.NewString()}
	log := u.logger().With("run_id", report.RunID)

	dates, err := u.Pending()
	if err != nil {
		return report, err
	}
	if len(dates) == 0 {
		log.Info("store is up to date")
		return report, nil
	}
	log.Info("update started", "from", dates[0], "to", dates[len(dates)-1], "workers", u.Workers)

	ctx, cancel := context.WithCancel(ctx)
	pool := NewWorkerPool(u.Workers, u.Workers*2)
	pool.Start(ctx)
	defer func() {
		cancel()
		pool.Close()
	}()

	results := make(chan fetchResult, len(dates))
	go func() {
		for i, d := range dates {
			err := pool.SubmitCtx(ctx, func(ctx context.Context) error {
				res := u.fetchDate(ctx, i, d)
				results <- res
				return res.err
			})
			if err != nil {
				return
			}
		}
	}()

	// Pages may finish out of order; hold them until every earlier date is written.
	buffer := make(map[int]fetchResult)
	for next := 0; next < len(dates); {
		select {
		case <-ctx.Done():
			return report, ctx.Err()
		case res := <-results:
			buffer[res.index] = res
		}
		for {
			res, ok := buffer[next]
			if !ok {
				break
			}
			delete(buffer, next)
			if err := u.commit(res, &report, log); err != nil {
				log.Error("update stopped", "date", res.date, "err", err)
				return report, err
			}
			next++
		}
	}
	log.Info("update finished", "added", len(report.Added), "duplicates", len(report.Duplicates), "skipped", len(report.Skipped))
	return report, nil
}

// Pending lists the dates the next run would fetch.
func (u *Updater) Pending() ([]string, error) {
	last, err := u.Table.LastDate()
	if err != nil {
		return nil, err
	}
	var start time.Time
	if last == "" {
		start, err = time.Parse(puzzle.DateLayout, u.FirstDate)
		if err != nil {
			return nil, fmt.Errorf("first date %q: %w", u.FirstDate, err)
		}
	} else {
		t, err := time.Parse(puzzle.DateLayout, last)
		if err != nil {
			return nil, fmt.Errorf("last stored date %q: %w", last, err)
		}
		start = t.AddDate(0, 0, 1)
	}

	today := u.now().Format(puzzle.DateLayout)
	var dates []string
	for d := start; len(dates) < u.Days; d = d.AddDate(0, 0, 1) {
		ds := d.Format(puzzle.DateLayout)
		if ds > today {
			break
		}
		dates = append(dates, ds)
	}
	return dates, nil
}

func (u *Updater) fetchDate(ctx context.Context, index int, date string) fetchResult {
	res := fetchResult{index: index, date: date}
	if u.Limiter != nil {
		if err := u.Limiter.Wait(ctx); err != nil {
			res.err = err
			return res
		}
	}
	u.progress("Getting words for %s...\n", date)

	body, err := u.Fetcher.Fetch(ctx, date)
	if errors.Is(err, ErrPageMissing) {
		res.skip = err.Error()
		return res
	}
	if err != nil {
		res.err = err
		return res
	}

	page, err := ParsePage(body, u.Fetcher.PageURL(date))
	if err != nil {
		res.skip = err.Error()
		return res
	}

	key, candidates, err := puzzle.ResolveKeyLetter(page.Words)
	if errors.Is(err, puzzle.ErrAmbiguousKeyLetter) {
		key, err = u.fallback(ctx, date, candidates)
		if err != nil {
			res.skip = err.Error()
			return res
		}
	}

	rec, err := puzzle.NewRecord(date, page.Genius, key, page.Words)
	if err != nil {
		res.skip = err.Error()
		return res
	}
	res.record = rec
	return res
}

func (u *Updater) fallback(ctx context.Context, date string, candidates []rune) (rune, error) {
	if u.Fallback == nil {
		return 0, fmt.Errorf("%w: candidates %q", puzzle.ErrAmbiguousKeyLetter, string(candidates))
	}
	key, err := u.Fallback(ctx, date, candidates)
	if err != nil {
		return 0, fmt.Errorf("%w: fallback: %v", puzzle.ErrAmbiguousKeyLetter, err)
	}
	if !slices.Contains(candidates, key) {
		return 0, fmt.Errorf("%w: fallback chose %q, not among %q", puzzle.ErrAmbiguousKeyLetter, key, string(candidates))
	}
	return key, nil
}

func (u *Updater) commit(res fetchResult, report *Report, log *slog.Logger) error {
	if res.err != nil {
		return res.err
	}
	if res.skip != "" {
		log.Warn("date skipped", "date", res.date, "reason", res.skip)
		report.Skipped = append(report.Skipped, Skip{Date: res.date, Reason: res.skip})
		return nil
	}
	appended, err := u.Table.Append(res.record)
	if err != nil {
		return fmt.Errorf("store %s: %w", res.date, err)
	}
	log.Info(appended.String(), "date", res.date, "words", len(res.record.Words), "key", string(res.record.KeyLetter))
	switch appended {
	case puzzle.Inserted:
		report.Added = append(report.Added, res.date)
	case puzzle.Duplicate:
		report.Duplicates = append(report.Duplicates, res.date)
	}
	return nil
}

func (u *Updater) logger() *slog.Logger {
	if u.Log != nil {
		return u.Log
	}
	return slog.Default()
}

func (u *Updater) now() time.Time {
	if u.Now != nil {
		return u.Now()
	}
	return time.Now()
}

func (u *Updater) progress(format string, args ...any) {
	if u.Out == nil {
		return
	}
	u.outMu.Lock()
	defer u.outMu.Unlock()
	fmt.Fprintf(u.Out, format, args...)
}
