package updater

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// maxBodySize caps a puzzle page; real pages are well under 100 KB.
const maxBodySize = 5 * 1024 * 1024

// ErrPageMissing is returned when the site has no page for a date.
var ErrPageMissing = errors.New("puzzle page missing")

// NetworkError wraps a failure to talk to the puzzle site. It aborts an
// update run.
type NetworkError struct {
	URL string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// Fetcher downloads puzzle pages.
type Fetcher struct {
	Client    *http.Client
	BaseURL   string
	UserAgent string
}

// NewFetcher returns a Fetcher with a client that times out after timeout.
func NewFetcher(baseURL, userAgent string, timeout time.Duration) *Fetcher {
	return &Fetcher{
		Client:    &http.Client{Timeout: timeout},
		BaseURL:   strings.TrimRight(baseURL, "/"),
		UserAgent: userAgent,
	}
}

// PageURL is the address of the page for date.
func (f *Fetcher) PageURL(date string) string {
	return fmt.Sprintf("%s/Bee_%s.html", f.BaseURL, date)
}

// Fetch returns the raw HTML for date.
func (f *Fetcher) Fetch(ctx context.Context, date string) ([]byte, error) {
	url := f.PageURL(date)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	// The site answers 406 Not Acceptable without a browser User-Agent.
	req.Header.Set("User-Agent", f.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.Client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound || resp.StatusCode == http.StatusGone:
		return nil, fmt.Errorf("%w: %s", ErrPageMissing, resp.Status)
	case resp.StatusCode != http.StatusOK:
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("unexpected status %s", resp.Status)}
	}

	if resp.ContentLength > maxBodySize {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("content-length %d exceeds limit of %d bytes", resp.ContentLength, maxBodySize)}
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	if len(body) > maxBodySize {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("response body exceeded %d bytes", maxBodySize)}
	}
	return body, nil
}
