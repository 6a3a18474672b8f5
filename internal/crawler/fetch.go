// Package crawler pulls announcement pages from the university sites
// and turns them into calendar events. Server-rendered boards are
// fetched over plain HTTP; the JS-rendered student-council board goes
// through headless Chromium.
package crawler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36"

// Fetcher wraps an http.Client for server-rendered pages. The campus
// boards reject clients without a browser User-Agent.
type Fetcher struct {
	client *http.Client
}

// NewFetcher builds a Fetcher with the given per-request timeout.
func NewFetcher(timeout time.Duration) *Fetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Fetcher{
		client: &http.Client{Timeout: timeout},
	}
}

// FetchText GETs the URL and returns the response body as a string.
func (f *Fetcher) FetchText(ctx context.Context, url string) (string, error) {
	if url == "" {
		return "", errors.New("fetch: url is empty")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("fetch %s: %s", url, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	return string(body), nil
}
