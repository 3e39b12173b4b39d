package api

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const (
	defaultTimeout = 10 * time.Second
	defaultLimit   = 10
	maxBodySize    = 8 << 20
	userAgent      = "navmark/1.0"
)

// Client fetches forum pages over HTTP.
type Client struct {
	http  *http.Client
	limit int
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithConcurrency caps the number of parallel fetches in BatchGetPages.
func WithConcurrency(n int) Option {
	return func(c *Client) {
		if n > 0 {
			c.limit = n
		}
	}
}

// NewClient creates a new page client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		http:  &http.Client{Timeout: defaultTimeout},
		limit: defaultLimit,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetPage fetches a single page. Any status other than 200 is an error.
func (c *Client) GetPage(ctx context.Context, rawURL string) (*Page, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "text/html")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize+1))
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", rawURL, err)
	}
	if len(body) > maxBodySize {
		return nil, fmt.Errorf("reading %s: %w", rawURL, ErrBodyTooLarge)
	}

	return &Page{
		URL:         rawURL,
		Path:        PathOf(resp.Request.URL),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		FetchedAt:   time.Now(),
	}, nil
}

// BatchGetPages fetches multiple pages concurrently with a concurrency limit.
// Returns pages in the same order as the input URLs. A failed fetch leaves
// its page nil and its cause in the matching slot of errs.
func (c *Client) BatchGetPages(ctx context.Context, urls []string) (pages []*Page, errs []error, err error) {
	results := make([]*Page, len(urls))
	failures := make([]error, len(urls))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.limit)

	for i, u := range urls {
		g.Go(func() error {
			page, err := c.GetPage(ctx, u)
			mu.Lock()
			// Non-fatal: individual pages can fail.
			results[i], failures[i] = page, err
			mu.Unlock()
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return results, failures, nil
}
