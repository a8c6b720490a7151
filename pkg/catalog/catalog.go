// Package catalog reads a Gutendex-style paginated book catalog and opens
// the plain-text body of each book.
package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/kerem-kaynak/wordfreq/pkg/ingest"
)

// DefaultURL lists English books available as plain text.
const DefaultURL = "https://gutendex.com/books?languages=en&mime_type=text%2Fplain"

// TextFormat is the format key holding a book's UTF-8 plain-text URL.
const TextFormat = "text/plain; charset=utf-8"

// ErrStatus is returned for responses with a non-2xx status code.
var ErrStatus = errors.New("unexpected status")

// Page is one page of catalog results.
type Page struct {
	Count   int     `json:"count"`
	Next    *string `json:"next"`
	Results []Book  `json:"results"`
}

// Book is a catalog entry.
type Book struct {
	ID      int               `json:"id"`
	Title   string            `json:"title"`
	Formats map[string]string `json:"formats"`
}

// TextURL returns the book's plain-text URL and whether it has one.
func (b Book) TextURL() (string, bool) {
	url, ok := b.Formats[TextFormat]
	if !ok || !strings.HasSuffix(url, ".txt") {
		return "", false
	}
	return url, true
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets the HTTP client (default http.DefaultClient).
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetry sets the Fibonacci backoff base and the retry limit for
// transient failures.
func WithRetry(base time.Duration, maxRetries uint64) Option {
	return func(c *Client) {
		if base > 0 {
			c.backoff = base
		}
		c.maxRetries = maxRetries
	}
}

// WithLogger sets the logger (default slog.Default()).
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// Client walks the catalog starting at a first page URL.
// It implements ingest.Library.
type Client struct {
	url        string
	http       *http.Client
	backoff    time.Duration
	maxRetries uint64
	logger     *slog.Logger
}

// New creates a client whose first page is url.
func New(url string, opts ...Option) *Client {
	c := &Client{
		url:        url,
		http:       http.DefaultClient,
		backoff:    1 * time.Second,
		maxRetries: 5,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

var _ ingest.Library = (*Client)(nil)

// Documents calls fn for every book with a plain-text body, page by page,
// following the next links until the last page.
func (c *Client) Documents(ctx context.Context, fn func(ingest.Document) error) error {
	url := c.url
	for pageIndex := 1; ; pageIndex++ {
		page, err := c.page(ctx, url)
		if err != nil {
			return fmt.Errorf("catalog page %d: %w", pageIndex, err)
		}
		c.logger.Debug("catalog page", "page", pageIndex, "results", len(page.Results), "count", page.Count)

		for _, book := range page.Results {
			textURL, ok := book.TextURL()
			if !ok {
				continue
			}
			if err := fn(ingest.Document{ID: book.ID, Title: book.Title, URL: textURL}); err != nil {
				return err
			}
		}

		if page.Next == nil || *page.Next == "" {
			return nil
		}
		url = *page.Next
	}
}

func (c *Client) page(ctx context.Context, url string) (*Page, error) {
	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	defer body.Close()

	var page Page
	if err := json.NewDecoder(body).Decode(&page); err != nil {
		return nil, fmt.Errorf("decode %s: %w", url, err)
	}
	return &page, nil
}

// Open returns the plain-text body of doc.
func (c *Client) Open(ctx context.Context, doc ingest.Document) (io.ReadCloser, error) {
	return c.get(ctx, doc.URL)
}

// get issues a GET, retrying network errors, 429 and 5xx responses.
func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	var body io.ReadCloser

	b := retry.WithMaxRetries(c.maxRetries, retry.NewFibonacci(c.backoff))
	err := retry.Do(ctx, b, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return err
		}

		resp, err := c.http.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logger.Debug("request failed, retrying", "url", url, "error", err)
			return retry.RetryableError(err)
		}

		if resp.StatusCode < 200 || resp.StatusCode > 299 {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			err := fmt.Errorf("%w: %s from %s", ErrStatus, resp.Status, url)
			if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
				c.logger.Debug("transient status, retrying", "url", url, "status", resp.StatusCode)
				return retry.RetryableError(err)
			}
			return err
		}

		body = resp.Body
		return nil
	})
	if err != nil {
		return nil, err
	}
	return body, nil
}
