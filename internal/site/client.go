package site

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"time"

	"github.com/go-resty/resty/v2"
)

// downloadChunkSize is the copy buffer used when streaming files to disk.
// Bodies are never buffered whole; bulletins can be large.
const downloadChunkSize = 8 * 1024

// StatusError reports a non-2xx response from the exchange site.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("site returned %d for %s", e.StatusCode, e.URL)
}

// Client provides access to the exchange website: listing pages and
// bulletin file downloads share one pooled HTTP client.
type Client struct {
	baseURL   string
	http      *resty.Client
	transport *http.Transport
	dialer    *net.Dialer
	logger    *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// New creates a site client for the given base URL (scheme + host).
func New(baseURL string, opts ...Option) *Client {
	dialer := &net.Dialer{Timeout: 10 * time.Second}
	transport := &http.Transport{
		DialContext:         dialer.DialContext,
		MaxConnsPerHost:     100,
		MaxIdleConnsPerHost: 100,
	}

	c := &Client{
		baseURL:   baseURL,
		transport: transport,
		dialer:    dialer,
		http: resty.New().
			SetTransport(transport).
			SetTimeout(600 * time.Second),
		logger: slog.Default(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// WithTimeout sets the overall per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.SetTimeout(d)
	}
}

// WithConnectTimeout bounds dial time; a stalled upstream must not hang a run.
func WithConnectTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.dialer.Timeout = d
	}
}

// WithMaxConns caps the connection pool shared by all downloads in a run.
func WithMaxConns(n int) Option {
	return func(c *Client) {
		c.transport.MaxConnsPerHost = n
		c.transport.MaxIdleConnsPerHost = n
	}
}

// WithUserAgent sets the User-Agent header on every request.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.http.SetHeader("User-Agent", ua)
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// BaseURL returns the configured site origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// FetchPage fetches a listing page by relative path and returns its HTML.
func (c *Client) FetchPage(ctx context.Context, path string) (string, error) {
	url := c.baseURL + path

	resp, err := c.http.R().SetContext(ctx).Get(url)
	if err != nil {
		return "", fmt.Errorf("fetch %s: %w", url, err)
	}
	if resp.IsError() {
		return "", &StatusError{StatusCode: resp.StatusCode(), URL: url}
	}
	if len(resp.Body()) == 0 {
		return "", fmt.Errorf("fetch %s: empty response body", url)
	}

	return string(resp.Body()), nil
}

// Download streams the file at url into dest, copying in fixed-size chunks.
// The partial file is removed on failure.
func (c *Client) Download(ctx context.Context, url, dest string) error {
	resp, err := c.http.R().SetContext(ctx).SetDoNotParseResponse(true).Get(url)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	body := resp.RawBody()
	defer body.Close()

	if resp.IsError() {
		return &StatusError{StatusCode: resp.StatusCode(), URL: url}
	}

	f, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("create %s: %w", dest, err)
	}

	buf := make([]byte, downloadChunkSize)
	if _, err := io.CopyBuffer(f, body, buf); err != nil {
		f.Close()
		os.Remove(dest)
		return fmt.Errorf("write %s: %w", dest, err)
	}

	if err := f.Close(); err != nil {
		os.Remove(dest)
		return fmt.Errorf("close %s: %w", dest, err)
	}

	return nil
}
