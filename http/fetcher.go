// Package http provides net/http implementations of sitegraph.Fetcher and
// sitegraph.SitemapService.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/fwojciec/sitegraph"
	"golang.org/x/net/html/charset"
)

// DefaultFetchTimeout is the default timeout for HTTP requests.
const DefaultFetchTimeout = 10 * time.Second

// DefaultMaxBodySize caps how much of a response body is read.
const DefaultMaxBodySize = 10 << 20

// DefaultUserAgent identifies the crawler to servers.
const DefaultUserAgent = "sitegraph/1.0 (+https://github.com/fwojciec/sitegraph)"

// Ensure Fetcher implements sitegraph.Fetcher at compile time.
var _ sitegraph.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves pages using HTTP GET requests. Redirects are followed
// and the final URL is reported in the Response. Any status code is a
// successful fetch; only transport failures return an error.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	maxBodySize int64
	userAgent   string
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for a single request, including reading the
// body. Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithMaxBodySize limits how many bytes of a body are read. Longer bodies
// are truncated. Defaults to DefaultMaxBodySize.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// WithUserAgent sets the User-Agent header sent with every request.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithHTTPClient sets the client whose transport, redirect policy and jar
// are used. The Fetcher works on a copy, so c itself is never modified.
func WithHTTPClient(c *http.Client) Option {
	return func(f *Fetcher) {
		f.client = c
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		timeout:     DefaultFetchTimeout,
		maxBodySize: DefaultMaxBodySize,
		userAgent:   DefaultUserAgent,
	}
	for _, opt := range opts {
		opt(f)
	}

	client := &http.Client{}
	if f.client != nil {
		*client = *f.client
	}
	client.Timeout = f.timeout
	f.client = client

	return f
}

// Fetch retrieves url. The body is read and decoded to UTF-8 only for
// successful HTML responses, since nothing else is parsed for links.
func (f *Fetcher) Fetch(ctx context.Context, url string) (*sitegraph.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, sitegraph.Errorf(sitegraph.EINVALID, "invalid request URL %q: %v", url, err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	out := &sitegraph.Response{
		URL:         resp.Request.URL.String(),
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
	}
	if !out.OK() || !out.IsHTML() {
		return out, nil
	}

	body, err := f.readBody(resp.Body, out.ContentType)
	if err != nil {
		return nil, fmt.Errorf("read body of %s: %w", url, err)
	}
	out.Body = body
	return out, nil
}

// readBody reads at most maxBodySize bytes and converts them to UTF-8 using
// the charset declared in the Content-Type header or the document itself.
func (f *Fetcher) readBody(r io.Reader, contentType string) (string, error) {
	if f.maxBodySize > 0 {
		r = io.LimitReader(r, f.maxBodySize)
	}
	decoded, err := charset.NewReader(r, contentType)
	if err != nil {
		return "", err
	}
	body, err := io.ReadAll(decoded)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Close releases idle connections held by the client.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
