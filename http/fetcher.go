// Package http provides an HTTP-based implementation of nox.Fetcher for
// downloading documentation pages.
package http

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/mvil/nox"
)

// DefaultFetchTimeout is the default timeout for one HTTP request.
// Option pages are several megabytes, so it is generous.
const DefaultFetchTimeout = 60 * time.Second

// DefaultMaxBodySize caps the size of a downloaded page.
const DefaultMaxBodySize = 128 << 20

// DefaultUserAgent identifies requests made by the Fetcher.
const DefaultUserAgent = "nox (+https://github.com/mvil/nox)"

// Ensure Fetcher implements nox.Fetcher at compile time.
var _ nox.Fetcher = (*Fetcher)(nil)

// Fetcher retrieves page bodies using HTTP GET requests. Requests to the
// same host are spaced by a per-host rate limiter.
type Fetcher struct {
	client      *http.Client
	timeout     time.Duration
	userAgent   string
	maxBodySize int64
	limiter     *HostLimiter
}

// Option configures a Fetcher.
type Option func(*Fetcher)

// WithTimeout sets the timeout for HTTP requests.
// Defaults to DefaultFetchTimeout if not specified.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) {
		f.timeout = d
	}
}

// WithRateLimit limits requests to rps per host. A value of zero or less
// disables limiting.
func WithRateLimit(rps float64) Option {
	return func(f *Fetcher) {
		f.limiter = NewHostLimiter(rps)
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(f *Fetcher) {
		f.userAgent = ua
	}
}

// WithMaxBodySize sets the largest body accepted.
func WithMaxBodySize(n int64) Option {
	return func(f *Fetcher) {
		f.maxBodySize = n
	}
}

// WithTransport sets the round tripper used by the underlying client.
func WithTransport(rt http.RoundTripper) Option {
	return func(f *Fetcher) {
		f.client = &http.Client{Transport: rt}
	}
}

// NewFetcher creates a new HTTP-based Fetcher.
func NewFetcher(opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      &http.Client{},
		timeout:     DefaultFetchTimeout,
		userAgent:   DefaultUserAgent,
		maxBodySize: DefaultMaxBodySize,
		limiter:     NewHostLimiter(2),
	}
	for _, opt := range opts {
		opt(f)
	}
	f.client.Timeout = f.timeout
	return f
}

// Fetch retrieves the complete body of the given URL. No partial body is
// returned on error.
func (f *Fetcher) Fetch(ctx context.Context, rawURL string) ([]byte, error) {
	u, err := url.Parse(rawURL)
	if err != nil || u.Host == "" {
		return nil, nox.Errorf(nox.EINVALID, "invalid URL %q", rawURL)
	}

	if err := f.limiter.Wait(ctx, u); err != nil {
		return nil, nox.WrapError(nox.EFETCH, "fetch", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, nox.WrapError(nox.EFETCH, "fetch", err)
	}
	req.Header.Set("User-Agent", f.userAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, nox.WrapError(nox.EFETCH, "fetch", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, nox.Errorf(nox.EFETCH, "HTTP %d for %s", resp.StatusCode, rawURL)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.maxBodySize+1))
	if err != nil {
		return nil, nox.WrapError(nox.EFETCH, "fetch", fmt.Errorf("read body: %w", err))
	}
	if int64(len(body)) > f.maxBodySize {
		return nil, nox.Errorf(nox.EFETCH, "body of %s exceeds %d bytes", rawURL, f.maxBodySize)
	}

	return body, nil
}

// Close releases idle connections.
func (f *Fetcher) Close() error {
	f.client.CloseIdleConnections()
	return nil
}
