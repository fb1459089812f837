package nox

import "context"

// Fetcher retrieves raw document bytes from URLs.
// Tests substitute a deterministic implementation serving fixtures.
type Fetcher interface {
	// Fetch downloads the complete body of the URL.
	// The context controls timeout and cancellation; on any error no
	// partial body is returned.
	Fetch(ctx context.Context, url string) ([]byte, error)

	// Close releases resources held by the fetcher.
	Close() error
}
