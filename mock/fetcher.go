package mock

import (
	"context"

	"github.com/mvil/nox"
)

var _ nox.Fetcher = (*Fetcher)(nil)

// Fetcher is a mock implementation of nox.Fetcher.
type Fetcher struct {
	FetchFn func(ctx context.Context, url string) ([]byte, error)
	CloseFn func() error
}

func (f *Fetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	return f.FetchFn(ctx, url)
}

func (f *Fetcher) Close() error {
	return f.CloseFn()
}
