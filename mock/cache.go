package mock

import (
	"context"

	"github.com/mvil/nox"
)

var _ nox.CacheStore = (*CacheStore)(nil)

// CacheStore is a mock implementation of nox.CacheStore.
type CacheStore struct {
	GetFn    func(ctx context.Context, identity string) (*nox.CacheEntry, error)
	PutFn    func(ctx context.Context, entry *nox.CacheEntry) error
	DeleteFn func(ctx context.Context, identity string) error
}

func (s *CacheStore) Get(ctx context.Context, identity string) (*nox.CacheEntry, error) {
	return s.GetFn(ctx, identity)
}

func (s *CacheStore) Put(ctx context.Context, entry *nox.CacheEntry) error {
	return s.PutFn(ctx, entry)
}

func (s *CacheStore) Delete(ctx context.Context, identity string) error {
	return s.DeleteFn(ctx, identity)
}
