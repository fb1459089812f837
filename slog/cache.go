package slog

import (
	"context"
	"log/slog"
	"time"

	"github.com/mvil/nox"
)

// Ensure LoggingCacheStore implements nox.CacheStore.
var _ nox.CacheStore = (*LoggingCacheStore)(nil)

// LoggingCacheStore wraps a CacheStore with debug logging.
type LoggingCacheStore struct {
	next   nox.CacheStore
	logger *slog.Logger
}

// NewLoggingCacheStore creates a new LoggingCacheStore.
func NewLoggingCacheStore(next nox.CacheStore, logger *slog.Logger) *LoggingCacheStore {
	return &LoggingCacheStore{next: next, logger: logger}
}

// Get delegates to the wrapped store and logs hits and misses.
func (s *LoggingCacheStore) Get(ctx context.Context, identity string) (entry *nox.CacheEntry, err error) {
	defer func(begin time.Time) {
		attrs := []any{
			"identity", identity,
			"hit", entry != nil,
			"duration", time.Since(begin),
		}
		if entry != nil {
			attrs = append(attrs, "version", entry.Version, "records", len(entry.Records))
		}
		attrs = append(attrs, "err", err)
		s.logger.Debug("cache get", attrs...)
	}(time.Now())
	return s.next.Get(ctx, identity)
}

// Put delegates to the wrapped store and logs the operation.
func (s *LoggingCacheStore) Put(ctx context.Context, entry *nox.CacheEntry) (err error) {
	defer func(begin time.Time) {
		level := slog.LevelDebug
		if err != nil {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "cache put",
			"identity", entry.Identity,
			"version", entry.Version,
			"records", len(entry.Records),
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Put(ctx, entry)
}

// Delete delegates to the wrapped store and logs the operation.
func (s *LoggingCacheStore) Delete(ctx context.Context, identity string) (err error) {
	defer func(begin time.Time) {
		s.logger.Debug("cache delete",
			"identity", identity,
			"duration", time.Since(begin),
			"err", err,
		)
	}(time.Now())
	return s.next.Delete(ctx, identity)
}
