package nox

import (
	"context"
	"time"
)

// CacheEntry is the persisted form of a Corpus.
type CacheEntry struct {
	Identity string
	Version  string

	// URL is the page the records were parsed from. An entry is only
	// reused for a source with the same URL.
	URL string

	FetchedAt   time.Time
	ContentHash uint64
	Records     []*Record
}

// Age returns how long ago the entry was fetched.
func (e *CacheEntry) Age(now time.Time) time.Duration {
	return now.Sub(e.FetchedAt)
}

// Fresh reports whether the entry is younger than ttl.
// A ttl of zero or less never expires.
func (e *CacheEntry) Fresh(ttl time.Duration, now time.Time) bool {
	if ttl <= 0 {
		return true
	}
	return e.Age(now) < ttl
}

// CacheStore persists one CacheEntry per source identity.
type CacheStore interface {
	// Get returns the entry for identity, or nil if there is none.
	// An entry that cannot be decoded is reported as absent.
	Get(ctx context.Context, identity string) (*CacheEntry, error)

	// Put replaces the entry for entry.Identity atomically.
	Put(ctx context.Context, entry *CacheEntry) error

	// Delete removes the entry for identity. Missing entries are not an error.
	Delete(ctx context.Context, identity string) error
}
