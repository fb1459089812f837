// Package corpus acquires, caches and serves the option corpora of all
// configured documentation sources.
//
// Each source is a tab. Acquiring a tab walks a small state machine: the
// cached entry is served while it is within its TTL, otherwise the
// upstream version is probed and the page is fetched and parsed only when
// the version changed. When the upstream cannot be reached or parsed a
// cached entry is served as stale, and the tab fails only when there is
// nothing to serve.
package corpus

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/google/uuid"
	"github.com/mvil/nox"
	"github.com/mvil/nox/fuzzy"
	"golang.org/x/sync/errgroup"
)

// Ensure Manager implements nox.CorpusService at compile time.
var _ nox.CorpusService = (*Manager)(nil)

// Transition reports a tab moving between acquisition states.
type Transition struct {
	Source string
	From   nox.State
	To     nox.State
	Err    error
}

// TransitionFunc is a callback for observing state transitions. It is
// called synchronously and may be called from several goroutines at once.
type TransitionFunc func(Transition)

// Manager owns one tab per enabled source. Tab state can be read at any
// time without blocking; acquisitions of the same source are serialized.
type Manager struct {
	Fetcher  nox.Fetcher
	Cache    nox.CacheStore // nil disables caching
	Parsers  nox.Parsers
	Versions nox.VersionExtractor // nil skips version probing

	Logger       *slog.Logger
	RetryDelays  []time.Duration
	IndexOptions []fuzzy.Option
	Concurrency  int
	OnTransition TransitionFunc

	// Now returns the current time. Defaults to time.Now.
	Now func() time.Time

	tabs  []*tab
	byID  map[string]*tab
	locks keyedMutex
}

type tab struct {
	src  *nox.Source
	snap atomic.Pointer[snapshot]
}

// snapshot is the immutable state of a tab at one point in time.
type snapshot struct {
	state  nox.State
	corpus *nox.Corpus
	index  *fuzzy.Index
	err    error
}

// NewManager creates a Manager with one idle tab per enabled source, in
// the order given.
func NewManager(sources []*nox.Source) *Manager {
	m := &Manager{
		RetryDelays: DefaultRetryDelays(),
		byID:        make(map[string]*tab),
	}
	for _, src := range sources {
		if !src.Enabled {
			continue
		}
		if _, dup := m.byID[src.ID]; dup {
			continue
		}
		t := &tab{src: src}
		t.snap.Store(&snapshot{state: nox.StateIdle})
		m.tabs = append(m.tabs, t)
		m.byID[src.ID] = t
	}
	return m
}

// LoadAll acquires every tab concurrently and returns once all of them have
// settled. A failing source does not affect the others.
func (m *Manager) LoadAll(ctx context.Context) error {
	var g errgroup.Group
	if m.Concurrency > 0 {
		g.SetLimit(m.Concurrency)
	}
	for _, t := range m.tabs {
		g.Go(func() error {
			m.acquire(ctx, t, false)
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}

// Load acquires one tab, serving a fresh cache entry when there is one.
func (m *Manager) Load(ctx context.Context, id string) (nox.TabState, error) {
	t, ok := m.byID[id]
	if !ok {
		return nox.TabState{}, nox.Errorf(nox.ENOTFOUND, "unknown source %q", id)
	}
	m.acquire(ctx, t, false)
	return t.state(), nil
}

// Refresh re-acquires one tab, bypassing the TTL and version checks. The
// tab keeps serving its current corpus until the new one is ready.
func (m *Manager) Refresh(ctx context.Context, id string) (nox.TabState, error) {
	t, ok := m.byID[id]
	if !ok {
		return nox.TabState{}, nox.Errorf(nox.ENOTFOUND, "unknown source %q", id)
	}
	m.acquire(ctx, t, true)
	return t.state(), nil
}

// Tabs returns the current state of every tab in display order.
func (m *Manager) Tabs() []nox.TabState {
	states := make([]nox.TabState, len(m.tabs))
	for i, t := range m.tabs {
		states[i] = t.state()
	}
	return states
}

// Tab returns the current state of one tab.
func (m *Manager) Tab(id string) (nox.TabState, error) {
	t, ok := m.byID[id]
	if !ok {
		return nox.TabState{}, nox.Errorf(nox.ENOTFOUND, "unknown source %q", id)
	}
	return t.state(), nil
}

// Query searches the current corpus of a tab. A tab without a corpus has
// no results.
func (m *Manager) Query(tabID, text string) ([]nox.Match, error) {
	t, ok := m.byID[tabID]
	if !ok {
		return nil, nox.Errorf(nox.ENOTFOUND, "unknown source %q", tabID)
	}
	ix := t.snap.Load().index
	if ix == nil {
		return nil, nil
	}
	return ix.Query(text), nil
}

// Index returns the search index of a tab's current corpus, or nil if the
// tab has no corpus yet.
func (m *Manager) Index(tabID string) (*fuzzy.Index, error) {
	t, ok := m.byID[tabID]
	if !ok {
		return nil, nox.Errorf(nox.ENOTFOUND, "unknown source %q", tabID)
	}
	return t.snap.Load().index, nil
}

func (t *tab) state() nox.TabState {
	s := t.snap.Load()
	return nox.TabState{
		Source: t.src,
		State:  s.state,
		Corpus: s.corpus,
		Err:    s.err,
	}
}

// acquire runs the acquisition state machine for one tab.
func (m *Manager) acquire(ctx context.Context, t *tab, force bool) {
	unlock := m.locks.Lock(t.src.ID)
	defer unlock()

	src := t.src
	force = force || src.ForceRefresh
	logger := m.logger().With("source", src.ID)

	m.transition(t, nox.StateProbingVersion, nil)

	entry := m.loadEntry(ctx, src, logger)
	now := m.now()

	if entry != nil && !force && entry.Fresh(src.TTL, now) {
		m.transition(t, nox.StateCacheHit, nil)
		m.ready(t, m.newCorpus(src, entry, false), nil)
		return
	}

	parser, err := m.Parsers.For(src)
	if err != nil {
		m.fallback(t, entry, err)
		return
	}

	version, data, err := m.probe(ctx, src, entry != nil, logger)
	if err != nil {
		switch {
		case data != nil:
			// The data page arrived but carries no readable version.
		case entry != nil && !force:
			m.fallback(t, entry, err)
			return
		case entry == nil && !src.SeparateProbe():
			// The data page itself was unreachable after retries.
			m.fallback(t, nil, err)
			return
		}
		logger.Warn("version probe failed, continuing without version", "err", err)
	}

	if err == nil && m.Versions != nil && entry != nil && !force && version == entry.Version {
		m.transition(t, nox.StateCacheHit, nil)
		renewed := *entry
		renewed.FetchedAt = now
		m.persist(ctx, &renewed, logger)
		m.ready(t, m.newCorpus(src, &renewed, false), nil)
		return
	}

	m.transition(t, nox.StateFetching, nil)
	if data == nil {
		data, err = fetchWithRetry(ctx, m.Fetcher, src.URL, m.RetryDelays, logger)
		if err != nil {
			m.fallback(t, entry, err)
			return
		}
	}
	hash := xxhash.Sum64(data)

	m.transition(t, nox.StateParsing, nil)
	var records []*nox.Record
	if entry != nil && entry.ContentHash == hash {
		logger.Debug("content unchanged, reusing cached records", "hash", hash)
		records = entry.Records
	} else {
		res, err := parser.Parse(data, src)
		if err != nil {
			m.fallback(t, entry, err)
			return
		}
		records = res.Records
	}

	fresh := &nox.CacheEntry{
		Identity:    src.ID,
		Version:     version,
		URL:         src.URL,
		FetchedAt:   now,
		ContentHash: hash,
		Records:     records,
	}
	if m.Cache != nil {
		m.transition(t, nox.StatePersisting, nil)
		m.persist(ctx, fresh, logger)
	}
	m.ready(t, m.newCorpus(src, fresh, false), nil)
}

// probe reads the upstream version. When the version lives on the data
// page the fetched page is returned for reuse.
func (m *Manager) probe(ctx context.Context, src *nox.Source, cached bool, logger *slog.Logger) (string, []byte, error) {
	if m.Versions == nil {
		return "", nil, nil
	}

	// A failed probe falls back to the cached entry, so only retry when
	// there is nothing to fall back to.
	var delays []time.Duration
	if !cached {
		delays = m.RetryDelays
	}
	body, err := fetchWithRetry(ctx, m.Fetcher, src.ProbeURL(), delays, logger)
	if err != nil {
		if src.SeparateProbe() {
			err = nox.WrapError(nox.EPROBE, "probe", err)
		}
		return "", nil, err
	}

	var data []byte
	if !src.SeparateProbe() {
		data = body
	}
	version, err := m.Versions.ExtractVersion(body, src.Version)
	if err != nil {
		return "", data, err
	}
	return version, data, nil
}

func (m *Manager) loadEntry(ctx context.Context, src *nox.Source, logger *slog.Logger) *nox.CacheEntry {
	if m.Cache == nil {
		return nil
	}
	entry, err := m.Cache.Get(ctx, src.ID)
	if err != nil {
		logger.Warn("cache read failed", "err", err)
		return nil
	}
	if entry != nil && entry.URL != src.URL {
		logger.Info("ignoring cache entry from another URL", "cached_url", entry.URL, "url", src.URL)
		return nil
	}
	return entry
}

// persist stores entry. Failures are logged; the corpus is served anyway.
func (m *Manager) persist(ctx context.Context, entry *nox.CacheEntry, logger *slog.Logger) {
	if m.Cache == nil {
		return
	}
	if err := m.Cache.Put(ctx, entry); err != nil {
		logger.Warn("cache write failed", "err", err)
	}
}

// fallback settles a tab after a failed refresh: the cached entry is
// served as stale, or the tab fails keeping any corpus it already had.
func (m *Manager) fallback(t *tab, entry *nox.CacheEntry, err error) {
	if entry != nil {
		m.transition(t, nox.StateCacheHit, nil)
		m.ready(t, m.newCorpus(t.src, entry, true), err)
		return
	}
	m.transition(t, nox.StateFailed, err)
}

// ready publishes a new corpus and its index.
func (m *Manager) ready(t *tab, c *nox.Corpus, diag error) {
	state := nox.StateReady
	if c.Stale {
		state = nox.StateReadyStale
	}
	m.publish(t, &snapshot{
		state:  state,
		corpus: c,
		index:  fuzzy.New(c, m.IndexOptions...),
		err:    diag,
	})
}

// transition moves a tab to state, keeping its corpus.
func (m *Manager) transition(t *tab, state nox.State, err error) {
	prev := t.snap.Load()
	m.publish(t, &snapshot{
		state:  state,
		corpus: prev.corpus,
		index:  prev.index,
		err:    err,
	})
}

func (m *Manager) publish(t *tab, next *snapshot) {
	prev := t.snap.Swap(next)

	m.logger().Debug("transition",
		"source", t.src.ID,
		"from", prev.state.String(),
		"to", next.state.String(),
		"err", next.err,
	)
	if m.OnTransition != nil {
		m.OnTransition(Transition{
			Source: t.src.ID,
			From:   prev.state,
			To:     next.state,
			Err:    next.err,
		})
	}
}

func (m *Manager) newCorpus(src *nox.Source, entry *nox.CacheEntry, stale bool) *nox.Corpus {
	return &nox.Corpus{
		ID:        uuid.NewString(),
		Source:    src,
		Records:   entry.Records,
		Version:   entry.Version,
		FetchedAt: entry.FetchedAt,
		Stale:     stale,
	}
}

func (m *Manager) logger() *slog.Logger {
	if m.Logger == nil {
		return slog.New(slog.DiscardHandler)
	}
	return m.Logger
}

func (m *Manager) now() time.Time {
	if m.Now == nil {
		return time.Now()
	}
	return m.Now()
}
