package nox

import "context"

// State is the acquisition state of a tab's corpus.
type State int

// Acquisition states, in the order they are normally visited.
const (
	StateIdle State = iota
	StateProbingVersion
	StateCacheHit
	StateFetching
	StateParsing
	StatePersisting
	StateReady
	StateReadyStale
	StateFailed
)

var stateNames = [...]string{
	StateIdle:           "idle",
	StateProbingVersion: "probing_version",
	StateCacheHit:       "cache_hit",
	StateFetching:       "fetching",
	StateParsing:        "parsing",
	StatePersisting:     "persisting",
	StateReady:          "ready",
	StateReadyStale:     "ready_stale",
	StateFailed:         "failed",
}

func (s State) String() string {
	if s < 0 || int(s) >= len(stateNames) {
		return "unknown"
	}
	return stateNames[s]
}

// Settled reports whether acquisition has finished.
func (s State) Settled() bool {
	return s == StateReady || s == StateReadyStale || s == StateFailed
}

// TabState is a snapshot of one source as seen by external callers.
type TabState struct {
	Source *Source
	State  State
	Corpus *Corpus

	// Err is set when State is StateFailed, and holds the last non-fatal
	// diagnostic when State is StateReadyStale.
	Err error
}

// Match is one ranked query result.
type Match struct {
	Record *Record
	Score  int
	Field  MatchField

	// Position is the record's index in its corpus.
	Position int
}

// MatchField names the record field a match was found in.
type MatchField int

// Match fields.
const (
	FieldName MatchField = iota
	FieldDescription
)

// Searcher answers ranked queries over one corpus.
type Searcher interface {
	Query(text string) []Match
}

// CorpusService provides tab state and search over all configured sources.
type CorpusService interface {
	// LoadAll acquires every enabled source and returns once all have settled.
	LoadAll(ctx context.Context) error

	// Tabs returns the current state of every enabled source in display order.
	Tabs() []TabState

	// Tab returns the current state of one source without blocking.
	// Returns ENOTFOUND if the source is not configured.
	Tab(id string) (TabState, error)

	// Query searches the corpus of the given tab.
	// Returns ENOTFOUND for an unknown tab; a tab without a corpus yields no results.
	Query(tabID, text string) ([]Match, error)
}
