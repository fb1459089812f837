package corpus

import (
	"github.com/mvil/nox"
	"github.com/mvil/nox/fuzzy"
)

// Ensure Searcher implements nox.Searcher at compile time.
var _ nox.Searcher = (*Searcher)(nil)

// Searcher answers keystroke-by-keystroke queries against whatever corpus a
// tab currently serves. Narrowing state is tied to a corpus ID and starts
// over when the tab publishes a different corpus, so positions from the old
// corpus never leak into results for the new one.
//
// A Searcher is not safe for concurrent use.
type Searcher struct {
	tab      *tab
	corpusID string
	inner    *fuzzy.Searcher
}

// NewSearcher returns a Searcher following the tab with the given id.
func (m *Manager) NewSearcher(tabID string) (*Searcher, error) {
	t, ok := m.byID[tabID]
	if !ok {
		return nil, nox.Errorf(nox.ENOTFOUND, "unknown source %q", tabID)
	}
	return &Searcher{tab: t}, nil
}

// Query returns the records of the tab's current corpus matching text.
// A tab without a corpus has no results.
func (s *Searcher) Query(text string) []nox.Match {
	snap := s.tab.snap.Load()
	if snap.index == nil {
		s.corpusID, s.inner = "", nil
		return nil
	}
	if s.inner == nil || snap.corpus.ID != s.corpusID {
		s.corpusID = snap.corpus.ID
		s.inner = snap.index.NewSearcher()
	}
	return s.inner.Query(text)
}

// CorpusID returns the ID of the corpus the last query ran against.
func (s *Searcher) CorpusID() string {
	return s.corpusID
}
