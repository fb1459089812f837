package fuzzy

import (
	"strings"

	"github.com/mvil/nox"
	"golang.org/x/text/cases"
)

// Ensure Searcher implements nox.Searcher at compile time.
var _ nox.Searcher = (*Searcher)(nil)

// Searcher answers a sequence of queries typed one character at a time.
// When a query extends the previous one, only records whose names matched
// the previous query are rescanned. Results equal those of Index.Query.
// A Searcher is not safe for concurrent use.
type Searcher struct {
	ix   *Index
	prev string
	hits []int
}

// Query returns the records matching text, best first.
func (s *Searcher) Query(text string) []nox.Match {
	folded := cases.Fold().String(text)
	q := terms(text)

	var pool []int
	if len(q) > 0 && s.prev != "" && strings.HasPrefix(folded, s.prev) {
		pool = s.hits
		if pool == nil {
			pool = []int{}
		}
	}

	matches, hits := s.ix.search(q, pool)
	if len(q) == 0 {
		s.prev, s.hits = "", nil
	} else {
		s.prev, s.hits = folded, hits
	}
	return matches
}

// Reset forgets the previous query.
func (s *Searcher) Reset() {
	s.prev, s.hits = "", nil
}
