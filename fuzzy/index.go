// Package fuzzy ranks the records of a corpus against short queries.
//
// A query matches a record name when every whitespace separated term of
// the query appears in the name as a case-insensitive ordered subsequence.
// Descriptions are searched only when no name matches confidently, and
// description matches always rank below name matches.
package fuzzy

import (
	"slices"
	"strings"

	"github.com/mvil/nox"
	"golang.org/x/text/cases"
)

// DefaultLimit is the maximum number of matches returned by a query.
const DefaultLimit = 200

// nameOffset lifts every name score above every description score.
const nameOffset = 1 << 20

// Option configures an Index.
type Option func(*Index)

// WithLimit sets the maximum number of matches per query.
// Values below one are ignored.
func WithLimit(n int) Option {
	return func(ix *Index) {
		if n > 0 {
			ix.limit = n
		}
	}
}

// Index is an immutable search index over one corpus. It is safe for
// concurrent use.
type Index struct {
	corpus *nox.Corpus
	names  []target
	descs  []target
	limit  int
}

// Ensure Index implements nox.Searcher at compile time.
var _ nox.Searcher = (*Index)(nil)

// New builds an index over the records of c.
func New(c *nox.Corpus, opts ...Option) *Index {
	ix := &Index{
		corpus: c,
		limit:  DefaultLimit,
	}
	for _, opt := range opts {
		opt(ix)
	}

	fold := cases.Fold()
	n := c.Len()
	ix.names = make([]target, n)
	ix.descs = make([]target, n)
	for i := range n {
		r := c.Records[i]
		ix.names[i] = prepare(r.Name, fold.String(r.Name))
		ix.descs[i] = prepare(r.Description, fold.String(r.Description))
	}
	return ix
}

// Corpus returns the indexed corpus.
func (ix *Index) Corpus() *nox.Corpus {
	return ix.corpus
}

// Limit returns the maximum number of matches per query.
func (ix *Index) Limit() int {
	return ix.limit
}

// Query returns the records matching text, best first. Equal scores keep
// document order. An empty query returns the first records in document
// order.
func (ix *Index) Query(text string) []nox.Match {
	matches, _ := ix.search(terms(text), nil)
	return matches
}

// NewSearcher returns a Searcher that narrows successive queries.
func (ix *Index) NewSearcher() *Searcher {
	return &Searcher{ix: ix}
}

// terms folds text and splits it into runes per whitespace separated term.
func terms(text string) [][]rune {
	fields := strings.Fields(cases.Fold().String(text))
	out := make([][]rune, len(fields))
	for i, f := range fields {
		out[i] = []rune(f)
	}
	return out
}

// search ranks the records in pool, or all records if pool is nil. It also
// returns the positions of every record whose name matched, in order.
func (ix *Index) search(q [][]rune, pool []int) ([]nox.Match, []int) {
	if len(q) == 0 {
		return ix.head(), nil
	}

	var matches []nox.Match
	var hits []int
	best := 0
	visit := func(i int) {
		s, ok := scoreAll(q, ix.names[i])
		if !ok {
			return
		}
		hits = append(hits, i)
		if len(hits) == 1 || s > best {
			best = s
		}
		matches = append(matches, nox.Match{
			Record:   ix.corpus.Records[i],
			Score:    nameOffset + max(s, 0),
			Field:    nox.FieldName,
			Position: i,
		})
	}
	if pool == nil {
		for i := range ix.names {
			visit(i)
		}
	} else {
		for _, i := range pool {
			visit(i)
		}
	}

	if len(hits) == 0 || best < confidence(q) {
		matches = append(matches, ix.searchDescriptions(q, hits)...)
	}

	slices.SortStableFunc(matches, func(a, b nox.Match) int {
		if a.Score != b.Score {
			return b.Score - a.Score
		}
		return a.Position - b.Position
	})
	if len(matches) > ix.limit {
		matches = matches[:ix.limit]
	}
	return matches, hits
}

// searchDescriptions scores descriptions of records whose names did not
// match. hits is sorted.
func (ix *Index) searchDescriptions(q [][]rune, hits []int) []nox.Match {
	var matches []nox.Match
	h := 0
	for i := range ix.descs {
		if h < len(hits) && hits[h] == i {
			h++
			continue
		}
		s, ok := scoreAll(q, ix.descs[i])
		if !ok {
			continue
		}
		matches = append(matches, nox.Match{
			Record:   ix.corpus.Records[i],
			Score:    min(max(s/4, 1), nameOffset-1),
			Field:    nox.FieldDescription,
			Position: i,
		})
	}
	return matches
}

// head returns the first records in document order.
func (ix *Index) head() []nox.Match {
	n := min(ix.corpus.Len(), ix.limit)
	matches := make([]nox.Match, n)
	for i := range n {
		matches[i] = nox.Match{Record: ix.corpus.Records[i], Field: nox.FieldName, Position: i}
	}
	return matches
}

func scoreAll(q [][]rune, t target) (int, bool) {
	total := 0
	for _, term := range q {
		s, ok := score(term, t)
		if !ok {
			return 0, false
		}
		total += s
	}
	return total, true
}

// confidence is the name score below which descriptions are consulted.
func confidence(q [][]rune) int {
	n := 0
	for _, term := range q {
		n += len(term)
	}
	return n * confidencePerMatch
}
