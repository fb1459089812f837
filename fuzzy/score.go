package fuzzy

import (
	"unicode"
	"unicode/utf8"
)

// Scoring weights. Scores are relative; only their ordering matters.
const (
	scoreMatch         = 16
	bonusConsecutive   = 12
	bonusBoundary      = 10
	bonusCamel         = 8
	bonusSubstring     = 40
	bonusPrefix        = 60
	bonusExact         = 100
	penaltyGapStart    = 5
	penaltyGap         = 2
	penaltyLeading     = 1
	maxPenaltyLeading  = 15
	confidencePerMatch = scoreMatch + bonusConsecutive/2
)

type boundary uint8

const (
	noBoundary boundary = iota
	camelBoundary
	wordBoundary
)

// target is a folded string prepared for scoring.
type target struct {
	runes []rune
	bound []boundary
}

// prepare folds s and records word boundaries. Camel case boundaries are
// only known when folding keeps the rune count.
func prepare(s, folded string) target {
	t := target{runes: []rune(folded)}
	t.bound = make([]boundary, len(t.runes))

	orig := []rune(s)
	sameLen := utf8.RuneCountInString(s) == len(t.runes)
	for i, r := range t.runes {
		switch {
		case i == 0:
			t.bound[i] = wordBoundary
		case isSeparator(t.runes[i-1]):
			t.bound[i] = wordBoundary
		case sameLen && unicode.IsUpper(orig[i]) && unicode.IsLower(orig[i-1]):
			t.bound[i] = camelBoundary
		case unicode.IsDigit(r) && !unicode.IsDigit(t.runes[i-1]):
			t.bound[i] = camelBoundary
		}
	}
	return t
}

func isSeparator(r rune) bool {
	switch r {
	case '.', '_', '-', '/', ' ', ':', '<', '>', '(', ')', '"', '\'':
		return true
	}
	return unicode.IsSpace(r)
}

func (b boundary) bonus() int {
	switch b {
	case wordBoundary:
		return bonusBoundary
	case camelBoundary:
		return bonusCamel
	}
	return 0
}

func leadingPenalty(n int) int {
	return min(n*penaltyLeading, maxPenaltyLeading)
}

// score rates how well term matches t as an ordered subsequence. It
// reports false if term is not a subsequence of t.
func score(term []rune, t target) (int, bool) {
	n, m := len(term), len(t.runes)
	if n == 0 {
		return 0, true
	}
	if n > m {
		return 0, false
	}

	if s, ok := scoreContiguous(term, t); ok {
		return s, true
	}

	// Find the end of the leftmost match, then walk back to the
	// shortest window ending there.
	end, qi := -1, 0
	for ti := 0; ti < m; ti++ {
		if t.runes[ti] == term[qi] {
			qi++
			if qi == n {
				end = ti
				break
			}
		}
	}
	if end < 0 {
		return 0, false
	}
	start, qi := end, n-1
	for ti := end; ti >= 0; ti-- {
		if t.runes[ti] == term[qi] {
			qi--
			if qi < 0 {
				start = ti
				break
			}
		}
	}

	s, prev := 0, -1
	qi = 0
	for ti := start; ti <= end && qi < n; ti++ {
		if t.runes[ti] != term[qi] {
			continue
		}
		s += scoreMatch + t.bound[ti].bonus()
		if prev >= 0 {
			if gap := ti - prev - 1; gap == 0 {
				s += bonusConsecutive
			} else {
				s -= penaltyGapStart + gap*penaltyGap
			}
		}
		prev = ti
		qi++
	}
	return s - leadingPenalty(start), true
}

// scoreContiguous scores the best occurrence of term as a substring of t.
func scoreContiguous(term []rune, t target) (int, bool) {
	n, m := len(term), len(t.runes)
	best, found := 0, false
	for i := 0; i+n <= m; i++ {
		if !hasPrefixAt(t.runes, term, i) {
			continue
		}
		s := n*scoreMatch + (n-1)*bonusConsecutive + bonusSubstring + t.bound[i].bonus()
		if i == 0 {
			s += bonusPrefix
			if n == m {
				s += bonusExact
			}
		}
		s -= leadingPenalty(i)
		if !found || s > best {
			best, found = s, true
		}
	}
	return best, found
}

func hasPrefixAt(s, prefix []rune, at int) bool {
	for j, r := range prefix {
		if s[at+j] != r {
			return false
		}
	}
	return true
}
