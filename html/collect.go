package html

import (
	"regexp"

	"github.com/mvil/nox"
)

// Collector accumulates the records of one document in order. It rejects
// invalid and duplicate entries with a warning and applies the source's
// declaration URL rewrite.
type Collector struct {
	src     *nox.Source
	rewrite *regexp.Regexp

	names map[string]struct{}

	result nox.ParseResult
}

// NewCollector creates a Collector sized for the expected number of entries.
func NewCollector(src *nox.Source, expected int) (*Collector, error) {
	c := &Collector{
		src:   src,
		names: make(map[string]struct{}, expected),
	}
	if rw := src.DeclarationRewrite; rw != nil {
		re, err := regexp.Compile(rw.Pattern)
		if err != nil {
			return nil, nox.Errorf(nox.EINVALID, "invalid declaration rewrite for %s: %v", src.ID, err)
		}
		c.rewrite = re
	}
	return c, nil
}

// Skip records a warning for an entry that could not be parsed.
func (c *Collector) Skip(index int, term, reason string) {
	c.result.Warnings = append(c.result.Warnings, nox.ParseWarning{
		Index:  index,
		Term:   term,
		Reason: reason,
	})
}

// Add appends rec, or records a warning if it is invalid or a duplicate.
func (c *Collector) Add(index int, rec *nox.Record) {
	if err := rec.Validate(); err != nil {
		c.Skip(index, rec.Name, nox.ErrorMessage(err))
		return
	}
	if c.duplicate(rec.Name) {
		c.Skip(index, rec.Name, "duplicate option name")
		return
	}
	if c.rewrite != nil {
		for i := range rec.DeclaredBy {
			rec.DeclaredBy[i].URL = c.rewrite.ReplaceAllString(rec.DeclaredBy[i].URL, c.src.DeclarationRewrite.Replace)
		}
	}
	c.result.Records = append(c.result.Records, rec)
}

// duplicate reports whether name was added before and marks it as seen.
func (c *Collector) duplicate(name string) bool {
	if _, ok := c.names[name]; ok {
		return true
	}
	c.names[name] = struct{}{}
	return false
}

// Result returns the collected records. A document without any record is a
// parse error.
func (c *Collector) Result() (*nox.ParseResult, error) {
	if len(c.result.Records) == 0 {
		return nil, nox.Errorf(nox.EPARSE, "no options found in %s document (%d entries skipped)", c.src.ID, len(c.result.Warnings))
	}
	res := c.result
	return &res, nil
}
