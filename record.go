package nox

import (
	"strings"
	"time"
)

// Declaration is a source file that declares an option.
type Declaration struct {
	// Path is the display form, e.g. "<nixpkgs/nixos/modules/services/foo.nix>".
	Path string `json:"path" msgpack:"path"`
	// URL links to the file in its repository. May be empty.
	URL string `json:"url,omitempty" msgpack:"url"`
}

// Record describes a single configuration option parsed from a
// documentation page. Records are never modified after parsing.
type Record struct {
	Name        string        `json:"name" msgpack:"name"`
	Type        string        `json:"type" msgpack:"type"`
	Description string        `json:"description" msgpack:"description"`
	Default     string        `json:"default,omitempty" msgpack:"default"`
	Example     string        `json:"example,omitempty" msgpack:"example"`
	DeclaredBy  []Declaration `json:"declaredBy,omitempty" msgpack:"declared_by"`
	Anchor      string        `json:"anchor" msgpack:"anchor"`
}

// Validate returns an error if the record contains invalid fields.
func (r *Record) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return Errorf(EINVALID, "record name required")
	}
	if strings.ContainsAny(r.Name, "\n\t") {
		return Errorf(EINVALID, "record name %q contains control whitespace", r.Name)
	}
	return nil
}

// Paths returns the declaring file paths of the option.
func (r *Record) Paths() []string {
	paths := make([]string, 0, len(r.DeclaredBy))
	for _, d := range r.DeclaredBy {
		paths = append(paths, d.Path)
	}
	return paths
}

// Corpus is the complete set of option records for one source at a point
// in time. A Corpus is built wholesale and never mutated; a refresh produces
// a new Corpus with a new ID.
type Corpus struct {
	ID        string
	Source    *Source
	Records   []*Record
	Version   string
	FetchedAt time.Time

	// Stale is set when the corpus was served from cache because the
	// upstream could not be reached or parsed.
	Stale bool
}

// Len returns the number of records in the corpus.
func (c *Corpus) Len() int {
	if c == nil {
		return 0
	}
	return len(c.Records)
}

// Lookup returns the record with the given name.
func (c *Corpus) Lookup(name string) (*Record, bool) {
	if c == nil {
		return nil, false
	}
	for _, r := range c.Records {
		if r.Name == name {
			return r, true
		}
	}
	return nil, false
}
