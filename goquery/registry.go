package goquery

import (
	"maps"

	"github.com/mvil/nox"
)

var _ nox.Parser = (*Registry)(nil)

// Registry holds the parser for each page format and dispatches pages of
// unknown format to the parser registered for the format its detector
// reports.
type Registry struct {
	detector nox.FormatDetector
	parsers  nox.Parsers
}

// NewRegistry creates a new Registry with the given detector and the
// goquery-backed parsers registered.
func NewRegistry(detector nox.FormatDetector) *Registry {
	r := &Registry{
		detector: detector,
		parsers:  make(nox.Parsers),
	}
	r.Register(nox.FormatDocBook, NewDocBookParser())
	r.Register(nox.FormatBuiltins, NewBuiltinsParser())
	return r
}

// Register adds a parser for a format.
// If a parser is already registered for the format, it is replaced.
func (r *Registry) Register(format nox.Format, parser nox.Parser) {
	r.parsers[format] = parser
}

// Get returns the parser for a format, or nil if none is registered.
func (r *Registry) Get(format nox.Format) nox.Parser {
	return r.parsers[format]
}

// Parsers returns the registered parsers with the Registry itself serving
// FormatAuto.
func (r *Registry) Parsers() nox.Parsers {
	p := maps.Clone(r.parsers)
	p[nox.FormatAuto] = r
	return p
}

// Parse detects the page format and parses with the matching parser.
func (r *Registry) Parse(data []byte, src *nox.Source) (*nox.ParseResult, error) {
	format := r.detector.Detect(data)
	parser := r.parsers[format]
	if parser == nil {
		return nil, nox.Errorf(nox.EINVALID, "no parser registered for detected format %q", format)
	}
	return parser.Parse(data, src)
}
