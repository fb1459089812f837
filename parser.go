package nox

// ParseWarning describes a document entry that was skipped because it
// could not be turned into a Record.
type ParseWarning struct {
	// Index is the position of the entry among all entries in the document.
	Index  int
	Term   string
	Reason string
}

// ParseResult holds the records parsed from a document, in document order,
// along with one warning per skipped entry.
type ParseResult struct {
	Records  []*Record
	Warnings []ParseWarning
}

// Parser turns a raw documentation page into option records.
type Parser interface {
	// Parse returns the records found in data. Malformed entries are skipped
	// and reported as warnings. An error with code EPARSE is returned only
	// when the document cannot be read at all or holds no records.
	Parse(data []byte, src *Source) (*ParseResult, error)
}

// VersionExtractor reads a version string from a documentation page.
type VersionExtractor interface {
	// ExtractVersion returns the version found using the strategy.
	// Returns an error with code EPROBE if no version is present.
	ExtractVersion(data []byte, strategy VersionStrategy) (string, error)
}

// Parsers maps each page format to the parser that understands it.
type Parsers map[Format]Parser

// For returns the parser for the source's format.
func (p Parsers) For(src *Source) (Parser, error) {
	parser, ok := p[src.Format]
	if !ok || parser == nil {
		return nil, Errorf(EINVALID, "no parser registered for format %q", src.Format)
	}
	return parser, nil
}

// FormatDetector identifies the page format of a fetched document.
type FormatDetector interface {
	// Detect returns the detected format. It never returns FormatAuto.
	Detect(data []byte) Format
}
