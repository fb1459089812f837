package mock

import "github.com/mvil/nox"

var _ nox.Parser = (*Parser)(nil)

// Parser is a mock implementation of nox.Parser.
type Parser struct {
	ParseFn func(data []byte, src *nox.Source) (*nox.ParseResult, error)
}

func (p *Parser) Parse(data []byte, src *nox.Source) (*nox.ParseResult, error) {
	return p.ParseFn(data, src)
}

var _ nox.VersionExtractor = (*VersionExtractor)(nil)

// VersionExtractor is a mock implementation of nox.VersionExtractor.
type VersionExtractor struct {
	ExtractVersionFn func(data []byte, strategy nox.VersionStrategy) (string, error)
}

func (v *VersionExtractor) ExtractVersion(data []byte, strategy nox.VersionStrategy) (string, error) {
	return v.ExtractVersionFn(data, strategy)
}

var _ nox.FormatDetector = (*FormatDetector)(nil)

// FormatDetector is a mock implementation of nox.FormatDetector.
type FormatDetector struct {
	DetectFn func(data []byte) nox.Format
}

func (d *FormatDetector) Detect(data []byte) nox.Format {
	return d.DetectFn(data)
}
