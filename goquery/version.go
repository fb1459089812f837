package goquery

import (
	"bytes"
	"regexp"

	"github.com/PuerkitoBio/goquery"
	"github.com/mvil/nox"
	"github.com/mvil/nox/html"
)

var _ nox.VersionExtractor = (*VersionExtractor)(nil)

var semverRe = regexp.MustCompile(`\b(0|[1-9]\d*)\.(0|[1-9]\d*)\.(0|[1-9]\d*)(?:-[0-9A-Za-z.-]+)?(?:\+[0-9A-Za-z.-]+)?\b`)

// VersionExtractor reads the documented version from a manual page.
type VersionExtractor struct{}

// NewVersionExtractor creates a new VersionExtractor.
func NewVersionExtractor() *VersionExtractor {
	return &VersionExtractor{}
}

// ExtractVersion returns the version string found with the given strategy.
func (v *VersionExtractor) ExtractVersion(data []byte, strategy nox.VersionStrategy) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return "", nox.Errorf(nox.EPROBE, "failed to parse HTML: %v", err)
	}

	var version string
	switch strategy {
	case nox.VersionSubtitle:
		version = subtitle(doc)
	case nox.VersionTitleSemver:
		version = titleSemver(doc)
	case nox.VersionSubtitleOrTitle:
		if version = subtitle(doc); version == "" {
			version = titleSemver(doc)
		}
	default:
		return "", nox.Errorf(nox.EINVALID, "unknown version strategy %q", strategy)
	}

	if version == "" {
		return "", nox.Errorf(nox.EPROBE, "no version found using %s strategy", strategy)
	}
	return version, nil
}

func subtitle(doc *goquery.Document) string {
	return html.Text(doc.Find(".subtitle").First().Nodes)
}

func titleSemver(doc *goquery.Document) string {
	m := semverRe.FindString(doc.Find("title").First().Text())
	if m == "" {
		return ""
	}
	return "Version " + m
}
