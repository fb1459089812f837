package goquery

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/mvil/nox"
)

var _ nox.FormatDetector = (*Detector)(nil)

// Detector identifies the option page format from markup.
type Detector struct{}

// NewDetector creates a new Detector.
func NewDetector() *Detector {
	return &Detector{}
}

// Detect returns the page format, defaulting to FormatDocBook.
func (d *Detector) Detect(data []byte) nox.Format {
	head := data[:min(len(data), 512)]
	if bytes.HasPrefix(bytes.TrimSpace(head), []byte("<?xml")) &&
		bytes.Contains(data, []byte("http://www.w3.org/1999/xhtml")) {
		return nox.FormatXHTML
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nox.FormatDocBook
	}

	if d.hasBuiltinTerms(doc) {
		return nox.FormatBuiltins
	}
	return nox.FormatDocBook
}

// hasBuiltinTerms checks for term anchors in the built-ins reference style.
func (d *Detector) hasBuiltinTerms(doc *goquery.Document) bool {
	found := false
	doc.Find("dt[id], dt a[id]").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		id, _ := s.Attr("id")
		found = strings.HasPrefix(id, "builtins-")
		return !found
	})
	return found
}
